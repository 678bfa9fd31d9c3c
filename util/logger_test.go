package util

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	assert.Len(t, a, 8)
	assert.NotEqual(t, a, b)
}

func TestInitLoggerWritesRunFile(t *testing.T) {
	dir := t.TempDir()
	c, err := InitLogger(dir, "abc")
	require.NoError(t, err)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		Logger = log.Default()
	})
	Logger.Println("Model saved: m.gob")
	require.NoError(t, c.Close())

	buf, err := os.ReadFile(filepath.Join(dir, "run_abc.log"))
	require.NoError(t, err)
	assert.Contains(t, string(buf), "Model saved: m.gob")
}

func TestPlotLogger(t *testing.T) {
	dir := t.TempDir()
	c, err := InitPlotLogger(dir, "abc", "train")
	require.NoError(t, err)
	Plot(1, 10, 0.5, 0.25)
	require.NoError(t, c.Close())

	buf, err := os.ReadFile(filepath.Join(dir, "plot_logs_abc_train.txt"))
	require.NoError(t, err)
	assert.Equal(t, "1 10 0.500000 0.250000\n", string(buf))
}

func TestInitLoggerBadDir(t *testing.T) {
	_, err := InitLogger(filepath.Join(t.TempDir(), "missing"), "abc")
	assert.Error(t, err)
}
