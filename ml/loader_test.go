package ml

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grayPNG(t *testing.T, seed int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 28, 28))
	for y := 0; y < 28; y++ {
		for x := 0; x < 28; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x*y + seed) % 255)})
		}
	}
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

// writeTgz stores perLabel images under data/<label>/ for every label.
func writeTgz(t *testing.T, path string, labels []string, perLabel int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	for li, label := range labels {
		for i := 0; i < perLabel; i++ {
			body := grayPNG(t, li*perLabel+i)
			require.NoError(t, tw.WriteHeader(&tar.Header{
				Name:     fmt.Sprintf("data/%s/%d.png", label, i),
				Mode:     0644,
				Size:     int64(len(body)),
				Typeflag: tar.TypeReg,
			}))
			_, err := tw.Write(body)
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
}

func TestTgzSourceBatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.tar.gz")
	writeTgz(t, path, []string{"0", "1"}, 3)

	src, err := NewTgzSource(path)
	require.NoError(t, err)
	assert.Len(t, src.Vocab, 2)

	for epoch := 0; epoch < 2; epoch++ {
		it, err := src.Batches(2)
		require.NoError(t, err)
		samples := int64(0)
		for it.Scan() {
			data, label := it.Minibatch()
			shape := data.Shape()
			require.Len(t, shape, 4)
			assert.Equal(t, label.Shape()[0], shape[0])
			assert.Equal(t, []int64{28, 28}, shape[2:])
			samples += shape[0]
		}
		assert.NoError(t, it.Err())
		assert.Equal(t, int64(6), samples)
	}
}

func TestNewTgzSourceRejectsTooManyLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wide.tar.gz")
	labels := make([]string, NumClasses+1)
	for i := range labels {
		labels[i] = fmt.Sprintf("c%03d", i)
	}
	writeTgz(t, path, labels, 1)

	_, err := NewTgzSource(path)
	assert.Error(t, err)
}

func TestNewTgzSourceMissingFile(t *testing.T) {
	_, err := NewTgzSource(filepath.Join(t.TempDir(), "nope.tar.gz"))
	assert.Error(t, err)
}
