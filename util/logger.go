package util

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/uuid"
)

var Logger *log.Logger = log.Default()

// NewRunID returns a short identifier used to name a run's log files.
func NewRunID() string {
	return uuid.NewString()[:8]
}

// InitLogger sends Logger and the standard logger to stdout and to
// run_<runID>.log in dir.
func InitLogger(dir, runID string) (io.Closer, error) {
	fname := fmt.Sprintf("%s/run_%s.log", dir, runID)
	file, err := os.Create(fname)
	if err != nil {
		return nil, err
	}
	mw := io.MultiWriter(os.Stdout, file)
	Logger = log.New(mw, "", log.LstdFlags)
	log.SetOutput(mw)
	return file, nil
}
