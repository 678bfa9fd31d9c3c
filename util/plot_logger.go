package util

import (
	"fmt"
	"io"
	"log"
	"os"
)

var PlotLogger *log.Logger = log.New(io.Discard, "", 0)

// InitPlotLogger writes "epoch batch loss acc" lines for a run to
// plot_logs_<runID>_<tag>.txt in dir.
func InitPlotLogger(dir, runID, tag string) (io.Closer, error) {
	fname := fmt.Sprintf("%s/plot_logs_%s_%s.txt", dir, runID, tag)
	file, err := os.Create(fname)
	if err != nil {
		return nil, err
	}
	PlotLogger = log.New(file, "", 0)
	return file, nil
}

func Plot(epoch, batch int, loss float32, acc float64) {
	PlotLogger.Printf("%d %d %f %f", epoch, batch, loss, acc)
}
