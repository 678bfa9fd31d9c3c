package ml

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/wangkuiyi/gotorch/vision/transforms"
	"gocv.io/x/gocv"
)

// Prediction is the most likely class for one image file.
type Prediction struct {
	File  string
	Class int64
}

// Predict classifies every file matched by the colon separated glob
// patterns with the checkpoint at modelPath. Unlike LoadOrCreate it never
// creates a checkpoint.
func Predict(ctx Context, modelPath string, patterns []string) ([]Prediction, error) {
	net := DaNet(ctx)
	if e := LoadCheckpoint(net, modelPath, ctx.Device); e != nil {
		return nil, e
	}
	net.Train(false)

	var preds []Prediction
	for _, in := range patterns {
		for _, pa := range strings.Split(in, ":") {
			fns, e := filepath.Glob(pa)
			if e != nil {
				return preds, errors.Wrapf(e, "bad pattern %q", pa)
			}
			for _, fn := range fns {
				class, e := predictFile(ctx, fn, net)
				if e != nil {
					return preds, e
				}
				preds = append(preds, Prediction{File: fn, Class: class})
			}
		}
	}
	return preds, nil
}

func predictFile(ctx Context, fn string, m *DaNetModule) (int64, error) {
	img := gocv.IMRead(fn, gocv.IMReadGrayScale)
	defer img.Close()
	if img.Empty() {
		return 0, errors.Errorf("cannot read image %s", fn)
	}

	t := transforms.ToTensor().Run(img)
	x := transforms.Normalize(grayMean, grayStd).Run(t)
	shape := x.Shape()
	x = x.View(1, InputChannels, shape[len(shape)-2], shape[len(shape)-1])
	x = x.To(ctx.Device, x.Dtype())
	return m.Forward(x).Argmax().Item().(int64), nil
}
