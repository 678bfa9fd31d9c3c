package ml

import (
	"time"

	"danet/util"

	"github.com/pkg/errors"
	torch "github.com/wangkuiyi/gotorch"
	F "github.com/wangkuiyi/gotorch/nn/functional"
)

const (
	DefaultEpochs   = 5
	DefaultLogEvery = 10
)

// RunConfig holds the parameters of a training run. It does not change
// once the run starts.
type RunConfig struct {
	BatchSize int
	LR        float64
	Momentum  float64
	ModelPath string
	Epochs    int
	LogEvery  int
}

func (c *RunConfig) setDefaults() {
	if c.Epochs <= 0 {
		c.Epochs = DefaultEpochs
	}
	if c.LogEvery <= 0 {
		c.LogEvery = DefaultLogEvery
	}
}

// Validate verifies the config is runnable.
func (c RunConfig) Validate() error {
	if c.BatchSize <= 0 {
		return errors.Errorf("batch size must be > 0, got %d", c.BatchSize)
	}
	if c.LR <= 0 {
		return errors.Errorf("learning rate must be > 0, got %g", c.LR)
	}
	if c.Momentum < 0 || c.Momentum >= 1 {
		return errors.Errorf("momentum must be in [0, 1), got %g", c.Momentum)
	}
	if c.ModelPath == "" {
		return errors.New("model path is empty")
	}
	return nil
}

// ShouldReport tells whether the 0-based batch index gets a progress line.
func (c RunConfig) ShouldReport(batch int) bool {
	return batch%c.LogEvery == 0
}

// StepResult is what a single optimizer step observed.
type StepResult struct {
	Loss    float32
	Correct int64
	Samples int64
}

// Accuracy is the fraction of rows whose argmax matched the label.
func (r StepResult) Accuracy() float64 {
	if r.Samples == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Samples)
}

// RunStats summarizes a finished run.
type RunStats struct {
	Epochs   int
	Batches  int
	Samples  int64
	LastLoss float32
	Elapsed  time.Duration
}

// Trainer updates a DaNet in place with SGD and momentum.
type Trainer struct {
	ctx Context
	net *DaNetModule
	opt torch.Optimizer
	cfg RunConfig
}

func NewTrainer(ctx Context, net *DaNetModule, cfg RunConfig) (*Trainer, error) {
	cfg.setDefaults()
	if e := cfg.Validate(); e != nil {
		return nil, e
	}
	opt := torch.SGD(cfg.LR, cfg.Momentum, 0, 0, false)
	opt.AddParameters(net.Parameters())
	net.Train(true)
	return &Trainer{ctx: ctx, net: net, opt: opt, cfg: cfg}, nil
}

func (t *Trainer) Config() RunConfig {
	return t.cfg
}

// Loss runs a forward pass and returns the mean negative log-likelihood
// without touching the parameters.
func (t *Trainer) Loss(data, label torch.Tensor) float32 {
	pred := t.net.Forward(data.To(t.ctx.Device, data.Dtype()))
	loss := F.NllLoss(pred, label.To(t.ctx.Device, label.Dtype()), torch.Tensor{}, -100, "mean")
	return loss.Item().(float32)
}

// Step performs one optimizer step on a minibatch.
func (t *Trainer) Step(data, label torch.Tensor) StepResult {
	t.opt.ZeroGrad()

	data = data.To(t.ctx.Device, data.Dtype())
	label = label.To(t.ctx.Device, label.Dtype())
	pred := t.net.Forward(data)
	loss := F.NllLoss(pred, label, torch.Tensor{}, -100, "mean")

	argmax := pred.Argmax(1)
	correct := argmax.Eq(label.View(argmax.Shape()...)).Sum(map[string]interface{}{"dim": 0, "keepDim": false}).Item().(int64)

	loss.Backward()
	t.opt.Step()

	return StepResult{
		Loss:    loss.Item().(float32),
		Correct: correct,
		Samples: label.Shape()[0],
	}
}

// Run trains for cfg.Epochs passes over source and overwrites the
// checkpoint at cfg.ModelPath after every pass. The first error ends the
// run; an epoch that did not finish is never saved.
func (t *Trainer) Run(source BatchSource) (RunStats, error) {
	// imageloader calls torch.GC from Scan
	defer torch.FinishGC()

	var stats RunStats
	startTime := time.Now()
	for epoch := 0; epoch < t.cfg.Epochs; epoch++ {
		batches, e := source.Batches(t.cfg.BatchSize)
		if e != nil {
			return stats, errors.Wrapf(e, "epoch %d", epoch+1)
		}
		for batch := 0; batches.Scan(); batch++ {
			data, label := batches.Minibatch()
			res := t.Step(data, label)

			stats.Batches++
			stats.Samples += res.Samples
			stats.LastLoss = res.Loss
			if t.cfg.ShouldReport(batch) {
				util.Logger.Printf("Epoch: %d, Batch: %d --- Loss: %20f, Acc: %v", epoch+1, batch, res.Loss, res.Accuracy())
				util.Plot(epoch+1, batch, res.Loss, res.Accuracy())
			}
		}
		if e := batches.Err(); e != nil {
			return stats, errors.Wrapf(e, "epoch %d", epoch+1)
		}

		util.Logger.Println("Model saved:", t.cfg.ModelPath)
		if e := SaveCheckpoint(t.net, t.cfg.ModelPath); e != nil {
			return stats, e
		}
		stats.Epochs++
	}
	stats.Elapsed = time.Since(startTime)
	util.Logger.Printf("Execution time: %v seconds.", stats.Elapsed.Seconds())
	return stats, nil
}
