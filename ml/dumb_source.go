package ml

import (
	"math/rand"

	torch "github.com/wangkuiyi/gotorch"
)

// DumbSource yields NumBatches random minibatches of 1-channel H x W images
// with labels below NumClasses. It stands in for a real dataset in dry runs.
type DumbSource struct {
	NumBatches int
	H, W       int64
	Seed       int64
}

func (s DumbSource) Batches(batchSize int) (BatchIterator, error) {
	return &dumbIterator{
		src:       s,
		batchSize: int64(batchSize),
		rng:       rand.New(rand.NewSource(s.Seed)),
	}, nil
}

type dumbIterator struct {
	src       DumbSource
	batchSize int64
	rng       *rand.Rand
	n         int
	data      torch.Tensor
	label     torch.Tensor
}

func (it *dumbIterator) Scan() bool {
	if it.n >= it.src.NumBatches {
		return false
	}
	it.n++
	labels := make([]int64, it.batchSize)
	for i := range labels {
		labels[i] = int64(it.rng.Intn(NumClasses))
	}
	it.data = torch.RandN([]int64{it.batchSize, InputChannels, it.src.H, it.src.W}, false)
	it.label = torch.NewTensor(labels)
	return true
}

func (it *dumbIterator) Minibatch() (torch.Tensor, torch.Tensor) {
	return it.data, it.label
}

func (it *dumbIterator) Err() error {
	return nil
}
