package ml

import (
	torch "github.com/wangkuiyi/gotorch"
)

// Layer is a composable unit with a single forward transformation.
type Layer interface {
	Forward(x torch.Tensor) torch.Tensor
}

// BatchIterator yields one epoch of minibatches. Its method set matches
// imageloader.ImageLoader so the gotorch loader can be used directly.
// Err reports why Scan stopped early; nil means the epoch is complete.
type BatchIterator interface {
	Scan() bool
	Minibatch() (data torch.Tensor, label torch.Tensor)
	Err() error
}

// BatchSource produces a fresh, finite BatchIterator for every epoch.
type BatchSource interface {
	Batches(batchSize int) (BatchIterator, error)
}

var (
	_ Layer = (*InceptionModule)(nil)
	_ Layer = (*DaNetModule)(nil)
)
