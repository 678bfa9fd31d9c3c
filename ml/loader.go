package ml

import (
	"time"

	"github.com/pkg/errors"
	torch "github.com/wangkuiyi/gotorch"
	"github.com/wangkuiyi/gotorch/vision/imageloader"
	"github.com/wangkuiyi/gotorch/vision/transforms"
)

var (
	grayMean = []float32{0.1307}
	grayStd  = []float32{0.3081}
)

var _ BatchIterator = (*imageloader.ImageLoader)(nil)

// TgzSource reads grayscale images from a tarball whose directory names are
// the class labels.
type TgzSource struct {
	Path  string
	Vocab map[string]int
	Seed  int64
}

// NewTgzSource builds the label vocabulary of the tarball at path.
func NewTgzSource(path string) (*TgzSource, error) {
	vocab, e := imageloader.BuildLabelVocabularyFromTgz(path)
	if e != nil {
		return nil, errors.Wrapf(e, "build label vocabulary from %s", path)
	}
	if len(vocab) > NumClasses {
		return nil, errors.Errorf("%s has %d labels, the network has %d classes", path, len(vocab), NumClasses)
	}
	return &TgzSource{Path: path, Vocab: vocab, Seed: time.Now().UnixNano()}, nil
}

func grayTransforms() *transforms.ComposeTransformer {
	return transforms.Compose(transforms.ToTensor(), transforms.Normalize(grayMean, grayStd))
}

// Batches returns a new shuffled pass over the tarball. Each call advances
// the shuffle seed so consecutive epochs see different orders.
func (s *TgzSource) Batches(batchSize int) (BatchIterator, error) {
	s.Seed++
	loader, e := imageloader.New(s.Path, s.Vocab, grayTransforms(), batchSize, batchSize, s.Seed, torch.IsCUDAAvailable(), "gray")
	if e != nil {
		return nil, errors.Wrapf(e, "open %s", s.Path)
	}
	return loader, nil
}
