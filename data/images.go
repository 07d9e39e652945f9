package data

import (
	"time"

	torch "github.com/wangkuiyi/gotorch"
	"github.com/wangkuiyi/gotorch/vision/imageloader"
	"github.com/wangkuiyi/gotorch/vision/transforms"
)

// ImageConfig controls how an ImageTarball decodes and batches its images.
// Zero values fall back to the MNIST settings used across this repo.
type ImageConfig struct {
	BatchSize int
	Mean      []float32
	Stddev    []float32
	ColorMode string // "gray" or "rgb"
	Seed      int64  // sample shuffle seed; 0 draws one from the clock
}

// ImageTarball streams labelled images out of a .tgz archive with one
// directory per label, decoded and normalized by the gotorch image
// pipeline. Reset re-opens the archive so every epoch sees the full set.
type ImageTarball struct {
	path   string
	vocab  map[string]int
	cfg    ImageConfig
	loader *imageloader.ImageLoader
	cur    Batch
	err    error
}

// BuildVocabulary maps the label directory names in the tarball to class
// ids, shared between the training and validation archives.
func BuildVocabulary(path string) (map[string]int, error) {
	return imageloader.BuildLabelVocabularyFromTgz(path)
}

func NewImageTarball(path string, vocab map[string]int, cfg ImageConfig) *ImageTarball {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 64
	}
	if len(cfg.Mean) == 0 {
		cfg.Mean, cfg.Stddev = []float32{0.1307}, []float32{0.3081}
	}
	if cfg.ColorMode == "" {
		cfg.ColorMode = "gray"
	}
	return &ImageTarball{path: path, vocab: vocab, cfg: cfg}
}

func (s *ImageTarball) Reset() error {
	seed := s.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	trans := transforms.Compose(transforms.ToTensor(), transforms.Normalize(s.cfg.Mean, s.cfg.Stddev))
	loader, err := imageloader.New(s.path, s.vocab, trans, s.cfg.BatchSize, s.cfg.BatchSize,
		seed, torch.IsCUDAAvailable(), s.cfg.ColorMode)
	if err != nil {
		s.err = err
		return err
	}
	s.loader = loader
	s.err = nil
	return nil
}

func (s *ImageTarball) Scan() bool {
	if s.loader == nil || s.err != nil {
		return false
	}
	if !s.loader.Scan() {
		// exhaustion or failure; Err tells them apart
		s.err = s.loader.Err()
		return false
	}
	inputs, targets := s.loader.Minibatch()
	s.cur = NewBatch(inputs, targets)
	return true
}

func (s *ImageTarball) Batch() Batch { return s.cur }

func (s *ImageTarball) Err() error { return s.err }
