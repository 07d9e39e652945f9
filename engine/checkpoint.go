package engine

import (
	"encoding/gob"
	"fmt"
	"os"

	torch "github.com/wangkuiyi/gotorch"
)

// Checkpoint is the training state written after each epoch. TrainingConfig
// holds whatever value the module attached in OnSaveCheckpoint; callers
// storing custom types there must gob.Register them before Save and before
// LoadCheckpoint.
type Checkpoint struct {
	Epoch          int
	GlobalStep     int
	ModelState     map[string]torch.Tensor
	TrainingConfig any
}

// Save gob-encodes the checkpoint to path, replacing any previous file.
func (ck Checkpoint) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create checkpoint %s: %w", path, err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(ck); err != nil {
		return fmt.Errorf("encode checkpoint %s: %w", path, err)
	}
	return nil
}

// LoadCheckpoint reads a checkpoint written by Save.
func LoadCheckpoint(path string) (Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return Checkpoint{}, fmt.Errorf("open checkpoint %s: %w", path, err)
	}
	defer f.Close()
	var ck Checkpoint
	if err := gob.NewDecoder(f).Decode(&ck); err != nil {
		return Checkpoint{}, fmt.Errorf("decode checkpoint %s: %w", path, err)
	}
	return ck, nil
}
