package engine

import (
	"encoding/gob"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckpointRoundTrip(t *testing.T) {
	gob.Register(map[string]float64{})
	path := filepath.Join(t.TempDir(), "model.ckpt")

	ck := Checkpoint{
		Epoch:          4,
		GlobalStep:     123,
		TrainingConfig: map[string]float64{"lr": 0.01, "momentum": 0.5},
	}
	require.NoError(t, ck.Save(path))

	got, err := LoadCheckpoint(path)
	require.NoError(t, err)
	require.Equal(t, ck, got)
}

func TestCheckpointSaveReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.ckpt")
	require.NoError(t, Checkpoint{Epoch: 1}.Save(path))
	require.NoError(t, Checkpoint{Epoch: 2}.Save(path))

	got, err := LoadCheckpoint(path)
	require.NoError(t, err)
	require.Equal(t, 2, got.Epoch)
}

func TestLoadCheckpointMissing(t *testing.T) {
	_, err := LoadCheckpoint(filepath.Join(t.TempDir(), "nope.ckpt"))
	require.Error(t, err)
}
