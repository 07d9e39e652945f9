package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	torch "github.com/wangkuiyi/gotorch"

	"coach/engine"
)

func TestPredictRejectsForeignModelState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.ckpt")
	ck := engine.Checkpoint{
		Epoch:      1,
		ModelState: map[string]torch.Tensor{"not.a.layer": torch.NewTensor([]float32{1})},
	}
	require.NoError(t, ck.Save(path))

	err := predict(context.Background(), []string{"-load", path})
	require.Error(t, err)
	require.ErrorContains(t, err, "restore model state")
}

func TestPredictRejectsEmptyCheckpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.ckpt")
	require.NoError(t, engine.Checkpoint{Epoch: 3}.Save(path))

	err := predict(context.Background(), []string{"-load", path})
	require.Error(t, err)
	require.ErrorContains(t, err, "no model state")
}
