package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chainguard-dev/clog"
	torch "github.com/wangkuiyi/gotorch"

	"coach/ml"
)

// Trainer drives a Module: epochs over the train source with gradient
// updates, a validation pass per epoch when the module provides a source,
// per-epoch scheduler steps and optional checkpointing. It runs on the
// calling goroutine; the zero value is usable.
type Trainer struct {
	MaxEpochs      int
	LogEvery       int    // batches between progress lines; 0 means 50
	CheckpointPath string // write a checkpoint after every epoch when set
	HistoryPath    string // write the per-epoch CSV after the run when set

	history History
}

// History returns the per-epoch record of the last Fit.
func (t *Trainer) History() *History { return &t.history }

// Fit trains m for MaxEpochs. Module and source errors abort the run,
// wrapped with their position; the context is checked between batches.
func (t *Trainer) Fit(ctx context.Context, m Module) error {
	log := clog.FromContext(ctx)
	logEvery := t.LogEvery
	if logEvery <= 0 {
		logEvery = 50
	}
	optimizers, schedulers := m.ConfigureOptimizers()
	if len(optimizers) == 0 {
		return errors.New("module configured no optimizers")
	}
	train := m.TrainDataSource()
	if train == nil {
		return errors.New("module has no train data source")
	}
	defer torch.FinishGC()

	t.history = History{}
	globalStep := 0
	for epoch := 0; epoch < t.MaxEpochs; epoch++ {
		m.OnEpochStart()
		if err := train.Reset(); err != nil {
			return fmt.Errorf("reset train source (epoch %d): %w", epoch, err)
		}

		start := time.Now()
		batches := 0
		var lastLoss float32
		for train.Scan() {
			if err := ctx.Err(); err != nil {
				return err
			}
			batch := train.Batch()
			m.OnBatchStart(batch)
			for _, opt := range optimizers {
				opt.ZeroGrad()
			}
			result, err := m.TrainingStep(batch, batches)
			if err != nil {
				return fmt.Errorf("training step %d (epoch %d): %w", batches, epoch, err)
			}
			result.Loss.Backward()
			for _, opt := range optimizers {
				opt.Step()
			}
			m.OnBatchEnd()

			lastLoss = result.Loss.Item().(float32)
			trainLossGauge.Set(float64(lastLoss))
			stepsTotal.Inc()
			globalStep++
			batches++
			if batches%logEvery == 0 {
				line := log
				for k, v := range result.Log {
					line = line.With(k, v)
				}
				line.Infof("epoch %d step %d", epoch, batches)
			}
		}
		if err := train.Err(); err != nil {
			return fmt.Errorf("train source (epoch %d): %w", epoch, err)
		}
		throughput := float64(batches) / time.Since(start).Seconds()

		point := HistoryPoint{Epoch: epoch, TrainLoss: lastLoss, Throughput: throughput}
		summary, validated, err := t.Validate(ctx, m)
		if err != nil {
			return fmt.Errorf("validation (epoch %d): %w", epoch, err)
		}
		if validated {
			point.ValLoss = summary.ValLoss
			point.Validated = true
			valLossGauge.Set(float64(summary.ValLoss))
		}

		for _, sched := range schedulers {
			sched.Step()
		}
		m.OnEpochEnd()
		epochsTotal.Inc()
		t.history.Append(point)

		if validated {
			log.Infof("epoch %d: train_loss %.4f, val_loss %.4f, %.1f batches/sec",
				epoch, lastLoss, summary.ValLoss, throughput)
		} else {
			log.Infof("epoch %d: train_loss %.4f, %.1f batches/sec", epoch, lastLoss, throughput)
		}

		if t.CheckpointPath != "" {
			ck := Checkpoint{Epoch: epoch, GlobalStep: globalStep}
			if sd, ok := m.(ml.StateDicter); ok {
				ck.ModelState = sd.StateDict()
			}
			ck = m.OnSaveCheckpoint(ck)
			if err := ck.Save(t.CheckpointPath); err != nil {
				return err
			}
		}
	}

	if t.HistoryPath != "" {
		if err := t.history.WriteFile(t.HistoryPath); err != nil {
			return fmt.Errorf("write history: %w", err)
		}
	}
	return nil
}

// Validate runs one validation pass over the module's validation source.
// The second return is false when the module has no source or the source
// is empty.
func (t *Trainer) Validate(ctx context.Context, m Module) (ValidationSummary, bool, error) {
	src := m.ValidationDataSource()
	if src == nil {
		return ValidationSummary{}, false, nil
	}
	if err := src.Reset(); err != nil {
		return ValidationSummary{}, false, fmt.Errorf("reset validation source: %w", err)
	}
	var outputs []ValidationResult
	for src.Scan() {
		if err := ctx.Err(); err != nil {
			return ValidationSummary{}, false, err
		}
		out, err := m.ValidationStep(src.Batch(), len(outputs))
		if err != nil {
			return ValidationSummary{}, false, fmt.Errorf("validation step %d: %w", len(outputs), err)
		}
		outputs = append(outputs, out)
	}
	if err := src.Err(); err != nil {
		return ValidationSummary{}, false, fmt.Errorf("validation source: %w", err)
	}
	if len(outputs) == 0 {
		return ValidationSummary{}, false, nil
	}
	summary, err := m.ValidationEnd(outputs)
	if err != nil {
		return ValidationSummary{}, false, err
	}
	return summary, true, nil
}
