package engine

import (
	torch "github.com/wangkuiyi/gotorch"

	"coach/data"
	"coach/ml"
)

// TrainResult is what a training step hands back to the trainer: the loss
// tensor to backpropagate plus scalar values to log.
type TrainResult struct {
	Loss torch.Tensor
	Log  map[string]float32
}

// ValidationResult is the per-batch outcome of a validation step.
type ValidationResult struct {
	ValLoss float32
}

// ValidationSummary aggregates one validation pass. Log and ProgressBar
// carry the same values keyed for the two display channels.
type ValidationSummary struct {
	ValLoss     float32
	Log         map[string]float32
	ProgressBar map[string]float32
}

// Module is the contract the Trainer drives. System implements it with the
// standard behavior; embed a *System to customize individual callbacks.
type Module interface {
	// TrainingStep computes the loss for one training batch. The trainer
	// owns gradient zeroing, backpropagation and optimizer stepping.
	TrainingStep(batch data.Batch, batchIdx int) (TrainResult, error)

	// ValidationStep scores one validation batch.
	ValidationStep(batch data.Batch, batchIdx int) (ValidationResult, error)

	// ValidationEnd folds the per-batch results of a pass into a summary.
	// The trainer only calls it with at least one result.
	ValidationEnd(outputs []ValidationResult) (ValidationSummary, error)

	// ConfigureOptimizers returns the optimizers to drive and the
	// schedulers to step once per epoch; the scheduler slice may be empty.
	ConfigureOptimizers() ([]ml.Optimizer, []ml.Scheduler)

	// TrainDataSource must not return nil. ValidationDataSource may return
	// nil, which skips the validation pass.
	TrainDataSource() data.Source
	ValidationDataSource() data.Source

	// OnSaveCheckpoint lets the module amend a checkpoint before it is
	// written.
	OnSaveCheckpoint(ck Checkpoint) Checkpoint

	// Lifecycle notifications; System's are all no-ops.
	OnBatchStart(batch data.Batch)
	OnBatchEnd()
	OnEpochStart()
	OnEpochEnd()
}
