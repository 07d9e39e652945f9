package engine

import (
	"errors"
	"fmt"

	torch "github.com/wangkuiyi/gotorch"

	"coach/data"
	"coach/ml"
)

// MalformedBatchError reports a dataloader batch whose length is neither 2
// nor 3.
type MalformedBatchError struct {
	Len int
}

func (e *MalformedBatchError) Error() string {
	return fmt.Sprintf("expected batch to have 2 or 3 elements, received %d", e.Len)
}

// System wires a model, its optimizers, a loss evaluator and data sources
// into the Module contract. It holds references only: construction assigns
// fields and nothing else, so a System is cheap to build and safe to
// discard.
//
// System is meant to be embedded. Go promotes methods without virtual
// dispatch, so a wrapper that redefines CommonStep does not change what the
// promoted TrainingStep and ValidationStep call; wrappers wanting a
// different shared computation override both step methods.
type System struct {
	model      ml.Model
	optimizers []ml.Optimizer
	loss       ml.Loss
	train      data.Source
	validation data.Source
	schedulers []ml.Scheduler
	config     any
}

// Option tweaks a System at construction.
type Option func(*System)

// WithValidationSource attaches a validation source; without one the
// trainer skips validation passes.
func WithValidationSource(src data.Source) Option {
	return func(s *System) { s.validation = src }
}

// WithScheduler appends a scheduler stepped once per epoch.
func WithScheduler(sched ml.Scheduler) Option {
	return func(s *System) { s.schedulers = append(s.schedulers, sched) }
}

// WithOptimizer appends an extra optimizer driven alongside the primary
// one, in registration order.
func WithOptimizer(opt ml.Optimizer) Option {
	return func(s *System) { s.optimizers = append(s.optimizers, opt) }
}

// WithConfig attaches an opaque config value, copied into every checkpoint
// by OnSaveCheckpoint.
func WithConfig(cfg any) Option {
	return func(s *System) { s.config = cfg }
}

// NewSystem builds a System around the required collaborators. Nothing is
// validated here; a nil collaborator surfaces when first used.
func NewSystem(model ml.Model, optimizer ml.Optimizer, loss ml.Loss, train data.Source, opts ...Option) *System {
	s := &System{
		model:      model,
		optimizers: []ml.Optimizer{optimizer},
		loss:       loss,
		train:      train,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Forward applies the model.
func (s *System) Forward(x torch.Tensor) torch.Tensor {
	return s.model.Forward(x)
}

// UnpackBatch splits a batch into inputs, targets and infos. Two-element
// batches get a fresh empty infos map; any length other than 2 or 3 is a
// *MalformedBatchError.
func (s *System) UnpackBatch(batch data.Batch) (torch.Tensor, torch.Tensor, data.Infos, error) {
	var infos data.Infos
	switch len(batch) {
	case 2:
		infos = data.Infos{}
	case 3:
		infos = batch[2].(data.Infos)
	default:
		return torch.Tensor{}, torch.Tensor{}, nil, &MalformedBatchError{Len: len(batch)}
	}
	return batch[0].(torch.Tensor), batch[1].(torch.Tensor), infos, nil
}

// CommonStep is the computation shared by training and validation: unpack
// the batch, run the model, hand targets, estimates and infos to the loss.
func (s *System) CommonStep(batch data.Batch, batchIdx int) (torch.Tensor, error) {
	inputs, targets, infos, err := s.UnpackBatch(batch)
	if err != nil {
		return torch.Tensor{}, err
	}
	estimates := s.model.Forward(inputs)
	return s.loss.Compute(targets, estimates, infos)
}

func (s *System) TrainingStep(batch data.Batch, batchIdx int) (TrainResult, error) {
	loss, err := s.CommonStep(batch, batchIdx)
	if err != nil {
		return TrainResult{}, err
	}
	return TrainResult{
		Loss: loss,
		Log:  map[string]float32{"train_loss": loss.Item().(float32)},
	}, nil
}

func (s *System) ValidationStep(batch data.Batch, batchIdx int) (ValidationResult, error) {
	loss, err := s.CommonStep(batch, batchIdx)
	if err != nil {
		return ValidationResult{}, err
	}
	return ValidationResult{ValLoss: loss.Item().(float32)}, nil
}

// ValidationEnd averages the per-batch losses. The same map backs Log and
// ProgressBar.
func (s *System) ValidationEnd(outputs []ValidationResult) (ValidationSummary, error) {
	if len(outputs) == 0 {
		return ValidationSummary{}, errors.New("validation produced no outputs to aggregate")
	}
	var sum float64
	for _, out := range outputs {
		sum += float64(out.ValLoss)
	}
	avg := float32(sum / float64(len(outputs)))
	logs := map[string]float32{"val_loss": avg}
	return ValidationSummary{ValLoss: avg, Log: logs, ProgressBar: logs}, nil
}

func (s *System) ConfigureOptimizers() ([]ml.Optimizer, []ml.Scheduler) {
	return s.optimizers, s.schedulers
}

func (s *System) TrainDataSource() data.Source      { return s.train }
func (s *System) ValidationDataSource() data.Source { return s.validation }

// OnSaveCheckpoint stores the config value on the checkpoint and leaves
// everything else alone.
func (s *System) OnSaveCheckpoint(ck Checkpoint) Checkpoint {
	ck.TrainingConfig = s.config
	return ck
}

// StateDict exposes the model parameters when the model can produce them.
func (s *System) StateDict() map[string]torch.Tensor {
	if sd, ok := s.model.(ml.StateDicter); ok {
		return sd.StateDict()
	}
	return nil
}

func (s *System) OnBatchStart(batch data.Batch) {}
func (s *System) OnBatchEnd()                   {}
func (s *System) OnEpochStart()                 {}
func (s *System) OnEpochEnd()                   {}
