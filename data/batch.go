package data

import (
	torch "github.com/wangkuiyi/gotorch"
)

// Infos carries optional named values alongside a batch, handed through to
// the loss evaluator untouched. Values are typically tensors (class
// weights, masks) but may be anything the loss knows how to read.
type Infos map[string]any

// Batch is one dataloader output: [inputs, targets] or
// [inputs, targets, infos]. Elements stay positional; length is validated
// by the consumer when the batch is unpacked.
type Batch []any

// NewBatch builds a two-element batch.
func NewBatch(inputs, targets torch.Tensor) Batch {
	return Batch{inputs, targets}
}

// NewBatchWithInfos builds a three-element batch.
func NewBatchWithInfos(inputs, targets torch.Tensor, infos Infos) Batch {
	return Batch{inputs, targets, infos}
}
