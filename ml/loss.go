package ml

import (
	torch "github.com/wangkuiyi/gotorch"
	F "github.com/wangkuiyi/gotorch/nn/functional"

	"coach/data"
)

// Loss scores model estimates against targets. Infos carries batch-level
// extras; implementations ignore keys they do not know.
type Loss interface {
	Compute(targets, estimates torch.Tensor, infos data.Infos) (torch.Tensor, error)
}

// WeightKey names the Infos entry holding a per-class weight tensor.
// Batches without it weigh classes equally.
const WeightKey = "weight"

// NLLLoss is the mean negative log likelihood over log-probabilities, the
// pairing for models that already emit LogSoftmax outputs.
type NLLLoss struct{}

func (NLLLoss) Compute(targets, estimates torch.Tensor, infos data.Infos) (torch.Tensor, error) {
	return F.NllLoss(estimates, targets, classWeights(infos), -100, "mean"), nil
}

// CrossEntropyLoss composes LogSoftmax and NLL, for models emitting raw
// logits.
type CrossEntropyLoss struct{}

func (CrossEntropyLoss) Compute(targets, estimates torch.Tensor, infos data.Infos) (torch.Tensor, error) {
	return F.NllLoss(F.LogSoftmax(estimates, 1), targets, classWeights(infos), -100, "mean"), nil
}

func classWeights(infos data.Infos) torch.Tensor {
	if w, ok := infos[WeightKey].(torch.Tensor); ok {
		return w
	}
	return torch.Tensor{}
}
