package ml

import (
	torch "github.com/wangkuiyi/gotorch"
)

// Model is anything that maps an input tensor to an output tensor.
type Model interface {
	Forward(x torch.Tensor) torch.Tensor
}

// StateDicter is the optional capability of exposing named parameters for
// checkpointing. Modules built on gotorch's nn.Module provide it.
type StateDicter interface {
	StateDict() map[string]torch.Tensor
}

// Optimizer updates parameters from their accumulated gradients. The
// values returned by torch.SGD and torch.Adam satisfy it directly.
type Optimizer interface {
	ZeroGrad()
	Step()
}

// LRSetter is implemented by optimizers whose learning rate can be changed
// mid-run; torch.Optimizer is one.
type LRSetter interface {
	SetLR(lr float64)
}

// Scheduler adjusts optimizer hyperparameters between epochs.
type Scheduler interface {
	Step()
}

// DetectDevice picks CUDA when the runtime reports it, CPU otherwise.
func DetectDevice() torch.Device {
	if torch.IsCUDAAvailable() {
		return torch.NewDevice("cuda")
	}
	return torch.NewDevice("cpu")
}
