package ml

import (
	"math"
)

// StepLR decays the learning rate by gamma every stepSize epochs, starting
// from base. Step is called once per epoch; stepSize must be positive.
// The constructor applies the epoch-0 rate right away.
type StepLR struct {
	target   LRSetter
	base     float64
	stepSize int
	gamma    float64
	epoch    int
}

func NewStepLR(target LRSetter, base float64, stepSize int, gamma float64) *StepLR {
	s := &StepLR{target: target, base: base, stepSize: stepSize, gamma: gamma}
	s.target.SetLR(s.LR(0))
	return s
}

func (s *StepLR) Step() {
	s.epoch++
	s.target.SetLR(s.LR(s.epoch))
}

// LR reports the rate in effect for the given epoch.
func (s *StepLR) LR(epoch int) float64 {
	return s.base * math.Pow(s.gamma, float64(epoch/s.stepSize))
}

// WarmupCosine ramps linearly up to peak over the warmup epochs, then
// follows a cosine from peak down to a floor of peak/10 at decayEpochs,
// holding the floor afterwards. The constructor applies the epoch-0 rate
// right away.
type WarmupCosine struct {
	target LRSetter
	peak   float64
	floor  float64
	warmup int
	decay  int
	epoch  int
}

func NewWarmupCosine(target LRSetter, peak float64, warmupEpochs, decayEpochs int) *WarmupCosine {
	s := &WarmupCosine{
		target: target,
		peak:   peak,
		floor:  peak / 10,
		warmup: warmupEpochs,
		decay:  decayEpochs,
	}
	s.target.SetLR(s.LR(0))
	return s
}

func (s *WarmupCosine) Step() {
	s.epoch++
	s.target.SetLR(s.LR(s.epoch))
}

// LR reports the rate in effect for the given epoch.
func (s *WarmupCosine) LR(epoch int) float64 {
	if epoch < s.warmup {
		return s.peak * float64(epoch+1) / float64(s.warmup)
	}
	if epoch >= s.decay {
		return s.floor
	}
	frac := float64(epoch-s.warmup) / float64(s.decay-s.warmup)
	coeff := 0.5 * (1 + math.Cos(math.Pi*frac))
	return s.floor + coeff*(s.peak-s.floor)
}
