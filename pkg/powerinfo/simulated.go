package powerinfo

import (
	"math"
	"sync"
)

const (
	defaultSimulatedLevel   = 0.8
	defaultDischargeStep    = 0.01
	defaultChargeStep       = 0.02
	defaultRechargeAt       = 0.2
	defaultFullHoldSamples  = 3
	levelPrecisionDecimals  = 100
	lowPowerModeAutoEnabled = 0.2
)

// SimulatedSampler produces readings for hosts without a battery. Each
// reading is derived from the previous one: the level drains while
// unplugged, charges back up once it reaches RechargeAt, stays full for
// FullHoldSamples readings and then drains again.
type SimulatedSampler struct {
	DischargeStep   float64
	ChargeStep      float64
	RechargeAt      float64
	FullHoldSamples int

	mu       sync.Mutex
	last     Reading
	started  bool
	heldFull int
}

// NewSimulatedSampler returns a sampler starting at the given reading.
func NewSimulatedSampler(start Reading) *SimulatedSampler {
	start.Level = ClampLevel(start.Level)
	return &SimulatedSampler{
		DischargeStep:   defaultDischargeStep,
		ChargeStep:      defaultChargeStep,
		RechargeAt:      defaultRechargeAt,
		FullHoldSamples: defaultFullHoldSamples,
		last:            start,
	}
}

// NewDefaultSimulatedSampler starts unplugged at 80%.
func NewDefaultSimulatedSampler() *SimulatedSampler {
	return NewSimulatedSampler(Reading{Level: defaultSimulatedLevel, State: Unplugged})
}

func (s *SimulatedSampler) Sample() (Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		s.started = true
		return s.last, nil
	}

	next := s.last
	switch s.last.State {
	case Charging:
		next.Level = roundLevel(s.last.Level + s.ChargeStep)
		if next.Level >= 1 {
			next.Level = 1
			next.State = Full
			s.heldFull = 0
		}
	case Full:
		s.heldFull++
		if s.heldFull >= s.FullHoldSamples {
			next.State = Unplugged
		}
	default:
		next.State = Unplugged
		next.Level = roundLevel(s.last.Level - s.DischargeStep)
		if next.Level <= s.RechargeAt {
			next.State = Charging
		}
	}
	next.IsLowPowerMode = next.State == Unplugged && next.Level <= lowPowerModeAutoEnabled

	s.last = next
	return next, nil
}

// roundLevel keeps repeated float steps on whole percents.
func roundLevel(l float64) float64 {
	return ClampLevel(math.Round(l*levelPrecisionDecimals) / levelPrecisionDecimals)
}
