package powerinfo

import (
	"math"
	"time"
)

// BatteryState represents the charging state of the battery.
type BatteryState int

const (
	// Unknown indicates the state could not be determined.
	Unknown BatteryState = iota
	// Unplugged indicates the device is running on battery.
	Unplugged
	// Charging indicates the battery is charging.
	Charging
	// Full indicates the battery is full and plugged in.
	Full
)

func (s BatteryState) String() string {
	switch s {
	case Unplugged:
		return "unplugged"
	case Charging:
		return "charging"
	case Full:
		return "full"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state as its lowercase name.
func (s BatteryState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Reading is a raw sample produced by a Sampler.
type Reading struct {
	Level          float64
	State          BatteryState
	IsLowPowerMode bool
}

// Status is the battery status held by the monitor. It is replaced as a
// whole on every sample.
type Status struct {
	// Level is the charge as a fraction in [0,1].
	Level          float64      `json:"level"`
	State          BatteryState `json:"state"`
	IsLowPowerMode bool         `json:"isLowPowerMode"`
	LastUpdated    time.Time    `json:"lastUpdated"`
}

// NewStatus builds a Status from a reading, clamping the level into [0,1].
func NewStatus(r Reading, at time.Time) Status {
	return Status{
		Level:          ClampLevel(r.Level),
		State:          r.State,
		IsLowPowerMode: r.IsLowPowerMode,
		LastUpdated:    at,
	}
}

// ClampLevel forces a level into [0,1]. NaN becomes 0.
func ClampLevel(l float64) float64 {
	if math.IsNaN(l) || l < 0 {
		return 0
	}
	if l > 1 {
		return 1
	}
	return l
}

// Equal compares the readings of two statuses. LastUpdated is ignored, so
// an identical reading taken later is not a change.
func (s Status) Equal(o Status) bool {
	return s.Level == o.Level && s.State == o.State && s.IsLowPowerMode == o.IsLowPowerMode
}

// LevelPercentage is the level in whole percent, truncated.
func (s Status) LevelPercentage() int {
	// The epsilon keeps values like 0.29 (28.999...) from dropping a percent.
	return int(math.Floor(s.Level*100 + 1e-9))
}

// StateDescription returns a short label for the state.
func (s Status) StateDescription() string {
	switch s.State {
	case Charging:
		return "Charging"
	case Full:
		return "Fully Charged"
	case Unplugged:
		return "On Battery"
	default:
		return "Unknown"
	}
}

// IconName returns the symbol name matching the level and state.
func (s Status) IconName() string {
	switch s.State {
	case Charging, Full:
		return "battery.100.bolt"
	case Unplugged:
		p := s.LevelPercentage()
		switch {
		case p >= 75:
			return "battery.100"
		case p >= 50:
			return "battery.75"
		case p >= 25:
			return "battery.50"
		case p >= 10:
			return "battery.25"
		default:
			return "battery.0"
		}
	default:
		return "battery.100"
	}
}

// LevelTier is the colour band a status is rendered with.
type LevelTier int

const (
	TierCritical LevelTier = iota
	TierLow
	TierMedium
	TierHigh
	// TierLowPower overrides the level based tiers while Low Power Mode is on.
	TierLowPower
)

// LevelTier returns the colour band for the status.
func (s Status) LevelTier() LevelTier {
	if s.IsLowPowerMode {
		return TierLowPower
	}
	switch p := s.LevelPercentage(); {
	case p <= 20:
		return TierCritical
	case p <= 50:
		return TierLow
	case p <= 80:
		return TierMedium
	default:
		return TierHigh
	}
}
