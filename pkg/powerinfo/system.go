package powerinfo

import (
	"github.com/distatus/battery"
	pkgerrors "github.com/pkg/errors"
)

// SystemSampler reads the first battery reported by the OS.
//
// Low Power Mode is not exposed by the OS battery APIs, so LowPowerMode is
// consulted when set and the reading reports false otherwise.
type SystemSampler struct {
	LowPowerMode func() bool

	getAll func() ([]*battery.Battery, error)
}

func NewSystemSampler() *SystemSampler {
	return &SystemSampler{getAll: battery.GetAll}
}

func (s *SystemSampler) Sample() (Reading, error) {
	batteries, err := s.getAll()
	if len(batteries) == 0 || batteries[0] == nil {
		if err != nil {
			return Reading{}, pkgerrors.Wrapf(ErrSamplerUnavailable, "failed to read batteries: %v", err)
		}
		return Reading{}, pkgerrors.Wrap(ErrSamplerUnavailable, "no batteries found")
	}

	bat := batteries[0] // Only the first battery matters for a single device.
	if bat.Full <= 0 {
		return Reading{}, pkgerrors.Wrap(ErrSamplerUnavailable, "battery does not report its full capacity")
	}

	r := Reading{
		Level: ClampLevel(bat.Current / bat.Full),
		State: mapState(bat.State),
	}
	if s.LowPowerMode != nil {
		r.IsLowPowerMode = s.LowPowerMode()
	}

	return r, nil
}

func mapState(s battery.State) BatteryState {
	switch s {
	case battery.Charging:
		return Charging
	case battery.Full:
		return Full
	case battery.Discharging, battery.Empty:
		return Unplugged
	default:
		return Unknown
	}
}
