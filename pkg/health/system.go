package health

import (
	"math"

	"github.com/distatus/battery"
	pkgerrors "github.com/pkg/errors"
)

// SystemSource reads the full-charge and design capacity of the first
// battery reported by the OS. Cycle counts are not exposed by the OS APIs
// we use, so they are left unknown.
type SystemSource struct {
	getAll func() ([]*battery.Battery, error)
}

func NewSystemSource() *SystemSource {
	return &SystemSource{getAll: battery.GetAll}
}

func (s *SystemSource) Capacity() (Capacity, error) {
	batteries, err := s.getAll()
	if len(batteries) == 0 || batteries[0] == nil {
		if err != nil {
			return Capacity{}, pkgerrors.Wrapf(ErrSourceUnavailable, "failed to read batteries: %v", err)
		}
		return Capacity{}, pkgerrors.Wrap(ErrSourceUnavailable, "no batteries found")
	}

	bat := batteries[0]
	if bat.Design <= 0 || bat.Full <= 0 {
		return Capacity{}, pkgerrors.Wrap(ErrSourceUnavailable, "battery does not report capacity")
	}

	p := int(math.Round(bat.Full / bat.Design * 100))
	if p > 100 {
		p = 100
	}

	return Capacity{MaxCapacityPercentage: p}, nil
}
