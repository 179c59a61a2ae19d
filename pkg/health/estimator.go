package health

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/charlie0129/powersaver/pkg/utils/ptr"
)

const (
	// DefaultDesignCapacityMAh is a typical phone battery.
	DefaultDesignCapacityMAh = 3000

	minSimulatedPercentage = 75
	maxSimulatedPercentage = 100
	minSimulatedCycles     = 100
	maxSimulatedCycles     = 500
)

// ErrSourceUnavailable is returned by a Source that has no real capacity data.
var ErrSourceUnavailable = errors.New("battery capacity data unavailable")

// Capacity is a real capacity reading.
type Capacity struct {
	MaxCapacityPercentage int
	CycleCount            *int
}

// Source provides real capacity data.
type Source interface {
	Capacity() (Capacity, error)
}

// Rand is the randomness used when no real data is available.
type Rand interface {
	IntN(n int) int
}

// Estimator produces Health records, from Source when it works and from
// random values otherwise.
type Estimator struct {
	Source Source
	Rand   Rand
}

// Estimate returns the health of a battery with the given design capacity.
// A non-nil forcedPercentage skips both the source and the random draw.
func (e *Estimator) Estimate(designCapacityMAh int, forcedPercentage *int) Health {
	if designCapacityMAh <= 0 {
		designCapacityMAh = DefaultDesignCapacityMAh
	}

	if forcedPercentage != nil {
		return New(designCapacityMAh, *forcedPercentage, nil)
	}

	if e.Source != nil {
		c, err := e.Source.Capacity()
		if err == nil {
			return New(designCapacityMAh, c.MaxCapacityPercentage, c.CycleCount)
		}
		logrus.WithError(err).Debug("real battery capacity unavailable, using simulated health")
	}

	percentage := minSimulatedPercentage + e.Rand.IntN(maxSimulatedPercentage-minSimulatedPercentage+1)
	cycles := minSimulatedCycles + e.Rand.IntN(maxSimulatedCycles-minSimulatedCycles+1)

	return New(designCapacityMAh, percentage, ptr.To(cycles))
}
