package powerinfo

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// ErrSamplerUnavailable is returned when a sampler cannot produce a reading.
var ErrSamplerUnavailable = errors.New("battery sampler unavailable")

// Sampler produces raw battery readings. Implementations must not block
// indefinitely.
type Sampler interface {
	Sample() (Reading, error)
}

// SamplerFunc adapts a function to a Sampler.
type SamplerFunc func() (Reading, error)

func (f SamplerFunc) Sample() (Reading, error) { return f() }

// FallbackSampler reads from Primary until it fails once, then switches to
// Fallback for good.
type FallbackSampler struct {
	Primary  Sampler
	Fallback Sampler

	fellBack bool
}

func (f *FallbackSampler) Sample() (Reading, error) {
	if !f.fellBack {
		r, err := f.Primary.Sample()
		if err == nil {
			return r, nil
		}
		logrus.WithError(err).Warn("battery readings unavailable, switching to simulated data")
		f.fellBack = true
	}
	return f.Fallback.Sample()
}

// UsingFallback reports whether the fallback sampler is in use.
func (f *FallbackSampler) UsingFallback() bool {
	return f.fellBack
}
