// Package persistence stores the only durable piece of monitor state: the
// time the battery was last seen fully charged.
package persistence

import (
	"errors"
	"sync"
	"time"
)

// ErrUnavailable is returned when the backing store cannot be read or written.
var ErrUnavailable = errors.New("persistence unavailable")

// Gateway gets and sets the last full charge timestamp.
type Gateway interface {
	// LastFullCharge returns the stored timestamp. ok is false when nothing
	// has been stored yet.
	LastFullCharge() (t time.Time, ok bool, err error)
	SetLastFullCharge(t time.Time) error
}

// Memory is a Gateway that keeps the timestamp in memory.
type Memory struct {
	mu sync.RWMutex
	t  *time.Time
}

var _ Gateway = &Memory{}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) LastFullCharge() (time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.t == nil {
		return time.Time{}, false, nil
	}
	return *m.t, true, nil
}

func (m *Memory) SetLastFullCharge(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t = t.Round(0)
	m.t = &t
	return nil
}

// Clear removes the stored timestamp.
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.t = nil
	return nil
}

// Clearer is implemented by gateways that can forget the stored timestamp.
type Clearer interface {
	Clear() error
}
