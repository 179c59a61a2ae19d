package monitor

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/powersaver/pkg/events"
	"github.com/charlie0129/powersaver/pkg/health"
	"github.com/charlie0129/powersaver/pkg/persistence"
	"github.com/charlie0129/powersaver/pkg/powerinfo"
	"github.com/charlie0129/powersaver/pkg/tips"
)

const (
	// tipRefreshDelta is the level change that earns a new tip.
	tipRefreshDelta = 0.05
	// fullChargeLevel is the level at which a full state counts as a full charge.
	fullChargeLevel = 0.99
	// averageBatteryLife is what a full battery lasts on the linear model.
	averageBatteryLife = 10 * time.Hour
)

// ErrClosed is returned when periodic refresh is requested after Close.
var ErrClosed = pkgerrors.New("monitor is closed")

// Options configures a Monitor. Sampler is required; every other field has
// a usable default.
type Options struct {
	Sampler     powerinfo.Sampler
	Persistence persistence.Gateway
	// Estimator produces the health record. Without one, health is simulated.
	Estimator         *health.Estimator
	DesignCapacityMAh int
	// ForcedHealthPercentage pins the maximum capacity instead of measuring
	// or simulating it.
	ForcedHealthPercentage *int
	// Rand drives tip selection and shuffling.
	Rand tips.Rand
	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
	// Hub receives change events. A new hub is created when nil.
	Hub *events.EventHub
}

// Monitor owns the battery state. All mutations go through mu, so a
// periodic refresh and a user action never interleave.
type Monitor struct {
	mu sync.Mutex

	sampler     powerinfo.Sampler
	persistence persistence.Gateway
	rand        tips.Rand
	now         func() time.Time
	hub         *events.EventHub

	status         powerinfo.Status
	health         health.Health
	tip            tips.Tip
	lastFullCharge *time.Time
	timeRemaining  *time.Duration

	ticker *Ticker
	closed bool
}

// New takes the first sample, loads the last full charge and picks the
// first tip.
func New(opts Options) *Monitor {
	if opts.Sampler == nil {
		panic("sampler cannot be nil")
	}

	m := &Monitor{
		sampler:     opts.Sampler,
		persistence: opts.Persistence,
		rand:        opts.Rand,
		now:         opts.Now,
		hub:         opts.Hub,
	}
	if m.persistence == nil {
		m.persistence = persistence.NewMemory()
	}
	if m.rand == nil {
		m.rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.hub == nil {
		m.hub = events.NewEventHub()
	}

	estimator := &health.Estimator{}
	if opts.Estimator != nil {
		*estimator = *opts.Estimator
	}
	if estimator.Rand == nil {
		estimator.Rand = m.rand
	}
	m.health = estimator.Estimate(opts.DesignCapacityMAh, opts.ForcedHealthPercentage)

	reading, err := m.sampler.Sample()
	if err != nil {
		logrus.WithError(err).Warn("initial battery sample failed, starting from an unknown state")
		reading = powerinfo.Reading{State: powerinfo.Unknown}
	}
	m.status = powerinfo.NewStatus(reading, m.now())

	t, ok, err := m.persistence.LastFullCharge()
	switch {
	case err != nil:
		logrus.WithError(err).Warn("failed to load last full charge, treating it as unknown")
	case ok:
		m.lastFullCharge = &t
	}

	m.tip = tips.Random(m.rand)
	m.estimateTimeRemaining()

	logrus.WithFields(logrus.Fields{
		"level":          m.status.LevelPercentage(),
		"state":          m.status.State,
		"lowPowerMode":   m.status.IsLowPowerMode,
		"healthPercent":  m.health.MaxCapacityPercentage(),
		"lastFullCharge": m.lastFullCharge,
	}).Debug("battery monitor initialized")

	return m
}

// RefreshSample takes a new sample. When the reading equals the stored
// status nothing changes and changed is false. When the sampler fails the
// previous status is kept and the error is returned alongside it.
// A level move of more than five points replaces the tip with a different
// one, never the current tip again.
func (m *Monitor) RefreshSample() (status powerinfo.Status, changed bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reading, err := m.sampler.Sample()
	if err != nil {
		logrus.WithError(err).Warn("battery sample failed, keeping last known status")
		return m.status, false, err
	}

	now := m.now()
	newStatus := powerinfo.NewStatus(reading, now)
	if newStatus.Equal(m.status) {
		logrus.WithField("level", newStatus.LevelPercentage()).Trace("battery status unchanged")
		return m.status, false, nil
	}

	oldStatus := m.status
	m.status = newStatus

	if math.Abs(newStatus.Level-oldStatus.Level) > tipRefreshDelta {
		m.setTip(tips.RandomExcept(m.rand, m.tip.ID), events.ReasonLevelChange, now)
	}

	if newStatus.Level >= fullChargeLevel && newStatus.State == powerinfo.Full {
		m.recordFullCharge(now)
	}

	m.estimateTimeRemaining()

	logrus.WithFields(logrus.Fields{
		"level":         newStatus.LevelPercentage(),
		"previousLevel": oldStatus.LevelPercentage(),
		"state":         newStatus.State,
		"lowPowerMode":  newStatus.IsLowPowerMode,
	}).Debug("battery status changed")

	payload := events.StatusChangedEvent{
		Level:          newStatus.Level,
		State:          newStatus.State.String(),
		IsLowPowerMode: newStatus.IsLowPowerMode,
		PreviousLevel:  oldStatus.Level,
		Ts:             now.Unix(),
	}
	if m.timeRemaining != nil {
		secs := int64(m.timeRemaining.Seconds())
		payload.EstimatedSecondsLeft = &secs
	}
	m.hub.Publish(events.StatusChanged, payload)

	return m.status, true, nil
}

// RequestNewTip replaces the current tip with a random different one and
// emits a pulse event.
func (m *Monitor) RequestNewTip() tips.Tip {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	tip := tips.RandomExcept(m.rand, m.tip.ID)
	m.setTip(tip, events.ReasonRequested, now)
	m.hub.Publish(events.TipPulse, events.TipChangedEvent{
		ID:     tip.ID.String(),
		Title:  tip.Title,
		Reason: events.ReasonRequested,
		Ts:     now.Unix(),
	})

	return tip
}

// setTip must be called with mu held.
func (m *Monitor) setTip(tip tips.Tip, reason string, now time.Time) {
	m.tip = tip
	logrus.WithFields(logrus.Fields{
		"tip":    tip.Title,
		"reason": reason,
	}).Debug("current tip changed")
	m.hub.Publish(events.TipChanged, events.TipChangedEvent{
		ID:     tip.ID.String(),
		Title:  tip.Title,
		Reason: reason,
		Ts:     now.Unix(),
	})
}

// recordFullCharge must be called with mu held. A persistence failure is
// logged and the in-memory value is kept.
func (m *Monitor) recordFullCharge(now time.Time) {
	t := now.Round(0)
	m.lastFullCharge = &t

	if err := m.persistence.SetLastFullCharge(t); err != nil {
		logrus.WithError(err).Error("failed to persist last full charge")
	}

	logrus.WithField("at", t.Format(time.RFC3339)).Info("battery fully charged")
	m.hub.Publish(events.FullCharge, events.FullChargeEvent{Ts: t.Unix()})
}

// estimateTimeRemaining must be called with mu held.
func (m *Monitor) estimateTimeRemaining() {
	d, ok := EstimateTimeRemaining(m.status)
	if !ok {
		m.timeRemaining = nil
		return
	}
	m.timeRemaining = &d
}

// EstimateTimeRemaining is the linear discharge model: a full battery lasts
// ten hours. It only applies while unplugged.
func EstimateTimeRemaining(s powerinfo.Status) (time.Duration, bool) {
	if s.State != powerinfo.Unplugged {
		return 0, false
	}
	return time.Duration(s.Level * float64(averageBatteryLife)), true
}

// Status returns the current battery status.
func (m *Monitor) Status() powerinfo.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Health returns the battery health record.
func (m *Monitor) Health() health.Health {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.health
}

// CurrentTip returns the selected tip.
func (m *Monitor) CurrentTip() tips.Tip {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tip
}

// LastFullCharge returns when the battery was last seen fully charged.
func (m *Monitor) LastFullCharge() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastFullCharge == nil {
		return time.Time{}, false
	}
	return *m.lastFullCharge, true
}

// EstimatedTimeRemaining returns the remaining runtime. ok is false unless
// the device is unplugged.
func (m *Monitor) EstimatedTimeRemaining() (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timeRemaining == nil {
		return 0, false
	}
	return *m.timeRemaining, true
}

// Snapshot is a consistent copy of the monitor state.
type Snapshot struct {
	Status         powerinfo.Status
	Health         health.Health
	Tip            tips.Tip
	LastFullCharge *time.Time
	TimeRemaining  *time.Duration
}

// Snapshot returns all fields read under a single lock.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		Status: m.status,
		Health: m.health,
		Tip:    m.tip,
	}
	if m.lastFullCharge != nil {
		t := *m.lastFullCharge
		s.LastFullCharge = &t
	}
	if m.timeRemaining != nil {
		d := *m.timeRemaining
		s.TimeRemaining = &d
	}
	return s
}

// ResolveAction maps the action of a tip to a settings deep link.
func (m *Monitor) ResolveAction(tip tips.Tip) (string, error) {
	return tips.ResolveTipAction(tip)
}

// Subscribe returns a channel receiving change events.
func (m *Monitor) Subscribe() chan events.Event {
	return m.hub.Subscribe()
}

func (m *Monitor) Unsubscribe(ch chan events.Event) {
	m.hub.Unsubscribe(ch)
}

// StartMonitoring refreshes the status on the given cron schedule, e.g.
// "@every 10s". Calling it again replaces the schedule. It fails once the
// monitor is closed.
func (m *Monitor) StartMonitoring(schedule string) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.ticker == nil {
		m.ticker = NewTicker(func() error {
			_, _, err := m.RefreshSample()
			return err
		}, nil)
	}
	ticker := m.ticker
	m.mu.Unlock()

	if err := ticker.Schedule(schedule); err != nil {
		return err
	}
	ticker.Start()
	return nil
}

// Close stops the periodic refresh and closes all subscriptions. The
// refresh task is not running anymore when Close returns.
func (m *Monitor) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	ticker := m.ticker
	m.ticker = nil
	m.mu.Unlock()

	if ticker != nil {
		ticker.Stop()
	}
	m.hub.Close()
}
