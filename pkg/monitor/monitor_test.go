package monitor

import (
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlie0129/powersaver/pkg/events"
	"github.com/charlie0129/powersaver/pkg/health"
	"github.com/charlie0129/powersaver/pkg/persistence"
	"github.com/charlie0129/powersaver/pkg/powerinfo"
	"github.com/charlie0129/powersaver/pkg/tips"
	"github.com/charlie0129/powersaver/pkg/utils/ptr"
)

// fakeSampler returns whatever reading was set last.
type fakeSampler struct {
	mu      sync.Mutex
	reading powerinfo.Reading
	err     error
	calls   atomic.Int64
}

func (f *fakeSampler) Sample() (powerinfo.Reading, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reading, f.err
}

func (f *fakeSampler) set(level float64, state powerinfo.BatteryState, lowPower bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reading = powerinfo.Reading{Level: level, State: state, IsLowPowerMode: lowPower}
	f.err = nil
}

func (f *fakeSampler) fail() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = powerinfo.ErrSamplerUnavailable
}

// fakeClock advances only when told to.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type brokenGateway struct{}

func (brokenGateway) LastFullCharge() (time.Time, bool, error) {
	return time.Time{}, false, persistence.ErrUnavailable
}

func (brokenGateway) SetLastFullCharge(time.Time) error {
	return persistence.ErrUnavailable
}

func newTestMonitor(t *testing.T, sampler *fakeSampler, gw persistence.Gateway) (*Monitor, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 17, 9, 0, 0, 0, time.UTC)}
	m := New(Options{
		Sampler:     sampler,
		Persistence: gw,
		Estimator:   &health.Estimator{},
		Rand:        rand.New(rand.NewPCG(42, 42)),
		Now:         clock.Now,
	})
	t.Cleanup(m.Close)
	return m, clock
}

func TestNewTakesInitialSample(t *testing.T) {
	s := &fakeSampler{}
	s.set(0.5, powerinfo.Unplugged, false)
	m, clock := newTestMonitor(t, s, nil)

	snap := m.Snapshot()
	assert.Equal(t, 0.5, snap.Status.Level)
	assert.Equal(t, powerinfo.Unplugged, snap.Status.State)
	assert.Equal(t, clock.Now(), snap.Status.LastUpdated)
	assert.NotEqual(t, tips.Tip{}.ID, snap.Tip.ID, "an initial tip must be selected")
	require.NotNil(t, snap.TimeRemaining)
	assert.Equal(t, 5*time.Hour, *snap.TimeRemaining)
	assert.Nil(t, snap.LastFullCharge)

	p := snap.Health.MaxCapacityPercentage()
	assert.True(t, p >= 75 && p <= 100, "simulated health %d out of range", p)
	assert.Equal(t, 1, int(s.calls.Load()))
}

func TestNewWithFailingSampler(t *testing.T) {
	s := &fakeSampler{}
	s.fail()
	m, _ := newTestMonitor(t, s, nil)

	st := m.Status()
	assert.Equal(t, powerinfo.Unknown, st.State)
	assert.Equal(t, 0.0, st.Level)
	_, ok := m.EstimatedTimeRemaining()
	assert.False(t, ok)
}

func TestRefreshSampleIsIdempotent(t *testing.T) {
	s := &fakeSampler{}
	s.set(0.5, powerinfo.Unplugged, false)
	m, clock := newTestMonitor(t, s, nil)

	before := m.Snapshot()
	clock.Advance(10 * time.Second)

	for i := 0; i < 2; i++ {
		st, changed, err := m.RefreshSample()
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, before.Status, st)
	}

	after := m.Snapshot()
	assert.Equal(t, before.Status, after.Status, "LastUpdated must not move for an identical reading")
	assert.Equal(t, before.Tip.ID, after.Tip.ID)
}

func TestRefreshSampleTipChangeThreshold(t *testing.T) {
	tests := []struct {
		name      string
		from, to  float64
		tipChange bool
	}{
		{name: "drop of ten percent", from: 0.5, to: 0.4, tipChange: true},
		{name: "drop of two percent", from: 0.5, to: 0.48, tipChange: false},
		{name: "rise of six percent", from: 0.5, to: 0.56, tipChange: true},
		{name: "low power toggle only", from: 0.5, to: 0.5, tipChange: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSampler{}
			s.set(tt.from, powerinfo.Unplugged, false)
			m, _ := newTestMonitor(t, s, nil)
			before := m.CurrentTip()

			s.set(tt.to, powerinfo.Unplugged, true)
			st, changed, err := m.RefreshSample()
			require.NoError(t, err)
			assert.True(t, changed)
			assert.Equal(t, tt.to, st.Level)

			after := m.CurrentTip()
			if tt.tipChange {
				assert.NotEqual(t, before.ID, after.ID, "expected a new tip")
			} else {
				assert.Equal(t, before.ID, after.ID, "tip should be kept")
			}
		})
	}
}

func TestFullChargeIsRecordedAndPersisted(t *testing.T) {
	gw := persistence.NewMemory()
	s := &fakeSampler{}
	s.set(0.95, powerinfo.Charging, false)
	m, clock := newTestMonitor(t, s, gw)

	clock.Advance(time.Hour)
	s.set(1.0, powerinfo.Full, false)
	_, changed, err := m.RefreshSample()
	require.NoError(t, err)
	require.True(t, changed)

	got, ok := m.LastFullCharge()
	require.True(t, ok)
	assert.True(t, clock.Now().Equal(got))

	stored, ok, err := gw.LastFullCharge()
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Equal(stored))

	// A new monitor picks the persisted value up.
	m2, _ := newTestMonitor(t, s, gw)
	reloaded, ok := m2.LastFullCharge()
	require.True(t, ok)
	assert.True(t, got.Equal(reloaded))
}

func TestFullChargeNeedsFullState(t *testing.T) {
	s := &fakeSampler{}
	s.set(0.9, powerinfo.Charging, false)
	m, _ := newTestMonitor(t, s, nil)

	s.set(1.0, powerinfo.Charging, false)
	_, _, err := m.RefreshSample()
	require.NoError(t, err)

	_, ok := m.LastFullCharge()
	assert.False(t, ok, "charging at 100% is not a full charge")
}

func TestPersistenceFailuresAreNotFatal(t *testing.T) {
	s := &fakeSampler{}
	s.set(0.98, powerinfo.Charging, false)
	m, clock := newTestMonitor(t, s, brokenGateway{})

	_, ok := m.LastFullCharge()
	assert.False(t, ok)

	s.set(1.0, powerinfo.Full, false)
	_, changed, err := m.RefreshSample()
	require.NoError(t, err)
	assert.True(t, changed)

	got, ok := m.LastFullCharge()
	require.True(t, ok, "the in-memory value survives a failed write")
	assert.True(t, clock.Now().Equal(got))
}

func TestRefreshSampleKeepsStatusOnSamplerError(t *testing.T) {
	s := &fakeSampler{}
	s.set(0.7, powerinfo.Unplugged, false)
	m, _ := newTestMonitor(t, s, nil)
	before := m.Snapshot()

	s.fail()
	st, changed, err := m.RefreshSample()
	assert.True(t, errors.Is(err, powerinfo.ErrSamplerUnavailable))
	assert.False(t, changed)
	assert.Equal(t, before.Status, st)
	assert.Equal(t, before.Tip.ID, m.CurrentTip().ID)
}

func TestEstimatedTimeRemaining(t *testing.T) {
	tests := []struct {
		level float64
		state powerinfo.BatteryState
		want  time.Duration
		ok    bool
	}{
		{0.5, powerinfo.Unplugged, 5 * time.Hour, true},
		{1, powerinfo.Unplugged, 10 * time.Hour, true},
		{0, powerinfo.Unplugged, 0, true},
		{0.5, powerinfo.Charging, 0, false},
		{1, powerinfo.Full, 0, false},
		{0.5, powerinfo.Unknown, 0, false},
	}
	for _, tt := range tests {
		s := &fakeSampler{}
		s.set(0.3, powerinfo.Unknown, false)
		m, _ := newTestMonitor(t, s, nil)

		s.set(tt.level, tt.state, false)
		_, _, err := m.RefreshSample()
		require.NoError(t, err)

		got, ok := m.EstimatedTimeRemaining()
		assert.Equal(t, tt.ok, ok, "level %v state %v", tt.level, tt.state)
		assert.Equal(t, tt.want, got, "level %v state %v", tt.level, tt.state)
	}
}

func TestRequestNewTipEmitsPulse(t *testing.T) {
	s := &fakeSampler{}
	s.set(0.5, powerinfo.Unplugged, false)
	m, _ := newTestMonitor(t, s, nil)
	ch := m.Subscribe()

	before := m.CurrentTip()
	tip := m.RequestNewTip()
	assert.NotEqual(t, before.ID, tip.ID)
	assert.Equal(t, tip.ID, m.CurrentTip().ID)

	var names []string
	for len(names) < 2 {
		select {
		case ev := <-ch:
			names = append(names, ev.Name)
			if ev.Name == events.TipPulse {
				p, err := events.DecodeAs[events.TipChangedEvent](ev)
				require.NoError(t, err)
				assert.Equal(t, tip.ID.String(), p.ID)
				assert.Equal(t, events.ReasonRequested, p.Reason)
			}
		case <-time.After(time.Second):
			t.Fatalf("expected tip events, got %v", names)
		}
	}
	assert.Equal(t, []string{events.TipChanged, events.TipPulse}, names)
}

func TestStatusChangePublishesEvent(t *testing.T) {
	s := &fakeSampler{}
	s.set(0.5, powerinfo.Unplugged, false)
	m, _ := newTestMonitor(t, s, nil)
	ch := m.Subscribe()

	s.set(0.5, powerinfo.Unplugged, true)
	_, changed, err := m.RefreshSample()
	require.NoError(t, err)
	require.True(t, changed)

	ev := <-ch
	require.Equal(t, events.StatusChanged, ev.Name)
	p, err := events.DecodeAs[events.StatusChangedEvent](ev)
	require.NoError(t, err)
	assert.Equal(t, 0.5, p.Level)
	assert.Equal(t, 0.5, p.PreviousLevel)
	assert.True(t, p.IsLowPowerMode)
	assert.Equal(t, "unplugged", p.State)
	require.NotNil(t, p.EstimatedSecondsLeft)
	assert.Equal(t, int64(5*3600), *p.EstimatedSecondsLeft)

	// An unchanged sample publishes nothing.
	_, _, _ = m.RefreshSample()
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %s", ev.Name)
	default:
	}
}

func TestResolveActionUnsupported(t *testing.T) {
	s := &fakeSampler{}
	m, _ := newTestMonitor(t, s, nil)

	tip, ok := tips.Find(tips.All()[0].ID)
	require.True(t, ok)
	require.Equal(t, tips.ActionControlCenter, tip.Action)

	link, err := m.ResolveAction(tip)
	assert.ErrorIs(t, err, tips.ErrUnsupportedAction)
	assert.Empty(t, link)
}

func TestConcurrentOperationsAreSerialized(t *testing.T) {
	s := &fakeSampler{}
	s.set(0.5, powerinfo.Unplugged, false)
	m, _ := newTestMonitor(t, s, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.set(float64((i*50+j)%100)/100, powerinfo.Unplugged, j%2 == 0)
				_, _, _ = m.RefreshSample()
				_ = m.RecommendedTips(5)
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				m.RequestNewTip()
				_ = m.Snapshot()
			}
		}()
	}
	wg.Wait()

	st := m.Status()
	assert.True(t, st.Level >= 0 && st.Level <= 1)
}

func TestStartMonitoringAndClose(t *testing.T) {
	s := &fakeSampler{}
	s.set(0.5, powerinfo.Unplugged, false)
	m := New(Options{Sampler: s, Rand: rand.New(rand.NewPCG(1, 2))})
	ch := m.Subscribe()

	require.Error(t, m.StartMonitoring("not a schedule"))
	require.NoError(t, m.StartMonitoring("@every 1s"))

	s.set(0.3, powerinfo.Unplugged, false)

	deadline := time.After(3 * time.Second)
	for done := false; !done; {
		select {
		case ev := <-ch:
			done = ev.Name == events.StatusChanged
		case <-deadline:
			t.Fatalf("monitor did not refresh on schedule")
		}
	}

	m.Close()
	calls := s.calls.Load()
	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, calls, s.calls.Load(), "sampler used after Close")

	// Close closes the subscription, so draining terminates.
	for range ch {
	}
}

func TestStartMonitoringAfterClose(t *testing.T) {
	s := &fakeSampler{}
	s.set(0.5, powerinfo.Unplugged, false)
	m := New(Options{Sampler: s, Rand: rand.New(rand.NewPCG(1, 2))})
	m.Close()
	calls := s.calls.Load()

	err := m.StartMonitoring("@every 1s")
	require.ErrorIs(t, err, ErrClosed)

	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, calls, s.calls.Load(), "sampler used after Close")

	// Closing twice is harmless.
	m.Close()
}

func TestEstimatorOptionIsNotMutated(t *testing.T) {
	e := &health.Estimator{}
	s := &fakeSampler{}
	_ = New(Options{Sampler: s, Estimator: e, Rand: rand.New(rand.NewPCG(1, 1))})
	assert.Nil(t, e.Rand)
}

func TestHealthFromSource(t *testing.T) {
	s := &fakeSampler{}
	m := New(Options{
		Sampler: s,
		Estimator: &health.Estimator{Source: sourceFunc(func() (health.Capacity, error) {
			return health.Capacity{MaxCapacityPercentage: 65, CycleCount: ptr.To(900)}, nil
		})},
		DesignCapacityMAh: 4000,
		Rand:              rand.New(rand.NewPCG(1, 1)),
	})
	h := m.Health()
	assert.Equal(t, 2600, h.CurrentCapacityMAh())
	assert.Equal(t, "Fair", h.Status())
	assert.Equal(t, health.Warning, h.Severity())
}

func TestForcedHealthPercentage(t *testing.T) {
	s := &fakeSampler{}
	m := New(Options{
		Sampler: s,
		Estimator: &health.Estimator{Source: sourceFunc(func() (health.Capacity, error) {
			return health.Capacity{MaxCapacityPercentage: 95, CycleCount: ptr.To(10)}, nil
		})},
		DesignCapacityMAh:      3000,
		ForcedHealthPercentage: ptr.To(45),
		Rand:                   rand.New(rand.NewPCG(1, 1)),
	})
	t.Cleanup(m.Close)

	h := m.Health()
	assert.Equal(t, 45, h.MaxCapacityPercentage())
	assert.Equal(t, 1350, h.CurrentCapacityMAh())
	assert.Equal(t, health.Critical, h.Severity())
	_, ok := h.CycleCount()
	assert.False(t, ok, "a forced percentage carries no cycle count")
}

type sourceFunc func() (health.Capacity, error)

func (f sourceFunc) Capacity() (health.Capacity, error) { return f() }
