package powerinfo

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/distatus/battery"
)

func TestNewStatusClampsLevel(t *testing.T) {
	now := time.Now()
	tests := []struct {
		in   float64
		want float64
	}{
		{-1, 0},
		{0.42, 0.42},
		{1.7, 1},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := NewStatus(Reading{Level: tt.in}, now).Level; got != tt.want {
			t.Errorf("NewStatus(level=%v).Level = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStatusEqualIgnoresTimestamp(t *testing.T) {
	r := Reading{Level: 0.5, State: Unplugged}
	a := NewStatus(r, time.Now())
	b := NewStatus(r, time.Now().Add(time.Minute))
	if !a.Equal(b) {
		t.Fatalf("statuses with the same reading should be equal")
	}
	b.IsLowPowerMode = true
	if a.Equal(b) {
		t.Fatalf("statuses with different low power mode should differ")
	}
}

func TestLevelPercentage(t *testing.T) {
	tests := []struct {
		level float64
		want  int
	}{
		{0, 0},
		{0.15, 15},
		{0.2, 20},
		{0.29, 29},
		{0.999, 99},
		{1, 100},
	}
	for _, tt := range tests {
		if got := (Status{Level: tt.level}).LevelPercentage(); got != tt.want {
			t.Errorf("LevelPercentage(%v) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestIconAndTier(t *testing.T) {
	tests := []struct {
		status Status
		icon   string
		tier   LevelTier
		desc   string
	}{
		{Status{Level: 0.9, State: Unplugged}, "battery.100", TierHigh, "On Battery"},
		{Status{Level: 0.6, State: Unplugged}, "battery.75", TierMedium, "On Battery"},
		{Status{Level: 0.3, State: Unplugged}, "battery.50", TierLow, "On Battery"},
		{Status{Level: 0.12, State: Unplugged}, "battery.25", TierCritical, "On Battery"},
		{Status{Level: 0.05, State: Unplugged}, "battery.0", TierCritical, "On Battery"},
		{Status{Level: 0.4, State: Charging}, "battery.100.bolt", TierLow, "Charging"},
		{Status{Level: 1, State: Full}, "battery.100.bolt", TierHigh, "Fully Charged"},
		{Status{Level: 0.9, State: Unknown, IsLowPowerMode: true}, "battery.100", TierLowPower, "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.IconName(); got != tt.icon {
			t.Errorf("%+v IconName() = %s, want %s", tt.status, got, tt.icon)
		}
		if got := tt.status.LevelTier(); got != tt.tier {
			t.Errorf("%+v LevelTier() = %d, want %d", tt.status, got, tt.tier)
		}
		if got := tt.status.StateDescription(); got != tt.desc {
			t.Errorf("%+v StateDescription() = %s, want %s", tt.status, got, tt.desc)
		}
	}
}

func TestSystemSampler(t *testing.T) {
	s := &SystemSampler{
		getAll: func() ([]*battery.Battery, error) {
			return []*battery.Battery{{State: battery.Discharging, Current: 30000, Full: 60000}}, nil
		},
		LowPowerMode: func() bool { return true },
	}
	r, err := s.Sample()
	if err != nil {
		t.Fatal(err)
	}
	if r.Level != 0.5 || r.State != Unplugged || !r.IsLowPowerMode {
		t.Errorf("unexpected reading %+v", r)
	}

	s.getAll = func() ([]*battery.Battery, error) { return nil, nil }
	if _, err := s.Sample(); !errors.Is(err, ErrSamplerUnavailable) {
		t.Errorf("expected ErrSamplerUnavailable, got %v", err)
	}
}

func TestMapState(t *testing.T) {
	tests := map[battery.State]BatteryState{
		battery.Charging:    Charging,
		battery.Full:        Full,
		battery.Discharging: Unplugged,
		battery.Empty:       Unplugged,
		battery.Unknown:     Unknown,
	}
	for in, want := range tests {
		if got := mapState(in); got != want {
			t.Errorf("mapState(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestSimulatedSamplerCycle(t *testing.T) {
	s := NewSimulatedSampler(Reading{Level: 0.23, State: Unplugged})
	s.FullHoldSamples = 2

	first, _ := s.Sample()
	if first.Level != 0.23 || first.State != Unplugged {
		t.Fatalf("first reading should be the start reading, got %+v", first)
	}

	seen := map[BatteryState]bool{}
	for i := 0; i < 100; i++ {
		r, err := s.Sample()
		if err != nil {
			t.Fatal(err)
		}
		if r.Level < 0 || r.Level > 1 {
			t.Fatalf("level %v out of range", r.Level)
		}
		seen[r.State] = true
	}
	for _, st := range []BatteryState{Unplugged, Charging, Full} {
		if !seen[st] {
			t.Errorf("simulated sampler never reported %v", st)
		}
	}
}

func TestSimulatedSamplerIsDeterministic(t *testing.T) {
	a := NewDefaultSimulatedSampler()
	b := NewDefaultSimulatedSampler()
	for i := 0; i < 50; i++ {
		ra, _ := a.Sample()
		rb, _ := b.Sample()
		if ra != rb {
			t.Fatalf("reading %d differs: %+v vs %+v", i, ra, rb)
		}
	}
}

func TestFallbackSampler(t *testing.T) {
	calls := 0
	f := &FallbackSampler{
		Primary: SamplerFunc(func() (Reading, error) {
			calls++
			return Reading{}, ErrSamplerUnavailable
		}),
		Fallback: SamplerFunc(func() (Reading, error) {
			return Reading{Level: 0.7, State: Unplugged}, nil
		}),
	}
	for i := 0; i < 3; i++ {
		r, err := f.Sample()
		if err != nil || r.Level != 0.7 {
			t.Fatalf("unexpected fallback reading %+v, %v", r, err)
		}
	}
	if calls != 1 {
		t.Errorf("primary sampled %d times, want 1", calls)
	}
	if !f.UsingFallback() {
		t.Errorf("UsingFallback() = false")
	}
}
