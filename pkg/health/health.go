package health

import (
	"encoding/json"
)

// Severity is how much attention the battery health needs.
type Severity int

const (
	Healthy Severity = iota
	Caution
	Warning
	Critical
)

func (s Severity) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Caution:
		return "caution"
	case Warning:
		return "warning"
	default:
		return "critical"
	}
}

// Health describes the wear of the battery. The current capacity is always
// derived from the design capacity and the maximum capacity percentage.
type Health struct {
	designCapacityMAh     int
	maxCapacityPercentage int
	cycleCount            *int
}

// New builds a Health record. percentage is clamped to [0,100] and a
// negative cycle count is dropped.
func New(designCapacityMAh, maxCapacityPercentage int, cycleCount *int) Health {
	if maxCapacityPercentage < 0 {
		maxCapacityPercentage = 0
	}
	if maxCapacityPercentage > 100 {
		maxCapacityPercentage = 100
	}
	if cycleCount != nil && *cycleCount < 0 {
		cycleCount = nil
	}
	if cycleCount != nil {
		c := *cycleCount
		cycleCount = &c
	}
	return Health{
		designCapacityMAh:     designCapacityMAh,
		maxCapacityPercentage: maxCapacityPercentage,
		cycleCount:            cycleCount,
	}
}

func (h Health) DesignCapacityMAh() int { return h.designCapacityMAh }

// CurrentCapacityMAh is design capacity scaled by the maximum capacity percentage.
func (h Health) CurrentCapacityMAh() int {
	return h.designCapacityMAh * h.maxCapacityPercentage / 100
}

func (h Health) MaxCapacityPercentage() int { return h.maxCapacityPercentage }

// CycleCount returns the charge cycle count, if known.
func (h Health) CycleCount() (int, bool) {
	if h.cycleCount == nil {
		return 0, false
	}
	return *h.cycleCount, true
}

// Status returns the health label shown to the user.
func (h Health) Status() string {
	switch p := h.maxCapacityPercentage; {
	case p >= 80:
		return "Excellent"
	case p >= 70:
		return "Good"
	case p >= 60:
		return "Fair"
	default:
		return "Poor"
	}
}

// Severity returns the emphasis tier for the health percentage.
func (h Health) Severity() Severity {
	switch p := h.maxCapacityPercentage; {
	case p >= 80:
		return Healthy
	case p >= 70:
		return Caution
	case p >= 60:
		return Warning
	default:
		return Critical
	}
}

type healthJSON struct {
	DesignCapacityMAh     int    `json:"designCapacityMAh"`
	CurrentCapacityMAh    int    `json:"currentCapacityMAh"`
	MaxCapacityPercentage int    `json:"maxCapacityPercentage"`
	CycleCount            *int   `json:"cycleCount"`
	Status                string `json:"status"`
	Severity              string `json:"severity"`
}

func (h Health) MarshalJSON() ([]byte, error) {
	return json.Marshal(healthJSON{
		DesignCapacityMAh:     h.designCapacityMAh,
		CurrentCapacityMAh:    h.CurrentCapacityMAh(),
		MaxCapacityPercentage: h.maxCapacityPercentage,
		CycleCount:            h.cycleCount,
		Status:                h.Status(),
		Severity:              h.Severity().String(),
	})
}
