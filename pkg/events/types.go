package events

import "encoding/json"

// Event name constants
const (
	// StatusChanged is published when a sample differs from the stored status.
	StatusChanged = "battery.status"
	// FullCharge is published when a full charge is recorded.
	FullCharge = "battery.fullcharge"
	// TipChanged is published whenever the current tip is replaced.
	TipChanged = "tip.changed"
	// TipPulse is the feedback signal for a tip requested by the user.
	TipPulse = "tip.pulse"
)

// Event is a generic event published by the monitor.
type Event struct {
	Name string          // event name
	Data json.RawMessage // Raw JSON payload
}

// StatusChangedEvent is the typed payload for battery.status.
type StatusChangedEvent struct {
	Level                float64 `json:"level"`
	State                string  `json:"state"`
	IsLowPowerMode       bool    `json:"isLowPowerMode"`
	PreviousLevel        float64 `json:"previousLevel"`
	EstimatedSecondsLeft *int64  `json:"estimatedSecondsLeft,omitempty"`
	Ts                   int64   `json:"ts"`
}

// FullChargeEvent is the typed payload for battery.fullcharge.
type FullChargeEvent struct {
	Ts int64 `json:"ts"`
}

// TipChangedEvent is the typed payload for tip.changed and tip.pulse.
type TipChangedEvent struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Reason string `json:"reason"`
	Ts     int64  `json:"ts"`
}

// Reasons carried by TipChangedEvent.
const (
	ReasonLevelChange = "level-change"
	ReasonRequested   = "requested"
)

// DecodeAs decodes the event payload into the caller-specified generic type T.
// It ignores the event name and simply unmarshals Data into T. If Data is empty,
// it returns the zero value of T with a nil error.
//
// Example:
//
//	payload, err := events.DecodeAs[events.TipChangedEvent](ev)
//	if err != nil { /* handle */ }
//	fmt.Println(payload.Title)
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
