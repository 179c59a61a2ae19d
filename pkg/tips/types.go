package tips

import "github.com/google/uuid"

// Category groups tips by the part of the device they are about.
type Category string

const (
	Brightness   Category = "brightness"
	Connectivity Category = "connectivity"
	Apps         Category = "apps"
	Settings     Category = "settings"
	Charging     Category = "charging"
	General      Category = "general"
)

// Categories lists every category in display order.
var Categories = []Category{Brightness, Connectivity, Apps, Settings, Charging, General}

// DisplayName returns the human readable name of the category.
func (c Category) DisplayName() string {
	switch c {
	case Brightness:
		return "Brightness"
	case Connectivity:
		return "Connectivity"
	case Apps:
		return "Apps & Services"
	case Settings:
		return "Settings"
	case Charging:
		return "Charging"
	case General:
		return "General"
	default:
		return string(c)
	}
}

// ParseCategory accepts either the identifier or the display name of a category.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if s == string(c) || s == c.DisplayName() {
			return c, true
		}
	}
	return "", false
}

// Impact is how much battery a tip is expected to save.
type Impact int

const (
	Low Impact = iota
	Medium
	High
)

func (i Impact) String() string {
	switch i {
	case High:
		return "high"
	case Medium:
		return "medium"
	default:
		return "low"
	}
}

// DisplayName returns the label shown next to a tip, e.g. "High Impact".
func (i Impact) DisplayName() string {
	switch i {
	case High:
		return "High Impact"
	case Medium:
		return "Medium Impact"
	default:
		return "Low Impact"
	}
}

// MarshalText encodes the impact as its lowercase name.
func (i Impact) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// Tip is a single battery saving recommendation.
type Tip struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Category    Category  `json:"category"`
	Impact      Impact    `json:"impact"`
	// Action is the label of the settings surface the tip points to.
	// Empty when the tip has nothing to open.
	Action string `json:"action,omitempty"`
}

// HasAction reports whether the tip carries an action label.
func (t Tip) HasAction() bool {
	return t.Action != ""
}
