package tips

import (
	"iter"
	"slices"

	"github.com/google/uuid"
)

// namespace seeds the tip ids, so a tip keeps its id across runs.
var namespace = uuid.MustParse("5b0c2a8e-6f55-4c7e-9a59-3c1b7e0f2d41")

// Rand is the source of randomness used to pick and shuffle tips.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

func newTip(title, description, icon string, category Category, impact Impact, action string) Tip {
	return Tip{
		ID:          uuid.NewSHA1(namespace, []byte(title)),
		Title:       title,
		Description: description,
		Icon:        icon,
		Category:    category,
		Impact:      impact,
		Action:      action,
	}
}

var catalog = []Tip{
	newTip(
		"Reduce Screen Brightness",
		"Lowering your screen brightness by 20% can save up to 30% of battery life.",
		"sun.max", Brightness, High, ActionControlCenter,
	),
	newTip(
		"Turn Off Bluetooth",
		"Bluetooth constantly searches for devices, draining battery even when not in use.",
		"bluetooth", Connectivity, Medium, ActionOpenSettings,
	),
	newTip(
		"Enable Auto-Brightness",
		"Let your device adjust brightness automatically based on ambient light.",
		"lightbulb", Brightness, Medium, ActionDisplay,
	),
	newTip(
		"Use Wi-Fi Instead of Cellular",
		"Wi-Fi uses less power than cellular data, especially in areas with poor signal.",
		"wifi", Connectivity, High, "",
	),
	newTip(
		"Close Background Apps",
		"Apps running in background can drain battery. Swipe them away when not needed.",
		"app.badge", Apps, Medium, "Swipe Up & Close",
	),
	newTip(
		"Disable Background App Refresh",
		"Prevent apps from refreshing content in background unnecessarily.",
		"arrow.clockwise", Settings, Medium, ActionBackgroundRefresh,
	),
	newTip(
		"Turn Off Location Services",
		"Only enable location services for apps that really need it.",
		"location", Settings, High, ActionLocation,
	),
	newTip(
		"Reduce Notifications",
		"Each notification wakes your screen. Limit them to essential apps.",
		"bell.badge", Apps, Low, ActionNotifications,
	),
	newTip(
		"Use Dark Mode",
		"On OLED screens, dark mode can significantly reduce power consumption.",
		"moon.fill", Brightness, Medium, ActionDisplay,
	),
	newTip(
		"Avoid Extreme Temperatures",
		"Batteries degrade faster in very hot or cold environments.",
		"thermometer", Charging, High, "",
	),
	newTip(
		"Update to Latest OS",
		"System updates often include battery optimization improvements.",
		"gear", General, Medium, ActionSoftwareUpdate,
	),
	newTip(
		"Limit Widgets & Live Activities",
		"Widgets and live activities that update frequently consume more battery.",
		"square.grid.2x2", Apps, Low, "",
	),
	newTip(
		"Reduce Auto-Lock Time",
		"Set auto-lock to 30 seconds or 1 minute to turn off screen faster.",
		"lock", Settings, Medium, ActionAutoLock,
	),
	newTip(
		"Disable Raise to Wake",
		"This feature activates the screen whenever you pick up your phone.",
		"hand.raised", Settings, Low, ActionDisplay,
	),
	newTip(
		"Optimize Charging",
		"Enable Optimized Battery Charging to learn your routine and reduce wear.",
		"bolt.fill", Charging, High, ActionBatteryHealth,
	),
}

// All returns every tip in catalog order. The returned slice is a copy.
func All() []Tip {
	out := make([]Tip, len(catalog))
	copy(out, catalog)
	return out
}

// Len returns the number of tips in the catalog.
func Len() int {
	return len(catalog)
}

// ByCategory yields the tips of the given category in catalog order.
func ByCategory(c Category) iter.Seq[Tip] {
	return Filter(func(t Tip) bool { return t.Category == c })
}

// ByImpact yields the tips whose impact is one of impacts, in catalog order.
func ByImpact(impacts ...Impact) iter.Seq[Tip] {
	return Filter(func(t Tip) bool {
		for _, i := range impacts {
			if t.Impact == i {
				return true
			}
		}
		return false
	})
}

// Filter yields the tips matching keep, in catalog order.
func Filter(keep func(Tip) bool) iter.Seq[Tip] {
	return func(yield func(Tip) bool) {
		for _, t := range catalog {
			if !keep(t) {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// Random returns a uniformly chosen tip.
func Random(r Rand) Tip {
	return catalog[r.IntN(len(catalog))]
}

// RandomExcept returns a uniformly chosen tip other than the one with the
// given id. An id outside the catalog behaves like Random.
func RandomExcept(r Rand, id uuid.UUID) Tip {
	skip := slices.IndexFunc(catalog, func(t Tip) bool { return t.ID == id })
	if skip < 0 || len(catalog) < 2 {
		return Random(r)
	}
	i := r.IntN(len(catalog) - 1)
	if i >= skip {
		i++
	}
	return catalog[i]
}

// Shuffled returns the whole catalog in random order.
func Shuffled(r Rand) []Tip {
	out := All()
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Find looks a tip up by id.
func Find(id uuid.UUID) (Tip, bool) {
	for _, t := range catalog {
		if t.ID == id {
			return t, true
		}
	}
	return Tip{}, false
}

// Take collects at most n tips from seq. A non-positive n yields an empty slice.
func Take(seq iter.Seq[Tip], n int) []Tip {
	out := make([]Tip, 0)
	if n <= 0 {
		return out
	}
	for t := range seq {
		out = append(out, t)
		if len(out) >= n {
			break
		}
	}
	return out
}
