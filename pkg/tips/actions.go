package tips

import "errors"

var (
	// ErrUnsupportedAction is returned for actions that have no settings page to link to.
	ErrUnsupportedAction = errors.New("cannot perform action: no corresponding settings surface")

	// ErrNoAction is returned when a tip does not carry an action.
	ErrNoAction = errors.New("tip has no action")
)

// Action labels used by the catalog.
const (
	ActionControlCenter     = "Open Control Center"
	ActionOpenSettings      = "Open Settings"
	ActionDisplay           = "Display & Brightness"
	ActionBackgroundRefresh = "General → Background App Refresh"
	ActionLocation          = "Privacy → Location Services"
	ActionNotifications     = "Notifications"
	ActionSoftwareUpdate    = "Software Update"
	ActionAutoLock          = "Display & Brightness → Auto-Lock"
	ActionBatteryHealth     = "Battery → Battery Health"
	ActionLowPowerMode      = "Low Power Mode"
	ActionBluetooth         = "Bluetooth"
	ActionWiFi              = "Wi-Fi"
)

// DefaultSettingsLink opens the root of the settings app.
const DefaultSettingsLink = "App-Prefs:"

var settingsLinks = map[string]string{
	ActionOpenSettings:      DefaultSettingsLink,
	ActionDisplay:           "App-Prefs:DISPLAY",
	ActionBackgroundRefresh: "App-Prefs:General&path=BACKGROUND_APP_REFRESH",
	ActionLocation:          "App-Prefs:Privacy&path=LOCATION",
	ActionNotifications:     "App-Prefs:NOTIFICATIONS_ID",
	ActionSoftwareUpdate:    "App-Prefs:General&path=SOFTWARE_UPDATE_LINK",
	ActionAutoLock:          "App-Prefs:DISPLAY&path=AUTOLOCK",
	ActionBatteryHealth:     "App-Prefs:BATTERY_USAGE",
	// Low Power Mode cannot be toggled programmatically, the best we can
	// do is open the battery page.
	ActionLowPowerMode: "App-Prefs:BATTERY_USAGE",
	ActionBluetooth:    "App-Prefs:Bluetooth",
	ActionWiFi:         "App-Prefs:WIFI",
}

// ResolveAction maps an action label to a settings deep link.
// Unknown labels fall back to DefaultSettingsLink. Control Center has
// no deep link and yields ErrUnsupportedAction.
func ResolveAction(action string) (string, error) {
	if action == "" {
		return "", ErrNoAction
	}
	if action == ActionControlCenter {
		return "", ErrUnsupportedAction
	}
	if link, ok := settingsLinks[action]; ok {
		return link, nil
	}
	return DefaultSettingsLink, nil
}

// ResolveTipAction resolves the action carried by t.
func ResolveTipAction(t Tip) (string, error) {
	return ResolveAction(t.Action)
}
