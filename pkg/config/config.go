package config

// Store names accepted by SetStore.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

type Config interface {
	SampleSchedule() string
	DesignCapacityMAh() int
	NotificationsEnabled() bool
	DailyReminder() bool
	ReminderTime() string
	ShowHealthWarning() bool
	HasLaunchedBefore() bool
	Store() string
	StatePath() string

	SetSampleSchedule(string)
	SetDesignCapacityMAh(int)
	SetNotificationsEnabled(bool)
	SetDailyReminder(bool)
	SetReminderTime(string)
	SetShowHealthWarning(bool)
	SetHasLaunchedBefore(bool)
	SetStore(string)
	SetStatePath(string)

	// Reset restores every setting to its default.
	Reset()
	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error
}
