package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/powersaver/pkg/utils/ptr"
)

var (
	defaultFileConfig = &RawFileConfig{
		SampleSchedule:       ptr.To("@every 10s"),
		DesignCapacityMAh:    ptr.To(3000),
		NotificationsEnabled: ptr.To(true),
		DailyReminder:        ptr.To(false),
		// Stored for the reminder feature only, nothing schedules on it yet.
		ReminderTime:      ptr.To("20:00"),
		ShowHealthWarning: ptr.To(true),
		HasLaunchedBefore: ptr.To(false),
		Store:             ptr.To(StoreFile),
		StatePath:         ptr.To(""),
	}
)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = &RawFileConfig{}
	}

	return &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}
}

type RawFileConfig struct {
	SampleSchedule       *string `json:"sampleSchedule,omitempty"`
	DesignCapacityMAh    *int    `json:"designCapacityMAh,omitempty"`
	NotificationsEnabled *bool   `json:"notificationsEnabled,omitempty"`
	DailyReminder        *bool   `json:"dailyReminder,omitempty"`
	ReminderTime         *string `json:"reminderTime,omitempty"`
	ShowHealthWarning    *bool   `json:"showHealthWarning,omitempty"`
	HasLaunchedBefore    *bool   `json:"hasLaunchedBefore,omitempty"`
	Store                *string `json:"store,omitempty"`
	StatePath            *string `json:"statePath,omitempty"`
}

func (f *File) SampleSchedule() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return ptr.Deref(f.c.SampleSchedule, *defaultFileConfig.SampleSchedule)
}

func (f *File) DesignCapacityMAh() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	c := ptr.Deref(f.c.DesignCapacityMAh, *defaultFileConfig.DesignCapacityMAh)
	if c <= 0 {
		return *defaultFileConfig.DesignCapacityMAh
	}
	return c
}

func (f *File) NotificationsEnabled() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return ptr.Deref(f.c.NotificationsEnabled, *defaultFileConfig.NotificationsEnabled)
}

func (f *File) DailyReminder() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return ptr.Deref(f.c.DailyReminder, *defaultFileConfig.DailyReminder)
}

func (f *File) ReminderTime() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return ptr.Deref(f.c.ReminderTime, *defaultFileConfig.ReminderTime)
}

func (f *File) ShowHealthWarning() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return ptr.Deref(f.c.ShowHealthWarning, *defaultFileConfig.ShowHealthWarning)
}

func (f *File) HasLaunchedBefore() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return ptr.Deref(f.c.HasLaunchedBefore, *defaultFileConfig.HasLaunchedBefore)
}

func (f *File) Store() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return ptr.Deref(f.c.Store, *defaultFileConfig.Store)
}

// StatePath is where the last full charge date is kept. When unset, it is
// placed next to the config file, with an extension matching Store.
func (f *File) StatePath() string {
	f.mu.RLock()
	p := ptr.Deref(f.c.StatePath, *defaultFileConfig.StatePath)
	f.mu.RUnlock()
	if p != "" {
		return p
	}

	name := "state.json"
	if f.Store() == StoreSQLite {
		name = "state.db"
	}
	return filepath.Join(filepath.Dir(f.filepath), name)
}

func (f *File) SetSampleSchedule(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.SampleSchedule = &s
}

func (f *File) SetDesignCapacityMAh(i int) {
	if i <= 0 {
		panic("design capacity must be positive")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.DesignCapacityMAh = &i
}

func (f *File) SetNotificationsEnabled(b bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.NotificationsEnabled = &b
}

func (f *File) SetDailyReminder(b bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.DailyReminder = &b
}

func (f *File) SetReminderTime(s string) {
	if _, err := ParseReminderTime(s); err != nil {
		panic(err.Error())
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.ReminderTime = &s
}

func (f *File) SetShowHealthWarning(b bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.ShowHealthWarning = &b
}

func (f *File) SetHasLaunchedBefore(b bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.HasLaunchedBefore = &b
}

func (f *File) SetStore(s string) {
	if s != StoreFile && s != StoreSQLite {
		panic(fmt.Sprintf("store must be %q or %q", StoreFile, StoreSQLite))
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.Store = &s
}

func (f *File) SetStatePath(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.StatePath = &s
}

func (f *File) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c = &RawFileConfig{}
}

// ParseReminderTime parses a 24-hour "HH:MM" clock time.
func ParseReminderTime(s string) (time.Time, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return time.Time{}, pkgerrors.Wrapf(err, "invalid reminder time %q, want HH:MM", s)
	}
	return t, nil
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// A missing file means every setting is at its default.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// json.Decoder cannot tell an empty file from a broken one.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	if err := os.MkdirAll(filepath.Dir(f.filepath), 0755); err != nil {
		return pkgerrors.Wrapf(err, "failed to create directory for %s", f.filepath)
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) Path() string {
	return f.filepath
}

func (f *File) LogrusFields() logrus.Fields {
	return logrus.Fields{
		"sampleSchedule":       f.SampleSchedule(),
		"designCapacityMAh":    f.DesignCapacityMAh(),
		"notificationsEnabled": f.NotificationsEnabled(),
		"dailyReminder":        f.DailyReminder(),
		"reminderTime":         f.ReminderTime(),
		"showHealthWarning":    f.ShowHealthWarning(),
		"hasLaunchedBefore":    f.HasLaunchedBefore(),
		"store":                f.Store(),
		"statePath":            f.StatePath(),
	}
}
