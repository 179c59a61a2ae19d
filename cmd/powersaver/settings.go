package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/powersaver/pkg/config"
	"github.com/charlie0129/powersaver/pkg/persistence"
	"github.com/charlie0129/powersaver/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
		},
	}
}

// saveSetting applies set to the config and writes it back.
func saveSetting(set func(c config.Config)) (string, error) {
	set(conf)
	if err := conf.Save(); err != nil {
		return "", err
	}
	return "", nil
}

func NewSettingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "settings",
		GroupID: gAdvanced,
		Short:   "Show or change settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.Println(bold("Settings:"))
			cmd.Printf("  Config file: %s\n", conf.Path())
			cmd.Printf("  Sample schedule: %s\n", bold("%s", conf.SampleSchedule()))
			cmd.Printf("  Design capacity: %s\n", bold("%d mAh", conf.DesignCapacityMAh()))
			cmd.Printf("  Notifications: %s\n", bool2Text(conf.NotificationsEnabled()))
			cmd.Printf("  Daily reminder: %s (%s)\n", bool2Text(conf.DailyReminder()), conf.ReminderTime())
			cmd.Printf("  Battery health warning: %s\n", bool2Text(conf.ShowHealthWarning()))
			cmd.Printf("  State store: %s (%s)\n", bold("%s", conf.Store()), conf.StatePath())
			return nil
		},
	}

	cmd.AddCommand(
		newEnableDisableCommand(
			"notifications",
			"low battery and full charge notifications",
			"Show a notification in \"watch\" when the battery runs low or is fully charged.",
			func() (string, error) {
				return saveSetting(func(c config.Config) { c.SetNotificationsEnabled(true) })
			},
			func() (string, error) {
				return saveSetting(func(c config.Config) { c.SetNotificationsEnabled(false) })
			},
		),
		newEnableDisableCommand(
			"daily-reminder",
			"the daily battery reminder",
			"Remember a daily reminder at the configured reminder time.",
			func() (string, error) {
				return saveSetting(func(c config.Config) { c.SetDailyReminder(true) })
			},
			func() (string, error) {
				return saveSetting(func(c config.Config) { c.SetDailyReminder(false) })
			},
		),
		newEnableDisableCommand(
			"health-warning",
			"the battery health warning",
			"Show a warning in \"health\" when the maximum capacity has degraded below 80%.",
			func() (string, error) {
				return saveSetting(func(c config.Config) { c.SetShowHealthWarning(true) })
			},
			func() (string, error) {
				return saveSetting(func(c config.Config) { c.SetShowHealthWarning(false) })
			},
		),
		newSetCommand("schedule [cron expression]", "Set the sample schedule", func(arg string) error {
			if _, err := cronParser.Parse(arg); err != nil {
				return fmt.Errorf("invalid schedule %q: %v", arg, err)
			}
			conf.SetSampleSchedule(arg)
			return nil
		}),
		newSetCommand("design-capacity [mAh]", "Set the battery design capacity", func(arg string) error {
			v, err := parseIntArg([]string{arg}, "design capacity")
			if err != nil {
				return err
			}
			if v <= 0 {
				return fmt.Errorf("design capacity must be positive")
			}
			conf.SetDesignCapacityMAh(v)
			return nil
		}),
		newSetCommand("reminder-time [HH:MM]", "Set the daily reminder time", func(arg string) error {
			if _, err := config.ParseReminderTime(arg); err != nil {
				return err
			}
			conf.SetReminderTime(arg)
			return nil
		}),
		newSetCommand("store [file|sqlite]", "Set where the last full charge is kept", func(arg string) error {
			if arg != config.StoreFile && arg != config.StoreSQLite {
				return fmt.Errorf("store must be %q or %q", config.StoreFile, config.StoreSQLite)
			}
			conf.SetStore(arg)
			return nil
		}),
	)

	return cmd
}

func NewResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "reset",
		GroupID: gAdvanced,
		Short:   "Reset all data",
		Long: `Reset all data.

Forget the last full charge and restore every setting to its default.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			store, closeStore, err := openStore(conf)
			if err != nil {
				return fmt.Errorf("failed to open state store: %v", err)
			}
			if closeStore != nil {
				defer func() {
					if err := closeStore(); err != nil {
						logrus.WithError(err).Warn("failed to close state store")
					}
				}()
			}

			if c, ok := store.(persistence.Clearer); ok {
				if err := c.Clear(); err != nil {
					return fmt.Errorf("failed to clear state: %v", err)
				}
			}

			conf.Reset()
			// Resetting is not a first launch.
			conf.SetHasLaunchedBefore(true)
			if err := conf.Save(); err != nil {
				return fmt.Errorf("failed to save config: %v", err)
			}

			logrus.Info("successfully reset all data")
			return nil
		},
	}
}
