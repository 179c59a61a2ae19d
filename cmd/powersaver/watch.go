package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/powersaver/pkg/events"
	"github.com/charlie0129/powersaver/pkg/version"
)

// lowBatteryPercent is where watch starts warning about the battery.
const lowBatteryPercent = 20

func NewWatchCommand() *cobra.Command {
	var schedule string

	cmd := &cobra.Command{
		Use:     "watch",
		GroupID: gBasic,
		Short:   "Follow the battery status until interrupted",
		Long: `Follow the battery status until interrupted.

The battery is sampled on a cron schedule (default from the config, e.g. "@every 10s").
Every change is printed, together with a new tip when the level moved noticeably.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if schedule == "" {
				schedule = conf.SampleSchedule()
			}

			a, err := newApp(conf, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			logrus.WithFields(logrus.Fields{
				"version":  version.Version,
				"commit":   version.GitCommit,
				"schedule": schedule,
			}).Info("watching battery")

			ch := a.monitor.Subscribe()
			if err := a.monitor.StartMonitoring(schedule); err != nil {
				return err
			}

			printStatus(cmd, a.monitor.Snapshot())

			sigc := make(chan os.Signal, 1)
			signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigc)

			for {
				select {
				case sig := <-sigc:
					logrus.Infof("caught signal \"%s\": shutting down.", sig)
					return nil
				case ev, ok := <-ch:
					if !ok {
						return nil
					}
					handleEvent(cmd, ev)
				}
			}
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", "", "cron schedule to sample the battery on")

	return cmd
}

func handleEvent(cmd *cobra.Command, ev events.Event) {
	switch ev.Name {
	case events.StatusChanged:
		p, err := events.DecodeAs[events.StatusChangedEvent](ev)
		if err != nil {
			logrus.WithError(err).Warn("failed to decode status event")
			return
		}
		level := int(p.Level*100 + 1e-9)
		line := time.Unix(p.Ts, 0).Format(time.Kitchen) + "  " + bold("%d%%", level) + "  " + p.State
		if p.IsLowPowerMode {
			line += "  (Low Power Mode)"
		}
		if p.EstimatedSecondsLeft != nil {
			line += "  " + formatDuration(time.Duration(*p.EstimatedSecondsLeft)*time.Second) + " left"
		}
		cmd.Println(line)

		previous := int(p.PreviousLevel*100 + 1e-9)
		if conf.NotificationsEnabled() && level <= lowBatteryPercent && previous > lowBatteryPercent {
			logrus.Warnf("battery is low (%d%%), consider Low Power Mode", level)
		}
	case events.FullCharge:
		if conf.NotificationsEnabled() {
			logrus.Info("battery is fully charged")
		}
	case events.TipChanged:
		p, err := events.DecodeAs[events.TipChangedEvent](ev)
		if err != nil {
			logrus.WithError(err).Warn("failed to decode tip event")
			return
		}
		cmd.Printf("  Tip: %s\n", bold("%s", p.Title))
	case events.TipPulse:
		logrus.Trace("tip pulse")
	}
}
