package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/charlie0129/powersaver/pkg/monitor"
	"github.com/charlie0129/powersaver/pkg/powerinfo"
)

type statusJSON struct {
	LevelPercent          int        `json:"levelPercent"`
	Level                 float64    `json:"level"`
	State                 string     `json:"state"`
	StateDescription      string     `json:"stateDescription"`
	Icon                  string     `json:"icon"`
	LowPowerMode          bool       `json:"lowPowerMode"`
	LastUpdated           time.Time  `json:"lastUpdated"`
	TimeRemainingMinutes  *int       `json:"timeRemainingMinutes"`
	LastFullCharge        *time.Time `json:"lastFullCharge"`
	MaxCapacityPercentage int        `json:"maxCapacityPercentage"`
	Tip                   string     `json:"tip"`
}

func newStatusJSON(s monitor.Snapshot) statusJSON {
	out := statusJSON{
		LevelPercent:          s.Status.LevelPercentage(),
		Level:                 s.Status.Level,
		State:                 s.Status.State.String(),
		StateDescription:      s.Status.StateDescription(),
		Icon:                  s.Status.IconName(),
		LowPowerMode:          s.Status.IsLowPowerMode,
		LastUpdated:           s.Status.LastUpdated,
		LastFullCharge:        s.LastFullCharge,
		MaxCapacityPercentage: s.Health.MaxCapacityPercentage(),
		Tip:                   s.Tip.Title,
	}
	if s.TimeRemaining != nil {
		m := int(s.TimeRemaining.Minutes())
		out.TimeRemainingMinutes = &m
	}
	return out
}

func NewStatusCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Show the battery status",
		Long:    `Show the battery level and state, the estimated time remaining, the last full charge and the current tip.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(conf, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			snap := a.monitor.Snapshot()

			if asJSON {
				b, err := json.MarshalIndent(newStatusJSON(snap), "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal status: %v", err)
				}
				cmd.Println(string(b))
				return nil
			}

			printStatus(cmd, snap)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the status as JSON")

	return cmd
}

func printStatus(cmd *cobra.Command, snap monitor.Snapshot) {
	st := snap.Status

	cmd.Println(bold("Battery status:"))
	cmd.Printf("  Level: %s\n", levelText(st))
	cmd.Printf("  State: %s\n", bold("%s", st.StateDescription()))
	cmd.Printf("  Low Power Mode: %s\n", bool2Text(st.IsLowPowerMode))
	if snap.TimeRemaining != nil {
		cmd.Printf("  Time remaining: %s\n", bold("%s", formatDuration(*snap.TimeRemaining)))
	}
	if snap.LastFullCharge != nil {
		cmd.Printf("  Last full charge: %s\n", bold("%s", snap.LastFullCharge.Local().Format(time.DateTime)))
	} else {
		cmd.Printf("  Last full charge: %s\n", bold("never"))
	}
	cmd.Printf("  Updated: %s\n", st.LastUpdated.Local().Format(time.Kitchen))

	cmd.Println()
	cmd.Println(bold("Tip:"))
	printTip(cmd, snap.Tip)
}

func levelText(st powerinfo.Status) string {
	c := color.New(color.Bold)
	switch st.LevelTier() {
	case powerinfo.TierLowPower:
		c.Add(color.FgYellow)
	case powerinfo.TierCritical:
		c.Add(color.FgRed)
	case powerinfo.TierLow:
		c.Add(color.FgHiYellow)
	case powerinfo.TierMedium:
		c.Add(color.FgHiGreen)
	case powerinfo.TierHigh:
		c.Add(color.FgGreen)
	}
	return c.Sprintf("%d%%", st.LevelPercentage())
}

// formatDuration renders "~Xh Ym", or "~Ym" below one hour.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	if hours > 0 {
		return fmt.Sprintf("~%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("~%dm", minutes)
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
