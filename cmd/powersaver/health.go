package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/charlie0129/powersaver/pkg/health"
)

func NewHealthCommand() *cobra.Command {
	var (
		asJSON     bool
		percentage int
	)

	cmd := &cobra.Command{
		Use:     "health",
		GroupID: gBasic,
		Short:   "Show the battery health",
		Long: `Show the battery health.

The maximum capacity is read from the system battery when it reports one, and
estimated otherwise. --percentage pins it, e.g. to preview how a worn battery is shown.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var forced *int
			if cmd.Flags().Changed("percentage") {
				if percentage < 0 || percentage > 100 {
					return fmt.Errorf("percentage must be between 0 and 100")
				}
				forced = &percentage
			}

			a, err := newApp(conf, forced)
			if err != nil {
				return err
			}
			defer a.Close()

			h := a.monitor.Health()

			if asJSON {
				b, err := json.MarshalIndent(h, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal health: %v", err)
				}
				cmd.Println(string(b))
				return nil
			}

			cmd.Println(bold("Battery health:"))
			cmd.Printf("  Maximum capacity: %s\n", severityText(h.Severity(), "%d%%", h.MaxCapacityPercentage()))
			cmd.Printf("  Status: %s\n", severityText(h.Severity(), "%s", h.Status()))
			cmd.Printf("  Design capacity: %s\n", bold("%d mAh", h.DesignCapacityMAh()))
			cmd.Printf("  Current capacity: %s\n", bold("%d mAh", h.CurrentCapacityMAh()))
			if cycles, ok := h.CycleCount(); ok {
				cmd.Printf("  Cycle count: %s\n", bold("%d", cycles))
			} else {
				cmd.Printf("  Cycle count: %s\n", bold("unknown"))
			}

			if conf.ShowHealthWarning() && h.Severity() >= health.Warning {
				cmd.Println()
				cmd.Println(color.New(color.Bold, color.FgRed).Sprint("Your battery capacity has degraded. Consider a battery service."))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the health as JSON")
	cmd.Flags().IntVar(&percentage, "percentage", 0, "use this maximum capacity percentage instead of measuring it")

	return cmd
}

func severityText(s health.Severity, format string, a ...interface{}) string {
	c := color.New(color.Bold)
	switch s {
	case health.Healthy:
		c.Add(color.FgGreen)
	case health.Caution:
		c.Add(color.FgYellow)
	case health.Warning:
		c.Add(color.FgHiRed)
	case health.Critical:
		c.Add(color.FgRed)
	}
	return c.Sprintf(format, a...)
}
