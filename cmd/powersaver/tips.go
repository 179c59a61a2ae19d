package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/powersaver/pkg/monitor"
	"github.com/charlie0129/powersaver/pkg/tips"
)

func printTip(cmd *cobra.Command, t tips.Tip) {
	cmd.Printf("  %s %s\n", bold("%s", t.Title), impactText(t.Impact))
	cmd.Printf("    %s\n", t.Description)
	cmd.Printf("    Category: %s\n", t.Category.DisplayName())
	if t.HasAction() {
		cmd.Printf("    Action: %s\n", t.Action)
	}
}

func impactText(i tips.Impact) string {
	switch i {
	case tips.High:
		return color.RedString("[%s]", i.DisplayName())
	case tips.Medium:
		return color.YellowString("[%s]", i.DisplayName())
	default:
		return color.GreenString("[%s]", i.DisplayName())
	}
}

func NewTipsCommand() *cobra.Command {
	var (
		category string
		all      bool
		maxCount int
	)

	cmd := &cobra.Command{
		Use:     "tips",
		GroupID: gBasic,
		Short:   "List power saving tips",
		Long: `List power saving tips.

By default the tips recommended for the current battery status are shown:
only high impact tips at 20% or below, no low impact tips in Low Power Mode.
Use --all to browse the whole catalog or --category to filter it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var list []tips.Tip

			switch {
			case category != "":
				c, ok := tips.ParseCategory(category)
				if !ok {
					return fmt.Errorf("unknown category %q, valid categories: %s", category, categoryNames())
				}
				list = slices.Collect(tips.ByCategory(c))
			case all:
				list = tips.All()
			default:
				a, err := newApp(conf, nil)
				if err != nil {
					return err
				}
				defer a.Close()
				list = a.monitor.RecommendedTips(maxCount)
			}

			if len(list) == 0 {
				logrus.Info("no tips to show")
				return nil
			}
			for i, t := range list {
				if i > 0 {
					cmd.Println()
				}
				printTip(cmd, t)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&category, "category", "c", "", "only show tips of this category ("+categoryNames()+")")
	f.BoolVarP(&all, "all", "a", false, "show the whole catalog")
	f.IntVarP(&maxCount, "max", "n", monitor.DefaultRecommendationCount, "maximum number of recommended tips")

	return cmd
}

func categoryNames() string {
	names := make([]string, 0, len(tips.Categories))
	for _, c := range tips.Categories {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

func NewTipCommand() *cobra.Command {
	var next bool

	cmd := &cobra.Command{
		Use:     "tip",
		GroupID: gBasic,
		Short:   "Show a power saving tip",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(conf, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			t := a.monitor.CurrentTip()
			if next {
				t = a.monitor.RequestNewTip()
			}
			printTip(cmd, t)
			return nil
		},
	}

	cmd.Flags().BoolVar(&next, "next", false, "skip the current tip and show another one")

	return cmd
}

func NewActionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "action [tip title or action label]",
		GroupID: gBasic,
		Short:   "Print the settings link for a tip action",
		Long: `Print the settings deep link for a tip action.

The argument is either the title of a tip or an action label such as "Bluetooth".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := args[0]
			for _, t := range tips.All() {
				if strings.EqualFold(t.Title, args[0]) {
					action = t.Action
					break
				}
			}

			link, err := tips.ResolveAction(action)
			switch {
			case errors.Is(err, tips.ErrUnsupportedAction):
				return fmt.Errorf("%q has no settings page, open it manually: %w", action, err)
			case err != nil:
				return err
			}

			cmd.Println(link)
			return nil
		},
	}
}

func NewLowPowerCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "low-power",
		GroupID: gBasic,
		Short:   "Print the settings link to toggle Low Power Mode",
		Long: `Print the settings link to toggle Low Power Mode.

Low Power Mode cannot be switched from here, the link opens the battery settings where it can.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			link, err := tips.ResolveAction(tips.ActionLowPowerMode)
			if err != nil {
				return err
			}
			cmd.Println(link)
			return nil
		},
	}
}
