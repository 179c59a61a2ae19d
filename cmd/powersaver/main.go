package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/charlie0129/powersaver/pkg/config"
)

var (
	logLevel   = "info"
	configPath = defaultConfigPath()
	// simulate skips the system battery and uses the simulated sampler.
	simulate = false
)

var (
	gBasic        = "Basic:"
	gAdvanced     = "Advanced:"
	commandGroups = []string{
		gBasic,
		gAdvanced,
	}
)

// conf is loaded before any command runs.
var conf *config.File

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "powersaver.json"
	}
	return filepath.Join(dir, "powersaver", "config.json")
}

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

// onboard greets the user on the very first launch.
func onboard(cmd *cobra.Command) {
	if conf.HasLaunchedBefore() {
		return
	}

	cmd.PrintErrln(bold("Welcome to powersaver!"))
	cmd.PrintErrln("  Track your battery, get power saving tips and keep an eye on battery health.")
	cmd.PrintErrln("  Run \"powersaver watch\" to follow your battery live.")
	cmd.PrintErrln()

	conf.SetHasLaunchedBefore(true)
	if err := conf.Save(); err != nil {
		logrus.WithError(err).Warn("failed to save config")
	}
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "powersaver",
		Short: "powersaver tracks your battery and tells you how to make it last",
		Long: `powersaver tracks your battery and tells you how to make it last.

It shows the battery level and state, estimates the time remaining and the
battery health, and recommends power saving tips that fit the current charge.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			err := setupLogger()
			if err != nil {
				return err
			}

			conf, err = config.NewFile(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %v", err)
			}
			logrus.WithFields(conf.LogrusFields()).Debug("config loaded")

			onboard(cmd)
			return nil
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "config file path")
	globalFlags.BoolVar(&simulate, "simulate", false, "use a simulated battery instead of the system one")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		NewVersionCommand(),
		NewStatusCommand(),
		NewTipsCommand(),
		NewTipCommand(),
		NewHealthCommand(),
		NewActionCommand(),
		NewLowPowerCommand(),
		NewWatchCommand(),
		NewSettingsCommand(),
		NewResetCommand(),
	)

	return cmd
}
