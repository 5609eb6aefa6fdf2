package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/fox-report/cmd/generate"
	"github.com/tphakala/fox-report/cmd/notify"
	"github.com/tphakala/fox-report/cmd/windows"
	"github.com/tphakala/fox-report/internal/buildinfo"
	"github.com/tphakala/fox-report/internal/conf"
	"github.com/tphakala/fox-report/internal/logging"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	var (
		verbose bool
		quiet   bool
	)

	rootCmd := &cobra.Command{
		Use:     "fox-report",
		Short:   "Nightly fox detection reports from a Frigate NVR",
		Version: buildinfo.Current().String(),
		// Runtime failures should not dump usage text on top of the error.
		SilenceUsage: true,
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings, &verbose, &quiet); err != nil {
		cobra.CheckErr(err)
	}

	// Add sub-commands to the root command.
	generateCmd := generate.Command(settings)
	windowsCmd := windows.Command(settings)
	notifyCmd := notify.Command(settings)

	subcommands := []*cobra.Command{
		generateCmd,
		windowsCmd,
		notifyCmd,
	}

	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logging.Init()
		switch {
		case quiet:
			logging.SetLevel(slog.LevelWarn)
		case verbose || settings.Debug:
			logging.SetLevel(slog.LevelDebug)
		}
		return nil
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings, verbose, quiet *bool) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().BoolVarP(verbose, "verbose", "v", false, "Log at debug level")
	rootCmd.PersistentFlags().BoolVarP(quiet, "quiet", "q", false, "Log warnings and errors only")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
