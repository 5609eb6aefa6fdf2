// Package windows implements the night window inspection command, a
// debugging aid for twilight and static time configuration.
package windows

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tphakala/fox-report/internal/conf"
	"github.com/tphakala/fox-report/internal/errors"
	"github.com/tphakala/fox-report/internal/nightwindow"
)

const stampFormat = "2006-01-02 15:04:05 MST"

// Command creates the windows command.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		date     string
		lookback int
		nights   int
	)

	cmd := &cobra.Command{
		Use:   "windows",
		Short: "Print resolved night observation windows",
		Long: `Resolve and print the observation window for one or more nights using
the configured location, twilight depth, buffer and static fallback times.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWindows(cmd, settings, date, lookback, nights)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Target date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().IntVar(&lookback, "lookback", 0, "Number of nights to look back")
	cmd.Flags().IntVar(&nights, "nights", 0, "Number of consecutive nights to resolve")

	return cmd
}

func runWindows(cmd *cobra.Command, settings *conf.Settings, date string, lookback, nights int) error {
	resolver, err := nightwindow.New(settings)
	if err != nil {
		return err
	}

	var target time.Time
	if date != "" {
		target, err = time.ParseInLocation("2006-01-02", date, resolver.Location())
		if err != nil {
			return errors.New(fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", date, err)).
				Component("cmd").
				Category(errors.CategoryValidation).
				Build()
		}
	}

	out := cmd.OutOrStdout()

	if nights > 0 {
		ranges, err := resolver.ResolveManyFrom(target, nights)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "Night observation ranges:")
		for i, nr := range ranges {
			fmt.Fprintf(out, "  Night %s (lookback %d): %s → %s\n",
				nr.Date.Format("2006-01-02"), i, nr.Start.Format(stampFormat), nr.End.Format(stampFormat))
		}
		return nil
	}

	base := target
	if base.IsZero() {
		base = resolver.Today()
	}
	nr, err := resolver.Resolve(base.AddDate(0, 0, -lookback))
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Night range for %s (lookback %d nights):\n", nr.Date.Format("2006-01-02"), lookback)
	fmt.Fprintf(out, "  Dusk:  %s\n", nr.Start.Format(stampFormat))
	fmt.Fprintf(out, "  Dawn:  %s\n", nr.End.Format(stampFormat))
	fmt.Fprintf(out, "  Duration: %s\n", nr.Duration())
	fmt.Fprintf(out, "  Method: %s\n", nr.Method)
	return nil
}
