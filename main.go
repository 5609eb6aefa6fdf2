package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tphakala/fox-report/cmd"
	"github.com/tphakala/fox-report/internal/conf"
	"github.com/tphakala/fox-report/internal/errors"
)

func main() {
	os.Exit(run())
}

// run keeps os.Exit out of the call path so deferred cleanup in
// subcommands always executes.
func run() int {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Exit code 2 lets a scheduler distinguish a failed send from a
		// failed report.
		if errors.IsDeliveryError(err) {
			return 2
		}
		return 1
	}
	return 0
}
