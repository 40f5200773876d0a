// Command salesctl runs the sales reports from the terminal: tabular views,
// the per-country seasonality prompt, dataset splits and file exports.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"sales-dashboard/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = newRootCmd(cfg).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
