// Command rallyctl lists players and renders charts from the command line.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/rally/pkg/logger"
)

func main() {
	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	_ = logger.SetLevelString("warn")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
