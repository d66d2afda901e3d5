package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"monthcal/internal/cli"
	appLog "monthcal/internal/log"
)

func main() {
	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if err := cli.Execute(ctx); err != nil {
		// cobra already printed the error.
		os.Exit(1)
	}
}
