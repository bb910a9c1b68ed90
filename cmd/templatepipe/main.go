package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/StevenVC-P/phpTemplateGenerator-sub001/cmd"
	"github.com/StevenVC-P/phpTemplateGenerator-sub001/internal/observability"
)

func main() {
	// Listen for interrupt signals so in-flight pipelines can stop cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx)
	observability.Sync()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
