package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/skelly-dev/cnote/internal/cli"
)

var version = "0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(version).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
