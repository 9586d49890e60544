package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/papermatch/internal/admin"
)

// Version is overwritten at build time using -ldflags.
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := admin.NewRootCmd(Version).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
