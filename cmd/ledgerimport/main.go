package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/cleared-dev/ledgerimport/internal/commands"
)

var (
	// version will be set via ldflags during build.
	version = "dev"
	// commit will be set via ldflags during build.
	commit = "none"
	// date will be set via ldflags during build.
	date = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	rootCmd := commands.NewRootCommand(fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date))
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
