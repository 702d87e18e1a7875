// Package main is the entry point for the bundletester CLI.
//
// bundletester prepares juju environments for charm and bundle tests: it
// bootstraps an environment when needed, deploys a bundle, resets the
// environment between tests, runs actions on deployed units and destroys the
// environment at the end of a suite.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/bundletester/cmd/bundletester/commands"
)

// Stamped with -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	// An interrupted reset or deploy stops waiting instead of hanging CI.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.Root().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
