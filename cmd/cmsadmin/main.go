package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/cmsadmin/internal/cli/command"
	"github.com/yndnr/cmsadmin/internal/infra/shutdown"
)

func main() {
	h := shutdown.NewHandler(2 * time.Second)
	h.OnShutdown(func(context.Context) error {
		fmt.Fprintln(os.Stderr, "\nInterrupted. Press Ctrl-C again to quit immediately.")
		return nil
	})
	ctx, stop := h.Context(context.Background())

	err := command.App().RunContext(ctx, os.Args)
	stop()
	if err == nil {
		return
	}

	var exit cli.ExitCoder
	if errors.As(err, &exit) {
		if msg := exit.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(exit.ExitCode())
	}
	if !command.Silent(err) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	os.Exit(1)
}
