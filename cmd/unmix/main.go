package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"unmix/internal/services"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the CLI and translates the outcome into a process exit code.
// Split from main so tests can drive it without spawning a process.
func run(args []string) (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "unmix: unexpected failure: %v\n", r)
			code = services.ExitUnexpected
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "unmix: interrupted")
		} else {
			fmt.Fprintf(os.Stderr, "unmix: %v\n", err)
		}
		return services.ExitCode(err)
	}
	return 0
}
