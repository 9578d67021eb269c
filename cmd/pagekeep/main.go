package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain parses args, runs the conversion under a signal-aware context and
// returns the exit code.
func runMain(args []string, env *Environment) int {
	if len(args) > 0 {
		args = args[1:]
	}

	flags, positional, err := parseFlags(args, env.Stdout, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}
	if flags.common.version {
		fmt.Fprintf(env.Stdout, "pagekeep %s\n", Version)
		return ExitSuccess
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	err = run(ctx, flags, positional, env)
	var reported *reportedError
	if err != nil && !errors.As(err, &reported) {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, env, 0))
	}
	return exitCodeFor(err)
}
