package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// errEvalsFailed makes the process exit non-zero without printing a usage error
var errEvalsFailed = errors.New("evals failed")

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "synbad",
		Short:         "A set of evals for LLM inference providers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newEvalCmd(), newListCmd())
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errEvalsFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}
