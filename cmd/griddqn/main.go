package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "griddqn: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	loadDotEnv()
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "griddqn",
		Short:         "Train and play a grid-world Q-learning agent with experience replay and a target network.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("log-level", envString("GRIDDQN_LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("no-color", envBool("GRIDDQN_NO_COLOR", false), "render boards without colors")

	rootCmd.AddCommand(newTrainCmd(), newShowCmd())
	return rootCmd
}
