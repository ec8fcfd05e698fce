package main

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"grid-dqn-go/internal/engine"
)

func newShowCmd() *cobra.Command {
	var (
		size int
		mode string
		seed int64
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a freshly initialized board",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := engine.ParseMode(mode)
			if err != nil {
				return err
			}
			if seed == 0 {
				seed = 1
			}
			world, err := engine.NewGridWorld(size, m, engine.WithRandomSource(rand.New(rand.NewSource(seed))))
			if err != nil {
				return err
			}
			noColor, _ := cmd.Flags().GetBool("no-color")
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mode=%s size=%d reward=%.0f\n", world.Mode(), world.Size(), world.Reward())
			printBoard(out, world.Board(), !noColor)
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "size", envInt("GRIDDQN_GRID_SIZE", engine.MinGridSize), "board side length (minimum 4)")
	cmd.Flags().StringVar(&mode, "mode", envString("GRIDDQN_MODE", string(engine.ModeStatic)), "initialization mode: static, player or random")
	cmd.Flags().Int64Var(&seed, "seed", envInt64("GRIDDQN_SEED", 1), "random seed")
	return cmd
}
