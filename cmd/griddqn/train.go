package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"grid-dqn-go/internal/engine"
	"grid-dqn-go/internal/plot"
)

const defaultPlotPath = "qlearning_target_model.svg"

type trainOptions struct {
	cfg       engine.Config
	mode      string
	evalGames int
	evalSeed  int64
	display   bool
	plotPath  string
}

func newTrainCmd() *cobra.Command {
	opts := &trainOptions{}
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train an agent, report its win rate and plot the loss curve",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrain(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.IntVar(&opts.cfg.Episodes, "episodes", envInt("GRIDDQN_EPISODES", engine.DefaultEpisodes), "number of training episodes")
	f.Int64Var(&opts.cfg.Seed, "seed", envInt64("GRIDDQN_SEED", 1), "random seed")
	f.IntVar(&opts.cfg.GridSize, "size", envInt("GRIDDQN_GRID_SIZE", engine.MinGridSize), "board side length (minimum 4)")
	f.StringVar(&opts.mode, "mode", envString("GRIDDQN_MODE", string(engine.ModeStatic)), "initialization mode: static, player or random")
	f.StringVar(&opts.cfg.Algorithm, "algorithm", envString("GRIDDQN_ALGORITHM", engine.AlgorithmTargetNetwork), "learning algorithm: q-learning, replay or target-network")
	f.StringVar(&opts.cfg.Approximator, "approximator", envString("GRIDDQN_APPROXIMATOR", engine.ApproximatorMLP), "value approximator: mlp or table")
	f.Float64Var(&opts.cfg.Epsilon, "epsilon", envFloat("GRIDDQN_EPSILON", engine.DefaultEpsilon), "initial exploration rate")
	f.Float64Var(&opts.cfg.EpsilonMin, "epsilon-min", envFloat("GRIDDQN_EPSILON_MIN", engine.DefaultEpsilonMin), "exploration floor")
	f.Float64Var(&opts.cfg.Gamma, "gamma", envFloat("GRIDDQN_GAMMA", engine.DefaultGamma), "discount factor")
	f.Float64Var(&opts.cfg.LearningRate, "learning-rate", envFloat("GRIDDQN_LEARNING_RATE", engine.DefaultLearningRate), "Adam learning rate for the mlp approximator")
	f.Float64Var(&opts.cfg.TableAlpha, "table-alpha", envFloat("GRIDDQN_TABLE_ALPHA", engine.DefaultTableAlpha), "step size for the table approximator")
	f.IntSliceVar(&opts.cfg.HiddenSizes, "hidden", envInts("GRIDDQN_HIDDEN_SIZES", engine.DefaultHiddenSizes), "hidden layer sizes for the mlp approximator")
	f.IntVar(&opts.cfg.MemorySize, "memory", envInt("GRIDDQN_MEMORY_SIZE", engine.DefaultMemorySize), "replay buffer capacity")
	f.IntVar(&opts.cfg.BatchSize, "batch", envInt("GRIDDQN_BATCH_SIZE", engine.DefaultBatchSize), "replay mini-batch size")
	f.IntVar(&opts.cfg.MaxMoves, "max-moves", envInt("GRIDDQN_MAX_MOVES", engine.DefaultMaxMoves), "move cap per training episode")
	f.IntVar(&opts.cfg.SyncFrequency, "sync", envInt("GRIDDQN_SYNC_FREQUENCY", engine.DefaultSyncFrequency), "steps between target network refreshes")
	f.Float64Var(&opts.cfg.StateNoise, "noise", envFloat("GRIDDQN_STATE_NOISE", engine.DefaultStateNoise), "state noise bound (negative disables)")
	f.IntVar(&opts.cfg.MaxLayoutAttempts, "layout-attempts", envInt("GRIDDQN_LAYOUT_ATTEMPTS", engine.DefaultMaxLayoutAttempts), "placement attempts before giving up on a layout")
	f.IntVar(&opts.evalGames, "eval-games", envInt("GRIDDQN_EVAL_GAMES", 1000), "greedy games played after training (0 skips)")
	f.Int64Var(&opts.evalSeed, "eval-seed", envInt64("GRIDDQN_EVAL_SEED", 2), "random seed for evaluation games")
	f.BoolVar(&opts.display, "display", envBool("GRIDDQN_DISPLAY", false), "print every board of one greedy game after training")
	f.StringVar(&opts.plotPath, "plot", envString("GRIDDQN_PLOT", defaultPlotPath), "loss plot output (.svg, .png or .html; empty skips)")
	return cmd
}

func runTrain(cmd *cobra.Command, opts *trainOptions) error {
	mode, err := engine.ParseMode(opts.mode)
	if err != nil {
		return err
	}
	cfg := opts.cfg
	cfg.Mode = mode

	logger := newLogger(cmd)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	trainer := engine.NewTrainer(cfg, engine.WithLogger(logger))
	final, err := trainer.Train(ctx)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}

	out := cmd.OutOrStdout()
	writeSummary(out, final)
	if len(final.ValueMap) > 0 {
		fmt.Fprint(out, engine.FormatValueMap(final.ValueMap))
	}

	if opts.plotPath != "" {
		if err := plotLosses(opts.plotPath, trainer.Losses()); err != nil {
			return err
		}
		logger.Info("loss plot written", "path", opts.plotPath, "updates", final.Updates)
	}

	evalCfg := engine.EvalConfig{
		GridSize:          final.Config.GridSize,
		Mode:              final.Config.Mode,
		StateNoise:        final.Config.StateNoise,
		MaxLayoutAttempts: final.Config.MaxLayoutAttempts,
	}
	if opts.evalGames > 0 {
		summary, err := engine.EvaluateMany(trainer.Online(), evalCfg, opts.evalGames, opts.evalSeed)
		if err != nil {
			return fmt.Errorf("evaluate: %w", err)
		}
		fmt.Fprintf(out, "Games played: %d, # of wins: %d\n", summary.Games, summary.Wins)
		fmt.Fprintf(out, "Win percentage: %.1f%%\n", 100*summary.WinRate())
	}

	if opts.display {
		noColor, _ := cmd.Flags().GetBool("no-color")
		return displayGame(ctx, out, trainer.Online(), evalCfg, opts.evalSeed, !noColor)
	}
	return nil
}

func writeSummary(w io.Writer, s engine.Snapshot) {
	fmt.Fprintf(w, "run %s: %d episodes, %d successes, %d steps, %d updates, %d target syncs, epsilon %.3f\n",
		s.RunID, s.EpisodesCompleted, s.SuccessCount, s.TotalSteps, s.Updates, s.TargetSyncs, s.Epsilon)
}

// plotLosses draws loss against update index, padding the x range so the
// first and last points are not pinned to the frame.
func plotLosses(path string, losses []engine.LossPoint) error {
	points := make([]plot.Point, len(losses))
	for i, l := range losses {
		points[i] = plot.Point{X: float64(l.Update), Y: l.Loss}
	}
	_, y := plot.Bounds(points)
	x := plot.Range{Min: -100, Max: float64(len(losses) + 1000)}
	if err := plot.Scatter(path, points, x, y, "update", "loss"); err != nil {
		return fmt.Errorf("plot losses: %w", err)
	}
	return nil
}

func displayGame(ctx context.Context, w io.Writer, approx engine.Approximator, cfg engine.EvalConfig, seed int64, colors bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cfg.Display = true
	res, err := engine.Evaluate(approx, cfg, rand.New(rand.NewSource(seed)))
	if err != nil {
		return fmt.Errorf("display: %w", err)
	}
	fmt.Fprintln(w, "Initial State:")
	for i, grid := range res.Grids {
		if i > 0 {
			fmt.Fprintf(w, "Move #%d: %s\n", i, res.Actions[i-1])
		}
		printGrid(w, grid, colors)
	}
	if res.Outcome == engine.OutcomeWin {
		fmt.Fprintf(w, "Game won! Reward: %.0f\n", res.Reward)
	} else {
		fmt.Fprintf(w, "Game lost. Reward: %.0f\n", res.Reward)
	}
	return nil
}
