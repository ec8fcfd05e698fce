package engine

import (
	"fmt"
	"math/rand"
)

const DefaultEvalMoves = 15

type Outcome int

const (
	OutcomeLoss Outcome = iota
	OutcomeWin
)

func (o Outcome) String() string {
	if o == OutcomeWin {
		return "win"
	}
	return "loss"
}

type EvalConfig struct {
	GridSize          int
	Mode              Mode
	MaxMoves          int
	StateNoise        float64
	MaxLayoutAttempts int
	// Display records the board before the first move and after every move
	// in EvalResult.Frames and EvalResult.Grids.
	Display bool
}

type EvalResult struct {
	Outcome Outcome
	Moves   int
	Reward  float64
	Actions []Action
	Frames  []string
	// Grids holds the cell codes behind each frame, as returned by Board.Grid.
	Grids [][][]string
}

type EvalSummary struct {
	Games int
	Wins  int
}

func (r *EvalResult) record(w *GridWorld) {
	r.Frames = append(r.Frames, w.Render())
	r.Grids = append(r.Grids, w.Board().Grid())
}

func (s EvalSummary) WinRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Games)
}

func normalizeEvalConfig(cfg EvalConfig) EvalConfig {
	if cfg.GridSize < MinGridSize {
		cfg.GridSize = MinGridSize
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeStatic
	}
	if cfg.MaxMoves <= 0 {
		cfg.MaxMoves = DefaultEvalMoves
	}
	if cfg.StateNoise == 0 {
		cfg.StateNoise = DefaultStateNoise
	}
	if cfg.MaxLayoutAttempts <= 0 {
		cfg.MaxLayoutAttempts = DefaultMaxLayoutAttempts
	}
	return cfg
}

// Evaluate plays one game greedily. Running out of moves is a loss.
func Evaluate(approx Approximator, cfg EvalConfig, rng *rand.Rand) (EvalResult, error) {
	cfg = normalizeEvalConfig(cfg)
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	world, err := NewGridWorld(cfg.GridSize, cfg.Mode,
		WithRandomSource(rng),
		WithMaxLayoutAttempts(cfg.MaxLayoutAttempts),
	)
	if err != nil {
		return EvalResult{}, fmt.Errorf("evaluate: %w", err)
	}
	return play(approx, world, cfg, rng), nil
}

func play(approx Approximator, world *GridWorld, cfg EvalConfig, rng *rand.Rand) EvalResult {
	res := EvalResult{Outcome: OutcomeLoss, Reward: world.Reward()}
	if cfg.Display {
		res.record(world)
	}
	state := encodeState(world, rng, cfg.StateNoise)
	for res.Moves < cfg.MaxMoves && !world.Finished() {
		action := Action(argmax(approx.Forward(state)))
		world.MakeMove(action)
		res.Moves++
		res.Actions = append(res.Actions, action)
		res.Reward = world.Reward()
		if cfg.Display {
			res.record(world)
		}
		state = encodeState(world, rng, cfg.StateNoise)
	}
	if res.Reward > 0 {
		res.Outcome = OutcomeWin
	}
	return res
}

// EvaluateMany plays the given number of greedy games, drawing layouts and
// noise from a generator seeded with seed.
func EvaluateMany(approx Approximator, cfg EvalConfig, games int, seed int64) (EvalSummary, error) {
	if seed == 0 {
		seed = 1
	}
	rng := rand.New(rand.NewSource(seed))
	summary := EvalSummary{}
	for i := 0; i < games; i++ {
		res, err := Evaluate(approx, cfg, rng)
		if err != nil {
			return summary, fmt.Errorf("game %d: %w", i+1, err)
		}
		summary.Games++
		if res.Outcome == OutcomeWin {
			summary.Wins++
		}
	}
	return summary, nil
}
