package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

func clampFloat(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

const (
	StatusRunning         = "running"
	StatusEpisodeComplete = "episode_complete"
	StatusDone            = "done"
	StatusCancelled       = "cancelled"
	StatusFailed          = "failed"
)

const (
	// AlgorithmQLearning updates after every step from that step alone and
	// bootstraps from the online approximator.
	AlgorithmQLearning = "q-learning"
	// AlgorithmReplay learns from replayed mini-batches, bootstrapping from the
	// online approximator.
	AlgorithmReplay = "replay"
	// AlgorithmTargetNetwork learns from replayed mini-batches and bootstraps
	// from a periodically synchronized copy of the online approximator.
	AlgorithmTargetNetwork = "target-network"
)

const (
	ApproximatorMLP   = "mlp"
	ApproximatorTable = "table"
)

const (
	DefaultEpisodes      = 1000
	DefaultEpsilon       = 1.0
	DefaultEpsilonMin    = 0.1
	DefaultGamma         = 0.9
	DefaultMemorySize    = 1000
	DefaultBatchSize     = 200
	DefaultMaxMoves      = 50
	DefaultSyncFrequency = 500

	progressInterval = 100
)

type Config struct {
	Episodes     int
	Seed         int64
	GridSize     int
	Mode         Mode
	Algorithm    string
	Approximator string
	Epsilon      float64
	EpsilonMin   float64
	Gamma        float64
	LearningRate float64
	TableAlpha   float64
	HiddenSizes  []int
	MemorySize   int
	BatchSize    int
	MaxMoves     int
	// SyncFrequency is the number of environment steps between target
	// network refreshes.
	SyncFrequency int
	// StateNoise bounds the uniform noise added to encoded states. Zero
	// selects DefaultStateNoise, a negative value disables the noise.
	StateNoise        float64
	MaxLayoutAttempts int
	StepDelayMs       int
}

// LossPoint is the loss of one learning update.
type LossPoint struct {
	Update int
	Loss   float64
}

type Snapshot struct {
	RunID             string
	Step              int
	Episode           int
	EpisodeSteps      int
	EpisodeReward     float64
	Reward            float64
	Loss              float64
	Epsilon           float64
	Position          Position
	Board             string
	ValueMap          [][]float64
	SuccessCount      int
	EpisodesCompleted int
	TotalReward       float64
	TotalSteps        int
	Updates           int
	TargetSyncs       int
	Config            Config
	Status            string
	Err               error
}

type Trainer struct {
	cfg               Config
	runID             string
	logger            *slog.Logger
	rng               *rand.Rand
	online            Approximator
	target            Approximator
	replay            *ReplayBuffer
	agent             *epsilonGreedyAgent
	world             *GridWorld
	epsilon           float64
	step              int
	updates           int
	syncs             int
	losses            []LossPoint
	successCount      int
	episodesCompleted int
	totalReward       float64
	totalSteps        int
}

type TrainerOption func(*Trainer)

func WithLogger(l *slog.Logger) TrainerOption {
	return func(t *Trainer) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithApproximator replaces the approximator selected by Config.Approximator.
func WithApproximator(a Approximator) TrainerOption {
	return func(t *Trainer) {
		if a != nil {
			t.online = a
		}
	}
}

func normalizeConfig(cfg Config) Config {
	if cfg.Episodes <= 0 {
		cfg.Episodes = DefaultEpisodes
	}
	if cfg.GridSize < MinGridSize {
		cfg.GridSize = MinGridSize
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeStatic
	}
	switch cfg.Algorithm {
	case AlgorithmQLearning, AlgorithmReplay, AlgorithmTargetNetwork:
		// allowed
	default:
		cfg.Algorithm = AlgorithmTargetNetwork
	}
	switch cfg.Approximator {
	case ApproximatorMLP, ApproximatorTable:
		// allowed
	default:
		cfg.Approximator = ApproximatorMLP
	}
	if cfg.Epsilon <= 0 || cfg.Epsilon > 1 {
		cfg.Epsilon = DefaultEpsilon
	}
	if cfg.EpsilonMin <= 0 {
		cfg.EpsilonMin = DefaultEpsilonMin
	}
	if cfg.EpsilonMin > cfg.Epsilon {
		cfg.EpsilonMin = cfg.Epsilon
	}
	if cfg.Gamma <= 0 || cfg.Gamma > 1 {
		cfg.Gamma = DefaultGamma
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = DefaultLearningRate
	}
	if cfg.TableAlpha <= 0 || cfg.TableAlpha > 1 {
		cfg.TableAlpha = DefaultTableAlpha
	}
	if len(cfg.HiddenSizes) == 0 {
		cfg.HiddenSizes = append([]int(nil), DefaultHiddenSizes...)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.MemorySize <= 0 {
		cfg.MemorySize = DefaultMemorySize
	}
	if cfg.MemorySize <= cfg.BatchSize {
		cfg.MemorySize = cfg.BatchSize + 1
	}
	if cfg.MaxMoves <= 0 {
		cfg.MaxMoves = DefaultMaxMoves
	}
	if cfg.SyncFrequency <= 0 {
		cfg.SyncFrequency = DefaultSyncFrequency
	}
	if cfg.StateNoise == 0 {
		cfg.StateNoise = DefaultStateNoise
	}
	if cfg.StateNoise < 0 {
		cfg.StateNoise = -1
	}
	if cfg.MaxLayoutAttempts <= 0 {
		cfg.MaxLayoutAttempts = DefaultMaxLayoutAttempts
	}
	if cfg.StepDelayMs < 0 {
		cfg.StepDelayMs = 0
	}
	return cfg
}

func NewTrainer(cfg Config, opts ...TrainerOption) *Trainer {
	cfg = normalizeConfig(cfg)
	seed := cfg.Seed
	if seed == 0 {
		seed = 1
	}
	rng := rand.New(rand.NewSource(seed))
	t := &Trainer{
		cfg:     cfg,
		runID:   uuid.NewString(),
		logger:  slog.New(slog.DiscardHandler),
		rng:     rng,
		epsilon: cfg.Epsilon,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.online == nil {
		switch cfg.Approximator {
		case ApproximatorTable:
			t.online = NewQTable(NumActions, cfg.TableAlpha)
		default:
			t.online = NewMLP(StateSize(cfg.GridSize), cfg.HiddenSizes, NumActions, cfg.LearningRate, rng)
		}
	}
	if cfg.Algorithm != AlgorithmQLearning {
		t.replay = NewReplayBuffer(cfg.MemorySize, rng)
	}
	if cfg.Algorithm == AlgorithmTargetNetwork {
		t.target = t.online.Clone()
	}
	t.agent = newEpsilonGreedyAgent(rng, cfg.Epsilon)
	t.logger = t.logger.With("run", t.runID)
	return t
}

func (t *Trainer) RunID() string { return t.runID }
func (t *Trainer) Config() Config { return t.cfg }
func (t *Trainer) Online() Approximator { return t.online }
func (t *Trainer) Target() Approximator { return t.target }
func (t *Trainer) ReplayBuffer() *ReplayBuffer { return t.replay }
func (t *Trainer) Epsilon() float64 { return t.epsilon }

func (t *Trainer) Losses() []LossPoint {
	return append([]LossPoint(nil), t.losses...)
}

func (t *Trainer) Run(ctx context.Context) <-chan Snapshot {
	out := make(chan Snapshot)
	go func() {
		defer close(out)
		t.logger.Info("training started",
			"episodes", t.cfg.Episodes,
			"algorithm", t.cfg.Algorithm,
			"approximator", t.cfg.Approximator,
			"mode", t.cfg.Mode,
			"size", t.cfg.GridSize,
		)
		step := 1.0 / float64(t.cfg.Episodes)
		for episode := 1; episode <= t.cfg.Episodes; episode++ {
			select {
			case <-ctx.Done():
				out <- t.snapshot(StatusCancelled, episode, 0, 0, 0, 0)
				return
			default:
			}
			t.agent.setEpsilon(t.epsilon)
			if !t.runEpisode(ctx, episode, out) {
				return
			}
			t.epsilon = decayEpsilon(t.epsilon, step, t.cfg.EpsilonMin)
			if episode%progressInterval == 0 {
				t.logger.Info("training progress",
					"episode", episode,
					"epsilon", t.epsilon,
					"successes", t.successCount,
					"updates", t.updates,
				)
			}
		}
		t.logger.Info("training finished",
			"episodes", t.episodesCompleted,
			"successes", t.successCount,
			"updates", t.updates,
			"target_syncs", t.syncs,
		)
		final := t.snapshot(StatusDone, t.cfg.Episodes, 0, 0, 0, 0)
		if t.world != nil {
			final.ValueMap = ValueMap(t.online, t.world)
		}
		out <- final
	}()
	return out
}

// Train runs every episode and returns the final snapshot.
func (t *Trainer) Train(ctx context.Context) (Snapshot, error) {
	var final Snapshot
	for snapshot := range t.Run(ctx) {
		final = snapshot
	}
	switch final.Status {
	case StatusFailed:
		return final, final.Err
	case StatusCancelled:
		if err := ctx.Err(); err != nil {
			return final, err
		}
		return final, context.Canceled
	}
	return final, nil
}

func (t *Trainer) runEpisode(ctx context.Context, episode int, out chan<- Snapshot) bool {
	world, err := NewGridWorld(t.cfg.GridSize, t.cfg.Mode,
		WithRandomSource(t.rng),
		WithMaxLayoutAttempts(t.cfg.MaxLayoutAttempts),
	)
	if err != nil {
		t.logger.Error("cannot create world", "episode", episode, "err", err)
		failed := t.snapshot(StatusFailed, episode, 0, 0, 0, 0)
		failed.Err = fmt.Errorf("episode %d: %w", episode, err)
		out <- failed
		return false
	}
	t.world = world
	state := encodeState(world, t.rng, t.cfg.StateNoise)
	visits := make(map[Position]int, world.Size()*world.Size())
	visits[world.Player()]++
	moves := 0
	episodeReward := 0.0
	var reward, loss float64
	for {
		select {
		case <-ctx.Done():
			out <- t.snapshot(StatusCancelled, episode, moves, episodeReward, reward, loss)
			return false
		default:
		}
		t.step++
		moves++
		action := t.agent.act(t.online.Forward(state))
		world.MakeMove(action)
		next := encodeState(world, t.rng, t.cfg.StateNoise)
		reward = world.Reward()
		done := reward > 0
		if t.cfg.Algorithm == AlgorithmQLearning {
			done = world.Finished()
		}
		episodeReward += reward
		visits[world.Player()]++

		loss = t.learn(Transition{
			State:     state,
			Action:    action,
			Reward:    reward,
			NextState: next,
			Done:      done,
		})
		if t.target != nil && t.step%t.cfg.SyncFrequency == 0 {
			t.syncTarget()
		}

		out <- t.snapshot(StatusRunning, episode, moves, episodeReward, reward, loss)
		if t.cfg.StepDelayMs > 0 {
			select {
			case <-ctx.Done():
				out <- t.snapshot(StatusCancelled, episode, moves, episodeReward, reward, loss)
				return false
			case <-time.After(time.Duration(t.cfg.StepDelayMs) * time.Millisecond):
			}
		}
		if world.Finished() || moves > t.cfg.MaxMoves {
			break
		}
		state = next
	}
	if reward > 0 {
		t.successCount++
	}
	t.totalReward += episodeReward
	t.totalSteps += moves
	t.episodesCompleted++
	t.logVisitHeatmap(ctx, episode, visits)
	complete := t.snapshot(StatusEpisodeComplete, episode, moves, episodeReward, reward, loss)
	complete.ValueMap = ValueMap(t.online, world)
	out <- complete
	return true
}

// learn feeds one transition to the configured algorithm and returns the loss
// of the update it triggered, or zero when no update ran.
func (t *Trainer) learn(tr Transition) float64 {
	if t.replay == nil {
		return t.update([]Transition{tr}, t.online)
	}
	t.replay.Push(tr)
	if t.replay.Len() <= t.cfg.BatchSize {
		return 0
	}
	batch, err := t.replay.Sample(t.cfg.BatchSize)
	if err != nil {
		panic(err)
	}
	bootstrap := t.online
	if t.target != nil {
		bootstrap = t.target
	}
	return t.update(batch, bootstrap)
}

// update regresses the online approximator towards
// reward + gamma * max_a Q_bootstrap(next, a), dropping the bootstrap term for
// terminal transitions. bootstrap is only read.
func (t *Trainer) update(batch []Transition, bootstrap Approximator) float64 {
	targets := make([]Target, len(batch))
	for i, tr := range batch {
		value := tr.Reward
		if !tr.Done {
			value += t.cfg.Gamma * maxValue(bootstrap.Forward(tr.NextState))
		}
		targets[i] = Target{State: tr.State, Action: tr.Action, Value: value}
	}
	loss := t.online.TrainStep(targets)
	t.losses = append(t.losses, LossPoint{Update: t.updates, Loss: loss})
	t.updates++
	return loss
}

func (t *Trainer) syncTarget() {
	t.target = t.online.Clone()
	t.syncs++
	t.logger.Debug("target network synchronized", "step", t.step, "syncs", t.syncs)
}

func (t *Trainer) logVisitHeatmap(ctx context.Context, episode int, visits map[Position]int) {
	if t.world == nil || !t.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	var sb strings.Builder
	size := t.world.Size()
	for r := 0; r < size; r++ {
		sb.WriteString("\n")
		for c := 0; c < size; c++ {
			count := visits[Position{Row: r, Col: c}]
			if count == 0 {
				sb.WriteString("  . ")
			} else {
				fmt.Fprintf(&sb, "%3d ", count)
			}
		}
	}
	t.logger.Debug("visit heatmap", "episode", episode, "heatmap", sb.String())
}

func (t *Trainer) snapshot(status string, episode, episodeSteps int, episodeReward, reward, loss float64) Snapshot {
	s := Snapshot{
		RunID:             t.runID,
		Step:              t.step,
		Episode:           episode,
		EpisodeSteps:      episodeSteps,
		EpisodeReward:     episodeReward,
		Reward:            reward,
		Loss:              loss,
		Epsilon:           t.epsilon,
		SuccessCount:      t.successCount,
		EpisodesCompleted: t.episodesCompleted,
		TotalReward:       t.totalReward,
		TotalSteps:        t.totalSteps,
		Updates:           t.updates,
		TargetSyncs:       t.syncs,
		Config:            t.cfg,
		Status:            status,
	}
	if t.world != nil {
		s.Position = t.world.Player()
		s.Board = t.world.Render()
	}
	s.Config.HiddenSizes = append([]int(nil), t.cfg.HiddenSizes...)
	return s
}
