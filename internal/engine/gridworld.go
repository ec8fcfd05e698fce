package engine

import (
	"fmt"
	"math/rand"
	"strings"
)

const (
	PlayerPiece = "Player"
	GoalPiece   = "Goal"
	PitPiece    = "Pit"
	WallPiece   = "Wall"
)

const (
	MinGridSize              = 4
	NumPieces                = 4
	DefaultMaxLayoutAttempts = 1000
)

const (
	RewardPit  = -10.0
	RewardGoal = 10.0
	RewardStep = -1.0
)

type Mode string

const (
	ModeStatic Mode = "static"
	ModePlayer Mode = "player"
	ModeRandom Mode = "random"
)

// ParseMode accepts the short mode names and their long aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "static", "fixed":
		return ModeStatic, nil
	case "player", "randomized-player":
		return ModePlayer, nil
	case "random", "fully-randomized":
		return ModeRandom, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

type Action int

const (
	ActionUp Action = iota
	ActionDown
	ActionLeft
	ActionRight
)

const NumActions = 4

func (a Action) String() string {
	switch a {
	case ActionUp:
		return "up"
	case ActionDown:
		return "down"
	case ActionLeft:
		return "left"
	case ActionRight:
		return "right"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

func (a Action) direction() Position {
	switch a {
	case ActionUp:
		return Position{Row: -1}
	case ActionDown:
		return Position{Row: 1}
	case ActionLeft:
		return Position{Col: -1}
	case ActionRight:
		return Position{Col: 1}
	}
	panic(fmt.Sprintf("engine: invalid action %d", int(a)))
}

var cardinalDirections = []Position{{Row: -1}, {Row: 1}, {Col: -1}, {Col: 1}}

type MoveStatus int

const (
	MoveValid MoveStatus = iota
	MoveBlocked
	MoveLethal
)

func (s MoveStatus) String() string {
	switch s {
	case MoveValid:
		return "valid"
	case MoveBlocked:
		return "blocked"
	case MoveLethal:
		return "lethal"
	}
	return fmt.Sprintf("MoveStatus(%d)", int(s))
}

type worldOptions struct {
	rng         *rand.Rand
	maxAttempts int
}

type WorldOption func(*worldOptions)

func WithRandomSource(r *rand.Rand) WorldOption {
	return func(o *worldOptions) {
		o.rng = r
	}
}

func WithMaxLayoutAttempts(n int) WorldOption {
	return func(o *worldOptions) {
		o.maxAttempts = n
	}
}

// GridWorld applies the game rules on top of a Board holding the four role
// pieces.
type GridWorld struct {
	board *Board
	mode  Mode
	rng   *rand.Rand
}

// NewGridWorld builds a world of the given size (at least MinGridSize) laid
// out according to mode. Randomized modes redraw invalid layouts and give up
// with a *LayoutError after the configured number of attempts.
func NewGridWorld(size int, mode Mode, opts ...WorldOption) (*GridWorld, error) {
	o := worldOptions{maxAttempts: DefaultMaxLayoutAttempts}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(1))
	}
	if o.maxAttempts <= 0 {
		o.maxAttempts = DefaultMaxLayoutAttempts
	}
	if size < MinGridSize {
		size = MinGridSize
	}
	w := &GridWorld{board: NewBoard(size), mode: mode, rng: o.rng}
	switch mode {
	case ModeStatic:
		w.placeStatic()
		return w, nil
	case ModePlayer, ModeRandom:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, string(mode))
	}
	var last error
	for attempt := 0; attempt < o.maxAttempts; attempt++ {
		if mode == ModePlayer {
			w.placeStatic()
			w.board.setPosition(PlayerPiece, w.randomPosition())
		} else {
			w.placeRandom()
		}
		if last = w.CheckBoard(); last == nil {
			return w, nil
		}
	}
	return nil, &LayoutError{Mode: mode, Attempts: o.maxAttempts, Last: last}
}

func (w *GridWorld) placeStatic() {
	w.board.AddPiece(PlayerPiece, "P", Position{Row: 0, Col: 3})
	w.board.AddPiece(GoalPiece, "+", Position{Row: 0, Col: 0})
	w.board.AddPiece(PitPiece, "-", Position{Row: 0, Col: 1})
	w.board.AddPiece(WallPiece, "W", Position{Row: 1, Col: 1})
}

func (w *GridWorld) placeRandom() {
	w.board.AddPiece(PlayerPiece, "P", w.randomPosition())
	w.board.AddPiece(GoalPiece, "+", w.randomPosition())
	w.board.AddPiece(PitPiece, "-", w.randomPosition())
	w.board.AddPiece(WallPiece, "W", w.randomPosition())
}

func (w *GridWorld) randomPosition() Position {
	return Position{Row: w.rng.Intn(w.board.Size), Col: w.rng.Intn(w.board.Size)}
}

func (w *GridWorld) Board() *Board {
	return w.board
}

func (w *GridWorld) Mode() Mode {
	return w.mode
}

func (w *GridWorld) Size() int {
	return w.board.Size
}

func (w *GridWorld) Player() Position {
	return w.board.position(PlayerPiece)
}

// SetPiecePosition moves a role piece without checking the game rules. The
// position must be on the board.
func (w *GridWorld) SetPiecePosition(name string, pos Position) error {
	if _, ok := w.board.Piece(name); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPiece, name)
	}
	if !w.board.InBounds(pos) {
		return fmt.Errorf("%w: %s at (%d,%d)", ErrOutOfBounds, name, pos.Row, pos.Col)
	}
	w.board.setPosition(name, pos)
	return nil
}

// ValidateMove classifies moving the named piece by dir. A Pit takes
// precedence over a Wall, and both over the board edge.
func (w *GridWorld) ValidateMove(name string, dir Position) MoveStatus {
	target := w.board.position(name).add(dir)
	switch {
	case target == w.board.position(PitPiece):
		return MoveLethal
	case target == w.board.position(WallPiece):
		return MoveBlocked
	case !w.board.InBounds(target):
		return MoveBlocked
	}
	return MoveValid
}

// CheckBoard returns nil for a playable layout, ErrOverlappingPieces when two
// pieces share a cell and ErrCornerTrap when the Player or the Goal sits in a
// corner with no valid move out.
func (w *GridWorld) CheckBoard() error {
	seen := make(map[Position]string, NumPieces)
	for _, p := range w.board.Pieces() {
		if other, ok := seen[p.Pos]; ok {
			return fmt.Errorf("%w: %s and %s at (%d,%d)", ErrOverlappingPieces, other, p.Name, p.Pos.Row, p.Pos.Col)
		}
		seen[p.Pos] = p.Name
	}
	for _, name := range []string{PlayerPiece, GoalPiece} {
		if !w.isCorner(w.board.position(name)) {
			continue
		}
		if !w.hasValidMove(name) {
			return fmt.Errorf("%w: %s", ErrCornerTrap, name)
		}
	}
	return nil
}

func (w *GridWorld) ValidateBoard() bool {
	return w.CheckBoard() == nil
}

func (w *GridWorld) isCorner(p Position) bool {
	last := w.board.Size - 1
	return (p.Row == 0 || p.Row == last) && (p.Col == 0 || p.Col == last)
}

func (w *GridWorld) hasValidMove(name string) bool {
	for _, dir := range cardinalDirections {
		if w.ValidateMove(name, dir) == MoveValid {
			return true
		}
	}
	return false
}

// MakeMove moves the Player unless the move is blocked, in which case the
// world is left untouched.
func (w *GridWorld) MakeMove(a Action) MoveStatus {
	dir := a.direction()
	status := w.ValidateMove(PlayerPiece, dir)
	if status != MoveBlocked {
		w.board.setPosition(PlayerPiece, w.Player().add(dir))
	}
	return status
}

func (w *GridWorld) Reward() float64 {
	player := w.Player()
	switch player {
	case w.board.position(PitPiece):
		return RewardPit
	case w.board.position(GoalPiece):
		return RewardGoal
	}
	return RewardStep
}

// Finished reports whether the Player is on the Goal or in the Pit.
func (w *GridWorld) Finished() bool {
	return w.Reward() != RewardStep
}

func (w *GridWorld) Render() string {
	return w.board.Render()
}
