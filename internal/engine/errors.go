package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidLayout          = errors.New("invalid board layout")
	ErrOverlappingPieces      = errors.New("pieces share a position")
	ErrCornerTrap             = errors.New("piece trapped in a corner")
	ErrInsufficientReplayData = errors.New("not enough transitions in replay buffer")
	ErrInvalidBatchSize       = errors.New("batch size must be positive")
	ErrOutOfBounds            = errors.New("position outside the board")
	ErrUnknownMode            = errors.New("unknown initialization mode")
	ErrUnknownPiece           = errors.New("unknown piece")
)

// LayoutError reports that a randomized layout could not be placed within the
// configured number of attempts.
type LayoutError struct {
	Mode     Mode
	Attempts int
	Last     error
}

func (e *LayoutError) Error() string {
	if e.Last != nil {
		return fmt.Sprintf("%s layout still invalid after %d attempts: %v", e.Mode, e.Attempts, e.Last)
	}
	return fmt.Sprintf("%s layout still invalid after %d attempts", e.Mode, e.Attempts)
}

func (e *LayoutError) Is(target error) bool {
	return target == ErrInvalidLayout
}

func (e *LayoutError) Unwrap() error {
	return e.Last
}
