package engine

import "math/rand"

const DefaultStateNoise = 0.1

// StateSize is the length of the encoded state for a board of the given size.
func StateSize(gridSize int) int {
	if gridSize < MinGridSize {
		gridSize = MinGridSize
	}
	return gridSize * gridSize * NumPieces
}

// encodeState returns the one-hot board planes with independent uniform noise
// in [0, noise) added to every entry.
func encodeState(w *GridWorld, rng *rand.Rand, noise float64) []float64 {
	state := w.Board().RenderArray()
	if noise <= 0 || rng == nil {
		return state
	}
	for i := range state {
		state[i] += rng.Float64() * noise
	}
	return state
}

// decodePositions recovers the cell index of every piece plane by taking the
// largest entry of each plane.
func decodePositions(state []float64, planes int) []int {
	if planes <= 0 || len(state)%planes != 0 {
		panic("engine: state length is not a multiple of the piece count")
	}
	frame := len(state) / planes
	cells := make([]int, planes)
	for p := 0; p < planes; p++ {
		plane := state[p*frame : (p+1)*frame]
		best := 0
		for i := 1; i < frame; i++ {
			if plane[i] > plane[best] {
				best = i
			}
		}
		cells[p] = best
	}
	return cells
}
