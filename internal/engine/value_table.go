package engine

import (
	"fmt"
	"math"
	"strings"
)

// ValueMap places the Player on every free cell of w's layout and records the
// largest action value the approximator predicts there. Cells held by another
// piece are NaN. w itself is left unchanged.
func ValueMap(approx Approximator, w *GridWorld) [][]float64 {
	size := w.Size()
	original := w.Player()
	defer w.board.setPosition(PlayerPiece, original)

	occupied := make(map[Position]bool, NumPieces)
	for _, p := range w.board.Pieces() {
		if p.Name != PlayerPiece {
			occupied[p.Pos] = true
		}
	}
	values := make([][]float64, size)
	for r := 0; r < size; r++ {
		values[r] = make([]float64, size)
		for c := 0; c < size; c++ {
			pos := Position{Row: r, Col: c}
			if occupied[pos] {
				values[r][c] = math.NaN()
				continue
			}
			w.board.setPosition(PlayerPiece, pos)
			values[r][c] = maxValue(approx.Forward(w.board.RenderArray()))
		}
	}
	return values
}

func FormatValueMap(values [][]float64) string {
	var sb strings.Builder
	sb.WriteString("value table:\n")
	for _, row := range values {
		for _, v := range row {
			if math.IsNaN(v) {
				sb.WriteString("     . ")
				continue
			}
			fmt.Fprintf(&sb, "%6.2f ", v)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
