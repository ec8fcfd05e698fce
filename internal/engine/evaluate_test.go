package engine

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedPolicy picks a fixed action per player cell and Up everywhere else.
type scriptedPolicy struct {
	size  int
	moves map[Position]Action
}

func (p scriptedPolicy) Forward(state []float64) []float64 {
	cell := decodePositions(state, NumPieces)[0]
	pos := Position{Row: cell / p.size, Col: cell % p.size}
	values := make([]float64, NumActions)
	action, ok := p.moves[pos]
	if !ok {
		action = ActionUp
	}
	values[action] = 1
	return values
}

func (p scriptedPolicy) TrainStep([]Target) float64 { return 0 }
func (p scriptedPolicy) Clone() Approximator { return p }

// shortestStaticPath walks around the wall from (0,3) to the goal at (0,0).
var shortestStaticPath = scriptedPolicy{size: 4, moves: map[Position]Action{
	{Row: 0, Col: 3}: ActionDown,
	{Row: 1, Col: 3}: ActionLeft,
	{Row: 1, Col: 2}: ActionDown,
	{Row: 2, Col: 2}: ActionLeft,
	{Row: 2, Col: 1}: ActionLeft,
	{Row: 2, Col: 0}: ActionUp,
	{Row: 1, Col: 0}: ActionUp,
}}

func TestEvaluateWin(t *testing.T) {
	res, err := Evaluate(shortestStaticPath, EvalConfig{Mode: ModeStatic, Display: true}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, OutcomeWin, res.Outcome)
	assert.Equal(t, 7, res.Moves)
	assert.Equal(t, 10.0, res.Reward)
	assert.Len(t, res.Frames, 8)
	require.Len(t, res.Grids, 8)
	assert.Equal(t, ActionDown, res.Actions[0])

	assert.Equal(t, "P", res.Grids[0][0][3])
	assert.Equal(t, "+", res.Grids[0][0][0])
	assert.Equal(t, "P", res.Grids[7][0][0], "player shown on the goal it reached")
	assert.Equal(t, "", res.Grids[7][0][3])
	assert.Equal(t, " P  -  *  * \n", res.Frames[7][:13])
}

func TestEvaluatePitIsLoss(t *testing.T) {
	left := scriptedPolicy{size: 4, moves: map[Position]Action{
		{Row: 0, Col: 3}: ActionLeft,
		{Row: 0, Col: 2}: ActionLeft,
	}}
	res, err := Evaluate(left, EvalConfig{Mode: ModeStatic}, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeLoss, res.Outcome)
	assert.Equal(t, 2, res.Moves)
	assert.Equal(t, -10.0, res.Reward)
	assert.Nil(t, res.Frames)
	assert.Nil(t, res.Grids)
}

func TestEvaluateMoveCapIsLoss(t *testing.T) {
	stuck := scriptedPolicy{size: 4}
	res, err := Evaluate(stuck, EvalConfig{Mode: ModeStatic}, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeLoss, res.Outcome)
	assert.Equal(t, DefaultEvalMoves, res.Moves)
	assert.Equal(t, -1.0, res.Reward)
}

func TestEvaluateMany(t *testing.T) {
	summary, err := EvaluateMany(shortestStaticPath, EvalConfig{Mode: ModeStatic}, 10, 3)
	require.NoError(t, err)
	assert.Equal(t, EvalSummary{Games: 10, Wins: 10}, summary)
	assert.Equal(t, 1.0, summary.WinRate())

	assert.Equal(t, 0.0, EvalSummary{}.WinRate())
}

func TestValueMap(t *testing.T) {
	w := newStaticWorld(t, 4)
	values := ValueMap(shortestStaticPath, w)

	require.Len(t, values, 4)
	assert.True(t, math.IsNaN(values[0][0]))
	assert.True(t, math.IsNaN(values[0][1]))
	assert.True(t, math.IsNaN(values[1][1]))
	assert.Equal(t, 1.0, values[0][3])
	assert.Equal(t, 1.0, values[3][3])
	assert.Equal(t, Position{Row: 0, Col: 3}, w.Player())

	out := FormatValueMap(values)
	assert.Contains(t, out, "value table:")
	assert.Contains(t, out, "  1.00 ")
}
