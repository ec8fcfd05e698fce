package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid-dqn-go/internal/engine"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	require.NoError(t, root.Execute(), errOut.String())
	return out.String()
}

func TestShowStaticBoard(t *testing.T) {
	out := execute(t, "show", "--mode", "static", "--no-color")
	assert.Contains(t, out, "mode=static size=4 reward=-1")
	assert.Contains(t, out, " +  -  *  P \n *  W  *  * \n")
}

func TestShowRejectsUnknownMode(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"show", "--mode", "diagonal"})
	assert.Error(t, root.Execute())
}

func TestTrainWritesSummaryAndPlot(t *testing.T) {
	plotPath := filepath.Join(t.TempDir(), "loss.svg")
	out := execute(t, "train",
		"--episodes", "20",
		"--approximator", "table",
		"--algorithm", "replay",
		"--batch", "10",
		"--memory", "50",
		"--eval-games", "5",
		"--plot", plotPath,
		"--display",
		"--no-color",
		"--log-level", "error",
	)
	assert.Contains(t, out, "20 episodes")
	assert.Contains(t, out, "value table:")
	assert.Contains(t, out, "Games played: 5")
	assert.Contains(t, out, "Initial State:")

	info, err := os.Stat(plotPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLevel("debug").String())
	assert.Equal(t, "WARN", parseLevel("Warning").String())
	assert.Equal(t, "INFO", parseLevel("bogus").String())
}

func TestEnvFallbacks(t *testing.T) {
	t.Setenv("GRIDDQN_TEST_INT", "nope")
	t.Setenv("GRIDDQN_TEST_FLOAT", "0.25")
	assert.Equal(t, 7, envInt("GRIDDQN_TEST_INT", 7))
	assert.InDelta(t, 0.25, envFloat("GRIDDQN_TEST_FLOAT", 1), 1e-12)
	assert.Equal(t, "x", envString("GRIDDQN_TEST_UNSET", "x"))
}

func TestEnvInts(t *testing.T) {
	t.Setenv("GRIDDQN_TEST_SIZES", "32, 16")
	assert.Equal(t, []int{32, 16}, envInts("GRIDDQN_TEST_SIZES", []int{1}))

	t.Setenv("GRIDDQN_TEST_SIZES", "32,x")
	assert.Equal(t, []int{1}, envInts("GRIDDQN_TEST_SIZES", []int{1}))
	assert.Equal(t, []int{150, 100}, envInts("GRIDDQN_TEST_UNSET", []int{150, 100}))
}

func TestHiddenSizesFromEnv(t *testing.T) {
	t.Setenv("GRIDDQN_HIDDEN_SIZES", "12,6")
	cmd := newTrainCmd()
	hidden, err := cmd.Flags().GetIntSlice("hidden")
	require.NoError(t, err)
	assert.Equal(t, []int{12, 6}, hidden)
}

func TestPrintGridWithoutColor(t *testing.T) {
	var out bytes.Buffer
	printGrid(&out, [][]string{{"", "P"}, {"W", "+"}}, false)
	assert.Equal(t, " *  P \n W  + \n", out.String())
}

// leftOnly always prefers moving left.
type leftOnly struct{}

func (leftOnly) Forward([]float64) []float64 { return []float64{0, 0, 1, 0} }
func (leftOnly) TrainStep([]engine.Target) float64 { return 0 }
func (l leftOnly) Clone() engine.Approximator { return l }

func TestDisplayGameTracesEveryMove(t *testing.T) {
	var out bytes.Buffer
	err := displayGame(context.Background(), &out, leftOnly{}, engine.EvalConfig{Mode: engine.ModeStatic}, 1, false)
	require.NoError(t, err)

	want := "Initial State:\n" +
		" +  -  *  P \n *  W  *  * \n *  *  *  * \n *  *  *  * \n" +
		"Move #1: left\n" +
		" +  -  P  * \n *  W  *  * \n *  *  *  * \n *  *  *  * \n" +
		"Move #2: left\n" +
		" +  P  *  * \n *  W  *  * \n *  *  *  * \n *  *  *  * \n" +
		"Game lost. Reward: -10\n"
	assert.Equal(t, want, out.String())
}
