package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAgentGreedyPicksFirstBest(t *testing.T) {
	agent := newEpsilonGreedyAgent(rand.New(rand.NewSource(1)), 0)
	assert.Equal(t, ActionLeft, agent.act([]float64{-1, 0.5, 2, 1}))
	assert.Equal(t, ActionDown, agent.act([]float64{0, 3, 3, 3}))
}

func TestAgentExploresUniformly(t *testing.T) {
	agent := newEpsilonGreedyAgent(rand.New(rand.NewSource(1)), 1)
	counts := make(map[Action]int)
	for i := 0; i < 4000; i++ {
		counts[agent.act([]float64{10, 0, 0, 0})]++
	}
	for a := Action(0); a < NumActions; a++ {
		assert.InDelta(t, 1000, counts[a], 150, "action %v", a)
	}
}

func TestEpsilonDecayStopsAtFloor(t *testing.T) {
	for _, epochs := range []int{1, 3, 10, 1000} {
		epsilon := 1.0
		step := 1.0 / float64(epochs)
		for i := 0; i < epochs; i++ {
			epsilon = decayEpsilon(epsilon, step, 0.1)
			assert.GreaterOrEqual(t, epsilon, 0.1)
		}
		assert.InDelta(t, 0.1, epsilon, 1e-9, "epochs=%d", epochs)
	}
}
