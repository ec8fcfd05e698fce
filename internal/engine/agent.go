package engine

import "math/rand"

type epsilonGreedyAgent struct {
	rng     *rand.Rand
	epsilon float64
}

func newEpsilonGreedyAgent(rng *rand.Rand, epsilon float64) *epsilonGreedyAgent {
	return &epsilonGreedyAgent{rng: rng, epsilon: epsilon}
}

func (a *epsilonGreedyAgent) setEpsilon(epsilon float64) {
	a.epsilon = clampFloat(epsilon, 0, 1)
}

// act explores with probability epsilon and otherwise picks the first action
// with the highest value.
func (a *epsilonGreedyAgent) act(values []float64) Action {
	if a.epsilon > 0 && a.rng.Float64() < a.epsilon {
		return Action(a.rng.Intn(NumActions))
	}
	return Action(argmax(values))
}

// decayEpsilon lowers epsilon linearly by step without going below floor.
func decayEpsilon(epsilon, step, floor float64) float64 {
	if epsilon > floor {
		epsilon -= step
	}
	return maxFloat(floor, epsilon)
}
