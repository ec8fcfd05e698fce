package engine

// Target is one supervised regression target: the value the approximator
// should predict for Action in State.
type Target struct {
	State  []float64
	Action Action
	Value  float64
}

// Approximator maps an encoded state to one value per action.
//
// TrainStep performs a single optimisation step on the sum of squared errors
// between the predicted value of each target's action and its Value, and
// returns that loss as measured before the step. Clone returns an independent
// copy that shares no parameters with the receiver.
type Approximator interface {
	Forward(state []float64) []float64
	TrainStep(batch []Target) float64
	Clone() Approximator
}

func argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}

func maxValue(values []float64) float64 {
	return values[argmax(values)]
}
