package engine

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

const (
	DefaultLearningRate = 0.001
	adamBeta1           = 0.9
	adamBeta2           = 0.999
	adamEpsilon         = 1e-8
)

var DefaultHiddenSizes = []int{150, 100}

type layer struct {
	w, b   *mat.Dense // w is out x in, b is out x 1
	gw, gb *mat.Dense
	mw, mb *mat.Dense
	vw, vb *mat.Dense
}

func newLayer(in, out int, rng *rand.Rand) *layer {
	bound := 1 / math.Sqrt(float64(in))
	w := make([]float64, out*in)
	for i := range w {
		w[i] = (rng.Float64()*2 - 1) * bound
	}
	b := make([]float64, out)
	for i := range b {
		b[i] = (rng.Float64()*2 - 1) * bound
	}
	return &layer{
		w:  mat.NewDense(out, in, w),
		b:  mat.NewDense(out, 1, b),
		gw: mat.NewDense(out, in, nil),
		gb: mat.NewDense(out, 1, nil),
		mw: mat.NewDense(out, in, nil),
		mb: mat.NewDense(out, 1, nil),
		vw: mat.NewDense(out, in, nil),
		vb: mat.NewDense(out, 1, nil),
	}
}

func (l *layer) clone() *layer {
	return &layer{
		w:  mat.DenseCopyOf(l.w),
		b:  mat.DenseCopyOf(l.b),
		gw: mat.DenseCopyOf(l.gw),
		gb: mat.DenseCopyOf(l.gb),
		mw: mat.DenseCopyOf(l.mw),
		mb: mat.DenseCopyOf(l.mb),
		vw: mat.DenseCopyOf(l.vw),
		vb: mat.DenseCopyOf(l.vb),
	}
}

// MLP is a fully connected ReLU network with a linear output layer, trained
// with Adam.
type MLP struct {
	layers       []*layer
	inputs       int
	outputs      int
	learningRate float64
	steps        int
}

// NewMLP builds a network inputs -> hidden... -> outputs with weights drawn
// uniformly from +-1/sqrt(fan_in).
func NewMLP(inputs int, hidden []int, outputs int, learningRate float64, rng *rand.Rand) *MLP {
	if inputs <= 0 || outputs <= 0 {
		panic(fmt.Sprintf("engine: invalid network shape %d -> %d", inputs, outputs))
	}
	if learningRate <= 0 {
		learningRate = DefaultLearningRate
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	sizes := append([]int{inputs}, hidden...)
	sizes = append(sizes, outputs)
	layers := make([]*layer, 0, len(sizes)-1)
	for i := 0; i+1 < len(sizes); i++ {
		layers = append(layers, newLayer(sizes[i], sizes[i+1], rng))
	}
	return &MLP{layers: layers, inputs: inputs, outputs: outputs, learningRate: learningRate}
}

func (n *MLP) Inputs() int  { return n.inputs }
func (n *MLP) Outputs() int { return n.outputs }

func (n *MLP) Forward(state []float64) []float64 {
	acts, _ := n.forward(state)
	out := acts[len(acts)-1]
	return append([]float64(nil), out.RawMatrix().Data...)
}

// forward returns the activations of every layer (input first) and the
// pre-activations of every layer.
func (n *MLP) forward(state []float64) ([]*mat.Dense, []*mat.Dense) {
	if len(state) != n.inputs {
		panic(fmt.Sprintf("engine: state has %d entries, network expects %d", len(state), n.inputs))
	}
	x := mat.NewDense(n.inputs, 1, append([]float64(nil), state...))
	acts := make([]*mat.Dense, 0, len(n.layers)+1)
	pre := make([]*mat.Dense, 0, len(n.layers))
	acts = append(acts, x)
	for i, l := range n.layers {
		r, _ := l.w.Dims()
		z := mat.NewDense(r, 1, nil)
		z.Mul(l.w, acts[i])
		z.Add(z, l.b)
		pre = append(pre, z)
		a := mat.DenseCopyOf(z)
		if i < len(n.layers)-1 {
			a.Apply(func(_, _ int, v float64) float64 { return math.Max(0, v) }, a)
		}
		acts = append(acts, a)
	}
	return acts, pre
}

func (n *MLP) TrainStep(batch []Target) float64 {
	if len(batch) == 0 {
		return 0
	}
	for _, l := range n.layers {
		l.gw.Zero()
		l.gb.Zero()
	}
	var loss float64
	for _, t := range batch {
		if int(t.Action) < 0 || int(t.Action) >= n.outputs {
			panic(fmt.Sprintf("engine: action %d out of range", int(t.Action)))
		}
		acts, pre := n.forward(t.State)
		q := acts[len(acts)-1].At(int(t.Action), 0)
		diff := q - t.Value
		loss += diff * diff

		delta := mat.NewDense(n.outputs, 1, nil)
		delta.Set(int(t.Action), 0, 2*diff)
		for i := len(n.layers) - 1; i >= 0; i-- {
			l := n.layers[i]
			var gw mat.Dense
			gw.Mul(delta, acts[i].T())
			l.gw.Add(l.gw, &gw)
			l.gb.Add(l.gb, delta)
			if i == 0 {
				break
			}
			_, c := l.w.Dims()
			prev := mat.NewDense(c, 1, nil)
			prev.Mul(l.w.T(), delta)
			z := pre[i-1]
			prev.Apply(func(r, _ int, v float64) float64 {
				if z.At(r, 0) <= 0 {
					return 0
				}
				return v
			}, prev)
			delta = prev
		}
	}
	n.steps++
	for _, l := range n.layers {
		n.adam(l.w, l.gw, l.mw, l.vw)
		n.adam(l.b, l.gb, l.mb, l.vb)
	}
	return loss
}

func (n *MLP) adam(p, g, m, v *mat.Dense) {
	pd := p.RawMatrix().Data
	gd := g.RawMatrix().Data
	md := m.RawMatrix().Data
	vd := v.RawMatrix().Data
	c1 := 1 - math.Pow(adamBeta1, float64(n.steps))
	c2 := 1 - math.Pow(adamBeta2, float64(n.steps))
	for i := range pd {
		md[i] = adamBeta1*md[i] + (1-adamBeta1)*gd[i]
		vd[i] = adamBeta2*vd[i] + (1-adamBeta2)*gd[i]*gd[i]
		mHat := md[i] / c1
		vHat := vd[i] / c2
		pd[i] -= n.learningRate * mHat / (math.Sqrt(vHat) + adamEpsilon)
	}
}

func (n *MLP) Clone() Approximator {
	layers := make([]*layer, len(n.layers))
	for i, l := range n.layers {
		layers[i] = l.clone()
	}
	return &MLP{
		layers:       layers,
		inputs:       n.inputs,
		outputs:      n.outputs,
		learningRate: n.learningRate,
		steps:        n.steps,
	}
}
