package engine

import "fmt"

const DefaultTableAlpha = 0.5

type tableKey [NumPieces]int

// QTable is a tabular Approximator. States are keyed by the decoded cell of
// every piece plane, so the noise added by the encoder does not split states.
type QTable struct {
	actions int
	alpha   float64
	data    map[tableKey][]float64
}

func NewQTable(actions int, alpha float64) *QTable {
	if actions <= 0 {
		actions = NumActions
	}
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultTableAlpha
	}
	return &QTable{actions: actions, alpha: alpha, data: make(map[tableKey][]float64)}
}

func (q *QTable) key(state []float64) tableKey {
	cells := decodePositions(state, NumPieces)
	var k tableKey
	copy(k[:], cells)
	return k
}

func (q *QTable) row(state []float64) []float64 {
	k := q.key(state)
	values, ok := q.data[k]
	if !ok {
		values = make([]float64, q.actions)
		q.data[k] = values
	}
	return values
}

func (q *QTable) Forward(state []float64) []float64 {
	values, ok := q.data[q.key(state)]
	if !ok {
		return make([]float64, q.actions)
	}
	return append([]float64(nil), values...)
}

// TrainStep moves each selected entry a fraction alpha of the way towards its
// target.
func (q *QTable) TrainStep(batch []Target) float64 {
	var loss float64
	for _, t := range batch {
		if int(t.Action) < 0 || int(t.Action) >= q.actions {
			panic(fmt.Sprintf("engine: action %d out of range", int(t.Action)))
		}
		values := q.row(t.State)
		current := values[t.Action]
		diff := t.Value - current
		loss += diff * diff
		values[t.Action] = current + q.alpha*diff
	}
	return loss
}

func (q *QTable) Clone() Approximator {
	data := make(map[tableKey][]float64, len(q.data))
	for k, v := range q.data {
		data[k] = append([]float64(nil), v...)
	}
	return &QTable{actions: q.actions, alpha: q.alpha, data: data}
}

func (q *QTable) Len() int {
	return len(q.data)
}
