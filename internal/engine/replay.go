package engine

import (
	"fmt"
	"math/rand"
)

// Transition is one observed step. It is not modified after being pushed.
type Transition struct {
	State     []float64
	Action    Action
	Reward    float64
	NextState []float64
	Done      bool
}

// ReplayBuffer is a fixed-capacity FIFO of transitions backed by a ring.
type ReplayBuffer struct {
	items    []Transition
	start    int
	size     int
	capacity int
	rng      *rand.Rand
}

func NewReplayBuffer(capacity int, rng *rand.Rand) *ReplayBuffer {
	if capacity <= 0 {
		capacity = 1
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &ReplayBuffer{
		items:    make([]Transition, capacity),
		capacity: capacity,
		rng:      rng,
	}
}

// Push appends t, evicting the oldest transition once the buffer is full.
func (r *ReplayBuffer) Push(t Transition) {
	if r.size < r.capacity {
		r.items[(r.start+r.size)%r.capacity] = t
		r.size++
		return
	}
	r.items[r.start] = t
	r.start = (r.start + 1) % r.capacity
}

func (r *ReplayBuffer) Len() int {
	return r.size
}

func (r *ReplayBuffer) Capacity() int {
	return r.capacity
}

// Sample draws batchSize distinct transitions uniformly at random. batchSize
// must be positive and the buffer must hold strictly more transitions.
func (r *ReplayBuffer) Sample(batchSize int) ([]Transition, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBatchSize, batchSize)
	}
	if r.size <= batchSize {
		return nil, fmt.Errorf("%w: have %d, need more than %d", ErrInsufficientReplayData, r.size, batchSize)
	}
	batch := make([]Transition, batchSize)
	for i, idx := range r.rng.Perm(r.size)[:batchSize] {
		batch[i] = r.at(idx)
	}
	return batch, nil
}

// Transitions returns the buffered transitions, oldest first.
func (r *ReplayBuffer) Transitions() []Transition {
	out := make([]Transition, r.size)
	for i := range out {
		out[i] = r.at(i)
	}
	return out
}

func (r *ReplayBuffer) at(i int) Transition {
	return r.items[(r.start+i)%r.capacity]
}
