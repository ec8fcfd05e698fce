package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transitionWithReward(r float64) Transition {
	return Transition{
		State:     []float64{r},
		Action:    ActionUp,
		Reward:    r,
		NextState: []float64{r + 1},
	}
}

func rewards(ts []Transition) []float64 {
	out := make([]float64, len(ts))
	for i, tr := range ts {
		out[i] = tr.Reward
	}
	return out
}

func TestReplayBufferKeepsLastTransitions(t *testing.T) {
	buf := NewReplayBuffer(3, rand.New(rand.NewSource(1)))
	for i := 1; i <= 5; i++ {
		buf.Push(transitionWithReward(float64(i)))
	}
	assert.Equal(t, 3, buf.Len())
	assert.Equal(t, []float64{3, 4, 5}, rewards(buf.Transitions()))
}

func TestReplayBufferEvictsOldest(t *testing.T) {
	const capacity = 10
	for _, k := range []int{0, 1, 7, 10, 23} {
		buf := NewReplayBuffer(capacity, rand.New(rand.NewSource(1)))
		for i := 0; i < capacity+k; i++ {
			buf.Push(transitionWithReward(float64(i)))
		}
		require.Equal(t, capacity, buf.Len())
		kept := rewards(buf.Transitions())
		for i := 0; i < k; i++ {
			assert.NotContains(t, kept, float64(i), "k=%d", k)
		}
		assert.Equal(t, float64(k), kept[0])
		assert.Equal(t, float64(capacity+k-1), kept[capacity-1])
	}
}

func TestReplayBufferSampleNeedsMoreThanBatch(t *testing.T) {
	buf := NewReplayBuffer(10, rand.New(rand.NewSource(1)))
	for i := 0; i < 4; i++ {
		buf.Push(transitionWithReward(float64(i)))
	}
	_, err := buf.Sample(4)
	assert.ErrorIs(t, err, ErrInsufficientReplayData)

	_, err = buf.Sample(0)
	assert.ErrorIs(t, err, ErrInvalidBatchSize)
	_, err = buf.Sample(-2)
	assert.ErrorIs(t, err, ErrInvalidBatchSize)

	buf.Push(transitionWithReward(4))
	batch, err := buf.Sample(4)
	require.NoError(t, err)
	assert.Len(t, batch, 4)
}

func TestReplayBufferSampleWithoutReplacement(t *testing.T) {
	buf := NewReplayBuffer(50, rand.New(rand.NewSource(3)))
	for i := 0; i < 50; i++ {
		buf.Push(transitionWithReward(float64(i)))
	}
	for round := 0; round < 20; round++ {
		batch, err := buf.Sample(49)
		require.NoError(t, err)
		seen := make(map[float64]bool, len(batch))
		for _, tr := range batch {
			assert.False(t, seen[tr.Reward], "duplicate transition %v", tr.Reward)
			seen[tr.Reward] = true
		}
	}
}

func TestReplayBufferSampleCoversBuffer(t *testing.T) {
	buf := NewReplayBuffer(8, rand.New(rand.NewSource(5)))
	for i := 0; i < 8; i++ {
		buf.Push(transitionWithReward(float64(i)))
	}
	counts := make(map[float64]int)
	for round := 0; round < 500; round++ {
		batch, err := buf.Sample(2)
		require.NoError(t, err)
		for _, tr := range batch {
			counts[tr.Reward]++
		}
	}
	assert.Len(t, counts, 8)
	for r, c := range counts {
		assert.Greater(t, c, 50, "transition %v sampled %d times", r, c)
	}
}
