package engine

import (
	"context"
	"testing"
)

func benchmarkEpisodes(b *testing.B, cfg Config) {
	for i := 0; i < b.N; i++ {
		trainer := NewTrainer(cfg)
		ctx := context.Background()
		for range trainer.Run(ctx) {
		}
	}
}

func BenchmarkEpisodeTargetNetwork(b *testing.B) {
	cfg := Config{
		Episodes:      1,
		Seed:          99,
		Algorithm:     AlgorithmTargetNetwork,
		Approximator:  ApproximatorMLP,
		Mode:          ModeRandom,
		BatchSize:     32,
		MemorySize:    256,
		SyncFrequency: 50,
	}
	benchmarkEpisodes(b, cfg)
}

func BenchmarkEpisodeQLearningTable(b *testing.B) {
	cfg := Config{
		Episodes:     1,
		Seed:         99,
		Algorithm:    AlgorithmQLearning,
		Approximator: ApproximatorTable,
		Mode:         ModePlayer,
	}
	benchmarkEpisodes(b, cfg)
}

func BenchmarkMLPTrainStep(b *testing.B) {
	net := NewMLP(64, DefaultHiddenSizes, NumActions, DefaultLearningRate, nil)
	state := make([]float64, 64)
	state[3], state[16], state[33], state[53] = 1, 1, 1, 1
	batch := make([]Target, DefaultBatchSize)
	for i := range batch {
		batch[i] = Target{State: state, Action: Action(i % NumActions), Value: 1}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		net.TrainStep(batch)
	}
}
