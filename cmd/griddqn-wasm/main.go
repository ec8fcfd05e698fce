//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"syscall/js"

	"grid-dqn-go/internal/engine"
)

var (
	startFnOnce sync.Once
	trainerMu   sync.Mutex
	cancelRun   context.CancelFunc
	onSnapshot  js.Value
)

func main() {
	registerCallbacks()
	// Keep the module alive for callbacks.
	select {}
}

func registerCallbacks() {
	startFnOnce.Do(func() {
		js.Global().Set("griddqnRegisterSnapshotHandler", js.FuncOf(registerSnapshotHandler))
		js.Global().Set("griddqnStartTraining", js.FuncOf(startTraining))
		js.Global().Set("griddqnStopTraining", js.FuncOf(stopTraining))
	})
}

func registerSnapshotHandler(this js.Value, args []js.Value) interface{} {
	if len(args) != 1 || args[0].Type() != js.TypeFunction {
		fmt.Println("registerSnapshotHandler requires a function argument")
		return nil
	}
	onSnapshot = args[0]
	return nil
}

// startTraining takes a JSON encoded engine.Config and streams every snapshot
// of the run to the registered handler. A running session is cancelled first.
func startTraining(this js.Value, args []js.Value) interface{} {
	if len(args) == 0 {
		fmt.Println("startTraining requires a JSON config string")
		return nil
	}
	var cfg engine.Config
	if err := json.Unmarshal([]byte(args[0].String()), &cfg); err != nil {
		fmt.Printf("invalid config: %v\n", err)
		return nil
	}
	if cfg.Mode != "" {
		mode, err := engine.ParseMode(string(cfg.Mode))
		if err != nil {
			fmt.Printf("invalid config: %v\n", err)
			return nil
		}
		cfg.Mode = mode
	}
	if onSnapshot.IsUndefined() || onSnapshot.IsNull() {
		fmt.Println("snapshot handler not registered")
		return nil
	}

	trainerMu.Lock()
	if cancelRun != nil {
		cancelRun()
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancelRun = cancel
	trainerMu.Unlock()

	trainer := engine.NewTrainer(cfg)
	go func() {
		for snapshot := range trainer.Run(ctx) {
			onSnapshot.Invoke(snapshotToJS(snapshot))
		}
	}()
	return nil
}

func stopTraining(this js.Value, args []js.Value) interface{} {
	trainerMu.Lock()
	if cancelRun != nil {
		cancelRun()
		cancelRun = nil
	}
	trainerMu.Unlock()
	return nil
}

func snapshotToJS(snapshot engine.Snapshot) js.Value {
	valueMap := make([]interface{}, len(snapshot.ValueMap))
	for i, row := range snapshot.ValueMap {
		rowCopy := make([]interface{}, len(row))
		for j, v := range row {
			if math.IsNaN(v) {
				rowCopy[j] = nil
				continue
			}
			rowCopy[j] = v
		}
		valueMap[i] = rowCopy
	}
	hidden := make([]interface{}, len(snapshot.Config.HiddenSizes))
	for i, h := range snapshot.Config.HiddenSizes {
		hidden[i] = h
	}
	config := map[string]interface{}{
		"episodes":      snapshot.Config.Episodes,
		"seed":          snapshot.Config.Seed,
		"gridSize":      snapshot.Config.GridSize,
		"mode":          string(snapshot.Config.Mode),
		"algorithm":     snapshot.Config.Algorithm,
		"approximator":  snapshot.Config.Approximator,
		"epsilon":       snapshot.Config.Epsilon,
		"epsilonMin":    snapshot.Config.EpsilonMin,
		"gamma":         snapshot.Config.Gamma,
		"learningRate":  snapshot.Config.LearningRate,
		"hiddenSizes":   hidden,
		"memorySize":    snapshot.Config.MemorySize,
		"batchSize":     snapshot.Config.BatchSize,
		"maxMoves":      snapshot.Config.MaxMoves,
		"syncFrequency": snapshot.Config.SyncFrequency,
		"stepDelayMs":   snapshot.Config.StepDelayMs,
	}
	payload := map[string]interface{}{
		"runId":             snapshot.RunID,
		"step":              snapshot.Step,
		"episode":           snapshot.Episode,
		"episodeSteps":      snapshot.EpisodeSteps,
		"episodeReward":     snapshot.EpisodeReward,
		"reward":            snapshot.Reward,
		"loss":              snapshot.Loss,
		"epsilon":           snapshot.Epsilon,
		"position":          map[string]interface{}{"row": snapshot.Position.Row, "col": snapshot.Position.Col},
		"board":             snapshot.Board,
		"valueMap":          valueMap,
		"successCount":      snapshot.SuccessCount,
		"episodesCompleted": snapshot.EpisodesCompleted,
		"totalReward":       snapshot.TotalReward,
		"totalSteps":        snapshot.TotalSteps,
		"updates":           snapshot.Updates,
		"targetSyncs":       snapshot.TargetSyncs,
		"config":            config,
		"status":            snapshot.Status,
	}
	if snapshot.Err != nil {
		payload["error"] = snapshot.Err.Error()
	}
	return js.ValueOf(payload)
}
