package simd

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kostasthomson/cloud-simulator/internal/sim"
	"github.com/kostasthomson/cloud-simulator/pkg/logger"
	"github.com/kostasthomson/cloud-simulator/pkg/models"
)

var (
	ErrRunNotFound  = errors.New("run not found")
	ErrRunTerminal  = errors.New("run is terminal")
	ErrRunIDMissing = errors.New("run_id is required")
)

// RunExecutor manages asynchronous run execution and per-run cancellation
type RunExecutor struct {
	store *RunStore

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func NewRunExecutor(store *RunStore) *RunExecutor {
	return &RunExecutor{
		store:   store,
		cancels: make(map[string]context.CancelFunc),
	}
}

// Start begins executing a run asynchronously.
// Returns the updated run state (running) or an error.
func (e *RunExecutor) Start(runID string) (*RunRecord, error) {
	if runID == "" {
		return nil, ErrRunIDMissing
	}

	rec, ok := e.store.Get(runID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	if rec.Run.Status == models.RunStatusRunning {
		return rec, nil
	}
	if rec.Run.Status.Terminal() {
		return nil, fmt.Errorf("%w: %s", ErrRunTerminal, runID)
	}

	updated, err := e.store.SetStatus(runID, models.RunStatusRunning, "")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	if old, exists := e.cancels[runID]; exists {
		old()
	}
	e.cancels[runID] = cancel
	e.mu.Unlock()

	go e.runSimulation(ctx, runID)
	return updated, nil
}

// Stop requests cancellation for a running run and marks it cancelled
func (e *RunExecutor) Stop(runID string) (*RunRecord, error) {
	if runID == "" {
		return nil, ErrRunIDMissing
	}

	e.mu.Lock()
	cancel, ok := e.cancels[runID]
	e.mu.Unlock()

	if ok {
		cancel()
	}

	updated, err := e.store.SetStatus(runID, models.RunStatusCancelled, "")
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (e *RunExecutor) cleanup(runID string) {
	e.mu.Lock()
	if cancel, ok := e.cancels[runID]; ok {
		cancel()
		delete(e.cancels, runID)
	}
	e.mu.Unlock()
}

func (e *RunExecutor) runSimulation(ctx context.Context, runID string) {
	defer e.cleanup(runID)

	rec, ok := e.store.Get(runID)
	if !ok {
		logger.Error("run vanished before execution", "run_id", runID)
		return
	}

	simulator, err := sim.New(rec.Config)
	if err != nil {
		logger.Error("failed to build simulator", "run_id", runID, "error", err)
		_, _ = e.store.SetStatus(runID, models.RunStatusFailed, err.Error())
		return
	}

	result, err := simulator.Run(ctx)
	if result != nil {
		if serr := e.store.SetResult(runID, result); serr != nil {
			logger.Error("failed to store result", "run_id", runID, "error", serr)
		}
	}

	switch {
	case errors.Is(err, context.Canceled):
		// Stop already set the cancelled status.
		logger.Info("run cancelled", "run_id", runID)
	case err != nil:
		logger.Error("run failed", "run_id", runID, "error", err)
		_, _ = e.store.SetStatus(runID, models.RunStatusFailed, err.Error())
	default:
		logger.Info("run completed", "run_id", runID, "end_time", result.EndTime)
		_, _ = e.store.SetStatus(runID, models.RunStatusCompleted, "")
	}
}
