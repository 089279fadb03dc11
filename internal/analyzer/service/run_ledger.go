package service

import (
	"context"
	"fmt"
	"time"

	"golang-competitive-intel/internal/analyzer/repository"
	"golang-competitive-intel/internal/entity"
	"golang-competitive-intel/pkg/logger"
)

// RunHandle wraps one analysis run row between Begin and Finalize. The
// pipeline mutates the counts on the embedded run as stages complete.
type RunHandle struct {
	run       *entity.AnalysisRun
	startedAt time.Time
	finalized bool
}

// Run exposes the underlying run row for count updates.
func (h *RunHandle) Run() *entity.AnalysisRun {
	return h.run
}

// Finalized reports whether Finalize has been called on this handle.
func (h *RunHandle) Finalized() bool {
	return h.finalized
}

// RunLedger records one audit row per pipeline execution and guards
// against duplicate scheduled runs for the same calendar date.
type RunLedger struct {
	runRepo repository.AnalysisRunRepository
	logger  *logger.Logger
}

// NewRunLedger creates a new RunLedger.
func NewRunLedger(runRepo repository.AnalysisRunRepository, log *logger.Logger) *RunLedger {
	return &RunLedger{runRepo: runRepo, logger: log}
}

// Begin opens a run row with status running. For scheduled modes a prior
// completed run of the same mode on the same date is rejected with
// ErrAlreadyRun; ad-hoc modes bypass the guard, and the daily and weekly
// runs never block each other.
func (l *RunLedger) Begin(ctx context.Context, runDate time.Time, mode entity.RunMode) (*RunHandle, error) {
	if mode.IsScheduled() {
		existing, err := l.runRepo.FindScheduledByDate(ctx, runDate, mode)
		if err != nil {
			return nil, fmt.Errorf("failed to check for prior run: %w", err)
		}
		if existing != nil && existing.Status == entity.RunStatusCompleted {
			return nil, ErrAlreadyRun
		}
	}

	run := &entity.AnalysisRun{
		RunDate:   runDate,
		Mode:      mode,
		Scheduled: mode.IsScheduled(),
		Status:    entity.RunStatusRunning,
	}
	if err := l.runRepo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create run row: %w", err)
	}

	l.logger.Info("Analysis run started",
		logger.Field("run_id", run.ID),
		logger.StringField("mode", string(mode)),
		logger.StringField("run_date", runDate.Format("2006-01-02")),
	)
	return &RunHandle{run: run, startedAt: time.Now()}, nil
}

// Finalize writes the terminal status exactly once. Status transitions
// are forward-only: a terminal row is never reopened, and a second
// Finalize on the same handle is an error.
func (l *RunLedger) Finalize(ctx context.Context, handle *RunHandle, status entity.RunStatus, errMsg string) error {
	if handle.finalized {
		return fmt.Errorf("run %d already finalized", handle.run.ID)
	}
	if !status.IsTerminal() {
		return fmt.Errorf("cannot finalize run %d with non-terminal status %q", handle.run.ID, status)
	}
	if handle.run.Status.IsTerminal() {
		return fmt.Errorf("run %d already has terminal status %q", handle.run.ID, handle.run.Status)
	}

	handle.run.Status = status
	handle.run.ErrorMessage = errMsg
	handle.run.ExecutionTimeSeconds = time.Since(handle.startedAt).Seconds()

	if err := l.runRepo.Update(ctx, handle.run); err != nil {
		return fmt.Errorf("failed to finalize run %d: %w", handle.run.ID, err)
	}
	handle.finalized = true

	l.logger.Info("Analysis run finalized",
		logger.Field("run_id", handle.run.ID),
		logger.StringField("status", string(status)),
		logger.Float64Field("execution_seconds", handle.run.ExecutionTimeSeconds),
	)
	return nil
}
