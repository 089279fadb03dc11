package service

import (
	"errors"
	"fmt"
)

// ErrAlreadyRun is returned when a scheduled run is requested for a
// calendar date that already has a completed scheduled run.
var ErrAlreadyRun = errors.New("analysis already completed for this run date")

// ConfigurationError marks invalid analysis configuration (bad rubric
// weights, missing company context). Surfaced at startup, fatal.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid analysis configuration: %s", e.Reason)
}

// SourceError marks a failed ingestion source. It degrades coverage for
// the run but never fails the pipeline.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("ingestion source %s failed: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
