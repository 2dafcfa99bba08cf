// Package merge drives the batch pipeline that folds per-genome FASTA
// files into one merged stream with rewritten sequence ids.
package merge

import (
	"errors"
	"fmt"
)

// Sentinel errors for run validation.
var (
	// ErrNilContext indicates Run() was called with a nil context.
	ErrNilContext = errors.New("context cannot be nil")
)

// ProcessingError wraps a per-genome failure.
// Processing errors are recoverable at batch level: the orchestrator
// logs and counts them, then moves on to the next genome.
type ProcessingError struct {
	// Sample is the sample name of the genome that failed.
	Sample string
	// Source is the path of the input FASTA file.
	Source string
	// Op is the operation that failed ("open", "read", "write", "map", "publish").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ProcessingError) Error() string {
	return fmt.Sprintf("genome %s: %s: %v", e.Sample, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// CheckpointError wraps errors from checkpoint operations.
// A completion record that cannot be read or written is fatal to the run.
type CheckpointError struct {
	// Sample is the genome whose completion could not be recorded.
	// Empty for load failures at run start.
	Sample string
	// Op is the operation that failed ("load", "append").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *CheckpointError) Error() string {
	if e.Sample == "" {
		return fmt.Sprintf("checkpoint %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("checkpoint %s for %s: %v", e.Op, e.Sample, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *CheckpointError) Unwrap() error {
	return e.Err
}

// CancellationError reports where the run stopped when the context was
// cancelled. Cancellation is observed between genomes, so the named
// sample was never started and stays uncheckpointed.
type CancellationError struct {
	// Sample is the genome that was about to be processed.
	Sample string
	// Cause is the underlying cancellation cause (context.Canceled or
	// context.DeadlineExceeded).
	Cause error
}

// Error implements the error interface.
func (e *CancellationError) Error() string {
	return fmt.Sprintf("cancelled before genome %s: %v", e.Sample, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CancellationError) Unwrap() error {
	return e.Cause
}
