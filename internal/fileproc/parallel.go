// Package fileproc runs independent per-input work concurrently.
package fileproc

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/iter"
)

// ProcessingError represents an error that occurred while processing one input.
type ProcessingError struct {
	Input string
	Err   error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Input, e.Err)
}

func (e ProcessingError) Unwrap() error {
	return e.Err
}

// ProcessingErrors collects multiple processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(input string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Input: input, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d inputs failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// Unwrap exposes every collected error to errors.Is and errors.As.
func (e *ProcessingErrors) Unwrap() []error {
	e.mu.Lock()
	defer e.mu.Unlock()
	errs := make([]error, len(e.Errors))
	for i, pe := range e.Errors {
		errs[i] = pe
	}
	return errs
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
const DefaultWorkerMultiplier = 2

// Result pairs an input with its outcome.
type Result[T any] struct {
	Input string
	Value T
	Err   error
}

// Map runs fn for every input concurrently and returns the results in
// input order. If maxWorkers is <= 0, defaults to 2x NumCPU.
// The returned slice is only touched after every call has finished.
func Map[T any](inputs []string, maxWorkers int, fn func(string) (T, error)) []Result[T] {
	if len(inputs) == 0 {
		return nil
	}

	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU() * DefaultWorkerMultiplier
	}

	mapper := iter.Mapper[string, Result[T]]{MaxGoroutines: maxWorkers}
	return mapper.Map(inputs, func(in *string) Result[T] {
		v, err := fn(*in)
		return Result[T]{Input: *in, Value: v, Err: err}
	})
}

// Collect gathers the failed results, in input order. It returns nil when
// every input succeeded.
func Collect[T any](results []Result[T]) *ProcessingErrors {
	errs := &ProcessingErrors{}
	for _, r := range results {
		if r.Err != nil {
			errs.Add(r.Input, r.Err)
		}
	}
	if !errs.HasErrors() {
		return nil
	}
	return errs
}
