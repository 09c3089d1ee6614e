// Package caterror defines the error taxonomy of the categorization pipeline.
// Every structured error matches its sentinel with errors.Is and unwraps to
// the underlying cause.
package caterror

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrStoreUnavailable means a mapping, taxonomy or account source is
	// missing or corrupt. It aborts the whole batch.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrFallbackUnavailable means the external categorization call failed
	// (network, auth, quota, timeout).
	ErrFallbackUnavailable = errors.New("fallback unavailable")

	// ErrFallbackMalformed means the external response violated the
	// three-line contract.
	ErrFallbackMalformed = errors.New("fallback response malformed")

	// ErrCategorizationFailed is raised by the resolver when no strategy
	// produced a usable triple.
	ErrCategorizationFailed = errors.New("categorization failed")
)

// StoreError represents a failure to read or persist a store file.
type StoreError struct {
	Op   string // "load" or "persist"
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrStoreUnavailable, e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrStoreUnavailable.
func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

// FallbackError represents a failed or unusable fallback answer.
type FallbackError struct {
	Strategy string
	Kind     error // ErrFallbackUnavailable or ErrFallbackMalformed
	Response string
	Err      error
}

func (e *FallbackError) Error() string {
	msg := fmt.Sprintf("%s strategy: %v", e.Strategy, e.kind())
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Response != "" {
		msg += fmt.Sprintf(" (response %q)", e.Response)
	}
	return msg
}

func (e *FallbackError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the error's kind.
func (e *FallbackError) Is(target error) bool {
	return target == e.kind()
}

func (e *FallbackError) kind() error {
	if e.Kind == nil {
		return ErrFallbackUnavailable
	}
	return e.Kind
}

// Unavailable builds a FallbackError of kind ErrFallbackUnavailable.
func Unavailable(strategy string, err error) *FallbackError {
	return &FallbackError{Strategy: strategy, Kind: ErrFallbackUnavailable, Err: err}
}

// Malformed builds a FallbackError of kind ErrFallbackMalformed.
func Malformed(strategy, response, reason string) *FallbackError {
	return &FallbackError{
		Strategy: strategy,
		Kind:     ErrFallbackMalformed,
		Response: response,
		Err:      errors.New(reason),
	}
}

// CategorizationError identifies the transaction that could not be
// categorized so the mapping store can be corrected by hand.
type CategorizationError struct {
	Date     time.Time
	Desc1    string
	Desc2    string
	Strategy string
	Err      error
}

func (e *CategorizationError) Error() string {
	desc := e.Desc1
	if e.Desc2 != "" {
		desc += "; " + e.Desc2
	}
	strategy := e.Strategy
	if strategy == "" {
		strategy = "none"
	}
	return fmt.Sprintf("%s for %s %q using %s: %v",
		ErrCategorizationFailed, e.Date.Format("2006-01-02"), desc, strategy, e.Err)
}

func (e *CategorizationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrCategorizationFailed.
func (e *CategorizationError) Is(target error) bool {
	return target == ErrCategorizationFailed
}

// ParseError represents a bank row that could not be read.
type ParseError struct {
	Parser string
	Row    int
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: row %d: failed to parse %s='%s': %v",
		e.Parser, e.Row, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// InvalidFormatError represents an input file that does not conform to the
// expected layout.
type InvalidFormatError struct {
	FilePath       string
	ExpectedFormat string
	Msg            string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s",
		e.FilePath, e.Msg, e.ExpectedFormat)
}
