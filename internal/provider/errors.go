package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/seenimoa/mortgagewatch/internal/infra"
)

// Failure kinds. A *FetchError matches its kind with errors.Is.
var (
	ErrNetwork        = errors.New("network failure")
	ErrNotFound       = errors.New("element not found")
	ErrNoData         = errors.New("no data")
	ErrSchemaMismatch = errors.New("schema mismatch")
	ErrParse          = errors.New("parse failure")
)

// FetchError is the single error shape returned by every fetcher.
type FetchError struct {
	Source string // provider name, e.g. "mnd"
	Kind   error  // one of the Err* kinds above
	Err    error  // underlying cause, may be nil
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Source, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Source, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewFetchError builds a FetchError of the given kind.
func NewFetchError(source string, kind, cause error) *FetchError {
	return &FetchError{Source: source, Kind: kind, Err: cause}
}

// Errorf builds a FetchError whose cause is a formatted message.
func Errorf(source string, kind error, format string, args ...any) *FetchError {
	return &FetchError{Source: source, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Classify converts a transport or decode error into a FetchError.
// Timeouts, cancellations and HTTP status failures are network failures;
// undecodable bodies are parse failures. Existing FetchErrors pass through.
func Classify(source string, err error) error {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return err
	}
	switch {
	case errors.Is(err, infra.ErrDecode):
		return NewFetchError(source, ErrParse, err)
	case infra.IsTimeout(err), errors.Is(err, context.Canceled):
		return NewFetchError(source, ErrNetwork, fmt.Errorf("timed out or cancelled: %w", err))
	}
	// Status errors and connection failures.
	return NewFetchError(source, ErrNetwork, err)
}

// KindOf returns the failure kind of err, or nil when err carries none.
func KindOf(err error) error {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return nil
}

// SourceOf returns the provider name recorded on err, or "" when absent.
func SourceOf(err error) string {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Source
	}
	return ""
}

// KindName returns a stable identifier for the failure kind of err:
// "network", "not_found", "no_data", "schema_mismatch", "parse" or "".
func KindName(err error) string {
	switch KindOf(err) {
	case ErrNetwork:
		return "network"
	case ErrNotFound:
		return "not_found"
	case ErrNoData:
		return "no_data"
	case ErrSchemaMismatch:
		return "schema_mismatch"
	case ErrParse:
		return "parse"
	}
	return ""
}
