package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStatementNotFound is returned when no statement exists for a key.
	ErrStatementNotFound = errors.New("statement not found")
	// ErrReportNotFound is returned when no cached report exists for a symbol.
	ErrReportNotFound = errors.New("report not found")
)

// ParseError means the document could not be read as a filing at all.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("parse error: %v", e.Err)
	}
	return fmt.Sprintf("parse error in %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MissingDataError reports fewer periods than requested. It describes
// degraded data and is carried alongside results, not returned as a failure.
type MissingDataError struct {
	Symbol    string
	Requested int
	Available int
	Dropped   []int // fiscal years discarded as incomplete
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("missing data for %s: requested %d years, %d available", e.Symbol, e.Requested, e.Available)
}

// ValidationFailure marks a statement that was stored and scored but is invalid.
type ValidationFailure struct {
	Key    string
	Errors []string
}

func (e *ValidationFailure) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Key, strings.Join(e.Errors, "; "))
}

// ModelSkipped is the error form of a model that lacked its inputs.
type ModelSkipped struct {
	Model  ForensicModel
	Reason string
}

func (e *ModelSkipped) Error() string {
	return fmt.Sprintf("%s skipped: %s", e.Model, e.Reason)
}

// DataSourceError wraps an external fetch failure.
type DataSourceError struct {
	Provider string
	Symbol   string
	Err      error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("data source %s failed for %s: %v", e.Provider, e.Symbol, e.Err)
}

func (e *DataSourceError) Unwrap() error { return e.Err }
