// Package apperr defines the error kinds every cue operation reports.
//
// All errors are handled at the operation boundary: the CLI prints them, the
// web UI maps them to a status code and the TUI shows them in its status line.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports an empty or invalid required field. The operation
// that returned it made no change.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s is required", e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NotFoundError reports a missing template, library entry or list position.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.Key)
}

// NetworkError wraps a fetch or decode failure of an outbound call.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// MalformedImportError rejects a whole template import.
type MalformedImportError struct {
	Missing []string
	Err     error
}

func (e *MalformedImportError) Error() string {
	switch {
	case len(e.Missing) > 0:
		return "invalid template structure: missing " + strings.Join(e.Missing, ", ")
	case e.Err != nil:
		return fmt.Sprintf("invalid template structure: %v", e.Err)
	default:
		return "invalid template structure"
	}
}

func (e *MalformedImportError) Unwrap() error { return e.Err }

// Required returns a ValidationError for an empty field.
func Required(field string) error {
	return &ValidationError{Field: field}
}

// NotFound returns a NotFoundError.
func NotFound(kind, key string) error {
	return &NotFoundError{Kind: kind, Key: key}
}

// Network wraps err as a NetworkError. A nil err stays nil.
func Network(op string, err error) error {
	if err == nil {
		return nil
	}
	return &NetworkError{Op: op, Err: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsNetwork reports whether err is a NetworkError.
func IsNetwork(err error) bool {
	var target *NetworkError
	return errors.As(err, &target)
}

// IsMalformedImport reports whether err is a MalformedImportError.
func IsMalformedImport(err error) bool {
	var target *MalformedImportError
	return errors.As(err, &target)
}
