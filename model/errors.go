package model

import (
	"errors"
	"fmt"
)

var (
	ErrDependencyMissing   = errors.New("dependency missing")
	ErrTargetNotFound      = errors.New("target not found")
	ErrReplacementNotFound = errors.New("replacement not found")
	ErrBackupFailed        = errors.New("backup failed")
	ErrWriteFailed         = errors.New("write failed")
)

// PatchError is a fatal error of the patch workflow. Kind is one of the
// Err* sentinels above; Hint is remediation text for the user.
type PatchError struct {
	Kind error
	Path string
	Hint string
	Err  error
}

func (e *PatchError) Error() string {
	msg := e.Kind.Error()
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *PatchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewError builds a PatchError of the given kind.
func NewError(kind error, path string, err error) *PatchError {
	return &PatchError{Kind: kind, Path: path, Err: err}
}

// WithHint attaches remediation text.
func (e *PatchError) WithHint(format string, a ...any) *PatchError {
	e.Hint = fmt.Sprintf(format, a...)
	return e
}

// HintOf returns the remediation text carried by err, if any.
func HintOf(err error) string {
	var pe *PatchError
	if errors.As(err, &pe) {
		return pe.Hint
	}
	return ""
}

// DetailedError enhances a standard error with a stack trace.
type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string {
	return e.Err.Error()
}

func (e *DetailedError) Unwrap() error {
	return e.Err
}
