// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package errors provides basic utilities to construct errors.
//
// To construct new errors or wrap other errors, use this package rather than
// standard libraries (errors.New, fmt.Errorf). This package records stack
// traces and chained errors, and classifies errors by Kind so that the session
// driver can tell fatal configuration problems from per-test failures.
//
// To construct a new error, use New or Errorf.
//
//	errors.New("process not found")
//	errors.Errorf("process %d not found", pid)
//
// To add context to an existing error, use Wrap or Wrapf. To also classify it,
// use Tag or Tagf.
//
//	errors.Wrap(err, "failed to open session log")
//	errors.Tagf(errors.KindBuild, err, "%s failed", cmd)
//
// A stack trace can be printed by formatting an error with the "%+v" verb.
package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"difftest/errors/stack"
)

// Kind classifies an error for reporting purposes.
type Kind int

const (
	// KindUnknown is the kind of errors that were not classified.
	KindUnknown Kind = iota
	// KindConfig indicates a bad or missing test directory or configuration.
	KindConfig
	// KindEmptyInput indicates that the test directory has no entries.
	KindEmptyInput
	// KindBuild indicates that the build command failed.
	KindBuild
	// KindCandidateExecution indicates that the candidate program failed for a test case.
	KindCandidateExecution
	// KindReferenceExecution indicates that the reference program failed for a test case.
	KindReferenceExecution
	// KindTimeout indicates that a program did not finish within its time limit.
	KindTimeout
)

// String returns the name of k as used in logs and reports.
func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "ConfigError"
	case KindEmptyInput:
		return "EmptyInputError"
	case KindBuild:
		return "BuildError"
	case KindCandidateExecution:
		return "CandidateExecutionError"
	case KindReferenceExecution:
		return "ReferenceExecutionError"
	case KindTimeout:
		return "TimeoutError"
	default:
		return "UnknownError"
	}
}

// impl is the error implementation used by this package.
type impl struct {
	msg   string      // error message to be prepended to cause
	kind  Kind        // classification; KindUnknown if not tagged
	stk   stack.Stack // stack trace where this error was created
	cause error       // original error that caused this error if non-nil
}

// Error implements the error interface.
func (e *impl) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %s", e.msg, e.cause.Error())
}

// Unwrap returns the error that caused e, if any.
func (e *impl) Unwrap() error {
	return e.cause
}

// formatChain formats an error chain.
func formatChain(err error) string {
	var chain []string
	for err != nil {
		e, ok := err.(*impl)
		if !ok {
			chain = append(chain, fmt.Sprintf("%s\n\tat ???", err.Error()))
			break
		}
		msg := e.msg
		if e.kind != KindUnknown {
			msg = fmt.Sprintf("[%v] %s", e.kind, msg)
		}
		chain = append(chain, fmt.Sprintf("%s\n%v", msg, e.stk))
		err = e.cause
	}
	return strings.Join(chain, "\n")
}

// Format implements the fmt.Formatter interface.
// In particular, it is supported to format an error chain by "%+v" verb.
func (e *impl) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		io.WriteString(s, formatChain(e))
	} else {
		io.WriteString(s, e.Error())
	}
}

// New creates a new error with the given message.
// This is similar to the standard errors.New, but also records the location
// where it was called.
func New(msg string) error {
	return &impl{msg: msg, stk: stack.New(1)}
}

// Errorf creates a new error with the given message.
// This is similar to the standard fmt.Errorf, but also records the location
// where it was called.
func Errorf(format string, args ...interface{}) error {
	return &impl{msg: fmt.Sprintf(format, args...), stk: stack.New(1)}
}

// Wrap creates a new error with the given message, wrapping another error.
// If cause is nil, this is the same as New.
func Wrap(cause error, msg string) error {
	return &impl{msg: msg, stk: stack.New(1), cause: cause}
}

// Wrapf creates a new error with the given message, wrapping another error.
// If cause is nil, this is the same as Errorf.
func Wrapf(cause error, format string, args ...interface{}) error {
	return &impl{msg: fmt.Sprintf(format, args...), stk: stack.New(1), cause: cause}
}

// Tag is similar to Wrap, but also classifies the new error as kind.
// cause may be nil.
func Tag(kind Kind, cause error, msg string) error {
	return &impl{msg: msg, kind: kind, stk: stack.New(1), cause: cause}
}

// Tagf is similar to Tag but formats the message as per fmt.Sprintf.
func Tagf(kind Kind, cause error, format string, args ...interface{}) error {
	return &impl{msg: fmt.Sprintf(format, args...), kind: kind, stk: stack.New(1), cause: cause}
}

// KindOf returns the outermost Kind found in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*impl); ok && e.kind != KindUnknown {
			return e.kind
		}
		err = stderrors.Unwrap(err)
	}
	return KindUnknown
}

// HasKind reports whether any error in err's chain is classified as kind.
func HasKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*impl); ok && e.kind == kind {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// Is is the same as the standard errors.Is.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As is the same as the standard errors.As.
func As(err error, target interface{}) bool { return stderrors.As(err, target) }
