// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package result defines test cases, program executions, verdicts and run
// reports.
package result

import (
	"bytes"
	"fmt"
	"time"

	"difftest/errors"
)

// TestCase is a single input file from the test directory.
type TestCase struct {
	// Name is the directory entry name.
	Name string `json:"name"`
	// Path is the path passed to the programs, relative to the working
	// directory if the test directory was given as a relative path.
	Path string `json:"path"`
}

// Program identifies which executable produced an ExecutionResult.
type Program int

const (
	// ProgramCandidate is the program under test.
	ProgramCandidate Program = iota
	// ProgramReference is the known-correct implementation.
	ProgramReference
)

func (p Program) String() string {
	if p == ProgramCandidate {
		return "candidate"
	}
	return "reference"
}

// ExecutionResult holds the outcome of running one program on one test case.
type ExecutionResult struct {
	Program  Program
	Args     []string
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Elapsed  time.Duration
	// Err is non-nil if the program could not be started, exited with a
	// non-zero status or timed out. Stdout still holds any partial output.
	Err error
}

// Status is the PASS/FAIL classification of a test case.
type Status int

const (
	// StatusPass means both programs ran and printed identical output.
	StatusPass Status = iota
	// StatusFail means anything else.
	StatusFail
)

func (s Status) String() string {
	if s == StatusPass {
		return "PASS"
	}
	return "FAIL"
}

// Reason explains a Verdict.
type Reason int

const (
	// ReasonNone is the reason of passing verdicts.
	ReasonNone Reason = iota
	// ReasonOutputMismatch means both programs ran but their outputs differ.
	ReasonOutputMismatch
	// ReasonCandidateError means the candidate failed to run.
	ReasonCandidateError
	// ReasonReferenceError means the reference failed to run.
	ReasonReferenceError
)

func (r Reason) String() string {
	switch r {
	case ReasonOutputMismatch:
		return "OutputMismatch"
	case ReasonCandidateError:
		return errors.KindCandidateExecution.String()
	case ReasonReferenceError:
		return errors.KindReferenceExecution.String()
	default:
		return ""
	}
}

// Verdict is the evaluation of a single test case.
type Verdict struct {
	Case   TestCase
	Status Status
	Reason Reason
	// Candidate is always set. Reference is nil if the candidate failed and
	// the reference was therefore not run.
	Candidate *ExecutionResult
	Reference *ExecutionResult
	// TimeDelta is the candidate's elapsed time minus the reference's. It is
	// positive when the candidate was slower. Valid only if HasTimeDelta.
	TimeDelta time.Duration
	// Err is the execution error behind ReasonCandidateError or
	// ReasonReferenceError.
	Err error
}

// Judge compares the outputs of the candidate and the reference for tc.
// ref may be nil if the candidate failed.
//
// Outputs must be byte-for-byte identical for the case to pass; whitespace and
// line endings are significant.
func Judge(tc TestCase, cand, ref *ExecutionResult) *Verdict {
	v := &Verdict{Case: tc, Status: StatusFail, Candidate: cand, Reference: ref}
	switch {
	case cand.Err != nil:
		v.Reason = ReasonCandidateError
		v.Err = cand.Err
		return v
	case ref == nil:
		v.Reason = ReasonReferenceError
		v.Err = errors.Tag(errors.KindReferenceExecution, nil, "reference was not run")
		return v
	case ref.Err != nil:
		v.Reason = ReasonReferenceError
		v.Err = ref.Err
		return v
	}

	v.TimeDelta = cand.Elapsed - ref.Elapsed
	if bytes.Equal(cand.Stdout, ref.Stdout) {
		v.Status = StatusPass
		v.Reason = ReasonNone
	} else {
		v.Reason = ReasonOutputMismatch
	}
	return v
}

// Passed returns true if v is a PASS.
func (v *Verdict) Passed() bool { return v.Status == StatusPass }

// HasTimeDelta returns true if both programs ran to completion, making
// TimeDelta meaningful.
func (v *Verdict) HasTimeDelta() bool {
	return v.Reason == ReasonNone || v.Reason == ReasonOutputMismatch
}

// Annotation describes why v failed, e.g.
// "CandidateExecutionError (TimeoutError): ./netplan g1.txt timed out after 10s".
// It is empty for passing verdicts.
func (v *Verdict) Annotation() string {
	switch v.Reason {
	case ReasonNone:
		return ""
	case ReasonOutputMismatch:
		return v.Reason.String()
	}
	name := v.Reason.String()
	if errors.HasKind(v.Err, errors.KindTimeout) {
		name += " (" + errors.KindTimeout.String() + ")"
	}
	if v.Err == nil {
		return name
	}
	return fmt.Sprintf("%s: %v", name, v.Err)
}

// RunReport aggregates the verdicts of a session.
type RunReport struct {
	SessionID string
	TestDir   string
	LogPath   string
	Start     time.Time
	End       time.Time
	Verdicts  []*Verdict
}

// Add appends v to r.
func (r *RunReport) Add(v *Verdict) {
	r.Verdicts = append(r.Verdicts, v)
}

// Failed returns the names of failed test cases in the order they were run.
func (r *RunReport) Failed() []string {
	var names []string
	for _, v := range r.Verdicts {
		if !v.Passed() {
			names = append(names, v.Case.Name)
		}
	}
	return names
}

// NumFailed returns the number of failed test cases.
func (r *RunReport) NumFailed() int {
	return len(r.Failed())
}

// AllPassed returns true if no test case failed.
func (r *RunReport) AllPassed() bool {
	return r.NumFailed() == 0
}
