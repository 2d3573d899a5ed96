// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package transcript writes the session log: a plain-text record of every
// test case's verdict and the full output of both programs.
package transcript

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"difftest/errors"
	"difftest/internal/result"
)

const separator = "---------------------------------\n"

// Log is a session log file. It is written incrementally, one test case at a
// time, and each case is synced to disk before Append returns so that an
// interrupted session still leaves a usable log.
type Log struct {
	path   string
	f      *os.File
	closed bool
}

// Create creates or truncates the log file at path and opens it for writing.
func Create(path string) (*Log, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create session log %s", path)
	}
	return &Log{path: path, f: f}, nil
}

// Path returns the path of the log file.
func (l *Log) Path() string { return l.path }

// Append writes the transcript of v to the log and syncs it to disk.
func (l *Log) Append(v *result.Verdict) error {
	if l.closed {
		return errors.Errorf("session log %s is closed", l.path)
	}
	bw := bufio.NewWriter(l.f)
	writeVerdict(bw, v)
	if err := bw.Flush(); err != nil {
		return errors.Wrapf(err, "failed to write %s to session log", v.Case.Name)
	}
	if err := l.f.Sync(); err != nil {
		return errors.Wrapf(err, "failed to sync session log")
	}
	return nil
}

// Finish writes the closing line of the log and closes it.
func (l *Log) Finish() error {
	if l.closed {
		return nil
	}
	if _, err := io.WriteString(l.f, "\n"); err != nil {
		l.Close()
		return errors.Wrap(err, "failed to finish session log")
	}
	return l.Close()
}

// Close closes the log file without writing anything more. Closing an
// already closed Log is a no-op.
func (l *Log) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	if err := l.f.Close(); err != nil {
		return errors.Wrapf(err, "failed to close session log %s", l.path)
	}
	return nil
}

// writeVerdict writes the transcript of v. Errors are reported by the
// bufio.Writer on Flush.
func writeVerdict(w *bufio.Writer, v *result.Verdict) {
	io.WriteString(w, separator+"\n")

	if v.Passed() {
		fmt.Fprintf(w, "PASS: %s\nTime difference: %.6f\n", v.Case.Name, v.TimeDelta.Seconds())
	} else {
		fmt.Fprintf(w, "FAIL: %s (%s)\n", v.Case.Name, v.Annotation())
	}

	writeOutput(w, "User", v.Candidate)
	writeOutput(w, "Ref", v.Reference)
	io.WriteString(w, separator+"\n")
}

// writeOutput writes the standard output captured from r under the given
// label. If the program failed, its standard error is also written.
func writeOutput(w *bufio.Writer, label string, r *result.ExecutionResult) {
	fmt.Fprintf(w, "\n%s output:\n", label)
	switch {
	case r == nil:
		io.WriteString(w, "<not run>\n")
		return
	case r.Err != nil && len(r.Stdout) == 0:
		io.WriteString(w, "<no output>\n")
	default:
		w.Write(r.Stdout)
	}
	if r.Err != nil && len(r.Stderr) > 0 {
		fmt.Fprintf(w, "\n%s stderr:\n", label)
		w.Write(r.Stderr)
	}
}
