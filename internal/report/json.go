// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package report

import (
	"encoding/json"
	"os"
	"time"

	"difftest/errors"
	"difftest/internal/result"
)

// ResultsFilename is a suggested file name to be used with WriteResultsJSON.
const ResultsFilename = "results.json"

// Execution is the JSON form of a result.ExecutionResult.
type Execution struct {
	Args     []string      `json:"args"`
	ExitCode int           `json:"exitCode"`
	Elapsed  time.Duration `json:"elapsed"`
	Error    string        `json:"error,omitempty"`
}

// Case is the JSON form of a result.Verdict.
type Case struct {
	result.TestCase
	Status    string        `json:"status"`
	Reason    string        `json:"reason,omitempty"`
	Candidate *Execution    `json:"candidate"`
	Reference *Execution    `json:"reference,omitempty"`
	TimeDelta time.Duration `json:"timeDelta"`
}

// Results is the top-level object of results.json.
type Results struct {
	SessionID string    `json:"sessionId"`
	TestDir   string    `json:"testDir"`
	Log       string    `json:"log"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Failed    int       `json:"failed"`
	Cases     []*Case   `json:"cases"`
}

// NewResults converts r to its JSON form.
func NewResults(r *result.RunReport) *Results {
	res := &Results{
		SessionID: r.SessionID,
		TestDir:   r.TestDir,
		Log:       r.LogPath,
		Start:     r.Start,
		End:       r.End,
		Failed:    r.NumFailed(),
		Cases:     make([]*Case, 0, len(r.Verdicts)),
	}
	for _, v := range r.Verdicts {
		c := &Case{
			TestCase:  v.Case,
			Status:    v.Status.String(),
			Reason:    v.Reason.String(),
			Candidate: newExecution(v.Candidate),
			Reference: newExecution(v.Reference),
		}
		if v.HasTimeDelta() {
			c.TimeDelta = v.TimeDelta
		}
		res.Cases = append(res.Cases, c)
	}
	return res
}

func newExecution(e *result.ExecutionResult) *Execution {
	if e == nil {
		return nil
	}
	x := &Execution{Args: e.Args, ExitCode: e.ExitCode, Elapsed: e.Elapsed}
	if e.Err != nil {
		x.Error = e.Err.Error()
	}
	return x
}

// WriteResultsJSON writes r to path as indented JSON.
func WriteResultsJSON(path string, r *result.RunReport) error {
	b, err := json.MarshalIndent(NewResults(r), "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal results")
	}
	if err := os.WriteFile(path, append(b, '\n'), 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
