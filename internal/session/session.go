// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package session drives a differential test session: it discovers test
// cases, builds the candidate program, runs the candidate and the reference
// program on every case and records verdicts in the session log.
//
// A Session moves through its states strictly in order:
//
//	Initialize -> Build -> RunAll -> Summarize
//
// Any fatal error moves it to StateAborted. Close may be called at any time.
package session

import (
	"context"
	"os"
	"path/filepath"

	"code.cloudfoundry.org/clock"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"difftest/errors"
	"difftest/internal/build"
	"difftest/internal/logging"
	"difftest/internal/procexec"
	"difftest/internal/report"
	"difftest/internal/result"
	"difftest/internal/timing"
	"difftest/internal/transcript"
)

// State is the lifecycle state of a Session.
type State int

const (
	// StateUninitialized is the state right after Initialize.
	StateUninitialized State = iota
	// StateBuilt means the candidate was built (or the build was skipped).
	StateBuilt
	// StateRunning means test cases are being executed.
	StateRunning
	// StateFinalized means every test case has a verdict and the log is closed.
	StateFinalized
	// StateAborted means the session hit a fatal error.
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateBuilt:
		return "Built"
	case StateRunning:
		return "Running"
	case StateFinalized:
		return "Finalized"
	case StateAborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// Config contains parameters of a session.
type Config struct {
	// TestDir is the directory containing test input files. Every entry of
	// it is a test case.
	TestDir string
	// LogPath is the session log file. It is truncated by Initialize.
	LogPath string
	// Candidate and Reference are the programs to compare. The path of a test
	// file is passed as their last argument.
	Candidate procexec.Runner
	Reference procexec.Runner
	// Build describes how to build the candidate.
	Build build.Config
	// SkipBuild makes Build a no-op.
	SkipBuild bool
	// Sort runs test cases in name order. Otherwise the order of the
	// directory listing is kept.
	Sort bool
	// Advisories are printed by Summarize when some test case failed.
	Advisories []string
	// Clock is used to timestamp the run report. If nil, the real clock is used.
	Clock clock.Clock
}

// Session is a single differential test session.
type Session struct {
	cfg   Config
	clk   clock.Clock
	id    string
	cases []result.TestCase
	log   *transcript.Log
	state State
}

// Initialize creates the session log and discovers test cases in
// cfg.TestDir.
//
// A missing or unreadable test directory results in an error tagged with
// errors.KindConfig, and an empty one with errors.KindEmptyInput. The session
// log is created (and left empty) in either case.
func Initialize(ctx context.Context, cfg *Config) (*Session, error) {
	log, err := transcript.Create(cfg.LogPath)
	if err != nil {
		return nil, err
	}

	cases, err := discover(cfg.TestDir, cfg.Sort)
	if err != nil {
		log.Close()
		return nil, err
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.NewClock()
	}
	s := &Session{
		cfg:   *cfg,
		clk:   clk,
		id:    uuid.New().String(),
		cases: cases,
		log:   log,
		state: StateUninitialized,
	}
	logging.Debugf(ctx, "Session %s: found %d test case(s) in %s", s.id, len(cases), cfg.TestDir)
	return s, nil
}

// discover lists dir and returns a test case for each entry.
func discover(dir string, sortNames bool) ([]result.TestCase, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, errors.Tagf(errors.KindConfig, err, "failed to open test directory %s", dir)
	}
	defer f.Close()

	// ReadDir(-1) keeps the order in which the file system lists entries.
	ents, err := f.ReadDir(-1)
	if err != nil {
		return nil, errors.Tagf(errors.KindConfig, err, "failed to list test directory %s", dir)
	}
	if len(ents) == 0 {
		return nil, errors.Tagf(errors.KindEmptyInput, nil, "%s is empty", dir)
	}

	names := make([]string, len(ents))
	for i, ent := range ents {
		names[i] = ent.Name()
	}
	if sortNames {
		slices.Sort(names)
	}

	cases := make([]result.TestCase, len(names))
	for i, name := range names {
		cases[i] = result.TestCase{Name: name, Path: filepath.Join(dir, name)}
	}
	return cases, nil
}

// ID returns the unique ID of the session.
func (s *Session) ID() string { return s.id }

// Cases returns the discovered test cases in execution order.
func (s *Session) Cases() []result.TestCase { return s.cases }

// State returns the current state of the session.
func (s *Session) State() State { return s.state }

// LogPath returns the path of the session log.
func (s *Session) LogPath() string { return s.log.Path() }

func (s *Session) checkState(op string, want State) error {
	if s.state != want {
		return errors.Errorf("%s called in state %v; want %v", op, s.state, want)
	}
	return nil
}

// abort moves the session to StateAborted and closes the log.
func (s *Session) abort() {
	s.state = StateAborted
	s.log.Close()
}

// Build builds the candidate program. On failure the session is aborted and
// the returned error is tagged with errors.KindBuild. If the build is skipped
// a nil Result is returned.
func (s *Session) Build(ctx context.Context) (*build.Result, error) {
	if err := s.checkState("Build", StateUninitialized); err != nil {
		return nil, err
	}
	if s.cfg.SkipBuild {
		logging.Debug(ctx, "Skipping build")
		s.state = StateBuilt
		return nil, nil
	}
	res, err := build.Build(ctx, &s.cfg.Build)
	if err != nil {
		s.abort()
		return nil, err
	}
	s.state = StateBuilt
	return res, nil
}

// RunAll runs both programs on every test case in order and returns the
// resulting report. A failing program only fails its test case. An error is
// returned if the session log cannot be written, in which case the report
// holds the verdicts made so far and the session is aborted.
func (s *Session) RunAll(ctx context.Context) (*result.RunReport, error) {
	if err := s.checkState("RunAll", StateBuilt); err != nil {
		return nil, err
	}
	s.state = StateRunning

	ctx, st := timing.Start(ctx, "run")
	defer st.End()

	rep := &result.RunReport{
		SessionID: s.id,
		TestDir:   s.cfg.TestDir,
		LogPath:   s.log.Path(),
		Start:     s.clk.Now(),
	}
	for _, tc := range s.cases {
		if ctx.Err() != nil {
			rep.End = s.clk.Now()
			s.abort()
			return rep, errors.Wrap(ctx.Err(), "session interrupted")
		}
		v := s.runCase(ctx, tc)
		rep.Add(v)
		if err := s.log.Append(v); err != nil {
			rep.End = s.clk.Now()
			s.abort()
			return rep, err
		}
	}
	rep.End = s.clk.Now()

	if err := s.log.Finish(); err != nil {
		s.state = StateAborted
		return rep, err
	}
	s.state = StateFinalized
	return rep, nil
}

// runCase runs the candidate and, if it succeeds, the reference on tc.
func (s *Session) runCase(ctx context.Context, tc result.TestCase) *result.Verdict {
	ctx, st := timing.Start(ctx, tc.Name)
	defer st.End()

	cand := s.runProgram(ctx, tc, result.ProgramCandidate, s.cfg.Candidate)
	var ref *result.ExecutionResult
	if cand.Err == nil {
		ref = s.runProgram(ctx, tc, result.ProgramReference, s.cfg.Reference)
	}

	v := result.Judge(tc, cand, ref)
	if v.HasTimeDelta() {
		logging.Infof(ctx, "Time difference (your time - ref time): %.3f", v.TimeDelta.Seconds())
	}
	if v.Passed() {
		logging.Info(ctx, "Test passed.")
	} else {
		logging.Info(ctx, "Test failed.")
	}
	logging.Info(ctx, "")
	return v
}

// runProgram runs r on tc. Errors are tagged with the execution kind of p.
func (s *Session) runProgram(ctx context.Context, tc result.TestCase, p result.Program, r procexec.Runner) *result.ExecutionResult {
	logging.Infof(ctx, "Testing %s on %s...", tc.Name, r)
	res, err := r.Run(ctx, tc.Path)
	er := &result.ExecutionResult{
		Program:  p,
		Args:     res.Args,
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
		ExitCode: res.ExitCode,
		Elapsed:  res.Elapsed,
	}
	if err != nil {
		kind := errors.KindCandidateExecution
		if p == result.ProgramReference {
			kind = errors.KindReferenceExecution
		}
		er.Err = errors.Tagf(kind, err, "%s failed on %s", p, tc.Name)
		logging.Infof(ctx, "%s failed: %v", r, err)
		return er
	}
	logging.Infof(ctx, "Running time: %.3f sec", res.Elapsed.Seconds())
	return er
}

// Summarize returns the closing message for rep. It may only be called
// after RunAll completed.
func (s *Session) Summarize(rep *result.RunReport) (string, error) {
	if err := s.checkState("Summarize", StateFinalized); err != nil {
		return "", err
	}
	return report.Summary(rep, s.cfg.Candidate.String(), s.cfg.Reference.String(), s.cfg.Advisories), nil
}

// Close closes the session log. It is safe to call Close more than once.
func (s *Session) Close() error {
	return s.log.Close()
}
