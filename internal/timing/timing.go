// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package timing records how long the phases of a session take, e.g. the
// build and every test case, as a tree of stages.
package timing

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
)

// Log is a tree of timed stages.
type Log struct {
	// root holds top-level stages as children. It is never ended and its
	// timestamps are meaningless.
	root *Stage
}

// NewLog returns a new Log whose stages read the current time from clk.
// If clk is nil, the real clock is used.
func NewLog(clk clock.Clock) *Log {
	if clk == nil {
		clk = clock.NewClock()
	}
	return &Log{root: &Stage{clk: clk}}
}

// StartTop starts and returns a new top-level stage named name.
func (l *Log) StartTop(name string) *Stage {
	return l.root.StartChild(name)
}

// Stages returns the top-level stages started so far.
func (l *Log) Stages() []*Stage {
	l.root.mu.Lock()
	defer l.root.mu.Unlock()
	return append([]*Stage(nil), l.root.Children...)
}

// WriteText writes l to w as an indented table of durations in seconds,
// one stage per line:
//
//	  4.000  session
//	  3.000    build
//	  1.000    run
//	  0.400      g1.txt
func (l *Log) WriteText(w io.Writer) error {
	var sb strings.Builder
	for _, s := range l.Stages() {
		s.writeText(&sb, 0)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// MarshalJSON marshals Log as JSON.
func (l *Log) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Stages []*Stage `json:"stages"`
	}{l.Stages()})
}

var _ json.Marshaler = (*Log)(nil)

// Stage is a timed phase of work. Stages nest.
type Stage struct {
	Name      string    `json:"name"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Children  []*Stage  `json:"children,omitempty"`

	clk clock.Clock
	mu  sync.Mutex // guards EndTime and Children
}

// StartChild starts a stage named name nested in s. It returns nil if s has
// already ended.
func (s *Stage) StartChild(name string) *Stage {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.EndTime.IsZero() {
		return nil
	}
	c := &Stage{Name: name, StartTime: s.clk.Now(), clk: s.clk}
	s.Children = append(s.Children, c)
	return c
}

// End ends s and any of its children still open. Ending a stage twice, or a
// nil stage, does nothing.
func (s *Stage) End() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.EndTime.IsZero() {
		return
	}
	for _, c := range s.Children {
		c.End()
	}
	s.EndTime = s.clk.Now()
}

// Elapsed returns the duration of s. An open stage reports the time elapsed
// so far.
func (s *Stage) Elapsed() time.Duration {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsedLocked()
}

func (s *Stage) elapsedLocked() time.Duration {
	if s.EndTime.IsZero() {
		return s.clk.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

func (s *Stage) writeText(sb *strings.Builder, depth int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Fprintf(sb, "%8.3f  %s%s\n", s.elapsedLocked().Seconds(), strings.Repeat("  ", depth), s.Name)
	for _, c := range s.Children {
		c.writeText(sb, depth+1)
	}
}
