// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package logging provides leveled logging through context.Context.
//
// Console output of difftest, including per-test progress, goes through this
// package so that tests can capture it and -verbose can reveal debug logs.
package logging

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Level indicates a logging level. A larger level value means a log is more
// important.
type Level int

const (
	// LevelDebug is for details shown only with -verbose.
	LevelDebug Level = iota
	// LevelInfo is for messages meant for the user.
	LevelInfo
)

// Logger consumes logs sent via context.Context.
type Logger interface {
	// Log gets called for a log entry. ts is when the entry was emitted.
	Log(level Level, ts time.Time, msg string)
}

// tee is a Logger that copies logs to all of its loggers in order.
type tee []Logger

func (t tee) Log(level Level, ts time.Time, msg string) {
	for _, l := range t {
		l.Log(level, ts, msg)
	}
}

// Tee returns a Logger that copies logs to every one of loggers.
func Tee(loggers ...Logger) Logger {
	return tee(append([]Logger(nil), loggers...))
}

// SinkLogger is a Logger that writes logs at or above a minimum level to an
// io.Writer, one line per log.
type SinkLogger struct {
	level     Level
	timestamp bool

	mu sync.Mutex // serializes writes to w
	w  io.Writer
}

// NewSinkLogger creates a new SinkLogger.
//
// level specifies the minimum level of logs written to w. If timestamp is
// true, a UTC timestamp is prepended to every line.
func NewSinkLogger(level Level, timestamp bool, w io.Writer) *SinkLogger {
	return &SinkLogger{level: level, timestamp: timestamp, w: w}
}

// Log writes msg to the underlying writer if level is high enough.
func (l *SinkLogger) Log(level Level, ts time.Time, msg string) {
	if level < l.level {
		return
	}
	if l.timestamp {
		msg = ts.UTC().Format("2006-01-02T15:04:05.000000Z ") + msg
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, msg)
}
