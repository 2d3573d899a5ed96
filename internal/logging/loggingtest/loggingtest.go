// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package loggingtest provides logging utilities for unit tests.
package loggingtest

import (
	"strings"
	"sync"
	"testing"
	"time"

	"difftest/internal/logging"
)

// Logger is a logging.Logger that records messages at or above a level and
// mirrors every message to the test log.
type Logger struct {
	t     *testing.T
	level logging.Level

	mu   sync.Mutex
	msgs []string
}

var _ logging.Logger = (*Logger)(nil)

// NewLogger returns a Logger recording messages at or above level.
func NewLogger(t *testing.T, level logging.Level) *Logger {
	return &Logger{t: t, level: level}
}

// Log records msg.
func (l *Logger) Log(level logging.Level, ts time.Time, msg string) {
	l.t.Helper()
	l.t.Log(msg)

	if level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, msg)
}

// Logs returns the recorded messages in order.
func (l *Logger) Logs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.msgs...)
}

// String returns the recorded messages joined by newlines.
func (l *Logger) String() string {
	return strings.Join(l.Logs(), "\n")
}
