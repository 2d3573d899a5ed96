// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package stack captures and formats call stacks for the errors package.
package stack

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// maxDepth is the number of frames kept in a Stack. Deeper stacks are
// truncated and marked with a trailing "\t..." line.
const maxDepth = 6

// Stack is a snapshot of program counters, innermost first.
type Stack []uintptr

// New captures the calling goroutine's stack. skip is the number of frames to
// omit; skip=0 makes the caller of New the innermost frame.
func New(skip int) Stack {
	// One extra slot tells whether the stack was truncated.
	pcs := make([]uintptr, maxDepth+1)
	n := runtime.Callers(skip+2, pcs)
	return Stack(pcs[:n])
}

// String renders s with one "\tat <func> (<file>:<line>)" line per frame.
func (s Stack) String() string {
	var sb strings.Builder
	frames := runtime.CallersFrames(s)
	for depth := 0; ; depth++ {
		if depth == maxDepth {
			sb.WriteString("\n\t...")
			break
		}
		f, more := frames.Next()
		if depth > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "\tat %s (%s:%d)", f.Function, filepath.Base(f.File), f.Line)
		if !more {
			break
		}
	}
	return sb.String()
}
