// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package stack

import (
	"regexp"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	s := New(0).String()
	re := regexp.MustCompile(`^\tat difftest/errors/stack\.TestNew \(stack_test.go:\d+\)`)
	if !re.MatchString(s) {
		t.Errorf("New(0) = %q; should match %q", s, re)
	}
}

func recurse(n int) Stack {
	if n == 0 {
		return New(0)
	}
	return recurse(n - 1)
}

func TestTruncated(t *testing.T) {
	lines := strings.Split(recurse(2*maxDepth).String(), "\n")
	if len(lines) != maxDepth+1 {
		t.Fatalf("Got %d lines; want %d", len(lines), maxDepth+1)
	}
	if last := lines[len(lines)-1]; last != "\t..." {
		t.Errorf("Last line = %q; want %q", last, "\t...")
	}
}
