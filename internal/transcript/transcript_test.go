// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package transcript

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"difftest/errors"
	"difftest/internal/result"
	"difftest/testutil"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestCreateTruncates(t *testing.T) {
	dir := testutil.TempDir(t)
	if err := testutil.WriteFiles(dir, map[string]string{"log": "stale contents"}); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "log")

	l, err := Create(path)
	if err != nil {
		t.Fatal("Create failed: ", err)
	}
	if err := l.Close(); err != nil {
		t.Fatal("Close failed: ", err)
	}
	if s := readLog(t, path); s != "" {
		t.Errorf("Log contents = %q; want empty", s)
	}
}

func TestCreateBadPath(t *testing.T) {
	path := filepath.Join(testutil.TempDir(t), "no", "such", "dir", "log")
	if _, err := Create(path); err == nil {
		t.Errorf("Create(%q) unexpectedly succeeded", path)
	}
}

func TestAppend(t *testing.T) {
	path := filepath.Join(testutil.TempDir(t), "log")
	l, err := Create(path)
	if err != nil {
		t.Fatal("Create failed: ", err)
	}
	defer l.Close()

	pass := result.Judge(result.TestCase{Name: "g1.txt"},
		&result.ExecutionResult{Stdout: []byte("3\n"), Elapsed: 1500 * time.Millisecond},
		&result.ExecutionResult{Stdout: []byte("3\n"), Elapsed: 500 * time.Millisecond})
	cand := &result.ExecutionResult{Stderr: []byte("segfault\n"), ExitCode: 139,
		Err: errors.Tag(errors.KindCandidateExecution, nil, "candidate failed")}
	fail := result.Judge(result.TestCase{Name: "g2.txt"}, cand, nil)

	if err := l.Append(pass); err != nil {
		t.Fatal("Append failed: ", err)
	}
	// Each case is on disk as soon as Append returns.
	const passLog = "---------------------------------\n\n" +
		"PASS: g1.txt\nTime difference: 1.000000\n" +
		"\nUser output:\n3\n" +
		"\nRef output:\n3\n" +
		"---------------------------------\n\n"
	if s := readLog(t, path); s != passLog {
		t.Errorf("Log after first case = %q; want %q", s, passLog)
	}

	if err := l.Append(fail); err != nil {
		t.Fatal("Append failed: ", err)
	}
	if err := l.Finish(); err != nil {
		t.Fatal("Finish failed: ", err)
	}
	const failLog = "---------------------------------\n\n" +
		"FAIL: g2.txt (CandidateExecutionError: candidate failed)\n" +
		"\nUser output:\n<no output>\n" +
		"\nUser stderr:\nsegfault\n" +
		"\nRef output:\n<not run>\n" +
		"---------------------------------\n\n"
	if s, want := readLog(t, path), passLog+failLog+"\n"; s != want {
		t.Errorf("Final log = %q; want %q", s, want)
	}
}

func TestCloseTwice(t *testing.T) {
	l, err := Create(filepath.Join(testutil.TempDir(t), "log"))
	if err != nil {
		t.Fatal("Create failed: ", err)
	}
	if err := l.Close(); err != nil {
		t.Error("First Close failed: ", err)
	}
	if err := l.Close(); err != nil {
		t.Error("Second Close failed: ", err)
	}
	if err := l.Finish(); err != nil {
		t.Error("Finish after Close failed: ", err)
	}
	v := result.Judge(result.TestCase{Name: "x"}, &result.ExecutionResult{}, &result.ExecutionResult{})
	if err := l.Append(v); err == nil {
		t.Error("Append after Close unexpectedly succeeded")
	}
}
