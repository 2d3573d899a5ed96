// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package build_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"difftest/errors"
	"difftest/internal/build"
	"difftest/internal/logging"
	"difftest/internal/logging/loggingtest"
	"difftest/testutil"
)

func TestBuild(t *testing.T) {
	dir := testutil.TempDir(t)
	// The fake build tool produces the candidate in its working directory.
	tool := testutil.WriteExecutable(t, dir, "fakemake", `echo built; touch netplan`)

	res, err := build.Build(context.Background(), &build.Config{Command: []string{tool}, Dir: dir})
	if err != nil {
		t.Fatal("Build failed: ", err)
	}
	if s := string(res.Output); s != "built\n" {
		t.Errorf("Output = %q; want %q", s, "built\n")
	}
	if _, err := os.Stat(filepath.Join(dir, "netplan")); err != nil {
		t.Error("Build tool did not run in the configured directory: ", err)
	}
}

func TestBuildFailure(t *testing.T) {
	dir := testutil.TempDir(t)
	tool := testutil.WriteExecutable(t, dir, "fakemake", `echo "main.cpp:3: error: expected ';'" >&2; exit 2`)

	logger := loggingtest.NewLogger(t, logging.LevelInfo)
	ctx := logging.AttachLogger(context.Background(), logger)

	_, err := build.Build(ctx, &build.Config{Command: []string{tool}, Dir: dir})
	if err == nil {
		t.Fatal("Build unexpectedly succeeded")
	}
	if k := errors.KindOf(err); k != errors.KindBuild {
		t.Errorf("KindOf(%v) = %v; want %v", err, k, errors.KindBuild)
	}
	if !strings.Contains(logger.String(), "expected ';'") {
		t.Errorf("Build output was not logged; got %q", logger.String())
	}
}

func TestBuildMissingTool(t *testing.T) {
	tool := filepath.Join(testutil.TempDir(t), "nomake")
	_, err := build.Build(context.Background(), &build.Config{Command: []string{tool}})
	if k := errors.KindOf(err); k != errors.KindBuild {
		t.Errorf("KindOf(%v) = %v; want %v", err, k, errors.KindBuild)
	}
}

func TestBuildEmptyCommand(t *testing.T) {
	_, err := build.Build(context.Background(), &build.Config{})
	if k := errors.KindOf(err); k != errors.KindBuild {
		t.Errorf("KindOf(%v) = %v; want %v", err, k, errors.KindBuild)
	}
}
