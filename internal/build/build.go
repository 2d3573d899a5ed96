// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package build runs the external build tool that produces the candidate
// program.
package build

import (
	"context"
	"time"

	"difftest/errors"
	"difftest/internal/logging"
	"difftest/internal/procexec"
	"difftest/internal/timing"
)

// Config describes how to build the candidate program.
type Config struct {
	// Command is the build tool invocation, e.g. {"make"}.
	Command []string
	// Dir is the directory the build tool runs in. Empty means the current
	// working directory.
	Dir string
}

// Result describes a successful build.
type Result struct {
	// Output holds what the build tool wrote to stdout followed by stderr.
	Output []byte
	// Elapsed is how long the build took.
	Elapsed time.Duration
}

// Build runs the build tool as dictated by cfg. A build tool that cannot be
// started or exits with a non-zero status results in an error tagged with
// errors.KindBuild; its output is logged in that case.
func Build(ctx context.Context, cfg *Config) (*Result, error) {
	ctx, st := timing.Start(ctx, "build")
	defer st.End()

	if len(cfg.Command) == 0 {
		return nil, errors.Tag(errors.KindBuild, nil, "no build command")
	}
	cmd := procexec.Command(cfg.Command[0], cfg.Command[1:]...).WithDir(cfg.Dir)
	logging.Infof(ctx, "Building with %s...", cmd)

	res, err := cmd.Run(ctx)
	out := append(append([]byte(nil), res.Stdout...), res.Stderr...)
	if err != nil {
		logging.InfoLines(ctx, string(out))
		return nil, errors.Tagf(errors.KindBuild, err, "%s failed", cmd)
	}
	logging.Debugf(ctx, "Build finished in %v", res.Elapsed.Round(time.Millisecond))
	return &Result{Output: out, Elapsed: res.Elapsed}, nil
}
