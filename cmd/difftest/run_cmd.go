// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"

	"difftest/errors"
	"difftest/internal/build"
	"difftest/internal/config"
	"difftest/internal/logging"
	"difftest/internal/procexec"
	"difftest/internal/report"
	"difftest/internal/result"
	"difftest/internal/session"
	"difftest/internal/timing"
)

const banner = `     ------------------------------------------
     |          Welcome to difftest!          |
     ------------------------------------------
`

// runCmd implements subcommands.Command to support running a session.
type runCmd struct {
	cfg        *config.Config // bound to command-line flags
	configPath string         // YAML config file; empty if none
	out        io.Writer      // destination of the banner, results table and summary
}

var _ = subcommands.Command(&runCmd{})

func newRunCmd(out io.Writer) *runCmd {
	return &runCmd{cfg: config.Default(), out: out}
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "build and compare against a reference program" }
func (*runCmd) Usage() string {
	return `Usage: run [flag]... <testsDirectoryName>

Description:
    Builds the candidate program, then runs it and the reference program on
    every file in testsDirectoryName and compares their standard output byte
    for byte. Details of every test case are written to the session log.
    Exits with 0 if all test cases were run, even if some of them failed.
    -failfortests can be supplied to override this behavior.

Flag:
`
}

func (r *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.configPath, "config", "", "YAML config file; flags set explicitly override it")
	r.cfg.SetFlags(f)
}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(r.out, "Must enter directory name containing test files.\n\n"+r.Usage())
		f.SetOutput(r.out)
		f.PrintDefaults()
		return subcommands.ExitUsageError
	}
	testDir := f.Arg(0)

	cfg, err := r.loadConfig(f)
	if err != nil {
		logging.Infof(ctx, "Bad configuration: %v", err)
		return subcommands.ExitFailure
	}

	tl := timing.NewLog(nil)
	ctx = timing.NewContext(ctx, tl)
	ctx, st := timing.Start(ctx, "session")
	defer func() {
		st.End()
		var sb strings.Builder
		tl.WriteText(&sb)
		logging.Debug(ctx, "Timing:")
		logging.DebugLines(ctx, sb.String())
		if cfg.TimingPath == "" {
			return
		}
		if err := writeTiming(cfg.TimingPath, tl); err != nil {
			logging.Info(ctx, err)
		}
	}()

	scfg, err := sessionConfig(cfg, testDir)
	if err != nil {
		logging.Infof(ctx, "Bad configuration: %v", err)
		return subcommands.ExitFailure
	}

	fmt.Fprint(r.out, banner+"\n")
	rep, err := runSession(ctx, scfg, r.out)
	if err != nil {
		for _, line := range fatalMessage(err, testDir) {
			logging.Info(ctx, line)
		}
		logging.Debugf(ctx, "%+v", err)
		return subcommands.ExitFailure
	}

	if cfg.ResultsPath != "" {
		if err := report.WriteResultsJSON(cfg.ResultsPath, rep); err != nil {
			logging.Info(ctx, err)
		}
	}
	if cfg.JUnitPath != "" {
		if err := report.WriteJUnitXML(cfg.JUnitPath, rep); err != nil {
			logging.Info(ctx, err)
		}
	}

	// Failing test cases do not fail the command unless -failfortests was
	// passed.
	if cfg.FailForTests && !rep.AllPassed() {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// loadConfig returns the configuration for this run. Flags set explicitly
// take precedence over the config file.
func (r *runCmd) loadConfig(f *flag.FlagSet) (*config.Config, error) {
	cfg := r.cfg
	if r.configPath != "" {
		var err error
		if cfg, err = config.Load(r.configPath); err != nil {
			return nil, err
		}
		if err := cfg.Overlay(f); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// sessionConfig converts cfg to a session.Config for testDir.
func sessionConfig(cfg *config.Config, testDir string) (*session.Config, error) {
	cand, err := procexec.CommandLine(cfg.Candidate)
	if err != nil {
		return nil, errors.Tag(errors.KindConfig, err, "bad candidate command")
	}
	ref, err := procexec.CommandLine(cfg.Reference)
	if err != nil {
		return nil, errors.Tag(errors.KindConfig, err, "bad reference command")
	}
	return &session.Config{
		TestDir:    testDir,
		LogPath:    cfg.LogPath,
		Candidate:  cand.WithTimeout(cfg.Timeout),
		Reference:  ref.WithTimeout(cfg.Timeout),
		Build:      build.Config{Command: cfg.BuildCommand(), Dir: cfg.BuildDir},
		SkipBuild:  cfg.SkipBuild,
		Sort:       cfg.Sort,
		Advisories: cfg.Advisories,
	}, nil
}

// runSession runs a whole session and prints its results to out.
func runSession(ctx context.Context, cfg *session.Config, out io.Writer) (*result.RunReport, error) {
	s, err := session.Initialize(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	br, err := s.Build(ctx)
	if err != nil {
		return nil, err
	}
	if br != nil {
		logging.Debugf(ctx, "Build took %v; output:", br.Elapsed.Round(time.Millisecond))
		logging.DebugLines(ctx, string(br.Output))
	}
	logging.Info(ctx, "")

	rep, err := s.RunAll(ctx)
	if err != nil {
		return nil, err
	}
	sum, err := s.Summarize(rep)
	if err != nil {
		return nil, err
	}

	report.WriteTable(out, rep)
	fmt.Fprintln(out)
	fmt.Fprintln(out, sum)
	return rep, nil
}

// fatalMessage returns the lines to show to the user for a session-ending
// error.
func fatalMessage(err error, testDir string) []string {
	switch errors.KindOf(err) {
	case errors.KindConfig:
		return []string{
			fmt.Sprintf("Do you have a directory called %s?", testDir),
			"If not, make one and put sample input files in it.",
		}
	case errors.KindEmptyInput:
		return []string{fmt.Sprintf("%s is empty. Add some sample input files to it.", testDir)}
	case errors.KindBuild:
		return []string{"Could not build for some reason. Exiting..."}
	default:
		return []string{fmt.Sprintf("Session failed: %v", err)}
	}
}

// writeTiming writes tl to path as JSON.
func writeTiming(path string, tl *timing.Log) error {
	b, err := json.MarshalIndent(tl, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal timing log")
	}
	if err := os.WriteFile(path, append(b, '\n'), 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
