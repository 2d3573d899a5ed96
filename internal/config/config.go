// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package config holds the user-facing configuration of a difftest session.
//
// Values come from three layers, later ones taking precedence: built-in
// defaults, an optional YAML file, and command-line flags that were set
// explicitly.
package config

import (
	"flag"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"difftest/errors"
	"difftest/shutil"
)

// Defaults reproduce the PA3 netplan grader.
const (
	DefaultCandidate = "./netplan"
	DefaultReference = "./refnetplan"
	DefaultBuild     = "make"
	DefaultLogPath   = "pa3-tester-log"
)

// DefaultAdvisories are printed after the list of failed test cases.
var DefaultAdvisories = []string{
	"Keep in mind that you do not have to account for disconnected graphs.",
	"In case of ties for lowest edge weights, any one of the possible MSTs will be accepted.",
}

// Config describes how to run a session.
type Config struct {
	// Candidate and Reference are command lines of the programs to compare.
	// The test file path is appended as the last argument.
	Candidate string `yaml:"candidate"`
	Reference string `yaml:"reference"`
	// Build is the command line of the build tool.
	Build string `yaml:"build"`
	// BuildDir is the directory the build tool runs in.
	BuildDir string `yaml:"build_dir"`
	// SkipBuild disables the build step.
	SkipBuild bool `yaml:"skip_build"`
	// LogPath is the session log file. It is truncated at session start.
	LogPath string `yaml:"log"`
	// Timeout bounds each program run. Zero means no limit.
	Timeout time.Duration `yaml:"timeout"`
	// Sort runs test cases in name order instead of directory order.
	Sort bool `yaml:"sort"`
	// FailForTests makes the session exit with a failure status if any test
	// case failed.
	FailForTests bool `yaml:"fail_for_tests"`
	// ResultsPath, JUnitPath and TimingPath are optional extra outputs.
	ResultsPath string `yaml:"results"`
	JUnitPath   string `yaml:"junit"`
	TimingPath  string `yaml:"timing"`
	// Advisories are notes printed verbatim when some test case failed.
	Advisories []string `yaml:"advisories"`
}

// Default returns a Config holding the built-in defaults.
func Default() *Config {
	return &Config{
		Candidate:  DefaultCandidate,
		Reference:  DefaultReference,
		Build:      DefaultBuild,
		BuildDir:   ".",
		LogPath:    DefaultLogPath,
		Sort:       true,
		Advisories: append([]string(nil), DefaultAdvisories...),
	}
}

// Load returns the defaults overridden by the YAML file at path.
// Unknown keys are rejected.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Tagf(errors.KindConfig, err, "failed to read config %s", path)
	}
	cfg := Default()
	if err := yaml.UnmarshalStrict(b, cfg); err != nil {
		return nil, errors.Tagf(errors.KindConfig, err, "failed to parse config %s", path)
	}
	return cfg, nil
}

// SetFlags adds flags to f that set fields of c. The current values of c are
// used as flag defaults.
func (c *Config) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.Candidate, "candidate", c.Candidate, "command line of the program under test")
	f.StringVar(&c.Reference, "reference", c.Reference, "command line of the reference program")
	f.StringVar(&c.Build, "buildcmd", c.Build, "command line of the build tool")
	f.StringVar(&c.BuildDir, "builddir", c.BuildDir, "directory to run the build tool in")
	f.BoolVar(&c.SkipBuild, "skipbuild", c.SkipBuild, "do not run the build tool")
	f.StringVar(&c.LogPath, "log", c.LogPath, "session log file (truncated on start)")
	f.DurationVar(&c.Timeout, "timeout", c.Timeout, "time limit for each program run (0 for none)")
	f.BoolVar(&c.Sort, "sort", c.Sort, "run test cases in name order instead of directory order")
	f.BoolVar(&c.FailForTests, "failfortests", c.FailForTests, "exit with a failure status if any test case fails")
	f.StringVar(&c.ResultsPath, "results", c.ResultsPath, "write results as JSON to this file")
	f.StringVar(&c.JUnitPath, "junit", c.JUnitPath, "write results as JUnit XML to this file")
	f.StringVar(&c.TimingPath, "timing", c.TimingPath, "write timing information as JSON to this file")
}

// Overlay sets fields of c from the flags of f that were set explicitly on
// the command line. f must have been populated by SetFlags, possibly on
// another Config.
func (c *Config) Overlay(f *flag.FlagSet) error {
	own := flag.NewFlagSet("", flag.ContinueOnError)
	c.SetFlags(own)

	var firstErr error
	f.Visit(func(fl *flag.Flag) {
		if own.Lookup(fl.Name) == nil {
			return
		}
		if err := own.Set(fl.Name, fl.Value.String()); err != nil && firstErr == nil {
			firstErr = errors.Tagf(errors.KindConfig, err, "bad value for -%s", fl.Name)
		}
	})
	return firstErr
}

// Validate checks that c describes a runnable session.
func (c *Config) Validate() error {
	for _, p := range []struct{ name, line string }{
		{"candidate", c.Candidate},
		{"reference", c.Reference},
	} {
		if err := checkCommandLine(p.line); err != nil {
			return errors.Tagf(errors.KindConfig, err, "bad %s command", p.name)
		}
	}
	if !c.SkipBuild {
		if err := checkCommandLine(c.Build); err != nil {
			return errors.Tag(errors.KindConfig, err, "bad build command")
		}
	}
	if c.LogPath == "" {
		return errors.Tag(errors.KindConfig, nil, "session log path is empty")
	}
	if c.Timeout < 0 {
		return errors.Tagf(errors.KindConfig, nil, "negative timeout %v", c.Timeout)
	}
	return nil
}

// BuildCommand returns the build tool invocation as an argument list.
func (c *Config) BuildCommand() []string {
	args, _ := shutil.Split(c.Build)
	return args
}

func checkCommandLine(line string) error {
	args, err := shutil.Split(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return errors.New("empty command line")
	}
	return nil
}
