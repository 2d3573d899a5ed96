// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package procexec runs local programs to completion, capturing their output
// and measuring how long they take.
package procexec

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"syscall"
	"time"

	"code.cloudfoundry.org/clock"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"difftest/errors"
	"difftest/shutil"
)

// Runner is implemented by commands that can be run to completion.
type Runner interface {
	// Run runs the command with extraArgs appended to its base arguments and
	// blocks until it exits. The returned Result is non-nil even on error and
	// holds whatever was captured.
	Run(ctx context.Context, extraArgs ...string) (*Result, error)
	// String returns the command line without extra arguments.
	String() string
}

// Result holds what was captured from one run of a command.
type Result struct {
	// Args is the full argument list, starting with the program name.
	Args []string
	// Stdout and Stderr hold the bytes the process wrote.
	Stdout []byte
	Stderr []byte
	// ExitCode is the exit status of the process, or -1 if it was not started
	// or was killed by a signal.
	ExitCode int
	// Elapsed is the wall time from just before the process was started until
	// it exited and its output was fully read.
	Elapsed time.Duration
}

// Cmd represents a local command to execute.
type Cmd struct {
	name     string
	baseArgs []string
	dir      string
	timeout  time.Duration
	clk      clock.Clock
}

var _ Runner = &Cmd{}

// Command constructs a new Cmd representing a local command to execute.
func Command(name string, baseArgs ...string) *Cmd {
	return &Cmd{
		name:     name,
		baseArgs: baseArgs,
		clk:      clock.NewClock(),
	}
}

// CommandLine constructs a new Cmd from a shell-style command line such as
// "python3 'ref plan.py'".
func CommandLine(line string) (*Cmd, error) {
	args, err := shutil.Split(line)
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, errors.New("empty command line")
	}
	return Command(args[0], args[1:]...), nil
}

// WithDir returns a copy of c that runs in dir.
func (c *Cmd) WithDir(dir string) *Cmd {
	cc := *c
	cc.dir = dir
	return &cc
}

// WithTimeout returns a copy of c whose runs are killed after d.
// A zero d means no limit.
func (c *Cmd) WithTimeout(d time.Duration) *Cmd {
	cc := *c
	cc.timeout = d
	return &cc
}

// WithClock returns a copy of c that measures time with clk.
func (c *Cmd) WithClock(clk clock.Clock) *Cmd {
	cc := *c
	cc.clk = clk
	return &cc
}

// String returns the command line of c.
func (c *Cmd) String() string {
	return shutil.EscapeSlice(append([]string{c.name}, c.baseArgs...))
}

// Run runs the command synchronously. See Runner.Run for details.
//
// A process that cannot be started, exits with a non-zero status or exceeds
// its timeout results in an error. Timeouts are tagged with
// errors.KindTimeout. On timeout or cancellation of ctx the whole process
// group of the command is killed.
func (c *Cmd) Run(ctx context.Context, extraArgs ...string) (*Result, error) {
	args := append(append([]string(nil), c.baseArgs...), extraArgs...)
	res := &Result{Args: append([]string{c.name}, args...), ExitCode: -1}
	cmdLine := shutil.EscapeSlice(res.Args)

	cmd := exec.Command(c.name, args...)
	cmd.Dir = c.dir
	// Run in a new process group so that children of the program are
	// killed along with it.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return res, errors.Wrap(err, "failed to create stdout pipe")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return res, errors.Wrap(err, "failed to create stderr pipe")
	}

	start := c.clk.Now()
	if err := cmd.Start(); err != nil {
		return res, errors.Wrapf(err, "failed to start %s", cmdLine)
	}

	var outBuf, errBuf bytes.Buffer
	var g errgroup.Group
	g.Go(func() error {
		_, err := io.Copy(&outBuf, stdout)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(&errBuf, stderr)
		return err
	})

	done := make(chan error, 1)
	go func() {
		// Pipes must be drained before calling Wait.
		readErr := g.Wait()
		waitErr := cmd.Wait()
		if waitErr == nil {
			waitErr = readErr
		}
		done <- waitErr
	}()

	var timeout <-chan time.Time
	if c.timeout > 0 {
		tm := c.clk.NewTimer(c.timeout)
		defer tm.Stop()
		timeout = tm.C()
	}

	// stop kills the process group and closes the read ends of the pipes.
	// Descendants that left the group may still hold the write ends open,
	// and the readers must not wait for them.
	stop := func() {
		killGroup(cmd)
		stdout.Close()
		stderr.Close()
		<-done
	}

	var runErr error
	select {
	case runErr = <-done:
	case <-timeout:
		stop()
		runErr = errors.Tagf(errors.KindTimeout, nil, "%s timed out after %v", cmdLine, c.timeout)
	case <-ctx.Done():
		stop()
		runErr = errors.Wrapf(ctx.Err(), "%s was interrupted", cmdLine)
	}

	res.Elapsed = c.clk.Since(start)
	res.Stdout = outBuf.Bytes()
	res.Stderr = errBuf.Bytes()
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if runErr != nil {
		if errors.HasKind(runErr, errors.KindTimeout) || ctx.Err() != nil {
			return res, runErr
		}
		var xerr *exec.ExitError
		if errors.As(runErr, &xerr) {
			return res, errors.Wrapf(runErr, "%s exited with status %d", cmdLine, res.ExitCode)
		}
		return res, errors.Wrapf(runErr, "failed to run %s", cmdLine)
	}
	return res, nil
}

// killGroup kills the process group led by cmd's process.
func killGroup(cmd *exec.Cmd) {
	// Fall back to the single process if the group is already gone.
	if err := unix.Kill(-cmd.Process.Pid, unix.SIGKILL); err != nil {
		cmd.Process.Kill()
	}
}
