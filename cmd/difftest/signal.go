// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/crypto/ssh/terminal"
	"golang.org/x/sys/unix"
)

const signalChannelSize = 3 // capacity of channel used to intercept signals

// installSignalHandler starts a goroutine that attempts to do some minimal
// cleanup when the process is being terminated by a signal (which prevents
// deferred functions from running).
//
// Programs under test run in their own process groups, so they do not receive
// signals sent to the terminal's foreground group and must be killed here.
// The session log needs no cleanup since it is synced after every test case.
func installSignalHandler(out io.Writer) {
	var st *terminal.State
	fd := int(os.Stdin.Fd())
	if terminal.IsTerminal(fd) {
		var err error
		if st, err = terminal.GetState(fd); err != nil {
			fmt.Fprintln(out, "Failed to get terminal state: ", err)
		}
	}

	sc := make(chan os.Signal, signalChannelSize)
	go func() {
		sig := <-sc
		fmt.Fprintf(out, "\nCaught %v signal; exiting\n", sig)
		killChildren(out)
		if st != nil {
			terminal.Restore(fd, st)
		}
		os.Exit(1)
	}()
	signal.Notify(sc, unix.SIGINT, unix.SIGTERM)
}

// killChildren kills the process groups of all child processes.
func killChildren(out io.Writer) {
	procs, err := process.Processes()
	if err != nil {
		fmt.Fprintf(out, "Failed to terminate subprocesses: %v\n", err)
		return
	}

	selfPid := int32(os.Getpid())
	for _, proc := range procs {
		ppid, err := proc.Ppid()
		if err != nil || ppid != selfPid {
			continue
		}
		if err := unix.Kill(-int(proc.Pid), unix.SIGKILL); err != nil {
			proc.Kill()
		}
	}
}
