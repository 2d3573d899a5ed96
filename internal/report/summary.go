// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package report renders the outcome of a session for people and tools.
package report

import (
	"fmt"
	"strings"

	"difftest/internal/result"
)

// Summary returns the closing message of a session.
//
// If some test cases failed, the message lists them in the order they were
// run followed by advisories. candidate and reference name the two programs
// in the note about time differences.
func Summary(r *result.RunReport, candidate, reference string, advisories []string) string {
	var sb strings.Builder
	if failed := r.Failed(); len(failed) > 0 {
		fmt.Fprintf(&sb, "%d test cases failed. Test log saved in '%s'.\n", len(failed), r.LogPath)
		sb.WriteString("\nTest case(s) that failed: \n")
		for _, name := range failed {
			fmt.Fprintf(&sb, "     %s\n", name)
		}
		sb.WriteString("\n")
		for _, a := range advisories {
			sb.WriteString(a + "\n")
		}
	} else {
		fmt.Fprintf(&sb, "All tests passed. You rock! Test log saved in '%s'.\n", r.LogPath)
	}
	fmt.Fprintf(&sb, "Any negative time differences mean %s was faster than %s.\n", candidate, reference)
	return sb.String()
}
