// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"difftest/internal/result"
)

// WriteTable renders a per-case results table for r to w.
func WriteTable(w io.Writer, r *result.RunReport) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Results for %s (%s)", r.TestDir, formatSeconds(r.End.Sub(r.Start))))
	t.AppendHeader(table.Row{"Test case", "Candidate", "Reference", "Difference", "Status", "Reason"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Test case", WidthMax: 40, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Candidate", Align: text.AlignRight},
		{Name: "Reference", Align: text.AlignRight},
		{Name: "Difference", Align: text.AlignRight},
		{Name: "Reason", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, v := range r.Verdicts {
		diff := "-"
		if v.HasTimeDelta() {
			diff = fmt.Sprintf("%+.3fs", v.TimeDelta.Seconds())
		}
		t.AppendRow(table.Row{
			v.Case.Name,
			formatElapsed(v.Candidate),
			formatElapsed(v.Reference),
			diff,
			v.Status.String(),
			v.Reason.String(),
		})
	}

	n := len(r.Verdicts)
	failed := r.NumFailed()
	t.AppendFooter(table.Row{"TOTAL", n, "", "", fmt.Sprintf("%d/%d passed", n-failed, n), ""})
	t.SetStyle(table.StyleLight)
	t.Render()
}

func formatElapsed(e *result.ExecutionResult) string {
	if e == nil {
		return "-"
	}
	return formatSeconds(e.Elapsed)
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.3fs", d.Seconds())
}
