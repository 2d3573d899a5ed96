// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package report_test

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"difftest/errors"
	"difftest/internal/report"
	"difftest/internal/result"
	"difftest/testutil"
)

var startTime = time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

func exec(p result.Program, out string, elapsed time.Duration) *result.ExecutionResult {
	return &result.ExecutionResult{Program: p, Stdout: []byte(out), Elapsed: elapsed}
}

// newReport returns a report with a passing case, a mismatching case and a
// case whose candidate crashed.
func newReport() *result.RunReport {
	r := &result.RunReport{
		SessionID: "2f1c6a9e-0d36-4c39-9a8e-3a1e3ce0f0a1",
		TestDir:   "tests",
		LogPath:   "pa3-tester-log",
		Start:     startTime,
		End:       startTime.Add(3 * time.Second),
	}
	r.Add(result.Judge(result.TestCase{Name: "g1.txt", Path: "tests/g1.txt"},
		exec(result.ProgramCandidate, "7\n", 100*time.Millisecond),
		exec(result.ProgramReference, "7\n", 200*time.Millisecond)))
	r.Add(result.Judge(result.TestCase{Name: "g2.txt", Path: "tests/g2.txt"},
		exec(result.ProgramCandidate, "1\n", 300*time.Millisecond),
		exec(result.ProgramReference, "2\n", 200*time.Millisecond)))
	crashed := exec(result.ProgramCandidate, "", 50*time.Millisecond)
	crashed.Stderr = []byte("Segmentation fault\n")
	crashed.ExitCode = 139
	crashed.Err = errors.Tag(errors.KindCandidateExecution, errors.New("./netplan exited with status 139"), "candidate failed")
	r.Add(result.Judge(result.TestCase{Name: "g3.txt", Path: "tests/g3.txt"}, crashed, nil))
	return r
}

func TestSummaryFailures(t *testing.T) {
	advisories := []string{"Graphs are connected.", "Ties are fine."}
	got := report.Summary(newReport(), "./netplan", "./refnetplan", advisories)
	want := `2 test cases failed. Test log saved in 'pa3-tester-log'.

Test case(s) that failed: 
     g2.txt
     g3.txt

Graphs are connected.
Ties are fine.
Any negative time differences mean ./netplan was faster than ./refnetplan.
`
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Summary mismatch (-got +want):\n%s", diff)
	}
}

func TestSummaryAllPassed(t *testing.T) {
	r := newReport()
	r.Verdicts = r.Verdicts[:1]
	got := report.Summary(r, "./netplan", "./refnetplan", []string{"never shown"})
	want := `All tests passed. You rock! Test log saved in 'pa3-tester-log'.
Any negative time differences mean ./netplan was faster than ./refnetplan.
`
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Summary mismatch (-got +want):\n%s", diff)
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	report.WriteTable(&buf, newReport())
	out := buf.String()
	for _, s := range []string{"g1.txt", "g2.txt", "g3.txt", "PASS", "FAIL", "OutputMismatch", "CandidateExecutionError", "-0.100s", "+0.100s"} {
		if !strings.Contains(out, s) {
			t.Errorf("Table does not contain %q:\n%s", s, out)
		}
	}
}

func TestWriteResultsJSON(t *testing.T) {
	path := filepath.Join(testutil.TempDir(t), report.ResultsFilename)
	if err := report.WriteResultsJSON(path, newReport()); err != nil {
		t.Fatal("WriteResultsJSON failed: ", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got report.Results
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal("Failed to parse results: ", err)
	}

	type summary struct {
		Name, Status, Reason string
		HasReference         bool
		TimeDelta            time.Duration
	}
	var cases []summary
	for _, c := range got.Cases {
		cases = append(cases, summary{c.Name, c.Status, c.Reason, c.Reference != nil, c.TimeDelta})
	}
	want := []summary{
		{"g1.txt", "PASS", "", true, -100 * time.Millisecond},
		{"g2.txt", "FAIL", "OutputMismatch", true, 100 * time.Millisecond},
		{"g3.txt", "FAIL", "CandidateExecutionError", false, 0},
	}
	if diff := cmp.Diff(cases, want); diff != "" {
		t.Errorf("Cases mismatch (-got +want):\n%s", diff)
	}
	if got.Failed != 2 {
		t.Errorf("Failed = %d; want 2", got.Failed)
	}
	if got.SessionID == "" {
		t.Error("Session ID is missing")
	}
	if e := got.Cases[2].Candidate.Error; !strings.Contains(e, "status 139") {
		t.Errorf("Candidate error = %q; want it to mention the exit status", e)
	}
}

func TestMarshalJUnitXML(t *testing.T) {
	data, err := report.MarshalJUnitXML(newReport())
	if err != nil {
		t.Fatal("MarshalJUnitXML failed: ", err)
	}

	type failure struct {
		Type    string `xml:"type,attr"`
		Details string `xml:",chardata"`
	}
	type testCase struct {
		Name    string   `xml:"name,attr"`
		Time    string   `xml:"time,attr"`
		Failure *failure `xml:"failure"`
	}
	var got struct {
		Suite struct {
			Name      string     `xml:"name,attr"`
			Timestamp string     `xml:"timestamp,attr"`
			Tests     int        `xml:"tests,attr"`
			Failures  int        `xml:"failures,attr"`
			Time      string     `xml:"time,attr"`
			Cases     []testCase `xml:"testcase"`
		} `xml:"testsuite"`
	}
	if err := xml.Unmarshal(data, &got); err != nil {
		t.Fatalf("Failed to parse XML: %v\n%s", err, data)
	}

	s := got.Suite
	if s.Name != "tests" || s.Timestamp != "2026-10-17T10:00:00Z" || s.Tests != 3 || s.Failures != 2 || s.Time != "3.000" {
		t.Errorf("Unexpected test suite attributes in:\n%s", data)
	}
	want := []testCase{
		{Name: "g1.txt", Time: "0.300"},
		{Name: "g2.txt", Time: "0.500", Failure: &failure{
			Type:    "OutputMismatch",
			Details: "candidate output:\n1\n\nreference output:\n2\n",
		}},
		{Name: "g3.txt", Time: "0.050", Failure: &failure{
			Type:    "CandidateExecutionError",
			Details: "Segmentation fault\n",
		}},
	}
	if diff := cmp.Diff(s.Cases, want); diff != "" {
		t.Errorf("Test cases mismatch (-got +want):\n%s", diff)
	}
}

func TestMarshalJUnitXMLControlBytes(t *testing.T) {
	r := newReport()
	crashed := r.Verdicts[2].Candidate
	crashed.Stderr = []byte("\x1b[31mfatal\x1b[0m\x00 at \xff\xfeline 3\n")

	data, err := report.MarshalJUnitXML(r)
	if err != nil {
		t.Fatal("MarshalJUnitXML failed: ", err)
	}
	var got struct {
		Cases []struct {
			Failure *struct {
				Details string `xml:",chardata"`
			} `xml:"failure"`
		} `xml:"testsuite>testcase"`
	}
	if err := xml.Unmarshal(data, &got); err != nil {
		t.Fatalf("Output is not valid XML: %v\n%q", err, data)
	}
	if len(got.Cases) != 3 || got.Cases[2].Failure == nil {
		t.Fatalf("Unexpected test cases in:\n%s", data)
	}
	if d, want := got.Cases[2].Failure.Details, "[31mfatal[0m at line 3\n"; d != want {
		t.Errorf("Details = %q; want %q", d, want)
	}
}
