// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package report

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
	"time"

	"difftest/errors"
	"difftest/internal/result"
)

// JUnitFilename is a suggested file name to be used with WriteJUnitXML.
const JUnitFilename = "results.xml"

// testSuites is the top level XML element of JUnit result.
type testSuites struct {
	XMLName   xml.Name
	TestSuite testSuite `xml:"testsuite"`
}

// testSuite is an XML element in JUnit result.
// Execution errors and output mismatches are both reported as failures.
type testSuite struct {
	Name      string      `xml:"name,attr"`
	ID        string      `xml:"id,attr,omitempty"`
	Timestamp string      `xml:"timestamp,attr"`
	Tests     int         `xml:"tests,attr"`
	Failures  int         `xml:"failures,attr"`
	Time      string      `xml:"time,attr"`
	TestCase  []*testCase `xml:"testcase"`
}

// testCase is an element in JUnit XML test result.
type testCase struct {
	Name string `xml:"name,attr"`
	// Time is the total running time of both programs.
	Time    string   `xml:"time,attr"`
	Failure *failure `xml:"failure,omitempty"`
}

// failure is an element in JUnit XML test result, representing a test case failure.
type failure struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Details string `xml:",cdata"`
}

// MarshalJUnitXML returns r in the JUnit XML format.
func MarshalJUnitXML(r *result.RunReport) ([]byte, error) {
	suites := testSuites{
		XMLName: xml.Name{Local: "testsuites"},
		TestSuite: testSuite{
			Name:      r.TestDir,
			ID:        r.SessionID,
			Timestamp: r.Start.UTC().Format(time.RFC3339),
			Tests:     len(r.Verdicts),
			Failures:  r.NumFailed(),
			Time:      seconds(r.End.Sub(r.Start)),
		},
	}
	suite := &suites.TestSuite
	for _, v := range r.Verdicts {
		var total time.Duration
		for _, e := range []*result.ExecutionResult{v.Candidate, v.Reference} {
			if e != nil {
				total += e.Elapsed
			}
		}
		tc := &testCase{Name: v.Case.Name, Time: seconds(total)}
		if !v.Passed() {
			tc.Failure = &failure{
				Message: v.Annotation(),
				Type:    v.Reason.String(),
				Details: xmlText(failureDetails(v)),
			}
		}
		suite.TestCase = append(suite.TestCase, tc)
	}
	return xml.MarshalIndent(suites, "", "  ")
}

// WriteJUnitXML saves r to path in the JUnit XML format.
func WriteJUnitXML(path string, r *result.RunReport) error {
	data, err := MarshalJUnitXML(r)
	if err != nil {
		return errors.Wrap(err, "failed to marshal JUnit XML")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// seconds formats d with a decimal point, e.g. "1.000" for one second.
func seconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}

// xmlText makes program output safe for character data in XML 1.0. Invalid
// UTF-8 is dropped and control characters other than tab, LF and CR are
// removed.
func xmlText(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return r
		case r < 0x20, r == 0xfffe, r == 0xffff:
			return -1
		}
		return r
	}, strings.ToValidUTF8(s, ""))
}

// failureDetails returns the stderr of the failed program, or both outputs
// for a mismatch.
func failureDetails(v *result.Verdict) string {
	switch v.Reason {
	case result.ReasonCandidateError:
		return string(v.Candidate.Stderr)
	case result.ReasonReferenceError:
		if v.Reference == nil {
			return ""
		}
		return string(v.Reference.Stderr)
	}
	return fmt.Sprintf("candidate output:\n%s\nreference output:\n%s", v.Candidate.Stdout, v.Reference.Stdout)
}
