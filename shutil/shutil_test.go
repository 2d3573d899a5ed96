// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package shutil_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"difftest/shutil"
)

func TestEscape(t *testing.T) {
	for _, c := range []struct {
		in, exp string
	}{
		{``, `''`},
		{` `, `' '`},
		{`ab`, `ab`},
		{`a b`, `'a b'`},
		{`./netplan`, `./netplan`},
		{`AZaz09@%_+=:,./-`, `AZaz09@%_+=:,./-`},
		{`a!b`, `'a!b'`},
		{`'`, `''"'"''`},
		{`=foo`, `'=foo'`},
		{`it's`, `'it'"'"'s'`},
	} {
		if s := shutil.Escape(c.in); s != c.exp {
			t.Errorf("Escape(%q) = %q; want %q", c.in, s, c.exp)
		}
	}
}

func TestEscapeSlice(t *testing.T) {
	const exp = `make -C 'my dir' all`
	if s := shutil.EscapeSlice([]string{"make", "-C", "my dir", "all"}); s != exp {
		t.Errorf("EscapeSlice() = %q; want %q", s, exp)
	}
}

func TestSplit(t *testing.T) {
	for _, c := range []struct {
		in  string
		exp []string
	}{
		{``, nil},
		{`   `, nil},
		{`make`, []string{"make"}},
		{`  ./netplan   -v `, []string{"./netplan", "-v"}},
		{`python3 'ref plan.py'`, []string{"python3", "ref plan.py"}},
		{`a"b c"d`, []string{"ab cd"}},
		{`"say \"hi\" \n"`, []string{`say "hi" \n`}},
		{`a\ b c`, []string{"a b", "c"}},
		{`''`, []string{""}},
		{`''"'"''`, []string{"'"}},
	} {
		got, err := shutil.Split(c.in)
		if err != nil {
			t.Errorf("Split(%q) failed: %v", c.in, err)
			continue
		}
		if diff := cmp.Diff(got, c.exp); diff != "" {
			t.Errorf("Split(%q) mismatch (-got +want):\n%s", c.in, diff)
		}
	}
}

func TestSplitUnterminated(t *testing.T) {
	for _, in := range []string{`'abc`, `"abc`, `a "b\"`} {
		if got, err := shutil.Split(in); err == nil {
			t.Errorf("Split(%q) = %q; want error", in, got)
		}
	}
}

func TestSplitRoundTrip(t *testing.T) {
	args := []string{"./ref", "", "a b", "it's", `"q"`, "=x", "tab\there"}
	got, err := shutil.Split(shutil.EscapeSlice(args))
	if err != nil {
		t.Fatal("Split failed: ", err)
	}
	if diff := cmp.Diff(got, args); diff != "" {
		t.Errorf("Round trip mismatch (-got +want):\n%s", diff)
	}
}
