// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package texttab

import (
	"strings"
	"testing"
)

func TestAlign(t *testing.T) {
	check := func(s string, a Align, w int, want string) {
		t.Helper()
		got := a.pad(s, w)
		if got != want {
			t.Errorf("want %q, got %q", want, got)
		}
	}

	check("abc", Left, 6, "abc   ")
	check("abc", Right, 6, "   abc")
	check("abc", Right, 2, "abc")
	check("☃", Right, 4, "   ☃")
}

func TestTable(t *testing.T) {
	var tab Table
	check := func(want string) {
		t.Helper()
		var gotBuf strings.Builder
		if err := tab.Format(&gotBuf); err != nil {
			t.Fatal(err)
		}
		got := gotBuf.String()
		if want != got {
			t.Errorf("want:\n%sgot:\n%s", want, got)
		}
		// Reset tab.
		tab = Table{}
	}

	// Basic test.
	tab.Row("a", "b", "c").Row("d", "e", "f")
	check("a  b  c\nd  e  f\n")

	// Cell padding, without trailing spaces.
	tab.Row("a", "b", "c").Row("long", "e", "long")
	check("a     b  c\nlong  e  long\n")

	// Right alignment.
	tab.SetAlign(1, Right)
	tab.Row("x", "1").Row("yy", "100")
	check("x     1\nyy  100\n")

	// Rules and short rows.
	tab.Row("name", "n").Rule().Row("a")
	check("name  n\n----  -\na\n")

	// Custom gap.
	tab.Gap = " | "
	tab.Row("a", "b").Rule()
	check("a | b\n- | -\n")

	// Empty table.
	check("")
}
