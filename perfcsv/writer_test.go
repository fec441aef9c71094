// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfcsv

import (
	"strings"
	"testing"
)

func TestWriter(t *testing.T) {
	const input = `dataset,threads,time_seconds
data/iris.csv,1,10.5
data/iris.csv,2,5
"data/with,comma.csv",24,0.125
`

	out := new(strings.Builder)
	w := NewWriter(out)
	r := NewReader(strings.NewReader(input+"bad,row,here\n"), "test")
	for r.Scan() {
		if err := w.Write(r.Result()); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.Err(); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	if out.String() != input {
		t.Fatalf("want:\n%sgot:\n%s", input, out.String())
	}
}
