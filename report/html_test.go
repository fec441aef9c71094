// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"strings"
	"testing"

	"github.com/rforest/perfgraphs/perfcsv"
	"github.com/rforest/perfgraphs/threadseries"
)

func derive(name string, rows ...perfcsv.Result) *threadseries.Derived {
	t := &perfcsv.Table{Path: name + ".csv", Results: rows}
	return threadseries.Derive(threadseries.Aggregate(t, []int{1, 2, 4}))
}

func TestWrite(t *testing.T) {
	ds := []*threadseries.Derived{
		derive("A", perfcsv.Result{Dataset: "A", Threads: 1, TimeSeconds: 10}, perfcsv.Result{Dataset: "A", Threads: 2, TimeSeconds: 5}),
		derive("B", perfcsv.Result{Dataset: "B", Threads: 2, TimeSeconds: 8}),
		derive("empty"),
	}
	charts := map[threadseries.Metric]string{
		threadseries.Speedup: "/tmp/out/graphs/all_datasets_speedup.png",
		threadseries.Time:    "/tmp/out/graphs/all_datasets_execution_time.png",
	}
	p := NewPage("results", charts, ds)

	if len(p.Charts) != 2 || p.Charts[0].Src != "all_datasets_execution_time.png" {
		t.Fatalf("charts: got %+v", p.Charts)
	}
	if got := p.Datasets[0].Rows[1]; got.Speedup != "2.0000" || got.Efficiency != "1.0000" {
		t.Errorf("A at 2 threads: got %+v", got)
	}
	if got := p.Datasets[1].Baseline; got != "2 threads" {
		t.Errorf("B baseline: got %q, want %q", got, "2 threads")
	}

	var buf strings.Builder
	if err := Write(&buf, p); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"<title>results</title>",
		`<img src="all_datasets_speedup.png"`,
		"<h2>A</h2>",
		"<p>Baseline: 2 threads</p>",
		"<td>2<td>5.0000<td>0.0000<td>1<td>2.0000<td>1.0000",
		`<td>4<td class="absent" colspan="5">not measured`,
		"<p>No measurements.</p>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteEscapes(t *testing.T) {
	name := "<img src=x onerror=alert(1)>"
	p := NewPage("r&d", nil, []*threadseries.Derived{
		derive("x", perfcsv.Result{Dataset: name, Threads: 1, TimeSeconds: 1}),
	})
	var buf strings.Builder
	if err := Write(&buf, p); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "<img src=x") {
		t.Errorf("dataset name was not escaped:\n%s", out)
	}
	if !strings.Contains(out, "&lt;img src=x") || !strings.Contains(out, "r&amp;d") {
		t.Errorf("escaped text not found:\n%s", out)
	}
}
