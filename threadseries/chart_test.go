// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package threadseries

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

func testDerived() []*Derived {
	return []*Derived{
		Derive(Aggregate(newTable("A.csv", "A 1 10", "A 2 5"), nil)),
		Derive(Aggregate(newTable("B.csv", "B 1 20", "B 4 4"), nil)),
		Derive(Aggregate(newTable("C.csv"), nil)),
	}
}

func smallOptions(format string) *ChartOptions {
	return &ChartOptions{Format: format, Width: 4 * vg.Inch, Height: 3 * vg.Inch, DPI: 72}
}

func TestChart(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "graphs")
	ds := testDerived()
	for _, m := range Metrics {
		path, err := Chart(ds, m, dir, smallOptions(""))
		if err != nil {
			t.Fatalf("%v: %v", m, err)
		}
		if want := filepath.Join(dir, m.FileStem()+".png"); path != want {
			t.Errorf("%v: wrote %s, want %s", m, path, want)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")) {
			t.Errorf("%v: not a PNG file", m)
		}
	}
}

func TestChartDeterministic(t *testing.T) {
	ds := testDerived()
	var out [2][]byte
	for i := range out {
		dir := t.TempDir()
		path, err := Chart(ds, Speedup, dir, smallOptions("png"))
		if err != nil {
			t.Fatal(err)
		}
		if out[i], err = os.ReadFile(path); err != nil {
			t.Fatal(err)
		}
	}
	if !bytes.Equal(out[0], out[1]) {
		t.Errorf("two renders of the same input differ")
	}
}

func TestChartOverwrite(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, Time.FileStem()+".svg")
	if err := os.WriteFile(stale, []byte("stale"), 0666); err != nil {
		t.Fatal(err)
	}
	path, err := Chart(testDerived(), Time, dir, smallOptions("svg"))
	if err != nil {
		t.Fatal(err)
	}
	if path != stale {
		t.Fatalf("wrote %s, want %s", path, stale)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Errorf("%s was not replaced with an SVG chart", path)
	}
}

func TestChartNoData(t *testing.T) {
	ds := []*Derived{Derive(Aggregate(newTable("C.csv"), nil))}
	if _, err := Chart(ds, Efficiency, t.TempDir(), smallOptions("png")); err != nil {
		t.Errorf("chart of empty series: %v", err)
	}
	if _, err := Chart(nil, Time, t.TempDir(), nil); err != nil {
		t.Errorf("chart of no series: %v", err)
	}
}

func TestChartBadFormat(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "graphs")
	if _, err := Chart(testDerived(), Time, dir, smallOptions("gif")); err == nil {
		t.Fatal("want error for gif format")
	}
	if _, err := os.Stat(dir); err == nil {
		t.Errorf("output directory created for a rejected format")
	}
}

func TestChartAxisSpansTicks(t *testing.T) {
	ds := []*Derived{Derive(Aggregate(newTable("A.csv", "A 2 4", "A 4 2"), nil))}
	for _, threads := range [][]int{{24, 1, 2, 4}, {4, 1, 24, 1, 2}} {
		pl, err := newPlot(ds, Time, &ChartOptions{Threads: threads})
		if err != nil {
			t.Fatal(err)
		}
		var got []float64
		for _, tick := range pl.X.Tick.Marker.(plot.ConstantTicks) {
			got = append(got, tick.Value)
		}
		if want := []float64{1, 2, 4, 24}; !reflect.DeepEqual(got, want) {
			t.Errorf("threads %v: ticks %v, want %v", threads, got, want)
		}
		if pl.X.Min > 1 || pl.X.Max < 24 {
			t.Errorf("threads %v: x axis [%v, %v] does not span ticks 1..24", threads, pl.X.Min, pl.X.Max)
		}
	}
}

func TestChartLines(t *testing.T) {
	// Ten datasets: D3 has no trials and D9 has no 1-thread trial.
	var ds []*Derived
	for i := 0; i < 10; i++ {
		name := fmt.Sprintf("D%d", i)
		var rows []string
		switch i {
		case 3:
		case 9:
			rows = []string{name + " 2 8", name + " 4 4"}
		default:
			rows = []string{name + " 1 10", name + " 2 6"}
		}
		ds = append(ds, Derive(Aggregate(newTable(name+".csv", rows...), nil)))
	}

	for _, m := range Metrics {
		lines := chartLines(ds, m)
		if len(lines) != 9 {
			t.Fatalf("%v: got %d lines, want 9", m, len(lines))
		}
		var labels []string
		for _, cl := range lines {
			labels = append(labels, cl.label)
		}
		last := "D9 (baseline: 2 threads)"
		if m == Time {
			last = "D9"
		}
		want := []string{"D0", "D1", "D2", "D4", "D5", "D6", "D7", "D8", last}
		if !reflect.DeepEqual(labels, want) {
			t.Errorf("%v: labels %q, want %q", m, labels, want)
		}

		// Colors follow the dataset index, not the line index.
		for j, idx := range []int{0, 1, 2, 4, 5, 6, 7, 0, 1} {
			if lines[j].color != Palette[idx] {
				t.Errorf("%v: %s color %v, want Palette[%d]", m, lines[j].label, lines[j].color, idx)
			}
		}
	}
}

func TestPoints(t *testing.T) {
	d := Derive(Aggregate(newTable("z.csv", "Z 1 1", "Z 2 0", "Z 4 0.5"), nil))
	xys := points(d.Series.Threads, d.Speedup)
	if len(xys) != 2 || xys[0].X != 1 || xys[1].X != 4 || xys[1].Y != 2 {
		t.Errorf("got points %v, want (1,1) (4,2)", xys)
	}
}

func TestToCSV(t *testing.T) {
	ds := []*Derived{
		Derive(Aggregate(newTable("A.csv", "A 1 10", "A 2 5", "A 2 5"), []int{1, 2, 4})),
		Derive(Aggregate(newTable("B.csv", "B 4 2", "B 2 8"), []int{1, 2, 4})),
	}
	var buf bytes.Buffer
	if err := ToCSV(&buf, ds); err != nil {
		t.Fatal(err)
	}
	want := `dataset,threads,mean_seconds,trials,speedup,efficiency
A,1,10,1,1,1
A,2,5,2,2,1
A,4,,,,
B,1,,,,
B,2,8,1,1,0.5
B,4,2,1,4,1
`
	if got := buf.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}
