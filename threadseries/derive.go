// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package threadseries

import (
	"fmt"
	"strings"
)

// A Value is an optional derived quantity.
type Value struct {
	V       float64 `json:"v"`
	Present bool    `json:"present"`
}

// Derived holds the speedup and efficiency of one dataset relative to
// its baseline measurement.
type Derived struct {
	Series *ThreadSeries

	// BaselineThreads is the thread count of the baseline, or 0 if
	// the series has no samples at all.
	BaselineThreads int
	BaselineTime    float64

	// Speedup and Efficiency are parallel to Series.Threads.
	Speedup    []Value
	Efficiency []Value
}

// Derive computes speedup and efficiency for s.
//
// The baseline is the sample at 1 thread if present, otherwise the
// sample at the smallest present thread count. Speedup at t is
// baseline time divided by time at t, and efficiency is speedup
// divided by t. Efficiency is not clamped. A time of zero yields an
// infinite speedup.
func Derive(s *ThreadSeries) *Derived {
	d := &Derived{
		Series:     s,
		Speedup:    make([]Value, len(s.Threads)),
		Efficiency: make([]Value, len(s.Threads)),
	}

	base := -1
	for i, th := range s.Threads {
		if s.Samples[i] == nil {
			continue
		}
		if th == 1 {
			base = i
			break
		}
		if base < 0 || th < s.Threads[base] {
			base = i
		}
	}
	if base < 0 {
		return d
	}
	d.BaselineThreads = s.Threads[base]
	d.BaselineTime = s.Samples[base].Mean

	for i, th := range s.Threads {
		t, ok := s.Time(i)
		if !ok {
			continue
		}
		var sp float64
		if i == base {
			sp = 1
		} else {
			sp = d.BaselineTime / t
		}
		d.Speedup[i] = Value{sp, true}
		d.Efficiency[i] = Value{sp / float64(th), true}
	}
	return d
}

// HasBaseline reports whether d has any speedup values.
func (d *Derived) HasBaseline() bool {
	return d.BaselineThreads > 0
}

// Values returns the values of metric m, parallel to d.Series.Threads.
func (d *Derived) Values(m Metric) []Value {
	switch m {
	case Speedup:
		return d.Speedup
	case Efficiency:
		return d.Efficiency
	}
	vs := make([]Value, len(d.Series.Threads))
	for i := range vs {
		if t, ok := d.Series.Time(i); ok {
			vs[i] = Value{t, true}
		}
	}
	return vs
}

// Label returns the legend label of d in a chart of metric m.
// Relative metrics name the baseline when it is not 1 thread.
func (d *Derived) Label(m Metric) string {
	if m != Time && d.HasBaseline() && d.BaselineThreads != 1 {
		return fmt.Sprintf("%s (baseline: %d threads)", d.Series.Dataset, d.BaselineThreads)
	}
	return d.Series.Dataset
}

// A Metric is a quantity charted against thread count.
type Metric int

const (
	Time Metric = iota
	Speedup
	Efficiency
)

// Metrics lists every Metric in chart order.
var Metrics = []Metric{Time, Speedup, Efficiency}

var metricInfo = [...]struct {
	name, title, ylabel, stem string
}{
	Time:       {"time", "Execution Time vs. Number of Threads (All Datasets)", "Execution Time (seconds)", "all_datasets_execution_time"},
	Speedup:    {"speedup", "Speedup vs. Number of Threads (All Datasets)", "Speedup", "all_datasets_speedup"},
	Efficiency: {"efficiency", "Efficiency vs. Number of Threads (All Datasets)", "Efficiency", "all_datasets_efficiency"},
}

func (m Metric) String() string {
	if m < 0 || int(m) >= len(metricInfo) {
		return fmt.Sprintf("Metric(%d)", int(m))
	}
	return metricInfo[m].name
}

// Title returns the chart title for m.
func (m Metric) Title() string { return metricInfo[m].title }

// YLabel returns the y axis label for m.
func (m Metric) YLabel() string { return metricInfo[m].ylabel }

// FileStem returns the base name, without extension, of the chart
// file for m.
func (m Metric) FileStem() string { return metricInfo[m].stem }

// Relative reports whether m is computed against a baseline.
func (m Metric) Relative() bool { return m != Time }

// ParseMetrics parses a comma-separated list of metric names.
// Duplicates are removed and the result is in chart order.
func ParseMetrics(s string) ([]Metric, error) {
	seen := make(map[Metric]bool)
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		found := false
		for _, m := range Metrics {
			if m.String() == f {
				seen[m] = true
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown metric %q (want time, speedup or efficiency)", f)
		}
	}
	if len(seen) == 0 {
		return nil, fmt.Errorf("no metrics in %q", s)
	}
	var out []Metric
	for _, m := range Metrics {
		if seen[m] {
			out = append(out, m)
		}
	}
	return out, nil
}
