// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package threadseries turns performance records into per-dataset
// series indexed by thread count, derives speedup and efficiency from
// them, and charts the result.
package threadseries

import (
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aclements/go-gg/ggstat"
	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-moremath/stats"

	"github.com/rforest/perfgraphs/perfcsv"
)

// CanonicalThreads is the default set of thread counts that series
// are aligned to for charting.
var CanonicalThreads = []int{1, 2, 4, 8, 12, 16, 20, 24}

// Column names used in the intermediate go-gg tables.
const (
	colDataset = "dataset"
	colThreads = "threads"
	colTime    = "time_seconds"
	colTrials  = "trials"
)

// A Sample summarizes the trials measured at one thread count.
type Sample struct {
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"stddev"` // 0 for a single trial
	Trials int     `json:"trials"`
}

// A ThreadSeries is the mean execution time of one dataset at each of
// a fixed, increasing set of thread counts.
//
// Samples is parallel to Threads. A nil entry means no trial was run
// at that thread count; it is absent, which is different from a time
// of zero.
type ThreadSeries struct {
	Dataset string    `json:"dataset"`
	Threads []int     `json:"threads"`
	Samples []*Sample `json:"samples"`

	// Dropped lists measured thread counts that are not in Threads,
	// in increasing order. Their trials are not part of the series.
	Dropped []int `json:"dropped,omitempty"`
}

// Time returns the mean time at index i of s and whether it is
// present.
func (s *ThreadSeries) Time(i int) (float64, bool) {
	if sum := s.Samples[i]; sum != nil {
		return sum.Mean, true
	}
	return 0, false
}

// Present returns the number of thread counts with a sample.
func (s *ThreadSeries) Present() int {
	n := 0
	for _, sum := range s.Samples {
		if sum != nil {
			n++
		}
	}
	return n
}

// Aggregate groups the rows of t by thread count, averages the trials
// in each group, and aligns the result to threads. If threads is nil,
// CanonicalThreads is used. threads is sorted and deduplicated.
//
// Repeated trials at one thread count are averaged. Thread counts
// without any trial are left absent; measured thread counts outside
// threads are reported in Dropped.
func Aggregate(t *perfcsv.Table, threads []int) *ThreadSeries {
	s := &ThreadSeries{
		Dataset: DatasetName(t),
		Threads: normalizeThreads(threads),
	}
	s.Samples = make([]*Sample, len(s.Threads))
	if t.Len() == 0 {
		return s
	}

	n := t.Len()
	names := make([]string, n)
	ths := make([]int, n)
	secs := make([]float64, n)
	for i := range t.Results {
		names[i] = t.Results[i].Dataset
		ths[i] = t.Results[i].Threads
		secs[i] = t.Results[i].TimeSeconds
	}
	tab := new(table.Builder).Add(colDataset, names).Add(colThreads, ths).Add(colTime, secs).Done()

	g := ggstat.Agg(colThreads)(
		ggstat.AggMean(colTime),
		ggstat.AggMin(colTime),
		ggstat.AggMax(colTime),
		aggStdDev(colTime),
		ggstat.AggCount(colTrials),
	).F(tab)

	index := make(map[int]int, len(s.Threads))
	for i, th := range s.Threads {
		index[th] = i
	}
	for _, gid := range g.Tables() {
		at := g.Table(gid)
		xs := at.MustColumn(colThreads).([]int)
		means := at.MustColumn("mean " + colTime).([]float64)
		mins := at.MustColumn("min " + colTime).([]float64)
		maxs := at.MustColumn("max " + colTime).([]float64)
		sds := at.MustColumn("stddev " + colTime).([]float64)
		counts := at.MustColumn(colTrials).([]int)
		for j, x := range xs {
			i, ok := index[x]
			if !ok {
				s.Dropped = append(s.Dropped, x)
				continue
			}
			s.Samples[i] = &Sample{
				Mean:   means[j],
				Min:    mins[j],
				Max:    maxs[j],
				StdDev: sds[j],
				Trials: counts[j],
			}
		}
	}
	sort.Ints(s.Dropped)
	return s
}

// aggStdDev returns an aggregate function that computes the sample
// standard deviation of col. The resulting column is named
// "stddev <col>". Groups with a single value get 0.
func aggStdDev(col string) ggstat.Aggregator {
	return func(input table.Grouping, b *table.Builder) {
		sds := make([]float64, 0, len(input.Tables()))
		for _, gid := range input.Tables() {
			xs := input.Table(gid).MustColumn(col).([]float64)
			sd := 0.0
			if len(xs) > 1 {
				sd = stats.Sample{Xs: xs}.StdDev()
			}
			sds = append(sds, sd)
		}
		b.Add("stddev "+col, sds)
	}
}

func normalizeThreads(threads []int) []int {
	if threads == nil {
		threads = CanonicalThreads
	}
	out := append([]int(nil), threads...)
	sort.Ints(out)
	j := 0
	for i, th := range out {
		if i > 0 && th == out[j-1] {
			continue
		}
		out[j] = th
		j++
	}
	return out[:j]
}

// DatasetName returns the display name of the dataset recorded in t:
// the dataset field of its first row with any directory and extension
// removed. Tables without rows are named after their file.
func DatasetName(t *perfcsv.Table) string {
	name := t.Dataset()
	if name == "" {
		name = t.Path
	}
	base := path.Base(strings.ReplaceAll(filepath.ToSlash(name), `\`, "/"))
	if stem := strings.TrimSuffix(base, path.Ext(base)); stem != "" {
		return stem
	}
	return base
}
