// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scaling runs the thread scaling pipeline over result
// folders: it loads the performance records of a folder, averages
// them per thread count, derives speedup and efficiency, and writes
// charts and reports to the folder's graphs directory.
package scaling

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/rforest/perfgraphs/internal/texttab"
	"github.com/rforest/perfgraphs/perfcsv"
	"github.com/rforest/perfgraphs/publish"
	"github.com/rforest/perfgraphs/report"
	"github.com/rforest/perfgraphs/threadseries"
)

// Default folder layout.
const (
	DefaultPerformanceDir = "performance"
	DefaultGraphsDir      = "graphs"

	CSVFile  = "derived_series.csv"
	HTMLFile = "index.html"
)

// DefaultFolders are the result folders processed when none are
// given.
var DefaultFolders = []string{"results", "pcad_results"}

// A Store records derived series. *resultdb.DB implements it.
type Store interface {
	InsertRun(ctx context.Context, folder string, ds []*threadseries.Derived) (int64, error)
}

// Options configures the pipeline. The zero Options charts every
// metric at the canonical thread counts.
type Options struct {
	PerformanceDir string   // input subdirectory of a folder
	GraphsDir      string   // output subdirectory of a folder
	Extensions     []string // input file extensions; default .csv

	Threads []int                 // default threadseries.CanonicalThreads
	Metrics []threadseries.Metric // default threadseries.Metrics
	Chart   *threadseries.ChartOptions

	CSV  bool // write CSVFile to the graphs directory
	HTML bool // write HTMLFile to the graphs directory

	// Summary, if not nil, receives a text table of each folder's
	// derived series.
	Summary io.Writer

	// Store, if not nil, records each folder's derived series.
	Store Store

	// Uploader, if not nil, receives the contents of each folder's
	// graphs directory under UploadPrefix/<folder base name>.
	Uploader     publish.Uploader
	UploadPrefix string

	// Logf, if not nil, is called with warnings about the input.
	Logf func(format string, args ...interface{})
}

func (o *Options) withDefaults() *Options {
	n := new(Options)
	if o != nil {
		*n = *o
	}
	if n.PerformanceDir == "" {
		n.PerformanceDir = DefaultPerformanceDir
	}
	if n.GraphsDir == "" {
		n.GraphsDir = DefaultGraphsDir
	}
	if n.Threads == nil {
		n.Threads = threadseries.CanonicalThreads
	}
	if n.Metrics == nil {
		n.Metrics = threadseries.Metrics
	}
	if n.Chart == nil {
		n.Chart = threadseries.DefaultChartOptions()
	}
	if n.Logf == nil {
		n.Logf = func(string, ...interface{}) {}
	}
	return n
}

// Result describes the outputs of one processed folder.
type Result struct {
	Folder    string
	GraphsDir string

	// Series holds one entry per input file, in file name order.
	Series []*threadseries.Derived

	// Charts maps each charted metric to its file.
	Charts map[threadseries.Metric]string

	// Files lists the additional report files written.
	Files []string

	// RunID is the Store's ID for this folder, or 0.
	RunID int64

	// Uploaded lists the uploaded object names.
	Uploaded []string

	// Warnings describes input that was skipped.
	Warnings []string
}

func (r *Result) warnf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// ProcessFolder runs the pipeline for one result folder.
//
// Input is read from folder/<PerformanceDir>. If that directory is
// missing the error wraps perfcsv.ErrDirectoryNotFound; if it holds no
// input files the error wraps perfcsv.ErrNoInputFiles. A file that
// cannot be parsed at all fails the folder with a
// *perfcsv.MalformedRecordError.
func ProcessFolder(ctx context.Context, folder string, opts *Options) (*Result, error) {
	opts = opts.withDefaults()

	tables, err := perfcsv.LoadDir(filepath.Join(folder, opts.PerformanceDir), opts.Extensions...)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Folder:    folder,
		GraphsDir: filepath.Join(folder, opts.GraphsDir),
		Charts:    make(map[threadseries.Metric]string),
	}
	for _, t := range tables {
		if len(t.Errors) > 0 {
			res.warnf("%s: skipped %d malformed rows; first: %v", t.Path, len(t.Errors), t.Errors[0])
		}
		s := threadseries.Aggregate(t, opts.Threads)
		if len(s.Dropped) > 0 {
			res.warnf("%s: ignoring thread counts %v, not in %v", t.Path, s.Dropped, s.Threads)
		}
		d := threadseries.Derive(s)
		if !d.HasBaseline() {
			res.warnf("%s: dataset %s has no measurements to chart", t.Path, s.Dataset)
		}
		res.Series = append(res.Series, d)
	}
	for _, w := range res.Warnings {
		opts.Logf("%s", w)
	}

	if err := os.MkdirAll(res.GraphsDir, 0777); err != nil {
		return nil, err
	}

	chart := *opts.Chart
	if chart.Threads == nil {
		chart.Threads = opts.Threads
	}
	for _, m := range opts.Metrics {
		file, err := threadseries.Chart(res.Series, m, res.GraphsDir, &chart)
		if err != nil {
			return nil, fmt.Errorf("charting %v: %w", m, err)
		}
		res.Charts[m] = file
	}

	if opts.CSV {
		file := filepath.Join(res.GraphsDir, CSVFile)
		if err := writeFile(file, func(w io.Writer) error { return threadseries.ToCSV(w, res.Series) }); err != nil {
			return nil, err
		}
		res.Files = append(res.Files, file)
	}
	if opts.HTML {
		file := filepath.Join(res.GraphsDir, HTMLFile)
		page := report.NewPage(folder, res.Charts, res.Series)
		if err := writeFile(file, func(w io.Writer) error { return report.Write(w, page) }); err != nil {
			return nil, err
		}
		res.Files = append(res.Files, file)
	}
	if opts.Summary != nil {
		if err := WriteSummary(opts.Summary, folder, res.Series); err != nil {
			return nil, err
		}
	}

	if opts.Store != nil {
		id, err := opts.Store.InsertRun(ctx, folder, res.Series)
		if err != nil {
			return nil, fmt.Errorf("recording run: %w", err)
		}
		res.RunID = id
	}
	if opts.Uploader != nil {
		prefix := path.Join(opts.UploadPrefix, filepath.Base(filepath.Clean(folder)))
		names, err := publish.Dir(ctx, opts.Uploader, res.GraphsDir, prefix)
		res.Uploaded = names
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

func writeFile(file string, write func(io.Writer) error) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", file, err)
	}
	return f.Close()
}

// WriteSummary writes a text table of ds to w, one line per dataset
// and measured thread count.
func WriteSummary(w io.Writer, folder string, ds []*threadseries.Derived) error {
	var tab texttab.Table
	for col := 1; col <= 6; col++ {
		tab.SetAlign(col, texttab.Right)
	}
	tab.Row("dataset", "threads", "mean(s)", "stddev", "trials", "speedup", "efficiency")
	tab.Rule()
	for _, d := range ds {
		s := d.Series
		for i, th := range s.Threads {
			sum := s.Samples[i]
			if sum == nil {
				continue
			}
			tab.Row(s.Dataset, fmt.Sprint(th),
				fmt.Sprintf("%.4f", sum.Mean), fmt.Sprintf("%.4f", sum.StdDev), fmt.Sprint(sum.Trials),
				optional(d.Speedup[i]), optional(d.Efficiency[i]))
		}
	}
	if _, err := fmt.Fprintf(w, "%s:\n", folder); err != nil {
		return err
	}
	return tab.Format(w)
}

func optional(v threadseries.Value) string {
	if !v.Present {
		return ""
	}
	return fmt.Sprintf("%.3f", v.V)
}

// Run processes each of folders in turn, printing progress to status.
//
// Folders that do not exist, lack a performance directory, or hold
// no input files are reported and skipped. Any other failure stops
// that folder only; Run continues with the rest and returns an error
// describing the failures.
func Run(ctx context.Context, folders []string, opts *Options, status io.Writer) error {
	opts = opts.withDefaults()
	var failed []error
	for _, folder := range folders {
		if fi, err := os.Stat(folder); err != nil || !fi.IsDir() {
			fmt.Fprintf(status, "Folder not found: %s\n", folder)
			continue
		}
		fmt.Fprintf(status, "Processing folder: %s\n", folder)

		res, err := ProcessFolder(ctx, folder, opts)
		perfDir := filepath.Join(folder, opts.PerformanceDir)
		switch {
		case errors.Is(err, perfcsv.ErrDirectoryNotFound):
			fmt.Fprintf(status, "Performance directory not found: %s\n", perfDir)
		case errors.Is(err, perfcsv.ErrNoInputFiles):
			fmt.Fprintf(status, "No CSV files found in: %s\n", perfDir)
		case err != nil:
			fmt.Fprintf(status, "Failed to process folder %s: %v\n", folder, err)
			failed = append(failed, fmt.Errorf("%s: %w", folder, err))
		default:
			fmt.Fprintf(status, "Graphs generated and saved to: %s\n", res.GraphsDir)
		}
	}
	switch len(failed) {
	case 0:
		return nil
	case 1:
		return failed[0]
	}
	return &FolderErrors{failed}
}

// FolderErrors reports the folders that failed during Run.
type FolderErrors struct {
	Errs []error
}

func (e *FolderErrors) Error() string {
	return fmt.Sprintf("%d folders failed; first: %v", len(e.Errs), e.Errs[0])
}

// Is reports whether any of the folder errors matches target.
func (e *FolderErrors) Is(target error) bool {
	for _, err := range e.Errs {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
