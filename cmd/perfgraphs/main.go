// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Perfgraphs charts how benchmark execution time scales with thread
// count.
//
// Usage:
//
//	perfgraphs [flags] [folder...]
//
// For each result folder, perfgraphs reads the CSV files in
// folder/performance, each holding one dataset's timed trials with
// columns dataset, threads and time_seconds. Trials are averaged per
// thread count and charted in folder/graphs as execution time,
// speedup and efficiency against the number of threads:
//
//	all_datasets_execution_time.png
//	all_datasets_speedup.png
//	all_datasets_efficiency.png
//
// Speedup is relative to the 1-thread time, or to the smallest
// measured thread count when a dataset has no 1-thread trial.
//
// Folders are given as arguments or with -folders. Folders that do
// not exist, or that hold no performance files, are reported and
// skipped.
//
// The -db flag records every processed folder in a SQL database,
// given as driver:dsn, for example
//
//	-db sqlite3:history.db
//	-db 'mysql:root:@cloudsql(project:region:instance)/perf'
//
// The -gcs flag uploads each folder's graphs directory to a Google
// Cloud Storage bucket.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	_ "github.com/GoogleCloudPlatform/cloudsql-proxy/proxy/dialers/mysql"
	_ "github.com/go-sql-driver/mysql"
	"gonum.org/v1/plot/vg"

	"github.com/rforest/perfgraphs/publish"
	"github.com/rforest/perfgraphs/resultdb"
	_ "github.com/rforest/perfgraphs/resultdb/sqlite3"
	"github.com/rforest/perfgraphs/scaling"
	"github.com/rforest/perfgraphs/threadseries"
)

var (
	flagFolders = flag.String("folders", strings.Join(scaling.DefaultFolders, ","), "comma-separated result `folders` to process")
	flagMetrics = flag.String("metrics", "time,speedup,efficiency", "comma-separated `metrics` to chart")
	flagThreads = flag.String("threads", "", "comma-separated thread `counts` to chart (default 1,2,4,8,12,16,20,24)")
	flagFormat  = flag.String("format", "png", "chart `format`: png, svg or pdf")
	flagDPI     = flag.Int("dpi", 300, "png resolution in dots per inch")
	flagWidth   = flag.Float64("width", 12, "chart width in `inches`")
	flagHeight  = flag.Float64("height", 8, "chart height in `inches`")
	flagPerf    = flag.String("perfdir", scaling.DefaultPerformanceDir, "input subdirectory of each folder")
	flagGraphs  = flag.String("graphsdir", scaling.DefaultGraphsDir, "output subdirectory of each folder")

	flagCSV     = flag.Bool("csv", false, "also write derived values to "+scaling.CSVFile)
	flagHTML    = flag.Bool("html", false, "also write an HTML report to "+scaling.HTMLFile)
	flagSummary = flag.Bool("summary", false, "print a table of derived values")

	flagDB        = flag.String("db", "", "record results in the SQL database `driver:dsn`")
	flagGCS       = flag.String("gcs", "", "upload graphs to Google Cloud Storage `bucket`")
	flagGCSPrefix = flag.String("gcs-prefix", "", "object name `prefix` for uploads")
	flagGCSCreds  = flag.String("gcs-credentials", "", "service account key `file` for -gcs (default: application default credentials)")
	flagMirror    = flag.String("mirror", "", "also copy graphs to `dir`/<folder>")
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage of perfgraphs:
	perfgraphs [flags] [folder...]
`)
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	log.SetPrefix("perfgraphs: ")
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()

	opts, err := options()
	if err != nil {
		log.Print(err)
		usage()
	}

	folders := flag.Args()
	if len(folders) == 0 {
		folders = splitList(*flagFolders)
	}

	if err := run(context.Background(), folders, opts); err != nil {
		log.Fatal(err)
	}
}

// run connects the optional database and uploader, then processes
// folders.
func run(ctx context.Context, folders []string, opts *scaling.Options) error {
	if *flagDB != "" {
		driver, dsn, _ := strings.Cut(*flagDB, ":")
		db, err := resultdb.OpenSQL(driver, dsn)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()
		opts.Store = db
	}

	switch {
	case *flagGCS != "":
		gcs, err := publish.NewGCS(ctx, *flagGCS, *flagGCSCreds)
		if err != nil {
			return fmt.Errorf("connecting to bucket %s: %w", *flagGCS, err)
		}
		defer gcs.Close()
		opts.Uploader = gcs
		opts.UploadPrefix = *flagGCSPrefix
	case *flagMirror != "":
		opts.Uploader = &publish.Local{Root: *flagMirror}
	}

	return scaling.Run(ctx, folders, opts, os.Stdout)
}

// options builds the pipeline configuration from the flags.
func options() (*scaling.Options, error) {
	metrics, err := threadseries.ParseMetrics(*flagMetrics)
	if err != nil {
		return nil, err
	}
	var threads []int
	if *flagThreads != "" {
		for _, f := range splitList(*flagThreads) {
			n, err := strconv.Atoi(f)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("-threads: %q is not a positive integer", f)
			}
			threads = append(threads, n)
		}
	}
	if err := threadseries.CheckFormat(*flagFormat); err != nil {
		return nil, err
	}
	if *flagDPI <= 0 || *flagWidth <= 0 || *flagHeight <= 0 {
		return nil, fmt.Errorf("-dpi, -width and -height must be positive")
	}
	if *flagDB != "" {
		if driver, _, ok := strings.Cut(*flagDB, ":"); !ok || driver == "" {
			return nil, fmt.Errorf("-db %q: want driver:dsn", *flagDB)
		}
	}
	if *flagGCS != "" && *flagMirror != "" {
		return nil, fmt.Errorf("-gcs and -mirror are mutually exclusive")
	}

	opts := &scaling.Options{
		PerformanceDir: *flagPerf,
		GraphsDir:      *flagGraphs,
		Threads:        threads,
		Metrics:        metrics,
		Chart: &threadseries.ChartOptions{
			Format: *flagFormat,
			Width:  vg.Length(*flagWidth) * vg.Inch,
			Height: vg.Length(*flagHeight) * vg.Inch,
			DPI:    *flagDPI,
		},
		CSV:  *flagCSV,
		HTML: *flagHTML,
		Logf: func(format string, args ...interface{}) {
			log.Printf("warning: "+format, args...)
		},
	}
	if *flagSummary {
		opts.Summary = os.Stdout
	}
	return opts, nil
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
