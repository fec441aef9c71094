// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package perfcsv reads and writes benchmark performance records
// stored as CSV.
//
// Each row records one timed trial of a benchmark run on one dataset
// with a given number of threads:
//
//	dataset,threads,time_seconds
//	data/iris.csv,1,10.52
//	data/iris.csv,2,5.31
//
// Column order is free and extra columns are ignored. Several rows
// with the same dataset and thread count are repeated trials.
//
// The Reader is a streaming API modeled on bufio.Scanner. Rows that
// cannot be parsed are reported as *SyntaxError records and do not
// stop the scan; a file whose header lacks a required column is
// rejected with a *MalformedRecordError.
package perfcsv

import (
	"errors"
	"fmt"
)

// Column names recognized in the header row.
const (
	ColDataset     = "dataset"
	ColThreads     = "threads"
	ColTimeSeconds = "time_seconds"
)

// A Record is one item produced by a Reader: either a *Result or a
// *SyntaxError.
type Record interface {
	// Pos returns the position of this record as a file name and a
	// 1-based line number within that file.
	Pos() (fileName string, line int)
}

var _ Record = (*Result)(nil)
var _ Record = (*SyntaxError)(nil)

// A Result is a single performance record: one timed trial.
type Result struct {
	// Dataset identifies the input the benchmark ran on. It is
	// typically a path to the dataset file.
	Dataset string

	// Threads is the number of threads used by the trial. It is
	// always positive.
	Threads int

	// TimeSeconds is the wall-clock execution time of the trial. It
	// is always finite and non-negative.
	TimeSeconds float64

	fileName string
	line     int
}

// Pos returns the file name and line number of r.
func (r *Result) Pos() (fileName string, line int) {
	return r.fileName, r.line
}

// A SyntaxError represents a row of a performance file that could not
// be parsed. Scanning continues past a SyntaxError.
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
}

func (e *SyntaxError) Pos() (fileName string, line int) {
	return e.FileName, e.Line
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, e.Msg)
}

// A MalformedRecordError reports a performance file that cannot be
// turned into a table at all, either because its header is unusable
// or because none of its rows could be parsed.
type MalformedRecordError struct {
	FileName string
	Line     int // 0 if the error is not tied to a line
	Msg      string
}

func (e *MalformedRecordError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s", e.FileName, e.Msg)
	}
	return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, e.Msg)
}

var (
	// ErrDirectoryNotFound is returned, wrapped, by LoadDir when
	// the directory to load does not exist.
	ErrDirectoryNotFound = errors.New("directory not found")

	// ErrNoInputFiles is returned, wrapped, by LoadDir when the
	// directory exists but contains no performance files.
	ErrNoInputFiles = errors.New("no input files")
)
