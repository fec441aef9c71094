// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// A Reader reads performance records from CSV input.
//
// Its API is modeled on bufio.Scanner. The Reader retains ownership
// of the Result it returns; a caller should copy anything it needs to
// retain.
//
// To construct a new Reader, either call NewReader, or call Reset on
// a zeroed Reader.
type Reader struct {
	cr  *csv.Reader
	err error // current I/O or header error

	fileName string

	// Column indexes from the header, or -1 before the header has
	// been read.
	datasetCol, threadsCol, timeCol int
	width                           int // minimum fields a row needs

	result Result
	synErr SyntaxError
	rec    Record
}

var noResult = &SyntaxError{"", 0, "Reader.Scan has not been called"}

// NewReader constructs a reader to parse performance records from r.
// fileName is used in error messages; it is purely diagnostic.
func NewReader(r io.Reader, fileName string) *Reader {
	reader := new(Reader)
	reader.Reset(r, fileName)
	return reader
}

// Reset resets the reader to begin reading from a new input. The next
// call to Scan reads a header row first.
func (r *Reader) Reset(ior io.Reader, fileName string) {
	if fileName == "" {
		fileName = "<unknown>"
	}
	r.cr = csv.NewReader(ior)
	r.cr.FieldsPerRecord = -1
	r.cr.TrimLeadingSpace = true
	r.cr.Comment = '#'
	r.err = nil
	r.fileName = fileName
	r.datasetCol, r.threadsCol, r.timeCol = -1, -1, -1
	r.width = 0
	r.result = Result{fileName: fileName}
	r.rec = noResult
}

// Scan advances the reader to the next record and reports whether a
// record was read. The caller should use the Result method to get the
// record. If Scan reaches EOF or an I/O error occurs, or the header
// row is unusable, it returns false, in which case the caller should
// use the Err method to check for errors.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	if r.width == 0 {
		if !r.readHeader() {
			return false
		}
	}

	fields, err := r.cr.Read()
	if err == io.EOF {
		return false
	}
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		r.synErr = SyntaxError{r.fileName, perr.Line, perr.Err.Error()}
		r.rec = &r.synErr
		return true
	} else if err != nil {
		r.err = err
		return false
	}
	line := r.line()

	if msg := r.parseRow(fields); msg != "" {
		r.synErr = SyntaxError{r.fileName, line, msg}
		r.rec = &r.synErr
		return true
	}
	r.result.line = line
	r.rec = &r.result
	return true
}

// readHeader consumes the header row and records the position of each
// required column.
func (r *Reader) readHeader() bool {
	fields, err := r.cr.Read()
	if err == io.EOF {
		r.err = &MalformedRecordError{r.fileName, 0, "missing header row"}
		return false
	} else if err != nil {
		r.err = err
		return false
	}
	for i, name := range fields {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		switch name {
		case ColDataset:
			r.datasetCol = i
		case ColThreads:
			r.threadsCol = i
		case ColTimeSeconds:
			r.timeCol = i
		}
	}
	for _, c := range []struct {
		idx  int
		name string
	}{{r.datasetCol, ColDataset}, {r.threadsCol, ColThreads}, {r.timeCol, ColTimeSeconds}} {
		if c.idx < 0 {
			r.err = &MalformedRecordError{r.fileName, r.line(), fmt.Sprintf("header has no %q column", c.name)}
			return false
		}
		if c.idx+1 > r.width {
			r.width = c.idx + 1
		}
	}
	return true
}

// parseRow fills r.result from fields. It returns a non-empty message
// if the row is invalid.
func (r *Reader) parseRow(fields []string) string {
	if len(fields) < r.width {
		return fmt.Sprintf("want at least %d fields, got %d", r.width, len(fields))
	}

	dataset := strings.TrimSpace(fields[r.datasetCol])
	if dataset == "" {
		return fmt.Sprintf("missing %s", ColDataset)
	}

	threads, err := parseThreads(strings.TrimSpace(fields[r.threadsCol]))
	if err != nil {
		return fmt.Sprintf("parsing %s: %v", ColThreads, err)
	}
	if threads <= 0 {
		return fmt.Sprintf("%s must be positive, got %d", ColThreads, threads)
	}

	secs, err := strconv.ParseFloat(strings.TrimSpace(fields[r.timeCol]), 64)
	if err != nil {
		return fmt.Sprintf("parsing %s: %v", ColTimeSeconds, err)
	}
	if math.IsNaN(secs) || math.IsInf(secs, 0) || secs < 0 {
		return fmt.Sprintf("%s must be a non-negative number, got %v", ColTimeSeconds, secs)
	}

	r.result.Dataset = dataset
	r.result.Threads = threads
	r.result.TimeSeconds = secs
	return ""
}

// parseThreads accepts plain integers as well as integral floats such
// as "4.0", which spreadsheet tools like to emit.
func parseThreads(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return int(f), nil
}

func (r *Reader) line() int {
	line, _ := r.cr.FieldPos(0)
	return line
}

// Result returns the record that was just read by Scan. This is
// either a *Result or a *SyntaxError indicating a malformed row.
//
// The caller should not retain the Record, as the Reader may reuse it
// on the next call to Scan.
func (r *Reader) Result() Record {
	return r.rec
}

// Err returns the first non-EOF I/O error, or the header error, that
// stopped Scan. Syntax errors in individual rows are not reported
// here.
func (r *Reader) Err() error {
	return r.err
}
