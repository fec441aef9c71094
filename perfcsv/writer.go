// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfcsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// A Writer writes performance records as CSV. The header row is
// written before the first record.
type Writer struct {
	cw    *csv.Writer
	first bool
	row   [3]string
}

// NewWriter returns a writer that writes performance records to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{cw: csv.NewWriter(w), first: true}
}

// Write writes Record rec. A *Result is written as a row; a
// *SyntaxError is ignored.
func (w *Writer) Write(rec Record) error {
	switch rec := rec.(type) {
	case *Result:
		return w.writeResult(rec)
	case *SyntaxError:
		return nil
	default:
		return fmt.Errorf("unknown Record type %T", rec)
	}
}

func (w *Writer) writeResult(res *Result) error {
	if w.first {
		if err := w.cw.Write([]string{ColDataset, ColThreads, ColTimeSeconds}); err != nil {
			return err
		}
		w.first = false
	}
	w.row[0] = res.Dataset
	w.row[1] = strconv.Itoa(res.Threads)
	w.row[2] = strconv.FormatFloat(res.TimeSeconds, 'g', -1, 64)
	return w.cw.Write(w.row[:])
}

// Flush writes any buffered rows to the underlying io.Writer.
func (w *Writer) Flush() error {
	w.cw.Flush()
	return w.cw.Error()
}
