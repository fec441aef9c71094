// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package texttab lays out aligned plain-text tables.
package texttab

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Table does layout of text-based tables. Columns are separated by
// Gap, or two spaces if Gap is empty.
//
// The zero Table is ready to use.
type Table struct {
	Gap string

	rows  [][]string
	rules map[int]bool // rows that are horizontal rules
	align []Align
	cols  int
}

// Align is the horizontal alignment of a column.
type Align int

const (
	Left Align = iota
	Right
)

func (a Align) pad(s string, w int) string {
	n := w - utf8.RuneCountInString(s)
	if n <= 0 {
		return s
	}
	if a == Right {
		return strings.Repeat(" ", n) + s
	}
	return s + strings.Repeat(" ", n)
}

// Row appends a row of cells to t.
func (t *Table) Row(cells ...string) *Table {
	t.rows = append(t.rows, cells)
	if len(cells) > t.cols {
		t.cols = len(cells)
	}
	return t
}

// Rule appends a row that underlines every column with dashes.
func (t *Table) Rule() *Table {
	if t.rules == nil {
		t.rules = make(map[int]bool)
	}
	t.rules[len(t.rows)] = true
	t.rows = append(t.rows, nil)
	return t
}

// SetAlign sets the alignment of column col. Columns are numbered
// starting at 0 and are left aligned by default.
func (t *Table) SetAlign(col int, a Align) *Table {
	for len(t.align) <= col {
		t.align = append(t.align, Left)
	}
	t.align[col] = a
	return t
}

func (t *Table) alignOf(col int) Align {
	if col < len(t.align) {
		return t.align[col]
	}
	return Left
}

// Format lays out table t and writes it to w. Trailing spaces are not
// printed.
func (t *Table) Format(w io.Writer) error {
	gap := t.Gap
	if gap == "" {
		gap = "  "
	}

	ws := make([]int, t.cols)
	for _, row := range t.rows {
		for col, cell := range row {
			if n := utf8.RuneCountInString(cell); n > ws[col] {
				ws[col] = n
			}
		}
	}

	var line strings.Builder
	for i, row := range t.rows {
		line.Reset()
		if t.rules[i] {
			for col, cw := range ws {
				if col > 0 {
					line.WriteString(gap)
				}
				line.WriteString(strings.Repeat("-", cw))
			}
		} else {
			for col, cell := range row {
				if col > 0 {
					line.WriteString(gap)
				}
				line.WriteString(t.alignOf(col).pad(cell, ws[col]))
			}
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(line.String(), " ")); err != nil {
			return err
		}
	}
	return nil
}
