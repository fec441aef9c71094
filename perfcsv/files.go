// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfcsv

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExtensions is the set of file extensions LoadDir accepts when
// none are given.
var DefaultExtensions = []string{".csv"}

// A Table is the set of performance records read from one file.
type Table struct {
	// Path is the file the table was read from.
	Path string

	// Results holds the well-formed rows in file order.
	Results []Result

	// Errors holds the rows that could not be parsed. They do not
	// prevent the rest of the file from being used.
	Errors []*SyntaxError
}

// Len returns the number of well-formed rows in t.
func (t *Table) Len() int {
	return len(t.Results)
}

// Dataset returns the dataset field of the first row of t, or "" if
// t has no rows.
func (t *Table) Dataset() string {
	if len(t.Results) == 0 {
		return ""
	}
	return t.Results[0].Dataset
}

// ReadFile reads all performance records from the file at path.
//
// Malformed rows are collected in Table.Errors. If the file has no
// usable header, or if it has rows but none of them parse, ReadFile
// returns a *MalformedRecordError.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t := &Table{Path: path}
	r := NewReader(f, path)
	for r.Scan() {
		switch rec := r.Result().(type) {
		case *Result:
			t.Results = append(t.Results, *rec)
		case *SyntaxError:
			e := *rec
			t.Errors = append(t.Errors, &e)
		}
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	if len(t.Results) == 0 && len(t.Errors) > 0 {
		return nil, &MalformedRecordError{
			FileName: path,
			Msg:      fmt.Sprintf("no valid records in %d rows; first error: %s", len(t.Errors), t.Errors[0].Msg),
		}
	}
	return t, nil
}

// LoadDir reads every performance file in dir and returns one Table
// per file, in file name order. A file is a performance file if its
// extension matches one of exts, ignoring case; if exts is empty,
// DefaultExtensions is used. Subdirectories are not searched.
//
// If dir does not exist, LoadDir returns an error wrapping
// ErrDirectoryNotFound. If it contains no performance files, the
// error wraps ErrNoInputFiles. Both are expected conditions that
// callers typically report and skip.
func LoadDir(dir string, exts ...string) ([]*Table, error) {
	paths, err := Glob(dir, exts...)
	if err != nil {
		return nil, err
	}

	tables := make([]*Table, 0, len(paths))
	for _, path := range paths {
		t, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// Glob returns the paths of the performance files in dir, sorted by
// name, with the same rules and errors as LoadDir.
func Glob(dir string, exts ...string) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	fi, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !fi.IsDir()) {
		return nil, fmt.Errorf("%s: %w", dir, ErrDirectoryNotFound)
	} else if err != nil {
		return nil, err
	}

	// ReadDir returns entries sorted by file name, which keeps the
	// dataset order (and so chart colors) stable between runs.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !hasExt(e.Name(), exts) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoInputFiles)
	}
	return paths, nil
}

func hasExt(name string, exts []string) bool {
	ext := filepath.Ext(name)
	for _, want := range exts {
		if !strings.HasPrefix(want, ".") {
			want = "." + want
		}
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}
