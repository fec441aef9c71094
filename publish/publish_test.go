// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package publish

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

type object struct {
	contentType, data string
}

type memUploader struct {
	objects map[string]object
	fail    string
}

func (m *memUploader) Upload(ctx context.Context, name, contentType string, r io.Reader) error {
	if name == m.fail {
		return errors.New("injected failure")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if m.objects == nil {
		m.objects = make(map[string]object)
	}
	m.objects[name] = object{contentType, string(data)}
	return nil
}

func writeGraphs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, data := range map[string]string{
		"all_datasets_speedup.png":        "png1",
		"all_datasets_execution_time.png": "png2",
		"derived_series.csv":              "dataset\n",
		"index.html":                      "<html>",
		"sub/ignored.png":                 "x",
	} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(data), 0666); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestDir(t *testing.T) {
	dir := writeGraphs(t)
	var u memUploader
	names, err := Dir(context.Background(), &u, dir, "/runs/results/")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"runs/results/all_datasets_execution_time.png",
		"runs/results/all_datasets_speedup.png",
		"runs/results/derived_series.csv",
		"runs/results/index.html",
	}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("got names %q, want %q", names, want)
	}
	if got := u.objects["runs/results/all_datasets_speedup.png"]; got != (object{"image/png", "png1"}) {
		t.Errorf("speedup chart: got %+v", got)
	}
	if got := u.objects["runs/results/derived_series.csv"].contentType; got != "text/csv; charset=utf-8" {
		t.Errorf("csv content type: got %q", got)
	}
}

func TestDirError(t *testing.T) {
	dir := writeGraphs(t)
	u := memUploader{fail: "derived_series.csv"}
	names, err := Dir(context.Background(), &u, dir, "")
	if err == nil {
		t.Fatal("want error")
	}
	if want := []string{"all_datasets_execution_time.png", "all_datasets_speedup.png"}; !reflect.DeepEqual(names, want) {
		t.Errorf("got names %q before failure, want %q", names, want)
	}
	if _, err := Dir(context.Background(), &u, filepath.Join(dir, "missing"), ""); err == nil {
		t.Error("want error for missing directory")
	}
}

func TestObjectName(t *testing.T) {
	for _, test := range []struct {
		prefix, file, want string
	}{
		{"", "a.png", "a.png"},
		{"/", "a.png", "a.png"},
		{"x", "a.png", "x/a.png"},
		{"x/y/", "a.png", "x/y/a.png"},
	} {
		if got := ObjectName(test.prefix, test.file); got != test.want {
			t.Errorf("ObjectName(%q, %q) = %q, want %q", test.prefix, test.file, got, test.want)
		}
	}
}

func TestLocal(t *testing.T) {
	src := writeGraphs(t)
	root := t.TempDir()
	if _, err := Dir(context.Background(), &Local{Root: root}, src, "results"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(root, "results", "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "<html>" {
		t.Errorf("got %q, want %q", data, "<html>")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Dir(ctx, &Local{Root: root}, src, ""); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

type ctxWriter struct {
	ctx      context.Context
	buf      []byte
	closeErr error // ctx.Err() when Close was called
	closed   bool
}

func (w *ctxWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func (w *ctxWriter) Close() error {
	w.closed = true
	w.closeErr = w.ctx.Err()
	return w.closeErr
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("read failed")
}

func TestWriteObject(t *testing.T) {
	var w *ctxWriter
	newWriter := func(ctx context.Context) io.WriteCloser {
		w = &ctxWriter{ctx: ctx}
		return w
	}

	if err := writeObject(context.Background(), newWriter, strings.NewReader("png")); err != nil {
		t.Fatal(err)
	}
	if !w.closed || w.closeErr != nil || string(w.buf) != "png" {
		t.Errorf("successful copy: closed %v with context error %v, wrote %q", w.closed, w.closeErr, w.buf)
	}

	err := writeObject(context.Background(), newWriter, io.MultiReader(strings.NewReader("partial"), failingReader{}))
	if err == nil || err.Error() != "read failed" {
		t.Fatalf("got error %v, want read failed", err)
	}
	if !w.closed || !errors.Is(w.closeErr, context.Canceled) {
		t.Errorf("failed copy: writer closed %v with context error %v, want context.Canceled", w.closed, w.closeErr)
	}
}
