// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package publish copies generated graphs to shared storage.
package publish

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// An Uploader stores named objects.
type Uploader interface {
	// Upload stores the contents of r as object name. Any existing
	// object of that name is replaced.
	Upload(ctx context.Context, name, contentType string, r io.Reader) error
}

// Dir uploads every regular file in dir to u, in file name order.
// Object names are the file names joined to prefix with a slash.
// Dir returns the names of the uploaded objects.
func Dir(ctx context.Context, u Uploader, dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := ObjectName(prefix, e.Name())
		if err := uploadFile(ctx, u, name, filepath.Join(dir, e.Name())); err != nil {
			return names, fmt.Errorf("uploading %s: %w", name, err)
		}
		names = append(names, name)
	}
	return names, nil
}

// ObjectName returns the object name of file under prefix.
func ObjectName(prefix, file string) string {
	prefix = strings.Trim(filepath.ToSlash(prefix), "/")
	if prefix == "" {
		return file
	}
	return path.Join(prefix, file)
}

func uploadFile(ctx context.Context, u Uploader, name, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()
	return u.Upload(ctx, name, ContentType(file), f)
}

// ContentType returns the MIME type for file based on its extension.
func ContentType(file string) string {
	ext := strings.ToLower(filepath.Ext(file))
	switch ext {
	case ".csv":
		return "text/csv; charset=utf-8"
	case ".svg":
		return "image/svg+xml"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
