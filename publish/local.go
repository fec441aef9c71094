// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package publish

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// Local is an Uploader that stores objects as files under a root
// directory. Slashes in object names become subdirectories.
type Local struct {
	Root string
}

// Upload implements Uploader. contentType is ignored.
func (l *Local) Upload(ctx context.Context, name, contentType string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	file := filepath.Join(l.Root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(file), 0777); err != nil {
		return err
	}
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
