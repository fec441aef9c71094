// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package publish

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// GCS uploads objects to a Google Cloud Storage bucket.
type GCS struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

// NewGCS returns an uploader for bucketName. If credentialsFile is
// set it names a service account key file; otherwise Application
// Default Credentials are used.
func NewGCS(ctx context.Context, bucketName, credentialsFile string) (*GCS, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	} else {
		ts, err := google.DefaultTokenSource(ctx, storage.ScopeReadWrite)
		if err != nil {
			return nil, fmt.Errorf("finding default credentials: %w", err)
		}
		opts = append(opts, option.WithTokenSource(ts))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GCS{client: client, bucket: client.Bucket(bucketName)}, nil
}

// Upload implements Uploader.
func (g *GCS) Upload(ctx context.Context, name, contentType string, r io.Reader) error {
	return writeObject(ctx, func(ctx context.Context) io.WriteCloser {
		w := g.bucket.Object(name).NewWriter(ctx)
		w.ContentType = contentType
		w.Metadata = map[string]string{"generator": "perfgraphs"}
		return w
	}, r)
}

// writeObject copies r to a writer from newWriter. If the copy fails,
// the writer's context is canceled before Close so that the partial
// object is discarded rather than committed.
func writeObject(ctx context.Context, newWriter func(context.Context) io.WriteCloser, r io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	w := newWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		cancel()
		w.Close()
		return err
	}
	return w.Close()
}

// Close releases the client's resources.
func (g *GCS) Close() error {
	return g.client.Close()
}
