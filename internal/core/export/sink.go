// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/taibuivan/mimanga/internal/platform/gcp"
)

// Sink is an export destination.
type Sink interface {
	// Write hands write a stream and commits it once write returns nil.
	Write(context context.Context, write func(io.Writer) error) error
	// Location describes the destination in logs and errors.
	Location() string
}

// SinkFor picks a sink for dest. A "gs://bucket/object" destination needs client.
func SinkFor(dest string, client *storage.Client) (Sink, error) {
	if !strings.HasPrefix(dest, "gs://") {
		if strings.TrimSpace(dest) == "" {
			return nil, errors.New("export: destination is empty")
		}
		return FileSink{Path: dest}, nil
	}

	bucket, object, err := gcp.ParseGCSURI(dest)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("export: %s needs a storage client", dest)
	}
	return &GCSSink{client: client, bucket: bucket, object: object}, nil
}

// # File Sink

// FileSink writes to a local path through a temporary file and a rename.
type FileSink struct {
	Path string
}

func (sink FileSink) Write(_ context.Context, write func(io.Writer) error) error {
	dir := filepath.Dir(sink.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	file, err := os.CreateTemp(dir, ".export-*.csv")
	if err != nil {
		return err
	}
	defer os.Remove(file.Name())

	if err := write(file); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	return os.Rename(file.Name(), sink.Path)
}

func (sink FileSink) Location() string { return sink.Path }

// # Cloud Storage Sink

// GCSSink uploads to a Cloud Storage object.
type GCSSink struct {
	client *storage.Client
	bucket string
	object string
}

// NewGCSSink creates a [GCSSink].
func NewGCSSink(client *storage.Client, bucket, object string) *GCSSink {
	return &GCSSink{client: client, bucket: bucket, object: object}
}

// Write aborts the upload when write fails so no partial object is created.
func (sink *GCSSink) Write(parent context.Context, write func(io.Writer) error) error {
	uploadContext, cancel := context.WithCancel(parent)
	defer cancel()

	writer := sink.client.Bucket(sink.bucket).Object(sink.object).NewWriter(uploadContext)
	writer.ContentType = "text/csv"

	if err := write(writer); err != nil {
		cancel()
		_ = writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize upload: %w", err)
	}
	return nil
}

func (sink *GCSSink) Location() string {
	return "gs://" + sink.bucket + "/" + sink.object
}
