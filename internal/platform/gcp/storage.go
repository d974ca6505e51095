// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package gcp

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
)

// NewStorageClient creates a Cloud Storage client.
func NewStorageClient(ctx context.Context, credentialsFile string) (*storage.Client, error) {
	client, err := storage.NewClient(ctx, clientOptions(credentialsFile)...)
	if err != nil {
		return nil, fmt.Errorf("gcp: failed to create storage client: %w", err)
	}
	return client, nil
}

// ParseGCSURI splits "gs://bucket/path/object" into bucket and object name.
func ParseGCSURI(uri string) (bucket, object string, err error) {
	rest, found := strings.CutPrefix(uri, "gs://")
	if !found {
		return "", "", fmt.Errorf("gcp: %q is not a gs:// URI", uri)
	}

	bucket, object, _ = strings.Cut(rest, "/")
	if bucket == "" || object == "" {
		return "", "", fmt.Errorf("gcp: %q must name both a bucket and an object", uri)
	}
	return bucket, object, nil
}
