// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package gcp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mimanga/internal/platform/gcp"
)

/*
TestParseGCSURI splits bucket and object and rejects incomplete URIs.
*/
func TestParseGCSURI(t *testing.T) {
	bucket, object, err := gcp.ParseGCSURI("gs://mimanga-exports/daily/catalog.csv")
	require.NoError(t, err)
	assert.Equal(t, "mimanga-exports", bucket)
	assert.Equal(t, "daily/catalog.csv", object)

	for _, bad := range []string{"s3://bucket/file.csv", "gs://bucket", "gs:///file.csv", "catalog.csv"} {
		_, _, err := gcp.ParseGCSURI(bad)
		assert.Error(t, err, bad)
	}
}
