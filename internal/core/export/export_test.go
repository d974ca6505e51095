// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package export_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mimanga/internal/core/export"
	"github.com/taibuivan/mimanga/internal/core/manga"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func sample() []*manga.Manga {
	updated := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	return []*manga.Manga{
		{
			ID: "a", Title: "Monster", Author: "Naoki Urasawa", Genre: "Seinen", Year: 1994,
			Volumes: 18, Synopsis: "A surgeon, a killer,\nand a long chase.", Rating: 9.1, Chapters: 162,
			Publisher: "Shogakukan", Status: manga.StatusFinished,
			CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), UpdatedAt: &updated,
		},
		{
			ID: "b", Title: "Pluto", Author: "Naoki Urasawa", Genre: "Mystery", Year: 2003,
			Volumes: 8, InPublication: true, Rating: 8, Chapters: 65,
			Publisher: "Shogakukan", Status: manga.StatusOngoing,
			CreatedAt: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		},
	}
}

/*
TestWriteCSV encodes one row per record after the header.
*/
func TestWriteCSV(t *testing.T) {
	var buffer bytes.Buffer
	require.NoError(t, export.WriteCSV(&buffer, sample()))

	records, err := csv.NewReader(&buffer).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, export.Header, records[0])
	assert.Equal(t, []string{
		"a", "Monster", "Naoki Urasawa", "Seinen", "1994", "18", "false",
		"A surgeon, a killer,\nand a long chase.", "9.1", "162", "Shogakukan", "finished",
		"2024-01-02T00:00:00Z", "2024-03-04T05:06:07Z",
	}, records[1])
	assert.Equal(t, "8.0", records[2][8])
	assert.Equal(t, "true", records[2][6])
	assert.Equal(t, "", records[2][13])
}

/*
TestExporter_FileSink writes the catalog to a nested local path.
*/
func TestExporter_FileSink(t *testing.T) {
	repo := manga.NewMemoryRepository(0)
	repo.Seed(sample()...)
	exporter := export.NewExporter(manga.NewService(repo, discard), discard)

	path := filepath.Join(t.TempDir(), "nested", "catalog.csv")
	sink, err := export.SinkFor(path, nil)
	require.NoError(t, err)

	written, err := exporter.Export(context.Background(), sink)
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 3)

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".export-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

type brokenSource struct{ err error }

func (s brokenSource) Catalog(context.Context) ([]*manga.Manga, error) { return nil, s.err }

/*
TestExporter_SourceFailure leaves the destination untouched.
*/
func TestExporter_SourceFailure(t *testing.T) {
	boom := errors.New("scan failed")
	path := filepath.Join(t.TempDir(), "catalog.csv")

	_, err := export.NewExporter(brokenSource{err: boom}, discard).Export(context.Background(), export.FileSink{Path: path})
	assert.ErrorIs(t, err, boom)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

/*
TestSinkFor resolves destinations.
*/
func TestSinkFor(t *testing.T) {
	tests := []struct {
		name     string
		dest     string
		wantErr  bool
		location string
	}{
		{name: "local path", dest: "out/catalog.csv", location: "out/catalog.csv"},
		{name: "empty", dest: " ", wantErr: true},
		{name: "gcs without client", dest: "gs://bucket/catalog.csv", wantErr: true},
		{name: "gcs without object", dest: "gs://bucket", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink, err := export.SinkFor(tt.dest, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.location, sink.Location())
		})
	}
}
