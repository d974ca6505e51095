// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package export writes the catalog as CSV to a local file or a Cloud Storage object.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/taibuivan/mimanga/internal/core/manga"
)

// Header is the CSV column order.
var Header = []string{
	"id", "title", "author", "genre", "year", "volumes", "in_publication",
	"synopsis", "rating", "chapters", "publisher", "status", "created_at", "updated_at",
}

// Source provides the records to export.
type Source interface {
	Catalog(context context.Context) ([]*manga.Manga, error)
}

// Exporter streams a [Source] into a [Sink].
type Exporter struct {
	source Source
	logger *slog.Logger
}

// NewExporter creates an [Exporter].
func NewExporter(source Source, logger *slog.Logger) *Exporter {
	return &Exporter{source: source, logger: logger}
}

/*
Export writes every catalog record to sink.

Returns:
  - int: Number of records written
  - error: Catalog read, encoding, or sink failure
*/
func (exporter *Exporter) Export(context context.Context, sink Sink) (int, error) {
	mangas, err := exporter.source.Catalog(context)
	if err != nil {
		return 0, fmt.Errorf("export: read catalog: %w", err)
	}

	err = sink.Write(context, func(writer io.Writer) error {
		return WriteCSV(writer, mangas)
	})
	if err != nil {
		return 0, fmt.Errorf("export: write %s: %w", sink.Location(), err)
	}

	exporter.logger.Info("catalog_exported",
		slog.String("location", sink.Location()),
		slog.Int("records", len(mangas)),
	)
	return len(mangas), nil
}

// WriteCSV encodes mangas with a [Header] row.
func WriteCSV(writer io.Writer, mangas []*manga.Manga) error {
	w := csv.NewWriter(writer)
	if err := w.Write(Header); err != nil {
		return err
	}

	for _, m := range mangas {
		if err := w.Write(row(m)); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func row(m *manga.Manga) []string {
	updated := ""
	if m.UpdatedAt != nil {
		updated = m.UpdatedAt.UTC().Format(time.RFC3339)
	}

	return []string{
		m.ID,
		m.Title,
		m.Author,
		m.Genre,
		strconv.Itoa(m.Year),
		strconv.Itoa(m.Volumes),
		strconv.FormatBool(m.InPublication),
		m.Synopsis,
		strconv.FormatFloat(m.Rating, 'f', 1, 64),
		strconv.Itoa(m.Chapters),
		m.Publisher,
		string(m.Status),
		m.CreatedAt.UTC().Format(time.RFC3339),
		updated,
	}
}
