// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the PostgreSQL tables and columns used by repositories.
package schema

// CoreMangaTable represents the 'core.manga' table
type CoreMangaTable struct {
	Table           string
	ID              string
	Title           string
	NormalizedTitle string
	Author          string
	Genre           string
	Year            string
	Volumes         string
	InPublication   string
	Synopsis        string
	Rating          string
	Chapters        string
	Publisher       string
	Status          string
	CreatedAt       string
	UpdatedAt       string

	// NormalizedTitleIndex is the unique index enforcing title uniqueness.
	NormalizedTitleIndex string
}

// CoreManga is the schema definition for core.manga
var CoreManga = CoreMangaTable{
	Table:                "core.manga",
	ID:                   "id",
	Title:                "title",
	NormalizedTitle:      "normalizedtitle",
	Author:               "author",
	Genre:                "genre",
	Year:                 "publicationyear",
	Volumes:              "volumes",
	InPublication:        "inpublication",
	Synopsis:             "synopsis",
	Rating:               "rating",
	Chapters:             "chapters",
	Publisher:            "publisher",
	Status:               "status",
	CreatedAt:            "createdat",
	UpdatedAt:            "updatedat",
	NormalizedTitleIndex: "uq_manga_normalizedtitle",
}

// Columns returns all column names in scan order.
func (t CoreMangaTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.NormalizedTitle, t.Author, t.Genre, t.Year, t.Volumes,
		t.InPublication, t.Synopsis, t.Rating, t.Chapters, t.Publisher, t.Status,
		t.CreatedAt, t.UpdatedAt,
	}
}
