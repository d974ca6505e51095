// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package manga implements the catalog of manga records.

It owns the [Manga] entity, the title normalization rule that defines
uniqueness, the [Repository] contract with its storage drivers, and the
CRUD [Service] and HTTP [Handler] on top of them.

Title uniqueness is defined on [NormalizeTitle]: two records collide when
their normalized titles are equal.
*/
package manga

import (
	"strings"
	"time"
)

// # Domain Entity

// Manga is a single catalog record.
type Manga struct {
	ID              string     `json:"id"                   firestore:"-"`
	Title           string     `json:"title"                firestore:"title"`
	NormalizedTitle string     `json:"-"                    firestore:"normalizedTitle"`
	Author          string     `json:"author"               firestore:"author"`
	Genre           string     `json:"genre"                firestore:"genre"`
	Year            int        `json:"year"                 firestore:"year"`
	Volumes         int        `json:"volumes"              firestore:"volumes"`
	InPublication   bool       `json:"in_publication"       firestore:"inPublication"`
	Synopsis        string     `json:"synopsis"             firestore:"synopsis"`
	Rating          float64    `json:"rating"               firestore:"rating"`
	Chapters        int        `json:"chapters"             firestore:"chapters"`
	Publisher       string     `json:"publisher"            firestore:"publisher"`
	Status          Status     `json:"status"               firestore:"status"`
	CreatedAt       time.Time  `json:"created_at"           firestore:"createdAt"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty" firestore:"updatedAt"`
}

// Clone returns a deep copy of m.
func (m *Manga) Clone() *Manga {
	clone := *m
	if m.UpdatedAt != nil {
		updatedAt := *m.UpdatedAt
		clone.UpdatedAt = &updatedAt
	}
	return &clone
}

// Normalize recomputes NormalizedTitle from Title.
func (m *Manga) Normalize() {
	m.NormalizedTitle = NormalizeTitle(m.Title)
}

// # Title Normalization

// NormalizeTitle derives the uniqueness key of a title.
//
// Leading and trailing Unicode whitespace is trimmed and every rune is
// mapped with the Unicode simple lowercase mapping ([unicode.ToLower]).
// The function is idempotent: NormalizeTitle(NormalizeTitle(s)) == NormalizeTitle(s).
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// # Status

// Status is the publication lifecycle of a series.
type Status string

const (
	StatusOngoing   Status = "ongoing"
	StatusFinished  Status = "finished"
	StatusPaused    Status = "paused"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every valid [Status].
var Statuses = []Status{StatusOngoing, StatusFinished, StatusPaused, StatusCancelled}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// # Catalog Vocabulary

// Genres is the closed genre vocabulary.
var Genres = []string{
	"Shonen", "Seinen", "Shojo", "Josei", "Mecha",
	"Fantasy", "Romance", "Comedy", "Drama", "Action",
	"Horror", "Mystery", "Sports", "Musical", "Historical",
}

// Publishers is the closed publisher vocabulary.
var Publishers = []string{
	"Shueisha", "Kodansha", "Shogakukan", "Square Enix", "Kadokawa",
	"Hakusensha", "Akita Shoten", "Futabasha", "Lezhin Comics", "Yen Press",
}

// CanonicalGenre returns the vocabulary spelling of genre, matched case-insensitively.
func CanonicalGenre(genre string) (string, bool) {
	genre = strings.TrimSpace(genre)
	for _, known := range Genres {
		if strings.EqualFold(known, genre) {
			return known, true
		}
	}
	return "", false
}

// # Value Bounds

const (
	MinYear     = 1960
	MaxYear     = 2024
	MinVolumes  = 1
	MaxVolumes  = 100
	MinRating   = 1.0
	MaxRating   = 10.0
	MinChapters = 1
	MaxChapters = 500

	MaxTitleLen     = 200
	MaxAuthorLen    = 120
	MaxSynopsisLen  = 5000
	MaxPublisherLen = 80
)

// # Search

// Filter narrows a catalog search. Empty fields match everything.
type Filter struct {
	// Title matches when the record title contains it, ignoring case.
	Title string
	// Genre matches the record genre exactly, ignoring case.
	Genre string
}

// IsEmpty reports whether the filter matches every record.
func (f Filter) IsEmpty() bool {
	return strings.TrimSpace(f.Title) == "" && strings.TrimSpace(f.Genre) == ""
}

// Matches evaluates the filter against a record in memory.
func (f Filter) Matches(m *Manga) bool {
	if title := strings.TrimSpace(f.Title); title != "" &&
		!strings.Contains(strings.ToLower(m.Title), strings.ToLower(title)) {
		return false
	}
	if genre := strings.TrimSpace(f.Genre); genre != "" && !strings.EqualFold(m.Genre, genre) {
		return false
	}
	return true
}

// # Field Identifiers

// Field names used in validation errors.
const (
	FieldTitle         = "title"
	FieldAuthor        = "author"
	FieldGenre         = "genre"
	FieldYear          = "year"
	FieldVolumes       = "volumes"
	FieldSynopsis      = "synopsis"
	FieldRating        = "rating"
	FieldChapters      = "chapters"
	FieldPublisher     = "publisher"
	FieldStatus        = "status"
	FieldCount         = "count"
	FieldInPublication = "in_publication"
)
