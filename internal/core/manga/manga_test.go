// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package manga_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/taibuivan/mimanga/internal/core/manga"
)

// fixture returns a valid record with the given ID and title.
func fixture(id, title string) *manga.Manga {
	m := &manga.Manga{
		ID:            id,
		Title:         title,
		Author:        "Kentaro Miura",
		Genre:         "Seinen",
		Year:          1989,
		Volumes:       41,
		InPublication: true,
		Synopsis:      "A lone mercenary fights his fate.",
		Rating:        9.4,
		Chapters:      364,
		Publisher:     "Hakusensha",
		Status:        manga.StatusOngoing,
		CreatedAt:     time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	m.Normalize()
	return m
}

/*
TestNormalizeTitle verifies trimming and Unicode lowercasing.
*/
func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Lowercases", "Attack Of Shadows", "attack of shadows"},
		{"Trims", "  Berserk \t\n", "berserk"},
		{"Keeps inner spacing", "One  Piece", "one  piece"},
		{"Unicode", "ÉCOLE Ω", "école ω"},
		{"Empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, manga.NormalizeTitle(tt.input))
		})
	}
}

/*
TestNormalizeTitle_Idempotent checks normalize(normalize(x)) == normalize(x).
*/
func TestNormalizeTitle_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		title := rapid.String().Draw(t, "title")

		once := manga.NormalizeTitle(title)
		if twice := manga.NormalizeTitle(once); twice != once {
			t.Fatalf("not idempotent: %q -> %q -> %q", title, once, twice)
		}
	})
}

/*
TestCanonicalGenre matches the vocabulary ignoring case.
*/
func TestCanonicalGenre(t *testing.T) {
	genre, ok := manga.CanonicalGenre(" shonen ")
	assert.True(t, ok)
	assert.Equal(t, "Shonen", genre)

	_, ok = manga.CanonicalGenre("Cyberpunk")
	assert.False(t, ok)
}

/*
TestFilter_Matches covers title containment and genre equality.
*/
func TestFilter_Matches(t *testing.T) {
	m := fixture("m1", "Attack Of Shadows")

	tests := []struct {
		name   string
		filter manga.Filter
		want   bool
	}{
		{"Empty", manga.Filter{}, true},
		{"Title substring", manga.Filter{Title: "of sha"}, true},
		{"Title miss", manga.Filter{Title: "light"}, false},
		{"Genre any case", manga.Filter{Genre: "SEINEN"}, true},
		{"Genre partial is a miss", manga.Filter{Genre: "Sein"}, false},
		{"Both", manga.Filter{Title: "attack", Genre: "seinen"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(m))
		})
	}
}

/*
TestStatus_IsValid accepts only the known lifecycle values.
*/
func TestStatus_IsValid(t *testing.T) {
	for _, status := range manga.Statuses {
		assert.True(t, status.IsValid(), status)
	}
	assert.False(t, manga.Status("Finalizado").IsValid())
	assert.False(t, manga.Status("").IsValid())
}

/*
TestClone_DeepCopiesUpdatedAt keeps clones independent of the source.
*/
func TestClone_DeepCopiesUpdatedAt(t *testing.T) {
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	m := fixture("m1", "Berserk")
	m.UpdatedAt = &at

	clone := m.Clone()
	*clone.UpdatedAt = at.Add(time.Hour)

	assert.Equal(t, at, *m.UpdatedAt)
}
