// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package generator_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/mimanga/internal/core/generator"
	"github.com/taibuivan/mimanga/internal/core/manga"
)

/*
TestFakerSynthesizer_FieldDomains samples every field inside its declared domain.
*/
func TestFakerSynthesizer_FieldDomains(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	synthesizer := generator.NewFakerSynthesizer(7).WithClock(func() time.Time { return now })
	titles := generator.NewTitleSet(0)

	for range 200 {
		m := synthesizer.Synthesize(titles)

		assert.NotEmpty(t, m.ID)
		assert.NotEmpty(t, m.Title)
		assert.Equal(t, manga.NormalizeTitle(m.Title), m.NormalizedTitle)
		assert.NotEmpty(t, m.Author)
		assert.Contains(t, manga.Genres, m.Genre)
		assert.Contains(t, manga.Publishers, m.Publisher)
		assert.True(t, m.Status.IsValid())
		assert.GreaterOrEqual(t, m.Year, manga.MinYear)
		assert.LessOrEqual(t, m.Year, manga.MaxYear)
		assert.GreaterOrEqual(t, m.Volumes, manga.MinVolumes)
		assert.LessOrEqual(t, m.Volumes, manga.MaxVolumes)
		assert.GreaterOrEqual(t, m.Chapters, manga.MinChapters)
		assert.LessOrEqual(t, m.Chapters, manga.MaxChapters)
		assert.GreaterOrEqual(t, m.Rating, manga.MinRating)
		assert.LessOrEqual(t, m.Rating, manga.MaxRating)
		assert.InDelta(t, m.Rating, float64(int(m.Rating*10+0.5))/10, 1e-9)
		assert.Equal(t, now, m.CreatedAt)
		assert.Nil(t, m.UpdatedAt)
	}
	assert.Equal(t, 200, titles.Len())
}

/*
TestFakerSynthesizer_SuffixAfterRetries appends a number once fresh phrases run out.
*/
func TestFakerSynthesizer_SuffixAfterRetries(t *testing.T) {
	calls := 0
	synthesizer := generator.NewFakerSynthesizer(1).WithPhrases(func() string {
		calls++
		return "Moon Garden"
	})
	titles := generator.NewTitleSet(0)

	assert.Equal(t, "Moon Garden", synthesizer.Synthesize(titles).Title)
	assert.Equal(t, 1, calls)

	assert.Equal(t, "Moon Garden 2", synthesizer.Synthesize(titles).Title)
	assert.Equal(t, 1+generator.MaxTitleTries, calls)

	assert.Equal(t, "Moon Garden 3", synthesizer.Synthesize(titles).Title)
	assert.Equal(t, 3, titles.Len())
}

/*
TestFakerSynthesizer_Deterministic repeats titles for the same seed.
*/
func TestFakerSynthesizer_Deterministic(t *testing.T) {
	first := generator.NewFakerSynthesizer(99)
	second := generator.NewFakerSynthesizer(99)

	for range 20 {
		a := first.Synthesize(generator.NewTitleSet(0))
		b := second.Synthesize(generator.NewTitleSet(0))
		assert.Equal(t, a.Title, b.Title)
		assert.Equal(t, a.Genre, b.Genre)
	}
}
