// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package generator

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/taibuivan/mimanga/internal/core/manga"
	"github.com/taibuivan/mimanga/pkg/slice"
	"github.com/taibuivan/mimanga/pkg/uuid"
)

// MaxTitleTries is the number of fresh phrases tried before a numeric suffix
// is appended to force a new title.
const MaxTitleTries = 10

// Synthesizer produces candidate records.
type Synthesizer interface {
	// Synthesize returns a record whose normalized title was not in titles
	// and adds that title to titles.
	Synthesize(titles *TitleSet) *manga.Manga
}

// # Faker Synthesizer

// FakerSynthesizer samples every field independently with gofakeit.
type FakerSynthesizer struct {
	mu       sync.Mutex
	faker    *gofakeit.Faker
	phrase   func() string
	now      func() time.Time
	statuses []string
}

// NewFakerSynthesizer creates a synthesizer. A zero seed picks a random one.
func NewFakerSynthesizer(seed uint64) *FakerSynthesizer {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	synthesizer := &FakerSynthesizer{
		faker:    gofakeit.New(seed),
		now:      func() time.Time { return time.Now().UTC() },
		statuses: slice.Map(manga.Statuses, func(status manga.Status) string { return string(status) }),
	}
	synthesizer.phrase = synthesizer.loremPhrase
	return synthesizer
}

// WithPhrases replaces the title phrase source.
func (s *FakerSynthesizer) WithPhrases(phrase func() string) *FakerSynthesizer {
	s.phrase = phrase
	return s
}

// WithClock replaces the time source used for CreatedAt.
func (s *FakerSynthesizer) WithClock(now func() time.Time) *FakerSynthesizer {
	s.now = now
	return s
}

func (s *FakerSynthesizer) Synthesize(titles *TitleSet) *manga.Manga {
	s.mu.Lock()
	defer s.mu.Unlock()

	faker := s.faker
	m := &manga.Manga{
		ID:            uuid.New(),
		Title:         s.uniqueTitle(titles),
		Author:        faker.Name(),
		Genre:         faker.RandomString(manga.Genres),
		Year:          faker.IntRange(manga.MinYear, manga.MaxYear),
		Volumes:       faker.IntRange(manga.MinVolumes, manga.MaxVolumes),
		InPublication: faker.Bool(),
		Synopsis:      faker.LoremIpsumParagraph(2, 4, 12, "\n\n"),
		Rating:        math.Round(faker.Float64Range(manga.MinRating, manga.MaxRating)*10) / 10,
		Chapters:      faker.IntRange(manga.MinChapters, manga.MaxChapters),
		Publisher:     faker.RandomString(manga.Publishers),
		Status:        manga.Status(faker.RandomString(s.statuses)),
		CreatedAt:     s.now(),
	}
	m.Normalize()
	return m
}

// uniqueTitle draws phrases until one is new to titles. After MaxTitleTries
// misses it appends " 2", " 3", ... to the last phrase.
func (s *FakerSynthesizer) uniqueTitle(titles *TitleSet) string {
	var candidate string
	for range MaxTitleTries {
		candidate = s.phrase()
		if titles.Add(candidate) {
			return candidate
		}
	}

	base := strings.TrimSpace(candidate)
	for suffix := 2; ; suffix++ {
		numbered := fmt.Sprintf("%s %d", base, suffix)
		if titles.Add(numbered) {
			return numbered
		}
	}
}

// loremPhrase joins two to four lorem words in title case.
func (s *FakerSynthesizer) loremPhrase() string {
	words := make([]string, s.faker.IntRange(2, 4))
	for i := range words {
		words[i] = s.faker.LoremIpsumWord()
	}
	return cases.Title(language.English).String(strings.Join(words, " "))
}
