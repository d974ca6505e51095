// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package generator_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/taibuivan/mimanga/internal/core/generator"
	"github.com/taibuivan/mimanga/internal/core/manga"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// scripted replays fixed titles, then numbered fallbacks, honouring the session set.
type scripted struct {
	mu     sync.Mutex
	titles []string
	next   int
}

func (s *scripted) Synthesize(titles *generator.TitleSet) *manga.Manga {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		var title string
		if s.next < len(s.titles) {
			title = s.titles[s.next]
		} else {
			title = fmt.Sprintf("Fallback %d", s.next)
		}
		s.next++

		if titles.Add(title) {
			m := &manga.Manga{ID: fmt.Sprintf("gen-%d", s.next), Title: title}
			m.Normalize()
			return m
		}
	}
}

// constant always proposes the same title.
type constant string

func (c constant) Synthesize(titles *generator.TitleSet) *manga.Manga {
	titles.Add(string(c))
	m := &manga.Manga{ID: fmt.Sprintf("const-%d", titles.Len()), Title: string(c)}
	m.Normalize()
	return m
}

func seeded(titles ...string) *manga.MemoryRepository {
	repo := manga.NewMemoryRepository(0)
	for i, title := range titles {
		m := &manga.Manga{ID: fmt.Sprintf("seed-%d", i), Title: title, CreatedAt: time.Unix(int64(i), 0)}
		repo.Seed(m)
	}
	return repo
}

func assertUnique(t *testing.T, mangas []*manga.Manga, persisted ...string) {
	t.Helper()

	seen := make(map[string]bool)
	for _, title := range persisted {
		seen[manga.NormalizeTitle(title)] = true
	}
	for _, m := range mangas {
		key := manga.NormalizeTitle(m.Title)
		assert.False(t, seen[key], "duplicate title %q", m.Title)
		seen[key] = true
	}
}

/*
TestGenerate_EmptyStore produces exactly the requested number of distinct titles.
*/
func TestGenerate_EmptyStore(t *testing.T) {
	repo := manga.NewMemoryRepository(0)
	gen := generator.New(repo, generator.NewFakerSynthesizer(42), &generator.LocalLocker{}, generator.DefaultConfig, discard)

	result, err := gen.Generate(context.Background(), 100)
	require.NoError(t, err)

	assert.Equal(t, 100, result.Generated)
	assert.Len(t, result.Mangas, 100)
	assert.LessOrEqual(t, result.Attempts, 200)
	assertUnique(t, result.Mangas)

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 100)
}

/*
TestGenerate_RejectsPersistedTitle discards a candidate matching a stored title.
*/
func TestGenerate_RejectsPersistedTitle(t *testing.T) {
	repo := seeded("Attack Of Shadows")
	synth := &scripted{titles: []string{"attack of shadows", "Moon Garden", "Iron Tide"}}
	gen := generator.New(repo, synth, nil, generator.DefaultConfig, discard)

	result, err := gen.Generate(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Generated)
	assert.Equal(t, 4, result.Attempts)
	assert.Equal(t, 1, result.Rejected)
	assertUnique(t, result.Mangas, "Attack Of Shadows")

	for _, m := range result.Mangas {
		assert.NotEqual(t, "attack of shadows", m.NormalizedTitle)
	}
}

/*
TestGenerate_ZeroTarget writes nothing.
*/
func TestGenerate_ZeroTarget(t *testing.T) {
	repo := manga.NewMemoryRepository(0)
	gen := generator.New(repo, &scripted{}, nil, generator.DefaultConfig, discard)

	result, err := gen.Generate(context.Background(), 0)
	require.NoError(t, err)

	assert.Zero(t, result.Generated)
	assert.Empty(t, result.Mangas)
	assert.Empty(t, repo.Commits())
}

/*
TestGenerate_BudgetExhausted stops at target * multiplier attempts and reports fewer records.
*/
func TestGenerate_BudgetExhausted(t *testing.T) {
	repo := seeded("Taken")
	synth := &scripted{titles: []string{"taken", "TAKEN ", "Fresh One", "Taken"}}
	gen := generator.New(repo, synth, nil, generator.DefaultConfig, discard)

	result, err := gen.Generate(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Generated)
	assert.Equal(t, 2, result.Attempts)

	repo = seeded("Same")
	gen = generator.New(repo, constant("Same"), nil, generator.DefaultConfig, discard)

	result, err = gen.Generate(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 10, result.Attempts)
	assert.Equal(t, 10, result.Rejected)
	assert.Zero(t, result.Generated)
	assert.Less(t, result.Generated, result.Requested)
	assert.Empty(t, repo.Commits())
}

/*
TestGenerate_Batches flushes full batches and the remainder.
*/
func TestGenerate_Batches(t *testing.T) {
	repo := manga.NewMemoryRepository(500)
	gen := generator.New(repo, &scripted{}, nil, generator.Config{BatchSize: 500, AttemptMultiplier: 2}, discard)

	result, err := gen.Generate(context.Background(), 1201)
	require.NoError(t, err)

	assert.Equal(t, 1201, result.Generated)
	assert.Equal(t, 3, result.Batches)
	assert.Equal(t, []int{500, 500, 201}, repo.Commits())
}

/*
TestGenerate_BatchSizeCappedByStore never writes more than the store accepts per commit.
*/
func TestGenerate_BatchSizeCappedByStore(t *testing.T) {
	repo := manga.NewMemoryRepository(100)
	gen := generator.New(repo, &scripted{}, nil, generator.Config{BatchSize: 500}, discard)

	result, err := gen.Generate(context.Background(), 250)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Batches)
	assert.Equal(t, []int{100, 100, 50}, repo.Commits())
}

/*
TestGenerate_PartialWrite reports the committed records alongside the failure.
*/
func TestGenerate_PartialWrite(t *testing.T) {
	repo := manga.NewMemoryRepository(10)
	boom := errors.New("store unavailable")
	repo.OnCommit(func(batchIndex, _ int) error {
		if batchIndex == 2 {
			return boom
		}
		return nil
	})
	gen := generator.New(repo, &scripted{}, nil, generator.Config{BatchSize: 10}, discard)

	result, err := gen.Generate(context.Background(), 50)
	require.Error(t, err)
	assert.ErrorIs(t, err, manga.ErrPartialWrite)
	assert.ErrorIs(t, err, boom)

	require.NotNil(t, result)
	assert.Equal(t, 20, result.Generated)
	assert.Len(t, result.Mangas, 20)
	assert.Equal(t, 2, result.Batches)
}

/*
TestGenerate_SnapshotFailure writes nothing when the store cannot be read.
*/
func TestGenerate_SnapshotFailure(t *testing.T) {
	boom := errors.New("scan failed")
	gen := generator.New(failingStore{err: boom}, &scripted{}, nil, generator.DefaultConfig, discard)

	result, err := gen.Generate(context.Background(), 10)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, result)
}

type failingStore struct{ err error }

func (s failingStore) List(context.Context) ([]*manga.Manga, error) { return nil, s.err }
func (s failingStore) AddRange(context.Context, []*manga.Manga) ([]*manga.Manga, error) {
	return nil, s.err
}
func (s failingStore) BatchLimit() int { return manga.DefaultBatchLimit }

/*
TestGenerate_CancelFlushesPending persists accepted records when the caller cancels.
*/
func TestGenerate_CancelFlushesPending(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	repo := manga.NewMemoryRepository(0)
	synth := &cancelling{after: 5, cancel: cancel}
	gen := generator.New(repo, synth, nil, generator.DefaultConfig, discard)

	result, err := gen.Generate(ctx, 100)
	assert.ErrorIs(t, err, context.Canceled)

	require.NotNil(t, result)
	assert.Equal(t, 5, result.Generated)

	all, listErr := repo.List(context.Background())
	require.NoError(t, listErr)
	assert.Len(t, all, 5)
}

// cancelling cancels its context after producing a number of records.
type cancelling struct {
	scripted
	after  int
	cancel context.CancelFunc
}

func (c *cancelling) Synthesize(titles *generator.TitleSet) *manga.Manga {
	m := c.scripted.Synthesize(titles)
	if c.next >= c.after {
		c.cancel()
	}
	return m
}

/*
TestGenerate_StoreRejectsAtWriteTime counts records the store skipped.
*/
func TestGenerate_StoreRejectsAtWriteTime(t *testing.T) {
	repo := manga.NewMemoryRepository(0)
	gen := generator.New(raceStore{repo}, &scripted{titles: []string{"Alpha", "Beta"}}, nil, generator.DefaultConfig, discard)

	result, err := gen.Generate(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Generated)
	assert.Equal(t, 1, result.StoreRejected)
	assertUnique(t, result.Mangas, "alpha")
}

// raceStore simulates another writer storing "Alpha" after the snapshot.
type raceStore struct{ *manga.MemoryRepository }

func (s raceStore) AddRange(ctx context.Context, mangas []*manga.Manga) ([]*manga.Manga, error) {
	if taken, _ := s.ExistsByTitle(ctx, "alpha"); !taken {
		s.Seed(&manga.Manga{ID: "other-writer", Title: "Alpha"})
	}
	return s.MemoryRepository.AddRange(ctx, mangas)
}

/*
TestGenerate_LockedRun rejects a second concurrent run.
*/
func TestGenerate_LockedRun(t *testing.T) {
	locker := &generator.LocalLocker{}
	release, err := locker.Acquire(context.Background())
	require.NoError(t, err)

	gen := generator.New(manga.NewMemoryRepository(0), &scripted{}, locker, generator.DefaultConfig, discard)
	_, err = gen.Generate(context.Background(), 1)
	assert.ErrorIs(t, err, generator.ErrLocked)

	release()
	release()

	_, err = gen.Generate(context.Background(), 1)
	assert.NoError(t, err)
}

/*
TestGenerate_UniquenessProperty holds the uniqueness invariants for arbitrary seeds and stores.
*/
func TestGenerate_UniquenessProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		vocabulary := []string{"Moon", "Iron", "Tide", "Garden", "moon"}
		seed := rapid.Uint64Range(1, 1<<32).Draw(t, "seed")
		target := rapid.IntRange(0, 40).Draw(t, "target")
		existing := rapid.SliceOfN(rapid.SampledFrom(vocabulary), 0, 5).Draw(t, "existing")

		repo := seeded(existing...)
		small := generator.NewFakerSynthesizer(seed).WithPhrases(func() string {
			return vocabulary[int(seed%uint64(len(vocabulary)))]
		})
		gen := generator.New(repo, small, nil, generator.DefaultConfig, discard)

		result, err := gen.Generate(context.Background(), target)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if result.Generated > target || result.Attempts > target*2 {
			t.Fatalf("bounds violated: %+v", result)
		}

		seen := make(map[string]bool)
		for _, title := range existing {
			seen[manga.NormalizeTitle(title)] = true
		}
		for _, m := range result.Mangas {
			key := manga.NormalizeTitle(m.Title)
			if seen[key] {
				t.Fatalf("duplicate title %q", m.Title)
			}
			seen[key] = true
		}
	})
}
