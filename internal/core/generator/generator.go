// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/mimanga/internal/core/manga"
	"github.com/taibuivan/mimanga/internal/platform/ctxutil"
)

// Store is the part of [manga.Repository] a generation run needs.
type Store interface {
	List(context context.Context) ([]*manga.Manga, error)
	AddRange(context context.Context, mangas []*manga.Manga) ([]*manga.Manga, error)
	BatchLimit() int
}

// Config tunes a [Generator].
type Config struct {
	// BatchSize is the flush size. It is capped by the store batch limit.
	BatchSize int
	// AttemptMultiplier bounds synthesis attempts to target * AttemptMultiplier.
	AttemptMultiplier int
}

// DefaultConfig flushes every 500 records and allows two attempts per record.
var DefaultConfig = Config{BatchSize: manga.DefaultBatchLimit, AttemptMultiplier: 2}

// Result reports what a run persisted.
type Result struct {
	Mangas    []*manga.Manga `json:"mangas"`
	Requested int            `json:"requested"`
	// Generated is the number of records the store accepted.
	Generated int `json:"generated"`
	Attempts  int `json:"attempts"`
	// Rejected counts candidates whose title was already persisted.
	Rejected int `json:"rejected"`
	// StoreRejected counts records the store skipped at write time.
	StoreRejected int           `json:"store_rejected"`
	Batches       int           `json:"batches"`
	Duration      time.Duration `json:"-"`
}

// Generator runs duplicate-aware bulk generation.
type Generator struct {
	store       Store
	synthesizer Synthesizer
	locker      Locker
	config      Config
	logger      *slog.Logger
}

// New creates a generator. A nil locker disables run serialization.
func New(store Store, synthesizer Synthesizer, locker Locker, config Config, logger *slog.Logger) *Generator {
	if config.BatchSize < 1 {
		config.BatchSize = DefaultConfig.BatchSize
	}
	if config.AttemptMultiplier < 1 {
		config.AttemptMultiplier = DefaultConfig.AttemptMultiplier
	}
	return &Generator{
		store:       store,
		synthesizer: synthesizer,
		locker:      locker,
		config:      config,
		logger:      logger,
	}
}

/*
Generate synthesizes up to target records with titles that are unique within
the run and absent from the store, and persists them in batches.

Description: The persisted titles are read once. Every synthesis attempt
counts against target * AttemptMultiplier whether or not it is accepted.
When ctx is cancelled the loop stops, the pending batch is still flushed,
and the result is returned with the context error.

Returns:
  - *Result: Always non-nil once the snapshot was read, even alongside an error
  - error: ErrLocked, snapshot failure, a flush failure wrapping
    manga.ErrPartialWrite, or the context error
*/
func (g *Generator) Generate(ctx context.Context, target int) (*Result, error) {
	if target <= 0 {
		return &Result{Mangas: []*manga.Manga{}}, nil
	}

	if g.locker != nil {
		release, err := g.locker.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	logger := ctxutil.LoggerOr(ctx, g.logger)
	started := time.Now()

	// ── 1. Persisted-title snapshot ──────────────────────────────────────
	existing, err := g.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("generator: snapshot persisted titles: %w", err)
	}
	persisted := NewTitleSet(len(existing))
	for _, m := range existing {
		persisted.Add(m.Title)
	}

	run := &run{
		store:     g.store,
		logger:    logger,
		batchSize: min(g.config.BatchSize, g.store.BatchLimit()),
		result:    &Result{Requested: target, Mangas: make([]*manga.Manga, 0, target)},
	}
	if run.batchSize < 1 {
		run.batchSize = manga.DefaultBatchLimit
	}
	run.buffer = make([]*manga.Manga, 0, run.batchSize)

	// ── 2. Synthesis loop ────────────────────────────────────────────────
	session := NewTitleSet(target)
	maxAttempts := target * g.config.AttemptMultiplier
	result := run.result

	for {
		for run.pending() < target && result.Attempts < maxAttempts {
			if err := ctx.Err(); err != nil {
				flushErr := run.flush(context.WithoutCancel(ctx))
				return run.finish(started), errors.Join(err, flushErr)
			}

			result.Attempts++
			candidate := g.synthesizer.Synthesize(session)
			candidate.Normalize()

			if persisted.Contains(candidate.NormalizedTitle) {
				result.Rejected++
				logger.Debug("generation_candidate_rejected", slog.String("title", candidate.Title))
				continue
			}

			run.buffer = append(run.buffer, candidate)
			if len(run.buffer) >= run.batchSize {
				if err := run.flush(ctx); err != nil {
					return run.finish(started), err
				}
			}
		}

		// ── 3. Flush the remainder ───────────────────────────────────────
		if err := run.flush(ctx); err != nil {
			return run.finish(started), err
		}

		// Records skipped by the store free up room while budget remains.
		if run.pending() >= target || result.Attempts >= maxAttempts {
			break
		}
	}

	run.finish(started)
	logger.Info("generation_completed",
		slog.Int("requested", result.Requested),
		slog.Int("generated", result.Generated),
		slog.Int("attempts", result.Attempts),
		slog.Int("rejected", result.Rejected),
		slog.Int("store_rejected", result.StoreRejected),
		slog.Int("batches", result.Batches),
		slog.Duration("duration", result.Duration),
	)
	return result, nil
}

// run holds the per-invocation state of [Generator.Generate].
type run struct {
	store     Store
	logger    *slog.Logger
	batchSize int
	buffer    []*manga.Manga
	result    *Result
}

// pending counts persisted records plus records waiting in the buffer.
func (r *run) pending() int {
	return len(r.result.Mangas) + len(r.buffer)
}

// flush writes the buffer. It is a no-op when the buffer is empty.
func (r *run) flush(context context.Context) error {
	if len(r.buffer) == 0 {
		return nil
	}

	batch := r.buffer
	r.buffer = make([]*manga.Manga, 0, r.batchSize)

	stored, err := r.store.AddRange(context, batch)
	r.result.Mangas = append(r.result.Mangas, stored...)
	if err != nil {
		r.logger.Error("generation_batch_failed",
			slog.Int("batch", r.result.Batches+1),
			slog.Int("size", len(batch)),
			slog.Int("stored", len(stored)),
			slog.Any("error", err),
		)
		return fmt.Errorf("generator: flush batch %d: %w", r.result.Batches+1, err)
	}

	r.result.Batches++
	r.result.StoreRejected += len(batch) - len(stored)
	r.logger.Info("generation_batch_flushed",
		slog.Int("batch", r.result.Batches),
		slog.Int("stored", len(stored)),
		slog.Int("total", len(r.result.Mangas)),
	)
	return nil
}

func (r *run) finish(started time.Time) *Result {
	r.result.Generated = len(r.result.Mangas)
	r.result.Duration = time.Since(started)
	return r.result
}
