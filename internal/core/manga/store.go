// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package manga

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// ErrPartialWrite marks a bulk write that committed some sub-batches and then failed.
// The records returned alongside it are exactly the ones that were persisted.
var ErrPartialWrite = errors.New("manga: bulk write partially committed")

// DefaultBatchLimit is the per-commit write limit of the remote document store.
// No driver commits a larger sub-batch.
const DefaultBatchLimit = 500

// capBatchLimit keeps a requested sub-batch size within (0, DefaultBatchLimit].
func capBatchLimit(limit int) int {
	if limit < 1 || limit > DefaultBatchLimit {
		return DefaultBatchLimit
	}
	return limit
}

// # Catalog Data Access

// Repository defines the data access contract for catalog records.
type Repository interface {

	/*
		List returns every record in the catalog ordered by creation time.

		Parameters:
		  - context: context.Context

		Returns:
		  - []*Manga: Full catalog snapshot
		  - error: Store unavailability
	*/
	List(context context.Context) ([]*Manga, error)

	/*
		Search returns the records matching the filter.

		Parameters:
		  - context: context.Context
		  - filter: Filter (title contains / genre equals, both case-insensitive)

		Returns:
		  - []*Manga: Matching records
		  - error: Store unavailability
	*/
	Search(context context.Context, filter Filter) ([]*Manga, error)

	/*
		FindByID returns the record with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Manga: Hydrated entity
		  - error: apperr NOT_FOUND when absent
	*/
	FindByID(context context.Context, id string) (*Manga, error)

	/*
		Create persists a brand-new record.

		Parameters:
		  - context: context.Context
		  - manga: *Manga (ID, NormalizedTitle and CreatedAt already set)

		Returns:
		  - error: apperr CONFLICT when the ID or normalized title is taken
	*/
	Create(context context.Context, manga *Manga) error

	/*
		Update replaces every mutable field of an existing record.

		Parameters:
		  - context: context.Context
		  - manga: *Manga

		Returns:
		  - error: apperr NOT_FOUND when absent, CONFLICT on title collision
	*/
	Update(context context.Context, manga *Manga) error

	/*
		Delete removes the record with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: apperr NOT_FOUND when absent
	*/
	Delete(context context.Context, id string) error

	/*
		ExistsByTitle reports whether a record with the normalized title exists.

		Parameters:
		  - context: context.Context
		  - normalizedTitle: string (output of NormalizeTitle)

		Returns:
		  - bool: true when taken
		  - error: Store unavailability
	*/
	ExistsByTitle(context context.Context, normalizedTitle string) (bool, error)

	/*
		AddRange persists records in sub-batches of at most BatchLimit.

		Description: Each sub-batch commits atomically. Records whose normalized
		title already exists are skipped by the store. On failure the remaining
		sub-batches are not attempted.

		Parameters:
		  - context: context.Context
		  - mangas: []*Manga

		Returns:
		  - []*Manga: Records actually persisted, in input order
		  - error: ErrPartialWrite (wrapping the cause) on a failed sub-batch
	*/
	AddRange(context context.Context, mangas []*Manga) ([]*Manga, error)

	/*
		Duplicates groups records sharing a normalized title.

		Returns:
		  - map[string][]*Manga: Normalized title to records, only groups of two or more
		  - error: Store unavailability
	*/
	Duplicates(context context.Context) (map[string][]*Manga, error)

	/*
		BatchLimit returns the maximum number of writes one atomic commit accepts.
	*/
	BatchLimit() int
}

// # Shared Driver Helpers

// commitFunc persists one sub-batch atomically and returns the records it stored.
type commitFunc func(context context.Context, batch []*Manga) ([]*Manga, error)

// addInBatches splits mangas into sub-batches of at most limit records and
// commits them in order, stopping at the first failure.
func addInBatches(context context.Context, mangas []*Manga, limit int, commit commitFunc) ([]*Manga, error) {
	if limit < 1 {
		limit = 1
	}

	persisted := make([]*Manga, 0, len(mangas))
	for start, batchIndex := 0, 0; start < len(mangas); start, batchIndex = start+limit, batchIndex+1 {
		end := min(start+limit, len(mangas))

		stored, err := commit(context, mangas[start:end])
		if err != nil {
			return persisted, fmt.Errorf("%w: sub-batch %d (%d committed): %w", ErrPartialWrite, batchIndex, len(persisted), err)
		}
		persisted = append(persisted, stored...)
	}

	return persisted, nil
}

// GroupDuplicates groups records by normalized title, keeping groups of two or more.
func GroupDuplicates(mangas []*Manga) map[string][]*Manga {
	groups := make(map[string][]*Manga)
	for _, m := range mangas {
		key := m.NormalizedTitle
		if key == "" {
			key = NormalizeTitle(m.Title)
		}
		groups[key] = append(groups[key], m)
	}

	for key, group := range groups {
		if len(group) < 2 {
			delete(groups, key)
		}
	}
	return groups
}

// sortByCreation orders records by creation time, then ID.
func sortByCreation(mangas []*Manga) {
	sort.SliceStable(mangas, func(i, j int) bool {
		if !mangas[i].CreatedAt.Equal(mangas[j].CreatedAt) {
			return mangas[i].CreatedAt.Before(mangas[j].CreatedAt)
		}
		return mangas[i].ID < mangas[j].ID
	})
}
