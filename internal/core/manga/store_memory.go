// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package manga

import (
	"context"
	"sync"

	"github.com/taibuivan/mimanga/internal/platform/apperr"
	"github.com/taibuivan/mimanga/pkg/slice"
)

// CommitHook observes each sub-batch commit of a [MemoryRepository].
// Returning an error aborts the commit before anything is stored.
type CommitHook func(batchIndex, size int) error

// MemoryRepository is a process-local [Repository].
//
// It enforces the same normalized-title uniqueness as the SQL stores and
// records the size of every committed sub-batch.
type MemoryRepository struct {
	mu         sync.RWMutex
	records    map[string]*Manga
	byTitle    map[string]string
	order      []string
	batchLimit int
	commits    []int
	hook       CommitHook
}

// NewMemoryRepository creates an empty store. batchLimit is capped at [DefaultBatchLimit].
func NewMemoryRepository(batchLimit int) *MemoryRepository {
	return &MemoryRepository{
		records:    make(map[string]*Manga),
		byTitle:    make(map[string]string),
		batchLimit: capBatchLimit(batchLimit),
	}
}

// OnCommit installs a hook called before every sub-batch commit.
func (repository *MemoryRepository) OnCommit(hook CommitHook) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.hook = hook
}

// Commits returns the sizes of the sub-batches committed so far.
func (repository *MemoryRepository) Commits() []int {
	repository.mu.RLock()
	defer repository.mu.RUnlock()
	return append([]int(nil), repository.commits...)
}

// Seed inserts records directly, bypassing uniqueness checks. It lets tests
// reproduce catalogs written by older clients that contain duplicates.
func (repository *MemoryRepository) Seed(mangas ...*Manga) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for _, m := range mangas {
		clone := m.Clone()
		if clone.NormalizedTitle == "" {
			clone.Normalize()
		}
		if _, exists := repository.records[clone.ID]; !exists {
			repository.order = append(repository.order, clone.ID)
		}
		repository.records[clone.ID] = clone
		repository.byTitle[clone.NormalizedTitle] = clone.ID
	}
}

func (repository *MemoryRepository) List(_ context.Context) ([]*Manga, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	list := make([]*Manga, 0, len(repository.order))
	for _, id := range repository.order {
		list = append(list, repository.records[id].Clone())
	}
	return list, nil
}

func (repository *MemoryRepository) Search(context context.Context, filter Filter) ([]*Manga, error) {
	all, err := repository.List(context)
	if err != nil {
		return nil, err
	}

	return slice.Filter(all, filter.Matches), nil
}

func (repository *MemoryRepository) FindByID(_ context.Context, id string) (*Manga, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	m, ok := repository.records[id]
	if !ok {
		return nil, apperr.NotFound("Manga")
	}
	return m.Clone(), nil
}

func (repository *MemoryRepository) Create(_ context.Context, manga *Manga) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, exists := repository.records[manga.ID]; exists {
		return apperr.Conflict("Manga already exists")
	}
	if _, taken := repository.byTitle[manga.NormalizedTitle]; taken {
		return apperr.Conflict("A manga with this title already exists")
	}

	repository.insert(manga)
	return nil
}

func (repository *MemoryRepository) Update(_ context.Context, manga *Manga) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	current, ok := repository.records[manga.ID]
	if !ok {
		return apperr.NotFound("Manga")
	}
	if owner, taken := repository.byTitle[manga.NormalizedTitle]; taken && owner != manga.ID {
		return apperr.Conflict("A manga with this title already exists")
	}

	if repository.byTitle[current.NormalizedTitle] == manga.ID {
		delete(repository.byTitle, current.NormalizedTitle)
	}
	repository.records[manga.ID] = manga.Clone()
	repository.byTitle[manga.NormalizedTitle] = manga.ID
	return nil
}

func (repository *MemoryRepository) Delete(_ context.Context, id string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	current, ok := repository.records[id]
	if !ok {
		return apperr.NotFound("Manga")
	}

	delete(repository.records, id)
	if repository.byTitle[current.NormalizedTitle] == id {
		delete(repository.byTitle, current.NormalizedTitle)
	}
	for i, candidate := range repository.order {
		if candidate == id {
			repository.order = append(repository.order[:i], repository.order[i+1:]...)
			break
		}
	}
	return nil
}

func (repository *MemoryRepository) ExistsByTitle(_ context.Context, normalizedTitle string) (bool, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	_, taken := repository.byTitle[normalizedTitle]
	return taken, nil
}

func (repository *MemoryRepository) AddRange(context context.Context, mangas []*Manga) ([]*Manga, error) {
	return addInBatches(context, mangas, repository.batchLimit, repository.commit)
}

// commit applies one sub-batch under a single lock, skipping taken titles.
func (repository *MemoryRepository) commit(context context.Context, batch []*Manga) ([]*Manga, error) {
	if err := context.Err(); err != nil {
		return nil, err
	}

	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.hook != nil {
		if err := repository.hook(len(repository.commits), len(batch)); err != nil {
			return nil, err
		}
	}

	stored := make([]*Manga, 0, len(batch))
	for _, m := range batch {
		if _, taken := repository.byTitle[m.NormalizedTitle]; taken {
			continue
		}
		if _, exists := repository.records[m.ID]; exists {
			continue
		}
		repository.insert(m)
		stored = append(stored, m)
	}

	repository.commits = append(repository.commits, len(batch))
	return stored, nil
}

func (repository *MemoryRepository) Duplicates(context context.Context) (map[string][]*Manga, error) {
	all, err := repository.List(context)
	if err != nil {
		return nil, err
	}
	return GroupDuplicates(all), nil
}

func (repository *MemoryRepository) BatchLimit() int {
	return repository.batchLimit
}

// insert stores a copy of m. Callers hold the write lock.
func (repository *MemoryRepository) insert(m *Manga) {
	repository.records[m.ID] = m.Clone()
	repository.byTitle[m.NormalizedTitle] = m.ID
	repository.order = append(repository.order, m.ID)
}
