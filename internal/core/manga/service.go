// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package manga

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/taibuivan/mimanga/internal/platform/apperr"
	"github.com/taibuivan/mimanga/internal/platform/constants"
	"github.com/taibuivan/mimanga/internal/platform/ctxutil"
	"github.com/taibuivan/mimanga/internal/platform/validate"
	"github.com/taibuivan/mimanga/pkg/pointer"
	"github.com/taibuivan/mimanga/pkg/uuid"
)

// Service implements catalog use cases on top of a [Repository].
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
	scans  singleflight.Group
}

// NewService creates a catalog service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source. Used by tests.
func (service *Service) WithClock(now func() time.Time) *Service {
	service.now = now
	return service
}

// # Queries

// ListMangas returns one page of the catalog and the total record count.
func (service *Service) ListMangas(context context.Context, limit, offset int) ([]*Manga, int, error) {
	all, err := service.Catalog(context)
	if err != nil {
		return nil, 0, err
	}

	total := len(all)
	if offset >= total {
		return []*Manga{}, total, nil
	}
	end := min(offset+limit, total)
	return all[offset:end], total, nil
}

// SearchMangas filters the catalog by title substring and genre.
func (service *Service) SearchMangas(context context.Context, filter Filter) ([]*Manga, error) {
	if filter.IsEmpty() {
		return service.Catalog(context)
	}
	return service.repo.Search(context, filter)
}

func (service *Service) GetManga(context context.Context, id string) (*Manga, error) {
	return service.repo.FindByID(context, id)
}

// Catalog returns the full catalog. Concurrent callers share one store scan.
//
// The scan runs detached from any single caller, bounded by
// [constants.CatalogScanTimeout]; each caller stops waiting when its own
// context ends.
func (service *Service) Catalog(ctx context.Context) ([]*Manga, error) {
	scan := service.scans.DoChan("catalog", func() (any, error) {
		scanCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.CatalogScanTimeout)
		defer cancel()
		return service.repo.List(scanCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-scan:
		if result.Err != nil {
			return nil, result.Err
		}
		shared := result.Val.([]*Manga)
		mangas := make([]*Manga, len(shared))
		copy(mangas, shared)
		return mangas, nil
	}
}

// Duplicates returns records sharing a normalized title, keyed by that title.
func (service *Service) Duplicates(context context.Context) (map[string][]*Manga, error) {
	return service.repo.Duplicates(context)
}

// Summary aggregates the catalog for status reporting.
func (service *Service) Summary(context context.Context) (Summary, error) {
	all, err := service.Catalog(context)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(all), nil
}

// # Commands

// CreateManga validates input, assigns an ID and creation time, and stores it.
func (service *Service) CreateManga(context context.Context, input *Manga) error {
	prepare(input)
	if err := validateManga(input); err != nil {
		return err
	}

	taken, err := service.repo.ExistsByTitle(context, input.NormalizedTitle)
	if err != nil {
		return err
	}
	if taken {
		return titleConflict(input.Title)
	}

	input.ID = uuid.New()
	input.CreatedAt = service.now()
	input.UpdatedAt = nil

	if err := service.repo.Create(context, input); err != nil {
		return err
	}

	ctxutil.LoggerOr(context, service.logger).Info("manga_created",
		slog.String("manga_id", input.ID),
		slog.String("title", input.Title),
	)
	return nil
}

// UpdateManga replaces the mutable fields of record id and returns the stored result.
// ID and CreatedAt are kept from the existing record.
func (service *Service) UpdateManga(context context.Context, id string, input *Manga) (*Manga, error) {
	current, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	prepare(input)
	if err := validateManga(input); err != nil {
		return nil, err
	}

	if input.NormalizedTitle != current.NormalizedTitle {
		taken, err := service.repo.ExistsByTitle(context, input.NormalizedTitle)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, titleConflict(input.Title)
		}
	}

	input.ID = current.ID
	input.CreatedAt = current.CreatedAt
	input.UpdatedAt = pointer.To(service.now())

	if err := service.repo.Update(context, input); err != nil {
		return nil, err
	}

	ctxutil.LoggerOr(context, service.logger).Info("manga_updated", slog.String("manga_id", id))
	return input, nil
}

func (service *Service) DeleteManga(context context.Context, id string) error {
	if err := service.repo.Delete(context, id); err != nil {
		return err
	}

	ctxutil.LoggerOr(context, service.logger).Warn("manga_deleted", slog.String("manga_id", id))
	return nil
}

// # Validation

// prepare trims free text, canonicalizes the genre and derives the normalized title.
func prepare(m *Manga) {
	m.Title = strings.TrimSpace(m.Title)
	m.Author = strings.TrimSpace(m.Author)
	m.Publisher = strings.TrimSpace(m.Publisher)
	m.Synopsis = strings.TrimSpace(m.Synopsis)
	if genre, ok := CanonicalGenre(m.Genre); ok {
		m.Genre = genre
	}
	m.Status = Status(strings.ToLower(strings.TrimSpace(string(m.Status))))
	m.Normalize()
}

func validateManga(m *Manga) error {
	validator := &validate.Validator{}

	validator.Required(FieldTitle, m.Title).MaxLen(FieldTitle, m.Title, MaxTitleLen)
	validator.Required(FieldAuthor, m.Author).MaxLen(FieldAuthor, m.Author, MaxAuthorLen)
	validator.OneOf(FieldGenre, m.Genre, Genres...)
	validator.OneOf(FieldPublisher, m.Publisher, Publishers...)
	validator.Custom(FieldStatus, !m.Status.IsValid(), "Must be one of: ongoing, finished, paused, cancelled")
	validator.Range(FieldYear, m.Year, MinYear, MaxYear)
	validator.Range(FieldVolumes, m.Volumes, MinVolumes, MaxVolumes)
	validator.Range(FieldChapters, m.Chapters, MinChapters, MaxChapters)
	validator.FloatRange(FieldRating, m.Rating, MinRating, MaxRating)
	validator.MaxLen(FieldSynopsis, m.Synopsis, MaxSynopsisLen)

	return validator.Err()
}

func titleConflict(title string) error {
	return apperr.Conflict("A manga with the title '" + title + "' already exists")
}
