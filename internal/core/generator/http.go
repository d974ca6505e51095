// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/mimanga/internal/core/manga"
	"github.com/taibuivan/mimanga/internal/platform/apperr"
	"github.com/taibuivan/mimanga/internal/platform/middleware"
	requestutil "github.com/taibuivan/mimanga/internal/platform/request"
	"github.com/taibuivan/mimanga/internal/platform/respond"
	"github.com/taibuivan/mimanga/internal/platform/sec"
	"github.com/taibuivan/mimanga/internal/platform/validate"
)

// DefaultCount is the number of records generated when no count is given.
const DefaultCount = 3500

// # Handler Implementation

// Handler exposes generation and catalog maintenance endpoints.
type Handler struct {
	generator   *Generator
	catalog     *manga.Service
	maxCount    int
	authEnabled bool
}

// NewHandler creates a generator [Handler]. Counts above maxCount are rejected.
func NewHandler(generator *Generator, catalog *manga.Service, maxCount int, authEnabled bool) *Handler {
	return &Handler{
		generator:   generator,
		catalog:     catalog,
		maxCount:    maxCount,
		authEnabled: authEnabled,
	}
}

// Routes returns a [chi.Router] configured with the generator endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/status", handler.status)
	router.Get("/all", handler.listAll)
	router.Get("/duplicates", handler.listDuplicates)

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.Guard(handler.authEnabled, sec.RoleAdmin))

		admin.Post("/generate", handler.generate)
		admin.Delete("/{id}", handler.deleteManga)
	})

	return router
}

type generateResponse struct {
	Message string `json:"message"`
	*Result
}

type statusResponse struct {
	Message string `json:"message"`
	manga.Summary
}

type catalogResponse struct {
	Count  int            `json:"count"`
	Mangas []*manga.Manga `json:"mangas"`
}

type duplicatesResponse struct {
	Count      int                       `json:"count"`
	Duplicates map[string][]*manga.Manga `json:"duplicates"`
}

func (handler *Handler) generate(writer http.ResponseWriter, request *http.Request) {
	count, err := requestutil.QueryInt(request, manga.FieldCount, DefaultCount)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := (&validate.Validator{}).Range(manga.FieldCount, count, 1, handler.maxCount).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.generator.Generate(request.Context(), count)
	if err != nil {
		if result == nil {
			respond.Error(writer, request, generationError(err))
			return
		}
		respond.ErrorWithData(writer, request, generationError(err), generateResponse{
			Message: fmt.Sprintf("Generation stopped after persisting %d of %d mangas", result.Generated, result.Requested),
			Result:  result,
		})
		return
	}

	respond.OK(writer, generateResponse{
		Message: fmt.Sprintf("Generated %d of %d requested mangas", result.Generated, result.Requested),
		Result:  result,
	})
}

func (handler *Handler) status(writer http.ResponseWriter, request *http.Request) {
	summary, err := handler.catalog.Summary(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, statusResponse{Message: "Generation service is active", Summary: summary})
}

func (handler *Handler) listAll(writer http.ResponseWriter, request *http.Request) {
	mangas, err := handler.catalog.Catalog(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, catalogResponse{Count: len(mangas), Mangas: mangas})
}

func (handler *Handler) listDuplicates(writer http.ResponseWriter, request *http.Request) {
	groups, err := handler.catalog.Duplicates(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, duplicatesResponse{Count: len(groups), Duplicates: groups})
}

func (handler *Handler) deleteManga(writer http.ResponseWriter, request *http.Request) {
	if err := handler.catalog.DeleteManga(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// generationError maps generator failures to client-facing errors.
func generationError(err error) error {
	switch {
	case errors.Is(err, ErrLocked):
		return apperr.Conflict("A generation run is already in progress")
	case errors.Is(err, manga.ErrPartialWrite):
		return apperr.PartialWrite("Generation stopped after a failed batch write", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperr.ServiceUnavailable("Generation was interrupted").WithCause(err)
	default:
		return err
	}
}
