// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package manga

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/mimanga/internal/platform/middleware"
	requestutil "github.com/taibuivan/mimanga/internal/platform/request"
	"github.com/taibuivan/mimanga/internal/platform/respond"
	"github.com/taibuivan/mimanga/internal/platform/sec"
	"github.com/taibuivan/mimanga/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for the catalog.
type Handler struct {
	service     *Service
	authEnabled bool
}

// NewHandler constructs a catalog [Handler]. When authEnabled is true,
// mutating routes require [sec.RoleAdmin].
func NewHandler(service *Service, authEnabled bool) *Handler {
	return &Handler{service: service, authEnabled: authEnabled}
}

// Routes returns a [chi.Router] configured with the catalog endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Public Discovery Endpoints
	router.Get("/", handler.listMangas)
	router.Get("/search", handler.searchMangas)
	router.Get("/{id}", handler.getManga)

	// ## Catalog Management
	router.Group(func(admin chi.Router) {
		admin.Use(middleware.Guard(handler.authEnabled, sec.RoleAdmin))

		admin.Post("/", handler.createManga)
		admin.Put("/{id}", handler.updateManga)
		admin.Delete("/{id}", handler.deleteManga)
	})

	return router
}

// searchResult is the response body of the search endpoint.
type searchResult struct {
	Count  int      `json:"count"`
	Mangas []*Manga `json:"mangas"`
}

func (handler *Handler) listMangas(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	mangas, total, err := handler.service.ListMangas(request.Context(), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, mangas, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) searchMangas(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()
	filter := Filter{
		Title: query.Get("title"),
		Genre: query.Get("genre"),
	}

	mangas, err := handler.service.SearchMangas(request.Context(), filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, searchResult{Count: len(mangas), Mangas: mangas})
}

func (handler *Handler) getManga(writer http.ResponseWriter, request *http.Request) {
	m, err := handler.service.GetManga(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, m)
}

func (handler *Handler) createManga(writer http.ResponseWriter, request *http.Request) {
	var input Manga
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateManga(request.Context(), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	writer.Header().Set("Location", strings.TrimSuffix(request.URL.Path, "/")+"/"+input.ID)
	respond.Created(writer, input)
}

func (handler *Handler) updateManga(writer http.ResponseWriter, request *http.Request) {
	var input Manga
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.UpdateManga(request.Context(), requestutil.ID(request, "id"), &input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, updated)
}

func (handler *Handler) deleteManga(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.DeleteManga(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
