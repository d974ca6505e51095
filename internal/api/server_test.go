// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mimanga/internal/api"
	"github.com/taibuivan/mimanga/internal/core/generator"
	"github.com/taibuivan/mimanga/internal/core/manga"
	"github.com/taibuivan/mimanga/internal/platform/config"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newServer(t *testing.T, checks ...api.HealthCheck) *httptest.Server {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{ServerPort: "0", Environment: "development", GenerationMaxCount: 100}
	repo := manga.NewMemoryRepository(0)
	catalog := manga.NewService(repo, discard)
	gen := generator.New(repo, generator.NewFakerSynthesizer(42), &generator.LocalLocker{}, generator.DefaultConfig, discard)

	liveness, readiness := api.NewHealthHandlers(checks, discard)
	server := api.NewServer(ctx, cfg, discard, nil, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Mangas:    manga.NewHandler(catalog, false),
		Generator: generator.NewHandler(gen, catalog, cfg.GenerationMaxCount, false),
	})

	httpServer := httptest.NewServer(server.Handler())
	t.Cleanup(httpServer.Close)
	return httpServer
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()

	response, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = response.Body.Close() })
	return response
}

/*
TestServer_Probes reports liveness and per-dependency readiness.
*/
func TestServer_Probes(t *testing.T) {
	t.Run("Ready", func(t *testing.T) {
		server := newServer(t, api.HealthCheck{Name: "store", Probe: func(context.Context) error { return nil }})

		assert.Equal(t, http.StatusOK, get(t, server.URL+"/health").StatusCode)
		assert.Equal(t, http.StatusOK, get(t, server.URL+"/ready").StatusCode)
	})

	t.Run("Degraded", func(t *testing.T) {
		server := newServer(t,
			api.HealthCheck{Name: "store", Probe: func(context.Context) error { return nil }},
			api.HealthCheck{Name: "redis", Probe: func(context.Context) error { return errors.New("connection refused") }},
		)

		response := get(t, server.URL+"/ready")
		require.Equal(t, http.StatusServiceUnavailable, response.StatusCode)

		var envelope struct {
			Data struct {
				Status string `json:"status"`
				Checks []struct {
					Name string `json:"name"`
					OK   bool   `json:"ok"`
				} `json:"checks"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(response.Body).Decode(&envelope))
		assert.Equal(t, "degraded", envelope.Data.Status)
		require.Len(t, envelope.Data.Checks, 2)
		assert.False(t, envelope.Data.Checks[1].OK)
	})
}

/*
TestServer_Routes mounts the catalog and generator under /api/v1.
*/
func TestServer_Routes(t *testing.T) {
	server := newServer(t)

	response, err := http.Post(server.URL+"/api/v1/generator/generate?count=25", "application/json", nil)
	require.NoError(t, err)
	defer response.Body.Close()
	require.Equal(t, http.StatusOK, response.StatusCode)

	listing := get(t, server.URL+"/api/v1/mangas?limit=10")
	require.Equal(t, http.StatusOK, listing.StatusCode)

	var page struct {
		Data []manga.Manga `json:"data"`
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(listing.Body).Decode(&page))
	assert.Len(t, page.Data, 10)
	assert.Equal(t, 25, page.Meta.Total)

	assert.Equal(t, http.StatusNotFound, get(t, server.URL+"/api/v1/auth/login").StatusCode)
}
