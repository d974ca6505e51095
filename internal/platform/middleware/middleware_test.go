// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/mimanga/internal/platform/constants"
	"github.com/taibuivan/mimanga/internal/platform/middleware"
	"github.com/taibuivan/mimanga/internal/platform/sec"
)

type stubVerifier struct {
	claims *sec.AuthClaims
}

func (v stubVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return v.claims, nil
}

var okHandler = http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
})

func serve(handler http.Handler, authorization string) int {
	request := httptest.NewRequest(http.MethodPost, "/api/v1/generator/generate", nil)
	if authorization != "" {
		request.Header.Set(constants.HeaderAuthorization, authorization)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder.Code
}

/*
TestRequireRole_AdminOnly walks the authentication and authorization outcomes.
*/
func TestRequireRole_AdminOnly(t *testing.T) {
	admin := middleware.Authenticate(stubVerifier{claims: &sec.AuthClaims{UserID: "u1", Role: "admin"}})(
		middleware.RequireRole(sec.RoleAdmin)(okHandler))
	member := middleware.Authenticate(stubVerifier{claims: &sec.AuthClaims{UserID: "u2", Role: "member"}})(
		middleware.RequireRole(sec.RoleAdmin)(okHandler))

	assert.Equal(t, http.StatusOK, serve(admin, "Bearer good"))
	assert.Equal(t, http.StatusForbidden, serve(member, "Bearer good"))
	assert.Equal(t, http.StatusUnauthorized, serve(admin, ""))
	assert.Equal(t, http.StatusUnauthorized, serve(admin, "Bearer nope"))
	assert.Equal(t, http.StatusUnauthorized, serve(admin, "Token good"))
}

/*
TestGuard_Disabled lets every request through when authentication is off.
*/
func TestGuard_Disabled(t *testing.T) {
	handler := middleware.Authenticate(nil)(middleware.Guard(false, sec.RoleAdmin)(okHandler))
	assert.Equal(t, http.StatusOK, serve(handler, ""))

	guarded := middleware.Authenticate(nil)(middleware.Guard(true, sec.RoleAdmin)(okHandler))
	assert.Equal(t, http.StatusUnauthorized, serve(guarded, ""))
}

/*
TestRateLimit_Burst rejects requests beyond the bucket size for one IP.
*/
func TestRateLimit_Burst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := middleware.RateLimit(ctx, 0.001, 2)(okHandler)

	assert.Equal(t, http.StatusOK, serve(handler, ""))
	assert.Equal(t, http.StatusOK, serve(handler, ""))
	assert.Equal(t, http.StatusTooManyRequests, serve(handler, ""))
}

/*
TestRequestID_EchoesHeader keeps a client supplied correlation ID.
*/
func TestRequestID_EchoesHeader(t *testing.T) {
	handler := middleware.RequestID()(okHandler)

	request := httptest.NewRequest(http.MethodGet, "/health", nil)
	request.Header.Set(constants.HeaderXRequestID, "abc-123")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, "abc-123", recorder.Header().Get(constants.HeaderXRequestID))

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, recorder.Header().Get(constants.HeaderXRequestID))
}
