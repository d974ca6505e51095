// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mimanga/internal/platform/apperr"
	"github.com/taibuivan/mimanga/internal/platform/sec"
	"github.com/taibuivan/mimanga/internal/users/auth"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTokens(t *testing.T) *sec.TokenService {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tokens, err := sec.NewTokenServiceFromKeys(key, &key.PublicKey, "mimanga.test")
	require.NoError(t, err)
	return tokens
}

func newService(t *testing.T) (*auth.Service, *sec.TokenService) {
	t.Helper()

	tokens := newTokens(t)
	return auth.NewService(auth.NewMemoryUserRepository(), tokens, []string{"Admin@MiManga.dev"}, discard), tokens
}

/*
TestService_Register assigns roles and rejects taken emails.
*/
func TestService_Register(t *testing.T) {
	ctx := context.Background()
	service, _ := newService(t)

	member, err := service.Register(ctx, auth.RegisterInput{Email: " Reader@Example.com ", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, member.ID)
	assert.Equal(t, "reader@example.com", member.Email)
	assert.Equal(t, sec.RoleMember, member.Role)
	assert.NotEqual(t, "s3cret-pass", member.PasswordHash)

	admin, err := service.Register(ctx, auth.RegisterInput{Email: "admin@mimanga.dev", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, sec.RoleAdmin, admin.Role)

	_, err = service.Register(ctx, auth.RegisterInput{Email: "READER@example.com", Password: "another-pass"})
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
}

/*
TestService_Login issues a verifiable token for valid credentials only.
*/
func TestService_Login(t *testing.T) {
	ctx := context.Background()
	service, tokens := newService(t)

	user, err := service.Register(ctx, auth.RegisterInput{Email: "reader@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	session, err := service.Login(ctx, auth.LoginInput{Email: "Reader@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, auth.AccessTokenTTL, session.ExpiresIn)

	claims, err := tokens.VerifyToken(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, string(sec.RoleMember), claims.Role)

	tests := []struct {
		name  string
		input auth.LoginInput
	}{
		{"wrong password", auth.LoginInput{Email: "reader@example.com", Password: "nope-nope"}},
		{"unknown email", auth.LoginInput{Email: "ghost@example.com", Password: "s3cret-pass"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Login(ctx, tt.input)
			assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
		})
	}
}

/*
TestService_GetUser limits lookups to the owner and administrators.
*/
func TestService_GetUser(t *testing.T) {
	ctx := context.Background()
	service, _ := newService(t)

	user, err := service.Register(ctx, auth.RegisterInput{Email: "reader@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	owner := &sec.AuthClaims{UserID: user.ID, Role: string(sec.RoleMember)}
	stranger := &sec.AuthClaims{UserID: "someone-else", Role: string(sec.RoleMember)}
	admin := &sec.AuthClaims{UserID: "admin", Role: string(sec.RoleAdmin)}

	found, err := service.GetUser(ctx, owner, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, found.Email)

	_, err = service.GetUser(ctx, admin, user.ID)
	assert.NoError(t, err)

	_, err = service.GetUser(ctx, stranger, user.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))

	_, err = service.GetUser(ctx, admin, "missing")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

/*
TestService_DeleteUser frees the email for a new registration.
*/
func TestService_DeleteUser(t *testing.T) {
	ctx := context.Background()
	service, _ := newService(t)

	user, err := service.Register(ctx, auth.RegisterInput{Email: "reader@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	require.NoError(t, service.DeleteUser(ctx, user.ID))
	assert.True(t, apperr.HasCode(service.DeleteUser(ctx, user.ID), apperr.CodeNotFound))

	_, err = service.Register(ctx, auth.RegisterInput{Email: "reader@example.com", Password: "s3cret-pass"})
	assert.NoError(t, err)
}
