// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/mimanga/internal/platform/apperr"
	"github.com/taibuivan/mimanga/internal/platform/ctxutil"
	"github.com/taibuivan/mimanga/internal/platform/sec"
	"github.com/taibuivan/mimanga/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for generating security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	GenerateAccessToken(userID, email, role string, timeToLive time.Duration) (string, error)
}

// Service implements account use cases.
type Service struct {
	users       UserRepository
	tokens      TokenProvider
	adminEmails map[string]bool
	logger      *slog.Logger
	now         func() time.Time
}

// NewService creates a [Service]. Accounts registered with one of adminEmails
// receive [sec.RoleAdmin].
func NewService(users UserRepository, tokens TokenProvider, adminEmails []string, logger *slog.Logger) *Service {
	admins := make(map[string]bool, len(adminEmails))
	for _, email := range adminEmails {
		if email = NormalizeEmail(email); email != "" {
			admins[email] = true
		}
	}
	return &Service{
		users:       users,
		tokens:      tokens,
		adminEmails: admins,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// # Registration Flow

// RegisterInput holds the data required to create an account.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

/*
Register hashes the password and persists a new account.

Returns:
  - *User: Created entity
  - error: apperr.Conflict when the email is taken, or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {
	email := NormalizeEmail(input.Email)

	// ── 1. Uniqueness Check ───────────────────────────────────────────────
	if _, err := service.users.FindByEmail(context, email); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	} else if !apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, err
	}

	// ── 2. Security ───────────────────────────────────────────────────────
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// ── 3. Entity Construction ────────────────────────────────────────────
	role := sec.RoleMember
	if service.adminEmails[email] {
		role = sec.RoleAdmin
	}

	now := service.now()
	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hashedPassword,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := service.users.Create(context, user); err != nil {
		return nil, err
	}

	ctxutil.LoggerOr(context, service.logger).Info("user_registered",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)
	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

// LoginSession is the result of a successful login.
type LoginSession struct {
	AccessToken string
	ExpiresIn   time.Duration
	User        *User
}

/*
Login verifies credentials and issues an access token.

Returns:
  - *LoginSession: Token and account
  - error: apperr.Unauthorized for unknown accounts, wrong passwords or disabled accounts
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {
	user, err := service.users.FindByEmail(context, input.Email)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.Unauthorized("Invalid login credentials")
		}
		return nil, err
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}
	if user.Disabled {
		return nil, apperr.Unauthorized("Account is disabled")
	}

	token, err := service.tokens.GenerateAccessToken(user.ID, user.Email, string(user.Role), AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_failed: %w", err)
	}

	ctxutil.LoggerOr(context, service.logger).Info("user_logged_in", slog.String("user_id", user.ID))
	return &LoginSession{AccessToken: token, ExpiresIn: AccessTokenTTL, User: user}, nil
}

// # Account Lifecycle

/*
GetUser returns an account to its owner or to an administrator.

Returns:
  - *User: Account
  - error: apperr.Forbidden for other readers, apperr.NotFound when absent
*/
func (service *Service) GetUser(context context.Context, requester *sec.AuthClaims, id string) (*User, error) {
	if requester != nil && requester.UserID != id && !sec.UserRole(requester.Role).AtLeast(sec.RoleAdmin) {
		return nil, apperr.Forbidden("You can only view your own account")
	}
	return service.users.FindByID(context, id)
}

// DeleteUser removes an account.
func (service *Service) DeleteUser(context context.Context, id string) error {
	if err := service.users.Delete(context, id); err != nil {
		return err
	}
	ctxutil.LoggerOr(context, service.logger).Warn("user_deleted", slog.String("user_id", id))
	return nil
}
