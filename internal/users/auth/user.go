// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the identity capability of the catalog API.

It registers accounts, issues RS256 access tokens on login, and lets
readers look up or administrators delete accounts.

# Architecture

  - Service: registration, login and account lifecycle rules.
  - Repository: account storage on PostgreSQL, Firestore or memory.
  - Handler: the JSON transport mounted under /auth.
*/
package auth

import (
	"strings"
	"time"

	"github.com/taibuivan/mimanga/internal/platform/sec"
)

// # Domain Entities

// User is a registered account.
type User struct {
	ID            string       `json:"id" firestore:"id"`
	Email         string       `json:"email" firestore:"email"`
	PasswordHash  string       `json:"-" firestore:"passwordHash"`
	DisplayName   string       `json:"display_name" firestore:"displayName"`
	Role          sec.UserRole `json:"role" firestore:"role"`
	EmailVerified bool         `json:"email_verified" firestore:"emailVerified"`
	Disabled      bool         `json:"disabled" firestore:"disabled"`
	CreatedAt     time.Time    `json:"created_at" firestore:"createdAt"`
	UpdatedAt     time.Time    `json:"updated_at" firestore:"updatedAt"`
}

// NormalizeEmail is the lookup form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// # Authentication Constraints

const (
	// AccessTokenTTL is the duration a JWT access token remains valid.
	AccessTokenTTL = 15 * time.Minute

	// MinPasswordLen is the shortest accepted password.
	MinPasswordLen = 8

	// MaxDisplayNameLen bounds the display name.
	MaxDisplayNameLen = 80
)

// # Field Identifiers

const (
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldDisplayName = "display_name"
)
