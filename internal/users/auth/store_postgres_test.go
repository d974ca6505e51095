// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mimanga/internal/platform/apperr"
	"github.com/taibuivan/mimanga/internal/platform/database/schema"
	"github.com/taibuivan/mimanga/internal/platform/sec"
	"github.com/taibuivan/mimanga/internal/users/auth"
)

func newMockUsers(t *testing.T) (*auth.PostgresUserRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return auth.NewPostgresUserRepository(mock), mock
}

/*
TestPostgresUserRepository_Create lowercases emails and maps unique violations.
*/
func TestPostgresUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	user := &auth.User{ID: "u1", Email: "Reader@Example.com", PasswordHash: "hash", Role: sec.RoleMember, CreatedAt: now, UpdatedAt: now}

	t.Run("Inserted", func(t *testing.T) {
		repo, mock := newMockUsers(t)
		mock.ExpectExec(`INSERT INTO users\.account`).
			WithArgs("u1", "reader@example.com", "hash", "", "member", false, false, now, now).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.Create(ctx, user))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate", func(t *testing.T) {
		repo, mock := newMockUsers(t)
		mock.ExpectExec(`INSERT INTO users\.account`).
			WithArgs("u1", "reader@example.com", "hash", "", "member", false, false, now, now).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

		err := repo.Create(ctx, user)
		assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

/*
TestPostgresUserRepository_FindByEmail matches case-insensitively and maps missing rows.
*/
func TestPostgresUserRepository_FindByEmail(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	t.Run("Found", func(t *testing.T) {
		repo, mock := newMockUsers(t)
		rows := pgxmock.NewRows(schema.UserAccount.Columns()).
			AddRow("u1", "reader@example.com", "hash", "Reader", "admin", true, false, now, now)
		mock.ExpectQuery(`SELECT (.+) FROM users\.account WHERE lower\(email\) = \$1`).
			WithArgs("reader@example.com").
			WillReturnRows(rows)

		user, err := repo.FindByEmail(ctx, " READER@example.com")
		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
		assert.Equal(t, sec.RoleAdmin, user.Role)
		assert.True(t, user.EmailVerified)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing", func(t *testing.T) {
		repo, mock := newMockUsers(t)
		mock.ExpectQuery(`SELECT (.+) FROM users\.account WHERE lower\(email\) = \$1`).
			WithArgs("ghost@example.com").
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.FindByEmail(ctx, "ghost@example.com")
		assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

/*
TestPostgresUserRepository_Delete reports missing accounts.
*/
func TestPostgresUserRepository_Delete(t *testing.T) {
	repo, mock := newMockUsers(t)
	mock.ExpectExec(`DELETE FROM users\.account WHERE id = \$1`).
		WithArgs("u1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), "u1")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}
