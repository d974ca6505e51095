// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/mimanga/internal/platform/apperr"
	"github.com/taibuivan/mimanga/internal/platform/database/schema"
	"github.com/taibuivan/mimanga/internal/platform/dberr"
	"github.com/taibuivan/mimanga/internal/platform/sec"
)

// Querier is the subset of [pgxpool.Pool] used by [PostgresUserRepository].
type Querier interface {
	Exec(context context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(context context.Context, sql string, args ...any) pgx.Row
}

// PostgresUserRepository implements [UserRepository] on the users.account table.
//
// Email uniqueness is enforced by a unique index on lower(email).
type PostgresUserRepository struct {
	db      Querier
	builder sq.StatementBuilderType
}

// NewPostgresUserRepository creates a repository over db.
func NewPostgresUserRepository(db Querier) *PostgresUserRepository {
	return &PostgresUserRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var account = schema.UserAccount

func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	query, args, err := repository.builder.Insert(account.Table).
		Columns(account.Columns()...).
		Values(
			user.ID,
			NormalizeEmail(user.Email),
			user.PasswordHash,
			user.DisplayName,
			string(user.Role),
			user.EmailVerified,
			user.Disabled,
			user.CreatedAt,
			user.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return apperr.Internal(err)
	}

	if _, err := repository.db.Exec(context, query, args...); err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Email is already registered").WithCause(err)
		}
		return dberr.Wrap(err, "User")
	}
	return nil
}

func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	return repository.findOne(context, sq.Eq{account.ID: id})
}

func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	return repository.findOne(context, sq.Expr("lower("+account.Email+") = ?", NormalizeEmail(email)))
}

func (repository *PostgresUserRepository) Delete(context context.Context, id string) error {
	query, args, err := repository.builder.Delete(account.Table).Where(sq.Eq{account.ID: id}).ToSql()
	if err != nil {
		return apperr.Internal(err)
	}

	tag, err := repository.db.Exec(context, query, args...)
	if err != nil {
		return dberr.Wrap(err, "User")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}

func (repository *PostgresUserRepository) findOne(context context.Context, predicate sq.Sqlizer) (*User, error) {
	query, args, err := repository.builder.Select(account.Columns()...).
		From(account.Table).
		Where(predicate).
		ToSql()
	if err != nil {
		return nil, apperr.Internal(err)
	}

	var (
		user User
		role string
	)
	err = repository.db.QueryRow(context, query, args...).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&role,
		&user.EmailVerified,
		&user.Disabled,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}

	user.Role = sec.UserRole(role)
	return &user, nil
}
