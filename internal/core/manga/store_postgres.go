// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package manga

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/mimanga/internal/platform/apperr"
	"github.com/taibuivan/mimanga/internal/platform/database/schema"
	"github.com/taibuivan/mimanga/internal/platform/dberr"
)

// Querier is the subset of [pgxpool.Pool] used by [PostgresRepository].
type Querier interface {
	Exec(context context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(context context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(context context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository implements [Repository] on PostgreSQL.
//
// Title uniqueness is enforced by the unique index on the normalized title,
// so concurrent writers can never persist two records with the same title.
type PostgresRepository struct {
	db         Querier
	builder    sq.StatementBuilderType
	batchLimit int
}

// NewPostgresRepository creates a repository. batchLimit is capped at
// [DefaultBatchLimit], which keeps a multi-row insert under the bind parameter limit.
func NewPostgresRepository(db Querier, batchLimit int) *PostgresRepository {
	return &PostgresRepository{
		db:         db,
		builder:    sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		batchLimit: capBatchLimit(batchLimit),
	}
}

var table = schema.CoreManga

func (repository *PostgresRepository) selectMangas() sq.SelectBuilder {
	return repository.builder.Select(table.Columns()...).From(table.Table)
}

func (repository *PostgresRepository) List(context context.Context) ([]*Manga, error) {
	query, args, err := repository.selectMangas().
		OrderBy(table.CreatedAt+" ASC", table.ID+" ASC").
		ToSql()
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return repository.queryMangas(context, "list_mangas", query, args...)
}

func (repository *PostgresRepository) Search(context context.Context, filter Filter) ([]*Manga, error) {
	builder := repository.selectMangas()

	if title := strings.TrimSpace(filter.Title); title != "" {
		builder = builder.Where(sq.ILike{table.Title: "%" + escapeLike(title) + "%"})
	}
	if genre := strings.TrimSpace(filter.Genre); genre != "" {
		builder = builder.Where(sq.Expr("lower("+table.Genre+") = lower(?)", genre))
	}

	query, args, err := builder.OrderBy(table.Title + " ASC").ToSql()
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return repository.queryMangas(context, "search_mangas", query, args...)
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Manga, error) {
	query, args, err := repository.selectMangas().Where(sq.Eq{table.ID: id}).ToSql()
	if err != nil {
		return nil, apperr.Internal(err)
	}

	m, err := scanManga(repository.db.QueryRow(context, query, args...))
	if err != nil {
		return nil, dberr.Wrap(err, "Manga")
	}
	return m, nil
}

func (repository *PostgresRepository) Create(context context.Context, manga *Manga) error {
	query, args, err := repository.builder.Insert(table.Table).
		Columns(table.Columns()...).
		Values(values(manga)...).
		ToSql()
	if err != nil {
		return apperr.Internal(err)
	}

	if _, err := repository.db.Exec(context, query, args...); err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("A manga with this title already exists").WithCause(err)
		}
		return dberr.Wrap(err, "Manga")
	}
	return nil
}

func (repository *PostgresRepository) Update(context context.Context, manga *Manga) error {
	query, args, err := repository.builder.Update(table.Table).
		SetMap(map[string]any{
			table.Title:           manga.Title,
			table.NormalizedTitle: manga.NormalizedTitle,
			table.Author:          manga.Author,
			table.Genre:           manga.Genre,
			table.Year:            manga.Year,
			table.Volumes:         manga.Volumes,
			table.InPublication:   manga.InPublication,
			table.Synopsis:        manga.Synopsis,
			table.Rating:          manga.Rating,
			table.Chapters:        manga.Chapters,
			table.Publisher:       manga.Publisher,
			table.Status:          string(manga.Status),
			table.UpdatedAt:       manga.UpdatedAt,
		}).
		Where(sq.Eq{table.ID: manga.ID}).
		ToSql()
	if err != nil {
		return apperr.Internal(err)
	}

	tag, err := repository.db.Exec(context, query, args...)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("A manga with this title already exists").WithCause(err)
		}
		return dberr.Wrap(err, "Manga")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Manga")
	}
	return nil
}

func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	query, args, err := repository.builder.Delete(table.Table).Where(sq.Eq{table.ID: id}).ToSql()
	if err != nil {
		return apperr.Internal(err)
	}

	tag, err := repository.db.Exec(context, query, args...)
	if err != nil {
		return dberr.Wrap(err, "Manga")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Manga")
	}
	return nil
}

func (repository *PostgresRepository) ExistsByTitle(context context.Context, normalizedTitle string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`, table.Table, table.NormalizedTitle)

	var exists bool
	if err := repository.db.QueryRow(context, query, normalizedTitle).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "Manga")
	}
	return exists, nil
}

func (repository *PostgresRepository) AddRange(context context.Context, mangas []*Manga) ([]*Manga, error) {
	return addInBatches(context, mangas, repository.batchLimit, repository.commit)
}

// commit inserts one sub-batch as a single multi-row statement. Rows whose
// normalized title is taken are skipped by ON CONFLICT; RETURNING reports
// the IDs that were actually written.
func (repository *PostgresRepository) commit(context context.Context, batch []*Manga) ([]*Manga, error) {
	insert := repository.builder.Insert(table.Table).Columns(table.Columns()...)
	for _, m := range batch {
		insert = insert.Values(values(m)...)
	}

	query, args, err := insert.
		Suffix(fmt.Sprintf("ON CONFLICT (%s) DO NOTHING RETURNING %s", table.NormalizedTitle, table.ID)).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	written := make(map[string]struct{}, len(batch))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		written[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stored := make([]*Manga, 0, len(written))
	for _, m := range batch {
		if _, ok := written[m.ID]; ok {
			stored = append(stored, m)
		}
	}
	return stored, nil
}

func (repository *PostgresRepository) Duplicates(context context.Context) (map[string][]*Manga, error) {
	duplicated := repository.builder.Select(table.NormalizedTitle).
		From(table.Table).
		GroupBy(table.NormalizedTitle).
		Having("count(*) > 1")

	subquery, subargs, err := duplicated.ToSql()
	if err != nil {
		return nil, apperr.Internal(err)
	}

	query, args, err := repository.selectMangas().
		Where(table.NormalizedTitle+" IN ("+subquery+")", subargs...).
		OrderBy(table.NormalizedTitle+" ASC", table.CreatedAt+" ASC").
		ToSql()
	if err != nil {
		return nil, apperr.Internal(err)
	}

	mangas, err := repository.queryMangas(context, "list_duplicates", query, args...)
	if err != nil {
		return nil, err
	}
	return GroupDuplicates(mangas), nil
}

func (repository *PostgresRepository) BatchLimit() int {
	return repository.batchLimit
}

// # Row Mapping

func (repository *PostgresRepository) queryMangas(context context.Context, action, query string, args ...any) ([]*Manga, error) {
	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", action, err))
	}
	defer rows.Close()

	mangas := make([]*Manga, 0)
	for rows.Next() {
		m, err := scanManga(rows)
		if err != nil {
			return nil, apperr.Internal(fmt.Errorf("%s: %w", action, err))
		}
		mangas = append(mangas, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", action, err))
	}
	return mangas, nil
}

// scanManga reads one row in [schema.CoreMangaTable.Columns] order.
func scanManga(row pgx.Row) (*Manga, error) {
	m := &Manga{}
	var status string
	err := row.Scan(
		&m.ID, &m.Title, &m.NormalizedTitle, &m.Author, &m.Genre, &m.Year, &m.Volumes,
		&m.InPublication, &m.Synopsis, &m.Rating, &m.Chapters, &m.Publisher, &status,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Status = Status(status)
	return m, nil
}

// values lists m's fields in [schema.CoreMangaTable.Columns] order.
func values(m *Manga) []any {
	return []any{
		m.ID, m.Title, m.NormalizedTitle, m.Author, m.Genre, m.Year, m.Volumes,
		m.InPublication, m.Synopsis, m.Rating, m.Chapters, m.Publisher, string(m.Status),
		m.CreatedAt, m.UpdatedAt,
	}
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
