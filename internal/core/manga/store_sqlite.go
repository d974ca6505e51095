// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package manga

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/taibuivan/mimanga/internal/platform/apperr"
	"github.com/taibuivan/mimanga/internal/platform/dberr"
	"github.com/taibuivan/mimanga/pkg/slice"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS manga (
	id               TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	normalized_title TEXT NOT NULL UNIQUE,
	author           TEXT NOT NULL,
	genre            TEXT NOT NULL,
	year             INTEGER NOT NULL,
	volumes          INTEGER NOT NULL,
	in_publication   INTEGER NOT NULL DEFAULT 0,
	synopsis         TEXT NOT NULL DEFAULT '',
	rating           REAL NOT NULL,
	chapters         INTEGER NOT NULL,
	publisher        TEXT NOT NULL,
	status           TEXT NOT NULL,
	created_at       DATETIME NOT NULL,
	updated_at       DATETIME
);
CREATE INDEX IF NOT EXISTS ix_manga_created_at ON manga (created_at, id);
`

const sqliteColumns = `id, title, normalized_title, author, genre, year, volumes,
	in_publication, synopsis, rating, chapters, publisher, status, created_at, updated_at`

// SQLiteRepository implements [Repository] on an embedded SQLite database.
type SQLiteRepository struct {
	db         *sql.DB
	batchLimit int
}

// NewSQLiteRepository creates the table if needed and returns the repository.
// batchLimit is capped at [DefaultBatchLimit].
func NewSQLiteRepository(context context.Context, db *sql.DB, batchLimit int) (*SQLiteRepository, error) {
	if _, err := db.ExecContext(context, sqliteSchema); err != nil {
		return nil, fmt.Errorf("manga: create sqlite schema: %w", err)
	}
	return &SQLiteRepository{db: db, batchLimit: capBatchLimit(batchLimit)}, nil
}

func (repository *SQLiteRepository) List(context context.Context) ([]*Manga, error) {
	return repository.query(context, `SELECT `+sqliteColumns+` FROM manga ORDER BY created_at ASC, id ASC`)
}

// Search matches in Go with [Filter.Matches]. SQLite lower() folds ASCII
// only, so SQL predicates would miss non-ASCII titles.
func (repository *SQLiteRepository) Search(context context.Context, filter Filter) ([]*Manga, error) {
	mangas, err := repository.query(context, `SELECT `+sqliteColumns+` FROM manga ORDER BY title ASC`)
	if err != nil {
		return nil, err
	}
	return slice.Filter(mangas, filter.Matches), nil
}

func (repository *SQLiteRepository) FindByID(context context.Context, id string) (*Manga, error) {
	row := repository.db.QueryRowContext(context, `SELECT `+sqliteColumns+` FROM manga WHERE id = ?`, id)
	m, err := scanSQLiteManga(row)
	if err != nil {
		return nil, dberr.Wrap(err, "Manga")
	}
	return m, nil
}

func (repository *SQLiteRepository) Create(context context.Context, manga *Manga) error {
	_, err := repository.db.ExecContext(context,
		`INSERT INTO manga (`+sqliteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sqliteValues(manga)...)
	if err != nil {
		if isSQLiteUnique(err) {
			return apperr.Conflict("A manga with this title already exists").WithCause(err)
		}
		return apperr.Internal(err)
	}
	return nil
}

func (repository *SQLiteRepository) Update(context context.Context, manga *Manga) error {
	result, err := repository.db.ExecContext(context, `
		UPDATE manga SET
			title = ?, normalized_title = ?, author = ?, genre = ?, year = ?, volumes = ?,
			in_publication = ?, synopsis = ?, rating = ?, chapters = ?, publisher = ?,
			status = ?, updated_at = ?
		WHERE id = ?`,
		manga.Title, manga.NormalizedTitle, manga.Author, manga.Genre, manga.Year, manga.Volumes,
		manga.InPublication, manga.Synopsis, manga.Rating, manga.Chapters, manga.Publisher,
		string(manga.Status), nullableTime(manga.UpdatedAt), manga.ID,
	)
	if err != nil {
		if isSQLiteUnique(err) {
			return apperr.Conflict("A manga with this title already exists").WithCause(err)
		}
		return apperr.Internal(err)
	}
	return requireAffected(result)
}

func (repository *SQLiteRepository) Delete(context context.Context, id string) error {
	result, err := repository.db.ExecContext(context, `DELETE FROM manga WHERE id = ?`, id)
	if err != nil {
		return apperr.Internal(err)
	}
	return requireAffected(result)
}

func (repository *SQLiteRepository) ExistsByTitle(context context.Context, normalizedTitle string) (bool, error) {
	var exists bool
	err := repository.db.QueryRowContext(context,
		`SELECT EXISTS (SELECT 1 FROM manga WHERE normalized_title = ?)`, normalizedTitle).Scan(&exists)
	if err != nil {
		return false, apperr.Internal(err)
	}
	return exists, nil
}

func (repository *SQLiteRepository) AddRange(context context.Context, mangas []*Manga) ([]*Manga, error) {
	return addInBatches(context, mangas, repository.batchLimit, repository.commit)
}

// commit writes one sub-batch in a transaction. Rows with a taken title are
// ignored and left out of the returned slice.
func (repository *SQLiteRepository) commit(context context.Context, batch []*Manga) (stored []*Manga, err error) {
	tx, err := repository.db.BeginTx(context, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	statement, err := tx.PrepareContext(context,
		`INSERT INTO manga (`+sqliteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT DO NOTHING`)
	if err != nil {
		return nil, err
	}
	defer statement.Close()

	stored = make([]*Manga, 0, len(batch))
	for _, m := range batch {
		result, err := statement.ExecContext(context, sqliteValues(m)...)
		if err != nil {
			return nil, err
		}
		if affected, _ := result.RowsAffected(); affected == 1 {
			stored = append(stored, m)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return stored, nil
}

func (repository *SQLiteRepository) Duplicates(context context.Context) (map[string][]*Manga, error) {
	all, err := repository.List(context)
	if err != nil {
		return nil, err
	}
	return GroupDuplicates(all), nil
}

func (repository *SQLiteRepository) BatchLimit() int {
	return repository.batchLimit
}

// # Row Mapping

type rowScanner interface {
	Scan(dest ...any) error
}

func (repository *SQLiteRepository) query(context context.Context, query string, args ...any) ([]*Manga, error) {
	rows, err := repository.db.QueryContext(context, query, args...)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	mangas := make([]*Manga, 0)
	for rows.Next() {
		m, err := scanSQLiteManga(rows)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		mangas = append(mangas, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err)
	}
	return mangas, nil
}

func scanSQLiteManga(row rowScanner) (*Manga, error) {
	m := &Manga{}
	var (
		status    string
		updatedAt sql.NullTime
	)
	err := row.Scan(
		&m.ID, &m.Title, &m.NormalizedTitle, &m.Author, &m.Genre, &m.Year, &m.Volumes,
		&m.InPublication, &m.Synopsis, &m.Rating, &m.Chapters, &m.Publisher, &status,
		&m.CreatedAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	m.Status = Status(status)
	m.CreatedAt = m.CreatedAt.UTC()
	if updatedAt.Valid {
		at := updatedAt.Time.UTC()
		m.UpdatedAt = &at
	}
	return m, nil
}

func sqliteValues(m *Manga) []any {
	return []any{
		m.ID, m.Title, m.NormalizedTitle, m.Author, m.Genre, m.Year, m.Volumes,
		m.InPublication, m.Synopsis, m.Rating, m.Chapters, m.Publisher, string(m.Status),
		m.CreatedAt.UTC(), nullableTime(m.UpdatedAt),
	}
}

func nullableTime(at *time.Time) sql.NullTime {
	if at == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: at.UTC(), Valid: true}
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperr.Internal(err)
	}
	if affected == 0 {
		return apperr.NotFound("Manga")
	}
	return nil
}

func isSQLiteUnique(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}
