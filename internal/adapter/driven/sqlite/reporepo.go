package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ericfisherdev/contribsync/internal/domain/model"
	"github.com/ericfisherdev/contribsync/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RepoStore = (*RepoRepo)(nil)

// RepoRepo is the SQLite implementation of the RepoStore port interface.
// Contributors are serialized as a JSON array in the TEXT column.
type RepoRepo struct {
	db *DB
}

// NewRepoRepo creates a new RepoRepo backed by the given DB.
func NewRepoRepo(db *DB) *RepoRepo {
	return &RepoRepo{db: db}
}

// Add inserts a new tracked repository. Returns ErrRepoAlreadyExists if a
// repository with the same full_name exists.
func (r *RepoRepo) Add(ctx context.Context, repo model.Repository) error {
	const query = `
		INSERT INTO repositories (full_name, enterprise, contributors, snapshot, last_update, added_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	contributors := repo.Contributors
	if contributors == nil {
		contributors = []string{}
	}
	contributorsJSON, err := json.Marshal(contributors)
	if err != nil {
		return fmt.Errorf("marshal contributors: %w", err)
	}

	enterprise := 0
	if repo.Enterprise {
		enterprise = 1
	}

	addedAt := repo.AddedAt
	if addedAt.IsZero() {
		addedAt = time.Now().UTC()
	}

	_, err = r.db.Writer.ExecContext(ctx, query,
		repo.FullName, enterprise, string(contributorsJSON),
		repo.Snapshot, formatTime(repo.LastUpdate), addedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("add repository %s: %w", repo.FullName, driven.ErrRepoAlreadyExists)
		}
		return fmt.Errorf("add repository %s: %w", repo.FullName, err)
	}

	return nil
}

// Remove deletes a repository by full name. Returns ErrRepoNotFound if the
// repository does not exist. Activity documents are left in place; they
// belong to the contributors, not the repository row.
func (r *RepoRepo) Remove(ctx context.Context, fullName string) error {
	const query = `DELETE FROM repositories WHERE full_name = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, fullName)
	if err != nil {
		return fmt.Errorf("remove repository %s: %w", fullName, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("remove repository %s: %w", fullName, driven.ErrRepoNotFound)
	}

	return nil
}

// GetByFullName retrieves a repository by its full name. Returns nil, nil if
// the repository does not exist.
func (r *RepoRepo) GetByFullName(ctx context.Context, fullName string) (*model.Repository, error) {
	const query = `
		SELECT id, full_name, enterprise, contributors, snapshot, last_update, added_at
		FROM repositories
		WHERE full_name = ?
	`

	repo, err := scanRepository(r.db.Reader.QueryRowContext(ctx, query, fullName))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get repository %s: %w", fullName, err)
	}

	return repo, nil
}

// ListAll returns all tracked repositories ordered by full name.
func (r *RepoRepo) ListAll(ctx context.Context) ([]model.Repository, error) {
	const query = `
		SELECT id, full_name, enterprise, contributors, snapshot, last_update, added_at
		FROM repositories
		ORDER BY full_name
	`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	defer rows.Close()

	var repos []model.Repository
	for rows.Next() {
		repo, err := scanRepository(rows)
		if err != nil {
			return nil, fmt.Errorf("scan repository: %w", err)
		}
		repos = append(repos, *repo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate repositories: %w", err)
	}

	return repos, nil
}

// SetSnapshot advances the repository checkpoint and stamps last_update.
// Returns ErrRepoNotFound if the repository does not exist.
func (r *RepoRepo) SetSnapshot(ctx context.Context, fullName string, snapshot string, lastUpdate time.Time) error {
	const query = `UPDATE repositories SET snapshot = ?, last_update = ? WHERE full_name = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, snapshot, formatTime(lastUpdate), fullName)
	if err != nil {
		return fmt.Errorf("set snapshot for %s: %w", fullName, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("set snapshot for %s: %w", fullName, driven.ErrRepoNotFound)
	}

	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRepository(s scanner) (*model.Repository, error) {
	var repo model.Repository
	var enterprise int
	var contributorsJSON string
	var lastUpdate, addedAt string

	err := s.Scan(&repo.ID, &repo.FullName, &enterprise, &contributorsJSON, &repo.Snapshot, &lastUpdate, &addedAt)
	if err != nil {
		return nil, err
	}

	repo.Enterprise = enterprise != 0

	if err := json.Unmarshal([]byte(contributorsJSON), &repo.Contributors); err != nil {
		return nil, fmt.Errorf("unmarshal contributors: %w", err)
	}

	if lastUpdate != "" {
		repo.LastUpdate, err = parseTime(lastUpdate)
		if err != nil {
			return nil, fmt.Errorf("parse last_update: %w", err)
		}
	}

	repo.AddedAt, err = parseTime(addedAt)
	if err != nil {
		return nil, fmt.Errorf("parse added_at: %w", err)
	}

	return &repo, nil
}

// formatTime stores timestamps as RFC3339 strings; the zero time becomes the
// empty string ("never updated").
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
