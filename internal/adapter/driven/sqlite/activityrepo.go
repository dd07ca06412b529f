package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/contribsync/internal/domain/model"
	"github.com/ericfisherdev/contribsync/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ActivityStore = (*ActivityRepo)(nil)

// ActivityRepo is the SQLite implementation of the ActivityStore port. Each
// (username, repository) document is one row holding the full JSON document,
// replaced atomically on every Put. This mirrors the single-document replace
// guarantee the merger relies on.
type ActivityRepo struct {
	db *DB
}

// NewActivityRepo creates a new ActivityRepo backed by the given DB.
func NewActivityRepo(db *DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

// Get returns a contributor's activity document for one repository, or
// nil, nil when no document exists.
func (r *ActivityRepo) Get(ctx context.Context, username, repoFullName string) (*model.RepoActivity, error) {
	const query = `
		SELECT document
		FROM activity_documents
		WHERE username = ? AND repo_full_name = ?
	`

	var raw string
	err := r.db.Reader.QueryRowContext(ctx, query, username, repoFullName).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get activity for %s in %s: %w", username, repoFullName, err)
	}

	var doc model.RepoActivity
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("unmarshal activity for %s in %s: %w", username, repoFullName, err)
	}

	return &doc, nil
}

// Put replaces a contributor's activity document for one repository.
func (r *ActivityRepo) Put(ctx context.Context, username, repoFullName string, doc model.RepoActivity) error {
	const query = `
		INSERT INTO activity_documents (username, repo_full_name, document, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(username, repo_full_name) DO UPDATE SET
			document = excluded.document,
			updated_at = excluded.updated_at
	`

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal activity for %s in %s: %w", username, repoFullName, err)
	}

	_, err = r.db.Writer.ExecContext(ctx, query,
		username, repoFullName, string(raw), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("put activity for %s in %s: %w", username, repoFullName, err)
	}

	return nil
}
