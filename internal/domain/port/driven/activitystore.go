package driven

import (
	"context"

	"github.com/ericfisherdev/contribsync/internal/domain/model"
)

// ActivityStore defines the driven port for per-contributor activity
// documents, one document per (username, repository) pair.
//
// Get returns nil, nil when no document exists: the merger skips such users
// because baseline documents are seeded by an external extraction, never by
// the sync engine. Put replaces the whole document atomically.
type ActivityStore interface {
	Get(ctx context.Context, username, repoFullName string) (*model.RepoActivity, error)
	Put(ctx context.Context, username, repoFullName string, doc model.RepoActivity) error
}
