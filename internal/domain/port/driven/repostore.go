package driven

import (
	"context"
	"errors"
	"time"

	"github.com/ericfisherdev/contribsync/internal/domain/model"
)

// Sentinel errors returned by RepoStore implementations.
var (
	// ErrRepoNotFound indicates the requested repository does not exist.
	ErrRepoNotFound = errors.New("repository not found")

	// ErrRepoAlreadyExists indicates a repository with the same name already exists.
	ErrRepoAlreadyExists = errors.New("repository already exists")
)

// RepoStore defines the driven port for repository metadata persistence.
// Add returns ErrRepoAlreadyExists if the repository already exists.
// Remove and SetSnapshot return ErrRepoNotFound if it does not.
type RepoStore interface {
	Add(ctx context.Context, repo model.Repository) error
	Remove(ctx context.Context, fullName string) error
	GetByFullName(ctx context.Context, fullName string) (*model.Repository, error)
	ListAll(ctx context.Context) ([]model.Repository, error)

	// SetSnapshot advances the repository checkpoint and stamps last_update.
	// Called exactly once per successful sweep, after all merges persisted.
	SetSnapshot(ctx context.Context, fullName string, snapshot string, lastUpdate time.Time) error
}
