package model

import (
	"slices"
	"time"
)

// Repository is a GitHub repository tracked by contribsync. Snapshot holds
// the id of the newest event already folded into persisted activity documents;
// the empty string means the repository has never been synced. Snapshot and
// LastUpdate move only after a fully successful sweep.
type Repository struct {
	ID           int64
	FullName     string
	Enterprise   bool
	Contributors []string
	Snapshot     string
	LastUpdate   time.Time
	AddedAt      time.Time
}

// Tracks reports whether username is one of the repository's tracked
// contributors. Activity by anyone else is observed but never persisted.
func (r Repository) Tracks(username string) bool {
	return slices.Contains(r.Contributors, username)
}
