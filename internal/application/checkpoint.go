package application

import (
	"time"

	"github.com/ericfisherdev/contribsync/internal/domain/model"
)

// MaxEventPages caps how many event pages a single sweep may fetch. The cap
// bounds the work done for a repository that has never been synced, where no
// checkpoint exists to stop pagination.
const MaxEventPages = 3

// Checkpoint decides when a sweep must stop consuming the event feed: either
// because it caught up with the previously recorded snapshot, or because it
// ran past the lookback window.
type Checkpoint struct {
	snapshot    string
	windowStart time.Time
}

// NewCheckpoint builds a Checkpoint from a repository's stored snapshot id
// (empty string when the repository has never been synced) and the oldest
// event timestamp the sweep may still process.
func NewCheckpoint(snapshot string, windowStart time.Time) Checkpoint {
	return Checkpoint{snapshot: snapshot, windowStart: windowStart}
}

// Reached reports whether the event is the one recorded by the last
// successful sweep, meaning everything from here on has already been merged.
func (c Checkpoint) Reached(e model.Event) bool {
	return c.snapshot != "" && e.ID == c.snapshot
}

// Expired reports whether the event predates the lookback window.
func (c Checkpoint) Expired(e model.Event) bool {
	return e.CreatedAt.Before(c.windowStart)
}
