// Package application contains the incremental sync engine: checkpointed
// event pagination, per-kind event handlers, delta accumulation, and the
// merge of accumulated deltas into persisted activity documents.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/contribsync/internal/domain/model"
	"github.com/ericfisherdev/contribsync/internal/domain/port/driven"
)

// ErrNoClient is returned when a repository's API host has no configured
// credential.
var ErrNoClient = errors.New("no github client configured for repository host")

// refreshRequest represents a manual sweep trigger. An empty repoFullName
// requests a sweep over every tracked repository.
type refreshRequest struct {
	repoFullName string
	done         chan error
}

// SyncService runs the polling loop: every interval it sweeps each tracked
// repository's new events and folds them into per-contributor activity
// documents. Repositories are swept strictly one at a time; one repository's
// failure never stops the cycle.
type SyncService struct {
	clients       *ClientSelector
	repoStore     driven.RepoStore
	activityStore driven.ActivityStore
	interval      time.Duration
	lookbackDays  int
	refreshCh     chan refreshRequest
}

// NewSyncService creates a SyncService with all required dependencies.
func NewSyncService(
	clients *ClientSelector,
	repoStore driven.RepoStore,
	activityStore driven.ActivityStore,
	interval time.Duration,
	lookbackDays int,
) *SyncService {
	return &SyncService{
		clients:       clients,
		repoStore:     repoStore,
		activityStore: activityStore,
		interval:      interval,
		lookbackDays:  lookbackDays,
		refreshCh:     make(chan refreshRequest),
	}
}

// Start begins the sync loop. It runs an immediate sweep, then sweeps on the
// configured interval, and also listens for manual refresh requests. Start
// blocks until the context is canceled.
func (s *SyncService) Start(ctx context.Context) {
	if err := s.syncAll(ctx); err != nil {
		slog.Error("initial sweep failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("sync service stopped")
			return
		case <-ticker.C:
			if err := s.syncAll(ctx); err != nil {
				slog.Error("sweep cycle failed", "error", err)
			}
		case req := <-s.refreshCh:
			req.done <- s.handleRefresh(ctx, req)
		}
	}
}

// RefreshRepo triggers a sweep for a single repository, bypassing the
// interval. It blocks until the sweep completes or the context is canceled.
func (s *SyncService) RefreshRepo(ctx context.Context, repoFullName string) error {
	return s.refresh(ctx, refreshRequest{repoFullName: repoFullName, done: make(chan error, 1)})
}

// RefreshAll triggers a sweep over every tracked repository, bypassing the
// interval. It blocks until the sweep completes or the context is canceled.
func (s *SyncService) RefreshAll(ctx context.Context) error {
	return s.refresh(ctx, refreshRequest{done: make(chan error, 1)})
}

func (s *SyncService) refresh(ctx context.Context, req refreshRequest) error {
	select {
	case s.refreshCh <- req:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// handleRefresh dispatches a manual refresh request.
func (s *SyncService) handleRefresh(ctx context.Context, req refreshRequest) error {
	if req.repoFullName != "" {
		repo, err := s.repoStore.GetByFullName(ctx, req.repoFullName)
		if err != nil {
			return err
		}
		if repo == nil {
			return fmt.Errorf("refresh %s: %w", req.repoFullName, driven.ErrRepoNotFound)
		}
		return s.SyncRepo(ctx, *repo)
	}
	return s.syncAll(ctx)
}

// syncAll sweeps every tracked repository in sequence.
func (s *SyncService) syncAll(ctx context.Context) error {
	start := time.Now()

	repos, err := s.repoStore.ListAll(ctx)
	if err != nil {
		return err
	}

	var sweepErrors int
	for _, repo := range repos {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := s.SyncRepo(ctx, repo); err != nil {
			slog.Error("repo sweep failed", "repo", repo.FullName, "error", err)
			sweepErrors++
		}
	}

	slog.Info("sweep cycle complete",
		"repos", len(repos),
		"errors", sweepErrors,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return nil
}

// SyncRepo runs one sweep over a repository's new events: paginate the feed
// up to the checkpoint, window, or page cap, accumulate deltas per user,
// merge them into the persisted documents, then advance the snapshot. Any
// error before the snapshot write leaves the checkpoint untouched, so the
// next cycle replays the same window.
func (s *SyncService) SyncRepo(ctx context.Context, repo model.Repository) error {
	client := s.clients.For(repo)
	if client == nil {
		return fmt.Errorf("sweep %s: %w", repo.FullName, ErrNoClient)
	}

	windowStart := time.Now().UTC().AddDate(0, 0, -s.lookbackDays)
	cp := NewCheckpoint(repo.Snapshot, windowStart)
	acc := NewAccumulator()

	var latestSnapshot string
	var processed int

	stop := false
	for page := 1; page <= MaxEventPages && !stop; page++ {
		events, exhausted, err := client.FetchEvents(ctx, repo.FullName, page)
		if err != nil {
			return fmt.Errorf("fetching events for %s (page %d): %w", repo.FullName, page, err)
		}

		for _, e := range events {
			// The first recognized event of the sweep is the newest one; it
			// decides between the up-to-date no-op and the snapshot the sweep
			// will commit. It need not sit on page 1: a whole page can be
			// unrecognized kinds.
			if latestSnapshot == "" {
				if cp.Reached(e) {
					slog.Info("repository up to date", "repo", repo.FullName, "snapshot", repo.Snapshot)
					return nil
				}
				latestSnapshot = e.ID
			}

			if cp.Reached(e) {
				slog.Debug("checkpoint reached", "repo", repo.FullName, "event", e.ID)
				stop = true
				break
			}
			if cp.Expired(e) {
				slog.Debug("lookback window reached", "repo", repo.FullName, "event", e.ID)
				stop = true
				break
			}

			for _, d := range HandleEvent(ctx, client, repo.FullName, e) {
				acc.Add(d)
			}
			processed++
		}

		// Only a truly empty raw page means the feed ran out. A page whose
		// entries were all unrecognized kinds comes back as an empty slice
		// and the sweep keeps paging.
		if exhausted {
			break
		}
	}

	if latestSnapshot == "" {
		slog.Info("no recognized events", "repo", repo.FullName)
		return nil
	}

	var merged, skipped int
	for _, username := range acc.Usernames() {
		if !repo.Tracks(username) {
			skipped++
			continue
		}

		doc, err := s.activityStore.Get(ctx, username, repo.FullName)
		if err != nil {
			return fmt.Errorf("loading activity for %s in %s: %w", username, repo.FullName, err)
		}
		if doc == nil {
			// First-time contributors get their baseline from a separate full
			// extraction; the incremental engine never seeds documents.
			slog.Warn("no baseline document, skipping user", "repo", repo.FullName, "user", username)
			skipped++
			continue
		}

		updated := MergeActivity(*doc, acc.Changes(username))
		if err := s.activityStore.Put(ctx, username, repo.FullName, updated); err != nil {
			return fmt.Errorf("storing activity for %s in %s: %w", username, repo.FullName, err)
		}
		merged++
	}

	if err := s.repoStore.SetSnapshot(ctx, repo.FullName, latestSnapshot, time.Now().UTC()); err != nil {
		return fmt.Errorf("advancing snapshot for %s: %w", repo.FullName, err)
	}

	slog.Info("sweep complete",
		"repo", repo.FullName,
		"events", processed,
		"users_merged", merged,
		"users_skipped", skipped,
		"snapshot", latestSnapshot,
	)

	return nil
}
