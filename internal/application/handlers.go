package application

import (
	"context"
	"log/slog"

	"github.com/ericfisherdev/contribsync/internal/domain/model"
	"github.com/ericfisherdev/contribsync/internal/domain/port/driven"
)

// HandleEvent dispatches an event to the handler for its kind and returns the
// extracted deltas. Secondary lookup failures are logged and degrade to
// missing data; a handler never aborts the sweep.
func HandleEvent(ctx context.Context, client driven.GitHubClient, repoFullName string, e model.Event) []Delta {
	switch e.Kind {
	case model.EventKindIssues:
		return HandleIssuesEvent(e)
	case model.EventKindPullRequest:
		return HandlePullRequestEvent(ctx, client, repoFullName, e)
	case model.EventKindPullRequestReview:
		return HandleReviewEvent(ctx, client, repoFullName, e)
	case model.EventKindPush:
		return HandlePushEvent(ctx, client, repoFullName, e)
	}
	return nil
}

// HandleIssuesEvent extracts the issue snapshot carried by the event. An
// "opened" action creates a new issue record; every other action (closed,
// reopened, labeled, ...) becomes an update keyed by issue number.
func HandleIssuesEvent(e model.Event) []Delta {
	p := e.Issues

	issueType := model.IssueTypeAssigned
	if p.Issue.Author == e.Actor {
		issueType = model.IssueTypeCreated
	}

	rec := model.IssueRecord{
		URL:       p.Issue.URL,
		Title:     p.Issue.Title,
		Number:    p.Issue.Number,
		CreatedAt: p.Issue.CreatedAt,
		UpdatedAt: p.Issue.UpdatedAt,
		Labels:    p.Issue.Labels,
		State:     p.Issue.State,
		Type:      issueType,
	}

	if p.Action == "opened" {
		return []Delta{{Username: e.Actor, NewIssue: &rec}}
	}
	return []Delta{{Username: e.Actor, IssueUpdate: &rec}}
}

// HandlePullRequestEvent extracts the PR snapshot carried by the event. An
// "opened" action creates a new PR record pre-populated with the actor's
// commits; every other action refreshes only the stored details snapshot.
func HandlePullRequestEvent(ctx context.Context, client driven.GitHubClient, repoFullName string, e model.Event) []Delta {
	p := e.PullRequest
	details := p.Details

	if p.Action != "opened" {
		return []Delta{{
			Username: e.Actor,
			PRUpdate: &PRUpdate{Number: details.Number, Details: &details},
		}}
	}

	rec := model.PullRequestRecord{
		Number:   details.Number,
		Details:  &details,
		Commits:  collectPRCommits(ctx, client, repoFullName, details.Number, e.Actor),
		Comments: []model.CommentRecord{},
	}
	return []Delta{{Username: e.Actor, NewPR: &rec}}
}

// HandleReviewEvent extracts the comment records produced by one review. A
// bare approval, or any review with a body, is a single comment taken from
// the review itself; changes_requested/commented reviews without a body carry
// their text as line comments, fetched and filtered to the acting user. The
// result is always an update keyed by PR number, with the PR's details
// refetched so aggregate counters stay current.
func HandleReviewEvent(ctx context.Context, client driven.GitHubClient, repoFullName string, e model.Event) []Delta {
	p := e.Review

	var comments []model.CommentRecord
	switch {
	case p.State == string(model.CommentStateApproved) || p.Body != "":
		comments = append(comments, model.CommentRecord{
			State: model.CommentState(p.State),
			URL:   p.URL,
			Body:  p.Body,
			Date:  p.SubmittedAt,
		})

	case p.State == string(model.CommentStateChangesRequested) || p.State == string(model.CommentStateCommented):
		refs, err := client.FetchReviewComments(ctx, repoFullName, p.PRNumber, p.ReviewID)
		if err != nil {
			slog.Warn("fetch review comments failed", "repo", repoFullName, "pr", p.PRNumber, "review", p.ReviewID, "error", err)
		}
		for _, ref := range refs {
			if ref.Author != e.Actor {
				continue
			}
			comments = append(comments, model.CommentRecord{
				State: model.CommentState(p.State),
				URL:   ref.URL,
				Body:  ref.Body,
				Date:  ref.UpdatedAt,
				File:  ref.Path,
			})
		}
	}

	upd := &PRUpdate{Number: p.PRNumber, Comments: comments}

	details, err := client.FetchPRDetails(ctx, repoFullName, p.PRNumber)
	if err != nil {
		slog.Warn("pr details refresh failed", "repo", repoFullName, "pr", p.PRNumber, "error", err)
	} else {
		upd.Details = details
	}

	return []Delta{{Username: e.Actor, PRUpdate: upd}}
}

// HandlePushEvent resolves whether the push belongs to a pull request by
// looking up the payload's last commit. Commits outside any PR become direct
// repository commits; commits of a PR replace that PR's commit list and
// refresh its details. Either way each commit is attributed to its git
// author, who may differ from the push actor.
func HandlePushEvent(ctx context.Context, client driven.GitHubClient, repoFullName string, e model.Event) []Delta {
	p := e.Push
	if len(p.Commits) == 0 {
		return nil
	}

	head := p.Commits[len(p.Commits)-1]
	prNumbers, err := client.FetchPullRequestsForCommit(ctx, repoFullName, head.SHA)
	if err != nil {
		slog.Warn("commit to pull request lookup failed", "repo", repoFullName, "sha", head.SHA, "error", err)
	}

	if len(prNumbers) == 0 {
		var deltas []Delta
		for _, c := range p.Commits {
			rec, err := client.FetchCommit(ctx, repoFullName, c.SHA)
			if err != nil {
				slog.Warn("fetch commit failed", "repo", repoFullName, "sha", c.SHA, "error", err)
				continue
			}
			deltas = append(deltas, Delta{Username: c.AuthorName, Commit: rec})
		}
		return deltas
	}

	prNumber := prNumbers[0]

	refs, err := client.FetchPRCommits(ctx, repoFullName, prNumber)
	if err != nil {
		slog.Warn("fetch pr commits failed", "repo", repoFullName, "pr", prNumber, "error", err)
		return nil
	}

	details, err := client.FetchPRDetails(ctx, repoFullName, prNumber)
	if err != nil {
		slog.Warn("pr details refresh failed", "repo", repoFullName, "pr", prNumber, "error", err)
	}

	var deltas []Delta
	for _, ref := range refs {
		rec, err := client.FetchCommit(ctx, repoFullName, ref.SHA)
		if err != nil {
			slog.Warn("fetch commit failed", "repo", repoFullName, "sha", ref.SHA, "error", err)
			continue
		}
		deltas = append(deltas, Delta{
			Username: ref.AuthorName,
			PRUpdate: &PRUpdate{
				Number:  prNumber,
				Details: details,
				Commits: []model.CommitRecord{*rec},
			},
		})
	}
	return deltas
}

// collectPRCommits fetches a pull request's commit list, keeps the commits
// authored by username, and resolves each into a full record. Fetch failures
// degrade to an empty/partial list.
func collectPRCommits(ctx context.Context, client driven.GitHubClient, repoFullName string, prNumber int, username string) []model.CommitRecord {
	refs, err := client.FetchPRCommits(ctx, repoFullName, prNumber)
	if err != nil {
		slog.Warn("fetch pr commits failed", "repo", repoFullName, "pr", prNumber, "error", err)
		return []model.CommitRecord{}
	}

	commits := []model.CommitRecord{}
	for _, ref := range refs {
		if ref.AuthorLogin != username {
			continue
		}
		rec, err := client.FetchCommit(ctx, repoFullName, ref.SHA)
		if err != nil {
			slog.Warn("fetch commit failed", "repo", repoFullName, "sha", ref.SHA, "error", err)
			continue
		}
		commits = append(commits, *rec)
	}
	return commits
}
