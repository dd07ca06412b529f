package github

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/contribsync/internal/domain/model"
)

// FetchEvents returns one page of the repository's public event feed, newest
// first, filtered to the recognized event kinds. exhausted reports whether
// the raw page was empty; a page of solely unrecognized kinds yields an empty
// slice with exhausted false, and pagination must continue past it. Events
// whose payload cannot be decoded are skipped with a warning rather than
// failing the page.
func (c *Client) FetchEvents(ctx context.Context, repoFullName string, page int) ([]model.Event, bool, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, false, err
	}

	opts := &gh.ListOptions{PerPage: eventPageSize, Page: page}

	events, resp, err := c.gh.Activity.ListRepositoryEvents(ctx, owner, repo, opts)
	if err != nil {
		return nil, false, fmt.Errorf("listing events for %s (page %d): %w", repoFullName, page, err)
	}

	logRateLimit(resp, repoFullName+"/events", page, len(events))

	mapped := make([]model.Event, 0, len(events))
	for _, ev := range events {
		e, ok, err := mapEvent(ev)
		if err != nil {
			slog.Warn("skipping undecodable event", "repo", repoFullName, "id", ev.GetID(), "type", ev.GetType(), "error", err)
			continue
		}
		if !ok {
			continue
		}
		mapped = append(mapped, e)
	}

	return mapped, len(events) == 0, nil
}

// mapEvent converts a go-github Event to the domain variant. ok is false for
// event kinds the sync engine does not recognize.
func mapEvent(ev *gh.Event) (model.Event, bool, error) {
	kind := model.EventKind(ev.GetType())
	switch kind {
	case model.EventKindIssues, model.EventKindPullRequest, model.EventKindPullRequestReview, model.EventKindPush:
	default:
		return model.Event{}, false, nil
	}

	payload, err := ev.ParsePayload()
	if err != nil {
		return model.Event{}, false, fmt.Errorf("parsing %s payload: %w", kind, err)
	}

	e := model.Event{
		ID:        ev.GetID(),
		Kind:      kind,
		Actor:     ev.GetActor().GetLogin(),
		CreatedAt: ev.GetCreatedAt().Time,
	}

	switch p := payload.(type) {
	case *gh.IssuesEvent:
		e.Issues = mapIssuesPayload(p)
	case *gh.PullRequestEvent:
		e.PullRequest = &model.PullRequestPayload{
			Action:  p.GetAction(),
			Details: mapPRDetails(p.GetPullRequest()),
		}
	case *gh.PullRequestReviewEvent:
		e.Review = mapReviewPayload(p)
	case *gh.PushEvent:
		e.Push = mapPushPayload(p)
	default:
		return model.Event{}, false, nil
	}

	return e, true, nil
}

// mapIssuesPayload converts a go-github IssuesEvent payload.
func mapIssuesPayload(p *gh.IssuesEvent) *model.IssuesPayload {
	issue := p.GetIssue()

	labels := make([]string, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		labels = append(labels, l.GetName())
	}

	return &model.IssuesPayload{
		Action: p.GetAction(),
		Issue: model.IssueInfo{
			URL:       issue.GetHTMLURL(),
			Title:     issue.GetTitle(),
			Number:    issue.GetNumber(),
			Author:    issue.GetUser().GetLogin(),
			State:     issue.GetState(),
			Labels:    labels,
			CreatedAt: issue.GetCreatedAt().Time,
			UpdatedAt: issue.GetUpdatedAt().Time,
		},
	}
}

// mapReviewPayload converts a go-github PullRequestReviewEvent payload.
// Review state is normalized to lower case; the REST API reports upper-case
// states while event payloads already carry lower case.
func mapReviewPayload(p *gh.PullRequestReviewEvent) *model.ReviewPayload {
	review := p.GetReview()

	return &model.ReviewPayload{
		PRNumber:    p.GetPullRequest().GetNumber(),
		ReviewID:    review.GetID(),
		State:       strings.ToLower(review.GetState()),
		Body:        review.GetBody(),
		URL:         review.GetHTMLURL(),
		SubmittedAt: review.GetSubmittedAt().Time,
	}
}

// mapPushPayload converts a go-github PushEvent payload.
func mapPushPayload(p *gh.PushEvent) *model.PushPayload {
	commits := make([]model.PushCommit, 0, len(p.Commits))
	for _, c := range p.Commits {
		commits = append(commits, model.PushCommit{
			SHA:        c.GetSHA(),
			Message:    c.GetMessage(),
			AuthorName: c.GetAuthor().GetName(),
		})
	}

	return &model.PushPayload{Commits: commits}
}
