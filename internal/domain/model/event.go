package model

import "time"

// EventKind enumerates the repository event kinds the sync engine recognizes.
// All other kinds in the upstream feed are filtered out by the adapter.
type EventKind string

const (
	EventKindIssues            EventKind = "IssuesEvent"
	EventKindPullRequest       EventKind = "PullRequestEvent"
	EventKindPullRequestReview EventKind = "PullRequestReviewEvent"
	EventKindPush              EventKind = "PushEvent"
)

// Event is one entry of a repository's public event feed, already narrowed to
// a recognized kind. Exactly one payload pointer is non-nil, matching Kind.
type Event struct {
	ID        string
	Kind      EventKind
	Actor     string
	CreatedAt time.Time

	Issues      *IssuesPayload
	PullRequest *PullRequestPayload
	Review      *ReviewPayload
	Push        *PushPayload
}

// IssuesPayload carries the issue state at the time of the event.
type IssuesPayload struct {
	Action string
	Issue  IssueInfo
}

// IssueInfo is the issue snapshot embedded in an issues event.
type IssueInfo struct {
	URL       string
	Title     string
	Number    int
	Author    string
	State     string
	Labels    []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PullRequestPayload carries the full PR snapshot embedded in a pull request
// event. The embedded snapshot is complete, so no detail refetch is needed.
type PullRequestPayload struct {
	Action  string
	Details PRDetails
}

// ReviewPayload carries the review submitted by a pull request review event.
// State is normalized to lower case by the adapter.
type ReviewPayload struct {
	PRNumber    int
	ReviewID    int64
	State       string
	Body        string
	URL         string
	SubmittedAt time.Time
}

// PushPayload carries the commits of a push event. Commits are listed oldest
// first as delivered by the feed; only sha, message, and author name are
// present, full details are resolved lazily.
type PushPayload struct {
	Commits []PushCommit
}

// PushCommit is the shallow commit reference embedded in a push payload.
// AuthorName is the git author identity, which may differ from the push actor.
type PushCommit struct {
	SHA        string
	Message    string
	AuthorName string
}
