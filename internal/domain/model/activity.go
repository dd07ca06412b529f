package model

import (
	"strings"
	"time"
)

// MergeCommitPrefix marks a commit message produced by a branch merge.
// Commit records carry a derived Merged flag so the dashboard can separate
// merge commits from authored work.
const MergeCommitPrefix = "Merge branch"

// RepoActivity is one contributor's activity document for a single repository:
// direct commits to the trunk, pull requests, and issues. It is read once and
// written once per sweep; the store replaces the whole document atomically.
type RepoActivity struct {
	Commits      []CommitRecord      `json:"commits"`
	PullRequests []PullRequestRecord `json:"pull_requests"`
	Issues       []IssueRecord       `json:"issues"`
}

// PullRequestRecord tracks a single pull request the contributor touched.
// Number is the unique key within the document's pull request sequence.
// Details stays nil until a detail fetch has populated it.
type PullRequestRecord struct {
	Number   int             `json:"pr_number"`
	Details  *PRDetails      `json:"pr_details"`
	Commits  []CommitRecord  `json:"commits"`
	Comments []CommentRecord `json:"comments"`
}

// PRDetails is the aggregate metadata snapshot of a pull request.
type PRDetails struct {
	Title              string    `json:"title"`
	Number             int       `json:"number"`
	State              string    `json:"state"`
	Merged             bool      `json:"merged"`
	URL                string    `json:"url"`
	CreatedAt          time.Time `json:"date"`
	RequestedReviewers []string  `json:"requested_reviewers"`
	AssignedBy         string    `json:"assigned_by,omitempty"`
	AssignedTo         []string  `json:"assigned_to"`
	Labels             []string  `json:"labels"`
	Comments           int       `json:"comments"`
	ReviewComments     int       `json:"review_comments"`
	Commits            int       `json:"commits"`
	Additions          int       `json:"additions"`
	Deletions          int       `json:"deletions"`
	ChangedFiles       int       `json:"changed_files"`
}

// IssueType records the contributor's relation to an issue.
type IssueType string

const (
	IssueTypeCreated  IssueType = "created"
	IssueTypeAssigned IssueType = "assigned"
)

// IssueRecord tracks a single issue. Number is the unique key within the
// document's issue sequence.
type IssueRecord struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Number    int       `json:"number"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Labels    []string  `json:"labels"`
	State     string    `json:"state"`
	Type      IssueType `json:"type"`
}

// CommitRecord is a fully resolved commit with diff stats.
type CommitRecord struct {
	SHA     string       `json:"sha"`
	Message string       `json:"message"`
	Author  string       `json:"author"`
	Date    time.Time    `json:"date"`
	URL     string       `json:"url"`
	Merged  bool         `json:"merged"`
	Stats   CommitStats  `json:"stats"`
	Files   []CommitFile `json:"files"`
}

// CommitStats holds the commit-level diff line counts.
type CommitStats struct {
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
	Total     int `json:"total"`
}

// CommitFile is one file touched by a commit.
type CommitFile struct {
	Filename  string `json:"filename"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// IsMergeCommit reports whether a commit message marks a branch merge.
func IsMergeCommit(message string) bool {
	return strings.HasPrefix(message, MergeCommitPrefix)
}

// CommentState classifies a review comment by the review's verdict.
type CommentState string

const (
	CommentStateApproved         CommentState = "approved"
	CommentStateChangesRequested CommentState = "changes_requested"
	CommentStateCommented        CommentState = "commented"
)

// CommentRecord is one review comment left by the contributor. File is set
// only for inline review comments; Body may be empty for bare approvals.
type CommentRecord struct {
	State CommentState `json:"state"`
	URL   string       `json:"url"`
	Body  string       `json:"comment,omitempty"`
	Date  time.Time    `json:"date"`
	File  string       `json:"file,omitempty"`
}
