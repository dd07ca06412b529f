package driven

import (
	"context"

	"github.com/ericfisherdev/contribsync/internal/domain/model"
)

// GitHubClient defines the driven port for the GitHub API surface the sync
// engine consumes. One implementation exists per API host; the application
// layer selects the public or enterprise client per repository.
//
// FetchEvents is the only call whose failure aborts a sweep; every other
// method backs a secondary lookup whose failure the caller logs and treats
// as missing data.
type GitHubClient interface {
	// FetchEvents returns one page of the repository's public event feed,
	// newest first, filtered to the recognized event kinds. The returned
	// slice may be empty while the feed still has pages: most feed entries
	// are unrecognized kinds. exhausted is true only when the raw page
	// itself was empty, meaning no further pages exist.
	FetchEvents(ctx context.Context, repoFullName string, page int) (events []model.Event, exhausted bool, err error)

	// FetchPRDetails returns the current aggregate metadata of a pull request.
	FetchPRDetails(ctx context.Context, repoFullName string, number int) (*model.PRDetails, error)

	// FetchPRCommits returns the shallow commit list of a pull request.
	FetchPRCommits(ctx context.Context, repoFullName string, number int) ([]model.PRCommitRef, error)

	// FetchCommit resolves a commit sha into a full record with diff stats.
	FetchCommit(ctx context.Context, repoFullName string, sha string) (*model.CommitRecord, error)

	// FetchReviewComments returns the line comments attached to one review.
	FetchReviewComments(ctx context.Context, repoFullName string, prNumber int, reviewID int64) ([]model.ReviewCommentRef, error)

	// FetchPullRequestsForCommit returns the numbers of the pull requests
	// associated with a commit, ordered as the API delivers them. An empty
	// slice means the commit landed directly on a branch.
	FetchPullRequestsForCommit(ctx context.Context, repoFullName string, sha string) ([]int, error)
}
