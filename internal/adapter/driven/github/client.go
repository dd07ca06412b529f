// Package github implements the GitHubClient port using the go-github library.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/contribsync/internal/domain/model"
	"github.com/ericfisherdev/contribsync/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubClient = (*Client)(nil)

// eventPageSize is the fixed per_page value for every paginated request.
const eventPageSize = 100

// Client implements the driven.GitHubClient port using the go-github library.
// One Client exists per API host; the application layer selects between the
// public and enterprise instance per repository.
type Client struct {
	gh *gh.Client
}

// NewClient creates a GitHub API client for api.github.com with the
// following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
func NewClient(token string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	return &Client{gh: client}
}

// NewEnterpriseClient creates a client for a GitHub Enterprise host with the
// same transport stack as NewClient. baseURL is the enterprise API root
// (e.g. "https://github.example.com/api/v3/").
func NewEnterpriseClient(token, baseURL string) (*Client, error) {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)

	client, err := gh.NewClient(rateLimitClient).WithAuthToken(token).WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, fmt.Errorf("configuring enterprise base URL %q: %w", baseURL, err)
	}

	return &Client{gh: client}, nil
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{gh: client}, nil
}

// FetchPRDetails returns the current aggregate metadata of a pull request.
func (c *Client) FetchPRDetails(ctx context.Context, repoFullName string, number int) (*model.PRDetails, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	pr, resp, err := c.gh.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("fetching PR details for %s#%d: %w", repoFullName, number, err)
	}

	logRateLimit(resp, repoFullName+"/pr-details", 0, 1)

	details := mapPRDetails(pr)
	return &details, nil
}

// FetchPRCommits returns the shallow commit list of a pull request.
// It handles pagination automatically.
func (c *Client) FetchPRCommits(ctx context.Context, repoFullName string, number int) ([]model.PRCommitRef, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	opts := &gh.ListOptions{PerPage: eventPageSize}
	var allRefs []model.PRCommitRef

	for {
		commits, resp, err := c.gh.PullRequests.ListCommits(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing commits for %s#%d (page %d): %w", repoFullName, number, opts.Page, err)
		}

		for _, rc := range commits {
			allRefs = append(allRefs, model.PRCommitRef{
				SHA:         rc.GetSHA(),
				AuthorLogin: rc.GetAuthor().GetLogin(),
				AuthorName:  rc.GetCommit().GetAuthor().GetName(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allRefs, nil
}

// FetchCommit resolves a commit sha into a full record with diff stats and
// touched files. The merge flag is derived from the commit message prefix.
func (c *Client) FetchCommit(ctx context.Context, repoFullName string, sha string) (*model.CommitRecord, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	rc, resp, err := c.gh.Repositories.GetCommit(ctx, owner, repo, sha, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching commit %s@%s: %w", repoFullName, sha, err)
	}

	logRateLimit(resp, repoFullName+"/commit", 0, 1)

	files := make([]model.CommitFile, 0, len(rc.Files))
	for _, f := range rc.Files {
		files = append(files, model.CommitFile{
			Filename:  f.GetFilename(),
			Additions: f.GetAdditions(),
			Deletions: f.GetDeletions(),
		})
	}

	message := rc.GetCommit().GetMessage()

	return &model.CommitRecord{
		SHA:     rc.GetSHA(),
		Message: message,
		Author:  rc.GetCommit().GetAuthor().GetName(),
		Date:    rc.GetCommit().GetCommitter().GetDate().Time,
		URL:     rc.GetHTMLURL(),
		Merged:  model.IsMergeCommit(message),
		Stats: model.CommitStats{
			Additions: rc.GetStats().GetAdditions(),
			Deletions: rc.GetStats().GetDeletions(),
			Total:     rc.GetStats().GetTotal(),
		},
		Files: files,
	}, nil
}

// FetchReviewComments returns the line comments attached to one review.
// It handles pagination automatically.
func (c *Client) FetchReviewComments(ctx context.Context, repoFullName string, prNumber int, reviewID int64) ([]model.ReviewCommentRef, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	opts := &gh.ListOptions{PerPage: eventPageSize}
	var allRefs []model.ReviewCommentRef

	for {
		comments, resp, err := c.gh.PullRequests.ListReviewComments(ctx, owner, repo, prNumber, reviewID, opts)
		if err != nil {
			return nil, fmt.Errorf("listing comments for review %d on %s#%d (page %d): %w", reviewID, repoFullName, prNumber, opts.Page, err)
		}

		for _, comment := range comments {
			allRefs = append(allRefs, model.ReviewCommentRef{
				Author:    comment.GetUser().GetLogin(),
				Body:      comment.GetBody(),
				URL:       comment.GetHTMLURL(),
				Path:      comment.GetPath(),
				UpdatedAt: comment.GetUpdatedAt().Time,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allRefs, nil
}

// FetchPullRequestsForCommit returns the numbers of the pull requests
// associated with a commit. An empty slice means the commit landed directly
// on a branch.
func (c *Client) FetchPullRequestsForCommit(ctx context.Context, repoFullName string, sha string) ([]int, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	opts := &gh.ListOptions{PerPage: eventPageSize}
	prs, resp, err := c.gh.PullRequests.ListPullRequestsWithCommit(ctx, owner, repo, sha, opts)
	if err != nil {
		return nil, fmt.Errorf("listing pull requests for commit %s@%s: %w", repoFullName, sha, err)
	}

	logRateLimit(resp, repoFullName+"/commit-pulls", 0, len(prs))

	numbers := make([]int, 0, len(prs))
	for _, pr := range prs {
		numbers = append(numbers, pr.GetNumber())
	}

	return numbers, nil
}

// mapPRDetails converts a go-github PullRequest to the stored details
// snapshot. It uses GetXxx() helper methods exclusively to avoid nil pointer
// panics; the same shape is produced whether the source is an event payload
// or a detail fetch.
func mapPRDetails(pr *gh.PullRequest) model.PRDetails {
	labels := make([]string, 0, len(pr.Labels))
	for _, l := range pr.Labels {
		labels = append(labels, l.GetName())
	}

	reviewers := make([]string, 0, len(pr.RequestedReviewers))
	for _, r := range pr.RequestedReviewers {
		reviewers = append(reviewers, r.GetLogin())
	}

	assignedTo := make([]string, 0, len(pr.Assignees))
	for _, a := range pr.Assignees {
		assignedTo = append(assignedTo, a.GetLogin())
	}

	return model.PRDetails{
		Title:              pr.GetTitle(),
		Number:             pr.GetNumber(),
		State:              pr.GetState(),
		Merged:             pr.GetMerged(),
		URL:                pr.GetHTMLURL(),
		CreatedAt:          pr.GetCreatedAt().Time,
		RequestedReviewers: reviewers,
		AssignedBy:         pr.GetAssignee().GetLogin(),
		AssignedTo:         assignedTo,
		Labels:             labels,
		Comments:           pr.GetComments(),
		ReviewComments:     pr.GetReviewComments(),
		Commits:            pr.GetCommits(),
		Additions:          pr.GetAdditions(),
		Deletions:          pr.GetDeletions(),
		ChangedFiles:       pr.GetChangedFiles(),
	}
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

// splitRepo splits a "owner/repo" string into its two components.
func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}
