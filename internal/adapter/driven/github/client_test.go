package github_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ghAdapter "github.com/ericfisherdev/contribsync/internal/adapter/driven/github"
)

// newTestClient creates a Client backed by the given httptest handler.
func newTestClient(t *testing.T, handler http.Handler) (*ghAdapter.Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := ghAdapter.NewClientWithHTTPClient(server.Client(), server.URL+"/")
	require.NoError(t, err)

	return client, server
}

func TestFetchPRDetails(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/owner/repo/pulls/42", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"number": 42,
			"title": "Add feature X",
			"state": "closed",
			"merged": true,
			"html_url": "https://github.com/owner/repo/pull/42",
			"created_at": "2026-01-01T00:00:00Z",
			"requested_reviewers": [{"login": "carol"}],
			"assignee": {"login": "dave"},
			"assignees": [{"login": "alice"}],
			"labels": [{"name": "enhancement"}],
			"comments": 3,
			"review_comments": 5,
			"commits": 2,
			"additions": 120,
			"deletions": 40,
			"changed_files": 7
		}`)
	})

	client, _ := newTestClient(t, handler)
	details, err := client.FetchPRDetails(context.Background(), "owner/repo", 42)

	require.NoError(t, err)
	require.NotNil(t, details)
	assert.Equal(t, 42, details.Number)
	assert.Equal(t, "Add feature X", details.Title)
	assert.Equal(t, "closed", details.State)
	assert.True(t, details.Merged)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), details.CreatedAt)
	assert.Equal(t, []string{"carol"}, details.RequestedReviewers)
	assert.Equal(t, "dave", details.AssignedBy)
	assert.Equal(t, []string{"alice"}, details.AssignedTo)
	assert.Equal(t, []string{"enhancement"}, details.Labels)
	assert.Equal(t, 3, details.Comments)
	assert.Equal(t, 5, details.ReviewComments)
	assert.Equal(t, 2, details.Commits)
	assert.Equal(t, 120, details.Additions)
	assert.Equal(t, 40, details.Deletions)
	assert.Equal(t, 7, details.ChangedFiles)
}

func TestFetchPRCommits_Paginated(t *testing.T) {
	var server *httptest.Server
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/owner/repo/pulls/42/commits", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")

		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{
				"sha": "bbb",
				"author": {"login": "bob"},
				"commit": {"author": {"name": "Bob Roe"}}
			}]`)
			return
		}

		w.Header().Set("Link", fmt.Sprintf(`<%s/repos/owner/repo/pulls/42/commits?page=2>; rel="next"`, server.URL))
		fmt.Fprint(w, `[{
			"sha": "aaa",
			"author": {"login": "alice"},
			"commit": {"author": {"name": "Alice Doe"}}
		}]`)
	})

	client, srv := newTestClient(t, handler)
	server = srv

	refs, err := client.FetchPRCommits(context.Background(), "owner/repo", 42)

	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "aaa", refs[0].SHA)
	assert.Equal(t, "alice", refs[0].AuthorLogin)
	assert.Equal(t, "Alice Doe", refs[0].AuthorName)
	assert.Equal(t, "bbb", refs[1].SHA)
	assert.Equal(t, "bob", refs[1].AuthorLogin)
}

func TestFetchCommit(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/owner/repo/commits/abc123", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"sha": "abc123",
			"html_url": "https://github.com/owner/repo/commit/abc123",
			"commit": {
				"message": "fix off-by-one",
				"author": {"name": "Alice Doe", "date": "2026-02-01T08:00:00Z"},
				"committer": {"name": "Alice Doe", "date": "2026-02-01T09:00:00Z"}
			},
			"stats": {"additions": 3, "deletions": 1, "total": 4},
			"files": [{"filename": "main.go", "additions": 3, "deletions": 1}]
		}`)
	})

	client, _ := newTestClient(t, handler)
	rec, err := client.FetchCommit(context.Background(), "owner/repo", "abc123")

	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "abc123", rec.SHA)
	assert.Equal(t, "fix off-by-one", rec.Message)
	assert.Equal(t, "Alice Doe", rec.Author)
	// The commit date is the committer date, not the author date.
	assert.Equal(t, time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC), rec.Date)
	assert.False(t, rec.Merged)
	assert.Equal(t, 3, rec.Stats.Additions)
	assert.Equal(t, 1, rec.Stats.Deletions)
	assert.Equal(t, 4, rec.Stats.Total)
	require.Len(t, rec.Files, 1)
	assert.Equal(t, "main.go", rec.Files[0].Filename)
}

func TestFetchCommit_MergeFlag(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"sha": "def456",
			"commit": {
				"message": "Merge branch 'feature' into main",
				"author": {"name": "Alice Doe"}
			}
		}`)
	})

	client, _ := newTestClient(t, handler)
	rec, err := client.FetchCommit(context.Background(), "owner/repo", "def456")

	require.NoError(t, err)
	assert.True(t, rec.Merged)
}

func TestFetchReviewComments(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/owner/repo/pulls/42/reviews/900/comments", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{
			"user": {"login": "carol"},
			"body": "rename this",
			"html_url": "https://github.com/owner/repo/pull/42#discussion_r1",
			"path": "main.go",
			"updated_at": "2026-02-05T10:00:00Z"
		}]`)
	})

	client, _ := newTestClient(t, handler)
	refs, err := client.FetchReviewComments(context.Background(), "owner/repo", 42, 900)

	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "carol", refs[0].Author)
	assert.Equal(t, "rename this", refs[0].Body)
	assert.Equal(t, "main.go", refs[0].Path)
	assert.Equal(t, time.Date(2026, 2, 5, 10, 0, 0, 0, time.UTC), refs[0].UpdatedAt)
}

func TestFetchPullRequestsForCommit(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/owner/repo/commits/abc123/pulls", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"number": 42}, {"number": 43}]`)
	})

	client, _ := newTestClient(t, handler)
	numbers, err := client.FetchPullRequestsForCommit(context.Background(), "owner/repo", "abc123")

	require.NoError(t, err)
	assert.Equal(t, []int{42, 43}, numbers)
}

func TestFetchPullRequestsForCommit_DirectCommit(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[]`)
	})

	client, _ := newTestClient(t, handler)
	numbers, err := client.FetchPullRequestsForCommit(context.Background(), "owner/repo", "abc123")

	require.NoError(t, err)
	assert.Empty(t, numbers)
}

func TestFetchPRDetails_InvalidRepoName(t *testing.T) {
	client, _ := newTestClient(t, http.NotFoundHandler())

	_, err := client.FetchPRDetails(context.Background(), "not-a-full-name", 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected owner/repo")
}

func TestFetchPRDetails_ServerError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	client, _ := newTestClient(t, handler)
	_, err := client.FetchPRDetails(context.Background(), "owner/repo", 42)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "owner/repo#42")
}
