package application_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/contribsync/internal/application"
	"github.com/ericfisherdev/contribsync/internal/domain/model"
)

func TestMergeActivity_AppendsNewEntities(t *testing.T) {
	doc := model.RepoActivity{
		Commits: []model.CommitRecord{{SHA: "old"}},
		Issues:  []model.IssueRecord{{Number: 1}},
	}
	ch := &application.UserChanges{
		Commits:   []model.CommitRecord{{SHA: "new"}},
		NewIssues: []model.IssueRecord{{Number: 2}},
		NewPRs:    []model.PullRequestRecord{{Number: 42}},
	}

	out := application.MergeActivity(doc, ch)

	require.Len(t, out.Commits, 2)
	assert.Equal(t, "old", out.Commits[0].SHA)
	assert.Equal(t, "new", out.Commits[1].SHA)
	require.Len(t, out.Issues, 2)
	require.Len(t, out.PullRequests, 1)
	assert.Equal(t, 42, out.PullRequests[0].Number)
}

func TestMergeActivity_ReplacesIssueInPlace(t *testing.T) {
	doc := model.RepoActivity{
		Issues: []model.IssueRecord{
			{Number: 1, State: "open", Title: "first"},
			{Number: 2, State: "open", Title: "second"},
		},
	}
	ch := &application.UserChanges{
		IssueUpdates: map[int]model.IssueRecord{
			2: {Number: 2, State: "closed", Title: "second"},
		},
	}

	out := application.MergeActivity(doc, ch)

	require.Len(t, out.Issues, 2)
	assert.Equal(t, "open", out.Issues[0].State)
	assert.Equal(t, "closed", out.Issues[1].State)
}

// TestMergeActivity_DropsUnmatchedIssueUpdate verifies that an update for an
// issue absent from the document is discarded rather than appended.
func TestMergeActivity_DropsUnmatchedIssueUpdate(t *testing.T) {
	doc := model.RepoActivity{}
	ch := &application.UserChanges{
		IssueUpdates: map[int]model.IssueRecord{
			9: {Number: 9, State: "closed"},
		},
	}

	out := application.MergeActivity(doc, ch)

	assert.Empty(t, out.Issues)
	assert.Empty(t, out.PullRequests)
}

func TestMergeActivity_UpdatesExistingPR(t *testing.T) {
	doc := model.RepoActivity{
		PullRequests: []model.PullRequestRecord{{
			Number:   42,
			Details:  &model.PRDetails{Number: 42, State: "open"},
			Commits:  []model.CommitRecord{{SHA: "stale"}},
			Comments: []model.CommentRecord{{State: model.CommentStateCommented}},
		}},
	}
	ch := &application.UserChanges{
		PRUpdates: map[int]*application.PRUpdate{
			42: {
				Number:   42,
				Details:  &model.PRDetails{Number: 42, State: "closed", Merged: true},
				Commits:  []model.CommitRecord{{SHA: "aaa"}, {SHA: "bbb"}},
				Comments: []model.CommentRecord{{State: model.CommentStateApproved}},
			},
		},
	}

	out := application.MergeActivity(doc, ch)

	require.Len(t, out.PullRequests, 1)
	pr := out.PullRequests[0]
	require.NotNil(t, pr.Details)
	assert.True(t, pr.Details.Merged)
	require.Len(t, pr.Commits, 2)
	assert.Equal(t, "aaa", pr.Commits[0].SHA)
	require.Len(t, pr.Comments, 2)
	assert.Equal(t, model.CommentStateApproved, pr.Comments[1].State)
}

// TestMergeActivity_PartialPRUpdateKeepsStoredFields verifies that an update
// with no details and no commits leaves those stored fields untouched.
func TestMergeActivity_PartialPRUpdateKeepsStoredFields(t *testing.T) {
	doc := model.RepoActivity{
		PullRequests: []model.PullRequestRecord{{
			Number:  42,
			Details: &model.PRDetails{Number: 42, Title: "feature"},
			Commits: []model.CommitRecord{{SHA: "aaa"}},
		}},
	}
	ch := &application.UserChanges{
		PRUpdates: map[int]*application.PRUpdate{
			42: {Number: 42, Comments: []model.CommentRecord{{State: model.CommentStateCommented}}},
		},
	}

	out := application.MergeActivity(doc, ch)

	pr := out.PullRequests[0]
	require.NotNil(t, pr.Details)
	assert.Equal(t, "feature", pr.Details.Title)
	require.Len(t, pr.Commits, 1)
	require.Len(t, pr.Comments, 1)
}

// TestMergeActivity_LeftoverPRUpdatesAppend verifies that updates for PRs not
// in the document become new records, in ascending number order.
func TestMergeActivity_LeftoverPRUpdatesAppend(t *testing.T) {
	doc := model.RepoActivity{
		PullRequests: []model.PullRequestRecord{{Number: 1}},
	}
	ch := &application.UserChanges{
		PRUpdates: map[int]*application.PRUpdate{
			50: {Number: 50, Commits: []model.CommitRecord{{SHA: "eee"}}},
			7:  {Number: 7, Details: &model.PRDetails{Number: 7}},
		},
	}

	out := application.MergeActivity(doc, ch)

	require.Len(t, out.PullRequests, 3)
	assert.Equal(t, 1, out.PullRequests[0].Number)
	assert.Equal(t, 7, out.PullRequests[1].Number)
	assert.Equal(t, 50, out.PullRequests[2].Number)
}

// TestMergeActivity_FirstMatchOnly verifies that a duplicate PR number in the
// document consumes the update once; the second record stays untouched.
func TestMergeActivity_FirstMatchOnly(t *testing.T) {
	doc := model.RepoActivity{
		PullRequests: []model.PullRequestRecord{
			{Number: 42, Commits: []model.CommitRecord{{SHA: "first"}}},
			{Number: 42, Commits: []model.CommitRecord{{SHA: "second"}}},
		},
	}
	ch := &application.UserChanges{
		PRUpdates: map[int]*application.PRUpdate{
			42: {Number: 42, Commits: []model.CommitRecord{{SHA: "new"}}},
		},
	}

	out := application.MergeActivity(doc, ch)

	require.Len(t, out.PullRequests, 2)
	assert.Equal(t, "new", out.PullRequests[0].Commits[0].SHA)
	assert.Equal(t, "second", out.PullRequests[1].Commits[0].SHA)
}

// TestMergeActivity_Idempotent verifies that merging the same changes into
// the same starting document twice yields identical results and leaves the
// input untouched.
func TestMergeActivity_Idempotent(t *testing.T) {
	doc := model.RepoActivity{
		Commits: []model.CommitRecord{{SHA: "old"}},
		Issues:  []model.IssueRecord{{Number: 1, State: "open"}},
		PullRequests: []model.PullRequestRecord{{
			Number:   42,
			Comments: []model.CommentRecord{{State: model.CommentStateCommented}},
		}},
	}
	ch := &application.UserChanges{
		Commits: []model.CommitRecord{{SHA: "new"}},
		IssueUpdates: map[int]model.IssueRecord{
			1: {Number: 1, State: "closed"},
		},
		PRUpdates: map[int]*application.PRUpdate{
			42: {Number: 42, Comments: []model.CommentRecord{{State: model.CommentStateApproved}}},
		},
	}

	first := application.MergeActivity(doc, ch)
	second := application.MergeActivity(doc, ch)

	assert.Equal(t, first, second)
	assert.Len(t, doc.Commits, 1)
	assert.Equal(t, "open", doc.Issues[0].State)
	assert.Len(t, doc.PullRequests[0].Comments, 1)
}
