package application_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/contribsync/internal/application"
	"github.com/ericfisherdev/contribsync/internal/domain/model"
)

func TestAccumulator_AppendsNewEntities(t *testing.T) {
	acc := application.NewAccumulator()

	acc.Add(application.Delta{Username: "alice", Commit: &model.CommitRecord{SHA: "aaa"}})
	acc.Add(application.Delta{Username: "alice", Commit: &model.CommitRecord{SHA: "bbb"}})
	acc.Add(application.Delta{Username: "alice", NewIssue: &model.IssueRecord{Number: 7}})
	acc.Add(application.Delta{Username: "alice", NewPR: &model.PullRequestRecord{Number: 42}})

	ch := acc.Changes("alice")
	require.NotNil(t, ch)
	assert.Len(t, ch.Commits, 2)
	assert.Len(t, ch.NewIssues, 1)
	assert.Len(t, ch.NewPRs, 1)
}

// TestAccumulator_IssueUpdateKeepsFirst verifies that the first update seen
// for an issue wins. Events are processed newest first, so the first record
// written is the issue's most recent state.
func TestAccumulator_IssueUpdateKeepsFirst(t *testing.T) {
	acc := application.NewAccumulator()

	acc.Add(application.Delta{Username: "alice", IssueUpdate: &model.IssueRecord{Number: 7, State: "closed"}})
	acc.Add(application.Delta{Username: "alice", IssueUpdate: &model.IssueRecord{Number: 7, State: "open"}})

	ch := acc.Changes("alice")
	require.NotNil(t, ch)
	require.Contains(t, ch.IssueUpdates, 7)
	assert.Equal(t, "closed", ch.IssueUpdates[7].State)
}

// TestAccumulator_PRUpdateCombines verifies that updates targeting the same
// PR combine: commits and comments accumulate while the details snapshot is
// overwritten by each non-nil fetch.
func TestAccumulator_PRUpdateCombines(t *testing.T) {
	acc := application.NewAccumulator()

	acc.Add(application.Delta{Username: "alice", PRUpdate: &application.PRUpdate{
		Number:   42,
		Details:  &model.PRDetails{Number: 42, State: "closed", Merged: true},
		Commits:  []model.CommitRecord{{SHA: "aaa"}},
		Comments: []model.CommentRecord{{State: model.CommentStateApproved}},
	}})
	acc.Add(application.Delta{Username: "alice", PRUpdate: &application.PRUpdate{
		Number:  42,
		Commits: []model.CommitRecord{{SHA: "bbb"}},
	}})

	ch := acc.Changes("alice")
	require.NotNil(t, ch)
	require.Contains(t, ch.PRUpdates, 42)

	upd := ch.PRUpdates[42]
	require.NotNil(t, upd.Details)
	assert.True(t, upd.Details.Merged)
	assert.Len(t, upd.Commits, 2)
	assert.Len(t, upd.Comments, 1)
}

// TestAccumulator_PRUpdateDetailsNotClearedByNil verifies that a later
// update without a details snapshot does not erase an earlier one.
func TestAccumulator_PRUpdateDetailsNotClearedByNil(t *testing.T) {
	acc := application.NewAccumulator()

	acc.Add(application.Delta{Username: "alice", PRUpdate: &application.PRUpdate{
		Number:  42,
		Details: &model.PRDetails{Number: 42, Title: "feature"},
	}})
	acc.Add(application.Delta{Username: "alice", PRUpdate: &application.PRUpdate{
		Number:   42,
		Comments: []model.CommentRecord{{State: model.CommentStateCommented}},
	}})

	upd := acc.Changes("alice").PRUpdates[42]
	require.NotNil(t, upd.Details)
	assert.Equal(t, "feature", upd.Details.Title)
}

func TestAccumulator_UsernamesSorted(t *testing.T) {
	acc := application.NewAccumulator()

	acc.Add(application.Delta{Username: "carol", Commit: &model.CommitRecord{SHA: "ccc"}})
	acc.Add(application.Delta{Username: "alice", Commit: &model.CommitRecord{SHA: "aaa"}})
	acc.Add(application.Delta{Username: "bob", Commit: &model.CommitRecord{SHA: "bbb"}})

	assert.Equal(t, []string{"alice", "bob", "carol"}, acc.Usernames())
}

func TestAccumulator_ChangesUnknownUser(t *testing.T) {
	acc := application.NewAccumulator()

	assert.Nil(t, acc.Changes("nobody"))
	assert.Empty(t, acc.Usernames())
}
