package application

import (
	"slices"
	"sort"

	"github.com/ericfisherdev/contribsync/internal/domain/model"
)

// MergeActivity folds one user's accumulated changes into their persisted
// activity document and returns the result. The input document is not
// mutated, so replaying the same changes against the same starting document
// always yields an identical result.
//
// Reconciliation order:
//  1. New commits, pull requests, and issues append to their sequences.
//  2. An existing issue whose number has a pending update is replaced in
//     place by the newer record.
//  3. An existing PR whose number has a pending update gets its details
//     replaced (when refetched), its commit list replaced (when commits were
//     collected), and the new comments appended.
//  4. PR pending updates left unconsumed belong to PRs observed only through
//     review or push events in this window; they append as new PR records.
//
// Issue pending updates left unconsumed target issues absent from the
// baseline document and are dropped.
func MergeActivity(doc model.RepoActivity, ch *UserChanges) model.RepoActivity {
	out := model.RepoActivity{
		Commits:      append(slices.Clone(doc.Commits), ch.Commits...),
		PullRequests: append(slices.Clone(doc.PullRequests), ch.NewPRs...),
		Issues:       append(slices.Clone(doc.Issues), ch.NewIssues...),
	}

	for i, issue := range out.Issues {
		if upd, ok := ch.IssueUpdates[issue.Number]; ok {
			out.Issues[i] = upd
		}
	}

	consumed := make(map[int]bool, len(ch.PRUpdates))
	for i := range out.PullRequests {
		pr := &out.PullRequests[i]
		upd, ok := ch.PRUpdates[pr.Number]
		if !ok || consumed[pr.Number] {
			continue
		}
		consumed[pr.Number] = true

		if upd.Details != nil {
			pr.Details = upd.Details
		}
		if len(upd.Commits) > 0 {
			pr.Commits = upd.Commits
		}
		if len(upd.Comments) > 0 {
			pr.Comments = append(slices.Clone(pr.Comments), upd.Comments...)
		}
	}

	var leftover []int
	for number := range ch.PRUpdates {
		if !consumed[number] {
			leftover = append(leftover, number)
		}
	}
	sort.Ints(leftover)

	for _, number := range leftover {
		upd := ch.PRUpdates[number]
		out.PullRequests = append(out.PullRequests, model.PullRequestRecord{
			Number:   number,
			Details:  upd.Details,
			Commits:  upd.Commits,
			Comments: upd.Comments,
		})
	}

	return out
}
