package application

import (
	"sort"

	"github.com/ericfisherdev/contribsync/internal/domain/model"
)

// Delta is one handler's extracted change for a single event, attributed to a
// username. Exactly one of the payload fields is non-nil: NewIssue and NewPR
// create a logical entity, IssueUpdate and PRUpdate revise an existing one
// keyed by its number, Commit is a direct repository commit.
type Delta struct {
	Username string

	NewIssue    *model.IssueRecord
	IssueUpdate *model.IssueRecord
	NewPR       *model.PullRequestRecord
	PRUpdate    *PRUpdate
	Commit      *model.CommitRecord
}

// PRUpdate is a partial revision of one pull request record. Details replaces
// the stored snapshot when non-nil; Commits and Comments accumulate across
// events targeting the same PR within a sweep.
type PRUpdate struct {
	Number   int
	Details  *model.PRDetails
	Commits  []model.CommitRecord
	Comments []model.CommentRecord
}

// UserChanges is the per-user working set built up over one sweep: new
// entities append to the fixed sequences, pending updates live in explicit
// maps keyed by entity number.
type UserChanges struct {
	Commits   []model.CommitRecord
	NewIssues []model.IssueRecord
	NewPRs    []model.PullRequestRecord

	IssueUpdates map[int]model.IssueRecord
	PRUpdates    map[int]*PRUpdate
}

// Accumulator collects handler deltas by username for the duration of one
// sweep. It is not safe for concurrent use; a sweep is single-threaded.
type Accumulator struct {
	byUser map[string]*UserChanges
}

// NewAccumulator creates an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{byUser: make(map[string]*UserChanges)}
}

// Add folds one delta into the working set of its user.
//
// Events arrive newest first, so an issue pending slot keeps the first record
// written: that is the most recent state of the issue seen in this sweep.
// PR pending slots combine partial fields instead: commits and comments
// accumulate, the details snapshot is overwritten by each fetch.
func (a *Accumulator) Add(d Delta) {
	ch, ok := a.byUser[d.Username]
	if !ok {
		ch = &UserChanges{
			IssueUpdates: make(map[int]model.IssueRecord),
			PRUpdates:    make(map[int]*PRUpdate),
		}
		a.byUser[d.Username] = ch
	}

	switch {
	case d.Commit != nil:
		ch.Commits = append(ch.Commits, *d.Commit)

	case d.NewIssue != nil:
		ch.NewIssues = append(ch.NewIssues, *d.NewIssue)

	case d.NewPR != nil:
		ch.NewPRs = append(ch.NewPRs, *d.NewPR)

	case d.IssueUpdate != nil:
		if _, seen := ch.IssueUpdates[d.IssueUpdate.Number]; !seen {
			ch.IssueUpdates[d.IssueUpdate.Number] = *d.IssueUpdate
		}

	case d.PRUpdate != nil:
		upd, seen := ch.PRUpdates[d.PRUpdate.Number]
		if !seen {
			upd = &PRUpdate{Number: d.PRUpdate.Number}
			ch.PRUpdates[d.PRUpdate.Number] = upd
		}
		if d.PRUpdate.Details != nil {
			upd.Details = d.PRUpdate.Details
		}
		upd.Commits = append(upd.Commits, d.PRUpdate.Commits...)
		upd.Comments = append(upd.Comments, d.PRUpdate.Comments...)
	}
}

// Usernames returns every user with accumulated changes, sorted so merge
// order (and therefore persistence order) is deterministic.
func (a *Accumulator) Usernames() []string {
	names := make([]string, 0, len(a.byUser))
	for name := range a.byUser {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Changes returns the working set for a username, or nil if the sweep saw no
// activity from them.
func (a *Accumulator) Changes(username string) *UserChanges {
	return a.byUser[username]
}
