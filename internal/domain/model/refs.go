package model

import "time"

// PRCommitRef is a shallow entry of a pull request's commit list. AuthorLogin
// is empty when the commit author has no linked GitHub account.
type PRCommitRef struct {
	SHA         string
	AuthorLogin string
	AuthorName  string
}

// ReviewCommentRef is one inline comment fetched from a review, before it is
// folded into a contributor's CommentRecord.
type ReviewCommentRef struct {
	Author    string
	Body      string
	URL       string
	Path      string
	UpdatedAt time.Time
}
