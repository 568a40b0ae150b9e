package domain

import "time"

// Source is a citation pointing back at the course material a piece of an
// answer was drawn from.
type Source struct {
	Label string
	Link  string
}

// Turn is one query/answer exchange within a session.
type Turn struct {
	Query     string
	Answer    string
	Sources   []Source
	CreatedAt time.Time
}

// QueryResult is the collaborator-facing outcome of a single query. It is
// produced fresh per query and not persisted beyond the session's turn
// record.
type QueryResult struct {
	Answer    string
	Sources   []Source
	SessionID string
}
