package core

import "fmt"

// MalformedInputError marks a raw record that cannot be normalized. Callers
// skip the record and count it; these never abort a run.
type MalformedInputError struct {
	RepoID string
	Kind   string // record kind: commit, pull_request, issue
	Ref    string // SHA or item number for operator triage
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed %s %s in %s: %s", e.Kind, e.Ref, e.RepoID, e.Reason)
}

// InvariantViolationError marks two conflicting writes for the same
// (repository, date) key inside a single run. It is fatal to the run that
// raised it; no partial state may be committed.
type InvariantViolationError struct {
	RepoID string
	Date   string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("conflicting metric rows for %s on %s within one run", e.RepoID, e.Date)
}
