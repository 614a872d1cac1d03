package schema

import "time"

// Raw GitHub records as fetched by the gateway. Field shapes follow the REST
// API payloads; pointers mark fields that may be absent upstream.

// RawCommit is a single commit on the default branch.
type RawCommit struct {
	SHA         string     `json:"sha"`
	Author      string     `json:"author"`
	CommittedAt *time.Time `json:"committed_at"`
	Message     string     `json:"message"`
}

// RawPullRequest is a pull request with merge state and labels.
type RawPullRequest struct {
	Number        int        `json:"number"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	CreatedAt     *time.Time `json:"created_at"`
	MergedAt      *time.Time `json:"merged_at"`
	FirstCommitAt *time.Time `json:"first_commit_at"`
	Labels        []string   `json:"labels"`
}

// RawIssue is an issue with open/close timestamps and labels.
type RawIssue struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	Author    string     `json:"author"`
	CreatedAt *time.Time `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at"`
	Labels    []string   `json:"labels"`
}

// RawBatch bundles one repository's fetched activity for normalization.
type RawBatch struct {
	RepoID       string           `json:"repo_id"`
	Commits      []RawCommit      `json:"commits"`
	PullRequests []RawPullRequest `json:"pull_requests"`
	Issues       []RawIssue       `json:"issues"`
}
