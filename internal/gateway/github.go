// Package gateway provides a gateway to the GitHub REST API, mapping its
// payloads into the raw activity types used by ingestion.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/devpulse/devpulse/internal/contract"
	"github.com/devpulse/devpulse/schema"
	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	client     *github.Client
	linkWindow time.Duration
}

var _ contract.Fetcher = &GitHubGateway{} // Compile-time check

// NewGitHubGateway builds a client with secondary rate limit handling and
// optional token auth. An empty base URL targets github.com.
func NewGitHubGateway(cfg *contract.Config) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}

	var transport http.RoundTripper = rateLimitWaiter
	if cfg.GitHubToken != "" {
		transport = &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.GitHubToken}),
		}
	}

	client := github.NewClient(&http.Client{Transport: transport})
	if cfg.GitHubBaseURL != "" {
		client, err = client.WithEnterpriseURLs(cfg.GitHubBaseURL, cfg.GitHubBaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to set GitHub base URL: %w", err)
		}
	}

	return &GitHubGateway{client: client, linkWindow: cfg.IncidentLinkWindow}, nil
}

// FetchCommits returns default-branch commits inside the window.
func (g *GitHubGateway) FetchCommits(ctx context.Context, repoID string, window schema.Window) ([]schema.RawCommit, error) {
	owner, name, err := splitRepoID(repoID)
	if err != nil {
		return nil, err
	}

	opts := &github.CommitsListOptions{
		Since:       window.Start,
		Until:       window.End.AddDate(0, 0, 1), // End is a day start; include its full day
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var out []schema.RawCommit
	for {
		commits, resp, err := g.client.Repositories.ListCommits(ctx, owner, name, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list commits for %s: %w", repoID, err)
		}
		for _, c := range commits {
			out = append(out, mapCommit(c))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// FetchPullRequests returns pull requests updated inside the window, merged
// or not. For merged ones it resolves the first commit timestamp with one
// extra call per pull request.
func (g *GitHubGateway) FetchPullRequests(ctx context.Context, repoID string, window schema.Window) ([]schema.RawPullRequest, error) {
	owner, name, err := splitRepoID(repoID)
	if err != nil {
		return nil, err
	}

	opts := &github.PullRequestListOptions{
		State:       "all",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var out []schema.RawPullRequest
	for {
		prs, resp, err := g.client.PullRequests.List(ctx, owner, name, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list pull requests for %s: %w", repoID, err)
		}

		done := false
		for _, pr := range prs {
			// Sorted by updated desc, so everything past the window start is older
			if pr.UpdatedAt != nil && pr.UpdatedAt.Time.Before(window.Start) {
				done = true
				break
			}

			raw := mapPullRequest(pr)
			if raw.MergedAt != nil {
				first, err := g.firstCommitTime(ctx, owner, name, raw.Number)
				if err != nil {
					return nil, err
				}
				raw.FirstCommitAt = first
			}
			out = append(out, raw)
		}

		if done || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// FetchIssues returns issues opened inside the window plus an extra
// IncidentLinkWindow tail, so incidents filed shortly after a merge near the
// window end are still visible.
func (g *GitHubGateway) FetchIssues(ctx context.Context, repoID string, window schema.Window) ([]schema.RawIssue, error) {
	owner, name, err := splitRepoID(repoID)
	if err != nil {
		return nil, err
	}

	deadline := window.End.AddDate(0, 0, 1).Add(g.linkWindow)
	opts := &github.IssueListByRepoOptions{
		State:       "all",
		Since:       window.Start,
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var out []schema.RawIssue
	for {
		issues, resp, err := g.client.Issues.ListByRepo(ctx, owner, name, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list issues for %s: %w", repoID, err)
		}
		for _, issue := range issues {
			// The issues endpoint also returns pull requests
			if issue.IsPullRequest() {
				continue
			}
			if issue.CreatedAt == nil || issue.CreatedAt.Time.Before(window.Start) || issue.CreatedAt.Time.After(deadline) {
				continue
			}
			out = append(out, mapIssue(issue))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// firstCommitTime returns the author time of the pull request's earliest
// commit. Commits come back in chronological order.
func (g *GitHubGateway) firstCommitTime(ctx context.Context, owner, name string, number int) (*time.Time, error) {
	commits, _, err := g.client.PullRequests.ListCommits(ctx, owner, name, number,
		&github.ListOptions{PerPage: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to list commits for %s/%s#%d: %w", owner, name, number, err)
	}
	if len(commits) == 0 {
		return nil, nil
	}
	c := commits[0].GetCommit()
	if c == nil || c.GetAuthor() == nil || c.GetAuthor().Date == nil {
		return nil, nil
	}
	t := c.GetAuthor().Date.Time
	return &t, nil
}

func mapCommit(c *github.RepositoryCommit) schema.RawCommit {
	raw := schema.RawCommit{SHA: c.GetSHA()}
	if commit := c.GetCommit(); commit != nil {
		raw.Message = commit.GetMessage()
		if committer := commit.GetCommitter(); committer != nil && committer.Date != nil {
			t := committer.Date.Time
			raw.CommittedAt = &t
		}
		if author := commit.GetAuthor(); author != nil {
			raw.Author = author.GetName()
		}
	}
	// Prefer the GitHub login over the commit author name when linked
	if c.GetAuthor() != nil && c.GetAuthor().GetLogin() != "" {
		raw.Author = c.GetAuthor().GetLogin()
	}
	return raw
}

func mapPullRequest(pr *github.PullRequest) schema.RawPullRequest {
	raw := schema.RawPullRequest{
		Number: pr.GetNumber(),
		Title:  pr.GetTitle(),
		Author: pr.GetUser().GetLogin(),
	}
	if pr.CreatedAt != nil {
		t := pr.CreatedAt.Time
		raw.CreatedAt = &t
	}
	if pr.MergedAt != nil {
		t := pr.MergedAt.Time
		raw.MergedAt = &t
	}
	for _, label := range pr.Labels {
		raw.Labels = append(raw.Labels, label.GetName())
	}
	return raw
}

func mapIssue(issue *github.Issue) schema.RawIssue {
	raw := schema.RawIssue{
		Number: issue.GetNumber(),
		Title:  issue.GetTitle(),
		Author: issue.GetUser().GetLogin(),
	}
	if issue.CreatedAt != nil {
		t := issue.CreatedAt.Time
		raw.CreatedAt = &t
	}
	if issue.ClosedAt != nil {
		t := issue.ClosedAt.Time
		raw.ClosedAt = &t
	}
	for _, label := range issue.Labels {
		raw.Labels = append(raw.Labels, label.GetName())
	}
	return raw
}

// splitRepoID splits an "owner/name" identifier.
func splitRepoID(repoID string) (string, string, error) {
	owner, name, ok := strings.Cut(repoID, "/")
	if !ok || owner == "" || name == "" {
		return "", "", fmt.Errorf("invalid repository identifier %q, expected owner/name", repoID)
	}
	return owner, name, nil
}
