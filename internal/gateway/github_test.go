package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/devpulse/devpulse/schema"
	"github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestGateway creates a GitHubGateway that communicates with a mock HTTP server.
func setupTestGateway(t *testing.T, handler http.Handler) (*GitHubGateway, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = baseURL

	return &GitHubGateway{client: client, linkWindow: 48 * time.Hour}, server
}

func testWindow() schema.Window {
	return schema.Window{
		Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestSplitRepoID(t *testing.T) {
	testCases := []struct {
		input       string
		owner, name string
		expectError bool
	}{
		{input: "acme/api", owner: "acme", name: "api"},
		{input: "acme/nested/path", owner: "acme", name: "nested/path"},
		{input: "acme", expectError: true},
		{input: "/api", expectError: true},
		{input: "acme/", expectError: true},
		{input: "", expectError: true},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			owner, name, err := splitRepoID(tc.input)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.owner, owner)
			assert.Equal(t, tc.name, name)
		})
	}
}

func TestGitHubGateway_FetchCommits(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/api/commits", r.URL.Path)
		assert.Contains(t, r.URL.RawQuery, "since=")
		fmt.Fprint(w, `[
			{"sha": "abc123", "author": {"login": "dana"},
			 "commit": {"message": "add endpoint", "author": {"name": "Dana D"}, "committer": {"date": "2024-03-02T10:00:00Z"}}},
			{"sha": "def456",
			 "commit": {"message": "fix typo", "author": {"name": "Rex R"}, "committer": {"date": "2024-03-03T11:30:00Z"}}}
		]`)
	})
	gw, _ := setupTestGateway(t, handler)

	commits, err := gw.FetchCommits(context.Background(), "acme/api", testWindow())
	require.NoError(t, err)
	require.Len(t, commits, 2)

	// Linked login wins over the raw commit author name
	assert.Equal(t, "abc123", commits[0].SHA)
	assert.Equal(t, "dana", commits[0].Author)
	require.NotNil(t, commits[0].CommittedAt)
	assert.Equal(t, time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), commits[0].CommittedAt.UTC())

	// No linked account falls back to the commit author name
	assert.Equal(t, "Rex R", commits[1].Author)
}

func TestGitHubGateway_FetchCommitsError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message": "Internal Server Error"}`)
	})
	gw, _ := setupTestGateway(t, handler)

	_, err := gw.FetchCommits(context.Background(), "acme/api", testWindow())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list commits")
}

func TestGitHubGateway_FetchPullRequests(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/api/pulls", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"number": 7, "title": "Add search", "user": {"login": "dana"},
			 "labels": [{"name": "feature"}],
			 "created_at": "2024-03-01T09:00:00Z", "merged_at": "2024-03-02T15:00:00Z",
			 "updated_at": "2024-03-02T15:00:00Z"},
			{"number": 8, "title": "WIP refactor", "user": {"login": "rex"},
			 "created_at": "2024-03-03T09:00:00Z", "updated_at": "2024-03-03T09:00:00Z"},
			{"number": 2, "title": "Old change", "user": {"login": "kim"},
			 "created_at": "2024-01-10T09:00:00Z", "updated_at": "2024-01-11T09:00:00Z"}
		]`)
	})
	mux.HandleFunc("/repos/acme/api/pulls/7/commits", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"sha": "first", "commit": {"author": {"date": "2024-02-28T08:00:00Z"}}}]`)
	})
	gw, _ := setupTestGateway(t, mux)

	prs, err := gw.FetchPullRequests(context.Background(), "acme/api", testWindow())
	require.NoError(t, err)

	// PR 2 was last updated before the window and is dropped
	require.Len(t, prs, 2)

	merged := prs[0]
	assert.Equal(t, 7, merged.Number)
	assert.Equal(t, "dana", merged.Author)
	assert.Equal(t, []string{"feature"}, merged.Labels)
	require.NotNil(t, merged.MergedAt)
	require.NotNil(t, merged.FirstCommitAt)
	assert.Equal(t, time.Date(2024, 2, 28, 8, 0, 0, 0, time.UTC), merged.FirstCommitAt.UTC())

	open := prs[1]
	assert.Equal(t, 8, open.Number)
	assert.Nil(t, open.MergedAt)
	assert.Nil(t, open.FirstCommitAt)
}

func TestGitHubGateway_FetchIssues(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/api/issues", r.URL.Path)
		fmt.Fprint(w, `[
			{"number": 31, "title": "API down", "user": {"login": "oncall"},
			 "labels": [{"name": "incident"}],
			 "created_at": "2024-03-05T02:00:00Z", "closed_at": "2024-03-05T04:30:00Z"},
			{"number": 32, "title": "Not really an issue", "user": {"login": "bot"},
			 "pull_request": {"url": "https://example.com/pulls/32"},
			 "created_at": "2024-03-06T02:00:00Z"},
			{"number": 40, "title": "Filed in the link tail", "user": {"login": "oncall"},
			 "labels": [{"name": "outage"}],
			 "created_at": "2024-04-01T12:00:00Z"},
			{"number": 41, "title": "Too late", "user": {"login": "oncall"},
			 "created_at": "2024-04-10T12:00:00Z"}
		]`)
	})
	gw, _ := setupTestGateway(t, handler)

	issues, err := gw.FetchIssues(context.Background(), "acme/api", testWindow())
	require.NoError(t, err)

	// The pull request masquerading as an issue and the issue past the
	// incident link tail are both dropped
	require.Len(t, issues, 2)
	assert.Equal(t, 31, issues[0].Number)
	assert.Equal(t, []string{"incident"}, issues[0].Labels)
	require.NotNil(t, issues[0].ClosedAt)
	assert.Equal(t, 40, issues[1].Number)
	assert.Nil(t, issues[1].ClosedAt)
}
