package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-github/v62/github"
	"github.com/rs/zerolog"
	"github.com/shurcooL/githubv4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestGateway creates a GitHubGateway that communicates with a mock HTTP server.
func setupTestGateway(t *testing.T, handler http.Handler) (*GitHubGateway, *httptest.Server) {
	server := httptest.NewServer(handler)

	// Setup REST client to point to the mock server.
	restClient := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	restClient.BaseURL = baseURL

	// Use NewEnterpriseClient to point the GraphQL client to our mock server's URL.
	graphqlClient := githubv4.NewEnterpriseClient(server.URL, server.Client())

	gateway := &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		logger:        zerolog.Nop(),
	}

	return gateway, server
}

func TestGitHubGateway_FetchRepositories(t *testing.T) {
	ownedPage1 := `{"data":{"user":{"name":"","login":"octocat","repositories":{"pageInfo":{"hasNextPage":true,"endCursor":"c1"},"nodes":[
		{"nameWithOwner":"octocat/alpha","isFork":false,"stargazerCount":5,"forkCount":1,
		 "primaryLanguage":{"name":"Go","color":"#00ADD8"},
		 "languages":{"edges":[{"size":300,"node":{"name":"Go","color":"#00ADD8"}},{"size":100,"node":{"name":"Shell","color":"#89e051"}}]}}]}}}}`
	ownedPage2 := `{"data":{"user":{"name":"","login":"octocat","repositories":{"pageInfo":{"hasNextPage":false,"endCursor":""},"nodes":[
		{"nameWithOwner":"octocat/beta","isFork":true,"stargazerCount":2,"forkCount":0,
		 "primaryLanguage":null,"languages":{"edges":[]}}]}}}}`
	contributed := `{"data":{"user":{"repositoriesContributedTo":{"pageInfo":{"hasNextPage":false,"endCursor":""},"nodes":[
		{"nameWithOwner":"octocat/alpha","isFork":false,"stargazerCount":5,"forkCount":1,"primaryLanguage":null,"languages":{"edges":[]}},
		{"nameWithOwner":"other/gamma","isFork":false,"stargazerCount":7,"forkCount":3,
		 "primaryLanguage":{"name":"Rust","color":"#dea584"},"languages":{"edges":[{"size":50,"node":{"name":"Rust","color":"#dea584"}}]}}]}}}}`

	handler := func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		w.WriteHeader(http.StatusOK)
		switch {
		case strings.Contains(string(body), "repositoriesContributedTo"):
			fmt.Fprint(w, contributed)
		case strings.Contains(string(body), `"cursor":"c1"`):
			fmt.Fprint(w, ownedPage2)
		default:
			fmt.Fprint(w, ownedPage1)
		}
	}
	gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
	defer server.Close()

	result, err := gateway.FetchRepositories(context.Background(), "octocat")
	require.NoError(t, err)

	assert.Equal(t, "octocat", result.Name, "falls back to the login when the name is blank")
	require.Len(t, result.Repositories, 3)
	assert.Equal(t, "octocat/alpha", result.Repositories[0].NameWithOwner)
	assert.Equal(t, Language{Name: "Go", Color: "#00ADD8"}, result.Repositories[0].PrimaryLanguage)
	assert.Equal(t, []LanguageSize{
		{Language: Language{Name: "Go", Color: "#00ADD8"}, Size: 300},
		{Language: Language{Name: "Shell", Color: "#89e051"}, Size: 100},
	}, result.Repositories[0].Languages)
	assert.True(t, result.Repositories[1].IsFork)
	assert.Equal(t, "other/gamma", result.Repositories[2].NameWithOwner)
	assert.Equal(t, 7, result.Repositories[2].Stars)
}

func TestGitHubGateway_FetchTotalContributions(t *testing.T) {
	testCases := []struct {
		name           string
		handlerFunc    func(w http.ResponseWriter, r *http.Request)
		expected       int
		expectError    bool
		expectedErrMsg string
	}{
		{
			name: "happy path - sums every contribution year",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				w.WriteHeader(http.StatusOK)
				switch {
				case strings.Contains(string(body), "contributionYears"):
					fmt.Fprint(w, `{"data":{"user":{"contributionsCollection":{"contributionYears":[2024,2023]}}}}`)
				case strings.Contains(string(body), "2024-01-01"):
					fmt.Fprint(w, `{"data":{"user":{"contributionsCollection":{"contributionCalendar":{"totalContributions":120}}}}}`)
				default:
					fmt.Fprint(w, `{"data":{"user":{"contributionsCollection":{"contributionCalendar":{"totalContributions":30}}}}}`)
				}
			},
			expected: 150,
		},
		{
			name: "error case - GraphQL returns errors",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, `{"errors":[{"message":"Something went wrong"}]}`)
			},
			expectError:    true,
			expectedErrMsg: "failed to execute GraphQL query for contribution years",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gateway, server := setupTestGateway(t, http.HandlerFunc(tc.handlerFunc))
			defer server.Close()
			total, err := gateway.FetchTotalContributions(context.Background(), "octocat")
			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, total)
			}
		})
	}
}

func TestGitHubGateway_FetchLinesChanged(t *testing.T) {
	testCases := []struct {
		name              string
		repo              string
		handlerFunc       func(w http.ResponseWriter, r *http.Request)
		expectedAdditions int
		expectedDeletions int
		expectError       bool
		expectedErrMsg    string
	}{
		{
			name: "happy path - sums the user's weeks only",
			repo: "octocat/alpha",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				assert.Contains(t, r.URL.Path, "/repos/octocat/alpha/stats/contributors")
				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, `[
					{"author":{"login":"OctoCat"},"total":2,"weeks":[{"w":1,"a":10,"d":2,"c":1},{"w":2,"a":5,"d":3,"c":1}]},
					{"author":{"login":"someone"},"total":1,"weeks":[{"w":1,"a":100,"d":100,"c":1}]}
				]`)
			},
			expectedAdditions: 15,
			expectedDeletions: 5,
		},
		{
			name: "statistics still computing - counts as zero",
			repo: "octocat/alpha",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusAccepted)
				fmt.Fprint(w, `{}`)
			},
		},
		{
			name: "error case - GitHub API returns an error",
			repo: "octocat/alpha",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"message": "Internal Server Error"}`)
			},
			expectError:    true,
			expectedErrMsg: "failed to list contributor stats",
		},
		{
			name:           "error case - malformed repository name",
			repo:           "no-slash",
			handlerFunc:    func(w http.ResponseWriter, r *http.Request) {},
			expectError:    true,
			expectedErrMsg: "invalid repository name",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gateway, server := setupTestGateway(t, http.HandlerFunc(tc.handlerFunc))
			defer server.Close()
			additions, deletions, err := gateway.FetchLinesChanged(context.Background(), tc.repo, "octocat")
			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expectedAdditions, additions)
				assert.Equal(t, tc.expectedDeletions, deletions)
			}
		})
	}
}

func TestGitHubGateway_FetchViews(t *testing.T) {
	testCases := []struct {
		name           string
		handlerFunc    func(w http.ResponseWriter, r *http.Request)
		expected       int
		expectError    bool
		expectedErrMsg string
	}{
		{
			name: "happy path - returns the view count",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				assert.Contains(t, r.URL.Path, "/repos/other/gamma/traffic/views")
				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, `{"count":42,"uniques":7,"views":[]}`)
			},
			expected: 42,
		},
		{
			name: "no push access - counts as zero",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				fmt.Fprint(w, `{"message":"Must have push access to repository"}`)
			},
			expected: 0,
		},
		{
			name: "repository not visible - counts as zero",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"message":"Not Found"}`)
			},
			expected: 0,
		},
		{
			name: "error case - GitHub API returns a server error",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"message": "Internal Server Error"}`)
			},
			expectError:    true,
			expectedErrMsg: "failed to list traffic views for other/gamma",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gateway, server := setupTestGateway(t, http.HandlerFunc(tc.handlerFunc))
			defer server.Close()
			views, err := gateway.FetchViews(context.Background(), "other/gamma")
			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, views)
			}
		})
	}
}
