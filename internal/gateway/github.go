// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/rs/zerolog"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
)

// Language is a GitHub linguist language. Color is empty when GitHub has none.
type Language struct {
	Name  string
	Color string
}

// LanguageSize is the number of bytes a repository holds in one language.
type LanguageSize struct {
	Language
	Size int
}

// Repository holds the per-repository facts the badges are built from.
type Repository struct {
	NameWithOwner   string
	IsFork          bool
	Stars           int
	Forks           int
	PrimaryLanguage Language
	Languages       []LanguageSize
}

// UserRepositories is the user's display name plus every repository they own or contributed to.
type UserRepositories struct {
	Name         string
	Repositories []Repository
}

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	FetchRepositories(ctx context.Context, user string) (*UserRepositories, error)
	FetchTotalContributions(ctx context.Context, user string) (int, error)
	// FetchLinesChanged returns the additions and deletions the user made to repo.
	FetchLinesChanged(ctx context.Context, repo, user string) (additions, deletions int, err error)
	FetchViews(ctx context.Context, repo string) (int, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        zerolog.Logger
}

type repositoryNode struct {
	NameWithOwner   string
	IsFork          bool
	StargazerCount  int
	ForkCount       int
	PrimaryLanguage struct {
		Name  string
		Color string
	}
	Languages struct {
		Edges []struct {
			Size int
			Node struct {
				Name  string
				Color string
			}
		}
	} `graphql:"languages(first: 10, orderBy: {field: SIZE, direction: DESC})"`
}

type pageInfo struct {
	HasNextPage bool
	EndCursor   githubv4.String
}

// ownedReposQuery lists repositories owned by the user.
type ownedReposQuery struct {
	User struct {
		Name         string
		Login        string
		Repositories struct {
			PageInfo pageInfo
			Nodes    []repositoryNode
		} `graphql:"repositories(first: 100, after: $cursor, ownerAffiliations: OWNER, orderBy: {field: NAME, direction: ASC})"`
	} `graphql:"user(login: $login)"`
}

// contributedReposQuery lists repositories owned by others that the user contributed to.
type contributedReposQuery struct {
	User struct {
		RepositoriesContributedTo struct {
			PageInfo pageInfo
			Nodes    []repositoryNode
		} `graphql:"repositoriesContributedTo(first: 100, after: $cursor, includeUserRepositories: false, contributionTypes: [COMMIT, PULL_REQUEST, REPOSITORY, PULL_REQUEST_REVIEW])"`
	} `graphql:"user(login: $login)"`
}

type contributionYearsQuery struct {
	User struct {
		ContributionsCollection struct {
			ContributionYears []int
		}
	} `graphql:"user(login: $login)"`
}

type yearContributionsQuery struct {
	User struct {
		ContributionsCollection struct {
			ContributionCalendar struct {
				TotalContributions int
			}
		} `graphql:"contributionsCollection(from: $from, to: $to)"`
	} `graphql:"user(login: $login)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token string, logger zerolog.Logger) (Fetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
	}, nil
}

// FetchRepositories fetches owned and contributed-to repositories, deduplicated by name.
func (g *GitHubGateway) FetchRepositories(ctx context.Context, user string) (*UserRepositories, error) {
	g.logger.Debug().Str("user", user).Msg("Fetching repositories using GraphQL API...")
	result := &UserRepositories{}
	seen := make(map[string]bool)
	add := func(nodes []repositoryNode) {
		for _, n := range nodes {
			if n.NameWithOwner == "" || seen[n.NameWithOwner] {
				continue
			}
			seen[n.NameWithOwner] = true
			result.Repositories = append(result.Repositories, toRepository(n))
		}
	}

	variables := map[string]interface{}{"login": githubv4.String(user), "cursor": (*githubv4.String)(nil)}
	for {
		var q ownedReposQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return nil, fmt.Errorf("failed to execute GraphQL query for owned repositories: %w", err)
		}
		if result.Name == "" {
			result.Name = q.User.Name
			if result.Name == "" {
				result.Name = q.User.Login
			}
		}
		add(q.User.Repositories.Nodes)
		if !q.User.Repositories.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.User.Repositories.PageInfo.EndCursor)
		g.logger.Debug().Msg("Fetching next page of owned repositories...")
	}

	variables["cursor"] = (*githubv4.String)(nil)
	for {
		var q contributedReposQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return nil, fmt.Errorf("failed to execute GraphQL query for contributed repositories: %w", err)
		}
		add(q.User.RepositoriesContributedTo.Nodes)
		if !q.User.RepositoriesContributedTo.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.User.RepositoriesContributedTo.PageInfo.EndCursor)
		g.logger.Debug().Msg("Fetching next page of contributed repositories...")
	}

	if result.Name == "" {
		result.Name = user
	}
	g.logger.Debug().Int("count", len(result.Repositories)).Msg("Completed fetching repositories.")
	return result, nil
}

func toRepository(n repositoryNode) Repository {
	repo := Repository{
		NameWithOwner:   n.NameWithOwner,
		IsFork:          n.IsFork,
		Stars:           n.StargazerCount,
		Forks:           n.ForkCount,
		PrimaryLanguage: Language{Name: n.PrimaryLanguage.Name, Color: n.PrimaryLanguage.Color},
	}
	for _, edge := range n.Languages.Edges {
		repo.Languages = append(repo.Languages, LanguageSize{
			Language: Language{Name: edge.Node.Name, Color: edge.Node.Color},
			Size:     edge.Size,
		})
	}
	return repo
}

// FetchTotalContributions sums the contribution calendar over every year the user was active.
func (g *GitHubGateway) FetchTotalContributions(ctx context.Context, user string) (int, error) {
	g.logger.Debug().Str("user", user).Msg("Fetching contribution years...")
	var years contributionYearsQuery
	if err := g.graphqlClient.Query(ctx, &years, map[string]interface{}{"login": githubv4.String(user)}); err != nil {
		return 0, fmt.Errorf("failed to execute GraphQL query for contribution years: %w", err)
	}

	total := 0
	for _, year := range years.User.ContributionsCollection.ContributionYears {
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		variables := map[string]interface{}{
			"login": githubv4.String(user),
			"from":  githubv4.DateTime{Time: from},
			"to":    githubv4.DateTime{Time: from.AddDate(1, 0, 0).Add(-time.Second)},
		}
		var q yearContributionsQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return 0, fmt.Errorf("failed to execute GraphQL query for contributions in %d: %w", year, err)
		}
		total += q.User.ContributionsCollection.ContributionCalendar.TotalContributions
	}
	g.logger.Debug().Int("total", total).Msg("Completed fetching contributions.")
	return total, nil
}

// FetchLinesChanged reads the contributor statistics of repo and returns the user's totals.
// GitHub answers 202 while it computes the statistics; that counts as no changes.
func (g *GitHubGateway) FetchLinesChanged(ctx context.Context, repo, user string) (int, int, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return 0, 0, err
	}
	contributors, _, err := g.restClient.Repositories.ListContributorsStats(ctx, owner, name)
	if err != nil {
		var accepted *github.AcceptedError
		if errors.As(err, &accepted) {
			g.logger.Warn().Str("repo", repo).Msg("Contributor statistics are still being computed; counting as zero.")
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("failed to list contributor stats for %s: %w", repo, err)
	}

	additions, deletions := 0, 0
	for _, c := range contributors {
		if !strings.EqualFold(c.GetAuthor().GetLogin(), user) {
			continue
		}
		for _, week := range c.Weeks {
			additions += week.GetAdditions()
			deletions += week.GetDeletions()
		}
	}
	return additions, deletions, nil
}

// FetchViews returns the traffic view count of repo over the last fourteen days.
// Traffic needs push access; repositories the token cannot read count as zero views.
func (g *GitHubGateway) FetchViews(ctx context.Context, repo string) (int, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return 0, err
	}
	views, _, err := g.restClient.Repositories.ListTrafficViews(ctx, owner, name, &github.TrafficBreakdownOptions{Per: "day"})
	if err != nil {
		var errResp *github.ErrorResponse
		if errors.As(err, &errResp) && errResp.Response != nil &&
			(errResp.Response.StatusCode == http.StatusForbidden || errResp.Response.StatusCode == http.StatusNotFound) {
			g.logger.Warn().Str("repo", repo).Int("status", errResp.Response.StatusCode).Msg("Traffic views are not readable; counting as zero.")
			return 0, nil
		}
		return 0, fmt.Errorf("failed to list traffic views for %s: %w", repo, err)
	}
	return views.GetCount(), nil
}

func splitRepo(repo string) (string, string, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return "", "", fmt.Errorf("invalid repository name %q: expected owner/name", repo)
	}
	return owner, name, nil
}
