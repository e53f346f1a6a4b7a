// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/montanaflynn/stats"
	"github.com/naka-gawa/github-stats-badges/internal/domain"
	"github.com/naka-gawa/github-stats-badges/internal/gateway"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// maxRepoFetches bounds the number of per-repository REST calls in flight.
const maxRepoFetches = 8

// Options selects which repositories and languages are counted.
type Options struct {
	User              string
	ExcludedRepos     []string
	ExcludedLangs     []string
	IgnoreForkedRepos bool
}

// lazy memoizes the first successful result of a resolution.
// Concurrent callers wait for the resolution in progress, or give up when their
// own context ends. Each resolution runs under the context of the caller that
// performs it; errors are not cached.
type lazy[T any] struct {
	once sync.Once
	gate chan struct{}
	done bool
	val  T
}

func (l *lazy[T]) get(ctx context.Context, resolve func(context.Context) (T, error)) (T, error) {
	l.once.Do(func() { l.gate = make(chan struct{}, 1) })
	var zero T
	select {
	case l.gate <- struct{}{}:
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	defer func() { <-l.gate }()

	if l.done {
		return l.val, nil
	}
	v, err := resolve(ctx)
	if err != nil {
		return zero, err
	}
	l.val, l.done = v, true
	return v, nil
}

// overview is everything derived from the repository listing.
type overview struct {
	name       string
	stargazers int
	forks      int
	repos      []string
	languages  map[string]domain.LanguageUsage
	repoColors map[string]string
}

// Stats is the use case that resolves a user's GitHub statistics.
// Every field is fetched at most once and is safe for concurrent use.
type Stats struct {
	fetcher gateway.Fetcher
	opts    Options
	logger  zerolog.Logger

	overview      lazy[overview]
	contributions lazy[int]
	linesChanged  lazy[domain.LinesChanged]
	views         lazy[int]
}

// NewStats creates a new Stats instance.
func NewStats(fetcher gateway.Fetcher, opts Options, logger zerolog.Logger) *Stats {
	return &Stats{
		fetcher: fetcher,
		opts:    opts,
		logger:  logger,
	}
}

func (s *Stats) resolveOverview(ctx context.Context) (overview, error) {
	return s.overview.get(ctx, func(ctx context.Context) (overview, error) {
		s.logger.Debug().Msg("Usecase: Resolving repositories...")
		result, err := s.fetcher.FetchRepositories(ctx, s.opts.User)
		if err != nil {
			return overview{}, err
		}
		return s.aggregate(result), nil
	})
}

func (s *Stats) aggregate(result *gateway.UserRepositories) overview {
	excludedRepos := make(map[string]bool, len(s.opts.ExcludedRepos))
	for _, r := range s.opts.ExcludedRepos {
		excludedRepos[r] = true
	}
	excludedLangs := make(map[string]bool, len(s.opts.ExcludedLangs))
	for _, l := range s.opts.ExcludedLangs {
		excludedLangs[strings.ToLower(l)] = true
	}

	ov := overview{
		name:       result.Name,
		repos:      []string{},
		languages:  make(map[string]domain.LanguageUsage),
		repoColors: make(map[string]string),
	}
	for _, repo := range result.Repositories {
		if excludedRepos[repo.NameWithOwner] || (s.opts.IgnoreForkedRepos && repo.IsFork) {
			continue
		}
		ov.repos = append(ov.repos, repo.NameWithOwner)
		ov.stargazers += repo.Stars
		ov.forks += repo.Forks
		if repo.PrimaryLanguage.Color != "" {
			ov.repoColors[repo.NameWithOwner] = repo.PrimaryLanguage.Color
		}
		for _, lang := range repo.Languages {
			if excludedLangs[strings.ToLower(lang.Name)] {
				continue
			}
			usage := ov.languages[lang.Name]
			usage.Size += lang.Size
			if usage.Color == "" {
				usage.Color = lang.Color
			}
			ov.languages[lang.Name] = usage
		}
	}

	sizes := make([]float64, 0, len(ov.languages))
	for _, usage := range ov.languages {
		sizes = append(sizes, float64(usage.Size))
	}
	total, err := stats.Sum(sizes)
	if err != nil || total == 0 {
		// Empty input or nothing but zero-byte languages.
		return ov
	}
	for name, usage := range ov.languages {
		usage.Prop = 100 * float64(usage.Size) / total
		ov.languages[name] = usage
	}
	return ov
}

// Name returns the user's display name, or the login when it has none.
func (s *Stats) Name(ctx context.Context) (string, error) {
	ov, err := s.resolveOverview(ctx)
	return ov.name, err
}

// Stargazers returns the total stars across counted repositories.
func (s *Stats) Stargazers(ctx context.Context) (int, error) {
	ov, err := s.resolveOverview(ctx)
	return ov.stargazers, err
}

// Forks returns the total forks across counted repositories.
func (s *Stats) Forks(ctx context.Context) (int, error) {
	ov, err := s.resolveOverview(ctx)
	return ov.forks, err
}

// Repos returns the counted repositories in the order GitHub listed them.
func (s *Stats) Repos(ctx context.Context) ([]string, error) {
	ov, err := s.resolveOverview(ctx)
	return ov.repos, err
}

// Languages returns the language usage across counted repositories.
func (s *Stats) Languages(ctx context.Context) (map[string]domain.LanguageUsage, error) {
	ov, err := s.resolveOverview(ctx)
	return ov.languages, err
}

// RepoColors returns the primary-language color of each counted repository that has one.
func (s *Stats) RepoColors(ctx context.Context) (map[string]string, error) {
	ov, err := s.resolveOverview(ctx)
	return ov.repoColors, err
}

// TotalContributions returns the user's contributions over all years.
func (s *Stats) TotalContributions(ctx context.Context) (int, error) {
	return s.contributions.get(ctx, func(ctx context.Context) (int, error) {
		s.logger.Debug().Msg("Usecase: Resolving contributions...")
		return s.fetcher.FetchTotalContributions(ctx, s.opts.User)
	})
}

// LinesChanged returns the user's additions and deletions per counted repository.
func (s *Stats) LinesChanged(ctx context.Context) (domain.LinesChanged, error) {
	return s.linesChanged.get(ctx, func(ctx context.Context) (domain.LinesChanged, error) {
		repos, err := s.Repos(ctx)
		if err != nil {
			return domain.LinesChanged{}, err
		}
		s.logger.Debug().Int("repos", len(repos)).Msg("Usecase: Resolving lines changed...")

		additions := make([]int, len(repos))
		deletions := make([]int, len(repos))
		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(maxRepoFetches)
		for i, repo := range repos {
			eg.Go(func() error {
				var err error
				additions[i], deletions[i], err = s.fetcher.FetchLinesChanged(egCtx, repo, s.opts.User)
				return err
			})
		}
		if err := eg.Wait(); err != nil {
			return domain.LinesChanged{}, err
		}

		result := domain.LinesChanged{PerRepo: make(map[string]int, len(repos))}
		for i, repo := range repos {
			result.Additions += additions[i]
			result.Deletions += deletions[i]
			result.PerRepo[repo] = additions[i] + deletions[i]
		}
		return result, nil
	})
}

// Views returns the traffic views summed over counted repositories.
func (s *Stats) Views(ctx context.Context) (int, error) {
	return s.views.get(ctx, func(ctx context.Context) (int, error) {
		repos, err := s.Repos(ctx)
		if err != nil {
			return 0, err
		}
		s.logger.Debug().Int("repos", len(repos)).Msg("Usecase: Resolving views...")

		counts := make([]int, len(repos))
		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(maxRepoFetches)
		for i, repo := range repos {
			eg.Go(func() error {
				var err error
				counts[i], err = s.fetcher.FetchViews(egCtx, repo)
				return err
			})
		}
		if err := eg.Wait(); err != nil {
			return 0, err
		}
		total := 0
		for _, c := range counts {
			total += c
		}
		return total, nil
	})
}

// Snapshot resolves every field concurrently into a domain.Snapshot.
func (s *Stats) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	s.logger.Debug().Msg("Usecase: Starting snapshot resolution...")
	snap := &domain.Snapshot{}

	// Use an errgroup to resolve all fields concurrently.
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		ov, err := s.resolveOverview(egCtx)
		if err != nil {
			return err
		}
		snap.Name, snap.Stargazers, snap.Forks = ov.name, ov.stargazers, ov.forks
		snap.Repos, snap.Languages, snap.RepoColors = ov.repos, ov.languages, ov.repoColors
		return nil
	})

	eg.Go(func() error {
		var err error
		snap.TotalContributions, err = s.TotalContributions(egCtx)
		return err
	})

	eg.Go(func() error {
		var err error
		snap.LinesChanged, err = s.LinesChanged(egCtx)
		return err
	})

	eg.Go(func() error {
		var err error
		snap.Views, err = s.Views(egCtx)
		return err
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	s.logger.Debug().Msg("Usecase: Snapshot complete.")
	return snap, nil
}
