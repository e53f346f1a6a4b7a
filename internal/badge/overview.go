package badge

import (
	"context"

	"github.com/naka-gawa/github-stats-badges/internal/domain"
	"golang.org/x/sync/errgroup"
)

// RenderOverview fills the summary badge with the user's headline numbers.
// The user name is XML-escaped here, so providers return it unescaped.
func RenderOverview(ctx context.Context, p StatsProvider, tmpl string) (string, error) {
	var (
		name                   string
		stars, forks, contribs int
		views                  int
		lines                  domain.LinesChanged
		repos                  []string
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		if name, err = p.Name(egCtx); err != nil {
			return unavailable("name", err)
		}
		return nil
	})
	eg.Go(func() (err error) {
		if stars, err = p.Stargazers(egCtx); err != nil {
			return unavailable("stargazers", err)
		}
		return nil
	})
	eg.Go(func() (err error) {
		if forks, err = p.Forks(egCtx); err != nil {
			return unavailable("forks", err)
		}
		return nil
	})
	eg.Go(func() (err error) {
		if contribs, err = p.TotalContributions(egCtx); err != nil {
			return unavailable("total contributions", err)
		}
		return nil
	})
	eg.Go(func() (err error) {
		if lines, err = p.LinesChanged(egCtx); err != nil {
			return unavailable("lines changed", err)
		}
		return nil
	})
	eg.Go(func() (err error) {
		if views, err = p.Views(egCtx); err != nil {
			return unavailable("views", err)
		}
		return nil
	})
	eg.Go(func() (err error) {
		if repos, err = p.Repos(egCtx); err != nil {
			return unavailable("repos", err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return "", err
	}

	return Substitute(tmpl, map[string]string{
		"name":          escape(name),
		"stars":         formatCount(stars),
		"forks":         formatCount(forks),
		"contributions": formatCount(contribs),
		"lines_changed": formatCount(lines.Total()),
		"views":         formatCount(views),
		"repos":         formatCount(len(repos)),
	}), nil
}
