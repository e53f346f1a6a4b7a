package badge

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/naka-gawa/github-stats-badges/internal/domain"
)

// maxTopRepos is the number of rows the top repos template has room for.
const maxTopRepos = 6

// repoPalette colors bars of repositories whose primary language has no color, by rank.
var repoPalette = [maxTopRepos]string{"#2f81f7", "#3fb950", "#d29922", "#db61a2", "#a371f7", "#f85149"}

// rankRepos orders repositories by activity, highest first, then by name,
// and keeps at most maxTopRepos of them.
func rankRepos(perRepo map[string]int) []domain.RankedRepo {
	ranked := make([]domain.RankedRepo, 0, len(perRepo))
	for name, activity := range perRepo {
		ranked = append(ranked, domain.RankedRepo{Name: name, Activity: activity})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Activity != ranked[j].Activity {
			return ranked[i].Activity > ranked[j].Activity
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > maxTopRepos {
		ranked = ranked[:maxTopRepos]
	}
	return ranked
}

// barWidth is activity as a percentage of maxActivity; zero when maxActivity is not positive.
func barWidth(activity, maxActivity int) float64 {
	if maxActivity <= 0 {
		return 0
	}
	return float64(activity) / float64(maxActivity) * 100
}

// RenderTopRepos fills the top repos badge with the most active repositories.
// A bar takes the color of the repository's primary language, or a palette color by rank.
// The user and repository names are XML-escaped here, so providers return them unescaped.
func RenderTopRepos(ctx context.Context, p StatsProvider, tmpl string) (string, error) {
	name, err := p.Name(ctx)
	if err != nil {
		return "", unavailable("name", err)
	}
	lines, err := p.LinesChanged(ctx)
	if err != nil {
		return "", unavailable("lines changed", err)
	}
	colors, err := p.RepoColors(ctx)
	if err != nil {
		return "", unavailable("repo colors", err)
	}

	var topRepos strings.Builder
	ranked := rankRepos(lines.PerRepo)
	if len(ranked) > 0 {
		maxActivity := ranked[0].Activity
		for i, repo := range ranked {
			color := escape(colorOr(colors[repo.Name], repoPalette[i]))
			fmt.Fprintf(&topRepos, `
<tr style="animation-delay: %dms">
<td>%s</td>
<td>
<svg xmlns="http://www.w3.org/2000/svg" width="100%%" height="10">
<rect fill="%s" width="%0.3f%%" height="100%%"></rect>
</svg>
</td>
<td>%s</td>
</tr>
`, i*delayBetween, escape(repo.Name), color, barWidth(repo.Activity, maxActivity), formatCount(repo.Activity))
		}
	}

	return Substitute(tmpl, map[string]string{
		"name":      escape(name),
		"top_repos": topRepos.String(),
	}), nil
}
