package badge

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/naka-gawa/github-stats-badges/internal/domain"
)

type languageEntry struct {
	name  string
	usage domain.LanguageUsage
}

// sortLanguages orders languages by size, largest first, then by name.
func sortLanguages(languages map[string]domain.LanguageUsage) []languageEntry {
	entries := make([]languageEntry, 0, len(languages))
	for name, usage := range languages {
		entries = append(entries, languageEntry{name: name, usage: usage})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].usage.Size != entries[j].usage.Size {
			return entries[i].usage.Size > entries[j].usage.Size
		}
		return entries[i].name < entries[j].name
	})
	return entries
}

// RenderLanguages fills the languages badge with a proportional bar and one row per language.
func RenderLanguages(ctx context.Context, p StatsProvider, tmpl string) (string, error) {
	languages, err := p.Languages(ctx)
	if err != nil {
		return "", unavailable("languages", err)
	}

	var progress, langList strings.Builder
	for i, entry := range sortLanguages(languages) {
		color := escape(colorOr(entry.usage.Color, defaultColor))
		fmt.Fprintf(&progress,
			`<span style="background-color: %s;width: %0.3f%%;" class="progress-item"></span>`,
			color, entry.usage.Prop)
		fmt.Fprintf(&langList, `
<li style="animation-delay: %dms;">
<svg xmlns="http://www.w3.org/2000/svg" class="octicon" style="fill:%s;"
viewBox="0 0 16 16" version="1.1" width="16" height="16"><path
fill-rule="evenodd" d="M8 4a4 4 0 100 8 4 4 0 000-8z"></path></svg>
<span class="lang">%s</span>
<span class="percent">%0.2f%%</span>
</li>

`, i*delayBetween, color, escape(entry.name), entry.usage.Prop)
	}

	return Substitute(tmpl, map[string]string{
		"progress":  progress.String(),
		"lang_list": langList.String(),
	}), nil
}
