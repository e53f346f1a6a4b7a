// Package badge renders the SVG badges by substituting computed statistics
// into markup templates.
package badge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/naka-gawa/github-stats-badges/internal/domain"
)

var (
	// ErrMissingTemplateFile is returned when a template cannot be read.
	ErrMissingTemplateFile = errors.New("missing template file")
	// ErrDataUnavailable is returned when a statistic cannot be resolved.
	ErrDataUnavailable = errors.New("data unavailable")
)

// StatsProvider exposes the statistics the badges are rendered from.
// Implementations must be safe for concurrent use.
type StatsProvider interface {
	Name(ctx context.Context) (string, error)
	Stargazers(ctx context.Context) (int, error)
	Forks(ctx context.Context) (int, error)
	TotalContributions(ctx context.Context) (int, error)
	LinesChanged(ctx context.Context) (domain.LinesChanged, error)
	Views(ctx context.Context) (int, error)
	Repos(ctx context.Context) ([]string, error)
	Languages(ctx context.Context) (map[string]domain.LanguageUsage, error)
	// RepoColors maps a repository to the color of its primary language.
	RepoColors(ctx context.Context) (map[string]string, error)
}

func unavailable(field string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDataUnavailable, field, err)
}

// LoadTemplate reads the template file name from dir.
func LoadTemplate(dir, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrMissingTemplateFile, name, err)
	}
	return string(data), nil
}

// Substitute replaces every "{{ key }}" marker in tmpl with values[key].
// Markers without a value are left as they are, and replacement text is
// never scanned for further markers.
func Substitute(tmpl string, values map[string]string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{{ "+k+" }}", values[k])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
