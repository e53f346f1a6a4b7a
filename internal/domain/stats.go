// Package domain contains the core data structures and domain logic for the application.
package domain

// LanguageUsage describes how much code a single language accounts for.
// An empty Color means GitHub reported no color for the language.
type LanguageUsage struct {
	Size  int     `json:"size" yaml:"size"`
	Color string  `json:"color,omitempty" yaml:"color,omitempty"`
	Prop  float64 `json:"prop" yaml:"prop"`
}

// LinesChanged holds the user's additions and deletions.
// PerRepo maps a repository to its additions plus deletions.
type LinesChanged struct {
	PerRepo   map[string]int `json:"per_repo"`
	Additions int            `json:"additions"`
	Deletions int            `json:"deletions"`
}

// Total returns additions plus deletions.
func (l LinesChanged) Total() int {
	return l.Additions + l.Deletions
}

// Snapshot is the complete set of resolved statistics used for one render run.
// It is the core domain entity of this application.
type Snapshot struct {
	Name               string                   `json:"name"`
	Stargazers         int                      `json:"stargazers"`
	Forks              int                      `json:"forks"`
	TotalContributions int                      `json:"total_contributions"`
	LinesChanged       LinesChanged             `json:"lines_changed"`
	Views              int                      `json:"views"`
	Repos              []string                 `json:"repos"`
	Languages          map[string]LanguageUsage `json:"languages"`
	RepoColors         map[string]string        `json:"repo_colors,omitempty"`
}

// RankedRepo is a repository paired with its activity (additions plus deletions).
type RankedRepo struct {
	Name     string
	Activity int
}

// Artifact is a rendered badge and the path it is written to.
type Artifact struct {
	Path    string
	Content string
}
