package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/naka-gawa/github-stats-badges/internal/domain"
)

// StaticStats serves statistics from an already-resolved snapshot.
type StaticStats struct {
	snap domain.Snapshot
}

// NewStaticStats wraps snap. The snapshot must not be modified afterwards.
func NewStaticStats(snap domain.Snapshot) *StaticStats {
	return &StaticStats{snap: snap}
}

// LoadSnapshot reads a JSON snapshot as written by the stats command.
func LoadSnapshot(path string) (*StaticStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", path, err)
	}
	return NewStaticStats(snap), nil
}

func (s *StaticStats) Name(context.Context) (string, error) { return s.snap.Name, nil }

func (s *StaticStats) Stargazers(context.Context) (int, error) { return s.snap.Stargazers, nil }

func (s *StaticStats) Forks(context.Context) (int, error) { return s.snap.Forks, nil }

func (s *StaticStats) TotalContributions(context.Context) (int, error) {
	return s.snap.TotalContributions, nil
}

func (s *StaticStats) LinesChanged(context.Context) (domain.LinesChanged, error) {
	return s.snap.LinesChanged, nil
}

func (s *StaticStats) Views(context.Context) (int, error) { return s.snap.Views, nil }

func (s *StaticStats) Repos(context.Context) ([]string, error) { return s.snap.Repos, nil }

func (s *StaticStats) Languages(context.Context) (map[string]domain.LanguageUsage, error) {
	return s.snap.Languages, nil
}

func (s *StaticStats) RepoColors(context.Context) (map[string]string, error) {
	return s.snap.RepoColors, nil
}
