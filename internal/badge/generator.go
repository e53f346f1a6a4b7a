package badge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/naka-gawa/github-stats-badges/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// RenderFunc renders one badge from a template.
type RenderFunc func(ctx context.Context, p StatsProvider, tmpl string) (string, error)

// badges pairs each file name, shared by template and output, with its renderer.
var badges = []struct {
	file   string
	render RenderFunc
}{
	{file: "overview.svg", render: RenderOverview},
	{file: "languages.svg", render: RenderLanguages},
	{file: "top_repos.svg", render: RenderTopRepos},
}

// Generator renders every badge and writes it to the output directory.
type Generator struct {
	provider    StatsProvider
	templateDir string
	outputDir   string
	logger      zerolog.Logger
}

// NewGenerator creates a new Generator instance.
func NewGenerator(provider StatsProvider, templateDir, outputDir string, logger zerolog.Logger) *Generator {
	return &Generator{
		provider:    provider,
		templateDir: templateDir,
		outputDir:   outputDir,
		logger:      logger,
	}
}

// Generate renders all badges concurrently and returns the written artifacts in a fixed order.
// The first failure is returned; badges already written by then stay on disk.
func (g *Generator) Generate(ctx context.Context) ([]domain.Artifact, error) {
	g.logger.Debug().Str("templates", g.templateDir).Str("output", g.outputDir).Msg("Generating badges...")
	artifacts := make([]domain.Artifact, len(badges))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, b := range badges {
		eg.Go(func() error {
			tmpl, err := LoadTemplate(g.templateDir, b.file)
			if err != nil {
				return err
			}
			content, err := b.render(egCtx, g.provider, tmpl)
			if err != nil {
				return fmt.Errorf("failed to render %s: %w", b.file, err)
			}
			artifact := domain.Artifact{Path: filepath.Join(g.outputDir, b.file), Content: content}
			if err := writeArtifact(artifact); err != nil {
				return err
			}
			g.logger.Debug().Str("path", artifact.Path).Int("bytes", len(content)).Msg("Badge written.")
			artifacts[i] = artifact
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

// writeArtifact creates the parent directory if needed and replaces the file
// atomically, so a reader sees either the old badge or the complete new one.
func writeArtifact(a domain.Artifact) error {
	dir := filepath.Dir(a.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(a.Path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(a.Content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", a.Path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", a.Path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", a.Path, err)
	}
	if err := os.Rename(tmp.Name(), a.Path); err != nil {
		return fmt.Errorf("failed to write %s: %w", a.Path, err)
	}
	return nil
}
