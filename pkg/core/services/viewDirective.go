package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dpatkar/surgeplan/pkg/core/directive"
)

// DirectiveReader lists stored directives and loads the most recent one.
type DirectiveReader interface {
	List() ([]string, error)
	Latest() (*directive.Document, string, error)
}

// ViewDirectiveResult contains the latest directive and its derived overview
// for display.
type ViewDirectiveResult struct {
	Document        *directive.Document
	Path            string
	Overview        directive.Overview
	TotalDirectives int
}

// ViewDirective loads the most recently generated directive and derives the
// per-department allocation overview from it.
func ViewDirective(ctx context.Context, store DirectiveReader, logger *zap.Logger) (*ViewDirectiveResult, error) {
	logger.Debug("Loading latest directive")

	paths, err := store.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list directives: %w", err)
	}

	doc, path, err := store.Latest()
	if err != nil {
		return nil, fmt.Errorf("failed to load latest directive: %w", err)
	}

	logger.Debug("Loaded directive",
		zap.String("path", path),
		zap.Int("total_directives", len(paths)))

	return &ViewDirectiveResult{
		Document:        doc,
		Path:            path,
		Overview:        doc.Overview(),
		TotalDirectives: len(paths),
	}, nil
}
