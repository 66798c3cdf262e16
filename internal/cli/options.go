// Package cli carries the shared wiring between the espalier commands:
// engine construction, logging and the interactive session loop.
package cli

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/adapters/yamlfile"
	"github.com/aretw0/espalier/pkg/domain"
)

// RunOptions carries the flags shared by run-ish commands.
type RunOptions struct {
	RepoPath string
	Start    string
	Headless bool
	Debug    bool
}

func createLogger(debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return logging.New(level)
}

// createEngine initializes an engine with standard CLI conventions:
// a single .yaml/.yml path loads through the yamlfile adapter, a
// directory through Loam.
func createEngine(opts RunOptions, logger *slog.Logger, extra ...espalier.Option) (*espalier.Engine, error) {
	engineOpts := []espalier.Option{
		espalier.WithLogger(logger),
	}
	if opts.Debug {
		engineOpts = append(engineOpts, espalier.WithPlayerHooks(createDebugHooks(logger)))
	}
	if strings.HasSuffix(opts.RepoPath, ".yaml") || strings.HasSuffix(opts.RepoPath, ".yml") {
		engineOpts = append(engineOpts, espalier.WithLoader(yamlfile.New(opts.RepoPath)))
	}
	engineOpts = append(engineOpts, extra...)
	return espalier.New(opts.RepoPath, engineOpts...)
}

// NewEngine builds an engine with the CLI conventions applied.
func NewEngine(opts RunOptions, extra ...espalier.Option) (*espalier.Engine, error) {
	return createEngine(opts, createLogger(opts.Debug), extra...)
}

func createDebugHooks(logger *slog.Logger) domain.PlayerHooks {
	return domain.PlayerHooks{
		OnPlayerPaused: func(ctx context.Context, obj domain.FlowObject) {
			logger.Debug("paused", "object", obj.ID(), "kind", obj.Kind())
		},
		OnBranchesUpdated: func(ctx context.Context, branches []domain.Branch) {
			logger.Debug("branches updated", "count", len(branches))
		},
		OnShadowOpStart: func(ctx context.Context, level int) {
			logger.Debug("shadow push", "level", level)
		},
		OnShadowOpEnd: func(ctx context.Context, level int) {
			logger.Debug("shadow pop", "level", level)
		},
	}
}
