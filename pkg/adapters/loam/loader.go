// Package loam adapts a Loam document repository to the GraphLoader
// port. Each document is one flow node: frontmatter carries the node
// definition, the markdown body becomes its text.
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"

	"github.com/aretw0/espalier/pkg/flow"
	"github.com/aretw0/espalier/pkg/ports"
)

// Loader adapts the Loam library to the GraphLoader interface.
type Loader struct {
	Repo *loam.TypedRepository[NodeMetadata]
}

var _ ports.GraphLoader = (*Loader)(nil)
var _ ports.Watchable = (*Loader)(nil)

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[NodeMetadata]) *Loader {
	return &Loader{Repo: repo}
}

// Load reads every document and builds the wired graph.
func (l *Loader) Load(ctx context.Context) (*flow.Graph, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	var defs []flow.NodeDef
	var vars []flow.VariableDef
	seen := make(map[string]string)

	for _, doc := range docs {
		meta := doc.Data
		if meta.ID == "" {
			meta.ID = trimExtension(doc.ID)
		}

		if meta.Kind == KindVariables {
			for _, v := range meta.Variables {
				vars = append(vars, flow.VariableDef{Namespace: v.Namespace, Name: v.Name, Initial: v.Initial})
			}
			continue
		}

		// Collision Detection: doc.ID is the file path in Loam, metadata
		// ids can collide across files.
		if existingPath, ok := seen[meta.ID]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", meta.ID, existingPath, doc.ID)
		}
		seen[meta.ID] = doc.ID

		if meta.Text == "" {
			body := doc.Content
			if body == "" {
				// List carries metadata only; the body rides on Get.
				full, err := l.Repo.Get(ctx, doc.ID)
				if err != nil {
					return nil, fmt.Errorf("loam get failed for %s: %w", doc.ID, err)
				}
				body = full.Content
			}
			meta.Text = strings.TrimSpace(body)
		}
		// A bare markdown document with no declared kind is a line of
		// dialogue.
		if meta.Kind == "" {
			meta.Kind = "dialogue_fragment"
		}
		defs = append(defs, meta.NodeDef)
	}

	return flow.BuildGraph(defs, vars)
}

// Watch signals when any flow document changes, for hot-reload.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				// Coalesce bursts: one pending signal is enough.
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()
	return ch, nil
}

func trimExtension(id string) string {
	return strings.TrimSuffix(id, filepath.Ext(id))
}
