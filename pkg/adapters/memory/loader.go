// Package memory provides an in-memory GraphLoader, mainly for tests
// and embedded graphs.
package memory

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/espalier/pkg/flow"
	"github.com/aretw0/espalier/pkg/ports"
)

// Loader implements ports.GraphLoader from definitions held in memory.
type Loader struct {
	defs  []flow.NodeDef
	vars  []flow.VariableDef
	graph *flow.Graph
}

var _ ports.GraphLoader = (*Loader)(nil)

// NewLoader creates a loader from node definitions.
func NewLoader(defs []flow.NodeDef, vars []flow.VariableDef) *Loader {
	return &Loader{defs: defs, vars: vars}
}

// NewFromRaw decodes generic definition maps, e.g. unmarshalled JSON,
// into node definitions.
func NewFromRaw(raw []map[string]any, vars []flow.VariableDef) (*Loader, error) {
	defs := make([]flow.NodeDef, 0, len(raw))
	for _, m := range raw {
		var def flow.NodeDef
		if err := mapstructure.Decode(m, &def); err != nil {
			return nil, fmt.Errorf("invalid node definition %v: %w", m["id"], err)
		}
		defs = append(defs, def)
	}
	return NewLoader(defs, vars), nil
}

// NewFromGraph wraps an already built graph.
// This improves DX for tests that construct nodes directly.
func NewFromGraph(g *flow.Graph) *Loader {
	return &Loader{graph: g}
}

// Load builds the graph from the held definitions.
func (l *Loader) Load(ctx context.Context) (*flow.Graph, error) {
	_ = ctx
	if l.graph != nil {
		return l.graph, nil
	}
	return flow.BuildGraph(l.defs, l.vars)
}
