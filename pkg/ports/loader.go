package ports

import (
	"context"

	"github.com/aretw0/espalier/pkg/flow"
)

// GraphLoader defines how the player retrieves a flow graph.
// This allows the storage layer (Loam, YAML, Memory) to be decoupled.
type GraphLoader interface {
	// Load builds the full graph, wired and ready for traversal.
	Load(ctx context.Context) (*flow.Graph, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying graph changes.
	// It abstracts away the specific event details, signaling only that a reload is required.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
