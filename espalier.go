package espalier

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/loam"

	"github.com/aretw0/espalier/internal/runtime"
	loamAdapter "github.com/aretw0/espalier/pkg/adapters/loam"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/flow"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/script"
	"github.com/aretw0/espalier/pkg/variables"
)

// Engine is the high-level entry point for the Espalier library.
// It wraps the internal runtime player and provides a simplified API
// for consumers.
type Engine struct {
	player   *runtime.Player
	graph    *flow.Graph
	loader   ports.GraphLoader
	store    *variables.Store
	registry *script.Registry
	methods  script.MethodProvider
	hooks    domain.PlayerHooks
	logger   *slog.Logger

	pauseOn          domain.KindSet
	exploreLimit     int
	shadowLevelLimit int
	keepInvalid      bool

	Name string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLoader injects a custom GraphLoader, bypassing the default Loam
// initialization.
func WithLoader(l ports.GraphLoader) Option {
	return func(e *Engine) { e.loader = l }
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithPlayerHooks registers observability hooks.
func WithPlayerHooks(hooks domain.PlayerHooks) Option {
	return func(e *Engine) { e.hooks = hooks }
}

// WithPauseOn sets the node kinds exploration stops at.
// Default: dialogue, dialogue_fragment, flow_fragment.
func WithPauseOn(kinds ...domain.NodeKind) Option {
	return func(e *Engine) { e.pauseOn = domain.NewKindSet(kinds...) }
}

// WithExploreLimit caps exploration depth (default 128).
func WithExploreLimit(limit int) Option {
	return func(e *Engine) { e.exploreLimit = limit }
}

// WithShadowLevelLimit caps speculative nesting (default 10).
func WithShadowLevelLimit(limit int) Option {
	return func(e *Engine) { e.shadowLevelLimit = limit }
}

// WithKeepInvalidBranches publishes branches whose conditions failed,
// marked Valid=false, instead of dropping them.
func WithKeepInvalidBranches() Option {
	return func(e *Engine) { e.keepInvalid = true }
}

// WithMethods injects a custom script method provider, replacing the
// built-in registry.
func WithMethods(m script.MethodProvider) Option {
	return func(e *Engine) { e.methods = m }
}

// WithStore injects a prepared variable store, e.g. one restored from
// a save game.
func WithStore(s *variables.Store) Option {
	return func(e *Engine) { e.store = s }
}

// New initializes a new Espalier Engine.
// By default, it uses a Loam repository at the given path.
// If WithLoader option is provided, repoPath can be empty and Loam is skipped.
func New(repoPath string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.loader == nil {
		if repoPath == "" {
			return nil, fmt.Errorf("repoPath is required when no custom loader is provided")
		}
		absPath, err := filepath.Abs(repoPath)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		eng.Name = filepath.Base(absPath)

		// Strict mode keeps numeric types consistent across Loam's
		// JSON and YAML adapters; read-only because the engine never
		// writes the graph back.
		repo, err := loam.Init(absPath,
			loam.WithStrict(true),
			loam.WithReadOnly(true),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize loam: %w", err)
		}
		typedRepo := loam.NewTypedRepository[loamAdapter.NodeMetadata](repo)
		eng.loader = loamAdapter.New(typedRepo)
	} else if repoPath != "" {
		eng.Name = filepath.Base(repoPath)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("flow", eng.Name)
	}

	graph, err := eng.loader.Load(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}
	eng.graph = graph

	if eng.store == nil {
		eng.store = variables.NewStore()
	}
	if err := graph.SeedStore(eng.store); err != nil {
		return nil, fmt.Errorf("failed to seed variables: %w", err)
	}

	if eng.methods == nil {
		eng.registry = script.NewRegistry()
		eng.methods = eng.registry
	}

	eng.player = runtime.New(graph, runtime.Config{
		Store:               eng.store,
		Methods:             eng.methods,
		Logger:              eng.logger,
		Hooks:               eng.hooks,
		PauseOn:             eng.pauseOn,
		ExploreLimit:        eng.exploreLimit,
		ShadowLevelLimit:    eng.shadowLevelLimit,
		KeepInvalidBranches: eng.keepInvalid,
	})
	return eng, nil
}

// Start positions the cursor on a node and runs the initial
// exploration, fast-forwarding through any non-branching prefix.
func (e *Engine) Start(ctx context.Context, id domain.ID) error {
	return e.player.SetStartNode(ctx, id)
}

// SetCursorTo repositions the cursor on an arbitrary object.
func (e *Engine) SetCursorTo(ctx context.Context, id domain.ID) error {
	return e.player.SetCursorTo(ctx, id)
}

// Branches returns the published branch set from the last exploration.
func (e *Engine) Branches() []domain.Branch { return e.player.AvailableBranches() }

// AllBranches returns the unfiltered set, invalid branches included.
func (e *Engine) AllBranches() []domain.Branch { return e.player.AllBranches() }

// Play selects a branch by index; it is committed on the next Tick.
func (e *Engine) Play(ctx context.Context, index int) error {
	return e.player.Play(ctx, index)
}

// Tick drains the commit queue, advancing live state.
func (e *Engine) Tick(ctx context.Context) error { return e.player.Tick(ctx) }

// Advance is Play followed by Tick, the common interactive step.
func (e *Engine) Advance(ctx context.Context, index int) error {
	if err := e.player.Play(ctx, index); err != nil {
		return err
	}
	return e.player.Tick(ctx)
}

// UpdateBranches re-explores from the cursor without moving it, e.g.
// after mutating variables from the outside.
func (e *Engine) UpdateBranches(ctx context.Context) error {
	return e.player.UpdateAvailableBranches(ctx)
}

// SetIgnoreInvalidBranches toggles at runtime whether branches with
// failing conditions are filtered out (the default) or published
// marked invalid.
func (e *Engine) SetIgnoreInvalidBranches(ctx context.Context, ignore bool) error {
	return e.player.SetIgnoreInvalidBranches(ctx, ignore)
}

// FinishCurrentPausedObject runs the script of the paused object's
// output pin at pinIndex, leaving cursor and branches untouched.
func (e *Engine) FinishCurrentPausedObject(ctx context.Context, pinIndex int) error {
	return e.player.FinishCurrentPausedObject(ctx, pinIndex)
}

func (e *Engine) Cursor() domain.FlowObject { return e.player.Cursor() }
func (e *Engine) State() domain.PlayerState { return e.player.State() }
func (e *Engine) Store() *variables.Store   { return e.store }
func (e *Engine) Graph() *flow.Graph        { return e.graph }

// Player exposes the underlying FlowPlayer port for adapters.
func (e *Engine) Player() ports.FlowPlayer { return e.player }

// Loader returns the underlying GraphLoader used by the engine.
func (e *Engine) Loader() ports.GraphLoader { return e.loader }

// RegisterMethod adds a script-callable method to the built-in
// registry. Returns an error when a custom provider was injected.
func (e *Engine) RegisterMethod(name string, fn script.MethodFunc) error {
	if e.registry == nil {
		return fmt.Errorf("a custom method provider is installed, register methods there")
	}
	e.registry.Register(name, fn)
	return nil
}

// OnVariableChanged registers a listener for live variable writes.
// Shadowed writes never fire it.
func (e *Engine) OnVariableChanged(fn func(fullName string, value any)) {
	e.store.OnChange(fn)
}

// ResetVisited clears all seen counters.
func (e *Engine) ResetVisited() { e.store.ResetVisited() }

// Watch returns a channel that signals when the underlying graph
// changes. Returns an error if the loader does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan struct{}, error) {
	if w, ok := e.loader.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current loader does not support watching")
}
