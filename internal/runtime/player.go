// Package runtime implements the flow player: branch exploration under
// shadowed variable state, fast-forward, and the commit queue that
// advances live state one tick at a time.
package runtime

import (
	"context"
	"log/slog"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/flow"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/script"
	"github.com/aretw0/espalier/pkg/variables"
)

const (
	// DefaultExploreLimit bounds exploration depth so cyclic graphs
	// with no pause target in the cycle still terminate.
	DefaultExploreLimit = 128

	// DefaultShadowLevelLimit bounds speculative nesting.
	DefaultShadowLevelLimit = 10
)

// Config carries the knobs a player is built with. Zero values fall
// back to the documented defaults.
type Config struct {
	Store            *variables.Store
	Methods          script.MethodProvider
	Logger           *slog.Logger
	Hooks            domain.PlayerHooks
	PauseOn          domain.KindSet
	ExploreLimit     int
	ShadowLevelLimit int

	// KeepInvalidBranches publishes branches whose conditions failed
	// instead of dropping them. They stay marked Valid=false.
	KeepInvalidBranches bool
}

// Player walks a flow graph. Exploration runs under shadowed variable
// state; only committing a branch mutates live state. Not safe for
// concurrent use.
type Player struct {
	graph   *flow.Graph
	store   *variables.Store
	logger  *slog.Logger
	hooks   domain.PlayerHooks
	pauseOn domain.KindSet

	exploreLimit     int
	shadowLevelLimit int
	ignoreInvalid    bool

	cursor      domain.FlowObject
	state       domain.PlayerState
	available   []domain.Branch
	visible     []domain.Branch
	queue       []domain.Branch
	shadowLevel int

	env script.Env
}

var _ ports.FlowPlayer = (*Player)(nil)
var _ domain.Traverser = (*Player)(nil)

// New builds a player over a wired graph.
func New(graph *flow.Graph, cfg Config) *Player {
	if cfg.Store == nil {
		cfg.Store = variables.NewStore()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.PauseOn == nil {
		cfg.PauseOn = domain.DefaultPauseSet()
	}
	if cfg.ExploreLimit <= 0 {
		cfg.ExploreLimit = DefaultExploreLimit
	}
	if cfg.ShadowLevelLimit <= 0 {
		cfg.ShadowLevelLimit = DefaultShadowLevelLimit
	}
	p := &Player{
		graph:            graph,
		store:            cfg.Store,
		logger:           cfg.Logger,
		hooks:            cfg.Hooks,
		pauseOn:          cfg.PauseOn,
		exploreLimit:     cfg.ExploreLimit,
		shadowLevelLimit: cfg.ShadowLevelLimit,
		ignoreInvalid:    !cfg.KeepInvalidBranches,
		state:            domain.StateIdle,
	}
	p.store.SetLogger(cfg.Logger)
	p.env = script.Env{Store: p.store, Methods: cfg.Methods, Logger: cfg.Logger}
	return p
}

func (p *Player) Cursor() domain.FlowObject { return p.cursor }
func (p *Player) State() domain.PlayerState { return p.state }
func (p *Player) Store() *variables.Store   { return p.store }

// ShadowLevel reports the current speculation depth. Zero means live.
func (p *Player) ShadowLevel() int { return p.shadowLevel }

// SetPauseOn replaces the pause set and re-explores if a cursor is set.
func (p *Player) SetPauseOn(ctx context.Context, kinds domain.KindSet) error {
	p.pauseOn = kinds
	if p.cursor == nil {
		return nil
	}
	return p.updateAvailableBranches(ctx, false)
}

// SetIgnoreInvalidBranches toggles filtering of invalid branches from
// the published set and re-explores if a cursor is set.
func (p *Player) SetIgnoreInvalidBranches(ctx context.Context, ignore bool) error {
	p.ignoreInvalid = ignore
	if p.cursor == nil {
		return nil
	}
	return p.updateAvailableBranches(ctx, false)
}

// SetStartNode positions the cursor and explores, fast-forwarding
// through a non-branching prefix. Any fast-forward commit is drained
// before returning, so the player comes back paused.
func (p *Player) SetStartNode(ctx context.Context, id domain.ID) error {
	return p.SetCursorTo(ctx, id)
}

// SetCursorTo repositions the cursor on an arbitrary object.
func (p *Player) SetCursorTo(ctx context.Context, id domain.ID) error {
	obj := p.graph.Object(id)
	if obj == nil {
		return &domain.UnknownObjectError{ID: id}
	}
	p.cursor = obj
	if err := p.updateAvailableBranches(ctx, true); err != nil {
		return err
	}
	return p.Tick(ctx)
}

// AvailableBranches returns the published branch set. Paths never
// include the cursor itself.
func (p *Player) AvailableBranches() []domain.Branch { return p.visible }

// AllBranches returns the unfiltered set, invalid branches included.
func (p *Player) AllBranches() []domain.Branch { return p.available }

// UpdateAvailableBranches re-explores from the cursor without moving it.
func (p *Player) UpdateAvailableBranches(ctx context.Context) error {
	return p.updateAvailableBranches(ctx, false)
}

// Play selects a published branch by index. The branch is committed on
// the next Tick.
func (p *Player) Play(ctx context.Context, index int) error {
	if index < 0 || index >= len(p.visible) {
		return domain.ErrInvalidBranchIndex
	}
	return p.PlayBranch(ctx, p.visible[index])
}

// PlayBranch enqueues a branch for commit, bypassing index lookup.
func (p *Player) PlayBranch(ctx context.Context, b domain.Branch) error {
	_ = ctx
	p.queue = append(p.queue, b)
	return nil
}

// Tick drains the commit queue in FIFO order. Each commit executes the
// branch's objects against live state, moves the cursor and re-explores.
// An empty queue is a no-op.
func (p *Player) Tick(ctx context.Context) error {
	for len(p.queue) > 0 {
		b := p.queue[0]
		p.queue = p.queue[1:]
		if err := p.commit(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

// FinishCurrentPausedObject runs the script of the paused object's
// output pin at pinIndex against live state. The cursor does not move,
// nothing is re-explored and no seen counter changes. An out-of-range
// index is logged and ignored.
func (p *Player) FinishCurrentPausedObject(ctx context.Context, pinIndex int) error {
	if p.cursor == nil {
		return domain.ErrNoCursor
	}
	prov, ok := p.cursor.(domain.OutputPinsProvider)
	if !ok {
		return nil
	}
	pins := prov.OutputPins()
	if len(pins) == 0 {
		return nil
	}
	if pinIndex < 0 || pinIndex >= len(pins) {
		p.logger.Warn("finish: pin index out of bounds", "index", pinIndex, "pins", len(pins))
		return nil
	}
	pin := pins[pinIndex]
	if ex, ok := pin.(domain.Executable); ok {
		p.bindEnv(pin)
		if err := ex.Execute(ctx, &p.env); err != nil {
			p.logger.Error("execute failed", "object", pin.ID(), "err", err)
		}
	}
	return nil
}

// commit plays one branch against live state. Commits are refused
// while a shadow operation is open.
func (p *Player) commit(ctx context.Context, b domain.Branch) error {
	if p.shadowLevel != 0 {
		return &domain.ReentrantCommitError{Level: p.shadowLevel}
	}
	for _, obj := range b.Path {
		p.bindEnv(obj)
		if ex, ok := obj.(domain.Executable); ok {
			if err := ex.Execute(ctx, &p.env); err != nil {
				p.logger.Error("execute failed", "object", obj.ID(), "err", err)
			}
		}
		p.store.IncrementSeenCounter(string(obj.ID()))
	}
	if target := b.Target(); target != nil {
		p.cursor = target
	}
	return p.updateAvailableBranches(ctx, false)
}

// bindEnv points the script environment at an object. Pin scripts run
// in the owning node's context: self, seen() and speaker all refer to
// the node, not the pin.
func (p *Player) bindEnv(obj domain.FlowObject) {
	id := obj.ID()
	if pin, ok := obj.(domain.Pin); ok && pin.OwnerObject() != nil {
		id = pin.OwnerObject().ID()
	}
	p.env.Object = string(id)
	p.env.Speaker = speakerOf(obj)
}

func speakerOf(obj domain.FlowObject) string {
	if sp, ok := obj.(domain.SpeakerProvider); ok && sp.Speaker() != "" {
		return string(sp.Speaker())
	}
	if pin, ok := obj.(domain.Pin); ok && pin.OwnerObject() != nil {
		if sp, ok := pin.OwnerObject().(domain.SpeakerProvider); ok {
			return string(sp.Speaker())
		}
	}
	return ""
}
