package runtime

import (
	"context"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/script"
)

// Continue resumes exploration at a downstream object. Nodes call this
// from their Explore implementations.
func (p *Player) Continue(ctx context.Context, obj domain.FlowObject, depth int) []domain.Branch {
	return p.explore(ctx, obj, depth, true)
}

// Env exposes the shared script environment to explorables.
func (p *Player) Env() *script.Env { return &p.env }

// updateAvailableBranches runs one full exploration pass from the
// cursor under a fresh shadow level. On startup passes the cursor is
// part of every path so fast-forward can commit it.
func (p *Player) updateAvailableBranches(ctx context.Context, startup bool) error {
	if p.cursor == nil {
		p.state = domain.StateIdle
		return domain.ErrNoCursor
	}
	if len(p.pauseOn) == 0 {
		p.logger.Warn("pause set is empty, exploration will only stop at dead ends or the depth limit")
	}
	p.state = domain.StateExploring

	branches, err := p.exploreShadowed(ctx, startup)
	if err != nil {
		p.state = domain.StatePaused
		return err
	}
	visible := p.filterValid(branches)

	if len(visible) == 0 {
		// Fallback pass: force the cursor's own conditions true once,
		// so a fully gated-off object still yields a way onward.
		id := string(p.cursor.ID())
		p.store.SetFallbackEvaluation(id, true)
		branches, err = p.exploreShadowed(ctx, startup)
		p.store.SetFallbackEvaluation(id, false)
		if err != nil {
			p.state = domain.StatePaused
			return err
		}
		visible = p.filterValid(branches)
	}

	p.available = branches
	p.visible = visible

	if startup {
		if moved, err := p.fastForward(ctx); err != nil {
			return err
		} else if moved {
			return nil
		}
		p.stripCursorPrefix()
	}
	p.reindex()

	p.state = domain.StatePaused
	if hook := p.hooks.OnPlayerPaused; hook != nil {
		hook(ctx, p.cursor)
	}
	if hook := p.hooks.OnBranchesUpdated; hook != nil {
		hook(ctx, p.visible)
	}
	return nil
}

func (p *Player) exploreShadowed(ctx context.Context, startup bool) ([]domain.Branch, error) {
	var branches []domain.Branch
	err := p.shadowedOperation(ctx, func() {
		branches = p.explore(ctx, p.cursor, 0, startup)
	})
	if err != nil {
		return nil, err
	}
	return prune(branches), nil
}

// shadowedOperation runs op under one pushed shadow level. Variable
// writes and seen increments inside op are discarded on return, pops
// mirroring pushes even if op explores nothing.
func (p *Player) shadowedOperation(ctx context.Context, op func()) error {
	if p.shadowLevel >= p.shadowLevelLimit {
		err := &domain.ShadowLimitError{Level: p.shadowLevel, Limit: p.shadowLevelLimit}
		p.logger.Error("refusing shadow operation", "err", err)
		return err
	}
	p.shadowLevel++
	p.store.PushState(p.shadowLevel)
	p.store.PushSeen()
	if hook := p.hooks.OnShadowOpStart; hook != nil {
		hook(ctx, p.shadowLevel)
	}

	op()

	if hook := p.hooks.OnShadowOpEnd; hook != nil {
		hook(ctx, p.shadowLevel)
	}
	p.store.PopSeen()
	p.store.PopState(p.shadowLevel)
	p.shadowLevel--
	return nil
}

// explore walks the graph from node, depth-first, collecting one
// branch per downstream pause target or dead end. It never mutates
// live state; callers wrap it in a shadow operation.
func (p *Player) explore(ctx context.Context, node domain.FlowObject, depth int, includeCurrent bool) []domain.Branch {
	if node == nil {
		p.logger.Warn("exploration hit a dead end, nil object")
		return []domain.Branch{domain.NewBranch()}
	}
	if depth >= p.exploreLimit {
		p.logger.Warn("exploration depth limit reached, truncating branch",
			"object", node.ID(), "limit", p.exploreLimit)
		return []domain.Branch{terminal(p.unshadowed(node))}
	}
	if node != p.cursor && p.pauseOn.Has(node.Kind()) {
		return []domain.Branch{terminal(p.unshadowed(node))}
	}

	p.bindEnv(node)
	// Record the speculative visit so downstream seen()/unseen() calls
	// observe it; discarded when the shadow level pops. Condition nodes
	// are exempt, their own script must not count the visit it gates.
	if node != p.cursor && node.Kind() != domain.KindCondition {
		p.store.IncrementSeenCounter(string(node.ID()))
	}

	var branches []domain.Branch
	if depth == 0 && p.shouldSubmerge(node) {
		for _, pin := range node.(domain.InputPinsProvider).InputPins() {
			branches = append(branches, p.explore(ctx, pin, depth+1, true)...)
		}
	} else if ex, ok := node.(domain.Explorable); ok {
		branches = ex.Explore(ctx, p, depth+1)
	} else {
		branches = []domain.Branch{domain.NewBranch()}
	}

	if includeCurrent {
		u := p.unshadowed(node)
		for i := range branches {
			branches[i].Path = append([]domain.FlowObject{u}, branches[i].Path...)
		}
	}
	return branches
}

// shouldSubmerge reports whether exploration enters a container
// through its input pins instead of skipping over it. Only compound
// nodes whose input pins have onward connections qualify.
func (p *Player) shouldSubmerge(node domain.FlowObject) bool {
	prov, ok := node.(domain.InputPinsProvider)
	if !ok {
		return false
	}
	for _, pin := range prov.InputPins() {
		if len(pin.Connections()) > 0 {
			return true
		}
	}
	return false
}

// unshadowed swaps an object for its canonical graph instance before
// it lands in a published path.
func (p *Player) unshadowed(obj domain.FlowObject) domain.FlowObject {
	if obj == nil {
		return nil
	}
	if res := p.graph.Object(obj.ID()); res != nil {
		return res
	}
	return obj
}

// stripCursorPrefix drops the leading cursor from startup paths that
// were not fast-forwarded, so published branches always begin at the
// first object to commit.
func (p *Player) stripCursorPrefix() {
	strip := func(set []domain.Branch) []domain.Branch {
		var out []domain.Branch
		for _, b := range set {
			if len(b.Path) > 0 && b.Path[0].ID() == p.cursor.ID() {
				b.Path = b.Path[1:]
			}
			if len(b.Path) > 0 {
				out = append(out, b)
			}
		}
		return out
	}
	p.available = strip(p.available)
	p.visible = strip(p.visible)
}

func (p *Player) filterValid(branches []domain.Branch) []domain.Branch {
	if !p.ignoreInvalid {
		return branches
	}
	var out []domain.Branch
	for _, b := range branches {
		if b.Valid {
			out = append(out, b)
		}
	}
	return out
}

func (p *Player) reindex() {
	for i := range p.visible {
		p.visible[i].Index = i
	}
}

func terminal(obj domain.FlowObject) domain.Branch {
	b := domain.NewBranch()
	b.Path = []domain.FlowObject{obj}
	return b
}

func prune(branches []domain.Branch) []domain.Branch {
	var out []domain.Branch
	for _, b := range branches {
		if len(b.Path) > 0 {
			out = append(out, b)
		}
	}
	return out
}
