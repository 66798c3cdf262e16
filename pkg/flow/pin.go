package flow

import (
	"context"
	"fmt"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/script"
)

// Pin is a connection point on a node. Output pins carry instructions
// that run when the owning node is committed; input pins carry
// conditions that decide branch validity during exploration.
type Pin struct {
	id      domain.ID
	owner   domain.FlowObject
	dir     domain.PinDirection
	source  string
	cond    *script.Condition
	instr   *script.Instruction
	conns   []domain.Connection
	targets []domain.FlowObject
}

func newPin(id domain.ID, owner domain.FlowObject, dir domain.PinDirection, src string) (*Pin, error) {
	p := &Pin{id: id, owner: owner, dir: dir, source: src}
	var err error
	switch dir {
	case domain.Input:
		p.cond, err = script.CompileCondition(src)
	case domain.Output:
		p.instr, err = script.CompileInstruction(src)
	default:
		err = fmt.Errorf("unknown pin direction %d", dir)
	}
	if err != nil {
		return nil, fmt.Errorf("pin %q: %w", id, err)
	}
	return p, nil
}

func (p *Pin) ID() domain.ID                     { return p.id }
func (p *Pin) Kind() domain.NodeKind             { return domain.KindPin }
func (p *Pin) OwnerObject() domain.FlowObject    { return p.owner }
func (p *Pin) Direction() domain.PinDirection    { return p.dir }
func (p *Pin) Connections() []domain.Connection  { return p.conns }
func (p *Pin) Targets() []domain.FlowObject      { return p.targets }

// Script returns the raw script source attached to the pin.
func (p *Pin) Script() string { return p.source }

// AddConnection registers an outgoing edge. Targets are resolved when
// the graph is wired.
func (p *Pin) AddConnection(c domain.Connection) { p.conns = append(p.conns, c) }

func (p *Pin) Explore(ctx context.Context, t domain.Traverser, depth int) []domain.Branch {
	if p.dir == domain.Input {
		return p.exploreInput(ctx, t, depth)
	}
	if len(p.targets) == 0 {
		return []domain.Branch{domain.NewBranch()}
	}
	var out []domain.Branch
	for _, target := range p.targets {
		out = append(out, t.Continue(ctx, target, depth)...)
	}
	return out
}

// exploreInput evaluates the pin's condition and continues past it.
// A failing condition does not stop traversal; it marks every branch
// found downstream as invalid so the caller can filter or surface it.
func (p *Pin) exploreInput(ctx context.Context, t domain.Traverser, depth int) []domain.Branch {
	env := t.Env()
	valid := true
	if p.source != "" && !p.forced(env) {
		ok, err := p.cond.Evaluate(ctx, env)
		if err != nil {
			env.Logger.Warn("input pin condition failed", "pin", p.id, "err", err)
			ok = false
		}
		valid = ok
	}

	var out []domain.Branch
	switch {
	case len(p.targets) > 0:
		for _, target := range p.targets {
			out = append(out, t.Continue(ctx, target, depth)...)
		}
	case p.owner != nil:
		out = t.Continue(ctx, p.owner, depth)
	default:
		out = []domain.Branch{domain.NewBranch()}
	}
	if !valid {
		for i := range out {
			out[i].Valid = false
		}
	}
	return out
}

// forced reports whether fallback evaluation is active for this pin,
// either under its own id or the owning node's.
func (p *Pin) forced(env *script.Env) bool {
	if env.Store.Fallback(string(p.id)) {
		return true
	}
	return p.owner != nil && env.Store.Fallback(string(p.owner.ID()))
}

// Execute runs the pin's script. For output pins this is the attached
// instruction; for input pins the condition runs for its side effects
// on seen counters and method calls, the result is discarded.
func (p *Pin) Execute(ctx context.Context, env *script.Env) error {
	if p.source == "" {
		return nil
	}
	if p.dir == domain.Input {
		_, err := p.cond.Evaluate(ctx, env)
		return err
	}
	return p.instr.Execute(ctx, env)
}
