package flow

import (
	"context"
	"fmt"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/script"
)

// BaseNode carries the fields and pin plumbing shared by every node
// kind. Concrete kinds embed it and add their own traversal behavior.
type BaseNode struct {
	id          domain.ID
	kind        domain.NodeKind
	displayName string
	text        string
	speaker     domain.ID
	inPins      []*Pin
	outPins     []*Pin

	// outer is the concrete node embedding this BaseNode, set by the
	// constructors so pins report the concrete type as their owner.
	outer domain.FlowObject
}

func newBase(id domain.ID, kind domain.NodeKind) BaseNode {
	return BaseNode{id: id, kind: kind}
}

func (n *BaseNode) ID() domain.ID         { return n.id }
func (n *BaseNode) Kind() domain.NodeKind { return n.kind }
func (n *BaseNode) DisplayName() string   { return n.displayName }
func (n *BaseNode) Text() string          { return n.text }
func (n *BaseNode) Speaker() domain.ID    { return n.speaker }

func (n *BaseNode) SetDisplayName(name string)   { n.displayName = name }
func (n *BaseNode) SetText(text string)          { n.text = text }
func (n *BaseNode) SetSpeaker(speaker domain.ID) { n.speaker = speaker }

// AddInputPin attaches an input pin with an optional condition script.
func (n *BaseNode) AddInputPin(id domain.ID, condition string) (*Pin, error) {
	p, err := newPin(id, n.self(), domain.Input, condition)
	if err != nil {
		return nil, err
	}
	n.inPins = append(n.inPins, p)
	return p, nil
}

// AddOutputPin attaches an output pin with an optional instruction script.
func (n *BaseNode) AddOutputPin(id domain.ID, instruction string) (*Pin, error) {
	p, err := newPin(id, n.self(), domain.Output, instruction)
	if err != nil {
		return nil, err
	}
	n.outPins = append(n.outPins, p)
	return p, nil
}

func (n *BaseNode) InputPins() []domain.Pin {
	pins := make([]domain.Pin, len(n.inPins))
	for i, p := range n.inPins {
		pins[i] = p
	}
	return pins
}

func (n *BaseNode) OutputPins() []domain.Pin {
	pins := make([]domain.Pin, len(n.outPins))
	for i, p := range n.outPins {
		pins[i] = p
	}
	return pins
}

func (n *BaseNode) self() domain.FlowObject {
	if n.outer != nil {
		return n.outer
	}
	return n
}

// exploreOutputs walks every output pin in declaration order. A node
// with no connected outputs yields a single empty branch, which the
// traverser turns into a dead end at the node itself.
func (n *BaseNode) exploreOutputs(ctx context.Context, t domain.Traverser, depth int) []domain.Branch {
	if len(n.outPins) == 0 {
		return []domain.Branch{domain.NewBranch()}
	}
	var out []domain.Branch
	for _, p := range n.outPins {
		out = append(out, t.Continue(ctx, p, depth)...)
	}
	return out
}

// FlowFragment groups a sub-flow behind its own pins.
type FlowFragment struct{ BaseNode }

func NewFlowFragment(id domain.ID) *FlowFragment {
	n := &FlowFragment{BaseNode: newBase(id, domain.KindFlowFragment)}
	n.outer = n
	return n
}

func (n *FlowFragment) Explore(ctx context.Context, t domain.Traverser, depth int) []domain.Branch {
	return n.exploreOutputs(ctx, t, depth)
}

// Dialogue is a container for dialogue fragments.
type Dialogue struct{ BaseNode }

func NewDialogue(id domain.ID) *Dialogue {
	n := &Dialogue{BaseNode: newBase(id, domain.KindDialogue)}
	n.outer = n
	return n
}

func (n *Dialogue) Explore(ctx context.Context, t domain.Traverser, depth int) []domain.Branch {
	return n.exploreOutputs(ctx, t, depth)
}

// DialogueFragment is a single line of dialogue with an optional
// speaker and menu text.
type DialogueFragment struct {
	BaseNode
	menuText string
}

func NewDialogueFragment(id domain.ID) *DialogueFragment {
	n := &DialogueFragment{BaseNode: newBase(id, domain.KindDialogueFragment)}
	n.outer = n
	return n
}

func (n *DialogueFragment) MenuText() string        { return n.menuText }
func (n *DialogueFragment) SetMenuText(text string) { n.menuText = text }

func (n *DialogueFragment) Explore(ctx context.Context, t domain.Traverser, depth int) []domain.Branch {
	return n.exploreOutputs(ctx, t, depth)
}

// Hub is a junction with no behavior of its own. Its value is purely
// structural, merging and splitting branches.
type Hub struct{ BaseNode }

func NewHub(id domain.ID) *Hub {
	n := &Hub{BaseNode: newBase(id, domain.KindHub)}
	n.outer = n
	return n
}

func (n *Hub) Explore(ctx context.Context, t domain.Traverser, depth int) []domain.Branch {
	return n.exploreOutputs(ctx, t, depth)
}

// Jump teleports traversal to another object in the graph. It never
// appears as a pause target; exploration passes straight through it.
type Jump struct {
	BaseNode
	target   domain.Connection
	resolved domain.FlowObject
}

func NewJump(id domain.ID, target domain.Connection) *Jump {
	n := &Jump{BaseNode: newBase(id, domain.KindJump), target: target}
	n.outer = n
	return n
}

func (n *Jump) Target() domain.Connection { return n.target }

func (n *Jump) Explore(ctx context.Context, t domain.Traverser, depth int) []domain.Branch {
	// A nil resolved target records a dead end instead of silently
	// truncating the branch; the traverser logs it.
	return t.Continue(ctx, n.resolved, depth)
}

// Condition gates traversal. Unlike an input pin condition, a false
// result ends the branch here rather than marking it invalid.
type Condition struct {
	BaseNode
	source string
	cond   *script.Condition
}

func NewCondition(id domain.ID, src string) (*Condition, error) {
	cond, err := script.CompileCondition(src)
	if err != nil {
		return nil, fmt.Errorf("condition %q: %w", id, err)
	}
	n := &Condition{BaseNode: newBase(id, domain.KindCondition), source: src, cond: cond}
	n.outer = n
	return n, nil
}

func (n *Condition) Source() string { return n.source }

func (n *Condition) Explore(ctx context.Context, t domain.Traverser, depth int) []domain.Branch {
	env := t.Env()
	ok := true
	if n.source != "" && !env.Store.Fallback(string(n.id)) {
		var err error
		ok, err = n.cond.Evaluate(ctx, env)
		if err != nil {
			env.Logger.Warn("condition node failed", "node", n.id, "err", err)
			ok = false
		}
	}
	if !ok {
		return []domain.Branch{domain.NewBranch()}
	}
	return n.exploreOutputs(ctx, t, depth)
}

// Instruction runs a script when committed. During exploration it is
// pass-through; the script only executes on commit, under shadow when
// the engine is speculating.
type Instruction struct {
	BaseNode
	source string
	instr  *script.Instruction
}

func NewInstruction(id domain.ID, src string) (*Instruction, error) {
	instr, err := script.CompileInstruction(src)
	if err != nil {
		return nil, fmt.Errorf("instruction %q: %w", id, err)
	}
	n := &Instruction{BaseNode: newBase(id, domain.KindInstruction), source: src, instr: instr}
	n.outer = n
	return n, nil
}

func (n *Instruction) Source() string { return n.source }

func (n *Instruction) Explore(ctx context.Context, t domain.Traverser, depth int) []domain.Branch {
	return n.exploreOutputs(ctx, t, depth)
}

func (n *Instruction) Execute(ctx context.Context, env *script.Env) error {
	return n.instr.Execute(ctx, env)
}
