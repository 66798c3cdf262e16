package dsl

import (
	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/flow"
)

// Builder manages the graph construction.
type Builder struct {
	order []*NodeBuilder
	nodes map[string]*NodeBuilder
	vars  []flow.VariableDef
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{nodes: make(map[string]*NodeBuilder)}
}

// Variable declares a global variable with its initial value.
func (b *Builder) Variable(namespace, name string, initial any) *Builder {
	b.vars = append(b.vars, flow.VariableDef{Namespace: namespace, Name: name, Initial: initial})
	return b
}

func (b *Builder) add(id, kind string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{def: flow.NodeDef{ID: id, Kind: kind}, builder: b}
	b.nodes[id] = nb
	b.order = append(b.order, nb)
	return nb
}

// FlowFragment adds a flow fragment node.
func (b *Builder) FlowFragment(id string) *NodeBuilder { return b.add(id, "flow_fragment") }

// Dialogue adds a dialogue container node.
func (b *Builder) Dialogue(id string) *NodeBuilder { return b.add(id, "dialogue") }

// Line adds a dialogue fragment, one spoken line.
func (b *Builder) Line(id string) *NodeBuilder { return b.add(id, "dialogue_fragment") }

// Hub adds a junction node.
func (b *Builder) Hub(id string) *NodeBuilder { return b.add(id, "hub") }

// Jump adds a jump node targeting another object.
func (b *Builder) Jump(id, target string) *NodeBuilder {
	nb := b.add(id, "jump")
	nb.def.Target = target
	return nb
}

// Condition adds a condition node gating traversal.
func (b *Builder) Condition(id, expression string) *NodeBuilder {
	nb := b.add(id, "condition")
	nb.def.Expression = expression
	return nb
}

// Instruction adds an instruction node that runs a script on commit.
func (b *Builder) Instruction(id, expression string) *NodeBuilder {
	nb := b.add(id, "instruction")
	nb.def.Expression = expression
	return nb
}

// Defs returns the accumulated node definitions in declaration order.
func (b *Builder) Defs() []flow.NodeDef {
	defs := make([]flow.NodeDef, 0, len(b.order))
	for _, nb := range b.order {
		defs = append(defs, nb.def)
	}
	return defs
}

// Graph compiles the definitions into a wired graph.
func (b *Builder) Graph() (*flow.Graph, error) {
	return flow.BuildGraph(b.Defs(), b.vars)
}

// Build compiles the graph into a memory loader, usable as a
// ports.GraphLoader.
func (b *Builder) Build() *memory.Loader {
	return memory.NewLoader(b.Defs(), b.vars)
}
