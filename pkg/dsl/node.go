package dsl

import "github.com/aretw0/espalier/pkg/flow"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	def     flow.NodeDef
	builder *Builder
}

// Text sets the spoken or narrative text of the node.
func (n *NodeBuilder) Text(text string) *NodeBuilder {
	n.def.Text = text
	return n
}

// Name sets the display name used by tooling and menus.
func (n *NodeBuilder) Name(name string) *NodeBuilder {
	n.def.DisplayName = name
	return n
}

// Speaker sets the speaking entity for a dialogue fragment.
func (n *NodeBuilder) Speaker(id string) *NodeBuilder {
	n.def.Speaker = id
	return n
}

// Menu sets the short label shown when the line is offered as a choice.
func (n *NodeBuilder) Menu(text string) *NodeBuilder {
	n.def.MenuText = text
	return n
}

// Go adds an outgoing connection from the node's default output pin.
// Targets use "node" or "node#pin" syntax.
func (n *NodeBuilder) Go(targets ...string) *NodeBuilder {
	n.def.To = append(n.def.To, targets...)
	return n
}

// Input adds an input pin with a validity condition.
func (n *NodeBuilder) Input(id, condition string, targets ...string) *NodeBuilder {
	n.def.Inputs = append(n.def.Inputs, flow.PinDef{ID: id, Script: condition, To: targets})
	return n
}

// Output adds an output pin with an instruction that runs on commit.
func (n *NodeBuilder) Output(id, instruction string, targets ...string) *NodeBuilder {
	n.def.Outputs = append(n.def.Outputs, flow.PinDef{ID: id, Script: instruction, To: targets})
	return n
}

// Def returns the underlying node definition.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Def() flow.NodeDef {
	return n.def
}
