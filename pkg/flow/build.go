package flow

import (
	"fmt"
	"strings"

	"github.com/aretw0/espalier/pkg/domain"
)

// PinDef describes one pin in a serialized graph. Targets use the
// "node" or "node#pin" syntax; "#pin" alone addresses a pin directly.
type PinDef struct {
	ID     string   `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	Script string   `json:"script,omitempty" yaml:"script,omitempty" mapstructure:"script"`
	To     []string `json:"to,omitempty" yaml:"to,omitempty" mapstructure:"to"`
}

// NodeDef is the storage-neutral description of a flow node. Every
// loader (Loam, YAML, memory) decodes into this and hands it to
// BuildGraph.
type NodeDef struct {
	ID          string   `json:"id" yaml:"id" mapstructure:"id"`
	Kind        string   `json:"kind" yaml:"kind" mapstructure:"kind"`
	DisplayName string   `json:"display_name,omitempty" yaml:"display_name,omitempty" mapstructure:"display_name"`
	Text        string   `json:"text,omitempty" yaml:"text,omitempty" mapstructure:"text"`
	Speaker     string   `json:"speaker,omitempty" yaml:"speaker,omitempty" mapstructure:"speaker"`
	MenuText    string   `json:"menu_text,omitempty" yaml:"menu_text,omitempty" mapstructure:"menu_text"`
	Expression  string   `json:"expression,omitempty" yaml:"expression,omitempty" mapstructure:"expression"`
	Target      string   `json:"target,omitempty" yaml:"target,omitempty" mapstructure:"target"`
	Inputs      []PinDef `json:"inputs,omitempty" yaml:"inputs,omitempty" mapstructure:"inputs"`
	Outputs     []PinDef `json:"outputs,omitempty" yaml:"outputs,omitempty" mapstructure:"outputs"`

	// To is sugar for a single unnamed output pin with these targets.
	To []string `json:"to,omitempty" yaml:"to,omitempty" mapstructure:"to"`
}

// BuildGraph materializes node definitions into a wired graph.
func BuildGraph(defs []NodeDef, vars []VariableDef) (*Graph, error) {
	g := NewGraph()
	for _, v := range vars {
		g.DeclareVariable(v.Namespace, v.Name, v.Initial)
	}
	for _, def := range defs {
		node, err := buildNode(def)
		if err != nil {
			return nil, err
		}
		if err := g.AddNode(node); err != nil {
			return nil, err
		}
	}
	if err := g.Wire(); err != nil {
		return nil, err
	}
	return g, nil
}

func buildNode(def NodeDef) (domain.FlowObject, error) {
	if def.ID == "" {
		return nil, fmt.Errorf("node definition without id")
	}
	kind, ok := domain.ParseKind(def.Kind)
	if !ok {
		return nil, fmt.Errorf("node %q: unknown kind %q", def.ID, def.Kind)
	}

	var base *BaseNode
	var node domain.FlowObject
	switch kind {
	case domain.KindFlowFragment:
		n := NewFlowFragment(domain.ID(def.ID))
		base, node = &n.BaseNode, n
	case domain.KindDialogue:
		n := NewDialogue(domain.ID(def.ID))
		base, node = &n.BaseNode, n
	case domain.KindDialogueFragment:
		n := NewDialogueFragment(domain.ID(def.ID))
		n.SetMenuText(def.MenuText)
		base, node = &n.BaseNode, n
	case domain.KindHub:
		n := NewHub(domain.ID(def.ID))
		base, node = &n.BaseNode, n
	case domain.KindJump:
		if def.Target == "" {
			return nil, fmt.Errorf("jump %q: missing target", def.ID)
		}
		n := NewJump(domain.ID(def.ID), parseTarget(def.Target))
		base, node = &n.BaseNode, n
	case domain.KindCondition:
		n, err := NewCondition(domain.ID(def.ID), def.Expression)
		if err != nil {
			return nil, err
		}
		base, node = &n.BaseNode, n
	case domain.KindInstruction:
		n, err := NewInstruction(domain.ID(def.ID), def.Expression)
		if err != nil {
			return nil, err
		}
		base, node = &n.BaseNode, n
	default:
		return nil, fmt.Errorf("node %q: kind %q is not constructible", def.ID, def.Kind)
	}

	base.SetDisplayName(def.DisplayName)
	base.SetText(def.Text)
	base.SetSpeaker(domain.ID(def.Speaker))

	for i, pd := range def.Inputs {
		pin, err := base.AddInputPin(pinID(def.ID, "in", pd.ID, i), pd.Script)
		if err != nil {
			return nil, err
		}
		for _, t := range pd.To {
			pin.AddConnection(parseTarget(t))
		}
	}
	outputs := def.Outputs
	if len(outputs) == 0 && len(def.To) > 0 {
		outputs = []PinDef{{To: def.To}}
	}
	for i, pd := range outputs {
		pin, err := base.AddOutputPin(pinID(def.ID, "out", pd.ID, i), pd.Script)
		if err != nil {
			return nil, err
		}
		for _, t := range pd.To {
			pin.AddConnection(parseTarget(t))
		}
	}
	return node, nil
}

func pinID(nodeID, dir, explicit string, i int) domain.ID {
	if explicit != "" {
		return domain.ID(explicit)
	}
	if i == 0 {
		return domain.ID(fmt.Sprintf("%s.%s", nodeID, dir))
	}
	return domain.ID(fmt.Sprintf("%s.%s%d", nodeID, dir, i))
}

// parseTarget splits "node#pin" references. A bare "node" lands on the
// node, "#pin" or "node#pin" lands on the pin.
func parseTarget(s string) domain.Connection {
	if node, pin, found := strings.Cut(s, "#"); found {
		return domain.Connection{TargetNode: domain.ID(node), TargetPin: domain.ID(pin)}
	}
	return domain.Connection{TargetNode: domain.ID(s)}
}
