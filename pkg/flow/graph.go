package flow

import (
	"errors"
	"fmt"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/variables"
)

// VariableDef seeds one global variable into a store when a graph is
// installed into a player.
type VariableDef struct {
	Namespace string `json:"namespace" yaml:"namespace"`
	Name      string `json:"name" yaml:"name"`
	Initial   any    `json:"initial" yaml:"initial"`
}

// Graph holds the flow objects of a narrative and resolves ids to
// objects, pins included. It must be wired before traversal so pin
// connections and jump targets point at live objects.
type Graph struct {
	objects map[domain.ID]domain.FlowObject
	nodes   []domain.FlowObject
	vars    []VariableDef
	wired   bool
}

func NewGraph() *Graph {
	return &Graph{objects: make(map[domain.ID]domain.FlowObject)}
}

// AddNode registers a node and indexes its pins. Duplicate ids are
// rejected, across nodes and pins alike.
func (g *Graph) AddNode(n domain.FlowObject) error {
	if n == nil {
		return errors.New("graph: nil node")
	}
	if err := g.index(n); err != nil {
		return err
	}
	if prov, ok := n.(domain.InputPinsProvider); ok {
		for _, p := range prov.InputPins() {
			if err := g.index(p); err != nil {
				return err
			}
		}
	}
	if prov, ok := n.(domain.OutputPinsProvider); ok {
		for _, p := range prov.OutputPins() {
			if err := g.index(p); err != nil {
				return err
			}
		}
	}
	g.nodes = append(g.nodes, n)
	g.wired = false
	return nil
}

func (g *Graph) index(obj domain.FlowObject) error {
	id := obj.ID()
	if id == "" {
		return errors.New("graph: empty object id")
	}
	if _, exists := g.objects[id]; exists {
		return fmt.Errorf("graph: duplicate id %q", id)
	}
	g.objects[id] = obj
	return nil
}

// Object resolves any flow object, node or pin, by id.
func (g *Graph) Object(id domain.ID) domain.FlowObject { return g.objects[id] }

// Nodes returns the registered nodes in insertion order, pins excluded.
func (g *Graph) Nodes() []domain.FlowObject { return g.nodes }

// DeclareVariable records a global variable to be seeded into a store.
func (g *Graph) DeclareVariable(namespace, name string, initial any) {
	g.vars = append(g.vars, VariableDef{Namespace: namespace, Name: name, Initial: initial})
}

func (g *Graph) Variables() []VariableDef { return g.vars }

// SeedStore declares every recorded variable into the store.
func (g *Graph) SeedStore(store *variables.Store) error {
	for _, v := range g.vars {
		if err := store.Declare(v.Namespace, v.Name, v.Initial); err != nil {
			return err
		}
	}
	return nil
}

// Wire resolves every pin connection and jump target to its object.
// It is idempotent and must run after the last AddNode.
func (g *Graph) Wire() error {
	var errs []error
	for _, n := range g.nodes {
		if prov, ok := n.(domain.InputPinsProvider); ok {
			errs = append(errs, g.wirePins(prov.InputPins())...)
		}
		if prov, ok := n.(domain.OutputPinsProvider); ok {
			errs = append(errs, g.wirePins(prov.OutputPins())...)
		}
		if jump, ok := n.(*Jump); ok {
			target, err := g.resolve(jump.target)
			if err != nil {
				errs = append(errs, fmt.Errorf("jump %q: %w", jump.ID(), err))
				continue
			}
			jump.resolved = target
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	g.wired = true
	return nil
}

func (g *Graph) wirePins(pins []domain.Pin) []error {
	var errs []error
	for _, dp := range pins {
		p, ok := dp.(*Pin)
		if !ok {
			continue
		}
		p.targets = p.targets[:0]
		for _, c := range p.conns {
			target, err := g.resolve(c)
			if err != nil {
				errs = append(errs, fmt.Errorf("pin %q: %w", p.ID(), err))
				continue
			}
			p.targets = append(p.targets, target)
		}
	}
	return errs
}

// resolve maps a connection to its live object. A connection naming a
// target pin lands on the pin; otherwise it lands on the node itself.
func (g *Graph) resolve(c domain.Connection) (domain.FlowObject, error) {
	id := c.TargetNode
	if c.TargetPin != "" {
		id = c.TargetPin
	}
	obj, ok := g.objects[id]
	if !ok {
		return nil, fmt.Errorf("unresolved target %q", id)
	}
	if c.TargetPin != "" {
		if _, isPin := obj.(domain.Pin); !isPin {
			return nil, fmt.Errorf("target %q is not a pin", id)
		}
	}
	return obj, nil
}
