package flow

import (
	"errors"
	"fmt"

	"github.com/aretw0/espalier/pkg/domain"
)

// Validate checks graph integrity without traversing it: every
// connection must resolve, every jump must land on a live object, and
// every pin must belong to the node it is attached to. Scripts were
// already compiled at construction, so no script checks happen here.
func (g *Graph) Validate() error {
	var errs []error
	if len(g.nodes) == 0 {
		errs = append(errs, errors.New("graph has no nodes"))
	}
	for _, n := range g.nodes {
		errs = append(errs, g.validatePins(n, pinsOf(n))...)
		if jump, ok := n.(*Jump); ok {
			if _, err := g.resolve(jump.target); err != nil {
				errs = append(errs, fmt.Errorf("jump %q: %w", jump.ID(), err))
			}
		}
	}
	return errors.Join(errs...)
}

func (g *Graph) validatePins(owner domain.FlowObject, pins []domain.Pin) []error {
	var errs []error
	for _, p := range pins {
		if p.OwnerObject() == nil || p.OwnerObject().ID() != owner.ID() {
			errs = append(errs, fmt.Errorf("pin %q is not owned by node %q", p.ID(), owner.ID()))
		}
		for _, c := range p.Connections() {
			if _, err := g.resolve(c); err != nil {
				errs = append(errs, fmt.Errorf("pin %q: %w", p.ID(), err))
			}
		}
	}
	return errs
}

func pinsOf(n domain.FlowObject) []domain.Pin {
	var pins []domain.Pin
	if prov, ok := n.(domain.InputPinsProvider); ok {
		pins = append(pins, prov.InputPins()...)
	}
	if prov, ok := n.(domain.OutputPinsProvider); ok {
		pins = append(pins, prov.OutputPins()...)
	}
	return pins
}

// Reachable returns the set of node and pin ids reachable from start
// by following pin connections, jump targets and pin ownership. Used
// by tooling to report orphaned parts of a graph.
func (g *Graph) Reachable(start domain.ID) map[domain.ID]struct{} {
	seen := make(map[domain.ID]struct{})
	var visit func(obj domain.FlowObject)
	visit = func(obj domain.FlowObject) {
		if obj == nil {
			return
		}
		if _, ok := seen[obj.ID()]; ok {
			return
		}
		seen[obj.ID()] = struct{}{}
		if jump, ok := obj.(*Jump); ok {
			visit(jump.resolved)
		}
		for _, p := range pinsOf(obj) {
			seen[p.ID()] = struct{}{}
			for _, target := range p.Targets() {
				visit(target)
			}
		}
		if p, ok := obj.(domain.Pin); ok {
			for _, target := range p.Targets() {
				visit(target)
			}
		}
	}
	visit(g.Object(start))
	return seen
}
