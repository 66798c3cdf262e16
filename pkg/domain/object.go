package domain

import (
	"context"

	"github.com/aretw0/espalier/pkg/script"
)

// ID identifies a node or pin for the lifetime of a session.
type ID string

// FlowObject is the minimal contract every addressable flow element
// (node or pin) fulfills.
type FlowObject interface {
	ID() ID
	Kind() NodeKind
}

// Traverser is the exploration callback handed to nodes. It is implemented
// by the player and lets a node continue exploration into its neighbors
// without knowing anything about shadowing, depth limits or pause masks.
type Traverser interface {
	// Continue resumes exploration at a downstream object. Passing nil
	// records a dead end (a broken connection) instead of panicking.
	Continue(ctx context.Context, obj FlowObject, depth int) []Branch

	// Env returns the script environment bound to the object currently
	// being explored (current object and speaker already set).
	Env() *script.Env
}

// Explorable is implemented by objects that can be traversed.
type Explorable interface {
	// Explore visits the object's outgoing edges and returns all branches
	// found downstream. Depth bookkeeping is owned by the traverser.
	Explore(ctx context.Context, t Traverser, depth int) []Branch
}

// Executable is implemented by objects that run a script when a branch
// containing them is committed.
type Executable interface {
	Execute(ctx context.Context, env *script.Env) error
}

// PinDirection tells input pins from output pins.
type PinDirection uint8

const (
	Input PinDirection = iota
	Output
)

func (d PinDirection) String() string {
	if d == Input {
		return "input"
	}
	return "output"
}

// Connection is the raw edge record of an output pin: the target node and,
// optionally, the specific target pin on that node.
type Connection struct {
	TargetNode ID `json:"target_node" yaml:"target_node"`
	TargetPin  ID `json:"target_pin,omitempty" yaml:"target_pin,omitempty"`
}

// Pin is an addressable entry or exit point on a node. Output pins own
// ordered connections; input pins may carry a condition script.
type Pin interface {
	FlowObject
	Explorable

	// OwnerObject is the node this pin belongs to.
	OwnerObject() FlowObject
	Direction() PinDirection
	// Connections returns the raw edge records in natural order.
	Connections() []Connection
	// Targets returns the connection targets resolved at graph load,
	// in the same order as Connections.
	Targets() []FlowObject
}

// InputPinsProvider is implemented by nodes with addressable entry points.
// Exploration at depth zero submerges through these instead of the node body.
type InputPinsProvider interface {
	InputPins() []Pin
}

// OutputPinsProvider is implemented by nodes with addressable exit points.
type OutputPinsProvider interface {
	OutputPins() []Pin
}

// SpeakerProvider is implemented by nodes with an attributed speaker.
// A pin inherits the speaker of its owning node.
type SpeakerProvider interface {
	Speaker() ID
}
