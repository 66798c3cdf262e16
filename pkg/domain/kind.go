package domain

// NodeKind discriminates the closed set of flow node types.
type NodeKind uint8

const (
	KindFlowFragment NodeKind = iota
	KindDialogue
	KindDialogueFragment
	KindHub
	KindJump
	KindCondition
	KindInstruction
	KindPin
)

var kindNames = map[NodeKind]string{
	KindFlowFragment:     "flow_fragment",
	KindDialogue:         "dialogue",
	KindDialogueFragment: "dialogue_fragment",
	KindHub:              "hub",
	KindJump:             "jump",
	KindCondition:        "condition",
	KindInstruction:      "instruction",
	KindPin:              "pin",
}

func (k NodeKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind maps a textual kind (as found in graph documents) back to a
// NodeKind. The second return value reports whether the name is known.
func ParseKind(name string) (NodeKind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// KindSet is a set of node kinds, used as the player's pause predicate.
// The original bit-flag form is only needed when a UI widget binds to it.
type KindSet map[NodeKind]struct{}

// NewKindSet builds a set from the given kinds.
func NewKindSet(kinds ...NodeKind) KindSet {
	s := make(KindSet, len(kinds))
	for _, k := range kinds {
		s[k] = struct{}{}
	}
	return s
}

// DefaultPauseSet is the pause predicate used when none is configured:
// the player halts on dialogues, dialogue fragments and flow fragments.
func DefaultPauseSet() KindSet {
	return NewKindSet(KindDialogue, KindDialogueFragment, KindFlowFragment)
}

// Has reports whether k is in the set.
func (s KindSet) Has(k NodeKind) bool {
	if s == nil {
		return false
	}
	_, ok := s[k]
	return ok
}

// Clone returns an independent copy of the set.
func (s KindSet) Clone() KindSet {
	out := make(KindSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}
