package domain

// Branch is one fully explored path from the exploration root to a pause
// point or dead end. Branches are created fresh on every exploration and
// discarded on the next.
type Branch struct {
	// Path lists the objects on the branch in traversal order, root first.
	Path []FlowObject

	// Valid is true unless the path runs through a failing condition.
	// The last object of a path never affects validity: a branch that
	// merely ends at an unsatisfied condition is still valid.
	Valid bool

	// Index is the branch's position in the published branch list.
	// It is -1 until the branch is published.
	Index int
}

// NewBranch returns an empty, valid, unpublished branch.
func NewBranch() Branch {
	return Branch{Valid: true, Index: -1}
}

// Target returns the last object of the path, or nil for an empty branch.
func (b Branch) Target() FlowObject {
	if len(b.Path) == 0 {
		return nil
	}
	return b.Path[len(b.Path)-1]
}
