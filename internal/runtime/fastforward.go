package runtime

import (
	"context"

	"github.com/aretw0/espalier/pkg/domain"
)

// fastForward commits the shared non-branching prefix of the published
// set so the player does not pause on plumbing nodes after a cursor
// move. It walks the first branch while every other branch agrees on
// the same object and nothing pausable is reached, then enqueues the
// prefix as a branch of its own. Returns true when a commit was
// scheduled; the caller stops publishing, the commit's own exploration
// will publish instead.
func (p *Player) fastForward(ctx context.Context) (bool, error) {
	if len(p.visible) == 0 {
		return false, nil
	}
	first := p.visible[0]

	last := -1
	for i, obj := range first.Path {
		if i > 0 && p.pauseOn.Has(obj.Kind()) {
			break
		}
		if !p.sharedAt(i, obj) {
			break
		}
		last = i
	}
	// Index 0 is the cursor itself; a prefix of just the cursor is
	// not a move.
	if last < 1 {
		return false, nil
	}

	b := domain.Branch{
		Path:  first.Path[:last+1],
		Valid: first.Valid,
		Index: first.Index,
	}
	p.logger.Debug("fast-forwarding", "to", b.Path[len(b.Path)-1].ID(), "steps", last)
	if err := p.PlayBranch(ctx, b); err != nil {
		return false, err
	}
	return true, nil
}

// sharedAt reports whether every published branch has obj at index i.
func (p *Player) sharedAt(i int, obj domain.FlowObject) bool {
	for _, b := range p.visible[1:] {
		if i >= len(b.Path) || b.Path[i].ID() != obj.ID() {
			return false
		}
	}
	return true
}
