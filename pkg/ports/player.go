package ports

import (
	"context"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/variables"
)

// FlowPlayer is the surface adapters (HTTP, CLI, TUI) drive the engine
// through. It is implemented by the runtime player and re-exported by
// the root facade.
type FlowPlayer interface {
	// SetStartNode positions the cursor and runs the initial
	// exploration, fast-forwarding through any non-branching prefix.
	SetStartNode(ctx context.Context, id domain.ID) error

	// SetCursorTo repositions the cursor on an arbitrary object and
	// re-explores from it.
	SetCursorTo(ctx context.Context, id domain.ID) error

	// UpdateAvailableBranches re-runs exploration from the current
	// cursor without moving it.
	UpdateAvailableBranches(ctx context.Context) error

	// SetIgnoreInvalidBranches toggles filtering of invalid branches
	// from the published set and re-explores in place.
	SetIgnoreInvalidBranches(ctx context.Context, ignore bool) error

	// AvailableBranches returns the branch set published by the last
	// exploration, filtered per the invalid-branch policy.
	AvailableBranches() []domain.Branch

	// Play selects a branch by index and advances through it on the
	// next Tick.
	Play(ctx context.Context, index int) error

	// PlayBranch enqueues an explicit branch, bypassing index lookup.
	PlayBranch(ctx context.Context, b domain.Branch) error

	// Tick drains the commit queue, executing queued branches live.
	Tick(ctx context.Context) error

	// FinishCurrentPausedObject runs the script of the cursor's output
	// pin at pinIndex against live state, without moving the cursor or
	// re-exploring. Out-of-range indexes are ignored.
	FinishCurrentPausedObject(ctx context.Context, pinIndex int) error

	Cursor() domain.FlowObject
	State() domain.PlayerState
	Store() *variables.Store
}

// ObjectResolver maps ids back to live graph objects. The runtime uses
// it to swap shadow copies for their unshadowed originals before
// publishing branches.
type ObjectResolver interface {
	Object(id domain.ID) domain.FlowObject
}
