package domain

import "context"

// PlayerHooks defines callbacks for player observability. All hooks are
// optional and invoked synchronously on the player's goroutine.
type PlayerHooks struct {
	// OnPlayerPaused fires when the player settles on a pause point.
	OnPlayerPaused func(context.Context, FlowObject)

	// OnBranchesUpdated fires whenever the published branch list changes.
	OnBranchesUpdated func(context.Context, []Branch)

	// OnShadowOpStart fires when a shadowed operation pushes a new level.
	OnShadowOpStart func(context.Context, int)

	// OnShadowOpEnd fires when the matching level is popped again.
	OnShadowOpEnd func(context.Context, int)
}
