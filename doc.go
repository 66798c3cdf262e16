// Package espalier is an interactive narrative flow engine. It walks
// a directed graph of dialogue and logic nodes, exploring every
// reachable branch speculatively before pausing, so the caller always
// sees the full set of choices with their conditions already settled.
//
// Exploration runs under shadowed variable state: condition checks and
// seen counters observe prospective values without touching live
// state. Only playing a branch commits, executing instructions and
// output pin scripts for real.
//
// Typical use:
//
//	eng, err := espalier.New("./story")
//	if err != nil { ... }
//	if err := eng.Start(ctx, "intro"); err != nil { ... }
//	for _, b := range eng.Branches() { ... }
//	if err := eng.Advance(ctx, 0); err != nil { ... }
package espalier
