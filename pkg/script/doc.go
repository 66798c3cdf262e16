// Package script implements the small deterministic expression language
// used by condition and instruction nodes.
//
// Conditions are boolean expressions over namespaced variables, e.g.
//
//	inventory.keys > 0 && !seen()
//
// Instructions are statement lists with simple assignments, e.g.
//
//	inventory.keys -= 1; doors.cellar = true
//
// Scripts are compiled once at graph load and evaluated against a
// variables.Store. The builtins seen(), unseen() and seenCount() read the
// visit counter of the object the script is attached to; every other call
// is dispatched to a MethodProvider.
package script
