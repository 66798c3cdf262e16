// Package domain contains the core contracts of the Espalier flow model:
// node identity and kinds, capability interfaces (Explorable, Executable,
// pin providers), branches, connections and player lifecycle hooks.
//
// The package deliberately holds no traversal logic. Concrete node types
// live in pkg/flow; the exploration and commit machinery lives in the
// internal runtime and reaches the model exclusively through these contracts.
package domain
