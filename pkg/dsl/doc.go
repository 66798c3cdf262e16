/*
Package dsl provides a Go DSL (Domain Specific Language) for programmatically constructing Espalier flow graphs.

It allows developers to define branching narrative flows using a type-safe, fluent builder pattern
instead of relying on external YAML or Loam files. This is particularly useful for dynamic graph
generation, unit testing, and leveraging IDE autocompletion/type-checking.

Example usage:

	b := dsl.New()
	b.Variable("Quest", "accepted", false)

	b.Line("greet").Speaker("npc").Text("Need a hand?").Go("choice")
	b.Hub("choice").Go("yes", "no")
	b.Line("yes").Menu("Accept").Text("Count me in.").
		Output("yes.out", "Quest.accepted = true", "farewell")
	b.Line("no").Menu("Decline").Text("Not today.").Go("farewell")
	b.Line("farewell").Speaker("npc").Text("Safe travels.")

	// The resulting loader can be passed to espalier.New(...)
	loader := b.Build()
*/
package dsl
