/*
Package dsl provides a Go DSL for programmatically constructing automaton definitions.

It lets developers declare states, rules and scenarios with a fluent builder
instead of YAML or Markdown files. This is useful for built-in catalogs,
unit tests and generated automata.

Example usage:

	b := dsl.New("toggle", domain.Deterministic)

	b.Add("Q0").Label("off").Initial().
		On("flip", "Q1")

	b.Add("Q1").Label("on").Accepting().
		On("flip", "Q0")

	b.Scenario("twice", "flip", "flip")

	def, err := b.Build()
	// ... def.Compile() or pass b.Loader() to authflow.New(...)
*/
package dsl
