/*
Package dsl provides a Go DSL for programmatically constructing botflow flows.

It allows developers to define nodes, conditional rules and keyboards with a
fluent builder instead of YAML or JSON files. This is useful for generated
flows, unit tests and IDE autocompletion.

Example usage:

	b := dsl.New()

	b.Add("start").
		Start("/start").
		Text("Welcome!").
		Rule("ask_city", 10).NotExists("city").
		Template("Where do you live?").
		WaitForInput("city").
		Then("thanks").
		Skip("Later", "menu").
		End()

	b.Add("thanks").
		Text("Thanks, {city}!").
		Next("menu")

	b.Add("menu").
		Text("What next?").
		Keyboard(domain.KeyboardInline,
			dsl.Select("Basic", "plan", "basic"),
			dsl.Goto("Start over", "start"),
		)

	loader, err := b.Build()
	// ... pass loader to botflow.New(cfg, botflow.WithLoader(loader))
*/
package dsl
