// Package env builds the frozen environment description a module body runs
// against.
//
// A Spec is built once, at load time, from an Options value or a Builder:
//
//	spec, err := env.Build(env.Options{
//		"default_env": true,
//		"overrides": env.Overrides{
//			"answer": env.Present(42),
//			"print":  env.Removed(),
//		},
//	})
//
// Override is a two-case union. Removed unbinds a name the standard
// environment would otherwise provide, which is not the same thing as leaving
// the name out of the override table.
//
// Building a Spec deep-copies every Present value. Functions, channels and
// values implementing Referencer are kept by reference, so a bound function
// may still close over caller state. The caller's Options are never mutated
// and later changes to them are not visible through the Spec.
//
// Compose turns a Spec and the engine's standard bindings into the
// Environment handed to a body.
package env
