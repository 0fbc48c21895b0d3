// Package modload loads modules into identity-distinct handles and caches
// their evaluation per handle.
//
// A handle is created by Load and owns its resolved source, a frozen
// environment spec and a cache slot. Require evaluates the module body at
// most once per handle; two handles for the same path never share a cache.
// Cached state is released when the handle becomes unreachable or is
// released explicitly.
//
// # Architecture Overview
//
//	modload/             Root package with Source, Resolver, Compiler and Body
//	├── loader/          Handle registry, cache slots, evaluator, finalizer
//	├── env/             Environment specs, overrides and composition
//	├── resolver/        File system, in-memory and chained resolvers
//	├── engine/          WebAssembly compiler and bodies on wazero
//	├── resource/        Live handle table with lifecycle observers
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
//	reg, err := loader.New(loader.Config{
//	    Resolver: resolver.Dir("modules"),
//	    Compiler: compiler,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer reg.Close()
//
//	h, err := reg.Load(ctx, "counter", env.Options{
//	    env.OptionOverrides: env.Overrides{"print": env.Removed()},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	v, err := reg.Require(ctx, h) // evaluates
//	v, err = reg.Require(ctx, h)  // cached
//
// # Sandboxing
//
// The environment of a handle is fixed at Load. Present overrides bind or
// shadow names, Removed overrides unbind them even when the standard
// environment provides them, and default_env false starts from an empty
// environment. Modules required from inside a body use the standard
// environment; overrides are not inherited.
//
// # Thread Safety
//
// Registry and Handle are safe for concurrent use. A Require of a handle
// that is still evaluating, from any goroutine, fails with a cyclic load
// error instead of waiting.
package modload
