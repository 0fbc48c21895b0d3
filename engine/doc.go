// Package engine evaluates WebAssembly modules on wazero.
//
// A Compiler validates a module source once and returns a body. Every Run
// of a body gets its own wazero runtime: imports of the "env" namespace are
// linked from the environment the body runs under, the entry export is
// called and its results become the module value.
//
// # Linking
//
// An import is resolved by name in the environment:
//
//	Go func            linked with WithFunc; its signature must match the import
//	HostFunc           linked with WithGoModuleFunction and explicit core types
//	api.GoModuleFunc   linked with the import's own types
//	unbound name       linked as a function that fails with an unbound error
//
// A name removed by a sandbox override is unbound, so a module that imports
// it still instantiates and only fails if it actually calls it.
//
// # Results
//
// Without a result type, core results map to int32, int64, float32 and
// float64. Config.Result or the "result" source meta key names a WIT type
// (bool, s8..u64, f32, f64, char) that a single result is lifted as.
//
// # Cancellation
//
// Runtimes are created with WithCloseOnContextDone, so cancelling the
// evaluation context stops a running body.
package engine
