// Package loader implements the handle registry: loading modules into
// identity-distinct handles, per-handle evaluation caching, cycle detection
// and reclamation of cached state.
//
// # Handle lifecycle
//
// Load resolves an identifier and freezes the load options into an env.Spec,
// then allocates a handle whose cache slot is Unset. Require moves the slot
// through Evaluating to Ready or Failed:
//
//	Unset --Require--> Evaluating --ok--> Ready
//	                              --err-> Failed (or Unset under RetryFailures)
//
// Ready and Failed slots answer every later Require without running the body
// again. A Require that finds the slot Evaluating fails with a cyclic load
// error and leaves the slot alone.
//
// # Reclamation
//
// Cached state lives as long as the handle is reachable. Once the handle is
// garbage collected, a runtime cleanup clears the slot and the source. Release
// does the same deterministically when the last reference is dropped; a
// release during evaluation is applied when the evaluation settles.
//
// # Global require
//
// Bodies see a require binding. Given a handle it calls Registry.Require;
// given any other identifier it uses a cache keyed by source ID, evaluated
// under the default environment. Sandbox overrides of the requiring handle
// are not inherited.
package loader
