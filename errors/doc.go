// Package errors provides structured error types for the module loader.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the module identifier, the offending binding or option name,
// a load chain for cycles and the underlying cause.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseOptions, errors.KindOptionValidation).
//		Name("overrides").
//		Detail("expected a mapping, got %T", v).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnknownOption("defualt_env")
//	err := errors.CyclicLoad("lib/a", []string{"lib/a", "lib/b", "lib/a"})
//
// Kind prototypes (ErrCyclicLoad, ErrEvaluation, ...) match any error of that kind:
//
//	if errors.Is(err, errors.ErrCyclicLoad) { ... }
package errors
