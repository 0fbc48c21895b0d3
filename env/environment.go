package env

import (
	"maps"
	"slices"
)

// Bindings is a set of named values, typically the engine's standard
// environment.
type Bindings map[string]any

// Clone returns a shallow copy of b.
func (b Bindings) Clone() Bindings {
	return maps.Clone(b)
}

// Environment is the resolved set of bindings a single evaluation runs under.
type Environment struct {
	vars map[string]any
}

// Compose starts from standard when spec inherits the default environment,
// otherwise from nothing, then applies spec's overrides in order.
// A nil spec means DefaultSpec.
func Compose(standard Bindings, spec *Spec) *Environment {
	if spec == nil {
		spec = DefaultSpec()
	}

	vars := make(map[string]any, len(standard)+spec.Len())
	if spec.defaultEnv {
		maps.Copy(vars, standard)
	}
	for _, name := range spec.names {
		o := spec.entries[name]
		if o.IsRemoved() {
			delete(vars, name)
			continue
		}
		vars[name] = o.value
	}
	return &Environment{vars: vars}
}

// Lookup returns the value bound to name.
func (e *Environment) Lookup(name string) (any, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// Has reports whether name is bound.
func (e *Environment) Has(name string) bool {
	_, ok := e.vars[name]
	return ok
}

// Names returns the bound names, sorted.
func (e *Environment) Names() []string {
	return slices.Sorted(maps.Keys(e.vars))
}

func (e *Environment) Len() int {
	return len(e.vars)
}

// ByReference implements Referencer.
func (e *Environment) ByReference() {}

// Get returns the value bound to name if it has type T.
func Get[T any](e *Environment, name string) (T, bool) {
	v, ok := e.vars[name]
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}
