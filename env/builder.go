package env

import (
	"slices"

	"github.com/wippyai/modload/errors"
)

// Builder composes a Spec. Entries keep the order of their first Set,
// Remove or Override call. The first invalid call sticks and is returned
// by Build.
type Builder struct {
	entries    map[string]Override
	err        error
	names      []string
	defaultEnv bool
}

// NewBuilder returns a builder for the standard environment with no overrides.
func NewBuilder() *Builder {
	return &Builder{
		entries:    make(map[string]Override),
		defaultEnv: true,
	}
}

// DefaultEnv sets whether the body inherits the standard environment.
func (b *Builder) DefaultEnv(v bool) *Builder {
	b.defaultEnv = v
	return b
}

// Set binds name to value.
func (b *Builder) Set(name string, value any) *Builder {
	return b.Override(name, Present(value))
}

// Remove unbinds name.
func (b *Builder) Remove(name string) *Builder {
	return b.Override(name, Removed())
}

// Override records o for name, replacing an earlier entry in place.
func (b *Builder) Override(name string, o Override) *Builder {
	if b.err != nil {
		return b
	}
	if name == "" {
		b.err = errors.New(errors.PhaseOptions, errors.KindOptionValidation).
			Detail("override name cannot be empty").
			Build()
		return b
	}
	if !o.Valid() {
		b.err = errors.MalformedOverride(name, o)
		return b
	}
	if _, exists := b.entries[name]; !exists {
		b.names = append(b.names, name)
	}
	b.entries[name] = o
	return b
}

// Build returns a Spec detached from the builder. Present values are deep
// copied at this point.
func (b *Builder) Build() (*Spec, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.defaultEnv && len(b.names) == 0 {
		return DefaultSpec(), nil
	}

	s := &Spec{
		entries:    make(map[string]Override, len(b.entries)),
		names:      slices.Clone(b.names),
		defaultEnv: b.defaultEnv,
	}
	for name, o := range b.entries {
		if o.IsPresent() {
			o = Present(deepCopy(o.value))
		}
		s.entries[name] = o
	}
	return s, nil
}
