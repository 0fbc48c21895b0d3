package env

import (
	"maps"
	"slices"
	"strings"

	"github.com/wippyai/modload/errors"
)

// Recognized Options keys.
const (
	OptionDefaultEnv = "default_env"
	OptionOverrides  = "overrides"
)

// Options is the caller-facing load configuration. Recognized keys are
// OptionDefaultEnv (bool, default true) and OptionOverrides (Overrides,
// map[string]Override or map[string]any holding Override values).
type Options map[string]any

// Spec is an immutable environment description.
type Spec struct {
	entries    map[string]Override
	names      []string
	defaultEnv bool
}

var defaultSpec = &Spec{defaultEnv: true}

// DefaultSpec returns the spec used when no options are given: the standard
// environment with no overrides.
func DefaultSpec() *Spec {
	return defaultSpec
}

// Build validates opts and freezes them into a Spec.
func Build(opts Options) (*Spec, error) {
	if len(opts) == 0 {
		return DefaultSpec(), nil
	}

	b := NewBuilder()
	// Sorted so the reported error does not depend on map order
	for _, key := range slices.Sorted(maps.Keys(opts)) {
		value := opts[key]
		switch key {
		case OptionDefaultEnv:
			flag, ok := value.(bool)
			if !ok {
				return nil, errors.InvalidOption(key, value, "bool")
			}
			b.DefaultEnv(flag)
		case OptionOverrides:
			if err := b.overrides(value); err != nil {
				return nil, err
			}
		default:
			return nil, errors.UnknownOption(key)
		}
	}
	return b.Build()
}

func (b *Builder) overrides(value any) error {
	switch m := value.(type) {
	case nil:
	case Overrides:
		for _, name := range slices.Sorted(maps.Keys(m)) {
			b.Override(name, m[name])
		}
	case map[string]Override:
		for _, name := range slices.Sorted(maps.Keys(m)) {
			b.Override(name, m[name])
		}
	case map[string]any:
		for _, name := range slices.Sorted(maps.Keys(m)) {
			switch o := m[name].(type) {
			case Override:
				b.Override(name, o)
			case *Override:
				if o == nil {
					return errors.MalformedOverride(name, m[name])
				}
				b.Override(name, *o)
			default:
				return errors.MalformedOverride(name, m[name])
			}
		}
	default:
		return errors.InvalidOption(OptionOverrides, value, "mapping of name to Override")
	}
	return b.err
}

// DefaultEnv reports whether the body inherits the standard environment.
func (s *Spec) DefaultEnv() bool {
	return s.defaultEnv
}

// Lookup returns the override for name. ok is false when name is not
// overridden; a Removed entry returns ok true.
func (s *Spec) Lookup(name string) (Override, bool) {
	o, ok := s.entries[name]
	return o, ok
}

// Names returns overridden names in application order.
func (s *Spec) Names() []string {
	return slices.Clone(s.names)
}

// Len returns the number of override entries.
func (s *Spec) Len() int {
	return len(s.names)
}

// Sandboxed reports whether the spec differs from DefaultSpec.
func (s *Spec) Sandboxed() bool {
	return !s.defaultEnv || len(s.names) > 0
}

// ByReference implements Referencer.
func (s *Spec) ByReference() {}

func (s *Spec) String() string {
	var b strings.Builder
	if s.defaultEnv {
		b.WriteString("default")
	} else {
		b.WriteString("empty")
	}
	for _, name := range s.names {
		b.WriteByte(' ')
		if s.entries[name].IsRemoved() {
			b.WriteByte('-')
		} else {
			b.WriteByte('+')
		}
		b.WriteString(name)
	}
	return b.String()
}
