package env

import "fmt"

type overrideKind uint8

const (
	overrideInvalid overrideKind = iota
	overridePresent
	overrideRemoved
)

// Override is one entry of an override table. The zero Override is
// malformed; construct entries with Present or Removed.
type Override struct {
	value any
	kind  overrideKind
}

// Present binds a name to value, shadowing any standard binding.
func Present(value any) Override {
	return Override{value: value, kind: overridePresent}
}

// Removed unbinds a name even when the standard environment provides it.
func Removed() Override {
	return Override{kind: overrideRemoved}
}

func (o Override) IsPresent() bool { return o.kind == overridePresent }

func (o Override) IsRemoved() bool { return o.kind == overrideRemoved }

// Valid reports whether o was built by Present or Removed.
func (o Override) Valid() bool {
	return o.kind == overridePresent || o.kind == overrideRemoved
}

// Value returns the bound value. It is nil for Removed entries.
func (o Override) Value() any {
	return o.value
}

func (o Override) String() string {
	switch o.kind {
	case overridePresent:
		return fmt.Sprintf("present(%T)", o.value)
	case overrideRemoved:
		return "removed"
	default:
		return "invalid"
	}
}

// Overrides maps binding names to override entries.
type Overrides map[string]Override
