package engine

import "slices"

// Source.Meta keys understood by the compiler. They override Config per
// module.
const (
	MetaEntry  = "entry"
	MetaResult = "result"
)

// Config holds configuration for the compiler and every body it produces.
type Config struct {
	// Namespace is the import module name environment bindings are linked
	// under. Imports from any other module are linked as traps.
	Namespace string

	// Result is the WIT type a single result is lifted as, e.g. "s32",
	// "bool" or "char". Empty lifts by the core value type.
	Result string

	// Entry lists export names tried in order; the first one the module
	// exports is called to evaluate the body.
	Entry []string

	// MemoryLimitPages sets the maximum memory per evaluation in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	// 256 = 16MB, 1024 = 64MB, 4096 = 256MB
	MemoryLimitPages uint32
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		Namespace: "env",
		Entry:     []string{"run", "main", "_start"},
	}
}

// withDefaults fills unset fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Namespace == "" {
		c.Namespace = def.Namespace
	}
	if len(c.Entry) == 0 {
		c.Entry = def.Entry
	} else {
		c.Entry = slices.Clone(c.Entry)
	}
	return c
}
