package modload

import (
	"context"

	"github.com/wippyai/modload/env"
)

// Source describes a resolved module.
type Source struct {
	// Meta carries resolver-specific hints, such as the WIT result type.
	Meta map[string]string
	// ID is the canonical key of the module. Handle identity never depends on it.
	ID string
	// Name is a display name used in errors and logs.
	Name string
	Data []byte
}

// Resolver maps an identifier to a source descriptor.
// Identifiers are opaque: strings, host references or anything a resolver
// understands.
type Resolver interface {
	Resolve(ctx context.Context, id any) (*Source, error)
}

// Compiler turns a source into an executable body.
type Compiler interface {
	Compile(ctx context.Context, src *Source) (Body, error)
}

// Body is a compiled module body. Run executes it to completion under e and
// returns the module value.
type Body interface {
	Run(ctx context.Context, e *env.Environment) (any, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, id any) (*Source, error)

func (f ResolverFunc) Resolve(ctx context.Context, id any) (*Source, error) {
	return f(ctx, id)
}

// CompilerFunc adapts a function to Compiler.
type CompilerFunc func(ctx context.Context, src *Source) (Body, error)

func (f CompilerFunc) Compile(ctx context.Context, src *Source) (Body, error) {
	return f(ctx, src)
}

// BodyFunc adapts a function to Body.
type BodyFunc func(ctx context.Context, e *env.Environment) (any, error)

func (f BodyFunc) Run(ctx context.Context, e *env.Environment) (any, error) {
	return f(ctx, e)
}
