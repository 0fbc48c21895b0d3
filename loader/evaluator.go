package loader

import (
	"context"
	"fmt"

	"github.com/wippyai/modload"
	"github.com/wippyai/modload/env"
	"github.com/wippyai/modload/errors"
)

// PanicError carries the value of a panic raised by a module body.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// evaluate compiles src and runs its body to completion under the
// environment described by spec. Every fault comes back as an evaluation
// error with the fault as its cause.
func (r *Registry) evaluate(ctx context.Context, module string, src *modload.Source, spec *env.Spec) (value any, err error) {
	defer func() {
		if p := recover(); p != nil {
			value = nil
			err = errors.Evaluation(module, &PanicError{Value: p})
		}
	}()

	if src == nil {
		return nil, errors.InvalidHandleUsage(errors.PhaseEvaluate, "require", "handle was released")
	}
	if ctx.Err() != nil {
		return nil, errors.Aborted(module, context.Cause(ctx))
	}

	body, err := r.compiler.Compile(ctx, src)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Aborted(module, context.Cause(ctx))
		}
		return nil, errors.New(errors.PhaseCompile, errors.KindEvaluation).
			Module(module).
			Cause(err).
			Build()
	}
	if body == nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindEvaluation).
			Module(module).
			Detail("compiler returned no body").
			Build()
	}

	environment := env.Compose(r.bindings(ctx), spec)
	value, err = body.Run(ctx, environment)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Aborted(module, context.Cause(ctx))
		}
		return nil, errors.Evaluation(module, err)
	}
	return value, nil
}

// bindings returns the standard environment for one evaluation. When the
// registry provides require, the binding is rebuilt to carry the global
// chain of ctx, so nested requires see it even if the body drops ctx.
func (r *Registry) bindings(ctx context.Context) env.Bindings {
	if !r.ownsRequire {
		return r.standard
	}
	chain := chainFrom(ctx)
	if len(chain) == 0 {
		return r.standard
	}
	b := r.standard.Clone()
	b[BindingRequire] = RequireFunc(func(ctx context.Context, id any) (any, error) {
		return r.requireBinding(withChain(ctx, chain), id)
	})
	return b
}

// requireBinding backs the require binding of the standard environment.
func (r *Registry) requireBinding(ctx context.Context, id any) (any, error) {
	if h, ok := id.(*Handle); ok {
		return r.Require(ctx, h)
	}
	return r.RequireGlobal(ctx, id)
}
