package engine

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/modload/env"
	"github.com/wippyai/modload/errors"
)

type importDef struct {
	module  string
	name    string
	params  []api.ValueType
	results []api.ValueType
}

// body is a compiled module. Each Run instantiates it in its own runtime, so
// evaluations never share instances, host modules or memory.
type body struct {
	compiler *Compiler
	result   wit.Type
	name     string
	entry    string
	data     []byte
	imports  []importDef
	results  []api.ValueType
}

// Run links e into the module's imports, instantiates it and calls the entry
// export. Cancelling ctx stops a running body.
func (b *body) Run(ctx context.Context, e *env.Environment) (any, error) {
	rt := wazero.NewRuntimeWithConfig(ctx, runtimeConfig(b.compiler.cfg, b.compiler.cache))
	defer rt.Close(ctx)

	if err := b.link(ctx, rt, e); err != nil {
		return nil, err
	}

	compiled, err := rt.CompileModule(ctx, b.data)
	if err != nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindInvalidInput).
			Module(b.name).
			Cause(err).
			Detail("compile module").
			Build()
	}

	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().
		WithName(b.name).
		WithStartFunctions())
	if err != nil {
		return nil, errors.New(errors.PhaseLink, errors.KindEvaluation).
			Module(b.name).
			Cause(err).
			Detail("instantiate module").
			Build()
	}

	fn := mod.ExportedFunction(b.entry)
	if fn == nil {
		return nil, errors.Unbound(b.name, b.entry)
	}

	debugf("call %s.%s", b.name, b.entry)
	results, err := fn.Call(ctx)
	if err != nil {
		return nil, err
	}
	return b.lift(results)
}
