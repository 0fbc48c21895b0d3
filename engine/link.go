package engine

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/modload/env"
	"github.com/wippyai/modload/errors"
)

// link instantiates one host module per imported module name. Imports from
// the configured namespace are served by e; names e does not bind, and every
// import from another module, are linked as functions that trap with an
// unbound error when called.
func (b *body) link(ctx context.Context, rt wazero.Runtime, e *env.Environment) error {
	byModule := make(map[string][]importDef)
	var order []string
	for _, imp := range b.imports {
		if _, ok := byModule[imp.module]; !ok {
			order = append(order, imp.module)
		}
		byModule[imp.module] = append(byModule[imp.module], imp)
	}

	for _, modName := range order {
		builder := rt.NewHostModuleBuilder(modName)
		for _, imp := range byModule[modName] {
			if err := b.linkImport(builder, imp, e); err != nil {
				return err
			}
		}
		if _, err := builder.Instantiate(ctx); err != nil {
			return errors.New(errors.PhaseLink, errors.KindRegistration).
				Module(b.name).
				Name(modName).
				Cause(err).
				Detail("instantiate host module").
				Build()
		}
	}
	return nil
}

func (b *body) linkImport(builder wazero.HostModuleBuilder, imp importDef, e *env.Environment) error {
	fb := builder.NewFunctionBuilder()

	if imp.module != b.compiler.cfg.Namespace {
		debugf("link %s.%s: foreign module, trapping", imp.module, imp.name)
		fb.WithGoModuleFunction(b.trap(imp.module+"."+imp.name), imp.params, imp.results).Export(imp.name)
		return nil
	}

	value, ok := e.Lookup(imp.name)
	if !ok {
		debugf("link %s.%s: unbound, trapping", imp.module, imp.name)
		fb.WithGoModuleFunction(b.trap(imp.name), imp.params, imp.results).Export(imp.name)
		return nil
	}

	if p, ok := value.(*HostFunc); ok && p != nil {
		value = *p
	}

	switch fn := value.(type) {
	case HostFunc:
		if !slices.Equal(fn.ParamVT, imp.params) || !slices.Equal(fn.ResultVT, imp.results) {
			return b.mismatch(imp, fmt.Sprintf("host function (%s) -> (%s)",
				strings.Join(typeNames(fn.ParamVT), ", "), strings.Join(typeNames(fn.ResultVT), ", ")))
		}
		fb.WithGoModuleFunction(fn.Raw, imp.params, imp.results)
	case api.GoModuleFunc:
		fb.WithGoModuleFunction(fn, imp.params, imp.results)
	case api.GoFunc:
		fb.WithGoFunction(fn, imp.params, imp.results)
	default:
		rt := reflect.TypeOf(value)
		if rt == nil {
			return b.mismatch(imp, "nil")
		}
		params, results, ok := signatureOf(rt)
		if !ok || !slices.Equal(params, imp.params) || !slices.Equal(results, imp.results) {
			return b.mismatch(imp, rt.String())
		}
		fb.WithFunc(value)
	}

	fb.Export(imp.name)
	return nil
}

// trap returns a host function that fails the call with an unbound error.
func (b *body) trap(name string) api.GoModuleFunc {
	return func(context.Context, api.Module, []uint64) {
		panic(errors.Unbound(b.name, name))
	}
}

func (b *body) mismatch(imp importDef, got string) error {
	return errors.New(errors.PhaseLink, errors.KindTypeMismatch).
		Module(b.name).
		Name(imp.name).
		Detail("import expects (%s) -> (%s), binding is %s",
			strings.Join(typeNames(imp.params), ", "),
			strings.Join(typeNames(imp.results), ", "),
			got).
		Build()
}
