package engine

import (
	"context"
	"reflect"

	"github.com/tetratelabs/wazero/api"
)

// HostFunc is a raw host function with explicit core types. Bind it in an
// environment when a Go signature cannot describe the import, for example
// to read guest memory through the calling module.
type HostFunc struct {
	Raw      api.GoModuleFunc
	ParamVT  []api.ValueType
	ResultVT []api.ValueType
}

var (
	contextType = reflect.TypeFor[context.Context]()
	moduleType  = reflect.TypeFor[api.Module]()
)

// signatureOf returns the core signature wazero derives for fn, or false
// when fn cannot be linked with WithFunc.
func signatureOf(fn reflect.Type) (params, results []api.ValueType, ok bool) {
	if fn.Kind() != reflect.Func || fn.IsVariadic() {
		return nil, nil, false
	}

	i := 0
	if i < fn.NumIn() && fn.In(i) == contextType {
		i++
	}
	if i < fn.NumIn() && fn.In(i) == moduleType {
		i++
	}
	for ; i < fn.NumIn(); i++ {
		vt, ok := valueTypeOf(fn.In(i))
		if !ok {
			return nil, nil, false
		}
		params = append(params, vt)
	}
	for j := 0; j < fn.NumOut(); j++ {
		vt, ok := valueTypeOf(fn.Out(j))
		if !ok {
			return nil, nil, false
		}
		results = append(results, vt)
	}
	return params, results, true
}

func valueTypeOf(t reflect.Type) (api.ValueType, bool) {
	switch t.Kind() {
	case reflect.Int32, reflect.Uint32:
		return api.ValueTypeI32, true
	case reflect.Int64, reflect.Uint64:
		return api.ValueTypeI64, true
	case reflect.Float32:
		return api.ValueTypeF32, true
	case reflect.Float64:
		return api.ValueTypeF64, true
	default:
		return 0, false
	}
}

func typeNames(types []api.ValueType) []string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = api.ValueTypeName(t)
	}
	return names
}
