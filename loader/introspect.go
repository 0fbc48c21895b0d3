package loader

import (
	"reflect"

	"github.com/wippyai/modload/env"
	"github.com/wippyai/modload/errors"
)

// Type names reported by TypeOf.
const (
	TypeModule   = "module"
	TypeFunction = "function"
	TypeNil      = "nil"
	TypeBoolean  = "boolean"
	TypeNumber   = "number"
	TypeString   = "string"
	TypeTable    = "table"
	TypeUserdata = "userdata"
)

// Environmental is implemented by values that expose the environment they
// run under.
type Environmental interface {
	Environment() *env.Environment
}

// TypeOf names the type of v as a module body sees it. Handles are always
// "module", never a table or userdata.
func TypeOf(v any) string {
	switch v.(type) {
	case *Handle:
		return TypeModule
	case nil:
		return TypeNil
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Func:
		return TypeFunction
	case reflect.Bool:
		return TypeBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return TypeNumber
	case reflect.String:
		return TypeString
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return TypeTable
	default:
		return TypeUserdata
	}
}

// EnvironmentOf returns the environment of v. Module handles are rejected:
// a handle is not a function and has no environment of its own.
func EnvironmentOf(v any) (*env.Environment, error) {
	switch x := v.(type) {
	case *Handle:
		return nil, errors.InvalidHandleUsage(errors.PhaseIntrospect, "environment-of", "module handles do not expose an environment")
	case Environmental:
		return x.Environment(), nil
	case nil:
		return nil, errors.InvalidInput(errors.PhaseIntrospect, "environment-of: nil value")
	default:
		return nil, errors.New(errors.PhaseIntrospect, errors.KindInvalidInput).
			Name("environment-of").
			Value(v).
			Detail("%T has no environment", v).
			Build()
	}
}
