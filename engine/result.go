package engine

import (
	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/modload/errors"
)

// liftable reports whether t is a scalar that fits in one core value.
func liftable(t wit.Type) bool {
	switch t.(type) {
	case wit.Bool, wit.S8, wit.U8, wit.S16, wit.U16, wit.S32, wit.U32,
		wit.S64, wit.U64, wit.F32, wit.F64, wit.Char:
		return true
	default:
		return false
	}
}

// lift turns the entry's core results into the module value: nil for no
// results, a single Go value for one result and []any for several.
func (b *body) lift(results []uint64) (any, error) {
	if len(results) != len(b.results) {
		return nil, errors.New(errors.PhaseEvaluate, errors.KindTypeMismatch).
			Module(b.name).
			Detail("entry returned %d values, expected %d", len(results), len(b.results)).
			Build()
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		if b.result != nil {
			return liftWIT(b.result, results[0]), nil
		}
		return liftCore(b.results[0], results[0]), nil
	}

	out := make([]any, len(results))
	for i, r := range results {
		out[i] = liftCore(b.results[i], r)
	}
	return out, nil
}

func liftCore(vt api.ValueType, v uint64) any {
	switch vt {
	case api.ValueTypeI32:
		return api.DecodeI32(v)
	case api.ValueTypeI64:
		return int64(v)
	case api.ValueTypeF32:
		return api.DecodeF32(v)
	case api.ValueTypeF64:
		return api.DecodeF64(v)
	default:
		return v
	}
}

func liftWIT(t wit.Type, v uint64) any {
	switch t.(type) {
	case wit.Bool:
		return v != 0
	case wit.S8:
		return int8(v)
	case wit.U8:
		return uint8(v)
	case wit.S16:
		return int16(v)
	case wit.U16:
		return uint16(v)
	case wit.S32:
		return api.DecodeI32(v)
	case wit.U32:
		return api.DecodeU32(v)
	case wit.S64:
		return int64(v)
	case wit.U64:
		return v
	case wit.F32:
		return api.DecodeF32(v)
	case wit.F64:
		return api.DecodeF64(v)
	case wit.Char:
		return rune(api.DecodeU32(v))
	default:
		return v
	}
}
