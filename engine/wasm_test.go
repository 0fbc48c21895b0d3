package engine

import (
	"encoding/binary"
	"math"

	"github.com/tetratelabs/wazero/api"
)

// testModule assembles a minimal core module: one type per import and per
// function, function imports only, and exported functions.
type testModule struct {
	imports []testImport
	funcs   []testFunc
}

type testImport struct {
	module  string
	name    string
	params  []api.ValueType
	results []api.ValueType
}

type testFunc struct {
	export  string
	params  []api.ValueType
	results []api.ValueType
	// code without the trailing end
	code []byte
}

var (
	i32 = []api.ValueType{api.ValueTypeI32}
	i64 = []api.ValueType{api.ValueTypeI64}
)

func (m testModule) encode() []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	var types [][]byte
	for _, imp := range m.imports {
		types = append(types, funcType(imp.params, imp.results))
	}
	for _, f := range m.funcs {
		types = append(types, funcType(f.params, f.results))
	}
	out = appendSection(out, 1, vector(types))

	if len(m.imports) > 0 {
		var imports [][]byte
		for i, imp := range m.imports {
			e := appendName(nil, imp.module)
			e = appendName(e, imp.name)
			e = append(e, 0x00)
			e = appendULEB(e, uint32(i))
			imports = append(imports, e)
		}
		out = appendSection(out, 2, vector(imports))
	}

	var funcs, exports, bodies [][]byte
	for i, f := range m.funcs {
		index := uint32(len(m.imports) + i)
		funcs = append(funcs, appendULEB(nil, index))

		if f.export != "" {
			e := appendName(nil, f.export)
			e = append(e, 0x00)
			exports = append(exports, appendULEB(e, index))
		}

		body := append([]byte{0x00}, f.code...)
		body = append(body, 0x0b)
		bodies = append(bodies, append(appendULEB(nil, uint32(len(body))), body...))
	}
	out = appendSection(out, 3, vector(funcs))
	out = appendSection(out, 7, vector(exports))
	out = appendSection(out, 10, vector(bodies))
	return out
}

func funcType(params, results []api.ValueType) []byte {
	b := []byte{0x60}
	b = appendULEB(b, uint32(len(params)))
	b = append(b, params...)
	b = appendULEB(b, uint32(len(results)))
	return append(b, results...)
}

func appendSection(out []byte, id byte, payload []byte) []byte {
	out = append(out, id)
	out = appendULEB(out, uint32(len(payload)))
	return append(out, payload...)
}

func vector(items [][]byte) []byte {
	b := appendULEB(nil, uint32(len(items)))
	for _, item := range items {
		b = append(b, item...)
	}
	return b
}

func appendName(b []byte, s string) []byte {
	b = appendULEB(b, uint32(len(s)))
	return append(b, s...)
}

func appendULEB(b []byte, v uint32) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(b, c)
		}
		b = append(b, c|0x80)
	}
}

func appendSLEB(b []byte, v int64) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0) {
			return append(b, c)
		}
		b = append(b, c|0x80)
	}
}

// Instructions

func i32Const(v int32) []byte { return appendSLEB([]byte{0x41}, int64(v)) }

func i64Const(v int64) []byte { return appendSLEB([]byte{0x42}, v) }

func f64Const(v float64) []byte {
	return binary.LittleEndian.AppendUint64([]byte{0x44}, math.Float64bits(v))
}

func call(index uint32) []byte { return appendULEB([]byte{0x10}, index) }

// loopForever is loop br 0 end.
func loopForever() []byte { return []byte{0x03, 0x40, 0x0c, 0x00, 0x0b} }

func code(parts ...[]byte) []byte {
	var b []byte
	for _, p := range parts {
		b = append(b, p...)
	}
	return b
}

// constModule exports run returning a single constant.
func constModule(result []api.ValueType, value []byte) []byte {
	return testModule{funcs: []testFunc{{export: "run", results: result, code: value}}}.encode()
}

// markerModule prints 42 and returns a random number.
func markerModule() []byte {
	return testModule{
		imports: []testImport{
			{module: "env", name: "print", params: i64},
			{module: "env", name: "random", results: i64},
		},
		funcs: []testFunc{{
			export:  "run",
			results: i64,
			code:    code(i64Const(42), call(0), call(1)),
		}},
	}.encode()
}
