package engine

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/wippyai/modload/env"
	"github.com/wippyai/modload/errors"
	"github.com/wippyai/modload/loader"
	"github.com/wippyai/modload/resolver"
)

func newWasmRegistry(t *testing.T, out *bytes.Buffer) (*loader.Registry, *resolver.Map) {
	t.Helper()
	ctx := context.Background()

	compiler := NewCompiler(ctx, nil)
	t.Cleanup(func() { _ = compiler.Close(ctx) })

	globals, err := Globals(NewStdlib(out))
	if err != nil {
		t.Fatalf("Globals error: %v", err)
	}

	modules := resolver.NewMap()
	r, err := loader.New(loader.Config{Resolver: modules, Compiler: compiler, Globals: globals})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r, modules
}

func TestMarkerModule_EvaluatesOncePerHandle(t *testing.T) {
	var out bytes.Buffer
	r, modules := newWasmRegistry(t, &out)
	modules.Add("marker", markerModule())
	ctx := context.Background()

	h, err := r.Load(ctx, "marker", nil)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	first, err := r.Require(ctx, h)
	if err != nil {
		t.Fatalf("Require error: %v", err)
	}
	if _, ok := first.(int64); !ok {
		t.Fatalf("value is %T, want int64", first)
	}
	for range 2 {
		v, err := r.Require(ctx, h)
		if err != nil || v != first {
			t.Errorf("cached require = %v, %v; want %v", v, err, first)
		}
	}
	if out.String() != "42\n" {
		t.Errorf("output after three requires = %q", out.String())
	}

	other, err := r.Load(ctx, "marker", nil)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if _, err := r.Require(ctx, other); err != nil {
		t.Fatalf("Require error: %v", err)
	}
	if out.String() != "42\n42\n" {
		t.Errorf("second handle did not re-run the body: %q", out.String())
	}
}

func TestMarkerModule_Sandboxed(t *testing.T) {
	var out bytes.Buffer
	r, modules := newWasmRegistry(t, &out)
	modules.Add("marker", markerModule())
	ctx := context.Background()

	removed, err := r.Load(ctx, "marker", env.Options{
		env.OptionOverrides: env.Overrides{"print": env.Removed()},
	})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	_, err = r.Require(ctx, removed)
	if !errors.Is(err, errors.ErrEvaluation) || !strings.Contains(err.Error(), "unbound") {
		t.Errorf("expected evaluation error for removed print, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("removed print wrote %q", out.String())
	}

	var printed []int64
	overridden, err := r.Load(ctx, "marker", env.Options{
		env.OptionOverrides: env.Overrides{
			"print":  env.Present(func(v int64) { printed = append(printed, v) }),
			"random": env.Present(func() int64 { return 7 }),
		},
	})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	v, err := r.Require(ctx, overridden)
	if err != nil {
		t.Fatalf("Require error: %v", err)
	}
	if v != int64(7) || len(printed) != 1 || printed[0] != 42 {
		t.Errorf("override not used: value %v, printed %v", v, printed)
	}
	if out.Len() != 0 {
		t.Errorf("standard print used despite override: %q", out.String())
	}
}

func TestMarkerModule_NoDefaultEnv(t *testing.T) {
	var out bytes.Buffer
	r, modules := newWasmRegistry(t, &out)
	modules.Add("marker", markerModule())
	ctx := context.Background()

	h, err := r.Load(ctx, "marker", env.Options{env.OptionDefaultEnv: false})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if _, err := r.Require(ctx, h); err == nil {
		t.Error("expected failure without the standard environment")
	}
	if out.Len() != 0 {
		t.Errorf("output = %q", out.String())
	}
}

func TestWasmModule_CompileFailureIsEvaluationError(t *testing.T) {
	var out bytes.Buffer
	r, modules := newWasmRegistry(t, &out)
	modules.Add("broken", []byte("not wasm"))
	ctx := context.Background()

	h, err := r.Load(ctx, "broken", nil)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	_, first := r.Require(ctx, h)
	if !errors.Is(first, errors.ErrEvaluation) {
		t.Fatalf("expected evaluation error, got %v", first)
	}
	if _, again := r.Require(ctx, h); again != first {
		t.Errorf("failure not cached: %v", again)
	}
}

func TestWasmModule_Timeout(t *testing.T) {
	var out bytes.Buffer
	r, modules := newWasmRegistry(t, &out)
	modules.Add("spin", testModule{funcs: []testFunc{{export: "run", code: loopForever()}}}.encode())

	h, err := r.Load(context.Background(), "spin", nil)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = r.Require(ctx, h)
	if !errors.Is(err, errors.ErrAborted) {
		t.Fatalf("expected aborted evaluation, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("deadline not in chain: %v", err)
	}
}
