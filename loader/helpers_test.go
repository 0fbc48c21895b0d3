package loader

import (
	"context"
	"sync"
	"testing"

	"github.com/wippyai/modload"
	"github.com/wippyai/modload/env"
	"github.com/wippyai/modload/errors"
)

// testModules is an in-memory module set whose bodies are Go functions.
// It counts how many times each body runs.
type testModules struct {
	bodies map[string]modload.BodyFunc
	runs   map[string]int
	mu     sync.Mutex
}

func newTestModules() *testModules {
	return &testModules{
		bodies: make(map[string]modload.BodyFunc),
		runs:   make(map[string]int),
	}
}

func (m *testModules) add(name string, body modload.BodyFunc) {
	m.mu.Lock()
	m.bodies[name] = body
	m.mu.Unlock()
}

func (m *testModules) value(name string, v any) {
	m.add(name, func(context.Context, *env.Environment) (any, error) {
		return v, nil
	})
}

func (m *testModules) count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs[name]
}

func (m *testModules) Resolve(_ context.Context, id any) (*modload.Source, error) {
	name, ok := id.(string)
	if !ok {
		return nil, errors.UnsupportedIdentifier(id)
	}
	m.mu.Lock()
	_, ok = m.bodies[name]
	m.mu.Unlock()
	if !ok {
		return nil, errors.NotFound(name, []string{name})
	}
	return &modload.Source{ID: name, Name: name}, nil
}

func (m *testModules) Compile(_ context.Context, src *modload.Source) (modload.Body, error) {
	m.mu.Lock()
	body := m.bodies[src.ID]
	m.mu.Unlock()

	return modload.BodyFunc(func(ctx context.Context, e *env.Environment) (any, error) {
		m.mu.Lock()
		m.runs[src.ID]++
		m.mu.Unlock()
		return body(ctx, e)
	}), nil
}

func newTestRegistry(t *testing.T, m *testModules, cfg Config) *Registry {
	t.Helper()
	cfg.Resolver = m
	cfg.Compiler = m
	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func mustLoad(t *testing.T, r *Registry, id any, opts env.Options) *Handle {
	t.Helper()
	h, err := r.Load(context.Background(), id, opts)
	if err != nil {
		t.Fatalf("Load(%v) error: %v", id, err)
	}
	return h
}

// requireOf returns the require binding of e.
func requireOf(t *testing.T, e *env.Environment) RequireFunc {
	t.Helper()
	req, ok := env.Get[RequireFunc](e, BindingRequire)
	if !ok {
		t.Fatalf("require is not bound: %v", e.Names())
	}
	return req
}

// eventLog records lifecycle events.
type eventLog struct {
	events []Event
	mu     sync.Mutex
}

func (l *eventLog) OnModuleEvent(e Event) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

func (l *eventLog) types() []EventType {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]EventType, len(l.events))
	for i, e := range l.events {
		out[i] = e.Type
	}
	return out
}
