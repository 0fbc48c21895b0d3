package resolver

import (
	"context"
	"maps"
	"sync"

	"github.com/wippyai/modload"
	"github.com/wippyai/modload/errors"
)

// Map resolves module paths from memory. It is safe for concurrent use.
type Map struct {
	sources map[string]modload.Source
	mu      sync.RWMutex
}

// NewMap creates an empty map resolver.
func NewMap() *Map {
	return &Map{sources: make(map[string]modload.Source)}
}

// Set registers src under name. An empty src.ID defaults to name.
func (m *Map) Set(name string, src modload.Source) *Map {
	if src.ID == "" {
		src.ID = name
	}
	if src.Name == "" {
		src.Name = name
	}
	src.Meta = maps.Clone(src.Meta)

	m.mu.Lock()
	m.sources[name] = src
	m.mu.Unlock()
	return m
}

// Add registers raw module data under name.
func (m *Map) Add(name string, data []byte) *Map {
	return m.Set(name, modload.Source{Data: data})
}

// Remove unregisters name.
func (m *Map) Remove(name string) {
	m.mu.Lock()
	delete(m.sources, name)
	m.mu.Unlock()
}

// Resolve implements modload.Resolver. Each call returns a fresh Source.
func (m *Map) Resolve(_ context.Context, id any) (*modload.Source, error) {
	name, err := modulePath(id)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	src, ok := m.sources[name]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.NotFound(id, []string{name})
	}

	src.Meta = maps.Clone(src.Meta)
	return &src, nil
}
