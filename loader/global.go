package loader

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/modload/env"
	"github.com/wippyai/modload/errors"
)

// globalCache memoizes modules required by identifier rather than by
// handle. It is keyed by the resolved source ID and never touches handle
// slots.
type globalCache struct {
	values map[string]any
	mu     sync.Mutex
}

func newGlobalCache() *globalCache {
	return &globalCache{values: make(map[string]any)}
}

func (c *globalCache) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

// store caches value under key unless another caller stored one first, and
// returns the value the cache holds.
func (c *globalCache) store(key string, value any) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.values[key]; ok {
		return v
	}
	c.values[key] = value
	return value
}

func (c *globalCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.values)
}

func (c *globalCache) clear() {
	c.mu.Lock()
	clear(c.values)
	c.mu.Unlock()
}

type chainKey struct{}

// chainFrom returns the global modules being evaluated on the call path
// that produced ctx, outermost first.
func chainFrom(ctx context.Context) []string {
	chain, _ := ctx.Value(chainKey{}).([]string)
	return chain
}

func withChain(ctx context.Context, chain []string) context.Context {
	return context.WithValue(ctx, chainKey{}, chain)
}

// RequireGlobal evaluates the module identified by id under the default
// environment and caches its value by source ID. Failures are not cached.
//
// Cycles are tracked per call path: the require binding and the context a
// body receives carry the chain of global modules being evaluated, and a
// module that requires itself through that chain fails with a cyclic load
// error naming it. Independent callers requiring the same module at once
// may each evaluate it; the first value stored wins and is returned to all.
func (r *Registry) RequireGlobal(ctx context.Context, id any) (any, error) {
	if h, ok := id.(*Handle); ok {
		return r.Require(ctx, h)
	}

	src, err := r.resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	key := src.ID
	if key == "" {
		key = errors.Identifier(id)
	}

	if v, ok := r.global.get(key); ok {
		return v, nil
	}

	chain := chainFrom(ctx)
	if i := slices.Index(chain, key); i >= 0 {
		return nil, errors.CyclicLoad(key, append(slices.Clone(chain[i:]), key))
	}
	chain = append(slices.Clip(chain), key)

	r.logger.Debug("global require", zap.String("module", key), zap.Strings("chain", chain))
	value, err := r.evaluate(withChain(ctx, chain), moduleName(id, src), src, env.DefaultSpec())
	if err != nil {
		return nil, err
	}
	return r.global.store(key, value), nil
}

// Globals returns the number of modules held by the global cache.
func (r *Registry) Globals() int {
	return r.global.len()
}
