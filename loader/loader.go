package loader

import (
	"context"
	"runtime"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/modload"
	"github.com/wippyai/modload/env"
	"github.com/wippyai/modload/errors"
	"github.com/wippyai/modload/resource"
)

// Names of the bindings every registry adds to its standard environment
// unless Config.Globals already binds them.
const (
	BindingRequire = "require"
	BindingTypeOf  = "typeof"
)

// RequireFunc is the type of the require binding. Given a *Handle it
// requires that handle; any other identifier goes through the global cache.
type RequireFunc func(ctx context.Context, id any) (any, error)

// TypeOfFunc is the type of the typeof binding.
type TypeOfFunc func(v any) string

// Config configures a Registry.
type Config struct {
	Resolver modload.Resolver
	Compiler modload.Compiler
	// Globals is the standard environment a body sees when its spec keeps
	// the default environment.
	Globals env.Bindings
	// Logger overrides the package logger for this registry.
	Logger        *zap.Logger
	FailurePolicy FailurePolicy
}

// Registry creates handles and drives their evaluation.
type Registry struct {
	resolver modload.Resolver
	compiler modload.Compiler
	standard env.Bindings
	logger   *zap.Logger
	table    *resource.Table
	global   *globalCache
	policy   FailurePolicy
	closed   atomic.Bool
	// ownsRequire is set when the require binding is the registry's own.
	ownsRequire bool
}

// New creates a registry.
func New(cfg Config) (*Registry, error) {
	if cfg.Resolver == nil {
		return nil, errors.NotInitialized(errors.PhaseLoad, "resolver")
	}
	if cfg.Compiler == nil {
		return nil, errors.NotInitialized(errors.PhaseLoad, "compiler")
	}

	r := &Registry{
		resolver: cfg.Resolver,
		compiler: cfg.Compiler,
		logger:   cfg.Logger,
		table:    resource.NewTable(),
		global:   newGlobalCache(),
		policy:   cfg.FailurePolicy,
	}
	if r.logger == nil {
		r.logger = Logger()
	}

	r.standard = cfg.Globals.Clone()
	if r.standard == nil {
		r.standard = make(env.Bindings)
	}
	if _, ok := r.standard[BindingRequire]; !ok {
		r.standard[BindingRequire] = RequireFunc(r.requireBinding)
		r.ownsRequire = true
	}
	if _, ok := r.standard[BindingTypeOf]; !ok {
		r.standard[BindingTypeOf] = TypeOfFunc(TypeOf)
	}

	return r, nil
}

// Standard returns a copy of the registry's standard bindings.
func (r *Registry) Standard() env.Bindings {
	return r.standard.Clone()
}

// Load resolves id, freezes opts into an environment spec and returns a new
// handle with an empty cache slot. Nothing is allocated when resolution or
// option validation fails.
func (r *Registry) Load(ctx context.Context, id any, opts env.Options) (*Handle, error) {
	src, err := r.resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	spec, err := env.Build(opts)
	if err != nil {
		return nil, err
	}

	return r.newHandle(id, src, spec)
}

// LoadSpec is Load with an already built spec. A nil spec is DefaultSpec.
func (r *Registry) LoadSpec(ctx context.Context, id any, spec *env.Spec) (*Handle, error) {
	src, err := r.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	if spec == nil {
		spec = env.DefaultSpec()
	}
	return r.newHandle(id, src, spec)
}

// Require returns the module value cached on h, evaluating the body on the
// first call. A failed evaluation returns the same error value on every later
// call. Requiring a handle that is still evaluating, from the body itself or
// from another goroutine, fails with a cyclic load error.
func (r *Registry) Require(ctx context.Context, h *Handle) (any, error) {
	st, err := r.owned(h, "require")
	if err != nil {
		return nil, err
	}
	defer runtime.KeepAlive(h)

	prev, value, err := st.slot.begin()
	switch prev {
	case StateReady:
		return value, nil
	case StateFailed:
		return nil, err
	case StateEvaluating:
		return nil, errors.CyclicLoad(st.module, nil)
	case StateReleased:
		return nil, errors.InvalidHandleUsage(errors.PhaseRequire, "require", "handle was released")
	}

	return r.run(ctx, st)
}

// Retain adds a reference to h. Each Retain must be matched by a Release.
func (r *Registry) Retain(h *Handle) error {
	if _, err := r.owned(h, "retain"); err != nil {
		return err
	}
	for {
		n := h.refs.Load()
		if n <= 0 {
			return errors.InvalidHandleUsage(errors.PhaseRelease, "retain", "handle was released")
		}
		if h.refs.CompareAndSwap(n, n+1) {
			return nil
		}
	}
}

// Release drops a reference to h. The last release frees the cached state
// exactly like garbage collection of the handle would; a release while the
// handle is evaluating takes effect once the evaluation settles.
func (r *Registry) Release(h *Handle) error {
	st, err := r.owned(h, "release")
	if err != nil {
		return err
	}
	for {
		n := h.refs.Load()
		if n <= 0 {
			return errors.InvalidHandleUsage(errors.PhaseRelease, "release", "handle was released")
		}
		if !h.refs.CompareAndSwap(n, n-1) {
			continue
		}
		if n == 1 {
			h.cleanup.Stop()
			r.releaseState(st)
		}
		return nil
	}
}

// Live returns the number of handles whose state has not been released.
func (r *Registry) Live() int {
	return r.table.Len()
}

// Subscribe registers o for lifecycle events and returns a function that
// unregisters it.
func (r *Registry) Subscribe(o Observer) (cancel func()) {
	return r.table.Subscribe(resource.ObserverFunc(func(e resource.Event) {
		if ev, ok := translate(e); ok {
			o.OnModuleEvent(ev)
		}
	}))
}

// Close releases every live handle and the global cache. Loads fail
// afterwards; existing handles report released.
func (r *Registry) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}

	var states []*handleState
	r.table.Each(func(_ resource.Handle, v any) bool {
		if st, ok := v.(*handleState); ok {
			states = append(states, st)
		}
		return true
	})
	for _, st := range states {
		r.releaseState(st)
	}

	r.global.clear()
	return r.table.Close()
}

func (r *Registry) resolve(ctx context.Context, id any) (*modload.Source, error) {
	if r.closed.Load() {
		return nil, errors.New(errors.PhaseLoad, errors.KindNotInitialized).
			Module(errors.Identifier(id)).
			Detail("registry is closed").
			Build()
	}
	if h, ok := id.(*Handle); ok {
		return nil, errors.InvalidHandleUsage(errors.PhaseResolve, "load", "a module handle is not a module identifier: "+h.String())
	}

	src, err := r.resolver.Resolve(ctx, id)
	if err != nil {
		if errors.Is(err, errors.ErrResolution) {
			return nil, err
		}
		return nil, errors.Resolution(id, err)
	}
	if src == nil {
		return nil, errors.New(errors.PhaseResolve, errors.KindResolution).
			Module(errors.Identifier(id)).
			Detail("resolver returned no source").
			Build()
	}
	return src, nil
}

func (r *Registry) newHandle(id any, src *modload.Source, spec *env.Spec) (*Handle, error) {
	st := &handleState{
		source: src,
		spec:   spec,
		module: moduleName(id, src),
		id:     uuid.New(),
	}

	st.seq = r.table.Insert(st)
	if st.seq == 0 {
		return nil, errors.New(errors.PhaseLoad, errors.KindNotInitialized).
			Module(st.module).
			Detail("registry is closed").
			Build()
	}

	h := &Handle{st: st, registry: r}
	h.refs.Store(1)
	h.cleanup = runtime.AddCleanup(h, r.reclaim, st)

	r.logger.Debug("module loaded",
		zap.String("module", st.module),
		zap.Stringer("handle", st.id),
		zap.Stringer("spec", spec))
	return h, nil
}

// owned validates that h is a live handle of this registry.
func (r *Registry) owned(h *Handle, op string) (*handleState, error) {
	if h == nil {
		return nil, errors.InvalidInput(errors.PhaseRequire, op+": nil handle")
	}
	if h.registry != r {
		return nil, errors.InvalidHandleUsage(errors.PhaseRequire, op, "handle belongs to another registry")
	}
	return h.st, nil
}

// run evaluates a slot claimed by begin and settles it on every exit path.
func (r *Registry) run(ctx context.Context, st *handleState) (value any, err error) {
	r.table.Borrow(st.seq)

	settled := false
	defer func() {
		if settled {
			return
		}
		// runtime.Goexit inside the body
		err = errors.Aborted(st.module, nil)
		r.settle(st, nil, err, CacheFailures)
	}()

	src := st.loadSource()
	value, err = r.evaluate(ctx, st.module, src, st.spec)
	settled = true
	r.settle(st, value, err, r.policy)
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (r *Registry) settle(st *handleState, value any, err error, policy FailurePolicy) {
	state, release := st.slot.settle(value, err, policy)
	r.table.ReturnBorrow(st.seq)

	if ce := r.logger.Check(zap.DebugLevel, "module settled"); ce != nil {
		ce.Write(
			zap.String("module", st.module),
			zap.Stringer("handle", st.id),
			zap.Stringer("state", state),
			zap.Error(err))
	}

	if release {
		r.drop(st)
	}
}

func moduleName(id any, src *modload.Source) string {
	switch {
	case src.Name != "":
		return src.Name
	case src.ID != "":
		return src.ID
	default:
		return errors.Identifier(id)
	}
}
