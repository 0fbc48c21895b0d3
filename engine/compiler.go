package engine

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/modload"
	"github.com/wippyai/modload/errors"
)

// Compiler compiles WebAssembly module sources into bodies. Compiled code is
// kept in a cache shared by every evaluation, so each body instantiates in a
// fresh runtime without recompiling.
type Compiler struct {
	runtime wazero.Runtime
	cache   wazero.CompilationCache
	cfg     Config
	mu      sync.Mutex
	closed  bool
}

var _ modload.Compiler = (*Compiler)(nil)

// NewCompiler creates a compiler. A nil cfg uses DefaultConfig.
func NewCompiler(ctx context.Context, cfg *Config) *Compiler {
	c := DefaultConfig()
	if cfg != nil {
		c = cfg.withDefaults()
	}

	cache := wazero.NewCompilationCache()
	rt := wazero.NewRuntimeWithConfig(ctx, runtimeConfig(c, cache))
	return &Compiler{runtime: rt, cache: cache, cfg: c}
}

func runtimeConfig(cfg Config, cache wazero.CompilationCache) wazero.RuntimeConfig {
	rc := wazero.NewRuntimeConfig().
		WithCompilationCache(cache).
		WithCloseOnContextDone(true)
	if cfg.MemoryLimitPages > 0 {
		rc = rc.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	return rc
}

// Config returns the compiler's configuration.
func (c *Compiler) Config() Config {
	return c.cfg
}

// Compile validates src and resolves its entry export and result type.
func (c *Compiler) Compile(ctx context.Context, src *modload.Source) (modload.Body, error) {
	if src == nil || len(src.Data) == 0 {
		return nil, errors.InvalidInput(errors.PhaseCompile, "empty module source")
	}

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, errors.NotInitialized(errors.PhaseCompile, "compiler")
	}

	name := src.Name
	if name == "" {
		name = src.ID
	}

	compiled, err := c.runtime.CompileModule(ctx, src.Data)
	if err != nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindInvalidInput).
			Module(name).
			Cause(err).
			Detail("compile module").
			Build()
	}
	defer compiled.Close(ctx)

	if mems := compiled.ImportedMemories(); len(mems) > 0 {
		modName, memName, _ := mems[0].Import()
		return nil, errors.New(errors.PhaseCompile, errors.KindUnsupported).
			Module(name).
			Name(modName+"."+memName).
			Detail("imported memories are not supported").
			Build()
	}

	entryName, entry, err := c.entry(name, src, compiled.ExportedFunctions())
	if err != nil {
		return nil, err
	}

	result, err := c.resultType(name, src, entry)
	if err != nil {
		return nil, err
	}

	b := &body{
		compiler: c,
		name:     name,
		data:     src.Data,
		entry:    entryName,
		results:  entry.ResultTypes(),
		result:   result,
	}
	for _, fn := range compiled.ImportedFunctions() {
		modName, fnName, _ := fn.Import()
		b.imports = append(b.imports, importDef{
			module:  modName,
			name:    fnName,
			params:  fn.ParamTypes(),
			results: fn.ResultTypes(),
		})
	}

	Logger().Debug("module compiled",
		zap.String("module", name),
		zap.String("entry", b.entry),
		zap.Int("imports", len(b.imports)))
	return b, nil
}

func (c *Compiler) entry(name string, src *modload.Source, exports map[string]api.FunctionDefinition) (string, api.FunctionDefinition, error) {
	candidates := c.cfg.Entry
	if e := src.Meta[MetaEntry]; e != "" {
		candidates = []string{e}
	}

	for _, candidate := range candidates {
		def, ok := exports[candidate]
		if !ok {
			continue
		}
		if len(def.ParamTypes()) > 0 {
			return "", nil, errors.New(errors.PhaseCompile, errors.KindTypeMismatch).
				Module(name).
				Name(candidate).
				Detail("entry must take no parameters, has (%s)", strings.Join(typeNames(def.ParamTypes()), ", ")).
				Build()
		}
		return candidate, def, nil
	}

	return "", nil, errors.New(errors.PhaseCompile, errors.KindUnbound).
		Module(name).
		Path(slices.Clone(candidates)...).
		Detail("module exports no entry function").
		Build()
}

func (c *Compiler) resultType(name string, src *modload.Source, entry api.FunctionDefinition) (wit.Type, error) {
	text := c.cfg.Result
	if r := src.Meta[MetaResult]; r != "" {
		text = r
	}
	if text == "" {
		return nil, nil
	}

	t, err := wit.ParseType(strings.TrimSpace(text))
	if err != nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindInvalidInput).
			Module(name).
			Cause(err).
			Detail("parse result type %q", text).
			Build()
	}
	if !liftable(t) {
		return nil, errors.New(errors.PhaseCompile, errors.KindUnsupported).
			Module(name).
			Detail("result type %q cannot be lifted from a core value", text).
			Build()
	}
	if len(entry.ResultTypes()) != 1 {
		return nil, errors.New(errors.PhaseCompile, errors.KindTypeMismatch).
			Module(name).
			Detail("result type %q needs exactly one core result, entry has %d", text, len(entry.ResultTypes())).
			Build()
	}
	return t, nil
}

// Close releases the compiler's runtime and compilation cache. Bodies that
// are still running keep working until they return.
func (c *Compiler) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.runtime.Close(ctx)
	if cerr := c.cache.Close(ctx); err == nil {
		err = cerr
	}
	return err
}
