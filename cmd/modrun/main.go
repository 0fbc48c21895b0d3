package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/modload/engine"
	"github.com/wippyai/modload/env"
	"github.com/wippyai/modload/loader"
	"github.com/wippyai/modload/resolver"
)

type options struct {
	root        string
	module      string
	optionsFile string
	entry       string
	result      string
	requires    int
	handles     int
	timeout     time.Duration
	verbose     bool
	interactive bool
}

func main() {
	var o options
	flag.StringVar(&o.root, "root", ".", "Directory modules are resolved from")
	flag.StringVar(&o.module, "module", "", "Module path to load (e.g. lib/util)")
	flag.StringVar(&o.optionsFile, "options", "", "YAML file with load options (default_env, overrides)")
	flag.StringVar(&o.entry, "entry", "", "Entry export (default: run, main, _start)")
	flag.StringVar(&o.result, "result", "", "WIT type of the entry result (e.g. bool, u32, char)")
	flag.IntVar(&o.requires, "n", 1, "Requires per handle")
	flag.IntVar(&o.handles, "handles", 1, "Number of handles to load")
	flag.DurationVar(&o.timeout, "timeout", 0, "Abort evaluation after this long")
	flag.BoolVar(&o.verbose, "v", false, "Log loader and engine events")
	flag.BoolVar(&o.interactive, "i", false, "Interactive mode with TUI")
	flag.Parse()

	if o.module == "" && flag.NArg() > 0 {
		o.module = flag.Arg(0)
	}

	if o.interactive {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(o); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if o.module == "" {
		fmt.Fprintln(os.Stderr, "Usage: modrun -root <dir> -module <path> [-n requires] [-handles count] [-options file.yaml]")
		fmt.Fprintln(os.Stderr, "       modrun -root <dir> -i  (interactive mode)")
		os.Exit(1)
	}

	if err := run(o); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// session bundles the compiler and registry the runner and the TUI share.
type session struct {
	compiler *engine.Compiler
	registry *loader.Registry
	opts     env.Options
}

func newSession(ctx context.Context, o options) (*session, error) {
	if o.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("create logger: %w", err)
		}
		loader.SetLogger(l)
		engine.SetLogger(l)
	}

	var opts env.Options
	if o.optionsFile != "" {
		data, err := os.ReadFile(o.optionsFile)
		if err != nil {
			return nil, fmt.Errorf("read options: %w", err)
		}
		if opts, err = env.ParseOptions(data); err != nil {
			return nil, err
		}
	}

	cfg := engine.DefaultConfig()
	if o.entry != "" {
		cfg.Entry = []string{o.entry}
	}
	cfg.Result = o.result
	compiler := engine.NewCompiler(ctx, &cfg)

	globals, err := engine.Globals(engine.NewStdlib(os.Stdout))
	if err != nil {
		_ = compiler.Close(ctx)
		return nil, err
	}

	registry, err := loader.New(loader.Config{
		Resolver: resolver.Dir(o.root),
		Compiler: compiler,
		Globals:  globals,
	})
	if err != nil {
		_ = compiler.Close(ctx)
		return nil, err
	}

	return &session{compiler: compiler, registry: registry, opts: opts}, nil
}

func (s *session) close(ctx context.Context) {
	_ = s.registry.Close()
	_ = s.compiler.Close(ctx)
}

func run(o options) error {
	ctx := context.Background()

	s, err := newSession(ctx, o)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	styled := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	label := func(style lipgloss.Style, text string) string {
		if styled {
			return style.Render(text)
		}
		return text
	}

	if o.verbose {
		cancel := s.registry.Subscribe(loader.ObserverFunc(func(e loader.Event) {
			fmt.Fprintf(os.Stderr, "event %s %s %s\n", e.Type, e.Module, e.State)
		}))
		defer cancel()
	}

	for i := 0; i < o.handles; i++ {
		h, err := s.registry.Load(ctx, o.module, s.opts)
		if err != nil {
			return fmt.Errorf("load %s: %w", o.module, err)
		}

		fmt.Printf("%s %s\n", label(titleStyle, "handle"), h)
		if spec := h.Spec(); spec.Sandboxed() || spec.Len() > 0 {
			fmt.Printf("  env: %s\n", spec)
		}

		for n := 0; n < o.requires; n++ {
			value, err := s.require(ctx, h, o.timeout)
			if err != nil {
				fmt.Printf("  %s %v\n", label(errorStyle, "error"), err)
				continue
			}
			fmt.Printf("  %s %s\n", label(resultStyle, "value"), formatValue(value))
		}
		fmt.Printf("  state: %s\n", h.State())

		if err := s.registry.Release(h); err != nil {
			return fmt.Errorf("release: %w", err)
		}
	}

	fmt.Printf("%s %d\n", label(helpStyle, "live handles:"), s.registry.Live())
	return nil
}

func (s *session) require(ctx context.Context, h *loader.Handle, timeout time.Duration) (any, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.registry.Require(ctx, h)
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case []any:
		parts := make([]string, len(v))
		for i, p := range v {
			parts[i] = formatValue(p)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v (%s)", v, loader.TypeOf(v))
	}
}
