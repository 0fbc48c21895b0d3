package resolver

import (
	"context"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/modload"
	"github.com/wippyai/modload/errors"
)

const (
	// DefaultExtension is probed when a module path has no known extension.
	DefaultExtension = ".wasm"
	// DefaultIndex is the file stem of the directory form: a module "lib"
	// may live in lib/init.wasm.
	DefaultIndex = "init"
	// MetaSuffix names the optional sidecar holding Source.Meta as a YAML
	// mapping: lib.wasm is described by lib.meta.yaml.
	MetaSuffix = ".meta.yaml"
)

// MetaPath is the Source.Meta key holding the matched file.
const MetaPath = "path"

// FS resolves module paths against a file system. For a path "lib" it probes,
// in order, "lib<ext>" for every configured extension and then
// "lib/<index><ext>". A path that already ends in a configured extension is
// tried as-is first.
type FS struct {
	fsys       fs.FS
	index      string
	extensions []string
}

// Option configures an FS resolver.
type Option func(*FS)

// WithExtensions replaces the probed extensions.
func WithExtensions(exts ...string) Option {
	return func(r *FS) {
		r.extensions = slices.Clone(exts)
	}
}

// WithIndex sets the file stem of the directory form. An empty name disables
// the directory form.
func WithIndex(name string) Option {
	return func(r *FS) {
		r.index = name
	}
}

// NewFS creates a resolver over fsys.
func NewFS(fsys fs.FS, opts ...Option) *FS {
	r := &FS{
		fsys:       fsys,
		index:      DefaultIndex,
		extensions: []string{DefaultExtension},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dir creates a resolver rooted at a directory of the host file system.
func Dir(root string, opts ...Option) *FS {
	return NewFS(os.DirFS(root), opts...)
}

// Resolve implements modload.Resolver. The source ID is the matched file
// path, so two spellings of the same module share the global cache entry.
func (r *FS) Resolve(ctx context.Context, id any) (*modload.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Resolution(id, err)
	}

	name, err := modulePath(id)
	if err != nil {
		return nil, err
	}
	clean := path.Clean(strings.TrimPrefix(name, "/"))
	if !fs.ValidPath(clean) || clean == "." {
		return nil, errors.Resolution(id, fs.ErrInvalid)
	}

	candidates := r.candidates(clean)
	for _, candidate := range candidates {
		info, err := fs.Stat(r.fsys, candidate)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, errors.Resolution(id, err)
		}
		if info.IsDir() {
			continue
		}

		data, err := fs.ReadFile(r.fsys, candidate)
		if err != nil {
			return nil, errors.Resolution(id, err)
		}
		meta, err := r.meta(candidate)
		if err != nil {
			return nil, errors.Resolution(id, err)
		}
		meta[MetaPath] = candidate

		return &modload.Source{
			ID:   candidate,
			Name: clean,
			Data: data,
			Meta: meta,
		}, nil
	}

	return nil, errors.NotFound(id, candidates)
}

func (r *FS) candidates(name string) []string {
	var out []string
	if slices.Contains(r.extensions, path.Ext(name)) {
		out = append(out, name)
	}
	for _, ext := range r.extensions {
		out = append(out, name+ext)
	}
	if r.index != "" {
		for _, ext := range r.extensions {
			out = append(out, path.Join(name, r.index+ext))
		}
	}
	return out
}

// meta reads the sidecar of file, if any.
func (r *FS) meta(file string) (map[string]string, error) {
	sidecar := strings.TrimSuffix(file, path.Ext(file)) + MetaSuffix
	data, err := fs.ReadFile(r.fsys, sidecar)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]string), nil
		}
		return nil, err
	}

	meta := make(map[string]string)
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, errors.Wrap(errors.PhaseResolve, errors.KindResolution, err, "parse "+sidecar)
	}
	return meta, nil
}
