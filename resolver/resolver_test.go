package resolver

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"testing/fstest"

	"github.com/wippyai/modload"
	"github.com/wippyai/modload/errors"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"counter.wasm":         {Data: []byte("counter")},
		"counter.meta.yaml":    {Data: []byte("result: s32\nentry: run\n")},
		"lib/init.wasm":        {Data: []byte("lib")},
		"lib/util.wasm":        {Data: []byte("util")},
		"text.wat":             {Data: []byte("wat")},
		"broken.wasm":          {Data: []byte("broken")},
		"broken.meta.yaml":     {Data: []byte("[not a mapping")},
		"onlydir/nested/x.txt": {Data: []byte("x")},
	}
}

func TestFS_Resolve(t *testing.T) {
	r := NewFS(testFS())
	ctx := context.Background()

	tests := []struct {
		id       any
		wantID   string
		wantData string
		name     string
	}{
		{name: "stem", id: "counter", wantID: "counter.wasm", wantData: "counter"},
		{name: "with extension", id: "counter.wasm", wantID: "counter.wasm", wantData: "counter"},
		{name: "leading slash", id: "/counter", wantID: "counter.wasm", wantData: "counter"},
		{name: "directory form", id: "lib", wantID: "lib/init.wasm", wantData: "lib"},
		{name: "nested", id: "lib/util", wantID: "lib/util.wasm", wantData: "util"},
		{name: "ref", id: Path("counter"), wantID: "counter.wasm", wantData: "counter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := r.Resolve(ctx, tt.id)
			if err != nil {
				t.Fatalf("Resolve error: %v", err)
			}
			if src.ID != tt.wantID || string(src.Data) != tt.wantData {
				t.Errorf("got %s %q", src.ID, src.Data)
			}
			if src.Meta[MetaPath] != tt.wantID {
				t.Errorf("meta path = %q", src.Meta[MetaPath])
			}
		})
	}
}

func TestFS_Sidecar(t *testing.T) {
	r := NewFS(testFS())

	src, err := r.Resolve(context.Background(), "counter")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if src.Meta["result"] != "s32" || src.Meta["entry"] != "run" {
		t.Errorf("sidecar not applied: %v", src.Meta)
	}

	if _, err := r.Resolve(context.Background(), "broken"); !errors.Is(err, errors.ErrResolution) {
		t.Errorf("broken sidecar: %v", err)
	}
}

func TestFS_Extensions(t *testing.T) {
	r := NewFS(testFS(), WithExtensions(".wat", ".wasm"), WithIndex(""))

	src, err := r.Resolve(context.Background(), "text")
	if err != nil || src.ID != "text.wat" {
		t.Fatalf("Resolve = %v, %v", src, err)
	}
	if _, err := r.Resolve(context.Background(), "lib"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("directory form should be disabled: %v", err)
	}
}

func TestFS_Errors(t *testing.T) {
	r := NewFS(testFS())
	ctx := context.Background()

	_, err := r.Resolve(ctx, "missing")
	if !errors.Is(err, errors.ErrResolution) || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing: %v", err)
	}
	var e *errors.Error
	if errors.As(err, &e) && !slices.Equal(e.Path, []string{"missing.wasm", "missing/init.wasm"}) {
		t.Errorf("tried = %v", e.Path)
	}

	if _, err := r.Resolve(ctx, "onlydir/nested"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("directory without index: %v", err)
	}
	if _, err := r.Resolve(ctx, "../escape"); !errors.Is(err, fs.ErrInvalid) {
		t.Errorf("escaping path: %v", err)
	}
	if _, err := r.Resolve(ctx, ""); !errors.Is(err, errors.ErrResolution) {
		t.Errorf("empty: %v", err)
	}
	if _, err := r.Resolve(ctx, 42); !errors.Is(err, stderrors.ErrUnsupported) {
		t.Errorf("unsupported identifier: %v", err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := r.Resolve(canceled, "counter"); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled: %v", err)
	}
}

func TestDir(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "mod.wasm"), []byte("m"), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := Dir(root).Resolve(context.Background(), "mod")
	if err != nil || string(src.Data) != "m" {
		t.Errorf("Resolve = %v, %v", src, err)
	}
}

func TestMap(t *testing.T) {
	m := NewMap().
		Add("a", []byte("A")).
		Set("b", modload.Source{ID: "canonical-b", Meta: map[string]string{"k": "v"}})
	ctx := context.Background()

	src, err := m.Resolve(ctx, "a")
	if err != nil || src.ID != "a" || src.Name != "a" || string(src.Data) != "A" {
		t.Fatalf("a = %+v, %v", src, err)
	}

	b1, _ := m.Resolve(ctx, Path("b"))
	b2, _ := m.Resolve(ctx, "b")
	if b1 == b2 {
		t.Error("each resolve must return a fresh source")
	}
	b1.Meta["k"] = "changed"
	if b2.Meta["k"] != "v" {
		t.Error("meta shared between sources")
	}
	if b1.ID != "canonical-b" {
		t.Errorf("ID = %s", b1.ID)
	}

	m.Remove("a")
	if _, err := m.Resolve(ctx, "a"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("removed: %v", err)
	}
}

func TestChain(t *testing.T) {
	mem := NewMap().Add("override", []byte("memory"))
	files := NewFS(fstest.MapFS{
		"override.wasm": {Data: []byte("disk")},
		"disk.wasm":     {Data: []byte("disk")},
	})
	strict := modload.ResolverFunc(func(context.Context, any) (*modload.Source, error) {
		return nil, errors.Resolution("x", stderrors.New("permission denied"))
	})
	ctx := context.Background()

	c := Chain{mem, files}
	if src, _ := c.Resolve(ctx, "override"); string(src.Data) != "memory" {
		t.Errorf("first resolver must win: %s", src.Data)
	}
	if src, _ := c.Resolve(ctx, "disk"); string(src.Data) != "disk" {
		t.Errorf("fallthrough: %s", src.Data)
	}

	_, err := c.Resolve(ctx, "nowhere")
	var e *errors.Error
	if !errors.As(err, &e) || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("nowhere: %v", err)
	}
	if !slices.Equal(e.Path, []string{"nowhere", "nowhere.wasm", "nowhere/init.wasm"}) {
		t.Errorf("tried = %v", e.Path)
	}

	if _, err := (Chain{strict, files}).Resolve(ctx, "disk"); err == nil || errors.Is(err, fs.ErrNotExist) {
		t.Errorf("hard errors must stop the chain: %v", err)
	}
}
