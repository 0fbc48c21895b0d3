package env

import (
	"strings"
	"testing"

	"github.com/wippyai/modload/errors"
)

func TestBuilder_Order(t *testing.T) {
	spec, err := NewBuilder().
		Set("zeta", 1).
		Remove("alpha").
		Set("mid", 2).
		Set("zeta", 3).
		Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	if got := strings.Join(spec.Names(), ","); got != "zeta,alpha,mid" {
		t.Errorf("expected first-set order, got %s", got)
	}
	if o, _ := spec.Lookup("zeta"); o.Value() != 3 {
		t.Errorf("replacement lost: %v", o.Value())
	}
}

func TestBuilder_Detached(t *testing.T) {
	b := NewBuilder().Set("a", []int{1})
	spec, err := b.Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	b.Set("b", 2).DefaultEnv(false)

	if spec.Len() != 1 || !spec.DefaultEnv() {
		t.Errorf("spec changed with builder: %s", spec)
	}

	names := spec.Names()
	names[0] = "mutated"
	if spec.Names()[0] != "a" {
		t.Error("Names must return a copy")
	}
}

func TestBuilder_DefaultShortcut(t *testing.T) {
	spec, err := NewBuilder().Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if spec != DefaultSpec() {
		t.Error("expected the shared default spec")
	}
}

func TestBuilder_StickyError(t *testing.T) {
	_, err := NewBuilder().
		Override("bad", Override{}).
		Set("", 1).
		Build()
	var e *errors.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *errors.Error, got %v", err)
	}
	if e.Name != "bad" {
		t.Errorf("expected first error to stick, got %v", err)
	}
}
