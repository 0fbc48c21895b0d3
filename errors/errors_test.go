package errors

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseOptions,
				Kind:   KindOptionValidation,
				Module: "lib/math",
				Name:   "overrides",
				Detail: "expected a mapping",
			},
			contains: []string{"[options]", "option_validation", "lib/math", "overrides", "expected a mapping"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseRequire,
				Kind:  KindCyclicLoad,
			},
			contains: []string{"[require]", "cyclic_load"},
		},
		{
			name:     "chain",
			err:      CyclicLoad("a", []string{"a", "b", "a"}),
			contains: []string{"a -> b -> a"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseEvaluate,
				Kind:   KindEvaluation,
				Detail: "body failed",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[evaluate]", "evaluation", "body failed", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Evaluation("m", cause)

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if errors.Unwrap(err) != cause {
		t.Error("cause must be kept unmodified")
	}
}

func TestError_Is(t *testing.T) {
	err := CyclicLoad("m", nil)

	if !errors.Is(err, ErrCyclicLoad) {
		t.Error("expected match against kind prototype")
	}
	if errors.Is(err, ErrEvaluation) {
		t.Error("should not match a different kind")
	}
	if !errors.Is(err, &Error{Phase: PhaseRequire, Kind: KindCyclicLoad}) {
		t.Error("expected match with phase")
	}
	if errors.Is(err, &Error{Phase: PhaseLoad, Kind: KindCyclicLoad}) {
		t.Error("should not match a different phase")
	}

	wrapped := Evaluation("outer", err)
	if !Is(wrapped, ErrCyclicLoad) {
		t.Error("expected match through cause chain")
	}
	var target *Error
	if !As(wrapped, &target) || target.Kind != KindEvaluation {
		t.Errorf("As returned %v", target)
	}
}

func TestBuilder(t *testing.T) {
	err := New(PhaseOptions, KindOptionValidation).
		Module("lib/x").
		Name("default_env").
		Path("a", "b").
		Value(3).
		Detail("expected %s", "bool").
		Cause(errors.New("cause")).
		Build()

	if err.Phase != PhaseOptions || err.Kind != KindOptionValidation {
		t.Errorf("unexpected phase/kind: %s/%s", err.Phase, err.Kind)
	}
	if err.Module != "lib/x" || err.Name != "default_env" {
		t.Errorf("unexpected module/name: %q/%q", err.Module, err.Name)
	}
	if len(err.Path) != 2 || err.Value != 3 {
		t.Errorf("unexpected path/value: %v/%v", err.Path, err.Value)
	}
	if err.Detail != "expected bool" {
		t.Errorf("unexpected detail: %q", err.Detail)
	}
	if err.Cause == nil {
		t.Error("cause not set")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		err  *Error
		kind Kind
		name string
	}{
		{name: "Resolution", err: Resolution("x", errors.New("boom")), kind: KindResolution},
		{name: "NotFound", err: NotFound("x", []string{"x.wasm"}), kind: KindResolution},
		{name: "UnsupportedIdentifier", err: UnsupportedIdentifier(42), kind: KindResolution},
		{name: "UnknownOption", err: UnknownOption("foo"), kind: KindOptionValidation},
		{name: "InvalidOption", err: InvalidOption("default_env", "yes", "bool"), kind: KindOptionValidation},
		{name: "MalformedOverride", err: MalformedOverride("print", 1), kind: KindOptionValidation},
		{name: "CyclicLoad", err: CyclicLoad("m", nil), kind: KindCyclicLoad},
		{name: "Evaluation", err: Evaluation("m", errors.New("x")), kind: KindEvaluation},
		{name: "Aborted", err: Aborted("m", nil), kind: KindEvaluation},
		{name: "InvalidHandleUsage", err: InvalidHandleUsage(PhaseIntrospect, "environment_of", "no"), kind: KindInvalidHandleUsage},
		{name: "Unbound", err: Unbound("m", "print"), kind: KindUnbound},
		{name: "InvalidInput", err: InvalidInput(PhaseLoad, "nil"), kind: KindInvalidInput},
		{name: "Unsupported", err: Unsupported(PhaseEvaluate, "thing"), kind: KindUnsupported},
		{name: "Registration", err: Registration(PhaseHost, "f", nil), kind: KindRegistration},
		{name: "NotInitialized", err: NotInitialized(PhaseLoad, "resolver"), kind: KindNotInitialized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, tt.err.Kind)
			}
			if tt.err.Error() == "" {
				t.Error("empty message")
			}
		})
	}
}

func TestNotFound_IsNotExist(t *testing.T) {
	err := NotFound("lib/x", []string{"lib/x.wasm", "lib/x"})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("NotFound should wrap fs.ErrNotExist")
	}
	if !strings.Contains(err.Error(), "lib/x.wasm -> lib/x") {
		t.Errorf("tried candidates missing from %q", err.Error())
	}
}

func TestUnsupportedIdentifier_IsUnsupported(t *testing.T) {
	err := UnsupportedIdentifier(42)
	if !errors.Is(err, errors.ErrUnsupported) {
		t.Error("UnsupportedIdentifier should wrap errors.ErrUnsupported")
	}
	if !errors.Is(err, ErrResolution) {
		t.Error("UnsupportedIdentifier should be a resolution error")
	}
}

func TestAborted_Chain(t *testing.T) {
	err := Aborted("m", context.Canceled)
	if !errors.Is(err, ErrAborted) {
		t.Error("expected ErrAborted in chain")
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("expected context.Canceled in chain")
	}
	if !errors.Is(err, ErrEvaluation) {
		t.Error("aborted is an evaluation error")
	}
	if !errors.Is(Aborted("m", nil), ErrAborted) {
		t.Error("expected ErrAborted without a cause")
	}
}

type named struct{}

func (named) String() string { return "named-ref" }

func TestIdentifier(t *testing.T) {
	if got := Identifier(nil); got != "<nil>" {
		t.Errorf("nil: %q", got)
	}
	if got := Identifier("a/b"); got != "a/b" {
		t.Errorf("string: %q", got)
	}
	if got := Identifier(named{}); got != "named-ref" {
		t.Errorf("stringer: %q", got)
	}
	if got := Identifier(7); got != "7" {
		t.Errorf("int: %q", got)
	}
}
