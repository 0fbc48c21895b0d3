package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseResolve    Phase = "resolve"    // identifier to source
	PhaseOptions    Phase = "options"    // environment spec construction
	PhaseLoad       Phase = "load"       // handle allocation
	PhaseRequire    Phase = "require"    // slot state machine
	PhaseCompile    Phase = "compile"    // source to executable body
	PhaseLink       Phase = "link"       // binding environment to a body
	PhaseEvaluate   Phase = "evaluate"   // body execution
	PhaseRelease    Phase = "release"    // explicit release / reclamation
	PhaseIntrospect Phase = "introspect" // typeof / environment queries
	PhaseHost       Phase = "host"       // host binding registration
)

// Kind categorizes the error
type Kind string

const (
	KindResolution         Kind = "resolution"
	KindOptionValidation   Kind = "option_validation"
	KindCyclicLoad         Kind = "cyclic_load"
	KindEvaluation         Kind = "evaluation"
	KindInvalidHandleUsage Kind = "invalid_handle_usage"
	KindInvalidInput       Kind = "invalid_input"
	KindUnsupported        Kind = "unsupported"
	KindTypeMismatch       Kind = "type_mismatch"
	KindUnbound            Kind = "unbound"
	KindNotInitialized     Kind = "not_initialized"
	KindRegistration       Kind = "registration"
)

// Kind prototypes for errors.Is. A prototype has no Phase, so it matches
// every error of its Kind regardless of where it was raised.
var (
	ErrResolution         = &Error{Kind: KindResolution}
	ErrOptionValidation   = &Error{Kind: KindOptionValidation}
	ErrCyclicLoad         = &Error{Kind: KindCyclicLoad}
	ErrEvaluation         = &Error{Kind: KindEvaluation}
	ErrInvalidHandleUsage = &Error{Kind: KindInvalidHandleUsage}
)

// ErrAborted is in the cause chain of every evaluation error produced by an
// externally aborted body.
var ErrAborted = stderrors.New("evaluation aborted")

// Error is the structured error type used throughout the loader
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Module string
	Name   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if e.Module != "" {
		b.WriteString(" in module ")
		b.WriteString(e.Module)
	}

	if e.Name != "" {
		b.WriteString(" at ")
		b.WriteString(e.Name)
	}

	if len(e.Path) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(e.Path, " -> "))
		b.WriteByte(')')
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// Kind must match; Phase must match only when target sets one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	return t.Phase == "" || e.Phase == t.Phase
}

// Is is errors.Is from the standard library.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As is errors.As from the standard library.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Module sets the module identifier
func (b *Builder) Module(id string) *Builder {
	b.err.Module = id
	return b
}

// Name sets the binding or option name
func (b *Builder) Name(name string) *Builder {
	b.err.Name = name
	return b
}

// Path sets the load chain
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Resolution creates an error for an identifier the resolver rejected
func Resolution(id any, cause error) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindResolution,
		Module: Identifier(id),
		Detail: "cannot resolve module",
		Cause:  cause,
	}
}

// NotFound creates a resolution error listing the candidates that were tried.
// The cause chain contains fs.ErrNotExist.
func NotFound(id any, tried []string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindResolution,
		Module: Identifier(id),
		Path:   tried,
		Detail: "module not found",
		Cause:  fs.ErrNotExist,
	}
}

// UnsupportedIdentifier creates a resolution error for an identifier type a
// resolver cannot handle. The cause chain contains errors.ErrUnsupported
// from the standard library.
func UnsupportedIdentifier(id any) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindResolution,
		Detail: fmt.Sprintf("unsupported identifier type %T", id),
		Value:  id,
		Cause:  stderrors.ErrUnsupported,
	}
}

// UnknownOption creates an error for an unrecognized options key
func UnknownOption(key string) *Error {
	return &Error{
		Phase:  PhaseOptions,
		Kind:   KindOptionValidation,
		Name:   key,
		Detail: "unrecognized option",
	}
}

// InvalidOption creates an error for an option value of the wrong shape
func InvalidOption(key string, value any, want string) *Error {
	return &Error{
		Phase:  PhaseOptions,
		Kind:   KindOptionValidation,
		Name:   key,
		Detail: fmt.Sprintf("expected %s, got %T", want, value),
		Value:  value,
	}
}

// MalformedOverride creates an error for an override entry that is neither
// present nor removed
func MalformedOverride(name string, value any) *Error {
	return &Error{
		Phase:  PhaseOptions,
		Kind:   KindOptionValidation,
		Name:   name,
		Detail: fmt.Sprintf("override must be Present(value) or Removed(), got %T", value),
		Value:  value,
	}
}

// CyclicLoad creates an error for a require of a module that is still evaluating
func CyclicLoad(module string, chain []string) *Error {
	return &Error{
		Phase:  PhaseRequire,
		Kind:   KindCyclicLoad,
		Module: module,
		Path:   chain,
		Detail: "module is already being evaluated",
	}
}

// Evaluation wraps a fault raised while compiling or running a module body.
// The cause is kept unmodified.
func Evaluation(module string, cause error) *Error {
	return &Error{
		Phase:  PhaseEvaluate,
		Kind:   KindEvaluation,
		Module: module,
		Cause:  cause,
	}
}

// Aborted creates an evaluation error for a body that was stopped from outside.
// ErrAborted and cause are both in the returned error's chain.
func Aborted(module string, cause error) *Error {
	chain := error(ErrAborted)
	if cause != nil {
		chain = stderrors.Join(ErrAborted, cause)
	}
	return &Error{
		Phase:  PhaseEvaluate,
		Kind:   KindEvaluation,
		Module: module,
		Detail: "evaluation aborted",
		Cause:  chain,
	}
}

// InvalidHandleUsage creates an error for a handle passed where it is not accepted
func InvalidHandleUsage(phase Phase, op, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidHandleUsage,
		Name:   op,
		Detail: detail,
	}
}

// Unbound creates an error for a call to a name the environment does not bind
func Unbound(module, name string) *Error {
	return &Error{
		Phase:  PhaseEvaluate,
		Kind:   KindUnbound,
		Module: module,
		Name:   name,
		Detail: "attempt to call an unbound name",
	}
}

// NotInitialized creates an error for an uninitialized component
func NotInitialized(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: what + " not initialized",
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Registration creates a host binding registration error
func Registration(phase Phase, name string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindRegistration,
		Name:   name,
		Detail: "failed to register binding",
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Identifier renders a module identifier for messages.
func Identifier(id any) string {
	switch v := id.(type) {
	case nil:
		return "<nil>"
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
