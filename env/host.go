package env

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/wippyai/modload/errors"
)

// ExplicitRegistrar allows hosts to provide exact binding names
// when automatic PascalCase-to-kebab-case conversion doesn't apply.
type ExplicitRegistrar interface {
	Register() map[string]any
}

// RegisterHost binds every exported method of h.
// Method names are converted from PascalCase to kebab-case (PrintF64 -> print-f64).
func (b Bindings) RegisterHost(h any) error {
	if h == nil {
		return errors.InvalidInput(errors.PhaseHost, "host cannot be nil")
	}

	if er, ok := h.(ExplicitRegistrar); ok {
		for name, fn := range er.Register() {
			if err := b.RegisterFunc(name, fn); err != nil {
				return err
			}
		}
		return nil
	}

	rv := reflect.ValueOf(h)
	rt := rv.Type()

	registered := 0
	for i := 0; i < rt.NumMethod(); i++ {
		method := rt.Method(i)
		if !method.IsExported() {
			continue
		}
		b[toKebabCase(method.Name)] = rv.Method(i).Interface()
		registered++
	}

	if registered == 0 {
		return errors.New(errors.PhaseHost, errors.KindInvalidInput).
			Value(h).
			Detail("host %T has no exported methods", h).
			Build()
	}
	return nil
}

// RegisterFunc binds a single function.
func (b Bindings) RegisterFunc(name string, fn any) error {
	if name == "" {
		return errors.InvalidInput(errors.PhaseHost, "function name cannot be empty")
	}

	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return errors.New(errors.PhaseHost, errors.KindTypeMismatch).
			Name(name).
			Value(fn).
			Detail("handler must be a function, got %T", fn).
			Build()
	}

	b[name] = fn
	return nil
}

// toKebabCase converts PascalCase to kebab-case.
// Handles acronyms: GetHTTPServer -> get-http-server
func toKebabCase(s string) string {
	if len(s) == 0 {
		return ""
	}

	runes := []rune(s)
	var result strings.Builder

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if unicode.IsUpper(r) {
			acronymEnd := i + 1
			for acronymEnd < len(runes) && unicode.IsUpper(runes[acronymEnd]) {
				acronymEnd++
			}

			if acronymEnd > i+1 {
				// Last uppercase before lowercase starts next word, not part of acronym
				if acronymEnd < len(runes) && unicode.IsLower(runes[acronymEnd]) {
					acronymEnd--
				}
			}

			if i > 0 {
				result.WriteByte('-')
			}

			for j := i; j < acronymEnd; j++ {
				result.WriteRune(unicode.ToLower(runes[j]))
			}
			i = acronymEnd - 1
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
