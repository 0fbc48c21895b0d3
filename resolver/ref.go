package resolver

import "github.com/wippyai/modload/errors"

// Ref is a host reference that names a module path.
type Ref interface {
	ModulePath() string
}

// Path is a module path usable as a Ref.
type Path string

func (p Path) ModulePath() string { return string(p) }

func (p Path) String() string { return string(p) }

// modulePath extracts the path from a supported identifier.
func modulePath(id any) (string, error) {
	switch v := id.(type) {
	case string:
		if v == "" {
			return "", errors.New(errors.PhaseResolve, errors.KindResolution).
				Detail("empty module identifier").
				Build()
		}
		return v, nil
	case Ref:
		return modulePath(v.ModulePath())
	default:
		return "", errors.UnsupportedIdentifier(id)
	}
}
