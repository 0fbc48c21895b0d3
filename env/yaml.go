package env

import (
	"gopkg.in/yaml.v3"

	"github.com/wippyai/modload/errors"
)

// ParseOptions decodes a YAML options document:
//
//	default_env: true
//	overrides:
//	  answer: {value: 42}
//	  print: {removed: true}
//
// Keys other than overrides are passed through untouched so that Build
// reports unrecognized ones.
func ParseOptions(data []byte) (Options, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(errors.PhaseOptions, errors.KindOptionValidation, err, "parse options document")
	}

	opts := make(Options, len(raw))
	for key, value := range raw {
		if key != OptionOverrides {
			opts[key] = value
			continue
		}
		overrides, err := parseOverrides(value)
		if err != nil {
			return nil, err
		}
		opts[key] = overrides
	}
	return opts, nil
}

func parseOverrides(value any) (Overrides, error) {
	if value == nil {
		return nil, nil
	}
	m, ok := value.(map[string]any)
	if !ok {
		return nil, errors.InvalidOption(OptionOverrides, value, "mapping")
	}

	out := make(Overrides, len(m))
	for name, entry := range m {
		fields, ok := entry.(map[string]any)
		if !ok || len(fields) != 1 {
			return nil, errors.MalformedOverride(name, entry)
		}
		if v, ok := fields["value"]; ok {
			out[name] = Present(v)
			continue
		}
		if removed, ok := fields["removed"].(bool); ok && removed {
			out[name] = Removed()
			continue
		}
		return nil, errors.MalformedOverride(name, entry)
	}
	return out, nil
}
