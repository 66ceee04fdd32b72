package scan

import (
	"fmt"
	"strings"

	"github.com/concretekit/concrete/internal/model"
)

// Prefix marks every directive comment the scanner recognizes.
const Prefix = "//go:concrete:"

// parseDirective splits a comment line into its directive key and unquoted
// value. Non-directive comments report ok=false.
func parseDirective(text string) (key, value string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, Prefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(text, Prefix)
	parts := strings.SplitN(rest, "=", 2)
	key = parts[0]
	if len(parts) > 1 {
		value = strings.Trim(parts[1], `"`)
	}
	return key, value, true
}

// splitTop splits on commas at bracket depth zero. Type paths may contain
// commas inside generic argument lists or function signatures, so a plain
// strings.Split would cut them apart.
func splitTop(s string) []string {
	var (
		fields []string
		depth  int
		start  int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
		case ',':
			if depth == 0 {
				fields = append(fields, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	fields = append(fields, strings.TrimSpace(s[start:]))
	return fields
}

// variantTag is the parsed payload of a //go:concrete:type directive.
type variantTag struct {
	// Type is the concrete type path, always present.
	Type string
	// Config is the payload type path, empty for unit variants.
	Config string
}

// parseVariantTag reads `<type-path>[,config=<type-path>]`.
func parseVariantTag(value string) (variantTag, error) {
	var tag variantTag
	if strings.TrimSpace(value) == "" {
		return tag, fmt.Errorf("empty directive value")
	}
	for i, field := range splitTop(value) {
		kv := strings.SplitN(field, "=", 2)
		if len(kv) == 1 {
			if i != 0 {
				return tag, fmt.Errorf("unexpected field %q", field)
			}
			tag.Type = field
			continue
		}
		switch kv[0] {
		case "config":
			if tag.Config != "" {
				return tag, fmt.Errorf("config payload specified more than once")
			}
			if kv[1] == "" {
				return tag, fmt.Errorf("empty config payload")
			}
			tag.Config = kv[1]
		default:
			return tag, fmt.Errorf("unknown field %q", kv[0])
		}
	}
	if tag.Type == "" {
		return tag, fmt.Errorf("missing the concrete type path")
	}
	return tag, nil
}

// enumOptions is the parsed payload of a //go:concrete:enum directive.
type enumOptions struct {
	Mode model.EnumMode
	// Name overrides the generated union type's name in config mode.
	Name string
}

// parseEnumOptions reads the optional `"config[,name=<ident>]"` value. A bare
// //go:concrete:enum directive has no value and selects unit mode.
func parseEnumOptions(value string) (enumOptions, error) {
	var opts enumOptions
	if strings.TrimSpace(value) == "" {
		return opts, nil
	}
	for _, field := range splitTop(value) {
		kv := strings.SplitN(field, "=", 2)
		if len(kv) == 1 {
			switch field {
			case "unit":
				opts.Mode = model.ModeUnit
			case "config":
				opts.Mode = model.ModeConfig
			default:
				return opts, fmt.Errorf("unknown mode %q", field)
			}
			continue
		}
		switch kv[0] {
		case "name":
			if kv[1] == "" {
				return opts, fmt.Errorf("empty union name")
			}
			opts.Name = kv[1]
		default:
			return opts, fmt.Errorf("unknown field %q", kv[0])
		}
	}
	if opts.Name != "" && opts.Mode != model.ModeConfig {
		return opts, fmt.Errorf("name= is only meaningful in config mode")
	}
	return opts, nil
}

// parseDispatchValue reads `enums=<A>[;<B>...],func=<ident>[,name=<ident>]`.
func parseDispatchValue(value string) (model.DispatchSpec, error) {
	var spec model.DispatchSpec
	for _, field := range splitTop(value) {
		kv := strings.SplitN(field, "=", 2)
		if len(kv) != 2 {
			return spec, fmt.Errorf("expected key=value, got %q", field)
		}
		switch kv[0] {
		case "enums":
			for _, e := range strings.Split(kv[1], ";") {
				e = strings.TrimSpace(e)
				if e == "" {
					return spec, fmt.Errorf("empty enum name in %q", kv[1])
				}
				spec.Enums = append(spec.Enums, e)
			}
		case "func":
			spec.Func = kv[1]
		case "name":
			spec.Name = kv[1]
		default:
			return spec, fmt.Errorf("unknown field %q", kv[0])
		}
	}
	if len(spec.Enums) == 0 {
		return spec, fmt.Errorf("missing enums=")
	}
	if spec.Func == "" {
		return spec, fmt.Errorf("missing func=")
	}
	return spec, nil
}
