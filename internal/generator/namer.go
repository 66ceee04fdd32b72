package generator

import (
	"strings"
	"unicode"

	"github.com/concretekit/concrete/internal/model"
)

// Snake converts a CamelCase identifier to snake_case. Acronym runs stay
// together: "HTTPServer" -> "http_server", "ExchangeOKX" -> "exchange_okx".
func Snake(s string) string {
	var sb strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			boundary := i > 0 && (!unicode.IsUpper(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1])))
			if boundary {
				sb.WriteByte('_')
			}
			sb.WriteRune(unicode.ToLower(r))
		case r == '-' || r == ' ':
			sb.WriteByte('_')
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// DispatchName is the snake_case stem naming an enum's generated artifacts.
// Config enums drop a trailing Kind or Config from the type name and append
// _config, so ExchangeKind maps to "exchange_config".
func DispatchName(desc *model.EnumDescriptor) string {
	if desc.Mode == model.ModeConfig {
		base := strings.TrimSuffix(desc.Name, "Kind")
		base = strings.TrimSuffix(base, "Config")
		if base == "" {
			base = desc.Name
		}
		return Snake(base) + "_config"
	}
	return Snake(desc.Name)
}

// EnumFileName is the output filename for an enum's dispatch file.
func EnumFileName(desc *model.EnumDescriptor, suffix string) string {
	return DispatchName(desc) + suffix
}

// CombinedDispatchName joins the snake names of the dispatched enums under a
// dispatch_ prefix. The result is order-sensitive:
// dispatch_exchange_strategy and dispatch_strategy_exchange bind their type
// parameters differently and must never collide.
func CombinedDispatchName(enums []string) string {
	parts := make([]string, 0, len(enums)+1)
	parts = append(parts, "dispatch")
	for _, e := range enums {
		parts = append(parts, Snake(e))
	}
	return strings.Join(parts, "_")
}

// BridgeFileName is the output filename for a dispatch bridge.
func BridgeFileName(spec *model.DispatchSpec, suffix string) string {
	return CombinedDispatchName(spec.Enums) + "_" + Snake(spec.Func) + suffix
}

// BridgeFuncName is the generated bridge function's identifier: the override
// from name= when present, otherwise the target function followed by the
// enum names in order.
func BridgeFuncName(spec *model.DispatchSpec) string {
	if spec.Name != "" {
		return spec.Name
	}
	return spec.Func + strings.Join(spec.Enums, "")
}
