package scan

import (
	"fmt"
	"go/ast"
	"log/slog"
	"strings"

	"github.com/concretekit/concrete/internal/model"
	"github.com/concretekit/concrete/internal/typepath"
)

// integerKinds lists the named types an enum may be declared over.
var integerKinds = map[string]bool{
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true,
	"uintptr": true, "byte": true, "rune": true,
}

// classify turns raw annotations into enum descriptors. Any diagnostic aborts
// the enum it belongs to; the remaining enums are classified normally.
func (s *Scanner) classify(enums []*rawEnum) ([]*model.EnumDescriptor, []Diagnostic) {
	var (
		descs []*model.EnumDescriptor
		diags []Diagnostic
	)
	for _, raw := range enums {
		desc, ediags := s.classifyEnum(raw)
		if len(ediags) > 0 {
			diags = append(diags, ediags...)
			slog.Debug("enum rejected", "enum", raw.name, "diagnostics", len(ediags))
			continue
		}
		descs = append(descs, desc)
	}
	return descs, diags
}

func (s *Scanner) classifyEnum(raw *rawEnum) (*model.EnumDescriptor, []Diagnostic) {
	var diags []Diagnostic

	if ident, ok := raw.typeExpr.(*ast.Ident); !ok || !integerKinds[ident.Name] {
		return nil, []Diagnostic{{
			Pos: raw.pos,
			Msg: fmt.Sprintf("type %s: concrete dispatch can only be derived for enums (named integer types)", raw.name),
		}}
	}

	desc := &model.EnumDescriptor{
		Name: raw.name,
		Mode: raw.opts.Mode,
		Pos:  raw.pos,
	}
	if desc.Mode == model.ModeConfig {
		desc.UnionName = raw.opts.Name
		if desc.UnionName == "" {
			desc.UnionName = defaultUnionName(raw.name)
		}
		if desc.UnionName == raw.name {
			diags = append(diags, Diagnostic{
				Pos: raw.pos,
				Msg: fmt.Sprintf("enum %s: union type name %q collides with the enum itself; set name= on the enum directive", raw.name, desc.UnionName),
			})
		}
	}

	for _, rv := range raw.variants {
		v, vdiags := s.classifyVariant(raw, rv)
		if len(vdiags) > 0 {
			diags = append(diags, vdiags...)
			continue
		}
		desc.Variants = append(desc.Variants, v)
	}

	if len(diags) > 0 {
		return nil, diags
	}
	return desc, nil
}

func (s *Scanner) classifyVariant(raw *rawEnum, rv rawVariant) (model.VariantMapping, []Diagnostic) {
	fail := func(format string, args ...any) (model.VariantMapping, []Diagnostic) {
		return model.VariantMapping{}, []Diagnostic{{Pos: rv.pos, Msg: fmt.Sprintf(format, args...)}}
	}

	switch len(rv.tags) {
	case 0:
		return fail("enum variant `%s` is missing its %stype=\"...\" directive", rv.constName, Prefix)
	case 1:
	default:
		return fail("enum variant `%s` carries %d %stype directives; exactly one is required", rv.constName, len(rv.tags), Prefix)
	}

	tag, err := parseVariantTag(rv.tags[0])
	if err != nil {
		return fail("enum variant `%s`: invalid %stype value %q: %v", rv.constName, Prefix, rv.tags[0], err)
	}

	typ, err := typepath.Parse(tag.Type)
	if err != nil {
		return fail("enum variant `%s`: cannot parse type path %q: %v", rv.constName, tag.Type, err)
	}

	v := model.VariantMapping{
		Name:  variantName(raw.name, rv.constName),
		Const: rv.constName,
		Type:  typ,
		Pos:   rv.pos,
	}
	if tag.Config != "" {
		if raw.opts.Mode != model.ModeConfig {
			return fail("enum variant `%s` declares a config payload but enum %s is not in config mode", rv.constName, raw.name)
		}
		payload, err := typepath.Parse(tag.Config)
		if err != nil {
			return fail("enum variant `%s`: cannot parse config payload %q: %v", rv.constName, tag.Config, err)
		}
		v.Payload = payload
	}
	return v, nil
}

// variantName derives the display name: the constant identifier with the enum
// name prefix trimmed. Constants that do not follow the prefix convention
// keep their full name.
func variantName(enumName, constName string) string {
	if trimmed := strings.TrimPrefix(constName, enumName); trimmed != "" && trimmed != constName {
		return trimmed
	}
	return constName
}

// defaultUnionName derives the config union's type name. A trailing Kind or
// Config suffix on the enum name is stripped first, so ExchangeKind yields
// ExchangeConfig rather than ExchangeKindConfig.
func defaultUnionName(enumName string) string {
	base := strings.TrimSuffix(enumName, "Kind")
	base = strings.TrimSuffix(base, "Config")
	if base == "" {
		base = enumName
	}
	return base + "Config"
}
