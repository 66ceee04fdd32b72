package generator

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/types"
	"path"
	"strconv"
	"strings"

	"github.com/concretekit/concrete/internal/model"
)

// bridgeParam is one value parameter of the bridge function, copied from the
// target's signature.
type bridgeParam struct {
	name     string
	typ      string
	variadic bool
}

// bridge collects everything needed to render one dispatch bridge.
type bridge struct {
	pkg      *model.Package
	spec     *model.DispatchSpec
	descs    []*model.EnumDescriptor
	fn       model.Func
	im       *ImportManager
	enumVars []string
	params   []bridgeParam
	results  string
}

// bridgeFile renders the bridge for one dispatch spec: a plain function that
// switches on the enum values and instantiates the generic target once per
// concrete-type combination.
func (g *Generator) bridgeFile(pkg *model.Package, spec *model.DispatchSpec) (File, error) {
	b := &bridge{pkg: pkg, spec: spec, im: NewImportManager(pkg.Path)}
	if err := b.validate(); err != nil {
		return File{}, err
	}
	b.im.Add("fmt")

	content, err := b.render(g)
	if err != nil {
		return File{}, err
	}
	return File{Name: BridgeFileName(spec, g.suffix), Content: content}, nil
}

func (b *bridge) configMode() bool {
	return len(b.descs) == 1 && b.descs[0].Mode == model.ModeConfig
}

func (b *bridge) validate() error {
	for _, name := range b.spec.Enums {
		desc, ok := b.pkg.Enum(name)
		if !ok {
			return fmt.Errorf("no enum named %s is annotated in package %s", name, b.pkg.Name)
		}
		if b.spec.Combined() && desc.Mode == model.ModeConfig {
			return fmt.Errorf("config-mode enum %s cannot participate in a combined dispatch", name)
		}
		b.descs = append(b.descs, desc)
	}

	fn, ok := b.pkg.Funcs[b.spec.Func]
	if !ok {
		return fmt.Errorf("no function named %s is declared in package %s", b.spec.Func, b.pkg.Name)
	}
	b.fn = fn

	typeParams := typeParamNames(fn.Decl)
	want := len(b.descs)
	if b.configMode() {
		want = 2
	}
	if len(typeParams) != want {
		return fmt.Errorf("%s declares %d type parameters, dispatch needs %d",
			b.spec.Func, len(typeParams), want)
	}

	params := flattenParams(fn.Decl.Type.Params)
	if b.configMode() {
		if len(params) == 0 {
			return fmt.Errorf("%s must take the configuration payload as its first parameter", b.spec.Func)
		}
		// The payload parameter is the one place the signature may mention a
		// type parameter.
		params = params[1:]
	}
	for _, p := range params {
		if ident := referencedTypeParam(p.expr, typeParams); ident != "" {
			return fmt.Errorf("parameter %s of %s references type parameter %s; the bridge cannot name it",
				p.name, b.spec.Func, ident)
		}
	}
	if fn.Decl.Type.Results != nil {
		for _, f := range fn.Decl.Type.Results.List {
			if ident := referencedTypeParam(f.Type, typeParams); ident != "" {
				return fmt.Errorf("a result of %s references type parameter %s; the bridge cannot name it",
					b.spec.Func, ident)
			}
		}
	}

	b.buildSignature(params)
	return nil
}

// buildSignature copies the forwarded parameters and results out of the
// target's declaration, resolving package qualifiers against the defining
// file's import table.
func (b *bridge) buildSignature(params []flatParam) {
	used := make(map[string]bool)
	for _, p := range params {
		if p.name != "" {
			used[p.name] = true
		}
	}

	pick := func(candidate string) string {
		name := candidate
		for n := 1; used[name]; n++ {
			name = candidate + strconv.Itoa(n)
		}
		used[name] = true
		return name
	}

	if b.configMode() {
		b.enumVars = []string{pick("cfg")}
	} else {
		for i := range b.descs {
			b.enumVars = append(b.enumVars, pick("e"+strconv.Itoa(i+1)))
		}
	}

	for i, p := range params {
		name := p.name
		if name == "" || name == "_" {
			name = pick("p" + strconv.Itoa(i))
		}
		typ := p.expr
		variadic := false
		if ell, ok := typ.(*ast.Ellipsis); ok {
			typ = ell.Elt
			variadic = true
		}
		b.registerQualifiers(typ)
		rendered := types.ExprString(typ)
		if variadic {
			rendered = "..." + rendered
		}
		b.params = append(b.params, bridgeParam{name: name, typ: rendered, variadic: variadic})
	}

	if res := b.fn.Decl.Type.Results; res != nil && len(res.List) > 0 {
		var parts []string
		for _, f := range res.List {
			b.registerQualifiers(f.Type)
			rendered := types.ExprString(f.Type)
			n := len(f.Names)
			if n == 0 {
				n = 1
			}
			for i := 0; i < n; i++ {
				parts = append(parts, rendered)
			}
		}
		if len(parts) == 1 {
			b.results = parts[0]
		} else {
			b.results = "(" + strings.Join(parts, ", ") + ")"
		}
	}
}

// registerQualifiers mirrors the defining file's imports for every package
// selector appearing in a copied type expression.
func (b *bridge) registerQualifiers(expr ast.Expr) {
	ast.Inspect(expr, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		ident, ok := sel.X.(*ast.Ident)
		if !ok {
			return true
		}
		for _, imp := range b.fn.File.Imports {
			importPath, err := strconv.Unquote(imp.Path.Value)
			if err != nil {
				continue
			}
			name := path.Base(importPath)
			if imp.Name != nil {
				name = imp.Name.Name
			}
			if name == ident.Name {
				b.im.AddAs(importPath, name)
				break
			}
		}
		return false
	})
}

func (b *bridge) render(g *Generator) ([]byte, error) {
	// Qualify every concrete and payload type first so the import block is
	// complete before the header is written.
	concreteTypes := make([][]string, len(b.descs))
	payloadTypes := make([][]string, len(b.descs))
	for i, desc := range b.descs {
		for _, v := range desc.Variants {
			concreteTypes[i] = append(concreteTypes[i], b.im.Qualify(g.resolve(v.Type, b.pkg.Module)))
			if desc.Mode != model.ModeConfig {
				continue
			}
			if v.Payload != nil {
				payloadTypes[i] = append(payloadTypes[i], b.im.Qualify(g.resolve(v.Payload, b.pkg.Module)))
			} else {
				b.im.Add("github.com/concretekit/concrete")
				payloadTypes[i] = append(payloadTypes[i], "concrete.Unit")
			}
		}
	}

	var body bytes.Buffer
	b.writeSwitch(&body, 0, nil, concreteTypes, payloadTypes)

	var buf bytes.Buffer
	buf.WriteString("// Code generated by concretegen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", b.pkg.Name)
	buf.WriteString("import (\n")
	for _, imp := range b.im.Imports() {
		if imp.Aliased {
			fmt.Fprintf(&buf, "\t%s %q\n", imp.Alias, imp.Path)
		} else {
			fmt.Fprintf(&buf, "\t%q\n", imp.Path)
		}
	}
	buf.WriteString(")\n\n")

	fmt.Fprintf(&buf, "// %s dispatches %s over the concrete types of %s.\n",
		BridgeFuncName(b.spec), b.spec.Func, strings.Join(b.spec.Enums, ", "))
	fmt.Fprintf(&buf, "func %s(%s)", BridgeFuncName(b.spec), b.declParams())
	if b.results != "" {
		buf.WriteString(" " + b.results)
	}
	buf.WriteString(" {\n")
	buf.Write(body.Bytes())
	buf.WriteString("}\n")

	content, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to format generated source: %w", err)
	}
	return content, nil
}

func (b *bridge) declParams() string {
	var parts []string
	if b.configMode() {
		parts = append(parts, b.enumVars[0]+" "+b.descs[0].UnionName)
	} else {
		for i, desc := range b.descs {
			parts = append(parts, b.enumVars[i]+" "+desc.Name)
		}
	}
	for _, p := range b.params {
		parts = append(parts, p.name+" "+p.typ)
	}
	return strings.Join(parts, ", ")
}

// writeSwitch emits the nested switch for enum depth and below. bound holds
// the concrete-type instantiations chosen by the enclosing switches.
func (b *bridge) writeSwitch(buf *bytes.Buffer, depth int, bound []string, concreteTypes, payloadTypes [][]string) {
	desc := b.descs[depth]
	subject := b.enumVars[depth]
	if b.configMode() {
		subject = b.enumVars[0] + ".Kind()"
	}

	fmt.Fprintf(buf, "switch %s {\n", subject)
	for i, v := range desc.Variants {
		fmt.Fprintf(buf, "case %s:\n", v.Const)
		instantiation := append(append([]string(nil), bound...), concreteTypes[depth][i])
		if depth == len(b.descs)-1 {
			b.writeCall(buf, instantiation, payloadTypes[depth], i, v)
		} else {
			b.writeSwitch(buf, depth+1, instantiation, concreteTypes, payloadTypes)
		}
	}
	buf.WriteString("default:\n")
	fmt.Fprintf(buf, "panic(fmt.Sprintf(%q, %s))\n", desc.Name+": unknown variant %v", subject)
	buf.WriteString("}\n")
}

// writeCall emits the innermost instantiation and call of the target.
func (b *bridge) writeCall(buf *bytes.Buffer, instantiation []string, payloadTypes []string, i int, v model.VariantMapping) {
	var args []string
	if b.configMode() {
		instantiation = append(instantiation, payloadTypes[i])
		if v.Payload != nil {
			args = append(args, b.enumVars[0]+".payload"+v.Name)
		} else {
			args = append(args, "concrete.Unit{}")
		}
	}
	for _, p := range b.params {
		if p.variadic {
			args = append(args, p.name+"...")
		} else {
			args = append(args, p.name)
		}
	}

	call := fmt.Sprintf("%s[%s](%s)", b.spec.Func, strings.Join(instantiation, ", "), strings.Join(args, ", "))
	if b.results != "" {
		fmt.Fprintf(buf, "return %s\n", call)
	} else {
		fmt.Fprintf(buf, "%s\nreturn\n", call)
	}
}

// typeParamNames flattens the declared type parameter identifiers.
func typeParamNames(fn *ast.FuncDecl) []string {
	if fn.Type.TypeParams == nil {
		return nil
	}
	var names []string
	for _, f := range fn.Type.TypeParams.List {
		for _, n := range f.Names {
			names = append(names, n.Name)
		}
	}
	return names
}

type flatParam struct {
	name string
	expr ast.Expr
}

// flattenParams expands grouped parameters (a, b int) into one entry each.
func flattenParams(fields *ast.FieldList) []flatParam {
	if fields == nil {
		return nil
	}
	var params []flatParam
	for _, f := range fields.List {
		if len(f.Names) == 0 {
			params = append(params, flatParam{expr: f.Type})
			continue
		}
		for _, n := range f.Names {
			params = append(params, flatParam{name: n.Name, expr: f.Type})
		}
	}
	return params
}

// referencedTypeParam reports the first type parameter mentioned by the
// expression, or "".
func referencedTypeParam(expr ast.Expr, typeParams []string) string {
	set := make(map[string]bool, len(typeParams))
	for _, n := range typeParams {
		set[n] = true
	}
	found := ""
	ast.Inspect(expr, func(n ast.Node) bool {
		if found != "" {
			return false
		}
		if sel, ok := n.(*ast.SelectorExpr); ok {
			// Only the qualifier side of a selector can be an identifier in
			// scope; the selected name never is.
			if ident, ok := sel.X.(*ast.Ident); ok && set[ident.Name] {
				found = ident.Name
			}
			return false
		}
		if ident, ok := n.(*ast.Ident); ok && set[ident.Name] {
			found = ident.Name
		}
		return true
	})
	return found
}
