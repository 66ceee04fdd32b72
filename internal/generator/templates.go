package generator

import "text/template"

// enumFileModel is the render model for one enum's generated file. Type
// strings are already qualified against the file's import manager.
type enumFileModel struct {
	Package  string
	Imports  []Import
	Enum     string
	Union    string
	Config   bool
	Variants []enumVariantModel
}

type enumVariantModel struct {
	Name  string
	Const string
	Type  string
	// Payload is the qualified payload type, or "concrete.Unit" for unit
	// variants of a config enum.
	Payload string
	// HasPayload marks variants with a declared payload; only those get a
	// union field and a payload constructor argument.
	HasPayload bool
	// Field is the union's payload field for this variant.
	Field string
}

var enumFileTemplate = template.Must(template.New("enum").Parse(`// Code generated by concretegen. DO NOT EDIT.

package {{.Package}}

import (
{{- range .Imports}}
	{{if .Aliased}}{{.Alias}} {{end}}"{{.Path}}"
{{- end}}
)

// ConcreteType returns the reflect.Type bound to e's variant.
func (e {{.Enum}}) ConcreteType() reflect.Type {
	switch e {
{{- range .Variants}}
	case {{.Const}}:
		return concrete.TypeOf[{{.Type}}]()
{{- end}}
	default:
		panic(fmt.Sprintf("{{.Enum}}: unknown variant %v", e))
	}
}

// ConcreteTypeName returns the full path of the variant's concrete type.
func (e {{.Enum}}) ConcreteTypeName() string {
	switch e {
{{- range .Variants}}
	case {{.Const}}:
		return concrete.NameOf[{{.Type}}]()
{{- end}}
	default:
		panic(fmt.Sprintf("{{.Enum}}: unknown variant %v", e))
	}
}
{{if .Config}}
// {{.Union}} pairs a {{.Enum}} with the payload of its variant.
type {{.Union}} struct {
	kind {{.Enum}}
{{- range .Variants}}
{{- if .HasPayload}}
	{{.Field}} {{.Payload}}
{{- end}}
{{- end}}
}
{{range .Variants}}
{{- if .HasPayload}}
// New{{$.Union}}{{.Name}} builds the {{.Name}} configuration.
func New{{$.Union}}{{.Name}}(payload {{.Payload}}) {{$.Union}} {
	return {{$.Union}}{kind: {{.Const}}, {{.Field}}: payload}
}
{{else}}
// New{{$.Union}}{{.Name}} builds the {{.Name}} configuration.
func New{{$.Union}}{{.Name}}() {{$.Union}} {
	return {{$.Union}}{kind: {{.Const}}}
}
{{end}}
{{- end}}
// Kind returns the variant this configuration was built for.
func (c {{.Union}}) Kind() {{.Enum}} { return c.kind }

// Config returns the variant's payload as a type-erased value. Unit variants
// yield concrete.Unit, so the accessor works on mixed enums.
func (c {{.Union}}) Config() any {
	switch c.kind {
{{- range .Variants}}
	case {{.Const}}:
		{{- if .HasPayload}}
		return c.{{.Field}}
		{{- else}}
		return concrete.Unit{}
		{{- end}}
{{- end}}
	default:
		panic(fmt.Sprintf("{{.Enum}}: unknown variant %v", c.kind))
	}
}

// ConcreteType returns the reflect.Type bound to the configuration's variant.
func (c {{.Union}}) ConcreteType() reflect.Type { return c.kind.ConcreteType() }

// ConcreteTypeName returns the full path of the variant's concrete type.
func (c {{.Union}}) ConcreteTypeName() string { return c.kind.ConcreteTypeName() }

// {{.Enum}}Visitor visits a variant with its concrete type and payload in
// scope.
type {{.Enum}}Visitor[R any] interface {
{{- range .Variants}}
	Visit{{.Name}}({{.Type}}, {{.Payload}}) R
{{- end}}
}

// Dispatch{{.Enum}} invokes the visitor method for c's variant.
func Dispatch{{.Enum}}[R any](c {{.Union}}, v {{.Enum}}Visitor[R]) R {
	switch c.kind {
{{- range .Variants}}
	case {{.Const}}:
		var impl {{.Type}}
		{{- if .HasPayload}}
		return v.Visit{{.Name}}(impl, c.{{.Field}})
		{{- else}}
		return v.Visit{{.Name}}(impl, concrete.Unit{})
		{{- end}}
{{- end}}
	default:
		panic(fmt.Sprintf("{{.Enum}}: unknown variant %v", c.kind))
	}
}
{{else}}
// {{.Enum}}Visitor visits a variant with its concrete type in scope.
type {{.Enum}}Visitor[R any] interface {
{{- range .Variants}}
	Visit{{.Name}}({{.Type}}) R
{{- end}}
}

// Dispatch{{.Enum}} invokes the visitor method for e's variant.
func Dispatch{{.Enum}}[R any](e {{.Enum}}, v {{.Enum}}Visitor[R]) R {
	switch e {
{{- range .Variants}}
	case {{.Const}}:
		var impl {{.Type}}
		return v.Visit{{.Name}}(impl)
{{- end}}
	default:
		panic(fmt.Sprintf("{{.Enum}}: unknown variant %v", e))
	}
}
{{end}}`))
