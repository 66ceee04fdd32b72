// Package model defines the scanned-package view shared by the scanner and
// the generator: enum descriptors, variant-to-type mappings, and dispatch
// specifications.
package model

import (
	"go/ast"
	"go/token"

	"github.com/concretekit/concrete/internal/typepath"
)

// EnumMode distinguishes the two dispatch shapes an enum can request.
type EnumMode int

const (
	// ModeUnit maps each variant to a concrete type with no runtime payload.
	ModeUnit EnumMode = iota
	// ModeConfig additionally carries a per-variant configuration value
	// through a generated union type.
	ModeConfig
)

func (m EnumMode) String() string {
	if m == ModeConfig {
		return "config"
	}
	return "unit"
}

// VariantMapping ties one enum constant to its concrete type and, in config
// mode, the payload type stored for that variant.
type VariantMapping struct {
	// Name is the variant's display name: the constant name with the enum
	// name prefix trimmed.
	Name string
	// Const is the declared constant identifier.
	Const string
	// Type is the concrete type the variant stands for, already parsed.
	Type typepath.Expr
	// Payload is the configuration type for config-mode enums, nil otherwise.
	Payload typepath.Expr
	// Pos locates the constant declaration for diagnostics.
	Pos token.Position
}

// EnumDescriptor is one annotated enum with its classified variants.
type EnumDescriptor struct {
	// Name is the enum type's identifier.
	Name string
	Mode EnumMode
	// UnionName names the generated payload union in config mode.
	UnionName string
	Variants  []VariantMapping
	// Pos locates the type declaration for diagnostics.
	Pos token.Position
}

// HasPayload reports whether any variant carries a configuration payload.
func (d *EnumDescriptor) HasPayload() bool {
	for _, v := range d.Variants {
		if v.Payload != nil {
			return true
		}
	}
	return false
}

// Variant returns the mapping for the given constant name, if declared.
func (d *EnumDescriptor) Variant(constName string) (VariantMapping, bool) {
	for _, v := range d.Variants {
		if v.Const == constName {
			return v, true
		}
	}
	return VariantMapping{}, false
}

// DispatchSpec requests a bridge function over one or more enums for a
// generic target function.
type DispatchSpec struct {
	// Enums lists the enum type names in declaration order. Order determines
	// both type-parameter binding and the bridge's name.
	Enums []string
	// Func is the generic target function's identifier.
	Func string
	// Name overrides the derived bridge name when non-empty.
	Name string
	// Pos locates the directive for diagnostics.
	Pos token.Position
}

// Combined reports whether the dispatch spans more than one enum.
func (s *DispatchSpec) Combined() bool { return len(s.Enums) > 1 }

// Func is a top-level function declaration together with the file it was
// declared in. The file supplies the import table needed to re-render the
// signature in generated code.
type Func struct {
	Decl *ast.FuncDecl
	File *ast.File
}

// Package is the fully scanned and classified view of one Go package.
type Package struct {
	// Name is the package identifier used in generated file headers.
	Name string
	// Path is the package's import path.
	Path string
	// Module is the enclosing module path, used to rewrite local type paths.
	Module string
	Enums  []*EnumDescriptor
	// Dispatches holds every dispatch directive found in the package.
	Dispatches []DispatchSpec
	// Funcs indexes the package's top-level function declarations so the
	// generator can validate dispatch targets.
	Funcs map[string]Func
}

// Enum returns the descriptor for the named enum, if annotated.
func (p *Package) Enum(name string) (*EnumDescriptor, bool) {
	for _, e := range p.Enums {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}
