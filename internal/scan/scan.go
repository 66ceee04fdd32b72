// Package scan walks a package's syntax trees for //go:concrete: directives
// and classifies annotated enums into the descriptors the generator consumes.
// It operates on plain *ast.File values so tests can drive it with go/parser
// alone.
package scan

import (
	"fmt"
	"go/ast"
	"go/token"
	"log/slog"
	"strings"

	"github.com/concretekit/concrete/internal/model"
)

// Diagnostic is one user-facing scan or classification failure, anchored to
// the offending source position.
type Diagnostic struct {
	Pos token.Position
	Msg string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Pos, d.Msg)
}

// Scanner extracts the annotated-enum model from parsed source files.
type Scanner struct {
	fset *token.FileSet
}

// New creates a Scanner over the given file set. The set must be the one the
// files were parsed with, or diagnostic positions will be wrong.
func New(fset *token.FileSet) *Scanner {
	return &Scanner{fset: fset}
}

// rawEnum is an annotated type declaration before classification.
type rawEnum struct {
	name     string
	opts     enumOptions
	typeExpr ast.Expr
	pos      token.Position
	variants []rawVariant
}

// rawVariant is one enum constant with every type directive found on it.
// More than one entry in tags is a duplicate-directive error.
type rawVariant struct {
	constName string
	tags      []string
	pos       token.Position
}

// Scan collects directives from files and classifies them. Generated files
// (*.gen.go) are skipped so repeated runs never scan their own output.
// Diagnostics abort the enum (or dispatch directive) they belong to; sibling
// enums still come back in the package model.
func (s *Scanner) Scan(name, path, module string, files []*ast.File) (*model.Package, []Diagnostic) {
	pkg := &model.Package{
		Name:   name,
		Path:   path,
		Module: module,
		Funcs:  make(map[string]model.Func),
	}
	var (
		enums []*rawEnum
		diags []Diagnostic
	)

	for _, file := range files {
		filename := s.fset.Position(file.Pos()).Filename
		if strings.HasSuffix(filename, ".gen.go") {
			slog.Debug("skipping generated file", "file", filename)
			continue
		}
		diags = append(diags, s.collectEnums(file, &enums)...)
		for _, decl := range file.Decls {
			if fn, ok := decl.(*ast.FuncDecl); ok && fn.Recv == nil {
				pkg.Funcs[fn.Name.Name] = model.Func{Decl: fn, File: file}
			}
		}
	}

	// Variant tags and dispatch directives need the full annotation set, so
	// they are collected in a second pass over every file.
	byName := make(map[string]*rawEnum, len(enums))
	for _, e := range enums {
		byName[e.name] = e
	}
	for _, file := range files {
		filename := s.fset.Position(file.Pos()).Filename
		if strings.HasSuffix(filename, ".gen.go") {
			continue
		}
		s.collectVariants(file, byName)
		diags = append(diags, s.collectDispatches(file, pkg)...)
	}

	var cdiags []Diagnostic
	pkg.Enums, cdiags = s.classify(enums)
	diags = append(diags, cdiags...)
	return pkg, diags
}

// collectEnums records every type declaration carrying an enum directive.
func (s *Scanner) collectEnums(file *ast.File, enums *[]*rawEnum) []Diagnostic {
	var diags []Diagnostic
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}
		for _, spec := range genDecl.Specs {
			typeSpec, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			doc := typeSpec.Doc
			if doc == nil && len(genDecl.Specs) == 1 {
				doc = genDecl.Doc
			}
			value, pos, found := s.findDirective(doc, "enum")
			if !found {
				continue
			}
			opts, err := parseEnumOptions(value)
			if err != nil {
				diags = append(diags, Diagnostic{
					Pos: pos,
					Msg: fmt.Sprintf("invalid %senum directive on type %s: %v", Prefix, typeSpec.Name.Name, err),
				})
				continue
			}
			*enums = append(*enums, &rawEnum{
				name:     typeSpec.Name.Name,
				opts:     opts,
				typeExpr: typeSpec.Type,
				pos:      s.fset.Position(typeSpec.Pos()),
			})
		}
	}
	return diags
}

// collectVariants attaches type directives from const blocks to their enums.
// Within a const block the enum type propagates from the last explicitly
// typed spec, matching how iota declarations are written.
func (s *Scanner) collectVariants(file *ast.File, byName map[string]*rawEnum) {
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.CONST {
			continue
		}
		currentType := ""
		for _, spec := range genDecl.Specs {
			valueSpec, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			if ident, ok := valueSpec.Type.(*ast.Ident); ok {
				currentType = ident.Name
			} else if valueSpec.Type != nil {
				currentType = ""
			}
			enum, ok := byName[currentType]
			if !ok {
				continue
			}
			tags := s.findDirectives(valueSpec.Doc, "type")
			tags = append(tags, s.findDirectives(valueSpec.Comment, "type")...)
			for _, name := range valueSpec.Names {
				if name.Name == "_" {
					continue
				}
				enum.variants = append(enum.variants, rawVariant{
					constName: name.Name,
					tags:      tags,
					pos:       s.fset.Position(name.Pos()),
				})
			}
		}
	}
}

// collectDispatches gathers dispatch directives from every comment in the
// file, wherever they appear.
func (s *Scanner) collectDispatches(file *ast.File, pkg *model.Package) []Diagnostic {
	var diags []Diagnostic
	for _, group := range file.Comments {
		for _, comment := range group.List {
			key, value, ok := parseDirective(comment.Text)
			if !ok || key != "dispatch" {
				continue
			}
			pos := s.fset.Position(comment.Pos())
			spec, err := parseDispatchValue(value)
			if err != nil {
				diags = append(diags, Diagnostic{
					Pos: pos,
					Msg: fmt.Sprintf("invalid %sdispatch directive: %v", Prefix, err),
				})
				continue
			}
			if len(spec.Enums) > 5 {
				diags = append(diags, Diagnostic{
					Pos: pos,
					Msg: fmt.Sprintf("dispatch over %d enums; at most 5 are supported", len(spec.Enums)),
				})
				continue
			}
			spec.Pos = pos
			pkg.Dispatches = append(pkg.Dispatches, spec)
		}
	}
	return diags
}

// findDirective returns the single directive with the given key in the
// comment group, if present.
func (s *Scanner) findDirective(doc *ast.CommentGroup, key string) (string, token.Position, bool) {
	if doc == nil {
		return "", token.Position{}, false
	}
	for _, comment := range doc.List {
		k, v, ok := parseDirective(comment.Text)
		if ok && k == key {
			return v, s.fset.Position(comment.Pos()), true
		}
	}
	return "", token.Position{}, false
}

// findDirectives returns the values of every directive with the given key.
func (s *Scanner) findDirectives(doc *ast.CommentGroup, key string) []string {
	if doc == nil {
		return nil
	}
	var values []string
	for _, comment := range doc.List {
		k, v, ok := parseDirective(comment.Text)
		if ok && k == key {
			values = append(values, v)
		}
	}
	return values
}
