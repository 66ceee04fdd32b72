package generator

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/concretekit/concrete/internal/typepath"
)

// Import is one entry of a generated file's import block.
type Import struct {
	Path  string
	Alias string
	// Aliased reports whether the alias must be written out because it
	// differs from the path's last segment.
	Aliased bool
}

// ImportManager assigns stable aliases to the packages referenced by
// rendered type expressions. Types of the local package are printed
// unqualified and never imported.
type ImportManager struct {
	local   string
	imports map[string]string
	counter int
}

// NewImportManager creates a manager for a file generated into the package
// with the given import path.
func NewImportManager(localPkgPath string) *ImportManager {
	return &ImportManager{
		local:   localPkgPath,
		imports: make(map[string]string),
		counter: 1,
	}
}

// Add registers an import and returns the alias to qualify it with.
// Conflicting last segments get numbered aliases.
func (im *ImportManager) Add(importPath string) string {
	if alias, exists := im.imports[importPath]; exists {
		return alias
	}

	alias := sanitizeAlias(path.Base(importPath))
	if alias == "" {
		alias = fmt.Sprintf("pkg%d", im.counter)
		im.counter++
	}

	original := alias
	for n := 1; im.aliasTaken(alias); n++ {
		alias = fmt.Sprintf("%s%d", original, n)
	}

	im.imports[importPath] = alias
	return alias
}

// AddAs registers an import under a caller-chosen alias, mirroring how the
// path is imported elsewhere.
func (im *ImportManager) AddAs(importPath, alias string) string {
	if existing, ok := im.imports[importPath]; ok {
		return existing
	}
	im.imports[importPath] = alias
	return alias
}

func (im *ImportManager) aliasTaken(alias string) bool {
	for _, existing := range im.imports {
		if existing == alias {
			return true
		}
	}
	return false
}

// Imports returns the accumulated import block, sorted by path.
func (im *ImportManager) Imports() []Import {
	paths := make([]string, 0, len(im.imports))
	for p := range im.imports {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	out := make([]Import, 0, len(paths))
	for _, p := range paths {
		alias := im.imports[p]
		out = append(out, Import{
			Path:    p,
			Alias:   alias,
			Aliased: alias != path.Base(p),
		})
	}
	return out
}

// Qualify renders a type expression as Go source, registering every imported
// package it touches.
func (im *ImportManager) Qualify(e typepath.Expr) string {
	switch t := e.(type) {
	case *typepath.Path:
		var sb strings.Builder
		switch {
		case t.Pkg == "" || t.Pkg == im.local:
			sb.WriteString(t.Name)
		default:
			sb.WriteString(im.Add(t.Pkg))
			sb.WriteByte('.')
			sb.WriteString(t.Name)
		}
		if len(t.Args) > 0 {
			sb.WriteByte('[')
			for i, a := range t.Args {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(im.Qualify(a))
			}
			sb.WriteByte(']')
		}
		return sb.String()
	case *typepath.Pointer:
		return "*" + im.Qualify(t.Elem)
	case *typepath.Slice:
		return "[]" + im.Qualify(t.Elem)
	case *typepath.Array:
		return "[" + t.Len + "]" + im.Qualify(t.Elem)
	case *typepath.Map:
		return "map[" + im.Qualify(t.Key) + "]" + im.Qualify(t.Value)
	case *typepath.Chan:
		switch t.Dir {
		case typepath.RecvOnly:
			return "<-chan " + im.Qualify(t.Elem)
		case typepath.SendOnly:
			return "chan<- " + im.Qualify(t.Elem)
		default:
			return "chan " + im.Qualify(t.Elem)
		}
	case *typepath.Func:
		var sb strings.Builder
		sb.WriteString("func(")
		for i, p := range t.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(im.Qualify(p))
		}
		sb.WriteByte(')')
		switch len(t.Results) {
		case 0:
		case 1:
			sb.WriteByte(' ')
			sb.WriteString(im.Qualify(t.Results[0]))
		default:
			sb.WriteString(" (")
			for i, r := range t.Results {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(im.Qualify(r))
			}
			sb.WriteByte(')')
		}
		return sb.String()
	default:
		return e.String()
	}
}

// sanitizeAlias turns a path segment into a usable identifier: go-version
// becomes go_version, a leading digit gets a pkg prefix.
func sanitizeAlias(segment string) string {
	var sb strings.Builder
	for _, r := range segment {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	s := sb.String()
	if s == "" || strings.Trim(s, "_") == "" {
		return ""
	}
	if s[0] >= '0' && s[0] <= '9' {
		s = "pkg" + s
	}
	return s
}
