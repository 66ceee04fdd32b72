// Package typepath parses the type-path strings carried by variant tags into
// a structured form, and rewrites module-local references so that generated
// code resolves identically from any importing package.
//
// A type path is written the way the type would appear in Go source, except
// that named types are qualified by their full import path rather than a
// package identifier: "github.com/acme/lib.Client", "[]./internal/store.Row",
// "map[string]./internal/store.Row". A leading "./" on the package path is
// the local-root marker: it names a package inside the module being scanned
// and is replaced with the module path during rewriting.
package typepath

import "strings"

// Expr is a structured, possibly nested type expression.
type Expr interface {
	String() string
	expr()
}

// Path is a reference to a named type, optionally with generic arguments.
// Pkg is empty for builtins and types of the annotated package itself.
type Path struct {
	Pkg  string
	Name string
	Args []Expr
}

// Pointer wraps the pointee type.
type Pointer struct{ Elem Expr }

// Slice wraps the element type.
type Slice struct{ Elem Expr }

// Array carries its length verbatim; the length is a non-type position and
// is never rewritten.
type Array struct {
	Len  string
	Elem Expr
}

// Map wraps key and value types.
type Map struct{ Key, Value Expr }

// ChanDir is the direction of a channel type.
type ChanDir int

const (
	SendRecv ChanDir = iota
	RecvOnly
	SendOnly
)

// Chan wraps the element type of a channel.
type Chan struct {
	Dir  ChanDir
	Elem Expr
}

// Func carries parameter and result types.
type Func struct {
	Params  []Expr
	Results []Expr
}

func (*Path) expr()    {}
func (*Pointer) expr() {}
func (*Slice) expr()   {}
func (*Array) expr()   {}
func (*Map) expr()     {}
func (*Chan) expr()    {}
func (*Func) expr()    {}

// Local reports whether the path's leading segment is the local-root marker.
// The classification is purely syntactic.
func (p *Path) Local() bool {
	return p.Pkg == "." || strings.HasPrefix(p.Pkg, "./")
}

func (p *Path) String() string {
	var sb strings.Builder
	switch {
	case p.Pkg == "":
		sb.WriteString(p.Name)
	case p.Name == "":
		// Bare local-root marker. Unusual, but passed through as written.
		sb.WriteString(p.Pkg)
	default:
		sb.WriteString(p.Pkg)
		sb.WriteByte('.')
		sb.WriteString(p.Name)
	}
	if len(p.Args) > 0 {
		sb.WriteByte('[')
		for i, a := range p.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(a.String())
		}
		sb.WriteByte(']')
	}
	return sb.String()
}

func (p *Pointer) String() string { return "*" + p.Elem.String() }

func (s *Slice) String() string { return "[]" + s.Elem.String() }

func (a *Array) String() string { return "[" + a.Len + "]" + a.Elem.String() }

func (m *Map) String() string {
	return "map[" + m.Key.String() + "]" + m.Value.String()
}

func (c *Chan) String() string {
	switch c.Dir {
	case RecvOnly:
		return "<-chan " + c.Elem.String()
	case SendOnly:
		return "chan<- " + c.Elem.String()
	default:
		return "chan " + c.Elem.String()
	}
}

func (f *Func) String() string {
	var sb strings.Builder
	sb.WriteString("func(")
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	sb.WriteByte(')')
	switch len(f.Results) {
	case 0:
	case 1:
		sb.WriteByte(' ')
		sb.WriteString(f.Results[0].String())
	default:
		sb.WriteString(" (")
		for i, r := range f.Results {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(r.String())
		}
		sb.WriteByte(')')
	}
	return sb.String()
}
