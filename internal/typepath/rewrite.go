package typepath

import "strings"

// Rewrite qualifies every module-local package reference in e against
// modulePath, returning a new expression tree. A path whose package starts
// with the local-root marker "./" (or is the module root ".") would resolve
// only from inside the module's own source tree; substituting the module
// path makes the generated code mean the same thing no matter which package
// it is emitted into. External paths come back structurally identical, so
// rewriting is idempotent.
//
// The substitution recurses into generic arguments, pointees, slice/array
// elements, map keys and values, channel elements, and function parameter
// and result types. Non-type positions (array lengths) pass through as-is.
func Rewrite(e Expr, modulePath string) Expr {
	switch t := e.(type) {
	case *Path:
		pkg := t.Pkg
		switch {
		case pkg == "." && t.Name == "":
			// A bare local-root marker names no type; leave it untouched.
		case pkg == ".":
			pkg = modulePath
		case strings.HasPrefix(pkg, "./"):
			pkg = modulePath + pkg[1:]
		}
		out := &Path{Pkg: pkg, Name: t.Name}
		for _, a := range t.Args {
			out.Args = append(out.Args, Rewrite(a, modulePath))
		}
		return out
	case *Pointer:
		return &Pointer{Elem: Rewrite(t.Elem, modulePath)}
	case *Slice:
		return &Slice{Elem: Rewrite(t.Elem, modulePath)}
	case *Array:
		return &Array{Len: t.Len, Elem: Rewrite(t.Elem, modulePath)}
	case *Map:
		return &Map{Key: Rewrite(t.Key, modulePath), Value: Rewrite(t.Value, modulePath)}
	case *Chan:
		return &Chan{Dir: t.Dir, Elem: Rewrite(t.Elem, modulePath)}
	case *Func:
		out := &Func{}
		for _, p := range t.Params {
			out.Params = append(out.Params, Rewrite(p, modulePath))
		}
		for _, r := range t.Results {
			out.Results = append(out.Results, Rewrite(r, modulePath))
		}
		return out
	default:
		return e
	}
}

// ResolveAliases replaces single-segment package identifiers with the full
// import paths they are registered under (the "packages" table of the config
// file), recursing like Rewrite. Unregistered identifiers are left verbatim.
func ResolveAliases(e Expr, aliases map[string]string) Expr {
	if len(aliases) == 0 {
		return e
	}
	switch t := e.(type) {
	case *Path:
		pkg := t.Pkg
		if pkg != "" && !t.Local() && !strings.Contains(pkg, "/") {
			if full, ok := aliases[pkg]; ok {
				pkg = full
			}
		}
		out := &Path{Pkg: pkg, Name: t.Name}
		for _, a := range t.Args {
			out.Args = append(out.Args, ResolveAliases(a, aliases))
		}
		return out
	case *Pointer:
		return &Pointer{Elem: ResolveAliases(t.Elem, aliases)}
	case *Slice:
		return &Slice{Elem: ResolveAliases(t.Elem, aliases)}
	case *Array:
		return &Array{Len: t.Len, Elem: ResolveAliases(t.Elem, aliases)}
	case *Map:
		return &Map{Key: ResolveAliases(t.Key, aliases), Value: ResolveAliases(t.Value, aliases)}
	case *Chan:
		return &Chan{Dir: t.Dir, Elem: ResolveAliases(t.Elem, aliases)}
	case *Func:
		out := &Func{}
		for _, p := range t.Params {
			out.Params = append(out.Params, ResolveAliases(p, aliases))
		}
		for _, r := range t.Results {
			out.Results = append(out.Results, ResolveAliases(r, aliases))
		}
		return out
	default:
		return e
	}
}
