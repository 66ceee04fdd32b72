// Package concrete holds the small runtime-support helpers imported by code
// that concretegen emits. Generated dispatch code instantiates TypeOf and
// NameOf once per concrete type, so the identity and name of an enum variant's
// implementation are resolved at compile time and merely returned at run time.
//
// The package has no state and performs no I/O; everything here is a thin
// wrapper over the reflect package.
package concrete

import "reflect"

// TypeOf returns the reflect.Type of T without requiring a value of T.
// It works for interface and pointer types as well as concrete ones.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// NameOf returns the printable path of T: "import/path.Name" for named
// types, or the reflect string form for unnamed ones (slices, maps, ...).
func NameOf[T any]() string {
	t := TypeOf[T]()
	if t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// Unit is the canonical empty payload. Unit variants of a config enum carry
// it so that payload accessors never fail on mixed unit/data enums.
type Unit struct{}
