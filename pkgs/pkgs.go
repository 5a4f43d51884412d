// Package pkgs provides the standard definitions for mathexpr registries:
// real, complex, boolean, and point types with their operators, elementary
// functions, list functions, constants, and magic words, plus builtins for
// fragment shaders.
//
// Real numbers are *big.Float values computed at the precision of the
// evaluation context, with nil standing for NaN. Functions called outside
// their domains produce NaN rather than errors.
package pkgs

import "github.com/zephyrtronium/mathexpr"

// Type names defined by Core.
const (
	Real    mathexpr.TypeName = "real"
	Complex mathexpr.TypeName = "complex"
	Bool    mathexpr.TypeName = "bool"
	Point   mathexpr.TypeName = "point"
)

// Core returns the package of types, operators, functions, constants, and
// numeric literals. Each call returns a new package.
func Core() *mathexpr.Package {
	funcs := operators()
	funcs = append(funcs, elementary()...)
	funcs = append(funcs, lists()...)
	return &mathexpr.Package{
		Name:    "core",
		Types:   []*mathexpr.TypeInfo{realType, complexType, boolType, pointType},
		Funcs:   funcs,
		Globals: globals(),
		Magic: map[string]mathexpr.Magic{
			"const": constMagic,
			"count": countMagic,
		},
		Literal: realLiteral,
	}
}

// Default returns a registry of Core and Shader.
func Default() *mathexpr.Registry {
	r, err := mathexpr.NewRegistry(Core(), Shader())
	if err != nil {
		panic(err)
	}
	return r
}
