package pkgs

import "github.com/zephyrtronium/mathexpr"

// Coords is the name of the varying which holds fragment coordinates in
// shaders using the Shader package.
const Coords = "v_coords"

// Shader returns the package of fragment shader builtins: the coordinates x
// and y, and the point coords. They have no values outside of shaders.
func Shader() *mathexpr.Package {
	coord := func(ty mathexpr.TypeName, expr string) mathexpr.Global {
		return mathexpr.Global{
			Glsl: func(ctx *mathexpr.Context, g *mathexpr.GlslContext) (mathexpr.GlslValue, error) {
				return mathexpr.GlslValue{Type: ty, List: mathexpr.Scalar, Expr: expr}, nil
			},
		}
	}
	return &mathexpr.Package{
		Name: "shader",
		Globals: map[string]mathexpr.Global{
			"x":      coord(Real, Coords+".x"),
			"y":      coord(Real, Coords+".y"),
			"coords": coord(Point, Coords),
		},
	}
}
