package pkgs

import (
	"math/big"

	"github.com/zephyrtronium/mathexpr"
)

// Booleans are Go bools. They convert to the reals 0 and 1.
var boolType = &mathexpr.TypeInfo{
	Name:    Bool,
	Glsl:    "bool",
	Garbage: mathexpr.Garbage{Js: false, Glsl: "false"},
	Coerce: map[mathexpr.TypeName]mathexpr.Coercion{
		Real: {
			Js: func(v any) any {
				if v.(bool) {
					return new(big.Float).SetInt64(1)
				}
				return new(big.Float).SetInt64(0)
			},
			Glsl: func(expr string) string { return "float(" + expr + ")" },
		},
	},
	Display: func(v any) string {
		if v.(bool) {
			return "true"
		}
		return "false"
	},
	Truth: func(v any) bool { return v.(bool) },
}

// pointVal is a point in the plane. Either coordinate may be NaN.
type pointVal [2]*big.Float

var pointType = &mathexpr.TypeInfo{
	Name:    Point,
	Glsl:    "vec2",
	Garbage: mathexpr.Garbage{Js: pointVal{}, Glsl: "vec2(0.0 / 0.0)"},
	Display: func(v any) string {
		p := v.(pointVal)
		return "(" + formatReal(p[0]) + ", " + formatReal(p[1]) + ")"
	},
}

// pointOf constructs points from parenthesized pairs.
func pointOf() mathexpr.Overload {
	return mathexpr.Overload{
		Params: []mathexpr.TypeName{Real, Real},
		Result: Point,
		Js: func(ctx *mathexpr.Context, args []mathexpr.JsVal) (any, error) {
			v := reals(args)
			return pointVal{v[0], v[1]}, nil
		},
		Glsl: func(g *mathexpr.GlslContext, args []mathexpr.GlslVal) (string, error) {
			return "vec2(" + args[0].Expr + ", " + args[1].Expr + ")", nil
		},
	}
}

// pointCoord extracts a coordinate.
func pointCoord(k int) mathexpr.Overload {
	swz := ".x"
	if k == 1 {
		swz = ".y"
	}
	return mathexpr.Overload{
		Params: []mathexpr.TypeName{Point},
		Result: Real,
		Js: func(ctx *mathexpr.Context, args []mathexpr.JsVal) (any, error) {
			return args[0].Value.(pointVal)[k], nil
		},
		Glsl: func(g *mathexpr.GlslContext, args []mathexpr.GlslVal) (string, error) {
			return args[0].Expr + swz, nil
		},
	}
}

// pointwise applies a real operation to corresponding coordinates of its
// arguments. A real argument is used for both coordinates.
func pointwise(f func(prec uint, x, y *big.Float) *big.Float, op string, params ...mathexpr.TypeName) mathexpr.Overload {
	return mathexpr.Overload{
		Params: params,
		Result: Point,
		Js: func(ctx *mathexpr.Context, args []mathexpr.JsVal) (any, error) {
			var r pointVal
			for k := range r {
				x, y := coord(args[0], k), coord(args[1], k)
				if x == nil || y == nil {
					continue
				}
				r[k] = guard(func() *big.Float { return f(ctx.Prec(), x, y) })
			}
			return r, nil
		},
		Glsl: func(g *mathexpr.GlslContext, args []mathexpr.GlslVal) (string, error) {
			return "(" + args[0].Expr + " " + op + " " + args[1].Expr + ")", nil
		},
	}
}

// coord returns the k'th coordinate of a point, or a real itself.
func coord(v mathexpr.JsVal, k int) *big.Float {
	if p, ok := v.Value.(pointVal); ok {
		return p[k]
	}
	return v.Value.(*big.Float)
}

func pointNeg() mathexpr.Overload {
	return mathexpr.Overload{
		Params: []mathexpr.TypeName{Point},
		Result: Point,
		Js: func(ctx *mathexpr.Context, args []mathexpr.JsVal) (any, error) {
			var r pointVal
			for k, x := range args[0].Value.(pointVal) {
				if x != nil {
					r[k] = newReal(ctx.Prec()).Neg(x)
				}
			}
			return r, nil
		},
		Glsl: func(g *mathexpr.GlslContext, args []mathexpr.GlslVal) (string, error) {
			return "(-" + args[0].Expr + ")", nil
		},
	}
}

func pointCmp(eq bool) mathexpr.Overload {
	op := "=="
	if !eq {
		op = "!="
	}
	return mathexpr.Overload{
		Params: []mathexpr.TypeName{Point, Point},
		Result: Bool,
		Js: func(ctx *mathexpr.Context, args []mathexpr.JsVal) (any, error) {
			p, q := args[0].Value.(pointVal), args[1].Value.(pointVal)
			same := true
			for k := range p {
				if !cmpReal(p[k], q[k], func(c int) bool { return c == 0 }) {
					same = false
				}
			}
			return same == eq, nil
		},
		Glsl: func(g *mathexpr.GlslContext, args []mathexpr.GlslVal) (string, error) {
			return "(" + args[0].Expr + " " + op + " " + args[1].Expr + ")", nil
		},
	}
}
