package pkgs

import (
	"math/big"

	"github.com/zephyrtronium/mathexpr"
)

// infix returns a GLSL form applying a binary operator.
func infix(op string) func(g *mathexpr.GlslContext, x, y string) string {
	return func(g *mathexpr.GlslContext, x, y string) string {
		return "(" + x + " " + op + " " + y + ")"
	}
}

// method adapts a big.Float method expression to a binary real operation.
func method(f func(z, x, y *big.Float) *big.Float) func(prec uint, x, y *big.Float) *big.Float {
	return func(prec uint, x, y *big.Float) *big.Float {
		return f(newReal(prec), x, y)
	}
}

const powSrc = `float _helper_pow(float a, float b) {
	if (a < 0.0 && floor(b) == b) {
		float r = pow(-a, b);
		return mod(b, 2.0) == 0.0 ? r : -r;
	}
	return pow(a, b);
}`

// helperPow calls the pow helper, which gives JS results for negative bases
// where GLSL's pow is undefined.
func helperPow(g *mathexpr.GlslContext, x, y string) string {
	g.Helper("_helper_pow", powSrc)
	return "_helper_pow(" + x + ", " + y + ")"
}

func realNeg() mathexpr.Overload {
	return monadic(func(out, in *big.Float) *big.Float { return out.Neg(in) }, "-")
}

// cmp returns an overload comparing reals. Comparisons with NaN are false,
// except ≠.
func cmp(glsl string, ok func(int) bool) mathexpr.Overload {
	return mathexpr.Overload{
		Params: []mathexpr.TypeName{Real, Real},
		Result: Bool,
		Js: func(ctx *mathexpr.Context, args []mathexpr.JsVal) (any, error) {
			v := reals(args)
			if v[0] == nil || v[1] == nil {
				return glsl == "!=", nil
			}
			return cmpReal(v[0], v[1], ok), nil
		},
		Glsl: func(g *mathexpr.GlslContext, args []mathexpr.GlslVal) (string, error) {
			return "(" + args[0].Expr + " " + glsl + " " + args[1].Expr + ")", nil
		},
	}
}

// logic returns an overload combining booleans.
func logic(glsl string, f func(a, b bool) bool) mathexpr.Overload {
	return mathexpr.Overload{
		Params: []mathexpr.TypeName{Bool, Bool},
		Result: Bool,
		Js: func(ctx *mathexpr.Context, args []mathexpr.JsVal) (any, error) {
			return f(args[0].Value.(bool), args[1].Value.(bool)), nil
		},
		Glsl: func(g *mathexpr.GlslContext, args []mathexpr.GlslVal) (string, error) {
			return "(" + args[0].Expr + " " + glsl + " " + args[1].Expr + ")", nil
		},
	}
}

// maxFactorial bounds the number of terms of a factorial.
const maxFactorial = 1e6

// factorialJs computes x!k. Arguments outside the domain give NaN, but
// factorials of more than maxFactorial terms are errors.
func factorialJs(ctx *mathexpr.Context, args []mathexpr.JsVal) (any, error) {
	v := reals(args)
	x, k := v[0], big.NewFloat(1)
	if len(v) > 1 {
		k = v[1]
	}
	if x == nil || k == nil {
		return (*big.Float)(nil), nil
	}
	if !x.IsInf() && k.Sign() > 0 && !k.IsInf() {
		n := new(big.Float).Quo(x, k)
		if n.Cmp(big.NewFloat(maxFactorial)) >= 0 {
			return nil, &mathexpr.DomainError{X: formatReal(x), Arg: 1, Func: "!"}
		}
	}
	return guard(func() *big.Float {
		return factorial(ctx.Prec(), x, k)
	}), nil
}

func factorialOverloads() []mathexpr.Overload {
	return []mathexpr.Overload{
		{Params: []mathexpr.TypeName{Real}, Result: Real, Js: factorialJs},
		{Params: []mathexpr.TypeName{Real, Real}, Result: Real, Js: factorialJs},
	}
}

func dist(name string, overloads ...mathexpr.Overload) *mathexpr.DistFunc {
	return &mathexpr.DistFunc{Label: name, Overloads: overloads}
}

// operators returns the arithmetic, comparison, and logical operators.
func operators() []mathexpr.Func {
	eq := func(c int) bool { return c == 0 }
	ne := func(c int) bool { return c != 0 }
	return []mathexpr.Func{
		dist("+",
			binaryReal(method((*big.Float).Add), infix("+")),
			complexBinary(complexAdd, "+", "", ""),
			pointwise(method((*big.Float).Add), "+", Point, Point),
		),
		dist("-",
			realNeg(),
			complexNeg(),
			pointNeg(),
			binaryReal(method((*big.Float).Sub), infix("-")),
			complexBinary(complexSub, "-", "", ""),
			pointwise(method((*big.Float).Sub), "-", Point, Point),
		),
		dist("*",
			binaryReal(method((*big.Float).Mul), infix("*")),
			complexBinary(complexMul, "", "_helper_cmul", cmulSrc),
			pointwise(method((*big.Float).Mul), "*", Real, Point),
			pointwise(method((*big.Float).Mul), "*", Point, Real),
		),
		dist("/",
			binaryReal(method((*big.Float).Quo), infix("/")),
			complexBinary(complexQuo, "", "_helper_cdiv", cdivSrc),
			pointwise(method((*big.Float).Quo), "/", Point, Real),
		),
		dist("^",
			binaryReal(realPow, helperPow),
			complexBinary(complexPow, "", "_helper_cpow", cpowSrc),
		),
		dist("!", factorialOverloads()...),
		dist("<", cmp("<", func(c int) bool { return c < 0 })),
		dist(">", cmp(">", func(c int) bool { return c > 0 })),
		dist("≤", cmp("<=", func(c int) bool { return c <= 0 })),
		dist("≥", cmp(">=", func(c int) bool { return c >= 0 })),
		dist("=", cmp("==", eq), complexCmp(true), pointCmp(true)),
		dist("≠", cmp("!=", ne), complexCmp(false), pointCmp(false)),
		dist("and", logic("&&", func(a, b bool) bool { return a && b })),
		dist("or", logic("||", func(a, b bool) bool { return a || b })),
	}
}
