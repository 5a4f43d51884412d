package pkgs

import (
	"math"
	"math/big"

	"github.com/zephyrtronium/mathexpr"
)

// elementary returns the elementary functions of one variable, properties,
// and the point constructor.
func elementary() []mathexpr.Func {
	return []mathexpr.Func{
		dist("exp", monadic(realExp, "exp")),
		dist("ln", monadic(realLn, "log")),
		dist("log",
			monadic(realLog10, "_helper_log10"),
			binaryReal(realLogBase, func(g *mathexpr.GlslContext, x, b string) string {
				return "(log(" + x + ") / log(" + b + "))"
			}),
		),
		dist("sqrt", monadic(realSqrt, "sqrt")),
		dist("abs", monadic(realAbs, "abs"), complexAbs()),
		dist("sin", monadic(viaFloat64(math.Sin), "sin")),
		dist("cos", monadic(viaFloat64(math.Cos), "cos")),
		dist("tan", monadic(viaFloat64(math.Tan), "tan")),
		dist("asin", monadic(viaFloat64(math.Asin), "asin")),
		dist("acos", monadic(viaFloat64(math.Acos), "acos")),
		dist("atan", monadic(viaFloat64(math.Atan), "atan")),
		dist("sinh", monadic(viaFloat64(math.Sinh), "sinh")),
		dist("cosh", monadic(viaFloat64(math.Cosh), "cosh")),
		dist("tanh", monadic(viaFloat64(math.Tanh), "tanh")),
		dist("floor", monadic(realFloor, "floor")),
		dist("ceil", monadic(realCeil, "ceil")),
		dist("sign", monadic(realSign, "sign")),
		dist("conj", complexConj()),
		dist("arg", complexArg()),
		dist(".re", complexPart(false)),
		dist(".im", complexPart(true)),
		dist(".x", pointCoord(0)),
		dist(".y", pointCoord(1)),
		dist("()", pointOf()),
	}
}

// The GLSL log function is the natural logarithm.
const log10Src = `float _helper_log10(float x) {
	return log(x) * 0.4342944819032518;
}`

func realFloor(out, in *big.Float) *big.Float {
	if in.IsInf() || in.IsInt() {
		return out.Set(in)
	}
	i, _ := in.Int(nil)
	out.SetInt(i)
	if in.Sign() < 0 {
		out.Sub(out, big.NewFloat(1))
	}
	return out
}

func realCeil(out, in *big.Float) *big.Float {
	realFloor(out, new(big.Float).Neg(in))
	return out.Neg(out)
}

func realSign(out, in *big.Float) *big.Float {
	return out.SetInt64(int64(in.Sign()))
}

// glslHelpers holds the sources of helpers used as monadic GLSL functions.
var glslHelpers = map[string]string{
	"_helper_log10": log10Src,
}
