package pkgs

import (
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/zephyrtronium/bigfloat"

	"github.com/zephyrtronium/mathexpr"
)

// Real numbers are *big.Float values. A nil *big.Float is NaN, which
// big.Float cannot represent.
var realType = &mathexpr.TypeInfo{
	Name:    Real,
	Glsl:    "float",
	Garbage: mathexpr.Garbage{Js: (*big.Float)(nil), Glsl: "(0.0 / 0.0)"},
	Coerce: map[mathexpr.TypeName]mathexpr.Coercion{
		Complex: {
			Js: func(v any) any {
				x := v.(*big.Float)
				return complexVal{re: x, im: new(big.Float).SetPrec(precOf(x))}
			},
			Glsl: func(expr string) string { return "vec2(" + expr + ", 0.0)" },
		},
	},
	Display: func(v any) string { return formatReal(v.(*big.Float)) },
	Int: func(v any) (int64, bool) {
		x := v.(*big.Float)
		if x == nil || x.IsInf() || !x.IsInt() {
			return 0, false
		}
		k, acc := x.Int64()
		return k, acc == big.Exact
	},
}

// precOf returns the precision of x, or 64 for NaN.
func precOf(x *big.Float) uint {
	if x == nil || x.Prec() == 0 {
		return 64
	}
	return x.Prec()
}

func formatReal(x *big.Float) string {
	if x == nil {
		return "NaN"
	}
	if x.IsInf() {
		if x.Signbit() {
			return "-∞"
		}
		return "∞"
	}
	return x.Text('g', -1)
}

func newReal(prec uint) *big.Float {
	return new(big.Float).SetPrec(prec)
}

// guard calls f, converting a big.ErrNaN panic into a NaN result.
func guard(f func() *big.Float) (r *big.Float) {
	defer func() {
		e := recover()
		if e == nil {
			return
		}
		err, ok := e.(error)
		if ok && errors.As(err, new(big.ErrNaN)) {
			r = nil
			return
		}
		panic(e)
	}()
	return f()
}

// parseReal parses real literal text at a precision.
func parseReal(s string, prec uint) (*big.Float, error) {
	neg := strings.HasPrefix(s, "-")
	switch strings.TrimLeft(s, "+-") {
	case "∞", "inf", "Inf":
		return newReal(prec).SetInf(neg), nil
	}
	r, _, err := newReal(prec).Parse(s, 10)
	switch {
	case err == nil:
		return r, nil
	case err.Error() == "exponent overflow",
		strings.HasSuffix(err.Error(), ": value out of range"):
		// There isn't realistically any better way to detect this error.
		return newReal(prec).SetInf(neg), nil
	}
	return nil, &mathexpr.SyntaxError{Msg: "invalid number " + strconv.Quote(s)}
}

// glslFloat formats a float64 as a GLSL float literal.
func glslFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "(0.0 / 0.0)"
	case math.IsInf(f, 1):
		return "(1.0 / 0.0)"
	case math.IsInf(f, -1):
		return "(-1.0 / 0.0)"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

var realLiteral = &mathexpr.Literal{
	Type: Real,
	Js: func(text string, prec uint) (mathexpr.JsVal, error) {
		x, err := parseReal(text, prec)
		if err != nil {
			return mathexpr.JsVal{}, err
		}
		return mathexpr.JsVal{Type: Real, Value: x}, nil
	},
	Glsl: func(text string) (mathexpr.GlslVal, error) {
		x, err := parseReal(text, 64)
		if err != nil {
			return mathexpr.GlslVal{}, err
		}
		f, _ := x.Float64()
		return mathexpr.GlslVal{Type: Real, Expr: glslFloat(f)}, nil
	},
}

// reals extracts real arguments.
func reals(args []mathexpr.JsVal) []*big.Float {
	r := make([]*big.Float, len(args))
	for i, a := range args {
		r[i] = a.Value.(*big.Float)
	}
	return r
}

// binaryReal wraps a function of two reals into an overload. NaN arguments
// produce NaN without calling f.
func binaryReal(js func(prec uint, x, y *big.Float) *big.Float, glsl func(g *mathexpr.GlslContext, x, y string) string) mathexpr.Overload {
	o := mathexpr.Overload{
		Params: []mathexpr.TypeName{Real, Real},
		Result: Real,
		Js: func(ctx *mathexpr.Context, args []mathexpr.JsVal) (any, error) {
			v := reals(args)
			if v[0] == nil || v[1] == nil {
				return (*big.Float)(nil), nil
			}
			return guard(func() *big.Float { return js(ctx.Prec(), v[0], v[1]) }), nil
		},
	}
	if glsl != nil {
		o.Glsl = func(g *mathexpr.GlslContext, args []mathexpr.GlslVal) (string, error) {
			return glsl(g, args[0].Expr, args[1].Expr), nil
		}
	}
	return o
}

// monadic wraps a function of one real into an overload, in the manner of
// big.Float methods: f must set out to its result. If f is called on an
// argument outside its domain, it should panic with big.ErrNaN.
func monadic(f func(out, in *big.Float) *big.Float, glsl string) mathexpr.Overload {
	return mathexpr.Overload{
		Params: []mathexpr.TypeName{Real},
		Result: Real,
		Js: func(ctx *mathexpr.Context, args []mathexpr.JsVal) (any, error) {
			x := args[0].Value.(*big.Float)
			if x == nil {
				return (*big.Float)(nil), nil
			}
			return guard(func() *big.Float { return f(newReal(ctx.Prec()), x) }), nil
		},
		Glsl: func(g *mathexpr.GlslContext, args []mathexpr.GlslVal) (string, error) {
			if src, ok := glslHelpers[glsl]; ok {
				g.Helper(glsl, src)
			}
			return glsl + "(" + args[0].Expr + ")", nil
		},
	}
}

// viaFloat64 adapts a float64 function to the monadic form. The result has
// float64 accuracy.
func viaFloat64(f func(float64) float64) func(out, in *big.Float) *big.Float {
	return func(out, in *big.Float) *big.Float {
		x, _ := in.Float64()
		y := f(x)
		if math.IsNaN(y) {
			panic(big.ErrNaN{})
		}
		return out.SetFloat64(y)
	}
}

func realExp(out, in *big.Float) *big.Float {
	if in.IsInf() {
		if in.Signbit() {
			return out.SetInt64(0)
		}
		return out.SetInf(false)
	}
	return bigfloat.Exp(out, in)
}

func realLn(out, in *big.Float) *big.Float {
	switch {
	case in.Signbit() && in.Sign() != 0:
		panic(big.ErrNaN{})
	case in.Sign() == 0:
		return out.SetInf(true)
	case in.IsInf():
		return out.SetInf(false)
	}
	return bigfloat.Log(out, in)
}

func realLog10(out, in *big.Float) *big.Float {
	realLn(out, in)
	if out.IsInf() {
		return out
	}
	ten := newReal(out.Prec()).SetInt64(10)
	return out.Quo(out, bigfloat.Log(ten, ten))
}

// realLogBase computes the logarithm of x in base b.
func realLogBase(prec uint, x, b *big.Float) *big.Float {
	n := realLn(newReal(prec), x)
	d := realLn(newReal(prec), b)
	return newReal(prec).Quo(n, d)
}

func realSqrt(out, in *big.Float) *big.Float {
	switch {
	case in.Sign() < 0:
		panic(big.ErrNaN{})
	case in.Sign() == 0:
		return out.SetInt64(0)
	case in.IsInf():
		return out.SetInf(false)
	}
	return out.Sqrt(in)
}

func realAbs(out, in *big.Float) *big.Float {
	return out.Abs(in)
}

// realPow computes x^y. Integer powers are computed exactly by squaring.
// Negative bases with other exponents are NaN.
func realPow(prec uint, x, y *big.Float) *big.Float {
	z := newReal(prec)
	if y.Sign() == 0 {
		return z.SetInt64(1)
	}
	if y.IsInt() && !y.IsInf() && !x.IsInf() {
		if k, acc := y.Int64(); acc == big.Exact && k > -1<<31 && k < 1<<31 {
			return powInt(prec, x, k)
		}
	}
	switch {
	case x.Sign() < 0:
		panic(big.ErrNaN{})
	case x.Sign() == 0:
		if y.Sign() > 0 {
			return z.SetInt64(0)
		}
		return z.SetInf(false)
	case x.IsInf() || y.IsInf():
		xf, _ := x.Float64()
		yf, _ := y.Float64()
		return z.SetFloat64(math.Pow(xf, yf))
	}
	return bigfloat.Pow(z, x, y)
}

func powInt(prec uint, x *big.Float, k int64) *big.Float {
	neg := k < 0
	if neg {
		k = -k
	}
	r := newReal(prec).SetInt64(1)
	b := newReal(prec).Set(x)
	for k > 0 {
		if k&1 != 0 {
			r.Mul(r, b)
		}
		b.Mul(b, b)
		k >>= 1
	}
	if neg {
		if r.Sign() == 0 {
			return r.SetInf(false)
		}
		r.Quo(newReal(prec).SetInt64(1), r)
	}
	return r
}

// factorial computes the multifactorial x(x-k)(x-2k)... of a non-negative
// integer. Other arguments are NaN.
func factorial(prec uint, x, k *big.Float) *big.Float {
	if x.Sign() < 0 || !x.IsInt() || x.IsInf() || k.Sign() <= 0 || !k.IsInt() || k.IsInf() {
		panic(big.ErrNaN{})
	}
	r := newReal(prec).SetInt64(1)
	for n := newReal(prec).Set(x); n.Sign() > 0; n.Sub(n, k) {
		r.Mul(r, n)
		if r.IsInf() {
			break
		}
	}
	return r
}

// pi computes π at a precision.
func pi(prec uint) *big.Float {
	return bigfloat.Pi(newReal(prec))
}

// euler computes e at a precision.
func euler(prec uint) *big.Float {
	one := newReal(prec).SetInt64(1)
	return bigfloat.Exp(newReal(prec), one)
}

// cmpReal compares reals, reporting false if either is NaN.
func cmpReal(x, y *big.Float, ok func(int) bool) bool {
	if x == nil || y == nil {
		return false
	}
	return ok(x.Cmp(y))
}
