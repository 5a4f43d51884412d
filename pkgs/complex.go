package pkgs

import (
	"math"
	"math/big"
	"math/cmplx"

	"github.com/zephyrtronium/mathexpr"
)

// complexVal is a complex number. It is NaN if either part is nil.
type complexVal struct {
	re, im *big.Float
}

func (z complexVal) nan() bool {
	return z.re == nil || z.im == nil
}

func (z complexVal) complex128() complex128 {
	re, _ := z.re.Float64()
	im, _ := z.im.Float64()
	return complex(re, im)
}

func fromComplex128(prec uint, c complex128) complexVal {
	re, im := real(c), imag(c)
	if math.IsNaN(re) || math.IsNaN(im) {
		return complexVal{}
	}
	return complexVal{re: newReal(prec).SetFloat64(re), im: newReal(prec).SetFloat64(im)}
}

func formatComplex(z complexVal) string {
	if z.nan() {
		return "NaN"
	}
	if z.im.Signbit() {
		return formatReal(z.re) + "-" + formatReal(new(big.Float).Neg(z.im)) + "i"
	}
	return formatReal(z.re) + "+" + formatReal(z.im) + "i"
}

var complexType = &mathexpr.TypeInfo{
	Name:    Complex,
	Glsl:    "vec2",
	Garbage: mathexpr.Garbage{Js: complexVal{}, Glsl: "vec2(0.0 / 0.0)"},
	Display: func(v any) string { return formatComplex(v.(complexVal)) },
}

// complexBinary wraps an operation on two complex numbers into an overload.
// The GLSL form is a call to helper, declared with src, or else the binary
// operator op.
func complexBinary(js func(prec uint, x, y complexVal) complexVal, op, helper, src string) mathexpr.Overload {
	o := mathexpr.Overload{
		Params: []mathexpr.TypeName{Complex, Complex},
		Result: Complex,
		Js: func(ctx *mathexpr.Context, args []mathexpr.JsVal) (any, error) {
			x, y := args[0].Value.(complexVal), args[1].Value.(complexVal)
			if x.nan() || y.nan() {
				return complexVal{}, nil
			}
			return guardComplex(func() complexVal { return js(ctx.Prec(), x, y) }), nil
		},
	}
	if helper != "" {
		o.Glsl = func(g *mathexpr.GlslContext, args []mathexpr.GlslVal) (string, error) {
			g.Helper(helper, src)
			return helper + "(" + args[0].Expr + ", " + args[1].Expr + ")", nil
		}
	} else {
		o.Glsl = func(g *mathexpr.GlslContext, args []mathexpr.GlslVal) (string, error) {
			return "(" + args[0].Expr + " " + op + " " + args[1].Expr + ")", nil
		}
	}
	return o
}

// guardComplex is guard for complex results.
func guardComplex(f func() complexVal) (r complexVal) {
	ok := guard(func() *big.Float {
		r = f()
		return new(big.Float)
	})
	if ok == nil {
		return complexVal{}
	}
	return r
}

func complexAdd(prec uint, x, y complexVal) complexVal {
	return complexVal{
		re: newReal(prec).Add(x.re, y.re),
		im: newReal(prec).Add(x.im, y.im),
	}
}

func complexSub(prec uint, x, y complexVal) complexVal {
	return complexVal{
		re: newReal(prec).Sub(x.re, y.re),
		im: newReal(prec).Sub(x.im, y.im),
	}
}

func complexMul(prec uint, x, y complexVal) complexVal {
	ac := newReal(prec).Mul(x.re, y.re)
	bd := newReal(prec).Mul(x.im, y.im)
	ad := newReal(prec).Mul(x.re, y.im)
	bc := newReal(prec).Mul(x.im, y.re)
	return complexVal{re: ac.Sub(ac, bd), im: ad.Add(ad, bc)}
}

func complexQuo(prec uint, x, y complexVal) complexVal {
	d := newReal(prec).Mul(y.re, y.re)
	d.Add(d, newReal(prec).Mul(y.im, y.im))
	conj := complexVal{re: y.re, im: newReal(prec).Neg(y.im)}
	n := complexMul(prec, x, conj)
	return complexVal{re: n.re.Quo(n.re, d), im: n.im.Quo(n.im, d)}
}

// complexPow has float64 accuracy.
func complexPow(prec uint, x, y complexVal) complexVal {
	if y.re.Sign() == 0 && y.im.Sign() == 0 {
		return complexVal{re: newReal(prec).SetInt64(1), im: newReal(prec)}
	}
	r := fromComplex128(prec, cmplx.Pow(x.complex128(), y.complex128()))
	if r.nan() {
		panic(big.ErrNaN{})
	}
	return r
}

const (
	cmulSrc = `vec2 _helper_cmul(vec2 a, vec2 b) {
	return vec2(a.x * b.x - a.y * b.y, a.x * b.y + a.y * b.x);
}`
	cdivSrc = `vec2 _helper_cdiv(vec2 a, vec2 b) {
	return vec2(a.x * b.x + a.y * b.y, a.y * b.x - a.x * b.y) / dot(b, b);
}`
	cpowSrc = `vec2 _helper_cpow(vec2 a, vec2 b) {
	if (b.x == 0.0 && b.y == 0.0) return vec2(1.0, 0.0);
	if (a.x == 0.0 && a.y == 0.0) return vec2(0.0, 0.0);
	float lr = log(length(a));
	float t = atan(a.y, a.x);
	float m = exp(b.x * lr - b.y * t);
	float p = b.y * lr + b.x * t;
	return vec2(m * cos(p), m * sin(p));
}`
)

func complexNeg() mathexpr.Overload {
	return mathexpr.Overload{
		Params: []mathexpr.TypeName{Complex},
		Result: Complex,
		Js: func(ctx *mathexpr.Context, args []mathexpr.JsVal) (any, error) {
			z := args[0].Value.(complexVal)
			if z.nan() {
				return complexVal{}, nil
			}
			return complexVal{re: newReal(ctx.Prec()).Neg(z.re), im: newReal(ctx.Prec()).Neg(z.im)}, nil
		},
		Glsl: func(g *mathexpr.GlslContext, args []mathexpr.GlslVal) (string, error) {
			return "(-" + args[0].Expr + ")", nil
		},
	}
}

// complexPart extracts the real or imaginary part.
func complexPart(im bool) mathexpr.Overload {
	swz := ".x"
	if im {
		swz = ".y"
	}
	return mathexpr.Overload{
		Params: []mathexpr.TypeName{Complex},
		Result: Real,
		Js: func(ctx *mathexpr.Context, args []mathexpr.JsVal) (any, error) {
			z := args[0].Value.(complexVal)
			if z.nan() {
				return (*big.Float)(nil), nil
			}
			if im {
				return z.im, nil
			}
			return z.re, nil
		},
		Glsl: func(g *mathexpr.GlslContext, args []mathexpr.GlslVal) (string, error) {
			return args[0].Expr + swz, nil
		},
	}
}

func complexAbs() mathexpr.Overload {
	return mathexpr.Overload{
		Params: []mathexpr.TypeName{Complex},
		Result: Real,
		Js: func(ctx *mathexpr.Context, args []mathexpr.JsVal) (any, error) {
			z := args[0].Value.(complexVal)
			if z.nan() {
				return (*big.Float)(nil), nil
			}
			return guard(func() *big.Float {
				prec := ctx.Prec()
				s := newReal(prec).Mul(z.re, z.re)
				s.Add(s, newReal(prec).Mul(z.im, z.im))
				return realSqrt(newReal(prec), s)
			}), nil
		},
		Glsl: func(g *mathexpr.GlslContext, args []mathexpr.GlslVal) (string, error) {
			return "length(" + args[0].Expr + ")", nil
		},
	}
}

func complexConj() mathexpr.Overload {
	return mathexpr.Overload{
		Params: []mathexpr.TypeName{Complex},
		Result: Complex,
		Js: func(ctx *mathexpr.Context, args []mathexpr.JsVal) (any, error) {
			z := args[0].Value.(complexVal)
			if z.nan() {
				return complexVal{}, nil
			}
			return complexVal{re: z.re, im: newReal(ctx.Prec()).Neg(z.im)}, nil
		},
		Glsl: func(g *mathexpr.GlslContext, args []mathexpr.GlslVal) (string, error) {
			return "vec2(" + args[0].Expr + ".x, -" + args[0].Expr + ".y)", nil
		},
	}
}

func complexArg() mathexpr.Overload {
	return mathexpr.Overload{
		Params: []mathexpr.TypeName{Complex},
		Result: Real,
		Js: func(ctx *mathexpr.Context, args []mathexpr.JsVal) (any, error) {
			z := args[0].Value.(complexVal)
			if z.nan() {
				return (*big.Float)(nil), nil
			}
			return newReal(ctx.Prec()).SetFloat64(cmplx.Phase(z.complex128())), nil
		},
		Glsl: func(g *mathexpr.GlslContext, args []mathexpr.GlslVal) (string, error) {
			return "atan(" + args[0].Expr + ".y, " + args[0].Expr + ".x)", nil
		},
	}
}

// complexCmp compares complex numbers for equality.
func complexCmp(eq bool) mathexpr.Overload {
	op := "=="
	if !eq {
		op = "!="
	}
	return mathexpr.Overload{
		Params: []mathexpr.TypeName{Complex, Complex},
		Result: Bool,
		Js: func(ctx *mathexpr.Context, args []mathexpr.JsVal) (any, error) {
			x, y := args[0].Value.(complexVal), args[1].Value.(complexVal)
			if x.nan() || y.nan() {
				return !eq, nil
			}
			same := x.re.Cmp(y.re) == 0 && x.im.Cmp(y.im) == 0
			return same == eq, nil
		},
		Glsl: func(g *mathexpr.GlslContext, args []mathexpr.GlslVal) (string, error) {
			return "(" + args[0].Expr + " " + op + " " + args[1].Expr + ")", nil
		},
	}
}
