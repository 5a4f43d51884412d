package pkgs

import (
	"math/big"

	"github.com/zephyrtronium/mathexpr"
)

// maxRange bounds the length of lists created by range.
const maxRange = 1e6

func sumReals(prec uint, items []mathexpr.JsVal) *big.Float {
	s := newReal(prec)
	for _, v := range items {
		x := v.Value.(*big.Float)
		if x == nil {
			return nil
		}
		s = guard(func() *big.Float { return s.Add(s, x) })
		if s == nil {
			return nil
		}
	}
	return s
}

func sumComplex(prec uint, items []mathexpr.JsVal) complexVal {
	s := complexVal{re: newReal(prec), im: newReal(prec)}
	for _, v := range items {
		z := v.Value.(complexVal)
		if z.nan() {
			return complexVal{}
		}
		s = guardComplex(func() complexVal { return complexAdd(prec, s, z) })
		if s.nan() {
			return complexVal{}
		}
	}
	return s
}

// glslFold generates a loop folding an array into an accumulator.
func glslFold(g *mathexpr.GlslContext, ty, init, arr string, n int, step func(acc, x string) string) string {
	acc := g.Cache(ty, init)
	i := g.Name()
	body := g.Fork()
	body.Push(acc + " = " + step(acc, arr+"["+i+"]") + ";")
	g.Loop(i, n, body)
	return acc
}

func total() *mathexpr.ListFunc {
	add := func(acc, x string) string { return acc + " + " + x }
	return &mathexpr.ListFunc{
		Label: "total",
		Overloads: []mathexpr.ListOverload{
			{
				Elem:   Real,
				Result: Real,
				Js: func(ctx *mathexpr.Context, items []mathexpr.JsVal) (any, error) {
					return sumReals(ctx.Prec(), items), nil
				},
				Glsl: func(g *mathexpr.GlslContext, arr string, n int) (string, error) {
					return glslFold(g, "float", "0.0", arr, n, add), nil
				},
			},
			{
				Elem:   Complex,
				Result: Complex,
				Js: func(ctx *mathexpr.Context, items []mathexpr.JsVal) (any, error) {
					return sumComplex(ctx.Prec(), items), nil
				},
				Glsl: func(g *mathexpr.GlslContext, arr string, n int) (string, error) {
					return glslFold(g, "vec2", "vec2(0.0)", arr, n, add), nil
				},
			},
		},
	}
}

func mean() *mathexpr.ListFunc {
	add := func(acc, x string) string { return acc + " + " + x }
	return &mathexpr.ListFunc{
		Label: "mean",
		Overloads: []mathexpr.ListOverload{
			{
				Elem:   Real,
				Result: Real,
				Js: func(ctx *mathexpr.Context, items []mathexpr.JsVal) (any, error) {
					s := sumReals(ctx.Prec(), items)
					if s == nil {
						return s, nil
					}
					return guard(func() *big.Float {
						return s.Quo(s, newReal(ctx.Prec()).SetInt64(int64(len(items))))
					}), nil
				},
				Glsl: func(g *mathexpr.GlslContext, arr string, n int) (string, error) {
					s := glslFold(g, "float", "0.0", arr, n, add)
					return "(" + s + " / " + glslFloat(float64(n)) + ")", nil
				},
			},
			{
				Elem:   Complex,
				Result: Complex,
				Js: func(ctx *mathexpr.Context, items []mathexpr.JsVal) (any, error) {
					s := sumComplex(ctx.Prec(), items)
					if s.nan() {
						return s, nil
					}
					k := newReal(ctx.Prec()).SetInt64(int64(len(items)))
					return complexVal{re: s.re.Quo(s.re, k), im: s.im.Quo(s.im, k)}, nil
				},
				Glsl: func(g *mathexpr.GlslContext, arr string, n int) (string, error) {
					s := glslFold(g, "vec2", "vec2(0.0)", arr, n, add)
					return "(" + s + " / " + glslFloat(float64(n)) + ")", nil
				},
			},
		},
	}
}

// extremum returns min or max. Any NaN element makes the result NaN.
func extremum(name string, want int) *mathexpr.ListFunc {
	return &mathexpr.ListFunc{
		Label: name,
		Overloads: []mathexpr.ListOverload{
			{
				Elem:   Real,
				Result: Real,
				Js: func(ctx *mathexpr.Context, items []mathexpr.JsVal) (any, error) {
					var r *big.Float
					for i, v := range items {
						x := v.Value.(*big.Float)
						if x == nil {
							return x, nil
						}
						if i == 0 || x.Cmp(r) == want {
							r = x
						}
					}
					return r, nil
				},
				Glsl: func(g *mathexpr.GlslContext, arr string, n int) (string, error) {
					// GLSL min and max are undefined for NaN, so NaN is carried
					// through the sum of the operands instead.
					step := func(acc, x string) string {
						return "((isnan(" + acc + ") || isnan(" + x + ")) ? " + acc + " + " + x + " : " + name + "(" + acc + ", " + x + "))"
					}
					return glslFold(g, "float", arr+"[0]", arr, n, step), nil
				},
			},
		},
	}
}

// indexFunc implements l[i]. Real indices are 1-based, and indices out of
// range or not integers give garbage. A list of indices selects a list. A
// boolean index filters the list, which produces a list of unknown length.
type indexFunc struct{}

func (indexFunc) Name() string { return "[]" }

func (indexFunc) Js(ctx *mathexpr.Context, args []mathexpr.JsValue) (mathexpr.JsValue, error) {
	if len(args) != 2 {
		return mathexpr.JsValue{}, &mathexpr.ArityError{Func: "[]", Got: len(args)}
	}
	reg := ctx.Registry()
	l, idx := args[0], args[1]
	if idx.Type == Bool {
		var out []any
		n := l.Len()
		if idx.List != mathexpr.Scalar && idx.Len() < n {
			n = idx.Len()
		}
		for i := 0; i < n; i++ {
			k := 0
			if idx.List != mathexpr.Scalar {
				k = i
			}
			if idx.At(k).Value.(bool) {
				out = append(out, l.At(i).Value)
			}
		}
		if out == nil {
			out = []any{}
		}
		return mathexpr.JsList(l.Type, out), nil
	}
	iv, err := reg.CoerceJs(idx, mathexpr.Type{Type: Real, List: idx.List})
	if err != nil {
		return mathexpr.JsValue{}, err
	}
	garbage := reg.Garbage(mathexpr.Type{Type: l.Type, List: mathexpr.Scalar}).Value
	pick := func(x any) any {
		k, ok := realType.Int(x)
		if !ok || k < 1 || k > int64(l.Len()) {
			return garbage
		}
		return l.At(int(k - 1)).Value
	}
	if iv.List == mathexpr.Scalar {
		return mathexpr.JsValue{Type: l.Type, List: mathexpr.Scalar, Value: pick(iv.Value)}, nil
	}
	out := make([]any, iv.List)
	for i, x := range iv.Value.([]any) {
		out[i] = pick(x)
	}
	return mathexpr.JsList(l.Type, out), nil
}

func (indexFunc) Glsl(ctx *mathexpr.Context, g *mathexpr.GlslContext, args []mathexpr.GlslValue) (mathexpr.GlslValue, error) {
	if len(args) != 2 {
		return mathexpr.GlslValue{}, &mathexpr.ArityError{Func: "[]", Got: len(args)}
	}
	reg := ctx.Registry()
	l, idx := args[0], args[1]
	if idx.Type == Bool {
		if _, err := g.DeclareList("", mathexpr.DynamicList); err != nil {
			return mathexpr.GlslValue{}, err
		}
		return mathexpr.GlslValue{Type: l.Type, List: mathexpr.DynamicList}, nil
	}
	if !reg.CanCoerce(idx.Type, Real) {
		return mathexpr.GlslValue{}, &mathexpr.TypeError{Func: "[]", Types: []mathexpr.TypeName{l.Type, idx.Type}}
	}
	if g.Probing() {
		return mathexpr.GlslValue{Type: l.Type, List: idx.List}, nil
	}
	if l.List == mathexpr.DynamicList {
		return mathexpr.GlslValue{}, &mathexpr.BackendError{Backend: "glsl", What: "a list of unknown length"}
	}
	garbage, err := reg.GlslGarbage(l.Type)
	if err != nil {
		return mathexpr.GlslValue{}, err
	}
	// elem gives the element at the index stored in the float variable k.
	elem := func(k string) string {
		switch l.List {
		case mathexpr.Scalar:
			return "(" + k + " == 1.0 ? " + l.Expr + " : " + garbage + ")"
		case 0:
			return garbage
		}
		n := glslFloat(float64(l.List))
		return "(" + k + " >= 1.0 && " + k + " <= " + n + " && floor(" + k + ") == " + k +
			" ? " + l.Expr + "[int(" + k + ") - 1] : " + garbage + ")"
	}
	if idx.List == mathexpr.Scalar {
		i, err := reg.CoerceGlslVal(idx.At(""), Real)
		if err != nil {
			return mathexpr.GlslValue{}, err
		}
		k := g.Cache("float", i.Expr)
		return mathexpr.GlslValue{Type: l.Type, List: mathexpr.Scalar, Expr: elem(k)}, nil
	}
	if idx.List == 0 {
		return mathexpr.GlslValue{Type: l.Type, List: 0}, nil
	}
	ty, err := reg.GlslType(l.Type)
	if err != nil {
		return mathexpr.GlslValue{}, err
	}
	arr, err := g.DeclareList(ty, idx.List)
	if err != nil {
		return mathexpr.GlslValue{}, err
	}
	j := g.Name()
	body := g.Fork()
	i, err := reg.CoerceGlslVal(idx.At(j), Real)
	if err != nil {
		return mathexpr.GlslValue{}, err
	}
	k := body.Cache("float", i.Expr)
	body.Push(arr + "[" + j + "] = " + elem(k) + ";")
	g.Loop(j, idx.List, body)
	return mathexpr.GlslValue{Type: l.Type, List: idx.List, Expr: arr}, nil
}

// rangeFunc implements range(a, b), the list a, a+1, ... up to b. Its length
// depends on its arguments' values, so it is unavailable in shaders.
type rangeFunc struct{}

func (rangeFunc) Name() string { return "range" }

func (rangeFunc) Js(ctx *mathexpr.Context, args []mathexpr.JsValue) (mathexpr.JsValue, error) {
	if len(args) != 2 {
		return mathexpr.JsValue{}, &mathexpr.ArityError{Func: "range", Got: len(args)}
	}
	var b [2]*big.Float
	for i, a := range args {
		v, err := ctx.Registry().CoerceJs(a, mathexpr.Type{Type: Real, List: mathexpr.Scalar})
		if err != nil {
			return mathexpr.JsValue{}, err
		}
		b[i] = v.Value.(*big.Float)
		if b[i] == nil || b[i].IsInf() {
			return mathexpr.JsValue{}, &mathexpr.DomainError{X: ctx.Format(a), Arg: i + 1, Func: "range"}
		}
	}
	span := new(big.Float).Sub(b[1], b[0])
	if span.Cmp(big.NewFloat(maxRange)) >= 0 {
		return mathexpr.JsValue{}, &mathexpr.DomainError{X: ctx.Format(args[1]), Arg: 2, Func: "range"}
	}
	out := []any{}
	one := big.NewFloat(1)
	for x := newReal(ctx.Prec()).Set(b[0]); x.Cmp(b[1]) <= 0; x = newReal(ctx.Prec()).Add(x, one) {
		out = append(out, x)
	}
	return mathexpr.JsList(Real, out), nil
}

func (rangeFunc) Glsl(ctx *mathexpr.Context, g *mathexpr.GlslContext, args []mathexpr.GlslValue) (mathexpr.GlslValue, error) {
	if len(args) != 2 {
		return mathexpr.GlslValue{}, &mathexpr.ArityError{Func: "range", Got: len(args)}
	}
	for _, a := range args {
		if a.List != mathexpr.Scalar || !ctx.Registry().CanCoerce(a.Type, Real) {
			return mathexpr.GlslValue{}, &mathexpr.TypeError{Func: "range", Types: []mathexpr.TypeName{args[0].Type, args[1].Type}}
		}
	}
	if _, err := g.DeclareList("float", mathexpr.DynamicList); err != nil {
		return mathexpr.GlslValue{}, err
	}
	return mathexpr.GlslValue{Type: Real, List: mathexpr.DynamicList}, nil
}

// countMagic implements count(list) and count name, the length of a list.
var countMagic = mathexpr.Magic{
	Js: func(ctx *mathexpr.Context, m *mathexpr.Magicvar) (mathexpr.JsValue, error) {
		n, err := magicOperand(m)
		if err != nil {
			return mathexpr.JsValue{}, err
		}
		v, err := ctx.Js(n)
		if err != nil {
			return mathexpr.JsValue{}, err
		}
		return mathexpr.JsValue{Type: Real, List: mathexpr.Scalar, Value: newReal(ctx.Prec()).SetInt64(int64(v.Len()))}, nil
	},
	Glsl: func(ctx *mathexpr.Context, g *mathexpr.GlslContext, m *mathexpr.Magicvar) (mathexpr.GlslValue, error) {
		n, err := magicOperand(m)
		if err != nil {
			return mathexpr.GlslValue{}, err
		}
		// Only the length is needed, so the operand's code is discarded.
		v, err := ctx.Glsl(n, g.Fork())
		if err != nil {
			return mathexpr.GlslValue{}, err
		}
		if g.Probing() {
			return mathexpr.GlslValue{Type: Real, List: mathexpr.Scalar}, nil
		}
		switch v.List {
		case mathexpr.Scalar:
			return mathexpr.GlslValue{Type: Real, List: mathexpr.Scalar, Expr: "1.0"}, nil
		case mathexpr.DynamicList:
			return mathexpr.GlslValue{}, &mathexpr.BackendError{Backend: "glsl", What: "a list of unknown length"}
		}
		return mathexpr.GlslValue{Type: Real, List: mathexpr.Scalar, Expr: glslFloat(float64(v.List))}, nil
	},
}

// magicOperand returns the node a magic word applies to.
func magicOperand(m *mathexpr.Magicvar) (mathexpr.Node, error) {
	switch {
	case m.Contents != nil:
		return m.Contents, nil
	case m.Prop != "":
		return &mathexpr.Var{Name: m.Prop}, nil
	}
	return nil, &mathexpr.OperandError{Op: m.Name, Kind: mathexpr.MissingArgument}
}

func lists() []mathexpr.Func {
	return []mathexpr.Func{
		total(),
		mean(),
		extremum("min", -1),
		extremum("max", 1),
		indexFunc{},
		rangeFunc{},
	}
}
