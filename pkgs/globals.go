package pkgs

import (
	"math"
	"math/big"

	"github.com/zephyrtronium/mathexpr"
)

// constant is a real constant computed at the context's precision.
type constant struct {
	f    func(prec uint) *big.Float
	glsl float64
}

var constants = map[string]constant{
	"pi":  {pi, math.Pi},
	"π":   {pi, math.Pi},
	"tau": {tau, 2 * math.Pi},
	"τ":   {tau, 2 * math.Pi},
	"e":   {euler, math.E},
}

func tau(prec uint) *big.Float {
	p := pi(prec)
	return p.Add(p, p)
}

func (c constant) global() mathexpr.Global {
	return mathexpr.Global{
		Js: func(ctx *mathexpr.Context) (mathexpr.JsValue, error) {
			return mathexpr.JsValue{Type: Real, List: mathexpr.Scalar, Value: c.f(ctx.Prec())}, nil
		},
		Glsl: func(ctx *mathexpr.Context, g *mathexpr.GlslContext) (mathexpr.GlslValue, error) {
			return mathexpr.GlslValue{Type: Real, List: mathexpr.Scalar, Expr: glslFloat(c.glsl)}, nil
		},
	}
}

func value(ty mathexpr.TypeName, js func(prec uint) any, glsl string) mathexpr.Global {
	return mathexpr.Global{
		Js: func(ctx *mathexpr.Context) (mathexpr.JsValue, error) {
			return mathexpr.JsValue{Type: ty, List: mathexpr.Scalar, Value: js(ctx.Prec())}, nil
		},
		Glsl: func(ctx *mathexpr.Context, g *mathexpr.GlslContext) (mathexpr.GlslValue, error) {
			return mathexpr.GlslValue{Type: ty, List: mathexpr.Scalar, Expr: glsl}, nil
		},
	}
}

func globals() map[string]mathexpr.Global {
	m := make(map[string]mathexpr.Global, len(constants)+3)
	for k, c := range constants {
		m[k] = c.global()
	}
	m["i"] = value(Complex, func(prec uint) any {
		return complexVal{re: newReal(prec), im: newReal(prec).SetInt64(1)}
	}, "vec2(0.0, 1.0)")
	m["true"] = value(Bool, func(uint) any { return true }, "true")
	m["false"] = value(Bool, func(uint) any { return false }, "false")
	return m
}

// constMagic implements const name, the value of a named constant. Unlike a
// global, it cannot be shadowed by a variable.
var constMagic = mathexpr.Magic{
	Js: func(ctx *mathexpr.Context, m *mathexpr.Magicvar) (mathexpr.JsValue, error) {
		c, err := constantOf(m)
		if err != nil {
			return mathexpr.JsValue{}, err
		}
		return c.global().Js(ctx)
	},
	Glsl: func(ctx *mathexpr.Context, g *mathexpr.GlslContext, m *mathexpr.Magicvar) (mathexpr.GlslValue, error) {
		c, err := constantOf(m)
		if err != nil {
			return mathexpr.GlslValue{}, err
		}
		return c.global().Glsl(ctx, g)
	},
}

func constantOf(m *mathexpr.Magicvar) (constant, error) {
	if m.Prop == "" {
		return constant{}, &mathexpr.OperandError{Op: m.Name, Kind: mathexpr.MissingArgument}
	}
	c, ok := constants[m.Prop]
	if !ok {
		return constant{}, &mathexpr.NameError{Name: m.Name + " " + m.Prop}
	}
	return c, nil
}
