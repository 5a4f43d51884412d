package pkgs

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/zephyrtronium/mathexpr"
)

func TestGlslFloat(t *testing.T) {
	cases := []struct {
		name string
		f    float64
		want string
	}{
		{"int", 1, "1.0"},
		{"zero", 0, "0.0"},
		{"neg", -3, "-3.0"},
		{"frac", 2.5, "2.5"},
		{"tenth", 0.1, "0.1"},
		{"huge", 1e21, "1e+21"},
		{"nan", math.NaN(), "(0.0 / 0.0)"},
		{"inf", math.Inf(1), "(1.0 / 0.0)"},
		{"-inf", math.Inf(-1), "(-1.0 / 0.0)"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := glslFloat(c.f); got != c.want {
				t.Errorf("want %s, got %s", c.want, got)
			}
		})
	}
}

func TestParseReal(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"int", "12", "12"},
		{"frac", "1.5", "1.5"},
		{"lead-dot", ".25", "0.25"},
		{"inf", "inf", "∞"},
		{"infinity", "∞", "∞"},
		{"neg-inf", "-∞", "-∞"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			x, err := parseReal(c.text, 64)
			if err != nil {
				t.Fatal(err)
			}
			if got := formatReal(x); got != c.want {
				t.Errorf("want %s, got %s", c.want, got)
			}
			if x.Prec() != 64 {
				t.Errorf("wrong precision %d", x.Prec())
			}
		})
	}
	if _, err := parseReal("1.2.3", 64); err == nil {
		t.Error("parsed 1.2.3")
	} else if _, ok := err.(*mathexpr.SyntaxError); !ok {
		t.Errorf("want SyntaxError, got %T", err)
	}
}

func TestFormatReal(t *testing.T) {
	cases := []struct {
		name string
		x    *big.Float
		want string
	}{
		{"nan", nil, "NaN"},
		{"inf", new(big.Float).SetInf(false), "∞"},
		{"-inf", new(big.Float).SetInf(true), "-∞"},
		{"half", big.NewFloat(0.5), "0.5"},
		{"neg", big.NewFloat(-7), "-7"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := formatReal(c.x); got != c.want {
				t.Errorf("want %s, got %s", c.want, got)
			}
		})
	}
}

func TestRealPow(t *testing.T) {
	cases := []struct {
		name string
		x, y float64
		want string
	}{
		{"square", 3, 2, "9"},
		{"big", 2, 100, "1.267650600228229401496703205376e+30"},
		{"inverse", 2, -2, "0.25"},
		{"zero-exp", 0, 0, "1"},
		{"neg-base-int", -2, 3, "-8"},
		{"neg-base-even", -2, 2, "4"},
		{"zero-neg", 0, -1, "∞"},
		{"inverse-quarter", 4, -1, "0.25"},
		{"neg-base-frac", -8, 1.0 / 3, "NaN"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			x, y := big.NewFloat(c.x), big.NewFloat(c.y)
			got := guard(func() *big.Float { return realPow(128, x, y) })
			if s := formatReal(got); s != c.want {
				t.Errorf("%v^%v: want %s, got %s", c.x, c.y, c.want, s)
			}
		})
	}
}

func TestFactorial(t *testing.T) {
	cases := []struct {
		name string
		x, k float64
		want string
	}{
		{"zero", 0, 1, "1"},
		{"five", 5, 1, "120"},
		{"double", 9, 2, "945"},
		{"triple", 10, 3, "280"},
		{"neg", -1, 1, "NaN"},
		{"frac", 2.5, 1, "NaN"},
		{"zero-step", 5, 0, "NaN"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			x, k := big.NewFloat(c.x), big.NewFloat(c.k)
			got := guard(func() *big.Float { return factorial(64, x, k) })
			if s := formatReal(got); s != c.want {
				t.Errorf("want %s, got %s", c.want, s)
			}
		})
	}
}

func TestFactorialLimit(t *testing.T) {
	cases := []struct {
		name string
		src  string
		ok   bool
	}{
		{"large", "100000000!", false},
		{"multi", "100000000!_2", false},
		{"limit", "1000000!", false},
		{"under", "1000!", true},
		{"multi-under", "1000000!_2", true},
	}
	reg := Default()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v, err := mathexpr.EvalString(c.src, reg)
			if c.ok {
				if err != nil {
					t.Fatalf("evaluating %q: %v", c.src, err)
				}
				if x := v.Value.(*big.Float); x == nil || x.IsInf() {
					t.Errorf("evaluating %q gave %v", c.src, x)
				}
				return
			}
			var de *mathexpr.DomainError
			if !errors.As(err, &de) {
				t.Fatalf("evaluating %q: want DomainError, got %v", c.src, err)
			}
			if de.Func != "!" {
				t.Errorf("wrong function %q", de.Func)
			}
		})
	}
}

func TestFormatComplex(t *testing.T) {
	cases := []struct {
		name string
		z    complexVal
		want string
	}{
		{"plus", complexVal{big.NewFloat(1), big.NewFloat(2)}, "1+2i"},
		{"minus", complexVal{big.NewFloat(1), big.NewFloat(-2)}, "1-2i"},
		{"nan", complexVal{re: big.NewFloat(1)}, "NaN"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := formatComplex(c.z); got != c.want {
				t.Errorf("want %s, got %s", c.want, got)
			}
		})
	}
}

func TestDefaultCoercions(t *testing.T) {
	reg := Default()
	c, ok := reg.Coercion(Bool, Complex)
	if !ok {
		t.Fatal("no coercion from bool to complex")
	}
	if got := c.Glsl("b"); got != "vec2(float(b), 0.0)" {
		t.Errorf("wrong glsl coercion %s", got)
	}
	if got := formatComplex(c.Js(true).(complexVal)); got != "1+0i" {
		t.Errorf("wrong coercion of true: %s", got)
	}
	for _, to := range []mathexpr.TypeName{Real, Complex, Bool} {
		if reg.CanCoerce(Point, to) {
			t.Errorf("point coerces to %s", to)
		}
	}
	if reg.CanCoerce(Complex, Real) {
		t.Error("complex coerces to real")
	}
	ty, err := reg.Unify(Bool, Real, Complex)
	if err != nil {
		t.Fatal(err)
	}
	if ty != Complex {
		t.Errorf("bool, real, complex unified to %s", ty)
	}
}

func TestConstants(t *testing.T) {
	p := pi(128)
	if p.Prec() != 128 {
		t.Errorf("pi has precision %d", p.Prec())
	}
	if got := p.Text('f', 30); got != "3.141592653589793238462643383280" {
		t.Errorf("wrong pi %s", got)
	}
	e, _ := euler(64).Float64()
	if e != math.E {
		t.Errorf("wrong e %v", e)
	}
	tw, _ := tau(64).Float64()
	if tw != 2*math.Pi {
		t.Errorf("wrong tau %v", tw)
	}
}
