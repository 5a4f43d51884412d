package mathexpr_test

import (
	"errors"
	"math"
	"math/big"
	"strings"
	"testing"

	"github.com/zephyrtronium/mathexpr"
	"github.com/zephyrtronium/mathexpr/pkgs"
)

func TestEval(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		// arithmetic
		{"num", "1", "1"},
		{"add", "4+5+6", "15"},
		{"sub", "4-5-6", "-7"},
		{"neg-literal", "-3+4", "1"},
		{"mul", "4*5*6", "120"},
		{"div", "3/4", "0.75"},
		{"div-zero", "1/0", "∞"},
		{"zero-div-zero", "0/0", "NaN"},
		{"jux", "2 3", "6"},
		{"jux-group", "2(3+4)", "14"},
		// powers
		{"pow", "2^10", "1024"},
		{"pow-chain", "2**3**2", "512"},
		{"pow-neg", "-2^2", "-4"},
		{"pow-inverse", "2^-1", "0.5"},
		{"pow-neg-base", "(-2)^3", "-8"},
		{"pow-neg-root", "(-1)^0.5", "NaN"},
		// functions
		{"sin", "sin(0)", "0"},
		{"cos", "cos 0", "1"},
		{"sqrt", "sqrt 16", "4"},
		{"sqrt-neg", "sqrt(-1)", "NaN"},
		{"floor", "floor(-1.5)", "-2"},
		{"ceil", "ceil(1.2)", "2"},
		{"abs", "abs(-3)", "3"},
		{"sign", "sign(-3)", "-1"},
		{"fn-power", "sqrt^2 9", "9"},
		// factorials
		{"factorial", "5!", "120"},
		{"multifactorial", "5!_2", "15"},
		{"factorial-neg", "(-1)!", "NaN"},
		{"factorial-frac", "1.5!", "NaN"},
		// lists
		{"list", "[1, 2, 3]", "[1, 2, 3]"},
		{"list-add", "[1,2,3]+[10,20]", "[11, 22]"},
		{"list-scalar", "[1,2] * 3", "[3, 6]"},
		{"list-empty", "[]+1", "[]"},
		{"index", "[1,2,3][2]", "2"},
		{"index-range", "[1,2,3][5]", "NaN"},
		{"index-frac", "[1,2,3][1.5]", "NaN"},
		{"index-list", "[1,2,3][[3,1]]", "[3, 1]"},
		{"index-filter", "[1,2,3,4][[1,2,3,4] > 2]", "[3, 4]"},
		{"total", "total(1, 2, 3)", "6"},
		{"total-list", "total([1, 2], 3)", "6"},
		{"total-empty", "total([])", "NaN"},
		{"total-range", "total(range(1,100))", "5050"},
		{"mean", "mean([2, 4])", "3"},
		{"min", "min(3,1,2)", "1"},
		{"max", "max(3,1,2)", "3"},
		{"range", "range(1, 4)", "[1, 2, 3, 4]"},
		{"range-empty", "range(2, 1)", "[]"},
		{"count", "count([1,2,3])", "3"},
		{"count-name", "count l with l=[4,5]", "2"},
		{"count-scalar", "count(7)", "1"},
		// bindings
		{"with", "a + 1 with a = 2", "3"},
		{"with-two", "a b with a = 2, b = 3", "6"},
		{"with-nested", "(a with a = 2) + (a with a = 3)", "5"},
		{"for", "x^2 for x=[1,2,3]", "[1, 4, 9]"},
		{"for-two", "x + y for x=[1,2], y=[10,20]", "[11, 21, 12, 22]"},
		{"for-empty", "x for x = []", "[]"},
		{"for-brackets", "[x^2 for x=[1,2,3]]", "[1, 4, 9]"},
		{"for-brackets-total", "total([x for x=[1,2,3]])", "6"},
		{"for-brackets-two", "[x + y for x=[1,2], y=[10,20]]", "[11, 21, 12, 22]"},
		// piecewise
		{"piecewise-first", "{x<0: -1, x>0: 1, 0} with x=-3", "-1"},
		{"piecewise-second", "{x<0: -1, x>0: 1, 0} with x=2", "1"},
		{"piecewise-fallback", "{x<0: -1, x>0: 1, 0} with x=0", "0"},
		{"piecewise-garbage", "{x<0: 1} with x=1", "NaN"},
		{"piecewise-bare", "{x>0} with x=1", "1"},
		{"piecewise-widen", "{x<0: 1, i} with x=1", "0+1i"},
		// big operators
		{"sum", "∑_{n=1}^{4} n", "10"},
		{"prod", "∏_{k=1}^{5} k", "120"},
		{"sum-word", "sum_{n=1}^{3} n^2", "14"},
		{"sum-empty", "∑_{n=3}^{1} n", "0"},
		{"sum-max-bound", "∑_{n=9223372036854775807}^{9223372036854775807} 1", "1"},
		{"prod-empty", "∏_{n=3}^{1} n", "1"},
		{"sum-product", "2∑_{n=1}^{3} n", "12"},
		// constants
		{"const", "const pi = pi", "true"},
		{"const-shadowed", "const e = e with e = 2", "false"},
		// complex numbers
		{"i-squared", "i*i", "-1+0i"},
		{"complex-add", "1 + 2i", "1+2i"},
		{"complex-sub", "1 - 2i", "1-2i"},
		{"complex-div", "(1 + i) / i", "1-1i"},
		{"complex-re", "(3+4i).re", "3"},
		{"complex-im", "(3+4i).im", "4"},
		{"complex-abs", "abs(3+4i)", "5"},
		{"complex-conj", "conj(3+4i)", "3-4i"},
		{"complex-total", "total(1, i)", "1+1i"},
		// points
		{"point", "(1, 2)", "(1, 2)"},
		{"point-add", "(1,2)+(3,4)", "(4, 6)"},
		{"point-y", "(1,2).y", "2"},
		{"point-scale", "2(1,2)", "(2, 4)"},
		{"point-div", "(2,4)/2", "(1, 2)"},
		{"point-eq", "(1,2) = (1,2)", "true"},
		// comparisons and booleans
		{"lt", "1 < 2", "true"},
		{"chain", "1 < 2 < 3", "true"},
		{"chain-false", "1 < 3 < 2", "false"},
		{"ne", "1 ≠ 2", "true"},
		{"nan-eq", "0/0 = 0/0", "false"},
		{"nan-ne", "0/0 ≠ 0/0", "true"},
		{"bool-real", "true + 1", "2"},
		{"bool-list", "[1 < 2, 1] + 1", "[2, 2]"},
	}
	ctx := mathexpr.NewContext(pkgs.Default())
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := mathexpr.ParseString(c.src)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			r, err := ctx.Clone().Eval(a)
			if err != nil {
				t.Fatalf("evaluating %q (%v): %v", c.src, a, err)
			}
			if got := ctx.Format(r); got != c.want {
				t.Errorf("evaluating %q: want %s, got %s", c.src, c.want, got)
			}
		})
	}
}

func TestEvalApprox(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want float64
	}{
		{"pi", "pi", math.Pi},
		{"pi-greek", "π", math.Pi},
		{"tau", "tau", 2 * math.Pi},
		{"e", "e", math.E},
		{"exp", "exp 1", math.E},
		{"ln", "ln e", 1},
		{"log", "log 1000", 3},
		{"log-base", "log_2 8", 3},
		{"log-args", "log(8, 2)", 3},
		{"sin-pi", "sin(pi/2)", 1},
		{"pow-frac", "2^0.5", math.Sqrt2},
		{"atan", "4 atan 1", math.Pi},
		{"arg", "arg(i)", math.Pi / 2},
		{"mean", "mean(1, 2)", 1.5},
	}
	ctx := mathexpr.NewContext(pkgs.Default(), mathexpr.Prec(128))
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := mathexpr.EvalString(c.src, ctx.Registry(), mathexpr.Prec(128))
			if err != nil {
				t.Fatalf("evaluating %q: %v", c.src, err)
			}
			x, ok := r.Value.(*big.Float)
			if !ok || x == nil {
				t.Fatalf("evaluating %q gave %s", c.src, ctx.Format(r))
			}
			f, _ := x.Float64()
			if math.Abs(f-c.want) > 1e-12 {
				t.Errorf("evaluating %q: want %g, got %g", c.src, c.want, f)
			}
		})
	}
}

func TestEvalPrec(t *testing.T) {
	reg := pkgs.Default()
	for _, prec := range []uint{24, 64, 256} {
		r, err := mathexpr.EvalString("1/3", reg, mathexpr.Prec(prec))
		if err != nil {
			t.Fatal(err)
		}
		if p := r.Value.(*big.Float).Prec(); p != prec {
			t.Errorf("want precision %d, got %d", prec, p)
		}
	}
}

func TestEvalVars(t *testing.T) {
	reg := pkgs.Default()
	real := func(x float64) mathexpr.JsValue {
		return mathexpr.JsValue{Type: pkgs.Real, List: mathexpr.Scalar, Value: big.NewFloat(x)}
	}
	cases := []struct {
		name string
		src  string
		vars map[string]mathexpr.JsValue
		want string
	}{
		{"one", "x", map[string]mathexpr.JsValue{"x": real(4)}, "4"},
		{"poly", "x^3/2 - x", map[string]mathexpr.JsValue{"x": real(3)}, "10.5"},
		{"two", "x y", map[string]mathexpr.JsValue{"x": real(2), "y": real(5)}, "10"},
		{"subscript", "x_1 + x_{1}", map[string]mathexpr.JsValue{"x_1": real(2)}, "4"},
		{"shadow-global", "pi", map[string]mathexpr.JsValue{"pi": real(3)}, "3"},
		{"list", "total(l)", map[string]mathexpr.JsValue{"l": mathexpr.JsList(pkgs.Real, []any{big.NewFloat(1), big.NewFloat(2)})}, "3"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctx := mathexpr.NewContext(reg, mathexpr.SetVars(c.vars))
			r, err := mathexpr.EvalString(c.src, reg, mathexpr.SetVars(c.vars))
			if err != nil {
				t.Fatalf("evaluating %q: %v", c.src, err)
			}
			if got := ctx.Format(r); got != c.want {
				t.Errorf("evaluating %q: want %s, got %s", c.src, c.want, got)
			}
		})
	}
}

func TestEvalErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		kind func(error) bool
	}{
		{"undefined", "q", errorAs[*mathexpr.NameError]},
		{"undefined-func", "foo(1)", errorAs[*mathexpr.NameError]},
		{"undefined-const", "const q", errorAs[*mathexpr.NameError]},
		{"type", "(1,2) + 1", errorAs[*mathexpr.TypeError]},
		{"type-cond", "{1: 2}", errorAs[*mathexpr.TypeError]},
		{"shader-only", "x", errorAs[*mathexpr.BackendError]},
		{"ambiguous", "2.min", errorAs[*mathexpr.AmbiguityError]},
		{"operand", "1+", errorAs[*mathexpr.OperandError]},
		{"operand-fn", "sin", errorAs[*mathexpr.OperandError]},
		{"operand-const", "const", errorAs[*mathexpr.OperandError]},
		{"domain-sum", "∑_{n=1}^{2.5} n", errorAs[*mathexpr.DomainError]},
		{"domain-sum-inf", "∑_{n=1}^{inf} n", errorAs[*mathexpr.DomainError]},
		{"domain-range", "range(1, inf)", errorAs[*mathexpr.DomainError]},
		{"domain-range-size", "range(1, 10^9)", errorAs[*mathexpr.DomainError]},
		{"domain-range-limit", "range(0, 1000000)", errorAs[*mathexpr.DomainError]},
		{"domain-sum-limit", "∑_{n=0}^{1000000} n", errorAs[*mathexpr.DomainError]},
		{"domain-sum-wide", "∑_{n=-9223372036854775807}^{9223372036854775807} 1", errorAs[*mathexpr.DomainError]},
		{"domain-prod-wide", "∏_{n=-9223372036854775807}^{9223372036854775807} n", errorAs[*mathexpr.DomainError]},
		{"commas", "1, 2", errorAs[*mathexpr.SyntaxError]},
		{"nested", "[[1]]", errorAs[*mathexpr.SyntaxError]},
		{"empty-parens", "()", errorAs[*mathexpr.SyntaxError]},
		{"bad-binding", "1 with 2", errorAs[*mathexpr.SyntaxError]},
		{"bind-number", "1 with 2 = 3", errorAs[*mathexpr.SyntaxError]},
		{"for-nested", "[x] for x = [1]", errorAs[*mathexpr.SyntaxError]},
		{"arity", "sin(1, 2)", errorAs[*mathexpr.ArityError]},
		{"arity-range", "range(1)", errorAs[*mathexpr.ArityError]},
		{"list-cond", "{[1 < 2]: 1}", errorAs[*mathexpr.ArityError]},
	}
	ctx := mathexpr.NewContext(pkgs.Default())
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := mathexpr.ParseString(c.src)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			r, err := ctx.Clone().Eval(a)
			if err == nil {
				t.Fatalf("evaluating %q gave %s", c.src, ctx.Format(r))
			}
			if !c.kind(err) {
				t.Errorf("evaluating %q: wrong error type %T (%v)", c.src, err, err)
			}
			if err.Error() == "" {
				t.Errorf("evaluating %q: empty error message", c.src)
			}
		})
	}
}

func TestNameErrorNames(t *testing.T) {
	cases := []struct {
		src  string
		name string
	}{
		{"q + 1", "q"},
		{"1 + x_2", "x_2"},
		{"const q", "const q"},
	}
	reg := pkgs.Default()
	for _, c := range cases {
		_, err := mathexpr.EvalString(c.src, reg)
		var ne *mathexpr.NameError
		if !errors.As(err, &ne) {
			t.Errorf("evaluating %q: want NameError, got %v", c.src, err)
			continue
		}
		if ne.Name != c.name {
			t.Errorf("evaluating %q: want name %q, got %q", c.src, c.name, ne.Name)
		}
		if !strings.Contains(err.Error(), c.name) {
			t.Errorf("%q doesn't mention %q", err.Error(), c.name)
		}
	}
}

func TestContextVars(t *testing.T) {
	zero := mathexpr.JsValue{Type: pkgs.Real, List: mathexpr.Scalar, Value: new(big.Float)}
	one := mathexpr.JsValue{Type: pkgs.Real, List: mathexpr.Scalar, Value: big.NewFloat(1)}
	ctx := mathexpr.NewContext(pkgs.Default(), mathexpr.SetVar("x", zero))
	if x, ok := ctx.Lookup("x"); !ok || x.Value.(*big.Float).Sign() != 0 {
		t.Errorf("x should be 0 but is %v", x.Value)
	}
	if _, ok := ctx.Lookup("y"); ok {
		t.Error("context has y")
	}
	ctx.Set("y", one).Set("x", one)
	for _, name := range []string{"x", "y"} {
		if v, ok := ctx.Lookup(name); !ok || v.Value.(*big.Float).Cmp(big.NewFloat(1)) != 0 {
			t.Errorf("%s should be 1 but is %v", name, v.Value)
		}
	}
}

func BenchmarkEval(b *testing.B) {
	real := func(x float64) mathexpr.JsValue {
		return mathexpr.JsValue{Type: pkgs.Real, List: mathexpr.Scalar, Value: big.NewFloat(x)}
	}
	vars := map[string]mathexpr.JsValue{
		"x": real(2),
		"y": real(3),
		"z": real(4),
	}
	reg := pkgs.Default()
	run := func(src string, opts ...mathexpr.ContextOption) func(b *testing.B) {
		return func(b *testing.B) {
			b.ReportAllocs()
			ctx := mathexpr.NewContext(reg, opts...)
			a, err := mathexpr.ParseString(src)
			if err != nil {
				b.Fatal(err)
			}
			for i := 0; i < b.N; i++ {
				ctx.Clone().Eval(a)
			}
		}
	}
	b.Run("nums", run("2+3+4"))
	b.Run("vars", run("x+y+z", mathexpr.SetVars(vars)))
	b.Run("lists", run("total([1, 2, 3] * [x, y, z])", mathexpr.SetVars(vars)))
	b.Run("sum", run("∑_{n=1}^{100} n^2"))
}

func errorAs[T error](err error) bool {
	var e T
	return errors.As(err, &e)
}
