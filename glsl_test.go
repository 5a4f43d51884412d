package mathexpr_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/zephyrtronium/mathexpr"
	"github.com/zephyrtronium/mathexpr/pkgs"
)

func glsl(t *testing.T, ctx *mathexpr.Context, src string) (mathexpr.GlslValue, *mathexpr.GlslContext) {
	t.Helper()
	a, err := mathexpr.ParseString(src)
	if err != nil {
		t.Fatalf("%q failed to parse: %v", src, err)
	}
	g := mathexpr.NewGlslContext()
	v, err := ctx.Glsl(a.Root(), g)
	if err != nil {
		t.Fatalf("generating %q: %v", src, err)
	}
	return v, g
}

func TestGlslExprs(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
		ty   mathexpr.Type
	}{
		{"num", "1", "1.0", mathexpr.Type{Type: pkgs.Real, List: mathexpr.Scalar}},
		{"decimal", "2.5", "2.5", mathexpr.Type{Type: pkgs.Real, List: mathexpr.Scalar}},
		{"coords", "x", "v_coords.x", mathexpr.Type{Type: pkgs.Real, List: mathexpr.Scalar}},
		{"linear", "2x + 1", "((2.0 * v_coords.x) + 1.0)", mathexpr.Type{Type: pkgs.Real, List: mathexpr.Scalar}},
		{"fn", "sin x cos y", "(sin(v_coords.x) * cos(v_coords.y))", mathexpr.Type{Type: pkgs.Real, List: mathexpr.Scalar}},
		{"neg", "-x", "-(v_coords.x)", mathexpr.Type{Type: pkgs.Real, List: mathexpr.Scalar}},
		{"pi", "pi", "3.141592653589793", mathexpr.Type{Type: pkgs.Real, List: mathexpr.Scalar}},
		{"cmp", "x < y", "(v_coords.x < v_coords.y)", mathexpr.Type{Type: pkgs.Bool, List: mathexpr.Scalar}},
		{"chain", "0 < x < 1", "((0.0 < v_coords.x) && (v_coords.x < 1.0))", mathexpr.Type{Type: pkgs.Bool, List: mathexpr.Scalar}},
		{"bool-real", "true + x", "(float(true) + v_coords.x)", mathexpr.Type{Type: pkgs.Real, List: mathexpr.Scalar}},
		{"point", "(x, y)", "vec2(v_coords.x, v_coords.y)", mathexpr.Type{Type: pkgs.Point, List: mathexpr.Scalar}},
		{"point-coord", "coords.y", "v_coords.y", mathexpr.Type{Type: pkgs.Real, List: mathexpr.Scalar}},
		{"complex", "x + i", "(vec2(v_coords.x, 0.0) + vec2(0.0, 1.0))", mathexpr.Type{Type: pkgs.Complex, List: mathexpr.Scalar}},
		{"complex-abs", "abs(i)", "length(vec2(0.0, 1.0))", mathexpr.Type{Type: pkgs.Real, List: mathexpr.Scalar}},
		{"log-base", "log_2 x", "(log(v_coords.x) / log(2.0))", mathexpr.Type{Type: pkgs.Real, List: mathexpr.Scalar}},
		{"count", "count([1,2,3])", "3.0", mathexpr.Type{Type: pkgs.Real, List: mathexpr.Scalar}},
		{"count-scalar", "count(x)", "1.0", mathexpr.Type{Type: pkgs.Real, List: mathexpr.Scalar}},
		{"const", "const tau", "6.283185307179586", mathexpr.Type{Type: pkgs.Real, List: mathexpr.Scalar}},
		{"total-empty", "total([])", "(0.0 / 0.0)", mathexpr.Type{Type: pkgs.Real, List: mathexpr.Scalar}},
	}
	ctx := mathexpr.NewContext(pkgs.Default())
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v, _ := glsl(t, ctx, c.src)
			if v.Expr != c.want {
				t.Errorf("generating %q: want %s, got %s", c.src, c.want, v.Expr)
			}
			if v.Ty() != c.ty {
				t.Errorf("generating %q: want type %v, got %v", c.src, c.ty, v.Ty())
			}
		})
	}
}

func TestShader(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			"linear",
			"2x + 1",
			"float f() {\n" +
				"return ((2.0 * v_coords.x) + 1.0);\n" +
				"}\n",
		},
		{
			"piecewise",
			"{x < 0: sin x, cos x}",
			"float f() {\n" +
				"float _local1;\n" +
				"if ((v_coords.x < 0.0)) {\n" +
				"_local1 = sin(v_coords.x);\n" +
				"} else {\n" +
				"_local1 = cos(v_coords.x);\n" +
				"}\n" +
				"return _local1;\n" +
				"}\n",
		},
		{
			"with",
			"(a + a) with a = sin x",
			"float f() {\n" +
				"float _local1 = sin(v_coords.x);\n" +
				"return (_local1 + _local1);\n" +
				"}\n",
		},
		{
			"mean",
			"mean([1, 2])",
			"float f() {\n" +
				"float _local1[2];\n" +
				"_local1[0] = 1.0;\n" +
				"_local1[1] = 2.0;\n" +
				"float _local2 = 0.0;\n" +
				"for (int _local3 = 0; _local3 < 2; _local3++) {\n" +
				"_local2 = _local2 + _local1[_local3];\n" +
				"}\n" +
				"return (_local2 / 2.0);\n" +
				"}\n",
		},
		{
			"list",
			"[1, 2] x",
			"float[2] f() {\n" +
				"float _local1[2];\n" +
				"_local1[0] = 1.0;\n" +
				"_local1[1] = 2.0;\n" +
				"float _local2[2];\n" +
				"for (int _local3 = 0; _local3 < 2; _local3++) {\n" +
				"_local2[_local3] = (_local1[_local3] * v_coords.x);\n" +
				"}\n" +
				"return _local2;\n" +
				"}\n",
		},
		{
			"complex",
			"i*i",
			"vec2 _helper_cmul(vec2 a, vec2 b) {\n" +
				"\treturn vec2(a.x * b.x - a.y * b.y, a.x * b.y + a.y * b.x);\n" +
				"}\n" +
				"vec2 f() {\n" +
				"return _helper_cmul(vec2(0.0, 1.0), vec2(0.0, 1.0));\n" +
				"}\n",
		},
	}
	ctx := mathexpr.NewContext(pkgs.Default())
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := mathexpr.ParseString(c.src)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			got, err := ctx.Shader(a, "f")
			if err != nil {
				t.Fatalf("generating %q: %v", c.src, err)
			}
			if got != c.want {
				t.Errorf("generating %q:\nwant %q\ngot  %q", c.src, c.want, got)
			}
		})
	}
}

func TestShaderHelpersOnce(t *testing.T) {
	a, err := mathexpr.ParseString("x^2 + y^2 + x^3")
	if err != nil {
		t.Fatal(err)
	}
	src, err := mathexpr.NewContext(pkgs.Default()).Shader(a, "f")
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(src, "float _helper_pow("); n != 1 {
		t.Errorf("helper declared %d times in\n%s", n, src)
	}
	if n := strings.Count(src, "_helper_pow("); n != 4 {
		t.Errorf("want 3 helper calls, got %d in\n%s", n-1, src)
	}
	if !strings.Contains(src, "return ((_helper_pow(v_coords.x, 2.0) + _helper_pow(v_coords.y, 2.0)) + _helper_pow(v_coords.x, 3.0));") {
		t.Errorf("wrong result in\n%s", src)
	}
	if i, j := strings.Index(src, "float _helper_pow("), strings.Index(src, "float f()"); i > j {
		t.Errorf("helper follows the function in\n%s", src)
	}
}

func TestShaderHelpersInBranches(t *testing.T) {
	a, err := mathexpr.ParseString("{x < 0: x^2, log x}")
	if err != nil {
		t.Fatal(err)
	}
	src, err := mathexpr.NewContext(pkgs.Default()).Shader(a, "f")
	if err != nil {
		t.Fatal(err)
	}
	for _, h := range []string{"float _helper_pow(", "float _helper_log10("} {
		if n := strings.Count(src, h); n != 1 {
			t.Errorf("%s declared %d times in\n%s", h, n, src)
		}
	}
}

func TestGlslVars(t *testing.T) {
	ctx := mathexpr.NewContext(pkgs.Default(), mathexpr.SetGlslVar("t", mathexpr.GlslValue{Type: pkgs.Real, List: mathexpr.Scalar, Expr: "u_time"}))
	v, g := glsl(t, ctx, "sin t + x")
	if v.Expr != "(sin(u_time) + v_coords.x)" {
		t.Errorf("wrong expression %s", v.Expr)
	}
	if g.Block() != "" {
		t.Errorf("variables generated statements %q", g.Block())
	}
	c := ctx.Clone().SetGlsl("x", mathexpr.GlslValue{Type: pkgs.Real, List: mathexpr.Scalar, Expr: "u_x"})
	if v, _ := glsl(t, c, "x"); v.Expr != "u_x" {
		t.Errorf("variable didn't shadow global: %s", v.Expr)
	}
	if v, _ := glsl(t, ctx, "x"); v.Expr != "v_coords.x" {
		t.Errorf("clone changed original: %s", v.Expr)
	}
}

func TestGlslLists(t *testing.T) {
	ctx := mathexpr.NewContext(pkgs.Default())
	cases := []struct {
		name string
		src  string
		want mathexpr.Type
	}{
		{"literal", "[x, y]", mathexpr.Type{Type: pkgs.Real, List: 2}},
		{"shortest", "[1, 2, 3] + [x, y]", mathexpr.Type{Type: pkgs.Real, List: 2}},
		{"for", "k x for k = [1, 2, 3]", mathexpr.Type{Type: pkgs.Real, List: 3}},
		{"for-two", "j + k for j = [1, 2], k = [1, 2, 3]", mathexpr.Type{Type: pkgs.Real, List: 6}},
		{"for-brackets", "[k x for k = [1, 2, 3]]", mathexpr.Type{Type: pkgs.Real, List: 3}},
		{"for-brackets-total", "total([k x for k = [1, 2, 3]])", mathexpr.Type{Type: pkgs.Real, List: mathexpr.Scalar}},
		{"index", "[1, 2, 3][2]", mathexpr.Type{Type: pkgs.Real, List: mathexpr.Scalar}},
		{"index-list", "[1, 2, 3][[3, 1]]", mathexpr.Type{Type: pkgs.Real, List: 2}},
		{"total", "total([x, y], 1)", mathexpr.Type{Type: pkgs.Real, List: mathexpr.Scalar}},
		{"max", "max(x, y)", mathexpr.Type{Type: pkgs.Real, List: mathexpr.Scalar}},
		{"piecewise", "{x < 0: [1, 2], [x, y]}", mathexpr.Type{Type: pkgs.Real, List: 2}},
		{"sum", "∑_{n=1}^{10} n x", mathexpr.Type{Type: pkgs.Real, List: mathexpr.Scalar}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v, g := glsl(t, ctx, c.src)
			if v.Ty() != c.want {
				t.Errorf("generating %q: want type %v, got %v", c.src, c.want, v.Ty())
			}
			if v.Expr == "" {
				t.Errorf("generating %q gave no expression", c.src)
			}
			if g.Block() == "" {
				t.Errorf("generating %q gave no statements", c.src)
			}
		})
	}
	_, g := glsl(t, ctx, "∑_{n=1}^{10} n x")
	if !strings.Contains(g.Block(), "for (float ") {
		t.Errorf("sum generated no loop:\n%s", g.Block())
	}
}

func TestGlslExtremumNaN(t *testing.T) {
	ctx := mathexpr.NewContext(pkgs.Default())
	for _, name := range []string{"min", "max"} {
		t.Run(name, func(t *testing.T) {
			_, g := glsl(t, ctx, name+"(x, y)")
			b := g.Block()
			if !strings.Contains(b, "isnan(") {
				t.Errorf("%s has no NaN check:\n%s", name, b)
			}
			if !strings.Contains(b, ": "+name+"(") {
				t.Errorf("%s does not call the builtin:\n%s", name, b)
			}
		})
	}
}

func TestGlslErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		kind func(error) bool
	}{
		{"range", "range(1, 3)", errorAs[*mathexpr.BackendError]},
		{"filter", "[1, 2][[1, 2] > 1]", errorAs[*mathexpr.BackendError]},
		{"factorial", "3!", errorAs[*mathexpr.BackendError]},
		{"count-dynamic", "count(range(1, 3))", errorAs[*mathexpr.BackendError]},
		{"sum-list", "∑_{n=1}^{3} [n]", errorAs[*mathexpr.BackendError]},
		{"piecewise-sizes", "{x < 0: [1], [1, 2]}", errorAs[*mathexpr.ArityError]},
		{"undefined", "q", errorAs[*mathexpr.NameError]},
		{"type", "(x, y) + 1", errorAs[*mathexpr.TypeError]},
		{"cond-type", "{x: 1}", errorAs[*mathexpr.TypeError]},
		{"syntax", "1, 2", errorAs[*mathexpr.SyntaxError]},
	}
	ctx := mathexpr.NewContext(pkgs.Default())
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := mathexpr.ParseString(c.src)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			_, err = ctx.Shader(a, "f")
			if err == nil {
				t.Fatalf("generating %q succeeded", c.src)
			}
			if !c.kind(err) {
				t.Errorf("generating %q: wrong error type %T (%v)", c.src, err, err)
			}
		})
	}
}

func TestTypeOfDefault(t *testing.T) {
	ctx := mathexpr.NewContext(pkgs.Default())
	cases := []struct {
		name string
		src  string
		want mathexpr.Type
	}{
		{"real", "1 + 2", mathexpr.Type{Type: pkgs.Real, List: mathexpr.Scalar}},
		{"complex", "1 + i", mathexpr.Type{Type: pkgs.Complex, List: mathexpr.Scalar}},
		{"point", "(1, 2)", mathexpr.Type{Type: pkgs.Point, List: mathexpr.Scalar}},
		{"bool", "1 < 2", mathexpr.Type{Type: pkgs.Bool, List: mathexpr.Scalar}},
		{"list", "[1, 2, 3]", mathexpr.Type{Type: pkgs.Real, List: 3}},
		{"range", "range(1, 3)", mathexpr.Type{Type: pkgs.Real, List: mathexpr.DynamicList}},
		{"filter", "[1, 2][[1, 2] > 1]", mathexpr.Type{Type: pkgs.Real, List: mathexpr.DynamicList}},
		{"factorial", "3!", mathexpr.Type{Type: pkgs.Real, List: mathexpr.Scalar}},
		{"shader-global", "x", mathexpr.Type{Type: pkgs.Real, List: mathexpr.Scalar}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := mathexpr.ParseString(c.src)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			got, err := ctx.TypeOf(a.Root())
			if err != nil {
				t.Fatalf("typing %q: %v", c.src, err)
			}
			if got != c.want {
				t.Errorf("typing %q: want %v, got %v", c.src, c.want, got)
			}
		})
	}
}

func TestDepsDefault(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want []string
	}{
		{"funcs", "abs(q) + f(r) + x", []string{"f", "q", "r", "x"}},
		{"prefix", "sin t", []string{"t"}},
		{"bound", "a + b with a = c", []string{"b", "c"}},
		{"sum", "∑_{n=1}^{m} n k", []string{"k", "m"}},
		{"magic", "count(l) + const pi", []string{"l"}},
		{"none", "1 + 2", []string{}},
	}
	ctx := mathexpr.NewContext(pkgs.Default())
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := mathexpr.ParseString(c.src)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			if got := ctx.Deps(a.Root()); !reflect.DeepEqual(got, c.want) {
				t.Errorf("%q: want deps %q, got %q", c.src, c.want, got)
			}
		})
	}
}
