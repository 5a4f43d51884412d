package mathexpr

import (
	"math"
	"reflect"
	"testing"
)

func TestBroadcast(t *testing.T) {
	cases := []struct {
		name    string
		arities []int
		want    int
	}{
		{"none", nil, Scalar},
		{"scalar", []int{Scalar}, Scalar},
		{"scalars", []int{Scalar, Scalar}, Scalar},
		{"list-scalar", []int{3, Scalar}, 3},
		{"scalar-list", []int{Scalar, 3}, 3},
		{"shortest", []int{3, 2}, 2},
		{"shortest-last", []int{2, 3}, 2},
		{"dynamic-fixed", []int{DynamicList, 4}, 4},
		{"fixed-dynamic", []int{4, DynamicList}, 4},
		{"dynamic", []int{DynamicList, Scalar}, DynamicList},
		{"empty", []int{0, 5}, 0},
		{"empty-dynamic", []int{DynamicList, 0}, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := broadcast(c.arities); got != c.want {
				t.Errorf("broadcast(%v): want %d, got %d", c.arities, c.want, got)
			}
		})
	}
}

func TestCoerceArity(t *testing.T) {
	cases := []struct {
		name     string
		from, to int
		want     int
		err      error
	}{
		{"scalar", Scalar, Scalar, Scalar, nil},
		{"same", 3, 3, 3, nil},
		{"list-to-scalar", 3, Scalar, 0, errNotScalar},
		{"scalar-to-one", Scalar, 1, 1, nil},
		{"scalar-to-dynamic", Scalar, DynamicList, 1, nil},
		{"scalar-to-two", Scalar, 2, 0, errListSizes},
		{"empty", 0, 4, 0, nil},
		{"to-dynamic", 3, DynamicList, 3, nil},
		{"from-dynamic", DynamicList, 3, 3, nil},
		{"mismatch", 2, 3, 0, errListSizes},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := coerceArity(c.from, c.to)
			if err != c.err {
				t.Fatalf("coerceArity(%d, %d): want error %v, got %v", c.from, c.to, c.err, err)
			}
			if err == nil && got != c.want {
				t.Errorf("coerceArity(%d, %d): want %d, got %d", c.from, c.to, c.want, got)
			}
		})
	}
}

func TestDistributeJs(t *testing.T) {
	cases := []struct {
		name  string
		src   string
		want  JsValue
		calls int
	}{
		{"scalar", "2 + 3", JsValue{Type: "num", List: Scalar, Value: 5.0}, 1},
		{"shortest", "[1, 2, 3] + [10, 20]", JsList("num", []any{11.0, 22.0}), 2},
		{"scalar-reused", "[1, 2] + 5", JsList("num", []any{6.0, 7.0}), 2},
		{"empty", "[] + 1", JsList("num", []any{}), 0},
		{"coerced", "[1 < 2, 2 < 1] + 1", JsList("num", []any{2.0, 1.0}), 2},
		{"pairs", "origin + 1", JsValue{Type: "pair", List: Scalar, Value: [2]float64{1, 0}}, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var calls int
			r := testRegistry(t, &calls)
			got, err := EvalString(c.src, r)
			if err != nil {
				t.Fatalf("evaluating %q: %v", c.src, err)
			}
			if !reflect.DeepEqual(got, c.want) {
				t.Errorf("evaluating %q: want %#v, got %#v", c.src, c.want, got)
			}
			if calls != c.calls {
				t.Errorf("evaluating %q: want %d calls, got %d", c.src, c.calls, calls)
			}
		})
	}
}

func TestDistributeGlsl(t *testing.T) {
	r := testRegistry(t, new(int))
	ctx := NewContext(r)
	e, err := ParseString("[1, 2] + 5")
	if err != nil {
		t.Fatal(err)
	}
	g := NewGlslContext()
	v, err := ctx.Glsl(e.Root(), g)
	if err != nil {
		t.Fatal(err)
	}
	if v.Ty() != (Type{Type: "num", List: 2}) {
		t.Errorf("wrong type %v", v.Ty())
	}
	want := "float _local1[2];\n" +
		"_local1[0] = 1.0;\n" +
		"_local1[1] = 2.0;\n" +
		"float _local2[2];\n" +
		"for (int _local3 = 0; _local3 < 2; _local3++) {\n" +
		"_local2[_local3] = (_local1[_local3] + 5.0);\n" +
		"}\n"
	if got := g.Block(); got != want {
		t.Errorf("wrong block:\nwant %q\ngot  %q", want, got)
	}
	if v.Expr != "_local2" {
		t.Errorf("wrong result %q", v.Expr)
	}

	e, err = ParseString("[] + 1")
	if err != nil {
		t.Fatal(err)
	}
	g = NewGlslContext()
	v, err = ctx.Glsl(e.Root(), g)
	if err != nil {
		t.Fatal(err)
	}
	if v.List != 0 || v.Expr != "" || g.Block() != "" {
		t.Errorf("empty list generated %+v with %q", v, g.Block())
	}
}

func TestListFunc(t *testing.T) {
	r := testRegistry(t, new(int))
	cases := []struct {
		name string
		src  string
		want float64
	}{
		{"args", "total(1, 2, 3)", 6},
		{"list", "total([1, 2, 3])", 6},
		{"mixed", "total([1, 2], 3)", 6},
		{"coerced", "total(1 < 2, 1)", 2},
		{"empty", "total([])", math.NaN()},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v, err := EvalString(c.src, r)
			if err != nil {
				t.Fatalf("evaluating %q: %v", c.src, err)
			}
			got, ok := v.Value.(float64)
			if !ok || v.List != Scalar {
				t.Fatalf("evaluating %q: got %#v", c.src, v)
			}
			if got != c.want && !(math.IsNaN(got) && math.IsNaN(c.want)) {
				t.Errorf("evaluating %q: want %v, got %v", c.src, c.want, got)
			}
		})
	}
}

func TestListFuncGlsl(t *testing.T) {
	r := testRegistry(t, new(int))
	ctx := NewContext(r)
	e, err := ParseString("total([1, 2], 3)")
	if err != nil {
		t.Fatal(err)
	}
	g := NewGlslContext()
	v, err := ctx.Glsl(e.Root(), g)
	if err != nil {
		t.Fatal(err)
	}
	want := "float _local1[2];\n" +
		"_local1[0] = 1.0;\n" +
		"_local1[1] = 2.0;\n" +
		"float _local2[3];\n" +
		"for (int _local3 = 0; _local3 < 2; _local3++) {\n" +
		"_local2[0 + _local3] = _local1[_local3];\n" +
		"}\n" +
		"_local2[2] = 3.0;\n" +
		"float _local4 = 0.0;\n" +
		"for (int _local5 = 0; _local5 < 3; _local5++) {\n" +
		"_local4 += _local2[_local5];\n" +
		"}\n"
	if got := g.Block(); got != want {
		t.Errorf("wrong block:\nwant %q\ngot  %q", want, got)
	}
	if v.Expr != "_local4" || v.List != Scalar {
		t.Errorf("wrong result %+v", v)
	}

	e, err = ParseString("total([])")
	if err != nil {
		t.Fatal(err)
	}
	v, err = ctx.Glsl(e.Root(), NewGlslContext())
	if err != nil {
		t.Fatal(err)
	}
	if v.Expr != "(0.0 / 0.0)" {
		t.Errorf("empty total generated %q", v.Expr)
	}
}

func TestDispatchErrors(t *testing.T) {
	r := testRegistry(t, new(int))
	cases := []struct {
		name string
		src  string
		kind func(error) bool
		glsl bool
	}{
		{"arity", "neg(1, 2)", errorAs[*ArityError], false},
		{"type", "origin < 1", errorAs[*TypeError], false},
		{"list-type", "total(origin)", errorAs[*TypeError], false},
		{"no-glsl", "neg(1)", errorAs[*BackendError], true},
		{"nested", "[[1]]", errorAs[*SyntaxError], false},
		{"undefined-func", "sqrt(1)", errorAs[*NameError], false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e, err := ParseString(c.src)
			if err != nil {
				t.Fatal(err)
			}
			ctx := NewContext(r)
			if c.glsl {
				_, err = ctx.Glsl(e.Root(), NewGlslContext())
			} else {
				_, err = ctx.Eval(e)
			}
			if err == nil {
				t.Fatalf("evaluating %q succeeded", c.src)
			}
			if !c.kind(err) {
				t.Errorf("evaluating %q: wrong error type %T (%v)", c.src, err, err)
			}
		})
	}
}
