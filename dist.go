package mathexpr

import (
	"strconv"
)

// Overload is one implementation of a distributed function.
type Overload struct {
	// Params is the parameter types. Arguments are coerced to them.
	Params []TypeName
	// Result is the result type.
	Result TypeName
	// Js computes the result from concrete arguments.
	Js func(ctx *Context, args []JsVal) (any, error)
	// Glsl generates an expression for the result. g is the context into
	// which any statements the expression depends on should go. A nil Glsl
	// means the overload cannot be used in shaders.
	Glsl func(g *GlslContext, args []GlslVal) (string, error)
}

// DistFunc is a function with overloads on scalar arguments, distributed
// elementwise over list arguments.
//
// A call selects the first overload to whose parameter types all the argument
// element types coerce, so more specific overloads must come first. If any
// argument is a list, the overload is applied to each index up to the length
// of the shortest list; scalar arguments are reused at every index. Longer
// lists are silently truncated. A call with an empty list argument produces
// an empty list without calling the overload.
type DistFunc struct {
	Label     string
	Overloads []Overload
}

func (f *DistFunc) Name() string {
	return f.Label
}

// choose selects an overload for arguments of the given types.
func (f *DistFunc) choose(r *Registry, tys []TypeName) (*Overload, error) {
	arity := false
	for i := range f.Overloads {
		o := &f.Overloads[i]
		if len(o.Params) != len(tys) {
			continue
		}
		arity = true
		ok := true
		for j, p := range o.Params {
			if !r.CanCoerce(tys[j], p) {
				ok = false
				break
			}
		}
		if ok {
			return o, nil
		}
	}
	if !arity {
		return nil, &ArityError{Func: f.Label, Got: len(tys)}
	}
	return nil, &TypeError{Func: f.Label, Types: tys}
}

// broadcast returns the length of the shortest list among arities, or Scalar
// if there are no lists. A dynamic list is longer than any fixed list.
func broadcast(arities []int) int {
	n := Scalar
	for _, l := range arities {
		switch {
		case l == Scalar:
		case n == Scalar, n == DynamicList && l >= 0, l >= 0 && l < n:
			n = l
		}
	}
	return n
}

func (f *DistFunc) Js(ctx *Context, args []JsValue) (JsValue, error) {
	tys := make([]TypeName, len(args))
	arities := make([]int, len(args))
	for i, a := range args {
		tys[i] = a.Type
		arities[i] = a.List
	}
	o, err := f.choose(ctx.reg, tys)
	if err != nil {
		return JsValue{}, err
	}
	if o.Js == nil {
		return JsValue{}, &BackendError{Backend: "js", What: strconv.Quote(f.Label) + " on " + typenames(tys)}
	}
	n := broadcast(arities)
	if n == Scalar {
		v, err := f.callJs(ctx, o, args, 0)
		if err != nil {
			return JsValue{}, err
		}
		return JsValue{Type: o.Result, List: Scalar, Value: v}, nil
	}
	out := make([]any, n)
	for i := range out {
		out[i], err = f.callJs(ctx, o, args, i)
		if err != nil {
			return JsValue{}, err
		}
	}
	return JsList(o.Result, out), nil
}

// callJs applies an overload at one index of the arguments.
func (f *DistFunc) callJs(ctx *Context, o *Overload, args []JsValue, i int) (any, error) {
	vals := make([]JsVal, len(args))
	for j, a := range args {
		v, err := ctx.reg.CoerceJsVal(a.At(i), o.Params[j])
		if err != nil {
			return nil, err
		}
		vals[j] = v
	}
	return o.Js(ctx, vals)
}

func (f *DistFunc) Glsl(ctx *Context, g *GlslContext, args []GlslValue) (GlslValue, error) {
	tys := make([]TypeName, len(args))
	arities := make([]int, len(args))
	for i, a := range args {
		tys[i] = a.Type
		arities[i] = a.List
	}
	o, err := f.choose(ctx.reg, tys)
	if err != nil {
		return GlslValue{}, err
	}
	n := broadcast(arities)
	if g.Probing() {
		return GlslValue{Type: o.Result, List: n}, nil
	}
	if o.Glsl == nil {
		return GlslValue{}, &BackendError{Backend: "glsl", What: strconv.Quote(f.Label) + " on " + typenames(tys)}
	}
	switch n {
	case Scalar:
		expr, err := f.callGlsl(ctx, g, o, args, "")
		if err != nil {
			return GlslValue{}, err
		}
		return GlslValue{Type: o.Result, List: Scalar, Expr: expr}, nil
	case 0:
		return GlslValue{Type: o.Result, List: 0}, nil
	}
	ty, err := ctx.reg.GlslType(o.Result)
	if err != nil {
		return GlslValue{}, err
	}
	arr, err := g.DeclareList(ty, n)
	if err != nil {
		return GlslValue{}, err
	}
	i := g.Name()
	body := g.Fork()
	expr, err := f.callGlsl(ctx, body, o, args, i)
	if err != nil {
		return GlslValue{}, err
	}
	body.Push(arr + "[" + i + "] = " + expr + ";")
	g.Loop(i, n, body)
	return GlslValue{Type: o.Result, List: n, Expr: arr}, nil
}

// callGlsl generates an overload's expression at the index named by i.
func (f *DistFunc) callGlsl(ctx *Context, g *GlslContext, o *Overload, args []GlslValue, i string) (string, error) {
	vals := make([]GlslVal, len(args))
	for j, a := range args {
		v, err := ctx.reg.CoerceGlslVal(a.At(i), o.Params[j])
		if err != nil {
			return "", err
		}
		vals[j] = v
	}
	return o.Glsl(g, vals)
}

// ListOverload is one implementation of a list function.
type ListOverload struct {
	// Elem is the element type of the list.
	Elem TypeName
	// Result is the result type.
	Result TypeName
	// Js computes the result from a non-empty list.
	Js func(ctx *Context, items []JsVal) (any, error)
	// Glsl generates an expression for the result from the name of a
	// non-empty array of n elements.
	Glsl func(g *GlslContext, arr string, n int) (string, error)
}

// ListFunc is a function applied once to a whole list, like total or max.
// Its arguments are concatenated into one list, so max(1, 2, 3) is the same
// as max([1, 2, 3]). The result for an empty list is the garbage value of the
// result type.
type ListFunc struct {
	Label     string
	Overloads []ListOverload
}

func (f *ListFunc) Name() string {
	return f.Label
}

// choose unifies the element types of the arguments and selects an overload.
func (f *ListFunc) choose(r *Registry, tys []TypeName) (*ListOverload, error) {
	if len(tys) == 0 {
		return nil, &ArityError{Func: f.Label, Got: 0}
	}
	elem, err := r.Unify(tys...)
	if err != nil {
		return nil, &TypeError{Func: f.Label, Types: tys}
	}
	for i := range f.Overloads {
		o := &f.Overloads[i]
		if r.CanCoerce(elem, o.Elem) {
			return o, nil
		}
	}
	return nil, &TypeError{Func: f.Label, Types: []TypeName{elem}}
}

func (f *ListFunc) Js(ctx *Context, args []JsValue) (JsValue, error) {
	tys := make([]TypeName, len(args))
	for i, a := range args {
		tys[i] = a.Type
	}
	o, err := f.choose(ctx.reg, tys)
	if err != nil {
		return JsValue{}, err
	}
	var items []JsVal
	for _, a := range args {
		for _, v := range a.Items() {
			v, err := ctx.reg.CoerceJsVal(v, o.Elem)
			if err != nil {
				return JsValue{}, err
			}
			items = append(items, v)
		}
	}
	if len(items) == 0 {
		return ctx.reg.Garbage(Type{Type: o.Result, List: Scalar}), nil
	}
	if o.Js == nil {
		return JsValue{}, &BackendError{Backend: "js", What: strconv.Quote(f.Label)}
	}
	v, err := o.Js(ctx, items)
	if err != nil {
		return JsValue{}, err
	}
	return JsValue{Type: o.Result, List: Scalar, Value: v}, nil
}

func (f *ListFunc) Glsl(ctx *Context, g *GlslContext, args []GlslValue) (GlslValue, error) {
	tys := make([]TypeName, len(args))
	n := 0
	for i, a := range args {
		tys[i] = a.Type
		switch a.List {
		case Scalar:
			n++
		case DynamicList:
			if !g.Probing() {
				return GlslValue{}, &BackendError{Backend: "glsl", What: "a list of unknown length"}
			}
		default:
			n += a.List
		}
	}
	o, err := f.choose(ctx.reg, tys)
	if err != nil {
		return GlslValue{}, err
	}
	if g.Probing() {
		return GlslValue{Type: o.Result, List: Scalar}, nil
	}
	if n == 0 {
		garbage, err := ctx.reg.GlslGarbage(o.Result)
		if err != nil {
			return GlslValue{}, err
		}
		return GlslValue{Type: o.Result, List: Scalar, Expr: garbage}, nil
	}
	if o.Glsl == nil {
		return GlslValue{}, &BackendError{Backend: "glsl", What: strconv.Quote(f.Label)}
	}
	var arr string
	if len(args) == 1 && args[0].List != Scalar {
		v, err := ctx.reg.CoerceGlsl(g, args[0], Type{Type: o.Elem, List: n})
		if err != nil {
			return GlslValue{}, err
		}
		arr = v.Expr
	} else {
		arr, err = concatGlsl(ctx, g, args, o.Elem, n)
		if err != nil {
			return GlslValue{}, err
		}
	}
	expr, err := o.Glsl(g, arr, n)
	if err != nil {
		return GlslValue{}, err
	}
	return GlslValue{Type: o.Result, List: Scalar, Expr: expr}, nil
}

// concatGlsl copies values into a new array of n elements of type elem.
func concatGlsl(ctx *Context, g *GlslContext, args []GlslValue, elem TypeName, n int) (string, error) {
	ty, err := ctx.reg.GlslType(elem)
	if err != nil {
		return "", err
	}
	arr, err := g.DeclareList(ty, n)
	if err != nil {
		return "", err
	}
	k := 0
	for _, a := range args {
		if a.List == Scalar {
			v, err := ctx.reg.CoerceGlslVal(a.At(""), elem)
			if err != nil {
				return "", err
			}
			g.Push(arr + "[" + strconv.Itoa(k) + "] = " + v.Expr + ";")
			k++
			continue
		}
		if a.List == 0 {
			continue
		}
		i := g.Name()
		body := g.Fork()
		v, err := ctx.reg.CoerceGlslVal(a.At(i), elem)
		if err != nil {
			return "", err
		}
		body.Push(arr + "[" + strconv.Itoa(k) + " + " + i + "] = " + v.Expr + ";")
		g.Loop(i, a.List, body)
		k += a.List
	}
	return arr, nil
}
