package mathexpr

// errNotScalar is the ArityError for a list where a single value is needed.
var errNotScalar = &ArityError{Msg: "expected a single value, not a list"}

// coerceArity determines the arity of a value of arity from converted to
// arity to. A scalar becomes a list of one where a list of one or a list of
// any length is wanted, and an empty list stays empty.
func coerceArity(from, to int) (int, error) {
	switch {
	case from == to:
		return from, nil
	case to == Scalar:
		return 0, errNotScalar
	case from == Scalar:
		if to == 1 || to == DynamicList {
			return 1, nil
		}
		return 0, errListSizes
	case from == 0, to == DynamicList:
		return from, nil
	case from == DynamicList:
		return to, nil
	}
	return 0, errListSizes
}

// CoerceJs converts a value to a type, first converting its elements and then
// its arity.
func (r *Registry) CoerceJs(v JsValue, to Type) (JsValue, error) {
	c, ok := r.Coercion(v.Type, to.Type)
	if !ok {
		return JsValue{}, &TypeError{Types: []TypeName{v.Type}, To: to.Type}
	}
	n, err := coerceArity(v.List, to.List)
	if err != nil {
		return JsValue{}, err
	}
	if c.Js == nil {
		return JsValue{}, &BackendError{Backend: "js", What: "conversion from " + string(v.Type) + " to " + string(to.Type)}
	}
	same := v.Type == to.Type
	switch {
	case v.List == Scalar && n == Scalar:
		if same {
			return v, nil
		}
		return JsValue{Type: to.Type, List: Scalar, Value: c.Js(v.Value)}, nil
	case v.List == Scalar:
		return JsList(to.Type, []any{c.Js(v.Value)}), nil
	case same:
		return v, nil
	}
	in := v.Value.([]any)
	out := make([]any, len(in))
	for i, x := range in {
		out[i] = c.Js(x)
	}
	return JsList(to.Type, out), nil
}

// CoerceJsVal converts a single value to an element type.
func (r *Registry) CoerceJsVal(v JsVal, to TypeName) (JsVal, error) {
	if v.Type == to {
		return v, nil
	}
	c, ok := r.Coercion(v.Type, to)
	if !ok {
		return JsVal{}, &TypeError{Types: []TypeName{v.Type}, To: to}
	}
	if c.Js == nil {
		return JsVal{}, &BackendError{Backend: "js", What: "conversion from " + string(v.Type) + " to " + string(to)}
	}
	return JsVal{Type: to, Value: c.Js(v.Value)}, nil
}

// CoerceGlsl converts a value to a type in generated code, first converting
// its elements and then its arity. Converting the elements of a list copies
// it into a new array.
func (r *Registry) CoerceGlsl(g *GlslContext, v GlslValue, to Type) (GlslValue, error) {
	c, ok := r.Coercion(v.Type, to.Type)
	if !ok {
		return GlslValue{}, &TypeError{Types: []TypeName{v.Type}, To: to.Type}
	}
	n, err := coerceArity(v.List, to.List)
	if err != nil {
		return GlslValue{}, err
	}
	same := v.Type == to.Type
	if g.Probing() {
		return GlslValue{Type: to.Type, List: n, Expr: v.Expr}, nil
	}
	if c.Glsl == nil {
		return GlslValue{}, &BackendError{Backend: "glsl", What: "conversion from " + string(v.Type) + " to " + string(to.Type)}
	}
	switch {
	case v.List == Scalar && n == Scalar:
		return GlslValue{Type: to.Type, List: Scalar, Expr: c.Glsl(v.Expr)}, nil
	case v.List == Scalar:
		ty, err := r.GlslType(to.Type)
		if err != nil {
			return GlslValue{}, err
		}
		arr, err := g.DeclareList(ty, 1)
		if err != nil {
			return GlslValue{}, err
		}
		g.Push(arr + "[0] = " + c.Glsl(v.Expr) + ";")
		return GlslValue{Type: to.Type, List: 1, Expr: arr}, nil
	case v.List == 0:
		return GlslValue{Type: to.Type, List: 0}, nil
	case same:
		return v, nil
	}
	ty, err := r.GlslType(to.Type)
	if err != nil {
		return GlslValue{}, err
	}
	arr, err := g.DeclareList(ty, v.List)
	if err != nil {
		return GlslValue{}, err
	}
	i := g.Name()
	body := g.Fork()
	body.Push(arr + "[" + i + "] = " + c.Glsl(v.At(i).Expr) + ";")
	g.Loop(i, v.List, body)
	return GlslValue{Type: to.Type, List: v.List, Expr: arr}, nil
}

// CoerceGlslVal converts a single expression to an element type.
func (r *Registry) CoerceGlslVal(v GlslVal, to TypeName) (GlslVal, error) {
	if v.Type == to {
		return v, nil
	}
	c, ok := r.Coercion(v.Type, to)
	if !ok {
		return GlslVal{}, &TypeError{Types: []TypeName{v.Type}, To: to}
	}
	if c.Glsl == nil {
		return GlslVal{}, &BackendError{Backend: "glsl", What: "conversion from " + string(v.Type) + " to " + string(to)}
	}
	return GlslVal{Type: to, Expr: c.Glsl(v.Expr)}, nil
}
