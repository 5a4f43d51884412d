package mathexpr

import "strconv"

// target is an evaluation backend. Node kinds whose evaluation is the same
// for values and shader code are written once against target.
type target[V any] interface {
	context() *Context
	eval(n Node) (V, error)
	num(text string) (V, error)
	lookup(name string) (V, error)
	call(name string, args []V) (V, error)
	// list builds a list literal from scalar items.
	list(items []V) (V, error)
	// bind extends the context's bindings. Callers restore them with scope.
	bind(binds []binding, vals []V) error
	// comprehension evaluates body once for each combination of elements of
	// the bound lists.
	comprehension(body Node, binds []binding) (V, error)
	magic(m *Magicvar) (V, error)
}

var errNested = &SyntaxError{Msg: "lists cannot contain lists"}

type jsTarget struct {
	ctx *Context
}

func (t jsTarget) context() *Context { return t.ctx }

func (t jsTarget) eval(n Node) (JsValue, error) { return t.ctx.Js(n) }

func (t jsTarget) num(text string) (JsValue, error) { return t.ctx.num(text) }

func (t jsTarget) lookup(name string) (JsValue, error) { return t.ctx.lookupJs(name) }

func (t jsTarget) call(name string, args []JsValue) (JsValue, error) {
	f, err := t.ctx.fn(name)
	if err != nil {
		return JsValue{}, err
	}
	return f.Js(t.ctx, args)
}

func (t jsTarget) list(items []JsValue) (JsValue, error) {
	if len(items) == 0 {
		lit := t.ctx.reg.Literal()
		if lit == nil {
			return JsValue{}, errNoLiteral
		}
		return JsList(lit.Type, []any{}), nil
	}
	tys := make([]TypeName, len(items))
	for i, v := range items {
		if v.List != Scalar {
			return JsValue{}, errNested
		}
		tys[i] = v.Type
	}
	ty, err := t.ctx.reg.Unify(tys...)
	if err != nil {
		return JsValue{}, err
	}
	out := make([]any, len(items))
	for i, v := range items {
		c, err := t.ctx.reg.CoerceJsVal(v.At(0), ty)
		if err != nil {
			return JsValue{}, err
		}
		out[i] = c.Value
	}
	return JsList(ty, out), nil
}

func (t jsTarget) bind(binds []binding, vals []JsValue) error {
	for i, b := range binds {
		t.ctx.js = t.ctx.js.with(b.name, vals[i])
	}
	return nil
}

func (t jsTarget) comprehension(body Node, binds []binding) (JsValue, error) {
	lists := make([]JsValue, len(binds))
	for i, b := range binds {
		var err error
		lists[i], err = t.eval(b.value)
		if err != nil {
			return JsValue{}, err
		}
	}
	defer t.ctx.scope()()
	var out []JsVal
	var loop func(k int) error
	loop = func(k int) error {
		if k == len(lists) {
			v, err := t.eval(body)
			if err != nil {
				return err
			}
			if v.List != Scalar {
				return errNested
			}
			out = append(out, v.At(0))
			return nil
		}
		for _, x := range lists[k].Items() {
			t.ctx.js = t.ctx.js.with(binds[k].name, JsScalar(x))
			if err := loop(k + 1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := loop(0); err != nil {
		return JsValue{}, err
	}
	if len(out) == 0 {
		// Determine the element type with the names bound to types only.
		for i, b := range binds {
			t.ctx.js = t.ctx.js.with(b.name, JsValue{Type: lists[i].Type, List: Scalar})
		}
		ty, err := t.ctx.TypeOf(body)
		if err != nil {
			return JsValue{}, err
		}
		return JsList(ty.Type, []any{}), nil
	}
	tys := make([]TypeName, len(out))
	for i, v := range out {
		tys[i] = v.Type
	}
	ty, err := t.ctx.reg.Unify(tys...)
	if err != nil {
		return JsValue{}, err
	}
	r := make([]any, len(out))
	for i, v := range out {
		c, err := t.ctx.reg.CoerceJsVal(v, ty)
		if err != nil {
			return JsValue{}, err
		}
		r[i] = c.Value
	}
	return JsList(ty, r), nil
}

func (t jsTarget) magic(m *Magicvar) (JsValue, error) {
	mg, ok := t.ctx.reg.Magic(m.Name)
	if !ok {
		return JsValue{}, &NameError{Name: m.Name}
	}
	if mg.Js == nil {
		return JsValue{}, &BackendError{Backend: "js", What: strconv.Quote(m.Name)}
	}
	return mg.Js(t.ctx, m)
}

type glslTarget struct {
	ctx *Context
	g   *GlslContext
}

func (t glslTarget) context() *Context { return t.ctx }

func (t glslTarget) eval(n Node) (GlslValue, error) { return t.ctx.Glsl(n, t.g) }

func (t glslTarget) num(text string) (GlslValue, error) { return t.ctx.glslNum(t.g, text) }

func (t glslTarget) lookup(name string) (GlslValue, error) { return t.ctx.lookupGlsl(t.g, name) }

func (t glslTarget) call(name string, args []GlslValue) (GlslValue, error) {
	f, err := t.ctx.fn(name)
	if err != nil {
		return GlslValue{}, err
	}
	return f.Glsl(t.ctx, t.g, args)
}

func (t glslTarget) list(items []GlslValue) (GlslValue, error) {
	if len(items) == 0 {
		lit := t.ctx.reg.Literal()
		if lit == nil {
			return GlslValue{}, errNoLiteral
		}
		return GlslValue{Type: lit.Type, List: 0}, nil
	}
	tys := make([]TypeName, len(items))
	for i, v := range items {
		if v.List != Scalar {
			return GlslValue{}, errNested
		}
		tys[i] = v.Type
	}
	ty, err := t.ctx.reg.Unify(tys...)
	if err != nil {
		return GlslValue{}, err
	}
	if t.g.Probing() {
		return GlslValue{Type: ty, List: len(items)}, nil
	}
	gty, err := t.ctx.reg.GlslType(ty)
	if err != nil {
		return GlslValue{}, err
	}
	arr, err := t.g.DeclareList(gty, len(items))
	if err != nil {
		return GlslValue{}, err
	}
	for i, v := range items {
		c, err := t.ctx.reg.CoerceGlslVal(v.At(""), ty)
		if err != nil {
			return GlslValue{}, err
		}
		t.g.Push(arr + "[" + strconv.Itoa(i) + "] = " + c.Expr + ";")
	}
	return GlslValue{Type: ty, List: len(items), Expr: arr}, nil
}

// bind caches scalar values in locals so that each is computed once.
func (t glslTarget) bind(binds []binding, vals []GlslValue) error {
	for i, b := range binds {
		v := vals[i]
		if t.g.jsScope {
			t.ctx.js = t.ctx.js.with(b.name, JsValue{Type: v.Type, List: v.List})
			continue
		}
		if !t.g.Probing() && v.List == Scalar {
			ty, err := t.ctx.reg.GlslType(v.Type)
			if err != nil {
				return err
			}
			v.Expr = t.g.Cache(ty, v.Expr)
		}
		t.ctx.gl = t.ctx.gl.with(b.name, v)
	}
	return nil
}

// comprehension generates nested loops over the bound lists writing into one
// array whose length is the product of the lists' lengths.
func (t glslTarget) comprehension(body Node, binds []binding) (GlslValue, error) {
	lists := make([]GlslValue, len(binds))
	total := 1
	for i, b := range binds {
		v, err := t.eval(b.value)
		if err != nil {
			return GlslValue{}, err
		}
		switch {
		case v.List == Scalar:
		case v.List == DynamicList || total == DynamicList:
			total = DynamicList
		default:
			total *= v.List
		}
		lists[i] = v
	}
	if total == DynamicList && !t.g.Probing() {
		return GlslValue{}, &BackendError{Backend: "glsl", What: "a list of unknown length"}
	}
	defer t.ctx.scope()()
	if t.g.Probing() || total == 0 {
		// Only the element type is needed, or no code can be generated.
		p := glslTarget{t.ctx, t.g.Fork()}
		if !p.g.probe {
			p.g = newProbe(false)
		}
		elems := make([]GlslValue, len(lists))
		for i, l := range lists {
			elems[i] = GlslValue{Type: l.Type, List: Scalar}
		}
		if err := p.bind(binds, elems); err != nil {
			return GlslValue{}, err
		}
		v, err := p.eval(body)
		if err != nil {
			return GlslValue{}, err
		}
		if v.List != Scalar {
			return GlslValue{}, errNested
		}
		return GlslValue{Type: v.Type, List: total}, nil
	}
	inner := t.g.Fork()
	idx := make([]string, len(lists))
	flat := ""
	for i, l := range lists {
		idx[i] = t.g.Name()
		n := l.List
		if n == Scalar {
			n = 1
		}
		if i == 0 {
			flat = idx[i]
		} else {
			flat = "(" + flat + ") * " + strconv.Itoa(n) + " + " + idx[i]
		}
		t.ctx.gl = t.ctx.gl.with(binds[i].name, GlslValue{Type: l.Type, List: Scalar, Expr: l.At(idx[i]).Expr})
	}
	v, err := glslTarget{t.ctx, inner}.eval(body)
	if err != nil {
		return GlslValue{}, err
	}
	if v.List != Scalar {
		return GlslValue{}, errNested
	}
	ty, err := t.ctx.reg.GlslType(v.Type)
	if err != nil {
		return GlslValue{}, err
	}
	arr, err := t.g.DeclareList(ty, total)
	if err != nil {
		return GlslValue{}, err
	}
	inner.Push(arr + "[" + flat + "] = " + v.Expr + ";")
	cur := inner
	for i := len(lists) - 1; i >= 0; i-- {
		n := lists[i].List
		if n == Scalar {
			n = 1
		}
		outer := t.g.Fork()
		outer.Loop(idx[i], n, cur)
		cur = outer
	}
	t.g.Push(cur.Block())
	return GlslValue{Type: v.Type, List: total, Expr: arr}, nil
}

func (t glslTarget) magic(m *Magicvar) (GlslValue, error) {
	mg, ok := t.ctx.reg.Magic(m.Name)
	if !ok {
		return GlslValue{}, &NameError{Name: m.Name}
	}
	if mg.Glsl == nil {
		return GlslValue{}, &BackendError{Backend: "glsl", What: strconv.Quote(m.Name)}
	}
	return mg.Glsl(t.ctx, t.g, m)
}
