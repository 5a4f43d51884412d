package mathexpr

import "strconv"

// piecewiseType unifies the types of the branches of a piecewise expression.
// Lists of different lengths unify to a dynamic list; glsl rejects them
// later.
func piecewiseType(reg *Registry, tys []Type) (Type, error) {
	names := make([]TypeName, len(tys))
	list := Scalar
	for i, t := range tys {
		names[i] = t.Type
		switch {
		case t.List == Scalar:
		case list == Scalar:
			list = t.List
		case list != t.List:
			list = DynamicList
		}
	}
	name, err := reg.Unify(names...)
	if err != nil {
		return Type{}, err
	}
	return Type{Type: name, List: list}, nil
}

// jsPiecewise determines the types of every branch but evaluates only the
// condition and value of the chosen one. With no matching branch, the result
// is garbage.
func jsPiecewise(ctx *Context, n *Piecewise) (JsValue, error) {
	tys := make([]Type, len(n.Pieces))
	for i, p := range n.Pieces {
		var err error
		tys[i], err = ctx.TypeOf(p.Value)
		if err != nil {
			return JsValue{}, err
		}
	}
	ty, err := piecewiseType(ctx.reg, tys)
	if err != nil {
		return JsValue{}, err
	}
	for _, p := range n.Pieces {
		if p.Cond != nil {
			c, err := ctx.Js(p.Cond)
			if err != nil {
				return JsValue{}, err
			}
			ok, err := ctx.truth(c)
			if err != nil {
				return JsValue{}, err
			}
			if !ok {
				continue
			}
		}
		v, err := ctx.Js(p.Value)
		if err != nil {
			return JsValue{}, err
		}
		return ctx.reg.CoerceJs(v, ty)
	}
	return ctx.reg.Garbage(ty), nil
}

// glslPiecewise generates code for every branch, each in its own fork, then
// nests them in if/else blocks assigning one result variable.
func glslPiecewise(ctx *Context, g *GlslContext, n *Piecewise) (GlslValue, error) {
	type branch struct {
		cond  *GlslContext
		c     GlslValue
		value *GlslContext
		v     GlslValue
	}
	bs := make([]branch, len(n.Pieces))
	tys := make([]Type, len(n.Pieces))
	for i, p := range n.Pieces {
		b := &bs[i]
		if p.Cond != nil {
			b.cond = g.Fork()
			c, err := ctx.Glsl(p.Cond, b.cond)
			if err != nil {
				return GlslValue{}, err
			}
			if err := ctx.checkCond(c); err != nil {
				return GlslValue{}, err
			}
			b.c = c
		}
		b.value = g.Fork()
		v, err := ctx.Glsl(p.Value, b.value)
		if err != nil {
			return GlslValue{}, err
		}
		b.v = v
		tys[i] = v.Ty()
	}
	ty, err := piecewiseType(ctx.reg, tys)
	if err != nil {
		return GlslValue{}, err
	}
	if g.Probing() {
		return GlslValue{Type: ty.Type, List: ty.List}, nil
	}
	if ty.List == DynamicList {
		return GlslValue{}, errListSizes
	}
	for i := range bs {
		b := &bs[i]
		b.v, err = ctx.reg.CoerceGlsl(b.value, b.v, ty)
		if err != nil {
			return GlslValue{}, err
		}
		if b.v.List != ty.List {
			return GlslValue{}, errListSizes
		}
	}
	gty, err := ctx.reg.GlslType(ty.Type)
	if err != nil {
		return GlslValue{}, err
	}
	var res string
	if ty.List == Scalar {
		res = g.Name()
		g.Push(gty + " " + res + ";")
	} else {
		res, err = g.DeclareList(gty, ty.List)
		if err != nil {
			return GlslValue{}, err
		}
	}
	var tail string
	if last := n.Pieces[len(n.Pieces)-1]; last.Cond != nil {
		garbage, err := ctx.reg.GlslGarbage(ty.Type)
		if err != nil {
			return GlslValue{}, err
		}
		tail = assignGlsl(g, res, ty.List, func(string) string { return garbage })
	}
	for i := len(bs) - 1; i >= 0; i-- {
		b := &bs[i]
		v := b.v
		body := b.value.Block() + assignGlsl(g, res, ty.List, func(i string) string { return v.At(i).Expr })
		if b.cond == nil {
			tail = body
			continue
		}
		tail = b.cond.Block() + "if (" + b.c.Expr + ") {\n" + body + "} else {\n" + tail + "}\n"
	}
	g.Push(tail)
	return GlslValue{Type: ty.Type, List: ty.List, Expr: res}, nil
}

// assignGlsl returns statements assigning elements to res.
func assignGlsl(g *GlslContext, res string, n int, elem func(i string) string) string {
	switch n {
	case Scalar:
		return res + " = " + elem("") + ";\n"
	case 0:
		return ""
	}
	i := g.Name()
	body := g.Fork()
	body.Push(res + "[" + i + "] = " + elem(i) + ";")
	loop := g.Fork()
	loop.Loop(i, n, body)
	return loop.Block()
}

// maxBigTerms bounds the number of terms of a sum or product.
const maxBigTerms = 1e6

// bigBounds extracts the index variable and lower bound of a big operator.
func bigBounds(n *BigSym) (string, Node, error) {
	if e, ok := n.Sub.(*Error); ok {
		return "", nil, e.Err
	}
	c, ok := n.Sub.(*Cmplist)
	if !ok || len(c.Ops) != 1 || c.Ops[0] != "=" {
		return "", nil, &SyntaxError{Msg: n.Op + " needs a lower bound like n=1"}
	}
	v, ok := c.Items[0].(*Var)
	if !ok || v.Class != VarPlain {
		return "", nil, &SyntaxError{Msg: "cannot use " + Format(c.Items[0]) + " as the index of " + n.Op}
	}
	if n.Sup == nil {
		return "", nil, &SyntaxError{Msg: n.Op + " needs an upper bound"}
	}
	return varName(v), c.Items[1], nil
}

// bigOp returns the operator and identity literal of a big operator.
func bigOp(op string) (string, string) {
	if op == "∏" {
		return "*", "1"
	}
	return "+", "0"
}

// bigInt converts a bound to an integer.
func (ctx *Context) bigInt(v JsValue, arg int, op string) (int64, error) {
	if v.List == Scalar {
		if t := ctx.reg.Type(v.Type); t != nil && t.Int != nil {
			if k, ok := t.Int(v.Value); ok {
				return k, nil
			}
		}
	}
	return 0, &DomainError{X: ctx.Format(v), Arg: arg, Func: op}
}

// jsBig sums or multiplies the body over an inclusive integer range.
func jsBig(ctx *Context, n *BigSym) (JsValue, error) {
	name, loNode, err := bigBounds(n)
	if err != nil {
		return JsValue{}, err
	}
	lo, err := ctx.Js(loNode)
	if err != nil {
		return JsValue{}, err
	}
	hi, err := ctx.Js(n.Sup)
	if err != nil {
		return JsValue{}, err
	}
	a, err := ctx.bigInt(lo, 1, n.Op)
	if err != nil {
		return JsValue{}, err
	}
	b, err := ctx.bigInt(hi, 2, n.Op)
	if err != nil {
		return JsValue{}, err
	}
	// The difference is computed unsigned so that distant bounds cannot
	// overflow past the limit.
	if a <= b && uint64(b)-uint64(a) >= maxBigTerms {
		return JsValue{}, &DomainError{X: ctx.Format(hi), Arg: 2, Func: n.Op}
	}
	op, identity := bigOp(n.Op)
	f, err := ctx.fn(op)
	if err != nil {
		return JsValue{}, err
	}
	acc, err := ctx.num(identity)
	if err != nil {
		return JsValue{}, err
	}
	defer ctx.scope()()
	for i := int64(0); a <= b && i <= b-a; i++ {
		kv, err := ctx.num(strconv.FormatInt(a+i, 10))
		if err != nil {
			return JsValue{}, err
		}
		ctx.js = ctx.js.with(name, kv)
		v, err := ctx.Js(n.Body)
		if err != nil {
			return JsValue{}, err
		}
		acc, err = f.Js(ctx, []JsValue{acc, v})
		if err != nil {
			return JsValue{}, err
		}
	}
	return acc, nil
}

// glslBig generates a loop accumulating the body into a local.
func glslBig(ctx *Context, g *GlslContext, n *BigSym) (GlslValue, error) {
	name, loNode, err := bigBounds(n)
	if err != nil {
		return GlslValue{}, err
	}
	lo, err := ctx.Glsl(loNode, g)
	if err != nil {
		return GlslValue{}, err
	}
	hi, err := ctx.Glsl(n.Sup, g)
	if err != nil {
		return GlslValue{}, err
	}
	if lo.List != Scalar || hi.List != Scalar {
		return GlslValue{}, errNotScalar
	}
	op, identity := bigOp(n.Op)
	f, err := ctx.fn(op)
	if err != nil {
		return GlslValue{}, err
	}
	init, err := ctx.glslNum(g, identity)
	if err != nil {
		return GlslValue{}, err
	}
	defer ctx.scope()()
	// Find the body's type first to declare the accumulator.
	probe := glslTarget{ctx, g.Fork()}
	if !probe.g.probe {
		probe.g = newProbe(false)
	}
	if err := probe.bind([]binding{{name: name}}, []GlslValue{{Type: lo.Type, List: Scalar}}); err != nil {
		return GlslValue{}, err
	}
	bt, err := probe.eval(n.Body)
	if err != nil {
		return GlslValue{}, err
	}
	if bt.List != Scalar {
		return GlslValue{}, &BackendError{Backend: "glsl", What: "list-valued " + n.Op}
	}
	accTy, err := ctx.reg.Unify(init.Type, bt.Type)
	if err != nil {
		return GlslValue{}, err
	}
	if g.Probing() {
		return GlslValue{Type: accTy, List: Scalar}, nil
	}
	aty, err := ctx.reg.GlslType(accTy)
	if err != nil {
		return GlslValue{}, err
	}
	ity, err := ctx.reg.GlslType(lo.Type)
	if err != nil {
		return GlslValue{}, err
	}
	start, err := ctx.reg.CoerceGlslVal(GlslVal{Type: init.Type, Expr: init.Expr}, accTy)
	if err != nil {
		return GlslValue{}, err
	}
	acc := g.Cache(aty, start.Expr)
	last := g.Cache(ity, hi.Expr)
	k := g.Name()
	body := g.Fork()
	ctx.gl = ctx.gl.with(name, GlslValue{Type: lo.Type, List: Scalar, Expr: k})
	v, err := ctx.Glsl(n.Body, body)
	if err != nil {
		return GlslValue{}, err
	}
	r, err := f.Glsl(ctx, body, []GlslValue{{Type: accTy, List: Scalar, Expr: acc}, v})
	if err != nil {
		return GlslValue{}, err
	}
	if r.Type != accTy || r.List != Scalar {
		return GlslValue{}, &TypeError{Func: op, Types: []TypeName{accTy, v.Type}}
	}
	body.Push(acc + " = " + r.Expr + ";")
	g.Push("for (" + ity + " " + k + " = " + lo.Expr + "; " + k + " <= " + last + "; " + k + "++) {\n" + body.Block() + "}")
	return GlslValue{Type: accTy, List: Scalar, Expr: acc}, nil
}
