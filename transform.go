package mathexpr

import (
	"sort"
	"strconv"
)

// transformer evaluates one kind of node for each backend and collects its
// free variables.
type transformer struct {
	js   func(ctx *Context, n Node) (JsValue, error)
	glsl func(ctx *Context, g *GlslContext, n Node) (GlslValue, error)
	deps func(d *depset, n Node)
}

// transformers has an entry for every node kind. It is filled in init
// because the transformers recurse through it.
var transformers map[NodeKind]transformer

func init() {
	transformers = map[NodeKind]transformer{
		KindNum:        shared(evalNum[JsValue], evalNum[GlslValue], depsNone[*Num]),
		KindVar:        shared(evalVar[JsValue], evalVar[GlslValue], depsVar),
		KindPunc:       shared(evalToken[JsValue, *Punc], evalToken[GlslValue, *Punc], depsPunc),
		KindGroup:      shared(evalGroup[JsValue], evalGroup[GlslValue], depsGroup),
		KindSup:        shared(evalToken[JsValue, *SupToken], evalToken[GlslValue, *SupToken], depsSup),
		KindSub:        shared(evalToken[JsValue, *SubToken], evalToken[GlslValue, *SubToken], depsSub),
		KindBig:        shared(evalToken[JsValue, *BigToken], evalToken[GlslValue, *BigToken], depsBigToken),
		KindOp:         shared(evalOp[JsValue], evalOp[GlslValue], depsOp),
		KindJuxtaposed: shared(evalJuxtaposed[JsValue], evalJuxtaposed[GlslValue], depsJuxtaposed),
		KindCall:       shared(evalCall[JsValue], evalCall[GlslValue], depsCall),
		KindCmplist:    shared(evalCmplist[JsValue], evalCmplist[GlslValue], depsCmplist),
		KindCommalist:  shared(evalCommalist[JsValue], evalCommalist[GlslValue], depsCommalist),
		KindSuffixed:   shared(evalSuffixed[JsValue], evalSuffixed[GlslValue], depsSuffixed),
		KindPiecewise:  split(jsPiecewise, glslPiecewise, depsPiecewise),
		KindMagicvar:   shared(evalMagicvar[JsValue], evalMagicvar[GlslValue], depsMagicvar),
		KindBigSym:     split(jsBig, glslBig, depsBigSym),
		KindError:      shared(evalError[JsValue], evalError[GlslValue], depsNone[*Error]),
		KindVoid:       shared(evalVoid[JsValue], evalVoid[GlslValue], depsNone[*Void]),
	}
}

func transformerOf(n Node) transformer {
	if n == nil {
		panic("mathexpr: nil node")
	}
	t, ok := transformers[n.Kind()]
	if !ok {
		panic("mathexpr: no transformer for node kind " + n.Kind().String())
	}
	return t
}

// shared builds a transformer from one implementation written against both
// targets.
func shared[N Node](js func(target[JsValue], N) (JsValue, error), gl func(target[GlslValue], N) (GlslValue, error), deps func(*depset, N)) transformer {
	return transformer{
		js: func(ctx *Context, n Node) (JsValue, error) {
			return js(jsTarget{ctx}, n.(N))
		},
		glsl: func(ctx *Context, g *GlslContext, n Node) (GlslValue, error) {
			return gl(glslTarget{ctx, g}, n.(N))
		},
		deps: func(d *depset, n Node) {
			deps(d, n.(N))
		},
	}
}

// split builds a transformer from separate implementations per backend.
func split[N Node](js func(*Context, N) (JsValue, error), gl func(*Context, *GlslContext, N) (GlslValue, error), deps func(*depset, N)) transformer {
	return transformer{
		js: func(ctx *Context, n Node) (JsValue, error) {
			return js(ctx, n.(N))
		},
		glsl: func(ctx *Context, g *GlslContext, n Node) (GlslValue, error) {
			return gl(ctx, g, n.(N))
		},
		deps: func(d *depset, n Node) {
			deps(d, n.(N))
		},
	}
}

func evalNum[V any](t target[V], n *Num) (V, error) {
	return t.num(n.Value)
}

func evalVar[V any](t target[V], n *Var) (V, error) {
	var zero V
	switch n.Class {
	case VarPrefix, VarMagic:
		return zero, &OperandError{Op: n.Name, Kind: MissingArgument}
	case VarWordOp:
		return zero, &OperandError{Op: n.Name, Kind: MissingLeft}
	}
	return t.lookup(varName(n))
}

// varName is the name under which a variable is bound. Subscripts are part
// of the name, so x_1 and x_{1} are the same variable, distinct from x.
func varName(v *Var) string {
	if v.Sub == nil {
		return v.Name
	}
	switch s := v.Sub.(type) {
	case *Num:
		return v.Name + "_" + s.Value
	case *Var:
		return v.Name + "_" + varName(s)
	}
	return v.Name + "_" + Format(v.Sub)
}

func evalToken[V any, N Node](t target[V], n N) (V, error) {
	var zero V
	return zero, &SyntaxError{Msg: "unexpected " + Format(n)}
}

func evalGroup[V any](t target[V], n *Group) (V, error) {
	var zero V
	switch n.Lhs {
	case "(":
		switch v := n.Value.(type) {
		case *Commalist:
			args, err := evalAll(t, v.Items)
			if err != nil {
				return zero, err
			}
			return t.call("()", args)
		case *Void:
			return zero, &SyntaxError{Msg: "empty parentheses"}
		}
	case "[":
		// [f(x) for x=l] is the comprehension itself, not a list holding it.
		if op, ok := n.Value.(*Op); ok && op.Op == "for" {
			return t.eval(op)
		}
		items, err := evalAll(t, Args(n.Value))
		if err != nil {
			return zero, err
		}
		return t.list(items)
	}
	return t.eval(n.Value)
}

func evalOp[V any](t target[V], n *Op) (V, error) {
	var zero V
	switch n.Op {
	case ":":
		return zero, &SyntaxError{Msg: `":" outside a piecewise expression`}
	case "with":
		binds, err := bindingList(n.Op, n.B)
		if err != nil {
			return zero, err
		}
		vals := make([]V, len(binds))
		for i, b := range binds {
			vals[i], err = t.eval(b.value)
			if err != nil {
				return zero, err
			}
		}
		defer t.context().scope()()
		if err := t.bind(binds, vals); err != nil {
			return zero, err
		}
		return t.eval(n.A)
	case "for":
		binds, err := bindingList(n.Op, n.B)
		if err != nil {
			return zero, err
		}
		return t.comprehension(n.A, binds)
	}
	a, err := t.eval(n.A)
	if err != nil {
		return zero, err
	}
	if n.B == nil {
		return t.call(n.Op, []V{a})
	}
	b, err := t.eval(n.B)
	if err != nil {
		return zero, err
	}
	return t.call(opName(n.Op), []V{a, b})
}

// opName maps operator spellings to registry names.
func opName(op string) string {
	if op == "↑" {
		return "^"
	}
	return op
}

// binding is one name=value clause of with or for.
type binding struct {
	name  string
	value Node
}

// bindingList extracts the name=value clauses on the right of a binding
// operator.
func bindingList(op string, n Node) ([]binding, error) {
	items := Args(n)
	if len(items) == 0 {
		return nil, &OperandError{Op: op, Kind: MissingRight}
	}
	r := make([]binding, 0, len(items))
	for _, it := range items {
		if e, ok := it.(*Error); ok {
			return nil, e.Err
		}
		c, ok := it.(*Cmplist)
		if !ok || len(c.Ops) != 1 || c.Ops[0] != "=" {
			return nil, &SyntaxError{Msg: "expected name=value after " + strconv.Quote(op)}
		}
		v, ok := c.Items[0].(*Var)
		if !ok || v.Class != VarPlain {
			return nil, &SyntaxError{Msg: "cannot bind " + Format(c.Items[0]) + " with " + strconv.Quote(op)}
		}
		r = append(r, binding{name: varName(v), value: c.Items[1]})
	}
	return r, nil
}

func evalJuxtaposed[V any](t target[V], n *Juxtaposed) (V, error) {
	var zero V
	acc, err := t.eval(n.Nodes[0])
	if err != nil {
		return zero, err
	}
	for _, m := range n.Nodes[1:] {
		v, err := t.eval(m)
		if err != nil {
			return zero, err
		}
		acc, err = t.call("*", []V{acc, v})
		if err != nil {
			return zero, err
		}
	}
	return acc, nil
}

func evalCall[V any](t target[V], n *Call) (V, error) {
	var zero V
	args, err := evalAll(t, Args(n.Args))
	if err != nil {
		return zero, err
	}
	if n.Name.Sub != nil {
		// log_2 x passes the subscript as a final argument.
		s, err := t.eval(n.Name.Sub)
		if err != nil {
			return zero, err
		}
		args = append(args, s)
	}
	return t.call(n.Name.Name, args)
}

func evalCmplist[V any](t target[V], n *Cmplist) (V, error) {
	var zero V
	vals, err := evalAll(t, n.Items)
	if err != nil {
		return zero, err
	}
	var acc V
	for i, op := range n.Ops {
		r, err := t.call(op, []V{vals[i], vals[i+1]})
		if err != nil {
			return zero, err
		}
		if i == 0 {
			acc = r
			continue
		}
		acc, err = t.call("and", []V{acc, r})
		if err != nil {
			return zero, err
		}
	}
	return acc, nil
}

func evalCommalist[V any](t target[V], n *Commalist) (V, error) {
	var zero V
	return zero, &SyntaxError{Msg: "a comma-separated list must be inside brackets"}
}

func evalSuffixed[V any](t target[V], n *Suffixed) (V, error) {
	var zero V
	sfx := n.Suffixes
	var cur V
	if name, ok := funcBase(t.context(), n.Base); ok {
		// Exponents before the arguments apply to the result, as in sin²(x).
		k := 0
		for k < len(sfx) && sfx[k].Kind == SuffixExp {
			k++
		}
		if k == len(sfx) || sfx[k].Kind != SuffixCall {
			return zero, &OperandError{Op: name, Kind: MissingArgument}
		}
		args, err := evalAll(t, Args(sfx[k].Arg))
		if err != nil {
			return zero, err
		}
		cur, err = t.call(name, args)
		if err != nil {
			return zero, err
		}
		for _, s := range sfx[:k] {
			cur, err = applySuffix(t, cur, s)
			if err != nil {
				return zero, err
			}
		}
		sfx = sfx[k+1:]
	} else {
		var err error
		cur, err = t.eval(n.Base)
		if err != nil {
			return zero, err
		}
	}
	for _, s := range sfx {
		var err error
		cur, err = applySuffix(t, cur, s)
		if err != nil {
			return zero, err
		}
	}
	return cur, nil
}

// funcBase returns the function name of a suffix chain's base, if it names a
// function: a prefix function, or a plain name which is not a variable but
// is a registry function.
func funcBase(ctx *Context, n Node) (string, bool) {
	v, ok := n.(*Var)
	if !ok || v.Sub != nil {
		return "", false
	}
	switch v.Class {
	case VarPrefix:
		return v.Name, true
	case VarPlain:
		return v.Name, ctx.isFunc(v.Name)
	}
	return "", false
}

func applySuffix[V any](t target[V], cur V, s Suffix) (V, error) {
	var zero V
	switch s.Kind {
	case SuffixProp:
		return t.call("."+s.Name, []V{cur})
	case SuffixMethod:
		args, err := evalAll(t, Args(s.Arg))
		if err != nil {
			return zero, err
		}
		return t.call(s.Name, append([]V{cur}, args...))
	case SuffixCall:
		// A call on a value is multiplication, as in 2(3).
		v, err := evalGroup(t, &Group{Lhs: "(", Rhs: ")", Value: s.Arg})
		if err != nil {
			return zero, err
		}
		return t.call("*", []V{cur, v})
	case SuffixExp:
		e, err := t.eval(s.Arg)
		if err != nil {
			return zero, err
		}
		return t.call("^", []V{cur, e})
	case SuffixFactorial:
		if s.Arg == nil {
			return t.call("!", []V{cur})
		}
		k, err := t.eval(s.Arg)
		if err != nil {
			return zero, err
		}
		return t.call("!", []V{cur, k})
	case SuffixIndex:
		i, err := t.eval(s.Arg)
		if err != nil {
			return zero, err
		}
		return t.call("[]", []V{cur, i})
	}
	panic("mathexpr: invalid suffix kind " + strconv.Itoa(int(s.Kind)))
}

func evalMagicvar[V any](t target[V], n *Magicvar) (V, error) {
	return t.magic(n)
}

func evalError[V any](t target[V], n *Error) (V, error) {
	var zero V
	return zero, n.Err
}

func evalVoid[V any](t target[V], n *Void) (V, error) {
	var zero V
	return zero, &SyntaxError{Msg: "empty expression"}
}

func evalAll[V any](t target[V], nodes []Node) ([]V, error) {
	r := make([]V, len(nodes))
	for i, n := range nodes {
		var err error
		r[i], err = t.eval(n)
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

// depset collects free variable names.
type depset struct {
	names map[string]bool
	// bound counts the binders in scope for each name.
	bound map[string]int
	// isFunc reports whether a name used as a call base is a function. If
	// nil, such names are counted as variables.
	isFunc func(string) bool
}

func newDepset(isFunc func(string) bool) *depset {
	return &depset{
		names:  make(map[string]bool),
		bound:  make(map[string]int),
		isFunc: isFunc,
	}
}

func (d *depset) walk(n Node) {
	if n == nil {
		return
	}
	transformerOf(n).deps(d, n)
}

func (d *depset) add(name string) {
	if d.bound[name] == 0 {
		d.names[name] = true
	}
}

func (d *depset) push(binds []binding) {
	for _, b := range binds {
		d.bound[b.name]++
	}
}

func (d *depset) pop(binds []binding) {
	for _, b := range binds {
		d.bound[b.name]--
	}
}

func (d *depset) sorted() []string {
	r := make([]string, 0, len(d.names))
	for k := range d.names {
		r = append(r, k)
	}
	sort.Strings(r)
	return r
}

// freeVars returns the free variable names of a tree in sorted order.
func freeVars(n Node) []string {
	d := newDepset(nil)
	d.walk(n)
	return d.sorted()
}

func depsNone[N Node](d *depset, n N) {}

func depsVar(d *depset, n *Var) {
	if n.Class == VarPlain {
		d.add(varName(n))
	}
}

func depsPunc(d *depset, n *Punc) { d.walk(n.Sub) }

func depsGroup(d *depset, n *Group) { d.walk(n.Value) }

func depsSup(d *depset, n *SupToken) { d.walk(n.Sup) }

func depsSub(d *depset, n *SubToken) { d.walk(n.Sub) }

func depsBigToken(d *depset, n *BigToken) {
	d.walk(n.Sub)
	d.walk(n.Sup)
}

func depsOp(d *depset, n *Op) {
	if n.Op == "with" || n.Op == "for" {
		binds, err := bindingList(n.Op, n.B)
		if err == nil {
			for _, b := range binds {
				d.walk(b.value)
			}
			d.push(binds)
			d.walk(n.A)
			d.pop(binds)
			return
		}
	}
	d.walk(n.A)
	d.walk(n.B)
}

func depsJuxtaposed(d *depset, n *Juxtaposed) {
	for _, m := range n.Nodes {
		d.walk(m)
	}
}

func depsCall(d *depset, n *Call) {
	d.walk(n.Name.Sub)
	d.walk(n.Args)
}

func depsCmplist(d *depset, n *Cmplist) {
	for _, m := range n.Items {
		d.walk(m)
	}
}

func depsCommalist(d *depset, n *Commalist) {
	for _, m := range n.Items {
		d.walk(m)
	}
}

func depsSuffixed(d *depset, n *Suffixed) {
	base := true
	if v, ok := n.Base.(*Var); ok && v.Sub == nil {
		switch {
		case v.Class == VarPrefix:
			base = false
		case d.isFunc != nil && v.Class == VarPlain && d.isFunc(v.Name):
			base = false
		}
	}
	if base {
		d.walk(n.Base)
	}
	for _, s := range n.Suffixes {
		d.walk(s.Arg)
	}
}

func depsPiecewise(d *depset, n *Piecewise) {
	for _, p := range n.Pieces {
		d.walk(p.Cond)
		d.walk(p.Value)
	}
}

func depsMagicvar(d *depset, n *Magicvar) {
	d.walk(n.Contents)
}

func depsBigSym(d *depset, n *BigSym) {
	d.walk(n.Sup)
	name, lo, err := bigBounds(n)
	if err != nil {
		d.walk(n.Sub)
		d.walk(n.Body)
		return
	}
	d.walk(lo)
	binds := []binding{{name: name}}
	d.push(binds)
	d.walk(n.Body)
	d.pop(binds)
}
