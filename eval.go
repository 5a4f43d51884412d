package mathexpr

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Context is a context for evaluating expressions: a registry, a precision,
// and variable bindings. It is not safe to use a Context concurrently.
type Context struct {
	reg  *Registry
	prec uint
	// js and gl are the variable bindings for values and shader expressions.
	js, gl bindings
	// lits caches parsed numeric literals at prec.
	lits    *lru.Cache[string, JsVal]
	litsize int
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption()
}

type (
	varopt struct {
		name string
		val  JsValue
	}
	varsopt    map[string]JsValue
	glslvaropt struct {
		name string
		val  GlslValue
	}
	precopt uint
	litopt  int
)

func (varopt) ctxOption()     {}
func (varsopt) ctxOption()    {}
func (glslvaropt) ctxOption() {}
func (precopt) ctxOption()    {}
func (litopt) ctxOption()     {}

// SetVar sets the value of a variable in the context.
func SetVar(name string, val JsValue) ContextOption {
	return varopt{name, val}
}

// SetVars sets the values of any number of variables in the context.
func SetVars(vars map[string]JsValue) ContextOption {
	return varsopt(vars)
}

// SetGlslVar sets the shader expression of a variable in the context.
func SetGlslVar(name string, val GlslValue) ContextOption {
	return glslvaropt{name, val}
}

// Prec sets the precision of calculations.
func Prec(prec uint) ContextOption {
	return precopt(prec)
}

// LiteralCache sets the number of parsed numeric literals the context keeps.
func LiteralCache(size int) ContextOption {
	return litopt(size)
}

const defaultLiteralCache = 256

// NewContext creates a new evaluation context using the definitions in reg.
// If no precision is given, the default is 64.
func NewContext(reg *Registry, opts ...ContextOption) *Context {
	ctx := Context{
		reg:     reg,
		prec:    64,
		js:      newBindings(),
		gl:      newBindings(),
		litsize: defaultLiteralCache,
	}
	return ctx.Clone(opts...)
}

// Clone creates a copy of a context and applies options to it. Variables set
// on the copy do not affect the original.
func (ctx *Context) Clone(opts ...ContextOption) *Context {
	n := Context{
		reg:     ctx.reg,
		prec:    ctx.prec,
		js:      ctx.js,
		gl:      ctx.gl,
		litsize: ctx.litsize,
	}
	// First, check for precision and cache settings. Loop backward so we
	// apply the last of each.
	precset, litset := false, false
	for i := len(opts) - 1; i >= 0; i-- {
		switch opt := opts[i].(type) {
		case precopt:
			if !precset {
				n.prec = uint(opt)
				precset = true
			}
		case litopt:
			if !litset {
				n.litsize = int(opt)
				litset = true
			}
		}
	}
	if n.litsize < 1 {
		n.litsize = 1
	}
	var err error
	n.lits, err = lru.New[string, JsVal](n.litsize)
	if err != nil {
		panic(err)
	}
	// Literals are only reusable at the same precision.
	if ctx.lits != nil && n.prec == ctx.prec {
		for _, k := range ctx.lits.Keys() {
			if v, ok := ctx.lits.Peek(k); ok {
				n.lits.Add(k, v)
			}
		}
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case varopt:
			n.js = n.js.with(opt.name, opt.val)
		case varsopt:
			for k, v := range opt {
				n.js = n.js.with(k, v)
			}
		case glslvaropt:
			n.gl = n.gl.with(opt.name, opt.val)
		case precopt, litopt:
			// Already done. Do nothing.
		default:
			panic("mathexpr: unknown option type")
		}
	}
	return &n
}

// Registry returns the registry the context evaluates with.
func (ctx *Context) Registry() *Registry {
	return ctx.reg
}

// Prec returns the precision to which values are computed in the context.
func (ctx *Context) Prec() uint {
	return ctx.prec
}

// Set sets the value of a variable. Returns ctx for chaining.
func (ctx *Context) Set(name string, value JsValue) *Context {
	ctx.js = ctx.js.with(name, value)
	return ctx
}

// SetGlsl sets the shader expression of a variable. Returns ctx for chaining.
func (ctx *Context) SetGlsl(name string, value GlslValue) *Context {
	ctx.gl = ctx.gl.with(name, value)
	return ctx
}

// Lookup returns the value of a variable set in the context.
func (ctx *Context) Lookup(name string) (JsValue, bool) {
	v, ok := ctx.js.get(name)
	if !ok {
		return JsValue{}, false
	}
	return v.(JsValue), true
}

// Js evaluates a tree to a value.
func (ctx *Context) Js(n Node) (JsValue, error) {
	return transformerOf(n).js(ctx, n)
}

// Glsl generates shader code for a tree. Statements the result depends on
// are appended to g's block, and helper functions are declared in g.
func (ctx *Context) Glsl(n Node, g *GlslContext) (GlslValue, error) {
	return transformerOf(n).glsl(ctx, g, n)
}

// Deps returns the sorted names of the free variables of a tree. Names used
// only to call registry functions are excluded.
func (ctx *Context) Deps(n Node) []string {
	d := newDepset(ctx.isFunc)
	d.walk(n)
	return d.sorted()
}

// Eval evaluates a parsed expression.
func (ctx *Context) Eval(e *Expr) (JsValue, error) {
	return ctx.Js(e.n)
}

// Shader generates the source of a GLSL function named fn computing a parsed
// expression, preceded by the helper functions it uses.
func (ctx *Context) Shader(e *Expr, fn string) (string, error) {
	g := NewGlslContext()
	v, err := ctx.Glsl(e.n, g)
	if err != nil {
		return "", err
	}
	ty, err := ctx.reg.GlslType(v.Type)
	if err != nil {
		return "", err
	}
	if v.List != Scalar {
		ty += "[" + strconv.Itoa(v.List) + "]"
	}
	return g.Source(ty+" "+fn+"()", v), nil
}

// TypeOf determines the type of a tree without evaluating it.
func (ctx *Context) TypeOf(n Node) (Type, error) {
	v, err := ctx.Glsl(n, newProbe(true))
	if err != nil {
		return Type{}, err
	}
	return v.Ty(), nil
}

// Garbage returns the garbage value of a type.
func (ctx *Context) Garbage(ty Type) JsValue {
	return ctx.reg.Garbage(ty)
}

// Format formats a value using its type's display function.
func (ctx *Context) Format(v JsValue) string {
	var display func(any) string
	if t := ctx.reg.Type(v.Type); t != nil {
		display = t.Display
	}
	one := func(x any) string {
		if display == nil {
			return fmt.Sprint(x)
		}
		return display(x)
	}
	if v.List == Scalar {
		return one(v.Value)
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, x := range v.Value.([]any) {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(one(x))
	}
	b.WriteByte(']')
	return b.String()
}

var errNoLiteral = errors.New("mathexpr: registry defines no numeric literals")

// num gets a possibly cached number from its text.
func (ctx *Context) num(s string) (JsValue, error) {
	if v, ok := ctx.lits.Get(s); ok {
		return JsScalar(v), nil
	}
	lit := ctx.reg.Literal()
	if lit == nil || lit.Js == nil {
		return JsValue{}, errNoLiteral
	}
	v, err := lit.Js(s, ctx.prec)
	if err != nil {
		return JsValue{}, err
	}
	ctx.lits.Add(s, v)
	return JsScalar(v), nil
}

// glslNum converts literal text to a shader expression.
func (ctx *Context) glslNum(g *GlslContext, s string) (GlslValue, error) {
	lit := ctx.reg.Literal()
	if lit == nil {
		return GlslValue{}, errNoLiteral
	}
	if g.Probing() {
		return GlslValue{Type: lit.Type, List: Scalar}, nil
	}
	if lit.Glsl == nil {
		return GlslValue{}, &BackendError{Backend: "glsl", What: "numeric literals"}
	}
	v, err := lit.Glsl(s)
	if err != nil {
		return GlslValue{}, err
	}
	return GlslScalar(v), nil
}

// lookupJs finds the value of a variable or global.
func (ctx *Context) lookupJs(name string) (JsValue, error) {
	if v, ok := ctx.js.get(name); ok {
		return v.(JsValue), nil
	}
	if gl, ok := ctx.reg.Global(name); ok {
		if gl.Js == nil {
			return JsValue{}, &BackendError{Backend: "js", What: strconv.Quote(name)}
		}
		return gl.Js(ctx)
	}
	return JsValue{}, &NameError{Name: name}
}

// lookupGlsl finds the shader expression of a variable or global. Probes
// started from value evaluation see value bindings as types.
func (ctx *Context) lookupGlsl(g *GlslContext, name string) (GlslValue, error) {
	if g.jsScope {
		if v, ok := ctx.js.get(name); ok {
			v := v.(JsValue)
			return GlslValue{Type: v.Type, List: v.List}, nil
		}
	} else if v, ok := ctx.gl.get(name); ok {
		return v.(GlslValue), nil
	}
	gl, ok := ctx.reg.Global(name)
	if !ok {
		return GlslValue{}, &NameError{Name: name}
	}
	if g.Probing() && gl.Js != nil && (g.jsScope || gl.Glsl == nil) {
		v, err := gl.Js(ctx)
		if err != nil {
			return GlslValue{}, err
		}
		return GlslValue{Type: v.Type, List: v.List}, nil
	}
	if gl.Glsl == nil {
		return GlslValue{}, &BackendError{Backend: "glsl", What: strconv.Quote(name)}
	}
	return gl.Glsl(ctx, g)
}

// isFunc returns whether a plain name refers to a registry function rather
// than a variable or global.
func (ctx *Context) isFunc(name string) bool {
	if _, ok := ctx.js.get(name); ok {
		return false
	}
	if _, ok := ctx.gl.get(name); ok {
		return false
	}
	if _, ok := ctx.reg.Global(name); ok {
		return false
	}
	return ctx.reg.Func(name) != nil
}

// fn finds a registry function.
func (ctx *Context) fn(name string) (Func, error) {
	f := ctx.reg.Func(name)
	if f == nil {
		return nil, &NameError{Name: name, Func: true}
	}
	return f, nil
}

// truth evaluates a condition value.
func (ctx *Context) truth(c JsValue) (bool, error) {
	if c.List != Scalar {
		return false, errNotScalar
	}
	t := ctx.reg.Type(c.Type)
	if t == nil || t.Truth == nil {
		return false, &TypeError{Types: []TypeName{c.Type}, To: "condition"}
	}
	return t.Truth(c.Value), nil
}

// checkCond verifies that a shader value can be used as a condition.
func (ctx *Context) checkCond(c GlslValue) error {
	if c.List != Scalar {
		return errNotScalar
	}
	t := ctx.reg.Type(c.Type)
	if t == nil || t.Truth == nil {
		return &TypeError{Types: []TypeName{c.Type}, To: "condition"}
	}
	return nil
}

// Eval is a shortcut to parse an expression and return its result.
func Eval(src io.RuneScanner, reg *Registry, opts ...ContextOption) (JsValue, error) {
	a, err := Parse(src)
	if err != nil {
		return JsValue{}, err
	}
	return NewContext(reg, opts...).Eval(a)
}

// EvalString is a shortcut to parse and evaluate a string expression.
func EvalString(src string, reg *Registry, opts ...ContextOption) (JsValue, error) {
	return Eval(strings.NewReader(src), reg, opts...)
}
