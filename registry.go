package mathexpr

import (
	"errors"
	"sort"
	"strconv"
)

// Coercion converts values of one type to another.
type Coercion struct {
	// Js converts a concrete value.
	Js func(v any) any
	// Glsl converts a GLSL expression.
	Glsl func(expr string) string
}

// Garbage is the value of a type used where no meaningful value exists, such
// as a piecewise expression with no matching branch or the mean of an empty
// list. For real numbers, it is NaN.
type Garbage struct {
	Js   any
	Glsl string
}

// TypeInfo describes a value type.
type TypeInfo struct {
	Name TypeName
	// Glsl is the GLSL type name. Types without one cannot be used in GLSL.
	Glsl string
	// Garbage is the type's garbage value.
	Garbage Garbage
	// Coerce lists the types to which values of this type convert. NewRegistry
	// extends it with every type reachable through a chain of coercions.
	Coerce map[TypeName]Coercion
	// Display formats a concrete value. If nil, values are formatted with fmt.
	Display func(v any) string
	// Truth, if not nil, marks the type as usable as a condition and reports
	// whether a value is true.
	Truth func(v any) bool
	// Int, if not nil, converts a value to an integer for use as a bound of a
	// sum or product. It reports false if the value is not an integer.
	Int func(v any) (int64, bool)
}

// Global is a named value defined for every evaluation.
type Global struct {
	Js   func(ctx *Context) (JsValue, error)
	Glsl func(ctx *Context, g *GlslContext) (GlslValue, error)
}

// Magic evaluates a magic variable, like const pi or count(list).
type Magic struct {
	Js   func(ctx *Context, m *Magicvar) (JsValue, error)
	Glsl func(ctx *Context, g *GlslContext, m *Magicvar) (GlslValue, error)
}

// Literal converts numeric literal text to values.
type Literal struct {
	// Type is the type of every literal.
	Type TypeName
	// Js converts literal text at a precision in bits.
	Js func(text string, prec uint) (JsVal, error)
	// Glsl converts literal text to a GLSL expression.
	Glsl func(text string) (GlslVal, error)
}

// Func is a function or operator callable from expressions. Operators are
// named by their text, e.g. "+" or "≤". Unary minus is "-" with one argument,
// and property accesses are named with a leading dot, e.g. ".x".
type Func interface {
	// Name returns the name the function is registered under.
	Name() string
	// Js calls the function on concrete values.
	Js(ctx *Context, args []JsValue) (JsValue, error)
	// Glsl generates code for the function. If g is probing, the function
	// need only determine the result type.
	Glsl(ctx *Context, g *GlslContext, args []GlslValue) (GlslValue, error)
}

// Package is a set of definitions to install in a Registry.
type Package struct {
	Name    string
	Types   []*TypeInfo
	Funcs   []Func
	Globals map[string]Global
	Magic   map[string]Magic
	// Literal, if not nil, defines numeric literals. At most one package in
	// a registry may define it.
	Literal *Literal
}

// Registry is the set of types, functions, and globals available to
// expressions. A Registry is immutable after creation and is safe to share
// between goroutines.
type Registry struct {
	types   map[TypeName]*TypeInfo
	funcs   map[string]Func
	globals map[string]Global
	magic   map[string]Magic
	literal *Literal
}

// NewRegistry combines packages into a registry. Distributed functions with
// the same name in different packages are merged, keeping the overloads of
// earlier packages first. Any other duplicate definition is an error, as is a
// coercion to a type no package defines.
func NewRegistry(pkgs ...*Package) (*Registry, error) {
	r := Registry{
		types:   make(map[TypeName]*TypeInfo),
		funcs:   make(map[string]Func),
		globals: make(map[string]Global),
		magic:   make(map[string]Magic),
	}
	for _, p := range pkgs {
		if err := r.install(p); err != nil {
			return nil, err
		}
	}
	for _, t := range r.types {
		for to := range t.Coerce {
			if r.types[to] == nil {
				return nil, errors.New("mathexpr: type " + string(t.Name) + " coerces to undefined type " + string(to))
			}
		}
	}
	r.closeCoercions()
	return &r, nil
}

func (r *Registry) install(p *Package) error {
	for _, t := range p.Types {
		if r.types[t.Name] != nil {
			return errors.New("mathexpr: package " + p.Name + " redefines type " + string(t.Name))
		}
		// Copy so that the closure never modifies package definitions.
		c := *t
		c.Coerce = make(map[TypeName]Coercion, len(t.Coerce))
		for k, v := range t.Coerce {
			c.Coerce[k] = v
		}
		r.types[t.Name] = &c
	}
	for _, f := range p.Funcs {
		name := f.Name()
		old, ok := r.funcs[name]
		if !ok {
			r.funcs[name] = f
			continue
		}
		a, aok := old.(*DistFunc)
		b, bok := f.(*DistFunc)
		if !aok || !bok {
			return errors.New("mathexpr: package " + p.Name + " redefines function " + strconv.Quote(name))
		}
		r.funcs[name] = &DistFunc{
			Label:     name,
			Overloads: append(append([]Overload(nil), a.Overloads...), b.Overloads...),
		}
	}
	for k, v := range p.Globals {
		if _, ok := r.globals[k]; ok {
			return errors.New("mathexpr: package " + p.Name + " redefines global " + strconv.Quote(k))
		}
		r.globals[k] = v
	}
	for k, v := range p.Magic {
		if _, ok := r.magic[k]; ok {
			return errors.New("mathexpr: package " + p.Name + " redefines magic word " + strconv.Quote(k))
		}
		r.magic[k] = v
	}
	if p.Literal != nil {
		if r.literal != nil {
			return errors.New("mathexpr: package " + p.Name + " redefines numeric literals")
		}
		r.literal = p.Literal
	}
	return nil
}

// closeCoercions adds a direct coercion for every chain of coercions, repeating
// until no new edges appear. Names are visited in sorted order so that the
// composed coercion chosen for each pair is deterministic.
func (r *Registry) closeCoercions() {
	names := make([]TypeName, 0, len(r.types))
	for k := range r.types {
		names = append(names, k)
	}
	sortTypeNames(names)
	for changed := true; changed; {
		changed = false
		for _, a := range names {
			ta := r.types[a]
			for _, b := range coercionTargets(ta) {
				ab := ta.Coerce[b]
				tb := r.types[b]
				for _, c := range coercionTargets(tb) {
					if c == a {
						continue
					}
					if _, ok := ta.Coerce[c]; ok {
						continue
					}
					ta.Coerce[c] = compose(ab, tb.Coerce[c])
					changed = true
				}
			}
		}
	}
}

func coercionTargets(t *TypeInfo) []TypeName {
	r := make([]TypeName, 0, len(t.Coerce))
	for k := range t.Coerce {
		r = append(r, k)
	}
	sortTypeNames(r)
	return r
}

func sortTypeNames(names []TypeName) {
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
}

// compose chains two coercions. A missing half leaves its backend missing.
func compose(f, g Coercion) Coercion {
	var c Coercion
	if f.Js != nil && g.Js != nil {
		c.Js = func(v any) any { return g.Js(f.Js(v)) }
	}
	if f.Glsl != nil && g.Glsl != nil {
		c.Glsl = func(expr string) string { return g.Glsl(f.Glsl(expr)) }
	}
	return c
}

// Type returns the definition of a type, or nil if there is none.
func (r *Registry) Type(name TypeName) *TypeInfo {
	return r.types[name]
}

// Func returns the function with the given name, or nil if there is none.
func (r *Registry) Func(name string) Func {
	return r.funcs[name]
}

// Global returns a global definition.
func (r *Registry) Global(name string) (Global, bool) {
	g, ok := r.globals[name]
	return g, ok
}

// Magic returns the handler for a magic word.
func (r *Registry) Magic(name string) (Magic, bool) {
	m, ok := r.magic[name]
	return m, ok
}

// Literal returns the numeric literal definition, or nil if no package
// defines one.
func (r *Registry) Literal() *Literal {
	return r.literal
}

// CanCoerce returns whether values of type from convert to type to.
func (r *Registry) CanCoerce(from, to TypeName) bool {
	if from == to {
		return true
	}
	t := r.types[from]
	if t == nil {
		return false
	}
	_, ok := t.Coerce[to]
	return ok
}

// Coercion returns the coercion from one type to another. The coercion from a
// type to itself is the identity.
func (r *Registry) Coercion(from, to TypeName) (Coercion, bool) {
	if from == to {
		return Coercion{
			Js:   func(v any) any { return v },
			Glsl: func(expr string) string { return expr },
		}, true
	}
	t := r.types[from]
	if t == nil {
		return Coercion{}, false
	}
	c, ok := t.Coerce[to]
	return c, ok
}

// Unify finds the first of the given types to which all the others coerce.
func (r *Registry) Unify(tys ...TypeName) (TypeName, error) {
	if len(tys) == 0 {
		return "", &TypeError{}
	}
	for _, t := range tys {
		ok := true
		for _, u := range tys {
			if !r.CanCoerce(u, t) {
				ok = false
				break
			}
		}
		if ok {
			return t, nil
		}
	}
	return "", &TypeError{Types: tys}
}

// GlslType returns the GLSL type name of a type.
func (r *Registry) GlslType(name TypeName) (string, error) {
	t := r.types[name]
	if t == nil || t.Glsl == "" {
		return "", &BackendError{Backend: "glsl", What: "type " + string(name)}
	}
	return t.Glsl, nil
}

// Garbage returns the garbage value of a type. Lists of fixed length are
// filled with garbage; dynamic lists are empty.
func (r *Registry) Garbage(ty Type) JsValue {
	var g any
	if t := r.types[ty.Type]; t != nil {
		g = t.Garbage.Js
	}
	switch ty.List {
	case Scalar:
		return JsValue{Type: ty.Type, List: Scalar, Value: g}
	case DynamicList:
		return JsList(ty.Type, []any{})
	}
	l := make([]any, ty.List)
	for i := range l {
		l[i] = g
	}
	return JsList(ty.Type, l)
}

// GlslGarbage returns the GLSL expression of a type's garbage value.
func (r *Registry) GlslGarbage(name TypeName) (string, error) {
	t := r.types[name]
	if t == nil || t.Garbage.Glsl == "" {
		return "", &BackendError{Backend: "glsl", What: "type " + string(name)}
	}
	return t.Garbage.Glsl, nil
}
