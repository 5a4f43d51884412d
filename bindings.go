package mathexpr

import (
	"src.elv.sh/pkg/persistent/hash"
	"src.elv.sh/pkg/persistent/hashmap"
)

// bindings is an immutable map from variable names to values. Binding forms
// extend it for the duration of their bodies and then restore the previous
// map, so no binding can refer to itself.
type bindings struct {
	m hashmap.Map
}

func newBindings() bindings {
	return bindings{m: hashmap.New(eqName, hashName)}
}

func eqName(a, b any) bool {
	return a.(string) == b.(string)
}

func hashName(k any) uint32 {
	return hash.String(k.(string))
}

// with returns bindings extended with one more name.
func (b bindings) with(name string, v any) bindings {
	return bindings{m: b.m.Assoc(name, v)}
}

func (b bindings) get(name string) (any, bool) {
	if b.m == nil {
		return nil, false
	}
	return b.m.Index(name)
}

func (b bindings) len() int {
	if b.m == nil {
		return 0
	}
	return b.m.Len()
}

// scope saves the context's bindings and returns a function restoring them.
// Use it as
//
//	defer ctx.scope()()
func (ctx *Context) scope() func() {
	js, gl := ctx.js, ctx.gl
	return func() {
		ctx.js, ctx.gl = js, gl
	}
}
