package mathexpr

import "strconv"

// TypeName names a value type in a Registry, e.g. "real" or "complex". The
// set of type names is open; packages define them.
type TypeName string

// List arities of a Type. Non-negative arities are fixed list lengths.
const (
	// Scalar is the arity of a single value.
	Scalar = -1
	// DynamicList is the arity of a list whose length is known only when
	// values are computed. GLSL cannot construct dynamic lists.
	DynamicList = -2
)

// Ty is an element type.
type Ty struct {
	Type TypeName
}

// Type is an element type with a list arity.
type Type struct {
	Type TypeName
	// List is Scalar, DynamicList, or a fixed length.
	List int
}

// IsList returns whether t describes a list.
func (t Type) IsList() bool {
	return t.List != Scalar
}

// Elem returns the element type of t.
func (t Type) Elem() Ty {
	return Ty{Type: t.Type}
}

func (t Type) String() string {
	switch t.List {
	case Scalar:
		return string(t.Type)
	case DynamicList:
		return string(t.Type) + "[]"
	}
	return string(t.Type) + "[" + strconv.Itoa(t.List) + "]"
}

// JsVal is a single concrete value.
type JsVal struct {
	Type  TypeName
	Value any
}

// JsValue is a concrete value which may be a list. List values hold a []any
// of exactly List elements; JS values always record their concrete length.
type JsValue struct {
	Type  TypeName
	List  int
	Value any
}

// JsScalar wraps a single value.
func JsScalar(v JsVal) JsValue {
	return JsValue{Type: v.Type, List: Scalar, Value: v.Value}
}

// JsList creates a list value of the given element type.
func JsList(ty TypeName, items []any) JsValue {
	return JsValue{Type: ty, List: len(items), Value: items}
}

// Ty returns the type of v.
func (v JsValue) Ty() Type {
	return Type{Type: v.Type, List: v.List}
}

// Len returns the number of elements of a list, or 1 for a scalar.
func (v JsValue) Len() int {
	if v.List == Scalar {
		return 1
	}
	return len(v.Value.([]any))
}

// At returns the i'th element of v. A scalar is its own only element.
func (v JsValue) At(i int) JsVal {
	if v.List == Scalar {
		return JsVal{Type: v.Type, Value: v.Value}
	}
	return JsVal{Type: v.Type, Value: v.Value.([]any)[i]}
}

// Items returns the elements of v.
func (v JsValue) Items() []JsVal {
	r := make([]JsVal, v.Len())
	for i := range r {
		r[i] = v.At(i)
	}
	return r
}

// GlslVal is a single GLSL expression.
type GlslVal struct {
	Type TypeName
	Expr string
}

// GlslValue is a GLSL expression which may be a list. The Expr of a list
// names a declared array; it is empty for lists of length 0. When the
// generating context is probing types, Expr may be empty for any value.
type GlslValue struct {
	Type TypeName
	List int
	Expr string
}

// GlslScalar wraps a single expression.
func GlslScalar(v GlslVal) GlslValue {
	return GlslValue{Type: v.Type, List: Scalar, Expr: v.Expr}
}

// Ty returns the type of v.
func (v GlslValue) Ty() Type {
	return Type{Type: v.Type, List: v.List}
}

// At returns the expression for the i'th element of v, where i is a GLSL
// int expression. A scalar is its own only element.
func (v GlslValue) At(i string) GlslVal {
	if v.List == Scalar {
		return GlslVal{Type: v.Type, Expr: v.Expr}
	}
	return GlslVal{Type: v.Type, Expr: v.Expr + "[" + i + "]"}
}
