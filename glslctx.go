package mathexpr

import (
	"strconv"
	"strings"
)

// GlslContext accumulates the GLSL statements and helper functions needed to
// compute an expression. Forked contexts share the name counter and helper
// set of their parent but have their own statement blocks, which the parent
// splices into its own where the fork's code belongs.
//
// A GlslContext is not safe for concurrent use.
type GlslContext struct {
	n     *int
	h     *helpers
	block strings.Builder
	probe bool
	// jsScope marks a probe started from value evaluation, which reads and
	// writes value bindings.
	jsScope bool
}

type helpers struct {
	names map[string]bool
	srcs  []string
}

// NewGlslContext creates an empty context.
func NewGlslContext() *GlslContext {
	return &GlslContext{
		n: new(int),
		h: &helpers{names: make(map[string]bool)},
	}
}

// newProbe creates a context which determines only types. Code generated into
// it is discarded.
func newProbe(jsScope bool) *GlslContext {
	g := NewGlslContext()
	g.probe = true
	g.jsScope = jsScope
	return g
}

// Fork creates a child context with an empty block.
func (g *GlslContext) Fork() *GlslContext {
	return &GlslContext{n: g.n, h: g.h, probe: g.probe, jsScope: g.jsScope}
}

// Probing returns whether the context only determines types. Functions may
// skip code generation and return values with empty expressions.
func (g *GlslContext) Probing() bool {
	return g.probe
}

// Name returns a fresh local variable name.
func (g *GlslContext) Name() string {
	*g.n++
	return "_local" + strconv.Itoa(*g.n)
}

// Push appends a statement to the block. A newline is added if stmt lacks
// one.
func (g *GlslContext) Push(stmt string) {
	g.block.WriteString(stmt)
	if !strings.HasSuffix(stmt, "\n") {
		g.block.WriteByte('\n')
	}
}

// Block returns the statements accumulated so far.
func (g *GlslContext) Block() string {
	return g.block.String()
}

// Helper declares a helper function once per evaluation. It returns whether
// the helper was new.
func (g *GlslContext) Helper(name, src string) bool {
	if g.h.names[name] {
		return false
	}
	g.h.names[name] = true
	g.h.srcs = append(g.h.srcs, src)
	return true
}

// Helpers returns the source of all declared helpers in declaration order.
func (g *GlslContext) Helpers() string {
	var b strings.Builder
	for _, s := range g.h.srcs {
		b.WriteString(s)
		if !strings.HasSuffix(s, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Cache stores an expression in a new local variable of GLSL type ty and
// returns the variable name.
func (g *GlslContext) Cache(ty, expr string) string {
	name := g.Name()
	g.Push(ty + " " + name + " = " + expr + ";")
	return name
}

// DeclareList declares an array of n elements of GLSL type ty and returns
// its name. Dynamic lists cannot be declared.
func (g *GlslContext) DeclareList(ty string, n int) (string, error) {
	if n == DynamicList {
		if g.probe {
			return "", nil
		}
		return "", &BackendError{Backend: "glsl", What: "a list of unknown length"}
	}
	name := g.Name()
	g.Push(ty + " " + name + "[" + strconv.Itoa(n) + "];")
	return name, nil
}

// Loop appends a counted loop over a fork's statements. i names the int loop
// variable.
func (g *GlslContext) Loop(i string, n int, body *GlslContext) {
	g.Push("for (int " + i + " = 0; " + i + " < " + strconv.Itoa(n) + "; " + i + "++) {\n" + body.Block() + "}")
}

// Source assembles a complete GLSL function computing v: the helpers, then a
// function with the given signature whose body is the block followed by a
// statement returning v's expression.
func (g *GlslContext) Source(signature string, v GlslValue) string {
	var b strings.Builder
	b.WriteString(g.Helpers())
	b.WriteString(signature)
	b.WriteString(" {\n")
	b.WriteString(g.Block())
	b.WriteString("return " + v.Expr + ";\n}\n")
	return b.String()
}
