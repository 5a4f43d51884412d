package mathexpr

import (
	"io"
	"strings"
)

// Expr is a parsed expression that can be evaluated with a context.
type Expr struct {
	// n is the root node of the expression.
	n Node
	// names is the list of free variable names used in the expression.
	names []string
}

// Parse parses a single expression from src. Text errors, such as unmatched
// brackets or invalid tokens, are returned directly. Structural problems like
// a missing operand are instead embedded in the tree as Error nodes, so that
// they are reported when evaluation reaches them.
func Parse(src io.RuneScanner, opts ...ParseOption) (*Expr, error) {
	var p parsectx
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	toks, err := lex(src, &p).tokens("")
	if err != nil {
		return nil, err
	}
	return NewExpr(ParseTokens(toks)), nil
}

// ParseString parses an expression from a string.
func ParseString(src string, opts ...ParseOption) (*Expr, error) {
	return Parse(strings.NewReader(src), opts...)
}

// ParseTokens parses a list of tokens, such as one bracketed group produced by
// a lexer or an editor, into a tree. Groups within the list must already be
// parsed. The result is never nil; failures are Error nodes.
func ParseTokens(toks []Node) Node {
	toks, err := resolveSuffixes(toks)
	if err != nil {
		return &Error{Err: err}
	}
	return resolvePrecedence(resolveImplicit(toks))
}

// NewExpr wraps an already parsed tree.
func NewExpr(root Node) *Expr {
	return &Expr{n: root, names: freeVars(root)}
}

// Vars returns the names of the free variables in the expression, in sorted
// order. Names bound by with, for, and big operators are excluded.
func (e *Expr) Vars() []string {
	return append(([]string)(nil), e.names...)
}

// Root returns the root node of the expression's tree.
func (e *Expr) Root() Node {
	return e.n
}

func (e *Expr) String() string {
	return Format(e.n)
}
