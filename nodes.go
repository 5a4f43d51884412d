package mathexpr

import (
	"strconv"
	"strings"
)

// Node is a token or a node in the abstract syntax tree of an expression.
// Tokens and tree nodes share one type because the suffix pass folds tokens
// into compound nodes in place. Nodes are immutable once constructed.
type Node interface {
	Kind() NodeKind
}

// NodeKind identifies the concrete type of a Node.
type NodeKind int8

const (
	KindNone NodeKind = iota

	// Token kinds. These are produced by a lexer or an editor.

	KindNum   // *Num
	KindVar   // *Var
	KindPunc  // *Punc
	KindGroup // *Group
	KindSup   // *SupToken
	KindSub   // *SubToken
	KindBig   // *BigToken

	// Tree kinds. These are produced by the parsing passes.

	KindOp         // *Op
	KindJuxtaposed // *Juxtaposed
	KindCall       // *Call
	KindCmplist    // *Cmplist
	KindCommalist  // *Commalist
	KindSuffixed   // *Suffixed
	KindPiecewise  // *Piecewise
	KindMagicvar   // *Magicvar
	KindBigSym     // *BigSym
	KindError      // *Error
	KindVoid       // *Void

	kindCount
)

var kindNames = [...]string{
	KindNone:       "None",
	KindNum:        "Num",
	KindVar:        "Var",
	KindPunc:       "Punc",
	KindGroup:      "Group",
	KindSup:        "Sup",
	KindSub:        "Sub",
	KindBig:        "Big",
	KindOp:         "Op",
	KindJuxtaposed: "Juxtaposed",
	KindCall:       "Call",
	KindCmplist:    "Cmplist",
	KindCommalist:  "Commalist",
	KindSuffixed:   "Suffixed",
	KindPiecewise:  "Piecewise",
	KindMagicvar:   "Magicvar",
	KindBigSym:     "BigSym",
	KindError:      "Error",
	KindVoid:       "Void",
}

func (k NodeKind) String() string {
	if k < 0 || k >= kindCount {
		return "NodeKind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Num is a numeric literal. Value is its text, possibly with a leading sign
// fused from prefix operators.
type Num struct {
	Value string
}

// VarKind classifies word tokens.
type VarKind int8

const (
	// VarPlain is an ordinary identifier.
	VarPlain VarKind = iota
	// VarPrefix is a prefix function name like sin, which can be applied
	// without parentheses.
	VarPrefix
	// VarWordOp is a keyword operator like with or for.
	VarWordOp
	// VarMagic is a magic word, which takes a following variable or
	// parenthesized group as its operand.
	VarMagic
)

// Var is an identifier with an optional subscript.
type Var struct {
	Name  string
	Sub   Node
	Class VarKind
}

// PuncKind classifies punctuation tokens.
type PuncKind int8

const (
	PuncInfix     PuncKind = iota // * / , : ↑
	PuncPrefix                    // prefix-only operators
	PuncSuffix                    // !
	PuncCmp                       // < > = ≤ ≥ ≠
	PuncPlusMinus                 // + and -, either prefix or infix
	PuncDot                       // .
)

// Punc is an operator or punctuation token. Sub holds a subscript written
// directly on the token, e.g. the repeat count of a multifactorial.
type Punc struct {
	Value string
	Class PuncKind
	Sub   Node
}

// Group is a bracketed subexpression whose contents are already parsed.
type Group struct {
	Lhs, Rhs string
	Value    Node
}

// SupToken is a superscript following some other token.
type SupToken struct {
	Sup Node
}

// SubToken is a subscript not attached to an identifier.
type SubToken struct {
	Sub Node
}

// BigToken is a big operator placeholder such as ∑ or ∏ with its bounds.
type BigToken struct {
	Value    string
	Sub, Sup Node
}

// Op is a binary or unary operation. B is nil for unary operators.
type Op struct {
	Op   string
	A, B Node
}

// Juxtaposed is a product written without operators, as in 2x.
type Juxtaposed struct {
	Nodes []Node
}

// Call is a prefix function applied without parentheses, as in sin x.
type Call struct {
	Name *Var
	Args Node
}

// Cmplist is a chain of comparisons like a<b≤c. len(Ops) == len(Items)-1.
type Cmplist struct {
	Items []Node
	Ops   []string
}

// Commalist is a comma-separated list of expressions.
type Commalist struct {
	Items []Node
}

// SuffixKind identifies the operation a Suffix applies.
type SuffixKind int8

const (
	SuffixProp      SuffixKind = iota // .name
	SuffixMethod                      // .name(Arg)
	SuffixCall                        // (Arg)
	SuffixExp                         // ^Arg
	SuffixFactorial                   // ! or !_Arg
	SuffixIndex                       // [Arg]
)

// Suffix is one postfix operation in a suffix chain.
type Suffix struct {
	Kind SuffixKind
	// Name is the property or method name.
	Name string
	// Arg is the call arguments, exponent, repeat count, or index. It is nil
	// for properties and simple factorials.
	Arg Node
}

// Suffixed is a base value followed by postfix operations, applied in order.
type Suffixed struct {
	Base     Node
	Suffixes []Suffix
}

// Piece is one branch of a piecewise expression. Cond is nil for the
// fallback branch.
type Piece struct {
	Cond  Node
	Value Node
}

// Piecewise is a conditional expression {c₁: v₁, c₂: v₂, fallback}.
type Piecewise struct {
	Pieces []Piece
}

// Magicvar is a magic word with its operand. Exactly one of Prop and
// Contents is set.
type Magicvar struct {
	Name     string
	Sub      Node
	Prop     string
	Contents Node
}

// BigSym is a big operator applied to a body, as in ∑_{n=1}^{10} n².
type BigSym struct {
	Op       string
	Sub, Sup Node
	Body     Node
}

// Error is a parse failure deferred until evaluation reaches it.
type Error struct {
	Err error
}

// Void is an empty expression.
type Void struct{}

func (*Num) Kind() NodeKind        { return KindNum }
func (*Var) Kind() NodeKind        { return KindVar }
func (*Punc) Kind() NodeKind       { return KindPunc }
func (*Group) Kind() NodeKind      { return KindGroup }
func (*SupToken) Kind() NodeKind   { return KindSup }
func (*SubToken) Kind() NodeKind   { return KindSub }
func (*BigToken) Kind() NodeKind   { return KindBig }
func (*Op) Kind() NodeKind         { return KindOp }
func (*Juxtaposed) Kind() NodeKind { return KindJuxtaposed }
func (*Call) Kind() NodeKind       { return KindCall }
func (*Cmplist) Kind() NodeKind    { return KindCmplist }
func (*Commalist) Kind() NodeKind  { return KindCommalist }
func (*Suffixed) Kind() NodeKind   { return KindSuffixed }
func (*Piecewise) Kind() NodeKind  { return KindPiecewise }
func (*Magicvar) Kind() NodeKind   { return KindMagicvar }
func (*BigSym) Kind() NodeKind     { return KindBigSym }
func (*Error) Kind() NodeKind      { return KindError }
func (*Void) Kind() NodeKind       { return KindVoid }

// Args splits call contents into individual arguments.
func Args(n Node) []Node {
	switch n := n.(type) {
	case nil, *Void:
		return nil
	case *Commalist:
		return n.Items
	}
	return []Node{n}
}

// Format renders a node as an S-expression, mostly for tests and debugging.
func Format(n Node) string {
	var b strings.Builder
	format(&b, n)
	return b.String()
}

func format(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case nil:
		b.WriteString("<nil>")
	case *Num:
		b.WriteString(n.Value)
	case *Var:
		b.WriteString(n.Name)
		if n.Sub != nil {
			b.WriteString("_{")
			format(b, n.Sub)
			b.WriteByte('}')
		}
	case *Punc:
		b.WriteString(n.Value)
		if n.Sub != nil {
			b.WriteString("_{")
			format(b, n.Sub)
			b.WriteByte('}')
		}
	case *Group:
		b.WriteString(n.Lhs)
		format(b, n.Value)
		b.WriteString(n.Rhs)
	case *SupToken:
		b.WriteString("^{")
		format(b, n.Sup)
		b.WriteByte('}')
	case *SubToken:
		b.WriteString("_{")
		format(b, n.Sub)
		b.WriteByte('}')
	case *BigToken:
		b.WriteString(n.Value)
		if n.Sub != nil {
			b.WriteString("_{")
			format(b, n.Sub)
			b.WriteByte('}')
		}
		if n.Sup != nil {
			b.WriteString("^{")
			format(b, n.Sup)
			b.WriteByte('}')
		}
	case *Op:
		b.WriteByte('(')
		b.WriteString(n.Op)
		b.WriteByte(' ')
		format(b, n.A)
		if n.B != nil {
			b.WriteByte(' ')
			format(b, n.B)
		}
		b.WriteByte(')')
	case *Juxtaposed:
		b.WriteString("(jux")
		for _, m := range n.Nodes {
			b.WriteByte(' ')
			format(b, m)
		}
		b.WriteByte(')')
	case *Call:
		b.WriteString("(call ")
		format(b, n.Name)
		b.WriteByte(' ')
		format(b, n.Args)
		b.WriteByte(')')
	case *Cmplist:
		b.WriteString("(cmp ")
		format(b, n.Items[0])
		for i, op := range n.Ops {
			b.WriteByte(' ')
			b.WriteString(op)
			b.WriteByte(' ')
			format(b, n.Items[i+1])
		}
		b.WriteByte(')')
	case *Commalist:
		b.WriteString("(,")
		for _, m := range n.Items {
			b.WriteByte(' ')
			format(b, m)
		}
		b.WriteByte(')')
	case *Suffixed:
		b.WriteString("(sfx ")
		format(b, n.Base)
		for _, s := range n.Suffixes {
			b.WriteByte(' ')
			switch s.Kind {
			case SuffixProp:
				b.WriteString("." + s.Name)
			case SuffixMethod:
				b.WriteString("." + s.Name + "(")
				format(b, s.Arg)
				b.WriteByte(')')
			case SuffixCall:
				b.WriteByte('(')
				format(b, s.Arg)
				b.WriteByte(')')
			case SuffixExp:
				b.WriteString("^{")
				format(b, s.Arg)
				b.WriteByte('}')
			case SuffixFactorial:
				b.WriteByte('!')
				if s.Arg != nil {
					b.WriteString("_{")
					format(b, s.Arg)
					b.WriteByte('}')
				}
			case SuffixIndex:
				b.WriteByte('[')
				format(b, s.Arg)
				b.WriteByte(']')
			}
		}
		b.WriteByte(')')
	case *Piecewise:
		b.WriteString("(piecewise")
		for _, p := range n.Pieces {
			b.WriteString(" (")
			if p.Cond != nil {
				format(b, p.Cond)
				b.WriteString(" : ")
			}
			format(b, p.Value)
			b.WriteByte(')')
		}
		b.WriteByte(')')
	case *Magicvar:
		b.WriteString("(magic ")
		b.WriteString(n.Name)
		if n.Prop != "" {
			b.WriteByte(' ')
			b.WriteString(n.Prop)
		}
		if n.Contents != nil {
			b.WriteByte(' ')
			format(b, n.Contents)
		}
		b.WriteByte(')')
	case *BigSym:
		b.WriteByte('(')
		b.WriteString(n.Op)
		b.WriteByte(' ')
		format(b, n.Sub)
		b.WriteByte(' ')
		format(b, n.Sup)
		b.WriteByte(' ')
		format(b, n.Body)
		b.WriteByte(')')
	case *Error:
		b.WriteString("(error ")
		b.WriteString(strconv.Quote(n.Err.Error()))
		b.WriteByte(')')
	case *Void:
		b.WriteString("()")
	default:
		panic("mathexpr: invalid node kind " + n.Kind().String() + " after writing " + b.String())
	}
}
