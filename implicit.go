package mathexpr

import "strconv"

// maxConsumed bounds the number of tokens the implicit pass reads.
const maxConsumed = 1e5

// The implicit pass turns a suffix-resolved token list into a flat list that
// alternates operands and infix operators, making every implicit
// multiplication and function application explicit. Its grammar, from loosest
// to tightest:
//
//	Expr   = Word { infix Word }
//	Word   = sign* Factor+
//	Factor = FnApp | Big | Power
//	FnApp  = fn+ sign* (Power | Big)
//	Big    = big Factor*
//	Power  = Seq [ expOp sign* Power ]
//	Seq    = atom+
//
// A Seq of several atoms is a Juxtaposed node, as is a Word of several
// factors. A function applies to the Power that follows it, so
// "sin x cos x" is the product of two calls and "sin cos x" nests them.
type implicit struct {
	// toks is the remaining input, reversed so that the next token is last.
	toks []Node
	out  []Node
	// used counts consumed tokens.
	used int
}

func resolveImplicit(toks []Node) []Node {
	p := implicit{toks: make([]Node, len(toks))}
	for i, t := range toks {
		p.toks[len(toks)-1-i] = t
	}
	p.expr()
	if p.used > maxConsumed {
		err := &SyntaxError{Msg: "expression is too long (more than " + strconv.Itoa(maxConsumed) + " tokens)"}
		return []Node{&Error{Err: err}}
	}
	return p.out
}

func (p *implicit) done() bool {
	return len(p.toks) == 0 || p.used > maxConsumed
}

func (p *implicit) peek() Node {
	return p.toks[len(p.toks)-1]
}

func (p *implicit) pop() Node {
	t := p.toks[len(p.toks)-1]
	p.toks = p.toks[:len(p.toks)-1]
	p.used++
	return t
}

func (p *implicit) expr() {
	if p.done() {
		return
	}
	if isInfix(p.peek()) && !isSign(p.peek()) {
		// The expression starts with an operator that needs a left operand.
		p.out = append(p.out, &Error{Err: &OperandError{Op: opText(p.peek()), Kind: MissingLeft}})
	} else {
		p.out = append(p.out, p.word())
	}
	for !p.done() {
		op := p.pop()
		p.out = append(p.out, op)
		if p.done() || isInfix(p.peek()) && !isSign(p.peek()) {
			p.out = append(p.out, &Error{Err: &OperandError{Op: opText(op), Kind: MissingRight}})
			continue
		}
		p.out = append(p.out, p.word())
	}
}

// word parses an operand of an infix operator.
func (p *implicit) word() Node {
	signs := p.signs()
	fs := p.factors()
	if len(fs) == 0 {
		if len(signs) == 0 {
			// Only reachable on a token the factor loop can't consume.
			return &Error{Err: &SyntaxError{Msg: "expected a value"}}
		}
		return &Error{Err: &OperandError{Op: signs[len(signs)-1].Value, Kind: MissingRight}}
	}
	return applySigns(signs, juxtapose(fs))
}

// signs consumes leading prefix operators.
func (p *implicit) signs() []*Punc {
	var r []*Punc
	for !p.done() && isSign(p.peek()) {
		r = append(r, p.pop().(*Punc))
	}
	return r
}

// factors consumes juxtaposed factors up to the next infix operator.
func (p *implicit) factors() []Node {
	var fs []Node
	for !p.done() {
		t := p.peek()
		switch {
		case isFnHead(t):
			fs = append(fs, p.fnApp())
		case isBig(t):
			fs = append(fs, p.big())
		case isAtom(t):
			fs = append(fs, p.power())
		case isInfix(t):
			return fs
		default:
			p.pop()
			fs = append(fs, stray(t))
		}
	}
	return fs
}

// fnApp parses a chain of prefix functions and their argument.
func (p *implicit) fnApp() Node {
	var fns []Node
	for !p.done() && isFnHead(p.peek()) {
		fns = append(fns, p.pop())
	}
	signs := p.signs()
	var arg Node
	if !p.done() {
		switch t := p.peek(); {
		case isBig(t):
			arg = p.big()
		case isAtom(t):
			arg = p.power()
		}
	}
	if arg == nil {
		if len(signs) > 0 {
			return &Error{Err: &OperandError{Op: signs[len(signs)-1].Value, Kind: MissingRight}}
		}
		return &Error{Err: &OperandError{Op: fnName(fns[len(fns)-1]), Kind: MissingArgument}}
	}
	arg = applySigns(signs, arg)
	for i := len(fns) - 1; i >= 0; i-- {
		arg = apply(fns[i], arg)
	}
	return arg
}

// big parses a big operator, which takes the rest of the word as its body.
func (p *implicit) big() Node {
	t := p.pop().(*BigToken)
	n := &BigSym{Op: t.Value, Sub: t.Sub, Sup: t.Sup}
	fs := p.factors()
	if len(fs) == 0 {
		n.Body = &Error{Err: &OperandError{Op: t.Value, Kind: MissingArgument}}
	} else {
		n.Body = juxtapose(fs)
	}
	return n
}

// power parses a run of atoms with right-associative exponential operators.
func (p *implicit) power() Node {
	var run []Node
	for !p.done() && isAtom(p.peek()) {
		run = append(run, p.pop())
	}
	base := juxtapose(run)
	if p.done() || !isExpOp(p.peek()) {
		return base
	}
	op := p.pop().(*Punc)
	signs := p.signs()
	if p.done() || !isAtom(p.peek()) {
		return &Op{Op: op.Value, A: base, B: &Error{Err: &OperandError{Op: op.Value, Kind: MissingRight}}}
	}
	return &Op{Op: op.Value, A: base, B: applySigns(signs, p.power())}
}

// applySigns wraps a node in prefix operators. A run of + and - directly
// before an unsigned numeric literal becomes part of the literal instead.
func applySigns(signs []*Punc, n Node) Node {
	if len(signs) == 0 {
		return n
	}
	k := len(signs)
	for k > 0 && signs[k-1].Class == PuncPlusMinus {
		k--
	}
	if k < len(signs) {
		if m, ok := fuse(signs[k:], n); ok {
			n = m
			signs = signs[:k]
		}
	}
	for i := len(signs) - 1; i >= 0; i-- {
		n = &Op{Op: signs[i].Value, A: n}
	}
	return n
}

// fuse folds signs into the literal that starts n, if there is one.
func fuse(signs []*Punc, n Node) (Node, bool) {
	switch m := n.(type) {
	case *Num:
		if m.Value == "" || m.Value[0] == '-' || m.Value[0] == '+' {
			return n, false
		}
		neg := false
		for _, s := range signs {
			if s.Value == "-" {
				neg = !neg
			}
		}
		if neg {
			return &Num{Value: "-" + m.Value}, true
		}
		return m, true
	case *Juxtaposed:
		first, ok := fuse(signs, m.Nodes[0])
		if !ok {
			return n, false
		}
		nodes := make([]Node, len(m.Nodes))
		copy(nodes, m.Nodes)
		nodes[0] = first
		return &Juxtaposed{Nodes: nodes}, true
	}
	return n, false
}

// juxtapose combines factors into a single node, flattening nested products.
func juxtapose(fs []Node) Node {
	if len(fs) == 1 {
		return fs[0]
	}
	var nodes []Node
	for _, f := range fs {
		if j, ok := f.(*Juxtaposed); ok {
			nodes = append(nodes, j.Nodes...)
			continue
		}
		nodes = append(nodes, f)
	}
	return &Juxtaposed{Nodes: nodes}
}

// apply builds an implicit call of a function head.
func apply(fn, arg Node) Node {
	switch fn := fn.(type) {
	case *Var:
		return &Call{Name: fn, Args: arg}
	case *Suffixed:
		// sin²x is (sin x)².
		return &Suffixed{Base: &Call{Name: fn.Base.(*Var), Args: arg}, Suffixes: fn.Suffixes}
	}
	panic("mathexpr: apply of non-function " + Format(fn))
}

func fnName(fn Node) string {
	switch fn := fn.(type) {
	case *Var:
		return fn.Name
	case *Suffixed:
		return fn.Base.(*Var).Name
	}
	return Format(fn)
}

// stray converts a token that cannot appear where it does into an error.
func stray(t Node) Node {
	switch t := t.(type) {
	case *Var:
		if t.Class == VarMagic {
			return &Error{Err: &OperandError{Op: t.Name, Kind: MissingArgument}}
		}
	case *Punc:
		if t.Class == PuncSuffix {
			return &Error{Err: &OperandError{Op: t.Value, Kind: MissingLeft}}
		}
	case *SupToken:
		return &Error{Err: &SyntaxError{Msg: "superscript with nothing to raise"}}
	case *SubToken:
		return &Error{Err: &SyntaxError{Msg: "subscript with nothing to attach to"}}
	}
	return &Error{Err: &SyntaxError{Msg: "unexpected " + Format(t)}}
}

func isSign(n Node) bool {
	t, ok := n.(*Punc)
	return ok && (t.Class == PuncPlusMinus || t.Class == PuncPrefix)
}

// isInfix returns whether a token can join two operands. Plus and minus are
// both infix and signs.
func isInfix(n Node) bool {
	switch t := n.(type) {
	case *Punc:
		return t.Class == PuncInfix || t.Class == PuncCmp || t.Class == PuncPlusMinus
	case *Var:
		return t.Class == VarWordOp
	}
	return false
}

func isExpOp(n Node) bool {
	t, ok := n.(*Punc)
	return ok && t.Class == PuncInfix && t.Value == "↑"
}

func isBig(n Node) bool {
	_, ok := n.(*BigToken)
	return ok
}

// isAtom returns whether a token is a value that can be juxtaposed.
func isAtom(n Node) bool {
	return isValue(n)
}

func opText(n Node) string {
	switch t := n.(type) {
	case *Punc:
		return t.Value
	case *Var:
		return t.Name
	}
	return Format(n)
}
