package mathexpr

// Precedence levels of infix operators, loosest first.
const (
	_ int8 = iota
	precWord    // with, for
	precComma   // ,
	precColon   // :
	precCmp     // < > = ≤ ≥ ≠
	precSum     // + -
	precProduct // * / × ÷ ·
	precExp     // ↑
)

type operator struct {
	text string
	// prec is the precedence value. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
	// cmp marks comparison operators, which chain.
	cmp bool
}

// binop gets the operator for an infix token.
func binop(n Node) operator {
	switch t := n.(type) {
	case *Var:
		return operator{text: t.Name, prec: precWord}
	case *Punc:
		switch t.Class {
		case PuncCmp:
			return operator{text: t.Value, prec: precCmp, cmp: true}
		case PuncPlusMinus:
			return operator{text: t.Value, prec: precSum}
		}
		switch t.Value {
		case ",":
			return operator{text: t.Value, prec: precComma}
		case ":":
			return operator{text: t.Value, prec: precColon}
		case "↑":
			return operator{text: t.Value, prec: precExp, right: true}
		}
		return operator{text: t.Value, prec: precProduct}
	}
	panic("mathexpr: not an operator: " + Format(n))
}

// pops returns whether an operator on the stack reduces before incoming.
func (top operator) pops(incoming operator) bool {
	if top.prec != incoming.prec {
		return top.prec > incoming.prec
	}
	return !incoming.right
}

// resolvePrecedence builds a tree from a list alternating operands and infix
// operators using the shunting-yard algorithm.
func resolvePrecedence(toks []Node) Node {
	if len(toks) == 0 {
		return &Void{}
	}
	var vals []Node
	var ops []operator
	reduce := func() bool {
		if len(vals) < 2 || len(ops) == 0 {
			return false
		}
		op := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		a, b := vals[len(vals)-2], vals[len(vals)-1]
		vals = append(vals[:len(vals)-2], combine(op, a, b))
		return true
	}
	for i, t := range toks {
		if i%2 == 0 {
			vals = append(vals, t)
			continue
		}
		if !isInfix(t) {
			return underflow()
		}
		op := binop(t)
		for len(ops) > 0 && ops[len(ops)-1].pops(op) {
			if !reduce() {
				return underflow()
			}
		}
		ops = append(ops, op)
	}
	for len(ops) > 0 {
		if !reduce() {
			return underflow()
		}
	}
	if len(vals) != 1 {
		return underflow()
	}
	return vals[0]
}

func underflow() Node {
	return &Error{Err: &SyntaxError{Msg: "malformed expression: operators and operands do not match"}}
}

// combine applies an operator to two operands, extending comparison chains and
// comma lists.
func combine(op operator, a, b Node) Node {
	switch {
	case op.cmp:
		if l, ok := a.(*Cmplist); ok {
			return &Cmplist{
				Items: append(append(make([]Node, 0, len(l.Items)+1), l.Items...), b),
				Ops:   append(append(make([]string, 0, len(l.Ops)+1), l.Ops...), op.text),
			}
		}
		return &Cmplist{Items: []Node{a, b}, Ops: []string{op.text}}
	case op.prec == precComma:
		if l, ok := a.(*Commalist); ok {
			return &Commalist{Items: append(append(make([]Node, 0, len(l.Items)+1), l.Items...), b)}
		}
		return &Commalist{Items: []Node{a, b}}
	case op.prec == precWord:
		// f(x), g(x) with x=5 binds only the last item.
		if l, ok := a.(*Commalist); ok && len(l.Items) > 1 {
			items := append(make([]Node, 0, len(l.Items)), l.Items...)
			items[len(items)-1] = &Op{Op: op.text, A: items[len(items)-1], B: b}
			return &Commalist{Items: items}
		}
	}
	return &Op{Op: op.text, A: a, B: b}
}
