package mathexpr

import (
	"unicode"
	"unicode/utf8"
)

// resolveSuffixes folds suffix tokens into the values they follow: decimal
// points, property and method accesses, factorials, superscripts, calls, and
// indices. Folded nodes stay at the end of the output, so a node can take any
// number of suffixes in one sweep, as in f(x)^2!.
func resolveSuffixes(in []Node) ([]Node, error) {
	out := make([]Node, 0, len(in))
	for i := 0; i < len(in); i++ {
		var prev, next Node
		if len(out) > 0 {
			prev = out[len(out)-1]
		}
		if i+1 < len(in) {
			next = in[i+1]
		}
		switch t := in[i].(type) {
		case *Var:
			if t.Class != VarMagic {
				break
			}
			if v, ok := next.(*Var); ok && bareVar(v) {
				out = append(out, &Magicvar{Name: t.Name, Sub: t.Sub, Prop: v.Name})
				i++
				continue
			}
			if g, ok := next.(*Group); ok && g.Lhs == "(" {
				out = append(out, &Magicvar{Name: t.Name, Sub: t.Sub, Contents: g.Value})
				i++
				continue
			}
		case *Punc:
			switch {
			case t.Class == PuncDot:
				n, used, err := resolveDot(prev, in[i+1:])
				if err != nil {
					return nil, err
				}
				switch {
				case n == nil:
					// Stray dot. The implicit pass reports it.
				case used < 0:
					// Folded into the previous node.
					out[len(out)-1] = n
					i += -used - 1
					continue
				default:
					out = append(out, n)
					i += used
					continue
				}
			case t.Class == PuncSuffix && t.Value == "!" && isValue(prev):
				s := Suffix{Kind: SuffixFactorial, Arg: t.Sub}
				if s.Arg == nil {
					if sub, ok := next.(*SubToken); ok {
						s.Arg = sub.Sub
						i++
					}
				}
				out[len(out)-1] = withSuffix(prev, s)
				continue
			}
		case *SupToken:
			if isValue(prev) || isFnHead(prev) {
				out[len(out)-1] = withSuffix(prev, Suffix{Kind: SuffixExp, Arg: t.Sup})
				continue
			}
		case *Group:
			switch t.Lhs {
			case "(":
				if isValue(prev) || isFnHead(prev) {
					out[len(out)-1] = withSuffix(prev, Suffix{Kind: SuffixCall, Arg: t.Value})
					continue
				}
			case "[":
				if isValue(prev) {
					out[len(out)-1] = withSuffix(prev, Suffix{Kind: SuffixIndex, Arg: t.Value})
					continue
				}
			case "{":
				if p := piecewise(t.Value); p != nil {
					out = append(out, p)
					continue
				}
			}
		}
		out = append(out, in[i])
	}
	return out, nil
}

// resolveDot handles a dot token between prev and rest. If the result node is
// nil, the dot is left alone. If used is negative, the result replaces prev
// and -used-1 tokens of rest are consumed; otherwise the result is a new
// node and used tokens of rest are consumed.
func resolveDot(prev Node, rest []Node) (n Node, used int, err error) {
	var next Node
	if len(rest) > 0 {
		next = rest[0]
	}
	pn, prevInt := prev.(*Num)
	prevInt = prevInt && isInteger(pn.Value)
	nn, nextInt := next.(*Num)
	nextInt = nextInt && isInteger(nn.Value)
	switch {
	case prevInt && nextInt:
		return &Num{Value: pn.Value + "." + nn.Value}, -2, nil
	case prevInt:
		if v, ok := next.(*Var); ok {
			return nil, 0, &AmbiguityError{Num: pn.Value, Word: v.Name}
		}
		return &Num{Value: pn.Value + "."}, -1, nil
	case nextInt:
		return &Num{Value: "." + nn.Value}, 1, nil
	}
	v, ok := next.(*Var)
	if !ok || !isValue(prev) || !bareVar(v) || !lowerInitial(v.Name) {
		return nil, 0, nil
	}
	if len(rest) > 1 {
		if g, ok := rest[1].(*Group); ok && g.Lhs == "(" {
			return withSuffix(prev, Suffix{Kind: SuffixMethod, Name: v.Name, Arg: g.Value}), -3, nil
		}
	}
	return withSuffix(prev, Suffix{Kind: SuffixProp, Name: v.Name}), -2, nil
}

// piecewise converts the contents of a brace group to a piecewise node if they
// contain conditions. Otherwise the result is nil.
func piecewise(n Node) *Piecewise {
	switch n := n.(type) {
	case *Cmplist:
		return &Piecewise{Pieces: []Piece{{Cond: n, Value: &Num{Value: "1"}}}}
	case *Op:
		if n.Op != ":" {
			return nil
		}
		return &Piecewise{Pieces: []Piece{{Cond: n.A, Value: n.B}}}
	case *Commalist:
		colon := false
		for _, m := range n.Items {
			if op, ok := m.(*Op); ok && op.Op == ":" {
				colon = true
				break
			}
		}
		if !colon {
			return nil
		}
		p := &Piecewise{Pieces: make([]Piece, 0, len(n.Items))}
		for i, m := range n.Items {
			switch m := m.(type) {
			case *Op:
				if m.Op == ":" {
					p.Pieces = append(p.Pieces, Piece{Cond: m.A, Value: m.B})
					continue
				}
			case *Cmplist:
				if i < len(n.Items)-1 {
					p.Pieces = append(p.Pieces, Piece{Cond: m, Value: &Num{Value: "1"}})
					continue
				}
			}
			if i < len(n.Items)-1 {
				err := &SyntaxError{Msg: "only the last branch of a piecewise expression may omit its condition"}
				p.Pieces = append(p.Pieces, Piece{Cond: &Error{Err: err}, Value: m})
				continue
			}
			p.Pieces = append(p.Pieces, Piece{Value: m})
		}
		return p
	}
	return nil
}

// withSuffix appends a suffix to a node, creating a suffix chain if needed.
func withSuffix(n Node, s Suffix) Node {
	if sfx, ok := n.(*Suffixed); ok {
		ss := make([]Suffix, len(sfx.Suffixes), len(sfx.Suffixes)+1)
		copy(ss, sfx.Suffixes)
		return &Suffixed{Base: sfx.Base, Suffixes: append(ss, s)}
	}
	return &Suffixed{Base: n, Suffixes: []Suffix{s}}
}

// isValue returns whether a node can take suffixes and act as an atom of a
// product.
func isValue(n Node) bool {
	switch n := n.(type) {
	case *Num, *Group, *Juxtaposed, *Call, *Piecewise, *Magicvar, *Op, *Cmplist, *Commalist, *Error:
		return true
	case *Var:
		return n.Class == VarPlain
	case *Suffixed:
		return !isFnHead(n)
	}
	return false
}

// isFnHead returns whether a node is a prefix function name, possibly with
// exponents as in sin²x.
func isFnHead(n Node) bool {
	switch n := n.(type) {
	case *Var:
		return n.Class == VarPrefix
	case *Suffixed:
		v, ok := n.Base.(*Var)
		if !ok || v.Class != VarPrefix {
			return false
		}
		for _, s := range n.Suffixes {
			if s.Kind != SuffixExp {
				return false
			}
		}
		return true
	}
	return false
}

func bareVar(v *Var) bool {
	return v.Class == VarPlain && v.Sub == nil
}

func isInteger(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func lowerInitial(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLower(r)
}
