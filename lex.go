package mathexpr

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// OpenBrackets and CloseBrackets contain the runes which group expressions.
// The lexer checks that a bracket in byte position k in OpenBrackets is
// matched with the bracket in byte position k in CloseBrackets.
const (
	OpenBrackets  = "([{"
	CloseBrackets = ")]}"
)

// lexer converts text into the token nodes the parsing passes consume. Each
// bracketed group is lexed and parsed recursively, so the token list of any
// level is flat.
type lexer struct {
	src  io.RuneScanner
	buf  strings.Builder
	rune int
	p    *parsectx
}

func lex(src io.RuneScanner, p *parsectx) *lexer {
	return &lexer{
		src:  src,
		rune: 0,
		p:    p,
	}
}

// readRune reads a rune from the src and updates the lexer's position info.
func (l *lexer) readRune() (r rune, err error) {
	r, sz, err := l.src.ReadRune()
	if sz > 0 {
		l.rune++
	}
	return r, err
}

// unreadRune unreads a rune from the src and updates the lexer's position
// info. Panics if unreading returns an error.
func (l *lexer) unreadRune() {
	if err := l.src.UnreadRune(); err != nil {
		panic(err)
	}
	l.rune--
}

// accept reads the next rune if it is want.
func (l *lexer) accept(want rune) bool {
	r, err := l.readRune()
	if err != nil {
		return false
	}
	if r != want {
		l.unreadRune()
		return false
	}
	return true
}

// tokens scans tokens up to the bracket closing open. At the top level, open
// is empty and scanning stops at EOF or a stop character.
func (l *lexer) tokens(open string) ([]Node, error) {
	var toks []Node
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if open != "" {
					return nil, &BracketError{Col: l.rune, Left: open}
				}
				return toks, nil
			}
			return nil, err
		}
		switch {
		case unicode.IsSpace(r):
			if open == "" && strings.ContainsRune(l.p.wseof, r) {
				return toks, nil
			}
		case strings.ContainsRune(CloseBrackets, r):
			k := strings.IndexRune(CloseBrackets, r)
			switch {
			case open == "":
				return nil, &BracketError{Col: l.rune, Right: string(r)}
			case OpenBrackets[k:k+1] != open:
				return nil, &BracketError{Col: l.rune, Left: open, Right: string(r)}
			}
			return toks, nil
		default:
			l.unreadRune()
			t, err := l.token()
			if err != nil {
				return nil, err
			}
			toks = append(toks, t...)
		}
	}
}

// token scans the tokens starting at the next rune.
func (l *lexer) token() ([]Node, error) {
	r, err := l.readRune()
	if err != nil {
		return nil, err
	}
	switch {
	case '0' <= r && r <= '9':
		l.unreadRune()
		return l.scanNum()
	case r == '.':
		if d, err := l.readRune(); err == nil {
			l.unreadRune()
			if '0' <= d && d <= '9' {
				l.buf.Reset()
				l.buf.WriteByte('.')
				l.scanDigits()
				return []Node{&Num{Value: l.buf.String()}}, nil
			}
		}
		return []Node{&Punc{Value: ".", Class: PuncDot}}, nil
	case unicode.IsLetter(r):
		l.unreadRune()
		t, err := l.scanWord()
		if err != nil {
			return nil, err
		}
		return []Node{t}, nil
	case r == '_':
		n, err := l.operand(false)
		if err != nil {
			return nil, err
		}
		return []Node{&SubToken{Sub: n}}, nil
	case r == '^':
		n, err := l.operand(true)
		if err != nil {
			return nil, err
		}
		return []Node{&SupToken{Sup: n}}, nil
	case r == '∑' || r == '∏':
		t, err := l.scanBig(string(r))
		if err != nil {
			return nil, err
		}
		return []Node{t}, nil
	case r == '∞':
		return []Node{&Num{Value: "∞"}}, nil
	case strings.ContainsRune(OpenBrackets, r):
		t, err := l.scanGroup(r)
		if err != nil {
			return nil, err
		}
		return []Node{t}, nil
	}
	t := l.scanPunc(r)
	if t == nil {
		l.buf.Reset()
		l.buf.WriteRune(r)
		return nil, l.error("")
	}
	return []Node{t}, nil
}

// scanPunc converts an operator rune to a token, or returns nil if r is not
// an operator.
func (l *lexer) scanPunc(r rune) *Punc {
	switch r {
	case '+':
		return &Punc{Value: "+", Class: PuncPlusMinus}
	case '-', '−':
		return &Punc{Value: "-", Class: PuncPlusMinus}
	case '*':
		if l.accept('*') {
			return &Punc{Value: "↑", Class: PuncInfix}
		}
		return &Punc{Value: "*", Class: PuncInfix}
	case '×', '·':
		return &Punc{Value: "*", Class: PuncInfix}
	case '/', '÷':
		return &Punc{Value: "/", Class: PuncInfix}
	case '↑', ',', ':':
		return &Punc{Value: string(r), Class: PuncInfix}
	case '!':
		if l.accept('=') {
			return &Punc{Value: "≠", Class: PuncCmp}
		}
		return &Punc{Value: "!", Class: PuncSuffix}
	case '<':
		if l.accept('=') {
			return &Punc{Value: "≤", Class: PuncCmp}
		}
		return &Punc{Value: "<", Class: PuncCmp}
	case '>':
		if l.accept('=') {
			return &Punc{Value: "≥", Class: PuncCmp}
		}
		return &Punc{Value: ">", Class: PuncCmp}
	case '=', '≤', '≥', '≠':
		return &Punc{Value: string(r), Class: PuncCmp}
	}
	return nil
}

// scanNum scans an integer or decimal number. A dot not followed by a digit
// becomes its own token so the suffix pass can decide what it means.
func (l *lexer) scanNum() ([]Node, error) {
	l.buf.Reset()
	l.scanDigits()
	r, err := l.readRune()
	if err != nil {
		return []Node{&Num{Value: l.buf.String()}}, nil
	}
	if r != '.' {
		l.unreadRune()
		return []Node{&Num{Value: l.buf.String()}}, nil
	}
	d, err := l.readRune()
	if err == nil {
		l.unreadRune()
	}
	if err != nil || d < '0' || d > '9' {
		return []Node{&Num{Value: l.buf.String()}, &Punc{Value: ".", Class: PuncDot}}, nil
	}
	l.buf.WriteByte('.')
	l.scanDigits()
	return []Node{&Num{Value: l.buf.String()}}, nil
}

func (l *lexer) scanDigits() {
	for {
		r, err := l.readRune()
		if err != nil {
			return
		}
		if r < '0' || r > '9' {
			l.unreadRune()
			return
		}
		l.buf.WriteRune(r)
	}
}

func (l *lexer) scanIdent() string {
	l.buf.Reset()
	for {
		r, err := l.readRune()
		if err != nil {
			// The caller unreads the rune that decides ident scanning before
			// calling scanIdent, so we have scanned at least one rune.
			return l.buf.String()
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			l.unreadRune()
			return l.buf.String()
		}
		l.buf.WriteRune(r)
	}
}

// scanWord scans an identifier and its subscript, classifying it by the
// parse options.
func (l *lexer) scanWord() (Node, error) {
	word := l.scanIdent()
	switch word {
	case "inf", "Inf":
		return &Num{Value: "∞"}, nil
	case "sum":
		return l.scanBig("∑")
	case "prod":
		return l.scanBig("∏")
	}
	v := &Var{Name: word, Class: l.p.classify(word)}
	if l.accept('_') {
		sub, err := l.operand(false)
		if err != nil {
			return nil, err
		}
		v.Sub = sub
	}
	return v, nil
}

// scanBig scans the bounds of a big operator.
func (l *lexer) scanBig(op string) (Node, error) {
	t := &BigToken{Value: op}
	for {
		var err error
		switch {
		case t.Sub == nil && l.accept('_'):
			t.Sub, err = l.operand(false)
		case t.Sup == nil && l.accept('^'):
			t.Sup, err = l.operand(false)
		default:
			return t, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// scanGroup scans a bracketed group after its opening bracket.
func (l *lexer) scanGroup(open rune) (Node, error) {
	k := strings.IndexRune(OpenBrackets, open)
	inner, err := l.tokens(string(open))
	if err != nil {
		return nil, err
	}
	return &Group{Lhs: OpenBrackets[k : k+1], Rhs: CloseBrackets[k : k+1], Value: ParseTokens(inner)}, nil
}

// operand scans the operand of a subscript or superscript: a braced
// expression, a bracketed group, a number, or a word. Superscripts may have
// signs and chain, so that x^y^z is x^{y^{z}}.
func (l *lexer) operand(sup bool) (Node, error) {
	var toks []Node
	r, err := l.readRune()
	if err != nil {
		if errors.Is(err, io.EOF) {
			l.buf.Reset()
			return nil, l.error("script")
		}
		return nil, err
	}
	switch {
	case r == '{':
		inner, err := l.tokens("{")
		if err != nil {
			return nil, err
		}
		toks = append(toks, &Group{Lhs: "{", Rhs: "}", Value: ParseTokens(inner)})
	case sup && (r == '+' || r == '-' || r == '−'):
		rest, err := l.operand(true)
		if err != nil {
			return nil, err
		}
		sign := l.scanPunc(r)
		return ParseTokens([]Node{sign, rest}), nil
	default:
		l.unreadRune()
		if !strings.ContainsRune("0123456789.([∞", r) && !unicode.IsLetter(r) {
			l.buf.Reset()
			l.buf.WriteRune(r)
			return nil, l.error("script")
		}
		t, err := l.token()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t...)
	}
	if sup && l.accept('^') {
		next, err := l.operand(true)
		if err != nil {
			return nil, err
		}
		toks = append(toks, &SupToken{Sup: next})
	}
	if len(toks) == 1 {
		if g, ok := toks[0].(*Group); ok && g.Lhs == "{" {
			// Braces only delimit the script.
			return g.Value, nil
		}
	}
	return ParseTokens(toks), nil
}

func (l *lexer) error(kind string) error {
	return &LexError{
		Text: l.buf.String(),
		Kind: kind,
		Col:  l.rune,
	}
}

// LexError indicates an invalid token. It implements InputError.
type LexError struct {
	// Text is the token the lexer was scanning when the invalid rune was
	// encountered, plus the invalid rune.
	Text string
	// Kind is the type of token the lexer was scanning. This may be "script"
	// or the empty string (if a token kind hadn't been decided).
	Kind string
	// Col is the total number of runes scanned by the lexer up to and
	// including this error.
	Col int
}

func (err *LexError) Error() string {
	pos := "column " + strconv.Itoa(err.Col)
	if err.Kind == "" {
		return "invalid token at " + pos + ": " + err.Text
	}
	return "invalid " + err.Kind + " token at " + pos + ": " + err.Text
}

func (err *LexError) Pos() int {
	return err.Col
}
