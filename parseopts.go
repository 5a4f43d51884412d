package mathexpr

import (
	"strconv"
	"unicode"
)

// ParseOption is an option for parsing text.
type ParseOption interface {
	parseOption(parsectx) parsectx
}

type (
	funcopt struct {
		name string
		kind VarKind
	}
	funcsopt map[string]VarKind
	eofopt   struct {
		ws string
	}
)

// parsectx holds the word classification used when lexing text.
type parsectx struct {
	// words maps identifiers to their classification. Missing words are
	// plain variables.
	words map[string]VarKind
	// wseof is a string containing the whitespace characters that trigger an
	// EOF token from the lexer.
	wseof string
}

// defaultWords is the classification used unless options override it.
var defaultWords = map[string]VarKind{
	"exp":   VarPrefix,
	"ln":    VarPrefix,
	"log":   VarPrefix,
	"sqrt":  VarPrefix,
	"cos":   VarPrefix,
	"sin":   VarPrefix,
	"tan":   VarPrefix,
	"acos":  VarPrefix,
	"asin":  VarPrefix,
	"atan":  VarPrefix,
	"cosh":  VarPrefix,
	"sinh":  VarPrefix,
	"tanh":  VarPrefix,
	"with":  VarWordOp,
	"for":   VarWordOp,
	"const": VarMagic,
	"count": VarMagic,
}

func (p *parsectx) set(name string, kind VarKind) {
	if p.words == nil {
		// Always make a copy.
		p.words = make(map[string]VarKind, len(defaultWords)+1)
		for k, v := range defaultWords {
			p.words[k] = v
		}
	}
	if kind == VarPlain {
		delete(p.words, name)
		return
	}
	p.words[name] = kind
}

// ParseFunc makes a word parse as a prefix function, which can be applied
// without parentheses as in "sin x".
func ParseFunc(name string) ParseOption {
	return &funcopt{name, VarPrefix}
}

// ParseWordOp makes a word parse as an infix operator like "with".
func ParseWordOp(name string) ParseOption {
	return &funcopt{name, VarWordOp}
}

// ParseMagic makes a word parse as a magic word, which takes the following
// variable or parenthesized group as its operand.
func ParseMagic(name string) ParseOption {
	return &funcopt{name, VarMagic}
}

// ParseVar makes a word parse as a plain variable, overriding any default
// classification.
func ParseVar(name string) ParseOption {
	return &funcopt{name, VarPlain}
}

func (o *funcopt) parseOption(p parsectx) parsectx {
	p.set(o.name, o.kind)
	return p
}

// DisableDefaultFuncs makes all default prefix functions parse as plain
// variables.
func DisableDefaultFuncs() ParseOption {
	m := funcsopt{}
	for k, v := range defaultWords {
		if v == VarPrefix {
			m[k] = VarPlain
		}
	}
	return m
}

func (o funcsopt) parseOption(p parsectx) parsectx {
	for k, v := range o {
		p.set(k, v)
	}
	return p
}

// StopOn tells the parser to treat a list of whitespace characters as ending
// the expression outside of brackets.
//
// StopOn overrides the effect of any previous StopOn in the parsing options.
// With no arguments, StopOn produces the default termination behavior, which
// is to parse to EOF.
func StopOn(chars ...rune) ParseOption {
	v := make([]rune, 0, len(chars))
	have := func(r rune) bool {
		for _, c := range v {
			if r == c {
				return true
			}
		}
		return false
	}
	for _, r := range chars {
		if !unicode.IsSpace(r) {
			panic("mathexpr: cannot stop on " + strconv.QuoteRune(r))
		}
		if !have(r) {
			v = append(v, r)
		}
	}
	return &eofopt{ws: string(v)}
}

func (o *eofopt) parseOption(p parsectx) parsectx {
	p.wseof = o.ws
	return p
}

func (p *parsectx) classify(word string) VarKind {
	if p.words == nil {
		return defaultWords[word]
	}
	return p.words[word]
}
