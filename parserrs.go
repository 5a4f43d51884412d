package mathexpr

import "strconv"

// BracketError is an error indicating mismatched brackets in the
// input. It implements InputError.
type BracketError struct {
	// Col is the position of the offending bracket.
	Col int
	// Left is the opening bracket.
	Left string
	// Right is the mismatched closing bracket.
	Right string
}

func (err *BracketError) Error() string {
	if err.Left == "" {
		return errpos(err.Col, "close bracket "+err.Right+" with no open bracket")
	}
	if err.Right == "" {
		return errpos(err.Col, "open bracket "+err.Left+" with no close bracket")
	}
	return errpos(err.Col, "mismatched bracket: "+err.Left+"expr"+err.Right)
}

func (err *BracketError) Pos() int {
	return err.Col
}

// AmbiguityError is an error indicating input that could reasonably mean two
// different things, such as 2.min, which could be 2.0 times min or the min
// method of 2. It is never guessed; the clause containing it fails to parse.
type AmbiguityError struct {
	// Num is the number before the dot.
	Num string
	// Word is the word after the dot.
	Word string
}

func (err *AmbiguityError) Error() string {
	return strconv.Quote(err.Num+"."+err.Word) + " is ambiguous; write " +
		strconv.Quote(err.Num+".0 "+err.Word) + " or " + strconv.Quote("("+err.Num+")."+err.Word)
}

// OperandKind identifies the missing piece of an OperandError.
type OperandKind int8

const (
	MissingLeft OperandKind = iota
	MissingRight
	MissingArgument
)

// OperandError is an operator without an operand it needs, or a function
// name without an argument. The parser embeds these in Error nodes rather
// than failing so that other parts of an expression remain usable.
type OperandError struct {
	Op   string
	Kind OperandKind
}

func (err *OperandError) Error() string {
	switch err.Kind {
	case MissingLeft:
		return strconv.Quote(err.Op) + " is missing its left operand"
	case MissingRight:
		return strconv.Quote(err.Op) + " is missing its right operand"
	default:
		return strconv.Quote(err.Op) + " needs an argument"
	}
}

// SyntaxError is a structural problem found while parsing or evaluating,
// like a stray token or a comma list outside brackets.
type SyntaxError struct {
	Msg string
}

func (err *SyntaxError) Error() string {
	return err.Msg
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid text input implements InputError.
type InputError interface {
	error
	// Pos returns the position of the error as the number of runes up to and
	// including the start of the token that caused the error.
	Pos() int
}

var (
	_ InputError = (*BracketError)(nil)
	_ InputError = (*LexError)(nil)
)
