package mathexpr

import (
	"strconv"
	"strings"
)

// NameError is an error from a lookup for an identifier that is bound
// nowhere: not in the evaluation context, not as a global, and not as a
// function.
type NameError struct {
	// Name is the name that was missing.
	Name string
	// Func is whether the name was looked up as a function.
	Func bool
}

func (err *NameError) Error() string {
	if err.Func {
		return "undefined function: " + strconv.Quote(err.Name)
	}
	return "undefined variable: " + strconv.Quote(err.Name)
}

// TypeError is an error indicating that no coercion connects the types of
// some values.
type TypeError struct {
	// Func is the function or operator being applied, if any.
	Func string
	// Types is the argument types.
	Types []TypeName
	// To is the target type of a failed coercion, if any.
	To TypeName
}

func (err *TypeError) Error() string {
	switch {
	case err.To != "":
		return "cannot convert " + typenames(err.Types) + " to " + string(err.To)
	case err.Func != "":
		return "cannot apply " + strconv.Quote(err.Func) + " to " + typenames(err.Types)
	default:
		return "no common type for " + typenames(err.Types)
	}
}

func typenames(tys []TypeName) string {
	if len(tys) == 0 {
		return "no arguments"
	}
	s := make([]string, len(tys))
	for i, t := range tys {
		s[i] = string(t)
	}
	return strings.Join(s, ", ")
}

// ArityError is an error indicating a wrong number of arguments or list
// elements.
type ArityError struct {
	// Func is the function called, if the error is about arguments.
	Func string
	// Got is the number of arguments given.
	Got int
	// Msg describes any other count mismatch.
	Msg string
}

func (err *ArityError) Error() string {
	if err.Msg != "" {
		return err.Msg
	}
	return "cannot call " + err.Func + " with " + strconv.Itoa(err.Got) + " arguments"
}

// errListSizes is the ArityError for incompatible fixed list lengths.
var errListSizes = &ArityError{Msg: "List sizes are different"}

// BackendError is an error indicating a construct the chosen evaluation
// target cannot express, such as a factorial in a shader.
type BackendError struct {
	// Backend is "js" or "glsl".
	Backend string
	// What describes the unsupported construct.
	What string
}

func (err *BackendError) Error() string {
	return err.What + " is not supported in " + err.Backend
}

// DomainError is an error returned when an operation needs arguments of a
// specific form, e.g. integer bounds for a sum.
type DomainError struct {
	// X is the text of the out-of-domain argument.
	X string
	// Arg is the 1-based index of the argument.
	Arg int
	// Func is a name identifying the function.
	Func string
}

func (err *DomainError) Error() string {
	r := err.X + " outside domain"
	if err.Func != "" {
		r += " of " + err.Func
	}
	if err.Arg > 0 {
		r += " (argument " + strconv.Itoa(err.Arg) + ")"
	}
	return r
}
