// Package mathexpr compiles math expressions into a syntax tree and evaluates
// the tree either to values or to GLSL shader source.
//
// Parsing happens in three passes over a flat list of pre-classified tokens.
// The suffix pass attaches decimal points, factorials, superscripts, calls,
// indices, and property accesses to the tokens they follow. The implicit pass
// makes juxtaposition explicit: "2x" is a product, "sin x cos x" is the
// product of two calls. The precedence pass builds the final tree, folding
// "a<b<c" into one comparison chain and "a,b,c" into one comma list.
//
// Evaluation is driven by a Registry of types, coercions, functions, and
// globals installed by packages; see the pkgs subpackage for a standard set.
// Every function is overloaded by parameter types and broadcasts over lists,
// truncating to the shortest list. The same tree can be evaluated to a JsValue
// with Context.Js or compiled to GLSL with Context.Glsl.
package mathexpr
