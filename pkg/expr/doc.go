// Package expr implements the expression language used in directive
// attributes.
//
// The grammar is a small, side-effect free subset of JavaScript
// expressions: literals, identifiers, this, member and index access, calls,
// unary ! - +, arithmetic, comparison, equality (== and ===), && || ??,
// the conditional operator and object / array literals. There is no
// assignment, no function literal and no access to anything beyond the
// Scope the expression is evaluated in.
//
//	prog, err := expr.Compile("{active: tab === 'home', 'is-open': open}")
//	v, err := prog.Eval(instance)
//
// Evaluation is lenient the way directive bindings need it to be: a missing
// name or property is nil (undefined), and so is any property of nil.
// Calling a value that is not a function is an *EvalError.
package expr
