package expr

import (
	"fmt"
	"math"

	"github.com/vango-dev/drizzle/pkg/coerce"
)

// EvalError reports a failure while evaluating a well-formed expression,
// such as calling something that is not a function.
type EvalError struct {
	Source string
	Msg    string
	Err    error
}

func (e *EvalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("evaluating %q: %s: %v", e.Source, e.Msg, e.Err)
	}
	return fmt.Sprintf("evaluating %q: %s", e.Source, e.Msg)
}

func (e *EvalError) Unwrap() error { return e.Err }

// Program is a parsed expression ready for repeated evaluation.
type Program struct {
	Source string
	Root   Node
}

// Compile parses source into a Program.
func Compile(source string) (*Program, error) {
	root, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return &Program{Source: source, Root: root}, nil
}

// Eval evaluates the program against scope. Missing names and properties
// evaluate to nil (undefined). Eval never panics: a panic raised by a
// called function is returned as an *EvalError.
func (p *Program) Eval(scope Scope) (result any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if e, ok := rec.(*EvalError); ok {
				err = e
			} else {
				err = &EvalError{Source: p.Source, Msg: fmt.Sprintf("panic: %v", rec)}
			}
			result = nil
		}
	}()
	ev := &evaluator{source: p.Source, scope: scope}
	return ev.eval(p.Root), nil
}

// Eval compiles and evaluates source in one step.
func Eval(source string, scope Scope) (any, error) {
	p, err := Compile(source)
	if err != nil {
		return nil, err
	}
	return p.Eval(scope)
}

type evaluator struct {
	source string
	scope  Scope
}

func (e *evaluator) fail(format string, args ...any) {
	panic(&EvalError{Source: e.source, Msg: fmt.Sprintf(format, args...)})
}

func (e *evaluator) eval(n Node) any {
	switch n := n.(type) {
	case *Literal:
		return n.Value
	case *Ident:
		if e.scope == nil {
			return nil
		}
		v, _ := e.scope.Lookup(n.Name)
		return v
	case *This:
		return thisOf(e.scope)
	case *Member:
		return GetProperty(e.eval(n.Object), n.Name)
	case *Index:
		obj := e.eval(n.Object)
		return GetProperty(obj, propertyKey(e.eval(n.Index)))
	case *CallExpr:
		return e.call(n)
	case *Unary:
		return e.unary(n)
	case *Binary:
		return e.binary(n)
	case *Conditional:
		if coerce.Truthy(e.eval(n.Test)) {
			return e.eval(n.Then)
		}
		return e.eval(n.Else)
	case *Object:
		out := make(map[string]any, len(n.Props))
		for _, prop := range n.Props {
			out[prop.Key] = e.eval(prop.Value)
		}
		return out
	case *Array:
		out := make([]any, len(n.Elems))
		for i, elem := range n.Elems {
			out[i] = e.eval(elem)
		}
		return out
	}
	e.fail("unsupported node %T", n)
	return nil
}

func (e *evaluator) call(n *CallExpr) any {
	fn := e.eval(n.Callee)
	if !IsCallable(fn) {
		e.fail("%s is not a function", n.Callee)
	}
	args := make([]any, len(n.Args))
	for i, a := range n.Args {
		args[i] = e.eval(a)
	}
	out, err := Call(fn, args...)
	if err != nil {
		panic(&EvalError{Source: e.source, Msg: "call to " + n.Callee.String() + " failed", Err: err})
	}
	return out
}

func (e *evaluator) unary(n *Unary) any {
	x := e.eval(n.X)
	switch n.Op {
	case TokenNot:
		return !coerce.Truthy(x)
	case TokenMinus:
		return -coerce.Number(x)
	case TokenPlus:
		return coerce.Number(x)
	}
	e.fail("unknown unary operator %s", n.Op)
	return nil
}

func (e *evaluator) binary(n *Binary) any {
	// Short-circuit operators return operand values, not booleans.
	switch n.Op {
	case TokenAnd:
		left := e.eval(n.Left)
		if !coerce.Truthy(left) {
			return left
		}
		return e.eval(n.Right)
	case TokenOr:
		left := e.eval(n.Left)
		if coerce.Truthy(left) {
			return left
		}
		return e.eval(n.Right)
	case TokenNullish:
		left := e.eval(n.Left)
		if !coerce.IsNullish(left) {
			return left
		}
		return e.eval(n.Right)
	}

	left := e.eval(n.Left)
	right := e.eval(n.Right)

	switch n.Op {
	case TokenPlus:
		return add(left, right)
	case TokenMinus:
		return coerce.Number(left) - coerce.Number(right)
	case TokenStar:
		return coerce.Number(left) * coerce.Number(right)
	case TokenSlash:
		return coerce.Number(left) / coerce.Number(right)
	case TokenPercent:
		return math.Mod(coerce.Number(left), coerce.Number(right))
	case TokenEq:
		return coerce.LooseEqual(left, right)
	case TokenNotEq:
		return !coerce.LooseEqual(left, right)
	case TokenStrictEq:
		return coerce.StrictEqual(left, right)
	case TokenStrictNotEq:
		return !coerce.StrictEqual(left, right)
	case TokenLT, TokenLTE, TokenGT, TokenGTE:
		return compare(n.Op, left, right)
	}
	e.fail("unknown binary operator %s", n.Op)
	return nil
}

// add implements +: numeric addition when both sides are primitive
// non-strings, string concatenation otherwise.
func add(left, right any) any {
	if isNumericPrimitive(left) && isNumericPrimitive(right) {
		return coerce.Number(left) + coerce.Number(right)
	}
	return coerce.String(left) + coerce.String(right)
}

func isNumericPrimitive(v any) bool {
	if coerce.IsNullish(v) || coerce.IsNumber(v) {
		return true
	}
	_, ok := v.(bool)
	return ok
}

func compare(op TokenType, left, right any) bool {
	ls, lok := left.(string)
	rs, rok := right.(string)
	if lok && rok {
		switch op {
		case TokenLT:
			return ls < rs
		case TokenLTE:
			return ls <= rs
		case TokenGT:
			return ls > rs
		default:
			return ls >= rs
		}
	}
	// NaN compares false against everything.
	l, r := coerce.Number(left), coerce.Number(right)
	switch op {
	case TokenLT:
		return l < r
	case TokenLTE:
		return l <= r
	case TokenGT:
		return l > r
	default:
		return l >= r
	}
}

// propertyKey converts an index value to a property name.
func propertyKey(v any) string {
	return coerce.String(v)
}
