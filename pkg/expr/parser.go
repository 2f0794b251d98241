package expr

import (
	"fmt"
	"strconv"

	"github.com/vango-dev/drizzle/pkg/coerce"
)

// maxNesting bounds parser recursion for pathological input like "((((...".
const maxNesting = 128

// SyntaxError reports a malformed expression.
type SyntaxError struct {
	Source string
	Pos    int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d in %q: %s", e.Pos, e.Source, e.Msg)
}

const (
	precLowest = iota
	precNullish
	precOr
	precAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
)

var binaryPrec = map[TokenType]int{
	TokenNullish:     precNullish,
	TokenOr:          precOr,
	TokenAnd:         precAnd,
	TokenEq:          precEquality,
	TokenNotEq:       precEquality,
	TokenStrictEq:    precEquality,
	TokenStrictNotEq: precEquality,
	TokenLT:          precRelational,
	TokenLTE:         precRelational,
	TokenGT:          precRelational,
	TokenGTE:         precRelational,
	TokenPlus:        precAdditive,
	TokenMinus:       precAdditive,
	TokenStar:        precMultiplicative,
	TokenSlash:       precMultiplicative,
	TokenPercent:     precMultiplicative,
}

// Parser is a precedence-climbing parser for directive expressions.
type Parser struct {
	lexer *Lexer
	input string
	cur   Token
	peek  Token
	depth int
	err   *SyntaxError
}

// NewParser creates a parser for input.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input), input: input}
	p.next()
	p.next()
	return p
}

// Parse parses a complete expression.
func Parse(input string) (Node, error) {
	p := NewParser(input)
	n := p.ParseExpression()
	if p.err == nil {
		switch p.cur.Type {
		case TokenEOF:
		case TokenIllegal:
			p.errorf(p.cur.Pos, "illegal token %q", p.cur.Literal)
		default:
			p.errorf(p.cur.Pos, "unexpected %s after expression", p.cur)
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return n, nil
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.lexer.NextToken()
}

func (p *Parser) errorf(pos int, format string, args ...any) {
	if p.err == nil {
		p.err = &SyntaxError{Source: p.input, Pos: pos, Msg: fmt.Sprintf(format, args...)}
	}
}

func (p *Parser) expect(t TokenType) bool {
	if p.cur.Type == t {
		p.next()
		return true
	}
	p.errorf(p.cur.Pos, "expected %s, got %s", t, p.cur)
	return false
}

// ParseExpression parses a ternary-level expression.
func (p *Parser) ParseExpression() Node {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxNesting {
		p.errorf(p.cur.Pos, "expression nested too deeply")
		return &Literal{}
	}

	test := p.parseBinary(precLowest + 1)
	if p.cur.Type != TokenQuestion {
		return test
	}
	p.next()
	then := p.ParseExpression()
	if !p.expect(TokenColon) {
		return test
	}
	return &Conditional{Test: test, Then: then, Else: p.ParseExpression()}
}

func (p *Parser) parseBinary(minPrec int) Node {
	left := p.parseUnary()
	for p.err == nil {
		prec, ok := binaryPrec[p.cur.Type]
		if !ok || prec < minPrec {
			return left
		}
		op := p.cur.Type
		p.next()
		right := p.parseBinary(prec + 1)
		left = &Binary{Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseUnary() Node {
	switch p.cur.Type {
	case TokenNot, TokenMinus, TokenPlus:
		op := p.cur.Type
		p.next()
		p.depth++
		defer func() { p.depth-- }()
		if p.depth > maxNesting {
			p.errorf(p.cur.Pos, "expression nested too deeply")
			return &Literal{}
		}
		return &Unary{Op: op, X: p.parseUnary()}
	}
	return p.parsePostfix(p.parsePrimary())
}

func (p *Parser) parsePostfix(n Node) Node {
	for p.err == nil {
		switch p.cur.Type {
		case TokenDot:
			p.next()
			if !isPropertyName(p.cur.Type) {
				p.errorf(p.cur.Pos, "expected property name after '.', got %s", p.cur)
				return n
			}
			n = &Member{Object: n, Name: p.cur.Literal}
			p.next()
		case TokenLBracket:
			p.next()
			idx := p.ParseExpression()
			if !p.expect(TokenRBracket) {
				return n
			}
			n = &Index{Object: n, Index: idx}
		case TokenLParen:
			p.next()
			n = &CallExpr{Callee: n, Args: p.parseList(TokenRParen)}
		default:
			return n
		}
	}
	return n
}

func (p *Parser) parsePrimary() Node {
	tok := p.cur
	switch tok.Type {
	case TokenNumber:
		p.next()
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.errorf(tok.Pos, "invalid number %q", tok.Literal)
		}
		return &Literal{Value: f}
	case TokenString:
		p.next()
		return &Literal{Value: tok.Literal}
	case TokenTrue:
		p.next()
		return &Literal{Value: true}
	case TokenFalse:
		p.next()
		return &Literal{Value: false}
	case TokenNull:
		p.next()
		return &Literal{Value: coerce.Null}
	case TokenUndefined:
		p.next()
		return &Literal{}
	case TokenThis:
		p.next()
		return &This{}
	case TokenIdent:
		p.next()
		return &Ident{Name: tok.Literal}
	case TokenLParen:
		p.next()
		n := p.ParseExpression()
		p.expect(TokenRParen)
		return n
	case TokenLBracket:
		p.next()
		return &Array{Elems: p.parseList(TokenRBracket)}
	case TokenLBrace:
		p.next()
		return p.parseObject()
	case TokenEOF:
		p.errorf(tok.Pos, "unexpected end of expression")
	case TokenIllegal:
		p.errorf(tok.Pos, "illegal token %q", tok.Literal)
	default:
		p.errorf(tok.Pos, "unexpected %s", tok)
	}
	p.next()
	return &Literal{}
}

// parseList parses comma separated expressions up to end. A trailing comma
// is allowed.
func (p *Parser) parseList(end TokenType) []Node {
	var items []Node
	for p.err == nil && p.cur.Type != end {
		items = append(items, p.ParseExpression())
		if p.cur.Type != TokenComma {
			break
		}
		p.next()
	}
	p.expect(end)
	return items
}

func (p *Parser) parseObject() Node {
	obj := &Object{}
	for p.err == nil && p.cur.Type != TokenRBrace {
		key := p.cur
		switch {
		case key.Type == TokenString, key.Type == TokenNumber, isPropertyName(key.Type):
		default:
			p.errorf(key.Pos, "invalid object key %s", key)
			return obj
		}
		p.next()

		if key.Type == TokenIdent && (p.cur.Type == TokenComma || p.cur.Type == TokenRBrace) {
			// {count} shorthand
			obj.Props = append(obj.Props, Property{Key: key.Literal, Value: &Ident{Name: key.Literal}})
		} else {
			if !p.expect(TokenColon) {
				return obj
			}
			name := key.Literal
			if key.Type == TokenNumber {
				if f, err := strconv.ParseFloat(name, 64); err == nil {
					name = coerce.FormatNumber(f)
				}
			}
			obj.Props = append(obj.Props, Property{Key: name, Value: p.ParseExpression()})
		}

		if p.cur.Type != TokenComma {
			break
		}
		p.next()
	}
	p.expect(TokenRBrace)
	return obj
}

// isPropertyName reports whether t can name a property after '.' or as an
// object key; keywords are allowed there as in JavaScript.
func isPropertyName(t TokenType) bool {
	switch t {
	case TokenIdent, TokenTrue, TokenFalse, TokenNull, TokenUndefined, TokenThis:
		return true
	}
	return false
}
