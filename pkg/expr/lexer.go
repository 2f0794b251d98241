package expr

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes a directive expression.
type Lexer struct {
	input   string
	pos     int  // offset of ch
	readPos int  // offset after ch
	ch      rune // current character, 0 at EOF
}

// NewLexer creates a lexer over input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.pos = len(l.input)
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
}

func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

// NextToken returns the next token. Lexing never fails: malformed input
// yields a TokenIllegal that the parser reports.
func (l *Lexer) NextToken() Token {
	for unicode.IsSpace(l.ch) {
		l.readChar()
	}

	start := l.pos
	tok := func(t TokenType, width int) Token {
		for i := 0; i < width; i++ {
			l.readChar()
		}
		return Token{Type: t, Literal: l.input[start:l.pos], Pos: start}
	}

	switch l.ch {
	case 0:
		return Token{Type: TokenEOF, Pos: start}
	case '(':
		return tok(TokenLParen, 1)
	case ')':
		return tok(TokenRParen, 1)
	case '[':
		return tok(TokenLBracket, 1)
	case ']':
		return tok(TokenRBracket, 1)
	case '{':
		return tok(TokenLBrace, 1)
	case '}':
		return tok(TokenRBrace, 1)
	case ',':
		return tok(TokenComma, 1)
	case ':':
		return tok(TokenColon, 1)
	case '+':
		return tok(TokenPlus, 1)
	case '-':
		return tok(TokenMinus, 1)
	case '*':
		return tok(TokenStar, 1)
	case '/':
		return tok(TokenSlash, 1)
	case '%':
		return tok(TokenPercent, 1)
	case '.':
		if isDigit(l.peekChar()) {
			return l.readNumber()
		}
		return tok(TokenDot, 1)
	case '?':
		if l.peekChar() == '?' {
			return tok(TokenNullish, 2)
		}
		return tok(TokenQuestion, 1)
	case '!':
		if l.peekChar() == '=' {
			if l.readPos < len(l.input)-1 && l.input[l.readPos+1] == '=' {
				return tok(TokenStrictNotEq, 3)
			}
			return tok(TokenNotEq, 2)
		}
		return tok(TokenNot, 1)
	case '=':
		if l.peekChar() == '=' {
			if l.readPos < len(l.input)-1 && l.input[l.readPos+1] == '=' {
				return tok(TokenStrictEq, 3)
			}
			return tok(TokenEq, 2)
		}
		// Assignment is not part of the grammar.
		return tok(TokenIllegal, 1)
	case '<':
		if l.peekChar() == '=' {
			return tok(TokenLTE, 2)
		}
		return tok(TokenLT, 1)
	case '>':
		if l.peekChar() == '=' {
			return tok(TokenGTE, 2)
		}
		return tok(TokenGT, 1)
	case '&':
		if l.peekChar() == '&' {
			return tok(TokenAnd, 2)
		}
		return tok(TokenIllegal, 1)
	case '|':
		if l.peekChar() == '|' {
			return tok(TokenOr, 2)
		}
		return tok(TokenIllegal, 1)
	case '\'', '"':
		return l.readString()
	}

	if isDigit(l.ch) {
		return l.readNumber()
	}
	if isIdentStart(l.ch) {
		for isIdentPart(l.ch) {
			l.readChar()
		}
		word := l.input[start:l.pos]
		if kw, ok := keywords[word]; ok {
			return Token{Type: kw, Literal: word, Pos: start}
		}
		return Token{Type: TokenIdent, Literal: word, Pos: start}
	}

	return tok(TokenIllegal, 1)
}

func (l *Lexer) readNumber() Token {
	start := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || next == '+' || next == '-' {
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			if !isDigit(l.ch) {
				return Token{Type: TokenIllegal, Literal: l.input[start:l.pos], Pos: start}
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	if isIdentStart(l.ch) {
		// 3px, 1a
		for isIdentPart(l.ch) {
			l.readChar()
		}
		return Token{Type: TokenIllegal, Literal: l.input[start:l.pos], Pos: start}
	}
	return Token{Type: TokenNumber, Literal: l.input[start:l.pos], Pos: start}
}

// readString reads a quoted string. Literal holds the unescaped value.
func (l *Lexer) readString() Token {
	start := l.pos
	quote := l.ch
	l.readChar()

	var b strings.Builder
	for {
		switch l.ch {
		case 0:
			return Token{Type: TokenIllegal, Literal: l.input[start:l.pos], Pos: start}
		case quote:
			l.readChar()
			return Token{Type: TokenString, Literal: b.String(), Pos: start}
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case 0:
				return Token{Type: TokenIllegal, Literal: l.input[start:l.pos], Pos: start}
			default:
				b.WriteRune(l.ch)
			}
			l.readChar()
		default:
			b.WriteRune(l.ch)
			l.readChar()
		}
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
