package expr

import "fmt"

// TokenType is the kind of a lexed token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIllegal

	// Literals
	TokenNumber // 42, 3.14, 1e3
	TokenString // 'a', "b"
	TokenIdent  // count, isOpen

	// Keywords
	TokenTrue
	TokenFalse
	TokenNull
	TokenUndefined
	TokenThis

	// Delimiters
	TokenLParen   // (
	TokenRParen   // )
	TokenLBracket // [
	TokenRBracket // ]
	TokenLBrace   // {
	TokenRBrace   // }
	TokenComma    // ,
	TokenDot      // .
	TokenColon    // :
	TokenQuestion // ?

	// Operators
	TokenNot         // !
	TokenPlus        // +
	TokenMinus       // -
	TokenStar        // *
	TokenSlash       // /
	TokenPercent     // %
	TokenLT          // <
	TokenLTE         // <=
	TokenGT          // >
	TokenGTE         // >=
	TokenEq          // ==
	TokenNotEq       // !=
	TokenStrictEq    // ===
	TokenStrictNotEq // !==
	TokenAnd         // &&
	TokenOr          // ||
	TokenNullish     // ??
)

var tokenNames = map[TokenType]string{
	TokenEOF:         "EOF",
	TokenIllegal:     "ILLEGAL",
	TokenNumber:      "NUMBER",
	TokenString:      "STRING",
	TokenIdent:       "IDENT",
	TokenTrue:        "true",
	TokenFalse:       "false",
	TokenNull:        "null",
	TokenUndefined:   "undefined",
	TokenThis:        "this",
	TokenLParen:      "(",
	TokenRParen:      ")",
	TokenLBracket:    "[",
	TokenRBracket:    "]",
	TokenLBrace:      "{",
	TokenRBrace:      "}",
	TokenComma:       ",",
	TokenDot:         ".",
	TokenColon:       ":",
	TokenQuestion:    "?",
	TokenNot:         "!",
	TokenPlus:        "+",
	TokenMinus:       "-",
	TokenStar:        "*",
	TokenSlash:       "/",
	TokenPercent:     "%",
	TokenLT:          "<",
	TokenLTE:         "<=",
	TokenGT:          ">",
	TokenGTE:         ">=",
	TokenEq:          "==",
	TokenNotEq:       "!=",
	TokenStrictEq:    "===",
	TokenStrictNotEq: "!==",
	TokenAnd:         "&&",
	TokenOr:          "||",
	TokenNullish:     "??",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

var keywords = map[string]TokenType{
	"true":      TokenTrue,
	"false":     TokenFalse,
	"null":      TokenNull,
	"undefined": TokenUndefined,
	"this":      TokenThis,
}

// Token is one lexed token. Pos is the byte offset in the source.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int
}

func (t Token) String() string {
	switch t.Type {
	case TokenNumber, TokenString, TokenIdent, TokenIllegal:
		return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
	}
	return t.Type.String()
}
