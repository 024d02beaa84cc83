// Package token defines the lexical token types recognised by the
// SrcLang lexer and parser.
package token

type Type int

const (
	EOF Type = iota
	Ident
	Number

	// Keywords
	Int
	Void
	Const
	If
	Else
	While
	Break
	Continue
	Return

	// Punctuation
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Semi
	Comma

	// Operators
	Assign
	Plus
	Minus
	Star
	Slash
	Percent
	Lt
	Gt
	Le
	Ge
	EqEq
	Neq
	AndAnd
	OrOr
	Not
)

var KeywordMap = map[string]Type{
	"int":      Int,
	"void":     Void,
	"const":    Const,
	"if":       If,
	"else":     Else,
	"while":    While,
	"break":    Break,
	"continue": Continue,
	"return":   Return,
}

// Token is one lexeme together with its source position.
type Token struct {
	Type      Type
	Value     string
	FileIndex int
	Line      int
	Column    int
	Len       int
}
