package token

type Type int

const (
	EOF Type = iota
	Newline
	Comma
	Ident
	Label
	Directive
	Register
	Constant
)

// TypeStrings maps a token type to a human readable name for diagnostics.
var TypeStrings = map[Type]string{
	EOF:       "EndOfFile",
	Newline:   "NewLine",
	Comma:     "Comma",
	Ident:     "Identifier",
	Label:     "Label",
	Directive: "Directive",
	Register:  "Register",
	Constant:  "Constant",
}

// Token is a classified span of the source buffer. Pos and Len index into
// the original rune slice; Line and Column are 1-based and feed error
// reporting. Spans never move backwards: each token starts at or after the
// end of the previous one.
type Token struct {
	Type      Type
	Value     string
	FileIndex int
	Pos       int
	Line      int
	Column    int
	Len       int
}
