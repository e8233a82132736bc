package lexer

import (
	"unicode"

	"github.com/xplshn/pasm/pkg/config"
	"github.com/xplshn/pasm/pkg/token"
	"github.com/xplshn/pasm/pkg/util"
)

// Lexer holds the cursor state for tokenizing one translation unit. Tokens
// are produced lazily by Next; the cursor only ever moves forward.
type Lexer struct {
	source    []rune
	fileIndex int
	pos       int
	line      int
	column    int
	cfg       *config.Config
}

func NewLexer(source []rune, fileIndex int, cfg *config.Config) *Lexer {
	return &Lexer{
		source: source, fileIndex: fileIndex, line: 1, column: 1, cfg: cfg,
	}
}

// Next returns the next token, or a LexError diagnostic. After the end of
// the buffer has been reached it keeps returning EOF tokens.
func (l *Lexer) Next() (token.Token, error) {
	l.skipBlanksAndComments()
	startPos, startCol, startLine := l.pos, l.column, l.line

	if l.isAtEnd() {
		tok := l.makeToken(token.EOF, "", startPos, startCol, startLine)
		tok.Len = 1
		return tok, nil
	}

	ch := l.peek()
	switch ch {
	case '\n':
		l.advance()
		return l.makeToken(token.Newline, "", startPos, startCol, startLine), nil
	case ',':
		l.advance()
		return l.makeToken(token.Comma, "", startPos, startCol, startLine), nil
	case '$':
		l.advance()
		tok := l.makeToken(token.Constant, "", startPos, startCol, startLine)
		return tok, util.Errorf(util.LexError, tok, "constant literals ('$') are not yet implemented")
	case '%':
		l.advance()
		if !isIdentStart(l.peek()) {
			tok := l.makeToken(token.Register, "", startPos, startCol, startLine)
			return tok, util.Errorf(util.LexError, tok, "expected a register name after '%%'")
		}
		nameStart := l.pos
		l.scanIdent()
		tok := l.makeToken(token.Register, string(l.source[nameStart:l.pos]), startPos, startCol, startLine)
		return tok, nil
	}

	if isIdentStart(ch) || ch == '.' {
		l.advance()
		l.scanIdent()
		value := string(l.source[startPos:l.pos])

		// A trailing colon outranks the leading dot: ".foo:" is a label.
		if l.peek() == ':' {
			l.advance()
			tok := l.makeToken(token.Label, value, startPos, startCol, startLine)
			return tok, nil
		}
		if ch == '.' {
			return l.makeToken(token.Directive, value, startPos, startCol, startLine), nil
		}
		return l.makeToken(token.Ident, value, startPos, startCol, startLine), nil
	}

	l.advance()
	tok := l.makeToken(token.EOF, "", startPos, startCol, startLine)
	return tok, util.Errorf(util.LexError, tok, "invalid character '%c' in mnemonic", ch)
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekNext() rune {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

func (l *Lexer) advance() rune {
	if l.isAtEnd() {
		return 0
	}
	ch := l.source[l.pos]
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
	return ch
}

func (l *Lexer) isAtEnd() bool { return l.pos >= len(l.source) }

func (l *Lexer) makeToken(tokType token.Type, value string, startPos, startCol, startLine int) token.Token {
	return token.Token{
		Type: tokType, Value: value, FileIndex: l.fileIndex,
		Pos: startPos, Line: startLine, Column: startCol, Len: l.pos - startPos,
	}
}

// skipBlanksAndComments skips horizontal whitespace and line comments. The
// newline terminating a comment stays in the stream since it separates
// statements.
func (l *Lexer) skipBlanksAndComments() {
	for {
		switch l.peek() {
		case ' ', '\t', '\r':
			l.advance()
		case ';':
			l.lineComment()
		case '/':
			if l.peekNext() == '/' && l.cfg.IsFeatureEnabled(config.FeatCComments) {
				l.lineComment()
			} else {
				return
			}
		default:
			return
		}
	}
}

func (l *Lexer) lineComment() {
	for !l.isAtEnd() && l.peek() != '\n' {
		l.advance()
	}
}

func (l *Lexer) scanIdent() {
	for isIdentPart(l.peek()) {
		l.advance()
	}
}

func isIdentStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isIdentPart(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}
