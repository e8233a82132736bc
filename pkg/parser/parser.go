package parser

import (
	"github.com/xplshn/pasm/pkg/config"
	"github.com/xplshn/pasm/pkg/encoder"
	"github.com/xplshn/pasm/pkg/lexer"
	"github.com/xplshn/pasm/pkg/symtab"
	"github.com/xplshn/pasm/pkg/token"
	"github.com/xplshn/pasm/pkg/util"
)

// Parser drives the lexer over one translation unit, routing mnemonics to
// the encoder and labels/directives to the symbol table while the code
// buffer grows. The first malformed statement aborts the run; there is no
// statement-level recovery.
type Parser struct {
	lex        *lexer.Lexer
	cfg        *config.Config
	code       []byte
	st         *symtab.Table
	globalToks map[string]token.Token
}

func NewParser(lex *lexer.Lexer, cfg *config.Config) *Parser {
	return &Parser{
		lex: lex, cfg: cfg,
		st:         symtab.New(),
		globalToks: make(map[string]token.Token),
	}
}

// Code returns the accumulated .text bytes.
func (p *Parser) Code() []byte { return p.code }

// Symbols returns the symbol table built during the run.
func (p *Parser) Symbols() *symtab.Table { return p.st }

func (p *Parser) Parse() error {
	for {
		tok, err := p.lex.Next()
		if err != nil {
			return err
		}

		switch tok.Type {
		case token.Newline:
			// blank statement
		case token.EOF:
			p.checkUndefinedGlobals()
			return nil
		case token.Ident:
			if err := p.instruction(tok); err != nil {
				return err
			}
		case token.Label:
			if p.st.DefineLabel(tok.Value, symtab.ShndxText, uint64(len(p.code))) {
				util.Warn(p.cfg, config.WarnRedeclaredLabel, tok, "label '%s' redeclared", tok.Value)
			}
		case token.Directive:
			if err := p.directive(tok); err != nil {
				return err
			}
		default:
			return util.Errorf(util.SyntaxError, tok, "unexpected %s at start of statement", token.TypeStrings[tok.Type])
		}
	}
}

// instruction encodes a recognized zero-operand mnemonic and requires the
// statement to end right after it.
func (p *Parser) instruction(tok token.Token) error {
	code, ok := encoder.Lookup(tok.Value)
	if !ok {
		return util.Errorf(util.SemanticError, tok, "unknown instruction: '%s'", tok.Value)
	}
	if err := p.expectLineEnd(tok.Value); err != nil {
		return err
	}
	p.code = append(p.code, code...)
	return nil
}

func (p *Parser) directive(tok token.Token) error {
	if tok.Value != ".globl" {
		return util.Errorf(util.SyntaxError, tok, "unknown pseudo-op: '%s'", tok.Value)
	}

	name, err := p.lex.Next()
	if err != nil {
		return err
	}
	if name.Type != token.Ident {
		return util.Errorf(util.SyntaxError, name, ".globl directive expected a symbol")
	}
	if err := p.expectLineEnd(".globl"); err != nil {
		return err
	}

	p.st.DeclareGlobal(name.Value)
	if _, ok := p.globalToks[name.Value]; !ok {
		p.globalToks[name.Value] = name
	}
	return nil
}

// expectLineEnd consumes the statement terminator following a mnemonic or
// directive; anything else on the line is junk.
func (p *Parser) expectLineEnd(after string) error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	if tok.Type != token.Newline && tok.Type != token.EOF {
		return util.Errorf(util.SyntaxError, tok, "junk at end of line after '%s'", after)
	}
	return nil
}

func (p *Parser) checkUndefinedGlobals() {
	for _, name := range p.st.Undefined() {
		util.Warn(p.cfg, config.WarnUndefinedGlobal, p.globalToks[name], ".globl symbol '%s' is never defined by a label", name)
	}
}
