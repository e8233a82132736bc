// Package asm glues the assembly pipeline together: source text in, object
// file bytes (or a structured diagnostic) out. Callers own reading the
// source and persisting the result.
package asm

import (
	"github.com/xplshn/pasm/pkg/config"
	"github.com/xplshn/pasm/pkg/elf"
	"github.com/xplshn/pasm/pkg/lexer"
	"github.com/xplshn/pasm/pkg/parser"
)

// Assemble runs one translation unit through the lexer, parser and object
// builder. Input consisting only of whitespace, comments and newlines still
// yields a valid object file with an empty .text section.
func Assemble(source string, fileIndex int, cfg *config.Config) ([]byte, error) {
	lex := lexer.NewLexer([]rune(source), fileIndex, cfg)
	p := parser.NewParser(lex, cfg)
	if err := p.Parse(); err != nil {
		return nil, err
	}
	return elf.Build(p.Code(), p.Symbols(), cfg)
}
