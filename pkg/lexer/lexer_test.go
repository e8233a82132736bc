package lexer

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/xplshn/pasm/pkg/config"
	"github.com/xplshn/pasm/pkg/token"
	"github.com/xplshn/pasm/pkg/util"
)

func collect(t *testing.T, src string, cfg *config.Config) []token.Token {
	t.Helper()
	l := NewLexer([]rune(src), 0, cfg)
	var toks []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("unexpected lex error: %v", err)
		}
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func kinds(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func TestTokenClassification(t *testing.T) {
	src := "start:\n\tnop\n.globl start\n"
	toks := collect(t, src, config.NewConfig())

	want := []token.Type{
		token.Label, token.Newline,
		token.Ident, token.Newline,
		token.Directive, token.Ident, token.Newline,
		token.EOF,
	}
	if diff := cmp.Diff(want, kinds(toks)); diff != "" {
		t.Errorf("token kinds mismatch (-want +got):\n%s", diff)
	}

	if toks[0].Value != "start" {
		t.Errorf("label text should exclude the colon, got %q", toks[0].Value)
	}
	if toks[4].Value != ".globl" {
		t.Errorf("directive text should keep the dot, got %q", toks[4].Value)
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	src := "; leading comment\nnop // trailing comment\nret\n"
	toks := collect(t, src, config.NewConfig())

	want := []token.Type{
		token.Newline,
		token.Ident, token.Newline,
		token.Ident, token.Newline,
		token.EOF,
	}
	if diff := cmp.Diff(want, kinds(toks)); diff != "" {
		t.Errorf("token kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestCCommentsCanBeDisabled(t *testing.T) {
	cfg := config.NewConfig()
	cfg.SetFeature(config.FeatCComments, false)

	l := NewLexer([]rune("// not a comment\n"), 0, cfg)
	_, err := l.Next()
	if err == nil {
		t.Fatal("expected a lex error for '/' with c-comments disabled")
	}
	d, ok := err.(*util.Diagnostic)
	if !ok || d.Kind != util.LexError {
		t.Fatalf("expected a LexError diagnostic, got %v", err)
	}
}

func TestRegisterToken(t *testing.T) {
	toks := collect(t, "%rax\n", config.NewConfig())
	if toks[0].Type != token.Register || toks[0].Value != "rax" {
		t.Errorf("expected Register(rax), got %s(%q)", token.TypeStrings[toks[0].Type], toks[0].Value)
	}
}

func TestDotLabelOutranksDirective(t *testing.T) {
	toks := collect(t, ".loop:\n", config.NewConfig())
	if toks[0].Type != token.Label || toks[0].Value != ".loop" {
		t.Errorf("expected Label(.loop), got %s(%q)", token.TypeStrings[toks[0].Type], toks[0].Value)
	}
}

func TestConstantUnimplemented(t *testing.T) {
	l := NewLexer([]rune("$5\n"), 0, config.NewConfig())
	_, err := l.Next()
	if err == nil {
		t.Fatal("expected an error for '$' constants")
	}
	d, ok := err.(*util.Diagnostic)
	if !ok || d.Kind != util.LexError {
		t.Fatalf("expected a LexError diagnostic, got %v", err)
	}
	if !strings.Contains(d.Message, "not yet implemented") {
		t.Errorf("error should say constants are unimplemented, got %q", d.Message)
	}
}

func TestInvalidCharacter(t *testing.T) {
	l := NewLexer([]rune("@\n"), 0, config.NewConfig())
	_, err := l.Next()
	if err == nil {
		t.Fatal("expected an error for '@'")
	}
	if !strings.Contains(err.Error(), "'@'") {
		t.Errorf("error should name the offending character, got %q", err.Error())
	}
}

func TestEOFIsIdempotent(t *testing.T) {
	l := NewLexer([]rune("nop"), 0, config.NewConfig())
	for i := 0; i < 5; i++ {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if i > 0 && tok.Type != token.EOF {
			t.Fatalf("call %d after end should return EOF, got %s", i, token.TypeStrings[tok.Type])
		}
	}
}

func TestSpansNeverRewind(t *testing.T) {
	src := "start:\n nop ; x\n.globl start\n ret\n"
	toks := collect(t, src, config.NewConfig())

	prevEnd := 0
	for _, tok := range toks {
		if tok.Pos < prevEnd {
			t.Fatalf("token at pos %d starts before previous token end %d", tok.Pos, prevEnd)
		}
		if tok.Type != token.EOF {
			prevEnd = tok.Pos + tok.Len
		}
	}
}
