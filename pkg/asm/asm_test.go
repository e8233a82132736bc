package asm

import (
	"bytes"
	stdelf "debug/elf"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/xplshn/pasm/pkg/config"
	"github.com/xplshn/pasm/pkg/util"
)

func assemble(t *testing.T, src string) ([]byte, error) {
	t.Helper()
	cfg := config.NewConfig()
	cfg.SetWarning(config.WarnRedeclaredLabel, false)
	cfg.SetWarning(config.WarnUndefinedGlobal, false)
	return Assemble(src, 0, cfg)
}

func mustAssemble(t *testing.T, src string) *stdelf.File {
	t.Helper()
	obj, err := assemble(t, src)
	if err != nil {
		t.Fatalf("assembly failed: %v", err)
	}
	f, err := stdelf.NewFile(bytes.NewReader(obj))
	if err != nil {
		t.Fatalf("output is not a readable ELF file: %v", err)
	}
	return f
}

func textBytes(t *testing.T, f *stdelf.File) []byte {
	t.Helper()
	data, err := f.Section(".text").Data()
	if err != nil {
		t.Fatalf("reading .text: %v", err)
	}
	return data
}

func TestWhitespaceAndCommentsOnly(t *testing.T) {
	f := mustAssemble(t, "  \n; comment\n\t\n// other comment\n")
	if size := f.Section(".text").Size; size != 0 {
		t.Errorf(".text size = %d, want 0", size)
	}
	if len(f.Sections) != 7 {
		t.Errorf("section count = %d, want 7", len(f.Sections))
	}
}

func TestStartNopRet(t *testing.T) {
	f := mustAssemble(t, "start:\n  nop\n  ret\n")

	if got := textBytes(t, f); !bytes.Equal(got, []byte{0x90, 0xC3}) {
		t.Errorf(".text = % X, want 90 C3", got)
	}
	syms, err := f.Symbols()
	if err != nil {
		t.Fatalf("reading symbols: %v", err)
	}
	var found bool
	for _, s := range syms {
		if s.Name == "start" {
			found = true
			if stdelf.ST_BIND(s.Info) != stdelf.STB_LOCAL {
				t.Errorf("'start' binding = %v, want STB_LOCAL", stdelf.ST_BIND(s.Info))
			}
			if s.Section != stdelf.SectionIndex(1) {
				t.Errorf("'start' bound to section %v, want .text", s.Section)
			}
		}
	}
	if !found {
		t.Error("label 'start' missing from the symbol table")
	}
}

func TestGlobalStartSyscall(t *testing.T) {
	f := mustAssemble(t, ".globl start\nstart:\n  syscall\n")

	if got := textBytes(t, f); !bytes.Equal(got, []byte{0x0F, 0x05}) {
		t.Errorf(".text = % X, want 0F 05", got)
	}

	globals := 0
	syms, _ := f.Symbols()
	for _, s := range syms {
		if stdelf.ST_BIND(s.Info) == stdelf.STB_GLOBAL {
			globals++
			if s.Name != "start" {
				t.Errorf("unexpected global %q", s.Name)
			}
		}
	}
	if globals != 1 {
		t.Errorf("global symbol count = %d, want 1", globals)
	}
	if info := f.Section(".symtab").Info; info != 4 {
		t.Errorf(".symtab sh_info = %d, want 4 (global excluded from locals)", info)
	}
}

func TestShoffRoundTrip(t *testing.T) {
	obj, err := assemble(t, "nop\nret\nsyscall\n")
	if err != nil {
		t.Fatalf("assembly failed: %v", err)
	}

	textSize := uint64(4)
	shoff := binary.LittleEndian.Uint64(obj[40:48])
	if want := 64 + (textSize+7)&^7; shoff != want {
		t.Errorf("e_shoff = %d, want %d", shoff, want)
	}
	shnum := binary.LittleEndian.Uint16(obj[60:62])
	if shnum != 7 {
		t.Errorf("e_shnum = %d, want 7", shnum)
	}
	f, err := stdelf.NewFile(bytes.NewReader(obj))
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if len(f.Sections) != 7 {
		t.Errorf("section header table at e_shoff has %d entries, want 7", len(f.Sections))
	}
}

func TestRedeclaredLabel(t *testing.T) {
	f := mustAssemble(t, "a:\nnop\na:\nret\n")

	count := 0
	syms, _ := f.Symbols()
	for _, s := range syms {
		if s.Name == "a" {
			count++
			if s.Value != 1 {
				t.Errorf("'a' value = %d, want 1 (last declaration wins)", s.Value)
			}
		}
	}
	if count != 1 {
		t.Errorf("symbol 'a' appears %d times, want 1", count)
	}

	strtab, err := f.Section(".strtab").Data()
	if err != nil {
		t.Fatalf("reading .strtab: %v", err)
	}
	if got := bytes.Count(strtab, []byte("a\x00")); got != 1 {
		t.Errorf("string table holds %d entries for 'a', want 1", got)
	}
}

func TestUnknownMnemonicNamesIt(t *testing.T) {
	_, err := assemble(t, "  foo\n")
	if err == nil {
		t.Fatal("expected assembly to fail")
	}
	d, ok := err.(*util.Diagnostic)
	if !ok || d.Kind != util.SemanticError {
		t.Fatalf("expected a SemanticError diagnostic, got %v", err)
	}
	if !strings.Contains(d.Message, "'foo'") {
		t.Errorf("error should name the mnemonic, got %q", d.Message)
	}
}

func TestConstantFailsAnywhere(t *testing.T) {
	for _, src := range []string{"$5\n", "nop\n$5\n", "start:\n ret\n $5\n nop\n"} {
		_, err := assemble(t, src)
		if err == nil {
			t.Fatalf("%q: expected assembly to fail", src)
		}
		d, ok := err.(*util.Diagnostic)
		if !ok || d.Kind != util.LexError {
			t.Errorf("%q: expected a LexError diagnostic, got %v", src, err)
		}
	}
}

func TestNoObjectOnFailure(t *testing.T) {
	obj, err := assemble(t, "nop\nbogus\n")
	if err == nil {
		t.Fatal("expected assembly to fail")
	}
	if obj != nil {
		t.Error("failed assembly must not return partial object bytes")
	}
}
