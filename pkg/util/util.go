package util

import (
	"fmt"
	"os"
	"strings"

	"github.com/xyproto/env/v2"
	"golang.org/x/term"

	"github.com/xplshn/pasm/pkg/config"
	"github.com/xplshn/pasm/pkg/token"
)

// Kind classifies a Diagnostic so callers can react to the failure class
// without parsing the message.
type Kind int

const (
	LexError Kind = iota
	SyntaxError
	SemanticError
	IOError
	UsageError
)

var kindStrings = map[Kind]string{
	LexError:      "lex error",
	SyntaxError:   "syntax error",
	SemanticError: "semantic error",
	IOError:       "io error",
	UsageError:    "usage error",
}

func (k Kind) String() string { return kindStrings[k] }

// Diagnostic is the structured error value returned by every stage of the
// assembler. The core never prints or exits; the CLI layer renders the
// diagnostic and turns it into a process exit status.
type Diagnostic struct {
	Kind    Kind
	Tok     token.Token
	Message string
}

func (d *Diagnostic) Error() string { return d.Message }

func Errorf(kind Kind, tok token.Token, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Kind: kind, Tok: tok, Message: fmt.Sprintf(format, args...)}
}

// SourceFileRecord tracks the name and content of a single source file.
type SourceFileRecord struct {
	Name    string
	Content []rune
}

var sourceFiles []SourceFileRecord

// SetSourceFiles stores the source code for all input files for rich error messages
func SetSourceFiles(files []SourceFileRecord) {
	sourceFiles = files
}

// findFileAndLine converts a global token to a file-specific location
func findFileAndLine(tok token.Token) (filename string, line, col int) {
	if tok.FileIndex < 0 || tok.FileIndex >= len(sourceFiles) {
		return "unknown", tok.Line, tok.Column
	}
	return sourceFiles[tok.FileIndex].Name, tok.Line, tok.Column
}

var colorEnabled = env.Str("NO_COLOR") == "" && term.IsTerminal(int(os.Stderr.Fd()))

func color(code, s string) string {
	if !colorEnabled {
		return s
	}
	return code + s + "\033[0m"
}

// printErrorLine prints the source line and a caret indicating the error position
func printErrorLine(stream *os.File, tok token.Token) {
	if tok.FileIndex < 0 || tok.FileIndex >= len(sourceFiles) || tok.Line == 0 {
		return
	}

	content := sourceFiles[tok.FileIndex].Content
	lineNum := tok.Line
	lineStart := 0
	for i, r := range content {
		if lineNum <= 1 {
			break
		}
		if r == '\n' {
			lineNum--
			lineStart = i + 1
		}
	}

	lineEnd := len(content)
	for i := lineStart; i < len(content); i++ {
		if content[i] == '\n' {
			lineEnd = i
			break
		}
	}

	fmt.Fprintf(stream, "  %s\n", string(content[lineStart:lineEnd]))

	marker := "^"
	if tok.Len > 1 {
		marker += strings.Repeat("~", tok.Len-1)
	}
	fmt.Fprintf(stream, "  %s%s\n", strings.Repeat(" ", tok.Column-1), color("\033[32m", marker))
}

// Report renders an error on stderr. Diagnostics carrying a token get the
// file:line:col prefix plus the offending source line and a caret.
func Report(toolName string, err error) {
	d, ok := err.(*Diagnostic)
	if !ok {
		fmt.Fprintf(os.Stderr, "%s: %s %v\n", toolName, color("\033[31m", "fatal error:"), err)
		return
	}
	if d.Kind == IOError || d.Kind == UsageError || d.Tok.Line == 0 {
		fmt.Fprintf(os.Stderr, "%s: %s %s\n", toolName, color("\033[31m", "fatal error:"), d.Message)
		return
	}
	filename, line, col := findFileAndLine(d.Tok)
	fmt.Fprintf(os.Stderr, "%s:%d:%d: %s %s\n", filename, line, col, color("\033[31m", "error:"), d.Message)
	printErrorLine(os.Stderr, d.Tok)
}

// Warn prints a formatted warning message if the corresponding warning is enabled
func Warn(cfg *config.Config, wt config.Warning, tok token.Token, format string, args ...interface{}) {
	if !cfg.IsWarningEnabled(wt) {
		return
	}
	filename, line, col := findFileAndLine(tok)
	warningName := cfg.Warnings[wt].Name
	fmt.Fprintf(os.Stderr, "%s:%d:%d: %s ", filename, line, col, color("\033[33m", "warning:"))
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprintf(os.Stderr, " [-W%s]\n", warningName)
	printErrorLine(os.Stderr, tok)
}
