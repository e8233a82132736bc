package cli

import (
	"strings"
	"testing"
)

func TestLongAndShortFlags(t *testing.T) {
	fs := NewFlagSet("pasm")
	var out string
	fs.String(&out, "output", "o", "a.out", "Place the output into <file>.", "file")

	if err := fs.Parse([]string{"-o", "obj.o", "file.s"}); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if out != "obj.o" {
		t.Errorf("out = %q, want obj.o", out)
	}
	if len(fs.Args()) != 1 || fs.Args()[0] != "file.s" {
		t.Errorf("positional args = %v, want [file.s]", fs.Args())
	}

	fs = NewFlagSet("pasm")
	fs.String(&out, "output", "o", "a.out", "", "file")
	if err := fs.Parse([]string{"--output=obj.o"}); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if out != "obj.o" {
		t.Errorf("out = %q, want obj.o", out)
	}
}

func TestStringOnceRejectsRepeat(t *testing.T) {
	fs := NewFlagSet("pasm")
	var out string
	fs.StringOnce(&out, "output", "o", "a.out", "", "file")

	err := fs.Parse([]string{"-o", "x.o", "-o", "y.o"})
	if err == nil {
		t.Fatal("expected an error for a repeated -o flag")
	}
	if !strings.Contains(err.Error(), "once") {
		t.Errorf("error should mention the once restriction, got %q", err.Error())
	}
}

func TestFlagNeedsArgument(t *testing.T) {
	fs := NewFlagSet("pasm")
	var out string
	fs.StringOnce(&out, "output", "o", "a.out", "", "file")

	if err := fs.Parse([]string{"-o"}); err == nil {
		t.Fatal("expected an error for -o without an argument")
	}
}

func TestUnknownFlag(t *testing.T) {
	fs := NewFlagSet("pasm")
	if err := fs.Parse([]string{"--bogus"}); err == nil {
		t.Fatal("expected an error for an unknown flag")
	}
}

func TestGroupFlags(t *testing.T) {
	fs := NewFlagSet("pasm")
	enabled, disabled := false, false
	fs.AddFlagGroup("Warnings", "", "warning", "", []FlagGroupEntry{
		{Name: "redeclared-label", Prefix: "W", Usage: "", Enabled: &enabled, Disabled: &disabled},
	})

	if err := fs.Parse([]string{"-Wno-redeclared-label"}); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !disabled {
		t.Error("-Wno-redeclared-label should set the disabled flag")
	}
	if enabled {
		t.Error("-Wno-redeclared-label must not set the enabled flag")
	}
}

func TestDoubleDashStopsParsing(t *testing.T) {
	fs := NewFlagSet("pasm")
	var out string
	fs.String(&out, "output", "o", "a.out", "", "file")

	if err := fs.Parse([]string{"--", "-o"}); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(fs.Args()) != 1 || fs.Args()[0] != "-o" {
		t.Errorf("args after -- = %v, want [-o]", fs.Args())
	}
}
