package main

import (
	"os"

	"github.com/xyproto/env/v2"

	"github.com/xplshn/pasm/pkg/asm"
	"github.com/xplshn/pasm/pkg/cli"
	"github.com/xplshn/pasm/pkg/config"
	"github.com/xplshn/pasm/pkg/token"
	"github.com/xplshn/pasm/pkg/util"
)

func main() {
	app := cli.NewApp("pasm")
	app.Synopsis = "[options] <input.s>"
	app.Description = "An ELF64 x86-64 assembler producing relocatable object files."
	app.Authors = []string{"xplshn"}
	app.Repository = "<https://github.com/xplshn/pasm>"

	var (
		outFile string
		target  string
	)

	fs := app.FlagSet
	fs.StringOnce(&outFile, "output", "o", env.Str("PASM_OUTFILE", "a.out"), "Place the output into <file>.", "file")
	fs.String(&target, "target", "t", "x86_64", "Set the target architecture.", "arch")

	cfg := config.NewConfig()
	warningFlags, featureFlags := cfg.SetupFlagGroups(fs)

	app.Action = func(inputFiles []string) error {
		for i, entry := range warningFlags {
			if entry.Enabled != nil && *entry.Enabled {
				cfg.SetWarning(config.Warning(i), true)
			}
			if entry.Disabled != nil && *entry.Disabled {
				cfg.SetWarning(config.Warning(i), false)
			}
		}
		for i, entry := range featureFlags {
			if entry.Enabled != nil && *entry.Enabled {
				cfg.SetFeature(config.Feature(i), true)
			}
			if entry.Disabled != nil && *entry.Disabled {
				cfg.SetFeature(config.Feature(i), false)
			}
		}

		if err := cfg.SetTarget(target); err != nil {
			return fail(util.Errorf(util.UsageError, token.Token{}, "%v", err))
		}
		if len(inputFiles) == 0 {
			return fail(util.Errorf(util.UsageError, token.Token{}, "no input files"))
		}
		if len(inputFiles) > 1 {
			return fail(util.Errorf(util.UsageError, token.Token{}, "multiple input files are not supported"))
		}

		path := inputFiles[0]
		content, err := os.ReadFile(path)
		if err != nil {
			return fail(util.Errorf(util.IOError, token.Token{}, "could not read '%s': %v", path, err))
		}

		source := string(content)
		util.SetSourceFiles([]util.SourceFileRecord{{Name: path, Content: []rune(source)}})

		obj, err := asm.Assemble(source, 0, cfg)
		if err != nil {
			return fail(err)
		}

		if err := os.WriteFile(outFile, obj, 0644); err != nil {
			return fail(util.Errorf(util.IOError, token.Token{}, "could not write '%s': %v", outFile, err))
		}
		return nil
	}

	if err := app.Run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

func fail(err error) error {
	util.Report("pasm", err)
	return err
}
