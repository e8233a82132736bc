package config

import (
	"fmt"

	"github.com/xplshn/pasm/pkg/cli"
)

type Feature int

const (
	FeatCComments Feature = iota
	FeatCount
)

type Warning int

const (
	WarnRedeclaredLabel Warning = iota
	WarnUndefinedGlobal
	WarnExtra
	WarnCount
)

type Info struct {
	Name        string
	Enabled     bool
	Description string
}

// Config carries the per-run assembler settings: which dialect features are
// recognized, which warnings are emitted, and the target machine.
type Config struct {
	Features   map[Feature]Info
	Warnings   map[Warning]Info
	FeatureMap map[string]Feature
	WarningMap map[string]Warning
	TargetArch string
	Machine    uint16
}

const machineX86_64 = 62 // EM_X86_64

func NewConfig() *Config {
	cfg := &Config{
		Features:   make(map[Feature]Info),
		Warnings:   make(map[Warning]Info),
		FeatureMap: make(map[string]Feature),
		WarningMap: make(map[string]Warning),
	}

	features := map[Feature]Info{
		FeatCComments: {"c-comments", true, "Recognize GNU-style '//' line comments alongside ';'."},
	}

	warnings := map[Warning]Info{
		WarnRedeclaredLabel: {"redeclared-label", true, "Warn when a label is declared more than once."},
		WarnUndefinedGlobal: {"undefined-global", true, "Warn when a .globl symbol is never defined by a label."},
		WarnExtra:           {"extra", true, "Enable extra miscellaneous warnings."},
	}

	cfg.Features, cfg.Warnings = features, warnings
	for ft, info := range features {
		cfg.FeatureMap[info.Name] = ft
	}
	for wt, info := range warnings {
		cfg.WarningMap[info.Name] = wt
	}

	cfg.TargetArch, cfg.Machine = "x86_64", machineX86_64
	return cfg
}

// SetTarget configures the assembler for a specific architecture. Only
// x86-64 is supported; anything else is rejected rather than silently
// producing an object for the wrong machine.
func (c *Config) SetTarget(arch string) error {
	switch arch {
	case "x86_64", "amd64":
		c.TargetArch, c.Machine = "x86_64", machineX86_64
	default:
		return fmt.Errorf("unsupported target architecture '%s' (only x86_64 is supported)", arch)
	}
	return nil
}

func (c *Config) SetFeature(ft Feature, enabled bool) {
	if info, ok := c.Features[ft]; ok {
		info.Enabled = enabled
		c.Features[ft] = info
	}
}

func (c *Config) IsFeatureEnabled(ft Feature) bool { return c.Features[ft].Enabled }

func (c *Config) SetWarning(wt Warning, enabled bool) {
	if info, ok := c.Warnings[wt]; ok {
		info.Enabled = enabled
		c.Warnings[wt] = info
	}
}

func (c *Config) IsWarningEnabled(wt Warning) bool { return c.Warnings[wt].Enabled }

// SetupFlagGroups registers the -F<feature> and -W<warning> flag families on
// the given FlagSet and returns the entries so the caller can apply them
// after parsing.
func (c *Config) SetupFlagGroups(fs *cli.FlagSet) ([]cli.FlagGroupEntry, []cli.FlagGroupEntry) {
	warningFlags := make([]cli.FlagGroupEntry, WarnCount)
	for i := Warning(0); i < WarnCount; i++ {
		info := c.Warnings[i]
		enabled, disabled := false, false
		warningFlags[i] = cli.FlagGroupEntry{
			Name: info.Name, Prefix: "W", Usage: info.Description,
			Enabled: &enabled, Disabled: &disabled,
		}
	}
	fs.AddFlagGroup("Warnings", "", "warning", "Available warnings", warningFlags)

	featureFlags := make([]cli.FlagGroupEntry, FeatCount)
	for i := Feature(0); i < FeatCount; i++ {
		info := c.Features[i]
		enabled, disabled := false, false
		featureFlags[i] = cli.FlagGroupEntry{
			Name: info.Name, Prefix: "F", Usage: info.Description,
			Enabled: &enabled, Disabled: &disabled,
		}
	}
	fs.AddFlagGroup("Features", "", "feature", "Available features", featureFlags)

	return warningFlags, featureFlags
}
