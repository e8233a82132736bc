// Package encoder maps recognized mnemonics to fixed x86-64 machine-code
// sequences. It is a lookup table rather than a general operand encoder:
// only zero-operand instructions are in scope, and anything else must fail
// cleanly instead of emitting wrong bytes.
package encoder

import "sort"

var opcodes = map[string][]byte{
	"nop":     {0x90},
	"ret":     {0xC3},
	"retq":    {0xC3},
	"leave":   {0xC9},
	"leaveq":  {0xC9},
	"syscall": {0x0F, 0x05},
}

// Lookup returns the machine-code bytes for a mnemonic. The returned slice
// is a copy, safe for the caller to append to a code buffer.
func Lookup(mnemonic string) ([]byte, bool) {
	code, ok := opcodes[mnemonic]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(code))
	copy(out, code)
	return out, true
}

// Mnemonics returns the supported mnemonics in sorted order.
func Mnemonics() []string {
	names := make([]string, 0, len(opcodes))
	for name := range opcodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
