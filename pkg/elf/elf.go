// Package elf serializes the assembler's outputs into an ELF64 relocatable
// object file: file header, .text contents, the fixed seven-entry section
// header table, the symbol table and both string tables, little-endian
// throughout.
package elf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/xplshn/pasm/pkg/config"
	"github.com/xplshn/pasm/pkg/symtab"
)

const (
	HeaderSize  = 64 // ELF64 file header
	ShentSize   = 64 // section header entry
	SymentSize  = 24 // symbol table entry
	SectionNum  = 7  // null, .text, .data, .bss, .symtab, .strtab, .shstrtab
	ShstrndxIdx = 6  // index of .shstrtab in the section header table
	StrtabIdx   = 5  // index of .strtab, .symtab's sh_link

	etRel     = 1
	evCurrent = 1

	elfClass64   = 2
	elfData2LSB  = 1
	elfOSABISysV = 0

	shtProgbits = 1
	shtSymtab   = 2
	shtStrtab   = 3
	shtNobits   = 8

	shfWrite     = 0x1
	shfAlloc     = 0x2
	shfExecinstr = 0x4

	stbLocal  = 0
	stbGlobal = 1

	sttNotype  = 0
	sttSection = 3
)

// Pre-baked section name table, shared by every generated object. The
// sh_name offsets below index into it.
var shstrtab = []byte("\x00.symtab\x00.strtab\x00.shstrtab\x00.text\x00.data\x00.bss\x00")

const (
	nameSymtab   = 1
	nameStrtab   = 9
	nameShstrtab = 17
	nameText     = 27
	nameData     = 33
	nameBss      = 39
)

type fileHeader struct {
	Ident     [16]byte
	Type      uint16
	Machine   uint16
	Version   uint32
	Entry     uint64
	Phoff     uint64
	Shoff     uint64
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

type sectionHeader struct {
	Name      uint32
	Type      uint32
	Flags     uint64
	Addr      uint64
	Offset    uint64
	Size      uint64
	Link      uint32
	Info      uint32
	Addralign uint64
	Entsize   uint64
}

type symEntry struct {
	Name  uint32
	Info  uint8
	Other uint8
	Shndx uint16
	Value uint64
	Size  uint64
}

func align8(n uint64) (uint64, bool) {
	if n > math.MaxUint64-7 {
		return 0, false
	}
	return (n + 7) &^ 7, true
}

func stInfo(binding, typ uint8) uint8 { return binding<<4 | typ }

// Build assembles the final object file from the code buffer and symbol
// table. File layout: header, .text, zero padding to the next 8-byte
// boundary, section header table, .symtab, .strtab, .shstrtab — so e_shoff
// is always HeaderSize + align8(len(code)) and .symtab starts 8-byte
// aligned.
func Build(code []byte, table *symtab.Table, cfg *config.Config) ([]byte, error) {
	syms, localCount := table.Ordered()

	// .strtab: leading NUL, then each unique name in first-occurrence order.
	strtab := []byte{0}
	nameOffsets := make(map[string]uint32, len(table.Names()))
	for _, name := range table.Names() {
		nameOffsets[name] = uint32(len(strtab))
		strtab = append(strtab, name...)
		strtab = append(strtab, 0)
	}

	codeSize := uint64(len(code))
	paddedCode, ok := align8(codeSize)
	if !ok {
		return nil, fmt.Errorf("code section too large for object layout")
	}

	shoff := HeaderSize + paddedCode
	symtabOff := shoff + SectionNum*ShentSize
	symtabSize := uint64(SymentSize * len(syms))
	strtabOff := symtabOff + symtabSize
	shstrtabOff := strtabOff + uint64(len(strtab))
	total := shstrtabOff + uint64(len(shstrtab))
	if total < shoff {
		return nil, fmt.Errorf("object layout offset overflow")
	}

	hdr := fileHeader{
		Type:      etRel,
		Machine:   cfg.Machine,
		Version:   evCurrent,
		Shoff:     shoff,
		Ehsize:    HeaderSize,
		Shentsize: ShentSize,
		Shnum:     SectionNum,
		Shstrndx:  ShstrndxIdx,
	}
	copy(hdr.Ident[:4], "\x7fELF")
	hdr.Ident[4] = elfClass64
	hdr.Ident[5] = elfData2LSB
	hdr.Ident[6] = evCurrent
	hdr.Ident[7] = elfOSABISysV

	shdrs := [SectionNum]sectionHeader{
		{}, // SHT_NULL
		{
			Name: nameText, Type: shtProgbits,
			Flags:  shfAlloc | shfExecinstr,
			Offset: HeaderSize, Size: codeSize, Addralign: 1,
		},
		{
			Name: nameData, Type: shtProgbits,
			Flags:  shfAlloc | shfWrite,
			Offset: HeaderSize + codeSize, Addralign: 1,
		},
		{
			Name: nameBss, Type: shtNobits,
			Flags:  shfAlloc | shfWrite,
			Offset: HeaderSize + codeSize, Addralign: 1,
		},
		{
			Name: nameSymtab, Type: shtSymtab,
			Offset: symtabOff, Size: symtabSize,
			Link: StrtabIdx, Info: uint32(localCount),
			Addralign: 8, Entsize: SymentSize,
		},
		{
			Name: nameStrtab, Type: shtStrtab,
			Offset: strtabOff, Size: uint64(len(strtab)), Addralign: 1,
		},
		{
			Name: nameShstrtab, Type: shtStrtab,
			Offset: shstrtabOff, Size: uint64(len(shstrtab)), Addralign: 1,
		},
	}

	buf := bytes.NewBuffer(make([]byte, 0, total))
	le := binary.LittleEndian

	if err := binary.Write(buf, le, &hdr); err != nil {
		return nil, err
	}
	buf.Write(code)
	buf.Write(make([]byte, paddedCode-codeSize))
	for i := range shdrs {
		if err := binary.Write(buf, le, &shdrs[i]); err != nil {
			return nil, err
		}
	}
	for _, s := range syms {
		ent := symEntry{
			Shndx: s.Shndx,
			Value: s.Value,
			Size:  s.Size,
		}
		if s.Name != "" {
			ent.Name = nameOffsets[s.Name]
		}
		binding, typ := uint8(stbLocal), uint8(sttNotype)
		if s.Binding == symtab.Global {
			binding = stbGlobal
		}
		if s.Type == symtab.Section {
			typ = sttSection
		}
		ent.Info = stInfo(binding, typ)
		if err := binary.Write(buf, le, &ent); err != nil {
			return nil, err
		}
	}
	buf.Write(strtab)
	buf.Write(shstrtab)

	if uint64(buf.Len()) != total {
		return nil, fmt.Errorf("object layout mismatch: wrote %d bytes, planned %d", buf.Len(), total)
	}
	return buf.Bytes(), nil
}
