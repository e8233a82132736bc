// Package symtab tracks the symbols of a single translation unit: the four
// fixed section symbols plus one entry per unique label or exported name.
package symtab

type Binding int

const (
	Local Binding = iota
	Global
)

type SymType int

const (
	NoType SymType = iota
	Section
)

// Symbol describes one named location (or section) in the object. Shndx is
// the section header index the symbol is bound to; 0 means undefined.
type Symbol struct {
	Name    string
	Binding Binding
	Type    SymType
	Shndx   uint16
	Value   uint64
	Size    uint64
	Defined bool
}

// Table owns the symbols during assembly. Named symbols are keyed by name;
// re-declaring a name updates the existing entry instead of duplicating it.
type Table struct {
	syms   []Symbol
	byName map[string]int
	names  []string
}

// Section header indices of the fixed sections, matching the object
// builder's fixed section ordering.
const (
	ShndxUndef uint16 = 0
	ShndxText  uint16 = 1
	ShndxData  uint16 = 2
	ShndxBss   uint16 = 3
)

// New creates a table pre-populated with the null symbol and the .text,
// .data and .bss section symbols. These are never mutated afterwards.
func New() *Table {
	t := &Table{byName: make(map[string]int)}
	t.syms = append(t.syms,
		Symbol{},
		Symbol{Binding: Local, Type: Section, Shndx: ShndxText, Defined: true},
		Symbol{Binding: Local, Type: Section, Shndx: ShndxData, Defined: true},
		Symbol{Binding: Local, Type: Section, Shndx: ShndxBss, Defined: true},
	)
	return t
}

// DefineLabel records a label declaration at the given section and offset.
// Declaring an existing name again overwrites its location (last write
// wins); the reported flag lets the caller warn about it. A name already
// introduced by .globl keeps its Global binding and becomes defined.
func (t *Table) DefineLabel(name string, shndx uint16, value uint64) (redeclared bool) {
	if i, ok := t.byName[name]; ok {
		redeclared = t.syms[i].Defined
		t.syms[i].Shndx = shndx
		t.syms[i].Value = value
		t.syms[i].Defined = true
		return redeclared
	}
	t.byName[name] = len(t.syms)
	t.syms = append(t.syms, Symbol{
		Name: name, Binding: Local, Type: NoType,
		Shndx: shndx, Value: value, Defined: true,
	})
	t.names = append(t.names, name)
	return false
}

// DeclareGlobal marks a name as exported. If the label already exists it is
// promoted in place; otherwise an undefined Global symbol is created, to be
// resolved by a later label declaration.
func (t *Table) DeclareGlobal(name string) {
	if i, ok := t.byName[name]; ok {
		t.syms[i].Binding = Global
		return
	}
	t.byName[name] = len(t.syms)
	t.syms = append(t.syms, Symbol{
		Name: name, Binding: Global, Type: NoType, Shndx: ShndxUndef,
	})
	t.names = append(t.names, name)
}

// Lookup returns the symbol recorded under name.
func (t *Table) Lookup(name string) (Symbol, bool) {
	if i, ok := t.byName[name]; ok {
		return t.syms[i], true
	}
	return Symbol{}, false
}

// Names returns the unique label/global names in first-occurrence order,
// which is also their order in the object's string table.
func (t *Table) Names() []string { return t.names }

// LabelCount returns the number of named symbols (labels and globals).
func (t *Table) LabelCount() int { return len(t.syms) - 4 }

// Undefined returns the names declared .globl that were never defined by a
// label in this unit.
func (t *Table) Undefined() []string {
	var out []string
	for _, s := range t.syms[4:] {
		if !s.Defined {
			out = append(out, s.Name)
		}
	}
	return out
}

// Ordered returns the symbols for emission, local symbols first and global
// symbols last as ELF requires, each class keeping declaration order. The
// second result is the local count, destined for .symtab's sh_info.
func (t *Table) Ordered() ([]Symbol, int) {
	out := make([]Symbol, 0, len(t.syms))
	for _, s := range t.syms {
		if s.Binding == Local {
			out = append(out, s)
		}
	}
	localCount := len(out)
	for _, s := range t.syms {
		if s.Binding == Global {
			out = append(out, s)
		}
	}
	return out, localCount
}
