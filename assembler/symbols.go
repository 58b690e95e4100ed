package assembler

import (
	"asm14"
	"errors"
	"fmt"
)

type SymbolKind uint8

const (
	SymCode SymbolKind = iota
	SymData
	SymExternal
)

func (k SymbolKind) String() string {
	switch k {
	case SymCode:
		return "code"
	case SymData:
		return "data"
	case SymExternal:
		return "external"
	}
	return fmt.Sprintf("SymbolKind(%d)", uint8(k))
}

// Symbol is a label definition or an external declaration. Entry marks a
// local symbol exported through .entry.
type Symbol struct {
	Name    string
	Address asm14.MachineAddress
	Kind    SymbolKind
	Entry   bool
	Line    int
}

var errFrozen = errors.New("symbol table is frozen")

type SymbolTable struct {
	symbols map[string]*Symbol
	order   []string
	frozen  bool
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]*Symbol)}
}

func (t *SymbolTable) add(sym Symbol) {
	t.symbols[sym.Name] = &sym
	t.order = append(t.order, sym.Name)
}

// Define records a label. Data labels are given their offset into the data
// image until Relocate moves them behind the code.
func (t *SymbolTable) Define(name string, kind SymbolKind, addr asm14.MachineAddress, line int) error {
	if t.frozen {
		return errFrozen
	}
	if prev, found := t.symbols[name]; found {
		if prev.Kind == SymExternal {
			return fmt.Errorf("%w: %q was declared external on line %d", asm14.ErrDuplicateSymbol, name, prev.Line)
		}
		return fmt.Errorf("%w: %q already defined on line %d", asm14.ErrDuplicateSymbol, name, prev.Line)
	}
	t.add(Symbol{Name: name, Address: addr, Kind: kind, Line: line})
	return nil
}

func (t *SymbolTable) DeclareExternal(name string, line int) error {
	if t.frozen {
		return errFrozen
	}
	if prev, found := t.symbols[name]; found {
		if prev.Kind == SymExternal {
			return nil
		}
		return fmt.Errorf("%w: %q is defined on line %d and cannot be external", asm14.ErrDuplicateSymbol, name, prev.Line)
	}
	t.add(Symbol{Name: name, Kind: SymExternal, Line: line})
	return nil
}

func (t *SymbolTable) MarkEntry(name string) error {
	sym, found := t.symbols[name]
	if !found {
		return fmt.Errorf("%w: %q is never defined", asm14.ErrUndefinedEntry, name)
	}
	if sym.Kind == SymExternal {
		return fmt.Errorf("%w: %q is external and cannot be an entry", asm14.ErrUndefinedEntry, name)
	}
	sym.Entry = true
	return nil
}

// Relocate places every data symbol after the instruction image.
func (t *SymbolTable) Relocate(dataBase asm14.MachineAddress) error {
	if t.frozen {
		return errFrozen
	}
	for _, sym := range t.symbols {
		if sym.Kind == SymData {
			sym.Address += dataBase
		}
	}
	return nil
}

func (t *SymbolTable) Freeze() {
	t.frozen = true
}

func (t *SymbolTable) Frozen() bool {
	return t.frozen
}

func (t *SymbolTable) Lookup(name string) (Symbol, bool) {
	sym, found := t.symbols[name]
	if !found {
		return Symbol{}, false
	}
	return *sym, true
}

func (t *SymbolTable) Len() int {
	return len(t.order)
}

// Symbols lists the table in definition order.
func (t *SymbolTable) Symbols() []Symbol {
	out := make([]Symbol, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, *t.symbols[name])
	}
	return out
}

type SymbolExport struct {
	Name    string
	Address asm14.MachineAddress
}

func (t *SymbolTable) Entries() []SymbolExport {
	var out []SymbolExport
	for _, name := range t.order {
		sym := t.symbols[name]
		if sym.Entry {
			out = append(out, SymbolExport{Name: sym.Name, Address: sym.Address})
		}
	}
	return out
}
