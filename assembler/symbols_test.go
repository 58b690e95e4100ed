package assembler

import (
	"asm14"
	"errors"
	"reflect"
	"testing"
)

func TestSymbolTable(t *testing.T) {
	st := NewSymbolTable()
	if err := st.Define("MAIN", SymCode, 100, 1); err != nil {
		t.Fatal(err)
	}
	if err := st.Define("LIST", SymData, 0, 2); err != nil {
		t.Fatal(err)
	}
	if err := st.Define("STR", SymData, 3, 3); err != nil {
		t.Fatal(err)
	}
	if err := st.DeclareExternal("W", 4); err != nil {
		t.Fatal(err)
	}
	if err := st.DeclareExternal("W", 5); err != nil {
		t.Errorf("redeclaring an external: %v", err)
	}

	tests := []struct {
		name string
		err  error
	}{
		{"MAIN", st.Define("MAIN", SymData, 7, 6)},
		{"W defined", st.Define("W", SymCode, 120, 7)},
		{"MAIN external", st.DeclareExternal("MAIN", 8)},
	}
	for _, tc := range tests {
		if !errors.Is(tc.err, asm14.ErrDuplicateSymbol) {
			t.Errorf("%s: error %v, want ErrDuplicateSymbol", tc.name, tc.err)
		}
	}

	if err := st.Relocate(110); err != nil {
		t.Fatal(err)
	}
	if err := st.MarkEntry("STR"); err != nil {
		t.Errorf("MarkEntry(STR): %v", err)
	}
	if err := st.MarkEntry("nope"); !errors.Is(err, asm14.ErrUndefinedEntry) {
		t.Errorf("entry of an undefined name: %v", err)
	}
	if err := st.MarkEntry("W"); !errors.Is(err, asm14.ErrUndefinedEntry) {
		t.Errorf("entry of an external: %v", err)
	}
	st.Freeze()
	if !st.Frozen() {
		t.Fatalf("table not frozen")
	}
	if err := st.Define("LATE", SymCode, 1, 9); err == nil {
		t.Errorf("defined a symbol in a frozen table")
	}
	if err := st.Relocate(1); err == nil {
		t.Errorf("relocated a frozen table")
	}

	want := []Symbol{
		{Name: "MAIN", Address: 100, Kind: SymCode, Line: 1},
		{Name: "LIST", Address: 110, Kind: SymData, Line: 2},
		{Name: "STR", Address: 113, Kind: SymData, Entry: true, Line: 3},
		{Name: "W", Address: 0, Kind: SymExternal, Line: 4},
	}
	if got := st.Symbols(); !reflect.DeepEqual(got, want) {
		t.Errorf("Symbols() =\n%+v\nwant\n%+v", got, want)
	}
	if got := st.Entries(); !reflect.DeepEqual(got, []SymbolExport{{"STR", 113}}) {
		t.Errorf("Entries() = %+v", got)
	}
	if sym, found := st.Lookup("LIST"); !found || sym.Address != 110 {
		t.Errorf("Lookup(LIST) = %+v, %v", sym, found)
	}
	if _, found := st.Lookup("LATE"); found {
		t.Errorf("LATE should not exist")
	}
	if st.Len() != 4 {
		t.Errorf("Len() = %d", st.Len())
	}
}
