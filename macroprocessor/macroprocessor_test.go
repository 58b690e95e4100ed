package macroprocessor

import (
	"asm14"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestExpand(t *testing.T) {
	src := []string{
		"; setup",
		"mcro incboth",
		"  inc r1",
		"  inc r2",
		"endmcro",
		"MAIN: mov r3, r4",
		"incboth",
		"",
		"stop",
	}
	got, table, err := Expand(src)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := []asm14.SourceLine{
		{Number: 1, Text: "; setup"},
		{Number: 6, Text: "MAIN: mov r3, r4"},
		{Number: 7, Text: "  inc r1"},
		{Number: 7, Text: "  inc r2"},
		{Number: 8, Text: ""},
		{Number: 9, Text: "stop"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expand() =\n%v\nwant\n%v", got, want)
	}
	if table.Len() != 1 || table.Empty() {
		t.Errorf("table has %d macros, want 1", table.Len())
	}
	m, found := table.Lookup("incboth")
	if !found {
		t.Fatalf("incboth not in table")
	}
	if m.DefinedAt != 2 || len(m.Body) != 2 {
		t.Errorf("macro = %+v", m)
	}
}

func TestExpandIsSingleLevel(t *testing.T) {
	src := []string{
		"mcro a",
		"b",
		"endmcro",
		"mcro b",
		"stop",
		"endmcro",
		"a",
	}
	got, _, err := Expand(src)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := []asm14.SourceLine{{Number: 7, Text: "b"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expand() = %v, want %v", got, want)
	}
}

func TestExpandWithoutMacros(t *testing.T) {
	src := []string{"LOOP: inc r1", "undefinedname", "  ; comment", "stop"}
	got, table, err := Expand(src)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if !table.Empty() {
		t.Errorf("table should be empty")
	}
	if len(got) != len(src) {
		t.Fatalf("got %d lines, want %d", len(got), len(src))
	}
	for i, l := range got {
		if l.Text != src[i] || l.Number != i+1 {
			t.Errorf("line %d = %+v, want %q", i, l, src[i])
		}
	}
}

func TestExpandErrors(t *testing.T) {
	tests := []struct {
		name string
		src  []string
		kind error
		line int
	}{
		{"duplicate", []string{"mcro m", "stop", "endmcro", "mcro m", "rts", "endmcro"}, asm14.ErrDuplicateMacro, 4},
		{"reserved mnemonic", []string{"mcro mov", "stop", "endmcro"}, asm14.ErrDuplicateMacro, 1},
		{"reserved register", []string{"mcro r3", "stop", "endmcro"}, asm14.ErrDuplicateMacro, 1},
		{"reserved directive", []string{"mcro data", "endmcro"}, asm14.ErrDuplicateMacro, 1},
		{"unterminated", []string{"stop", "mcro m", "inc r1"}, asm14.ErrUnterminatedMacro, 2},
		{"missing name", []string{"mcro", "endmcro"}, asm14.ErrMacroSyntax, 1},
		{"extra text on mcro", []string{"mcro m x", "endmcro"}, asm14.ErrMacroSyntax, 1},
		{"extra text on endmcro", []string{"mcro m", "stop", "endmcro now"}, asm14.ErrMacroSyntax, 3},
		{"stray endmcro", []string{"stop", "endmcro"}, asm14.ErrMacroSyntax, 2},
		{"nested", []string{"mcro a", "mcro b", "endmcro", "endmcro"}, asm14.ErrMacroSyntax, 2},
		{"bad name", []string{"mcro 9lives", "endmcro"}, asm14.ErrMacroSyntax, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, _, err := Expand(tc.src)
			if err == nil {
				t.Fatalf("Expand succeeded with %v", got)
			}
			if !errors.Is(err, tc.kind) {
				t.Errorf("error %v is not %v", err, tc.kind)
			}
			var d asm14.Diagnostic
			if !errors.As(err, &d) {
				t.Fatalf("error %T is not a Diagnostic", err)
			}
			if d.Line != tc.line {
				t.Errorf("reported on line %d, want %d", d.Line, tc.line)
			}
			if got != nil {
				t.Errorf("partial output returned: %v", got)
			}
		})
	}
}

func TestMacroReport(t *testing.T) {
	info := MakeMacroProcessor()
	for i, l := range []string{"mcro m", "stop", "endmcro", "m", "m"} {
		if err := info.ProcessLine(i+1, l); err != nil {
			t.Fatalf("line %d: %v", i+1, err)
		}
	}
	if err := info.Finish(); err != nil {
		t.Fatal(err)
	}
	report := info.MacroReport()
	if !strings.Contains(report, "1 macros") || !strings.Contains(report, "used 2 times") {
		t.Errorf("unexpected report %q", report)
	}
}
