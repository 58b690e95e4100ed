package asm14

import "testing"

func TestInstructionTable(t *testing.T) {
	tests := []struct {
		name    string
		opcode  Opcode
		numArgs int
		src     ModeSet
		dst     ModeSet
	}{
		{"mov", 0, 2, AcceptAny, AcceptWritable},
		{"cmp", 1, 2, AcceptAny, AcceptAny},
		{"add", 2, 2, AcceptAny, AcceptWritable},
		{"sub", 3, 2, AcceptAny, AcceptWritable},
		{"not", 4, 1, AcceptNone, AcceptWritable},
		{"clr", 5, 1, AcceptNone, AcceptWritable},
		{"lea", 6, 2, AcceptMemory, AcceptWritable},
		{"inc", 7, 1, AcceptNone, AcceptWritable},
		{"dec", 8, 1, AcceptNone, AcceptWritable},
		{"jmp", 9, 1, AcceptNone, AcceptMemory},
		{"bne", 10, 1, AcceptNone, AcceptMemory},
		{"red", 11, 1, AcceptNone, AcceptWritable},
		{"prn", 12, 1, AcceptNone, AcceptAny},
		{"jsr", 13, 1, AcceptNone, AcceptMemory},
		{"rts", 14, 0, AcceptNone, AcceptNone},
		{"stop", 15, 0, AcceptNone, AcceptNone},
	}
	if len(InstMap()) != len(tests) {
		t.Fatalf("InstMap has %d entries, want %d", len(InstMap()), len(tests))
	}
	for _, tc := range tests {
		inst, found := LookupInstruction(tc.name)
		if !found {
			t.Errorf("%s missing", tc.name)
			continue
		}
		if inst.Opcode != tc.opcode || inst.NumArgs != tc.numArgs || inst.Src != tc.src || inst.Dst != tc.dst {
			t.Errorf("%s = %+v", tc.name, inst)
		}
		if inst.Opcode.String() != tc.name {
			t.Errorf("Opcode(%d).String() = %q, want %q", uint8(tc.opcode), inst.Opcode.String(), tc.name)
		}
	}
}

func TestModeSet(t *testing.T) {
	if AcceptMemory.Has(ModeImmediate) || AcceptMemory.Has(ModeRegister) {
		t.Errorf("memory set accepts non-memory modes")
	}
	if !AcceptMemory.Has(ModeDirect) || !AcceptMemory.Has(ModeIndexed) {
		t.Errorf("memory set rejects memory modes")
	}
	for m := ModeImmediate; m <= ModeRegister; m++ {
		if !AcceptAny.Has(m) {
			t.Errorf("AcceptAny rejects %v", m)
		}
		if AcceptNone.Has(m) {
			t.Errorf("AcceptNone accepts %v", m)
		}
	}
}

func TestReservedWords(t *testing.T) {
	tests := []struct {
		word string
		want bool
	}{
		{"mov", true},
		{"stop", true},
		{"r0", true},
		{"r7", true},
		{"r8", false},
		{"data", true},
		{"string", true},
		{"mat", true},
		{"entry", true},
		{"extern", true},
		{"mcro", true},
		{"endmcro", true},
		{"MOV", false},
		{"MAIN", false},
		{".data", false},
	}
	for _, tc := range tests {
		if got := IsReserved(tc.word); got != tc.want {
			t.Errorf("IsReserved(%q) = %v; want %v", tc.word, got, tc.want)
		}
	}
}

func TestParseRegister(t *testing.T) {
	for i := 0; i < NumRegisters; i++ {
		r, found := ParseRegister(Register(i).String())
		if !found || int(r) != i {
			t.Errorf("ParseRegister(r%d) = %v, %v", i, r, found)
		}
	}
	for _, name := range []string{"r8", "R1", "r", "r-1", "r01"} {
		if _, found := ParseRegister(name); found {
			t.Errorf("ParseRegister(%q) succeeded", name)
		}
	}
}

func TestIsIdentifier(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"abc", true},
		{"A1b2", true},
		{"x", true},
		{"1abc", false},
		{"", false},
		{"_abc", false},
		{"ab_c", false},
		{"ab-c", false},
		{"ab c", false},
	}
	for _, tc := range tests {
		if got := IsIdentifier(tc.input); got != tc.want {
			t.Errorf("IsIdentifier(%q) = %v; want %v", tc.input, got, tc.want)
		}
	}
}
