package main

import (
	"asm14"
	"asm14/assembler"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func assemble16(t *testing.T) (asm14.Arch, []byte) {
	t.Helper()
	arch := asm14.DefaultArch()
	arch.WordBits = 16
	info := assembler.MakeAssembler(arch)
	res := info.Assemble("", []string{
		"MAIN: mov #-3, r2",
		"prn LIST[r1]",
		"stop",
		"LIST: .data 7, -1",
	})
	if !res.OK {
		t.Fatal(res.Diagnostics.String())
	}
	var buf bytes.Buffer
	if err := assembler.WriteObject(&buf, res, arch); err != nil {
		t.Fatal(err)
	}
	return arch, buf.Bytes()
}

func TestDisassembleWiderWords(t *testing.T) {
	arch, obj := assemble16(t)
	parsed, err := assembler.ReadObject(bytes.NewReader(obj), arch)
	if err != nil {
		t.Fatal(err)
	}
	got := disassemble(arch, parsed)
	want := dump{
		Code: []dumpedInstruction{
			{Address: 100, Mnemonic: "mov", Operands: []string{"#-3", "r2"}},
			{Address: 103, Mnemonic: "prn", Operands: []string{"0106[r1]/R"}},
			{Address: 105, Mnemonic: "stop"},
		},
		Data: []string{"0106 7", "0107 -1"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("disassemble = %+v, want %+v", got, want)
	}
}

func TestCommandWordBits(t *testing.T) {
	_, obj := assemble16(t)
	path := filepath.Join(t.TempDir(), "prog.ob")
	if err := os.WriteFile(path, obj, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		args    []string
		wantErr error
	}{
		{[]string{"--word-bits", "14", path}, assembler.ErrBadObject},
		{[]string{"--word-bits", "16", path}, nil},
		{[]string{"--word-bits", "8", path}, asm14.ErrBadArch},
	}
	for _, tc := range tests {
		var out bytes.Buffer
		rootCmd.SetArgs(tc.args)
		rootCmd.SetOut(&out)
		rootCmd.SetErr(io.Discard)
		err := rootCmd.Execute()
		if !errors.Is(err, tc.wantErr) {
			t.Errorf("objdump %v: err = %v, want %v", tc.args, err, tc.wantErr)
		}
		if tc.wantErr == nil && out.Len() == 0 {
			t.Errorf("objdump %v printed nothing", tc.args)
		}
	}
}
