package assembler

import (
	"asm14"
	"asm14/macroprocessor"
	"strings"
)

// Info holds the state of one translation unit. Assemble resets it, so an
// Info may be reused for several units, one at a time.
type Info struct {
	arch       asm14.Arch
	classifier *Classifier
	symbols    *SymbolTable
	debug      asm14.DebugList
	notices    asm14.DebugList
	statements []Statement
	entries    []pendingEntry
	externals  []ExternalRef
	encoder    *Encoder
	ic         int
	dc         int
}

func MakeAssembler(arch asm14.Arch) Info {
	info := Info{arch: arch}
	info.reset()
	return info
}

func (info *Info) reset() {
	info.classifier = NewClassifier(info.arch)
	info.symbols = NewSymbolTable()
	info.debug = asm14.DebugList{}
	info.notices = asm14.DebugList{}
	info.statements = nil
	info.entries = nil
	info.externals = nil
	info.encoder = nil
	info.ic, info.dc = 0, 0
}

// Result is the outcome of one translation unit. OK is true iff Diagnostics
// is empty; when it is false only Diagnostics, Notices and Expanded (if
// macro expansion succeeded) are set. Notices never affect OK.
type Result struct {
	Name        string
	OK          bool
	Expanded    []asm14.SourceLine
	Code        Image
	Data        Image
	Entries     []SymbolExport
	Externals   []ExternalRef
	Symbols     []Symbol
	Diagnostics asm14.DebugList
	Notices     asm14.DebugList
}

func (info *Info) Assemble(name string, src []string) Result {
	info.reset()
	res := Result{Name: name}
	if err := info.arch.Validate(); err != nil {
		info.debug.AddError(0, err)
		res.Diagnostics = info.debug
		return res
	}

	expanded, _, err := macroprocessor.Expand(src)
	if err != nil {
		info.debug.AddError(0, err)
		res.Diagnostics = info.debug
		return res
	}
	res.Expanded = expanded

	info.FirstPass(expanded)
	if info.debug.Len() == 0 {
		info.SecondPass()
	}
	res.Diagnostics = info.debug
	res.Notices = info.notices
	if info.debug.Len() > 0 {
		return res
	}

	res.OK = true
	res.Code = info.encoder.Code
	res.Data = info.encoder.Data
	res.Entries = info.symbols.Entries()
	res.Externals = info.externals
	res.Symbols = info.symbols.Symbols()
	return res
}

// Assemble translates src for the default architecture.
func Assemble(src []string) Result {
	info := MakeAssembler(asm14.DefaultArch())
	return info.Assemble("", src)
}

// SplitLines breaks file contents into lines, accepting either line ending.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
