package assembler

import "asm14"

type pendingEntry struct {
	name string
	line int
}

// FirstPass classifies every line, assigns addresses to labels and counts
// the words of both images. Syntax errors are recorded and the scan goes on.
func (info *Info) FirstPass(lines []asm14.SourceLine) {
	lastLine := 0
	src := NewSource(lines)
	for line, ok := src.Next(); ok; line, ok = src.Next() {
		lastLine = line.Number
		st, diag := info.classifier.Classify(line)
		if diag != nil {
			info.debug.Append(*diag)
			continue
		}
		info.firstPassStatement(&st)
	}
	info.finishFirstPass(lastLine)
}

func (info *Info) firstPassStatement(st *Statement) {
	if st.IgnoredLabel != "" {
		info.notices.Add(st.Line, asm14.SeverityWarning, asm14.ErrIgnoredLabel,
			"label %q on %v is ignored", st.IgnoredLabel, st.Directive)
	}
	switch {
	case st.Kind == StmtEmpty:
		return
	case st.Kind == StmtInstruction:
		info.registerLabel(st, SymCode, info.arch.CodeStart+asm14.MachineAddress(info.ic))
		info.ic += st.WordCount()
	case st.IsData():
		info.registerLabel(st, SymData, asm14.MachineAddress(info.dc))
		info.dc += st.WordCount()
	case st.Directive == DirEntry:
		info.entries = append(info.entries, pendingEntry{name: st.Symbol, line: st.Line})
	case st.Directive == DirExtern:
		if err := info.symbols.DeclareExternal(st.Symbol, st.Line); err != nil {
			info.debug.AddError(st.Line, err)
		}
	}
	info.statements = append(info.statements, *st)
}

func (info *Info) registerLabel(st *Statement, kind SymbolKind, addr asm14.MachineAddress) {
	if st.Label == "" {
		return
	}
	if err := info.symbols.Define(st.Label, kind, addr, st.Line); err != nil {
		info.debug.AddError(st.Line, err)
	}
}

func (info *Info) finishFirstPass(lastLine int) {
	used := info.arch.CodeStart + asm14.MachineAddress(info.ic+info.dc)
	if used > info.arch.MemoryLimit() {
		info.debug.Add(lastLine, asm14.SeverityError, asm14.ErrMemoryOverflow,
			"program needs %d words from address %d, memory ends at %d",
			info.ic+info.dc, info.arch.CodeStart, info.arch.MemoryLimit())
	}
	if err := info.symbols.Relocate(info.arch.CodeStart + asm14.MachineAddress(info.ic)); err != nil {
		info.debug.AddError(lastLine, err)
	}
	for _, e := range info.entries {
		if err := info.symbols.MarkEntry(e.name); err != nil {
			info.debug.AddError(e.line, err)
		}
	}
	info.symbols.Freeze()
}
