package assembler

import (
	"asm14"
	"fmt"
)

type ExternalRef struct {
	Name    string
	Address asm14.MachineAddress
}

// SecondPass resolves operands against the frozen symbol table, checks
// addressing modes and value ranges, and encodes every statement that
// passes.
func (info *Info) SecondPass() {
	info.encoder = NewEncoder(info.arch, info.ic)
	addr := info.arch.CodeStart
	for i := range info.statements {
		st := &info.statements[i]
		switch {
		case st.Kind == StmtInstruction:
			if info.resolveInstruction(st) {
				info.encoder.Encode(st)
				info.recordExternals(st, addr)
			}
			addr += asm14.MachineAddress(st.WordCount())
		case st.IsData():
			if info.checkData(st) {
				info.encoder.Encode(st)
			}
		}
	}
}

func (info *Info) errorAt(line, col int, kind error, format string, args ...any) {
	info.debug.Append(asm14.Diagnostic{
		Line:     line,
		Column:   col,
		Severity: asm14.SeverityError,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (info *Info) resolveInstruction(st *Statement) bool {
	ok := true
	inst := st.Instruction
	minImm, maxImm := info.arch.ImmediateRange()
	for i := range st.Operands {
		op := &st.Operands[i]
		source := len(st.Operands) == 2 && i == 0
		if !inst.Accepts(op.Mode, source) {
			role := "destination"
			if source {
				role = "source"
			}
			info.errorAt(st.Line, op.Col, asm14.ErrIllegalAddressingMode,
				"%s does not accept %v addressing for its %s operand", inst.Name, op.Mode, role)
			ok = false
			continue
		}
		switch op.Mode {
		case asm14.ModeImmediate:
			if op.Value < minImm || op.Value > maxImm {
				info.errorAt(st.Line, op.Col, asm14.ErrImmediateOverflow,
					"immediate %d outside [%d, %d]", op.Value, minImm, maxImm)
				ok = false
			}
		case asm14.ModeDirect, asm14.ModeIndexed:
			sym, found := info.symbols.Lookup(op.Label)
			if !found {
				info.errorAt(st.Line, op.Col, asm14.ErrUndefinedSymbol, "%q is not defined", op.Label)
				ok = false
				continue
			}
			if sym.Kind == SymExternal {
				op.Resolved, op.Linkage = 0, asm14.LinkExternal
			} else {
				op.Resolved, op.Linkage = sym.Address, asm14.LinkRelocatable
			}
		}
	}
	return ok
}

func (info *Info) recordExternals(st *Statement, addr asm14.MachineAddress) {
	offsets := st.operandOffsets()
	for i, op := range st.Operands {
		if op.Linkage == asm14.LinkExternal {
			info.externals = append(info.externals, ExternalRef{
				Name:    op.Label,
				Address: addr + asm14.MachineAddress(offsets[i]),
			})
		}
	}
}

func (info *Info) checkData(st *Statement) bool {
	if st.Directive == DirString {
		return true
	}
	lo, hi := info.arch.DataRange()
	ok := true
	for _, v := range st.Values {
		if v < lo || v > hi {
			info.debug.Add(st.Line, asm14.SeverityError, asm14.ErrImmediateOverflow,
				"%v value %d outside [%d, %d]", st.Directive, v, lo, hi)
			ok = false
		}
	}
	return ok
}
