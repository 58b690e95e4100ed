package assembler

import (
	"asm14"
	"fmt"
)

type StatementKind uint8

const (
	StmtEmpty StatementKind = iota
	StmtDirective
	StmtInstruction
)

type Directive uint8

const (
	DirData Directive = iota
	DirString
	DirMat
	DirEntry
	DirExtern
)

func (d Directive) String() string {
	switch d {
	case DirData:
		return ".data"
	case DirString:
		return ".string"
	case DirMat:
		return ".mat"
	case DirEntry:
		return ".entry"
	case DirExtern:
		return ".extern"
	}
	return fmt.Sprintf("Directive(%d)", uint8(d))
}

// Operand is one instruction argument. Resolved and Linkage are filled in
// by the second pass for direct and indexed operands.
type Operand struct {
	Mode     asm14.AddrMode
	Value    int64
	Label    string
	Register asm14.Register
	Col      int

	Resolved asm14.MachineAddress
	Linkage  asm14.Linkage
}

func (op Operand) String() string {
	switch op.Mode {
	case asm14.ModeImmediate:
		return fmt.Sprintf("#%d", op.Value)
	case asm14.ModeDirect:
		return op.Label
	case asm14.ModeIndexed:
		return fmt.Sprintf("%s[%v]", op.Label, op.Register)
	}
	return op.Register.String()
}

type Statement struct {
	Line  int
	Label string
	Kind  StatementKind

	Directive Directive
	Values    []int64 // .data values, .mat cells, .string characters
	Rows      int
	Cols      int
	Symbol    string // .entry/.extern target

	// IgnoredLabel is set when a label was written on .entry or .extern.
	IgnoredLabel string

	Instruction asm14.Instruction
	Operands    []Operand // source first when there are two
}

func (st *Statement) IsData() bool {
	if st.Kind != StmtDirective {
		return false
	}
	return st.Directive == DirData || st.Directive == DirString || st.Directive == DirMat
}

// Source returns the source operand of a two operand instruction.
func (st *Statement) Source() *Operand {
	if len(st.Operands) < 2 {
		return nil
	}
	return &st.Operands[0]
}

func (st *Statement) Dest() *Operand {
	if len(st.Operands) == 0 {
		return nil
	}
	return &st.Operands[len(st.Operands)-1]
}

func (st *Statement) sharesRegisterWord() bool {
	src, dst := st.Source(), st.Dest()
	return src != nil && src.Mode == asm14.ModeRegister && dst.Mode == asm14.ModeRegister
}

// operandOffsets gives, for each operand, the offset of its extra word from
// the control word.
func (st *Statement) operandOffsets() []int {
	offsets := make([]int, len(st.Operands))
	for i := range st.Operands {
		offsets[i] = 1 + i
	}
	if st.sharesRegisterWord() {
		offsets[1] = 1
	}
	return offsets
}

// WordCount is the number of memory words the statement occupies.
func (st *Statement) WordCount() int {
	switch st.Kind {
	case StmtInstruction:
		n := 1 + len(st.Operands)
		if st.sharesRegisterWord() {
			n--
		}
		return n
	case StmtDirective:
		if st.IsData() {
			return len(st.Values)
		}
	}
	return 0
}
