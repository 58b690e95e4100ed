package asm14

import "fmt"

type Opcode uint8

const (
	OpMov Opcode = iota
	OpCmp
	OpAdd
	OpSub
	OpNot
	OpClr
	OpLea
	OpInc
	OpDec
	OpJmp
	OpBne
	OpRed
	OpPrn
	OpJsr
	OpRts
	OpStop
	NumOpcodes
)

var opcodeNames = [NumOpcodes]string{
	"mov", "cmp", "add", "sub", "not", "clr", "lea", "inc",
	"dec", "jmp", "bne", "red", "prn", "jsr", "rts", "stop",
}

func (op Opcode) String() string {
	if op < NumOpcodes {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", uint8(op))
}

type AddrMode uint8

const (
	ModeImmediate AddrMode = iota
	ModeDirect
	ModeIndexed
	ModeRegister
)

func (m AddrMode) String() string {
	switch m {
	case ModeImmediate:
		return "immediate"
	case ModeDirect:
		return "direct"
	case ModeIndexed:
		return "indexed"
	case ModeRegister:
		return "register"
	}
	return fmt.Sprintf("AddrMode(%d)", uint8(m))
}

// ModeSet is a bit set of addressing modes.
type ModeSet uint8

const (
	AcceptImmediate ModeSet = 1 << iota
	AcceptDirect
	AcceptIndexed
	AcceptRegister

	AcceptNone    ModeSet = 0
	AcceptMemory          = AcceptDirect | AcceptIndexed
	AcceptWritable        = AcceptMemory | AcceptRegister
	AcceptAny             = AcceptImmediate | AcceptWritable
)

func (s ModeSet) Has(m AddrMode) bool {
	return s&(1<<m) != 0
}

// Linkage is the ARE tag carried in the low bits of every word.
type Linkage uint8

const (
	LinkAbsolute    Linkage = 0
	LinkExternal    Linkage = 1
	LinkRelocatable Linkage = 2
)

func (l Linkage) String() string {
	switch l {
	case LinkAbsolute:
		return "A"
	case LinkExternal:
		return "E"
	case LinkRelocatable:
		return "R"
	}
	return fmt.Sprintf("Linkage(%d)", uint8(l))
}

type Instruction struct {
	Name    string
	Opcode  Opcode
	NumArgs int
	Src     ModeSet
	Dst     ModeSet
}

// Operand modes for a one operand instruction live in Dst.
func (inst Instruction) Accepts(m AddrMode, source bool) bool {
	if source {
		return inst.Src.Has(m)
	}
	return inst.Dst.Has(m)
}

// An opcode without a row here panics while the instruction table is built.
func legalModes(op Opcode) (nargs int, src, dst ModeSet) {
	switch op {
	case OpMov, OpAdd, OpSub:
		return 2, AcceptAny, AcceptWritable
	case OpCmp:
		return 2, AcceptAny, AcceptAny
	case OpLea:
		return 2, AcceptMemory, AcceptWritable
	case OpNot, OpClr, OpInc, OpDec, OpRed:
		return 1, AcceptNone, AcceptWritable
	case OpJmp, OpBne, OpJsr:
		return 1, AcceptNone, AcceptMemory
	case OpPrn:
		return 1, AcceptNone, AcceptAny
	case OpRts, OpStop:
		return 0, AcceptNone, AcceptNone
	}
	panic(fmt.Sprintf("no addressing table for %v", op))
}

func instructionFor(op Opcode) Instruction {
	nargs, src, dst := legalModes(op)
	return Instruction{Name: op.String(), Opcode: op, NumArgs: nargs, Src: src, Dst: dst}
}

var instructions = func() map[string]Instruction {
	m := make(map[string]Instruction, NumOpcodes)
	for op := OpMov; op < NumOpcodes; op++ {
		inst := instructionFor(op)
		m[inst.Name] = inst
	}
	return m
}()

func InstMap() map[string]Instruction {
	out := make(map[string]Instruction, len(instructions))
	for k, v := range instructions {
		out[k] = v
	}
	return out
}

func LookupInstruction(name string) (Instruction, bool) {
	inst, found := instructions[name]
	return inst, found
}

func InstructionFromOpcode(op Opcode) (Instruction, bool) {
	if op >= NumOpcodes {
		return Instruction{}, false
	}
	return instructions[opcodeNames[op]], true
}

type Register uint8

const NumRegisters = 8

func (r Register) String() string {
	return fmt.Sprintf("r%d", uint8(r))
}

func RegisterInfo() map[string]Register {
	regs := make(map[string]Register, NumRegisters)
	for i := 0; i < NumRegisters; i++ {
		regs[Register(i).String()] = Register(i)
	}
	return regs
}

var registers = RegisterInfo()

func ParseRegister(name string) (Register, bool) {
	r, found := registers[name]
	return r, found
}

var reservedWords = func() map[string]bool {
	words := map[string]bool{
		"data": true, "string": true, "mat": true, "entry": true, "extern": true,
		"mcro": true, "endmcro": true,
	}
	for name := range instructions {
		words[name] = true
	}
	for name := range registers {
		words[name] = true
	}
	return words
}()

// IsReserved reports whether name may not be used for a label or a macro.
func IsReserved(name string) bool {
	return reservedWords[name]
}
