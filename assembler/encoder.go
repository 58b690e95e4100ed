package assembler

import "asm14"

// Encoder owns the two memory images of a unit and turns resolved
// statements into words.
type Encoder struct {
	arch asm14.Arch
	Code Image
	Data Image
}

func NewEncoder(arch asm14.Arch, codeLength int) *Encoder {
	return &Encoder{
		arch: arch,
		Code: NewImage(arch.CodeStart),
		Data: NewImage(arch.CodeStart + asm14.MachineAddress(codeLength)),
	}
}

// Encode appends the statement's words to the image it belongs to and
// returns the address of the first word. Operands must already be resolved.
func (e *Encoder) Encode(st *Statement) asm14.MachineAddress {
	switch {
	case st.Kind == StmtInstruction:
		return e.Code.Append(e.instructionWords(st)...)
	case st.IsData():
		return e.Data.Append(e.dataWords(st)...)
	}
	return e.Code.Next()
}

func (e *Encoder) dataWords(st *Statement) []asm14.MachineWord {
	mask := e.arch.WordMask()
	words := make([]asm14.MachineWord, len(st.Values))
	for i, v := range st.Values {
		words[i] = asm14.MachineWord(uint64(v)) & mask
	}
	return words
}

func (e *Encoder) instructionWords(st *Statement) []asm14.MachineWord {
	var src, dst asm14.AddrMode
	if op := st.Source(); op != nil {
		src = op.Mode
	}
	if op := st.Dest(); op != nil {
		dst = op.Mode
	}
	words := make([]asm14.MachineWord, 1, st.WordCount())
	words[0] = asm14.EncodeControl(st.Instruction.Opcode, src, dst)

	if st.sharesRegisterWord() {
		return append(words, asm14.EncodeRegisters(st.Source().Register, st.Dest().Register))
	}
	for i := range st.Operands {
		op := &st.Operands[i]
		words = append(words, e.operandWord(op, len(st.Operands) == 2 && i == 0))
	}
	return words
}

func (e *Encoder) operandWord(op *Operand, source bool) asm14.MachineWord {
	switch op.Mode {
	case asm14.ModeImmediate:
		return e.arch.EncodeExtra(op.Value, asm14.LinkAbsolute)
	case asm14.ModeDirect:
		return e.arch.EncodeExtra(int64(op.Resolved), op.Linkage)
	case asm14.ModeIndexed:
		return asm14.EncodeIndexed(op.Register, op.Resolved, op.Linkage)
	}
	if source {
		return asm14.EncodeRegisters(op.Register, 0)
	}
	return asm14.EncodeRegisters(0, op.Register)
}
