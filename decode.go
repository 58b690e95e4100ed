package asm14

import (
	"errors"
	"fmt"
)

var ErrNotControlWord = errors.New("not an instruction word")

func field(w MachineWord, shift, bits uint) MachineWord {
	return (w >> shift) & (1<<bits - 1)
}

// EncodeControl builds the first word of an instruction. Absent operands
// encode as mode 0.
func EncodeControl(op Opcode, src, dst AddrMode) MachineWord {
	return MachineWord(op)<<opcodeShift |
		MachineWord(src)<<srcModeShift |
		MachineWord(dst)<<dstModeShift |
		MachineWord(LinkAbsolute)
}

// EncodeExtra builds an operand word from a payload and its linkage tag.
// The payload is truncated to the architecture's payload width.
func (a Arch) EncodeExtra(payload int64, link Linkage) MachineWord {
	p := MachineWord(uint64(payload)) & (MachineWord(1)<<a.PayloadBits() - 1)
	return p<<AREBits | MachineWord(link)
}

func EncodeIndexed(reg Register, addr MachineAddress, link Linkage) MachineWord {
	return addr<<indexAddrShift | MachineWord(reg)<<indexRegShift | MachineWord(link)
}

func EncodeRegisters(src, dst Register) MachineWord {
	return MachineWord(src)<<srcRegShift | MachineWord(dst)<<dstRegShift
}

// DecodedWord is what a control word says about the instruction it starts.
type DecodedWord struct {
	Instruction Instruction
	Src         AddrMode
	Dst         AddrMode
	Linkage     Linkage
}

// Decode inverts EncodeControl. Words carrying bits above the opcode, a
// non-absolute tag, mode bits for an absent operand or a mode the opcode
// rejects are reported as ErrNotControlWord.
func (a Arch) Decode(w MachineWord) (DecodedWord, error) {
	if w&^a.WordMask() != 0 || w>>controlBits != 0 {
		return DecodedWord{}, fmt.Errorf("%w: high bits set in %#x", ErrNotControlWord, w)
	}
	link := Linkage(field(w, 0, AREBits))
	if link != LinkAbsolute {
		return DecodedWord{}, fmt.Errorf("%w: linkage %v", ErrNotControlWord, link)
	}
	op := Opcode(field(w, opcodeShift, OpcodeBits))
	inst, _ := InstructionFromOpcode(op)
	dec := DecodedWord{
		Instruction: inst,
		Src:         AddrMode(field(w, srcModeShift, ModeBits)),
		Dst:         AddrMode(field(w, dstModeShift, ModeBits)),
		Linkage:     link,
	}
	switch inst.NumArgs {
	case 0:
		if dec.Src != 0 || dec.Dst != 0 {
			return DecodedWord{}, fmt.Errorf("%w: %s takes no operands", ErrNotControlWord, inst.Name)
		}
	case 1:
		if dec.Src != 0 || !inst.Dst.Has(dec.Dst) {
			return DecodedWord{}, fmt.Errorf("%w: bad modes for %s", ErrNotControlWord, inst.Name)
		}
	case 2:
		if !inst.Src.Has(dec.Src) || !inst.Dst.Has(dec.Dst) {
			return DecodedWord{}, fmt.Errorf("%w: bad modes for %s", ErrNotControlWord, inst.Name)
		}
	}
	return dec, nil
}

// Length is the number of words the instruction occupies, control word
// included.
func (d DecodedWord) Length() int {
	switch d.Instruction.NumArgs {
	case 0:
		return 1
	case 1:
		return 2
	}
	if d.Src == ModeRegister && d.Dst == ModeRegister {
		return 2
	}
	return 3
}

func signExtend(v MachineWord, bits uint) int64 {
	n := int64(v)
	if n&(int64(1)<<(bits-1)) != 0 {
		n -= int64(1) << bits
	}
	return n
}

func (a Arch) DecodeImmediate(w MachineWord) int64 {
	return signExtend(field(w, AREBits, a.PayloadBits()), a.PayloadBits())
}

// DecodeData reads a data word as a two's complement value.
func (a Arch) DecodeData(w MachineWord) int64 {
	return signExtend(w&a.WordMask(), a.WordBits)
}

func (a Arch) DecodeAddress(w MachineWord) (MachineAddress, Linkage) {
	return field(w, AREBits, a.PayloadBits()), Linkage(field(w, 0, AREBits))
}

func (a Arch) DecodeIndexed(w MachineWord) (Register, MachineAddress, Linkage) {
	reg := Register(field(w, indexRegShift, RegisterBits))
	addr := field(w, indexAddrShift, a.WordBits-indexAddrShift)
	return reg, addr, Linkage(field(w, 0, AREBits))
}

func DecodeRegisters(w MachineWord) (src, dst Register) {
	return Register(field(w, srcRegShift, RegisterBits)), Register(field(w, dstRegShift, RegisterBits))
}
