package asm14

import (
	"errors"
	"fmt"
)

type (
	MachineAddress = uint32
	MachineWord    = uint32
)

// Field widths shared by every word layout. Only the payload of the extra
// words grows with Arch.WordBits.
const (
	AREBits      = 2
	ModeBits     = 2
	OpcodeBits   = 4
	RegisterBits = 3

	dstModeShift   = AREBits
	srcModeShift   = dstModeShift + ModeBits
	opcodeShift    = srcModeShift + ModeBits
	controlBits    = opcodeShift + OpcodeBits
	dstRegShift    = AREBits
	srcRegShift    = dstRegShift + RegisterBits
	indexRegShift  = AREBits
	indexAddrShift = indexRegShift + RegisterBits
)

const (
	MinWordBits = 14
	MaxWordBits = 30
)

var ErrBadArch = errors.New("invalid architecture")

// Arch describes the target machine: word width, where code is loaded and
// the source limits the assembler enforces.
type Arch struct {
	WordBits       uint
	CodeStart      MachineAddress
	MaxLineLength  int
	MaxLabelLength int
}

func DefaultArch() Arch {
	return Arch{
		WordBits:       14,
		CodeStart:      100,
		MaxLineLength:  80,
		MaxLabelLength: 31,
	}
}

func (a Arch) Validate() error {
	if a.WordBits < MinWordBits || a.WordBits > MaxWordBits {
		return fmt.Errorf("%w: word width %d outside [%d, %d]", ErrBadArch, a.WordBits, MinWordBits, MaxWordBits)
	}
	if a.CodeStart >= a.MemoryLimit() {
		return fmt.Errorf("%w: code start %d past memory limit %d", ErrBadArch, a.CodeStart, a.MemoryLimit())
	}
	if a.MaxLineLength <= 0 {
		return fmt.Errorf("%w: line length limit must be positive", ErrBadArch)
	}
	if a.MaxLabelLength <= 0 {
		return fmt.Errorf("%w: label length limit must be positive", ErrBadArch)
	}
	return nil
}

func (a Arch) WordMask() MachineWord {
	return MachineWord(1)<<a.WordBits - 1
}

// MemoryLimit is one past the highest address. It is bounded by the address
// field of an indexed operand, the narrowest place an address is stored.
func (a Arch) MemoryLimit() MachineAddress {
	return MachineAddress(1) << (a.WordBits - indexAddrShift)
}

// PayloadBits is the width left in an extra word after the linkage tag.
func (a Arch) PayloadBits() uint {
	return a.WordBits - AREBits
}

func (a Arch) ImmediateRange() (min, max int64) {
	return signedRange(a.PayloadBits())
}

func (a Arch) DataRange() (min, max int64) {
	return signedRange(a.WordBits)
}

func signedRange(bits uint) (int64, int64) {
	return -(int64(1) << (bits - 1)), int64(1)<<(bits-1) - 1
}

// SourceLine is one line of (possibly macro-expanded) source text together
// with the line number it came from in the original file.
type SourceLine struct {
	Number int
	Text   string
}

func NumberLines(lines []string) []SourceLine {
	out := make([]SourceLine, len(lines))
	for i, l := range lines {
		out[i] = SourceLine{Number: i + 1, Text: l}
	}
	return out
}

func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		isLetter := ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
		if i == 0 && !isLetter {
			return false
		}
		if !isLetter && !('0' <= c && c <= '9') {
			return false
		}
	}
	return true
}
