package assembler

import (
	"asm14"
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var ErrBadObject = errors.New("malformed object file")

const (
	bitOne  = '/'
	bitZero = '.'
)

// RenderWord writes a word most significant bit first, '/' for a one and
// '.' for a zero.
func RenderWord(arch asm14.Arch, w asm14.MachineWord) string {
	var sb strings.Builder
	for bit := int(arch.WordBits) - 1; bit >= 0; bit-- {
		if w&(1<<bit) != 0 {
			sb.WriteByte(bitOne)
		} else {
			sb.WriteByte(bitZero)
		}
	}
	return sb.String()
}

func ParseWord(arch asm14.Arch, s string) (asm14.MachineWord, error) {
	if len(s) != int(arch.WordBits) {
		return 0, fmt.Errorf("%w: word %q is not %d bits wide", ErrBadObject, s, arch.WordBits)
	}
	var w asm14.MachineWord
	for i := 0; i < len(s); i++ {
		w <<= 1
		switch s[i] {
		case bitOne:
			w |= 1
		case bitZero:
		default:
			return 0, fmt.Errorf("%w: bad bit %q in %q", ErrBadObject, s[i], s)
		}
	}
	return w, nil
}

// WriteObject writes the instruction and data images: a header with both
// lengths, then one line per word.
func WriteObject(w io.Writer, res Result, arch asm14.Arch) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d\n", res.Code.Len(), res.Data.Len())
	for _, img := range []Image{res.Code, res.Data} {
		for i, word := range img.Words {
			fmt.Fprintf(bw, "%04d %s\n", img.Base+asm14.MachineAddress(i), RenderWord(arch, word))
		}
	}
	return bw.Flush()
}

func WriteEntries(w io.Writer, entries []SymbolExport) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		fmt.Fprintf(bw, "%s %04d\n", e.Name, e.Address)
	}
	return bw.Flush()
}

func WriteExternals(w io.Writer, refs []ExternalRef) error {
	bw := bufio.NewWriter(w)
	for _, ref := range refs {
		fmt.Fprintf(bw, "%s %04d\n", ref.Name, ref.Address)
	}
	return bw.Flush()
}

func WriteExpanded(w io.Writer, lines []asm14.SourceLine) error {
	bw := bufio.NewWriter(w)
	for _, l := range lines {
		bw.WriteString(l.Text)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

type ObjectFile struct {
	Code Image
	Data Image
}

func ReadObject(r io.Reader, arch asm14.Arch) (*ObjectFile, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: missing header", ErrBadObject)
	}
	header := strings.Fields(scanner.Text())
	if len(header) != 2 {
		return nil, fmt.Errorf("%w: header %q", ErrBadObject, scanner.Text())
	}
	codeLen, err1 := strconv.Atoi(header[0])
	dataLen, err2 := strconv.Atoi(header[1])
	if err1 != nil || err2 != nil || codeLen < 0 || dataLen < 0 {
		return nil, fmt.Errorf("%w: header %q", ErrBadObject, scanner.Text())
	}

	obj := &ObjectFile{
		Code: NewImage(arch.CodeStart),
		Data: NewImage(arch.CodeStart + asm14.MachineAddress(codeLen)),
	}
	lineNo := 1
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: line %d: %q", ErrBadObject, lineNo, scanner.Text())
		}
		addr, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad address %q", ErrBadObject, lineNo, fields[0])
		}
		word, err := ParseWord(arch, fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		img := &obj.Code
		if obj.Code.Len() >= codeLen {
			img = &obj.Data
		}
		if asm14.MachineAddress(addr) != img.Next() {
			return nil, fmt.Errorf("%w: line %d: address %d, expected %d", ErrBadObject, lineNo, addr, img.Next())
		}
		img.Append(word)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if obj.Code.Len() != codeLen || obj.Data.Len() != dataLen {
		return nil, fmt.Errorf("%w: header promises %d+%d words, found %d+%d",
			ErrBadObject, codeLen, dataLen, obj.Code.Len(), obj.Data.Len())
	}
	return obj, nil
}
