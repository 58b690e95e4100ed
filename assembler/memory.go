package assembler

import "asm14"

// Image is a contiguous run of machine words starting at Base.
type Image struct {
	Base  asm14.MachineAddress
	Words []asm14.MachineWord
}

func NewImage(base asm14.MachineAddress) Image {
	return Image{Base: base, Words: make([]asm14.MachineWord, 0)}
}

// Append stores words at the end of the image and returns the address of
// the first one.
func (img *Image) Append(words ...asm14.MachineWord) asm14.MachineAddress {
	addr := img.Next()
	img.Words = append(img.Words, words...)
	return addr
}

func (img *Image) Len() int {
	return len(img.Words)
}

// Next is the address the next appended word will get.
func (img *Image) Next() asm14.MachineAddress {
	return img.Base + asm14.MachineAddress(len(img.Words))
}

func (img *Image) At(addr asm14.MachineAddress) (asm14.MachineWord, bool) {
	if addr < img.Base || addr >= img.Next() {
		return 0, false
	}
	return img.Words[addr-img.Base], true
}
