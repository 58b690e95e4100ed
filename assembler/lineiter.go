package assembler

import (
	"asm14"
	"fmt"
)

type TokenKind uint8

const (
	TokEOL TokenKind = iota
	TokWord
	TokComma
	TokColon
	TokHash
	TokLBracket
	TokRBracket
	TokString
	TokBadString // opening quote with no closing one
)

func (k TokenKind) String() string {
	switch k {
	case TokEOL:
		return "end of line"
	case TokWord:
		return "word"
	case TokComma:
		return "','"
	case TokColon:
		return "':'"
	case TokHash:
		return "'#'"
	case TokLBracket:
		return "'['"
	case TokRBracket:
		return "']'"
	case TokString, TokBadString:
		return "string"
	}
	return fmt.Sprintf("TokenKind(%d)", uint8(k))
}

type Token struct {
	Kind TokenKind
	Text string
	Col  int // 1-based
}

var punctuation = map[byte]TokenKind{
	',': TokComma,
	':': TokColon,
	'#': TokHash,
	'[': TokLBracket,
	']': TokRBracket,
}

// Mark is a saved iterator position.
type Mark int

// LineIterator walks the characters of one source line. Grammar rules
// Mark before trying to match and Reset when they give up.
type LineIterator struct {
	line asm14.SourceLine
	pos  int
}

func NewLineIterator(line asm14.SourceLine) *LineIterator {
	return &LineIterator{line: line}
}

func (it *LineIterator) Line() int { return it.line.Number }
func (it *LineIterator) Text() string { return it.line.Text }
func (it *LineIterator) Column() int { return it.pos + 1 }
func (it *LineIterator) AtEnd() bool { return it.pos >= len(it.line.Text) }
func (it *LineIterator) Mark() Mark { return Mark(it.pos) }
func (it *LineIterator) Reset(m Mark) { it.pos = int(m) }
func (it *LineIterator) Rest() string { return it.line.Text[it.pos:] }

// Peek returns the current character, or 0 at the end of the line.
func (it *LineIterator) Peek() byte {
	if it.AtEnd() {
		return 0
	}
	return it.line.Text[it.pos]
}

func (it *LineIterator) Advance() {
	if !it.AtEnd() {
		it.pos++
	}
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\v' || c == '\f'
}

func (it *LineIterator) SkipBlanks() {
	for !it.AtEnd() && isBlank(it.Peek()) {
		it.pos++
	}
}

func (it *LineIterator) NextToken() Token {
	it.SkipBlanks()
	col := it.Column()
	if it.AtEnd() {
		return Token{Kind: TokEOL, Col: col}
	}
	c := it.Peek()
	if kind, found := punctuation[c]; found {
		it.pos++
		return Token{Kind: kind, Text: string(c), Col: col}
	}
	if c == '"' {
		return it.stringToken(col)
	}
	start := it.pos
	for !it.AtEnd() {
		c := it.Peek()
		if isBlank(c) || c == '"' {
			break
		}
		if _, found := punctuation[c]; found {
			break
		}
		it.pos++
	}
	return Token{Kind: TokWord, Text: it.line.Text[start:it.pos], Col: col}
}

// stringToken takes everything up to the last quote on the line, so quotes
// may appear inside a string literal.
func (it *LineIterator) stringToken(col int) Token {
	text := it.line.Text
	end := len(text) - 1
	for end > it.pos && text[end] != '"' {
		end--
	}
	if end == it.pos {
		tok := Token{Kind: TokBadString, Text: text[it.pos+1:], Col: col}
		it.pos = len(text)
		return tok
	}
	tok := Token{Kind: TokString, Text: text[it.pos+1 : end], Col: col}
	it.pos = end + 1
	return tok
}

func (it *LineIterator) PeekToken() Token {
	m := it.Mark()
	tok := it.NextToken()
	it.Reset(m)
	return tok
}

// Source is a cursor over the expanded source of a unit.
type Source struct {
	lines []asm14.SourceLine
	next  int
}

func NewSource(lines []asm14.SourceLine) *Source {
	return &Source{lines: lines}
}

func (s *Source) Next() (asm14.SourceLine, bool) {
	if s.next >= len(s.lines) {
		return asm14.SourceLine{}, false
	}
	l := s.lines[s.next]
	s.next++
	return l, true
}

func (s *Source) Rewind() {
	s.next = 0
}
