package macroprocessor

import (
	"asm14"
	"fmt"
	"sort"
	"strings"
)

const (
	GND  = 0 // outside any definition
	BODY = 1 // collecting the lines of a definition
)

const (
	StartDefinition = "mcro"
	EndDefinition   = "endmcro"
)

type Macro struct {
	Name      string
	Body      []string
	DefinedAt int
	uses      int
}

// Table maps macro names to their bodies. A macro never changes once its
// definition block is closed.
type Table struct {
	macros map[string]*Macro
}

func NewTable() *Table {
	return &Table{macros: make(map[string]*Macro)}
}

func (t *Table) Define(name string, body []string, line int) error {
	if !asm14.IsIdentifier(name) {
		return macroError(line, asm14.ErrMacroSyntax, "invalid macro name %q", name)
	}
	if asm14.IsReserved(name) {
		return macroError(line, asm14.ErrDuplicateMacro, "macro name %q is a reserved word", name)
	}
	if prev, found := t.macros[name]; found {
		return macroError(line, asm14.ErrDuplicateMacro, "macro %q already defined on line %d", name, prev.DefinedAt)
	}
	t.macros[name] = &Macro{
		Name:      name,
		Body:      append([]string(nil), body...),
		DefinedAt: line,
	}
	return nil
}

func (t *Table) Lookup(name string) (*Macro, bool) {
	m, found := t.macros[name]
	return m, found
}

func (t *Table) Empty() bool {
	return len(t.macros) == 0
}

func (t *Table) Len() int {
	return len(t.macros)
}

func (t *Table) Names() []string {
	names := make([]string, 0, len(t.macros))
	for name := range t.macros {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func macroError(line int, kind error, format string, args ...any) error {
	return asm14.Diagnostic{
		Line:     line,
		Severity: asm14.SeverityError,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
	}
}

type Info struct {
	table      *Table
	state      int
	currentDef *Macro
	output     []asm14.SourceLine
	lastLine   int
}

func MakeMacroProcessor() Info {
	return Info{
		table:  NewTable(),
		state:  GND,
		output: make([]asm14.SourceLine, 0),
	}
}

func (info *Info) GetOutput() []asm14.SourceLine {
	return info.output
}

func (info *Info) Table() *Table {
	return info.table
}

func (info *Info) ProcessLine(number int, rawline string) error {
	info.lastLine = number
	fields := strings.Fields(rawline)
	isComment := len(fields) > 0 && strings.HasPrefix(fields[0], ";")
	if isComment {
		fields = nil
	}

	if info.state != GND {
		return info.handleMacroDef(number, rawline, fields)
	}

	if len(fields) > 0 {
		switch fields[0] {
		case StartDefinition:
			if len(fields) != 2 {
				return macroError(number, asm14.ErrMacroSyntax, "%s takes exactly one name", StartDefinition)
			}
			info.currentDef = &Macro{Name: fields[1], DefinedAt: number}
			info.state = BODY
			return nil
		case EndDefinition:
			return macroError(number, asm14.ErrMacroSyntax, "%s without %s", EndDefinition, StartDefinition)
		}
	}

	if len(fields) == 1 {
		if macro, found := info.table.Lookup(fields[0]); found {
			macro.uses++
			for _, body := range macro.Body {
				info.output = append(info.output, asm14.SourceLine{Number: number, Text: body})
			}
			return nil
		}
	}
	info.output = append(info.output, asm14.SourceLine{Number: number, Text: rawline})
	return nil
}

func (info *Info) handleMacroDef(number int, rawline string, fields []string) error {
	if len(fields) > 0 {
		switch fields[0] {
		case StartDefinition:
			return macroError(number, asm14.ErrMacroSyntax, "nested macro definition inside %q", info.currentDef.Name)
		case EndDefinition:
			if len(fields) != 1 {
				return macroError(number, asm14.ErrMacroSyntax, "unexpected text after %s", EndDefinition)
			}
			def := info.currentDef
			info.currentDef = nil
			info.state = GND
			return info.table.Define(def.Name, def.Body, def.DefinedAt)
		}
	}
	info.currentDef.Body = append(info.currentDef.Body, rawline)
	return nil
}

// Finish must be called after the last line.
func (info *Info) Finish() error {
	if info.state != GND {
		return macroError(info.currentDef.DefinedAt, asm14.ErrUnterminatedMacro,
			"macro %q reaches end of file (line %d) without %s", info.currentDef.Name, info.lastLine, EndDefinition)
	}
	return nil
}

func (info *Info) MacroReport() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Macro report:\n\t%d macros", info.table.Len())
	for _, name := range info.table.Names() {
		m, _ := info.table.Lookup(name)
		fmt.Fprintf(&sb, "\n\t%s: %d lines, defined on line %d, used %d times", name, len(m.Body), m.DefinedAt, m.uses)
	}
	return sb.String()
}

// Expand runs the whole source through a fresh processor. The first error
// stops it; the expanded lines are only meaningful when err is nil.
func Expand(lines []string) ([]asm14.SourceLine, *Table, error) {
	info := MakeMacroProcessor()
	for i, raw := range lines {
		if err := info.ProcessLine(i+1, raw); err != nil {
			return nil, info.table, err
		}
	}
	if err := info.Finish(); err != nil {
		return nil, info.table, err
	}
	return info.GetOutput(), info.table, nil
}
