package asm14

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicateMacro        = errors.New("duplicate macro")
	ErrUnterminatedMacro     = errors.New("unterminated macro")
	ErrMacroSyntax           = errors.New("malformed macro definition")
	ErrSyntax                = errors.New("syntax error")
	ErrDuplicateSymbol       = errors.New("duplicate symbol")
	ErrUndefinedSymbol       = errors.New("undefined symbol")
	ErrUndefinedEntry        = errors.New("undefined entry")
	ErrIllegalAddressingMode = errors.New("illegal addressing mode")
	ErrImmediateOverflow     = errors.New("value out of range")
	ErrMemoryOverflow        = errors.New("memory overflow")
	ErrIgnoredLabel          = errors.New("label ignored")
)

var kinds = []error{
	ErrDuplicateMacro, ErrUnterminatedMacro, ErrMacroSyntax, ErrSyntax,
	ErrDuplicateSymbol, ErrUndefinedSymbol, ErrUndefinedEntry,
	ErrIllegalAddressingMode, ErrImmediateOverflow, ErrMemoryOverflow,
	ErrIgnoredLabel, ErrBadArch, ErrNotControlWord,
}

// KindOf returns the sentinel err wraps, or ErrSyntax when it wraps none.
func KindOf(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrSyntax
}

type Severity uint8

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one entry of the debug list. Kind is one of the sentinel
// errors above, so errors.Is works on a Diagnostic directly.
type Diagnostic struct {
	Line     int
	Column   int
	Severity Severity
	Kind     error
	Message  string
}

func (d Diagnostic) Error() string {
	if d.Column > 0 {
		return fmt.Sprintf("line %d, col %d: %s", d.Line, d.Column, d.Message)
	}
	return fmt.Sprintf("line %d: %s", d.Line, d.Message)
}

func (d Diagnostic) Unwrap() error {
	return d.Kind
}

// DebugList collects diagnostics in the order they were found. A unit
// translates successfully iff the list holds no error.
type DebugList struct {
	entries []Diagnostic
}

func (l *DebugList) Add(line int, sev Severity, kind error, format string, args ...any) {
	l.entries = append(l.entries, Diagnostic{
		Line:     line,
		Severity: sev,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (l *DebugList) Append(d Diagnostic) {
	l.entries = append(l.entries, d)
}

// AddError records err as an error on line. A Diagnostic is kept as is.
func (l *DebugList) AddError(line int, err error) {
	var d Diagnostic
	if errors.As(err, &d) {
		l.entries = append(l.entries, d)
		return
	}
	l.entries = append(l.entries, Diagnostic{
		Line:     line,
		Severity: SeverityError,
		Kind:     KindOf(err),
		Message:  err.Error(),
	})
}

func (l *DebugList) All() []Diagnostic {
	return append([]Diagnostic(nil), l.entries...)
}

func (l *DebugList) filter(sev Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range l.entries {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

func (l *DebugList) Errors() []Diagnostic {
	return l.filter(SeverityError)
}

func (l *DebugList) Warnings() []Diagnostic {
	return l.filter(SeverityWarning)
}

func (l *DebugList) Failed() bool {
	for _, d := range l.entries {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (l *DebugList) Len() int {
	return len(l.entries)
}

// Count returns how many diagnostics match kind.
func (l *DebugList) Count(kind error) int {
	n := 0
	for _, d := range l.entries {
		if errors.Is(d, kind) {
			n++
		}
	}
	return n
}

func (l *DebugList) Err() error {
	errs := l.Errors()
	if len(errs) == 0 {
		return nil
	}
	joined := make([]error, len(errs))
	for i, d := range errs {
		joined[i] = d
	}
	return errors.Join(joined...)
}

func (l *DebugList) String() string {
	var sb strings.Builder
	for _, d := range l.entries {
		fmt.Fprintf(&sb, "%s: %s\n", d.Severity, d.Error())
	}
	return sb.String()
}
