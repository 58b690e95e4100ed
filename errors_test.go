package asm14

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDebugList(t *testing.T) {
	var l DebugList
	if l.Failed() || l.Err() != nil || l.Len() != 0 {
		t.Fatalf("empty list reports failure")
	}

	l.Add(3, SeverityWarning, ErrIgnoredLabel, "label %q ignored", "X")
	if l.Failed() || l.Err() != nil {
		t.Errorf("a warning must not fail the translation")
	}

	l.Add(5, SeverityError, ErrUndefinedSymbol, "%q is not defined", "LOOP")
	l.AddError(7, fmt.Errorf("%w: %q already defined", ErrDuplicateSymbol, "A"))
	if !l.Failed() {
		t.Errorf("errors recorded but Failed() is false")
	}
	if l.Len() != 3 || len(l.Errors()) != 2 || len(l.Warnings()) != 1 {
		t.Errorf("Len=%d Errors=%d Warnings=%d", l.Len(), len(l.Errors()), len(l.Warnings()))
	}

	err := l.Err()
	if !errors.Is(err, ErrUndefinedSymbol) || !errors.Is(err, ErrDuplicateSymbol) {
		t.Errorf("joined error %v lost a kind", err)
	}
	if errors.Is(err, ErrIgnoredLabel) {
		t.Errorf("warnings leaked into Err()")
	}
	if l.Count(ErrDuplicateSymbol) != 1 || l.Count(ErrSyntax) != 0 {
		t.Errorf("Count is off")
	}

	all := l.All()
	if all[0].Line != 3 || all[1].Line != 5 || all[2].Line != 7 {
		t.Errorf("diagnostics out of order: %+v", all)
	}
	if all[2].Kind != ErrDuplicateSymbol {
		t.Errorf("AddError kind = %v", all[2].Kind)
	}
	if !strings.Contains(l.String(), "warning: line 3: label \"X\" ignored") {
		t.Errorf("String() = %q", l.String())
	}
}

func TestAddErrorKeepsDiagnostic(t *testing.T) {
	var l DebugList
	d := Diagnostic{Line: 9, Column: 4, Severity: SeverityError, Kind: ErrMacroSyntax, Message: "bad"}
	l.AddError(0, d)
	if got := l.All()[0]; got != d {
		t.Errorf("AddError stored %+v, want %+v", got, d)
	}
	if d.Error() != "line 9, col 4: bad" {
		t.Errorf("Error() = %q", d.Error())
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(fmt.Errorf("wrapped: %w", ErrMemoryOverflow)) != ErrMemoryOverflow {
		t.Errorf("KindOf lost the wrapped sentinel")
	}
	if KindOf(errors.New("other")) != ErrSyntax {
		t.Errorf("unknown errors should count as syntax errors")
	}
}
