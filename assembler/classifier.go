package assembler

import (
	"asm14"
	"fmt"
	"regexp"
	"strconv"
)

type syntaxError struct {
	col  int
	kind error
	msg  string
}

func (e *syntaxError) Error() string {
	return e.msg
}

func errAt(col int, format string, args ...any) error {
	return &syntaxError{col: col, kind: asm14.ErrSyntax, msg: fmt.Sprintf(format, args...)}
}

// numErrAt reports a parseNum failure, keeping ErrImmediateOverflow for
// well formed numbers that do not fit.
func numErrAt(col int, prefix string, err error) error {
	return &syntaxError{col: col, kind: asm14.KindOf(err), msg: prefix + err.Error()}
}

var numberPattern = regexp.MustCompile(`^[+-]?[0-9]+$`)

func parseNum(in string) (int64, error) {
	if !numberPattern.MatchString(in) {
		return 0, fmt.Errorf("invalid number %q", in)
	}
	num, err := strconv.ParseInt(in, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q does not fit in 64 bits", asm14.ErrImmediateOverflow, in)
	}
	return num, nil
}

// A grammarRule either declines a line, leaving the iterator to be reset,
// or claims it and reports any malformed token it finds.
type grammarRule struct {
	name  string
	match func(c *Classifier, it *LineIterator, st *Statement) (bool, error)
}

type DirectiveHandler struct {
	dir   Directive
	parse func(c *Classifier, it *LineIterator, st *Statement) error
}

func Directives() map[string]DirectiveHandler {
	return map[string]DirectiveHandler{
		".data": {
			dir: DirData,
			parse: func(c *Classifier, it *LineIterator, st *Statement) error {
				vals, err := parseIntList(it, false)
				st.Values = vals
				return err
			},
		},
		".string": {dir: DirString, parse: parseString},
		".mat":    {dir: DirMat, parse: parseMat},
		".entry":  {dir: DirEntry, parse: parseLinkageName},
		".extern": {dir: DirExtern, parse: parseLinkageName},
	}
}

type Classifier struct {
	arch       asm14.Arch
	directives map[string]DirectiveHandler
	rules      []grammarRule
}

func NewClassifier(arch asm14.Arch) *Classifier {
	c := &Classifier{
		arch:       arch,
		directives: Directives(),
	}
	for _, name := range []string{".data", ".string", ".mat", ".entry", ".extern"} {
		c.rules = append(c.rules, directiveRule(name))
	}
	for n := 0; n <= 2; n++ {
		c.rules = append(c.rules, instructionRule(n))
	}
	return c
}

// Classify turns one source line into a statement. On failure the returned
// statement is empty and the diagnostic says why.
func (c *Classifier) Classify(line asm14.SourceLine) (Statement, *asm14.Diagnostic) {
	st := Statement{Line: line.Number}
	if err := c.classify(NewLineIterator(line), &st); err != nil {
		d := asm14.Diagnostic{
			Line:     line.Number,
			Severity: asm14.SeverityError,
			Kind:     asm14.ErrSyntax,
			Message:  err.Error(),
		}
		if se, ok := err.(*syntaxError); ok {
			d.Column = se.col
			d.Kind = se.kind
		}
		return Statement{Line: line.Number}, &d
	}
	return st, nil
}

func (c *Classifier) classify(it *LineIterator, st *Statement) error {
	if len(it.Text()) > c.arch.MaxLineLength {
		return errAt(c.arch.MaxLineLength+1, "line longer than %d characters", c.arch.MaxLineLength)
	}
	it.SkipBlanks()
	if it.AtEnd() || it.Peek() == ';' {
		st.Kind = StmtEmpty
		return nil
	}
	if err := c.labelPrefix(it, st); err != nil {
		return err
	}
	for _, rule := range c.rules {
		m := it.Mark()
		matched, err := rule.match(c, it, st)
		if err != nil {
			return err
		}
		if matched {
			return nil
		}
		it.Reset(m)
	}

	tok := it.NextToken()
	switch {
	case tok.Kind == TokEOL && st.Label != "":
		return errAt(tok.Col, "label %q is not followed by a statement", st.Label)
	case tok.Kind == TokWord && tok.Text[0] == '.':
		return errAt(tok.Col, "unknown directive %q", tok.Text)
	case tok.Kind == TokWord:
		return errAt(tok.Col, "unknown instruction %q", tok.Text)
	}
	return errAt(tok.Col, "unexpected %v at start of statement", tok.Kind)
}

func (c *Classifier) labelPrefix(it *LineIterator, st *Statement) error {
	m := it.Mark()
	tok := it.NextToken()
	if tok.Kind != TokWord {
		it.Reset(m)
		return nil
	}
	if it.Peek() == ':' {
		it.Advance()
		if err := c.checkLabel(tok.Text, tok.Col); err != nil {
			return err
		}
		st.Label = tok.Text
		return nil
	}
	if next := it.PeekToken(); next.Kind == TokColon {
		if asm14.IsReserved(tok.Text) {
			return errAt(next.Col, "unexpected ':' after %q", tok.Text)
		}
		return errAt(tok.Col, "whitespace between label %q and ':'", tok.Text)
	}
	it.Reset(m)
	return nil
}

func (c *Classifier) checkLabel(name string, col int) error {
	if !asm14.IsIdentifier(name) {
		return errAt(col, "invalid label %q", name)
	}
	if len(name) > c.arch.MaxLabelLength {
		return errAt(col, "label %q longer than %d characters", name, c.arch.MaxLabelLength)
	}
	if asm14.IsReserved(name) {
		return errAt(col, "reserved word %q used as a label", name)
	}
	return nil
}

func expectEnd(it *LineIterator) error {
	tok := it.NextToken()
	switch tok.Kind {
	case TokEOL:
		return nil
	case TokComma:
		return errAt(tok.Col, "unexpected ',' after statement")
	}
	return errAt(tok.Col, "unexpected %q after statement", it.Text()[tok.Col-1:])
}

func directiveRule(name string) grammarRule {
	return grammarRule{
		name: name,
		match: func(c *Classifier, it *LineIterator, st *Statement) (bool, error) {
			tok := it.NextToken()
			if tok.Kind != TokWord || tok.Text != name {
				return false, nil
			}
			handler := c.directives[name]
			st.Kind = StmtDirective
			st.Directive = handler.dir
			if err := handler.parse(c, it, st); err != nil {
				return true, err
			}
			return true, nil
		},
	}
}

func parseIntList(it *LineIterator, allowEmpty bool) ([]int64, error) {
	tok := it.NextToken()
	if tok.Kind == TokEOL {
		if allowEmpty {
			return nil, nil
		}
		return nil, errAt(tok.Col, "missing value")
	}
	var vals []int64
	for {
		switch tok.Kind {
		case TokComma:
			return nil, errAt(tok.Col, "unexpected ','")
		case TokWord:
		default:
			return nil, errAt(tok.Col, "expected an integer, found %v", tok.Kind)
		}
		v, err := parseNum(tok.Text)
		if err != nil {
			return nil, numErrAt(tok.Col, "", err)
		}
		vals = append(vals, v)

		sep := it.NextToken()
		switch sep.Kind {
		case TokEOL:
			return vals, nil
		case TokComma:
			tok = it.NextToken()
			switch tok.Kind {
			case TokEOL:
				return nil, errAt(sep.Col, "trailing ','")
			case TokComma:
				return nil, errAt(tok.Col, "consecutive commas")
			}
		default:
			return nil, errAt(sep.Col, "missing ',' between values")
		}
	}
}

func parseString(c *Classifier, it *LineIterator, st *Statement) error {
	tok := it.NextToken()
	switch tok.Kind {
	case TokString:
	case TokBadString:
		return errAt(tok.Col, "missing closing quote")
	case TokEOL:
		return errAt(tok.Col, "missing string")
	default:
		return errAt(tok.Col, "string must start with '\"'")
	}
	vals := make([]int64, 0, len(tok.Text)+1)
	for i := 0; i < len(tok.Text); i++ {
		ch := tok.Text[i]
		if ch < ' ' || ch > '~' {
			return errAt(tok.Col+1+i, "non-printable character %#x in string", ch)
		}
		vals = append(vals, int64(ch))
	}
	st.Values = append(vals, 0)
	return expectEnd(it)
}

func (c *Classifier) parseDim(it *LineIterator) (int, error) {
	open := it.NextToken()
	if open.Kind != TokLBracket {
		return 0, errAt(open.Col, "expected '[' in matrix dimensions")
	}
	num := it.NextToken()
	if num.Kind != TokWord {
		return 0, errAt(num.Col, "missing matrix dimension")
	}
	v, err := parseNum(num.Text)
	if err != nil || v < 1 {
		return 0, errAt(num.Col, "invalid matrix dimension %q", num.Text)
	}
	if v > int64(c.arch.MemoryLimit()) {
		return 0, &syntaxError{col: num.Col, kind: asm14.ErrMemoryOverflow,
			msg: fmt.Sprintf("matrix dimension %d exceeds memory of %d words", v, c.arch.MemoryLimit())}
	}
	closing := it.NextToken()
	if closing.Kind != TokRBracket {
		return 0, errAt(closing.Col, "missing ']' in matrix dimensions")
	}
	return int(v), nil
}

func parseMat(c *Classifier, it *LineIterator, st *Statement) error {
	rows, err := c.parseDim(it)
	if err != nil {
		return err
	}
	cols, err := c.parseDim(it)
	if err != nil {
		return err
	}
	it.SkipBlanks()
	col := it.Column()
	vals, err := parseIntList(it, true)
	if err != nil {
		return err
	}
	if len(vals) > rows*cols {
		return errAt(col, "%d values for a [%d][%d] matrix", len(vals), rows, cols)
	}
	st.Rows, st.Cols = rows, cols
	st.Values = make([]int64, rows*cols)
	copy(st.Values, vals)
	return nil
}

func parseLinkageName(c *Classifier, it *LineIterator, st *Statement) error {
	tok := it.NextToken()
	if tok.Kind == TokEOL {
		return errAt(tok.Col, "%v needs a symbol name", st.Directive)
	}
	if tok.Kind != TokWord {
		return errAt(tok.Col, "expected a symbol name, found %v", tok.Kind)
	}
	if err := c.checkLabel(tok.Text, tok.Col); err != nil {
		return err
	}
	st.Symbol = tok.Text
	if st.Label != "" {
		st.IgnoredLabel, st.Label = st.Label, ""
	}
	return expectEnd(it)
}

func instructionRule(arity int) grammarRule {
	return grammarRule{
		name: fmt.Sprintf("instruction/%d", arity),
		match: func(c *Classifier, it *LineIterator, st *Statement) (bool, error) {
			tok := it.NextToken()
			if tok.Kind != TokWord {
				return false, nil
			}
			inst, found := asm14.LookupInstruction(tok.Text)
			if !found || inst.NumArgs != arity {
				return false, nil
			}
			st.Kind = StmtInstruction
			st.Instruction = inst
			return true, c.parseOperands(it, st)
		},
	}
}

func (c *Classifier) parseOperands(it *LineIterator, st *Statement) error {
	inst := st.Instruction
	if inst.NumArgs == 0 {
		if tok := it.PeekToken(); tok.Kind != TokEOL {
			return errAt(tok.Col, "%s takes no operands", inst.Name)
		}
		return nil
	}
	if tok := it.PeekToken(); tok.Kind == TokComma {
		return errAt(tok.Col, "unexpected ',' after %s", inst.Name)
	}
	for i := 0; i < inst.NumArgs; i++ {
		if i > 0 {
			sep := it.NextToken()
			switch sep.Kind {
			case TokEOL:
				return errAt(sep.Col, "%s needs %d operands", inst.Name, inst.NumArgs)
			case TokComma:
			default:
				return errAt(sep.Col, "missing ',' between operands")
			}
			if tok := it.PeekToken(); tok.Kind == TokComma {
				return errAt(tok.Col, "consecutive commas")
			}
		}
		op, err := c.parseOperand(it)
		if err != nil {
			return err
		}
		st.Operands = append(st.Operands, op)
	}

	tok := it.NextToken()
	switch tok.Kind {
	case TokEOL:
		return nil
	case TokComma:
		if it.PeekToken().Kind == TokEOL {
			return errAt(tok.Col, "trailing ','")
		}
		return errAt(tok.Col, "too many operands for %s", inst.Name)
	}
	return errAt(tok.Col, "unexpected %q after operands", it.Text()[tok.Col-1:])
}

func (c *Classifier) parseOperand(it *LineIterator) (Operand, error) {
	tok := it.NextToken()
	switch tok.Kind {
	case TokEOL:
		return Operand{}, errAt(tok.Col, "missing operand")
	case TokHash:
		num := it.NextToken()
		if num.Kind != TokWord || num.Col != tok.Col+1 {
			return Operand{}, errAt(tok.Col, "'#' must be followed by an integer")
		}
		v, err := parseNum(num.Text)
		if err != nil {
			return Operand{}, numErrAt(num.Col, "invalid immediate: ", err)
		}
		return Operand{Mode: asm14.ModeImmediate, Value: v, Col: tok.Col}, nil
	case TokWord:
	default:
		return Operand{}, errAt(tok.Col, "unexpected %v in operand", tok.Kind)
	}

	if reg, found := asm14.ParseRegister(tok.Text); found {
		return Operand{Mode: asm14.ModeRegister, Register: reg, Col: tok.Col}, nil
	}
	if numberPattern.MatchString(tok.Text) {
		return Operand{}, errAt(tok.Col, "immediate %q needs a '#' prefix", tok.Text)
	}
	if err := c.checkLabel(tok.Text, tok.Col); err != nil {
		return Operand{}, err
	}
	if it.PeekToken().Kind != TokLBracket {
		return Operand{Mode: asm14.ModeDirect, Label: tok.Text, Col: tok.Col}, nil
	}
	it.NextToken()
	idx := it.NextToken()
	reg, found := asm14.ParseRegister(idx.Text)
	if idx.Kind != TokWord || !found {
		return Operand{}, errAt(idx.Col, "index of %q must be a register", tok.Text)
	}
	if closing := it.NextToken(); closing.Kind != TokRBracket {
		return Operand{}, errAt(closing.Col, "missing ']' after index register")
	}
	return Operand{Mode: asm14.ModeIndexed, Label: tok.Text, Register: reg, Col: tok.Col}, nil
}
