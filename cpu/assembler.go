// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"iter"
	"maps"
	"regexp"
	"strings"

	"github.com/retroenv/retrogolib/log"

	"github.com/ezrec/y86/internal"
)

const (
	ADDRESS_LIMIT = 1 << 24 // Default end of the assembled image.
)

var labelPattern = regexp.MustCompile(`^[A-Za-z_.][A-Za-z0-9_.]*$`)

// Assembler is a two pass assembler for the y86 instruction set.
// It holds only configuration; each Parse builds a fresh label table.
type Assembler struct {
	Verbose bool            // If set, verbosely logs the assembler actions.
	Logger  *log.Logger     // Logger for verbose tracing.
	Isa     *InstructionSet // Instruction set. If nil, DefaultInstructionSet.
	Limit   uint64          // End of the image. If zero, ADDRESS_LIMIT.

	predefine map[string]int64 // Predefined symbols.
}

// Predefine defines a symbol visible to operands and expressions.
// Labels in the source take precedence.
func (asm *Assembler) Predefine(name string, value int64) {
	if asm.predefine == nil {
		asm.predefine = map[string]int64{name: value}
	} else {
		asm.predefine[name] = value
	}
}

// sourceLine is a preprocessed line of input.
type sourceLine struct {
	LineNo int      // 1-based line number.
	Source string   // Line as written.
	Labels []string // Labels defined on the line.
	Fields []string // Whitespace separated words after the labels.
}

// Text returns the line after comments and labels.
func (sl *sourceLine) Text() string {
	return strings.Join(sl.Fields, " ")
}

// assembly is the state of a single compilation.
type assembly struct {
	*Assembler
	isa    *InstructionSet
	limit  uint64
	labels map[string]uint64
}

// Compile assembles source text.
func (asm *Assembler) Compile(text string) (prog *Program, err error) {
	return asm.Parse(strings.NewReader(text))
}

// Parse assembles an input stream into a Program. The first malformed line
// fails the compilation with an *ErrSyntax; no partial program is returned.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	lines, err := preprocess(input)
	if err != nil {
		return
	}

	a := &assembly{
		Assembler: asm,
		isa:       asm.Isa,
		limit:     asm.Limit,
		labels:    map[string]uint64{},
	}
	if a.isa == nil {
		a.isa = DefaultInstructionSet
	}
	if a.limit == 0 {
		a.limit = ADDRESS_LIMIT
	}

	err = a.pass1(lines)
	if err != nil {
		return
	}

	prog, err = a.pass2(lines)
	if err != nil {
		prog = nil
	}

	return
}

// preprocess splits the input into lines, strips comments, and separates
// leading labels.
func preprocess(input io.Reader) (lines []sourceLine, err error) {
	scanner := bufio.NewScanner(input)

	var lineno int
	for scanner.Scan() {
		source := scanner.Text()
		lineno += 1

		text, _, _ := strings.Cut(source, "#")
		sl := sourceLine{
			LineNo: lineno,
			Source: source,
			Fields: strings.Fields(text),
		}

		for len(sl.Fields) > 0 && strings.HasSuffix(sl.Fields[0], ":") {
			label := strings.TrimSuffix(sl.Fields[0], ":")
			if !labelPattern.MatchString(label) {
				err = &ErrSyntax{LineNo: lineno, Line: strings.TrimSpace(source), Err: ErrLabelSyntax}
				return
			}
			sl.Labels = append(sl.Labels, label)
			sl.Fields = sl.Fields[1:]
		}

		lines = append(lines, sl)
	}

	err = scanner.Err()
	if err != nil {
		err = &ErrSyntax{LineNo: lineno + 1, Err: err}
	}

	return
}

// directive parses the single literal operand of a sizing directive.
func directive(sl *sourceLine) (value int64, err error) {
	if len(sl.Fields) != 2 {
		err = ErrOperandCount
		return
	}

	return ParseNumber(sl.Fields[1])
}

// align rounds pc up to a multiple of n.
func align(pc uint64, n uint64) uint64 {
	rem := pc % n
	if rem != 0 {
		pc += n - rem
	}
	return pc
}

// pass1 builds the label table from the static instruction lengths.
func (a *assembly) pass1(lines []sourceLine) (err error) {
	var pc uint64
	var sl *sourceLine

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: sl.LineNo, Line: strings.TrimSpace(sl.Source), Err: err}
		}
	}()

	for n := range lines {
		sl = &lines[n]

		for _, label := range sl.Labels {
			_, ok := a.labels[label]
			if ok {
				err = ErrLabelDuplicate
				return
			}
			a.labels[label] = pc
		}

		if len(sl.Fields) == 0 {
			continue
		}

		word := sl.Fields[0]
		switch word {
		case ".align":
			var value int64
			value, err = directive(sl)
			if err != nil {
				return
			}
			if value <= 0 {
				err = ErrAlignInvalid
				return
			}
			if uint64(value) > a.limit {
				err = ErrPosRange
				return
			}
			pc = align(pc, uint64(value))
		case ".quad":
			pc += QUAD_SIZE
		case ".pos":
			var value int64
			value, err = directive(sl)
			if err != nil {
				return
			}
			if value < 0 {
				err = ErrDirectiveValue
				return
			}
			if uint64(value) < pc {
				err = ErrPosBackwards
				return
			}
			pc = uint64(value)
		default:
			length, ok := a.isa.Length(word)
			if !ok {
				err = ErrTokenUnrecognized
				return
			}
			pc += uint64(length)
		}

		if pc > a.limit {
			err = ErrPosRange
			return
		}
	}

	return
}

// pass2 encodes every line.
func (a *assembly) pass2(lines []sourceLine) (prog *Program, err error) {
	prog = &Program{
		Labels: maps.Clone(a.labels),
	}

	var pc uint64
	for n := range lines {
		sl := &lines[n]

		rec := Record{
			LineNo:  sl.LineNo,
			Address: pc,
			Source:  sl.Source,
		}

		if len(sl.Fields) > 0 {
			var brk bool
			brk, err = a.encode(sl, &rec)
			if err != nil {
				err = &ErrSyntax{LineNo: sl.LineNo, Line: strings.TrimSpace(sl.Source), Err: err}
				return
			}
			if brk {
				prog.Breakpoints = append(prog.Breakpoints, pc)
			}
		}

		if a.Verbose && a.Logger != nil && len(rec.Bytes) > 0 {
			a.Logger.Debug("asm: encode",
				log.Hex("pc", pc),
				log.String("bytes", internal.Bytes(rec.Bytes)),
				log.String("line", sl.Text()))
		}

		pc += uint64(len(rec.Bytes))
		prog.Records = append(prog.Records, rec)
	}

	return
}

// encode a line into its record.
func (a *assembly) encode(sl *sourceLine, rec *Record) (brk bool, err error) {
	stmt, err := parseStatement(sl.Text())
	if err != nil {
		return
	}

	switch stmt.Mnemonic {
	case ".pos", ".align":
		if len(stmt.Operands) != 1 {
			err = ErrOperandCount
			return
		}
		var value int64
		value, err = a.value(stmt.Operands[0])
		if err != nil {
			return
		}
		target := uint64(value)
		if stmt.Mnemonic == ".align" {
			if value <= 0 {
				err = ErrAlignInvalid
				return
			}
			target = align(rec.Address, uint64(value))
		}
		if target < rec.Address {
			err = ErrPosBackwards
			return
		}
		if target > a.limit {
			err = ErrPosRange
			return
		}
		rec.Bytes = make([]byte, target-rec.Address)
		rec.Fill = true
	case ".quad":
		if len(stmt.Operands) != 1 {
			err = ErrOperandCount
			return
		}
		var value int64
		value, err = a.value(stmt.Operands[0])
		if err != nil {
			return
		}
		rec.Bytes = binary.LittleEndian.AppendUint64(nil, uint64(value))
	default:
		op, ok := a.isa.Lookup(stmt.Mnemonic)
		if !ok {
			err = ErrTokenUnrecognized
			return
		}
		rec.Bytes, err = a.encodeOp(op, stmt.Operands)
		if err != nil {
			return
		}
		if len(rec.Bytes) != op.Length() {
			err = ErrLengthMismatch
			return
		}
		brk = op.Kind == KIND_BRK
	}

	return
}

// operandCount is the number of operands required by each class.
var operandCount = map[Class]int{
	CLASS_NONE: 0,
	CLASS_RR:   2,
	CLASS_IR:   2,
	CLASS_RM:   2,
	CLASS_MR:   2,
	CLASS_DEST: 1,
	CLASS_REG:  1,
	CLASS_MARK: 0,
}

// encodeOp encodes an instruction from its operands.
func (a *assembly) encodeOp(op Op, operands []*operand) (code []byte, err error) {
	if len(operands) != operandCount[op.Class] {
		err = ErrOperandCount
		return
	}

	if op.Class == CLASS_MARK {
		return
	}

	code = []byte{op.Code}

	var ra, rb Reg
	var value int64

	switch op.Class {
	case CLASS_NONE:
		// pass
	case CLASS_RR:
		ra, err = a.register(operands[0])
		if err != nil {
			return
		}
		rb, err = a.register(operands[1])
		if err != nil {
			return
		}
		code = append(code, byte(ra<<4|rb))
	case CLASS_IR:
		value, err = a.value(operands[0])
		if err != nil {
			return
		}
		rb, err = a.register(operands[1])
		if err != nil {
			return
		}
		code = append(code, byte(REG_NONE<<4|rb))
		code = binary.LittleEndian.AppendUint64(code, uint64(value))
	case CLASS_RM:
		ra, err = a.register(operands[0])
		if err != nil {
			return
		}
		value, rb, err = a.memory(operands[1])
		if err != nil {
			return
		}
		code = append(code, byte(ra<<4|rb))
		code = binary.LittleEndian.AppendUint64(code, uint64(value))
	case CLASS_MR:
		value, rb, err = a.memory(operands[0])
		if err != nil {
			return
		}
		ra, err = a.register(operands[1])
		if err != nil {
			return
		}
		code = append(code, byte(ra<<4|rb))
		code = binary.LittleEndian.AppendUint64(code, uint64(value))
	case CLASS_DEST:
		value, err = a.value(operands[0])
		if err != nil {
			return
		}
		code = binary.LittleEndian.AppendUint64(code, uint64(value))
	case CLASS_REG:
		ra, err = a.register(operands[0])
		if err != nil {
			return
		}
		code = append(code, byte(ra<<4|REG_NONE))
	}

	return
}

// register resolves a register operand.
func (a *assembly) register(opd *operand) (reg Reg, err error) {
	if opd.Register == nil {
		err = ErrOperandKind
		return
	}

	reg, ok := LookupRegister(*opd.Register)
	if !ok {
		err = errors.Join(ErrRegisterInvalid, ErrParseValue(*opd.Register))
	}

	return
}

// memory resolves a 'disp(%reg)' operand.
func (a *assembly) memory(opd *operand) (disp int64, base Reg, err error) {
	mem := opd.Memory
	if mem == nil {
		err = ErrOperandKind
		return
	}

	if mem.Displacement != nil {
		disp, err = a.resolve(*mem.Displacement)
		if err != nil {
			return
		}
	}

	base, ok := LookupRegister(mem.Base)
	if !ok {
		err = errors.Join(ErrRegisterInvalid, ErrParseValue(mem.Base))
	}

	return
}

// value resolves an immediate, expression, number or label operand.
func (a *assembly) value(opd *operand) (value int64, err error) {
	switch {
	case opd.Expression != nil:
		return a.resolve(*opd.Expression)
	case opd.Immediate != nil:
		return a.resolve(*opd.Immediate)
	case opd.Number != nil:
		return a.resolve(*opd.Number)
	case opd.Label != nil:
		return a.resolve(*opd.Label)
	}

	err = ErrOperandKind
	return
}

// resolve a single word: $(expression), $literal, literal or symbol.
func (a *assembly) resolve(word string) (value int64, err error) {
	if strings.HasPrefix(word, "$(") && strings.HasSuffix(word, ")") {
		expr := word[2 : len(word)-1]
		value, err = evalExpression(expr, a.symbols())
		if err != nil {
			err = errors.Join(ErrParseExpression(expr), err)
		}
		return
	}

	word = strings.TrimPrefix(word, "$")
	if len(word) == 0 {
		err = ErrParseValue(word)
		return
	}

	if word[0] == '-' || (word[0] >= '0' && word[0] <= '9') {
		return ParseNumber(word)
	}

	addr, ok := a.labels[word]
	if ok {
		value = int64(addr)
		return
	}

	value, ok = a.predefine[word]
	if !ok {
		err = ErrLabelMissing(word)
	}

	return
}

// symbols returns the predefined symbols followed by the labels.
func (a *assembly) symbols() iter.Seq2[string, int64] {
	labels := func(yield func(string, int64) bool) {
		for name, addr := range a.labels {
			if !yield(name, int64(addr)) {
				return
			}
		}
	}

	return internal.IterSeq2Concat(maps.All(a.predefine), labels)
}
