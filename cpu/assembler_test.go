package cpu

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/log"
	"github.com/stretchr/testify/assert"
)

func newTestAssembler(t *testing.T) *Assembler {
	return &Assembler{
		Verbose: true,
		Logger:  log.NewTestLogger(t),
	}
}

// immediate decodes the quad of a 10 byte instruction.
func immediate(rec Record) int64 {
	return int64(binary.LittleEndian.Uint64(rec.Bytes[2:]))
}

func TestAssembler_Empty(t *testing.T) {
	assert := assert.New(t)

	asm := newTestAssembler(t)

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Empty(prog.Records)
	assert.Empty(prog.Labels)
	assert.Empty(prog.Binary())
	assert.Equal(uint64(0), prog.Size())
}

func TestAssembler_AddTwo(t *testing.T) {
	assert := assert.New(t)

	asm := newTestAssembler(t)

	source := []string{
		"# add two numbers",
		"    irmovq $5, %rax",
		"    irmovq $7, %rbx",
		"    addq %rbx,%rax",
		"    halt",
	}

	prog, err := asm.Compile(strings.Join(source, "\n"))
	if !assert.NoError(err) {
		return
	}

	expected := []byte{
		0x30, 0xf0, 5, 0, 0, 0, 0, 0, 0, 0,
		0x30, 0xf3, 7, 0, 0, 0, 0, 0, 0, 0,
		0x60, 0x30,
		0x00,
	}
	assert.Equal(expected, prog.Binary())

	assert.Equal(5, len(prog.Records))
	for n, rec := range prog.Records {
		assert.Equal(n+1, rec.LineNo)
		assert.Equal(source[n], rec.Source)
	}
	assert.Empty(prog.Records[0].Bytes)
	assert.Equal(uint64(20), prog.Records[3].Address)
	assert.Equal(uint64(22), prog.Records[4].Address)
}

func TestAssembler_Labels(t *testing.T) {
	assert := assert.New(t)

	asm := newTestAssembler(t)

	source := `
        jmp end      # forward
loop:   nop
        jmp loop     # backward
a: b:   # only labels
end:    halt
`
	prog, err := asm.Compile(source)
	if !assert.NoError(err) {
		return
	}

	assert.Equal(map[string]uint64{
		"loop": 9,
		"a":    19,
		"b":    19,
		"end":  19,
	}, prog.Labels)

	bin := prog.Binary()
	assert.Equal(20, len(bin))
	assert.Equal(append([]byte{0x70}, quad(19)...), bin[0:9])
	assert.Equal(byte(0x10), bin[9])
	assert.Equal(append([]byte{0x70}, quad(9)...), bin[10:19])
	assert.Equal(byte(0x00), bin[19])
}

func TestAssembler_SelfLoop(t *testing.T) {
	assert := assert.New(t)

	asm := newTestAssembler(t)

	prog, err := asm.Compile("loop: jmp loop")
	assert.NoError(err)
	assert.Equal(append([]byte{0x70}, quad(0)...), prog.Binary())
}

func TestAssembler_Directives(t *testing.T) {
	assert := assert.New(t)

	asm := newTestAssembler(t)

	source := []string{
		".pos 0x10",
		"data: .quad 0x1122334455667788",
		".align 8",
		"halt",
		".align 16",
		"more: .quad data",
		".quad -1",
	}

	prog, err := asm.Compile(strings.Join(source, "\n"))
	if !assert.NoError(err) {
		return
	}

	assert.Equal(uint64(0x10), prog.Labels["data"])
	assert.Equal(uint64(0x20), prog.Labels["more"])

	bin := prog.Binary()
	assert.Equal(0x30, len(bin))
	assert.Equal(make([]byte, 0x10), bin[:0x10])
	assert.Equal([]byte{0x88, 0x77, 0x66, 0x55, 0x44, 0x33, 0x22, 0x11}, bin[0x10:0x18])
	assert.Equal(byte(0x00), bin[0x18])
	assert.Equal(make([]byte, 7), bin[0x19:0x20])
	assert.Equal(quad(0x10), bin[0x20:0x28])
	assert.Equal(quad(-1), bin[0x28:0x30])

	assert.True(prog.Records[0].Fill)
	assert.Empty(prog.Records[2].Bytes)
	assert.True(prog.Records[4].Fill)
	assert.False(prog.Records[5].Fill)
}

func TestAssembler_Operands(t *testing.T) {
	assert := assert.New(t)

	asm := newTestAssembler(t)

	source := []string{
		"start: irmovq $(end - start), %rax",
		"       irmovq $((2 + 3) * 4), %rbx",
		"       mrmovq $(table + 8)(%rax), %rcx",
		"       irmovq $(1 << 63), %rdx",
		"       irmovq $0xFFFFFFFFFFFFFFFF, %rsi",
		"       irmovq $-9223372036854775808, %rdi",
		"       irmovq $table, %r8",
		"       rmmovq %r9, -8(%rsp)",
		"       mrmovq (%rbp), %r10",
		"       mrmovq table(%r11), %r12",
		"       irmovq 0x40, %r13",
		"end:   halt",
		"table: .quad 0",
	}

	prog, err := asm.Compile(strings.Join(source, "\n"))
	if !assert.NoError(err) {
		return
	}

	end := int64(prog.Labels["end"])
	table := int64(prog.Labels["table"])
	assert.Equal(int64(110), end)
	assert.Equal(int64(111), table)

	recs := prog.Records
	assert.Equal(end, immediate(recs[0]))
	assert.Equal(int64(20), immediate(recs[1]))

	assert.Equal([]byte{0x50, 0x10}, recs[2].Bytes[:2])
	assert.Equal(table+8, immediate(recs[2]))

	assert.Equal(int64(math.MinInt64), immediate(recs[3]))
	assert.Equal(int64(-1), immediate(recs[4]))
	assert.Equal(int64(math.MinInt64), immediate(recs[5]))
	assert.Equal(table, immediate(recs[6]))

	assert.Equal([]byte{0x40, 0x94}, recs[7].Bytes[:2])
	assert.Equal(int64(-8), immediate(recs[7]))

	assert.Equal([]byte{0x50, 0xa5}, recs[8].Bytes[:2])
	assert.Equal(int64(0), immediate(recs[8]))

	assert.Equal([]byte{0x50, 0xcb}, recs[9].Bytes[:2])
	assert.Equal(table, immediate(recs[9]))

	assert.Equal([]byte{0x30, 0xfd}, recs[10].Bytes[:2])
	assert.Equal(int64(0x40), immediate(recs[10]))
}

func TestAssembler_EveryOp(t *testing.T) {
	assert := assert.New(t)

	operands := map[Class]string{
		CLASS_NONE: "",
		CLASS_RR:   "%rax, %rbx",
		CLASS_IR:   "$1, %rbx",
		CLASS_RM:   "%rax, 8(%rbx)",
		CLASS_MR:   "8(%rbx), %rax",
		CLASS_DEST: "0x40",
		CLASS_REG:  "%rcx",
		CLASS_MARK: "",
	}

	isa := DefaultInstructionSet
	for _, op := range isa.Ops() {
		asm := &Assembler{}
		prog, err := asm.Compile(op.Mnemonic + " " + operands[op.Class])
		if !assert.NoError(err, op.Mnemonic) {
			continue
		}

		bin := prog.Binary()
		assert.Equal(op.Length(), len(bin), op.Mnemonic)
		if op.Class == CLASS_MARK {
			assert.Equal([]uint64{0}, prog.Breakpoints)
			continue
		}

		decoded, ok := isa.Decode(bin[0])
		assert.True(ok, op.Mnemonic)
		assert.Equal(op.Mnemonic, decoded.Mnemonic)

		switch op.Class {
		case CLASS_RR:
			assert.Equal(byte(0x03), bin[1], op.Mnemonic)
		case CLASS_IR:
			assert.Equal(byte(0xf3), bin[1], op.Mnemonic)
		case CLASS_RM, CLASS_MR:
			assert.Equal(byte(0x03), bin[1], op.Mnemonic)
			assert.Equal(quad(8), bin[2:], op.Mnemonic)
		case CLASS_DEST:
			assert.Equal(quad(0x40), bin[1:], op.Mnemonic)
		case CLASS_REG:
			assert.Equal(byte(0x1f), bin[1], op.Mnemonic)
		}
	}
}

func TestAssembler_Registers(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	for a := range REG_COUNT {
		for b := range REG_COUNT {
			text := fmt.Sprintf("rrmovq %%%v, %%%v", Reg(a), Reg(b))
			prog, err := asm.Compile(text)
			if !assert.NoError(err, text) {
				continue
			}
			assert.Equal([]byte{0x20, byte(a<<4 | b)}, prog.Binary(), text)
		}
	}
}

func TestAssembler_Breakpoints(t *testing.T) {
	assert := assert.New(t)

	asm := newTestAssembler(t)

	source := []string{
		"    nop",
		"    brk",
		"    irmovq $1, %rax",
		"    brk",
		"    halt",
	}

	prog, err := asm.Compile(strings.Join(source, "\n"))
	assert.NoError(err)
	assert.Equal([]uint64{1, 11}, prog.Breakpoints)
	assert.Equal(12, len(prog.Binary()))
}

func TestAssembler_Predefine(t *testing.T) {
	assert := assert.New(t)

	asm := newTestAssembler(t)
	asm.Predefine("STACK", 0x100)
	asm.Predefine("start", 99)

	source := []string{
		"start: irmovq $STACK, %rsp",
		"       irmovq $(STACK - 8), %rbp",
		"       irmovq $start, %rax",
	}

	prog, err := asm.Compile(strings.Join(source, "\n"))
	if !assert.NoError(err) {
		return
	}

	assert.Equal(int64(0x100), immediate(prog.Records[0]))
	assert.Equal(int64(0xf8), immediate(prog.Records[1]))
	assert.Equal(int64(0), immediate(prog.Records[2]))
	assert.NotContains(prog.Labels, "STACK")
}

func TestAssembler_Stateless(t *testing.T) {
	assert := assert.New(t)

	asm := newTestAssembler(t)

	for range 2 {
		prog, err := asm.Compile("here: halt")
		assert.NoError(err)
		assert.Equal(map[string]uint64{"here": 0}, prog.Labels)
	}

	_, err := asm.Compile("jmp here")
	assert.ErrorIs(err, ErrLabelMissing("here"))
}

func TestAssembler_Errors(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		name   string
		source string
		lineno int
		err    error
	}{
		{"unknown", "halt\nfoo %rax", 2, ErrTokenUnrecognized},
		{"duplicate", "a: halt\na: nop", 2, ErrLabelDuplicate},
		{"missing", "nop\njmp nowhere", 2, ErrLabelMissing("nowhere")},
		{"too_few", "addq %rax", 1, ErrOperandCount},
		{"too_many", "halt %rax", 1, ErrOperandCount},
		{"no_comma", "addq %rax %rbx", 1, ErrOperandSyntax},
		{"register", "addq %rax, %rzz", 1, ErrRegisterInvalid},
		{"memory_kind", "rrmovq 8(%rax), %rbx", 1, ErrOperandKind},
		{"register_kind", "irmovq %rax, %rbx", 1, ErrOperandKind},
		{"backwards", "nop\nnop\n.pos 1", 3, ErrPosBackwards},
		{"align_zero", ".align 0", 1, ErrAlignInvalid},
		{"align_negative", ".align -8", 1, ErrAlignInvalid},
		{"label_syntax", "halt\n1bad: halt", 2, ErrLabelSyntax},
		{"pos_symbol", ".pos start", 1, ErrParseNumber("start")},
		{"expression", "irmovq $(1 +), %rax", 1, ErrParseExpression("1 +")},
		{"expression_name", "irmovq $(undefined), %rax", 1, ErrParseExpression("undefined")},
		{"quad_empty", ".quad", 1, ErrOperandCount},
		{"number", "irmovq $99999999999999999999, %rax", 1, ErrParseNumber("99999999999999999999")},
		{"pos_range", ".pos 0x7fffffffffffffff\nhalt", 1, ErrPosRange},
		{"pos_wide", ".pos 0x100000000000\nhalt", 1, ErrPosRange},
		{"align_range", "nop\n.align 0x4000000000000000", 2, ErrPosRange},
		{"pc_range", ".pos 0x1000000\nhalt", 2, ErrPosRange},
	}

	for _, entry := range table {
		asm := newTestAssembler(t)
		prog, err := asm.Compile(entry.source)
		assert.Nil(prog, entry.name)
		assert.ErrorIs(err, entry.err, entry.name)

		var syntax *ErrSyntax
		if assert.True(errors.As(err, &syntax), entry.name) {
			assert.Equal(entry.lineno, syntax.LineNo, entry.name)
			lines := strings.Split(entry.source, "\n")
			assert.Equal(lines[entry.lineno-1], syntax.Line, entry.name)
		}
	}
}

func TestAssembler_Limit(t *testing.T) {
	assert := assert.New(t)

	asm := newTestAssembler(t)
	asm.Limit = 16

	prog, err := asm.Compile("irmovq $1, %rax\n.pos 0x10")
	assert.NoError(err)
	assert.Equal(uint64(16), prog.Size())

	source := []string{
		"irmovq $1, %rax",
		"irmovq $2, %rbx",
	}

	var syntax *ErrSyntax
	_, err = asm.Compile(strings.Join(source, "\n"))
	assert.ErrorIs(err, ErrPosRange)
	if assert.True(errors.As(err, &syntax)) {
		assert.Equal(2, syntax.LineNo)
	}

	assert.NotPanics(func() {
		_, err = asm.Compile(".align 0x7fffffffffffffff\nhalt")
	})
	assert.ErrorIs(err, ErrPosRange)
}

func TestAssembler_LongLine(t *testing.T) {
	assert := assert.New(t)

	asm := newTestAssembler(t)

	source := "halt\n# " + strings.Repeat("x", 70*1024) + "\nhalt"
	prog, err := asm.Compile(source)
	assert.Nil(prog)
	assert.ErrorIs(err, bufio.ErrTooLong)

	var syntax *ErrSyntax
	if assert.True(errors.As(err, &syntax)) {
		assert.Equal(2, syntax.LineNo)
	}
}
