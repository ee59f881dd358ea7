package cpu

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstructionSet_Default(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		mnemonic string
		code     byte
		length   int
	}{
		{"halt", 0x00, 1},
		{"nop", 0x10, 1},
		{"rrmovq", 0x20, 2},
		{"cmova", 0x2a, 2},
		{"irmovq", 0x30, 10},
		{"rmmovq", 0x40, 10},
		{"mrmovq", 0x50, 10},
		{"addq", 0x60, 2},
		{"orq", 0x6a, 2},
		{"jmp", 0x70, 9},
		{"ja", 0x7a, 9},
		{"call", 0x80, 9},
		{"ret", 0x90, 1},
		{"pushq", 0xa0, 2},
		{"popq", 0xb0, 2},
		{"bangq", 0xc4, 2},
		{"getc", 0xd0, 2},
		{"gets", 0xd2, 2},
		{"outq", 0xe1, 2},
		{"outs", 0xe2, 2},
	}

	isa := DefaultInstructionSet
	for _, entry := range table {
		op, ok := isa.Lookup(entry.mnemonic)
		assert.True(ok, entry.mnemonic)
		assert.Equal(entry.code, op.Code, entry.mnemonic)
		assert.Equal(entry.length, op.Length(), entry.mnemonic)

		length, ok := isa.Length(entry.mnemonic)
		assert.True(ok, entry.mnemonic)
		assert.Equal(entry.length, length, entry.mnemonic)

		decoded, ok := isa.Decode(entry.code)
		assert.True(ok, entry.mnemonic)
		assert.Equal(op, decoded, entry.mnemonic)
	}
}

func TestInstructionSet_Decode(t *testing.T) {
	assert := assert.New(t)

	isa := DefaultInstructionSet

	// Every non-marker op decodes to itself.
	for _, op := range isa.Ops() {
		decoded, ok := isa.Decode(op.Code)
		if op.Class == CLASS_MARK {
			assert.False(ok, op.Mnemonic)
			continue
		}
		assert.True(ok, op.Mnemonic)
		assert.Equal(op.Mnemonic, decoded.Mnemonic)
	}

	for _, code := range []byte{0x01, 0x2b, 0x6b, 0x7b, 0xc5, 0xf0, 0xff} {
		_, ok := isa.Decode(code)
		assert.False(ok, "0x%02x", code)
	}

	brk, ok := isa.Lookup("brk")
	assert.True(ok)
	assert.Equal(KIND_BRK, brk.Kind)
	assert.Equal(0, brk.Length())

	_, ok = isa.Lookup("movq")
	assert.False(ok)
}

func TestInstructionSet_Invalid(t *testing.T) {
	assert := assert.New(t)

	_, err := NewInstructionSet([]Op{
		{Kind: KIND_HALT, Mnemonic: "halt", Code: 0x00, Class: CLASS_NONE},
		{Kind: KIND_NOP, Mnemonic: "halt", Code: 0x10, Class: CLASS_NONE},
	})
	assert.ErrorIs(err, ErrIsaDuplicate("halt"))

	_, err = NewInstructionSet([]Op{
		{Kind: KIND_HALT, Mnemonic: "halt", Code: 0x00, Class: CLASS_NONE},
		{Kind: KIND_NOP, Mnemonic: "nop", Code: 0x00, Class: CLASS_NONE},
	})
	assert.ErrorIs(err, ErrIsaDuplicate("nop"))

	_, err = NewInstructionSet([]Op{
		{Mnemonic: "what", Code: 0x00},
	})
	assert.ErrorIs(err, ErrIsaInvalid("what"))

	assert.Panics(func() {
		MustInstructionSet([]Op{{Kind: KIND_NOP}})
	})
}

func TestInstructionSet_Custom(t *testing.T) {
	assert := assert.New(t)

	isa := MustInstructionSet([]Op{
		{Kind: KIND_HALT, Mnemonic: "stop", Code: 0x42, Class: CLASS_NONE},
		{Kind: KIND_ALU, Mnemonic: "plus", Code: 0x43, Class: CLASS_RR, Alu: ALU_OP_ADD},
	})

	op, ok := isa.Decode(0x42)
	assert.True(ok)
	assert.Equal(KIND_HALT, op.Kind)

	_, ok = isa.Decode(0x00)
	assert.False(ok)

	cp := NewCpu(16)
	cp.Isa = isa
	cp.Register.Set(REG_RAX, 2)
	cp.Register.Set(REG_RBX, 3)
	cp.Memory.Load(0, []byte{0x43, 0x30, 0x42})

	n := cp.Execute(0x43, 1)
	assert.Equal(uint64(1), n)
	assert.Equal(int64(5), cp.Register.Get(REG_RAX))

	cp.Execute(0x42, 3)
	assert.Equal(HLT, cp.Status)
}

func TestOpcode_String(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		value    fmt.Stringer
		expected string
	}{
		{KIND_INVALID, "invalid"},
		{KIND_ALU, "alu"},
		{KIND_BRK, "brk"},
		{Kind(99), "Kind(99)"},
		{CLASS_NONE, "none"},
		{CLASS_DEST, "dest"},
		{CLASS_MARK, "mark"},
		{Class(-1), "Class(-1)"},
		{COND_ALWAYS, "always"},
		{COND_LE, "le"},
		{COND_A, "a"},
		{ALU_OP_MUL, "mult"},
		{ALU_OP_OR, "or"},
		{UNARY_OP_BANG, "bang"},
		{UnaryOp(5), "UnaryOp(5)"},
	}

	for _, entry := range table {
		assert.Equal(entry.expected, entry.value.String())
	}

	for _, op := range DefaultInstructionSet.Ops() {
		assert.NotContains(op.Kind.String(), "(", op.Mnemonic)
		assert.NotContains(op.Class.String(), "(", op.Mnemonic)
	}
}
