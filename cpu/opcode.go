package cpu

import (
	"fmt"
)

// Kind is the decoded operation of an instruction. KIND_MOVE covers rrmovq
// and the cmovXX family, KIND_JUMP covers jmp and the jXX family.
type Kind int

//go:generate go tool stringer -linecomment -type=Kind
const (
	KIND_INVALID = Kind(iota) // invalid
	KIND_HALT                 // halt
	KIND_NOP                  // nop
	KIND_MOVE                 // move
	KIND_IRMOVQ               // irmovq
	KIND_RMMOVQ               // rmmovq
	KIND_MRMOVQ               // mrmovq
	KIND_ALU                  // alu
	KIND_JUMP                 // jump
	KIND_CALL                 // call
	KIND_RET                  // ret
	KIND_PUSHQ                // pushq
	KIND_POPQ                 // popq
	KIND_UNARY                // unary
	KIND_GETC                 // getc
	KIND_GETQ                 // getq
	KIND_GETS                 // gets
	KIND_OUTC                 // outc
	KIND_OUTQ                 // outq
	KIND_OUTS                 // outs
	KIND_BRK                  // brk
)

// Class is the operand layout of an instruction.
//
//	CLASS_NONE  no operands
//	CLASS_RR    rA<<4|rB
//	CLASS_IR    0xF<<4|rB, 8 byte immediate
//	CLASS_RM    rA<<4|rB, 8 byte displacement
//	CLASS_MR    rA<<4|rB, 8 byte displacement
//	CLASS_DEST  8 byte absolute destination
//	CLASS_REG   rA<<4|0xF
//	CLASS_MARK  assembler marker, no encoding
type Class int

//go:generate go tool stringer -linecomment -type=Class
const (
	CLASS_NONE = Class(iota) // none
	CLASS_RR                 // rr
	CLASS_IR                 // ir
	CLASS_RM                 // rm
	CLASS_MR                 // mr
	CLASS_DEST               // dest
	CLASS_REG                // reg
	CLASS_MARK               // mark
)

// Length returns the total encoded length, opcode byte included.
func (class Class) Length() int {
	switch class {
	case CLASS_NONE:
		return 1
	case CLASS_RR, CLASS_REG:
		return 2
	case CLASS_IR, CLASS_RM, CLASS_MR:
		return 10
	case CLASS_DEST:
		return 9
	default:
		return 0
	}
}

// Condition selects a predicate over the condition codes.
type Condition int

//go:generate go tool stringer -linecomment -type=Condition
const (
	COND_ALWAYS = Condition(iota) // always
	COND_LE                       // le
	COND_L                        // l
	COND_E                        // e
	COND_NE                       // ne
	COND_GE                       // ge
	COND_G                        // g
	COND_B                        // b
	COND_NB                       // nb
	COND_BE                       // be
	COND_A                        // a
)

// AluOp is a binary arithmetic operation.
type AluOp int

//go:generate go tool stringer -linecomment -type=AluOp
const (
	ALU_OP_ADD = AluOp(iota) // add
	ALU_OP_SUB               // sub
	ALU_OP_AND               // and
	ALU_OP_XOR               // xor
	ALU_OP_MUL               // mult
	ALU_OP_DIV               // div
	ALU_OP_MOD               // mod
	ALU_OP_SAR               // sar
	ALU_OP_SHR               // shr
	ALU_OP_SAL               // sal
	ALU_OP_OR                // or
)

// UnaryOp is a single register arithmetic operation.
type UnaryOp int

//go:generate go tool stringer -linecomment -type=UnaryOp
const (
	UNARY_OP_NOT  = UnaryOp(iota) // not
	UNARY_OP_NEG                  // neg
	UNARY_OP_INC                  // inc
	UNARY_OP_DEC                  // dec
	UNARY_OP_BANG                 // bang
)

// Op is one entry of an instruction set.
type Op struct {
	Kind     Kind
	Mnemonic string
	Code     byte
	Class    Class
	Cond     Condition // KIND_MOVE and KIND_JUMP
	Alu      AluOp     // KIND_ALU
	Unary    UnaryOp   // KIND_UNARY
}

// Length returns the total encoded length of the instruction.
func (op Op) Length() int {
	return op.Class.Length()
}

func (op Op) String() string {
	return fmt.Sprintf("%v(0x%02x)", op.Mnemonic, op.Code)
}

// defaultOps is the canonical opcode assignment.
var defaultOps = []Op{
	{Kind: KIND_HALT, Mnemonic: "halt", Code: 0x00, Class: CLASS_NONE},
	{Kind: KIND_NOP, Mnemonic: "nop", Code: 0x10, Class: CLASS_NONE},

	{Kind: KIND_MOVE, Mnemonic: "rrmovq", Code: 0x20, Class: CLASS_RR, Cond: COND_ALWAYS},
	{Kind: KIND_MOVE, Mnemonic: "cmovle", Code: 0x21, Class: CLASS_RR, Cond: COND_LE},
	{Kind: KIND_MOVE, Mnemonic: "cmovl", Code: 0x22, Class: CLASS_RR, Cond: COND_L},
	{Kind: KIND_MOVE, Mnemonic: "cmove", Code: 0x23, Class: CLASS_RR, Cond: COND_E},
	{Kind: KIND_MOVE, Mnemonic: "cmovne", Code: 0x24, Class: CLASS_RR, Cond: COND_NE},
	{Kind: KIND_MOVE, Mnemonic: "cmovge", Code: 0x25, Class: CLASS_RR, Cond: COND_GE},
	{Kind: KIND_MOVE, Mnemonic: "cmovg", Code: 0x26, Class: CLASS_RR, Cond: COND_G},
	{Kind: KIND_MOVE, Mnemonic: "cmovb", Code: 0x27, Class: CLASS_RR, Cond: COND_B},
	{Kind: KIND_MOVE, Mnemonic: "cmovnb", Code: 0x28, Class: CLASS_RR, Cond: COND_NB},
	{Kind: KIND_MOVE, Mnemonic: "cmovbe", Code: 0x29, Class: CLASS_RR, Cond: COND_BE},
	{Kind: KIND_MOVE, Mnemonic: "cmova", Code: 0x2a, Class: CLASS_RR, Cond: COND_A},

	{Kind: KIND_IRMOVQ, Mnemonic: "irmovq", Code: 0x30, Class: CLASS_IR},
	{Kind: KIND_RMMOVQ, Mnemonic: "rmmovq", Code: 0x40, Class: CLASS_RM},
	{Kind: KIND_MRMOVQ, Mnemonic: "mrmovq", Code: 0x50, Class: CLASS_MR},

	{Kind: KIND_ALU, Mnemonic: "addq", Code: 0x60, Class: CLASS_RR, Alu: ALU_OP_ADD},
	{Kind: KIND_ALU, Mnemonic: "subq", Code: 0x61, Class: CLASS_RR, Alu: ALU_OP_SUB},
	{Kind: KIND_ALU, Mnemonic: "andq", Code: 0x62, Class: CLASS_RR, Alu: ALU_OP_AND},
	{Kind: KIND_ALU, Mnemonic: "xorq", Code: 0x63, Class: CLASS_RR, Alu: ALU_OP_XOR},
	{Kind: KIND_ALU, Mnemonic: "multq", Code: 0x64, Class: CLASS_RR, Alu: ALU_OP_MUL},
	{Kind: KIND_ALU, Mnemonic: "divq", Code: 0x65, Class: CLASS_RR, Alu: ALU_OP_DIV},
	{Kind: KIND_ALU, Mnemonic: "modq", Code: 0x66, Class: CLASS_RR, Alu: ALU_OP_MOD},
	{Kind: KIND_ALU, Mnemonic: "sarq", Code: 0x67, Class: CLASS_RR, Alu: ALU_OP_SAR},
	{Kind: KIND_ALU, Mnemonic: "shrq", Code: 0x68, Class: CLASS_RR, Alu: ALU_OP_SHR},
	{Kind: KIND_ALU, Mnemonic: "salq", Code: 0x69, Class: CLASS_RR, Alu: ALU_OP_SAL},
	{Kind: KIND_ALU, Mnemonic: "orq", Code: 0x6a, Class: CLASS_RR, Alu: ALU_OP_OR},

	{Kind: KIND_JUMP, Mnemonic: "jmp", Code: 0x70, Class: CLASS_DEST, Cond: COND_ALWAYS},
	{Kind: KIND_JUMP, Mnemonic: "jle", Code: 0x71, Class: CLASS_DEST, Cond: COND_LE},
	{Kind: KIND_JUMP, Mnemonic: "jl", Code: 0x72, Class: CLASS_DEST, Cond: COND_L},
	{Kind: KIND_JUMP, Mnemonic: "je", Code: 0x73, Class: CLASS_DEST, Cond: COND_E},
	{Kind: KIND_JUMP, Mnemonic: "jne", Code: 0x74, Class: CLASS_DEST, Cond: COND_NE},
	{Kind: KIND_JUMP, Mnemonic: "jge", Code: 0x75, Class: CLASS_DEST, Cond: COND_GE},
	{Kind: KIND_JUMP, Mnemonic: "jg", Code: 0x76, Class: CLASS_DEST, Cond: COND_G},
	{Kind: KIND_JUMP, Mnemonic: "jb", Code: 0x77, Class: CLASS_DEST, Cond: COND_B},
	{Kind: KIND_JUMP, Mnemonic: "jnb", Code: 0x78, Class: CLASS_DEST, Cond: COND_NB},
	{Kind: KIND_JUMP, Mnemonic: "jbe", Code: 0x79, Class: CLASS_DEST, Cond: COND_BE},
	{Kind: KIND_JUMP, Mnemonic: "ja", Code: 0x7a, Class: CLASS_DEST, Cond: COND_A},

	{Kind: KIND_CALL, Mnemonic: "call", Code: 0x80, Class: CLASS_DEST},
	{Kind: KIND_RET, Mnemonic: "ret", Code: 0x90, Class: CLASS_NONE},
	{Kind: KIND_PUSHQ, Mnemonic: "pushq", Code: 0xa0, Class: CLASS_REG},
	{Kind: KIND_POPQ, Mnemonic: "popq", Code: 0xb0, Class: CLASS_REG},

	{Kind: KIND_UNARY, Mnemonic: "notq", Code: 0xc0, Class: CLASS_REG, Unary: UNARY_OP_NOT},
	{Kind: KIND_UNARY, Mnemonic: "negq", Code: 0xc1, Class: CLASS_REG, Unary: UNARY_OP_NEG},
	{Kind: KIND_UNARY, Mnemonic: "incq", Code: 0xc2, Class: CLASS_REG, Unary: UNARY_OP_INC},
	{Kind: KIND_UNARY, Mnemonic: "decq", Code: 0xc3, Class: CLASS_REG, Unary: UNARY_OP_DEC},
	{Kind: KIND_UNARY, Mnemonic: "bangq", Code: 0xc4, Class: CLASS_REG, Unary: UNARY_OP_BANG},

	{Kind: KIND_GETC, Mnemonic: "getc", Code: 0xd0, Class: CLASS_REG},
	{Kind: KIND_GETQ, Mnemonic: "getq", Code: 0xd1, Class: CLASS_REG},
	{Kind: KIND_GETS, Mnemonic: "gets", Code: 0xd2, Class: CLASS_RR},
	{Kind: KIND_OUTC, Mnemonic: "outc", Code: 0xe0, Class: CLASS_REG},
	{Kind: KIND_OUTQ, Mnemonic: "outq", Code: 0xe1, Class: CLASS_REG},
	{Kind: KIND_OUTS, Mnemonic: "outs", Code: 0xe2, Class: CLASS_RR},

	{Kind: KIND_BRK, Mnemonic: "brk", Code: 0xf0, Class: CLASS_MARK},
}

// InstructionSet maps mnemonics and opcode bytes to operations.
type InstructionSet struct {
	ops      []Op
	mnemonic map[string]Op
	code     [256]*Op
}

// DefaultInstructionSet is the canonical instruction set.
var DefaultInstructionSet = MustInstructionSet(defaultOps)

// NewInstructionSet builds an instruction set from a list of operations.
// Mnemonics and opcode bytes must be unique; CLASS_MARK entries are never
// decoded.
func NewInstructionSet(ops []Op) (isa *InstructionSet, err error) {
	isa = &InstructionSet{
		ops:      make([]Op, len(ops)),
		mnemonic: make(map[string]Op, len(ops)),
	}
	copy(isa.ops, ops)

	for n := range isa.ops {
		op := &isa.ops[n]
		if op.Kind == KIND_INVALID || len(op.Mnemonic) == 0 {
			err = ErrIsaInvalid(op.Mnemonic)
			return nil, err
		}
		_, ok := isa.mnemonic[op.Mnemonic]
		if ok {
			err = ErrIsaDuplicate(op.Mnemonic)
			return nil, err
		}
		isa.mnemonic[op.Mnemonic] = *op

		if op.Class == CLASS_MARK {
			continue
		}
		if isa.code[op.Code] != nil {
			err = ErrIsaDuplicate(op.Mnemonic)
			return nil, err
		}
		isa.code[op.Code] = op
	}

	return
}

// MustInstructionSet is NewInstructionSet that panics on error.
func MustInstructionSet(ops []Op) *InstructionSet {
	isa, err := NewInstructionSet(ops)
	if err != nil {
		panic(err)
	}
	return isa
}

// Ops returns a copy of the operations in table order.
func (isa *InstructionSet) Ops() []Op {
	ops := make([]Op, len(isa.ops))
	copy(ops, isa.ops)
	return ops
}

// Lookup finds an operation by mnemonic.
func (isa *InstructionSet) Lookup(mnemonic string) (op Op, ok bool) {
	op, ok = isa.mnemonic[mnemonic]
	return
}

// Decode finds the operation for an opcode byte.
func (isa *InstructionSet) Decode(code byte) (op Op, ok bool) {
	ptr := isa.code[code]
	if ptr == nil {
		return
	}

	return *ptr, true
}

// Length returns the static encoded length of a mnemonic.
func (isa *InstructionSet) Length(mnemonic string) (length int, ok bool) {
	op, ok := isa.mnemonic[mnemonic]
	if ok {
		length = op.Length()
	}
	return
}
