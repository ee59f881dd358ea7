package cpu

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/retroenv/retrogolib/log"

	"github.com/ezrec/y86/internal"
	"github.com/ezrec/y86/io"
)

// Cpu is the simulation context for the processor: register file, memory,
// condition codes and run status.
type Cpu struct {
	Verbose bool        // Set to enable verbose logging.
	Logger  *log.Logger // Logger for verbose tracing.

	Isa      *InstructionSet // Instruction set to decode against.
	Register Registers       // Register file.
	Memory   *Memory         // Memory.
	Flags    Flags           // Condition codes.
	Status   Status          // Run status.
	Console  io.Console      // Console for I/O instructions. May be nil.

	Jumped bool   // Set by Execute when control transfers to Target.
	Target uint64 // Destination of the last control transfer.

	Ticks int // Executed instruction counter.
}

// NewCpu creates a CPU with the given memory capacity in bytes.
func NewCpu(capacity int) (cpu *Cpu) {
	cpu = &Cpu{
		Isa:    DefaultInstructionSet,
		Memory: NewMemory(capacity),
	}

	return
}

// Stack returns the stack view over the register file and memory.
func (cpu *Cpu) Stack() Stack {
	return Stack{Register: &cpu.Register, Memory: cpu.Memory}
}

// Reset the CPU state.
// - Clears the registers, memory and condition codes.
// - Sets the status to AOK.
// - Zeros the tick counter.
func (cpu *Cpu) Reset() {
	if cpu.Verbose && cpu.Logger != nil {
		cpu.Logger.Debug("cpu: reset")
	}

	cpu.Register.Reset()
	cpu.Memory.Reset()
	cpu.Flags.Reset()
	cpu.Status = AOK
	cpu.Jumped = false
	cpu.Target = 0
	cpu.Ticks = 0
}

// String returns the register file, condition codes and status.
func (cpu *Cpu) String() (text string) {
	var sb strings.Builder
	for n := range REG_COUNT {
		reg := Reg(n)
		value := cpu.Register.Get(reg)
		fmt.Fprintf(&sb, "% 5s: %v %v\n", "%"+reg.String(),
			internal.Hex(uint64(value), 16), internal.Decimal(value, 1))
	}
	fmt.Fprintf(&sb, "% 5s: %v\n", "flags", cpu.Flags)
	fmt.Fprintf(&sb, "% 5s: %v\n", "stat", cpu.Status)

	text = sb.String()
	return
}

// fault sets a terminal status.
func (cpu *Cpu) fault(status Status, addr uint64) {
	if cpu.Verbose && cpu.Logger != nil {
		cpu.Logger.Debug("cpu: fault",
			log.Hex("pc", addr),
			log.Stringer("status", status))
	}
	cpu.Status = status
}

// registers fetches the register byte at addr, and checks the nibbles
// required by the class.
func (cpu *Cpu) registers(class Class, addr uint64) (ra Reg, rb Reg, ok bool) {
	value, ok := cpu.Memory.GetByte(addr)
	if !ok {
		cpu.fault(ADR, addr)
		return
	}

	ra = Reg(value >> 4)
	rb = Reg(value & 0xf)

	switch class {
	case CLASS_RR, CLASS_RM, CLASS_MR:
		ok = ra.Valid() && rb.Valid()
	case CLASS_IR:
		ok = rb.Valid()
	case CLASS_REG:
		ok = ra.Valid()
	}

	if !ok {
		cpu.fault(INS, addr)
	}

	return
}

// quad fetches an operand quad at addr.
func (cpu *Cpu) quad(addr uint64) (value int64, ok bool) {
	value, ok = cpu.Memory.GetQuad(addr)
	if !ok {
		cpu.fault(ADR, addr)
	}
	return
}

// jump records a control transfer.
func (cpu *Cpu) jump(target uint64) {
	cpu.Jumped = true
	cpu.Target = target
}

// Execute executes a single decoded opcode. 'addr' is the address of
// the byte following the opcode. Returns the number of operand bytes
// consumed. A taken control transfer sets Jumped and Target instead of
// relying on the sequential advance.
func (cpu *Cpu) Execute(code byte, addr uint64) (n uint64) {
	cpu.Jumped = false

	if cpu.Status.Terminal() {
		return
	}

	isa := cpu.Isa
	if isa == nil {
		isa = DefaultInstructionSet
	}

	op, ok := isa.Decode(code)
	if !ok {
		cpu.fault(INS, addr-1)
		return
	}

	if cpu.Verbose && cpu.Logger != nil {
		cpu.Logger.Debug("cpu: execute",
			log.Hex("pc", addr-1),
			log.String("op", op.Mnemonic))
	}

	n = uint64(op.Length() - 1)
	cpu.Ticks++

	var ra, rb Reg
	switch op.Class {
	case CLASS_RR, CLASS_IR, CLASS_RM, CLASS_MR, CLASS_REG:
		ra, rb, ok = cpu.registers(op.Class, addr)
		if !ok {
			return
		}
	}

	var imm int64
	switch op.Class {
	case CLASS_IR, CLASS_RM, CLASS_MR:
		imm, ok = cpu.quad(addr + 1)
		if !ok {
			return
		}
	case CLASS_DEST:
		imm, ok = cpu.quad(addr)
		if !ok {
			return
		}
	}

	rf := &cpu.Register
	stack := cpu.Stack()

	switch op.Kind {
	case KIND_HALT:
		cpu.Status = HLT
	case KIND_NOP:
		// pass
	case KIND_MOVE:
		if cpu.Flags.Check(op.Cond) {
			rf.Set(rb, rf.Get(ra))
		}
	case KIND_IRMOVQ:
		rf.Set(rb, imm)
	case KIND_RMMOVQ:
		ea := uint64(rf.Get(rb) + imm)
		if !cpu.Memory.PutQuad(ea, rf.Get(ra)) {
			cpu.fault(ADR, ea)
		}
	case KIND_MRMOVQ:
		ea := uint64(rf.Get(rb) + imm)
		value, ok := cpu.Memory.GetQuad(ea)
		if !ok {
			cpu.fault(ADR, ea)
			return
		}
		rf.Set(ra, value)
	case KIND_ALU:
		result, ok := cpu.doAlu(op.Alu, rf.Get(rb), rf.Get(ra))
		if !ok {
			cpu.fault(INS, addr-1)
			return
		}
		rf.Set(rb, result)
	case KIND_UNARY:
		rf.Set(ra, cpu.doUnary(op.Unary, rf.Get(ra)))
	case KIND_JUMP:
		if cpu.Flags.Check(op.Cond) {
			cpu.jump(uint64(imm))
		}
	case KIND_CALL:
		if !stack.Push(int64(addr + n)) {
			cpu.fault(ADR, uint64(rf.Get(REG_RSP)))
			return
		}
		cpu.jump(uint64(imm))
	case KIND_RET:
		target, ok := stack.Pop()
		if !ok {
			cpu.fault(ADR, uint64(rf.Get(REG_RSP)))
			return
		}
		cpu.jump(uint64(target))
	case KIND_PUSHQ:
		if !stack.Push(rf.Get(ra)) {
			cpu.fault(ADR, uint64(rf.Get(REG_RSP)))
		}
	case KIND_POPQ:
		value, ok := stack.Pop()
		if !ok {
			cpu.fault(ADR, uint64(rf.Get(REG_RSP)))
			return
		}
		rf.Set(ra, value)
	case KIND_GETC:
		line, ok := cpu.readLine()
		if !ok {
			return
		}
		var value int64
		if utf8.RuneCountInString(line) == 1 {
			r, _ := utf8.DecodeRuneInString(line)
			value = int64(r)
		}
		rf.Set(ra, value)
	case KIND_GETQ:
		line, ok := cpu.readLine()
		if !ok {
			return
		}
		value, err := ParseNumber(strings.TrimSpace(line))
		if err != nil {
			value = 0
		}
		rf.Set(ra, value)
	case KIND_GETS:
		line, ok := cpu.readLine()
		if !ok {
			return
		}
		ea := uint64(rf.Get(ra))
		if !cpu.Memory.Load(ea, append([]byte(line), 0)) {
			cpu.fault(ADR, ea)
			return
		}
		rf.Set(rb, int64(len(line)))
	case KIND_OUTC:
		cpu.write(string(rune(rf.Get(ra))))
	case KIND_OUTQ:
		cpu.write(strconv.FormatInt(rf.Get(ra), 10))
	case KIND_OUTS:
		ea := uint64(rf.Get(ra))
		length := rf.Get(rb)
		if length < 0 || !cpu.Memory.Valid(ea, uint64(length)) {
			cpu.fault(ADR, ea)
			return
		}
		data := make([]byte, length)
		for i := range data {
			data[i], _ = cpu.Memory.GetByte(ea + uint64(i))
		}
		cpu.write(string(data))
	default:
		cpu.fault(INS, addr-1)
	}

	return
}

// readLine reads a line from the console. Errors, or a missing console,
// read as an empty line. If the read was interrupted, ok is false and the
// instruction has no effect.
func (cpu *Cpu) readLine() (line string, ok bool) {
	ok = true
	if cpu.Console == nil {
		return
	}

	line, err := cpu.Console.ReadLine()
	if err != nil {
		if cpu.Verbose && cpu.Logger != nil {
			cpu.Logger.Debug("cpu: console read", log.Err(err))
		}
		line = ""
		ok = !errors.Is(err, io.ErrConsoleInterrupted)
	}

	return
}

// write emits text to the console, if present.
func (cpu *Cpu) write(text string) {
	if cpu.Console == nil {
		return
	}

	_, err := cpu.Console.WriteString(text)
	if err != nil && cpu.Verbose && cpu.Logger != nil {
		cpu.Logger.Debug("cpu: console write", log.Err(err))
	}
}

// setFlags recomputes all condition codes from a result.
func (cpu *Cpu) setFlags(result int64, overflow bool, carry bool) {
	cpu.Flags = Flags{
		Zero:     result == 0,
		Sign:     result < 0,
		Overflow: overflow,
		Carry:    carry,
	}
}

// doAlu computes 'dst op src', and updates the condition codes.
// Division or modulo by zero returns !ok, and leaves the condition codes
// unchanged.
func (cpu *Cpu) doAlu(op AluOp, dst int64, src int64) (result int64, ok bool) {
	var overflow, carry bool

	switch op {
	case ALU_OP_ADD:
		result = dst + src
		overflow = (dst < 0) == (src < 0) && (result < 0) != (dst < 0)
		carry = uint64(result) < uint64(dst)
	case ALU_OP_SUB:
		result = dst - src
		overflow = (dst < 0) != (src < 0) && (result < 0) != (dst < 0)
		carry = uint64(dst) < uint64(src)
	case ALU_OP_AND:
		result = dst & src
	case ALU_OP_XOR:
		result = dst ^ src
	case ALU_OP_OR:
		result = dst | src
	case ALU_OP_MUL:
		hi, lo := bits.Mul64(uint64(dst), uint64(src))
		// Signed correction of the unsigned 128-bit product.
		if dst < 0 {
			hi -= uint64(src)
		}
		if src < 0 {
			hi -= uint64(dst)
		}
		result = int64(lo)
		overflow = hi != uint64(result>>63)
	case ALU_OP_DIV:
		if src == 0 {
			return
		}
		overflow = dst == math.MinInt64 && src == -1
		result = dst / src
	case ALU_OP_MOD:
		if src == 0 {
			return
		}
		result = dst % src
	case ALU_OP_SAR:
		result = dst >> (uint64(src) & 63)
	case ALU_OP_SHR:
		result = int64(uint64(dst) >> (uint64(src) & 63))
	case ALU_OP_SAL:
		result = dst << (uint64(src) & 63)
	default:
		return
	}

	cpu.setFlags(result, overflow, carry)
	ok = true

	return
}

// doUnary computes a single register operation, and updates the
// condition codes.
func (cpu *Cpu) doUnary(op UnaryOp, value int64) (result int64) {
	var overflow bool

	switch op {
	case UNARY_OP_NOT:
		result = ^value
	case UNARY_OP_NEG:
		result = -value
		overflow = value == math.MinInt64
	case UNARY_OP_INC:
		result = value + 1
		overflow = result == math.MinInt64
	case UNARY_OP_DEC:
		result = value - 1
		overflow = result == math.MaxInt64
	case UNARY_OP_BANG:
		result = ((value >> 63) | (-value >> 63)) + 1
	}

	cpu.setFlags(result, overflow, false)

	return
}
