package cpu

import (
	"strings"
)

// Reg is a 4-bit register index.
type Reg byte

const (
	REG_RAX  = Reg(iota) // rax
	REG_RCX              // rcx
	REG_RDX              // rdx
	REG_RBX              // rbx
	REG_RSP              // rsp
	REG_RBP              // rbp
	REG_RSI              // rsi
	REG_RDI              // rdi
	REG_R8               // r8
	REG_R9               // r9
	REG_R10              // r10
	REG_R11              // r11
	REG_R12              // r12
	REG_R13              // r13
	REG_R14              // r14
	REG_NONE             // none

	REG_COUNT = int(REG_NONE)
)

var regNames = [...]string{
	"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi",
	"r8", "r9", "r10", "r11", "r12", "r13", "r14",
}

func (reg Reg) String() string {
	if int(reg) < len(regNames) {
		return regNames[reg]
	}
	return "none"
}

// Valid returns true for a storage register.
func (reg Reg) Valid() bool {
	return reg < REG_NONE
}

// LookupRegister finds a register by name, with or without a leading '%'.
func LookupRegister(name string) (reg Reg, ok bool) {
	name = strings.TrimPrefix(name, "%")
	for n, reg_name := range regNames {
		if reg_name == name {
			return Reg(n), true
		}
	}

	return REG_NONE, false
}

// Registers is the general purpose register file.
type Registers struct {
	Value [REG_COUNT]int64
}

// Get the value of a register. Panics on REG_NONE.
func (rf *Registers) Get(reg Reg) int64 {
	if !reg.Valid() {
		panic(ErrRegisterNone)
	}
	return rf.Value[reg]
}

// Set the value of a register. Panics on REG_NONE.
func (rf *Registers) Set(reg Reg, value int64) {
	if !reg.Valid() {
		panic(ErrRegisterNone)
	}
	rf.Value[reg] = value
}

// Lookup the value of a register by name.
func (rf *Registers) Lookup(name string) (value int64, ok bool) {
	reg, ok := LookupRegister(name)
	if ok {
		value = rf.Value[reg]
	}
	return
}

// Reset zeros all registers.
func (rf *Registers) Reset() {
	clear(rf.Value[:])
}
