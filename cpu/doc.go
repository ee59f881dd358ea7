// Package cpu implements the processor and assembler of the y86 simulator.
//
// The processor has fifteen 64-bit registers (%rax through %r14), a flat
// byte addressed memory, the Zero, Sign, Overflow and Carry condition codes,
// and a run status (AOK, HLT, ADR, INS). Execute runs one decoded opcode
// and reports control transfers through Jumped and Target.
//
// The assembler is a two pass translator from source text to a Program of
// per-line records, supporting labels, the .pos, .align and .quad
// directives, brk breakpoint markers, and $(...) compile-time expressions.
package cpu
