// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator drives the y86 processor: program counter, breakpoints,
// and the step and run loop.
package emulator

import (
	"context"
	"fmt"
	"iter"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"

	"github.com/ezrec/y86/cpu"
	"github.com/ezrec/y86/internal"
	"github.com/ezrec/y86/io"
)

// State of the execution driver.
type State int32

//go:generate go tool stringer -linecomment -type=State
const (
	STATE_HALTED  = State(iota) // halted
	STATE_RUNNING               // running
	STATE_WAITING               // waiting
)

// BreakAction is the response of a caller to a breakpoint.
type BreakAction int

const (
	BREAK_STEP     = BreakAction(iota) // Execute one instruction.
	BREAK_CONTINUE                     // Continue running.
	BREAK_ABORT                        // Stop the program.
)

// Emulator state. CPU + program counter + breakpoints.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	Logger   *log.Logger  // Logger for verbose tracing.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently loaded program.

	OnBreak func(pc uint64) // Called when a step halts on a breakpoint.
	OnStep  func(pc uint64) // Called after every executed step.

	pc          uint64
	override    bool
	breakpoints set.Set[uint64]
	image       []byte
	generation  uint64 // Bumped on every reset.

	state atomic.Int32
	mutex sync.RWMutex
}

// NewEmulator creates a new emulator with capacity bytes of memory.
func NewEmulator(capacity int) (emu *Emulator) {
	emu = &Emulator{
		Cpu:         cpu.NewCpu(capacity),
		Program:     &cpu.Program{},
		breakpoints: set.New[uint64](),
	}

	return
}

// Defines returns the symbols the emulator provides to programs.
func (emu *Emulator) Defines() iter.Seq2[string, int64] {
	return maps.All(map[string]int64{
		"MEMORY_SIZE": int64(emu.Cpu.Memory.Capacity()),
	})
}

// SetConsole attaches the console used by the I/O instructions.
// While an input instruction waits on the console, the emulator reports
// STATE_WAITING and its state may be inspected.
func (emu *Emulator) SetConsole(console io.Console) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if console == nil {
		emu.Cpu.Console = nil
		return
	}

	emu.Cpu.Console = &waitConsole{Console: console, emu: emu}
}

// waitConsole releases the execution lock while blocked on input.
// A reset while blocked interrupts the read.
type waitConsole struct {
	io.Console
	emu *Emulator
}

func (wc *waitConsole) ReadLine() (line string, err error) {
	emu := wc.emu
	generation := emu.generation

	emu.state.Store(int32(STATE_WAITING))
	emu.mutex.Unlock()

	line, err = wc.Console.ReadLine()

	emu.mutex.Lock()
	if emu.generation != generation {
		line = ""
		err = io.ErrConsoleInterrupted
		return
	}
	emu.state.Store(int32(STATE_RUNNING))

	return
}

// State returns the driver state. Safe from any goroutine.
func (emu *Emulator) State() State {
	return State(emu.state.Load())
}

// Pc returns the program counter.
func (emu *Emulator) Pc() uint64 {
	emu.mutex.RLock()
	defer emu.mutex.RUnlock()

	return emu.pc
}

// SetPc sets the program counter.
func (emu *Emulator) SetPc(pc uint64) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	emu.pc = pc
}

// reset the machine state; the caller holds the lock.
func (emu *Emulator) reset() {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Logger = emu.Logger
	emu.Cpu.Reset()
	emu.pc = 0
	emu.override = false
	emu.generation++
	emu.state.Store(int32(STATE_HALTED))
}

// Reset clears the registers, memory and condition codes, and sets the
// program counter to zero. The program is not reloaded.
func (emu *Emulator) Reset() {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	emu.reset()
}

// Load resets the machine, and loads a compiled program and its brk
// breakpoints.
func (emu *Emulator) Load(prog *cpu.Program) (err error) {
	err = emu.LoadImage(prog.Binary())
	if err != nil {
		return
	}

	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	emu.Program = prog
	for _, addr := range prog.Breakpoints {
		emu.breakpoints.Add(addr)
	}

	return
}

// LoadImage resets the machine, and loads an object image at address zero.
func (emu *Emulator) LoadImage(data []byte) (err error) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if uint64(len(data)) > emu.Cpu.Memory.Capacity() {
		err = ErrImageSize
		return
	}

	emu.reset()
	emu.Program = &cpu.Program{}
	emu.image = slices.Clone(data)
	emu.Cpu.Memory.Load(0, emu.image)

	if emu.Verbose && emu.Logger != nil {
		emu.Logger.Debug("emulator: load", log.Hex("size", len(data)))
	}

	return
}

// Restart resets the machine and reloads the current image.
func (emu *Emulator) Restart() {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	emu.reset()
	emu.Cpu.Memory.Load(0, emu.image)
}

// SetBreakpoint adds a breakpoint address.
func (emu *Emulator) SetBreakpoint(addr uint64) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	emu.breakpoints.Add(addr)
}

// ClearBreakpoint removes a breakpoint address.
func (emu *Emulator) ClearBreakpoint(addr uint64) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	delete(emu.breakpoints, addr)
}

// ClearBreakpoints removes all breakpoints.
func (emu *Emulator) ClearBreakpoints() {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	emu.breakpoints = set.New[uint64]()
}

// IsBreakpoint returns true if addr is a breakpoint.
func (emu *Emulator) IsBreakpoint(addr uint64) bool {
	emu.mutex.RLock()
	defer emu.mutex.RUnlock()

	return emu.breakpoints.Contains(addr)
}

// Breakpoints returns the sorted breakpoint addresses.
func (emu *Emulator) Breakpoints() (addrs []uint64) {
	emu.mutex.RLock()
	defer emu.mutex.RUnlock()

	for addr := range emu.breakpoints {
		addrs = append(addrs, addr)
	}
	slices.Sort(addrs)

	return
}

// Override arms a one-shot bypass of the breakpoint at the program counter.
func (emu *Emulator) Override() {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	emu.override = true
}

// step performs a single step; the caller holds the lock.
func (emu *Emulator) step() (state State, brk bool, executed bool) {
	cp := emu.Cpu

	if cp.Status.Terminal() {
		return
	}

	pc := emu.pc
	if emu.breakpoints.Contains(pc) && !emu.override {
		brk = true
		return
	}
	emu.override = false

	code, ok := cp.Memory.GetByte(pc)
	if !ok {
		cp.Status = cpu.ADR
		return
	}

	cp.Verbose = emu.Verbose
	cp.Logger = emu.Logger

	generation := emu.generation
	n := cp.Execute(code, pc+1)
	if emu.generation != generation {
		// Reset while waiting on input; the machine is already fresh.
		return
	}
	executed = true

	if cp.Status.Terminal() {
		// pc remains on the faulting or halting instruction.
		return
	}

	if cp.Jumped {
		emu.pc = cp.Target
	} else {
		emu.pc = pc + 1 + n
	}

	state = STATE_RUNNING
	return
}

// Step performs a single step of the emulator.
//
// If the program counter is on a breakpoint that has not been overridden,
// the emulator halts and OnBreak is called instead. OnStep is called after
// every executed instruction.
func (emu *Emulator) Step() (state State) {
	emu.mutex.Lock()
	pc := emu.pc
	state, brk, executed := emu.step()
	emu.state.Store(int32(state))
	emu.mutex.Unlock()

	if brk {
		if emu.Verbose && emu.Logger != nil {
			emu.Logger.Debug("emulator: break", log.Hex("pc", pc))
		}
		if emu.OnBreak != nil {
			emu.OnBreak(pc)
		}
	}

	if executed && emu.OnStep != nil {
		emu.OnStep(pc)
	}

	return
}

// Run steps until the program halts, faults, reaches a breakpoint, or the
// context is done. Returns the runtime fault, if any.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	emu.state.Store(int32(STATE_RUNNING))

	for {
		select {
		case <-ctx.Done():
			emu.state.Store(int32(STATE_HALTED))
			err = ctx.Err()
			return
		default:
		}

		if emu.Step() == STATE_HALTED {
			break
		}
	}

	err = emu.Fault()
	if err != nil && emu.Verbose && emu.Logger != nil {
		emu.Logger.Debug("emulator: fault", log.Err(err))
	}

	return
}

// Resume continues after a breakpoint.
func (emu *Emulator) Resume(ctx context.Context, action BreakAction) (err error) {
	switch action {
	case BREAK_STEP:
		emu.Override()
		emu.Step()
		err = emu.Fault()
	case BREAK_CONTINUE:
		emu.Override()
		err = emu.Run(ctx)
	case BREAK_ABORT:
		emu.Abort()
	}

	return
}

// Abort stops the program; it halts until the next reset or load.
func (emu *Emulator) Abort() {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if !emu.Cpu.Status.Terminal() {
		emu.Cpu.Status = cpu.HLT
	}
	emu.state.Store(int32(STATE_HALTED))
}

// Snapshot is a copy of the visible machine state.
type Snapshot struct {
	Pc       uint64
	Register cpu.Registers
	Flags    cpu.Flags
	Status   cpu.Status
	State    State
}

// Snapshot copies the visible machine state. Safe from any goroutine.
func (emu *Emulator) Snapshot() (snap Snapshot) {
	emu.mutex.RLock()
	defer emu.mutex.RUnlock()

	snap = Snapshot{
		Pc:       emu.pc,
		Register: emu.Cpu.Register,
		Flags:    emu.Cpu.Flags,
		Status:   emu.Cpu.Status,
		State:    emu.State(),
	}

	return
}

// Changed returns the memory cells written since the last call.
func (emu *Emulator) Changed() []uint64 {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	return emu.Cpu.Memory.Changed()
}

// Ticks returns the number of executed instructions since a reset.
func (emu *Emulator) Ticks() int {
	emu.mutex.RLock()
	defer emu.mutex.RUnlock()

	return emu.Cpu.Ticks
}

// LineNo returns the source line number of the instruction at the program
// counter.
func (emu *Emulator) LineNo() int {
	emu.mutex.RLock()
	defer emu.mutex.RUnlock()

	return emu.Program.LineNo(emu.pc)
}

// Fault returns an *ErrRuntime if the CPU stopped on an invalid address
// or instruction.
func (emu *Emulator) Fault() (err error) {
	emu.mutex.RLock()
	defer emu.mutex.RUnlock()

	status := emu.Cpu.Status
	if status == cpu.ADR || status == cpu.INS {
		err = &ErrRuntime{
			LineNo: emu.Program.LineNo(emu.pc),
			Pc:     emu.pc,
			Status: status,
		}
	}

	return
}

// String returns the program counter and CPU state.
func (emu *Emulator) String() string {
	emu.mutex.RLock()
	defer emu.mutex.RUnlock()

	return fmt.Sprintf("% 5s: %v\n", "%pc", internal.Hex(emu.pc, 3)) + emu.Cpu.String()
}
