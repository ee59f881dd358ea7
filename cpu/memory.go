package cpu

import (
	"slices"
)

const (
	MEMORY_SIZE = 4096 // Default memory capacity in bytes.
	CELL_SIZE   = 4    // Bytes per change tracking cell.
	QUAD_SIZE   = 8    // Bytes per quad word.
)

// Memory is a flat byte addressed store, kept as 32-bit cells so that
// writes can be reported per cell.
type Memory struct {
	cell    []uint32
	changed map[uint64]struct{}
}

// NewMemory allocates memory of at least capacity bytes, rounded up to a
// whole cell.
func NewMemory(capacity int) (mem *Memory) {
	if capacity < 0 {
		capacity = 0
	}
	cells := (capacity + CELL_SIZE - 1) / CELL_SIZE

	mem = &Memory{
		cell:    make([]uint32, cells),
		changed: map[uint64]struct{}{},
	}

	return
}

// Capacity in bytes.
func (mem *Memory) Capacity() uint64 {
	return uint64(len(mem.cell)) * CELL_SIZE
}

// Valid returns true if the span [addr, addr+size) is in range.
func (mem *Memory) Valid(addr uint64, size uint64) bool {
	capacity := mem.Capacity()
	return addr < capacity && size <= capacity-addr
}

// GetByte reads a byte.
func (mem *Memory) GetByte(addr uint64) (value byte, ok bool) {
	if !mem.Valid(addr, 1) {
		return
	}

	shift := (addr % CELL_SIZE) * 8
	return byte(mem.cell[addr/CELL_SIZE] >> shift), true
}

// PutByte writes a byte.
func (mem *Memory) PutByte(addr uint64, value byte) (ok bool) {
	if !mem.Valid(addr, 1) {
		return
	}

	mem.putByte(addr, value)
	return true
}

func (mem *Memory) putByte(addr uint64, value byte) {
	index := addr / CELL_SIZE
	shift := (addr % CELL_SIZE) * 8
	mem.cell[index] = (mem.cell[index] &^ (0xff << shift)) | (uint32(value) << shift)
	mem.changed[index*CELL_SIZE] = struct{}{}
}

// GetQuad reads a little endian 64-bit value.
func (mem *Memory) GetQuad(addr uint64) (value int64, ok bool) {
	if !mem.Valid(addr, QUAD_SIZE) {
		return
	}

	var uval uint64
	for n := range uint64(QUAD_SIZE) {
		b, _ := mem.GetByte(addr + n)
		uval |= uint64(b) << (n * 8)
	}

	return int64(uval), true
}

// PutQuad writes a little endian 64-bit value. Nothing is written if
// any byte of the quad is out of range.
func (mem *Memory) PutQuad(addr uint64, value int64) (ok bool) {
	if !mem.Valid(addr, QUAD_SIZE) {
		return
	}

	uval := uint64(value)
	for n := range uint64(QUAD_SIZE) {
		mem.putByte(addr+n, byte(uval>>(n*8)))
	}

	return true
}

// Load copies data to memory at addr. Nothing is written if the data
// does not fit.
func (mem *Memory) Load(addr uint64, data []byte) (ok bool) {
	if len(data) == 0 {
		return addr <= mem.Capacity()
	}

	if !mem.Valid(addr, uint64(len(data))) {
		return
	}

	for n, b := range data {
		mem.putByte(addr+uint64(n), b)
	}

	return true
}

// Cell returns the 32-bit cell containing addr.
func (mem *Memory) Cell(addr uint64) (value uint32, ok bool) {
	if !mem.Valid(addr, 1) {
		return
	}

	return mem.cell[addr/CELL_SIZE], true
}

// Changed returns the sorted addresses of the cells written since the
// last call, and clears the change list.
func (mem *Memory) Changed() (addrs []uint64) {
	for addr := range mem.changed {
		addrs = append(addrs, addr)
	}
	slices.Sort(addrs)
	clear(mem.changed)

	return
}

// Reset clears all contents.
func (mem *Memory) Reset() {
	for n, value := range mem.cell {
		if value != 0 {
			mem.changed[uint64(n)*CELL_SIZE] = struct{}{}
		}
	}
	clear(mem.cell)
}
