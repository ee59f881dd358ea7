package cpu

import (
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/ezrec/y86/internal"
)

const (
	LISTING_BYTES = 10 // Bytes shown per listing row.
)

// Record is the output of the assembler for one source line.
type Record struct {
	LineNo  int    // 1-based source line.
	Address uint64 // Address of the first byte.
	Source  string // Line as written.
	Bytes   []byte // Emitted bytes. Empty for blank, label and brk lines.
	Fill    bool   // Set for .pos and .align padding.
}

// Program is a compiled program.
type Program struct {
	Records     []Record
	Labels      map[string]uint64 // Label addresses.
	Breakpoints []uint64          // Addresses of brk markers.
}

// Bytes iterates over every emitted byte and its address.
func (prog *Program) Bytes() iter.Seq2[uint64, byte] {
	return func(yield func(addr uint64, value byte) bool) {
		for _, rec := range prog.Records {
			for n, value := range rec.Bytes {
				if !yield(rec.Address+uint64(n), value) {
					return
				}
			}
		}
	}
}

// Size is the length of the image, from address zero to the last byte.
func (prog *Program) Size() (size uint64) {
	for _, rec := range prog.Records {
		end := rec.Address + uint64(len(rec.Bytes))
		if end > size {
			size = end
		}
	}

	return
}

// Binary returns the contiguous image starting at address zero.
func (prog *Program) Binary() (bin []byte) {
	bin = make([]byte, prog.Size())
	for addr, value := range prog.Bytes() {
		bin[addr] = value
	}

	return
}

// Debug finds the record that emitted the byte at addr.
func (prog *Program) Debug(addr uint64) (rec *Record, ok bool) {
	for n := range prog.Records {
		rec = &prog.Records[n]
		if addr >= rec.Address && addr < rec.Address+uint64(len(rec.Bytes)) {
			ok = true
			return
		}
	}

	rec = nil
	return
}

// LineNo returns the source line that emitted the byte at addr, or 0.
func (prog *Program) LineNo(addr uint64) int {
	rec, ok := prog.Debug(addr)
	if !ok {
		return 0
	}

	return rec.LineNo
}

// Listing writes the annotated listing: 'address: bytes | source'.
func (prog *Program) Listing(w io.Writer) (err error) {
	width := 2 * LISTING_BYTES

	for _, rec := range prog.Records {
		data := rec.Bytes
		if rec.Fill {
			data = nil
		}

		// Long data continues on rows of its own.
		var rows []string
		for len(data) > LISTING_BYTES {
			rows = append(rows, internal.Bytes(data[:LISTING_BYTES]))
			data = data[LISTING_BYTES:]
		}
		rows = append(rows, internal.Bytes(data))

		addr := rec.Address
		for n, row := range rows {
			source := ""
			if n == 0 {
				source = rec.Source
			}
			_, err = fmt.Fprintf(w, "%v: %-*v | %v\n",
				internal.Hex(addr, 3), width, row, source)
			if err != nil {
				return
			}
			addr += LISTING_BYTES
		}
	}

	return
}

// String returns the listing.
func (prog *Program) String() string {
	var sb strings.Builder
	_ = prog.Listing(&sb)
	return sb.String()
}
