package cpu

//go:generate go tool stringer -type=Status

// Status is the run status of the processor.
type Status int

const (
	AOK = Status(iota) // Running.
	HLT                // Halted by a halt instruction.
	ADR                // Invalid address.
	INS                // Invalid instruction.
)

// Terminal returns true if execution cannot proceed.
func (st Status) Terminal() bool {
	return st != AOK
}

// Flags are the condition codes.
type Flags struct {
	Zero     bool
	Sign     bool
	Overflow bool
	Carry    bool
}

// Check evaluates a condition against the flags.
func (fl Flags) Check(cond Condition) (ok bool) {
	z, s, o, c := fl.Zero, fl.Sign, fl.Overflow, fl.Carry

	switch cond {
	case COND_ALWAYS:
		ok = true
	case COND_LE:
		ok = z || (o != s)
	case COND_L:
		ok = o != s
	case COND_E:
		ok = z
	case COND_NE:
		ok = !z
	case COND_GE:
		ok = s == o
	case COND_G:
		ok = s == o && !z
	case COND_B:
		ok = c
	case COND_NB:
		ok = !c
	case COND_BE:
		ok = c || z
	case COND_A:
		ok = !(c || z)
	}

	return
}

// Reset clears all flags.
func (fl *Flags) Reset() {
	*fl = Flags{}
}

func (fl Flags) String() string {
	bit := func(name byte, set bool) byte {
		if set {
			return name
		}
		return '-'
	}

	return string([]byte{
		bit('Z', fl.Zero),
		bit('S', fl.Sign),
		bit('O', fl.Overflow),
		bit('C', fl.Carry),
	})
}
