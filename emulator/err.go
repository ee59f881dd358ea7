package emulator

import (
	"errors"

	"github.com/ezrec/y86/cpu"
	"github.com/ezrec/y86/translate"
)

var f = translate.From

var (
	ErrAddress     = errors.New(f("invalid address"))
	ErrInstruction = errors.New(f("invalid instruction"))
	ErrImageSize   = errors.New(f("image exceeds memory"))
)

// ErrRuntime indicates the location of a runtime fault.
type ErrRuntime struct {
	LineNo int
	Pc     uint64
	Status cpu.Status
}

func (err *ErrRuntime) Error() string {
	return f("line %d pc 0x%03x status %v", err.LineNo, err.Pc, err.Status)
}

func (err *ErrRuntime) Unwrap() error {
	switch err.Status {
	case cpu.ADR:
		return ErrAddress
	case cpu.INS:
		return ErrInstruction
	}
	return nil
}
