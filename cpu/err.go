package cpu

import (
	"errors"

	"github.com/ezrec/y86/translate"
)

var f = translate.From

var (
	// Register file errors
	ErrRegisterNone = errors.New(f("register none is not storage"))

	// Assembler errors
	ErrTokenUnrecognized = errors.New(f("unrecognized token"))
	ErrLabelDuplicate    = errors.New(f("label duplicated"))
	ErrLabelSyntax       = errors.New(f("label syntax"))
	ErrOperandCount      = errors.New(f("missing/extra arguments"))
	ErrOperandKind       = errors.New(f("operand kind invalid"))
	ErrOperandSyntax     = errors.New(f("operand syntax"))
	ErrRegisterInvalid   = errors.New(f("register invalid"))
	ErrAlignInvalid      = errors.New(f(".align must be positive"))
	ErrPosBackwards      = errors.New(f(".pos moves backwards"))
	ErrPosRange          = errors.New(f("address beyond the image limit"))
	ErrDirectiveValue    = errors.New(f("directive value invalid"))
	ErrLengthMismatch    = errors.New(f("encoded length mismatch"))
)

// ErrIsaInvalid is an instruction set entry with no kind or mnemonic.
type ErrIsaInvalid string

func (err ErrIsaInvalid) Error() string {
	return f("instruction set entry '%v' invalid", string(err))
}

// ErrIsaDuplicate is an instruction set entry that reuses a mnemonic or code.
type ErrIsaDuplicate string

func (err ErrIsaDuplicate) Error() string {
	return f("instruction set entry '%v' duplicated", string(err))
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseValue string

func (err ErrParseValue) Error() string {
	return f("'%v' is not a value or register", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrSyntax locates an assembler error on a 1-based source line.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}
