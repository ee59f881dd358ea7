package io

import (
	"errors"

	"github.com/ezrec/y86/translate"
)

var f = translate.From

var (
	// Console errors
	ErrConsoleClosed      = errors.New(f("console closed"))
	ErrConsoleInterrupted = errors.New(f("console read interrupted by reset"))

	// Image errors
	ErrImageFull = errors.New(f("image exceeds capacity"))
)
