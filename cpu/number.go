package cpu

import (
	"strconv"
	"strings"
)

// ParseNumber parses a decimal or 0x hex literal, with an optional
// leading '-', over the full 64-bit range. Values above MaxInt64 wrap
// to their two's complement.
func ParseNumber(text string) (value int64, err error) {
	digits := text
	negative := strings.HasPrefix(digits, "-")
	if negative {
		digits = digits[1:]
	}

	base := 10
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		base = 16
		digits = digits[2:]
	}

	if len(digits) == 0 || digits[0] == '+' || digits[0] == '-' {
		err = ErrParseNumber(text)
		return
	}

	uval, perr := strconv.ParseUint(digits, base, 64)
	if perr != nil {
		err = ErrParseNumber(text)
		return
	}

	value = int64(uval)
	if negative {
		value = -value
	}

	return
}
