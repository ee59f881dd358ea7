// Package internal holds helpers shared by the y86 packages.
package internal

import (
	"strconv"
	"strings"
)

// Hex renders value as 0x-prefixed upper case hex, zero padded to width digits.
func Hex(value uint64, width int) string {
	digits := strings.ToUpper(strconv.FormatUint(value, 16))
	if len(digits) < width {
		digits = strings.Repeat("0", width-len(digits)) + digits
	}

	return "0x" + digits
}

// HexDigits is Hex without the 0x prefix.
func HexDigits(value uint64, width int) string {
	return Hex(value, width)[2:]
}

// Decimal renders value zero padded to width digits, with a leading '-' for
// negative values that does not count against the width.
func Decimal(value int64, width int) string {
	var sign string
	magnitude := uint64(value)
	if value < 0 {
		sign = "-"
		magnitude = -magnitude
	}

	digits := strconv.FormatUint(magnitude, 10)
	if len(digits) < width {
		digits = strings.Repeat("0", width-len(digits)) + digits
	}

	return sign + digits
}

// Bytes renders data as contiguous lower case hex pairs.
func Bytes(data []byte) string {
	var sb strings.Builder
	for _, b := range data {
		if b < 0x10 {
			sb.WriteByte('0')
		}
		sb.WriteString(strconv.FormatUint(uint64(b), 16))
	}

	return sb.String()
}
