package internal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHex(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("0x0000", Hex(0, 4))
	assert.Equal("0x00FF", Hex(0xff, 4))
	assert.Equal("0x12345", Hex(0x12345, 4))
	assert.Equal("0xFFFFFFFFFFFFFFFF", Hex(math.MaxUint64, 16))
	assert.Equal("01A", HexDigits(0x1a, 3))
}

func TestDecimal(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("00012", Decimal(12, 5))
	assert.Equal("-00012", Decimal(-12, 5))
	assert.Equal("123456", Decimal(123456, 5))
	assert.Equal("-9223372036854775808", Decimal(math.MinInt64, 5))
}

func TestBytes(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("", Bytes(nil))
	assert.Equal("30f40a00", Bytes([]byte{0x30, 0xf4, 0x0a, 0x00}))
}
