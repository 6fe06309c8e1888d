package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTwosComplement(t *testing.T) {
	assert.Equal(t, uint32(0xFF8), TwosComplement[uint32](-8, 12))
	assert.Equal(t, uint32(0x7FF), TwosComplement[uint32](2047, 12))
	assert.Equal(t, uint32(0x800), TwosComplement[uint32](-2048, 12))
	assert.Equal(t, uint32(0x1FFF8), TwosComplement[uint32](-8, 17))
	assert.Equal(t, uint32(0), TwosComplement[uint32](0, 21))
}

func TestSignExtend(t *testing.T) {
	assert.Equal(t, int64(-8), SignExtend(uint32(0xFF8), 12))
	assert.Equal(t, int64(2047), SignExtend(uint32(0x7FF), 12))
	assert.Equal(t, int64(-4096), SignExtend(uint32(0x1000), 13))
}

func TestFits(t *testing.T) {
	assert.True(t, FitsSigned(-2048, 12))
	assert.True(t, FitsSigned(2047, 12))
	assert.False(t, FitsSigned(2048, 12))
	assert.False(t, FitsSigned(-2049, 12))

	assert.True(t, FitsUnsigned(31, 5))
	assert.False(t, FitsUnsigned(32, 5))
	assert.False(t, FitsUnsigned(-1, 5))
}

func TestBitView(t *testing.T) {
	var word uint32
	view := CreateBitView(&word)

	view.Write(0x6F, 0, 7)
	view.Write(0x1F, 7, 5)
	assert.Equal(t, uint32(0xFEF), word)
	assert.Equal(t, uint32(0x1F), view.Read(7, 5))

	// writes replace previous contents of the range
	view.Write(0, 7, 5)
	assert.Equal(t, uint32(0x6F), word)

	view.Scatter(0b1010_0000, 5, 20, 3)
	assert.Equal(t, uint32(0b101), view.Read(20, 3))
	assert.Equal(t, uint32(0b101_00000), view.Gather(20, 3, 5))
}
