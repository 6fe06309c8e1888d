package program

import (
	"strings"
	"testing"

	"github.com/Manu343726/rvbench/pkg/hw/rv32i"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var uartAlphabetGolden = Image{
	0x000010b7,
	0x04100213,
	0x05b00293,
	0x0040a103,
	0x00117113,
	0xfe010ce3,
	0x0040a023,
	0x00120213,
	0xfe5216e3,
	0x06400413,
	0x00100493,
	0x00942023,
	0x0000006f,
}

func TestUARTAlphabet_Golden(t *testing.T) {
	image, err := UARTAlphabet(DefaultUARTConfig())
	require.NoError(t, err)

	assert.Equal(t, uartAlphabetGolden, image)
	assert.Equal(t, 13*4, image.Size())
}

func TestUARTAlphabet_InvalidConfig(t *testing.T) {
	cfg := DefaultUARTConfig()
	cfg.UARTBase = 0x1004
	_, err := UARTAlphabet(cfg)
	assert.ErrorIs(t, err, ErrInvalidProgram)

	cfg = DefaultUARTConfig()
	cfg.FirstChar, cfg.LastChar = 'Z', 'A'
	_, err = UARTAlphabet(cfg)
	assert.ErrorIs(t, err, ErrInvalidProgram)
}

func TestBuilder_Addresses(t *testing.T) {
	b := NewBuilder()
	assert.Equal(t, uint32(0), b.Addr())

	b.Append(rv32i.Nop(), rv32i.Nop())
	assert.Equal(t, uint32(8), b.Addr())
	assert.Equal(t, int32(-8), b.DeltaTo(0))
	assert.Equal(t, int32(4), b.DeltaTo(12))

	b.Jump(rv32i.OpcodeJal, rv32i.X0, b.DeltaTo(0))

	image, err := b.Build()
	require.NoError(t, err)
	require.Len(t, image, 3)
	assert.Equal(t, rv32i.MustEncode(rv32i.Jal(rv32i.X0, -8)), image[2])
}

func TestBuilder_OddOffsetFails(t *testing.T) {
	b := NewBuilder().
		Append(rv32i.Nop()).
		Branch(rv32i.OpcodeBranch, rv32i.Funct3Beq, rv32i.X1, rv32i.X2, 3)

	_, err := b.Build()
	assert.ErrorIs(t, err, ErrInvalidProgram)
	assert.ErrorIs(t, err, rv32i.ErrAlignment)
	assert.Contains(t, err.Error(), "instruction 1 at address 0x4")

	_, err = NewBuilder().Jump(rv32i.OpcodeJal, rv32i.X0, -1).Build()
	assert.ErrorIs(t, err, rv32i.ErrAlignment)
}

func TestBuilder_RangeFails(t *testing.T) {
	_, err := NewBuilder().Append(rv32i.Addi(rv32i.X1, rv32i.X0, 5000)).Build()
	assert.ErrorIs(t, err, rv32i.ErrRange)
}

func TestBuilder_Listing(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, AppendUARTAlphabet(b, DefaultUARTConfig()))

	listing := b.Listing()
	require.Len(t, listing, 13)
	assert.Equal(t, "0x0000: lui x1, 0x1", listing[0])
	assert.Equal(t, "0x0014: beq x2, x0, -8", listing[5])
	assert.Equal(t, "0x0030: jal x0, 0", listing[12])
}

const uartDescription = `
name: uart
instructions:
  - {op: lui, rd: x1, imm: 1}
  - {op: addi, rd: x4, rs1: zero, imm: 65}
  - {op: addi, rd: t0, imm: 91}
  - {op: lw, rd: sp, rs1: ra, imm: 4}
  - {op: andi, rd: x2, rs1: x2, imm: 1}
  - {op: beq, rs1: x2, rs2: x0, offset: -8}
  - {op: sw, rs1: x1, rs2: x4}
  - {op: addi, rd: x4, rs1: x4, imm: 1}
  - {op: bne, rs1: x4, rs2: x5, offset: -20}
  - {op: addi, rd: s0, imm: 100}
  - {op: addi, rd: s1, imm: 1}
  - {op: sw, rs1: x8, rs2: x9}
  - {op: jal, rd: x0}
`

func TestDescription_Build(t *testing.T) {
	d, err := ParseDescription(strings.NewReader(uartDescription))
	require.NoError(t, err)
	assert.Equal(t, "uart", d.Name)

	image, err := d.Build()
	require.NoError(t, err)
	assert.Equal(t, uartAlphabetGolden, image)
}

func TestDescription_Macro(t *testing.T) {
	d, err := ParseDescription(strings.NewReader(`
name: macro
instructions:
  - {macro: uart_alphabet}
`))
	require.NoError(t, err)

	image, err := d.Build()
	require.NoError(t, err)
	assert.Equal(t, uartAlphabetGolden, image)
}

func TestDescription_MarshalRoundTrip(t *testing.T) {
	d, err := ParseDescription(strings.NewReader(uartDescription))
	require.NoError(t, err)

	data, err := d.Marshal()
	require.NoError(t, err)

	again, err := ParseDescription(strings.NewReader(string(data)))
	require.NoError(t, err)

	image, err := again.Build()
	require.NoError(t, err)
	assert.Equal(t, uartAlphabetGolden, image)
}

func TestDescription_Errors(t *testing.T) {
	tests := map[string]string{
		"unknown op":       "instructions: [{op: mul, rd: x1}]",
		"unknown register": "instructions: [{op: addi, rd: x40}]",
		"unknown macro":    "instructions: [{macro: fizzbuzz}]",
		"odd offset":       "instructions: [{op: jal, offset: 3}]",
		"negative upper":   "instructions: [{op: lui, rd: x1, imm: -1}]",
		"huge immediate":   "instructions: [{op: addi, rd: x1, imm: 8589934592}]",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			d, err := ParseDescription(strings.NewReader(input))
			require.NoError(t, err)

			_, err = d.Build()
			assert.ErrorIs(t, err, ErrInvalidProgram)
		})
	}

	_, err := ParseDescription(strings.NewReader("instructions: [{op: addi, bogus: 1}]"))
	assert.ErrorIs(t, err, ErrInvalidProgram)

	_, err = ParseDescription(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrInvalidProgram)
}
