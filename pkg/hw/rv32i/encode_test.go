package rv32i

import (
	"testing"

	"github.com/Manu343726/rvbench/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_GoldenWords(t *testing.T) {
	tests := []struct {
		name     string
		instr    Descriptor
		expected Word
	}{
		{"lui x1, 1", Lui(X1, 1), 0x000010b7},
		{"addi x4, x0, 65", Addi(X4, X0, 65), 0x04100213},
		{"addi x1, x0, -1", Addi(X1, X0, -1), 0xfff00093},
		{"lw x2, 4(x1)", Lw(X2, X1, 4), 0x0040a103},
		{"andi x2, x2, 1", Andi(X2, X2, 1), 0x00117113},
		{"sw x4, 0(x1)", Sw(X1, X4, 0), 0x0040a023},
		{"sw x4, -4(x1)", Sw(X1, X4, -4), 0xfe40ae23},
		{"beq x2, x0, -8", Branch{Opcode: 0x63, Funct3: 0, Rs1: 2, Rs2: 0, Offset: -8}, 0xfe010ce3},
		{"bne x4, x5, -20", Bne(X4, X5, -20), 0xfe5216e3},
		{"beq x0, x0, 4094", Beq(X0, X0, 4094), 0x7e000fe3},
		{"jal x0, 0", Jal(X0, 0), 0x0000006f},
		{"jal x1, -20", Jal(X1, -20), 0xfedff0ef},
		{"jal x1, 2048", Jal(X1, 2048), 0x001000ef},
		{"jal x0, -1048576", Jal(X0, -1048576), 0x8000006f},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			w, err := Encode(test.instr)
			require.NoError(t, err)
			assert.Equal(t, test.expected, w, "expected %v, got %v", test.expected, w)
		})
	}
}

func TestEncode_BranchSignBit(t *testing.T) {
	w := MustEncode(Branch{Opcode: 0x63, Funct3: 0, Rs1: 2, Rs2: 0, Offset: -8})

	assert.Equal(t, Word(1), w>>31, "sign bit must land in bit 31")
	assert.Equal(t, Word(0x3F), (w>>25)&0x3F, "imm[10:5]")
	assert.Equal(t, Word(0xC), (w>>8)&0xF, "imm[4:1]")
	assert.Equal(t, Word(1), (w>>7)&1, "imm[11]")
	assert.Equal(t, Word(2), (w>>15)&0x1F, "rs1")
}

func TestEncode_RegImmFormula(t *testing.T) {
	for _, imm := range []int32{-2048, -1, 0, 1, 2047} {
		w := MustEncode(RegImm{Opcode: OpcodeOpImm, Funct3: 3, Rd: 7, Rs1: 9, Imm: imm})

		imm12 := uint32(imm)
		if imm < 0 {
			imm12 = uint32(4096 + imm)
		}
		expected := Word(imm12<<20 | 9<<15 | 3<<12 | 7<<7 | 0x13)
		assert.Equal(t, expected, w, "imm %d", imm)
	}
}

func TestEncode_UpperImmFormula(t *testing.T) {
	w := MustEncode(Lui(X31, 0xFFFFF))
	assert.Equal(t, Word(0xFFFFF<<12|31<<7|0x37), w)
}

func TestEncode_SignNormalizationIsIdempotent(t *testing.T) {
	for imm := int32(-2048); imm < 2048; imm += 7 {
		renormalized := int32(utils.SignExtend(utils.TwosComplement[uint32](imm, 12), 12))
		assert.Equal(t, MustEncode(Addi(X1, X2, imm)), MustEncode(Addi(X1, X2, renormalized)))
		assert.Equal(t, MustEncode(Sw(X1, X2, imm)), MustEncode(Sw(X1, X2, renormalized)))
	}
}

func TestEncode_RangeErrors(t *testing.T) {
	tests := []struct {
		name  string
		instr Descriptor
	}{
		{"regimm immediate too big", Addi(X1, X0, 2048)},
		{"regimm immediate too small", Addi(X1, X0, -2049)},
		{"regimm rd", Addi(32, X0, 0)},
		{"regimm rs1", Addi(X1, 40, 0)},
		{"regimm funct3", RegImm{Opcode: OpcodeOpImm, Funct3: 8}},
		{"regimm opcode", RegImm{Opcode: 0x80}},
		{"store immediate", Sw(X1, X2, 4096)},
		{"store rs2", Sw(X1, 32, 0)},
		{"branch offset", Beq(X0, X0, 4096)},
		{"branch offset negative", Beq(X0, X0, -4098)},
		{"upper immediate", Lui(X1, 0x100000)},
		{"upper rd", Lui(32, 0)},
		{"jump offset", Jal(X0, 1048576)},
		{"jump rd", Jal(255, 0)},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Encode(test.instr)
			assert.ErrorIs(t, err, ErrRange)
		})
	}
}

func TestEncode_AlignmentErrors(t *testing.T) {
	_, err := Encode(Beq(X0, X0, -7))
	assert.ErrorIs(t, err, ErrAlignment)

	_, err = Encode(Jal(X1, 3))
	assert.ErrorIs(t, err, ErrAlignment)

	assert.Panics(t, func() { MustEncode(Jal(X1, 1)) })
}

func TestDecode_RoundTrip(t *testing.T) {
	descriptors := []Descriptor{
		Addi(X4, X0, 65),
		Addi(X31, X31, -2048),
		Lw(X2, X1, 4),
		RegImm{Opcode: OpcodeJalr, Funct3: 0, Rd: X1, Rs1: X5, Imm: -12},
		Sw(X1, X4, 0),
		Sw(X8, X9, -2048),
		Store{Opcode: OpcodeStore, Funct3: Funct3Sb, Rs1: X3, Rs2: X30, Imm: 2047},
		Beq(X2, X0, -8),
		Bne(X4, X5, -20),
		Branch{Opcode: OpcodeBranch, Funct3: Funct3Bgeu, Rs1: X17, Rs2: X18, Offset: -4096},
		Lui(X1, 1),
		UpperImm{Opcode: OpcodeAuipc, Rd: X10, Imm: 0xABCDE},
		Jal(X0, 0),
		Jal(X1, -1048576),
		Jal(X1, 1048574),
	}

	for _, d := range descriptors {
		w, err := Encode(d)
		require.NoError(t, err)

		assert.Equal(t, d, Decode(d.Format(), w))

		decoded, err := DecodeWord(w)
		require.NoError(t, err)
		assert.Equal(t, d, decoded)
	}
}

func TestDecode_Injective(t *testing.T) {
	seen := map[Word]Descriptor{}

	for rd := X0; rd < TOTAL_REGISTERS; rd += 5 {
		for imm := int32(-2048); imm < 2048; imm += 97 {
			for _, d := range []Descriptor{Addi(rd, X3, imm), Sw(rd, X3, imm)} {
				w := MustEncode(d)
				previous, exists := seen[w]
				assert.False(t, exists, "%v and %v encode to the same word %v", previous, d, w)
				seen[w] = d
			}
		}
	}
}

func TestDecodeWord_UnknownOpcode(t *testing.T) {
	_, err := DecodeWord(0x00000033)
	assert.ErrorIs(t, err, ErrUnknownOpcode)
}

func TestParseRegister(t *testing.T) {
	for input, expected := range map[string]Register{"x0": X0, "zero": X0, "X31": X31, "t0": X5, "sp": X2, "fp": X8, " a0 ": X10} {
		r, err := ParseRegister(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, r, input)
	}

	_, err := ParseRegister("x32")
	assert.ErrorIs(t, err, ErrRange)
}

func TestExplain(t *testing.T) {
	text, err := Explain(Beq(X2, X0, -8), 0)
	require.NoError(t, err)

	t.Logf("\n%v", text)
	assert.Contains(t, text, "fe010ce3  beq x2, x0, -8 (Branch)")
	assert.Contains(t, text, "imm[12] 1")
	assert.Contains(t, text, "imm[4:1] 1100")
	assert.Contains(t, text, "opcode 1100011")

	_, err = Explain(Beq(X2, X0, -7), 0)
	assert.ErrorIs(t, err, ErrAlignment)
}

func TestDocumentation(t *testing.T) {
	docs := DocString()

	assert.Contains(t, docs, "Branch")
	assert.Contains(t, docs, "imm[20]")
	for _, instr := range Instructions {
		assert.Contains(t, docs, instr.Mnemonic)
	}
}

func TestLookupInstruction(t *testing.T) {
	instr, err := LookupInstruction("BNE")
	require.NoError(t, err)
	assert.Equal(t, FormatBranch, instr.Format)
	assert.Equal(t, Funct3Bne, instr.Funct3)

	_, err = LookupInstruction("mul")
	assert.ErrorIs(t, err, ErrUnknownInstruction)

	assert.Equal(t, "lw x2, 4(x1)", Disassemble(Lw(X2, X1, 4)))
	assert.Equal(t, "sw x4, 0(x1)", Disassemble(Sw(X1, X4, 0)))
}
