package rv32i

import (
	"fmt"

	"github.com/Manu343726/rvbench/pkg/utils"
)

// Semantic description of one instruction in one of the supported formats
type Descriptor interface {
	// Returns the bit layout used by the instruction
	Format() Format
	// Returns the instruction word, or an error if any field does not fit its encoding
	Encode() (Word, error)
}

// Register-immediate (I-type) instruction: addi, andi, lw, jalr, ...
type RegImm struct {
	Opcode Opcode
	Funct3 Funct3
	Rd     Register
	Rs1    Register
	Imm    int32
}

// Store (S-type) instruction. Rs1 holds the base address, Rs2 the stored value
type Store struct {
	Opcode Opcode
	Funct3 Funct3
	Rs1    Register
	Rs2    Register
	Imm    int32
}

// Conditional branch (B-type). Offset is in bytes relative to the branch address
type Branch struct {
	Opcode Opcode
	Funct3 Funct3
	Rs1    Register
	Rs2    Register
	Offset int32
}

// Upper immediate (U-type) instruction: lui, auipc. Imm is the raw 20 bit value
type UpperImm struct {
	Opcode Opcode
	Rd     Register
	Imm    uint32
}

// Unconditional jump (J-type). Offset is in bytes relative to the jump address
type Jump struct {
	Opcode Opcode
	Rd     Register
	Offset int32
}

func (RegImm) Format() Format   { return FormatRegImm }
func (Store) Format() Format    { return FormatStore }
func (Branch) Format() Format   { return FormatBranch }
func (UpperImm) Format() Format { return FormatUpperImm }
func (Jump) Format() Format     { return FormatJump }

func checkOpcode(op Opcode) error {
	if !utils.FitsUnsigned(op, OpcodeBits) {
		return utils.MakeError(ErrRange, "opcode %v does not fit in %d bits", op, OpcodeBits)
	}

	return nil
}

func checkFunct3(funct3 Funct3) error {
	if !utils.FitsUnsigned(funct3, Funct3Bits) {
		return utils.MakeError(ErrRange, "funct3 %d does not fit in %d bits", funct3, Funct3Bits)
	}

	return nil
}

func checkRegisters(names []string, regs ...Register) error {
	for i, r := range regs {
		if r >= TOTAL_REGISTERS {
			return utils.MakeError(ErrRange, "register %v index %d is not in [0, 31]", names[i], uint8(r))
		}
	}

	return nil
}

// Encodes opcode, funct3 and the register fields shared by all formats.
// Registers not used by a format are passed as zero
func encodeCommon(op Opcode, funct3 Funct3, rd, rs1, rs2 Register) utils.BitView[Word] {
	view := utils.CreateBitView(new(Word))

	view.Write(Word(op), opcodePosition, OpcodeBits)
	view.Write(Word(rd), rdPosition, RegisterBits)
	view.Write(Word(funct3), funct3Position, Funct3Bits)
	view.Write(Word(rs1), rs1Position, RegisterBits)
	view.Write(Word(rs2), rs2Position, RegisterBits)

	return view
}

// word = (imm12 << 20) | (rs1 << 15) | (funct3 << 12) | (rd << 7) | opcode
func (d RegImm) Encode() (Word, error) {
	if err := checkOpcode(d.Opcode); err != nil {
		return 0, err
	}
	if err := checkFunct3(d.Funct3); err != nil {
		return 0, err
	}
	if err := checkRegisters([]string{"rd", "rs1"}, d.Rd, d.Rs1); err != nil {
		return 0, err
	}
	if err := regImmLayout.checkSigned("immediate", d.Imm); err != nil {
		return 0, err
	}

	view := encodeCommon(d.Opcode, d.Funct3, d.Rd, d.Rs1, 0)
	regImmLayout.scatter(view, utils.TwosComplement[Word](d.Imm, regImmLayout.bits))
	return view.Value(), nil
}

// imm[11:5] goes to bits [31:25], imm[4:0] to bits [11:7]
func (d Store) Encode() (Word, error) {
	if err := checkOpcode(d.Opcode); err != nil {
		return 0, err
	}
	if err := checkFunct3(d.Funct3); err != nil {
		return 0, err
	}
	if err := checkRegisters([]string{"rs1", "rs2"}, d.Rs1, d.Rs2); err != nil {
		return 0, err
	}
	if err := storeLayout.checkSigned("immediate", d.Imm); err != nil {
		return 0, err
	}

	view := encodeCommon(d.Opcode, d.Funct3, 0, d.Rs1, d.Rs2)
	storeLayout.scatter(view, utils.TwosComplement[Word](d.Imm, storeLayout.bits))
	return view.Value(), nil
}

// imm[12] goes to bit 31, imm[10:5] to [30:25], imm[4:1] to [11:8], imm[11] to bit 7
func (d Branch) Encode() (Word, error) {
	if err := checkOpcode(d.Opcode); err != nil {
		return 0, err
	}
	if err := checkFunct3(d.Funct3); err != nil {
		return 0, err
	}
	if err := checkRegisters([]string{"rs1", "rs2"}, d.Rs1, d.Rs2); err != nil {
		return 0, err
	}
	if err := branchLayout.checkSigned("branch offset", d.Offset); err != nil {
		return 0, err
	}

	view := encodeCommon(d.Opcode, d.Funct3, 0, d.Rs1, d.Rs2)
	branchLayout.scatter(view, utils.TwosComplement[Word](d.Offset, branchLayout.bits))
	return view.Value(), nil
}

// word = (imm20 << 12) | (rd << 7) | opcode
func (d UpperImm) Encode() (Word, error) {
	if err := checkOpcode(d.Opcode); err != nil {
		return 0, err
	}
	if err := checkRegisters([]string{"rd"}, d.Rd); err != nil {
		return 0, err
	}
	if err := upperImmLayout.checkUnsigned("immediate", d.Imm); err != nil {
		return 0, err
	}

	view := encodeCommon(d.Opcode, 0, d.Rd, 0, 0)
	upperImmLayout.scatter(view, Word(d.Imm))
	return view.Value(), nil
}

// imm[20] goes to bit 31, imm[10:1] to [30:21], imm[11] to bit 20, imm[19:12] to [19:12]
func (d Jump) Encode() (Word, error) {
	if err := checkOpcode(d.Opcode); err != nil {
		return 0, err
	}
	if err := checkRegisters([]string{"rd"}, d.Rd); err != nil {
		return 0, err
	}
	if err := jumpLayout.checkSigned("jump offset", d.Offset); err != nil {
		return 0, err
	}

	view := encodeCommon(d.Opcode, 0, d.Rd, 0, 0)
	jumpLayout.scatter(view, utils.TwosComplement[Word](d.Offset, jumpLayout.bits))
	return view.Value(), nil
}

// Encodes any descriptor
func Encode(d Descriptor) (Word, error) {
	w, err := d.Encode()
	if err != nil {
		return 0, fmt.Errorf("encoding %v instruction: %w", d.Format(), err)
	}

	return w, nil
}

// Like Encode(), but panics on error. Meant for literal instruction tables
func MustEncode(d Descriptor) Word {
	w, err := Encode(d)
	if err != nil {
		panic(err)
	}

	return w
}
