package rv32i

import (
	"fmt"
	"strings"

	"github.com/Manu343726/rvbench/pkg/utils"
)

// Describes one supported instruction mnemonic
type InstructionDescriptor struct {
	Mnemonic    string
	Format      Format
	Opcode      Opcode
	Funct3      Funct3
	Description string
}

// All supported instructions, in documentation order
var Instructions = []InstructionDescriptor{
	{"addi", FormatRegImm, OpcodeOpImm, Funct3Addi, "rd = rs1 + imm"},
	{"slti", FormatRegImm, OpcodeOpImm, Funct3Slti, "rd = rs1 < imm (signed)"},
	{"sltiu", FormatRegImm, OpcodeOpImm, Funct3Sltiu, "rd = rs1 < imm (unsigned)"},
	{"xori", FormatRegImm, OpcodeOpImm, Funct3Xori, "rd = rs1 ^ imm"},
	{"ori", FormatRegImm, OpcodeOpImm, Funct3Ori, "rd = rs1 | imm"},
	{"andi", FormatRegImm, OpcodeOpImm, Funct3Andi, "rd = rs1 & imm"},
	{"slli", FormatRegImm, OpcodeOpImm, Funct3Slli, "rd = rs1 << imm[4:0]"},
	{"srli", FormatRegImm, OpcodeOpImm, Funct3Srli, "rd = rs1 >> imm[4:0] (logical)"},
	{"lb", FormatRegImm, OpcodeLoad, Funct3Lb, "rd = sext(M[rs1 + imm][7:0])"},
	{"lh", FormatRegImm, OpcodeLoad, Funct3Lh, "rd = sext(M[rs1 + imm][15:0])"},
	{"lw", FormatRegImm, OpcodeLoad, Funct3Lw, "rd = M[rs1 + imm]"},
	{"lbu", FormatRegImm, OpcodeLoad, Funct3Lbu, "rd = zext(M[rs1 + imm][7:0])"},
	{"lhu", FormatRegImm, OpcodeLoad, Funct3Lhu, "rd = zext(M[rs1 + imm][15:0])"},
	{"jalr", FormatRegImm, OpcodeJalr, Funct3Jalr, "rd = pc + 4; pc = (rs1 + imm) & ~1"},
	{"sb", FormatStore, OpcodeStore, Funct3Sb, "M[rs1 + imm][7:0] = rs2[7:0]"},
	{"sh", FormatStore, OpcodeStore, Funct3Sh, "M[rs1 + imm][15:0] = rs2[15:0]"},
	{"sw", FormatStore, OpcodeStore, Funct3Sw, "M[rs1 + imm] = rs2"},
	{"beq", FormatBranch, OpcodeBranch, Funct3Beq, "if rs1 == rs2: pc += offset"},
	{"bne", FormatBranch, OpcodeBranch, Funct3Bne, "if rs1 != rs2: pc += offset"},
	{"blt", FormatBranch, OpcodeBranch, Funct3Blt, "if rs1 < rs2 (signed): pc += offset"},
	{"bge", FormatBranch, OpcodeBranch, Funct3Bge, "if rs1 >= rs2 (signed): pc += offset"},
	{"bltu", FormatBranch, OpcodeBranch, Funct3Bltu, "if rs1 < rs2 (unsigned): pc += offset"},
	{"bgeu", FormatBranch, OpcodeBranch, Funct3Bgeu, "if rs1 >= rs2 (unsigned): pc += offset"},
	{"lui", FormatUpperImm, OpcodeLui, 0, "rd = imm << 12"},
	{"auipc", FormatUpperImm, OpcodeAuipc, 0, "rd = pc + (imm << 12)"},
	{"jal", FormatJump, OpcodeJal, 0, "rd = pc + 4; pc += offset"},
}

var instructionsByMnemonic = func() map[string]*InstructionDescriptor {
	result := make(map[string]*InstructionDescriptor, len(Instructions))
	for i := range Instructions {
		result[Instructions[i].Mnemonic] = &Instructions[i]
	}
	return result
}()

// Finds an instruction by mnemonic (case insensitive)
func LookupInstruction(mnemonic string) (*InstructionDescriptor, error) {
	if instr, ok := instructionsByMnemonic[strings.ToLower(mnemonic)]; ok {
		return instr, nil
	}

	return nil, utils.MakeError(ErrUnknownInstruction, "'%v'", mnemonic)
}

// Returns the mnemonic of a decoded instruction, or "???" if it is not one of the supported instructions
func MnemonicOf(d Descriptor) string {
	var op Opcode
	var funct3 Funct3

	switch d := d.(type) {
	case RegImm:
		op, funct3 = d.Opcode, d.Funct3
	case Store:
		op, funct3 = d.Opcode, d.Funct3
	case Branch:
		op, funct3 = d.Opcode, d.Funct3
	case UpperImm:
		op = d.Opcode
	case Jump:
		op = d.Opcode
	}

	for _, instr := range Instructions {
		if instr.Format == d.Format() && instr.Opcode == op && instr.Funct3 == funct3 {
			return instr.Mnemonic
		}
	}

	return "???"
}

// Returns the assembly text of a descriptor, like "addi x4, x0, 65"
func Disassemble(d Descriptor) string {
	mnemonic := MnemonicOf(d)

	switch d := d.(type) {
	case RegImm:
		if d.Opcode == OpcodeLoad || d.Opcode == OpcodeJalr {
			return fmt.Sprintf("%v %v, %d(%v)", mnemonic, d.Rd, d.Imm, d.Rs1)
		}
		return fmt.Sprintf("%v %v, %v, %d", mnemonic, d.Rd, d.Rs1, d.Imm)
	case Store:
		return fmt.Sprintf("%v %v, %d(%v)", mnemonic, d.Rs2, d.Imm, d.Rs1)
	case Branch:
		return fmt.Sprintf("%v %v, %v, %d", mnemonic, d.Rs1, d.Rs2, d.Offset)
	case UpperImm:
		return fmt.Sprintf("%v %v, %#x", mnemonic, d.Rd, d.Imm)
	case Jump:
		return fmt.Sprintf("%v %v, %d", mnemonic, d.Rd, d.Offset)
	}

	return mnemonic
}

// Register-immediate instruction factories

func Addi(rd, rs1 Register, imm int32) RegImm {
	return RegImm{Opcode: OpcodeOpImm, Funct3: Funct3Addi, Rd: rd, Rs1: rs1, Imm: imm}
}

func Andi(rd, rs1 Register, imm int32) RegImm {
	return RegImm{Opcode: OpcodeOpImm, Funct3: Funct3Andi, Rd: rd, Rs1: rs1, Imm: imm}
}

func Ori(rd, rs1 Register, imm int32) RegImm {
	return RegImm{Opcode: OpcodeOpImm, Funct3: Funct3Ori, Rd: rd, Rs1: rs1, Imm: imm}
}

// Loads a word from rs1 + imm
func Lw(rd, rs1 Register, imm int32) RegImm {
	return RegImm{Opcode: OpcodeLoad, Funct3: Funct3Lw, Rd: rd, Rs1: rs1, Imm: imm}
}

// Stores rs2 into base + imm
func Sw(base, value Register, imm int32) Store {
	return Store{Opcode: OpcodeStore, Funct3: Funct3Sw, Rs1: base, Rs2: value, Imm: imm}
}

func Beq(rs1, rs2 Register, offset int32) Branch {
	return Branch{Opcode: OpcodeBranch, Funct3: Funct3Beq, Rs1: rs1, Rs2: rs2, Offset: offset}
}

func Bne(rs1, rs2 Register, offset int32) Branch {
	return Branch{Opcode: OpcodeBranch, Funct3: Funct3Bne, Rs1: rs1, Rs2: rs2, Offset: offset}
}

func Lui(rd Register, imm uint32) UpperImm {
	return UpperImm{Opcode: OpcodeLui, Rd: rd, Imm: imm}
}

func Jal(rd Register, offset int32) Jump {
	return Jump{Opcode: OpcodeJal, Rd: rd, Offset: offset}
}

// Canonical no-operation (addi x0, x0, 0)
func Nop() RegImm {
	return Addi(X0, X0, 0)
}
