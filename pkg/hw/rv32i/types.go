// Package rv32i encodes the subset of the RISC-V RV32I base instruction formats
// used to synthesize hardware test programs.
package rv32i

import (
	"fmt"
	"strconv"
	"strings"
)

// A 32 bit encoded instruction word
type Word uint32

// Instruction width in bits
const WordBits = 32

// Instruction width in bytes
const WordBytes = 4

const (
	OpcodeBits   = 7
	RegisterBits = 5
	Funct3Bits   = 3
)

// 7 bit major opcode, stored in bits [6:0] of every instruction word
type Opcode uint8

const (
	OpcodeLoad   Opcode = 0x03
	OpcodeOpImm  Opcode = 0x13
	OpcodeAuipc  Opcode = 0x17
	OpcodeStore  Opcode = 0x23
	OpcodeLui    Opcode = 0x37
	OpcodeBranch Opcode = 0x63
	OpcodeJalr   Opcode = 0x67
	OpcodeJal    Opcode = 0x6F
)

func (op Opcode) String() string {
	return fmt.Sprintf("0x%02x", uint8(op))
}

// 3 bit minor opcode selecting the operation within a major opcode
type Funct3 uint8

const (
	Funct3Addi  Funct3 = 0
	Funct3Slli  Funct3 = 1
	Funct3Slti  Funct3 = 2
	Funct3Sltiu Funct3 = 3
	Funct3Xori  Funct3 = 4
	Funct3Srli  Funct3 = 5
	Funct3Ori   Funct3 = 6
	Funct3Andi  Funct3 = 7

	Funct3Lb  Funct3 = 0
	Funct3Lh  Funct3 = 1
	Funct3Lw  Funct3 = 2
	Funct3Lbu Funct3 = 4
	Funct3Lhu Funct3 = 5

	Funct3Sb Funct3 = 0
	Funct3Sh Funct3 = 1
	Funct3Sw Funct3 = 2

	Funct3Beq  Funct3 = 0
	Funct3Bne  Funct3 = 1
	Funct3Blt  Funct3 = 4
	Funct3Bge  Funct3 = 5
	Funct3Bltu Funct3 = 6
	Funct3Bgeu Funct3 = 7

	Funct3Jalr Funct3 = 0
)

// Integer register index, x0 to x31
type Register uint8

const (
	X0 Register = iota
	X1
	X2
	X3
	X4
	X5
	X6
	X7
	X8
	X9
	X10
	X11
	X12
	X13
	X14
	X15
	X16
	X17
	X18
	X19
	X20
	X21
	X22
	X23
	X24
	X25
	X26
	X27
	X28
	X29
	X30
	X31

	TOTAL_REGISTERS
)

var abiNames = [TOTAL_REGISTERS]string{
	"zero", "ra", "sp", "gp", "tp",
	"t0", "t1", "t2",
	"s0", "s1",
	"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7",
	"s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9", "s10", "s11",
	"t3", "t4", "t5", "t6",
}

func (r Register) String() string {
	return fmt.Sprintf("x%d", uint8(r))
}

// Returns the ABI name of the register (zero, ra, sp, ...)
func (r Register) ABIName() string {
	if r >= TOTAL_REGISTERS {
		return r.String()
	}

	return abiNames[r]
}

// Parses a register either by index name (x5) or by ABI name (t0)
func ParseRegister(name string) (Register, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	if index, ok := strings.CutPrefix(name, "x"); ok {
		value, err := strconv.ParseUint(index, 10, 8)
		if err == nil && value < uint64(TOTAL_REGISTERS) {
			return Register(value), nil
		}
	}

	if name == "fp" {
		return X8, nil
	}

	for i, abiName := range abiNames {
		if abiName == name {
			return Register(i), nil
		}
	}

	return 0, fmt.Errorf("%w: unknown register '%v'", ErrRange, name)
}

// Identifies one of the supported instruction bit layouts
type Format uint

const (
	FormatRegImm Format = iota
	FormatStore
	FormatBranch
	FormatUpperImm
	FormatJump

	TOTAL_FORMATS
)

func (f Format) String() string {
	switch f {
	case FormatRegImm:
		return "RegImm"
	case FormatStore:
		return "Store"
	case FormatBranch:
		return "Branch"
	case FormatUpperImm:
		return "UpperImm"
	case FormatJump:
		return "Jump"
	}

	return fmt.Sprintf("Format(%d)", uint(f))
}

// Returns the instruction format used by a major opcode
func FormatOf(op Opcode) (Format, error) {
	switch op {
	case OpcodeLoad, OpcodeOpImm, OpcodeJalr:
		return FormatRegImm, nil
	case OpcodeStore:
		return FormatStore, nil
	case OpcodeBranch:
		return FormatBranch, nil
	case OpcodeLui, OpcodeAuipc:
		return FormatUpperImm, nil
	case OpcodeJal:
		return FormatJump, nil
	}

	return 0, fmt.Errorf("%w: %v", ErrUnknownOpcode, op)
}

// Returns the major opcode of an encoded instruction
func (w Word) Opcode() Opcode {
	return Opcode(w & 0x7F)
}

// Returns the canonical hex-text rendering of the word (8 lowercase hex digits)
func (w Word) String() string {
	return fmt.Sprintf("%08x", uint32(w))
}
