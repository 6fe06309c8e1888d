package rv32i

import "errors"

var (
	// A field value (register index, opcode, funct3, immediate) does not fit its encoding width
	ErrRange = errors.New("value out of range")
	// A branch or jump byte offset is odd
	ErrAlignment = errors.New("misaligned offset")
	// The opcode does not belong to any of the supported instruction formats
	ErrUnknownOpcode = errors.New("unknown opcode")
	// The mnemonic does not name a supported instruction
	ErrUnknownInstruction = errors.New("unknown instruction")
)
