package rv32i

import (
	"github.com/Manu343726/rvbench/pkg/utils"
)

func decodeSigned(l *immLayout, view utils.BitView[Word]) int32 {
	return int32(utils.SignExtend(l.gather(view), l.bits))
}

func decodeRegister(view utils.BitView[Word], position int) Register {
	return Register(view.Read(position, RegisterBits))
}

// Decodes a word assuming the given format. Every word decodes to a descriptor
// whose Encode() returns the same word
func Decode(f Format, w Word) Descriptor {
	view := utils.CreateBitView(&w)
	op := Opcode(view.Read(opcodePosition, OpcodeBits))
	funct3 := Funct3(view.Read(funct3Position, Funct3Bits))

	switch f {
	case FormatRegImm:
		return RegImm{
			Opcode: op,
			Funct3: funct3,
			Rd:     decodeRegister(view, rdPosition),
			Rs1:    decodeRegister(view, rs1Position),
			Imm:    decodeSigned(&regImmLayout, view),
		}
	case FormatStore:
		return Store{
			Opcode: op,
			Funct3: funct3,
			Rs1:    decodeRegister(view, rs1Position),
			Rs2:    decodeRegister(view, rs2Position),
			Imm:    decodeSigned(&storeLayout, view),
		}
	case FormatBranch:
		return Branch{
			Opcode: op,
			Funct3: funct3,
			Rs1:    decodeRegister(view, rs1Position),
			Rs2:    decodeRegister(view, rs2Position),
			Offset: decodeSigned(&branchLayout, view),
		}
	case FormatUpperImm:
		return UpperImm{
			Opcode: op,
			Rd:     decodeRegister(view, rdPosition),
			Imm:    uint32(upperImmLayout.gather(view)),
		}
	case FormatJump:
		return Jump{
			Opcode: op,
			Rd:     decodeRegister(view, rdPosition),
			Offset: decodeSigned(&jumpLayout, view),
		}
	}

	panic("unreachable")
}

// Decodes a word choosing the format from its opcode
func DecodeWord(w Word) (Descriptor, error) {
	f, err := FormatOf(w.Opcode())
	if err != nil {
		return nil, err
	}

	return Decode(f, w), nil
}
