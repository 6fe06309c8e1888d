package interpreter

import (
	"github.com/Manu343726/rvbench/pkg/hw/rv32i"
	"github.com/Manu343726/rvbench/pkg/utils"
)

func illegal(d rv32i.Descriptor) error {
	return utils.MakeError(ErrIllegal, "%v", rv32i.Disassemble(d))
}

// Executes d located at pc and returns the address of the next instruction
func (i *Interpreter) execute(pc uint32, d rv32i.Descriptor) (uint32, error) {
	s := i.state
	next := pc + rv32i.WordBytes

	// jal and jalr link only once the target is known to be valid
	link := false
	var linkRd rv32i.Register

	switch d := d.(type) {
	case rv32i.RegImm:
		rs1 := s.GetRegister(d.Rs1)
		imm := uint32(d.Imm)

		switch d.Opcode {
		case rv32i.OpcodeOpImm:
			value, err := opImm(d, rs1, imm)
			if err != nil {
				return 0, err
			}
			s.SetRegister(d.Rd, value)
		case rv32i.OpcodeLoad:
			value, err := i.load(d, rs1+imm)
			if err != nil {
				return 0, err
			}
			s.SetRegister(d.Rd, value)
		case rv32i.OpcodeJalr:
			if d.Funct3 != rv32i.Funct3Jalr {
				return 0, illegal(d)
			}
			link, linkRd = true, d.Rd
			next = (rs1 + imm) &^ 1
		default:
			return 0, illegal(d)
		}
	case rv32i.Store:
		addr := s.GetRegister(d.Rs1) + uint32(d.Imm)
		value := s.GetRegister(d.Rs2)

		var size int
		switch d.Funct3 {
		case rv32i.Funct3Sb:
			size = 1
		case rv32i.Funct3Sh:
			size = 2
		case rv32i.Funct3Sw:
			size = 4
		default:
			return 0, illegal(d)
		}

		if err := i.Store(addr, size, value); err != nil {
			return 0, err
		}
	case rv32i.Branch:
		taken, err := branchTaken(d, s.GetRegister(d.Rs1), s.GetRegister(d.Rs2))
		if err != nil {
			return 0, err
		}
		if taken {
			next = pc + uint32(d.Offset)
		}
	case rv32i.UpperImm:
		upper := d.Imm << 12
		switch d.Opcode {
		case rv32i.OpcodeLui:
			s.SetRegister(d.Rd, upper)
		case rv32i.OpcodeAuipc:
			s.SetRegister(d.Rd, pc+upper)
		default:
			return 0, illegal(d)
		}
	case rv32i.Jump:
		link, linkRd = true, d.Rd
		next = pc + uint32(d.Offset)
	default:
		return 0, illegal(d)
	}

	if next%rv32i.WordBytes != 0 {
		return 0, utils.MakeError(rv32i.ErrAlignment, "jump target %#08x", next)
	}

	if link {
		s.SetRegister(linkRd, pc+rv32i.WordBytes)
	}

	return next, nil
}

func opImm(d rv32i.RegImm, rs1, imm uint32) (uint32, error) {
	shamt := imm & 0x1F

	switch d.Funct3 {
	case rv32i.Funct3Addi:
		return rs1 + imm, nil
	case rv32i.Funct3Slti:
		return boolToWord(int32(rs1) < int32(imm)), nil
	case rv32i.Funct3Sltiu:
		return boolToWord(rs1 < imm), nil
	case rv32i.Funct3Xori:
		return rs1 ^ imm, nil
	case rv32i.Funct3Ori:
		return rs1 | imm, nil
	case rv32i.Funct3Andi:
		return rs1 & imm, nil
	case rv32i.Funct3Slli:
		return rs1 << shamt, nil
	case rv32i.Funct3Srli:
		// srai sets bit 10 of the immediate
		if imm&0x400 != 0 {
			return uint32(int32(rs1) >> shamt), nil
		}
		return rs1 >> shamt, nil
	}

	return 0, illegal(d)
}

func (i *Interpreter) load(d rv32i.RegImm, addr uint32) (uint32, error) {
	switch d.Funct3 {
	case rv32i.Funct3Lb:
		v, err := i.Load(addr, 1)
		return uint32(int8(v)), err
	case rv32i.Funct3Lh:
		v, err := i.Load(addr, 2)
		return uint32(int16(v)), err
	case rv32i.Funct3Lw:
		return i.Load(addr, 4)
	case rv32i.Funct3Lbu:
		return i.Load(addr, 1)
	case rv32i.Funct3Lhu:
		return i.Load(addr, 2)
	}

	return 0, illegal(d)
}

func branchTaken(d rv32i.Branch, a, b uint32) (bool, error) {
	switch d.Funct3 {
	case rv32i.Funct3Beq:
		return a == b, nil
	case rv32i.Funct3Bne:
		return a != b, nil
	case rv32i.Funct3Blt:
		return int32(a) < int32(b), nil
	case rv32i.Funct3Bge:
		return int32(a) >= int32(b), nil
	case rv32i.Funct3Bltu:
		return a < b, nil
	case rv32i.Funct3Bgeu:
		return a >= b, nil
	}

	return false, illegal(d)
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
