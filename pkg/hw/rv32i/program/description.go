package program

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Manu343726/rvbench/pkg/hw/rv32i"
	"github.com/Manu343726/rvbench/pkg/utils"
	"gopkg.in/yaml.v3"
)

// Name of the macro expanding to the UART alphabet test program
const MacroUARTAlphabet = "uart_alphabet"

// One line of a program description. Either an instruction (Op) or a macro
type Entry struct {
	Op     string `yaml:"op,omitempty"`
	Rd     string `yaml:"rd,omitempty"`
	Rs1    string `yaml:"rs1,omitempty"`
	Rs2    string `yaml:"rs2,omitempty"`
	Imm    int64  `yaml:"imm,omitempty"`
	Offset int64  `yaml:"offset,omitempty"`
	Macro  string `yaml:"macro,omitempty"`
}

// Program described as a YAML document:
//
//	name: blink
//	instructions:
//	  - {op: addi, rd: x8, rs1: x0, imm: 100}
//	  - {op: sw, rs1: x8, rs2: x9, imm: 0}
//	  - {op: jal, rd: x0, offset: 0}
//
// Branch and jump offsets are byte deltas relative to the instruction address
type Description struct {
	Name         string      `yaml:"name"`
	UART         *UARTConfig `yaml:"uart,omitempty"`
	Instructions []Entry     `yaml:"instructions"`
}

// Parses a YAML program description. Unknown keys are rejected
func ParseDescription(r io.Reader) (*Description, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var d Description
	if err := decoder.Decode(&d); err != nil {
		if err == io.EOF {
			return nil, utils.MakeError(ErrInvalidProgram, "empty program description")
		}
		return nil, utils.MakeError(ErrInvalidProgram, "parsing program description: %w", err)
	}

	return &d, nil
}

// Loads a YAML program description from a file
func LoadDescription(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return ParseDescription(bytes.NewReader(data))
}

// Serializes the description back to YAML
func (d *Description) Marshal() ([]byte, error) {
	return yaml.Marshal(d)
}

func parseOptionalRegister(name string) (rv32i.Register, error) {
	if name == "" {
		return rv32i.X0, nil
	}

	return rv32i.ParseRegister(name)
}

func checkInt32(field string, value int64) (int32, error) {
	if !utils.FitsSigned(value, 32) {
		return 0, utils.MakeError(rv32i.ErrRange, "%v %d does not fit in 32 bits", field, value)
	}

	return int32(value), nil
}

// Appends the instruction described by the entry to the builder
func (e *Entry) appendTo(b *Builder, uart UARTConfig) error {
	if e.Macro != "" {
		if e.Op != "" {
			return fmt.Errorf("entry cannot have both op '%v' and macro '%v'", e.Op, e.Macro)
		}
		if strings.ToLower(e.Macro) != MacroUARTAlphabet {
			return fmt.Errorf("unknown macro '%v'", e.Macro)
		}
		return AppendUARTAlphabet(b, uart)
	}

	instr, err := rv32i.LookupInstruction(e.Op)
	if err != nil {
		return err
	}

	var regs [3]rv32i.Register
	for i, name := range []string{e.Rd, e.Rs1, e.Rs2} {
		if regs[i], err = parseOptionalRegister(name); err != nil {
			return err
		}
	}
	rd, rs1, rs2 := regs[0], regs[1], regs[2]

	imm, err := checkInt32("immediate", e.Imm)
	if err != nil {
		return err
	}
	offset, err := checkInt32("offset", e.Offset)
	if err != nil {
		return err
	}

	switch instr.Format {
	case rv32i.FormatRegImm:
		b.Append(rv32i.RegImm{Opcode: instr.Opcode, Funct3: instr.Funct3, Rd: rd, Rs1: rs1, Imm: imm})
	case rv32i.FormatStore:
		b.Append(rv32i.Store{Opcode: instr.Opcode, Funct3: instr.Funct3, Rs1: rs1, Rs2: rs2, Imm: imm})
	case rv32i.FormatBranch:
		b.Branch(instr.Opcode, instr.Funct3, rs1, rs2, offset)
	case rv32i.FormatUpperImm:
		if e.Imm < 0 || e.Imm > int64(utils.AllOnes[uint32](20)) {
			return utils.MakeError(rv32i.ErrRange, "upper immediate %d does not fit in 20 unsigned bits", e.Imm)
		}
		b.Append(rv32i.UpperImm{Opcode: instr.Opcode, Rd: rd, Imm: uint32(e.Imm)})
	case rv32i.FormatJump:
		b.Jump(instr.Opcode, rd, offset)
	}

	return nil
}

// Returns a builder with all the described instructions appended
func (d *Description) Builder() (*Builder, error) {
	uart := DefaultUARTConfig()
	if d.UART != nil {
		uart = *d.UART
	}

	b := NewBuilder()

	for i := range d.Instructions {
		if err := d.Instructions[i].appendTo(b, uart); err != nil {
			return nil, utils.MakeError(ErrInvalidProgram, "%v entry %d: %w", d.Name, i, err)
		}
	}

	return b, nil
}

// Builds the described program image
func (d *Description) Build() (Image, error) {
	b, err := d.Builder()
	if err != nil {
		return nil, err
	}

	return b.Build()
}
