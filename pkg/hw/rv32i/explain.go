package rv32i

import (
	"fmt"
	"strings"

	"github.com/Manu343726/rvbench/pkg/utils"
)

// Returns the bit fields of an encoded word in the given format, least significant first
func Fields(f Format, w Word) []Field {
	return fieldsOf(f, w)
}

// Generates an ASCII frame representation of an encoded instruction, showing all opcode and operand bits
func Explain(d Descriptor, leftpad int) (string, error) {
	w, err := Encode(d)
	if err != nil {
		return "", err
	}

	fields := utils.Map(fieldsOf(d.Format(), w), func(field Field) utils.AsciiFrameField {
		return utils.AsciiFrameField{
			Name:  fmt.Sprintf("%v %v", field.Name, utils.FormatUintBinary(uint64(field.Value), field.Width)),
			Begin: field.Begin,
			Width: field.Width,
		}
	})

	frame, err := utils.AsciiFrame(fields, WordBits, "bits", utils.AsciiFrameUnitLayout_RightToLeft, leftpad)
	if err != nil {
		return "", err
	}

	header := fmt.Sprintf("%v%v  %v (%v)\n", strings.Repeat(" ", leftpad), w, Disassemble(d), d.Format())
	return header + frame, nil
}

// Dumps the documentation of all supported formats and instructions as one big multiline string
func Documentation(leftpad int) string {
	leftpadStr := strings.Repeat(" ", leftpad)

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("%vinstruction encoding length (bits): %v\n", leftpadStr, WordBits))
	builder.WriteString(fmt.Sprintf("%vsupported formats: %d\n", leftpadStr, uint(TOTAL_FORMATS)))
	builder.WriteString(fmt.Sprintf("%vsupported instructions: %v\n\n", leftpadStr, len(Instructions)))

	builder.WriteString(leftpadStr)
	builder.WriteString("Formats:\n\n")

	for f := Format(0); f < TOTAL_FORMATS; f++ {
		fields := utils.Map(fieldsOf(f, 0), func(field Field) utils.AsciiFrameField {
			return utils.AsciiFrameField{Name: field.Name, Begin: field.Begin, Width: field.Width}
		})

		frame, err := utils.AsciiFrame(fields, WordBits, "bits", utils.AsciiFrameUnitLayout_RightToLeft, leftpad+2)
		if err != nil {
			panic(err)
		}

		builder.WriteString(fmt.Sprintf("%v - %v:\n\n%v\n", leftpadStr, f, frame))
	}

	builder.WriteString(leftpadStr)
	builder.WriteString("Instructions:\n\n")

	for _, instr := range Instructions {
		builder.WriteString(fmt.Sprintf("%v - %-6v %-9v opcode=%v funct3=%d  %v\n", leftpadStr, instr.Mnemonic, instr.Format, instr.Opcode, instr.Funct3, instr.Description))
	}

	return builder.String()
}

// Like Documentation(), but with zero leftpad
func DocString() string {
	return Documentation(0)
}
