package rv32i

import (
	"fmt"

	"github.com/Manu343726/rvbench/pkg/utils"
)

// Fixed bit positions shared by all formats
const (
	opcodePosition = 0
	rdPosition     = 7
	funct3Position = 12
	rs1Position    = 15
	rs2Position    = 20
)

// Maps a contiguous range of immediate bits into the instruction word
type immSlice struct {
	// First bit of the normalized immediate
	from int
	// First bit of the instruction word
	to int
	// Number of bits copied
	width int
}

func (s immSlice) name() string {
	if s.width == 1 {
		return fmt.Sprintf("imm[%d]", s.from)
	}

	return fmt.Sprintf("imm[%d:%d]", s.from+s.width-1, s.from)
}

// Bit layout of the immediate of a format
type immLayout struct {
	// Width in bits of the (normalized) immediate, including the implicit zero bit 0 of offsets
	bits int
	// Whether the immediate is a signed value
	signed bool
	// Whether bit 0 of the immediate is implicit (always zero, never encoded)
	implicitBit0 bool
	slices       []immSlice
}

var (
	regImmLayout = immLayout{
		bits:   12,
		signed: true,
		slices: []immSlice{
			{from: 0, to: 20, width: 12},
		},
	}

	storeLayout = immLayout{
		bits:   12,
		signed: true,
		slices: []immSlice{
			{from: 0, to: 7, width: 5},
			{from: 5, to: 25, width: 7},
		},
	}

	// imm[12|10:5] rs2 rs1 funct3 imm[4:1|11] opcode
	branchLayout = immLayout{
		bits:         13,
		signed:       true,
		implicitBit0: true,
		slices: []immSlice{
			{from: 11, to: 7, width: 1},
			{from: 1, to: 8, width: 4},
			{from: 5, to: 25, width: 6},
			{from: 12, to: 31, width: 1},
		},
	}

	upperImmLayout = immLayout{
		bits: 20,
		slices: []immSlice{
			{from: 0, to: 12, width: 20},
		},
	}

	// imm[20|10:1|11|19:12] rd opcode
	jumpLayout = immLayout{
		bits:         21,
		signed:       true,
		implicitBit0: true,
		slices: []immSlice{
			{from: 12, to: 12, width: 8},
			{from: 11, to: 20, width: 1},
			{from: 1, to: 21, width: 10},
			{from: 20, to: 31, width: 1},
		},
	}
)

// Returns the immediate layout of a format
func layoutOf(f Format) *immLayout {
	switch f {
	case FormatRegImm:
		return &regImmLayout
	case FormatStore:
		return &storeLayout
	case FormatBranch:
		return &branchLayout
	case FormatUpperImm:
		return &upperImmLayout
	case FormatJump:
		return &jumpLayout
	}

	panic("unreachable")
}

// Checks that a signed immediate fits the layout and, for offsets, that it is even
func (l *immLayout) checkSigned(field string, value int32) error {
	if l.implicitBit0 && value%2 != 0 {
		return utils.MakeError(ErrAlignment, "%v %d is odd", field, value)
	}

	if !utils.FitsSigned(value, l.bits) {
		return utils.MakeError(ErrRange, "%v %d does not fit in %d signed bits", field, value, l.bits)
	}

	return nil
}

func (l *immLayout) checkUnsigned(field string, value uint32) error {
	if !utils.FitsUnsigned(value, l.bits) {
		return utils.MakeError(ErrRange, "%v %#x does not fit in %d unsigned bits", field, value, l.bits)
	}

	return nil
}

// Scatters the normalized immediate across the instruction word
func (l *immLayout) scatter(view utils.BitView[Word], imm Word) {
	for _, s := range l.slices {
		view.Scatter(imm, s.from, s.to, s.width)
	}
}

// Gathers the immediate bits back from an instruction word, not sign extended
func (l *immLayout) gather(view utils.BitView[Word]) Word {
	var imm Word

	for _, s := range l.slices {
		imm |= view.Gather(s.to, s.width, s.from)
	}

	return imm
}

// A named range of bits within an instruction word
type Field struct {
	Name  string
	Begin int
	Width int
	Value uint32
}

// Returns the fixed register/opcode fields plus the immediate slices of a format, sorted by position
func fieldsOf(f Format, w Word) []Field {
	view := utils.CreateBitView(&w)
	fields := []Field{{Name: "opcode", Begin: opcodePosition, Width: OpcodeBits}}

	switch f {
	case FormatRegImm:
		fields = append(fields,
			Field{Name: "rd", Begin: rdPosition, Width: RegisterBits},
			Field{Name: "funct3", Begin: funct3Position, Width: Funct3Bits},
			Field{Name: "rs1", Begin: rs1Position, Width: RegisterBits},
		)
	case FormatStore, FormatBranch:
		fields = append(fields,
			Field{Name: "funct3", Begin: funct3Position, Width: Funct3Bits},
			Field{Name: "rs1", Begin: rs1Position, Width: RegisterBits},
			Field{Name: "rs2", Begin: rs2Position, Width: RegisterBits},
		)
	case FormatUpperImm, FormatJump:
		fields = append(fields, Field{Name: "rd", Begin: rdPosition, Width: RegisterBits})
	}

	for _, s := range layoutOf(f).slices {
		fields = append(fields, Field{Name: s.name(), Begin: s.to, Width: s.width})
	}

	sortFields(fields)

	for i := range fields {
		fields[i].Value = uint32(view.Read(fields[i].Begin, fields[i].Width))
	}

	return fields
}

func sortFields(fields []Field) {
	for i := 1; i < len(fields); i++ {
		for j := i; j > 0 && fields[j].Begin < fields[j-1].Begin; j-- {
			fields[j], fields[j-1] = fields[j-1], fields[j]
		}
	}
}
