// Package program assembles synthetic RV32I test programs into program images.
package program

import (
	"errors"
	"fmt"

	"github.com/Manu343726/rvbench/pkg/hw/rv32i"
	"github.com/Manu343726/rvbench/pkg/utils"
)

// Ordered sequence of instruction words. Word i resides at byte address 4*i
type Image []rv32i.Word

// Returns the byte address of the word at the given index
func AddressOf(index int) uint32 {
	return uint32(index * rv32i.WordBytes)
}

// Size of the image in bytes
func (img Image) Size() int {
	return len(img) * rv32i.WordBytes
}

// Raised when an instruction of the program cannot be encoded
var ErrInvalidProgram = errors.New("invalid program")

// One entry of the program: either a concrete descriptor or a relative branch/jump
type intent interface {
	descriptor() rv32i.Descriptor
}

type concrete struct {
	d rv32i.Descriptor
}

func (c concrete) descriptor() rv32i.Descriptor { return c.d }

// Branch to a byte delta relative to the branch own address
type branchTo struct {
	op       rv32i.Opcode
	funct3   rv32i.Funct3
	rs1, rs2 rv32i.Register
	delta    int32
}

func (b branchTo) descriptor() rv32i.Descriptor {
	return rv32i.Branch{Opcode: b.op, Funct3: b.funct3, Rs1: b.rs1, Rs2: b.rs2, Offset: b.delta}
}

// Jump to a byte delta relative to the jump own address
type jumpTo struct {
	op    rv32i.Opcode
	rd    rv32i.Register
	delta int32
}

func (j jumpTo) descriptor() rv32i.Descriptor {
	return rv32i.Jump{Opcode: j.op, Rd: j.rd, Offset: j.delta}
}

// Accumulates instructions in address order. Builders hold no shared state,
// so independent builders can be used concurrently
type Builder struct {
	intents []intent
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Byte address the next appended instruction will have
func (b *Builder) Addr() uint32 {
	return AddressOf(len(b.intents))
}

// Number of instructions appended so far
func (b *Builder) Len() int {
	return len(b.intents)
}

// Appends a concrete instruction
func (b *Builder) Append(descriptors ...rv32i.Descriptor) *Builder {
	for _, d := range descriptors {
		b.intents = append(b.intents, concrete{d: d})
	}

	return b
}

// Appends a conditional branch to delta bytes from the branch address. delta must be even
func (b *Builder) Branch(op rv32i.Opcode, funct3 rv32i.Funct3, rs1, rs2 rv32i.Register, delta int32) *Builder {
	b.intents = append(b.intents, branchTo{op: op, funct3: funct3, rs1: rs1, rs2: rs2, delta: delta})
	return b
}

// Appends an unconditional jump to delta bytes from the jump address. delta must be even
func (b *Builder) Jump(op rv32i.Opcode, rd rv32i.Register, delta int32) *Builder {
	b.intents = append(b.intents, jumpTo{op: op, rd: rd, delta: delta})
	return b
}

// Returns the byte delta from the next appended instruction back (or forward) to target
func (b *Builder) DeltaTo(target uint32) int32 {
	return int32(int64(target) - int64(b.Addr()))
}

// Encodes all instructions. Fails on the first instruction that cannot be encoded
func (b *Builder) Build() (Image, error) {
	image := make(Image, 0, len(b.intents))

	for i, in := range b.intents {
		d := in.descriptor()

		w, err := rv32i.Encode(d)
		if err != nil {
			return nil, utils.MakeError(ErrInvalidProgram, "instruction %d at address %#x: %w", i, AddressOf(i), err)
		}

		image = append(image, w)
	}

	return image, nil
}

// Returns the program as assembly listing lines, one per instruction
func (b *Builder) Listing() []string {
	return utils.Iota(len(b.intents), func(i int) string {
		return fmt.Sprintf("0x%04x: %v", AddressOf(i), rv32i.Disassemble(b.intents[i].descriptor()))
	})
}
