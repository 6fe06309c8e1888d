package hexfile

import (
	"debug/elf"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/Manu343726/rvbench/pkg/hw/rv32i"
	"github.com/Manu343726/rvbench/pkg/utils"
)

var ErrNotRV32 = errors.New("not a 32 bit little endian RISC-V ELF file")

// Flat memory image extracted from an executable
type ELFImage struct {
	// Load address of the first word
	Base  uint32
	Entry uint32
	Words []rv32i.Word
}

// Extracts the loadable segments of an executable as one flat image starting at
// the lowest physical address, the way objcopy -O binary does. Gaps between
// segments are zero filled and bss is not emitted
func ReadELF(r io.ReaderAt) (*ELFImage, error) {
	file, err := elf.NewFile(r)
	if err != nil {
		return nil, fmt.Errorf("parsing ELF file: %w", err)
	}
	defer file.Close()

	if file.Class != elf.ELFCLASS32 || file.Data != elf.ELFDATA2LSB || file.Machine != elf.EM_RISCV {
		return nil, utils.MakeError(ErrNotRV32, "got %v %v %v", file.Class, file.Data, file.Machine)
	}

	var segments []*elf.Prog
	for _, prog := range file.Progs {
		if prog.Type == elf.PT_LOAD && prog.Filesz > 0 {
			segments = append(segments, prog)
		}
	}

	if len(segments) == 0 {
		return nil, utils.MakeError(ErrEmptyInput, "no loadable segments")
	}

	sort.Slice(segments, func(i, j int) bool { return segments[i].Paddr < segments[j].Paddr })

	base := segments[0].Paddr
	last := segments[len(segments)-1]
	data := make([]byte, last.Paddr+last.Filesz-base)

	for _, prog := range segments {
		if _, err := io.ReadFull(prog.Open(), data[prog.Paddr-base:prog.Paddr-base+prog.Filesz]); err != nil {
			return nil, fmt.Errorf("reading segment at %#x: %w", prog.Paddr, err)
		}
	}

	return &ELFImage{
		Base:  uint32(base),
		Entry: uint32(file.Entry),
		Words: BinaryToWords(data),
	}, nil
}
