// Package interpreter executes RV32I images built from the supported instruction
// formats, with memory mapped devices for the peripherals used by test programs.
package interpreter

import (
	"errors"
	"fmt"

	"github.com/Manu343726/rvbench/pkg/hw/rv32i"
	"github.com/Manu343726/rvbench/pkg/utils"
)

var (
	ErrOutOfBounds = errors.New("memory access out of bounds")
	ErrIllegal     = errors.New("illegal instruction")
	ErrHalted      = errors.New("cpu is halted")
	ErrStepLimit   = errors.New("step limit reached")
)

// Complete architectural state of the CPU
type CPUState struct {
	Registers [rv32i.TOTAL_REGISTERS]uint32
	PC        uint32
	Memory    []byte
	// Set when the program jumps to itself, the idiomatic "halt" of bare metal test programs
	Halted bool
}

func NewCPUState(memorySize uint32) *CPUState {
	return &CPUState{
		Memory: make([]byte, memorySize),
	}
}

func (s *CPUState) GetRegister(r rv32i.Register) uint32 {
	return s.Registers[r]
}

// Writes to x0 are discarded
func (s *CPUState) SetRegister(r rv32i.Register, value uint32) {
	if r != rv32i.X0 {
		s.Registers[r] = value
	}
}

// A memory mapped peripheral. Offsets are relative to the device base address
type Device interface {
	Load(offset uint32, size int) (uint32, error)
	Store(offset uint32, size int, value uint32) error
}

type mapping struct {
	base   uint32
	size   uint32
	device Device
}

// Executes RV32I machine code one instruction per cycle
type Interpreter struct {
	state   *CPUState
	devices []mapping
	cycles  uint64
}

func NewInterpreter(memorySize uint32) *Interpreter {
	return &Interpreter{
		state: NewCPUState(memorySize),
	}
}

func (i *Interpreter) State() *CPUState {
	return i.state
}

// Number of instructions retired since the last reset
func (i *Interpreter) Cycles() uint64 {
	return i.cycles
}

// Maps a device at [base, base+size). Device mappings take precedence over memory
func (i *Interpreter) MapDevice(base, size uint32, device Device) {
	i.devices = append(i.devices, mapping{base: base, size: size, device: device})
}

func (i *Interpreter) deviceAt(addr uint32) (*mapping, bool) {
	for idx := range i.devices {
		m := &i.devices[idx]
		if addr >= m.base && addr-m.base < m.size {
			return m, true
		}
	}

	return nil, false
}

// Loads an image at the given address and points the PC to it
func (i *Interpreter) LoadImage(words []rv32i.Word, addr uint32) error {
	if uint64(addr)+uint64(len(words)*rv32i.WordBytes) > uint64(len(i.state.Memory)) {
		return utils.MakeError(ErrOutOfBounds, "image of %d words does not fit at %#x", len(words), addr)
	}

	for idx, w := range words {
		i.writeMemory(addr+uint32(idx*rv32i.WordBytes), rv32i.WordBytes, uint32(w))
	}

	i.state.PC = addr
	i.state.Halted = false
	return nil
}

func (i *Interpreter) readMemory(addr uint32, size int) uint32 {
	var value uint32
	for b := 0; b < size; b++ {
		value |= uint32(i.state.Memory[addr+uint32(b)]) << (8 * b)
	}
	return value
}

func (i *Interpreter) writeMemory(addr uint32, size int, value uint32) {
	for b := 0; b < size; b++ {
		i.state.Memory[addr+uint32(b)] = byte(value >> (8 * b))
	}
}

func (i *Interpreter) inBounds(addr uint32, size int) bool {
	return uint64(addr)+uint64(size) <= uint64(len(i.state.Memory))
}

// Reads size bytes (1, 2 or 4), little endian
func (i *Interpreter) Load(addr uint32, size int) (uint32, error) {
	if m, ok := i.deviceAt(addr); ok {
		return m.device.Load(addr-m.base, size)
	}

	if !i.inBounds(addr, size) {
		return 0, utils.MakeError(ErrOutOfBounds, "load of %d bytes at %#08x", size, addr)
	}

	return i.readMemory(addr, size), nil
}

// Writes the low size bytes (1, 2 or 4) of value, little endian
func (i *Interpreter) Store(addr uint32, size int, value uint32) error {
	if m, ok := i.deviceAt(addr); ok {
		return m.device.Store(addr-m.base, size, value)
	}

	if !i.inBounds(addr, size) {
		return utils.MakeError(ErrOutOfBounds, "store of %d bytes at %#08x", size, addr)
	}

	i.writeMemory(addr, size, value)
	return nil
}

// Result of executing a single instruction
type StepResult struct {
	PC          uint32
	Word        rv32i.Word
	Instruction rv32i.Descriptor
}

// Fetches, decodes and executes one instruction
func (i *Interpreter) Step() (*StepResult, error) {
	if i.state.Halted {
		return nil, ErrHalted
	}

	pc := i.state.PC
	if !i.inBounds(pc, rv32i.WordBytes) {
		return nil, utils.MakeError(ErrOutOfBounds, "instruction fetch at %#08x", pc)
	}

	w := rv32i.Word(i.readMemory(pc, rv32i.WordBytes))

	d, err := rv32i.DecodeWord(w)
	if err != nil {
		return nil, fmt.Errorf("at %#08x: %w", pc, err)
	}

	next, err := i.execute(pc, d)
	if err != nil {
		return nil, fmt.Errorf("executing %v at %#08x: %w", rv32i.Disassemble(d), pc, err)
	}

	if next == pc {
		i.state.Halted = true
	}

	i.state.PC = next
	i.cycles++

	return &StepResult{PC: pc, Word: w, Instruction: d}, nil
}

// Runs until the CPU halts or maxSteps instructions retire (0 means no limit)
func (i *Interpreter) Run(maxSteps uint64) error {
	for steps := uint64(0); !i.state.Halted; steps++ {
		if maxSteps > 0 && steps >= maxSteps {
			return utils.MakeError(ErrStepLimit, "%d instructions executed, pc=%#08x", steps, i.state.PC)
		}

		if _, err := i.Step(); err != nil {
			return err
		}
	}

	return nil
}

// Clears registers, memory, cycle count and the halted flag. Device mappings are kept
func (i *Interpreter) Reset() {
	i.state = NewCPUState(uint32(len(i.state.Memory)))
	i.cycles = 0
}
