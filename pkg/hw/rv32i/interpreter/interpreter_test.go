package interpreter

import (
	"bytes"
	"testing"

	"github.com/Manu343726/rvbench/pkg/hw/rv32i"
	"github.com/Manu343726/rvbench/pkg/hw/rv32i/program"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, memorySize uint32, descriptors ...rv32i.Descriptor) *Interpreter {
	image, err := program.NewBuilder().Append(descriptors...).Build()
	require.NoError(t, err)

	interp := NewInterpreter(memorySize)
	require.NoError(t, interp.LoadImage(image, 0))
	return interp
}

func TestCPUState_X0IsHardwired(t *testing.T) {
	state := NewCPUState(16)
	state.SetRegister(rv32i.X0, 42)
	state.SetRegister(rv32i.X5, 42)

	assert.Zero(t, state.GetRegister(rv32i.X0))
	assert.Equal(t, uint32(42), state.GetRegister(rv32i.X5))
}

func TestInterpreter_LoadStore(t *testing.T) {
	interp := NewInterpreter(1024)

	t.Run("little endian", func(t *testing.T) {
		require.NoError(t, interp.Store(0x200, 4, 0x04030201))
		assert.Equal(t, []byte{1, 2, 3, 4}, interp.State().Memory[0x200:0x204])

		value, err := interp.Load(0x201, 2)
		require.NoError(t, err)
		assert.Equal(t, uint32(0x0302), value)
	})

	t.Run("out of bounds", func(t *testing.T) {
		_, err := interp.Load(1022, 4)
		assert.ErrorIs(t, err, ErrOutOfBounds)
		assert.ErrorIs(t, interp.Store(1024, 1, 0), ErrOutOfBounds)
	})

	t.Run("image too large", func(t *testing.T) {
		assert.ErrorIs(t, NewInterpreter(8).LoadImage(make([]rv32i.Word, 3), 0), ErrOutOfBounds)
	})
}

func TestInterpreter_Arithmetic(t *testing.T) {
	interp := load(t, 256,
		rv32i.Addi(rv32i.X1, rv32i.X0, -1),
		rv32i.Andi(rv32i.X2, rv32i.X1, 0x0F0),
		rv32i.Ori(rv32i.X3, rv32i.X2, 0x00F),
		rv32i.RegImm{Opcode: rv32i.OpcodeOpImm, Funct3: rv32i.Funct3Slti, Rd: rv32i.X4, Rs1: rv32i.X1, Imm: 0},
		rv32i.RegImm{Opcode: rv32i.OpcodeOpImm, Funct3: rv32i.Funct3Sltiu, Rd: rv32i.X5, Rs1: rv32i.X1, Imm: 0},
		rv32i.RegImm{Opcode: rv32i.OpcodeOpImm, Funct3: rv32i.Funct3Srli, Rd: rv32i.X6, Rs1: rv32i.X1, Imm: 28},
		rv32i.RegImm{Opcode: rv32i.OpcodeOpImm, Funct3: rv32i.Funct3Srli, Rd: rv32i.X7, Rs1: rv32i.X1, Imm: 0x400 | 28},
		rv32i.Lui(rv32i.X8, 0xABCDE),
		rv32i.UpperImm{Opcode: rv32i.OpcodeAuipc, Rd: rv32i.X9, Imm: 1},
		rv32i.Addi(rv32i.X0, rv32i.X0, 5),
		rv32i.Jal(rv32i.X0, 0),
	)

	require.NoError(t, interp.Run(100))

	s := interp.State()
	assert.Equal(t, uint32(0xFFFFFFFF), s.GetRegister(rv32i.X1))
	assert.Equal(t, uint32(0x0F0), s.GetRegister(rv32i.X2))
	assert.Equal(t, uint32(0x0FF), s.GetRegister(rv32i.X3))
	assert.Equal(t, uint32(1), s.GetRegister(rv32i.X4))
	assert.Equal(t, uint32(0), s.GetRegister(rv32i.X5))
	assert.Equal(t, uint32(0xF), s.GetRegister(rv32i.X6))
	assert.Equal(t, uint32(0xFFFFFFFF), s.GetRegister(rv32i.X7))
	assert.Equal(t, uint32(0xABCDE000), s.GetRegister(rv32i.X8))
	assert.Equal(t, uint32(0x1000+8*4), s.GetRegister(rv32i.X9))
	assert.Zero(t, s.GetRegister(rv32i.X0))

	assert.True(t, s.Halted)
	assert.Equal(t, uint64(11), interp.Cycles())
	assert.Equal(t, uint32(10*4), s.PC)
}

func TestInterpreter_LoadsSignExtend(t *testing.T) {
	interp := load(t, 256,
		rv32i.Addi(rv32i.X1, rv32i.X0, 0x80),
		rv32i.Store{Opcode: rv32i.OpcodeStore, Funct3: rv32i.Funct3Sb, Rs1: rv32i.X0, Rs2: rv32i.X1, Imm: 0x80},
		rv32i.RegImm{Opcode: rv32i.OpcodeLoad, Funct3: rv32i.Funct3Lb, Rd: rv32i.X2, Rs1: rv32i.X0, Imm: 0x80},
		rv32i.RegImm{Opcode: rv32i.OpcodeLoad, Funct3: rv32i.Funct3Lbu, Rd: rv32i.X3, Rs1: rv32i.X0, Imm: 0x80},
		rv32i.Lw(rv32i.X4, rv32i.X0, 0x80),
		rv32i.Jal(rv32i.X0, 0),
	)

	require.NoError(t, interp.Run(0))

	s := interp.State()
	assert.Equal(t, uint32(0xFFFFFF80), s.GetRegister(rv32i.X2))
	assert.Equal(t, uint32(0x80), s.GetRegister(rv32i.X3))
	assert.Equal(t, uint32(0x80), s.GetRegister(rv32i.X4))
}

func TestInterpreter_BranchesAndCalls(t *testing.T) {
	b := program.NewBuilder()
	b.Append(rv32i.Addi(rv32i.X1, rv32i.X0, 3))
	loop := b.Addr()
	b.Append(rv32i.Addi(rv32i.X2, rv32i.X2, 10))
	b.Append(rv32i.Addi(rv32i.X1, rv32i.X1, -1))
	b.Branch(rv32i.OpcodeBranch, rv32i.Funct3Bne, rv32i.X1, rv32i.X0, b.DeltaTo(loop))
	b.Jump(rv32i.OpcodeJal, rv32i.X5, 8)
	b.Jump(rv32i.OpcodeJal, rv32i.X0, 0)
	b.Append(rv32i.RegImm{Opcode: rv32i.OpcodeJalr, Funct3: rv32i.Funct3Jalr, Rd: rv32i.X0, Rs1: rv32i.X5, Imm: 0})

	image, err := b.Build()
	require.NoError(t, err)

	interp := NewInterpreter(256)
	require.NoError(t, interp.LoadImage(image, 0))
	require.NoError(t, interp.Run(100))

	s := interp.State()
	assert.Equal(t, uint32(30), s.GetRegister(rv32i.X2))
	assert.Equal(t, uint32(5*4), s.GetRegister(rv32i.X5), "jal links the return address")
	assert.Equal(t, uint32(5*4), s.PC)
}

func TestInterpreter_StepLimit(t *testing.T) {
	b := program.NewBuilder()
	b.Append(rv32i.Nop())
	b.Jump(rv32i.OpcodeJal, rv32i.X0, -4)

	image, err := b.Build()
	require.NoError(t, err)

	interp := NewInterpreter(64)
	require.NoError(t, interp.LoadImage(image, 0))
	assert.ErrorIs(t, interp.Run(50), ErrStepLimit)
	assert.Equal(t, uint64(50), interp.Cycles())
}

func TestInterpreter_Errors(t *testing.T) {
	t.Run("unknown opcode", func(t *testing.T) {
		interp := NewInterpreter(64)
		require.NoError(t, interp.LoadImage([]rv32i.Word{0x00000033}, 0))

		_, err := interp.Step()
		assert.ErrorIs(t, err, rv32i.ErrUnknownOpcode)
	})

	t.Run("illegal funct3", func(t *testing.T) {
		interp := load(t, 64, rv32i.Branch{Opcode: rv32i.OpcodeBranch, Funct3: 2, Offset: 8})

		_, err := interp.Step()
		assert.ErrorIs(t, err, ErrIllegal)
	})

	t.Run("misaligned jump", func(t *testing.T) {
		interp := load(t, 64, rv32i.Jal(rv32i.X1, 2))

		_, err := interp.Step()
		assert.ErrorIs(t, err, rv32i.ErrAlignment)
		assert.Zero(t, interp.State().GetRegister(rv32i.X1), "faulting jumps do not link")
		assert.Zero(t, interp.State().PC)
	})

	t.Run("misaligned jalr", func(t *testing.T) {
		interp := load(t, 64,
			rv32i.Addi(rv32i.X2, rv32i.X0, 6),
			rv32i.RegImm{Opcode: rv32i.OpcodeJalr, Funct3: rv32i.Funct3Jalr, Rd: rv32i.X1, Rs1: rv32i.X2, Imm: 0},
		)

		_, err := interp.Step()
		require.NoError(t, err)

		_, err = interp.Step()
		assert.ErrorIs(t, err, rv32i.ErrAlignment)
		assert.Zero(t, interp.State().GetRegister(rv32i.X1))
	})

	t.Run("halted", func(t *testing.T) {
		interp := load(t, 64, rv32i.Jal(rv32i.X0, 0))
		require.NoError(t, interp.Run(0))

		_, err := interp.Step()
		assert.ErrorIs(t, err, ErrHalted)

		interp.Reset()
		assert.False(t, interp.State().Halted)
		assert.Zero(t, interp.Cycles())
	})
}

func TestInterpreter_UARTAlphabet(t *testing.T) {
	cfg := program.DefaultUARTConfig()
	image, err := program.UARTAlphabet(cfg)
	require.NoError(t, err)

	var out bytes.Buffer
	led := &Register{}

	interp := NewInterpreter(0x2000)
	interp.MapDevice(cfg.UARTBase, 8, &UART{Out: &out, StatusOffset: uint32(cfg.StatusOffset)})
	interp.MapDevice(uint32(cfg.LEDAddress), 4, led)

	require.NoError(t, interp.LoadImage(image, 0))
	require.NoError(t, interp.Run(10_000))

	assert.Equal(t, "ABCDEFGHIJKLMNOPQRSTUVWXYZ", out.String())
	assert.Equal(t, uint32(cfg.LEDValue), led.Value)
	assert.Equal(t, 1, led.Writes)
	assert.Equal(t, program.AddressOf(len(image)-1), interp.State().PC)
}
