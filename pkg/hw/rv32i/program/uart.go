package program

import (
	"github.com/Manu343726/rvbench/pkg/hw/rv32i"
	"github.com/Manu343726/rvbench/pkg/utils"
)

// Parameters of the UART alphabet test program
type UARTConfig struct {
	// Base address of the memory mapped UART. Must be 4KiB aligned (loaded with a single lui)
	UARTBase uint32 `yaml:"uart_base"`
	// Offset of the status register from the UART base. Bit 0 set means ready to transmit
	StatusOffset int32 `yaml:"status_offset"`
	// First and last characters printed
	FirstChar byte `yaml:"first_char"`
	LastChar  byte `yaml:"last_char"`
	// Address of the LED register written when the program finishes
	LEDAddress int32 `yaml:"led_address"`
	LEDValue   int32 `yaml:"led_value"`
}

// Configuration matching the reference hardware: UART at 0x1000, LED at 0x64, prints A to Z
func DefaultUARTConfig() UARTConfig {
	return UARTConfig{
		UARTBase:     0x1000,
		StatusOffset: 4,
		FirstChar:    'A',
		LastChar:     'Z',
		LEDAddress:   0x64,
		LEDValue:     1,
	}
}

// Appends the UART alphabet test program to a builder: prints every character
// in [FirstChar, LastChar] polling the UART status register before each write,
// then turns the LED on and spins forever
func AppendUARTAlphabet(b *Builder, cfg UARTConfig) error {
	if cfg.UARTBase&0xFFF != 0 {
		return utils.MakeError(ErrInvalidProgram, "uart base %#x is not 4KiB aligned", cfg.UARTBase)
	}
	if cfg.LastChar < cfg.FirstChar {
		return utils.MakeError(ErrInvalidProgram, "last char %q comes before first char %q", cfg.LastChar, cfg.FirstChar)
	}

	const (
		base   = rv32i.X1
		status = rv32i.X2
		char   = rv32i.X4
		limit  = rv32i.X5
		led    = rv32i.X8
		on     = rv32i.X9
	)

	b.Append(
		rv32i.Lui(base, cfg.UARTBase>>12),
		rv32i.Addi(char, rv32i.X0, int32(cfg.FirstChar)),
		rv32i.Addi(limit, rv32i.X0, int32(cfg.LastChar)+1),
	)

	loop := b.Addr()
	b.Append(
		rv32i.Lw(status, base, cfg.StatusOffset),
		rv32i.Andi(status, status, 1),
	)
	b.Branch(rv32i.OpcodeBranch, rv32i.Funct3Beq, status, rv32i.X0, b.DeltaTo(loop))

	b.Append(
		rv32i.Sw(base, char, 0),
		rv32i.Addi(char, char, 1),
	)
	b.Branch(rv32i.OpcodeBranch, rv32i.Funct3Bne, char, limit, b.DeltaTo(loop))

	b.Append(
		rv32i.Addi(led, rv32i.X0, cfg.LEDAddress),
		rv32i.Addi(on, rv32i.X0, cfg.LEDValue),
		rv32i.Sw(led, on, 0),
	)
	b.Jump(rv32i.OpcodeJal, rv32i.X0, 0)

	return nil
}

// Builds the UART alphabet test program image
func UARTAlphabet(cfg UARTConfig) (Image, error) {
	b := NewBuilder()

	if err := AppendUARTAlphabet(b, cfg); err != nil {
		return nil, err
	}

	return b.Build()
}
