package interpreter

import (
	"io"

	"github.com/Manu343726/rvbench/pkg/utils"
)

// Transmit-only UART: a store to the data register sends its low byte to Out,
// the status register always reads as ready
type UART struct {
	Out          io.Writer
	StatusOffset uint32
}

const uartReady = 1

func (u *UART) Load(offset uint32, size int) (uint32, error) {
	if offset == u.StatusOffset {
		return uartReady, nil
	}

	return 0, nil
}

func (u *UART) Store(offset uint32, size int, value uint32) error {
	if offset != 0 {
		return nil
	}

	_, err := u.Out.Write([]byte{byte(value)})
	return err
}

// Plain register that remembers the last written value
type Register struct {
	Value  uint32
	Writes int
}

func (r *Register) Load(offset uint32, size int) (uint32, error) {
	if offset != 0 {
		return 0, utils.MakeError(ErrOutOfBounds, "register offset %#x", offset)
	}

	return r.Value, nil
}

func (r *Register) Store(offset uint32, size int, value uint32) error {
	if offset != 0 {
		return utils.MakeError(ErrOutOfBounds, "register offset %#x", offset)
	}

	r.Value = value
	r.Writes++
	return nil
}
