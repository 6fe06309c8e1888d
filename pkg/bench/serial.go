package bench

import (
	"fmt"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// Serial link settings. Frames are always 8 data bits, no parity, 2 stop bits
type SerialConfig struct {
	Port     string
	BaudRate int
	// Upper bound of a single read. A read that times out returns zero bytes
	ReadTimeout time.Duration
}

const (
	DefaultBaudRate    = 115200
	DefaultReadTimeout = time.Second
)

// Opens the serial port. The returned port satisfies the zero-bytes-on-timeout
// read contract expected by Session
func OpenSerial(cfg SerialConfig) (serial.Port, error) {
	if cfg.Port == "" {
		return nil, fmt.Errorf("%w: no serial port given", ErrInvalidConfig)
	}

	if cfg.BaudRate <= 0 {
		cfg.BaudRate = DefaultBaudRate
	}

	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}

	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.TwoStopBits,
	}

	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("opening serial port %v: %w", cfg.Port, err)
	}

	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("setting read timeout on %v: %w", cfg.Port, err)
	}

	return port, nil
}

// Serial device found on the host
type PortInfo struct {
	Name         string
	Product      string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
}

func (p PortInfo) Description() string {
	if !p.IsUSB {
		return "n/a"
	}

	if p.Product != "" {
		return fmt.Sprintf("%v (USB %v:%v)", p.Product, p.VID, p.PID)
	}

	return fmt.Sprintf("USB %v:%v", p.VID, p.PID)
}

// Lists the serial ports available on the host
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerating serial ports: %w", err)
	}

	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		ports = append(ports, PortInfo{
			Name:         d.Name,
			Product:      d.Product,
			IsUSB:        d.IsUSB,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
		})
	}

	return ports, nil
}
