// Package bench implements the host side of the hardware benchmark timing protocol.
//
// The target signals the start and end of a benchmark run over a byte stream
// (usually a UART). Two variants exist:
//
//   - wall clock: the target sends 0xFF when the run starts and 0xFE when it
//     ends, the host measures the time between both bytes.
//   - cycle counter: the target sends 0xC5 followed by newline terminated text
//     lines, including "Elapsed Cycles: <hex>" and a final "Goodbye!" line. The
//     host converts the cycle count to seconds using the target clock frequency.
package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Manu343726/rvbench/pkg/utils"
)

// Sentinel bytes of the protocol
const (
	StartByte       byte = 0xFF
	EndByte         byte = 0xFE
	CycleReportByte byte = 0xC5
)

// Text markers of the cycle counter report
const (
	MarkerElapsedCycles = "Elapsed Cycles:"
	MarkerStartCycles   = "Start Cycles:"
	MarkerEndCycles     = "End Cycles:"
	MarkerPrimesFound   = "Number of Found Primes:"
	MarkerGoodbye       = "Goodbye!"
)

var (
	// The caller imposed deadline expired before the run finished
	ErrProtocolTimeout = errors.New("benchmark protocol timeout")
	// The byte stream was closed before the run finished
	ErrStreamClosed = errors.New("benchmark stream closed")
	// The session configuration is not usable
	ErrInvalidConfig = errors.New("invalid benchmark configuration")
)

type State int

const (
	// Waiting for a start sentinel, discarding everything else
	StateIdle State = iota
	// A sentinel was seen and the measurement mode decided
	StateArmed
	// Measuring: waiting for the end sentinel or the terminal line
	StateRunning
	// Finished, the result is available
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	}

	return fmt.Sprintf("State(%d)", int(s))
}

type Mode int

const (
	ModeWallClock Mode = iota
	ModeCycleCounter
)

func (m Mode) String() string {
	switch m {
	case ModeWallClock:
		return "wall clock"
	case ModeCycleCounter:
		return "cycle counter"
	}

	return fmt.Sprintf("Mode(%d)", int(m))
}

// Session parameters
type Config struct {
	// Target clock frequency, used to convert reported cycles to seconds
	ClockHz float64
	// Clock used to timestamp sentinels. Defaults to time.Now
	Now func() time.Time
	// Called with every text line received in cycle counter mode
	OnLine func(line string)
	// Defaults to slog.Default()
	Logger *slog.Logger
}

func (c *Config) Validate() error {
	if c.ClockHz <= 0 {
		return utils.MakeError(ErrInvalidConfig, "clock frequency must be positive, got %v Hz", c.ClockHz)
	}

	return nil
}

// Outcome of a finished session
type Result struct {
	Mode    Mode
	ClockHz float64

	// Arrival instants of the start and end sentinels (wall clock mode only)
	Start time.Time
	End   time.Time

	// Measured (wall clock) or computed from cycles (cycle counter mode)
	Elapsed time.Duration

	// Cycle counter mode only
	Cycles         uint64
	CyclesReported bool
	StartCycles    *uint64
	EndCycles      *uint64
	PrimesFound    *uint64
}

// Elapsed time in seconds. In cycle counter mode this is cycles / ClockHz
// computed without going through time.Duration
func (r *Result) Seconds() float64 {
	if r.Mode == ModeCycleCounter {
		return float64(r.Cycles) / r.ClockHz
	}

	return r.Elapsed.Seconds()
}

// Runs the protocol over one byte stream. A session owns its stream and is not
// safe for concurrent use; run independent sessions for independent streams
type Session struct {
	port   io.Reader
	cfg    Config
	logger *slog.Logger
	state  State
	buf    [1]byte
}

// Creates a session reading from port. Reads returning zero bytes and a nil
// error are treated as read timeouts and retried
func NewSession(port io.Reader, cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Session{
		port:   port,
		cfg:    cfg,
		logger: logger.With("component", "bench"),
		state:  StateIdle,
	}, nil
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) transition(to State, args ...any) {
	s.logger.Debug("benchmark state transition", append([]any{"from", s.state, "to", to}, args...)...)
	s.state = to
}

// Blocks until one byte is read. The protocol has no timeout of its own: ctx
// is the caller's bound, checked between reads
func (s *Session) readByte(ctx context.Context) (byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, utils.MakeError(ErrProtocolTimeout, "in state %v: %w", s.state, err)
		}

		n, err := s.port.Read(s.buf[:])
		if n == 1 {
			return s.buf[0], nil
		}

		if errors.Is(err, io.EOF) {
			return 0, utils.MakeError(ErrStreamClosed, "in state %v", s.state)
		} else if err != nil {
			return 0, err
		}
	}
}

// Longest report line kept. Extra bytes up to the newline are dropped
const MaxLineLength = 1024

// Reads a newline terminated line, without the line terminator
func (s *Session) readLine(ctx context.Context) (string, error) {
	var line []byte
	dropped := 0

	for {
		b, err := s.readByte(ctx)
		if err != nil {
			return "", err
		}

		if b == '\n' {
			break
		}

		if len(line) >= MaxLineLength {
			dropped++
			continue
		}

		line = append(line, b)
	}

	if dropped > 0 {
		s.logger.Warn("report line too long, truncated", "max", MaxLineLength, "dropped", dropped)
	}

	return strings.TrimSpace(strings.ToValidUTF8(string(line), "\uFFFD")), nil
}

// Runs the session until the run finishes, the stream closes, or ctx is done
func (s *Session) Run(ctx context.Context) (*Result, error) {
	if s.state != StateIdle {
		return nil, fmt.Errorf("session already used (state %v)", s.state)
	}

	result := &Result{ClockHz: s.cfg.ClockHz}

	for s.state == StateIdle {
		b, err := s.readByte(ctx)
		if err != nil {
			return nil, err
		}

		switch b {
		case StartByte:
			result.Mode = ModeWallClock
			result.Start = s.cfg.Now()
			s.transition(StateArmed, "mode", result.Mode)
		case CycleReportByte:
			result.Mode = ModeCycleCounter
			s.transition(StateArmed, "mode", result.Mode)
		}
	}

	s.transition(StateRunning)
	s.logger.Info("benchmark started", "mode", result.Mode)

	var err error
	if result.Mode == ModeWallClock {
		err = s.runWallClock(ctx, result)
	} else {
		err = s.runCycleCounter(ctx, result)
	}

	if err != nil {
		return nil, err
	}

	s.transition(StateDone)
	s.logger.Info("benchmark finished", "mode", result.Mode, "elapsed", result.Elapsed, "seconds", result.Seconds())

	return result, nil
}

func (s *Session) runWallClock(ctx context.Context, result *Result) error {
	for {
		b, err := s.readByte(ctx)
		if err != nil {
			return err
		}

		if b == EndByte {
			result.End = s.cfg.Now()
			result.Elapsed = result.End.Sub(result.Start)
			return nil
		}
	}
}

// Parses the trailing hex token of a report line
func parseHexToken(line string) (uint64, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, fmt.Errorf("no value in line '%v'", line)
	}

	return strconv.ParseUint(fields[len(fields)-1], 16, 64)
}

func (s *Session) parseOptional(line string, into **uint64) {
	value, err := parseHexToken(line)
	if err != nil {
		s.logger.Warn("ignoring malformed report line", "line", line, "error", err)
		return
	}

	*into = &value
}

func (s *Session) runCycleCounter(ctx context.Context, result *Result) error {
	for {
		line, err := s.readLine(ctx)
		if err != nil {
			return err
		}

		if s.cfg.OnLine != nil {
			s.cfg.OnLine(line)
		}

		switch {
		case strings.HasPrefix(line, MarkerElapsedCycles):
			cycles, err := parseHexToken(line)
			if err != nil {
				s.logger.Warn("ignoring malformed cycle count", "line", line, "error", err)
				continue
			}

			result.Cycles = cycles
			result.CyclesReported = true
			result.Elapsed = time.Duration(float64(cycles) * float64(time.Second) / s.cfg.ClockHz)
		case strings.HasPrefix(line, MarkerStartCycles):
			s.parseOptional(line, &result.StartCycles)
		case strings.HasPrefix(line, MarkerEndCycles):
			s.parseOptional(line, &result.EndCycles)
		case strings.HasPrefix(line, MarkerPrimesFound):
			s.parseOptional(line, &result.PrimesFound)
		case strings.HasPrefix(line, MarkerGoodbye):
			if !result.CyclesReported {
				s.logger.Warn("cycle report finished without an elapsed cycle count")
			}
			return nil
		}
	}
}

// Runs a session bounded by timeout. A zero timeout means no bound
func RunWithTimeout(ctx context.Context, port io.Reader, cfg Config, timeout time.Duration) (*Result, error) {
	session, err := NewSession(port, cfg)
	if err != nil {
		return nil, err
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	return session.Run(ctx)
}
