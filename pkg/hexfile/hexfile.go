// Package hexfile reads and writes program images as hex text: one 32 bit word per
// line, 8 lowercase hex digits, newline terminated, no header.
package hexfile

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Manu343726/rvbench/pkg/hw/rv32i"
	"github.com/Manu343726/rvbench/pkg/utils"
)

var (
	// A line is not a valid base 16 32 bit value
	ErrFormat = errors.New("invalid hex line")
	// No usable words were found in the input
	ErrEmptyInput = errors.New("empty input")
)

// Number of hex digits of each line
const LineDigits = 8

// Reports a line skipped while parsing
type Warning struct {
	// 1-based line number
	Line int
	// Line contents, trimmed
	Text string
	Err  error
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d is not valid hex: '%v'", w.Line, w.Text)
}

// Formats a word as a hex-text line, without the trailing newline
func FormatWord(w rv32i.Word) string {
	return fmt.Sprintf("%08x", uint32(w))
}

// Writes one line per word
func Write(out io.Writer, words []rv32i.Word) error {
	bw := bufio.NewWriter(out)

	for _, w := range words {
		if _, err := bw.WriteString(FormatWord(w) + "\n"); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Returns the hex-text representation of the words
func Serialize(words []rv32i.Word) string {
	var builder strings.Builder
	builder.Grow(len(words) * (LineDigits + 1))

	for _, w := range words {
		builder.WriteString(FormatWord(w))
		builder.WriteByte('\n')
	}

	return builder.String()
}

// Parses a single trimmed line. An optional 0x/0X prefix and underscores
// between digits are accepted, as in hand edited images
func ParseLine(line string) (rv32i.Word, error) {
	digits := line
	if !strings.HasPrefix(digits, "0x") && !strings.HasPrefix(digits, "0X") {
		if strings.HasPrefix(digits, "_") {
			return 0, utils.MakeError(ErrFormat, "'%v': leading underscore", line)
		}
		digits = "0x" + digits
	}

	// base 0 is what enables the prefix and underscore syntax
	value, err := strconv.ParseUint(digits, 0, 32)
	if err != nil {
		return 0, utils.MakeError(ErrFormat, "'%v': %w", line, err)
	}

	return rv32i.Word(value), nil
}

// Reads hex text. Blank lines are ignored; lines that are not valid hex are
// skipped and reported as warnings instead of failing the whole read.
// Returns ErrEmptyInput if no valid word was found
func Read(r io.Reader) ([]rv32i.Word, []Warning, error) {
	var words []rv32i.Word
	var warnings []Warning

	scanner := bufio.NewScanner(r)
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		w, err := ParseLine(line)
		if err != nil {
			warnings = append(warnings, Warning{Line: lineNumber, Text: line, Err: err})
			continue
		}

		words = append(words, w)
	}

	if err := scanner.Err(); err != nil {
		return words, warnings, err
	}

	if len(words) == 0 {
		return nil, warnings, utils.MakeError(ErrEmptyInput, "no valid hex lines found (%d skipped)", len(warnings))
	}

	return words, warnings, nil
}

// Like Read(), from a string
func Deserialize(text string) ([]rv32i.Word, []Warning, error) {
	return Read(strings.NewReader(text))
}

// Splits raw binary data into little endian 32 bit words, zero padding the
// last chunk up to 4 bytes
func BinaryToWords(data []byte) []rv32i.Word {
	words := make([]rv32i.Word, 0, (len(data)+rv32i.WordBytes-1)/rv32i.WordBytes)

	for i := 0; i < len(data); i += rv32i.WordBytes {
		var chunk [rv32i.WordBytes]byte
		copy(chunk[:], data[i:])
		words = append(words, rv32i.Word(binary.LittleEndian.Uint32(chunk[:])))
	}

	return words
}

// Converts a raw binary (e.g. an objcopy -O binary output) into hex text.
// The text renders each little endian binary word most significant digit first
func BinaryToHex(data []byte) string {
	return Serialize(BinaryToWords(data))
}
