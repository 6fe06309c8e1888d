package hex

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Manu343726/rvbench/pkg/hexfile"
	"github.com/Manu343726/rvbench/pkg/hw/rv32i"
	"github.com/spf13/cobra"
)

// HexCmd groups the hex image conversion commands
var HexCmd = &cobra.Command{
	Use:   "hex",
	Short: "Convert and check hex memory images",
}

// Reads a hex image, logging every skipped line
func readImage(path string) ([]rv32i.Word, []hexfile.Warning, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	words, warnings, err := hexfile.Read(file)
	for _, warning := range warnings {
		slog.Warn(warning.String(), "file", path)
	}

	return words, warnings, err
}

func writeOutput(path string, text string) error {
	if path == "" || path == "-" {
		_, err := fmt.Fprint(os.Stdout, text)
		return err
	}

	return os.WriteFile(path, []byte(text), 0o644)
}
