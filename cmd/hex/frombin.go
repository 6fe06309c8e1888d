package hex

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Manu343726/rvbench/pkg/hexfile"
	"github.com/spf13/cobra"
)

var frombinCmd = &cobra.Command{
	Use:   "frombin <input.bin> [output.mem]",
	Short: "Convert a raw binary into a hex image",
	Long: `Reads a raw binary (for example the output of objcopy -O binary) as little-endian
32 bit words and writes one 8 digit hex word per line. A trailing partial word is
zero padded. If the output file is omitted the image is written to stdout.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		output := ""
		if len(args) > 1 {
			output = args[1]
		}

		if err := writeOutput(output, hexfile.BinaryToHex(data)); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing image: %v\n", err)
			os.Exit(2)
		}

		slog.Info("converted binary", "input", args[0], "bytes", len(data), "words", len(hexfile.BinaryToWords(data)))
	},
}

func init() {
	HexCmd.AddCommand(frombinCmd)
}
