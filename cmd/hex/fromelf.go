package hex

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Manu343726/rvbench/pkg/hexfile"
	"github.com/spf13/cobra"
)

var fromelfCmd = &cobra.Command{
	Use:   "fromelf <program.elf> [output.mem]",
	Short: "Convert a RISC-V executable into a hex image",
	Long: `Extracts the loadable segments of a 32 bit RISC-V executable into a hex image,
with the same layout objcopy -O binary would produce. If the output file is
omitted the image is written to stdout.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		file, err := os.Open(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer file.Close()

		image, err := hexfile.ReadELF(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}

		if image.Base != 0 {
			slog.Warn("image is not linked at address 0", "base", fmt.Sprintf("%#x", image.Base))
		}

		output := ""
		if len(args) > 1 {
			output = args[1]
		}

		if err := writeOutput(output, hexfile.Serialize(image.Words)); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing image: %v\n", err)
			os.Exit(3)
		}

		slog.Info("converted executable", "input", args[0], "words", len(image.Words), "entry", fmt.Sprintf("%#x", image.Entry))
	},
}

func init() {
	HexCmd.AddCommand(fromelfCmd)
}
