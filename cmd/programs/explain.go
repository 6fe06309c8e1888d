package programs

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Manu343726/rvbench/pkg/hexfile"
	"github.com/Manu343726/rvbench/pkg/hw/rv32i"
	"github.com/Manu343726/rvbench/pkg/hw/rv32i/program"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	colorAddr    = color.New(color.FgCyan)
	colorUnknown = color.New(color.FgHiBlack)
)

var explainCmd = &cobra.Command{
	Use:   "explain <hex-file>",
	Short: "Show the encoding of every word of a hex image",
	Long: `Reads a hex image and prints, for every word, its address, its assembly text and
a diagram of its bit fields. Only the RegImm, Store, Branch, UpperImm and Jump
formats are understood; other words are printed as raw data.`,
	Args: cobra.ExactArgs(1),
	Run:  runExplain,
}

func init() {
	ProgramCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) {
	file, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	words, warnings, err := hexfile.Read(file)
	for _, warning := range warnings {
		slog.Warn(warning.String(), "file", args[0])
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %v: %v\n", args[0], err)
		os.Exit(2)
	}

	for i, w := range words {
		colorAddr.Printf("0x%04x:\n", program.AddressOf(i))

		d, err := rv32i.DecodeWord(w)
		if err != nil {
			colorUnknown.Printf("  %v  (data: %v)\n\n", w, err)
			continue
		}

		frame, err := rv32i.Explain(d, 2)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error explaining %v: %v\n", w, err)
			os.Exit(3)
		}

		fmt.Println(frame)
	}
}
