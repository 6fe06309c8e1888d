package hex

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Manu343726/rvbench/pkg/hexfile"
	"github.com/spf13/cobra"
)

var (
	scalaName   string
	scalaOutput string
)

var scalaCmd = &cobra.Command{
	Use:   "scala <file.mem>",
	Short: "Render a hex image as a Scala Seq literal",
	Long: `Reads a hex image and prints it as a Scala Seq of UInt literals, ready to be pasted
into the hardware project's program memory tables. An address comment is
emitted every 4 instructions.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		words, _, err := readImage(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := writeOutput(scalaOutput, hexfile.ScalaSeq(words, scalaName, filepath.Base(args[0]))+"\n"); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(2)
		}
	},
}

func init() {
	HexCmd.AddCommand(scalaCmd)
	scalaCmd.Flags().StringVarP(&scalaOutput, "output", "o", "", "Output file. If omitted, the literal is written to stdout")
	scalaCmd.Flags().StringVar(&scalaName, "name", hexfile.DefaultScalaName, "Name of the generated Scala value")
}
