package hex

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var checkStrict bool

var checkCmd = &cobra.Command{
	Use:   "check <file.mem>",
	Short: "Validate a hex image",
	Long: `Reads a hex image, reports every line that is not valid hex and prints the number
of words read. With --strict, any invalid line makes the command fail.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		words, warnings, err := readImage(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%v: %d words (%d bytes)\n", args[0], len(words), len(words)*4)

		if len(warnings) > 0 {
			color.Yellow("%d invalid lines skipped", len(warnings))
			if checkStrict {
				os.Exit(2)
			}
		} else {
			color.Green("ok")
		}
	},
}

func init() {
	HexCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "Fail if the image has invalid lines")
}
