package programs

import (
	"github.com/spf13/cobra"
)

// ProgramCmd groups the test program commands
var ProgramCmd = &cobra.Command{
	Use:   "program",
	Short: "Generate and inspect RV32I test programs",
}
