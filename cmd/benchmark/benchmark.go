package benchmark

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	colorLabel   = color.New(color.FgCyan)
	colorValue   = color.New(color.FgWhite, color.Bold)
	colorTarget  = color.New(color.FgHiBlack)
	colorWarning = color.New(color.FgYellow)
	colorSuccess = color.New(color.FgGreen, color.Bold)
)

// BenchCmd groups the hardware benchmark commands
var BenchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Time benchmark runs on RISC-V hardware over a serial link",
}
