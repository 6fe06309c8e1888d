package programs

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Manu343726/rvbench/pkg/hexfile"
	"github.com/Manu343726/rvbench/pkg/hw/rv32i"
	"github.com/Manu343726/rvbench/pkg/hw/rv32i/interpreter"
	"github.com/Manu343726/rvbench/pkg/hw/rv32i/program"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	runMemorySize uint32
	runMaxSteps   uint64
	runClockMHz   float64
	runTrace      bool
)

var runCmd = &cobra.Command{
	Use:   "run <hex-file>",
	Short: "Execute a hex image on the RV32I interpreter",
	Long: `Loads a hex image at address 0 and executes it until it jumps to itself.

The interpreter maps the peripherals of the reference hardware:

  - UART at 0x1000: stores to offset 0 are written to stdout, offset 4 (status) reads as ready
  - LED register at 0x64

Example:
  rvbench program gen -o alphabet.mem
  rvbench program run alphabet.mem`,
	Args: cobra.ExactArgs(1),
	Run:  runRun,
}

func init() {
	ProgramCmd.AddCommand(runCmd)
	runCmd.Flags().Uint32VarP(&runMemorySize, "memory", "m", 0x2000, "Memory size in bytes")
	runCmd.Flags().Uint64VarP(&runMaxSteps, "max-steps", "n", 1_000_000, "Maximum number of instructions to execute (0 = unlimited)")
	runCmd.Flags().Float64Var(&runClockMHz, "clock-mhz", 100, "Clock frequency used to report the simulated run time")
	runCmd.Flags().BoolVarP(&runTrace, "trace", "t", false, "Trace each executed instruction to stderr")
}

func runRun(cmd *cobra.Command, args []string) {
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

	cfg := program.DefaultUARTConfig()
	led := &interpreter.Register{}

	interp := interpreter.NewInterpreter(runMemorySize)
	interp.MapDevice(cfg.UARTBase, 8, &interpreter.UART{Out: os.Stdout, StatusOffset: uint32(cfg.StatusOffset)})
	interp.MapDevice(uint32(cfg.LEDAddress), 4, led)

	if err := interp.LoadImage(words, 0); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(3)
	}

	for steps := uint64(0); !interp.State().Halted; steps++ {
		if runMaxSteps > 0 && steps >= runMaxSteps {
			fmt.Fprintln(os.Stderr)
			color.Yellow("Stopped after %d instructions (pc=%#08x)", steps, interp.State().PC)
			os.Exit(4)
		}

		step, err := interp.Step()
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
			os.Exit(5)
		}

		if runTrace {
			colorAddr.Fprintf(os.Stderr, "0x%04x: ", step.PC)
			fmt.Fprintf(os.Stderr, "%v  %v\n", step.Word, rv32i.Disassemble(step.Instruction))
		}
	}

	fmt.Println()
	slog.Info("program halted",
		"pc", fmt.Sprintf("%#x", interp.State().PC),
		"cycles", interp.Cycles(),
		"seconds", float64(interp.Cycles())/(runClockMHz*1e6),
		"led", led.Value,
	)
}
