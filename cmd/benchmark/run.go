package benchmark

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/Manu343726/rvbench/pkg/bench"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Wait for a benchmark run and report its duration",
	Long: `Opens the serial port connected to the target (8 data bits, no parity, 2 stop bits)
and waits for a benchmark run:

  - 0xFF starts a wall clock measurement, ended by 0xFE.
  - 0xC5 switches to the cycle counter report: text lines are echoed until
    "Goodbye!", and "Elapsed Cycles: <hex>" is converted to seconds using
    the target clock frequency.

All other bytes before the run starts are ignored. The command waits forever
unless --timeout is given or it is interrupted.

Examples:
  rvbench bench run --port /dev/ttyUSB0
  rvbench bench run --port COM3 --baud 115200 --clock-mhz 50 --timeout 1m`,
	Args: cobra.NoArgs,
	Run:  runBench,
}

func init() {
	BenchCmd.AddCommand(runCmd)

	flags := runCmd.Flags()
	flags.StringP("port", "p", "", "Serial port the target is connected to")
	flags.IntP("baud", "b", bench.DefaultBaudRate, "Serial baud rate")
	flags.Float64("clock-mhz", 100, "Target clock frequency in MHz, used to convert cycles to seconds")
	flags.Duration("read-timeout", bench.DefaultReadTimeout, "Upper bound of a single serial read")
	flags.Duration("timeout", 0, "Give up if the run has not finished after this long (0 waits forever)")

	for key, flag := range map[string]string{
		"bench.port":         "port",
		"bench.baud":         "baud",
		"bench.clock_mhz":    "clock-mhz",
		"bench.read_timeout": "read-timeout",
		"bench.timeout":      "timeout",
	} {
		cobra.CheckErr(viper.BindPFlag(key, flags.Lookup(flag)))
	}
}

func runBench(cmd *cobra.Command, args []string) {
	serialCfg := bench.SerialConfig{
		Port:        viper.GetString("bench.port"),
		BaudRate:    viper.GetInt("bench.baud"),
		ReadTimeout: viper.GetDuration("bench.read_timeout"),
	}

	port, err := bench.OpenSerial(serialCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	slog.Info("waiting for benchmark", "port", serialCfg.Port, "baud", serialCfg.BaudRate)

	result, err := measure(ctx, port, bench.Config{
		ClockHz: viper.GetFloat64("bench.clock_mhz") * 1e6,
		OnLine: func(line string) {
			colorTarget.Println(line)
		},
	}, viper.GetDuration("bench.timeout"))
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Printf("mode=%q seconds=%.9f cycles=%d\n", result.Mode.String(), result.Seconds(), result.Cycles)
		return
	}

	printResult(result)
}

// Runs one session over port and closes it, whatever the outcome
func measure(ctx context.Context, port io.ReadCloser, cfg bench.Config, timeout time.Duration) (*bench.Result, error) {
	result, err := bench.RunWithTimeout(ctx, port, cfg, timeout)

	if closeErr := port.Close(); closeErr != nil {
		slog.Warn("closing serial port", "error", closeErr)
	}

	return result, err
}

func printResult(result *bench.Result) {
	colorSuccess.Println("Benchmark finished")

	field := func(label string, format string, args ...any) {
		colorLabel.Printf("  %-22v", label)
		colorValue.Printf(format+"\n", args...)
	}

	field("mode", "%v", result.Mode)

	if result.Mode == bench.ModeCycleCounter {
		if !result.CyclesReported {
			colorWarning.Println("  the target did not report an elapsed cycle count")
			return
		}

		field("clock", "%v MHz", result.ClockHz/1e6)
		field("elapsed cycles", "%d (0x%X)", result.Cycles, result.Cycles)

		if result.StartCycles != nil && result.EndCycles != nil {
			field("cycle counter", "0x%X .. 0x%X", *result.StartCycles, *result.EndCycles)
		}
		if result.PrimesFound != nil {
			field("primes found", "%d", *result.PrimesFound)
		}
	}

	field("elapsed", "%.9f seconds", result.Seconds())
}
