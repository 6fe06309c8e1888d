package benchmark

import (
	"fmt"
	"os"

	"github.com/Manu343726/rvbench/pkg/bench"
	"github.com/spf13/cobra"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List the serial ports available on this host",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ports, err := bench.ListPorts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if len(ports) == 0 {
			colorWarning.Println("No serial ports found")
			return
		}

		for _, port := range ports {
			colorLabel.Printf("%-20v", port.Name)
			fmt.Println(port.Description())
		}
	},
}

func init() {
	BenchCmd.AddCommand(portsCmd)
}
