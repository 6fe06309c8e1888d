package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Manu343726/rvbench/cmd/benchmark"
	"github.com/Manu343726/rvbench/cmd/hex"
	"github.com/Manu343726/rvbench/cmd/programs"
	"github.com/Manu343726/rvbench/cmd/tools"
	"github.com/Manu343726/rvbench/pkg/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string
var logCloser io.Closer

// rootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "rvbench",
	Short: "RISC-V test program synthesis and hardware benchmark timing",
	Long: `rvbench generates RV32I test programs as hex images, converts compiled binaries
into the same hex format, and times benchmark runs of RISC-V hardware over a serial link.

Settings can be given as flags, in a YAML config file ($HOME/.rvbench.yaml by default)
or as RVBENCH_* environment variables (e.g. RVBENCH_BENCH_PORT).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger, closer, err := logging.New(os.Stderr, logging.Config{
			Level: viper.GetString("log.level"),
			File:  viper.GetString("log.file"),
		})
		if err != nil {
			return err
		}

		slog.SetDefault(logger)
		logCloser = closer
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := RootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.AddCommand(tools.ToolsCmd, programs.ProgramCmd, hex.HexCmd, benchmark.BenchCmd)
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.rvbench.yaml)")
	RootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	RootCmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this file")

	cobra.CheckErr(viper.BindPFlag("log.level", RootCmd.PersistentFlags().Lookup("log-level")))
	cobra.CheckErr(viper.BindPFlag("log.file", RootCmd.PersistentFlags().Lookup("log-file")))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".rvbench" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".rvbench")
	}

	viper.SetEnvPrefix("rvbench")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
