package tools

import (
	"github.com/spf13/cobra"
)

// ToolsCmd groups miscellaneous helper commands
var ToolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "rvbench miscellaneous tools",
}
