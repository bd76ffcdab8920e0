package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spherical/idcard-extractor/internal/llm"
)

// Version is set at build time with -ldflags "-X ...commands.Version=...".
var Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "idcard-extractor %s (prompt %s)\n", Version, llm.PromptVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
