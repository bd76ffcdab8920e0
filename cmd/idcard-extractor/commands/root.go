package commands

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spherical/idcard-extractor/cmd/idcard-extractor/ui"
)

var (
	cfgFile string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "idcard-extractor",
	Short: "Extract identity card fields from a PDF scan",
	Long: `idcard-extractor renders the first page of a scanned identity document,
asks a vision model to read it and prints the fields it found as JSON.

Model credentials are read from the environment (or a .env file) and the
optional YAML config file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load() // Ignore error if .env doesn't exist
		if cfgFile == "" {
			cfgFile = os.Getenv("CONFIG_PATH")
		}
		ui.InitUI(noColor, verbose)
		ui.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
