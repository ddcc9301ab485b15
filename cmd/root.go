package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the spinelookup command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spinelookup",
		Short: "Identify books from OCR'd spine text",
		Long: `spinelookup takes the noisy OCR text read off book spines, corrects it
against per-language dictionaries and looks the result up across multiple
bibliographic sources to produce a ranked, validated identification.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env if present; absence is fine.
			_ = godotenv.Load()
		},
	}

	cmd.AddCommand(newIdentifyCmd())

	return cmd
}
