package cmd

import (
	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/oracle/internal/logging"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var logLevel string
	var logFormat string

	cmd := &cobra.Command{
		Use:   "oracle",
		Short: "Palm and face readings from a photo, powered by a vision LLM",
		Long: `Oracle reads your palm or your face from a photo.

Take a picture with a camera or pick an image file, and a vision-capable LLM
(Gemini, OpenAI or Ollama) returns a summary, four scored sections, your main
traits and a piece of advice.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			logging.Init(logLevel, logFormat)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default $ORACLE_LOG_LEVEL or info)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json (default $ORACLE_LOG_FORMAT or text)")

	// Add subcommands
	cmd.AddCommand(newReadCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newBatchCmd())
	cmd.AddCommand(newReportCmd())

	return cmd
}
