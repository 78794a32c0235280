package cmd

import (
	"time"

	"github.com/lehigh-university-libraries/oracle/internal/config"
	"github.com/spf13/cobra"
)

// providerFlags are shared by every command that talks to a model
type providerFlags struct {
	provider string
	model    string
	timeout  time.Duration
}

func (f *providerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.provider, "provider", "", "LLM provider (gemini, openai, or ollama; default $ORACLE_PROVIDER or gemini)")
	cmd.Flags().StringVar(&f.model, "model", "", "Model name (defaults to provider's default)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Maximum wait for one reading (default $ORACLE_ANALYSIS_TIMEOUT or 60s)")
}

// load reads the environment and applies flag overrides
func (f *providerFlags) load() (*config.Config, error) {
	c, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	if f.provider != "" {
		c.Provider = f.provider
	}
	if f.model != "" {
		c.Model = f.model
	}
	if f.timeout > 0 {
		c.Timeout = f.timeout
	}
	return c, nil
}
