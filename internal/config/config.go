// Package config resolves runtime settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/lehigh-university-libraries/oracle/internal/gemini"
	"github.com/lehigh-university-libraries/oracle/internal/ollama"
	"github.com/lehigh-university-libraries/oracle/internal/openai"
	"github.com/lehigh-university-libraries/oracle/internal/oracle"
	"github.com/lehigh-university-libraries/oracle/internal/providers"
)

const (
	DefaultProvider    = "gemini"
	DefaultTemperature = 0.7
)

// Config holds everything needed to build a gateway and a camera
type Config struct {
	Provider    string
	Model       string
	Temperature float64
	Timeout     time.Duration
	CameraID    int

	GeminiAPIKey string
	OpenAIAPIKey string
	OpenAIURL    string
	OllamaURL    string
}

// FromEnv reads ORACLE_*, GEMINI_*, OPENAI_* and OLLAMA_* variables
func FromEnv() (*Config, error) {
	c := &Config{
		Provider:     getenv("ORACLE_PROVIDER", DefaultProvider),
		Temperature:  DefaultTemperature,
		Timeout:      oracle.DefaultTimeout,
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		OpenAIURL:    os.Getenv("OPENAI_URL"),
		OllamaURL:    os.Getenv("OLLAMA_URL"),
	}
	if c.OllamaURL == "" {
		c.OllamaURL = os.Getenv("OLLAMA_HOST")
	}

	if v := os.Getenv("ORACLE_ANALYSIS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid ORACLE_ANALYSIS_TIMEOUT %q", v)
		}
		c.Timeout = d
	}
	if v := os.Getenv("ORACLE_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ORACLE_TEMPERATURE %q: %w", v, err)
		}
		c.Temperature = f
	}
	if v := os.Getenv("ORACLE_CAMERA"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ORACLE_CAMERA %q: %w", v, err)
		}
		c.CameraID = id
	}

	return c, nil
}

// ResolveModel fills Model with the provider's default when unset
func (c *Config) ResolveModel() string {
	if c.Model != "" {
		return c.Model
	}
	switch c.Provider {
	case "gemini":
		return getenv("GEMINI_MODEL", "gemini-2.5-flash")
	case "openai":
		return getenv("OPENAI_MODEL", "gpt-4o")
	case "ollama":
		return getenv("OLLAMA_MODEL", "llava:13b")
	default:
		return ""
	}
}

// NewProvider builds the configured vision provider
func (c *Config) NewProvider() (providers.Provider, error) {
	switch c.Provider {
	case "gemini":
		return gemini.New(c.GeminiAPIKey), nil
	case "openai":
		return openai.New(c.OpenAIAPIKey, c.OpenAIURL), nil
	case "ollama":
		return ollama.New(c.OllamaURL), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", c.Provider)
	}
}

// NewGateway builds the analysis gateway for this configuration
func (c *Config) NewGateway() (*oracle.Gateway, error) {
	p, err := c.NewProvider()
	if err != nil {
		return nil, err
	}
	model := c.ResolveModel()
	slog.Debug("Gateway configured", "provider", p.Name(), "model", model, "timeout", c.Timeout)
	return oracle.New(p, oracle.Config{
		Model:       model,
		Temperature: c.Temperature,
		Timeout:     c.Timeout,
	}), nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
