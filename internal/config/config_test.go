package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"ORACLE_PROVIDER", "ORACLE_ANALYSIS_TIMEOUT", "ORACLE_TEMPERATURE", "ORACLE_CAMERA", "GEMINI_MODEL"} {
		t.Setenv(k, "")
	}

	c, err := FromEnv()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if c.Provider != DefaultProvider {
		t.Errorf("Expected provider %s, got %s", DefaultProvider, c.Provider)
	}
	if c.Timeout != 60*time.Second {
		t.Errorf("Expected 60s timeout, got %s", c.Timeout)
	}
	if m := c.ResolveModel(); m != "gemini-2.5-flash" {
		t.Errorf("Expected default gemini model, got %s", m)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ORACLE_PROVIDER", "ollama")
	t.Setenv("ORACLE_ANALYSIS_TIMEOUT", "15s")
	t.Setenv("ORACLE_CAMERA", "2")
	t.Setenv("OLLAMA_URL", "")
	t.Setenv("OLLAMA_HOST", "http://gpu:11434")
	t.Setenv("OLLAMA_MODEL", "llava:34b")

	c, err := FromEnv()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if c.Timeout != 15*time.Second || c.CameraID != 2 {
		t.Errorf("Unexpected config: %+v", c)
	}
	if c.OllamaURL != "http://gpu:11434" {
		t.Errorf("Expected OLLAMA_HOST fallback, got %s", c.OllamaURL)
	}
	if m := c.ResolveModel(); m != "llava:34b" {
		t.Errorf("Expected llava:34b, got %s", m)
	}

	p, err := c.NewProvider()
	if err != nil || p.Name() != "ollama" {
		t.Errorf("Expected ollama provider, got %v %v", p, err)
	}
}

func TestFromEnvInvalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"ORACLE_ANALYSIS_TIMEOUT", "soon"},
		{"ORACLE_ANALYSIS_TIMEOUT", "-1s"},
		{"ORACLE_TEMPERATURE", "hot"},
		{"ORACLE_CAMERA", "front"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := FromEnv(); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestNewGatewayUnsupported(t *testing.T) {
	c := &Config{Provider: "clippy"}
	if _, err := c.NewGateway(); err == nil {
		t.Error("Expected error for unsupported provider")
	}
}
