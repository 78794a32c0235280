// Package providers defines the transport contract between the oracle and
// an external vision model.
package providers

import (
	"context"
	"errors"
)

// ErrNoAPIKey is returned when a provider needs a credential that is not configured.
var ErrNoAPIKey = errors.New("providers: API key required")

// Request is one vision request: a system instruction, an image, and the
// JSON shape the model must answer with.
type Request struct {
	Model        string
	Temperature  float64
	SystemPrompt string
	Prompt       string
	MIMEType     string
	Image        []byte
	Schema       *Schema
}

// Schema is the subset of JSON Schema the providers understand
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
}

// Provider sends a Request and returns the model's raw text answer
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}
