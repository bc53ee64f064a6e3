package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Model is a locally available Ollama model
type Model struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// SizeMB returns the model size in MiB
func (m Model) SizeMB() float64 {
	return float64(m.Size) / (1024 * 1024)
}

type pullRequest struct {
	Name   string `json:"name"`
	Stream bool   `json:"stream"`
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// Models lists models present on the Ollama daemon
func (c *Client) Models(ctx context.Context) ([]Model, error) {
	var out struct {
		Models []Model `json:"models"`
	}
	if err := c.get(ctx, Ollama, "/api/tags", &out); err != nil {
		return nil, fmt.Errorf("failed to get models: %w", err)
	}
	return out.Models, nil
}

// Pull downloads a model and waits for it to finish. It can take minutes, so
// only ctx bounds it, not the HTTP timeout.
func (c *Client) Pull(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("model name is empty")
	}
	err := c.doWith(ctx, c.transfers, http.MethodPost, Ollama, "/api/pull", pullRequest{Name: name}, nil)
	if err != nil {
		return fmt.Errorf("failed to pull model: %w", err)
	}
	return nil
}

// Generate runs a single non-streaming completion
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	var out struct {
		Response string `json:"response"`
	}
	err := c.post(ctx, Ollama, "/api/generate", generateRequest{Model: model, Prompt: prompt}, &out)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}
	return out.Response, nil
}
