// Package services is the HTTP client for the coordinator, STT, TTS, IoT and
// Ollama backends.
package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/room4-2/voicepanel/config"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
)

// Service names a backend
type Service string

const (
	Coordinator Service = "coordinator"
	STT         Service = "stt"
	TTS         Service = "tts"
	IoT         Service = "iot"
	Ollama      Service = "ollama"
)

// AllServices lists backends in status-check order
var AllServices = []Service{Coordinator, STT, TTS, IoT, Ollama}

var displayNames = map[Service]string{
	Coordinator: "Coordinator",
	STT:         "Speech Recognition",
	TTS:         "Text-to-Speech",
	IoT:         "IoT Control",
	Ollama:      "Ollama",
}

// DisplayName returns the human-readable service name
func (s Service) DisplayName() string {
	if name, ok := displayNames[s]; ok {
		return name
	}
	return string(s)
}

// APIError is a non-2xx answer from a backend
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

// Client calls the backend services over HTTP
type Client struct {
	http *resty.Client
	// transfers has no client timeout; long downloads are bounded by ctx only
	transfers *resty.Client
	origins   map[Service]string
}

func newRestyClient() *resty.Client {
	return resty.New().
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)
}

// NewClient creates a client for the configured origins
func NewClient(cfg *config.Config) *Client {
	return &Client{
		http:      newRestyClient().SetTimeout(cfg.HTTPTimeout),
		transfers: newRestyClient(),
		origins: map[Service]string{
			Coordinator: cfg.CoordinatorURL,
			STT:         cfg.STTURL,
			TTS:         cfg.TTSURL,
			IoT:         cfg.IoTURL,
			Ollama:      cfg.OllamaURL,
		},
	}
}

// Origin returns the base address of a service
func (c *Client) Origin(s Service) string {
	return c.origins[s]
}

func (c *Client) do(ctx context.Context, method string, s Service, path string, body, result any) error {
	return c.doWith(ctx, c.http, method, s, path, body, result)
}

func (c *Client) doWith(ctx context.Context, hc *resty.Client, method string, s Service, path string, body, result any) error {
	req := hc.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	url := c.origins[s] + path
	resp, err := req.Execute(method, url)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	if resp.IsError() {
		return newAPIError(resp.StatusCode(), resp.Body())
	}
	return nil
}

func (c *Client) get(ctx context.Context, s Service, path string, result any) error {
	return c.do(ctx, http.MethodGet, s, path, nil, result)
}

func (c *Client) post(ctx context.Context, s Service, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, s, path, body, result)
}

// newAPIError extracts {"error": ...} or FastAPI's {"detail": ...} from a failed response
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var payload map[string]any
	if err := sonic.Unmarshal(body, &payload); err != nil {
		apiErr.Message = string(body)
		return apiErr
	}
	for _, key := range []string{"error", "detail"} {
		if v, ok := payload[key]; ok {
			apiErr.Message = fmt.Sprint(v)
			return apiErr
		}
	}
	apiErr.Message = "Unknown error"
	return apiErr
}
