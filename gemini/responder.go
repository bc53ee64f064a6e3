package gemini

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/room4-2/voicepanel/functions"

	"google.golang.org/genai"
)

// maxToolRounds bounds function-call round trips per prompt
const maxToolRounds = 3

// Responder answers coordinator prompts with the Gemini API
type Responder struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig

	mu     sync.RWMutex
	closed bool
}

// NewResponder creates a Gemini client for text replies
func NewResponder(ctx context.Context, apiKey, model string) (*Responder, error) {
	return newResponder(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}, model)
}

func newResponder(ctx context.Context, cc *genai.ClientConfig, model string) (*Responder, error) {
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Responder{
		client: client,
		model:  model,
		config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{
					FunctionDeclarations: []*genai.FunctionDeclaration{
						functions.ListDeviceActionsFunctionDeclaration(),
					},
				},
			},
		},
	}, nil
}

// Respond sends the prompt and resolves tool calls until the model answers
// with text. After maxToolRounds tool rounds the model is asked once more
// without tools, so every tool result reaches it.
func (r *Responder) Respond(ctx context.Context, prompt string) (string, error) {
	r.mu.RLock()
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		return "", fmt.Errorf("responder is closed")
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	for round := 0; ; round++ {
		config := r.config
		if round == maxToolRounds {
			config = &genai.GenerateContentConfig{}
		}

		resp, err := r.client.Models.GenerateContent(ctx, r.model, contents, config)
		if err != nil {
			return "", fmt.Errorf("failed to generate content: %w", err)
		}

		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			text := resp.Text()
			log.Printf("📥 Received from Gemini: %d chars", len(text))
			return text, nil
		}
		if round == maxToolRounds {
			return "", fmt.Errorf("model did not answer after %d tool rounds", maxToolRounds)
		}

		log.Printf("📥 Received from Gemini: %d function call(s)", len(calls))
		if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
			contents = append(contents, resp.Candidates[0].Content)
		}
		contents = append(contents, genai.NewContentFromParts(handleToolCalls(calls), genai.RoleUser))
	}
}

// handleToolCalls runs the requested functions and builds the response parts
func handleToolCalls(calls []*genai.FunctionCall) []*genai.Part {
	parts := make([]*genai.Part, 0, len(calls))
	for _, fc := range calls {
		log.Printf("🔧 Function call: %s (id: %s)", fc.Name, fc.ID)

		var response map[string]any
		switch fc.Name {
		case functions.ListDeviceActionsName:
			response = map[string]any{"output": functions.ListDeviceActions()}
		default:
			response = map[string]any{"error": fmt.Sprintf("Unknown function: %s", fc.Name)}
			log.Printf("⚠️ Unknown function called: %s", fc.Name)
		}

		parts = append(parts, genai.NewPartFromFunctionResponse(fc.Name, response))
	}
	return parts
}

// Close marks the responder unusable
func (r *Responder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}
