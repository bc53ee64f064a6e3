package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/room4-2/voicepanel/messages"
	"github.com/room4-2/voicepanel/services"
)

// ErrNoTranscription is returned when STT finds no speech in a recording
var ErrNoTranscription = errors.New("Unable to recognize audio content")

// Responder produces the assistant's reply to a full prompt
type Responder interface {
	Respond(ctx context.Context, prompt string) (string, error)
}

// Processor turns a client request into a reply
type Processor interface {
	ProcessText(ctx context.Context, text string) (*messages.Reply, error)
	ProcessAudio(ctx context.Context, audioPath string) (*messages.Reply, error)
}

// OllamaResponder answers through the Ollama generate API
type OllamaResponder struct {
	client *services.Client
	model  string
}

// NewOllamaResponder creates a responder for the given model
func NewOllamaResponder(client *services.Client, model string) *OllamaResponder {
	return &OllamaResponder{client: client, model: model}
}

// Respond runs one completion
func (o *OllamaResponder) Respond(ctx context.Context, prompt string) (string, error) {
	return o.client.Generate(ctx, o.model, prompt)
}

// Pipeline chains device status, LLM, IoT control and TTS
type Pipeline struct {
	services  *services.Client
	responder Responder
}

// NewPipeline creates the request pipeline
func NewPipeline(client *services.Client, responder Responder) *Pipeline {
	return &Pipeline{services: client, responder: responder}
}

// ProcessText answers user text and synthesizes the reply
func (p *Pipeline) ProcessText(ctx context.Context, text string) (*messages.Reply, error) {
	prompt := BuildPrompt(text, p.deviceStatus(ctx))

	aiResponse, err := p.responder.Respond(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}

	commands := ExtractIoTCommands(text, aiResponse)
	iotResult := map[string]any{"status": "no_commands"}
	if len(commands) > 0 {
		result, err := p.services.Control(ctx, commands)
		if err != nil {
			log.Printf("⚠️ IoT control failed: %v", err)
			iotResult = map[string]any{"status": "error"}
		} else {
			iotResult = result
		}
	}

	synthesis, err := p.services.Synthesize(ctx, aiResponse, "")
	if err != nil {
		return nil, fmt.Errorf("tts: %w", err)
	}

	return &messages.Reply{
		InputText:   text,
		AIResponse:  aiResponse,
		AudioPath:   synthesis.AudioPath,
		Expression:  DetermineExpression(text, aiResponse),
		IoTCommands: commands,
		IoTResult:   iotResult,
	}, nil
}

// ProcessAudio transcribes a server-local recording, then answers it as text
func (p *Pipeline) ProcessAudio(ctx context.Context, audioPath string) (*messages.Reply, error) {
	text, err := p.services.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("stt: %w", err)
	}
	if text == "" {
		return nil, ErrNoTranscription
	}
	return p.ProcessText(ctx, text)
}

func (p *Pipeline) deviceStatus(ctx context.Context) string {
	states, err := p.services.Devices(ctx)
	if err != nil {
		log.Printf("⚠️ Error getting device status: %v", err)
		return "Unable to retrieve current device status due to an error."
	}
	return FormatDeviceStates(states)
}
