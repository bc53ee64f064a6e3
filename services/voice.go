package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/room4-2/voicepanel/messages"
)

const defaultAudioFormat = "mp3"

// Synthesis is the TTS answer for a synthesized utterance
type Synthesis struct {
	AudioPath string `json:"audio_path"`
	Format    string `json:"format"`
	Voice     string `json:"voice"`
	URL       string `json:"-"` // playable locator on the TTS origin
}

// Voice is one entry of the TTS voice list
type Voice struct {
	Name      string `json:"Name"`
	ShortName string `json:"ShortName"`
	Gender    string `json:"Gender"`
	Locale    string `json:"Locale"`
}

type synthesizeRequest struct {
	Text   string `json:"text"`
	Voice  string `json:"voice,omitempty"`
	Format string `json:"format"`
}

type transcribeRequest struct {
	AudioPath string `json:"audio_path"`
}

type textRequest struct {
	Text string `json:"text"`
}

// Synthesize turns text into speech; an empty voice uses the service default
func (c *Client) Synthesize(ctx context.Context, text, voice string) (*Synthesis, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("text to synthesize is empty")
	}

	var out Synthesis
	err := c.post(ctx, TTS, "/synthesize", synthesizeRequest{
		Text:   text,
		Voice:  voice,
		Format: defaultAudioFormat,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}

	if out.AudioPath != "" {
		out.URL = messages.AudioURL(c.origins[TTS], out.AudioPath)
	}
	return &out, nil
}

// Voices lists the voices offered by the TTS service
func (c *Client) Voices(ctx context.Context) ([]Voice, error) {
	var out struct {
		Voices []Voice `json:"voices"`
	}
	if err := c.get(ctx, TTS, "/voices", &out); err != nil {
		return nil, fmt.Errorf("failed to get voice list: %w", err)
	}
	return out.Voices, nil
}

// EnglishVoices keeps voices whose name starts with "en-"
func EnglishVoices(voices []Voice) []Voice {
	var english []Voice
	for _, v := range voices {
		if strings.HasPrefix(v.Name, "en-") {
			english = append(english, v)
		}
	}
	return english
}

// Transcribe asks the STT service for the text of a server-local recording
func (c *Client) Transcribe(ctx context.Context, audioPath string) (string, error) {
	var out struct {
		Text string `json:"text"`
	}
	if err := c.post(ctx, STT, "/transcribe", transcribeRequest{AudioPath: audioPath}, &out); err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}
	return out.Text, nil
}

// ProcessText sends user text through the coordinator's HTTP pipeline
func (c *Client) ProcessText(ctx context.Context, text string) (*messages.Reply, error) {
	var out messages.Reply
	if err := c.post(ctx, Coordinator, "/process_text", textRequest{Text: text}, &out); err != nil {
		return nil, fmt.Errorf("processing failed: %w", err)
	}
	return &out, nil
}
