package messages

import (
	"github.com/bytedance/sonic"
)

// Message types sent by the panel to the coordinator
const (
	TypeText       = "text"
	TypeAudioReady = "audio_ready"
)

// ClientMessage is a single text frame sent by the panel
type ClientMessage struct {
	Type string `json:"type"`           // "text", "audio_ready"
	Text string `json:"text,omitempty"` // set for "text"
	Path string `json:"path,omitempty"` // server-local recording path for "audio_ready"
}

// NewTextMessage creates the outbound frame for user text
func NewTextMessage(text string) *ClientMessage {
	return &ClientMessage{
		Type: TypeText,
		Text: text,
	}
}

// NewAudioReadyMessage notifies the coordinator that a recording is ready for transcription
func NewAudioReadyMessage(path string) *ClientMessage {
	return &ClientMessage{
		Type: TypeAudioReady,
		Path: path,
	}
}

// Encode serializes a message to JSON text
func Encode(v any) ([]byte, error) {
	return sonic.Marshal(v)
}
