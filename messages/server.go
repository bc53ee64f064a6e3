package messages

import (
	"strings"

	"github.com/bytedance/sonic"
)

// AudioPathField is the inbound field naming a server-local audio file
const AudioPathField = "audio_path"

// Error messages sent back by the coordinator
const (
	ErrUnknownMessageType = "Unknown message type"
	ErrInvalidJSON        = "Invalid JSON format"
)

// Frame is a decoded inbound text frame
type Frame struct {
	Raw        string
	Value      any  // decoded JSON value, nil when !Structured
	Structured bool // false when the frame was not valid JSON
}

// AudioPath returns the audio_path of a structured object frame, if any
func (f *Frame) AudioPath() (string, bool) {
	obj, ok := f.Value.(map[string]any)
	if !ok {
		return "", false
	}
	p, ok := obj[AudioPathField].(string)
	if !ok || p == "" {
		return "", false
	}
	return p, true
}

// DecodeFrame parses an inbound frame. Invalid JSON is not an error:
// the frame is returned unstructured with its literal text.
func DecodeFrame(data []byte) *Frame {
	frame := &Frame{Raw: string(data)}

	var v any
	if err := sonic.Unmarshal(data, &v); err != nil {
		return frame
	}
	frame.Value = v
	frame.Structured = true
	return frame
}

// AudioFilename returns the final path segment of a server-local audio path
func AudioFilename(audioPath string) string {
	if i := strings.LastIndex(audioPath, "/"); i >= 0 {
		return audioPath[i+1:]
	}
	return audioPath
}

// AudioURL resolves a server-local audio path against the audio-serving origin
func AudioURL(audioBase, audioPath string) string {
	return audioBase + "/audio/" + AudioFilename(audioPath)
}

// IoTCommand is a single device instruction
type IoTCommand struct {
	Device   string `json:"device"`
	Action   string `json:"action"`
	Location string `json:"location"`
}

// Reply is the coordinator's answer to a text or audio_ready frame
type Reply struct {
	InputText   string         `json:"input_text"`
	AIResponse  string         `json:"ai_response"`
	AudioPath   string         `json:"audio_path"`
	Expression  string         `json:"expression"`
	IoTCommands []IoTCommand   `json:"iot_commands"`
	IoTResult   map[string]any `json:"iot_result"`
}

// ErrorReply is sent by the coordinator when a frame cannot be served
type ErrorReply struct {
	Error string `json:"error"`
}

// NewErrorReply creates an error reply
func NewErrorReply(message string) *ErrorReply {
	return &ErrorReply{Error: message}
}
