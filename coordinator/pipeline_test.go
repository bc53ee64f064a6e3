package coordinator

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/room4-2/voicepanel/config"
	"github.com/room4-2/voicepanel/messages"
	"github.com/room4-2/voicepanel/services"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResponder struct {
	mu      sync.Mutex
	prompts []string
	reply   string
	err     error
}

func (f *fakeResponder) Respond(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

// backend stands in for the STT, TTS and IoT services on one origin
type backend struct {
	mu          sync.Mutex
	controls    []string
	transcript  string
	devicesFail bool
	controlFail bool
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/devices":
		if b.devicesFail {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"error":"down"}`)
			return
		}
		io.WriteString(w, `{"devices":{"light":{"bedroom":{"status":"on","brightness":80}}}}`)
	case "/control":
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.controls = append(b.controls, string(body))
		b.mu.Unlock()
		if b.controlFail {
			w.WriteHeader(http.StatusBadGateway)
			io.WriteString(w, `{"error":"unreachable"}`)
			return
		}
		io.WriteString(w, `{"status":"success","results":[]}`)
	case "/synthesize":
		io.WriteString(w, `{"audio_path":"/srv/tts/audio/reply7.mp3","format":"mp3","voice":"en-US-AriaNeural"}`)
	case "/transcribe":
		b.mu.Lock()
		text := b.transcript
		b.mu.Unlock()
		data, _ := sonic.Marshal(map[string]string{"text": text})
		w.Write(data)
	default:
		http.NotFound(w, r)
	}
}

func (b *backend) controlCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.controls)
}

func newPipeline(t *testing.T, b *backend, responder Responder) *Pipeline {
	t.Helper()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.STTURL = srv.URL
	cfg.TTSURL = srv.URL
	cfg.IoTURL = srv.URL
	return NewPipeline(services.NewClient(cfg), responder)
}

func TestPipelineProcessText(t *testing.T) {
	b := &backend{}
	responder := &fakeResponder{reply: "Okay, I'll turn off the bedroom light."}
	p := newPipeline(t, b, responder)

	reply, err := p.ProcessText(context.Background(), "Turn off the bedroom light")
	require.NoError(t, err)

	assert.Equal(t, "Turn off the bedroom light", reply.InputText)
	assert.Equal(t, "Okay, I'll turn off the bedroom light.", reply.AIResponse)
	assert.Equal(t, "/srv/tts/audio/reply7.mp3", reply.AudioPath)
	assert.Equal(t, ExpressionNeutral, reply.Expression)
	assert.Equal(t, []messages.IoTCommand{{Device: "light", Action: "off", Location: "bedroom"}}, reply.IoTCommands)
	assert.Equal(t, "success", reply.IoTResult["status"])

	require.Len(t, responder.prompts, 1)
	assert.Contains(t, responder.prompts[0], "- Light (bedroom): ON, Brightness: 80%")
	assert.Equal(t, 1, b.controlCount())
}

func TestPipelineWithoutCommands(t *testing.T) {
	b := &backend{}
	p := newPipeline(t, b, &fakeResponder{reply: "Paris."})

	reply, err := p.ProcessText(context.Background(), "What is the capital of France?")
	require.NoError(t, err)

	assert.Empty(t, reply.IoTCommands)
	assert.Equal(t, map[string]any{"status": "no_commands"}, reply.IoTResult)
	assert.Equal(t, ExpressionThinking, reply.Expression)
	assert.Equal(t, 0, b.controlCount())
}

func TestPipelineDegradesWhenIoTIsDown(t *testing.T) {
	b := &backend{devicesFail: true, controlFail: true}
	responder := &fakeResponder{reply: "Turning on the fan."}
	p := newPipeline(t, b, responder)

	reply, err := p.ProcessText(context.Background(), "fan on")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"status": "error"}, reply.IoTResult)
	assert.Contains(t, responder.prompts[0], "Unable to retrieve current device status")
}

func TestPipelineResponderError(t *testing.T) {
	p := newPipeline(t, &backend{}, &fakeResponder{err: errors.New("model not found")})

	_, err := p.ProcessText(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestPipelineProcessAudio(t *testing.T) {
	b := &backend{transcript: "thank you"}
	p := newPipeline(t, b, &fakeResponder{reply: "You're welcome!"})

	reply, err := p.ProcessAudio(context.Background(), "/tmp/rec.wav")
	require.NoError(t, err)
	assert.Equal(t, "thank you", reply.InputText)
	assert.Equal(t, ExpressionSmile, reply.Expression)
}

func TestPipelineProcessAudioSilence(t *testing.T) {
	p := newPipeline(t, &backend{}, &fakeResponder{reply: "unused"})

	_, err := p.ProcessAudio(context.Background(), "/tmp/rec.wav")
	assert.ErrorIs(t, err, ErrNoTranscription)
}
