package gemini

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/room4-2/voicepanel/functions"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestHandleToolCalls(t *testing.T) {
	parts := handleToolCalls([]*genai.FunctionCall{
		{ID: "1", Name: functions.ListDeviceActionsName},
		{ID: "2", Name: "OpenGarage"},
	})
	require.Len(t, parts, 2)

	require.NotNil(t, parts[0].FunctionResponse)
	assert.Equal(t, functions.ListDeviceActionsName, parts[0].FunctionResponse.Name)
	assert.Contains(t, parts[0].FunctionResponse.Response, "output")

	require.NotNil(t, parts[1].FunctionResponse)
	assert.Equal(t, "Unknown function: OpenGarage", parts[1].FunctionResponse.Response["error"])
}

const (
	functionCallBody = `{"candidates":[{"content":{"role":"model","parts":[{"functionCall":{"name":"ListDeviceActions","args":{}}}]},"finishReason":"STOP"}]}`
	textBody         = `{"candidates":[{"content":{"role":"model","parts":[{"text":"Okay, turning on the light."}]},"finishReason":"STOP"}]}`
)

// fakeGemini answers generateContent with the queued bodies, repeating the last one
type fakeGemini struct {
	mu       sync.Mutex
	bodies   []string
	requests []map[string]any
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req map[string]any
	_ = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	f.requests = append(f.requests, req)
	body := f.bodies[0]
	if len(f.bodies) > 1 {
		f.bodies = f.bodies[1:]
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, body)
}

func (f *fakeGemini) seen() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.requests...)
}

func newTestResponder(t *testing.T, fake *fakeGemini) *Responder {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	r, err := newResponder(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL + "/"},
	}, "gemini-test")
	require.NoError(t, err)
	return r
}

func lastPartHasFunctionResponse(req map[string]any) bool {
	contents, _ := req["contents"].([]any)
	if len(contents) == 0 {
		return false
	}
	last, _ := contents[len(contents)-1].(map[string]any)
	parts, _ := last["parts"].([]any)
	for _, p := range parts {
		if part, ok := p.(map[string]any); ok && part["functionResponse"] != nil {
			return true
		}
	}
	return false
}

func TestRespondResolvesToolCall(t *testing.T) {
	fake := &fakeGemini{bodies: []string{functionCallBody, textBody}}
	r := newTestResponder(t, fake)

	text, err := r.Respond(context.Background(), "turn on the light")
	require.NoError(t, err)
	assert.Equal(t, "Okay, turning on the light.", text)

	requests := fake.seen()
	require.Len(t, requests, 2)
	assert.True(t, lastPartHasFunctionResponse(requests[1]))
}

func TestRespondBoundsToolRounds(t *testing.T) {
	fake := &fakeGemini{bodies: []string{functionCallBody}}
	r := newTestResponder(t, fake)

	_, err := r.Respond(context.Background(), "loop forever")
	require.Error(t, err)

	requests := fake.seen()
	require.Len(t, requests, maxToolRounds+1)
	for i, req := range requests[:maxToolRounds] {
		assert.NotNil(t, req["tools"], "round %d should offer tools", i)
	}

	// The final request carries the last tool results and offers no tools
	final := requests[maxToolRounds]
	assert.Nil(t, final["tools"])
	assert.True(t, lastPartHasFunctionResponse(final))
}

func TestRespondAfterClose(t *testing.T) {
	fake := &fakeGemini{bodies: []string{textBody}}
	r := newTestResponder(t, fake)
	require.NoError(t, r.Close())

	_, err := r.Respond(context.Background(), "hi")
	assert.Error(t, err)
	assert.Empty(t, fake.seen())
}
