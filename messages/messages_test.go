package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeTextMessage(t *testing.T) {
	data, err := Encode(NewTextMessage("turn on the light"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"text","text":"turn on the light"}`, string(data))
}

func TestEncodeAudioReadyMessage(t *testing.T) {
	data, err := Encode(NewAudioReadyMessage("/app/audio/rec.wav"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"audio_ready","path":"/app/audio/rec.wav"}`, string(data))
}

func TestDecodeFrame(t *testing.T) {
	t.Run("raw text", func(t *testing.T) {
		f := DecodeFrame([]byte("not json"))
		assert.False(t, f.Structured)
		assert.Equal(t, "not json", f.Raw)
		assert.Nil(t, f.Value)
	})

	t.Run("object", func(t *testing.T) {
		f := DecodeFrame([]byte(`{"ai_response":"hi","expression":"smile"}`))
		require.True(t, f.Structured)
		obj, ok := f.Value.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "hi", obj["ai_response"])
		_, hasAudio := f.AudioPath()
		assert.False(t, hasAudio)
	})

	t.Run("scalar json", func(t *testing.T) {
		f := DecodeFrame([]byte(`42`))
		require.True(t, f.Structured)
		assert.Equal(t, float64(42), f.Value)
		_, hasAudio := f.AudioPath()
		assert.False(t, hasAudio)
	})

	t.Run("audio path", func(t *testing.T) {
		f := DecodeFrame([]byte(`{"audio_path":"/tmp/out/voice42.mp3"}`))
		p, ok := f.AudioPath()
		require.True(t, ok)
		assert.Equal(t, "/tmp/out/voice42.mp3", p)
	})

	t.Run("empty or non-string audio path", func(t *testing.T) {
		for _, raw := range []string{`{"audio_path":""}`, `{"audio_path":7}`, `{"audio_path":null}`} {
			f := DecodeFrame([]byte(raw))
			require.True(t, f.Structured, raw)
			_, ok := f.AudioPath()
			assert.False(t, ok, raw)
		}
	})
}

func TestAudioURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8001/audio/voice42.mp3",
		AudioURL("http://localhost:8001", "/tmp/out/voice42.mp3"))
	assert.Equal(t, "http://localhost:8001/audio/tts_1.mp3",
		AudioURL("http://localhost:8001", "tts_1.mp3"))
	assert.Equal(t, "", AudioFilename("/app/audio/"))
}
