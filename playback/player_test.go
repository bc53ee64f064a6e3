package playback

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyTemplateRefuses(t *testing.T) {
	err := NewCommandPlayer("").Play(context.Background(), "http://localhost:8001/audio/a.mp3")
	assert.ErrorIs(t, err, ErrPlaybackRefused)
}

func TestMissingBinaryRefuses(t *testing.T) {
	p := NewCommandPlayer("definitely-not-an-audio-player-binary {url}")
	err := p.Play(context.Background(), "http://localhost:8001/audio/a.mp3")
	assert.ErrorIs(t, err, ErrPlaybackRefused)
}

func TestPlaySubstitutesLocator(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	dir := t.TempDir()
	out := filepath.Join(dir, "played")
	script := filepath.Join(dir, "player.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho \"$2\" > \""+out+"\"\n"), 0o755))

	p := NewCommandPlayer(script + " --quiet {url}")
	require.NoError(t, p.Play(context.Background(), "http://localhost:8001/audio/voice42.mp3"))

	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(out)
		return err == nil && string(data) == "http://localhost:8001/audio/voice42.mp3\n"
	}, 2*time.Second, 10*time.Millisecond)
}
