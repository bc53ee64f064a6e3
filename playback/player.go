// Package playback plays audio locators announced by the coordinator.
package playback

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strings"
)

// ErrPlaybackRefused is returned when autoplay is not possible. It is advisory:
// the user can still open the locator by hand.
var ErrPlaybackRefused = errors.New("autoplay refused")

// Player starts playback of an audio locator
type Player interface {
	Play(ctx context.Context, locator string) error
}

// CommandPlayer streams audio through an external program, e.g. "mpv --no-video {url}"
type CommandPlayer struct {
	template []string
}

// NewCommandPlayer parses a command template. An empty template yields a
// player that refuses every request.
func NewCommandPlayer(template string) *CommandPlayer {
	return &CommandPlayer{template: strings.Fields(template)}
}

// Play starts the player without waiting for it to finish
func (p *CommandPlayer) Play(ctx context.Context, locator string) error {
	if len(p.template) == 0 {
		return ErrPlaybackRefused
	}

	args := make([]string, 0, len(p.template)+1)
	substituted := false
	for _, arg := range p.template[1:] {
		if strings.Contains(arg, "{url}") {
			arg = strings.ReplaceAll(arg, "{url}", locator)
			substituted = true
		}
		args = append(args, arg)
	}
	if !substituted {
		args = append(args, locator)
	}

	cmd := exec.CommandContext(ctx, p.template[0], args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrPlaybackRefused, err)
	}

	go func() {
		if err := cmd.Wait(); err != nil {
			log.Printf("⚠️ Audio player exited: %v", err)
		}
	}()
	return nil
}
