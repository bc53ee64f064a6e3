package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/room4-2/voicepanel/config"
	"github.com/room4-2/voicepanel/playback"
	"github.com/room4-2/voicepanel/services"
	"github.com/room4-2/voicepanel/session"

	"github.com/chzyer/readline"
)

type panel struct {
	cfg      *config.Config
	out      io.Writer
	manager  *session.Manager
	services *services.Client
	player   playback.Player
	ctx      context.Context
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "panel> ",
		AutoComplete:    completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "/quit",
	})
	if err != nil {
		log.Fatalf("Failed to start terminal: %v", err)
	}
	defer rl.Close()

	// Log lines go through readline so they don't clobber the prompt
	log.SetOutput(rl.Stderr())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := &panel{
		cfg:      cfg,
		out:      rl.Stdout(),
		services: services.NewClient(cfg),
		player:   playback.NewCommandPlayer(cfg.AudioPlayer),
		ctx:      ctx,
	}
	p.manager = session.NewManager(cfg, nil, p.handlers())

	fmt.Fprintf(p.out, "Voice panel. Endpoint %s. Type /help for commands.\n", p.manager.Endpoint())
	p.manager.Connect()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				break
			}
			continue
		}
		if err != nil {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if !p.command(line) {
				break
			}
			continue
		}
		// Errors are reported through OnNotice
		_ = p.manager.Send(line)
	}

	p.manager.Disconnect()
}

func (p *panel) handlers() session.Handlers {
	return session.Handlers{
		OnConnected: func() {
			fmt.Fprintln(p.out, "🟢 Connected")
		},
		OnDisconnected: func() {
			fmt.Fprintln(p.out, "⚪ Disconnected")
		},
		OnError: func(msg string) {
			fmt.Fprintf(p.out, "🔴 Connection error: %s\n", msg)
		},
		OnRawMessage: func(text string) {
			fmt.Fprintf(p.out, "« %s\n", text)
		},
		OnStructuredMessage: p.renderReply,
		OnAudioAvailable:    p.play,
		OnNotice: func(msg string) {
			fmt.Fprintf(p.out, "⚠️ %s\n", msg)
		},
	}
}

func (p *panel) renderReply(v any) {
	obj, ok := v.(map[string]any)
	if !ok {
		fmt.Fprintf(p.out, "« %v\n", v)
		return
	}
	if msg, ok := obj["error"]; ok {
		fmt.Fprintf(p.out, "🔴 %v\n", msg)
		return
	}
	if text, ok := obj["input_text"].(string); ok && text != "" {
		fmt.Fprintf(p.out, "🗣  %s\n", text)
	}
	if text, ok := obj["ai_response"].(string); ok {
		fmt.Fprintf(p.out, "🤖 %s\n", text)
	}
	if cmds, ok := obj["iot_commands"].([]any); ok && len(cmds) > 0 {
		fmt.Fprintf(p.out, "🏠 %d device command(s) sent\n", len(cmds))
	}
}

func (p *panel) play(locator string) {
	fmt.Fprintf(p.out, "🔊 %s\n", locator)
	if err := p.player.Play(p.ctx, locator); err != nil {
		if errors.Is(err, playback.ErrPlaybackRefused) {
			fmt.Fprintf(p.out, "⚠️ Audio not played automatically: %v\n", err)
			return
		}
		fmt.Fprintf(p.out, "🔴 Playback failed: %v\n", err)
	}
}
