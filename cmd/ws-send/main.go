package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/room4-2/voicepanel/config"
	"github.com/room4-2/voicepanel/session"
)

func main() {
	wait := flag.Duration("wait", 60*time.Second, "How long to wait for a reply")
	flag.Parse()

	text := strings.Join(flag.Args(), " ")
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(os.Stderr, "Usage: ws-send [-wait 60s] <text>")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	connected := make(chan struct{}, 1)
	done := make(chan string, 1)
	finish := func(reason string) {
		select {
		case done <- reason:
		default:
		}
	}

	manager := session.NewManager(cfg, nil, session.Handlers{
		OnConnected: func() {
			log.Println("✅ Connected")
			connected <- struct{}{}
		},
		OnDisconnected: func() { finish("disconnected") },
		OnError:        func(msg string) { finish("error: " + msg) },
		OnRawMessage: func(text string) {
			log.Printf("💬 %s", text)
			finish("reply received")
		},
		OnStructuredMessage: func(v any) {
			log.Printf("📨 %v", v)
			finish("reply received")
		},
		OnAudioAvailable: func(locator string) {
			log.Printf("🔊 Audio: %s", locator)
		},
		OnNotice: func(msg string) { log.Printf("⚠️ %s", msg) },
	})

	log.Printf("🔌 Connecting to %s...", manager.Endpoint())
	manager.Connect()

	// Handle interrupt
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	select {
	case <-connected:
	case reason := <-done:
		log.Fatalf("Failed to connect: %s", reason)
	case <-interrupt:
		manager.Disconnect()
		return
	}

	if err := manager.Send(text); err != nil {
		log.Fatalf("Failed to send text: %v", err)
	}

	// Wait for response
	log.Println("Waiting for response...")
	select {
	case reason := <-done:
		log.Printf("Done (%s)", reason)
	case <-time.After(*wait):
		log.Println("Timed out waiting for a reply")
	case <-interrupt:
	}

	manager.Disconnect()
	// Give the close handshake a moment
	time.Sleep(200 * time.Millisecond)
}
