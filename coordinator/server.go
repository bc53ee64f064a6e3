package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/room4-2/voicepanel/config"
	"github.com/room4-2/voicepanel/messages"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
)

const serviceBanner = "AI Voice Assistant Coordinator Service is running"

type Server struct {
	httpServer *http.Server
	upgrader   websocket.Upgrader
	registry   *Registry
	processor  Processor
	config     *config.Config
}

func NewServer(cfg *config.Config, registry *Registry, processor Processor) *Server {
	s := &Server{
		registry:  registry,
		processor: processor,
		config:    cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Check allowed origins
				origin := r.Header.Get("Origin")
				for _, allowed := range cfg.AllowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
	}

	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     s.Handler(),
		ReadTimeout: 10 * time.Second,
		// LLM round trips are slow; keep the write timeout above the HTTP client timeout
		WriteTimeout: cfg.HTTPTimeout + 10*time.Second,
	}

	return s
}

// Handler returns the routes served by the coordinator
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/process_text", s.handleProcessText)
	mux.HandleFunc("/process_audio", s.handleProcessAudio)
	return mux
}

// Start begins listening for connections
func (s *Server) Start() error {
	log.Printf("🚀 Coordinator starting on port %d", s.config.Port)
	log.Printf("📡 WebSocket endpoint: ws://localhost:%d/ws", s.config.Port)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("🛑 Shutting down server...")
	s.registry.Shutdown()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Upgrade HTTP to WebSocket
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client, err := s.registry.Register(r.Context(), conn, s.processor)
	if err != nil {
		log.Printf("Failed to register client: %v", err)
		data, _ := messages.Encode(messages.NewErrorReply(err.Error()))
		_ = conn.WriteMessage(websocket.TextMessage, data)
		conn.Close()
		return
	}

	log.Printf("✅ Client connected: %s", client.ID)

	// Start client (handles messages in goroutines)
	client.Start()

	// Wait for client to close
	<-client.CloseChan

	// Clean up
	s.registry.Remove(context.Background(), client.ID)
	log.Printf("🔌 Client disconnected: %s", client.ID)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": serviceBanner})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "clients": s.registry.Count()})
}

func (s *Server) handleProcessText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decodeRequest(w, r, &req) {
		return
	}

	reply, err := s.processor.ProcessText(r.Context(), req.Text)
	respond(w, reply, err)
}

func (s *Server) handleProcessAudio(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AudioPath string `json:"audio_path"`
	}
	if !decodeRequest(w, r, &req) {
		return
	}

	reply, err := s.processor.ProcessAudio(r.Context(), req.AudioPath)
	respond(w, reply, err)
}

func decodeRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, messages.NewErrorReply("method not allowed"))
		return false
	}
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, messages.NewErrorReply(messages.ErrInvalidJSON))
		return false
	}
	return true
}

func respond(w http.ResponseWriter, reply *messages.Reply, err error) {
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrNoTranscription) {
			status = http.StatusBadRequest
		}
		log.Printf("❌ Error processing request: %v", err)
		writeJSON(w, status, errorReplyFor(err))
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := messages.Encode(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
