package session

import (
	"errors"
	"log"
	"sync"

	"github.com/room4-2/voicepanel/config"
)

// Manager owns at most one live Session to the coordinator
type Manager struct {
	endpoint  string
	audioBase string
	dialer    Dialer
	handlers  Handlers

	mu      sync.Mutex
	current *Session
}

// NewManager creates a session manager for the configured endpoint.
// A nil dialer uses gorilla/websocket's default dialer.
func NewManager(cfg *config.Config, dialer Dialer, handlers Handlers) *Manager {
	if dialer == nil {
		dialer = WebsocketDialer{}
	}
	return &Manager{
		endpoint:  cfg.Endpoint(),
		audioBase: cfg.AudioBase(),
		dialer:    dialer,
		handlers:  handlers,
	}
}

// Connect starts a new session unless one is already connecting or open.
// It returns immediately; the outcome arrives as a connected or error event.
func (m *Manager) Connect() {
	m.mu.Lock()
	if m.current != nil && m.current.State() != StateClosed {
		m.mu.Unlock()
		return
	}
	s := newSession(&m.handlers, m.audioBase)
	m.current = s
	m.mu.Unlock()

	log.Printf("🔌 [%s] Connecting to %s...", s.ID[:8], m.endpoint)
	go s.run(m.dialer, m.endpoint)
}

// Disconnect closes the current session. It is a no-op when idle or closed.
func (m *Manager) Disconnect() {
	if s := m.session(); s != nil {
		s.close()
	}
}

// Send writes {"type":"text","text":<trimmed text>} to the coordinator.
// Whitespace-only text is dropped. Outside the Open state it reports
// ErrNotConnected as a notice and returns it.
func (m *Manager) Send(text string) error {
	s := m.session()
	if s == nil {
		m.handlers.notice(ErrNotConnected.Error())
		return ErrNotConnected
	}

	if err := s.send(text); err != nil {
		if errors.Is(err, ErrNotConnected) || errors.Is(err, ErrSendQueueFull) {
			m.handlers.notice(err.Error())
		}
		return err
	}
	return nil
}

// State returns the state of the current session, StateIdle if none was started
func (m *Manager) State() State {
	if s := m.session(); s != nil {
		return s.State()
	}
	return StateIdle
}

// SessionID returns the id of the current session, empty if none was started
func (m *Manager) SessionID() string {
	if s := m.session(); s != nil {
		return s.ID
	}
	return ""
}

// Endpoint returns the transport address sessions dial
func (m *Manager) Endpoint() string {
	return m.endpoint
}

func (m *Manager) session() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}
