package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/room4-2/voicepanel/messages"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeBufferSize  = 256
	writeTimeout     = 10 * time.Second
	closeGracePeriod = 2 * time.Second
	maxFrameSize     = 512 * 1024
)

// State of a Session
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is one connection attempt to the coordinator. Closed is terminal;
// reconnecting creates a new Session.
type Session struct {
	ID        string
	CreatedAt time.Time

	handlers  *Handlers
	audioBase string

	mu        sync.Mutex
	state     State
	transport Transport // nil unless Open or Closing
	writeErr  error

	writeChan chan []byte
	ctx       context.Context
	cancel    context.CancelFunc
}

func newSession(handlers *Handlers, audioBase string) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		handlers:  handlers,
		audioBase: audioBase,
		state:     StateConnecting,
		writeChan: make(chan []byte, writeBufferSize),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// run dials, then owns the read loop until the transport goes away.
// Every event of the session is emitted from here.
func (s *Session) run(dialer Dialer, endpoint string) {
	transport, err := dialer.Dial(s.ctx, endpoint)

	s.mu.Lock()
	if err != nil {
		closing := s.state == StateClosing
		s.state = StateClosed
		s.mu.Unlock()
		s.cancel()

		if closing {
			log.Printf("🔌 [%s] Connect cancelled", s.ID[:8])
			s.handlers.disconnected()
			return
		}
		log.Printf("❌ [%s] Connect to %s failed: %v", s.ID[:8], endpoint, err)
		s.handlers.failed((&TransportError{Op: "dial", Err: err}).Error())
		return
	}

	if s.state == StateClosing {
		// Disconnect raced the handshake
		s.state = StateClosed
		s.mu.Unlock()
		s.cancel()
		transport.Close()
		s.handlers.disconnected()
		return
	}
	s.transport = transport
	s.state = StateOpen
	s.mu.Unlock()

	log.Printf("✅ [%s] Connected to %s", s.ID[:8], endpoint)
	go s.writePump(transport)
	s.handlers.connected()
	s.readPump(transport)
}

func (s *Session) readPump(transport Transport) {
	for {
		_, data, err := transport.ReadMessage()
		if err != nil {
			s.finish(transport, err)
			return
		}

		// Frames still in flight after Disconnect are dropped
		if s.State() != StateOpen {
			continue
		}
		s.dispatch(data)
	}
}

func (s *Session) dispatch(data []byte) {
	frame := messages.DecodeFrame(data)
	if !frame.Structured {
		s.handlers.rawMessage(frame.Raw)
		return
	}

	s.handlers.structuredMessage(frame.Value)
	if audioPath, ok := frame.AudioPath(); ok {
		s.handlers.audioAvailable(messages.AudioURL(s.audioBase, audioPath))
	}
}

// finish releases the transport and emits the terminal event
func (s *Session) finish(transport Transport, readErr error) {
	s.mu.Lock()
	prev := s.state
	s.state = StateClosed
	s.transport = nil
	writeErr := s.writeErr
	s.mu.Unlock()

	s.cancel()
	transport.Close()

	switch {
	case writeErr != nil:
		log.Printf("❌ [%s] Write error: %v", s.ID[:8], writeErr)
		s.handlers.failed((&TransportError{Op: "write", Err: writeErr}).Error())
	case prev == StateClosing || isRemoteClose(readErr):
		log.Printf("🔌 [%s] Disconnected", s.ID[:8])
		s.handlers.disconnected()
	default:
		log.Printf("❌ [%s] Read error: %v", s.ID[:8], readErr)
		s.handlers.failed((&TransportError{Op: "read", Err: readErr}).Error())
	}
}

// isRemoteClose reports a close handshake initiated by the peer.
// 1006 is synthesized locally when the connection drops without one.
func isRemoteClose(err error) bool {
	var closeErr *websocket.CloseError
	return errors.As(err, &closeErr) && closeErr.Code != websocket.CloseAbnormalClosure
}

// writePump handles all outgoing frames in a single goroutine
func (s *Session) writePump(transport Transport) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case data := <-s.writeChan:
			transport.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := transport.WriteMessage(websocket.TextMessage, data); err != nil {
				s.mu.Lock()
				if s.state == StateOpen {
					s.writeErr = err
				}
				s.mu.Unlock()
				// Unblocks readPump, which reports the failure
				transport.Close()
				return
			}
		}
	}
}

func (s *Session) send(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateOpen {
		return ErrNotConnected
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	data, err := messages.Encode(messages.NewTextMessage(text))
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	select {
	case s.writeChan <- data:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// close starts the close handshake; the read loop emits the terminal event
func (s *Session) close() {
	s.mu.Lock()
	switch s.state {
	case StateConnecting:
		s.state = StateClosing
		s.mu.Unlock()
		s.cancel()

	case StateOpen:
		s.state = StateClosing
		transport := s.transport
		s.mu.Unlock()

		err := transport.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeTimeout),
		)
		if err != nil {
			transport.Close()
			return
		}
		// Give the peer a chance to echo the close frame
		time.AfterFunc(closeGracePeriod, func() { transport.Close() })

	default:
		s.mu.Unlock()
	}
}
