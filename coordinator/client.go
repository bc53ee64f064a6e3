package coordinator

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/room4-2/voicepanel/messages"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
)

const (
	writeBufferSize = 256
	writeTimeout    = 10 * time.Second
	maxMessageSize  = 512 * 1024
)

// Client is one panel connected to /ws
type Client struct {
	ID        string
	Conn      *websocket.Conn
	CreatedAt time.Time

	processor Processor

	// Use channels for non-blocking writes
	writeChan chan any

	mu           sync.RWMutex
	lastActivity time.Time
	closed       bool
	CloseChan    chan struct{}
	ctx          context.Context
	cancel       context.CancelFunc
}

// NewClient wraps an upgraded connection
func NewClient(id string, conn *websocket.Conn, processor Processor) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	conn.SetReadLimit(maxMessageSize)

	return &Client{
		ID:           id,
		Conn:         conn,
		CreatedAt:    time.Now(),
		processor:    processor,
		writeChan:    make(chan any, writeBufferSize),
		lastActivity: time.Now(),
		CloseChan:    make(chan struct{}),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start begins the write pump and the read loop
func (c *Client) Start() {
	go c.writePump()
	go c.handleMessages()
}

// LastActive returns the time of the last frame in either direction
func (c *Client) LastActive() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastActivity
}

func (c *Client) touch() {
	c.mu.Lock()
	c.lastActivity = time.Now()
	c.mu.Unlock()
}

// writePump handles all outgoing messages in a single goroutine
func (c *Client) writePump() {
	defer func() {
		// Send close message before exiting
		_ = c.Conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeTimeout),
		)
	}()

	for {
		select {
		case <-c.CloseChan:
			return
		case msg := <-c.writeChan:
			data, err := messages.Encode(msg)
			if err != nil {
				log.Printf("❌ [%s] Failed to encode reply: %v", c.ID[:8], err)
				continue
			}

			c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("❌ [%s] Write error: %v", c.ID[:8], err)
				go c.Close()
				return
			}
		}
	}
}

// queueMessage adds a message to the write queue (non-blocking)
func (c *Client) queueMessage(msg any) {
	if c.IsClosed() {
		return
	}
	select {
	case c.writeChan <- msg:
		c.touch()
	default:
		log.Printf("⚠️ [%s] Write queue full, dropping message", c.ID[:8])
	}
}

// Close terminates the client and its connection
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()

	// Signal close (for the write pump and the server handler)
	close(c.CloseChan)

	// Let the write pump send its close frame before tearing the socket down
	time.AfterFunc(time.Second, func() { c.Conn.Close() })
	return nil
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func (c *Client) handleMessages() {
	defer c.Close()

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if !c.IsClosed() && websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("❌ [%s] Read error: %v", c.ID[:8], err)
			}
			return
		}
		c.touch()

		var msg messages.ClientMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			c.queueMessage(messages.NewErrorReply(messages.ErrInvalidJSON))
			continue
		}

		c.processMessage(&msg)
	}
}

func (c *Client) processMessage(msg *messages.ClientMessage) {
	var (
		reply *messages.Reply
		err   error
	)

	switch msg.Type {
	case messages.TypeText:
		log.Printf("💬 [%s] Text: %s", c.ID[:8], msg.Text)
		reply, err = c.processor.ProcessText(c.ctx, msg.Text)

	case messages.TypeAudioReady:
		log.Printf("🎤 [%s] Audio ready: %s", c.ID[:8], msg.Path)
		reply, err = c.processor.ProcessAudio(c.ctx, msg.Path)

	default:
		c.queueMessage(messages.NewErrorReply(messages.ErrUnknownMessageType))
		return
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("❌ [%s] Error processing request: %v", c.ID[:8], err)
		c.queueMessage(errorReplyFor(err))
		return
	}
	c.queueMessage(reply)
}

func errorReplyFor(err error) *messages.ErrorReply {
	if errors.Is(err, ErrNoTranscription) {
		return messages.NewErrorReply(err.Error())
	}
	return messages.NewErrorReply("Error processing request: " + err.Error())
}
