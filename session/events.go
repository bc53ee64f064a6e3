package session

// Handlers receives session events. Any field may be nil.
// Events of one session are delivered from that session's goroutine, in
// transport order; handlers may call back into the Manager.
type Handlers struct {
	OnConnected         func()
	OnDisconnected      func()
	OnError             func(message string)
	OnRawMessage        func(text string)
	OnStructuredMessage func(value any)
	OnAudioAvailable    func(locator string) // playback is the handler's job; a refused play is not a session failure
	OnNotice            func(message string) // advisory, the session is unaffected
}

func (h *Handlers) connected() {
	if h.OnConnected != nil {
		h.OnConnected()
	}
}

func (h *Handlers) disconnected() {
	if h.OnDisconnected != nil {
		h.OnDisconnected()
	}
}

func (h *Handlers) failed(message string) {
	if message == "" {
		message = "Unknown error"
	}
	if h.OnError != nil {
		h.OnError(message)
	}
}

func (h *Handlers) rawMessage(text string) {
	if h.OnRawMessage != nil {
		h.OnRawMessage(text)
	}
}

func (h *Handlers) structuredMessage(value any) {
	if h.OnStructuredMessage != nil {
		h.OnStructuredMessage(value)
	}
}

func (h *Handlers) audioAvailable(locator string) {
	if h.OnAudioAvailable != nil {
		h.OnAudioAvailable(locator)
	}
}

func (h *Handlers) notice(message string) {
	if h.OnNotice != nil {
		h.OnNotice(message)
	}
}
