package gateway

// BridgeConfig is what the chat bridge reports on GET /config.
type BridgeConfig struct {
	Port              int    `json:"port"`
	PollingSpeed      int    `json:"pollingSpeed"`
	MessageRate       int    `json:"messageRate"`
	WebserverEndpoint string `json:"webserverEndpoint"`
}

type ReplyRequest struct {
	Type string `json:"type"`
	Room string `json:"room"`
	Data string `json:"data"`
}

// Message is one chat event pushed over the websocket.
type Message struct {
	Msg    string       `json:"msg"`
	Room   string       `json:"room"`
	Sender *string      `json:"sender,omitempty"`
	JSON   *MessageJSON `json:"json,omitempty"`
}

type MessageJSON struct {
	UserID    string `json:"user_id,omitempty"`
	Message   string `json:"message,omitempty"`
	ChatID    string `json:"chat_id,omitempty"`
	Type      string `json:"type,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// SenderName returns the display name, or "" when the bridge omitted it.
func (m *Message) SenderName() string {
	if m == nil || m.Sender == nil {
		return ""
	}
	return *m.Sender
}

// Text prefers the raw message body from the JSON envelope.
func (m *Message) Text() string {
	if m == nil {
		return ""
	}
	if m.JSON != nil && m.JSON.Message != "" {
		return m.JSON.Message
	}
	return m.Msg
}

type WebSocketState string

const (
	WSStateConnecting   WebSocketState = "CONNECTING"
	WSStateConnected    WebSocketState = "CONNECTED"
	WSStateDisconnected WebSocketState = "DISCONNECTED"
	WSStateReconnecting WebSocketState = "RECONNECTING"
	WSStateFailed       WebSocketState = "FAILED"
)

func (s WebSocketState) String() string {
	return string(s)
}
