package gateway

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kapu/toxicity-agent-go/internal/constants"
	"github.com/kapu/toxicity-agent-go/internal/util"
	"go.uber.org/zap"
)

type MessageCallback func(message *Message)

type StateCallback func(state WebSocketState)

// subscribers is an ordered callback list with per-entry unsubscribe.
type subscribers[T any] struct {
	mu      sync.RWMutex
	nextID  int
	entries []subscriber[T]
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

func (s *subscribers[T]) add(fn func(T)) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.entries = append(s.entries, subscriber[T]{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.entries = slices.DeleteFunc(s.entries, func(e subscriber[T]) bool { return e.id == id })
	}
}

// notify calls a snapshot of the callbacks outside the lock.
func (s *subscribers[T]) notify(value T) {
	s.mu.RLock()
	snapshot := slices.Clone(s.entries)
	s.mu.RUnlock()

	for _, entry := range snapshot {
		entry.fn(value)
	}
}

func (s *subscribers[T]) clear() {
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()
}

// WebSocket receives chat events from the bridge and reconnects on read or
// dial failures. FAILED is terminal: it is entered only once
// maxReconnectAttempts is exhausted.
type WebSocket struct {
	wsURL                string
	conn                 *websocket.Conn
	connMu               sync.Mutex
	state                WebSocketState
	stateMu              sync.RWMutex
	filter               EventFilter
	filterMu             sync.RWMutex
	messages             subscribers[*Message]
	states               subscribers[WebSocketState]
	reconnectAttempts    int
	maxReconnectAttempts int
	reconnectDelay       time.Duration
	logger               *zap.Logger
	stopCh               chan struct{}
	stopOnce             sync.Once
	listenerWg           sync.WaitGroup
}

func NewWebSocket(wsURL string, maxReconnectAttempts int, reconnectDelay time.Duration, logger *zap.Logger) *WebSocket {
	return &WebSocket{
		wsURL:                wsURL,
		state:                WSStateDisconnected,
		maxReconnectAttempts: maxReconnectAttempts,
		reconnectDelay:       reconnectDelay,
		logger:               logger,
		filter:               AllowAll,
		stopCh:               make(chan struct{}),
	}
}

// SetFilter installs the filter applied before message callbacks run.
// A nil filter accepts every event.
func (ws *WebSocket) SetFilter(filter EventFilter) {
	if filter == nil {
		filter = AllowAll
	}
	ws.filterMu.Lock()
	ws.filter = filter
	ws.filterMu.Unlock()
}

func (ws *WebSocket) Connect(ctx context.Context) error {
	ws.stateMu.RLock()
	current := ws.state
	ws.stateMu.RUnlock()
	if current == WSStateConnected || current == WSStateConnecting {
		ws.logger.Warn("WebSocket already connected or connecting")
		return nil
	}

	ws.setState(WSStateConnecting)

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.DialContext(ctx, ws.wsURL, nil)
	if err != nil {
		ws.logger.Error("Failed to connect WebSocket", zap.Error(err))
		ws.setState(WSStateDisconnected)
		ws.scheduleReconnect(ctx)
		return err
	}

	ws.connMu.Lock()
	ws.conn = conn
	ws.reconnectAttempts = 0
	ws.connMu.Unlock()
	ws.setState(WSStateConnected)

	ws.logger.Info("WebSocket connected", zap.String("url", ws.wsURL))

	ws.listenerWg.Add(1)
	go ws.listen(ctx, conn)

	return nil
}

func (ws *WebSocket) listen(ctx context.Context, conn *websocket.Conn) {
	defer ws.listenerWg.Done()
	defer ws.logger.Info("WebSocket listener stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ws.stopCh:
			return
		default:
		}

		_, msgBytes, err := conn.ReadMessage()
		if err != nil {
			if ws.stopped() {
				return
			}
			ws.logger.Error("WebSocket read error", zap.Error(err))
			ws.setState(WSStateDisconnected)
			ws.scheduleReconnect(ctx)
			return
		}

		ws.handleMessage(msgBytes)
	}
}

func (ws *WebSocket) handleMessage(data []byte) {
	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		ws.logger.Error("Failed to parse message",
			zap.Error(err),
			zap.String("data", util.TruncateString(string(data), constants.StringLimits.LogPreview)),
		)
		return
	}

	ws.filterMu.RLock()
	accept := ws.filter
	ws.filterMu.RUnlock()
	if !accept(&message) {
		ws.logger.Debug("Chat event filtered",
			zap.String("room", message.Room),
			zap.String("sender", message.SenderName()),
		)
		return
	}

	ws.messages.notify(&message)
}

func (ws *WebSocket) stopped() bool {
	select {
	case <-ws.stopCh:
		return true
	default:
		return false
	}
}

func (ws *WebSocket) scheduleReconnect(ctx context.Context) {
	if ws.stopped() {
		return
	}

	ws.connMu.Lock()
	ws.reconnectAttempts++
	attempts := ws.reconnectAttempts
	ws.connMu.Unlock()

	if attempts > ws.maxReconnectAttempts {
		ws.logger.Error("Max reconnect attempts reached",
			zap.Int("attempts", attempts),
		)
		ws.setState(WSStateFailed)
		return
	}

	ws.setState(WSStateReconnecting)

	ws.logger.Info("Scheduling reconnect",
		zap.Int("attempt", attempts),
		zap.Int("max", ws.maxReconnectAttempts),
		zap.Duration("delay", ws.reconnectDelay),
	)

	go func() {
		select {
		case <-time.After(ws.reconnectDelay):
			if err := ws.Connect(ctx); err != nil {
				ws.logger.Error("Reconnect failed", zap.Error(err))
			}
		case <-ctx.Done():
		case <-ws.stopCh:
		}
	}()
}

// OnMessage registers a callback for accepted chat events and returns its
// unsubscribe function.
func (ws *WebSocket) OnMessage(callback MessageCallback) func() {
	return ws.messages.add(callback)
}

// OnStateChange registers a callback for connection state transitions.
func (ws *WebSocket) OnStateChange(callback StateCallback) func() {
	return ws.states.add(callback)
}

func (ws *WebSocket) setState(newState WebSocketState) {
	ws.stateMu.Lock()
	oldState := ws.state
	ws.state = newState
	ws.stateMu.Unlock()

	if oldState == newState {
		return
	}

	ws.logger.Info("WebSocket state changed",
		zap.String("from", oldState.String()),
		zap.String("to", newState.String()),
	)

	ws.states.notify(newState)
}

func (ws *WebSocket) GetState() WebSocketState {
	ws.stateMu.RLock()
	defer ws.stateMu.RUnlock()
	return ws.state
}

func (ws *WebSocket) IsConnected() bool {
	return ws.GetState() == WSStateConnected
}

// Disconnect stops reconnecting, closes the connection and waits briefly for
// the listener goroutine.
func (ws *WebSocket) Disconnect() error {
	ws.stopOnce.Do(func() {
		close(ws.stopCh)
	})

	ws.connMu.Lock()
	conn := ws.conn
	ws.conn = nil
	ws.reconnectAttempts = 0
	ws.connMu.Unlock()

	if conn != nil {
		if err := conn.Close(); err != nil {
			ws.logger.Error("Failed to close WebSocket", zap.Error(err))
			return err
		}
	}

	ws.setState(WSStateDisconnected)
	ws.logger.Info("WebSocket disconnected")

	done := make(chan struct{})
	go func() {
		ws.listenerWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		ws.logger.Info("Listener stopped cleanly")
	case <-time.After(5 * time.Second):
		ws.logger.Warn("Timeout waiting for listener to stop")
	}

	return nil
}

func (ws *WebSocket) RemoveAllListeners() {
	ws.messages.clear()
	ws.states.clear()
}
