package ws

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/codingworldcup/internal/model"
)

const (
	// writeWait is how long a single frame may take to write
	writeWait = 10 * time.Second
	// pongWait is how long the connection may stay silent before it is dropped
	pongWait = 60 * time.Second
	// pingPeriod must be shorter than pongWait
	pingPeriod = (pongWait * 9) / 10
	// maxMessageSize limits the size of an agent response
	maxMessageSize = 256 * 1024
)

// DeliverFunc hands a response frame to the match
type DeliverFunc func(agentID model.AgentID, payload []byte) error

// Agent is a remote agent connected over a websocket.
// Snapshots are written as text frames for JSON and binary frames for
// binary codecs. Every frame read from the agent is one response.
type Agent struct {
	id          model.AgentID
	conn        *websocket.Conn
	messageType int
	logger      *slog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	deliver DeliverFunc

	closed    chan struct{}
	closeOnce sync.Once
}

func newAgent(id model.AgentID, conn *websocket.Conn, binary bool, logger *slog.Logger) *Agent {
	messageType := websocket.TextMessage
	if binary {
		messageType = websocket.BinaryMessage
	}
	return &Agent{
		id:          id,
		conn:        conn,
		messageType: messageType,
		logger:      logger.With(slog.String("agent", string(id))),
		closed:      make(chan struct{}),
	}
}

func (a *Agent) ID() model.AgentID {
	return a.id
}

// Attach sets where responses read from the connection are delivered
func (a *Agent) Attach(deliver DeliverFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.deliver = deliver
}

// Send writes one snapshot frame to the agent
func (a *Agent) Send(data []byte) error {
	select {
	case <-a.closed:
		return fmt.Errorf("sending to %s: %w", a.id, model.ErrAgentClosed)
	default:
	}

	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	if err := a.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		a.Close()
		return fmt.Errorf("sending to %s: %w: %w", a.id, model.ErrAgentClosed, err)
	}
	if err := a.conn.WriteMessage(a.messageType, data); err != nil {
		a.Close()
		return fmt.Errorf("sending to %s: %w: %w", a.id, model.ErrAgentClosed, err)
	}
	return nil
}

// Done is closed once the connection has been closed
func (a *Agent) Done() <-chan struct{} {
	return a.closed
}

// Close closes the connection. It is safe to call more than once.
func (a *Agent) Close() {
	a.closeOnce.Do(func() {
		close(a.closed)
		_ = a.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait),
		)
		a.conn.Close()
	})
}

// run keeps the connection alive and reads responses until it closes
func (a *Agent) run() {
	defer a.Close()
	go a.pingLoop()
	a.readPump()
}

func (a *Agent) readPump() {
	a.conn.SetReadLimit(maxMessageSize)
	_ = a.conn.SetReadDeadline(time.Now().Add(pongWait))
	a.conn.SetPongHandler(func(string) error {
		return a.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := a.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				a.logger.Warn("agent connection error", slog.String("error", err.Error()))
			}
			return
		}
		_ = a.conn.SetReadDeadline(time.Now().Add(pongWait))

		a.mu.Lock()
		deliver := a.deliver
		a.mu.Unlock()
		if deliver == nil {
			a.logger.Warn("response received before match start", slog.Int("bytes", len(payload)))
			continue
		}

		if err := deliver(a.id, payload); err != nil {
			if errors.Is(err, model.ErrMatchEnded) {
				return
			}
			a.logger.Warn("failed to deliver response", slog.String("error", err.Error()))
		}
	}
}

func (a *Agent) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := a.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				a.logger.Debug("ping failed", slog.String("error", err.Error()))
				a.Close()
				return
			}
		case <-a.closed:
			return
		}
	}
}
