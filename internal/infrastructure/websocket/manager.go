package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"balikin/pkg/errors"
	"balikin/pkg/logger"
)

// Client represents one authenticated WebSocket connection.
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	mu     sync.Mutex
	closed bool
}

// queue hands the payload to the send buffer. It reports false only when the
// buffer is full on a live connection; a closed client swallows the payload so
// delivery paths can never race the close.
func (c *Client) queue(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return true
	}
	select {
	case c.Send <- payload:
		return true
	default:
		return false
	}
}

// shutdown closes the send buffer exactly once, stopping WritePump.
func (c *Client) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// ChatGateway is the slice of the chat session manager the delivery layer
// needs for inbound events: join authorization and read-state transitions.
// It is bound once at startup, never looked up through global state.
type ChatGateway interface {
	IsParticipant(ctx context.Context, roomID, userID string) bool
	MarkRoomRead(ctx context.Context, roomID, readerID string) (int, error)
}

// Manager owns every active connection. Each client is implicitly subscribed
// to its private per-user channel; room channels are joined explicitly after
// an authorization check.
type Manager struct {
	clients         map[string]*Client
	roomSubscribers map[string]map[string]*Client
	Register        chan *Client
	Unregister      chan *Client
	handlers        map[string]eventHandler
	gateway         ChatGateway
	mutex           sync.RWMutex
}

// NewManager creates a new connection manager with its event dispatch table
// registered.
func NewManager() *Manager {
	m := &Manager{
		clients:         make(map[string]*Client),
		roomSubscribers: make(map[string]map[string]*Client),
		Register:        make(chan *Client),
		Unregister:      make(chan *Client),
	}
	m.handlers = map[string]eventHandler{
		EventPing:        m.handlePing,
		EventJoinRoom:    m.handleJoinRoom,
		EventLeaveRoom:   m.handleLeaveRoom,
		EventTypingStart: m.handleTyping,
		EventTypingStop:  m.handleTyping,
		EventMessageRead: m.handleMessageRead,
	}
	return m
}

// Bind wires the chat gateway. Must be called before the first connection is
// accepted.
func (m *Manager) Bind(gateway ChatGateway) {
	m.gateway = gateway
}

// Start runs the manager's register/unregister loop in a goroutine.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.addClient(client)

			case client := <-m.Unregister:
				m.removeClient(client)

			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *Manager) addClient(client *Client) {
	m.mutex.Lock()
	if existing, ok := m.clients[client.UserID]; ok && existing != client {
		// One live connection per user; the newer one wins.
		existing.shutdown()
		m.dropSubscriptionsLocked(existing)
	}
	m.clients[client.UserID] = client
	m.mutex.Unlock()
	logger.Debug("Client registered: %s", client.UserID)
}

func (m *Manager) removeClient(client *Client) {
	m.mutex.Lock()
	if current, ok := m.clients[client.UserID]; ok && current == client {
		delete(m.clients, client.UserID)
		client.shutdown()
		m.dropSubscriptionsLocked(client)
	}
	m.mutex.Unlock()
	logger.Debug("Client unregistered: %s", client.UserID)
}

func (m *Manager) dropSubscriptionsLocked(client *Client) {
	for roomID, subscribers := range m.roomSubscribers {
		if subscribers[client.UserID] == client {
			delete(subscribers, client.UserID)
			if len(subscribers) == 0 {
				delete(m.roomSubscribers, roomID)
			}
		}
	}
}

// SendToUser pushes an event to the user's private channel. The returned
// error is informational: callers log it and continue, they never fail their
// own operation on it.
func (m *Manager) SendToUser(userID string, event Event) error {
	m.mutex.RLock()
	client, ok := m.clients[userID]
	m.mutex.RUnlock()

	if !ok {
		return errors.NotFound("Connection for user "+userID, nil)
	}

	return m.push(client, event)
}

// BroadcastToRoom pushes an event to every subscriber of the room channel,
// skipping excludeUserID when non-empty.
func (m *Manager) BroadcastToRoom(roomID string, event Event, excludeUserID string) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal event %s for room %s: %v", event.Type, roomID, err)
		return
	}

	m.mutex.RLock()
	subscribers := make([]*Client, 0, len(m.roomSubscribers[roomID]))
	for userID, client := range m.roomSubscribers[roomID] {
		if userID == excludeUserID {
			continue
		}
		subscribers = append(subscribers, client)
	}
	m.mutex.RUnlock()

	for _, client := range subscribers {
		m.deliver(client, payload)
	}
}

// JoinRoom subscribes the user's connection to a room channel.
func (m *Manager) JoinRoom(roomID, userID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	client, ok := m.clients[userID]
	if !ok {
		return
	}
	if m.roomSubscribers[roomID] == nil {
		m.roomSubscribers[roomID] = make(map[string]*Client)
	}
	m.roomSubscribers[roomID][userID] = client
}

// LeaveRoom removes the user's subscription from a room channel.
func (m *Manager) LeaveRoom(roomID, userID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	subscribers, ok := m.roomSubscribers[roomID]
	if !ok {
		return
	}
	delete(subscribers, userID)
	if len(subscribers) == 0 {
		delete(m.roomSubscribers, roomID)
	}
}

// IsSubscribed reports whether the user currently has the room channel open.
func (m *Manager) IsSubscribed(roomID, userID string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	_, ok := m.roomSubscribers[roomID][userID]
	return ok
}

func (m *Manager) push(client *Client, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Internal("Failed to marshal event", err)
	}
	m.deliver(client, payload)
	return nil
}

// deliver hands the payload to the per-connection buffer. A full buffer means
// the consumer is too slow; it is disconnected rather than allowed to stall
// delivery to anyone else.
func (m *Manager) deliver(client *Client, payload []byte) {
	if client.queue(payload) {
		return
	}

	logger.Warn("Client %s send buffer full, dropping connection", client.UserID)
	m.mutex.Lock()
	if current, ok := m.clients[client.UserID]; ok && current == client {
		delete(m.clients, client.UserID)
		m.dropSubscriptionsLocked(client)
	}
	m.mutex.Unlock()
	client.shutdown()
}

// ReadPump reads events from the connection and hands them to the dispatcher.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, payload, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("Read error for client %s: %v", c.UserID, err)
			}
			break
		}

		m.dispatch(c, payload)
	}
}

// WritePump drains the send buffer onto the connection.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		payload, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logger.Warn("Write error for client %s: %v", c.UserID, err)
			return
		}
	}
}
