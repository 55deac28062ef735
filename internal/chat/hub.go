// Package chat implements group chat: per-group history plus live fan-out
// to websocket clients through a single hub goroutine.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"ROAMMATE_BACK-END/internal/models"
)

const (
	pingInterval   = 30 * time.Second
	pongWait       = 60 * time.Second
	writeWait      = 10 * time.Second
	maxMessageSize = 8192
	sendBuffer     = 64
	MaxTextLength  = 2000
)

var (
	ErrEmptyMessage   = errors.New("message text is empty")
	ErrMessageTooLong = errors.New("message text is too long")
)

// Sender identifies the author of a message.
type Sender struct {
	UserID    string
	Name      string
	AvatarURL string
}

// Recorder receives chat activity counts. Implemented by metrics.Metrics.
type Recorder interface {
	RecordChatMessage()
	ChatClientDelta(n int)
}

// Frame is the JSON envelope written to websocket clients.
type Frame struct {
	Type string             `json:"type"`
	Data models.ChatMessage `json:"data"`
}

type client struct {
	id      string
	groupID string
	sender  Sender
	conn    *websocket.Conn
	send    chan []byte
	hub     *Hub
}

type outbound struct {
	groupID string
	payload []byte
}

// Hub owns the room map. Only Run touches rooms.
type Hub struct {
	history    *History
	rooms      map[string]map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan outbound
	done       chan struct{}
	rec        Recorder
	log        *zap.Logger
	now        func() time.Time
	upgrader   websocket.Upgrader
}

func NewHub(history *History, rec Recorder, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		history:    history,
		rooms:      make(map[string]map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan outbound, 256),
		done:       make(chan struct{}),
		rec:        rec,
		log:        log,
		now:        time.Now,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origins are enforced by the CORS layer in front of the API.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Run serves the hub until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, room := range h.rooms {
				for c := range room {
					h.drop(c)
				}
			}
			h.log.Info("chat hub stopped")
			return

		case c := <-h.register:
			room, ok := h.rooms[c.groupID]
			if !ok {
				room = make(map[*client]struct{})
				h.rooms[c.groupID] = room
			}
			room[c] = struct{}{}
			h.clientDelta(1)
			h.log.Debug("chat client registered", zap.String("client_id", c.id), zap.String("group_id", c.groupID), zap.String("user_id", c.sender.UserID))

		case c := <-h.unregister:
			if _, ok := h.rooms[c.groupID][c]; ok {
				h.drop(c)
				h.log.Debug("chat client unregistered", zap.String("client_id", c.id))
			}

		case msg := <-h.broadcast:
			for c := range h.rooms[msg.groupID] {
				select {
				case c.send <- msg.payload:
				default:
					h.log.Warn("chat client too slow, disconnecting", zap.String("client_id", c.id))
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	room := h.rooms[c.groupID]
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, c.groupID)
	}
	close(c.send)
	h.clientDelta(-1)
}

func (h *Hub) clientDelta(n int) {
	if h.rec != nil {
		h.rec.ChatClientDelta(n)
	}
}

// History returns the group's stored messages oldest first.
func (h *Hub) History(groupID string) []models.ChatMessage {
	return h.history.List(groupID)
}

// Post stores a message and fans it out to the group's connected clients.
func (h *Hub) Post(ctx context.Context, groupID string, from Sender, text string) (models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.ChatMessage{}, ErrEmptyMessage
	}
	if len([]rune(text)) > MaxTextLength {
		return models.ChatMessage{}, ErrMessageTooLong
	}

	msg := models.ChatMessage{
		ID:              ulid.Make().String(),
		GroupID:         groupID,
		SenderID:        from.UserID,
		SenderName:      from.Name,
		SenderAvatarURL: from.AvatarURL,
		Text:            text,
		Timestamp:       h.now().UTC(),
	}
	h.history.Append(msg)
	if h.rec != nil {
		h.rec.RecordChatMessage()
	}

	payload, err := json.Marshal(Frame{Type: "message", Data: msg})
	if err != nil {
		return msg, err
	}
	select {
	case h.broadcast <- outbound{groupID: groupID, payload: payload}:
	case <-h.done:
		// stored but nobody is listening live
	case <-ctx.Done():
		return msg, ctx.Err()
	}
	return msg, nil
}

// ServeWS upgrades the request and joins the caller to the group's room.
// Authentication happens before this is called.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, groupID string, from Sender) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("chat websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		id:      ulid.Make().String(),
		groupID: groupID,
		sender:  from,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		hub:     h,
	}

	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// readPump turns inbound frames into posts. Each frame is {"text": "..."}.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("chat websocket read error", zap.String("client_id", c.id), zap.Error(err))
			}
			return
		}

		var in struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(data, &in); err != nil {
			c.hub.log.Debug("chat frame ignored", zap.String("client_id", c.id), zap.Error(err))
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		if _, err := c.hub.Post(ctx, c.groupID, c.sender, in.Text); err != nil && !errors.Is(err, ErrEmptyMessage) {
			c.hub.log.Debug("chat post rejected", zap.String("client_id", c.id), zap.Error(err))
		}
		cancel()
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
