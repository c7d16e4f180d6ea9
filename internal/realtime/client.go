package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-notify-api/internal/application/delivery"
	notificationapp "github.com/go-notify-api/internal/application/notification"
	"github.com/go-notify-api/internal/domain"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameSize   = 4096
	sendBufferSize = 32
)

// Client wraps one websocket connection. Outbound frames go through the
// buffered send channel so broadcasts never block on a slow socket. send is
// never closed — a concurrent broadcast may still hold a reference after
// teardown — so writePump exits via done instead.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

// Handler upgrades HTTP requests to websocket connections and drives the
// channel protocol. It is the channel half of the dual-path gateway: every
// event ends up in the same delivery/store services the REST path uses.
type Handler struct {
	registry      *Registry
	verifier      Verifier
	delivery      delivery.Service
	notifications notificationapp.Service
	upgrader      websocket.Upgrader
}

func NewHandler(registry *Registry, verifier Verifier, deliverySvc delivery.Service, notifications notificationapp.Service, allowedOrigins []string) *Handler {
	return &Handler{
		registry:      registry,
		verifier:      verifier,
		delivery:      deliverySvc,
		notifications: notifications,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		_, ok := set[r.Header.Get("Origin")]
		return ok
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "err", err)
		return
	}
	c := newClient(conn)
	slog.Info("client connected", "remote", conn.RemoteAddr())

	go c.writePump()
	h.readPump(c)
}

// readPump reads and dispatches inbound frames until the connection drops,
// then tears down the client's registry binding.
func (h *Handler) readPump(c *Client) {
	defer func() {
		h.registry.Unregister(c)
		close(c.done)
		_ = c.conn.Close()
		slog.Info("client disconnected", "remote", c.conn.RemoteAddr())
	}()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read error", "err", err)
			}
			return
		}
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			slog.Warn("malformed frame", "err", err)
			continue
		}
		h.dispatch(c, ev)
	}
}

// dispatch handles one inbound event. The channel protocol is fire-and-forget:
// failures are logged, never replied to. Store-bound events run on their own
// goroutine so persistence I/O never stalls the read loop.
func (h *Handler) dispatch(c *Client, ev Event) {
	switch ev.Event {
	case EventRegister:
		p, err := parseRegister(ev.Data)
		if err != nil || p.UserID == "" {
			slog.Warn("invalid register payload", "err", err)
			return
		}
		if err := h.verifier.Verify(p.UserID, p.Token); err != nil {
			slog.Warn("register rejected", "user_id", p.UserID, "err", err)
			return
		}
		h.registry.Register(c, p.UserID)
		slog.Info("registered", "user_id", p.UserID)

	case EventSendNotification:
		var req domain.CreateNotificationRequest
		if err := json.Unmarshal(ev.Data, &req); err != nil {
			slog.Warn("invalid send-notification payload", "err", err)
			return
		}
		go func() {
			if _, err := h.delivery.Send(context.Background(), req); err != nil {
				slog.Error("send-notification failed", "user_id", req.UserID, "err", err)
			}
		}()

	case EventMarkRead:
		var notificationID string
		if err := json.Unmarshal(ev.Data, &notificationID); err != nil {
			slog.Warn("invalid mark-read payload", "err", err)
			return
		}
		go func() {
			if _, err := h.notifications.MarkRead(context.Background(), notificationID); err != nil {
				slog.Error("mark-read failed", "notification_id", notificationID, "err", err)
			}
		}()

	default:
		slog.Warn("unknown event", "event", ev.Event)
	}
}

// writePump drains the send queue onto the socket and keeps the connection
// alive with pings. It exits when readPump signals done.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
