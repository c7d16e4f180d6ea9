package realtime

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-notify-api/internal/application/delivery"
	notificationapp "github.com/go-notify-api/internal/application/notification"
	"github.com/go-notify-api/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory notification store for channel round-trip tests.
type memStore struct {
	mu    sync.Mutex
	items map[string]*domain.Notification
}

func newMemStore() *memStore {
	return &memStore{items: make(map[string]*domain.Notification)}
}

func (s *memStore) Put(_ context.Context, n *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *n
	s.items[n.NotificationID] = &cp
	return nil
}

func (s *memStore) ListByUser(_ context.Context, userID string) ([]domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Notification
	for _, n := range s.items {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (s *memStore) MarkRead(_ context.Context, id string) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	n.Read = true
	cp := *n
	return &cp, nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *memStore) get(id string) *domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.items[id]; ok {
		cp := *n
		return &cp
	}
	return nil
}

// --- helpers ---

type channelFixture struct {
	registry *Registry
	store    *memStore
	server   *httptest.Server
}

func newChannelFixture(t *testing.T) *channelFixture {
	t.Helper()
	registry := NewRegistry()
	store := newMemStore()
	notifSvc := notificationapp.NewService(store)
	deliverySvc := delivery.NewService(notifSvc, registry, nil)
	h := NewHandler(registry, AllowAll{}, deliverySvc, notifSvc, []string{"*"})

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &channelFixture{registry: registry, store: store, server: srv}
}

func (f *channelFixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func writeFrame(t *testing.T, conn *websocket.Conn, event string, data interface{}) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Event{Event: event, Data: raw}))
}

func readFrame(t *testing.T, conn *websocket.Conn, timeout time.Duration) (Event, bool) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(timeout)))
	var ev Event
	if err := conn.ReadJSON(&ev); err != nil {
		return Event{}, false
	}
	return ev, true
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

// --- tests ---

func TestChannel_RegisterAndReceivePush(t *testing.T) {
	f := newChannelFixture(t)
	conn := f.dial(t)

	writeFrame(t, conn, EventRegister, "alice")
	waitFor(t, func() bool { return f.registry.Members("alice") == 1 }, "register never landed")

	writeFrame(t, conn, EventSendNotification, domain.CreateNotificationRequest{
		Title: "Order shipped", Message: "Your order #42 has shipped", UserID: "alice",
	})

	ev, ok := readFrame(t, conn, 3*time.Second)
	require.True(t, ok, "no push received")
	assert.Equal(t, EventNotification, ev.Event)

	var n domain.Notification
	require.NoError(t, json.Unmarshal(ev.Data, &n))
	assert.NotEmpty(t, n.NotificationID)
	assert.Equal(t, "Order shipped", n.Title)
	assert.Equal(t, "alice", n.UserID)
	assert.False(t, n.Read)

	// the pushed record is also durably stored
	stored := f.store.get(n.NotificationID)
	require.NotNil(t, stored)
	assert.Equal(t, n.NotificationID, stored.NotificationID)
}

func TestChannel_GroupIsolation(t *testing.T) {
	f := newChannelFixture(t)
	connA := f.dial(t)
	connB := f.dial(t)

	writeFrame(t, connA, EventRegister, "u1")
	writeFrame(t, connB, EventRegister, "u2")
	waitFor(t, func() bool {
		return f.registry.Members("u1") == 1 && f.registry.Members("u2") == 1
	}, "registrations never landed")

	writeFrame(t, connA, EventSendNotification, domain.CreateNotificationRequest{
		Title: "t", Message: "m", UserID: "u1",
	})

	_, ok := readFrame(t, connA, 3*time.Second)
	assert.True(t, ok, "u1 member should receive the push")

	_, ok = readFrame(t, connB, 300*time.Millisecond)
	assert.False(t, ok, "u2 member must not receive u1 traffic")
}

func TestChannel_SendToOfflineAddressStillPersists(t *testing.T) {
	f := newChannelFixture(t)
	conn := f.dial(t)

	// sender is registered to its own address; the target has no connections
	writeFrame(t, conn, EventRegister, "sender")
	waitFor(t, func() bool { return f.registry.Members("sender") == 1 }, "register never landed")

	writeFrame(t, conn, EventSendNotification, domain.CreateNotificationRequest{
		Title: "t", Message: "m", UserID: "ghost",
	})

	waitFor(t, func() bool {
		ns, _ := f.store.ListByUser(context.Background(), "ghost")
		return len(ns) == 1
	}, "notification for offline address never persisted")
}

func TestChannel_MarkRead(t *testing.T) {
	f := newChannelFixture(t)
	conn := f.dial(t)

	n := &domain.Notification{NotificationID: "n1", Title: "t", Message: "m", UserID: "alice"}
	require.NoError(t, f.store.Put(context.Background(), n))

	writeFrame(t, conn, EventMarkRead, "n1")
	waitFor(t, func() bool { return f.store.get("n1").Read }, "mark-read never landed")

	// no reply and no broadcast for mark-read
	_, ok := readFrame(t, conn, 300*time.Millisecond)
	assert.False(t, ok)
}

func TestChannel_DisconnectUnregisters(t *testing.T) {
	f := newChannelFixture(t)
	conn := f.dial(t)

	writeFrame(t, conn, EventRegister, "alice")
	waitFor(t, func() bool { return f.registry.Members("alice") == 1 }, "register never landed")

	require.NoError(t, conn.Close())
	waitFor(t, func() bool { return f.registry.Members("alice") == 0 }, "disconnect never unregistered")
}

func TestChannel_InvalidFramesAreIgnored(t *testing.T) {
	f := newChannelFixture(t)
	conn := f.dial(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"bogus","data":null}`)))

	// connection survives malformed input
	writeFrame(t, conn, EventRegister, "alice")
	waitFor(t, func() bool { return f.registry.Members("alice") == 1 }, "register never landed")
}

func TestChannel_SendFailureIsSwallowed(t *testing.T) {
	f := newChannelFixture(t)
	conn := f.dial(t)

	writeFrame(t, conn, EventRegister, "alice")
	waitFor(t, func() bool { return f.registry.Members("alice") == 1 }, "register never landed")

	// missing fields: validation fails server-side, no reply of any kind,
	// and the channel stays usable afterwards
	writeFrame(t, conn, EventSendNotification, map[string]string{"title": "only-title"})
	writeFrame(t, conn, EventSendNotification, domain.CreateNotificationRequest{
		Title: "valid", Message: "m", UserID: "alice",
	})

	ev, ok := readFrame(t, conn, 3*time.Second)
	require.True(t, ok)
	assert.Equal(t, EventNotification, ev.Event)

	var n domain.Notification
	require.NoError(t, json.Unmarshal(ev.Data, &n))
	assert.Equal(t, "valid", n.Title)

	// only the valid submission was persisted
	ns, err := f.store.ListByUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, ns, 1)
}

func TestOriginChecker(t *testing.T) {
	anyOrigin := originChecker([]string{"*"})
	restricted := originChecker([]string{"https://app.example.com"})

	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	assert.True(t, anyOrigin(req))
	assert.False(t, restricted(req))

	req.Header.Set("Origin", "https://app.example.com")
	assert.True(t, restricted(req))
}
