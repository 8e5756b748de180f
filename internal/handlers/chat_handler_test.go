package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/nano-social/backend/internal/chat"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type sentMessage struct {
	from, to uint
	body     string
}

type stubChat struct {
	sent chan sentMessage
}

func (s stubChat) Send(_ context.Context, senderID, receiverID uint, body string) (*models.Message, error) {
	if receiverID == 99 {
		return nil, models.ErrUserNotFound
	}
	s.sent <- sentMessage{senderID, receiverID, body}
	return &models.Message{SenderID: senderID, ReceiverID: receiverID, Body: body}, nil
}

func (s stubChat) History(context.Context, uint, uint, int64) ([]models.Message, error) {
	return []models.Message{}, nil
}

func dialChat(t *testing.T, registry *chat.Registry, svc ChatService) *websocket.Conn {
	t.Helper()
	e := newTestServer(1, NewChatHandler(svc, registry, zap.NewNop()).RegisterChatRoutes)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/chat/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := registry.Lookup(1); ok {
			return conn
		}
		if time.Now().After(deadline) {
			t.Fatal("session was not registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readEnvelope(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var env map[string]interface{}
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("decode %q: %v", data, err)
	}
	return env
}

func TestChatSocketDeliversAndSends(t *testing.T) {
	registry := chat.NewRegistry(nil, zap.NewNop())
	defer registry.Close()
	svc := stubChat{sent: make(chan sentMessage, 1)}
	conn := dialChat(t, registry, svc)

	if !registry.Deliver(context.Background(), 1, []byte(`{"type":"message","data":{"body":"hello"}}`)) {
		t.Fatal("delivery to a live session failed")
	}
	if env := readEnvelope(t, conn); env["type"] != "message" {
		t.Fatalf("unexpected frame %v", env)
	}

	if err := conn.WriteJSON(models.SendMessageRequest{To: 2, Body: "hi"}); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-svc.sent:
		if got != (sentMessage{1, 2, "hi"}) {
			t.Fatalf("sent %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("frame was not forwarded to the chat service")
	}
}

func TestChatSocketRepliesWithErrors(t *testing.T) {
	registry := chat.NewRegistry(nil, zap.NewNop())
	defer registry.Close()
	conn := dialChat(t, registry, stubChat{sent: make(chan sentMessage, 1)})

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"to":0}`)); err != nil {
		t.Fatal(err)
	}
	env := readEnvelope(t, conn)
	data, _ := env["data"].(map[string]interface{})
	if env["type"] != "error" || data["message"] != "Invalid message frame" {
		t.Fatalf("unexpected frame %v", env)
	}

	if err := conn.WriteJSON(models.SendMessageRequest{To: 99, Body: "hi"}); err != nil {
		t.Fatal(err)
	}
	env = readEnvelope(t, conn)
	data, _ = env["data"].(map[string]interface{})
	if data["message"] != models.ErrUserNotFound.Message {
		t.Fatalf("unexpected frame %v", env)
	}
}

func TestChatSocketClosedByNewerSession(t *testing.T) {
	registry := chat.NewRegistry(nil, zap.NewNop())
	defer registry.Close()
	conn := dialChat(t, registry, stubChat{sent: make(chan sentMessage, 1)})

	registry.Register(1)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNoStatusReceived) {
		t.Fatalf("expected close frame, got %v", err)
	}
}

func TestChatSocketUnregistersWhenClientLeaves(t *testing.T) {
	registry := chat.NewRegistry(nil, zap.NewNop())
	defer registry.Close()
	conn := dialChat(t, registry, stubChat{sent: make(chan sentMessage, 1)})

	conn.Close()

	deadline := time.Now().Add(time.Second)
	for {
		if _, ok := registry.Lookup(1); !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("session still registered after the client disconnected")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if registry.Deliver(context.Background(), 1, []byte(`{"type":"message"}`)) {
		t.Fatal("delivery to a departed client reported success")
	}
}
