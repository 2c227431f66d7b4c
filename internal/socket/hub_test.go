package socket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// serveHub registers every upgraded connection under the email query parameter
// and keeps it open until the client disconnects.
func serveHub(t *testing.T, h *Hub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := h.Register(r.URL.Query().Get("email"), conn)
		defer func() {
			h.Unregister(client)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, email string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?email=" + email
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForCount(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Count() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients got %d", want, h.Count())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return msg
}

func TestPublishReachesEveryClient(t *testing.T) {
	h := NewHub()
	srv := serveHub(t, h)
	a := dial(t, srv, "admin@port.local")
	b := dial(t, srv, "user@port.local")
	waitForCount(t, h, 2)

	h.Publish("conteneure_moved", map[string]string{"id": "CTR-001"})

	for _, conn := range []*websocket.Conn{a, b} {
		msg := readMessage(t, conn)
		if msg.Event != "conteneure_moved" {
			t.Fatalf("unexpected event %q", msg.Event)
		}
		payload, ok := msg.Payload.(map[string]interface{})
		if !ok || payload["id"] != "CTR-001" {
			t.Fatalf("unexpected payload %#v", msg.Payload)
		}
	}
}

func TestSendTargetsOneUser(t *testing.T) {
	h := NewHub()
	srv := serveHub(t, h)
	tab1 := dial(t, srv, "user@port.local")
	tab2 := dial(t, srv, "user@port.local")
	other := dial(t, srv, "admin@port.local")
	waitForCount(t, h, 3)

	if err := h.Send("user@port.local", []byte(`{"event":"ping"}`)); err != nil {
		t.Fatalf("send: %v", err)
	}
	for _, conn := range []*websocket.Conn{tab1, tab2} {
		if msg := readMessage(t, conn); msg.Event != "ping" {
			t.Fatalf("unexpected event %q", msg.Event)
		}
	}

	other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := other.ReadMessage(); err == nil {
		t.Fatal("message leaked to another user")
	}

	if err := h.Send("ghost@port.local", []byte("{}")); err != nil {
		t.Fatalf("offline user should not be an error: %v", err)
	}
}

func TestDisconnectUnregisters(t *testing.T) {
	h := NewHub()
	srv := serveHub(t, h)
	conn := dial(t, srv, "user@port.local")
	waitForCount(t, h, 1)

	conn.Close()
	waitForCount(t, h, 0)
}
