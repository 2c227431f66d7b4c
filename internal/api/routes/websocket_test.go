package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"port-ops-api-server/internal/models"
	"port-ops-api-server/internal/services"
	"port-ops-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func wsURL(srv *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws?token=" + token
}

func waitForClients(t *testing.T, hub *socket.Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d websocket clients got %d", want, hub.Count())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWebSocketRequiresValidToken(t *testing.T) {
	ts := newTestServer(t)
	expect(t, ts.do(http.MethodGet, "/api/ws", "", nil), http.StatusUnauthorized)
	expect(t, ts.do(http.MethodGet, "/api/ws?token=nope", "", nil), http.StatusUnauthorized)
}

func TestWebSocketRejectsForeignOrigin(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.router)
	defer srv.Close()

	header := http.Header{"Origin": {"http://evil.example"}}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, ts.user), header)
	if err == nil {
		conn.Close()
		t.Fatal("dial from a foreign origin should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 response, got %+v", resp)
	}
	if ts.hub.Count() != 0 {
		t.Fatalf("rejected client was registered")
	}
}

func TestWebSocketReceivesContainerMoves(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.router)
	defer srv.Close()

	header := http.Header{"Origin": {"http://localhost:4200"}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, ts.user), header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	waitForClients(t, ts.hub, 1)

	var n models.Navire
	decode(t, ts.do(http.MethodPost, "/api/navires", ts.admin, gin.H{"nom": "A", "matricule": "M1"}), &n)
	var c models.Conteneure
	decode(t, ts.do(http.MethodPost, "/api/conteneures", ts.admin, gin.H{"nom": "X"}), &c)
	expect(t, ts.do(http.MethodPost, "/api/conteneures/"+c.ID+"/assign/"+n.ID, ts.admin, nil), http.StatusOK)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg struct {
		Event   string            `json:"event"`
		Payload services.Movement `json:"payload"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	if msg.Event != services.EventConteneureMoved || msg.Payload.Conteneure.ID != c.ID {
		t.Fatalf("unexpected message %s", data)
	}

	conn.Close()
	waitForClients(t, ts.hub, 0)
}
