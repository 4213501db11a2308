package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestStatusHubClientCountStartsAtZero(t *testing.T) {
	h := NewStatusHub()
	if h.ClientCount() != 0 {
		t.Fatalf("expected a fresh hub to have zero clients, got %d", h.ClientCount())
	}
}

func TestStatusHubBroadcastToConnectedClient(t *testing.T) {
	h := NewStatusHub()
	go h.Run()

	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	dialer := websocket.Dialer{}
	header := http.Header{}
	header.Set("Origin", "http://localhost:3000")
	conn, _, err := dialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if h.ClientCount() != 1 {
		t.Fatalf("expected exactly one registered client, got %d", h.ClientCount())
	}

	h.Broadcast("generation", map[string]int{"gen": 3})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if !strings.Contains(string(msg), `"event":"generation"`) {
		t.Fatalf("expected the broadcast envelope to carry the event name, got %s", msg)
	}
}

func TestStatusHubRejectsDisallowedOrigin(t *testing.T) {
	h := NewStatusHub()
	go h.Run()

	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	dialer := websocket.Dialer{}
	header := http.Header{}
	header.Set("Origin", "http://evil.example.com")
	_, resp, err := dialer.Dial(wsURL, header)
	if err == nil {
		t.Fatal("expected the dial to fail for a disallowed origin")
	}
	if resp != nil && resp.StatusCode == http.StatusSwitchingProtocols {
		t.Fatal("expected the upgrade to be rejected, not switched")
	}
}
