package gateway_test

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gobwas/ws"
	"github.com/gorilla/websocket" // Using Gorilla for the test CLIENT
	"go.uber.org/zap"

	"github.com/shubham-shewale/trade-sim/internal/gateway"
	"github.com/shubham-shewale/trade-sim/internal/hub"
	"github.com/shubham-shewale/trade-sim/internal/testutil"
)

func startServer(t *testing.T) (*httptest.Server, *hub.Hub) {
	t.Helper()
	wsHub := hub.NewHub(testutil.NewMockWarmer(), zap.NewNop())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			return
		}
		client := gateway.NewClient(conn, wsHub, zap.NewNop())
		client.Start()
	}))
	t.Cleanup(server.Close)
	return server, wsHub
}

func connectWS(t *testing.T, serverURL string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(serverURL, "http")
	wsConn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to connect to websocket: %v", err)
	}
	return wsConn
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting: %s", msg)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestGateway_SubscribeNormalizesSymbols(t *testing.T) {
	server, wsHub := startServer(t)
	wsConn := connectWS(t, server.URL)
	defer wsConn.Close()

	msg := `{"action":"subscribe","symbols":["tcs","infy"]}`
	if err := wsConn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("write: %v", err)
	}

	waitFor(t, func() bool {
		return reflect.DeepEqual(wsHub.ActiveSymbols(), []string{"INFY", "TCS"})
	}, "registry to contain INFY and TCS")
}

func TestGateway_UnsubscribeRemovesSymbols(t *testing.T) {
	server, wsHub := startServer(t)
	wsConn := connectWS(t, server.URL)
	defer wsConn.Close()

	wsConn.WriteMessage(websocket.TextMessage, []byte(`{"action":"subscribe","symbols":["TCS","INFY"]}`))
	waitFor(t, func() bool { return len(wsHub.ActiveSymbols()) == 2 }, "subscribe to apply")

	wsConn.WriteMessage(websocket.TextMessage, []byte(`{"action":"unsubscribe","symbols":["TCS"]}`))
	waitFor(t, func() bool {
		return reflect.DeepEqual(wsHub.ActiveSymbols(), []string{"INFY"})
	}, "unsubscribe to apply")
}

func TestGateway_InvalidJSONKeepsConnectionOpen(t *testing.T) {
	server, wsHub := startServer(t)
	wsConn := connectWS(t, server.URL)
	defer wsConn.Close()

	wsConn.WriteMessage(websocket.TextMessage, []byte(`{"action": "subsc`))

	wsConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := wsConn.ReadMessage()
	if err != nil {
		t.Fatalf("expected error reply, got read error: %v", err)
	}
	if !strings.Contains(string(msg), "Invalid message format") {
		t.Errorf("reply = %s", msg)
	}

	// Connection survives the bad message.
	wsConn.WriteMessage(websocket.TextMessage, []byte(`{"action":"subscribe","symbols":["TCS"]}`))
	waitFor(t, func() bool { return len(wsHub.ActiveSymbols()) == 1 }, "subscribe after bad message")
}

func TestGateway_MissingSymbolsIsInvalidFormat(t *testing.T) {
	server, _ := startServer(t)
	wsConn := connectWS(t, server.URL)
	defer wsConn.Close()

	wsConn.WriteMessage(websocket.TextMessage, []byte(`{"action":"subscribe"}`))

	wsConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := wsConn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(msg), "Invalid message format") {
		t.Errorf("reply = %s", msg)
	}
}

func TestGateway_UnknownActionSilentlyIgnored(t *testing.T) {
	server, wsHub := startServer(t)
	wsConn := connectWS(t, server.URL)
	defer wsConn.Close()

	wsConn.WriteMessage(websocket.TextMessage, []byte(`{"action":"dance","symbols":["TCS"]}`))

	// No reply and no state change.
	wsConn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	if _, msg, err := wsConn.ReadMessage(); err == nil {
		t.Errorf("expected silence, got: %s", msg)
	}
	if len(wsHub.ActiveSymbols()) != 0 {
		t.Errorf("unknown action changed registry state: %v", wsHub.ActiveSymbols())
	}
}

func TestGateway_BroadcastReachesClient(t *testing.T) {
	server, wsHub := startServer(t)
	wsConn := connectWS(t, server.URL)
	defer wsConn.Close()

	waitFor(t, func() bool { return wsHub.ClientCount() == 1 }, "client to register")

	payload := `{"event":"price-update","ticks":[{"symbol":"TCS.NS","price":3500.12,"timestamp":1}]}`
	wsHub.BroadcastAll([]byte(payload))

	wsConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := wsConn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to receive broadcast: %v", err)
	}
	if string(msg) != payload {
		t.Errorf("broadcast = %s, want %s", msg, payload)
	}
}

func TestGateway_DisconnectCleansRegistry(t *testing.T) {
	server, wsHub := startServer(t)
	wsConn := connectWS(t, server.URL)

	wsConn.WriteMessage(websocket.TextMessage, []byte(`{"action":"subscribe","symbols":["TCS"]}`))
	waitFor(t, func() bool { return len(wsHub.ActiveSymbols()) == 1 }, "subscribe to apply")

	wsConn.Close()
	waitFor(t, func() bool { return wsHub.ClientCount() == 0 }, "unregister on disconnect")

	if got := wsHub.ActiveSymbols(); len(got) != 0 {
		t.Errorf("symbols survived disconnect: %v", got)
	}

	// Broadcasting after the disconnect must not panic or block.
	wsHub.BroadcastAll([]byte(`{"event":"price-update","ticks":[]}`))
}
