package network

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// newTestPair returns a server-side WSConnection and the raw client socket.
func newTestPair(t *testing.T) (*WSConnection, *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	serverConns := make(chan *WSConnection, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		serverConns <- NewWSConnection(conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	select {
	case c := <-serverConns:
		t.Cleanup(func() { c.Close() })
		return c, client
	case <-time.After(2 * time.Second):
		t.Fatal("server connection was not established")
		return nil, nil
	}
}

func readPacket(t *testing.T, client *websocket.Conn) *Packet {
	t.Helper()
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("client read failed: %v", err)
	}
	packet, err := DecodePacket(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	return packet
}

func TestWSConnection_SendPreservesOrder(t *testing.T) {
	conn, client := newTestPair(t)

	if err := conn.Send(EventPlayerInfo, map[string]string{"name": "B"}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if err := conn.Send(EventJoinSuccess, "1234"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if err := conn.Send(EventGameReset, nil); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	want := []string{EventPlayerInfo, EventJoinSuccess, EventGameReset}
	for _, event := range want {
		if got := readPacket(t, client); got.Event != event {
			t.Fatalf("Expected event %s, got %s", event, got.Event)
		}
	}
}

func TestWSConnection_ReadPacket(t *testing.T) {
	conn, client := newTestPair(t)

	frame := `{"event":"joinLobby","data":{"name":"B","code":"1234"}}`
	if err := client.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("client write failed: %v", err)
	}

	packet, err := conn.ReadPacket()
	if err != nil {
		t.Fatalf("ReadPacket failed: %v", err)
	}
	if packet.Event != EventJoinLobby {
		t.Errorf("Expected event %s, got %s", EventJoinLobby, packet.Event)
	}

	var req struct {
		Name string `json:"name"`
		Code string `json:"code"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		t.Fatalf("payload did not decode: %v", err)
	}
	if req.Name != "B" || req.Code != "1234" {
		t.Errorf("Unexpected payload %+v", req)
	}
}

func TestWSConnection_SendAfterClose(t *testing.T) {
	conn, _ := newTestPair(t)
	conn.Close()

	if err := conn.Send(EventMessage, "hi"); !errors.Is(err, ErrConnectionClosed) {
		t.Errorf("Expected ErrConnectionClosed, got %v", err)
	}
	// Closing twice must be harmless.
	conn.Close()
}

func TestDecodePacket_Malformed(t *testing.T) {
	for _, frame := range []string{"", "not json", `{"data":1}`, `[1,2]`} {
		if _, err := DecodePacket([]byte(frame)); !errors.Is(err, ErrMalformedPacket) {
			t.Errorf("Expected ErrMalformedPacket for %q, got %v", frame, err)
		}
	}
}

func TestEncodePacket_NilPayload(t *testing.T) {
	frame, err := EncodePacket(EventGameStarted, nil)
	if err != nil {
		t.Fatalf("EncodePacket failed: %v", err)
	}
	if string(frame) != `{"event":"gameStarted","data":null}` {
		t.Errorf("Unexpected frame %s", frame)
	}
}
