package session

import (
	"net"
	"testing"
	"time"

	"github.com/wfunc/tugofwar/network"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct {
	sent   []string
	closed bool
}

func (m *MockConnection) Send(event string, payload interface{}) error {
	m.sent = append(m.sent, event)
	return nil
}
func (m *MockConnection) Close() error                         { m.closed = true; return nil }
func (m *MockConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration)  {}
func (m *MockConnection) ReadPacket() (*network.Packet, error) { return nil, nil }

func TestNewManager(t *testing.T) {
	manager := NewManager()
	if manager == nil {
		t.Fatal("NewManager should not return nil")
	}
	if manager.sessions == nil {
		t.Fatal("NewManager should initialize the sessions map")
	}
}

func TestManager_Add_Get_Remove(t *testing.T) {
	manager := NewManager()
	sessionID := "test_session_1"
	sess := NewSession(sessionID, &MockConnection{})

	manager.Add(sess)
	if manager.Count() != 1 {
		t.Fatalf("Expected session count to be 1, got %d", manager.Count())
	}

	retrievedSess, exists := manager.Get(sessionID)
	if !exists {
		t.Fatal("Get should find the added session")
	}
	if retrievedSess != sess {
		t.Fatal("Get should return the same session instance")
	}

	manager.Remove(sessionID)
	if manager.Count() != 0 {
		t.Fatalf("Expected session count to be 0 after removal, got %d", manager.Count())
	}

	if _, exists = manager.Get(sessionID); exists {
		t.Fatal("Get should not find the removed session")
	}
}

func TestSession_RoomID(t *testing.T) {
	sess := NewSession("s1", &MockConnection{})
	if sess.RoomID() != "" {
		t.Fatalf("A new session should not belong to a room, got %q", sess.RoomID())
	}

	sess.SetRoomID("1234")
	if sess.RoomID() != "1234" {
		t.Errorf("Expected room 1234, got %q", sess.RoomID())
	}

	sess.SetRoomID("")
	if sess.RoomID() != "" {
		t.Errorf("Expected room to be cleared, got %q", sess.RoomID())
	}
}

func TestSession_SendTouches(t *testing.T) {
	conn := &MockConnection{}
	sess := NewSession("s1", conn)
	before := sess.LastActive()

	time.Sleep(2 * time.Millisecond)
	if err := sess.Send(network.EventRequestName, nil); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if !sess.LastActive().After(before) {
		t.Error("Send should refresh LastActive")
	}
	if len(conn.sent) != 1 || conn.sent[0] != network.EventRequestName {
		t.Errorf("Unexpected sent events %v", conn.sent)
	}
}

func TestManager_CloseAll(t *testing.T) {
	manager := NewManager()
	c1, c2 := &MockConnection{}, &MockConnection{}
	manager.Add(NewSession("a", c1))
	manager.Add(NewSession("b", c2))

	manager.CloseAll()

	if !c1.closed || !c2.closed {
		t.Error("CloseAll should close every connection")
	}
}
