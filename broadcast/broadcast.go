// broadcast/broadcast.go
package broadcast

import (
	"errors"
	"sync"

	"github.com/wfunc/tugofwar/logger"
	"github.com/wfunc/tugofwar/session"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrSessionNotFound = errors.New("session not found")
)

// 广播接口
type Broadcaster interface {
	Join(roomID, sessionID string)
	Leave(roomID, sessionID string)
	BroadcastToRoom(roomID string, event string, payload interface{}) error
	SendToSession(sessionID string, event string, payload interface{}) error
}

// RoomBroadcaster keeps room membership (room code -> session ids) and
// delivers events through the session manager. Delivery is fire-and-forget:
// a failed send to one member never stops the others.
type RoomBroadcaster struct {
	sessionManager *session.Manager
	members        map[string]map[string]struct{}
	mutex          sync.RWMutex
}

func NewRoomBroadcaster(sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		sessionManager: sessionManager,
		members:        make(map[string]map[string]struct{}),
	}
}

func (b *RoomBroadcaster) Join(roomID, sessionID string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	room, exists := b.members[roomID]
	if !exists {
		room = make(map[string]struct{})
		b.members[roomID] = room
	}
	room[sessionID] = struct{}{}
}

func (b *RoomBroadcaster) Leave(roomID, sessionID string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	room, exists := b.members[roomID]
	if !exists {
		return
	}
	delete(room, sessionID)
	if len(room) == 0 {
		delete(b.members, roomID)
	}
}

// Members returns the session ids currently subscribed to roomID.
func (b *RoomBroadcaster) Members(roomID string) []string {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	ids := make([]string, 0, len(b.members[roomID]))
	for id := range b.members[roomID] {
		ids = append(ids, id)
	}
	return ids
}

func (b *RoomBroadcaster) BroadcastToRoom(roomID string, event string, payload interface{}) error {
	ids := b.Members(roomID)
	if len(ids) == 0 {
		return ErrRoomNotFound
	}

	for _, id := range ids {
		if err := b.SendToSession(id, event, payload); err != nil {
			logger.Log.Debugf("Broadcast %s to session %s in room %s failed: %v", event, id, roomID, err)
			continue
		}
	}
	return nil
}

func (b *RoomBroadcaster) SendToSession(sessionID string, event string, payload interface{}) error {
	s, exists := b.sessionManager.Get(sessionID)
	if !exists {
		return ErrSessionNotFound
	}
	return s.Send(event, payload)
}
