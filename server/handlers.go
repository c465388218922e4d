package server

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/wfunc/tugofwar/lobby"
	"github.com/wfunc/tugofwar/logger"
	"github.com/wfunc/tugofwar/network"
	"github.com/wfunc/tugofwar/session"
)

type joinRequest struct {
	Name string    `json:"name"`
	Code lobbyCode `json:"code"`
}

// lobbyCode accepts the code as a JSON string or number.
type lobbyCode string

func (c *lobbyCode) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = lobbyCode(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = lobbyCode(n.String())
	return nil
}

// decodeName reads a player name sent either as a bare string or as
// {"name": ...}.
func decodeName(data json.RawMessage) string {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		return strings.TrimSpace(name)
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &req); err == nil {
		return strings.TrimSpace(req.Name)
	}
	return string(bytes.TrimSpace(data))
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	start := time.Now()
	sess.Touch()
	s.monitor.IncMessagesReceived()
	defer func() { s.monitor.ObserveMessageLatency(time.Since(start)) }()

	switch packet.Event {
	case network.EventCreateLobby:
		s.handleCreateLobby(sess, packet)
	case network.EventJoinLobby:
		s.handleJoinLobby(sess, packet)
	case network.EventSubmitAnswer:
		s.handleSubmitAnswer(sess, packet)
	default:
		logger.Log.Infof("Unknown event %q from session %s", packet.Event, sess.GetID())
	}
}

// leaveCurrent takes the session out of its lobby, if any.
func (s *GameServer) leaveCurrent(sess *session.Session) {
	if code := sess.RoomID(); code != "" {
		s.lobbies.RemovePlayer(code, sess.GetID())
		sess.SetRoomID("")
	}
}

func (s *GameServer) handleCreateLobby(sess *session.Session, packet *network.Packet) {
	name := decodeName(packet.Data)
	s.leaveCurrent(sess)

	code, _, err := s.lobbies.Create(sess.GetID(), name)
	if err != nil {
		logger.Log.Warnf("Session %s could not create a lobby: %v", sess.GetID(), err)
		s.sendNotice(sess, network.EventError, err, name)
		return
	}
	sess.SetRoomID(code)
}

func (s *GameServer) handleJoinLobby(sess *session.Session, packet *network.Packet) {
	var req joinRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		logger.Log.Warnf("Session %s sent a bad join request: %v", sess.GetID(), err)
		s.sendNotice(sess, network.EventError, lobby.ErrLobbyNotFound, "")
		return
	}
	code := string(req.Code)
	if code != "" && code == sess.RoomID() {
		return
	}

	name := strings.TrimSpace(req.Name)
	s.leaveCurrent(sess)

	if _, err := s.lobbies.Join(code, sess.GetID(), name); err != nil {
		logger.Log.Infof("Session %s join %s rejected: %v", sess.GetID(), code, err)
		s.sendNotice(sess, network.EventError, err, name)
		return
	}
	sess.SetRoomID(code)
}

func (s *GameServer) handleSubmitAnswer(sess *session.Session, packet *network.Packet) {
	player, err := s.lobbies.SubmitAnswer(sess.RoomID(), sess.GetID(), packet.Data)
	if err != nil {
		s.sendNotice(sess, network.EventMessage, err, player.Name)
	}
}

func (s *GameServer) sendNotice(sess *session.Session, event string, err error, name string) {
	text, ok := lobby.Notice(err, name)
	if !ok {
		return
	}
	if sendErr := sess.Send(event, text); sendErr != nil {
		logger.Log.Debugf("Session %s: notice dropped: %v", sess.GetID(), sendErr)
	}
}
