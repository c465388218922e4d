package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/tugofwar/lobby"
	"github.com/wfunc/tugofwar/logger"
	"github.com/wfunc/tugofwar/monitor"
	"github.com/wfunc/tugofwar/network"
	"github.com/wfunc/tugofwar/session"
)

const defaultHeartbeat = 30 * time.Second

// Options wires a GameServer. Lobbies, Sessions and Monitor are required.
type Options struct {
	Lobbies   *lobby.Store
	Sessions  *session.Manager
	Monitor   *monitor.Monitor
	Matches   MatchHistory
	Heartbeat time.Duration
}

type GameServer struct {
	addr         string
	upgrader     websocket.Upgrader
	lobbies      *lobby.Store
	sessions     *session.Manager
	monitor      *monitor.Monitor
	matches      MatchHistory
	heartbeat    time.Duration
	httpServer   *http.Server
	shutdownOnce sync.Once
	shutdownChan chan struct{}
}

func NewGameServer(addr string, opts Options) *GameServer {
	s := &GameServer{
		addr:         addr,
		lobbies:      opts.Lobbies,
		sessions:     opts.Sessions,
		monitor:      opts.Monitor,
		matches:      opts.Matches,
		heartbeat:    opts.Heartbeat,
		shutdownChan: make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}
	if s.heartbeat <= 0 {
		s.heartbeat = defaultHeartbeat
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start blocks serving HTTP until Shutdown.
func (s *GameServer) Start() error {
	logger.Log.Infof("Game server listening on %s", s.addr)
	if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections, closes every live websocket and
// cancels all lobby timers.
func (s *GameServer) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() { close(s.shutdownChan) })
	err := s.httpServer.Shutdown(ctx)
	s.sessions.CloseAll()
	s.lobbies.CloseAll()
	return err
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(network.NewWSConnection(conn))
}

func (s *GameServer) handleConnection(conn network.Connection) {
	sess := s.openSession(conn)
	defer s.closeSession(sess)

	conn.SetHeartbeat(s.heartbeat)
	sess.Send(network.EventRequestName, nil)

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
		}

		packet, err := conn.ReadPacket()
		if errors.Is(err, network.ErrMalformedPacket) {
			logger.Log.Warnf("Session %s sent a malformed frame: %v", sess.GetID(), err)
			continue
		}
		if err != nil {
			return
		}
		s.handlePacket(sess, packet)
	}
}

func (s *GameServer) openSession(conn network.Connection) *session.Session {
	sess := session.NewSession(uuid.New().String(), conn)
	s.sessions.Add(sess)
	s.monitor.IncOnlinePlayers()
	logger.Log.Infof("New connection from %s, session ID: %s", conn.RemoteAddr(), sess.GetID())
	return sess
}

func (s *GameServer) closeSession(sess *session.Session) {
	logger.Log.Infof("Connection closed from %s, session ID: %s", sess.Conn.RemoteAddr(), sess.GetID())
	s.leaveCurrent(sess)
	s.sessions.Remove(sess.GetID())
	s.monitor.DecOnlinePlayers()
	sess.Close()
}
