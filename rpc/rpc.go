package rpc

import (
	"context"
	"errors"
	"net"
	"net/rpc"
	"time"

	"github.com/wfunc/tugofwar/lobby"
	"github.com/wfunc/tugofwar/logger"
	"github.com/wfunc/tugofwar/models"
)

// Server manages the RPC listener. Each Server has its own rpc.Server so
// services are not registered globally.
type Server struct {
	listener net.Listener
	address  string
	rpc      *rpc.Server
}

// NewServer creates a new RPC server listening on addr.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  listener.Addr().String(),
		rpc:      rpc.NewServer(),
	}, nil
}

// Register exposes rcvr's exported methods under its type name.
func (s *Server) Register(rcvr interface{}) error {
	return s.rpc.Register(rcvr)
}

func (s *Server) Addr() string {
	return s.address
}

// Start accepts connections until Stop.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go s.rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

type LobbySource interface {
	Snapshots() []lobby.Snapshot
}

type MatchSource interface {
	RecentMatches(ctx context.Context, limit int) ([]models.MatchRecord, error)
}

// Admin is the operator-facing RPC service.
type Admin struct {
	lobbies LobbySource
	matches MatchSource
}

func NewAdmin(lobbies LobbySource, matches MatchSource) *Admin {
	return &Admin{lobbies: lobbies, matches: matches}
}

// ListLobbiesArgs filters by phase; empty lists every lobby.
type ListLobbiesArgs struct {
	Phase string
}

type ListLobbiesReply struct {
	Lobbies []lobby.Snapshot
}

func (a *Admin) ListLobbies(args *ListLobbiesArgs, reply *ListLobbiesReply) error {
	for _, snapshot := range a.lobbies.Snapshots() {
		if args.Phase == "" || snapshot.Phase == args.Phase {
			reply.Lobbies = append(reply.Lobbies, snapshot)
		}
	}
	return nil
}

type RecentMatchesArgs struct {
	Limit int
}

type RecentMatchesReply struct {
	Matches []models.MatchRecord
}

// RecentMatches returns finished matches, newest first.
func (a *Admin) RecentMatches(args *RecentMatchesArgs, reply *RecentMatchesReply) error {
	if a.matches == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	records, err := a.matches.RecentMatches(ctx, args.Limit)
	if err != nil {
		return err
	}
	reply.Matches = records
	return nil
}
