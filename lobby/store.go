package lobby

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/wfunc/tugofwar/logger"
	"github.com/wfunc/tugofwar/models"
	"github.com/wfunc/tugofwar/network"
	"github.com/wfunc/tugofwar/question"
	"github.com/wfunc/tugofwar/timer"
)

// Notifier delivers events to connections and tracks room membership.
// broadcast.RoomBroadcaster implements it.
type Notifier interface {
	Join(roomID, sessionID string)
	Leave(roomID, sessionID string)
	BroadcastToRoom(roomID string, event string, payload interface{}) error
	SendToSession(sessionID string, event string, payload interface{}) error
}

type QuestionSource interface {
	Generate() question.Question
}

// Recorder receives finished matches. It must not block.
type Recorder interface {
	RecordMatch(record models.MatchRecord)
}

// Monitor is the subset of metrics the lobbies report.
type Monitor interface {
	SetActiveRooms(count int)
	ObserveAnswer(result string)
	IncQuestionsExpired()
	IncGamesFinished(winner string)
}

// Options wires a Store. Notifier and Scheduler are required; the rest
// default to a fresh question generator, no-op recorder and no-op monitor.
type Options struct {
	Settings  Settings
	Notifier  Notifier
	Scheduler timer.Scheduler
	Questions QuestionSource
	Recorder  Recorder
	Monitor   Monitor
	// NewCode returns a candidate lobby code; collisions are retried.
	NewCode func() string
}

const (
	codeMin      = 1000
	codeMax      = 9999
	codeAttempts = 10 * (codeMax - codeMin + 1)
)

func randomCode() string {
	return fmt.Sprintf("%d", codeMin+rand.Intn(codeMax-codeMin+1))
}

// Store is the registry of live lobbies. Lock order is store before lobby.
type Store struct {
	opts    Options
	lobbies map[string]*Lobby
	mutex   sync.RWMutex
}

func NewStore(opts Options) *Store {
	if opts.Notifier == nil || opts.Scheduler == nil {
		panic("lobby: store needs a notifier and a scheduler")
	}
	if opts.Settings == (Settings{}) {
		opts.Settings = DefaultSettings()
	}
	if opts.Questions == nil {
		opts.Questions = question.NewGenerator(nil)
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	if opts.Monitor == nil {
		opts.Monitor = nopMonitor{}
	}
	if opts.NewCode == nil {
		opts.NewCode = randomCode
	}

	return &Store{
		opts:    opts,
		lobbies: make(map[string]*Lobby),
	}
}

// Create opens a lobby with connID as its red player and sends the creator
// the lobbyCreated event.
func (s *Store) Create(connID, name string) (string, map[string]Player, error) {
	s.mutex.Lock()
	if len(s.lobbies) > codeMax-codeMin {
		s.mutex.Unlock()
		return "", nil, ErrCodesExhausted
	}

	code := ""
	for i := 0; i < codeAttempts; i++ {
		candidate := s.opts.NewCode()
		if _, exists := s.lobbies[candidate]; !exists {
			code = candidate
			break
		}
	}
	if code == "" {
		s.mutex.Unlock()
		return "", nil, ErrCodesExhausted
	}

	l := newLobby(s, code)
	l.players[connID] = &Player{ID: connID, Name: name, Team: TeamRed}

	// 先锁住新房间, so a fast joiner cannot broadcast before the creator
	// is subscribed.
	l.mutex.Lock()
	s.lobbies[code] = l
	count := len(s.lobbies)
	s.mutex.Unlock()
	defer l.mutex.Unlock()

	s.opts.Monitor.SetActiveRooms(count)
	logger.Log.Infof("Lobby %s created by %s (%s)", code, name, connID)

	players := l.playersSnapshot()
	s.opts.Notifier.Join(code, connID)
	l.send(connID, network.EventLobbyCreated, LobbyCreated{Code: code, Players: players})
	return code, players, nil
}

// Join seats connID on the free team. The second player arms the start
// countdown.
func (s *Store) Join(code, connID, name string) (Player, error) {
	l, ok := s.Get(code)
	if !ok {
		return Player{}, fmt.Errorf("%w: %s", ErrLobbyNotFound, code)
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.closed {
		return Player{}, fmt.Errorf("%w: %s", ErrLobbyNotFound, code)
	}
	if len(l.players) >= MaxPlayers {
		return Player{}, ErrLobbyFull
	}
	if l.gameStarted {
		return Player{}, ErrGameAlreadyStarted
	}

	p := &Player{ID: connID, Name: name, Team: l.freeTeam()}
	l.players[connID] = p
	logger.Log.Infof("Lobby %s: %s joined team %s", code, name, p.Team)

	l.send(connID, network.EventPlayerInfo, *p)
	l.send(connID, network.EventJoinSuccess, JoinSuccess{Code: code, Player: *p})
	s.opts.Notifier.Join(code, connID)
	l.broadcastPlayers(network.EventLobbyUpdate)

	if len(l.players) == MaxPlayers {
		if err := l.machine.ChangeState(l.starting); err != nil {
			logger.Log.Errorf("Lobby %s: countdown not armed: %v", code, err)
		}
	}
	return *p, nil
}

// RemovePlayer takes connID out of the lobby, resetting any running game.
// An emptied lobby is destroyed.
func (s *Store) RemovePlayer(code, connID string) {
	l, ok := s.Get(code)
	if !ok {
		return
	}

	l.mutex.Lock()
	if p, exists := l.players[connID]; exists {
		delete(l.players, connID)
		s.opts.Notifier.Leave(code, connID)
		logger.Log.Infof("Lobby %s: %s left", code, p.Name)

		l.broadcast(network.EventMessage, fmt.Sprintf("%s meninggalkan game.", p.Name))
		switch {
		case l.machine.Is(PhaseInProgress):
			l.broadcast(network.EventMessage, "Pemain keluar, game direset.")
			l.machine.ChangeState(l.waiting)
		case l.machine.Is(PhaseStarting):
			l.machine.ChangeState(l.waiting)
		}
		l.broadcastPlayers(network.EventLobbyUpdate)
	}
	empty := len(l.players) == 0
	if empty && !l.closed {
		l.close()
	}
	l.mutex.Unlock()

	if !empty {
		return
	}

	s.mutex.Lock()
	if s.lobbies[code] == l {
		delete(s.lobbies, code)
	}
	count := len(s.lobbies)
	s.mutex.Unlock()

	s.opts.Monitor.SetActiveRooms(count)
	logger.Log.Infof("Lobby %s removed", code)
}

// SubmitAnswer adjudicates an answer from connID. The returned player
// reflects the score after the answer.
func (s *Store) SubmitAnswer(code, connID string, data []byte) (Player, error) {
	l, ok := s.Get(code)
	if !ok {
		return Player{}, ErrGameNotStarted
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.closed || !l.gameStarted {
		return Player{}, ErrGameNotStarted
	}
	p, ok := l.players[connID]
	if !ok {
		return Player{}, ErrUnknownPlayer
	}

	err := l.machine.GetCurrentState().HandleAction(p, data)
	return *p, err
}

func (s *Store) Get(code string) (*Lobby, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	l, ok := s.lobbies[code]
	return l, ok
}

func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.lobbies)
}

// Snapshots lists every live lobby ordered by code.
func (s *Store) Snapshots() []Snapshot {
	s.mutex.RLock()
	lobbies := make([]*Lobby, 0, len(s.lobbies))
	for _, l := range s.lobbies {
		lobbies = append(lobbies, l)
	}
	s.mutex.RUnlock()

	snapshots := make([]Snapshot, 0, len(lobbies))
	for _, l := range lobbies {
		snapshots = append(snapshots, l.Snapshot())
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].Code < snapshots[j].Code })
	return snapshots
}

// CloseAll cancels every lobby's timers and empties the store. Used on
// shutdown.
func (s *Store) CloseAll() {
	s.mutex.Lock()
	lobbies := s.lobbies
	s.lobbies = make(map[string]*Lobby)
	s.mutex.Unlock()

	for _, l := range lobbies {
		l.mutex.Lock()
		l.close()
		l.mutex.Unlock()
	}
	s.opts.Monitor.SetActiveRooms(0)
}

type nopRecorder struct{}

func (nopRecorder) RecordMatch(models.MatchRecord) {}

type nopMonitor struct{}

func (nopMonitor) SetActiveRooms(int)      {}
func (nopMonitor) ObserveAnswer(string)    {}
func (nopMonitor) IncQuestionsExpired()    {}
func (nopMonitor) IncGamesFinished(string) {}
