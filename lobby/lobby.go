// Package lobby holds the live game rooms: the store that creates, joins and
// tears them down, and the per-lobby round controller.
package lobby

import (
	"sort"
	"sync"
	"time"

	"github.com/wfunc/tugofwar/logger"
	"github.com/wfunc/tugofwar/models"
	"github.com/wfunc/tugofwar/network"
	"github.com/wfunc/tugofwar/state"
)

// MaxPlayers is fixed: one player per team.
const MaxPlayers = 2

type Team string

const (
	TeamRed  Team = "red"
	TeamBlue Team = "blue"
	TeamNone Team = "none"
)

// DisplayName is the team name shown in the game-over notice.
func (t Team) DisplayName() string {
	switch t {
	case TeamRed:
		return "MERAH"
	case TeamBlue:
		return "BIRU"
	}
	return string(t)
}

type Player struct {
	ID    string `json:"-"`
	Name  string `json:"name"`
	Score int    `json:"score"`
	Team  Team   `json:"team"`
}

func (p *Player) GetID() string {
	return p.ID
}

// Question is the round currently being played. Team is TeamNone until the
// first correct answer locks it.
type Question struct {
	Text   string `json:"question"`
	Answer int    `json:"-"`
	Team   Team   `json:"team"`
}

// Settings are the tunable game constants.
type Settings struct {
	TugLimit         int
	TugStep          int
	QuestionDuration time.Duration
	StartDelay       time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		TugLimit:         50,
		TugStep:          10,
		QuestionDuration: 10 * time.Second,
		StartDelay:       3 * time.Second,
	}
}

// LobbyCreated is the payload of the lobbyCreated event.
type LobbyCreated struct {
	Code    string            `json:"code"`
	Players map[string]Player `json:"players"`
}

// JoinSuccess is the payload of the joinSuccess event. It carries the
// joiner's own record so the client can switch screens from one frame.
type JoinSuccess struct {
	Code   string `json:"code"`
	Player Player `json:"player"`
}

// Snapshot is a read-only view of a lobby for the admin surface.
type Snapshot struct {
	Code        string    `json:"code"`
	Phase       string    `json:"phase"`
	Players     []Player  `json:"players"`
	TugPosition int       `json:"tug_position"`
	CreatedAt   time.Time `json:"created_at"`
}

// Lobby is one room. Every field below mutex is guarded by it; handlers and
// timer callbacks for the same lobby never run concurrently.
type Lobby struct {
	Code      string
	CreatedAt time.Time
	store     *Store

	mutex           sync.Mutex
	players         map[string]*Player // connection id -> player
	tugPosition     int
	gameStarted     bool
	currentQuestion Question
	startedAt       time.Time
	closed          bool

	questionTimer int64
	questionSeq   uint64
	startTimer    int64
	startSeq      uint64

	machine    *state.BaseStateMachine
	waiting    *waitingState
	starting   *startingState
	inProgress *inProgressState
}

func newLobby(store *Store, code string) *Lobby {
	l := &Lobby{
		Code:      code,
		CreatedAt: time.Now(),
		store:     store,
		players:   make(map[string]*Player),
	}

	l.waiting = &waitingState{StateBase: state.StateBase{ID: PhaseWaiting}, lobby: l}
	l.starting = &startingState{StateBase: state.StateBase{ID: PhaseStarting}, lobby: l}
	l.inProgress = &inProgressState{StateBase: state.StateBase{ID: PhaseInProgress}, lobby: l}

	l.machine = state.NewBaseStateMachine(l.waiting)
	full := func() bool { return len(l.players) == MaxPlayers }
	l.machine.AddTransition(l.waiting, l.starting, full)
	l.machine.AddTransition(l.starting, l.inProgress, full)
	return l
}

func (l *Lobby) settings() Settings {
	return l.store.opts.Settings
}

func (l *Lobby) broadcast(event string, payload interface{}) {
	if err := l.store.opts.Notifier.BroadcastToRoom(l.Code, event, payload); err != nil {
		logger.Log.Debugf("Lobby %s: broadcast %s skipped: %v", l.Code, event, err)
	}
}

func (l *Lobby) send(connID, event string, payload interface{}) {
	if err := l.store.opts.Notifier.SendToSession(connID, event, payload); err != nil {
		logger.Log.Debugf("Lobby %s: send %s to %s failed: %v", l.Code, event, connID, err)
	}
}

// playersSnapshot copies the roster so payloads never alias lobby state.
func (l *Lobby) playersSnapshot() map[string]Player {
	players := make(map[string]Player, len(l.players))
	for id, p := range l.players {
		players[id] = *p
	}
	return players
}

func (l *Lobby) broadcastPlayers(event string) {
	l.broadcast(event, l.playersSnapshot())
}

// freeTeam is red for the first player and blue for the second.
func (l *Lobby) freeTeam() Team {
	for _, p := range l.players {
		if p.Team == TeamRed {
			return TeamBlue
		}
	}
	return TeamRed
}

func (l *Lobby) firstPlayerOn(team Team) *Player {
	for _, p := range l.players {
		if p.Team == team {
			return p
		}
	}
	return nil
}

// sortedPlayers orders the roster red first for stable records.
func (l *Lobby) sortedPlayers() []Player {
	players := make([]Player, 0, len(l.players))
	for _, p := range l.players {
		players = append(players, *p)
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].Team != players[j].Team {
			return players[i].Team == TeamRed
		}
		return players[i].Name < players[j].Name
	})
	return players
}

func (l *Lobby) matchRecord(winner Team, winnerName string) models.MatchRecord {
	record := models.MatchRecord{
		RoomCode:   l.Code,
		Winner:     string(winner),
		WinnerName: winnerName,
		FinalTug:   l.tugPosition,
		StartedAt:  l.startedAt,
		EndedAt:    time.Now(),
	}
	for _, p := range l.sortedPlayers() {
		record.Players = append(record.Players, models.PlayerResult{
			Name:  p.Name,
			Team:  string(p.Team),
			Score: p.Score,
		})
	}
	return record
}

// close cancels every timer; later fires are ignored.
func (l *Lobby) close() {
	l.closed = true
	l.cancelStartTimer()
	l.cancelQuestionTimer()
}

func (l *Lobby) Snapshot() Snapshot {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	return Snapshot{
		Code:        l.Code,
		Phase:       l.machine.GetCurrentState().GetID(),
		Players:     l.sortedPlayers(),
		TugPosition: l.tugPosition,
		CreatedAt:   l.CreatedAt,
	}
}

// Phase is the id of the current round state.
func (l *Lobby) Phase() string {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.machine.GetCurrentState().GetID()
}

func (l *Lobby) sendTug() {
	l.broadcast(network.EventTugUpdate, l.tugPosition)
}
