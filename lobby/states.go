package lobby

import (
	"fmt"
	"time"

	"github.com/wfunc/tugofwar/network"
	"github.com/wfunc/tugofwar/state"
)

// Round phases, used as state ids.
const (
	PhaseWaiting    = "waiting"
	PhaseStarting   = "starting"
	PhaseInProgress = "in_progress"
)

// 等待状态: fewer than two players, or a finished game.
type waitingState struct {
	state.StateBase
	lobby *Lobby
}

func (s *waitingState) HandleAction(player state.Player, actionData []byte) error {
	return ErrGameNotStarted
}

// 开始倒计时
type startingState struct {
	state.StateBase
	lobby *Lobby
}

func (s *startingState) OnEnter() {
	l := s.lobby
	seconds := int(l.settings().StartDelay / time.Second)
	l.broadcast(network.EventMessage, fmt.Sprintf("Pemain lengkap! Game mulai dalam %d detik...", seconds))
	l.armStartTimer()
}

func (s *startingState) OnExit() {
	s.lobby.cancelStartTimer()
}

func (s *startingState) HandleAction(player state.Player, actionData []byte) error {
	return ErrGameNotStarted
}

// 游戏中
type inProgressState struct {
	state.StateBase
	lobby *Lobby
}

func (s *inProgressState) OnEnter() {
	s.lobby.startGame()
}

func (s *inProgressState) OnExit() {
	s.lobby.resetGame()
}

func (s *inProgressState) HandleAction(player state.Player, actionData []byte) error {
	return s.lobby.adjudicate(player.GetID(), ParseAnswer(actionData))
}
