package lobby

import (
	"fmt"
	"time"

	"github.com/wfunc/tugofwar/logger"
	"github.com/wfunc/tugofwar/monitor"
	"github.com/wfunc/tugofwar/network"
)

// The round controller. Everything here runs with l.mutex held, either from a
// store operation or from a timer callback that took the lock itself.

func (l *Lobby) armStartTimer() {
	l.cancelStartTimer()
	seq := l.startSeq
	l.startTimer = l.store.opts.Scheduler.AddTimer(l.settings().StartDelay, 0, func() {
		l.onStartDelay(seq)
	})
}

func (l *Lobby) cancelStartTimer() {
	if l.startTimer != 0 {
		l.store.opts.Scheduler.RemoveTimer(l.startTimer)
		l.startTimer = 0
	}
	l.startSeq++
}

func (l *Lobby) armQuestionTimer() {
	l.cancelQuestionTimer()
	seq := l.questionSeq
	l.questionTimer = l.store.opts.Scheduler.AddTimer(l.settings().QuestionDuration, 0, func() {
		l.onQuestionTimeout(seq)
	})
}

func (l *Lobby) cancelQuestionTimer() {
	if l.questionTimer != 0 {
		l.store.opts.Scheduler.RemoveTimer(l.questionTimer)
		l.questionTimer = 0
	}
	l.questionSeq++
}

func (l *Lobby) onStartDelay(seq uint64) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.closed || seq != l.startSeq {
		return
	}
	l.startTimer = 0

	if err := l.machine.ChangeState(l.inProgress); err != nil {
		logger.Log.Debugf("Lobby %s: start skipped with %d players", l.Code, len(l.players))
	}
}

func (l *Lobby) onQuestionTimeout(seq uint64) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.closed || seq != l.questionSeq || !l.machine.Is(PhaseInProgress) {
		return
	}
	l.questionTimer = 0

	if l.currentQuestion.Team != TeamNone {
		return
	}

	l.broadcast(network.EventMessage, "Waktu habis! Soal berikutnya...")
	l.sendTug()
	l.store.opts.Monitor.IncQuestionsExpired()
	l.sendNewQuestion()
}

// startGame zeroes the scores and issues the first question.
func (l *Lobby) startGame() {
	l.gameStarted = true
	l.tugPosition = 0
	l.startedAt = time.Now()
	for _, p := range l.players {
		p.Score = 0
	}

	logger.Log.Infof("Lobby %s: game started", l.Code)
	l.broadcast(network.EventGameStarted, nil)
	l.broadcastPlayers(network.EventScoreUpdate)
	l.sendTug()
	l.sendNewQuestion()
}

func (l *Lobby) sendNewQuestion() {
	q := l.store.opts.Questions.Generate()
	l.currentQuestion = Question{Text: q.Text, Answer: q.Answer, Team: TeamNone}
	logger.Log.Debugf("Lobby %s: question %q answer %d", l.Code, q.Text, q.Answer)

	l.broadcast(network.EventNewQuestion, l.currentQuestion.Text)
	l.armQuestionTimer()
}

// adjudicate applies one answer. Only the first correct answer per question
// moves the rope.
func (l *Lobby) adjudicate(connID string, answer Answer) error {
	p, ok := l.players[connID]
	if !ok {
		return ErrUnknownPlayer
	}
	mon := l.store.opts.Monitor

	if l.currentQuestion.Team != TeamNone {
		mon.ObserveAnswer(monitor.AnswerLate)
		return ErrAnswerWindowClosed
	}
	if !answer.Valid || answer.Value != l.currentQuestion.Answer {
		mon.ObserveAnswer(monitor.AnswerIncorrect)
		return ErrAnswerIncorrect
	}
	mon.ObserveAnswer(monitor.AnswerCorrect)

	l.currentQuestion.Team = p.Team
	l.cancelQuestionTimer()
	p.Score++

	step := l.settings().TugStep
	if p.Team == TeamRed {
		l.tugPosition -= step
	} else {
		l.tugPosition += step
	}

	l.broadcast(network.EventMessage, fmt.Sprintf("%s (Tim %s) BENAR!", p.Name, p.Team))
	l.sendTug()
	l.broadcastPlayers(network.EventScoreUpdate)

	if !l.checkWin() {
		l.sendNewQuestion()
	}
	return nil
}

// checkWin ends the game once the rope reaches either limit. Blue pulls
// toward the positive end.
func (l *Lobby) checkWin() bool {
	limit := l.settings().TugLimit

	var winner Team
	switch {
	case l.tugPosition >= limit:
		winner = TeamBlue
	case l.tugPosition <= -limit:
		winner = TeamRed
	default:
		return false
	}

	name := ""
	if p := l.firstPlayerOn(winner); p != nil {
		name = p.Name
	}

	logger.Log.Infof("Lobby %s: team %s wins (%s)", l.Code, winner, name)
	l.broadcast(network.EventGameOver, fmt.Sprintf("Tim %s (%s) menang!", winner.DisplayName(), name))

	l.store.opts.Recorder.RecordMatch(l.matchRecord(winner, name))
	l.store.opts.Monitor.IncGamesFinished(string(winner))

	if err := l.machine.ChangeState(l.waiting); err != nil {
		logger.Log.Errorf("Lobby %s: reset after win failed: %v", l.Code, err)
	}
	return true
}

// resetGame runs on every exit from the in-progress phase.
func (l *Lobby) resetGame() {
	l.cancelQuestionTimer()
	l.gameStarted = false
	l.tugPosition = 0
	l.currentQuestion = Question{}

	logger.Log.Infof("Lobby %s: game reset", l.Code)
	l.broadcast(network.EventGameReset, nil)
}
