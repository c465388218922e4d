package lobby

import (
	"errors"
	"fmt"
)

var (
	ErrLobbyNotFound      = errors.New("lobby not found")
	ErrLobbyFull          = errors.New("lobby is full")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrGameNotStarted     = errors.New("game not started")
	ErrAnswerWindowClosed = errors.New("question already answered")
	ErrAnswerIncorrect    = errors.New("answer incorrect")
	ErrUnknownPlayer      = errors.New("connection has no player in lobby")
	ErrCodesExhausted     = errors.New("no free lobby code")
)

// Notice is the text shown to a player for err. ok is false for errors that
// are not reported to the client at all.
func Notice(err error, playerName string) (text string, ok bool) {
	switch {
	case errors.Is(err, ErrLobbyNotFound):
		return "Lobby tidak ditemukan.", true
	case errors.Is(err, ErrLobbyFull):
		return "Lobby sudah penuh.", true
	case errors.Is(err, ErrGameAlreadyStarted):
		return "Game sudah dimulai.", true
	case errors.Is(err, ErrGameNotStarted):
		return "Game belum dimulai.", true
	case errors.Is(err, ErrAnswerWindowClosed):
		return "Terlambat! Tim lawan sudah menjawab.", true
	case errors.Is(err, ErrAnswerIncorrect):
		return fmt.Sprintf("Jawaban salah, %s!", playerName), true
	case errors.Is(err, ErrCodesExhausted):
		return "Server penuh, coba lagi nanti.", true
	case errors.Is(err, ErrUnknownPlayer):
		return "", false
	}
	return "Terjadi kesalahan.", true
}
