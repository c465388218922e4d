// models/models.go
package models

import (
	"time"
)

// MatchRecord is one finished game, written once when a team wins.
type MatchRecord struct {
	RoomCode   string         `json:"room_code"`
	Winner     string         `json:"winner"` // red/blue
	WinnerName string         `json:"winner_name"`
	FinalTug   int            `json:"final_tug"`
	Players    []PlayerResult `json:"players"`
	StartedAt  time.Time      `json:"started_at"`
	EndedAt    time.Time      `json:"ended_at"`
}

// PlayerResult 玩家信息（用于游戏记录）
type PlayerResult struct {
	Name  string `json:"name"`
	Team  string `json:"team"`
	Score int    `json:"score"`
}

// Duration is how long the game ran.
func (r MatchRecord) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.EndedAt.Before(r.StartedAt) {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}
