// models/gorm_models.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// GormMatchRecord 游戏记录模型
type GormMatchRecord struct {
	gorm.Model
	RoomCode   string         `gorm:"index;not null"`
	Winner     string         `gorm:"not null"`
	WinnerName string         `gorm:"not null"`
	FinalTug   int            `gorm:"not null"`
	Players    []PlayerResult `gorm:"serializer:json;type:jsonb;not null"`
	Duration   int            `gorm:"default:0"` // 游戏时长(秒)
	StartedAt  time.Time
	EndedAt    time.Time `gorm:"index"`
}

func (GormMatchRecord) TableName() string {
	return "match_records"
}

func NewGormMatchRecord(r *MatchRecord) *GormMatchRecord {
	return &GormMatchRecord{
		RoomCode:   r.RoomCode,
		Winner:     r.Winner,
		WinnerName: r.WinnerName,
		FinalTug:   r.FinalTug,
		Players:    r.Players,
		Duration:   int(r.Duration().Seconds()),
		StartedAt:  r.StartedAt,
		EndedAt:    r.EndedAt,
	}
}

func (g *GormMatchRecord) ToRecord() MatchRecord {
	return MatchRecord{
		RoomCode:   g.RoomCode,
		Winner:     g.Winner,
		WinnerName: g.WinnerName,
		FinalTug:   g.FinalTug,
		Players:    g.Players,
		StartedAt:  g.StartedAt,
		EndedAt:    g.EndedAt,
	}
}
