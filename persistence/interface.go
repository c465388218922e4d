// persistence/interface.go
package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/wfunc/tugofwar/config"
	"github.com/wfunc/tugofwar/models"
)

// Database stores finished matches. Live lobby state is never persisted.
type Database interface {
	SaveMatch(ctx context.Context, record *models.MatchRecord) error
	RecentMatches(ctx context.Context, limit int) ([]models.MatchRecord, error)
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrInvalidRecord  = errors.New("invalid match record")
)

const maxRecentMatches = 100

func validateRecord(record *models.MatchRecord) error {
	if record == nil || record.RoomCode == "" || record.Winner == "" {
		return ErrInvalidRecord
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > maxRecentMatches {
		return maxRecentMatches
	}
	return limit
}

// Open returns the backend selected by cfg.Driver; an empty driver disables
// match history.
func Open(cfg config.DatabaseConfig) (Database, error) {
	switch cfg.Driver {
	case "":
		return Nop{}, nil
	case "gorm":
		return NewGormPostgreSQL(cfg.Postgres.DSN())
	case "postgres":
		return NewPostgreSQL(cfg.Postgres.DSN())
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
