package persistence

import (
	"context"

	"github.com/wfunc/tugofwar/models"
)

// Nop discards matches; used when no database is configured.
type Nop struct{}

func (Nop) SaveMatch(ctx context.Context, record *models.MatchRecord) error {
	return validateRecord(record)
}

func (Nop) RecentMatches(ctx context.Context, limit int) ([]models.MatchRecord, error) {
	return nil, nil
}

func (Nop) Close() error {
	return nil
}
