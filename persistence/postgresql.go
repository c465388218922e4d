// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/wfunc/tugofwar/models"

	_ "github.com/lib/pq" // PostgreSQL 驱动
)

// PostgreSQL is the database/sql backend for match history.
type PostgreSQL struct {
	db *sql.DB
}

func NewPostgreSQL(dsn string) (*PostgreSQL, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	// 设置连接池参数
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

func initTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS match_history (
            id SERIAL PRIMARY KEY,
            room_code VARCHAR(8) NOT NULL,
            winner VARCHAR(8) NOT NULL,
            winner_name VARCHAR(255) NOT NULL,
            final_tug INTEGER NOT NULL,
            players JSONB NOT NULL,
            started_at TIMESTAMPTZ,
            ended_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
        CREATE INDEX IF NOT EXISTS idx_match_history_ended_at ON match_history(ended_at);
        CREATE INDEX IF NOT EXISTS idx_match_history_room_code ON match_history(room_code);
    `)
	return err
}

func (p *PostgreSQL) SaveMatch(ctx context.Context, record *models.MatchRecord) error {
	if err := validateRecord(record); err != nil {
		return err
	}

	players, err := json.Marshal(record.Players)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO match_history (room_code, winner, winner_name, final_tug, players, started_at, ended_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err = p.db.ExecContext(ctx, query,
		record.RoomCode,
		record.Winner,
		record.WinnerName,
		record.FinalTug,
		players,
		record.StartedAt,
		record.EndedAt)
	return err
}

func (p *PostgreSQL) RecentMatches(ctx context.Context, limit int) ([]models.MatchRecord, error) {
	query := `
        SELECT room_code, winner, winner_name, final_tug, players, started_at, ended_at
        FROM match_history
        ORDER BY ended_at DESC
        LIMIT $1
    `
	rows, err := p.db.QueryContext(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.MatchRecord
	for rows.Next() {
		var (
			r         models.MatchRecord
			players   []byte
			startedAt sql.NullTime
		)
		if err := rows.Scan(&r.RoomCode, &r.Winner, &r.WinnerName, &r.FinalTug, &players, &startedAt, &r.EndedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(players, &r.Players); err != nil {
			return nil, err
		}
		r.StartedAt = startedAt.Time
		records = append(records, r)
	}
	return records, rows.Err()
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
