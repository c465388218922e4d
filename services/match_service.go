// services/match_service.go
package services

import (
	"context"
	"sync"
	"time"

	"github.com/wfunc/tugofwar/logger"
	"github.com/wfunc/tugofwar/models"
	"github.com/wfunc/tugofwar/persistence"
)

const saveTimeout = 5 * time.Second

// MatchService records finished games. RecordMatch is called from inside a
// lobby handler, so it only queues; a single worker does the database write.
type MatchService struct {
	db     persistence.Database
	queue  chan models.MatchRecord
	wg     sync.WaitGroup
	mutex  sync.RWMutex
	closed bool
}

func NewMatchService(db persistence.Database, queueSize int) *MatchService {
	if queueSize <= 0 {
		queueSize = 64
	}
	s := &MatchService{
		db:    db,
		queue: make(chan models.MatchRecord, queueSize),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// RecordMatch queues record for saving and drops it when the queue is full
// or the service is closed.
func (s *MatchService) RecordMatch(record models.MatchRecord) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.closed {
		logger.Log.Warnf("Match in room %s dropped: match service closed", record.RoomCode)
		return
	}

	select {
	case s.queue <- record:
	default:
		logger.Log.Warnf("Match in room %s dropped: save queue full", record.RoomCode)
	}
}

func (s *MatchService) RecentMatches(ctx context.Context, limit int) ([]models.MatchRecord, error) {
	return s.db.RecentMatches(ctx, limit)
}

func (s *MatchService) run() {
	defer s.wg.Done()
	for record := range s.queue {
		s.save(record)
	}
}

func (s *MatchService) save(record models.MatchRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := s.db.SaveMatch(ctx, &record); err != nil {
		logger.Log.Errorf("Failed to save match for room %s: %v", record.RoomCode, err)
		return
	}
	logger.Log.Infof("Match for room %s saved, winner %s (%s)", record.RoomCode, record.Winner, record.WinnerName)
}

// Close stops accepting matches and waits for queued ones to be saved.
func (s *MatchService) Close() {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return
	}
	s.closed = true
	close(s.queue)
	s.mutex.Unlock()

	s.wg.Wait()
}
