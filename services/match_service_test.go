package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/wfunc/tugofwar/models"
)

// MockDatabase is an in-memory persistence.Database.
type MockDatabase struct {
	mutex   sync.Mutex
	saved   []models.MatchRecord
	failing bool
}

func (m *MockDatabase) SaveMatch(ctx context.Context, record *models.MatchRecord) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.failing {
		return errors.New("database down")
	}
	m.saved = append(m.saved, *record)
	return nil
}

func (m *MockDatabase) RecentMatches(ctx context.Context, limit int) ([]models.MatchRecord, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]models.MatchRecord(nil), m.saved...), nil
}

func (m *MockDatabase) Close() error { return nil }

func TestMatchService_RecordAndClose(t *testing.T) {
	db := &MockDatabase{}
	svc := NewMatchService(db, 8)

	svc.RecordMatch(models.MatchRecord{RoomCode: "1234", Winner: "blue"})
	svc.RecordMatch(models.MatchRecord{RoomCode: "5678", Winner: "red"})
	svc.Close()

	matches, err := svc.RecentMatches(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentMatches failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Expected both matches saved before Close returned, got %d", len(matches))
	}
	if matches[0].RoomCode != "1234" || matches[1].RoomCode != "5678" {
		t.Errorf("Matches saved out of order: %+v", matches)
	}
}

func TestMatchService_DropsAfterClose(t *testing.T) {
	db := &MockDatabase{}
	svc := NewMatchService(db, 8)
	svc.Close()
	svc.Close()

	svc.RecordMatch(models.MatchRecord{RoomCode: "1234", Winner: "blue"})

	if len(db.saved) != 0 {
		t.Error("A closed service must not save new matches")
	}
}

func TestMatchService_SaveFailureIsNotFatal(t *testing.T) {
	db := &MockDatabase{failing: true}
	svc := NewMatchService(db, 8)

	svc.RecordMatch(models.MatchRecord{RoomCode: "1234", Winner: "blue"})
	svc.Close()

	if len(db.saved) != 0 {
		t.Error("Failed saves should not be recorded")
	}
}
