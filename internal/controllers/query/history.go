// internal/controllers/query/history.go
package query

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"human1-sdk/internal/models"
)

// HistoryStore is the append-only, in-memory list of answered queries. It is
// unbounded and lives as long as the process.
type HistoryStore struct {
	mu      sync.RWMutex
	entries []models.HistoryEntry
	now     func() time.Time
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{now: time.Now}
}

func (s *HistoryStore) Append(query string, result *models.ResponseData) models.HistoryEntry {
	entry := models.HistoryEntry{
		ID:        uuid.NewString(),
		Query:     query,
		Result:    result,
		Timestamp: s.now().UTC(),
	}

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()

	return entry
}

// List returns a copy of all entries in insertion order.
func (s *HistoryStore) List() []models.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.HistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *HistoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
