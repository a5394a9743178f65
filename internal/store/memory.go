package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/brandonli5211/bloomguard/internal/bloom"
	"github.com/brandonli5211/bloomguard/internal/geo"
)

var (
	// ErrNotFound is returned when no analyses exist for a coordinate.
	ErrNotFound = errors.New("no analyses for coordinate")
)

// keyPrecision rounds coordinates to ~100 m when keying histories, so
// repeated analyses of "the same" watch point land in one bucket even if
// the request coordinates wobble slightly.
const keyPrecision = 3

// Key returns the canonical history key for a coordinate.
func Key(p geo.Point) string {
	return fmt.Sprintf("%.*f:%.*f", keyPrecision, p.Lat, keyPrecision, p.Lon)
}

// analysisHistory holds a time-ordered list of analyses for one coordinate.
type analysisHistory struct {
	analyses []bloom.Analysis
}

// MemoryStore is a concurrency-safe in-memory history of bloom analyses.
type MemoryStore struct {
	mu sync.RWMutex

	data map[string]*analysisHistory

	maxHistory int           // max analyses kept per coordinate (<= 0 = unlimited)
	maxAge     time.Duration // max analysis age (0 = unlimited)
}

// NewMemoryStore creates a MemoryStore with optional retention limits.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*analysisHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// SaveAnalysis appends an analysis and enforces retention.
func (s *MemoryStore) SaveAnalysis(a bloom.Analysis) {
	key := Key(a.Point)

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[key]
	if !ok {
		history = &analysisHistory{}
		s.data[key] = history
	}

	history.analyses = append(history.analyses, a)

	if s.maxHistory > 0 && len(history.analyses) > s.maxHistory {
		over := len(history.analyses) - s.maxHistory
		history.analyses = history.analyses[over:]
	}

	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.analyses); i++ {
			if !history.analyses[i].Timestamp.Before(cutoff) {
				break
			}
		}
		if i > 0 {
			history.analyses = history.analyses[i:]
		}
	}
}

// GetLatest returns the most recent analysis for a coordinate.
func (s *MemoryStore) GetLatest(p geo.Point) (bloom.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[Key(p)]
	if !ok || len(history.analyses) == 0 {
		return bloom.Analysis{}, ErrNotFound
	}
	return history.analyses[len(history.analyses)-1], nil
}

// GetRecent returns up to limit analyses for a coordinate, newest last.
// A non-positive limit returns the full history.
func (s *MemoryStore) GetRecent(p geo.Point, limit int) ([]bloom.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[Key(p)]
	if !ok || len(history.analyses) == 0 {
		return nil, ErrNotFound
	}

	analyses := history.analyses
	if limit > 0 && len(analyses) > limit {
		analyses = analyses[len(analyses)-limit:]
	}

	out := make([]bloom.Analysis, len(analyses))
	copy(out, analyses)
	return out, nil
}
