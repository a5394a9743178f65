package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandonli5211/bloomguard/internal/bloom"
	"github.com/brandonli5211/bloomguard/internal/geo"
)

func analysisAt(p geo.Point, id string, ts time.Time) bloom.Analysis {
	return bloom.Analysis{ID: id, Point: p, Timestamp: ts}
}

func TestGetLatestReturnsNewest(t *testing.T) {
	s := NewMemoryStore(0, 0)
	p := geo.Point{Lat: 41.85, Lon: -83.10}
	now := time.Now().UTC()

	s.SaveAnalysis(analysisAt(p, "first", now.Add(-time.Hour)))
	s.SaveAnalysis(analysisAt(p, "second", now))

	got, err := s.GetLatest(p)
	require.NoError(t, err)
	assert.Equal(t, "second", got.ID)
}

func TestGetLatestUnknownCoordinate(t *testing.T) {
	s := NewMemoryStore(0, 0)

	_, err := s.GetLatest(geo.Point{Lat: 1, Lon: 2})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKeyBucketsNearbyCoordinates(t *testing.T) {
	a := geo.Point{Lat: 41.8501, Lon: -83.1002}
	b := geo.Point{Lat: 41.8499, Lon: -83.0997}

	// Within ~100 m the two coordinates share a history bucket.
	assert.Equal(t, Key(a), Key(b))
}

func TestRetentionByCount(t *testing.T) {
	s := NewMemoryStore(3, 0)
	p := geo.Point{Lat: 41.85, Lon: -83.10}
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		s.SaveAnalysis(analysisAt(p, fmt.Sprintf("a%d", i), now.Add(time.Duration(i)*time.Minute)))
	}

	got, err := s.GetRecent(p, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a2", got[0].ID, "oldest entries are evicted first")
	assert.Equal(t, "a4", got[2].ID)
}

func TestRetentionByAge(t *testing.T) {
	s := NewMemoryStore(0, time.Hour)
	p := geo.Point{Lat: 41.85, Lon: -83.10}
	now := time.Now().UTC()

	s.SaveAnalysis(analysisAt(p, "stale", now.Add(-2*time.Hour)))
	s.SaveAnalysis(analysisAt(p, "fresh", now))

	got, err := s.GetRecent(p, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].ID)
}

func TestGetRecentLimit(t *testing.T) {
	s := NewMemoryStore(0, 0)
	p := geo.Point{Lat: 10, Lon: 20}
	now := time.Now().UTC()

	for i := 0; i < 10; i++ {
		s.SaveAnalysis(analysisAt(p, fmt.Sprintf("a%d", i), now))
	}

	got, err := s.GetRecent(p, 4)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "a6", got[0].ID)
	assert.Equal(t, "a9", got[3].ID)
}
