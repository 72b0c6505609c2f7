/* memory.go
 * Contains the in memory tweet log. It is the default store and is lost when the bot restarts
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps tweet records in a map keyed by match ID. Safe for concurrent use since the web server reads it
type MemoryStore struct {
	mu      sync.RWMutex
	records map[int64]TweetRecord
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[int64]TweetRecord)}
}

// HasTweeted reports whether a tweet is recorded for matchID
func (s *MemoryStore) HasTweeted(_ context.Context, matchID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[matchID]
	return ok, nil
}

// RecordTweet stores record, or returns ErrAlreadyRecorded if its match already has one
func (s *MemoryStore) RecordTweet(_ context.Context, record TweetRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[record.MatchID]; ok {
		return ErrAlreadyRecorded
	}
	s.records[record.MatchID] = record
	return nil
}

// GetTweet returns the record of matchID, or ErrNotFound
func (s *MemoryStore) GetTweet(_ context.Context, matchID int64) (TweetRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[matchID]
	if !ok {
		return TweetRecord{}, ErrNotFound
	}
	return record, nil
}

// ListTweets returns up to limit records, newest first. A limit of 0 or less returns every record
func (s *MemoryStore) ListTweets(_ context.Context, limit int) ([]TweetRecord, error) {
	s.mu.RLock()
	records := make([]TweetRecord, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, record)
	}
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if records[i].TweetedAt.Equal(records[j].TweetedAt) {
			return records[i].MatchID > records[j].MatchID
		}
		return records[i].TweetedAt.After(records[j].TweetedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Close does nothing, the records are simply dropped with the store
func (s *MemoryStore) Close(context.Context) error {
	return nil
}
