/* test_helpers.go
 * Contains test helper functions for store package tests and for packages that need a populated tweet log
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"fmt"
	"time"
)

// CreateTestStore creates a Store connected to a throwaway test database.
// Returns the store and a cleanup function that drops the database.
func CreateTestStore(ctx context.Context, mongoURI string) (*Store, func(), error) {
	s, err := NewStore(ctx, "test_lolpro_bot", mongoURI)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		_ = s.Database.Drop(context.Background())
		_ = s.Close(context.Background())
	}
	return s, cleanup, nil
}

// CreateSampleTweetRecords creates n records with match IDs 1..n, tweeted one minute apart starting at base
func CreateSampleTweetRecords(n int, base time.Time) []TweetRecord {
	records := make([]TweetRecord, 0, n)
	for i := 1; i <= n; i++ {
		records = append(records, TweetRecord{
			MatchID:   int64(i),
			TweetID:   fmt.Sprintf("tweet-%d", i),
			Text:      "sample tweet",
			Score:     1000 * i,
			TweetedAt: base.Add(time.Duration(i) * time.Minute).UTC(),
		})
	}
	return records
}
