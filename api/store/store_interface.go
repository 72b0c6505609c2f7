/* store_interface.go
 * Contains the Store interface for dependency injection and testing
 * Authors: Zachary Bower
 */

package store

import (
	"context"
)

// Interface is the tweet log used to announce every match at most once
type Interface interface {
	HasTweeted(ctx context.Context, matchID int64) (bool, error)
	RecordTweet(ctx context.Context, record TweetRecord) error
	GetTweet(ctx context.Context, matchID int64) (TweetRecord, error)
	ListTweets(ctx context.Context, limit int) ([]TweetRecord, error)
	Close(ctx context.Context) error
}

// Ensure both stores implement Interface
var (
	_ Interface = (*MemoryStore)(nil)
	_ Interface = (*Store)(nil)
)
