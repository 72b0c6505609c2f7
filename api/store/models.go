/* models.go
 * Contains the structs stored in the tweet log
 * Authors: Zachary Bower
 */

package store

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no tweet is recorded for a match
	ErrNotFound = errors.New("tweet record not found")
	// ErrAlreadyRecorded is returned when a match already has a tweet recorded
	ErrAlreadyRecorded = errors.New("match already has a tweet recorded")
)

// TweetRecord is the announcement of one match. DryRun records were never posted and have no TweetID
type TweetRecord struct {
	MatchID   int64     `bson:"match_id" json:"match_id"`
	TweetID   string    `bson:"tweet_id,omitempty" json:"tweet_id,omitempty"`
	Text      string    `bson:"text" json:"text"`
	Score     int       `bson:"score" json:"score"`
	DryRun    bool      `bson:"dry_run" json:"dry_run"`
	TweetedAt time.Time `bson:"tweeted_at" json:"tweeted_at"`
}
