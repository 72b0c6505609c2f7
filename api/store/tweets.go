/* tweets.go
 * Contains the methods for interacting with the tweets collection
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// HasTweeted checks whether a tweet is recorded for a match
// Preconditions: Receives context and the match ID
// Postconditions: Returns true if a record exists, or an error if the lookup failed
func (s *Store) HasTweeted(ctx context.Context, matchID int64) (bool, error) {
	count, err := s.Collections.Tweets.CountDocuments(ctx, bson.M{"match_id": matchID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("error counting tweet records: %w", err)
	}
	return count > 0, nil
}

// RecordTweet inserts the record of a published match
// Preconditions: Receives context and the record to store
// Postconditions: Stores the record, returns ErrAlreadyRecorded if the match already has one, or an error if the insert failed
func (s *Store) RecordTweet(ctx context.Context, record TweetRecord) error {
	_, err := s.Collections.Tweets.InsertOne(ctx, record)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAlreadyRecorded
		}
		return fmt.Errorf("failed to insert tweet record: %w", err)
	}
	return nil
}

// GetTweet does DB lookup and gets the record of a match
// Preconditions: Receives context and the match ID
// Postconditions: Returns the record, ErrNotFound if there is none, or an error if it occurs
func (s *Store) GetTweet(ctx context.Context, matchID int64) (TweetRecord, error) {
	var record TweetRecord
	err := s.Collections.Tweets.FindOne(ctx, bson.M{"match_id": matchID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return TweetRecord{}, ErrNotFound
		}
		return TweetRecord{}, fmt.Errorf("error fetching tweet record from db: %w", err)
	}
	return record, nil
}

// ListTweets gets the most recent tweet records
// Preconditions: Receives context and the maximum number of records. A limit of 0 or less returns every record
// Postconditions: Returns the records newest first, or an error if it occurs
func (s *Store) ListTweets(ctx context.Context, limit int) ([]TweetRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "tweeted_at", Value: -1}, {Key: "match_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.Collections.Tweets.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching tweet records from db: %w", err)
	}
	defer cursor.Close(ctx)

	records := []TweetRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("error decoding tweet records: %w", err)
	}
	return records, nil
}
