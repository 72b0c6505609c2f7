/* store.go
 * Contains the MongoDB backed tweet log. Used instead of the in memory store when a MongoDB URI is configured so
 * a restarted bot does not announce the same match twice
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const tweetsCollection = "tweets"

type Store struct {
	Client      *mongo.Client
	Database    *mongo.Database
	Collections struct {
		Tweets *mongo.Collection
	}
}

// Function for initialising Store. Connects to the db and makes sure match_id is unique in the tweets collection
// Preconditions: Receives context, the name of the database and the MongoDB connection URI
// Postconditions: Returns pointer to the Store object, or error if the connection or index creation failed
func NewStore(ctx context.Context, dbName string, mongoURI string) (*Store, error) {
	if dbName == "" || mongoURI == "" {
		return nil, fmt.Errorf("database name or mongo uri cannot be empty")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("error connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("error pinging mongo: %w", err)
	}

	db := client.Database(dbName)
	s := &Store{Client: client, Database: db}
	s.Collections.Tweets = db.Collection(tweetsCollection)

	_, err = s.Collections.Tweets.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "match_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("error creating match_id index: %w", err)
	}

	log.Info().Str("category", "store").Str("database", dbName).Msg("connected to mongo")
	return s, nil
}

// Close disconnects from MongoDB
func (s *Store) Close(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.Disconnect(ctx)
}
