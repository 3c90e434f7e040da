// Package mongodb implements the repository interfaces against a MongoDB
// deployment. All cross-collection reads go through the shared pipeline
// package; invariants that must hold under concurrent writers (unique
// usernames, one like per target, one subscription per channel) live here as
// unique indexes rather than application checks.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/rudro/videotube-backend/internal/pipeline"
	"github.com/rudro/videotube-backend/internal/repository"
)

const (
	collUsers         = "users"
	collVideos        = "videos"
	collComments      = "comments"
	collLikes         = "likes"
	collPlaylists     = "playlists"
	collSubscriptions = "subscriptions"
	collTweets        = "tweets"
)

// Store owns the client and database handle shared by all repositories.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &Store{client: client, db: client.Database(dbName)}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Disconnect(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the uniqueness constraints the toggle resources rely
// on. Like targets are mutually exclusive, so each (actor, target) pair gets
// its own partial unique index scoped to rows where that target field exists.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	users := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := s.db.Collection(collUsers).Indexes().CreateMany(ctx, users); err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}

	likes := make([]mongo.IndexModel, 0, 3)
	for _, target := range []string{"video", "comment", "tweet"} {
		likes = append(likes, mongo.IndexModel{
			Keys: bson.D{{Key: "likedBy", Value: 1}, {Key: target, Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: target, Value: bson.D{{Key: "$exists", Value: true}}}}),
		})
	}
	if _, err := s.db.Collection(collLikes).Indexes().CreateMany(ctx, likes); err != nil {
		return fmt.Errorf("likes indexes: %w", err)
	}

	subs := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "subscriber", Value: 1}, {Key: "channel", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := s.db.Collection(collSubscriptions).Indexes().CreateMany(ctx, subs); err != nil {
		return fmt.Errorf("subscriptions indexes: %w", err)
	}

	return nil
}

// NewRepositories wires every repository over the store.
func NewRepositories(s *Store) *repository.Repositories {
	return &repository.Repositories{
		User:         NewUserRepository(s),
		Video:        NewVideoRepository(s),
		Comment:      NewCommentRepository(s),
		Like:         NewLikeRepository(s),
		Playlist:     NewPlaylistRepository(s),
		Subscription: NewSubscriptionRepository(s),
		Tweet:        NewTweetRepository(s),
	}
}

// ownerSummary is the reduced user projection joined into videos, comments,
// likes and tweets.
func ownerSummary() pipeline.Stage {
	return pipeline.Reshape(bson.M{
		"_id":      1,
		"username": 1,
		"fullName": 1,
		"avatar":   1,
	})
}

// aggregateOne runs a pipeline expected to yield at most one document.
// A zero result returns mongo.ErrNoDocuments so callers can translate it to
// their resource's not-found error.
func aggregateOne[T any](ctx context.Context, coll *mongo.Collection, p pipeline.Pipeline) (*T, error) {
	cursor, err := coll.Aggregate(ctx, p.Build())
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []T
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, mongo.ErrNoDocuments
	}
	return &out[0], nil
}

// aggregateAll runs a pipeline and decodes every document.
func aggregateAll[T any](ctx context.Context, coll *mongo.Collection, p pipeline.Pipeline) ([]T, error) {
	cursor, err := coll.Aggregate(ctx, p.Build())
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []T
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
