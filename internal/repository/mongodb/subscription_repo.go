package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/rudro/videotube-backend/internal/domain"
	"github.com/rudro/videotube-backend/internal/pipeline"
	"github.com/rudro/videotube-backend/internal/repository"
)

type SubscriptionRepository struct {
	coll *mongo.Collection
}

func NewSubscriptionRepository(s *Store) repository.SubscriptionRepository {
	return &SubscriptionRepository{coll: s.db.Collection(collSubscriptions)}
}

func (r *SubscriptionRepository) Find(ctx context.Context, subscriber, channel bson.ObjectID) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := r.coll.FindOne(ctx, bson.M{"subscriber": subscriber, "channel": channel}).Decode(&sub)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("subscription")
		}
		return nil, fmt.Errorf("find subscription: %w", err)
	}
	return &sub, nil
}

// Create inserts the subscription row; the unique (subscriber, channel) index
// turns a concurrent duplicate toggle into a conflict.
func (r *SubscriptionRepository) Create(ctx context.Context, subscriber, channel bson.ObjectID) (*domain.Subscription, error) {
	sub := &domain.Subscription{
		ID:         bson.NewObjectID(),
		Subscriber: subscriber,
		Channel:    channel,
		CreatedAt:  time.Now(),
	}

	if _, err := r.coll.InsertOne(ctx, sub); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.Conflict("already subscribed")
		}
		return nil, fmt.Errorf("insert subscription: %w", err)
	}
	return sub, nil
}

func (r *SubscriptionRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.NotFound("subscription")
	}
	return nil
}

// GetDetail re-reads a subscription through the join pipeline so a toggle's
// 201 response carries both user sides fully joined.
func (r *SubscriptionRepository) GetDetail(ctx context.Context, id bson.ObjectID) (*domain.SubscriptionDetail, error) {
	p := pipeline.New(
		pipeline.Filter(bson.M{"_id": id}),
		pipeline.Join(collUsers, "subscriber", "_id", "subscriber", ownerSummary()),
		pipeline.Flatten("subscriber"),
		pipeline.Join(collUsers, "channel", "_id", "channel", ownerSummary()),
		pipeline.Flatten("channel"),
	)

	detail, err := aggregateOne[domain.SubscriptionDetail](ctx, r.coll, p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("subscription")
		}
		return nil, fmt.Errorf("subscription detail: %w", err)
	}
	return detail, nil
}

// Subscribers returns the channel's subscribers as user summaries, joined and
// flattened from the users collection.
func (r *SubscriptionRepository) Subscribers(ctx context.Context, channel bson.ObjectID) ([]domain.UserSummary, error) {
	return r.joinedUsers(ctx, bson.M{"channel": channel}, "subscriber")
}

// SubscribedChannels returns the channels a user follows, as user summaries.
func (r *SubscriptionRepository) SubscribedChannels(ctx context.Context, subscriber bson.ObjectID) ([]domain.UserSummary, error) {
	return r.joinedUsers(ctx, bson.M{"subscriber": subscriber}, "channel")
}

func (r *SubscriptionRepository) joinedUsers(ctx context.Context, filter bson.M, side string) ([]domain.UserSummary, error) {
	p := pipeline.New(
		pipeline.Filter(filter),
		pipeline.Join(collUsers, side, "_id", "user", ownerSummary()),
		pipeline.Flatten("user"),
		pipeline.Stage{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$user"}}},
	)

	users, err := aggregateAll[domain.UserSummary](ctx, r.coll, p)
	if err != nil {
		return nil, fmt.Errorf("join subscription users: %w", err)
	}
	return users, nil
}

func (r *SubscriptionRepository) CountSubscribers(ctx context.Context, channel bson.ObjectID) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"channel": channel})
	if err != nil {
		return 0, fmt.Errorf("count subscribers: %w", err)
	}
	return count, nil
}
