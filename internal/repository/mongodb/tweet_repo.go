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

type TweetRepository struct {
	coll *mongo.Collection
}

func NewTweetRepository(s *Store) repository.TweetRepository {
	return &TweetRepository{coll: s.db.Collection(collTweets)}
}

func tweetDetailStages() []pipeline.Stage {
	return []pipeline.Stage{
		pipeline.Join(collUsers, "owner", "_id", "owner", ownerSummary()),
		pipeline.Flatten("owner"),
	}
}

func (r *TweetRepository) Create(ctx context.Context, tweet *domain.Tweet) (*domain.TweetDetail, error) {
	now := time.Now()
	tweet.ID = bson.NewObjectID()
	tweet.CreatedAt = now
	tweet.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, tweet); err != nil {
		return nil, fmt.Errorf("insert tweet: %w", err)
	}
	return r.getDetail(ctx, tweet.ID)
}

func (r *TweetRepository) ListByOwner(ctx context.Context, owner bson.ObjectID) ([]domain.TweetDetail, error) {
	p := pipeline.New(pipeline.Filter(bson.M{"owner": owner})).
		Append(tweetDetailStages()...).
		Append(pipeline.Sort("createdAt", pipeline.Descending))

	tweets, err := aggregateAll[domain.TweetDetail](ctx, r.coll, p)
	if err != nil {
		return nil, fmt.Errorf("list tweets: %w", err)
	}
	return tweets, nil
}

func (r *TweetRepository) Update(ctx context.Context, id bson.ObjectID, content string) (*domain.TweetDetail, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"content": content, "updatedAt": time.Now()}},
	)
	if err != nil {
		return nil, fmt.Errorf("update tweet: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.NotFound("tweet")
	}
	return r.getDetail(ctx, id)
}

func (r *TweetRepository) Delete(ctx context.Context, id bson.ObjectID) (*domain.Tweet, error) {
	var tweet domain.Tweet
	err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&tweet)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("tweet")
		}
		return nil, fmt.Errorf("delete tweet: %w", err)
	}
	return &tweet, nil
}

func (r *TweetRepository) getDetail(ctx context.Context, id bson.ObjectID) (*domain.TweetDetail, error) {
	p := pipeline.New(pipeline.Filter(bson.M{"_id": id})).Append(tweetDetailStages()...)

	detail, err := aggregateOne[domain.TweetDetail](ctx, r.coll, p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("tweet")
		}
		return nil, fmt.Errorf("tweet detail: %w", err)
	}
	return detail, nil
}
