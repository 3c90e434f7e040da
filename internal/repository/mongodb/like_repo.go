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

type LikeRepository struct {
	coll *mongo.Collection
}

func NewLikeRepository(s *Store) repository.LikeRepository {
	return &LikeRepository{coll: s.db.Collection(collLikes)}
}

func (r *LikeRepository) Find(ctx context.Context, actor bson.ObjectID, kind repository.LikeTargetKind, target bson.ObjectID) (*domain.Like, error) {
	var like domain.Like
	err := r.coll.FindOne(ctx, bson.M{"likedBy": actor, string(kind): target}).Decode(&like)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("like")
		}
		return nil, fmt.Errorf("find like: %w", err)
	}
	return &like, nil
}

// Create inserts the like row. The partial unique index on (likedBy, target)
// resolves concurrent toggles: the losing insert comes back as a conflict.
func (r *LikeRepository) Create(ctx context.Context, actor bson.ObjectID, kind repository.LikeTargetKind, target bson.ObjectID) (*domain.Like, error) {
	like := &domain.Like{
		ID:        bson.NewObjectID(),
		LikedBy:   actor,
		CreatedAt: time.Now(),
	}
	switch kind {
	case repository.LikeTargetVideo:
		like.Video = &target
	case repository.LikeTargetComment:
		like.Comment = &target
	case repository.LikeTargetTweet:
		like.Tweet = &target
	default:
		return nil, domain.InvalidArgument("unknown like target")
	}

	if _, err := r.coll.InsertOne(ctx, like); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.Conflict("already liked")
		}
		return nil, fmt.Errorf("insert like: %w", err)
	}
	return like, nil
}

func (r *LikeRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.NotFound("like")
	}
	return nil
}

// GetDetail re-reads a like through the join pipeline so a toggle's 201
// response carries the same joined shape a liked-videos read would.
func (r *LikeRepository) GetDetail(ctx context.Context, id bson.ObjectID) (*domain.LikeDetail, error) {
	p := pipeline.New(pipeline.Filter(bson.M{"_id": id})).Append(r.detailStages()...)

	detail, err := aggregateOne[domain.LikeDetail](ctx, r.coll, p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("like")
		}
		return nil, fmt.Errorf("like detail: %w", err)
	}
	return detail, nil
}

// LikedVideos lists the actor's video likes, newest first, with each video's
// owner joined through a nested sub-pipeline.
func (r *LikeRepository) LikedVideos(ctx context.Context, actor bson.ObjectID) ([]domain.LikeDetail, error) {
	p := pipeline.New(
		pipeline.Filter(bson.M{"likedBy": actor, "video": bson.M{"$ne": nil}}),
	).Append(r.detailStages()...).Append(
		pipeline.Sort("createdAt", pipeline.Descending),
	)

	likes, err := aggregateAll[domain.LikeDetail](ctx, r.coll, p)
	if err != nil {
		return nil, fmt.Errorf("liked videos: %w", err)
	}
	return likes, nil
}

func (r *LikeRepository) detailStages() []pipeline.Stage {
	return []pipeline.Stage{
		pipeline.Join(collUsers, "likedBy", "_id", "likedBy", ownerSummary()),
		pipeline.Flatten("likedBy"),
		pipeline.Join(collVideos, "video", "_id", "video",
			pipeline.Join(collUsers, "owner", "_id", "owner", ownerSummary()),
			pipeline.Derive(bson.M{"owner": pipeline.First("owner")}),
		),
		pipeline.Join(collComments, "comment", "_id", "comment"),
		pipeline.Join(collTweets, "tweet", "_id", "tweet"),
		pipeline.Derive(bson.M{
			"video":   pipeline.First("video"),
			"comment": pipeline.First("comment"),
			"tweet":   pipeline.First("tweet"),
		}),
	}
}

func (r *LikeRepository) CountForVideos(ctx context.Context, videoIDs []bson.ObjectID) (int64, error) {
	if len(videoIDs) == 0 {
		return 0, nil
	}
	count, err := r.coll.CountDocuments(ctx, bson.M{"video": bson.M{"$in": videoIDs}})
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return count, nil
}

func (r *LikeRepository) DeleteByVideo(ctx context.Context, videoID bson.ObjectID) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"video": videoID}); err != nil {
		return fmt.Errorf("delete video likes: %w", err)
	}
	return nil
}
