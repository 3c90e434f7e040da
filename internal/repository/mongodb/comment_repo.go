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

var commentSortFields = []string{"createdAt", "updatedAt"}

type CommentRepository struct {
	coll *mongo.Collection
}

func NewCommentRepository(s *Store) repository.CommentRepository {
	return &CommentRepository{coll: s.db.Collection(collComments)}
}

// commentDetailStages joins the comment's video and owner and reshapes to the
// read contract. Create, update and list all share it so every response
// carries the same field set.
func commentDetailStages() []pipeline.Stage {
	return []pipeline.Stage{
		pipeline.Join(collVideos, "video", "_id", "video"),
		pipeline.Flatten("video"),
		pipeline.Join(collUsers, "owner", "_id", "owner"),
		pipeline.Flatten("owner"),
		pipeline.Reshape(bson.M{
			"content":   1,
			"createdAt": 1,
			"video":     bson.M{"_id": 1, "title": 1, "description": 1, "duration": 1, "thumbnail": 1},
			"owner":     bson.M{"_id": 1, "username": 1, "fullName": 1, "avatar": 1},
		}),
	}
}

func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) (*domain.CommentDetail, error) {
	now := time.Now()
	comment.ID = bson.NewObjectID()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, comment); err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return r.getDetail(ctx, comment.ID)
}

func (r *CommentRepository) ListByVideo(ctx context.Context, videoID bson.ObjectID, opts repository.CommentListOptions) (*pipeline.Page[domain.CommentDetail], error) {
	p := pipeline.New(pipeline.Filter(bson.M{"video": videoID})).
		Append(commentDetailStages()...).
		Append(pipeline.ParseSort(opts.SortBy, opts.SortType, commentSortFields...))

	page, err := pipeline.Paginate[domain.CommentDetail](ctx, r.coll, p, opts.Page)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return page, nil
}

func (r *CommentRepository) Update(ctx context.Context, id bson.ObjectID, content string) (*domain.CommentDetail, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"content": content, "updatedAt": time.Now()}},
	)
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.NotFound("comment")
	}
	return r.getDetail(ctx, id)
}

func (r *CommentRepository) Delete(ctx context.Context, id bson.ObjectID) (*domain.Comment, error) {
	var comment domain.Comment
	err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&comment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("comment")
		}
		return nil, fmt.Errorf("delete comment: %w", err)
	}
	return &comment, nil
}

func (r *CommentRepository) DeleteByVideo(ctx context.Context, videoID bson.ObjectID) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"video": videoID}); err != nil {
		return fmt.Errorf("delete video comments: %w", err)
	}
	return nil
}

func (r *CommentRepository) getDetail(ctx context.Context, id bson.ObjectID) (*domain.CommentDetail, error) {
	p := pipeline.New(pipeline.Filter(bson.M{"_id": id})).Append(commentDetailStages()...)

	detail, err := aggregateOne[domain.CommentDetail](ctx, r.coll, p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("comment")
		}
		return nil, fmt.Errorf("comment detail: %w", err)
	}
	return detail, nil
}
