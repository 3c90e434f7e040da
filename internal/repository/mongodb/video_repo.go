package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/rudro/videotube-backend/internal/domain"
	"github.com/rudro/videotube-backend/internal/pipeline"
	"github.com/rudro/videotube-backend/internal/repository"
)

// videoSortFields are the only caller-selectable sort keys for video listings.
var videoSortFields = []string{"createdAt", "title", "duration", "views"}

type VideoRepository struct {
	coll *mongo.Collection
}

func NewVideoRepository(s *Store) repository.VideoRepository {
	return &VideoRepository{coll: s.db.Collection(collVideos)}
}

func (r *VideoRepository) Create(ctx context.Context, video *domain.Video) (*domain.Video, error) {
	now := time.Now()
	video.ID = bson.NewObjectID()
	video.CreatedAt = now
	video.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, video); err != nil {
		return nil, fmt.Errorf("insert video: %w", err)
	}
	return video, nil
}

// List pages through videos with the owner joined in, optionally narrowed to
// one owner and to a case-insensitive title/description match.
func (r *VideoRepository) List(ctx context.Context, opts repository.VideoListOptions) (*pipeline.Page[domain.VideoDetail], error) {
	p := pipeline.New()

	if opts.Owner != nil {
		p = p.Append(pipeline.Filter(bson.M{"owner": *opts.Owner}))
	}
	if opts.Query != "" {
		p = p.Append(pipeline.Filter(bson.M{"$or": []bson.M{
			{"title": bson.M{"$regex": opts.Query, "$options": "i"}},
			{"description": bson.M{"$regex": opts.Query, "$options": "i"}},
		}}))
	}

	p = p.Append(
		pipeline.Join(collUsers, "owner", "_id", "owner", ownerSummary()),
		pipeline.Flatten("owner"),
		pipeline.ParseSort(opts.SortBy, opts.SortType, videoSortFields...),
	)

	page, err := pipeline.Paginate[domain.VideoDetail](ctx, r.coll, p, opts.Page)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return page, nil
}

func (r *VideoRepository) GetDetail(ctx context.Context, id bson.ObjectID) (*domain.VideoDetail, error) {
	p := pipeline.New(
		pipeline.Filter(bson.M{"_id": id}),
		pipeline.Join(collUsers, "owner", "_id", "owner", ownerSummary()),
		pipeline.Flatten("owner"),
	)

	video, err := aggregateOne[domain.VideoDetail](ctx, r.coll, p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("video")
		}
		return nil, fmt.Errorf("video detail: %w", err)
	}
	return video, nil
}

func (r *VideoRepository) Get(ctx context.Context, id bson.ObjectID) (*domain.Video, error) {
	var video domain.Video
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("video")
		}
		return nil, fmt.Errorf("find video: %w", err)
	}
	return &video, nil
}

func (r *VideoRepository) Update(ctx context.Context, id bson.ObjectID, update repository.VideoUpdate) (*domain.Video, error) {
	fields := bson.M{"updatedAt": time.Now()}
	if update.Title != nil {
		fields["title"] = *update.Title
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if update.Thumbnail != nil {
		fields["thumbnail"] = *update.Thumbnail
	}

	var video domain.Video
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("video")
		}
		return nil, fmt.Errorf("update video: %w", err)
	}
	return &video, nil
}

func (r *VideoRepository) Delete(ctx context.Context, id bson.ObjectID) (*domain.Video, error) {
	var video domain.Video
	err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("video")
		}
		return nil, fmt.Errorf("delete video: %w", err)
	}
	return &video, nil
}

func (r *VideoRepository) SetPublished(ctx context.Context, id bson.ObjectID, published bool) (*domain.Video, error) {
	var video domain.Video
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isPublished": published, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("video")
		}
		return nil, fmt.Errorf("toggle publish: %w", err)
	}
	return &video, nil
}

func (r *VideoRepository) IncrementViews(ctx context.Context, id bson.ObjectID) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"views": 1}},
	)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

func (r *VideoRepository) ListByOwner(ctx context.Context, owner bson.ObjectID) ([]domain.Video, error) {
	cursor, err := r.coll.Find(ctx,
		bson.M{"owner": owner},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list owner videos: %w", err)
	}
	defer cursor.Close(ctx)

	var videos []domain.Video
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, fmt.Errorf("decode owner videos: %w", err)
	}
	return videos, nil
}

// StatsByOwner groups the owner's videos into count and view totals.
func (r *VideoRepository) StatsByOwner(ctx context.Context, owner bson.ObjectID) (int64, int64, error) {
	p := pipeline.New(
		pipeline.Filter(bson.M{"owner": owner}),
		pipeline.Stage{{Key: "$group", Value: bson.M{
			"_id":         nil,
			"totalVideos": bson.M{"$sum": 1},
			"totalViews":  bson.M{"$sum": "$views"},
		}}},
	)

	stats, err := aggregateOne[struct {
		TotalVideos int64 `bson:"totalVideos"`
		TotalViews  int64 `bson:"totalViews"`
	}](ctx, r.coll, p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("video stats: %w", err)
	}
	return stats.TotalVideos, stats.TotalViews, nil
}

func (r *VideoRepository) IDsByOwner(ctx context.Context, owner bson.ObjectID) ([]bson.ObjectID, error) {
	cursor, err := r.coll.Find(ctx,
		bson.M{"owner": owner},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("owner video ids: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID bson.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode owner video ids: %w", err)
	}

	ids := make([]bson.ObjectID, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}
