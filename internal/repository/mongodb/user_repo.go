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

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(s *Store) repository.UserRepository {
	return &UserRepository{coll: s.db.Collection(collUsers)}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	now := time.Now()
	user.ID = bson.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.Conflict("this username or email already exists")
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id bson.ObjectID) (*domain.User, error) {
	var user domain.User
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("user")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	filter := bson.M{"$or": []bson.M{
		{"username": username},
		{"email": email},
	}}

	var user domain.User
	err := r.coll.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("user")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) UpdateDetails(ctx context.Context, id bson.ObjectID, fullName, email string) (*domain.User, error) {
	return r.updateFields(ctx, id, bson.M{"fullName": fullName, "email": email})
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, id bson.ObjectID, url string) (*domain.User, error) {
	return r.updateFields(ctx, id, bson.M{"avatar": url})
}

func (r *UserRepository) UpdateCoverImage(ctx context.Context, id bson.ObjectID, url string) (*domain.User, error) {
	return r.updateFields(ctx, id, bson.M{"coverImage": url})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id bson.ObjectID, passwordHash string) error {
	_, err := r.updateFields(ctx, id, bson.M{"password": passwordHash})
	return err
}

func (r *UserRepository) SetRefreshToken(ctx context.Context, id bson.ObjectID, token string) error {
	_, err := r.updateFields(ctx, id, bson.M{"refreshToken": token})
	return err
}

func (r *UserRepository) ClearRefreshToken(ctx context.Context, id bson.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$unset": bson.M{"refreshToken": 1},
			"$set":   bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.NotFound("user")
	}
	return nil
}

func (r *UserRepository) updateFields(ctx context.Context, id bson.ObjectID, fields bson.M) (*domain.User, error) {
	fields["updatedAt"] = time.Now()

	var user domain.User
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("user")
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.Conflict("this username or email already exists")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &user, nil
}

// ChannelProfile resolves the public channel page: subscriber and subscription
// counts joined from the subscriptions collection, plus whether the viewer is
// among the channel's subscribers.
func (r *UserRepository) ChannelProfile(ctx context.Context, username string, viewer bson.ObjectID) (*domain.ChannelProfile, error) {
	p := pipeline.New(
		pipeline.Filter(bson.M{"username": username}),
		pipeline.Join(collSubscriptions, "_id", "channel", "subscribers"),
		pipeline.Join(collSubscriptions, "_id", "subscriber", "subscribedTo"),
		pipeline.Derive(bson.M{
			"subscriberCount": pipeline.Size("subscribers"),
			"subscriptions":   pipeline.Size("subscribedTo"),
			"isSubscribed":    pipeline.MemberOf(viewer, "subscribers.subscriber"),
		}),
		pipeline.Reshape(bson.M{
			"fullName":        1,
			"username":        1,
			"email":           1,
			"avatar":          1,
			"coverImage":      1,
			"subscriberCount": 1,
			"subscriptions":   1,
			"isSubscribed":    1,
		}),
	)

	profile, err := aggregateOne[domain.ChannelProfile](ctx, r.coll, p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("channel")
		}
		return nil, fmt.Errorf("channel profile: %w", err)
	}
	return profile, nil
}

// WatchHistory joins the user's watched video ids against the videos
// collection, attaching each video's owner summary.
func (r *UserRepository) WatchHistory(ctx context.Context, id bson.ObjectID) ([]domain.VideoDetail, error) {
	p := pipeline.New(
		pipeline.Filter(bson.M{"_id": id}),
		pipeline.Join(collVideos, "watchHistory", "_id", "watchHistory",
			pipeline.Join(collUsers, "owner", "_id", "owner", ownerSummary()),
			pipeline.Derive(bson.M{"owner": pipeline.First("owner")}),
		),
	)

	user, err := aggregateOne[struct {
		WatchHistory []domain.VideoDetail `bson:"watchHistory"`
	}](ctx, r.coll, p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("user")
		}
		return nil, fmt.Errorf("watch history: %w", err)
	}
	return user.WatchHistory, nil
}

func (r *UserRepository) AppendWatchHistory(ctx context.Context, id, videoID bson.ObjectID) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$push": bson.M{"watchHistory": videoID}},
	)
	if err != nil {
		return fmt.Errorf("append watch history: %w", err)
	}
	return nil
}
