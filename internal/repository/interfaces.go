// Package repository declares the persistence interfaces the handlers depend
// on. The mongo subpackage provides the real implementations; tests substitute
// stubs.
package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/rudro/videotube-backend/internal/domain"
	"github.com/rudro/videotube-backend/internal/pipeline"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id bson.ObjectID) (*domain.User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)
	UpdateDetails(ctx context.Context, id bson.ObjectID, fullName, email string) (*domain.User, error)
	UpdateAvatar(ctx context.Context, id bson.ObjectID, url string) (*domain.User, error)
	UpdateCoverImage(ctx context.Context, id bson.ObjectID, url string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id bson.ObjectID, passwordHash string) error
	SetRefreshToken(ctx context.Context, id bson.ObjectID, token string) error
	ClearRefreshToken(ctx context.Context, id bson.ObjectID) error
	ChannelProfile(ctx context.Context, username string, viewer bson.ObjectID) (*domain.ChannelProfile, error)
	WatchHistory(ctx context.Context, id bson.ObjectID) ([]domain.VideoDetail, error)
	AppendWatchHistory(ctx context.Context, id, videoID bson.ObjectID) error
}

// VideoListOptions narrows and orders the paginated video listing.
type VideoListOptions struct {
	Owner    *bson.ObjectID // filter by owning user when set
	Query    string         // case-insensitive title/description search
	SortBy   string
	SortType string
	Page     pipeline.Options
}

type VideoRepository interface {
	Create(ctx context.Context, video *domain.Video) (*domain.Video, error)
	List(ctx context.Context, opts VideoListOptions) (*pipeline.Page[domain.VideoDetail], error)
	GetDetail(ctx context.Context, id bson.ObjectID) (*domain.VideoDetail, error)
	Get(ctx context.Context, id bson.ObjectID) (*domain.Video, error)
	Update(ctx context.Context, id bson.ObjectID, update VideoUpdate) (*domain.Video, error)
	Delete(ctx context.Context, id bson.ObjectID) (*domain.Video, error)
	SetPublished(ctx context.Context, id bson.ObjectID, published bool) (*domain.Video, error)
	IncrementViews(ctx context.Context, id bson.ObjectID) error
	ListByOwner(ctx context.Context, owner bson.ObjectID) ([]domain.Video, error)
	StatsByOwner(ctx context.Context, owner bson.ObjectID) (totalVideos, totalViews int64, err error)
	IDsByOwner(ctx context.Context, owner bson.ObjectID) ([]bson.ObjectID, error)
}

// VideoUpdate carries the optional video edit fields; nil means "leave as is".
type VideoUpdate struct {
	Title       *string
	Description *string
	Thumbnail   *string
}

// CommentListOptions orders and windows a video's comment listing.
type CommentListOptions struct {
	SortBy   string
	SortType string
	Page     pipeline.Options
}

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) (*domain.CommentDetail, error)
	ListByVideo(ctx context.Context, videoID bson.ObjectID, opts CommentListOptions) (*pipeline.Page[domain.CommentDetail], error)
	Update(ctx context.Context, id bson.ObjectID, content string) (*domain.CommentDetail, error)
	Delete(ctx context.Context, id bson.ObjectID) (*domain.Comment, error)
	DeleteByVideo(ctx context.Context, videoID bson.ObjectID) error
}

// LikeTargetKind selects which of the three mutually exclusive like targets a
// toggle addresses.
type LikeTargetKind string

const (
	LikeTargetVideo   LikeTargetKind = "video"
	LikeTargetComment LikeTargetKind = "comment"
	LikeTargetTweet   LikeTargetKind = "tweet"
)

type LikeRepository interface {
	Find(ctx context.Context, actor bson.ObjectID, kind LikeTargetKind, target bson.ObjectID) (*domain.Like, error)
	Create(ctx context.Context, actor bson.ObjectID, kind LikeTargetKind, target bson.ObjectID) (*domain.Like, error)
	Delete(ctx context.Context, id bson.ObjectID) error
	GetDetail(ctx context.Context, id bson.ObjectID) (*domain.LikeDetail, error)
	LikedVideos(ctx context.Context, actor bson.ObjectID) ([]domain.LikeDetail, error)
	CountForVideos(ctx context.Context, videoIDs []bson.ObjectID) (int64, error)
	DeleteByVideo(ctx context.Context, videoID bson.ObjectID) error
}

type PlaylistRepository interface {
	Create(ctx context.Context, playlist *domain.Playlist) (*domain.Playlist, error)
	Get(ctx context.Context, id bson.ObjectID) (*domain.Playlist, error)
	ListByOwner(ctx context.Context, owner bson.ObjectID) ([]domain.Playlist, error)
	AddVideo(ctx context.Context, id, videoID bson.ObjectID) (*domain.Playlist, error)
	RemoveVideo(ctx context.Context, id, videoID bson.ObjectID) (*domain.Playlist, error)
	Update(ctx context.Context, id bson.ObjectID, name, description *string) (*domain.Playlist, error)
	Delete(ctx context.Context, id bson.ObjectID) (*domain.Playlist, error)
}

type SubscriptionRepository interface {
	Find(ctx context.Context, subscriber, channel bson.ObjectID) (*domain.Subscription, error)
	Create(ctx context.Context, subscriber, channel bson.ObjectID) (*domain.Subscription, error)
	Delete(ctx context.Context, id bson.ObjectID) error
	GetDetail(ctx context.Context, id bson.ObjectID) (*domain.SubscriptionDetail, error)
	Subscribers(ctx context.Context, channel bson.ObjectID) ([]domain.UserSummary, error)
	SubscribedChannels(ctx context.Context, subscriber bson.ObjectID) ([]domain.UserSummary, error)
	CountSubscribers(ctx context.Context, channel bson.ObjectID) (int64, error)
}

type TweetRepository interface {
	Create(ctx context.Context, tweet *domain.Tweet) (*domain.TweetDetail, error)
	ListByOwner(ctx context.Context, owner bson.ObjectID) ([]domain.TweetDetail, error)
	Update(ctx context.Context, id bson.ObjectID, content string) (*domain.TweetDetail, error)
	Delete(ctx context.Context, id bson.ObjectID) (*domain.Tweet, error)
}

// Repositories bundles every store the router needs.
type Repositories struct {
	User         UserRepository
	Video        VideoRepository
	Comment      CommentRepository
	Like         LikeRepository
	Playlist     PlaylistRepository
	Subscription SubscriptionRepository
	Tweet        TweetRepository
}
