package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User is the stored shape of an account. PasswordHash and RefreshToken are
// never serialized to JSON; every read path must go through a projection that
// drops them as well.
type User struct {
	ID           bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username     string          `bson:"username" json:"username"`
	Email        string          `bson:"email" json:"email"`
	FullName     string          `bson:"fullName" json:"fullName"`
	Avatar       string          `bson:"avatar" json:"avatar"`
	CoverImage   string          `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	PasswordHash string          `bson:"password" json:"-"`
	RefreshToken string          `bson:"refreshToken,omitempty" json:"-"`
	WatchHistory []bson.ObjectID `bson:"watchHistory,omitempty" json:"-"`
	CreatedAt    time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time       `bson:"updatedAt" json:"updatedAt"`
}

type Video struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Owner       bson.ObjectID `bson:"owner" json:"owner"`
	VideoFile   string        `bson:"videoFile" json:"videoFile"`
	Thumbnail   string        `bson:"thumbnail" json:"thumbnail"`
	Title       string        `bson:"title" json:"title"`
	Description string        `bson:"description" json:"description"`
	Duration    float64       `bson:"duration" json:"duration"`
	Views       int64         `bson:"views" json:"views"`
	IsPublished bool          `bson:"isPublished" json:"isPublished"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt" json:"updatedAt"`
}

type Comment struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Owner     bson.ObjectID `bson:"owner" json:"owner"`
	Video     bson.ObjectID `bson:"video" json:"video"`
	Content   string        `bson:"content" json:"content"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// Like encodes the liked state by existing. Exactly one of Video, Comment or
// Tweet is set; uniqueness per (likedBy, target) is enforced by partial unique
// indexes, not application logic.
type Like struct {
	ID        bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	LikedBy   bson.ObjectID  `bson:"likedBy" json:"likedBy"`
	Video     *bson.ObjectID `bson:"video,omitempty" json:"video,omitempty"`
	Comment   *bson.ObjectID `bson:"comment,omitempty" json:"comment,omitempty"`
	Tweet     *bson.ObjectID `bson:"tweet,omitempty" json:"tweet,omitempty"`
	CreatedAt time.Time      `bson:"createdAt" json:"createdAt"`
}

// Subscription rows exist while the subscriber follows the channel. Both sides
// reference the users collection.
type Subscription struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Subscriber bson.ObjectID `bson:"subscriber" json:"subscriber"`
	Channel    bson.ObjectID `bson:"channel" json:"channel"`
	CreatedAt  time.Time     `bson:"createdAt" json:"createdAt"`
}

type Playlist struct {
	ID          bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	Owner       bson.ObjectID   `bson:"owner" json:"owner"`
	Name        string          `bson:"name" json:"name"`
	Description string          `bson:"description,omitempty" json:"description,omitempty"`
	Videos      []bson.ObjectID `bson:"videos" json:"videos"`
	CreatedAt   time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time       `bson:"updatedAt" json:"updatedAt"`
}

type Tweet struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Owner     bson.ObjectID `bson:"owner" json:"owner"`
	Content   string        `bson:"content" json:"content"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// UserSummary is the reduced owner projection attached by join sub-pipelines.
type UserSummary struct {
	ID       bson.ObjectID `bson:"_id" json:"id"`
	Username string        `bson:"username" json:"username"`
	FullName string        `bson:"fullName" json:"fullName"`
	Avatar   string        `bson:"avatar" json:"avatar"`
}

// VideoDetail is a video with its owner flattened in.
type VideoDetail struct {
	ID          bson.ObjectID `bson:"_id" json:"id"`
	VideoFile   string        `bson:"videoFile" json:"videoFile"`
	Thumbnail   string        `bson:"thumbnail" json:"thumbnail"`
	Title       string        `bson:"title" json:"title"`
	Description string        `bson:"description" json:"description"`
	Duration    float64       `bson:"duration" json:"duration"`
	Views       int64         `bson:"views" json:"views"`
	IsPublished bool          `bson:"isPublished" json:"isPublished"`
	Owner       UserSummary   `bson:"owner" json:"owner"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// VideoSummary is the reduced video projection used inside comment and like joins.
type VideoSummary struct {
	ID          bson.ObjectID `bson:"_id" json:"id"`
	Title       string        `bson:"title" json:"title"`
	Description string        `bson:"description" json:"description"`
	Duration    float64       `bson:"duration" json:"duration"`
	Thumbnail   string        `bson:"thumbnail" json:"thumbnail"`
}

type CommentDetail struct {
	ID        bson.ObjectID `bson:"_id" json:"id"`
	Content   string        `bson:"content" json:"content"`
	Video     VideoSummary  `bson:"video" json:"video"`
	Owner     UserSummary   `bson:"owner" json:"owner"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
}

// LikeDetail is a like joined with whichever target it points at. Only the
// populated target survives the projection.
type LikeDetail struct {
	ID        bson.ObjectID `bson:"_id" json:"id"`
	LikedBy   UserSummary   `bson:"likedBy" json:"likedBy"`
	Video     *VideoDetail  `bson:"video,omitempty" json:"video,omitempty"`
	Comment   *Comment      `bson:"comment,omitempty" json:"comment,omitempty"`
	Tweet     *Tweet        `bson:"tweet,omitempty" json:"tweet,omitempty"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
}

type TweetDetail struct {
	ID        bson.ObjectID `bson:"_id" json:"id"`
	Content   string        `bson:"content" json:"content"`
	Owner     UserSummary   `bson:"owner" json:"owner"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// SubscriptionDetail is a subscription joined with both user sides.
type SubscriptionDetail struct {
	ID         bson.ObjectID `bson:"_id" json:"id"`
	Subscriber UserSummary   `bson:"subscriber" json:"subscriber"`
	Channel    UserSummary   `bson:"channel" json:"channel"`
	CreatedAt  time.Time     `bson:"createdAt" json:"createdAt"`
}

// ChannelProfile is the public channel page: the user plus derived counts and
// whether the requesting viewer subscribes to it.
type ChannelProfile struct {
	ID              bson.ObjectID `bson:"_id" json:"id"`
	Username        string        `bson:"username" json:"username"`
	FullName        string        `bson:"fullName" json:"fullName"`
	Email           string        `bson:"email" json:"email"`
	Avatar          string        `bson:"avatar" json:"avatar"`
	CoverImage      string        `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	SubscriberCount int64         `bson:"subscriberCount" json:"subscriberCount"`
	Subscriptions   int64         `bson:"subscriptions" json:"subscriptions"`
	IsSubscribed    bool          `bson:"isSubscribed" json:"isSubscribed"`
}

// ChannelStats are the dashboard totals for a channel owner.
type ChannelStats struct {
	TotalSubscribers int64 `json:"totalSubscribers"`
	TotalVideos      int64 `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalLikes       int64 `json:"totalLikes"`
}
