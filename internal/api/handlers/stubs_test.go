package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/rudro/videotube-backend/internal/api/middleware"
	"github.com/rudro/videotube-backend/internal/domain"
	"github.com/rudro/videotube-backend/internal/pipeline"
	"github.com/rudro/videotube-backend/internal/repository"
)

// testUser is attached to authenticated test requests the way Auth would.
func testUser() *domain.User {
	return &domain.User{
		ID:       bson.NewObjectID(),
		Username: "caller",
		Email:    "caller@example.com",
		FullName: "Test Caller",
	}
}

// authed injects the user into the request context, standing in for the Auth
// middleware.
func authed(user *domain.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithUser(r.Context(), user)))
		})
	}
}

func doRequest(t *testing.T, h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decodeEnvelope decodes the success envelope and asserts its shape.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int) map[string]any {
	t.Helper()
	require.Equal(t, wantStatus, rec.Code)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, true, envelope["success"])
	require.EqualValues(t, wantStatus, envelope["statusCode"])
	return envelope
}

// decodeFailure decodes the failure envelope and asserts its shape.
func decodeFailure(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int) map[string]any {
	t.Helper()
	require.Equal(t, wantStatus, rec.Code)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, false, envelope["success"])
	require.EqualValues(t, wantStatus, envelope["code"])
	return envelope
}

// stubLikeRepo stores likes in a slice; calls is bumped on every method so
// tests can assert a rejected request never reached the store.
type stubLikeRepo struct {
	likes []domain.Like
	calls int
}

func (s *stubLikeRepo) Find(_ context.Context, actor bson.ObjectID, kind repository.LikeTargetKind, target bson.ObjectID) (*domain.Like, error) {
	s.calls++
	for i := range s.likes {
		l := &s.likes[i]
		if l.LikedBy != actor {
			continue
		}
		if id := likeTarget(l, kind); id != nil && *id == target {
			return l, nil
		}
	}
	return nil, domain.NotFound("like")
}

func (s *stubLikeRepo) Create(_ context.Context, actor bson.ObjectID, kind repository.LikeTargetKind, target bson.ObjectID) (*domain.Like, error) {
	s.calls++
	like := domain.Like{ID: bson.NewObjectID(), LikedBy: actor}
	switch kind {
	case repository.LikeTargetVideo:
		like.Video = &target
	case repository.LikeTargetComment:
		like.Comment = &target
	case repository.LikeTargetTweet:
		like.Tweet = &target
	}
	s.likes = append(s.likes, like)
	return &like, nil
}

func (s *stubLikeRepo) Delete(_ context.Context, id bson.ObjectID) error {
	s.calls++
	for i := range s.likes {
		if s.likes[i].ID == id {
			s.likes = append(s.likes[:i], s.likes[i+1:]...)
			return nil
		}
	}
	return domain.NotFound("like")
}

func (s *stubLikeRepo) GetDetail(_ context.Context, id bson.ObjectID) (*domain.LikeDetail, error) {
	s.calls++
	for i := range s.likes {
		if s.likes[i].ID == id {
			return &domain.LikeDetail{ID: id}, nil
		}
	}
	return nil, domain.NotFound("like")
}

func (s *stubLikeRepo) LikedVideos(_ context.Context, actor bson.ObjectID) ([]domain.LikeDetail, error) {
	s.calls++
	var out []domain.LikeDetail
	for i := range s.likes {
		if s.likes[i].LikedBy == actor && s.likes[i].Video != nil {
			out = append(out, domain.LikeDetail{ID: s.likes[i].ID})
		}
	}
	return out, nil
}

func (s *stubLikeRepo) CountForVideos(_ context.Context, videoIDs []bson.ObjectID) (int64, error) {
	s.calls++
	var n int64
	for i := range s.likes {
		if s.likes[i].Video == nil {
			continue
		}
		for _, id := range videoIDs {
			if *s.likes[i].Video == id {
				n++
			}
		}
	}
	return n, nil
}

func (s *stubLikeRepo) DeleteByVideo(_ context.Context, videoID bson.ObjectID) error {
	s.calls++
	kept := s.likes[:0]
	for _, l := range s.likes {
		if l.Video == nil || *l.Video != videoID {
			kept = append(kept, l)
		}
	}
	s.likes = kept
	return nil
}

func likeTarget(l *domain.Like, kind repository.LikeTargetKind) *bson.ObjectID {
	switch kind {
	case repository.LikeTargetVideo:
		return l.Video
	case repository.LikeTargetComment:
		return l.Comment
	case repository.LikeTargetTweet:
		return l.Tweet
	}
	return nil
}

// stubSubscriptionRepo mirrors the unique (subscriber, channel) pair rule.
type stubSubscriptionRepo struct {
	subs  []domain.Subscription
	calls int
}

func (s *stubSubscriptionRepo) Find(_ context.Context, subscriber, channel bson.ObjectID) (*domain.Subscription, error) {
	s.calls++
	for i := range s.subs {
		if s.subs[i].Subscriber == subscriber && s.subs[i].Channel == channel {
			return &s.subs[i], nil
		}
	}
	return nil, domain.NotFound("subscription")
}

func (s *stubSubscriptionRepo) Create(_ context.Context, subscriber, channel bson.ObjectID) (*domain.Subscription, error) {
	s.calls++
	for i := range s.subs {
		if s.subs[i].Subscriber == subscriber && s.subs[i].Channel == channel {
			return nil, domain.Conflict("already subscribed")
		}
	}
	sub := domain.Subscription{ID: bson.NewObjectID(), Subscriber: subscriber, Channel: channel}
	s.subs = append(s.subs, sub)
	return &sub, nil
}

func (s *stubSubscriptionRepo) Delete(_ context.Context, id bson.ObjectID) error {
	s.calls++
	for i := range s.subs {
		if s.subs[i].ID == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return nil
		}
	}
	return domain.NotFound("subscription")
}

func (s *stubSubscriptionRepo) GetDetail(_ context.Context, id bson.ObjectID) (*domain.SubscriptionDetail, error) {
	s.calls++
	for i := range s.subs {
		if s.subs[i].ID == id {
			return &domain.SubscriptionDetail{ID: id}, nil
		}
	}
	return nil, domain.NotFound("subscription")
}

func (s *stubSubscriptionRepo) Subscribers(_ context.Context, channel bson.ObjectID) ([]domain.UserSummary, error) {
	s.calls++
	var out []domain.UserSummary
	for i := range s.subs {
		if s.subs[i].Channel == channel {
			out = append(out, domain.UserSummary{ID: s.subs[i].Subscriber})
		}
	}
	return out, nil
}

func (s *stubSubscriptionRepo) SubscribedChannels(_ context.Context, subscriber bson.ObjectID) ([]domain.UserSummary, error) {
	s.calls++
	var out []domain.UserSummary
	for i := range s.subs {
		if s.subs[i].Subscriber == subscriber {
			out = append(out, domain.UserSummary{ID: s.subs[i].Channel})
		}
	}
	return out, nil
}

func (s *stubSubscriptionRepo) CountSubscribers(_ context.Context, channel bson.ObjectID) (int64, error) {
	s.calls++
	var n int64
	for i := range s.subs {
		if s.subs[i].Channel == channel {
			n++
		}
	}
	return n, nil
}

// stubTweetRepo is an in-memory TweetRepository.
type stubTweetRepo struct {
	tweets []domain.Tweet
}

func (s *stubTweetRepo) Create(_ context.Context, tweet *domain.Tweet) (*domain.TweetDetail, error) {
	tweet.ID = bson.NewObjectID()
	s.tweets = append(s.tweets, *tweet)
	return &domain.TweetDetail{ID: tweet.ID, Content: tweet.Content, Owner: domain.UserSummary{ID: tweet.Owner}}, nil
}

func (s *stubTweetRepo) ListByOwner(_ context.Context, owner bson.ObjectID) ([]domain.TweetDetail, error) {
	var out []domain.TweetDetail
	for _, tw := range s.tweets {
		if tw.Owner == owner {
			out = append(out, domain.TweetDetail{ID: tw.ID, Content: tw.Content})
		}
	}
	return out, nil
}

func (s *stubTweetRepo) Update(_ context.Context, id bson.ObjectID, content string) (*domain.TweetDetail, error) {
	for i := range s.tweets {
		if s.tweets[i].ID == id {
			s.tweets[i].Content = content
			return &domain.TweetDetail{ID: id, Content: content}, nil
		}
	}
	return nil, domain.NotFound("tweet")
}

func (s *stubTweetRepo) Delete(_ context.Context, id bson.ObjectID) (*domain.Tweet, error) {
	for i := range s.tweets {
		if s.tweets[i].ID == id {
			tw := s.tweets[i]
			s.tweets = append(s.tweets[:i], s.tweets[i+1:]...)
			return &tw, nil
		}
	}
	return nil, domain.NotFound("tweet")
}

// stubPlaylistRepo mimics $addToSet/$pull semantics for the video list.
type stubPlaylistRepo struct {
	playlists []domain.Playlist
}

func (s *stubPlaylistRepo) Create(_ context.Context, playlist *domain.Playlist) (*domain.Playlist, error) {
	playlist.ID = bson.NewObjectID()
	if playlist.Videos == nil {
		playlist.Videos = []bson.ObjectID{}
	}
	s.playlists = append(s.playlists, *playlist)
	return playlist, nil
}

func (s *stubPlaylistRepo) Get(_ context.Context, id bson.ObjectID) (*domain.Playlist, error) {
	for i := range s.playlists {
		if s.playlists[i].ID == id {
			return &s.playlists[i], nil
		}
	}
	return nil, domain.NotFound("playlist")
}

func (s *stubPlaylistRepo) ListByOwner(_ context.Context, owner bson.ObjectID) ([]domain.Playlist, error) {
	var out []domain.Playlist
	for _, p := range s.playlists {
		if p.Owner == owner {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubPlaylistRepo) AddVideo(_ context.Context, id, videoID bson.ObjectID) (*domain.Playlist, error) {
	for i := range s.playlists {
		if s.playlists[i].ID != id {
			continue
		}
		for _, v := range s.playlists[i].Videos {
			if v == videoID {
				return &s.playlists[i], nil
			}
		}
		s.playlists[i].Videos = append(s.playlists[i].Videos, videoID)
		return &s.playlists[i], nil
	}
	return nil, domain.NotFound("playlist")
}

func (s *stubPlaylistRepo) RemoveVideo(_ context.Context, id, videoID bson.ObjectID) (*domain.Playlist, error) {
	for i := range s.playlists {
		if s.playlists[i].ID != id {
			continue
		}
		videos := s.playlists[i].Videos[:0]
		for _, v := range s.playlists[i].Videos {
			if v != videoID {
				videos = append(videos, v)
			}
		}
		s.playlists[i].Videos = videos
		return &s.playlists[i], nil
	}
	return nil, domain.NotFound("playlist")
}

func (s *stubPlaylistRepo) Update(_ context.Context, id bson.ObjectID, name, description *string) (*domain.Playlist, error) {
	for i := range s.playlists {
		if s.playlists[i].ID != id {
			continue
		}
		if name != nil {
			s.playlists[i].Name = *name
		}
		if description != nil {
			s.playlists[i].Description = *description
		}
		return &s.playlists[i], nil
	}
	return nil, domain.NotFound("playlist")
}

func (s *stubPlaylistRepo) Delete(_ context.Context, id bson.ObjectID) (*domain.Playlist, error) {
	for i := range s.playlists {
		if s.playlists[i].ID == id {
			p := s.playlists[i]
			s.playlists = append(s.playlists[:i], s.playlists[i+1:]...)
			return &p, nil
		}
	}
	return nil, domain.NotFound("playlist")
}

// stubVideoRepo serves the listing and detail paths used by handler tests.
type stubVideoRepo struct {
	videos   []domain.Video
	listPage *pipeline.Page[domain.VideoDetail]
	lastOpts repository.VideoListOptions
	calls    int
}

func (s *stubVideoRepo) Create(_ context.Context, video *domain.Video) (*domain.Video, error) {
	s.calls++
	video.ID = bson.NewObjectID()
	s.videos = append(s.videos, *video)
	return video, nil
}

func (s *stubVideoRepo) List(_ context.Context, opts repository.VideoListOptions) (*pipeline.Page[domain.VideoDetail], error) {
	s.calls++
	s.lastOpts = opts
	if s.listPage != nil {
		return s.listPage, nil
	}
	return &pipeline.Page[domain.VideoDetail]{Items: []domain.VideoDetail{}, Page: opts.Page.Page, Limit: opts.Page.Limit}, nil
}

func (s *stubVideoRepo) GetDetail(_ context.Context, id bson.ObjectID) (*domain.VideoDetail, error) {
	s.calls++
	for _, v := range s.videos {
		if v.ID == id {
			return &domain.VideoDetail{ID: v.ID, Title: v.Title, Views: v.Views}, nil
		}
	}
	return nil, domain.NotFound("video")
}

func (s *stubVideoRepo) Get(_ context.Context, id bson.ObjectID) (*domain.Video, error) {
	s.calls++
	for i := range s.videos {
		if s.videos[i].ID == id {
			return &s.videos[i], nil
		}
	}
	return nil, domain.NotFound("video")
}

func (s *stubVideoRepo) Update(_ context.Context, id bson.ObjectID, update repository.VideoUpdate) (*domain.Video, error) {
	s.calls++
	for i := range s.videos {
		if s.videos[i].ID != id {
			continue
		}
		if update.Title != nil {
			s.videos[i].Title = *update.Title
		}
		if update.Description != nil {
			s.videos[i].Description = *update.Description
		}
		if update.Thumbnail != nil {
			s.videos[i].Thumbnail = *update.Thumbnail
		}
		return &s.videos[i], nil
	}
	return nil, domain.NotFound("video")
}

func (s *stubVideoRepo) Delete(_ context.Context, id bson.ObjectID) (*domain.Video, error) {
	s.calls++
	for i := range s.videos {
		if s.videos[i].ID == id {
			v := s.videos[i]
			s.videos = append(s.videos[:i], s.videos[i+1:]...)
			return &v, nil
		}
	}
	return nil, domain.NotFound("video")
}

func (s *stubVideoRepo) SetPublished(_ context.Context, id bson.ObjectID, published bool) (*domain.Video, error) {
	s.calls++
	for i := range s.videos {
		if s.videos[i].ID == id {
			s.videos[i].IsPublished = published
			return &s.videos[i], nil
		}
	}
	return nil, domain.NotFound("video")
}

func (s *stubVideoRepo) IncrementViews(_ context.Context, id bson.ObjectID) error {
	s.calls++
	for i := range s.videos {
		if s.videos[i].ID == id {
			s.videos[i].Views++
			return nil
		}
	}
	return domain.NotFound("video")
}

func (s *stubVideoRepo) ListByOwner(_ context.Context, owner bson.ObjectID) ([]domain.Video, error) {
	s.calls++
	var out []domain.Video
	for _, v := range s.videos {
		if v.Owner == owner {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *stubVideoRepo) StatsByOwner(_ context.Context, owner bson.ObjectID) (int64, int64, error) {
	s.calls++
	var videos, views int64
	for _, v := range s.videos {
		if v.Owner == owner {
			videos++
			views += v.Views
		}
	}
	return videos, views, nil
}

func (s *stubVideoRepo) IDsByOwner(_ context.Context, owner bson.ObjectID) ([]bson.ObjectID, error) {
	s.calls++
	var out []bson.ObjectID
	for _, v := range s.videos {
		if v.Owner == owner {
			out = append(out, v.ID)
		}
	}
	return out, nil
}

// stubCommentRepo is an in-memory CommentRepository.
type stubCommentRepo struct {
	comments []domain.Comment
	lastOpts repository.CommentListOptions
}

func (s *stubCommentRepo) Create(_ context.Context, comment *domain.Comment) (*domain.CommentDetail, error) {
	comment.ID = bson.NewObjectID()
	s.comments = append(s.comments, *comment)
	return &domain.CommentDetail{ID: comment.ID, Content: comment.Content}, nil
}

func (s *stubCommentRepo) ListByVideo(_ context.Context, videoID bson.ObjectID, opts repository.CommentListOptions) (*pipeline.Page[domain.CommentDetail], error) {
	s.lastOpts = opts
	items := []domain.CommentDetail{}
	for _, c := range s.comments {
		if c.Video == videoID {
			items = append(items, domain.CommentDetail{ID: c.ID, Content: c.Content})
		}
	}
	return &pipeline.Page[domain.CommentDetail]{
		Items:      items,
		Page:       opts.Page.Page,
		Limit:      opts.Page.Limit,
		TotalItems: int64(len(items)),
	}, nil
}

func (s *stubCommentRepo) Update(_ context.Context, id bson.ObjectID, content string) (*domain.CommentDetail, error) {
	for i := range s.comments {
		if s.comments[i].ID == id {
			s.comments[i].Content = content
			return &domain.CommentDetail{ID: id, Content: content}, nil
		}
	}
	return nil, domain.NotFound("comment")
}

func (s *stubCommentRepo) Delete(_ context.Context, id bson.ObjectID) (*domain.Comment, error) {
	for i := range s.comments {
		if s.comments[i].ID == id {
			c := s.comments[i]
			s.comments = append(s.comments[:i], s.comments[i+1:]...)
			return &c, nil
		}
	}
	return nil, domain.NotFound("comment")
}

func (s *stubCommentRepo) DeleteByVideo(_ context.Context, videoID bson.ObjectID) error {
	kept := s.comments[:0]
	for _, c := range s.comments {
		if c.Video != videoID {
			kept = append(kept, c)
		}
	}
	s.comments = kept
	return nil
}

// stubBlobStorage records saves and deletes without touching a bucket.
type stubBlobStorage struct {
	saved   []string
	deleted []string
}

func (s *stubBlobStorage) Save(_ context.Context, name string, _ io.Reader) (string, error) {
	url := "https://cdn.test/" + name
	s.saved = append(s.saved, url)
	return url, nil
}

func (s *stubBlobStorage) Delete(_ context.Context, url string) error {
	s.deleted = append(s.deleted, url)
	return nil
}

// stubHandlerUserRepo satisfies UserRepository where video handlers only need
// watch-history appends.
type stubHandlerUserRepo struct {
	history []bson.ObjectID
}

func (s *stubHandlerUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	return u, nil
}

func (s *stubHandlerUserRepo) GetByID(context.Context, bson.ObjectID) (*domain.User, error) {
	return nil, domain.NotFound("user")
}

func (s *stubHandlerUserRepo) GetByUsernameOrEmail(context.Context, string, string) (*domain.User, error) {
	return nil, domain.NotFound("user")
}

func (s *stubHandlerUserRepo) UpdateDetails(context.Context, bson.ObjectID, string, string) (*domain.User, error) {
	return nil, domain.NotFound("user")
}

func (s *stubHandlerUserRepo) UpdateAvatar(context.Context, bson.ObjectID, string) (*domain.User, error) {
	return nil, domain.NotFound("user")
}

func (s *stubHandlerUserRepo) UpdateCoverImage(context.Context, bson.ObjectID, string) (*domain.User, error) {
	return nil, domain.NotFound("user")
}

func (s *stubHandlerUserRepo) UpdatePassword(context.Context, bson.ObjectID, string) error {
	return nil
}

func (s *stubHandlerUserRepo) SetRefreshToken(context.Context, bson.ObjectID, string) error {
	return nil
}

func (s *stubHandlerUserRepo) ClearRefreshToken(context.Context, bson.ObjectID) error {
	return nil
}

func (s *stubHandlerUserRepo) ChannelProfile(context.Context, string, bson.ObjectID) (*domain.ChannelProfile, error) {
	return nil, domain.NotFound("channel")
}

func (s *stubHandlerUserRepo) WatchHistory(context.Context, bson.ObjectID) ([]domain.VideoDetail, error) {
	return nil, nil
}

func (s *stubHandlerUserRepo) AppendWatchHistory(_ context.Context, _ bson.ObjectID, videoID bson.ObjectID) error {
	s.history = append(s.history, videoID)
	return nil
}

// memUserRepo keeps registered users in memory so the login and register
// handlers can run against a real auth service.
type memUserRepo struct {
	users []domain.User
}

func (s *memUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	u.ID = bson.NewObjectID()
	s.users = append(s.users, *u)
	stored := *u
	return &stored, nil
}

func (s *memUserRepo) GetByID(_ context.Context, id bson.ObjectID) (*domain.User, error) {
	for i := range s.users {
		if s.users[i].ID == id {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, domain.NotFound("user")
}

func (s *memUserRepo) GetByUsernameOrEmail(_ context.Context, username, email string) (*domain.User, error) {
	for i := range s.users {
		if (username != "" && s.users[i].Username == username) ||
			(email != "" && s.users[i].Email == email) {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, domain.NotFound("user")
}

func (s *memUserRepo) UpdateDetails(context.Context, bson.ObjectID, string, string) (*domain.User, error) {
	return nil, domain.NotFound("user")
}

func (s *memUserRepo) UpdateAvatar(context.Context, bson.ObjectID, string) (*domain.User, error) {
	return nil, domain.NotFound("user")
}

func (s *memUserRepo) UpdateCoverImage(context.Context, bson.ObjectID, string) (*domain.User, error) {
	return nil, domain.NotFound("user")
}

func (s *memUserRepo) UpdatePassword(_ context.Context, id bson.ObjectID, passwordHash string) error {
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i].PasswordHash = passwordHash
			return nil
		}
	}
	return domain.NotFound("user")
}

func (s *memUserRepo) SetRefreshToken(_ context.Context, id bson.ObjectID, token string) error {
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i].RefreshToken = token
			return nil
		}
	}
	return domain.NotFound("user")
}

func (s *memUserRepo) ClearRefreshToken(_ context.Context, id bson.ObjectID) error {
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i].RefreshToken = ""
			return nil
		}
	}
	return domain.NotFound("user")
}

func (s *memUserRepo) ChannelProfile(context.Context, string, bson.ObjectID) (*domain.ChannelProfile, error) {
	return nil, domain.NotFound("channel")
}

func (s *memUserRepo) WatchHistory(context.Context, bson.ObjectID) ([]domain.VideoDetail, error) {
	return nil, nil
}

func (s *memUserRepo) AppendWatchHistory(context.Context, bson.ObjectID, bson.ObjectID) error {
	return nil
}
