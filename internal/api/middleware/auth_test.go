package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/rudro/videotube-backend/internal/api/middleware"
	"github.com/rudro/videotube-backend/internal/domain"
)

type stubValidator struct {
	userID bson.ObjectID
	err    error
}

func (s *stubValidator) ValidateAccessToken(string) (bson.ObjectID, error) {
	return s.userID, s.err
}

type stubUsers struct {
	user *domain.User
}

func (s *stubUsers) GetByID(_ context.Context, id bson.ObjectID) (*domain.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, domain.NotFound("user")
	}
	return s.user, nil
}

func (s *stubUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) { return u, nil }
func (s *stubUsers) GetByUsernameOrEmail(context.Context, string, string) (*domain.User, error) {
	return nil, domain.NotFound("user")
}
func (s *stubUsers) UpdateDetails(context.Context, bson.ObjectID, string, string) (*domain.User, error) {
	return nil, domain.NotFound("user")
}
func (s *stubUsers) UpdateAvatar(context.Context, bson.ObjectID, string) (*domain.User, error) {
	return nil, domain.NotFound("user")
}
func (s *stubUsers) UpdateCoverImage(context.Context, bson.ObjectID, string) (*domain.User, error) {
	return nil, domain.NotFound("user")
}
func (s *stubUsers) UpdatePassword(context.Context, bson.ObjectID, string) error  { return nil }
func (s *stubUsers) SetRefreshToken(context.Context, bson.ObjectID, string) error { return nil }
func (s *stubUsers) ClearRefreshToken(context.Context, bson.ObjectID) error       { return nil }
func (s *stubUsers) ChannelProfile(context.Context, string, bson.ObjectID) (*domain.ChannelProfile, error) {
	return nil, domain.NotFound("channel")
}
func (s *stubUsers) WatchHistory(context.Context, bson.ObjectID) ([]domain.VideoDetail, error) {
	return nil, nil
}
func (s *stubUsers) AppendWatchHistory(context.Context, bson.ObjectID, bson.ObjectID) error {
	return nil
}

func newProtected(validator *stubValidator, users *stubUsers) http.Handler {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return middleware.Auth(validator, users)(handler)
}

func TestAuth_MissingToken(t *testing.T) {
	protected := newProtected(&stubValidator{}, &stubUsers{})

	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestAuth_InvalidToken(t *testing.T) {
	validator := &stubValidator{err: errors.New("bad signature")}
	protected := newProtected(validator, &stubUsers{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nope")

	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_CookieToken(t *testing.T) {
	user := &domain.User{ID: bson.NewObjectID(), Username: "cookieuser"}
	validator := &stubValidator{userID: user.ID}
	users := &stubUsers{user: user}

	var seen *domain.User
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = middleware.CurrentUser(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	protected := middleware.Auth(validator, users)(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "valid.jwt"})

	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, user.ID, seen.ID)
}

func TestAuth_BearerToken(t *testing.T) {
	user := &domain.User{ID: bson.NewObjectID(), Username: "beareruser"}
	validator := &stubValidator{userID: user.ID}
	users := &stubUsers{user: user}

	var seen *domain.User
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = middleware.CurrentUser(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	protected := middleware.Auth(validator, users)(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer valid.jwt")

	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, user.ID, seen.ID)
}

func TestAuth_UnknownUser(t *testing.T) {
	validator := &stubValidator{userID: bson.NewObjectID()}
	protected := newProtected(validator, &stubUsers{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer valid.jwt")

	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
