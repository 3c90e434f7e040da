package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/rudro/videotube-backend/internal/domain"
	"github.com/rudro/videotube-backend/internal/repository"
)

type contextKey string

const currentUserKey contextKey = "currentUser"

// TokenValidator verifies an access token and returns the user id it was
// issued for. Satisfied by service.AuthService.
type TokenValidator interface {
	ValidateAccessToken(token string) (bson.ObjectID, error)
}

// Auth resolves the access token from the accessToken cookie or the
// Authorization header, loads the user and attaches it to the request
// context. Requests without a valid token get a 401 failure envelope.
func Auth(tokens TokenValidator, users repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				writeUnauthorized(w, "access token is required")
				return
			}

			userID, err := tokens.ValidateAccessToken(token)
			if err != nil {
				writeUnauthorized(w, "invalid access token")
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				writeUnauthorized(w, "invalid access token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser attaches an authenticated user to the context. Exposed so handler
// tests can simulate an authenticated request without running Auth.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, currentUserKey, user)
}

// CurrentUser returns the authenticated user attached by Auth.
func CurrentUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(currentUserKey).(*domain.User)
	return user, ok
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie("accessToken"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// writeUnauthorized normalises middleware rejections to the API failure shape.
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"code":    http.StatusUnauthorized,
		"message": message,
	})
}
