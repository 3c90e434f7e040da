package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rudro/videotube-backend/internal/api/middleware"
	"github.com/rudro/videotube-backend/internal/domain"
	"github.com/rudro/videotube-backend/internal/repository"
)

type TweetHandler struct {
	tweets repository.TweetRepository
}

func NewTweetHandler(tweets repository.TweetRepository) *TweetHandler {
	return &TweetHandler{tweets: tweets}
}

type tweetRequest struct {
	Content string `json:"content"`
}

func (h *TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, domain.Unauthorized("unauthorized"))
		return
	}

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.InvalidArgument("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, domain.InvalidArgument("content is required"))
		return
	}

	detail, err := h.tweets.Create(r.Context(), &domain.Tweet{
		Owner:   user.ID,
		Content: req.Content,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusCreated, detail, "Tweet created successfully.")
}

// ListByUser handles GET /tweets/user/{userId}.
func (h *TweetHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	owner, err := domain.ParseID(chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, err)
		return
	}

	tweets, err := h.tweets.ListByOwner(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(tweets) == 0 {
		writeError(w, domain.NotFound("tweets"))
		return
	}

	writeData(w, http.StatusOK, tweets, "Tweets fetched successfully.")
}

func (h *TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(chi.URLParam(r, "tweetId"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.InvalidArgument("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, domain.InvalidArgument("content is required"))
		return
	}

	detail, err := h.tweets.Update(r.Context(), id, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, detail, "Tweet updated successfully.")
}

func (h *TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(chi.URLParam(r, "tweetId"))
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.tweets.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, map[string]any{}, "Tweet deleted successfully.")
}
