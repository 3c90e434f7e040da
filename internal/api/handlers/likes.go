package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rudro/videotube-backend/internal/api/middleware"
	"github.com/rudro/videotube-backend/internal/domain"
	"github.com/rudro/videotube-backend/internal/repository"
)

type LikeHandler struct {
	likes repository.LikeRepository
}

func NewLikeHandler(likes repository.LikeRepository) *LikeHandler {
	return &LikeHandler{likes: likes}
}

// ToggleVideo handles POST /likes/toggle/v/{videoId}.
func (h *LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, repository.LikeTargetVideo, "videoId")
}

// ToggleComment handles POST /likes/toggle/c/{commentId}.
func (h *LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, repository.LikeTargetComment, "commentId")
}

// ToggleTweet handles POST /likes/toggle/t/{tweetId}.
func (h *LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, repository.LikeTargetTweet, "tweetId")
}

// toggle flips the like state: an existing like is removed with an empty 200,
// a missing one is created and echoed back joined with its target as a 201.
func (h *LikeHandler) toggle(w http.ResponseWriter, r *http.Request, kind repository.LikeTargetKind, param string) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, domain.Unauthorized("unauthorized"))
		return
	}

	target, err := domain.ParseID(chi.URLParam(r, param))
	if err != nil {
		writeError(w, err)
		return
	}

	existing, err := h.likes.Find(r.Context(), user.ID, kind, target)
	switch {
	case err == nil:
		if err := h.likes.Delete(r.Context(), existing.ID); err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusOK, map[string]any{}, "Like removed successfully.")

	case errors.Is(err, domain.ErrNotFound):
		like, err := h.likes.Create(r.Context(), user.ID, kind, target)
		if err != nil {
			writeError(w, err)
			return
		}
		detail, err := h.likes.GetDetail(r.Context(), like.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusCreated, detail, "Liked successfully.")

	default:
		writeError(w, err)
	}
}

// Videos handles GET /likes/videos: every video the caller has liked.
func (h *LikeHandler) Videos(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, domain.Unauthorized("unauthorized"))
		return
	}

	liked, err := h.likes.LikedVideos(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(liked) == 0 {
		writeError(w, domain.NotFound("liked videos"))
		return
	}

	writeData(w, http.StatusOK, liked, "Liked videos fetched successfully.")
}
