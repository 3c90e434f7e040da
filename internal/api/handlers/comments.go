package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rudro/videotube-backend/internal/api/middleware"
	"github.com/rudro/videotube-backend/internal/domain"
	"github.com/rudro/videotube-backend/internal/pipeline"
	"github.com/rudro/videotube-backend/internal/repository"
)

type CommentHandler struct {
	comments repository.CommentRepository
	videos   repository.VideoRepository
}

func NewCommentHandler(comments repository.CommentRepository, videos repository.VideoRepository) *CommentHandler {
	return &CommentHandler{comments: comments, videos: videos}
}

// List handles GET /comments/{videoId}: the video's comments joined with their
// authors, paginated and sortable.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	videoID, err := domain.ParseID(chi.URLParam(r, "videoId"))
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	page, err := h.comments.ListByVideo(r.Context(), videoID, repository.CommentListOptions{
		SortBy:   q.Get("sortBy"),
		SortType: q.Get("sortType"),
		Page:     pipeline.ParseOptions(q.Get("page"), q.Get("limit")),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, page, "Comments fetched successfully.")
}

type commentRequest struct {
	Content string `json:"content"`
}

// Create handles POST /comments/{videoId}. The video must exist before the
// comment is written.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, domain.Unauthorized("unauthorized"))
		return
	}

	videoID, err := domain.ParseID(chi.URLParam(r, "videoId"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.InvalidArgument("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, domain.InvalidArgument("content is required"))
		return
	}

	if _, err := h.videos.Get(r.Context(), videoID); err != nil {
		writeError(w, err)
		return
	}

	detail, err := h.comments.Create(r.Context(), &domain.Comment{
		Owner:   user.ID,
		Video:   videoID,
		Content: req.Content,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusCreated, detail, "Comment added successfully.")
}

func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(chi.URLParam(r, "commentId"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.InvalidArgument("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, domain.InvalidArgument("content is required"))
		return
	}

	detail, err := h.comments.Update(r.Context(), id, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, detail, "Comment updated successfully.")
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(chi.URLParam(r, "commentId"))
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.comments.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, map[string]any{}, "Comment deleted successfully.")
}
