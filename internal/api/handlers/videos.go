package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rudro/videotube-backend/internal/api/middleware"
	"github.com/rudro/videotube-backend/internal/domain"
	"github.com/rudro/videotube-backend/internal/pipeline"
	"github.com/rudro/videotube-backend/internal/repository"
	"github.com/rudro/videotube-backend/internal/storage"
)

type VideoHandler struct {
	videos   repository.VideoRepository
	comments repository.CommentRepository
	likes    repository.LikeRepository
	users    repository.UserRepository
	blobs    storage.BlobStorage
}

func NewVideoHandler(
	videos repository.VideoRepository,
	comments repository.CommentRepository,
	likes repository.LikeRepository,
	users repository.UserRepository,
	blobs storage.BlobStorage,
) *VideoHandler {
	return &VideoHandler{videos: videos, comments: comments, likes: likes, users: users, blobs: blobs}
}

// List handles GET /videos: a paginated listing with optional free-text query,
// owner filter and sort controls.
func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := repository.VideoListOptions{
		Query:    q.Get("query"),
		SortBy:   q.Get("sortBy"),
		SortType: q.Get("sortType"),
		Page:     pipeline.ParseOptions(q.Get("page"), q.Get("limit")),
	}

	if raw := q.Get("userId"); raw != "" {
		owner, err := domain.ParseID(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		opts.Owner = &owner
	}

	page, err := h.videos.List(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, page, "Videos fetched successfully.")
}

// Publish handles POST /videos: multipart upload of the video file and its
// thumbnail along with the title and description.
func (h *VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, domain.Unauthorized("unauthorized"))
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, domain.InvalidArgument("multipart form data is required"))
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" || description == "" {
		writeError(w, domain.InvalidArgument("title and description are required"))
		return
	}

	duration, err := strconv.ParseFloat(r.FormValue("duration"), 64)
	if err != nil || duration < 0 {
		duration = 0
	}

	videoURL, err := h.formFile(r, "videoFile")
	if err != nil {
		writeError(w, err)
		return
	}
	if videoURL == "" {
		writeError(w, domain.InvalidArgument("video file is required"))
		return
	}

	thumbnailURL, err := h.formFile(r, "thumbnail")
	if err != nil {
		writeError(w, err)
		return
	}
	if thumbnailURL == "" {
		writeError(w, domain.InvalidArgument("thumbnail file is required"))
		return
	}

	video, err := h.videos.Create(r.Context(), &domain.Video{
		Owner:       user.ID,
		VideoFile:   videoURL,
		Thumbnail:   thumbnailURL,
		Title:       title,
		Description: description,
		Duration:    duration,
		IsPublished: true,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusCreated, video, "Video published successfully.")
}

// Get handles GET /videos/{videoId}: the joined detail plus the side effects a
// view implies, bumping the view counter and the viewer's watch history.
func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, domain.Unauthorized("unauthorized"))
		return
	}

	id, err := domain.ParseID(chi.URLParam(r, "videoId"))
	if err != nil {
		writeError(w, err)
		return
	}

	detail, err := h.videos.GetDetail(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.videos.IncrementViews(r.Context(), id); err != nil {
		slog.Error("failed to increment views", "videoId", id.Hex(), "error", err)
	} else {
		detail.Views++
	}
	if err := h.users.AppendWatchHistory(r.Context(), user.ID, id); err != nil {
		slog.Error("failed to record watch history", "userId", user.ID.Hex(), "error", err)
	}

	writeData(w, http.StatusOK, detail, "Video fetched successfully.")
}

// Update handles PATCH /videos/{videoId}: multipart edit of title, description
// and optionally a replacement thumbnail.
func (h *VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(chi.URLParam(r, "videoId"))
	if err != nil {
		writeError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, domain.InvalidArgument("multipart form data is required"))
		return
	}

	var update repository.VideoUpdate
	if title := strings.TrimSpace(r.FormValue("title")); title != "" {
		update.Title = &title
	}
	if description := strings.TrimSpace(r.FormValue("description")); description != "" {
		update.Description = &description
	}

	previousThumbnail := ""
	thumbnailURL, err := h.formFile(r, "thumbnail")
	if err != nil {
		writeError(w, err)
		return
	}
	if thumbnailURL != "" {
		if existing, err := h.videos.Get(r.Context(), id); err == nil {
			previousThumbnail = existing.Thumbnail
		}
		update.Thumbnail = &thumbnailURL
	}

	if update.Title == nil && update.Description == nil && update.Thumbnail == nil {
		writeError(w, domain.InvalidArgument("nothing to update"))
		return
	}

	video, err := h.videos.Update(r.Context(), id, update)
	if err != nil {
		writeError(w, err)
		return
	}

	if previousThumbnail != "" {
		if err := h.blobs.Delete(r.Context(), previousThumbnail); err != nil {
			slog.Error("failed to delete replaced thumbnail", "url", previousThumbnail, "error", err)
		}
	}

	writeData(w, http.StatusOK, video, "Video updated successfully.")
}

// Delete handles DELETE /videos/{videoId}: removes the video document, its
// comments, its likes and both stored blobs.
func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(chi.URLParam(r, "videoId"))
	if err != nil {
		writeError(w, err)
		return
	}

	video, err := h.videos.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.comments.DeleteByVideo(r.Context(), id); err != nil {
		slog.Error("failed to delete video comments", "videoId", id.Hex(), "error", err)
	}
	if err := h.likes.DeleteByVideo(r.Context(), id); err != nil {
		slog.Error("failed to delete video likes", "videoId", id.Hex(), "error", err)
	}
	for _, url := range []string{video.VideoFile, video.Thumbnail} {
		if url == "" {
			continue
		}
		if err := h.blobs.Delete(r.Context(), url); err != nil {
			slog.Error("failed to delete video blob", "url", url, "error", err)
		}
	}

	writeData(w, http.StatusOK, map[string]any{}, "Video deleted successfully.")
}

// TogglePublish handles PATCH /videos/toggle/publish/{videoId}.
func (h *VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(chi.URLParam(r, "videoId"))
	if err != nil {
		writeError(w, err)
		return
	}

	video, err := h.videos.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.videos.SetPublished(r.Context(), id, !video.IsPublished)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, updated, "Publish status toggled successfully.")
}

func (h *VideoHandler) formFile(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", domain.InvalidArgument("invalid " + field + " file")
	}
	defer file.Close()

	return saveUpload(r.Context(), h.blobs, header, file)
}
