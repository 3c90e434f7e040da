package handlers

import (
	"log/slog"
	"net/http"

	"github.com/rudro/videotube-backend/internal/api/middleware"
	"github.com/rudro/videotube-backend/internal/domain"
	"github.com/rudro/videotube-backend/internal/repository"
)

type DashboardHandler struct {
	videos        repository.VideoRepository
	likes         repository.LikeRepository
	subscriptions repository.SubscriptionRepository
}

func NewDashboardHandler(
	videos repository.VideoRepository,
	likes repository.LikeRepository,
	subscriptions repository.SubscriptionRepository,
) *DashboardHandler {
	return &DashboardHandler{videos: videos, likes: likes, subscriptions: subscriptions}
}

// Stats handles GET /dashboard/stats: aggregate totals for the caller's
// channel.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, domain.Unauthorized("unauthorized"))
		return
	}

	subscribers, err := h.subscriptions.CountSubscribers(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	totalVideos, totalViews, err := h.videos.StatsByOwner(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	var totalLikes int64
	videoIDs, err := h.videos.IDsByOwner(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to list channel video ids", "userId", user.ID.Hex(), "error", err)
	} else if len(videoIDs) > 0 {
		totalLikes, err = h.likes.CountForVideos(r.Context(), videoIDs)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	stats := domain.ChannelStats{
		TotalSubscribers: subscribers,
		TotalVideos:      totalVideos,
		TotalViews:       totalViews,
		TotalLikes:       totalLikes,
	}

	writeData(w, http.StatusOK, stats, "Channel stats fetched successfully.")
}

// Videos handles GET /dashboard/videos: every video the caller has uploaded,
// published or not.
func (h *DashboardHandler) Videos(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, domain.Unauthorized("unauthorized"))
		return
	}

	videos, err := h.videos.ListByOwner(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(videos) == 0 {
		writeError(w, domain.NotFound("channel videos"))
		return
	}

	writeData(w, http.StatusOK, videos, "Channel videos fetched successfully.")
}
