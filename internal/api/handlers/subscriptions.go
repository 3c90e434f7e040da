package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rudro/videotube-backend/internal/api/middleware"
	"github.com/rudro/videotube-backend/internal/domain"
	"github.com/rudro/videotube-backend/internal/repository"
)

type SubscriptionHandler struct {
	subscriptions repository.SubscriptionRepository
}

func NewSubscriptionHandler(subscriptions repository.SubscriptionRepository) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

// Toggle handles POST /subscriptions/c/{channelId}: subscribe when no row
// exists, unsubscribe when one does. Subscribing to yourself is rejected.
func (h *SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, domain.Unauthorized("unauthorized"))
		return
	}

	channel, err := domain.ParseID(chi.URLParam(r, "channelId"))
	if err != nil {
		writeError(w, err)
		return
	}
	if channel == user.ID {
		writeError(w, domain.InvalidArgument("cannot subscribe to your own channel"))
		return
	}

	existing, err := h.subscriptions.Find(r.Context(), user.ID, channel)
	switch {
	case err == nil:
		if err := h.subscriptions.Delete(r.Context(), existing.ID); err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusOK, map[string]any{}, "Unsubscribed successfully.")

	case errors.Is(err, domain.ErrNotFound):
		sub, err := h.subscriptions.Create(r.Context(), user.ID, channel)
		if err != nil {
			writeError(w, err)
			return
		}
		detail, err := h.subscriptions.GetDetail(r.Context(), sub.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusCreated, detail, "Subscribed successfully.")

	default:
		writeError(w, err)
	}
}

// Subscribers handles GET /subscriptions/c/{channelId}: the users subscribed
// to the channel.
func (h *SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	channel, err := domain.ParseID(chi.URLParam(r, "channelId"))
	if err != nil {
		writeError(w, err)
		return
	}

	subscribers, err := h.subscriptions.Subscribers(r.Context(), channel)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(subscribers) == 0 {
		writeError(w, domain.NotFound("subscribers"))
		return
	}

	writeData(w, http.StatusOK, subscribers, "Subscribers fetched successfully.")
}

// Channels handles GET /subscriptions/u/{subscriberId}: the channels the user
// subscribes to.
func (h *SubscriptionHandler) Channels(w http.ResponseWriter, r *http.Request) {
	subscriber, err := domain.ParseID(chi.URLParam(r, "subscriberId"))
	if err != nil {
		writeError(w, err)
		return
	}

	channels, err := h.subscriptions.SubscribedChannels(r.Context(), subscriber)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(channels) == 0 {
		writeError(w, domain.NotFound("subscribed channels"))
		return
	}

	writeData(w, http.StatusOK, channels, "Subscribed channels fetched successfully.")
}
