package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/rudro/videotube-backend/internal/api/middleware"
	"github.com/rudro/videotube-backend/internal/domain"
	"github.com/rudro/videotube-backend/internal/repository"
)

type PlaylistHandler struct {
	playlists repository.PlaylistRepository
}

func NewPlaylistHandler(playlists repository.PlaylistRepository) *PlaylistHandler {
	return &PlaylistHandler{playlists: playlists}
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, domain.Unauthorized("unauthorized"))
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.InvalidArgument("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, domain.InvalidArgument("name is required"))
		return
	}

	playlist, err := h.playlists.Create(r.Context(), &domain.Playlist{
		Owner:       user.ID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusCreated, playlist, "Playlist created successfully.")
}

// ListByUser handles GET /playlists/user/{userId}.
func (h *PlaylistHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	owner, err := domain.ParseID(chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, err)
		return
	}

	playlists, err := h.playlists.ListByOwner(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(playlists) == 0 {
		writeError(w, domain.NotFound("playlists"))
		return
	}

	writeData(w, http.StatusOK, playlists, "Playlists fetched successfully.")
}

func (h *PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(chi.URLParam(r, "playlistId"))
	if err != nil {
		writeError(w, err)
		return
	}

	playlist, err := h.playlists.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, playlist, "Playlist fetched successfully.")
}

// AddVideo handles PATCH /playlists/add/{videoId}/{playlistId}. Adding an
// already present video is a no-op.
func (h *PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	playlistID, videoID, err := playlistPairParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	playlist, err := h.playlists.AddVideo(r.Context(), playlistID, videoID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, playlist, "Video added to playlist successfully.")
}

// RemoveVideo handles PATCH /playlists/remove/{videoId}/{playlistId}.
func (h *PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	playlistID, videoID, err := playlistPairParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	playlist, err := h.playlists.RemoveVideo(r.Context(), playlistID, videoID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, playlist, "Video removed from playlist successfully.")
}

func (h *PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(chi.URLParam(r, "playlistId"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.InvalidArgument("invalid request body"))
		return
	}

	var name, description *string
	if strings.TrimSpace(req.Name) != "" {
		name = &req.Name
	}
	if strings.TrimSpace(req.Description) != "" {
		description = &req.Description
	}
	if name == nil && description == nil {
		writeError(w, domain.InvalidArgument("name or description is required"))
		return
	}

	playlist, err := h.playlists.Update(r.Context(), id, name, description)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, playlist, "Playlist updated successfully.")
}

func (h *PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(chi.URLParam(r, "playlistId"))
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.playlists.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, map[string]any{}, "Playlist deleted successfully.")
}

func playlistPairParams(r *http.Request) (playlistID, videoID bson.ObjectID, err error) {
	playlistID, err = domain.ParseID(chi.URLParam(r, "playlistId"))
	if err != nil {
		return
	}
	videoID, err = domain.ParseID(chi.URLParam(r, "videoId"))
	return
}
