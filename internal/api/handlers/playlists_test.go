package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/rudro/videotube-backend/internal/api/handlers"
	"github.com/rudro/videotube-backend/internal/domain"
)

func newPlaylistRouter(user *domain.User, repo *stubPlaylistRepo) http.Handler {
	h := handlers.NewPlaylistHandler(repo)

	r := chi.NewRouter()
	r.Use(authed(user))
	r.Post("/playlists", h.Create)
	r.Get("/playlists/user/{userId}", h.ListByUser)
	r.Get("/playlists/{playlistId}", h.Get)
	r.Patch("/playlists/{playlistId}", h.Update)
	r.Delete("/playlists/{playlistId}", h.Delete)
	r.Patch("/playlists/add/{videoId}/{playlistId}", h.AddVideo)
	r.Patch("/playlists/remove/{videoId}/{playlistId}", h.RemoveVideo)
	return r
}

func createPlaylist(t *testing.T, router http.Handler, name string) {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"name": name, "description": "test playlist"})
	rec := doRequest(t, router, http.MethodPost, "/playlists", body)
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestPlaylistHandler_Create(t *testing.T) {
	user := testUser()
	repo := &stubPlaylistRepo{}
	router := newPlaylistRouter(user, repo)

	t.Run("valid playlist", func(t *testing.T) {
		createPlaylist(t, router, "Favorites")
		require.Len(t, repo.playlists, 1)
		assert.Equal(t, user.ID, repo.playlists[0].Owner)
		assert.NotNil(t, repo.playlists[0].Videos, "videos starts as an empty array, not null")
	})

	t.Run("missing name", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"description": "no name"})
		rec := doRequest(t, router, http.MethodPost, "/playlists", body)
		decodeFailure(t, rec, http.StatusBadRequest)
	})
}

func TestPlaylistHandler_AddRemoveVideo(t *testing.T) {
	user := testUser()
	repo := &stubPlaylistRepo{}
	router := newPlaylistRouter(user, repo)

	createPlaylist(t, router, "Watch Later")
	playlistID := repo.playlists[0].ID
	videoID := bson.NewObjectID()

	addPath := "/playlists/add/" + videoID.Hex() + "/" + playlistID.Hex()

	// Adding twice keeps a single entry.
	rec := doRequest(t, router, http.MethodPatch, addPath, nil)
	decodeEnvelope(t, rec, http.StatusOK)
	rec = doRequest(t, router, http.MethodPatch, addPath, nil)
	decodeEnvelope(t, rec, http.StatusOK)
	assert.Len(t, repo.playlists[0].Videos, 1)

	// Removing drops it.
	rec = doRequest(t, router, http.MethodPatch, "/playlists/remove/"+videoID.Hex()+"/"+playlistID.Hex(), nil)
	decodeEnvelope(t, rec, http.StatusOK)
	assert.Empty(t, repo.playlists[0].Videos)

	// Unknown playlist is a 404.
	rec = doRequest(t, router, http.MethodPatch, "/playlists/add/"+videoID.Hex()+"/"+bson.NewObjectID().Hex(), nil)
	decodeFailure(t, rec, http.StatusNotFound)

	// Malformed ids never reach the store.
	rec = doRequest(t, router, http.MethodPatch, "/playlists/add/bad-id/"+playlistID.Hex(), nil)
	decodeFailure(t, rec, http.StatusBadRequest)
}

func TestPlaylistHandler_ListByUser(t *testing.T) {
	user := testUser()
	repo := &stubPlaylistRepo{}
	router := newPlaylistRouter(user, repo)

	t.Run("no playlists is a 404", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/playlists/user/"+user.ID.Hex(), nil)
		decodeFailure(t, rec, http.StatusNotFound)
	})

	t.Run("playlists are listed", func(t *testing.T) {
		createPlaylist(t, router, "Music")

		rec := doRequest(t, router, http.MethodGet, "/playlists/user/"+user.ID.Hex(), nil)
		envelope := decodeEnvelope(t, rec, http.StatusOK)
		items, ok := envelope["data"].([]any)
		require.True(t, ok)
		assert.Len(t, items, 1)
	})
}

func TestPlaylistHandler_Update(t *testing.T) {
	user := testUser()
	repo := &stubPlaylistRepo{}
	router := newPlaylistRouter(user, repo)

	createPlaylist(t, router, "Old Name")
	id := repo.playlists[0].ID

	t.Run("rename", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"name": "New Name"})
		rec := doRequest(t, router, http.MethodPatch, "/playlists/"+id.Hex(), body)
		decodeEnvelope(t, rec, http.StatusOK)
		assert.Equal(t, "New Name", repo.playlists[0].Name)
		assert.Equal(t, "test playlist", repo.playlists[0].Description, "description untouched")
	})

	t.Run("nothing to update", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{})
		rec := doRequest(t, router, http.MethodPatch, "/playlists/"+id.Hex(), body)
		decodeFailure(t, rec, http.StatusBadRequest)
	})
}

func TestPlaylistHandler_Delete(t *testing.T) {
	user := testUser()
	repo := &stubPlaylistRepo{}
	router := newPlaylistRouter(user, repo)

	createPlaylist(t, router, "Doomed")
	id := repo.playlists[0].ID

	rec := doRequest(t, router, http.MethodDelete, "/playlists/"+id.Hex(), nil)
	decodeEnvelope(t, rec, http.StatusOK)
	assert.Empty(t, repo.playlists)

	rec = doRequest(t, router, http.MethodDelete, "/playlists/"+id.Hex(), nil)
	decodeFailure(t, rec, http.StatusNotFound)
}
