package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/rudro/videotube-backend/internal/api/middleware"
	"github.com/rudro/videotube-backend/internal/domain"
	"github.com/rudro/videotube-backend/internal/repository"
	"github.com/rudro/videotube-backend/internal/service"
	"github.com/rudro/videotube-backend/internal/storage"
)

// maxUploadMemory bounds the in-memory part of multipart parsing; larger
// bodies spill to temp files.
const maxUploadMemory = 32 << 20

type UserHandler struct {
	auth  *service.AuthService
	users repository.UserRepository
	blobs storage.BlobStorage
}

func NewUserHandler(auth *service.AuthService, users repository.UserRepository, blobs storage.BlobStorage) *UserHandler {
	return &UserHandler{auth: auth, users: users, blobs: blobs}
}

// Register handles POST /users/register: multipart form with the account
// fields, a required avatar and an optional cover image.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, domain.InvalidArgument("multipart form data is required"))
		return
	}

	input := service.RegisterInput{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		FullName: r.FormValue("fullName"),
		Password: r.FormValue("password"),
	}
	for _, field := range []string{input.Username, input.Email, input.FullName, input.Password} {
		if strings.TrimSpace(field) == "" {
			writeError(w, domain.InvalidArgument("all fields must be required"))
			return
		}
	}

	avatarURL, err := h.uploadFormFile(r, "avatar")
	if err != nil {
		writeError(w, err)
		return
	}
	if avatarURL == "" {
		writeError(w, domain.InvalidArgument("avatar file is required"))
		return
	}
	input.Avatar = avatarURL

	if coverURL, err := h.uploadFormFile(r, "coverImage"); err == nil {
		input.CoverImage = coverURL
	}

	user, err := h.auth.Register(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusCreated, user, "User created successfully.")
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.InvalidArgument("invalid request body"))
		return
	}
	if (req.Username == "" && req.Email == "") || req.Password == "" {
		writeError(w, domain.InvalidArgument("please provide the proper data"))
		return
	}

	result, err := h.auth.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	setAuthCookies(w, result.AccessToken, result.RefreshToken)
	writeData(w, http.StatusOK, map[string]any{
		"user":         result.User,
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
	}, "User logged in successfully.")
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, domain.Unauthorized("unauthorized"))
		return
	}

	if err := h.auth.Logout(r.Context(), user.ID); err != nil {
		writeError(w, err)
		return
	}

	clearAuthCookies(w)
	writeData(w, http.StatusOK, map[string]any{}, "User logged out.")
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken rotates the session from the refresh cookie or body field.
func (h *UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	token := ""
	if cookie, err := r.Cookie("refreshToken"); err == nil {
		token = cookie.Value
	}
	if token == "" {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			token = req.RefreshToken
		}
	}
	if token == "" {
		writeError(w, domain.InvalidArgument("refresh token is required"))
		return
	}

	result, err := h.auth.Refresh(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}

	setAuthCookies(w, result.AccessToken, result.RefreshToken)
	writeData(w, http.StatusOK, map[string]any{
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
	}, "Tokens refreshed successfully.")
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, domain.Unauthorized("unauthorized"))
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.InvalidArgument("invalid request body"))
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		writeError(w, domain.InvalidArgument("old password and new password are required"))
		return
	}

	if err := h.auth.ChangePassword(r.Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, map[string]any{}, "Password updated successfully.")
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, domain.Unauthorized("unauthorized"))
		return
	}
	writeData(w, http.StatusOK, user, "User fetched successfully.")
}

type updateDetailsRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

func (h *UserHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, domain.Unauthorized("unauthorized"))
		return
	}

	var req updateDetailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.InvalidArgument("invalid request body"))
		return
	}
	if req.FullName == "" || req.Email == "" {
		writeError(w, domain.InvalidArgument("please provide data to be updated"))
		return
	}

	updated, err := h.users.UpdateDetails(r.Context(), user.ID, req.FullName, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, updated, "User details updated successfully.")
}

// UpdateAvatar replaces the avatar blob: upload the new one, update the user,
// then drop the previous blob.
func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", h.users.UpdateAvatar,
		func(u *domain.User) string { return u.Avatar },
		"Avatar updated successfully.")
}

func (h *UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", h.users.UpdateCoverImage,
		func(u *domain.User) string { return u.CoverImage },
		"Cover image updated successfully.")
}

func (h *UserHandler) updateImage(
	w http.ResponseWriter,
	r *http.Request,
	field string,
	update func(ctx context.Context, id bson.ObjectID, url string) (*domain.User, error),
	current func(*domain.User) string,
	message string,
) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, domain.Unauthorized("unauthorized"))
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, domain.InvalidArgument("multipart form data is required"))
		return
	}

	url, err := h.uploadFormFile(r, field)
	if err != nil {
		writeError(w, err)
		return
	}
	if url == "" {
		writeError(w, domain.InvalidArgument(field+" file is required"))
		return
	}

	previous := current(user)

	updated, err := update(r.Context(), user.ID, url)
	if err != nil {
		writeError(w, err)
		return
	}

	if previous != "" {
		if err := h.blobs.Delete(r.Context(), previous); err != nil {
			slog.Error("failed to delete replaced image", "url", previous, "error", err)
		}
	}

	writeData(w, http.StatusOK, updated, message)
}

// Channel handles GET /users/c/{username}: the public channel profile with
// subscription counts relative to the viewer.
func (h *UserHandler) Channel(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, domain.Unauthorized("unauthorized"))
		return
	}

	username := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "username")))
	if username == "" {
		writeError(w, domain.InvalidArgument("username is missing"))
		return
	}

	profile, err := h.users.ChannelProfile(r.Context(), username, user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, profile, "User channel fetched successfully.")
}

func (h *UserHandler) History(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, domain.Unauthorized("unauthorized"))
		return
	}

	videos, err := h.users.WatchHistory(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, videos, "Watch history fetched successfully.")
}

// uploadFormFile stores the named multipart file and returns its public URL,
// or "" when the part is absent.
func (h *UserHandler) uploadFormFile(r *http.Request, field string) (string, error) {
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

func saveUpload(ctx context.Context, blobs storage.BlobStorage, header *multipart.FileHeader, file multipart.File) (string, error) {
	url, err := blobs.Save(ctx, header.Filename, file)
	if err != nil {
		return "", domain.Internal("failed to store uploaded file")
	}
	return url, nil
}

func setAuthCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "accessToken",
		Value:    accessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "refreshToken",
		Value:    refreshToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
	})
}

func clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{"accessToken", "refreshToken"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   true,
			MaxAge:   -1,
		})
	}
}
