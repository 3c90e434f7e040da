package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/rudro/videotube-backend/internal/api/handlers"
	"github.com/rudro/videotube-backend/internal/api/middleware"
	"github.com/rudro/videotube-backend/internal/config"
	"github.com/rudro/videotube-backend/internal/repository"
	"github.com/rudro/videotube-backend/internal/service"
	"github.com/rudro/videotube-backend/internal/storage"
)

func NewRouter(
	auth *service.AuthService,
	repos *repository.Repositories,
	blobs storage.BlobStorage,
	store handlers.StorePinger,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(middleware.RateLimit(cfg.RateLimitPerMinute))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(auth, repos.User, blobs)
	videoHandler := handlers.NewVideoHandler(repos.Video, repos.Comment, repos.Like, repos.User, blobs)
	commentHandler := handlers.NewCommentHandler(repos.Comment, repos.Video)
	likeHandler := handlers.NewLikeHandler(repos.Like)
	playlistHandler := handlers.NewPlaylistHandler(repos.Playlist)
	subscriptionHandler := handlers.NewSubscriptionHandler(repos.Subscription)
	tweetHandler := handlers.NewTweetHandler(repos.Tweet)
	dashboardHandler := handlers.NewDashboardHandler(repos.Video, repos.Like, repos.Subscription)
	healthHandler := handlers.NewHealthHandler(store)

	requireAuth := middleware.Auth(auth, repos.User)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthcheck", healthHandler.Check)

		r.Route("/users", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.Post("/refresh-token", userHandler.RefreshToken)

			// Protected user routes
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/logout", userHandler.Logout)
				r.Post("/change-password", userHandler.ChangePassword)
				r.Get("/current-user", userHandler.Me)
				r.Patch("/update-account", userHandler.UpdateDetails)
				r.Patch("/avatar", userHandler.UpdateAvatar)
				r.Patch("/cover-image", userHandler.UpdateCoverImage)
				r.Get("/c/{username}", userHandler.Channel)
				r.Get("/history", userHandler.History)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Route("/videos", func(r chi.Router) {
				r.Get("/", videoHandler.List)
				r.Post("/", videoHandler.Publish)
				r.Get("/{videoId}", videoHandler.Get)
				r.Patch("/{videoId}", videoHandler.Update)
				r.Delete("/{videoId}", videoHandler.Delete)
				r.Patch("/toggle/publish/{videoId}", videoHandler.TogglePublish)
			})

			r.Route("/comments", func(r chi.Router) {
				r.Get("/{videoId}", commentHandler.List)
				r.Post("/{videoId}", commentHandler.Create)
				r.Patch("/c/{commentId}", commentHandler.Update)
				r.Delete("/c/{commentId}", commentHandler.Delete)
			})

			r.Route("/likes", func(r chi.Router) {
				r.Post("/toggle/v/{videoId}", likeHandler.ToggleVideo)
				r.Post("/toggle/c/{commentId}", likeHandler.ToggleComment)
				r.Post("/toggle/t/{tweetId}", likeHandler.ToggleTweet)
				r.Get("/videos", likeHandler.Videos)
			})

			r.Route("/playlists", func(r chi.Router) {
				r.Post("/", playlistHandler.Create)
				r.Get("/user/{userId}", playlistHandler.ListByUser)
				r.Get("/{playlistId}", playlistHandler.Get)
				r.Patch("/{playlistId}", playlistHandler.Update)
				r.Delete("/{playlistId}", playlistHandler.Delete)
				r.Patch("/add/{videoId}/{playlistId}", playlistHandler.AddVideo)
				r.Patch("/remove/{videoId}/{playlistId}", playlistHandler.RemoveVideo)
			})

			r.Route("/subscriptions", func(r chi.Router) {
				r.Post("/c/{channelId}", subscriptionHandler.Toggle)
				r.Get("/c/{channelId}", subscriptionHandler.Subscribers)
				r.Get("/u/{subscriberId}", subscriptionHandler.Channels)
			})

			r.Route("/tweets", func(r chi.Router) {
				r.Post("/", tweetHandler.Create)
				r.Get("/user/{userId}", tweetHandler.ListByUser)
				r.Patch("/{tweetId}", tweetHandler.Update)
				r.Delete("/{tweetId}", tweetHandler.Delete)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/stats", dashboardHandler.Stats)
				r.Get("/videos", dashboardHandler.Videos)
			})
		})
	})

	return r
}
