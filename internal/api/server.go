// Package api provides the HTTP API server and handlers for TeamLoop.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/teamloop/teamloop-server/internal/ratelimit"
	"github.com/teamloop/teamloop-server/internal/service"
	"github.com/teamloop/teamloop-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store          *store.Store
	authService    *service.AuthService
	friendService  *service.FriendService
	inviteService  *service.InviteService
	memberService  *service.MemberService
	projectService *service.ProjectService
	dmService      *service.DMService
	authLimiter    *ratelimit.KeyedRateLimiter
	router         *chi.Mux
	logger         *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	store *store.Store,
	authService *service.AuthService,
	friendService *service.FriendService,
	inviteService *service.InviteService,
	memberService *service.MemberService,
	projectService *service.ProjectService,
	dmService *service.DMService,
	logger *slog.Logger,
) *Server {
	s := &Server{
		store:          store,
		authService:    authService,
		friendService:  friendService,
		inviteService:  inviteService,
		memberService:  memberService,
		projectService: projectService,
		dmService:      dmService,
		// Credential endpoints get 20 attempts per minute per IP.
		authLimiter: ratelimit.New(20.0/60.0, 5),
		router:      chi.NewRouter(),
		logger:      logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases server-held resources.
func (s *Server) Close() {
	s.authLimiter.Stop()
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(30 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth endpoints (public, rate limited by IP).
		r.Route("/auth", func(r chi.Router) {
			r.Use(RateLimitMiddleware(s.authLimiter, s.logger))
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/refresh", s.handleRefresh)
			r.Post("/logout", s.handleLogout)
		})

		// Invite resolution is public so clients can preview an invite
		// before logging in; the authenticated variant also reports
		// existing membership.
		r.Get("/invites/{code}", s.handleValidateInvite)

		// Protected user endpoints.
		r.Route("/users", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/me", s.handleGetCurrentUser)
		})

		// Friends.
		r.Route("/friends", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handleListFriends)
			r.Delete("/{userId}", s.handleRemoveFriend)
			r.Route("/requests", func(r chi.Router) {
				r.Get("/", s.handleListFriendRequests)
				r.Post("/", s.handleSendFriendRequest)
				r.Post("/{userId}/accept", s.handleAcceptFriendRequest)
				r.Post("/{userId}/reject", s.handleRejectFriendRequest)
			})
		})

		// Projects and membership.
		r.Route("/projects", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handleListProjects)
			r.Post("/", s.handleCreateProject)
			r.Get("/{id}", s.handleGetProject)
			r.Delete("/{id}", s.handleDeleteProject)
			r.Post("/{id}/invites", s.handleGenerateInvite)
			r.Get("/{id}/invites", s.handleListProjectInvites)
			r.Get("/{id}/members", s.handleListMembers)
			r.Delete("/{id}/members/{userId}", s.handleRemoveMember)
			r.Post("/{id}/members/{userId}/block", s.handleBlockMember)
			r.Post("/{id}/leave", s.handleLeaveProject)
		})

		// Invite consumption and revocation.
		r.Route("/invites", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/{code}/join", s.handleJoinProject)
			r.Delete("/{code}", s.handleRevokeInvite)
		})

		// Direct messages.
		r.Route("/dms", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handleListConversations)
			r.Post("/", s.handleOpenConversation)
		})
	})
}
