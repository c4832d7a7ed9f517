// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/club-leaderboard/internal/models"
	"github.com/gorilla/mux"
)

// Service interfaces for dependency injection and testing

// SyncServiceInterface triggers pipeline runs.
type SyncServiceInterface interface {
	TriggerSync(ctx context.Context, accountID string) (bool, error)
}

// AccountReaderInterface reads account state.
type AccountReaderInterface interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
}

// SegmentReaderInterface reads the segment catalog.
type SegmentReaderInterface interface {
	ListVisible(ctx context.Context) ([]models.Segment, error)
	GetByID(ctx context.Context, id string) (*models.Segment, error)
}

// LeaderboardReaderInterface reads leaderboard entries.
type LeaderboardReaderInterface interface {
	ListBySegment(ctx context.Context, segmentID string) ([]models.LeaderboardEntry, error)
}

// CrownReaderInterface reads an account's leadership records.
type CrownReaderInterface interface {
	ListByAccount(ctx context.Context, accountID string) ([]models.Crown, error)
}

// HighlightReaderInterface reads an account's highlights.
type HighlightReaderInterface interface {
	ListByAccount(ctx context.Context, accountID string) ([]models.Highlight, error)
}

// LeaderboardCacheInterface caches rendered leaderboard reads.
type LeaderboardCacheInterface interface {
	GetLeaderboard(ctx context.Context, segmentID string) ([]models.LeaderboardEntry, bool, error)
	SetLeaderboard(ctx context.Context, segmentID string, entries []models.LeaderboardEntry) error
}

// Server represents the HTTP API server.
type Server struct {
	router      *mux.Router
	httpServer  *http.Server
	syncService SyncServiceInterface
	accounts    AccountReaderInterface
	segments    SegmentReaderInterface
	board       LeaderboardReaderInterface
	crowns      CrownReaderInterface
	highlights  HighlightReaderInterface
	cache       LeaderboardCacheInterface
	config      *ServerConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// ServerDeps holds the server's service and repository dependencies.
type ServerDeps struct {
	SyncService SyncServiceInterface
	Accounts    AccountReaderInterface
	Segments    SegmentReaderInterface
	Board       LeaderboardReaderInterface
	Crowns      CrownReaderInterface
	Highlights  HighlightReaderInterface
	Cache       LeaderboardCacheInterface
}

// NewServer creates a new API server instance.
func NewServer(config *ServerConfig, deps *ServerDeps) *Server {
	s := &Server{
		router:      mux.NewRouter(),
		syncService: deps.SyncService,
		accounts:    deps.Accounts,
		segments:    deps.Segments,
		board:       deps.Board,
		crowns:      deps.Crowns,
		highlights:  deps.Highlights,
		cache:       deps.Cache,
		config:      config,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	s.router.Use(LoggingMiddleware)
	s.router.Use(RecoveryMiddleware)
	s.router.Use(CORSMiddleware)

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/sync", s.handleTriggerSync).Methods("POST")
	api.HandleFunc("/user/me", s.handleGetMe).Methods("GET")
	api.HandleFunc("/segments", s.handleListSegments).Methods("GET")
	api.HandleFunc("/segments/{id}/leaderboard", s.handleGetLeaderboard).Methods("GET")
	api.HandleFunc("/segments/{id}/findme", s.handleFindMe).Methods("GET")
}

// Router exposes the router for tests.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Printf("[API] Server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
