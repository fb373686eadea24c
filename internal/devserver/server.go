// Package devserver is dprd, a self-contained stand-in for the DPR backend.
// It serves the same routes and payload shapes as the production API from a
// local SQLite database so the dpr CLI can be exercised end to end.
package devserver

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sitemaster/dpr/internal/db"
	"github.com/sitemaster/dpr/internal/log"
	"github.com/sitemaster/dpr/internal/repository"
)

// Server owns the router and storage of the stand-in backend.
type Server struct {
	cfg     *Config
	uow     db.UnitOfWork
	records repository.RecordRepo
	history repository.HistoryRepo
	now     func() time.Time

	router *gin.Engine
	http   *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithUnitOfWork replaces the transaction runner used for status updates.
func WithUnitOfWork(uow db.UnitOfWork) Option {
	return func(s *Server) { s.uow = uow }
}

// WithClock sets the time source for history entries written without a date.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New creates a Server over an opened and migrated database.
func New(cfg *Config, database *sql.DB, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		uow:     db.NewSQLiteUnitOfWork(database),
		records: repository.NewSQLiteRecordRepo(database),
		history: repository.NewSQLiteHistoryRepo(database),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRouter()
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) setupRouter() {
	if !s.cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(log.GinLogger())
	s.router.SetTrustedProxies(nil)
	if s.cfg.AuthToken != "" {
		s.router.Use(s.requireToken())
	}

	dpr := s.router.Group("/dpr")
	dpr.GET("/dpr", s.listRecords)
	dpr.GET("/dpr/:id", s.getRecord)
	dpr.GET("/dpr-status", s.statusCounts)
	dpr.PATCH("/:id/updateStatus", s.updateStatus)

	s.router.NoRoute(func(c *gin.Context) {
		respondNotFound(c, "no such route")
	})
}

// requireToken rejects requests whose x-auth-token does not match.
func (s *Server) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("x-auth-token") != s.cfg.AuthToken {
			respondError(c, http.StatusUnauthorized, ErrCodeUnauthorized, "missing or invalid x-auth-token")
			return
		}
		c.Next()
	}
}

// Router exposes the handler for tests and embedding.
func (s *Server) Router() http.Handler { return s.router }

// Start serves HTTP on cfg.Addr and blocks until the server stops.
func (s *Server) Start() error {
	log.Info().Str("addr", s.cfg.Addr).Str("env", s.cfg.Env).Msg("dprd listening")
	return s.http.ListenAndServe()
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("shutting down dprd")
	return s.http.Shutdown(ctx)
}
