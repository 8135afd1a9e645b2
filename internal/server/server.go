// Package server exposes the article state, the cache and the static blog
// document over HTTP for the site that embeds them.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ppiankov/folio/internal/cache"
	"github.com/ppiankov/folio/internal/feed"
	"github.com/ppiankov/folio/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	AllowedOrigins []string
	BlogPath       string
	Logger         *slog.Logger
}

// Server serves the JSON API.
type Server struct {
	loader   *feed.Loader
	store    *cache.Store
	blogPath string
	log      *slog.Logger
	engine   *gin.Engine
}

// New builds the router. The loader and store are shared with the caller,
// which stays responsible for closing them.
func New(loader *feed.Loader, store *cache.Store, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	s := &Server{
		loader:   loader,
		store:    store,
		blogPath: opts.BlogPath,
		log:      log,
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(log))
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	api := r.Group("/api")
	{
		api.GET("/health", s.health)
		api.GET("/articles", s.articles)
		api.POST("/articles/refresh", s.refresh)
		api.GET("/cache", s.cacheInfo)
		api.DELETE("/cache", s.clearCache)
		api.GET("/blog", s.blog)
	}

	s.engine = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.log.Info("server listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}
