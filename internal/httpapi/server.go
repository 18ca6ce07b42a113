// Package httpapi exposes the daily set engine over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/practix/internal/dailyset"
	"github.com/abhisek/practix/internal/logger"
	"github.com/abhisek/practix/internal/metrics"
	"github.com/abhisek/practix/internal/progress"
	"github.com/abhisek/practix/internal/rewards"
	"github.com/abhisek/practix/internal/topicgraph"
	"github.com/abhisek/practix/internal/tracing"
)

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Deps are the services behind the API.
type Deps struct {
	Graph   *topicgraph.Graph
	Sets    *dailyset.Manager
	Tracker *progress.Tracker
	Ledger  *rewards.Ledger
	Log     *logger.Logger

	// Checks are run by /healthz, keyed by component name.
	Checks map[string]HealthCheck
}

// Server is the HTTP front end.
type Server struct {
	graph   *topicgraph.Graph
	sets    *dailyset.Manager
	tracker *progress.Tracker
	ledger  *rewards.Ledger
	checks  map[string]HealthCheck
	log     *logger.Logger
}

func New(d Deps) *Server {
	return &Server{
		graph:   d.Graph,
		sets:    d.Sets,
		tracker: d.Tracker,
		ledger:  d.Ledger,
		checks:  d.Checks,
		log:     logger.OrNop(d.Log),
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), metrics.Middleware(), tracing.Middleware(), s.requestLog())

	r.GET("/healthz", s.health)
	r.GET("/metrics", metrics.Handler())

	v1 := r.Group("/v1")
	v1.GET("/topics", s.listTopics)
	v1.GET("/topics/:topicID", s.getTopic)

	users := v1.Group("/users/:userID")
	users.GET("/daily", s.getDaily)
	users.GET("/sets", s.listSets)
	users.GET("/sets/:setID", s.getSet)
	users.POST("/sets/:setID/problems/:problemID/answer", s.submitAnswer)
	users.POST("/practice", s.startPractice)
	users.GET("/progress", s.getProgress)
	users.GET("/profile", s.getProfile)
	users.PUT("/profile", s.updateProfile)
	return r
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// Run serves on addr until ctx is cancelled, then drains in-flight
// requests for up to shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func (s *Server) health(c *gin.Context) {
	components := gin.H{}
	healthy := true
	for name, check := range s.checks {
		if err := check(c.Request.Context()); err != nil {
			s.log.Warn("health check failed", "component", name, "error", err)
			components[name] = "down"
			healthy = false
			continue
		}
		components[name] = "up"
	}
	body := gin.H{"status": "ok", "components": components}
	if !healthy {
		body["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, Response{Code: http.StatusServiceUnavailable, Message: "unhealthy", Data: body})
		return
	}
	success(c, body)
}
