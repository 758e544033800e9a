// Package httpapi serves the operational endpoints: metrics, health and the active voice restrictions.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"modbot/model"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RestrictionLister is the read-only view of the restriction store.
type RestrictionLister interface {
	Active(now time.Time) []model.Restriction
	Len() int
}

type Router struct {
	router *gin.Engine
	store  RestrictionLister
	now    func() time.Time
}

func NewRouter(store RestrictionLister) *Router {
	r := &Router{
		router: gin.New(),
		store:  store,
		now:    time.Now,
	}
	r.router.Use(gin.Recovery())

	r.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.router.GET("/healthz", r.health)
	r.router.GET("/restrictions", r.restrictions)
	return r
}

func (r *Router) Handler() http.Handler {
	return r.router
}

func (r *Router) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (r *Router) restrictions(c *gin.Context) {
	active := r.store.Active(r.now())
	if active == nil {
		active = []model.Restriction{}
	}
	c.JSON(http.StatusOK, gin.H{
		"count":        len(active),
		"restrictions": active,
	})
}

// Server wraps the router in an http.Server that shuts down with ctx.
type Server struct {
	srv *http.Server
}

func NewServer(addr string, handler http.Handler) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}}
}

// Serve blocks until the listener fails or ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
