// Package demostore serves a small offline copy of the Swag Labs pages so
// scenarios can run without reaching saucedemo.com.
package demostore

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"time"

	"swagflow/internal/application/port/output"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
)

//go:embed web
var webFS embed.FS

const sessionCookie = "session-username"

type Options struct {
	// RenderDelay postpones the inventory list after the page loads.
	RenderDelay time.Duration
	// GlitchDelay slows down logins of performance_glitch_user.
	GlitchDelay time.Duration
	// AlertOnLogin opens a JS alert once the inventory has rendered.
	AlertOnLogin bool
	// RequestLog enables httplog request logging.
	RequestLog bool
}

type Server struct {
	opts  Options
	log   output.LoggerPort
	pages *template.Template

	httpServer *http.Server
}

func New(opts Options, log output.LoggerPort) (*Server, error) {
	pages, err := template.ParseFS(webFS, "web/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse store pages: %w", err)
	}
	return &Server{opts: opts, log: log.WithField("component", "demostore"), pages: pages}, nil
}

// Handler returns the store router.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	if s.opts.RequestLog {
		router.Use(httplog.RequestLogger(httplog.NewLogger("swagflow-demostore", httplog.Options{
			LogLevel: "info",
			JSON:     false,
			Concise:  true,
		})))
	}
	router.Use(middleware.NoCache)

	router.Get("/", s.handleLoginPage)
	router.Get("/inventory.html", s.requireSession(s.handleInventoryPage))
	router.Get("/cart.html", s.requireSession(s.handleCartPage))
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.Route("/api", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.Get("/products", s.handleProducts)
	})

	static, _ := fs.Sub(webFS, "web/static")
	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	return router
}

// Serve listens on addr until ctx ends. ready, when non-nil, receives the
// bound base URL once the listener is up.
func (s *Server) Serve(ctx context.Context, addr string, ready func(baseURL string)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	baseURL := "http://" + ln.Addr().String() + "/"
	serverErr := make(chan error, 1)
	go func() {
		s.log.Info("serving demo store", "url", baseURL)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()
	if ready != nil {
		ready(baseURL)
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("stopping demo store")
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}
