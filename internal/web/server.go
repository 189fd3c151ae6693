// Package web is the HTTP layer: it translates JSON requests into model
// calls and model outputs into JSON responses.
package web

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/embedkit/embedd/internal/config"
	"github.com/embedkit/embedd/internal/embed"
	"github.com/embedkit/embedd/internal/logging"
	"github.com/embedkit/embedd/internal/model"
)

// State holds the dependencies shared by all handlers of one service.
type State struct {
	Config  *config.Config
	Model   *model.Manager
	Service string
}

// Server is one configured service variant ready to serve.
type Server struct {
	state *State
	mux   *chi.Mux
}

// newServer builds the routes common to both variants and lets the variant
// mount its embed handlers.
func newServer(state *State, mount func(r chi.Router)) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Get("/", state.handleRoot)
	r.Get("/health", state.handleHealth)
	mount(r)

	return &Server{state: state, mux: r}
}

// Handler returns the root http.Handler, used directly by tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start runs the server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.state.Config.Addr(),
		Handler: s.mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logging.Infof("[web] %s serving on %s", s.state.Service, server.Addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// handleRoot returns the static status payload unconditionally; it does not
// check model readiness.
func (s *State) handleRoot(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, map[string]string{
		"status":  "healthy",
		"model":   s.Model.Name(),
		"service": s.Service,
	})
}

func (s *State) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.Model.Ready() {
		jsonError(w, "model not loaded", http.StatusServiceUnavailable)
		return
	}
	jsonOK(w, map[string]any{
		"status":       "healthy",
		"model":        s.Model.Name(),
		"model_loaded": true,
	})
}

// decodeTexts parses the request body and normalizes the texts union to a
// non-empty list. All failures map to 400.
func decodeTexts(r *http.Request) ([]string, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, embed.ValidationError{Field: "body", Reason: "unreadable request body"}
	}
	var req embed.Request
	if err := sonic.Unmarshal(body, &req); err != nil {
		return nil, embed.ValidationError{Field: "body", Reason: "malformed JSON"}
	}
	return req.Normalize()
}

// writeError maps the error taxonomy to HTTP status codes: not-ready → 503,
// validation → 400, anything else → 500 with the stringified error.
func writeError(w http.ResponseWriter, err error) {
	var ve embed.ValidationError
	switch {
	case errors.Is(err, embed.ErrNotReady):
		jsonError(w, "model not loaded", http.StatusServiceUnavailable)
	case errors.As(err, &ve):
		jsonError(w, ve.Error(), http.StatusBadRequest)
	default:
		logging.Errorf("[web] error generating embeddings: %v", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	sonic.ConfigDefault.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func jsonOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	sonic.ConfigDefault.NewEncoder(w).Encode(data)
}
