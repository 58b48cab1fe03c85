// Package server exposes learner sessions over HTTP and streams chat turns
// over WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abhisek/olive/internal/quiz"
	"github.com/abhisek/olive/internal/tutor"
)

// Options wires a Server.
type Options struct {
	Hub   *Hub
	Tutor *tutor.Handler
	Quiz  *quiz.Generator

	// DefaultUser serves requests that name no learner.
	DefaultUser string

	// AllowedOrigins are extra host patterns accepted for WebSocket
	// upgrades. Same-origin requests are always accepted.
	AllowedOrigins []string

	// SessionIdle evicts learner sessions unused for this long while
	// serving. Zero keeps them for the life of the process.
	SessionIdle time.Duration

	Logger *log.Logger
}

// Server routes HTTP requests to learner sessions.
type Server struct {
	hub            *Hub
	tutor          *tutor.Handler
	quiz           *quiz.Generator
	allowedOrigins []string
	sessionIdle    time.Duration
	logger         *log.Logger
	router         chi.Router
}

// New builds a Server and its routes.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		hub:            opts.Hub,
		tutor:          opts.Tutor,
		quiz:           opts.Quiz,
		allowedOrigins: opts.AllowedOrigins,
		sessionIdle:    opts.SessionIdle,
		logger:         logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/health"))
	r.Use(identity(opts.DefaultUser))

	r.Route("/api", func(r chi.Router) {
		r.Get("/profile", s.getProfile)
		r.Put("/profile/avatar", s.putAvatar)
		r.Post("/profile/change-friend", s.changeFriend)
		r.Post("/reset", s.reset)

		r.Get("/subjects", s.listSubjects)
		r.Post("/subjects", s.addSubject)
		r.Put("/subjects/active", s.selectSubject)

		r.Get("/transcripts/{space}/{subjectID}", s.getTranscript)
		r.Post("/study", s.openStudy)
		r.Post("/chat", s.chat)

		r.Post("/quiz", s.newQuiz)
		r.Post("/quiz/answer", s.answerQuiz)

		r.Get("/reminders", s.listReminders)
		r.Post("/reminders", s.addReminder)

		r.Get("/games", s.games)
	})
	r.Get("/ws/chat", s.serveChatSocket)

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:        addr,
		Handler:     s.router,
		ReadTimeout: 30 * time.Second,
		// Streams can run long; no write timeout.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	if s.sessionIdle > 0 {
		go s.hub.sweep(ctx, s.sessionIdle, s.sessionIdle/2, func(n int) {
			s.logger.Debug("evicted idle sessions", "count", n, "live", s.hub.Len())
		})
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error body.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
