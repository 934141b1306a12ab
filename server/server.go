// Package server exposes the article pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ghostwriter/generator"
	"ghostwriter/logging"
	"ghostwriter/publisher"
)

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context, doc generator.Document) (generator.Result, error)
}

type Server struct {
	runner     Runner
	gatherer   prometheus.Gatherer
	runTimeout time.Duration
	logger     *slog.Logger
}

// New returns a Server. gatherer may be nil, in which case /metrics serves
// the default registry. A zero runTimeout leaves runs bounded only by the
// request context.
func New(runner Runner, gatherer prometheus.Gatherer, runTimeout time.Duration) (*Server, error) {
	if runner == nil {
		return nil, errors.New("pipeline runner required")
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if runTimeout < 0 {
		return nil, errors.New("run timeout must not be negative")
	}
	return &Server{
		runner:     runner,
		gatherer:   gatherer,
		runTimeout: runTimeout,
		logger:     logging.New("server"),
	}, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Post("/api/articles", s.handleArticleCreate)
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Routes(), ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

type articleCreateReq struct {
	Topic string `json:"topic"`
}

type articleResp struct {
	RunID         string          `json:"run_id"`
	Topic         string          `json:"topic"`
	Outline       string          `json:"outline"`
	ResearchNotes string          `json:"research_notes"`
	Content       string          `json:"content"`
	RevisionCount int             `json:"revision_count"`
	Trace         generator.Trace `json:"trace"`
	HTML          string          `json:"html"`
}

type errorResp struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
	RunID string `json:"run_id,omitempty"`
}

func (s *Server) handleArticleCreate(w http.ResponseWriter, r *http.Request) {
	var req articleCreateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: err.Error()})
		return
	}
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "topic is required"})
		return
	}

	ctx := r.Context()
	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}
	res, err := s.runner.Run(ctx, generator.NewDocument(topic))
	if err != nil {
		var se *generator.StageError
		if errors.As(err, &se) {
			writeJSON(w, http.StatusBadGateway, errorResp{Error: err.Error(), Stage: string(se.Stage), RunID: res.RunID})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}

	article, err := publisher.Render(res.Document.Content, topic)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp{Error: err.Error(), RunID: res.RunID})
		return
	}
	doc := res.Document
	writeJSON(w, http.StatusOK, articleResp{
		RunID:         res.RunID,
		Topic:         doc.Topic,
		Outline:       doc.Outline,
		ResearchNotes: doc.ResearchNotes,
		Content:       doc.Content,
		RevisionCount: doc.RevisionCount,
		Trace:         res.Trace,
		HTML:          article.HTML,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()),
			"elapsed", time.Since(start),
		)
	})
}
