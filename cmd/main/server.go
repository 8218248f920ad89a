package main

import (
	"database/sql"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/CTAG07/hxql/pkg/graphql"
	"github.com/CTAG07/hxql/pkg/hydrate"
	"github.com/CTAG07/hxql/pkg/pages"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"
)

// RequestIDHeader carries the id assigned to every site request.
const RequestIDHeader = "X-Request-Id"

type Server struct {
	config    *Config
	logger    *slog.Logger
	pipeline  *hydrate.Pipeline
	metrics   *Metrics
	statsAPI  *StatsAPI
	serverAPI *ServerAPI
	siteMux   *mux.Router
	apiMux    *http.ServeMux
}

// NewServer wires the site and API handlers. db may be nil, in which case
// no stats are recorded or served.
func NewServer(config *Config, logger *slog.Logger, db *sql.DB) (*Server, error) {
	if err := config.Server.Validate(); err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: config.Server.GraphQLTimeout()}
	gql := graphql.NewClient(httpClient, logger)

	server := &Server{
		config:    config,
		logger:    logger,
		pipeline:  hydrate.NewPipeline(gql, logger),
		metrics:   NewMetrics(),
		serverAPI: NewServerAPI(config, logger),
		siteMux:   mux.NewRouter(),
		apiMux:    http.NewServeMux(),
	}
	if db != nil {
		server.statsAPI = NewStatsAPI(db, logger)
		server.statsAPI.RegisterRoutes(server.apiMux)
	}
	server.serverAPI.RegisterRoutes(server.apiMux)
	server.metrics.RegisterRoutes(server.apiMux)

	if public := config.Server.PublicDir; public != "" {
		prefix := "/" + public + "/"
		staticFs := http.FileServer(http.Dir(filepath.Join(config.Server.SrcDir, public)))
		server.siteMux.PathPrefix(prefix).Handler(http.StripPrefix(prefix, staticFs))
	}
	server.siteMux.PathPrefix("/").Methods(http.MethodGet, http.MethodPost).HandlerFunc(server.handlePage)

	return server, nil
}

// SiteHandler returns the handler for the page server.
func (s *Server) SiteHandler() http.Handler {
	if s.config.Server.EnableCompression {
		return gzhttp.GzipHandler(s.siteMux)
	}
	return s.siteMux
}

// APIHandler returns the handler for the API server.
func (s *Server) APIHandler() http.Handler {
	return s.apiMux
}

// handlePage runs one request through the hydration pipeline.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := uuid.NewString()
	w.Header().Set(RequestIDHeader, requestID)

	req := hydrate.NewRequest(r, s.config.Server.HydrateConfig())
	resp, err := s.pipeline.Run(r.Context(), req)

	outcome := hydrate.Outcome(err)
	status := hydrate.StatusCode(err)
	size := 0

	if err != nil {
		level := slog.LevelError
		if status < http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		s.logger.Log(r.Context(), level, "Page request failed",
			"request_id", requestID,
			"path", r.URL.Path,
			"outcome", outcome,
			"status", status,
			"error", err)
		http.Error(w, http.StatusText(status), status)
	} else {
		if resp.ContentType != "" {
			w.Header().Set("Content-Type", resp.ContentType)
		} else {
			// A nil value stops net/http from sniffing one.
			w.Header()["Content-Type"] = nil
		}
		w.WriteHeader(http.StatusOK)
		size = len(resp.Body)
		if _, werr := w.Write(resp.Body); werr != nil {
			s.logger.Error("Failed to write page to client", "request_id", requestID, "error", werr)
		}
	}

	elapsed := time.Since(start)
	s.metrics.Observe(outcome, elapsed, size)

	if s.statsAPI != nil {
		hit := PageHit{
			Path:     s.statsKey(resp, outcome),
			Outcome:  outcome,
			Hydrated: resp != nil && resp.Hydrated,
			Failed:   err != nil,
		}
		if serr := s.statsAPI.Record(r.Context(), hit); serr != nil {
			s.logger.Warn("Failed to record page stats", "request_id", requestID, "error", serr)
		}
	}

	if err == nil {
		s.logger.Info("Served page",
			"request_id", requestID,
			"path", r.URL.Path,
			"file", resp.File.Path,
			"hydrated", resp.Hydrated,
			"context_source", resp.Source.String(),
			"size", humanize.Bytes(uint64(size)),
			"duration", elapsed)
	}
}

// statsKey names the page_hits row for a request. Served requests are keyed
// by the file that answered them and failures by their outcome, so the table
// is bounded by the size of the site rather than by the URLs clients send.
func (s *Server) statsKey(resp *hydrate.Response, outcome string) string {
	if resp == nil {
		return "(" + outcome + ")"
	}
	rel, err := filepath.Rel(s.config.Server.SrcDir, resp.File.Path)
	if err != nil {
		return "(" + outcome + ")"
	}
	return pages.CleanPath(filepath.ToSlash(rel))
}
