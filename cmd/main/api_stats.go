package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const statsSchema = `
CREATE TABLE IF NOT EXISTS page_hits (
    path          TEXT PRIMARY KEY,
    total_hits    INTEGER NOT NULL DEFAULT 0,
    hydrated_hits INTEGER NOT NULL DEFAULT 0,
    failed_hits   INTEGER NOT NULL DEFAULT 0,
    last_outcome  TEXT NOT NULL DEFAULT '',
    first_seen    DATETIME NOT NULL,
    last_seen     DATETIME NOT NULL
);
`

// PageHit describes one served request for the stats table.
type PageHit struct {
	Path     string
	Outcome  string
	Hydrated bool
	Failed   bool
}

// PageStats is a single row of the page_hits table.
type PageStats struct {
	Path         string    `json:"path"`
	TotalHits    int64     `json:"total_hits"`
	HydratedHits int64     `json:"hydrated_hits"`
	FailedHits   int64     `json:"failed_hits"`
	LastOutcome  string    `json:"last_outcome"`
	FirstSeen    time.Time `json:"first_seen"`
	LastSeen     time.Time `json:"last_seen"`
}

// StatsSummary provides a high-level overview of all collected stats.
type StatsSummary struct {
	TotalRequests    int64 `json:"total_requests"`
	HydratedRequests int64 `json:"hydrated_requests"`
	FailedRequests   int64 `json:"failed_requests"`
	UniquePages      int64 `json:"unique_pages"`
}

// StatsAPI records page hits and serves them over the API.
type StatsAPI struct {
	db     *sql.DB
	logger *slog.Logger
}

func setupStatsSchema(db *sql.DB) error {
	_, err := db.Exec(statsSchema)
	return err
}

func NewStatsAPI(db *sql.DB, logger *slog.Logger) *StatsAPI {
	return &StatsAPI{
		db:     db,
		logger: logger,
	}
}

func (s *StatsAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/stats/summary", s.handleSummary)
	mux.HandleFunc("/api/stats/top_pages", s.handleTopPages)
}

// Record upserts the counters for hit.Path.
func (s *StatsAPI) Record(ctx context.Context, hit PageHit) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO page_hits (path, total_hits, hydrated_hits, failed_hits, last_outcome, first_seen, last_seen)
        VALUES (?, 1, ?, ?, ?, ?, ?)
        ON CONFLICT(path) DO UPDATE SET
            total_hits = total_hits + 1,
            hydrated_hits = hydrated_hits + excluded.hydrated_hits,
            failed_hits = failed_hits + excluded.failed_hits,
            last_outcome = excluded.last_outcome,
            last_seen = excluded.last_seen
    `, hit.Path, boolToInt(hit.Hydrated), boolToInt(hit.Failed), hit.Outcome, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert page_hits: %w", err)
	}
	return nil
}

// Summary aggregates the page_hits table.
func (s *StatsAPI) Summary(ctx context.Context) (StatsSummary, error) {
	var summary StatsSummary
	err := s.db.QueryRowContext(ctx, `
        SELECT COALESCE(SUM(total_hits), 0), COALESCE(SUM(hydrated_hits), 0), COALESCE(SUM(failed_hits), 0), COUNT(*)
        FROM page_hits
    `).Scan(&summary.TotalRequests, &summary.HydratedRequests, &summary.FailedRequests, &summary.UniquePages)
	if err != nil {
		return StatsSummary{}, fmt.Errorf("failed to summarize page_hits: %w", err)
	}
	return summary, nil
}

// TopPages returns the most requested paths, busiest first.
func (s *StatsAPI) TopPages(ctx context.Context, limit int) ([]PageStats, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT path, total_hits, hydrated_hits, failed_hits, last_outcome, first_seen, last_seen
        FROM page_hits ORDER BY total_hits DESC, path ASC LIMIT ?
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top pages: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	results := []PageStats{}
	for rows.Next() {
		var ps PageStats
		if err = rows.Scan(&ps.Path, &ps.TotalHits, &ps.HydratedHits, &ps.FailedHits, &ps.LastOutcome, &ps.FirstSeen, &ps.LastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan top pages: %w", err)
		}
		results = append(results, ps)
	}
	return results, rows.Err()
}

func (s *StatsAPI) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	summary, err := s.Summary(r.Context())
	if err != nil {
		s.logger.Error("Failed to summarize stats", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Database error: %v", err))
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

func (s *StatsAPI) handleTopPages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondWithError(w, http.StatusBadRequest, "Query parameter 'limit' must be a positive integer")
			return
		}
		limit = min(n, 1000)
	}
	pages, err := s.TopPages(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to query top pages", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Database error: %v", err))
		return
	}
	respondWithJSON(w, http.StatusOK, pages)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
