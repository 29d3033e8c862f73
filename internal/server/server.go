// Package server wires the dashboard operations behind a JSON HTTP API
// with health and metrics endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anagilla/retail-lakehouse-demo/pkg/dashboard"
	"github.com/anagilla/retail-lakehouse-demo/pkg/health"
	"github.com/anagilla/retail-lakehouse-demo/pkg/markdown"
	"github.com/anagilla/retail-lakehouse-demo/pkg/query"
)

// readHeaderTimeout bounds slow-header clients on the listener.
const readHeaderTimeout = 10 * time.Second

// Server serves the dashboard API.
type Server struct {
	service *dashboard.Service
	checker *health.Checker
	httpSrv *http.Server
}

// New creates a server bound to the configured address.
func New(cfg Config, service *dashboard.Service, checker *health.Checker) *Server {
	s := &Server{
		service: service,
		checker: checker,
	}
	s.httpSrv = &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Handler returns the routed handler, wrapped with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/customer/{id}", s.handleCustomer)
	mux.HandleFunc("GET /api/v1/revenue", s.handleRevenue)
	mux.HandleFunc("GET /api/v1/products", s.handleProducts)
	mux.HandleFunc("GET /api/v1/executive", s.handleExecutive)
	mux.HandleFunc("GET /api/v1/datasets", s.handleDatasets)
	mux.HandleFunc("GET /healthz", s.checker.LivenessHandler())
	mux.HandleFunc("GET /readyz", s.checker.ReadinessHandler())
	mux.Handle("GET /metrics", promhttp.Handler())
	return requestLogger(mux)
}

// Start listens and serves until Shutdown. A closed listener is a
// normal exit, not an error.
func (s *Server) Start() error {
	slog.Info("server: listening", "address", s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown marks the service draining and stops the listener, letting
// in-flight requests finish within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.checker.SetDraining()
	slog.Info("server: draining")
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

// queryResponse is the JSON body shared by the query endpoints.
type queryResponse struct {
	Summary  string   `json:"summary"`
	Columns  []string `json:"columns"`
	Rows     [][]any  `json:"rows"`
	Markdown string   `json:"markdown"`
}

func (s *Server) handleCustomer(w http.ResponseWriter, r *http.Request) {
	summary, rs := s.service.CustomerLookup(r.Context(), r.PathValue("id"))
	writeQueryResponse(w, summary, rs)
}

func (s *Server) handleRevenue(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	summary, rs := s.service.RevenueByMonth(r.Context(),
		q.Get("region"), q.Get("start_month"), q.Get("end_month"))
	writeQueryResponse(w, summary, rs)
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var topN int
	if raw := q.Get("top_n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "top_n must be an integer")
			return
		}
		topN = n
	}

	summary, rs := s.service.TopProducts(r.Context(), q.Get("sort_by"), topN)
	writeQueryResponse(w, summary, rs)
}

func (s *Server) handleExecutive(w http.ResponseWriter, r *http.Request) {
	summary, rs := s.service.ExecutiveSummary(r.Context())
	writeQueryResponse(w, summary, rs)
}

// datasetInfo describes one queryable dataset for API discovery.
type datasetInfo struct {
	Name     string   `json:"name"`
	Filters  []string `json:"filters"`
	Sortable []string `json:"sortable,omitempty"`
}

func (s *Server) handleDatasets(w http.ResponseWriter, _ *http.Request) {
	reg := s.service.Builder().Registry()

	infos := make([]datasetInfo, 0)
	for _, ds := range reg.All() {
		filters := make([]string, 0, len(ds.Filters))
		for _, f := range ds.Filters {
			filters = append(filters, f.Name)
		}
		infos = append(infos, datasetInfo{
			Name:     ds.Name,
			Filters:  filters,
			Sortable: ds.Sortable,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"datasets": infos})
}

func writeQueryResponse(w http.ResponseWriter, summary string, rs *query.ResultSet) {
	columns := rs.Columns
	if columns == nil {
		columns = []string{}
	}
	writeJSON(w, http.StatusOK, queryResponse{
		Summary:  summary,
		Columns:  columns,
		Rows:     rs.Rows,
		Markdown: markdown.Table(rs),
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
