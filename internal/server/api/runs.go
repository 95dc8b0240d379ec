package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/gesturedrive/internal/store"
)

const (
	defaultRunLimit = 10
	maxRunLimit     = 100
)

// RunHandler serves finished races.
type RunHandler struct {
	store *store.Store
}

// NewRunHandler creates a RunHandler backed by s.
func NewRunHandler(s *store.Store) *RunHandler {
	return &RunHandler{store: s}
}

type runResponse struct {
	ID         string  `json:"id"`
	Score      int     `json:"score"`
	Distance   float64 `json:"distance"`
	DurationMS int64   `json:"duration_ms"`
	Dodges     int     `json:"dodges"`
	CreatedAt  string  `json:"created_at"`
}

type listRunsResponse struct {
	Runs  []runResponse `json:"runs"`
	Total int           `json:"total"`
}

func toRunResponse(r *store.Run) runResponse {
	return runResponse{
		ID:         r.ID,
		Score:      r.Score,
		Distance:   r.Distance,
		DurationMS: r.Duration.Milliseconds(),
		Dodges:     r.Dodges,
		CreatedAt:  formatTime(r.CreatedAt),
	}
}

// ServeHTTP routes /api/runs and /api/runs/{id}.
func (h *RunHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api/runs"), "/")
	if id == "" {
		h.top(w, r)
		return
	}
	h.get(w, id)
}

// top handles GET /api/runs?limit=N, best scores first.
func (h *RunHandler) top(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxRunLimit)
	}

	runs, err := h.store.Runs().Top(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}
	total, err := h.store.Runs().Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count runs")
		return
	}

	resp := listRunsResponse{
		Runs:  make([]runResponse, 0, len(runs)),
		Total: total,
	}
	for _, run := range runs {
		resp.Runs = append(resp.Runs, toRunResponse(run))
	}
	writeJSON(w, http.StatusOK, resp)
}

// get handles GET /api/runs/{id}.
func (h *RunHandler) get(w http.ResponseWriter, id string) {
	run, err := h.store.Runs().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Run not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get run")
		return
	}
	writeJSON(w, http.StatusOK, toRunResponse(run))
}
