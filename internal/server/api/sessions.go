package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/gesturedrive/internal/store"
)

const recentSessions = 20

// SessionHandler serves recorded drive sessions.
type SessionHandler struct {
	store *store.Store
}

// NewSessionHandler creates a SessionHandler backed by s.
func NewSessionHandler(s *store.Store) *SessionHandler {
	return &SessionHandler{store: s}
}

type sessionResponse struct {
	ID        string         `json:"id"`
	CameraID  int            `json:"camera_id"`
	Frames    int            `json:"frames"`
	Dropped   int            `json:"dropped"`
	Presses   int            `json:"presses"`
	StartedAt string         `json:"started_at"`
	EndedAt   string         `json:"ended_at,omitempty"`
	Rules     map[string]int `json:"rules,omitempty"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

func toSessionResponse(s *store.Session) sessionResponse {
	resp := sessionResponse{
		ID:        s.ID,
		CameraID:  s.CameraID,
		Frames:    s.Frames,
		Dropped:   s.Dropped,
		Presses:   s.Presses,
		StartedAt: formatTime(s.StartedAt),
		Rules:     s.Rules,
	}
	if s.EndedAt != nil {
		resp.EndedAt = formatTime(*s.EndedAt)
	}
	return resp
}

// ServeHTTP routes /api/sessions and /api/sessions/{id}.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api/sessions"), "/")

	if id == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, id)
	case http.MethodDelete:
		h.delete(w, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// list handles GET /api/sessions.
func (h *SessionHandler) list(w http.ResponseWriter) {
	sessions, err := h.store.Sessions().Recent(recentSessions)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	resp := listSessionsResponse{Sessions: make([]sessionResponse, 0, len(sessions))}
	for _, s := range sessions {
		resp.Sessions = append(resp.Sessions, toSessionResponse(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

// get handles GET /api/sessions/{id}, including rule tallies.
func (h *SessionHandler) get(w http.ResponseWriter, id string) {
	sess, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// delete handles DELETE /api/sessions/{id}.
func (h *SessionHandler) delete(w http.ResponseWriter, id string) {
	if err := h.store.Sessions().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
