package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lehigh-university-libraries/oracle/internal/capture"
	"github.com/lehigh-university-libraries/oracle/internal/models"
	"github.com/lehigh-university-libraries/oracle/internal/oracle"
	"github.com/lehigh-university-libraries/oracle/internal/session"
	"github.com/lehigh-university-libraries/oracle/internal/storage"
)

type Handler struct {
	sessionStore *storage.SessionStore
}

// SessionResponse is the JSON view of a session a browser tab renders
type SessionResponse struct {
	ID          string                 `json:"id"`
	Phase       session.Phase          `json:"phase"`
	ReadingType models.ReadingType     `json:"reading_type"`
	Hint        string                 `json:"hint,omitempty"`
	Title       string                 `json:"title,omitempty"`
	Image       string                 `json:"image,omitempty"`
	Result      *models.AnalysisResult `json:"result,omitempty"`
	LastError   string                 `json:"last_error,omitempty"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

func New(store *storage.SessionStore) *Handler {
	return &Handler{sessionStore: store}
}

// RegisterRoutes mounts the session API on r
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Delete("/", h.HandleDelete)
			r.Post("/type", h.HandleSelectType)
			r.Post("/camera", h.HandleBeginCapture)
			r.Post("/capture", h.HandleCapture)
			r.Post("/upload", h.HandleUpload)
			r.Post("/back", h.HandleBack)
			r.Post("/reset", h.HandleReset)
		})
	})
}

func newSessionResponse(snap session.Snapshot) SessionResponse {
	resp := SessionResponse{
		ID:          snap.ID,
		Phase:       snap.Phase,
		ReadingType: snap.ReadingType,
		Result:      snap.Result,
		LastError:   snap.LastError,
		UpdatedAt:   snap.UpdatedAt,
	}
	switch snap.Phase {
	case session.PhaseSelecting, session.PhaseCapturing:
		resp.Hint = snap.ReadingType.Hint()
	case session.PhaseResult:
		resp.Title = snap.ReadingType.Title()
	}
	if snap.Image != nil {
		resp.Image = snap.Image.DataURL()
	}
	return resp
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Warn("Request failed", "status", code, "message", message)
	http.Error(w, message, code)
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, exists := h.sessionStore.Get(chi.URLParam(r, "sessionID"))
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

// respond writes the session after an action. Out-of-order actions are 409;
// device, upload and analysis failures are part of the session state and
// come back as 200 with last_error set.
func (h *Handler) respond(w http.ResponseWriter, sess *session.Session, err error) {
	var devErr *capture.DeviceError
	switch {
	case err == nil,
		errors.As(err, &devErr),
		errors.Is(err, oracle.ErrAnalysisFailed),
		errors.Is(err, capture.ErrNotImage),
		errors.Is(err, capture.ErrTooLarge),
		errors.Is(err, session.ErrSuperseded):
		h.writeJSON(w, newSessionResponse(sess.Snapshot()))
	case errors.Is(err, session.ErrInvalidTransition):
		h.writeError(w, err.Error(), http.StatusConflict)
	default:
		h.writeError(w, err.Error(), http.StatusBadRequest)
	}
}
