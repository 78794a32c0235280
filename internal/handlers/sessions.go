package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/oracle/internal/models"
)

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionStore.Create()
	slog.Info("Session created", "session_id", sess.ID())

	h.writeJSONStatus(w, http.StatusCreated, newSessionResponse(sess.Snapshot()))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, newSessionResponse(sess.Snapshot()))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	h.sessionStore.Delete(sess.ID())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleSelectType(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	var request struct {
		Type string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	readingType, err := models.ParseReadingType(request.Type)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.respond(w, sess, sess.SelectReadingType(readingType))
}

func (h *Handler) HandleBack(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	h.respond(w, sess, sess.Back())
}

func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	sess.Reset()
	h.respond(w, sess, nil)
}
