package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/planbay/planbay/internal/editor"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Name string `json:"name"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	sess, err := h.service.Create(r.Context(), req.Name)
	if err != nil {
		slog.Error("create layout failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":    sess.ID,
		"scene": sess.Editor.Scene(),
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	infos, err := h.service.List(r.Context())
	if err != nil {
		slog.Error("list layouts failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	layoutID := mux.Vars(r)["layoutId"]
	sess, err := h.service.Open(r.Context(), layoutID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Editor.Scene())
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	layoutID := mux.Vars(r)["layoutId"]
	if err := h.service.Delete(r.Context(), layoutID); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	layoutID := mux.Vars(r)["layoutId"]
	if err := h.service.Save(r.Context(), layoutID); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// ApplyOp runs one operation against a layout and returns the result plus
// the updated scene.
func (h *Handler) ApplyOp(w http.ResponseWriter, r *http.Request) {
	layoutID := mux.Vars(r)["layoutId"]
	sess, err := h.service.Open(r.Context(), layoutID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	var op Operation
	if err := json.NewDecoder(r.Body).Decode(&op); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := sess.Apply(op)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"result": result,
		"scene":  sess.Editor.Scene(),
	})
}

func (h *Handler) Violations(w http.ResponseWriter, r *http.Request) {
	layoutID := mux.Vars(r)["layoutId"]
	sess, err := h.service.Open(r.Context(), layoutID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	ids := sess.Editor.ViolatingItems()
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"violations": ids})
}

// Templates serves the static item catalog.
func (h *Handler) Templates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.opts.Catalog.List())
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, editor.ErrUnknownItem):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown item"})
	case errors.Is(err, editor.ErrUnknownTemplate):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown template"})
	case errors.Is(err, editor.ErrItemLocked):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "item is locked"})
	case errors.Is(err, editor.ErrPlanBelowMinimum):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "floor plan below minimum area"})
	case errors.Is(err, ErrBadOperation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
