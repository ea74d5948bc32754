package handlers

import (
	"ProductManager/internal/middleware"
	"ProductManager/internal/service"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tmaxmax/go-sse"
	"go.uber.org/zap"
)

// maxDocumentSize limits request bodies of document writes.
const maxDocumentSize = 1 << 20

// DocumentHandler serves the document store API.
type DocumentHandler struct {
	DocumentService *service.DocumentService
	Logger          *zap.SugaredLogger
}

func NewDocumentHandler(documentService *service.DocumentService, logger *zap.SugaredLogger) *DocumentHandler {
	return &DocumentHandler{DocumentService: documentService, Logger: logger}
}

type addResponse struct {
	ID string `json:"id"`
}

type queryResponse struct {
	Documents []service.DocumentSnapshot `json:"documents"`
}

type errorEvent struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

// Add stores the request body as a new document.
func (h *DocumentHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	collection := chi.URLParam(r, "collection")
	id, err := h.DocumentService.Add(r.Context(), userID, collection, body)
	if err != nil {
		h.writeError(w, "Add", collection, err)
		return
	}
	writeJSON(w, http.StatusCreated, addResponse{ID: id})
}

// Set overwrites the document with the request body.
func (h *DocumentHandler) Set(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	collection := chi.URLParam(r, "collection")
	if err := h.DocumentService.Set(r.Context(), userID, collection, chi.URLParam(r, "id"), body); err != nil {
		h.writeError(w, "Set", collection, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes the document.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	collection := chi.URLParam(r, "collection")
	if err := h.DocumentService.Delete(r.Context(), userID, collection, chi.URLParam(r, "id")); err != nil {
		h.writeError(w, "Delete", collection, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Query returns the current matching set once.
func (h *DocumentHandler) Query(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	collection := chi.URLParam(r, "collection")
	docs, err := h.DocumentService.Query(r.Context(), userID, collection, filterFromRequest(r))
	if err != nil {
		h.writeError(w, "Query", collection, err)
		return
	}
	writeJSON(w, http.StatusOK, queryResponse{Documents: docs})
}

// Watch streams the matching set as server-sent events: a "snapshot" event
// after every change and a terminal "error" event on failure.
func (h *DocumentHandler) Watch(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	collection := chi.URLParam(r, "collection")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	send := func(docs []service.DocumentSnapshot) error {
		if err := writeEvent(w, "snapshot", queryResponse{Documents: docs}); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	err := h.DocumentService.Watch(r.Context(), userID, collection, filterFromRequest(r), send)
	if err == nil || r.Context().Err() != nil {
		return
	}
	h.Logger.Warnw("Watch: terminated", "collection", collection, "user_id", userID, "error", err)
	code, _ := classify(err)
	if werr := writeEvent(w, "error", errorEvent{Code: code, Message: err.Error()}); werr == nil {
		flusher.Flush()
	}
}

func (h *DocumentHandler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentSize))
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return nil, false
	}
	return body, true
}

func (h *DocumentHandler) writeError(w http.ResponseWriter, op, collection string, err error) {
	code, status := classify(err)
	if status == http.StatusInternalServerError {
		h.Logger.Errorw(op+": service error", "collection", collection, "error", err)
		http.Error(w, "internal error", status)
		return
	}
	h.Logger.Debugw(op+": rejected", "collection", collection, "code", code, "error", err)
	http.Error(w, err.Error(), status)
}

func filterFromRequest(r *http.Request) service.Filter {
	q := r.URL.Query()
	return service.Filter{Field: q.Get("field"), Value: q.Get("value")}
}

// classify maps service errors to a stable code and HTTP status.
func classify(err error) (string, int) {
	switch {
	case errors.Is(err, service.ErrForbidden):
		return "permission-denied", http.StatusForbidden
	case errors.Is(err, service.ErrInvalidDocument),
		errors.Is(err, service.ErrInvalidCollection),
		errors.Is(err, service.ErrInvalidFilter):
		return "invalid-argument", http.StatusBadRequest
	default:
		return "internal", http.StatusInternalServerError
	}
}

func writeEvent(w io.Writer, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg := &sse.Message{Type: sse.Type(event)}
	msg.AppendData(string(data))
	_, err = msg.WriteTo(w)
	return err
}
