package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/inklingapp/inkling/internal/notes/service"
	"github.com/inklingapp/inkling/internal/notes/store"
	"github.com/inklingapp/inkling/pkg/httpx"
	"github.com/inklingapp/inkling/pkg/notesdk"
	"github.com/inklingapp/inkling/pkg/slogx"
)

// NotesHandler serves the note CRUD routes. Every operation runs as the
// authenticated user; ownership is enforced by the queries themselves, so a
// foreign note is indistinguishable from a missing one.
type NotesHandler struct {
	NotesService *service.NotesService
}

type noteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *NotesHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := httpx.UserIDFromCtx(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "access token required")
		return
	}

	var req noteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validateNote(req.Title, req.Content); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	note, err := h.NotesService.Create(ctx, userID, sanitizeText(req.Title), sanitizeText(req.Content))
	if err != nil {
		log.Error("create note failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, note)
}

func (h *NotesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := httpx.UserIDFromCtx(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "access token required")
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	search := q.Get("search")

	result, err := h.NotesService.List(ctx, userID, page, limit, search)
	if err != nil {
		log.Error("list notes failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, result)
}

func (h *NotesHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := httpx.UserIDFromCtx(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "access token required")
		return
	}

	noteID, ok := notePathID(w, r)
	if !ok {
		return
	}

	note, err := h.NotesService.Get(ctx, userID, noteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "note not found")
			return
		}
		log.Error("get note failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, note)
}

func (h *NotesHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := httpx.UserIDFromCtx(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "access token required")
		return
	}

	noteID, ok := notePathID(w, r)
	if !ok {
		return
	}

	var req noteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validateNote(req.Title, req.Content); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	note, err := h.NotesService.Update(ctx, userID, noteID, sanitizeText(req.Title), sanitizeText(req.Content))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "note not found")
			return
		}
		log.Error("update note failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, note)
}

func (h *NotesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := httpx.UserIDFromCtx(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "access token required")
		return
	}

	noteID, ok := notePathID(w, r)
	if !ok {
		return
	}

	if err := h.NotesService.Delete(ctx, userID, noteID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "note not found")
			return
		}
		log.Error("delete note failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, notesdk.MessageResponse{Message: "Note deleted successfully"})
}

func notePathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		httpx.WriteError(w, http.StatusBadRequest, "invalid note id")
		return 0, false
	}
	return id, true
}
