package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/learninfive/internal/apperror"
	"github.com/sakif/learninfive/internal/auth"
	"github.com/sakif/learninfive/internal/service"
)

const (
	historyNotFound       = "History entry"
	historyDeletedMessage = "History entry deleted successfully"
)

// HistoryHandler serves the signed-in user's saved explanations. Every
// route sits behind auth.RequireAuth; the owner always comes from the
// resolved session, never from the request.
type HistoryHandler struct {
	history *service.HistoryService
	logger  *slog.Logger
}

func NewHistoryHandler(svc *service.HistoryService, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{
		history: svc,
		logger:  logger,
	}
}

type DeleteResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// HandleList → GET /api/history?limit=50&offset=0
func (h *HistoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFrom(w, r)
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit", service.DefaultHistoryLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, err)
		return
	}

	page, err := h.history.List(r.Context(), ownerID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandleCreate → POST /api/history
func (h *HistoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFrom(w, r)
	if !ok {
		return
	}

	var in service.SaveHistoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	entry, err := h.history.Save(r.Context(), ownerID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// HandleGet → GET /api/history/{id}
func (h *HistoryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	entry, err := h.history.GetOwned(r.Context(), ownerID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// HandleDelete → DELETE /api/history/{id}
func (h *HistoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFrom(w, r)
	if !ok {
		return
	}
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	deleted, err := h.history.DeleteOwned(r.Context(), ownerID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !deleted {
		writeError(w, apperror.NotFound(historyNotFound))
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Message: historyDeletedMessage, Success: true})
}

func ownerFrom(w http.ResponseWriter, r *http.Request) (int64, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated())
		return 0, false
	}
	return user.ID, true
}

// entryID parses the {id} path value. Anything that isn't a positive
// integer can't name an entry, so it gets the same 404 as a missing one.
func entryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, apperror.NotFound(historyNotFound))
		return 0, false
	}
	return id, true
}

// queryInt reads an integer query parameter, falling back to def when it
// is absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.ValidationFailed(name, name+" must be an integer")
	}
	return n, nil
}
