package handler

import (
	"net/http"

	"github.com/sakif/learninfive/internal/service"
)

// ExplainHandler serves generated and fallback concept explanations. Both
// routes are public.
type ExplainHandler struct {
	explain *service.ExplainService
}

func NewExplainHandler(svc *service.ExplainService) *ExplainHandler {
	return &ExplainHandler{explain: svc}
}

// HandleExplain → GET /api/explain
func (h *ExplainHandler) HandleExplain(w http.ResponseWriter, r *http.Request) {
	exp, err := h.explain.Explain(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

// HandleFallback → GET /api/fallback-explain
func (h *ExplainHandler) HandleFallback(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.explain.Fallback())
}
