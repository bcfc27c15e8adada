package handler

import (
	"net/http"
	"strconv"

	"mindprint/internal/model"
	"mindprint/internal/service"
)

// ResultsHandler handles the admin results and stats endpoints.
type ResultsHandler struct {
	resultSvc *service.ResultService
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(resultSvc *service.ResultService) *ResultsHandler {
	return &ResultsHandler{resultSvc: resultSvc}
}

// Latest handles GET /v1/results/latest?userId=...
func (h *ResultsHandler) Latest(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId query param is required")
		return
	}

	result, err := h.resultSvc.LatestResult(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if result == nil {
		writeError(w, http.StatusNotFound, "no result for user")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Recent handles GET /v1/results/recent?limit=N
func (h *ResultsHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := int64(20)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	results, err := h.resultSvc.RecentResults(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// TypeStats handles GET /v1/stats/types?variant=full
func (h *ResultsHandler) TypeStats(w http.ResponseWriter, r *http.Request) {
	variant := model.Variant(r.URL.Query().Get("variant"))
	if variant == "" {
		variant = model.VariantFull
	}
	if !variant.Valid() {
		writeError(w, http.StatusBadRequest, "unknown variant")
		return
	}

	entries, err := h.resultSvc.TypeDistribution(r.Context(), variant, 16)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"variant": variant, "types": entries})
}
