package handlers

import (
	"net/http"

	"ai-expense-tracker/internal/storage"
)

// Statistics handles GET /statistics with per-category spending totals.
func (h *Handlers) Statistics(w http.ResponseWriter, r *http.Request) {
	totals, err := h.db.CategoryTotals()
	if err != nil {
		h.logger.Error("failed to compute category totals", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var total float64
	for _, ct := range totals {
		total += ct.Total
	}

	if totals == nil {
		totals = []storage.CategoryTotal{}
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"total":      total,
		"categories": totals,
	})
}
