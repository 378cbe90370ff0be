package web

import (
	"net/http"
)

// revenueReport handles GET /api/reports/revenue?company=CODE.
func (h *Handler) revenueReport(w http.ResponseWriter, r *http.Request) {
	company := companyCode(r)
	if company == "" {
		writeError(w, r, "company query parameter is required", "MISSING_COMPANY", http.StatusBadRequest)
		return
	}
	result, err := h.svc.GetRevenueReport(r.Context(), company)
	if err != nil {
		writeError(w, r, err.Error(), "REVENUE_REPORT_FAILED", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// recalculate handles POST /api/reports/revenue/recalculate?company=CODE.
// It refreshes the persisted figures of every service in the company.
func (h *Handler) recalculate(w http.ResponseWriter, r *http.Request) {
	company := companyCode(r)
	if company == "" {
		writeError(w, r, "company query parameter is required", "MISSING_COMPANY", http.StatusBadRequest)
		return
	}
	changed, err := h.svc.RecalculateCompany(r.Context(), company)
	if err != nil {
		writeError(w, r, err.Error(), "RECALCULATE_FAILED", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": changed})
}
