package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"revenue-tracker/internal/app"

	"github.com/go-chi/chi/v5"
)

func serviceID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// getService handles GET /api/services/{id}.
func (h *Handler) getService(w http.ResponseWriter, r *http.Request) {
	id, ok := serviceID(r)
	if !ok {
		writeError(w, r, "invalid service id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.GetService(r.Context(), id)
	if err != nil {
		writeError(w, r, err.Error(), "GET_SERVICE_FAILED", serviceErrStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// updateService handles PUT /api/services/{id}.
func (h *Handler) updateService(w http.ResponseWriter, r *http.Request) {
	id, ok := serviceID(r)
	if !ok {
		writeError(w, r, "invalid service id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req app.ServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.UpdateService(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err.Error(), "UPDATE_SERVICE_FAILED", serviceErrStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// getServiceRevenue handles GET /api/services/{id}/revenue.
func (h *Handler) getServiceRevenue(w http.ResponseWriter, r *http.Request) {
	id, ok := serviceID(r)
	if !ok {
		writeError(w, r, "invalid service id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.GetServiceRevenue(r.Context(), id)
	if err != nil {
		writeError(w, r, err.Error(), "SERVICE_REVENUE_FAILED", serviceErrStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// renewService handles POST /api/services/{id}/renew.
func (h *Handler) renewService(w http.ResponseWriter, r *http.Request) {
	id, ok := serviceID(r)
	if !ok {
		writeError(w, r, "invalid service id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req app.ServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.RenewService(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err.Error(), "RENEW_SERVICE_FAILED", serviceErrStatus(err))
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// debookService handles POST /api/services/{id}/debook.
func (h *Handler) debookService(w http.ResponseWriter, r *http.Request) {
	id, ok := serviceID(r)
	if !ok {
		writeError(w, r, "invalid service id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.DebookService(r.Context(), id)
	if err != nil {
		writeError(w, r, err.Error(), "DEBOOK_SERVICE_FAILED", serviceErrStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func serviceErrStatus(err error) int {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		return http.StatusNotFound
	case strings.Contains(msg, "only"), strings.Contains(msg, "status"):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
