package web

import (
	"encoding/json"
	"net/http"

	"revenue-tracker/internal/app"
)

// listCompanies handles GET /api/companies.
func (h *Handler) listCompanies(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListCompanies(r.Context())
	if err != nil {
		writeError(w, r, err.Error(), "LIST_COMPANIES_FAILED", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// listCustomers handles GET /api/customers?company=CODE.
func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	company := companyCode(r)
	if company == "" {
		writeError(w, r, "company query parameter is required", "MISSING_COMPANY", http.StatusBadRequest)
		return
	}
	result, err := h.svc.ListCustomers(r.Context(), company)
	if err != nil {
		writeError(w, r, err.Error(), "LIST_CUSTOMERS_FAILED", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// createCustomer handles POST /api/customers.
func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req app.CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if req.CompanyCode == "" || req.Code == "" || req.Name == "" {
		writeError(w, r, "company_code, code, and name are required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.CreateCustomer(r.Context(), req)
	if err != nil {
		writeError(w, r, err.Error(), "CREATE_CUSTOMER_FAILED", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}
