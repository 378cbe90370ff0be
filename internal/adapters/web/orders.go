package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"revenue-tracker/internal/app"

	"github.com/go-chi/chi/v5"
)

// listOrders handles GET /api/orders?company=CODE&status=DRAFT.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	company := companyCode(r)
	if company == "" {
		writeError(w, r, "company query parameter is required", "MISSING_COMPANY", http.StatusBadRequest)
		return
	}
	var statusPtr *string
	if status := r.URL.Query().Get("status"); status != "" {
		statusPtr = &status
	}
	result, err := h.svc.ListOrders(r.Context(), company, statusPtr)
	if err != nil {
		writeError(w, r, err.Error(), "LIST_ORDERS_FAILED", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// getOrder handles GET /api/orders/{ref}. ref is a numeric ID or order number.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetOrder(r.Context(), chi.URLParam(r, "ref"), companyCode(r))
	if err != nil {
		status := http.StatusInternalServerError
		if strings.Contains(err.Error(), "not found") {
			status = http.StatusNotFound
		}
		writeError(w, r, err.Error(), "GET_ORDER_FAILED", status)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// createOrder handles POST /api/orders.
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req app.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if req.CompanyCode == "" || req.CustomerCode == "" || len(req.Services) == 0 {
		writeError(w, r, "company_code, customer_code, and at least one service are required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.CreateOrder(r.Context(), req)
	if err != nil {
		writeError(w, r, err.Error(), "CREATE_ORDER_FAILED", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// bookOrder handles POST /api/orders/{ref}/book.
func (h *Handler) bookOrder(w http.ResponseWriter, r *http.Request) {
	h.orderTransition(w, r, h.svc.BookOrder, "BOOK_ORDER_FAILED")
}

// cancelOrder handles POST /api/orders/{ref}/cancel.
func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	h.orderTransition(w, r, h.svc.CancelOrder, "CANCEL_ORDER_FAILED")
}

func (h *Handler) orderTransition(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, ref, companyCode string) (*app.OrderResult, error), code string) {
	result, err := fn(r.Context(), chi.URLParam(r, "ref"), companyCode(r))
	if err != nil {
		status := http.StatusConflict
		if strings.Contains(err.Error(), "not found") {
			status = http.StatusNotFound
		}
		writeError(w, r, err.Error(), code, status)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
