package web

import (
	"net/http"
	"strings"

	"revenue-tracker/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc app.ApplicationService
	log *logrus.Logger
}

// NewHandler creates and wires the chi router with all routes.
// allowedOrigins is a comma-separated list; empty disables CORS entirely.
func NewHandler(svc app.ApplicationService, allowedOrigins string, log *logrus.Logger) http.Handler {
	h := &Handler{svc: svc, log: log}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recoverer(log))
	if origins := splitAndTrim(allowedOrigins); len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
			AllowCredentials: true,
		}))
	}

	r.Get("/api/health", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/companies", h.listCompanies)

		r.Get("/customers", h.listCustomers)
		r.Post("/customers", h.createCustomer)

		r.Get("/orders", h.listOrders)
		r.Post("/orders", h.createOrder)
		r.Get("/orders/{ref}", h.getOrder)
		r.Post("/orders/{ref}/book", h.bookOrder)
		r.Post("/orders/{ref}/cancel", h.cancelOrder)

		r.Get("/services/{id}", h.getService)
		r.Put("/services/{id}", h.updateService)
		r.Get("/services/{id}/revenue", h.getServiceRevenue)
		r.Post("/services/{id}/renew", h.renewService)
		r.Post("/services/{id}/debook", h.debookService)

		r.Get("/reports/revenue", h.revenueReport)
		r.Post("/reports/revenue/recalculate", h.recalculate)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// companyCode extracts the company query parameter required by list routes.
func companyCode(r *http.Request) string {
	return r.URL.Query().Get("company")
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
