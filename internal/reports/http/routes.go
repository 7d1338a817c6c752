package reporthttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountRoutes registers the report endpoints onto the router. CSV exports
// run full report computation per request and get their own rate limit.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/api/reports/top-customers", h.handleTopCustomers)
	r.Get("/api/reports/lost-customers", h.handleLostCustomers)
	r.Get("/api/reports/buying-pattern", h.handleBuyingPattern)
	r.Get("/api/sales-date-range", h.handleSalesDateRange)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/api/reports/top-customers.csv", h.handleTopCustomersCSV)
		gr.Get("/api/reports/lost-customers.csv", h.handleLostCustomersCSV)
	})
}
