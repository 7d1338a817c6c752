// Package reporthttp exposes the report engine over JSON and CSV endpoints.
package reporthttp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/salespulse/salespulse/internal/periods"
	"github.com/salespulse/salespulse/internal/platform/httpx"
	"github.com/salespulse/salespulse/internal/reports"
	"github.com/salespulse/salespulse/internal/reports/export"
)

const requestTimeout = 15 * time.Second

const dateLayout = "2006-01-02"

// ReportService is the engine contract the handlers depend on.
type ReportService interface {
	TopCustomers(ctx context.Context, filter reports.TopCustomersFilter) ([]reports.CustomerReportRow, error)
	LostCustomers(ctx context.Context, filter reports.LostCustomersFilter) ([]reports.LostCustomerRow, error)
	CustomerBuyingPattern(ctx context.Context, filter reports.BuyingPatternFilter) (reports.BuyingPatternResult, error)
	SalesDateRange(ctx context.Context) (reports.DateRange, error)
}

// Handler coordinates HTTP requests for the sales report endpoints.
type Handler struct {
	logger   *slog.Logger
	service  ReportService
	validate *validator.Validate
}

// NewHandler constructs the report HTTP handler.
func NewHandler(logger *slog.Logger, service ReportService) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// reportParams mirrors the raw query string for validation before the
// typed filters are built.
type reportParams struct {
	From     string `validate:"omitempty,datetime=2006-01-02"`
	To       string `validate:"omitempty,datetime=2006-01-02"`
	Product  string `validate:"omitempty,max=200"`
	Period   string `validate:"omitempty,oneof=month quarter year"`
	Grouping string `validate:"omitempty,max=60"`
	Channels string `validate:"omitempty,oneof=all dealer-known dealer-unknown"`
}

func (h *Handler) parseTopCustomersFilter(r *http.Request) (reports.TopCustomersFilter, error) {
	q := r.URL.Query()
	params := reportParams{
		From:     q.Get("from"),
		To:       q.Get("to"),
		Product:  q.Get("product"),
		Period:   q.Get("period"),
		Grouping: q.Get("grouping"),
		Channels: q.Get("channels"),
	}
	if err := h.validate.Struct(params); err != nil {
		return reports.TopCustomersFilter{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}

	filter := reports.TopCustomersFilter{
		Product:  params.Product,
		Grouping: params.Grouping,
		Channels: params.Channels,
	}
	filter.Period = periods.Month
	if params.Period != "" {
		g, err := periods.Parse(params.Period)
		if err != nil {
			return reports.TopCustomersFilter{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
		}
		filter.Period = g
	}
	var err error
	if filter.From, err = parseDate(params.From); err != nil {
		return reports.TopCustomersFilter{}, err
	}
	if filter.To, err = parseDate(params.To); err != nil {
		return reports.TopCustomersFilter{}, err
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return reports.TopCustomersFilter{}, fmt.Errorf("%w: from is after to", httpx.ErrValidation)
	}
	return filter, nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", httpx.ErrValidation, s)
	}
	return &t, nil
}

func (h *Handler) handleTopCustomers(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseTopCustomersFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.service.TopCustomers(ctx, filter)
	if err != nil {
		h.serverError(w, "top customers", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleTopCustomersCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseTopCustomersFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.service.TopCustomers(ctx, filter)
	if err != nil {
		h.serverError(w, "top customers csv", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="top-customers.csv"`)
	if err := export.WriteTopCustomersCSV(w, report); err != nil {
		h.logger.Error("write top customers csv", slog.Any("error", err))
	}
}

func (h *Handler) handleLostCustomers(w http.ResponseWriter, r *http.Request) {
	filter := reports.LostCustomersFilter{Product: r.URL.Query().Get("product")}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.service.LostCustomers(ctx, filter)
	if err != nil {
		h.serverError(w, "lost customers", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleLostCustomersCSV(w http.ResponseWriter, r *http.Request) {
	filter := reports.LostCustomersFilter{Product: r.URL.Query().Get("product")}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.service.LostCustomers(ctx, filter)
	if err != nil {
		h.serverError(w, "lost customers csv", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="lost-customers.csv"`)
	if err := export.WriteLostCustomersCSV(w, report); err != nil {
		h.logger.Error("write lost customers csv", slog.Any("error", err))
	}
}

func (h *Handler) handleBuyingPattern(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := reportParams{From: q.Get("from"), To: q.Get("to"), Product: q.Get("product")}
	if err := h.validate.Struct(params); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	filter := reports.BuyingPatternFilter{Product: params.Product}
	var err error
	if filter.From, err = parseDate(params.From); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if filter.To, err = parseDate(params.To); err != nil {
		httpx.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := h.service.CustomerBuyingPattern(ctx, filter)
	if err != nil {
		h.serverError(w, "buying pattern", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleSalesDateRange(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	span, err := h.service.SalesDateRange(ctx)
	if errors.Is(err, reports.ErrNoData) {
		httpx.Problem(w, http.StatusNotFound, "No Data", "no invoices ingested yet")
		return
	}
	if err != nil {
		h.serverError(w, "sales date range", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{
		"from": span.From.Format(dateLayout),
		"to":   span.To.Format(dateLayout),
	})
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
