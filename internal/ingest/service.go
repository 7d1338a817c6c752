package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Summary reports the outcome of one ingest run.
type Summary struct {
	RunID    uuid.UUID
	Uploaded int
	Skipped  int
	Failed   int
}

// Total returns the number of CSV records seen.
func (s Summary) Total() int {
	return s.Uploaded + s.Skipped + s.Failed
}

// Store is the persistence port for ingest runs.
type Store interface {
	UpsertInvoice(ctx context.Context, rec InvoiceRecord) error
	UpsertMethanolPrice(ctx context.Context, rec PriceRecord) error
}

// Service loads CSV exports row by row. One bad record never aborts the
// run; it is counted and logged under the run id.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService wires the ingest service.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// IngestInvoices reads an invoice CSV export and upserts every complete
// row keyed by its internal reference number.
func (s *Service) IngestInvoices(ctx context.Context, r io.Reader) (Summary, error) {
	summary := Summary{RunID: uuid.New()}
	logger := s.logger.With(slog.String("run_id", summary.RunID.String()))

	rows, err := readRows(r)
	if err != nil {
		return summary, err
	}
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		refNo := strings.TrimSpace(row[colInternalRefNo])

		if missing := missingFields(row); len(missing) > 0 {
			logger.Warn("record skipped",
				slog.Int("record", i+1),
				slog.String("internal_ref_no", refNo),
				slog.String("missing", strings.Join(missing, ", ")))
			summary.Skipped++
			continue
		}

		rec, err := parseInvoiceRecord(row)
		if err != nil {
			logger.Error("record transform failed",
				slog.Int("record", i+1),
				slog.String("internal_ref_no", refNo),
				slog.Any("error", err))
			summary.Failed++
			continue
		}

		if err := s.store.UpsertInvoice(ctx, rec); err != nil {
			logger.Error("record upload failed",
				slog.Int("record", i+1),
				slog.String("internal_ref_no", refNo),
				slog.Any("error", err))
			summary.Failed++
			continue
		}
		summary.Uploaded++
	}

	logger.Info("invoice ingest done",
		slog.Int("uploaded", summary.Uploaded),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed),
		slog.Int("total", summary.Total()))
	return summary, nil
}

// IngestMethanolPrices reads a Date,Price CSV and upserts daily prices.
// Rows without a price are skipped; the price column is empty on
// non-trading days in some exports and those days get interpolated anyway.
func (s *Service) IngestMethanolPrices(ctx context.Context, r io.Reader) (Summary, error) {
	summary := Summary{RunID: uuid.New()}
	logger := s.logger.With(slog.String("run_id", summary.RunID.String()))

	rows, err := readRows(r)
	if err != nil {
		return summary, err
	}
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		rec, err := parsePriceRecord(row)
		if err != nil {
			logger.Error("price record failed", slog.Int("record", i+1), slog.Any("error", err))
			summary.Failed++
			continue
		}
		if rec.Price == nil {
			logger.Warn("price record skipped", slog.Int("record", i+1), slog.String("reason", "no price"))
			summary.Skipped++
			continue
		}
		if err := s.store.UpsertMethanolPrice(ctx, rec); err != nil {
			logger.Error("price upload failed", slog.Int("record", i+1), slog.Any("error", err))
			summary.Failed++
			continue
		}
		summary.Uploaded++
	}

	logger.Info("price ingest done",
		slog.Int("uploaded", summary.Uploaded),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed),
		slog.Int("total", summary.Total()))
	return summary, nil
}

// readRows parses a headered CSV into rows keyed by trimmed header names.
func readRows(r io.Reader) ([]csvRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ingest: parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	header := records[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	rows := make([]csvRow, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(csvRow, len(header))
		for i, cell := range record {
			if i < len(header) {
				row[header[i]] = cell
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
