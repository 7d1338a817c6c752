package classify

import (
	"context"
	"fmt"
	"log/slog"
)

// batchSize bounds how many raw records a single derive pass holds in
// memory.
const batchSize = 100

// Store is the persistence port the batch deriver runs against.
type Store interface {
	ListRawAfter(ctx context.Context, afterID int64, limit int) ([]RawRecord, error)
	UpsertDerived(ctx context.Context, rows []DerivedRow) error
}

// Service recomputes derived classification rows over the raw ledger.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService wires the deriver with its store.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Recompute walks the whole raw table in ascending-id batches and upserts
// one derived row per record. Safe to re-run at any time: every write is an
// upsert keyed by raw id.
func (s *Service) Recompute(ctx context.Context) (int, error) {
	return s.RecomputeFrom(ctx, 0)
}

// RecomputeFrom resumes a recompute after the given raw id. A failed
// per-record derivation is logged and skipped; a failed batch write aborts
// and reports how far processing got, so the caller can resume from there.
func (s *Service) RecomputeFrom(ctx context.Context, afterID int64) (int, error) {
	processed := 0
	lastID := afterID
	for {
		if err := ctx.Err(); err != nil {
			return processed, err
		}
		batch, err := s.store.ListRawAfter(ctx, lastID, batchSize)
		if err != nil {
			return processed, fmt.Errorf("classify: list after id %d: %w", lastID, err)
		}
		if len(batch) == 0 {
			return processed, nil
		}

		derived := make([]DerivedRow, 0, len(batch))
		for _, record := range batch {
			row := Derive(record)
			if !row.NormalizationFactor.IsPositive() {
				// Should be unreachable; skip rather than poison the batch.
				s.logger.Warn("classify: non-positive factor, record skipped",
					slog.Int64("raw_id", record.ID),
					slog.String("description", record.MaterialDescription))
				continue
			}
			derived = append(derived, row)
		}

		if err := s.store.UpsertDerived(ctx, derived); err != nil {
			return processed, fmt.Errorf("classify: upsert batch after id %d: %w", lastID, err)
		}
		lastID = batch[len(batch)-1].ID
		processed += len(batch)
		s.logger.Info("classify: batch processed", slog.Int("total", processed), slog.Int64("last_id", lastID))
	}
}
