package classify

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	raw        []RawRecord
	upserted   map[int64]DerivedRow
	listCalls  int
	upsertErr  error
	maxBatches int
}

func (m *mockStore) ListRawAfter(ctx context.Context, afterID int64, limit int) ([]RawRecord, error) {
	m.listCalls++
	var out []RawRecord
	for _, r := range m.raw {
		if r.ID > afterID {
			out = append(out, r)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *mockStore) UpsertDerived(ctx context.Context, rows []DerivedRow) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if m.upserted == nil {
		m.upserted = make(map[int64]DerivedRow)
	}
	for _, row := range rows {
		m.upserted[row.RawID] = row
	}
	return nil
}

func rawFixture(n int) []RawRecord {
	out := make([]RawRecord, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, RawRecord{
			ID:                  int64(i),
			MaterialDescription: "Formaldehyde-43%",
			Qty:                 decimal.NewFromInt(10),
		})
	}
	return out
}

func TestRecomputeWalksAllBatches(t *testing.T) {
	store := &mockStore{raw: rawFixture(250)}
	svc := NewService(store, slog.New(slog.DiscardHandler))

	processed, err := svc.Recompute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 250, processed)
	assert.Len(t, store.upserted, 250)
	// 100 + 100 + 50 + the empty terminating batch.
	assert.Equal(t, 4, store.listCalls)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	store := &mockStore{raw: rawFixture(5)}
	svc := NewService(store, slog.New(slog.DiscardHandler))

	_, err := svc.Recompute(context.Background())
	require.NoError(t, err)
	first := store.upserted[3]

	_, err = svc.Recompute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, store.upserted[3])
	assert.Len(t, store.upserted, 5)
}

func TestRecomputeFromResumes(t *testing.T) {
	store := &mockStore{raw: rawFixture(10)}
	svc := NewService(store, slog.New(slog.DiscardHandler))

	processed, err := svc.RecomputeFrom(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 3, processed)
	assert.NotContains(t, store.upserted, int64(7))
	assert.Contains(t, store.upserted, int64(8))
}

func TestRecomputeSurfacesStoreError(t *testing.T) {
	store := &mockStore{raw: rawFixture(3), upsertErr: errors.New("disk full")}
	svc := NewService(store, slog.New(slog.DiscardHandler))

	_, err := svc.Recompute(context.Background())
	assert.ErrorContains(t, err, "disk full")
}

func TestRecomputeEmptyTable(t *testing.T) {
	store := &mockStore{}
	svc := NewService(store, slog.New(slog.DiscardHandler))

	processed, err := svc.Recompute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, processed)
}
