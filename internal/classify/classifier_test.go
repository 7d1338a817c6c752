package classify

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestClassifyFormaldehydeConcentrations(t *testing.T) {
	cases := []struct {
		description string
		factor      float64
	}{
		{"Formaldehyde-37%", 1.0},
		{"Formaldehyde-43%", 43.0 / 37.0},
		{"Formaldehyde-41%", 41.0 / 37.0},
		{"Formaldehyde-36.5%", 36.5 / 37.0},
		{"formaldehyde 40% solution", 40.0 / 37.0},
		{"Formaldehyde-37% in Drums", 1.0},
	}
	for _, tc := range cases {
		t.Run(tc.description, func(t *testing.T) {
			got := Classify(tc.description)
			assert.Equal(t, CategoryFormaldehyde, got.Category)
			assert.InDelta(t, tc.factor, got.Factor, 1e-12)
		})
	}
}

func TestClassifyFormaldehydeWithoutPercentage(t *testing.T) {
	got := Classify("Formaldehyde Solution")
	assert.Equal(t, CategoryFormaldehyde, got.Category)
	assert.Equal(t, 1.0, got.Factor)
}

func TestClassifySpecificBeforeGeneric(t *testing.T) {
	assert.Equal(t, CategoryParaformaldehyde, Classify("Para Formaldehyde 96%").Category)
	assert.Equal(t, CategoryDiPentaerythritol, Classify("Di-Pentaerythritol").Category)
	assert.Equal(t, CategoryPentaerythritolNG, Classify("Pentaerythritol NG Grade").Category)
	assert.Equal(t, CategoryPentaerythritolTG, Classify("Pentaerythritol").Category)
}

func TestClassifyUnitFactorCategories(t *testing.T) {
	for _, desc := range []string{"Hexamine", "Sodium  Formate", "Paraformaldehyde 96%"} {
		got := Classify(desc)
		assert.NotEqual(t, CategoryOther, got.Category, desc)
		assert.Equal(t, 1.0, got.Factor, desc)
	}
}

func TestClassifyFuzzyFallback(t *testing.T) {
	// Spelling drift close enough to the canonical description.
	got := Classify("Hexamin")
	assert.Equal(t, CategoryHexamine, got.Category)
}

func TestClassifyUnknownIsOther(t *testing.T) {
	got := Classify("Anhydrous Ammonia")
	assert.Equal(t, CategoryOther, got.Category)
	assert.Equal(t, 1.0, got.Factor)
}

func TestClassifyIsIdempotent(t *testing.T) {
	first := Classify("  Formaldehyde-43%  ")
	second := Classify("  Formaldehyde-43%  ")
	assert.Equal(t, first, second)
}

func TestDeriveNormalizationRoundTrip(t *testing.T) {
	rate := decimal.NewFromInt(37)
	row := Derive(RawRecord{
		ID:                  7,
		MaterialDescription: "Formaldehyde-43%",
		Qty:                 decimal.NewFromInt(100),
		BasicRate:           &rate,
	})

	assert.Equal(t, CategoryFormaldehyde, row.ProductCategory)
	wantQty, _ := row.NormQty.Float64()
	assert.InDelta(t, 100*43.0/37.0, wantQty, 1e-9)
	wantRate, _ := row.NormBasicRate.Float64()
	assert.InDelta(t, 37*37.0/43.0, wantRate, 1e-9)
}

func TestDeriveReferenceGradeIsExact(t *testing.T) {
	row := Derive(RawRecord{
		ID:                  8,
		MaterialDescription: "Formaldehyde-37%",
		Qty:                 decimal.NewFromInt(50),
	})

	assert.True(t, row.NormalizationFactor.Equal(decimal.NewFromInt(1)))
	assert.True(t, row.NormQty.Equal(decimal.NewFromInt(50)))
	assert.Nil(t, row.NormBasicRate)
}
