// Package ingest loads invoice and methanol price CSV exports into the
// ledger with idempotent upserts.
package ingest

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// materialRewrites canonicalises the free-text material descriptions the
// export carries. Ordered most specific first; the first matching pattern
// wins.
var materialRewrites = []struct {
	pattern *regexp.Regexp
	canon   string
}{
	{regexp.MustCompile(`(?i)para.*formal`), "Paraformaldehyde"},
	{regexp.MustCompile(`(?i)formaldehyde.*37.*drums`), "Formaldehyde-37% in Drums"},
	{regexp.MustCompile(`(?i)formaldehyde.*37`), "Formaldehyde-37%"},
	{regexp.MustCompile(`(?i)formaldehyde.*43`), "Formaldehyde-43%"},
	{regexp.MustCompile(`(?i)formaldehyde.*41`), "Formaldehyde-41%"},
	{regexp.MustCompile(`(?i)formaldehyde.*40`), "Formaldehyde-40%"},
	{regexp.MustCompile(`(?i)formaldehyde.*36\.5`), "Formaldehyde-36.5%"},
	{regexp.MustCompile(`(?i)formaldehyde.*10`), "Formaldehyde-10%"},
	{regexp.MustCompile(`(?i)formaldehyde`), "Formaldehyde-37%"},
	{regexp.MustCompile(`(?i)anhydrous\s*ammonia`), "Anhydrous Ammonia"},
	{regexp.MustCompile(`(?i)di.*pentaerythritol`), "Di-Pentaerythritol"},
	{regexp.MustCompile(`(?i)pentaerythritol.*tg`), "Pentaerythritol-TG"},
	{regexp.MustCompile(`(?i)pentaerythritol.*ng`), "Pentaerythritol-NG"},
	{regexp.MustCompile(`(?i)pentaerythritol`), "Pentaerythritol-TG"},
	{regexp.MustCompile(`(?i)hexamine`), "Hexamine"},
	{regexp.MustCompile(`(?i)sodium\s+formate`), "Sodium Formate"},
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// CanonicalMaterial rewrites a raw material description to its canonical
// form. Descriptions matching no rule pass through with collapsed
// whitespace only.
func CanonicalMaterial(raw string) string {
	s := whitespaceRun.ReplaceAllString(strings.TrimSpace(raw), " ")
	for _, rule := range materialRewrites {
		if rule.pattern.MatchString(s) {
			return rule.canon
		}
	}
	return s
}

// cleanField trims a CSV cell and maps empty to nil.
func cleanField(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// parseNumber reads a numeric cell, tolerating digit-group commas
// ("1,23,456.78").
func parseNumber(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	clean := strings.ReplaceAll(*s, ",", "")
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return nil, fmt.Errorf("ingest: invalid number %q", *s)
	}
	return &d, nil
}

// parseDate reads a d.m.yyyy or d/m/yyyy cell into a UTC date.
func parseDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	parts := strings.FieldsFunc(*s, func(r rune) bool {
		return r == '.' || r == '/'
	})
	if len(parts) != 3 {
		return nil, fmt.Errorf("ingest: date %q must be dd.mm.yyyy or dd/mm/yyyy", *s)
	}
	t, err := time.Parse("2-1-2006", strings.Join(parts, "-"))
	if err != nil {
		return nil, fmt.Errorf("ingest: invalid date %q", *s)
	}
	utc := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &utc, nil
}

// parseInt reads an integer cell.
func parseInt(s *string) (*int, error) {
	d, err := parseNumber(s)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, nil
	}
	if !d.IsInteger() {
		return nil, fmt.Errorf("ingest: %s is not an integer", d)
	}
	v := int(d.IntPart())
	return &v, nil
}
