// Package classify derives the product category and concentration
// normalization factor for raw invoice material descriptions, and maintains
// the persisted derived rows in idempotent batches.
package classify

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Product categories. Formaldehyde variants are rescaled to the 37%
// reference grade; every other category trades at a single grade.
const (
	CategoryFormaldehyde      = "Formaldehyde"
	CategoryParaformaldehyde  = "Paraformaldehyde"
	CategoryHexamine          = "Hexamine"
	CategoryPentaerythritolTG = "Pentaerythritol-TG"
	CategoryPentaerythritolNG = "Pentaerythritol-NG"
	CategoryDiPentaerythritol = "Di-Pentaerythritol"
	CategorySodiumFormate     = "Sodium Formate"
	CategoryOther             = "Other"
)

// referenceConcentration is the canonical formaldehyde grade all variants
// are expressed against.
const referenceConcentration = 37.0

// similarityThreshold is the minimum Levenshtein similarity for a fuzzy
// match against the canonical description table.
const similarityThreshold = 0.8

// Classification is the derived identity of a material description.
type Classification struct {
	Category string
	// Factor rescales quantity to the category's canonical basis and is
	// always > 0. Rates divide by it, quantities multiply.
	Factor float64
}

// categoryRules map description patterns to categories, most specific
// first. Paraformaldehyde must win over the generic formaldehyde pattern,
// Di-Pentaerythritol over Pentaerythritol, and so on.
var categoryRules = []struct {
	pattern  *regexp.Regexp
	category string
}{
	{regexp.MustCompile(`(?i)para.*formal`), CategoryParaformaldehyde},
	{regexp.MustCompile(`(?i)formaldehyde`), CategoryFormaldehyde},
	{regexp.MustCompile(`(?i)di.*pentaerythritol`), CategoryDiPentaerythritol},
	{regexp.MustCompile(`(?i)pentaerythritol.*tg`), CategoryPentaerythritolTG},
	{regexp.MustCompile(`(?i)pentaerythritol.*ng`), CategoryPentaerythritolNG},
	{regexp.MustCompile(`(?i)pentaerythritol`), CategoryPentaerythritolTG},
	{regexp.MustCompile(`(?i)hexamine`), CategoryHexamine},
	{regexp.MustCompile(`(?i)sodium\s*formate`), CategorySodiumFormate},
}

// canonicalDescriptions backs the fuzzy fallback for descriptions that miss
// every pattern, typically free-typed variants with spelling drift.
var canonicalDescriptions = []struct {
	description string
	category    string
}{
	{"paraformaldehyde", CategoryParaformaldehyde},
	{"formaldehyde", CategoryFormaldehyde},
	{"di-pentaerythritol", CategoryDiPentaerythritol},
	{"pentaerythritol", CategoryPentaerythritolTG},
	{"hexamine", CategoryHexamine},
	{"sodium formate", CategorySodiumFormate},
}

var percentagePattern = regexp.MustCompile(`(?i)formaldehyde.*?(\d+(\.\d+)?)%`)

var whitespacePattern = regexp.MustCompile(`\s+`)

// Classify maps a raw material description to its category and
// normalization factor. Pure and idempotent; unknown descriptions come back
// as Other with factor 1 so every record stays queryable.
func Classify(rawDescription string) Classification {
	desc := normalize(rawDescription)

	category := CategoryOther
	for _, rule := range categoryRules {
		if rule.pattern.MatchString(desc) {
			category = rule.category
			break
		}
	}
	if category == CategoryOther {
		category = fuzzyCategory(desc)
	}

	factor := 1.0
	if category == CategoryFormaldehyde {
		if m := percentagePattern.FindStringSubmatch(desc); m != nil {
			if pct, err := strconv.ParseFloat(m[1], 64); err == nil && pct > 0 {
				factor = pct / referenceConcentration
			}
		}
	}
	return Classification{Category: category, Factor: factor}
}

func normalize(s string) string {
	return whitespacePattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

func fuzzyCategory(desc string) string {
	bestScore := similarityThreshold
	best := CategoryOther
	for _, entry := range canonicalDescriptions {
		if score := similarity(desc, entry.description); score > bestScore || (score == bestScore && best == CategoryOther) {
			bestScore = score
			best = entry.category
		}
	}
	return best
}

func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
