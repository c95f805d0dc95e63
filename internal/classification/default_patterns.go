package classification

import (
	"regexp"
	"strings"

	"github.com/Veraticus/paycapture/internal/config"
	"github.com/shopspring/decimal"
)

// Amount pattern names.
const (
	PatternCurrencySymbol = "currency_symbol"
	PatternCurrencyUnit   = "currency_unit"
)

// amountNumber matches digits with up to two fractional digits.
const amountNumber = `([0-9]+(?:\.[0-9]{1,2})?)`

// DefaultPatterns returns the amount patterns for the given currency markers.
// A symbol-prefixed number always outranks a unit-suffixed one.
func DefaultPatterns(symbols, units []string) []AmountPattern {
	var patterns []AmountPattern

	if alt := alternation(symbols); alt != "" {
		patterns = append(patterns, AmountPattern{
			Name:     PatternCurrencySymbol,
			Regex:    `(?:` + alt + `)\s*` + amountNumber,
			Priority: 100,
		})
	}

	if alt := alternation(units); alt != "" {
		patterns = append(patterns, AmountPattern{
			Name:     PatternCurrencyUnit,
			Regex:    amountNumber + `\s*(?:` + alt + `)`,
			Priority: 50,
		})
	}

	return patterns
}

// DefaultOptions returns the classifier options of the stock configuration.
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default())
}

// OptionsFromConfig builds classifier options from application configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Keywords:      cfg.Keywords,
		Patterns:      DefaultPatterns(cfg.Currency.Symbols, cfg.Currency.Units),
		MinAmount:     decimal.NewFromFloat(cfg.Amount.Min),
		MaxAmount:     decimal.NewFromFloat(cfg.Amount.Max),
		NoteMaxLength: cfg.Note.MaxLength,
	}
}

func alternation(markers []string) string {
	quoted := make([]string, 0, len(markers))
	for _, m := range markers {
		if m != "" {
			quoted = append(quoted, regexp.QuoteMeta(m))
		}
	}
	return strings.Join(quoted, "|")
}
