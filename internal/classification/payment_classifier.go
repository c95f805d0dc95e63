// Package classification recognizes payment notifications and extracts their amount.
package classification

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Veraticus/paycapture/internal/common"
	"github.com/Veraticus/paycapture/internal/model"
	"github.com/shopspring/decimal"
)

// NoteEllipsis is appended to notes cut at the maximum length.
const NoteEllipsis = "..."

// AmountPattern describes one way of locating an amount in notification text.
// The first capture group must hold the number.
type AmountPattern struct {
	Name     string
	Regex    string
	Priority int // Higher priority patterns are tried first
}

// compiledPattern holds a compiled regex pattern with metadata.
type compiledPattern struct {
	regex *regexp.Regexp
	AmountPattern
}

// find returns the number captured by the first occurrence of the pattern.
func (p compiledPattern) find(content string) (string, bool) {
	match := p.regex.FindStringSubmatch(content)
	if len(match) < 2 {
		return "", false
	}
	return match[1], true
}

// Options configures a PaymentClassifier.
type Options struct {
	MinAmount     decimal.Decimal // Exclusive lower bound
	MaxAmount     decimal.Decimal // Inclusive upper bound
	Keywords      []string
	Patterns      []AmountPattern
	NoteMaxLength int
}

// PaymentClassifier is a deterministic rule engine: a keyword gate followed
// by amount patterns tried in priority order. It holds no mutable state and
// is safe for concurrent use.
type PaymentClassifier struct {
	minAmount     decimal.Decimal
	maxAmount     decimal.Decimal
	keywords      []string
	patterns      []compiledPattern
	noteMaxLength int
}

// NewPaymentClassifier compiles the configured patterns.
func NewPaymentClassifier(opts Options) (*PaymentClassifier, error) {
	keywords := make([]string, 0, len(opts.Keywords))
	for _, k := range opts.Keywords {
		if k != "" {
			keywords = append(keywords, k)
		}
	}
	if len(keywords) == 0 {
		return nil, fmt.Errorf("%w: no payment keywords", common.ErrInvalidConfig)
	}

	if len(opts.Patterns) == 0 {
		return nil, fmt.Errorf("%w: no amount patterns", common.ErrInvalidConfig)
	}

	if opts.NoteMaxLength <= 0 {
		return nil, fmt.Errorf("%w: note max length must be positive", common.ErrInvalidConfig)
	}

	if !opts.MaxAmount.GreaterThan(opts.MinAmount) {
		return nil, fmt.Errorf("%w: max amount %s must exceed min amount %s",
			common.ErrInvalidConfig, opts.MaxAmount, opts.MinAmount)
	}

	compiled := make([]compiledPattern, 0, len(opts.Patterns))
	for _, p := range opts.Patterns {
		regex, err := regexp.Compile(p.Regex)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %s: %w", p.Name, err)
		}
		if regex.NumSubexp() < 1 {
			return nil, fmt.Errorf("%w: pattern %s has no capture group", common.ErrInvalidConfig, p.Name)
		}

		compiled = append(compiled, compiledPattern{
			AmountPattern: p,
			regex:         regex,
		})
	}

	// Stable so that equal priorities keep their configured order
	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Priority > compiled[j].Priority
	})

	return &PaymentClassifier{
		keywords:      keywords,
		patterns:      compiled,
		minAmount:     opts.MinAmount,
		maxAmount:     opts.MaxAmount,
		noteMaxLength: opts.NoteMaxLength,
	}, nil
}

// Classify decides whether normalized content describes a payment. It returns
// common.ErrGateFailed when no keyword is present and common.ErrExtractionFailed
// when no amount can be extracted, parsed and bounded.
func (c *PaymentClassifier) Classify(_ string, content string) (*model.Classification, error) {
	keyword, ok := c.gate(content)
	if !ok {
		return nil, common.ErrGateFailed
	}

	amount, matcher, err := c.extractAmount(content)
	if err != nil {
		return nil, err
	}

	return &model.Classification{
		Amount:  amount,
		Note:    TruncateNote(content, c.noteMaxLength),
		Keyword: keyword,
		Matcher: matcher,
	}, nil
}

// PatternNames returns the amount pattern names in the order they are tried.
func (c *PaymentClassifier) PatternNames() []string {
	names := make([]string, len(c.patterns))
	for i, p := range c.patterns {
		names[i] = p.Name
	}
	return names
}

// gate returns the first configured keyword found in content.
func (c *PaymentClassifier) gate(content string) (string, bool) {
	for _, k := range c.keywords {
		if strings.Contains(content, k) {
			return k, true
		}
	}
	return "", false
}

// extractAmount runs the patterns in priority order and stops at the first
// match. A match that fails to parse or falls outside the bounds rejects the
// whole classification; later patterns are not consulted.
func (c *PaymentClassifier) extractAmount(content string) (decimal.Decimal, string, error) {
	for _, p := range c.patterns {
		raw, ok := p.find(content)
		if !ok {
			continue
		}

		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, "", fmt.Errorf("%w: %q does not parse: %v", common.ErrExtractionFailed, raw, err)
		}

		if !amount.GreaterThan(c.minAmount) || amount.GreaterThan(c.maxAmount) {
			return decimal.Zero, "", fmt.Errorf("%w: %s out of bounds", common.ErrExtractionFailed, amount.StringFixed(2))
		}

		return amount.Round(2), p.Name, nil
	}

	return decimal.Zero, "", common.ErrExtractionFailed
}

// TruncateNote keeps the first maxLen characters of content and appends
// NoteEllipsis when anything was cut.
func TruncateNote(content string, maxLen int) string {
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	return string(runes[:maxLen]) + NoteEllipsis
}
