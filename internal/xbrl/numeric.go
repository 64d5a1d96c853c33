package xbrl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseNumber parses numeric fact text tolerantly: thousands separators,
// surrounding whitespace, a leading currency sign, a trailing percent sign
// and accounting-style parentheses for negatives are accepted.
func ParseNumber(text string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty numeric value")
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.TrimPrefix(s, "₹")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")

	// A lone dash is how some filers write zero.
	if s == "-" || s == "–" {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid numeric value %q: %w", text, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// parseDecimals reads the decimals attribute. INF and empty yield nil.
func parseDecimals(attr string) *int {
	attr = strings.TrimSpace(attr)
	if attr == "" || strings.EqualFold(attr, "INF") {
		return nil
	}
	v, err := strconv.Atoi(attr)
	if err != nil {
		return nil
	}
	return &v
}

// granularity is the rounding step implied by a decimals hint.
func granularity(decimals *int) decimal.Decimal {
	if decimals == nil {
		return decimal.Zero
	}
	return decimal.New(1, int32(-*decimals))
}
