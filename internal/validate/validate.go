// Package validate turns raw request strings into typed values.
//
// Every entry point (HTTP handlers, the adduser CLI) goes through these
// functions so that parsing rules live in exactly one place. Each failure
// wraps models.ErrValidation.
package validate

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"finance-tracker/internal/models"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// maxAmount keeps amounts well inside int64 cents.
var maxAmount = decimal.New(1, 13)

// Amount parses a positive currency value. Both "12.34" and "12,34" are
// accepted; more than two decimals are rounded half-up.
func Amount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, models.ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return decimal.Zero, models.ErrInvalidAmount
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, models.ErrInvalidAmount
	}
	return PositiveAmount(d.Round(2))
}

// PositiveAmount checks an already typed amount.
func PositiveAmount(d decimal.Decimal) (decimal.Decimal, error) {
	if !d.IsPositive() || d.GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, models.ErrInvalidAmount
	}
	return d, nil
}

// Date parses a YYYY-MM-DD calendar date at UTC midnight.
func Date(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, models.ErrInvalidDate
	}
	return t, nil
}

// Month parses an English month name, ignoring case.
func Month(s string) (time.Month, error) {
	name := strings.TrimSpace(s)
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(name, m.String()) {
			return m, nil
		}
	}
	return 0, models.ErrInvalidMonth
}

// OptionalMonth is Month for filters: an empty string means "all months".
func OptionalMonth(s string) (*time.Month, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	m, err := Month(s)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Category accepts only the exact name of an allowed category.
func Category(s string) (models.Category, error) {
	c := models.Category(s)
	if !c.Valid() {
		return "", models.ErrInvalidCategory
	}
	return c, nil
}

// ID parses a positive record identifier.
func ID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, models.Invalid("invalid id %q", s)
	}
	return id, nil
}

// Description trims free text and enforces the length limit.
func Description(s string) (string, error) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > 200 {
		return "", models.Invalid("description too long (max 200 characters)")
	}
	return s, nil
}
