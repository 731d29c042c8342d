package loader

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout is the day-first, zero-padded, 24-hour format of the
// timestamp column.
const TimestampLayout = "02.01.2006 15:04:05"

var (
	decimalCommaRe = regexp.MustCompile(`^[+-]?\d+(,\d+)?$`)
	timestampRe    = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4} \d{2}:\d{2}:\d{2}$`)
)

// ParseDecimalComma parses a number written with a decimal comma ("21,5").
// A decimal point is not accepted.
func ParseDecimalComma(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !decimalCommaRe.MatchString(s) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDecimal, s)
	}
	d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidDecimal, s, err)
	}
	f, _ := d.Float64()
	return f, nil
}

// ParseNumber parses a plain numeric value ("45" or "45.2").
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidNumber)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	f, _ := d.Float64()
	return f, nil
}

// ParseTimestamp parses "DD.MM.YYYY HH:MM:SS" in loc. A nil loc means UTC.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.UTC
	}
	// time.Parse accepts single-digit hours for "15"; the regexp pins the width.
	if !timestampRe.MatchString(s) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
	}
	t, err := time.ParseInLocation(TimestampLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidTimestamp, s, err)
	}
	return t, nil
}
