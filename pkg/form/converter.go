package form

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-domino/pkg/fieldtype"
)

// Converter turns the raw value read from the page into the value reported
// by the field. It is never applied on writes.
type Converter func(raw any) (any, error)

// Int parses the raw text as a base-10 integer. Empty text reads as 0.
func Int(raw any) (any, error) {
	text := strings.TrimSpace(fieldtype.ToString(raw))
	if text == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return nil, fmt.Errorf("parse int %q: %w", text, err)
	}
	return n, nil
}

// Float parses the raw text as a float64. Empty text reads as 0.
func Float(raw any) (any, error) {
	text := strings.TrimSpace(fieldtype.ToString(raw))
	if text == "" {
		return 0.0, nil
	}
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("parse float %q: %w", text, err)
	}
	return n, nil
}

// Bool interprets raw text such as "true", "1", "on" or "yes".
func Bool(raw any) (any, error) {
	b, err := fieldtype.ToBool(raw)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Trim collapses internal runs of whitespace and trims the ends.
func Trim(raw any) (any, error) {
	return strings.Join(strings.Fields(fieldtype.ToString(raw)), " "), nil
}

// Time returns a converter parsing raw text with layout. Empty text reads as
// the zero time.
func Time(layout string) Converter {
	return func(raw any) (any, error) {
		text := strings.TrimSpace(fieldtype.ToString(raw))
		if text == "" {
			return time.Time{}, nil
		}
		parsed, err := time.Parse(layout, text)
		if err != nil {
			return nil, fmt.Errorf("parse time %q: %w", text, err)
		}
		return parsed, nil
	}
}

// ConverterByName resolves the converter names used in definition files:
// int, float, bool, trim and date (2006-01-02).
func ConverterByName(name string) (Converter, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "int", "integer":
		return Int, true
	case "float", "number":
		return Float, true
	case "bool", "boolean":
		return Bool, true
	case "trim":
		return Trim, true
	case "date":
		return Time(time.DateOnly), true
	}
	return nil, false
}
